package tiff

import (
	"fmt"
	"math/bits"

	"github.com/mrjoshuak/go-omefiles"
	"github.com/mrjoshuak/go-omefiles/compression"
	"github.com/mrjoshuak/go-omefiles/internal/binio"
	"github.com/mrjoshuak/go-omefiles/internal/bufpool"
	"github.com/mrjoshuak/go-omefiles/internal/interleave"
	"github.com/mrjoshuak/go-omefiles/internal/predictor"
	"github.com/mrjoshuak/go-omefiles/pixel"
)

func toScheme(c Compression) compression.Scheme { return compression.Scheme(c) }

// tileCodec converts between the stored form of a strip or tile and
// native, unpacked samples.
type tileCodec struct {
	ti     TileInfo
	codec  compression.Codec
	pred   predictor.Kind
	params compression.Params
	layout predictor.Layout
	size   int // bytes per native sample
	swap   int // byte swap unit, 0 when the file order is native
	bit    bool
	lsb    bool // FillOrder LSB2MSB
}

func (ifd *IFD) newTileCodec(op string, ti TileInfo, pt pixel.Type) (*tileCodec, error) {
	comp, err := ifd.Compression()
	if err != nil {
		return nil, err
	}
	codec, err := compression.New(toScheme(comp), ifd.tiff.codec)
	if err != nil {
		return nil, &omefiles.FormatError{Op: op, Path: ifd.tiff.path, Msg: fmt.Sprintf("directory %d", ifd.index), Err: err}
	}
	pred, err := ifd.Predictor()
	if err != nil {
		return nil, err
	}
	fill, err := getOr(ifd, TagFillOrder, FillOrderMSB2LSB)
	if err != nil {
		return nil, err
	}

	order := ifd.order()
	tc := &tileCodec{
		ti:    ti,
		codec: codec,
		pred:  predictor.Kind(pred),
		size:  pt.BytesPerPixel(),
		bit:   pt == pixel.Bit,
		lsb:   fill == FillOrderLSB2MSB,
	}
	if tc.bit && pred != PredictorNone {
		return nil, omefiles.Formatf(op, "directory %d: predictor %s on 1-bit samples", ifd.index, pred)
	}
	if tc.size > 1 && !pixel.EndianOf(order).IsNative() {
		tc.swap = tc.size
		if pt.IsComplex() {
			tc.swap = tc.size / 2
		}
	}
	tc.params = compression.Params{
		Width:         ti.TileWidth,
		Samples:       ti.SamplesPerTile(),
		BitsPerSample: ti.BitsPerSample,
		Signed:        pt.IsSigned(),
		Float:         pt.IsFloatingPoint(),
		ByteOrder:     order,
	}
	tc.layout = predictor.Layout{
		RowBytes:       ti.RowBytes(),
		Samples:        ti.SamplesPerTile(),
		BytesPerSample: tc.size,
		ByteOrder:      order,
	}
	if pt.IsComplex() {
		tc.layout.BytesPerSample = tc.size / 2
		tc.layout.Samples *= 2
	}
	return tc, nil
}

// nativeSize returns the size of tile in native unpacked form.
func (tc *tileCodec) nativeSize() int {
	return tc.ti.TileWidth * tc.ti.TileHeight * tc.ti.SamplesPerTile() * tc.size
}

// decode turns the stored bytes of tile into native samples in out,
// which must hold nativeSize bytes.
func (tc *tileCodec) decode(raw, out []byte, tile int) error {
	rows := tc.ti.StoredRows(tile)
	stored := out[:rows*tc.ti.RowBytes()]
	var packed []byte
	if tc.bit {
		packed = bufpool.Get(len(stored))
		defer bufpool.Put(packed)
		stored = packed
	}
	if tc.lsb {
		raw = append([]byte(nil), raw...)
		for i, b := range raw {
			raw[i] = bits.Reverse8(b)
		}
	}

	p := tc.params
	p.Height = rows
	if err := tc.codec.Decode(stored, raw, p); err != nil {
		return err
	}
	if err := predictor.Decode(tc.pred, stored, tc.layout); err != nil {
		return err
	}
	if tc.swap > 0 {
		binio.Swap(stored, tc.swap)
	}
	if tc.bit {
		unpackBits(out, packed, tc.ti.TileWidth*tc.ti.SamplesPerTile(), rows)
	}
	return nil
}

// encode compresses the native samples of tile. native is modified.
func (tc *tileCodec) encode(native []byte, tile int) ([]byte, error) {
	rows := tc.ti.StoredRows(tile)
	data := native[:rows*tc.ti.RowBytes()]
	if tc.bit {
		packed := make([]byte, rows*tc.ti.RowBytes())
		packBits(packed, native, tc.ti.TileWidth*tc.ti.SamplesPerTile(), rows)
		data = packed
	}
	if tc.swap > 0 {
		binio.Swap(data, tc.swap)
	}
	if err := predictor.Encode(tc.pred, data, tc.layout); err != nil {
		return nil, err
	}
	p := tc.params
	p.Height = rows
	out, err := tc.codec.Encode(data, p)
	if err != nil {
		return nil, err
	}
	if tc.lsb {
		out = append([]byte(nil), out...)
		for i, b := range out {
			out[i] = bits.Reverse8(b)
		}
	}
	return out, nil
}

// packBits packs rows of width 0/1 bytes MSB first, each row starting on
// a byte boundary.
func packBits(dst, src []byte, width, rows int) {
	stride := (width + 7) / 8
	clear(dst[:stride*rows])
	for y := 0; y < rows; y++ {
		row := src[y*width : (y+1)*width]
		out := dst[y*stride : (y+1)*stride]
		for x, v := range row {
			if v != 0 {
				out[x>>3] |= 0x80 >> (x & 7)
			}
		}
	}
}

func unpackBits(dst, src []byte, width, rows int) {
	stride := (width + 7) / 8
	for y := 0; y < rows; y++ {
		in := src[y*stride : (y+1)*stride]
		row := dst[y*width : (y+1)*width]
		for x := range row {
			row[x] = (in[x>>3] >> (7 - x&7)) & 1
		}
	}
}

func checkRegion(op string, ti TileInfo, r PlaneRegion) error {
	if r.X < 0 || r.Y < 0 || r.W <= 0 || r.H <= 0 || r.X+r.W > ti.ImageWidth || r.Y+r.H > ti.ImageHeight {
		return omefiles.Logicf(op, "region %s outside %dx%d image", r, ti.ImageWidth, ti.ImageHeight)
	}
	return nil
}

// ReadPlane reads the whole image into buf.
func (ifd *IFD) ReadPlane(buf *pixel.Variant) error {
	ti, err := ifd.TileInfo()
	if err != nil {
		return err
	}
	return ifd.readImage("ReadPlane", buf, PlaneRegion{W: ti.ImageWidth, H: ti.ImageHeight}, -1)
}

// ReadImage reads region (x, y, w, h) of every sample into buf, which is
// reshaped to (w, h, 1, 1, 1, samples, 1, 1, 1) in the default storage
// order for the planar configuration.
func (ifd *IFD) ReadImage(buf *pixel.Variant, x, y, w, h int) error {
	return ifd.readImage("ReadImage", buf, PlaneRegion{X: x, Y: y, W: w, H: h}, -1)
}

// ReadImageSample reads one sample of region (x, y, w, h) into buf.
func (ifd *IFD) ReadImageSample(buf *pixel.Variant, x, y, w, h, sample int) error {
	if sample < 0 {
		return omefiles.Logicf("ReadImageSample", "invalid sample %d", sample)
	}
	return ifd.readImage("ReadImageSample", buf, PlaneRegion{X: x, Y: y, W: w, H: h}, sample)
}

func (ifd *IFD) tileLocations() (offsets, counts []uint64, err error) {
	offTag, countTag := TagStripOffsets, TagStripByteCounts
	if ifd.tileType == Tile {
		offTag, countTag = TagTileOffsets, TagTileByteCounts
	}
	if offsets, err = GetField(ifd, offTag).Get(); err != nil {
		return nil, nil, err
	}
	if counts, err = GetField(ifd, countTag).Get(); err != nil {
		return nil, nil, err
	}
	return offsets, counts, nil
}

func (ifd *IFD) readImage(op string, buf *pixel.Variant, r PlaneRegion, sample int) error {
	ti, err := ifd.TileInfo()
	if err != nil {
		return err
	}
	pt, err := ifd.PixelType()
	if err != nil {
		return err
	}
	if err := checkRegion(op, ti, r); err != nil {
		return err
	}
	if sample >= ti.Samples {
		return omefiles.Logicf(op, "sample %d out of range [0, %d)", sample, ti.Samples)
	}
	offsets, counts, err := ifd.tileLocations()
	if err != nil {
		return err
	}
	if len(offsets) < ti.TileCount || len(counts) < ti.TileCount {
		return omefiles.Formatf(op, "%s: directory %d has %d offsets for %d tiles", ifd.tiff.path, ifd.index, len(offsets), ti.TileCount)
	}
	tc, err := ifd.newTileCodec(op, ti, pt)
	if err != nil {
		return err
	}

	separate := ti.PlanarConfig == Separate
	nsamples := ti.Samples
	if sample >= 0 {
		nsamples = 1
	}
	if err := buf.Reset(pt, pixel.PlaneShape(r.W, r.H, nsamples), pixel.DefaultStorageOrder(!separate), pixel.EndianNative); err != nil {
		return err
	}
	dst := buf.Bytes()
	size := tc.size
	spt := ti.SamplesPerTile()

	native := bufpool.Get(tc.nativeSize())
	defer bufpool.Put(native)

	samples := []int{0}
	switch {
	case separate && sample >= 0:
		samples = []int{sample}
	case separate:
		samples = make([]int, ti.Samples)
		for s := range samples {
			samples[s] = s
		}
	}

	for _, s := range samples {
		for _, tile := range ti.TileCoverage(r, s) {
			raw, err := ifd.tiff.readAt(offsets[tile], int(counts[tile]))
			if err != nil {
				return err
			}
			if err := tc.decode(raw, native, tile); err != nil {
				return &omefiles.FormatError{Op: op, Path: ifd.tiff.path, Msg: fmt.Sprintf("directory %d tile %d", ifd.index, tile), Err: err}
			}

			tr := ti.TileRegion(tile)
			is := r.Intersect(tr)
			for row := 0; row < is.H; row++ {
				src := native[((is.Y-tr.Y+row)*tr.W+is.X-tr.X)*spt*size:]
				src = src[:is.W*spt*size]
				pix := (is.Y-r.Y+row)*r.W + is.X - r.X
				switch {
				case separate:
					plane := s
					if sample >= 0 {
						plane = 0
					}
					copy(dst[(plane*r.W*r.H+pix)*size:], src)
				case sample >= 0:
					interleave.Extract(dst[pix*size:(pix+is.W)*size], src, spt, sample, size)
				default:
					copy(dst[pix*spt*size:], src)
				}
			}
		}
	}
	return nil
}

// WritePlane writes buf as the whole image.
func (ifd *IFD) WritePlane(buf *pixel.Variant) error {
	ti, err := ifd.TileInfo()
	if err != nil {
		return err
	}
	return ifd.writeImage("WritePlane", buf, PlaneRegion{W: ti.ImageWidth, H: ti.ImageHeight}, -1)
}

// WriteImage writes buf to region (x, y, w, h). buf must have the pixel
// type of the directory and extents (w, h, 1, 1, 1, samples, 1, 1, 1).
// Tiles are compressed and written as soon as they are complete;
// partially written tiles are kept until the directory is written.
func (ifd *IFD) WriteImage(buf *pixel.Variant, x, y, w, h int) error {
	return ifd.writeImage("WriteImage", buf, PlaneRegion{X: x, Y: y, W: w, H: h}, -1)
}

// WriteImageSample writes buf to one sample of region (x, y, w, h). buf
// must have extents (w, h, 1, 1, 1, 1, 1, 1, 1). A contiguous tile is
// stored once every sample of it has been written.
func (ifd *IFD) WriteImageSample(buf *pixel.Variant, x, y, w, h, sample int) error {
	if sample < 0 {
		return omefiles.Logicf("WriteImageSample", "invalid sample %d", sample)
	}
	return ifd.writeImage("WriteImageSample", buf, PlaneRegion{X: x, Y: y, W: w, H: h}, sample)
}

func (ifd *IFD) writeImage(op string, buf *pixel.Variant, r PlaneRegion, sample int) error {
	if ifd.tiff == nil || !ifd.tiff.write || ifd.written {
		return omefiles.Logicf(op, "directory %d is not writable", ifd.index)
	}
	ti, err := ifd.TileInfo()
	if err != nil {
		return err
	}
	pt, err := ifd.PixelType()
	if err != nil {
		return err
	}
	if err := checkRegion(op, ti, r); err != nil {
		return err
	}
	if sample >= ti.Samples {
		return omefiles.Logicf(op, "sample %d out of range [0, %d)", sample, ti.Samples)
	}
	if !buf.Valid() {
		return omefiles.Logicf(op, "invalid buffer")
	}
	if buf.PixelType() != pt {
		return omefiles.Logicf(op, "buffer pixel type %v does not match directory pixel type %v", buf.PixelType(), pt)
	}
	nsamples := ti.Samples
	if sample >= 0 {
		nsamples = 1
	}
	want := pixel.PlaneShape(r.W, r.H, nsamples)
	if buf.Shape() != want {
		return omefiles.Logicf(op, "buffer extents %v do not match region extents %v", buf.Shape(), want)
	}

	separate := ti.PlanarConfig == Separate
	src, err := layoutBytes(buf, !separate)
	if err != nil {
		return err
	}

	tc, err := ifd.newTileCodec(op, ti, pt)
	if err != nil {
		return err
	}
	cov, err := ifd.TileCoverage()
	if err != nil {
		return err
	}
	ifd.prepareWrite(ti)

	size := tc.size
	spt := ti.SamplesPerTile()
	samples := []int{0}
	switch {
	case separate && sample >= 0:
		samples = []int{sample}
	case separate:
		samples = make([]int, ti.Samples)
		for s := range samples {
			samples[s] = s
		}
	}

	for _, s := range samples {
		for _, tile := range ti.TileCoverage(r, s) {
			if ifd.counts[tile] != 0 {
				return omefiles.Logicf(op, "directory %d: tile %d has already been written", ifd.index, tile)
			}
			native, ok := ifd.pending[tile]
			if !ok {
				native = bufpool.GetZeroed(tc.nativeSize())
				ifd.pending[tile] = native
			}

			tr := ti.TileRegion(tile)
			is := r.Intersect(tr)
			for row := 0; row < is.H; row++ {
				dst := native[((is.Y-tr.Y+row)*tr.W+is.X-tr.X)*spt*size:]
				dst = dst[:is.W*spt*size]
				pix := (is.Y-r.Y+row)*r.W + is.X - r.X
				switch {
				case separate:
					plane := s
					if sample >= 0 {
						plane = 0
					}
					copy(dst, src[(plane*r.W*r.H+pix)*size:])
				case sample >= 0:
					interleave.Insert(dst, src[pix*size:(pix+is.W)*size], spt, sample, size)
				default:
					copy(dst, src[pix*spt*size:])
				}
			}
			if !separate && sample >= 0 {
				cov.InsertSample(tile, sample, is)
			} else {
				cov.Insert(tile, is)
			}
			if cov.Covered(tile) {
				if err := ifd.writeTile(tc, tile); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// layoutBytes returns the samples of buf in the default interleaved or
// planar storage order. Buffers in the other default order are converted
// plane by plane; any other layout is copied element by element.
func layoutBytes(buf *pixel.Variant, interleaved bool) ([]byte, error) {
	order := pixel.DefaultStorageOrder(interleaved)
	shape := buf.Shape()
	samples := shape[pixel.DimSubchannel]
	switch buf.StorageOrder() {
	case order:
		return buf.Bytes(), nil
	case pixel.DefaultStorageOrder(!interleaved):
		src := buf.Bytes()
		if samples == 1 {
			return src, nil
		}
		size := buf.PixelType().BytesPerPixel()
		planeBytes := len(src) / samples
		out := make([]byte, len(src))
		planes := make([][]byte, samples)
		if interleaved {
			for s := range planes {
				planes[s] = src[s*planeBytes : (s+1)*planeBytes]
			}
			interleave.Merge(out, planes, size)
		} else {
			for s := range planes {
				planes[s] = out[s*planeBytes : (s+1)*planeBytes]
			}
			interleave.Split(planes, src, size)
		}
		return out, nil
	}
	tmp, err := pixel.NewVariant(buf.PixelType(), shape, order, pixel.EndianNative)
	if err != nil {
		return nil, err
	}
	if err := tmp.CopyFrom(buf); err != nil {
		return nil, err
	}
	return tmp.Bytes(), nil
}

func (ifd *IFD) prepareWrite(ti TileInfo) {
	if ifd.pending == nil {
		ifd.pending = make(map[int][]byte)
	}
	if len(ifd.offsets) != ti.TileCount {
		ifd.offsets = make([]uint64, ti.TileCount)
		ifd.counts = make([]uint64, ti.TileCount)
	}
}

// writeTile encodes a pending tile and appends it to the file.
func (ifd *IFD) writeTile(tc *tileCodec, tile int) error {
	native := ifd.pending[tile]
	delete(ifd.pending, tile)
	if ifd.coverage != nil {
		ifd.coverage.Remove(tile)
	}
	defer bufpool.Put(native)

	enc, err := tc.encode(native, tile)
	if err != nil {
		return &omefiles.FormatError{Op: "WriteImage", Path: ifd.tiff.path, Msg: fmt.Sprintf("directory %d tile %d", ifd.index, tile), Err: err}
	}
	off, err := ifd.tiff.append(enc)
	if err != nil {
		return err
	}
	ifd.offsets[tile] = off
	ifd.counts[tile] = uint64(len(enc))
	return nil
}
