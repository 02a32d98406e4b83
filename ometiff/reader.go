package ometiff

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/mrjoshuak/go-omefiles"
	"github.com/mrjoshuak/go-omefiles/dimension"
	"github.com/mrjoshuak/go-omefiles/meta"
	"github.com/mrjoshuak/go-omefiles/omexml"
	"github.com/mrjoshuak/go-omefiles/pixel"
	"github.com/mrjoshuak/go-omefiles/tiff"
)

type readerSeries struct {
	core   *meta.CoreMetadata
	planes []planeState
}

// Reader reads the series of an OME-TIFF dataset. The dataset is
// described by the OME-XML of the file it was opened with; planes stored
// in other files of the dataset are read from those files, which are
// opened on first use.
//
// A Reader is not safe for concurrent use.
type Reader struct {
	path   string
	dir    string
	md     *omexml.Metadata
	log    *slog.Logger
	tiffs  map[string]*tiff.TIFF
	series []readerSeries
}

// Open opens the OME-TIFF file at path and indexes every plane of the
// dataset it describes.
func Open(path string) (*Reader, error) {
	return OpenWithLogger(path, slog.Default())
}

// OpenWithLogger is Open with warnings about inconsistent metadata sent
// to log, or slog.Default if nil.
func OpenWithLogger(path string, log *slog.Logger) (*Reader, error) {
	if log == nil {
		log = slog.Default()
	}
	canonical := canonicalPath(path)
	r := &Reader{
		path:  canonical,
		dir:   filepath.Dir(canonical),
		log:   log,
		tiffs: make(map[string]*tiff.TIFF),
	}
	if err := r.init(); err != nil {
		r.Close()
		return nil, err
	}
	return r, nil
}

func (r *Reader) init() error {
	t, err := r.open(r.path)
	if err != nil {
		return err
	}
	ifd0, err := t.Directory(0)
	if err != nil {
		return &omefiles.FormatError{Op: "Open", Path: r.path, Msg: "no image directories", Err: err}
	}
	desc, err := tiff.GetField(ifd0, tiff.TagImageDescription).Get()
	if err != nil {
		return &omefiles.FormatError{Op: "Open", Path: r.path, Msg: "no OME-XML ImageDescription", Err: err}
	}
	md, err := omexml.ParseString(desc)
	if err != nil {
		return &omefiles.FormatError{Op: "Open", Path: r.path, Msg: "Could not parse OME-XML from TIFF ImageDescription", Err: err}
	}
	r.md = r.binaryOnly(md)

	files := r.usedFiles()
	for s := range r.md.ImageCount() {
		rs, err := r.indexSeries(s, files, t)
		if err != nil {
			return err
		}
		if rs != nil {
			r.series = append(r.series, *rs)
		}
	}
	return nil
}

// binaryOnly follows a BinaryOnly reference to the companion metadata
// file, keeping md if it cannot be read.
func (r *Reader) binaryOnly(md *omexml.Metadata) *omexml.Metadata {
	bo := md.Root.BinaryOnly
	if bo == nil || bo.MetadataFile == "" {
		return md
	}
	f, err := os.Open(filepath.Join(r.dir, filepath.FromSlash(bo.MetadataFile)))
	if err != nil {
		r.log.Warn("companion metadata file not readable", "path", bo.MetadataFile, "err", err)
		return md
	}
	defer f.Close()
	companion, err := omexml.Parse(f)
	if err != nil {
		r.log.Warn("companion metadata file not parsed", "path", bo.MetadataFile, "err", err)
		return md
	}
	return companion
}

// usedFiles maps the UUID of every file named by a TiffData element to
// its path.
func (r *Reader) usedFiles() map[string]string {
	files := make(map[string]string)
	if u := r.md.Root.UUID; u != "" {
		files[u] = r.path
	}
	for _, img := range r.md.Root.Images {
		for _, td := range img.Pixels.TiffData {
			if td.UUID == nil || td.UUID.Value == "" || td.UUID.FileName == "" {
				continue
			}
			if _, ok := files[td.UUID.Value]; !ok {
				files[td.UUID.Value] = r.resolve(td.UUID.FileName)
			}
		}
	}
	return files
}

// resolve locates a file named by a TiffData UUID. Names are relative to
// the directory of the opened file; absolute names that no longer exist
// are retried by base name. Missing files resolve to the opened file.
func (r *Reader) resolve(name string) string {
	p := filepath.FromSlash(name)
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.dir, p)
	}
	if _, err := os.Stat(p); err == nil {
		return canonicalPath(p)
	}
	if alt := filepath.Join(r.dir, filepath.Base(p)); alt != p {
		if _, err := os.Stat(alt); err == nil {
			return canonicalPath(alt)
		}
	}
	r.log.Warn(fmt.Sprintf("UUID filename %s not found; falling back to %s", name, r.path))
	return r.path
}

// tiffDataValues applies the TiffData defaults: IFD 0, coordinates 0,
// and one plane when IFD is given. A zero plane count with no PlaneCount
// attribute means every following plane.
func tiffDataValues(td omexml.TiffData) (ifd, count, z, t, c int, explicitCount bool) {
	if td.IFD != nil {
		ifd = *td.IFD
		count = 1
	}
	if td.PlaneCount != nil {
		count = *td.PlaneCount
		explicitCount = true
	}
	if td.FirstZ != nil {
		z = *td.FirstZ
	}
	if td.FirstT != nil {
		t = *td.FirstT
	}
	if td.FirstC != nil {
		c = *td.FirstC
	}
	return
}

func (r *Reader) indexSeries(s int, files map[string]string, first *tiff.TIFF) (*readerSeries, error) {
	order, err := r.md.PixelsDimensionOrder(s)
	if err != nil {
		return nil, &omefiles.FormatError{Op: "Open", Path: r.path, Msg: "Incomplete Pixels metadata", Err: err}
	}

	var sizeC []int
	if n := r.md.ChannelCount(s); n > 0 {
		for ch := range n {
			sizeC = append(sizeC, max(r.md.ChannelSamplesPerPixel(s, ch), 1))
		}
	} else {
		sizeC = slices.Repeat([]int{1}, max(r.md.PixelsSizeC(s), 1))
	}
	effC := len(sizeC)
	sizeZ := max(r.md.PixelsSizeZ(s), 1)
	sizeT := max(r.md.PixelsSizeT(s), 1)
	num := effC * sizeZ * sizeT

	planes := make([]planeState, num)
	for i, td := range r.md.Root.Images[s].Pixels.TiffData {
		ifd, count, z, t, c, explicit := tiffDataValues(td)
		if explicit && count == 0 {
			r.log.Debug("series has no planes", "series", s)
			return nil, nil
		}
		if z >= sizeZ || c >= effC || t >= sizeT {
			r.log.Warn(fmt.Sprintf("Found invalid TiffData: Z=%d, C=%d, T=%d", z, c, t), "series", s, "tiffData", i)
			break
		}
		index, err := dimension.PlaneIndex(string(order), sizeZ, effC, sizeT, num, z, c, t)
		if err != nil {
			return nil, err
		}

		file := r.path
		switch {
		case td.UUID != nil && td.UUID.FileName != "":
			file = r.resolve(td.UUID.FileName)
		case td.UUID != nil && td.UUID.Value != "":
			if f, ok := files[td.UUID.Value]; ok {
				file = f
			}
		}

		for q := range count {
			if index+q >= num {
				break
			}
			planes[index+q] = planeState{file: file, ifd: ifd + q, certain: true, status: planePresent}
		}
		if count == 0 {
			for no := index; no < num; no++ {
				if no > index && planes[no].certain {
					break
				}
				next := ifd
				if no > index {
					next = planes[no-1].ifd + 1
				}
				planes[no] = planeState{file: file, ifd: next, status: planePresent}
			}
		}
	}

	for no, p := range planes {
		if p.file != "" {
			continue
		}
		r.log.Warn(fmt.Sprintf("Image ID: %s missing plane #%d", r.md.Root.Images[s].ID, no))
		for i := range planes {
			planes[i] = planeState{file: r.path, ifd: i, status: planePresent}
		}
		if n := first.DirectoryCount(); n < num {
			for i := n; i < num; i++ {
				planes[i].status = planeAbsent
			}
		}
		break
	}

	core, err := r.seriesCore(s, planes, sizeC, num)
	if err != nil {
		return nil, &omefiles.FormatError{Op: "Open", Path: r.path, Msg: "Incomplete Pixels metadata", Err: err}
	}
	return &readerSeries{core: core, planes: planes}, nil
}

func (r *Reader) seriesCore(s int, planes []planeState, sizeC []int, num int) (*meta.CoreMetadata, error) {
	c, err := r.md.CoreMetadata(s)
	if err != nil {
		return nil, err
	}
	if num == 0 {
		return nil, errors.New("series has no planes")
	}
	ifd0, err := r.directory(planes[0])
	if err != nil {
		return nil, err
	}
	tc, err := ifd0.CoreMetadata()
	if err != nil {
		return nil, err
	}

	c.SizeZ = max(c.SizeZ, 1)
	c.SizeT = max(c.SizeT, 1)
	c.ImageCount = num
	c.OrderCertain = true
	c.LittleEndian = pixel.EndianNative.Resolve() == pixel.EndianLittle
	c.Indexed = tc.Indexed
	c.SeriesMetadata.Merge(tc.SeriesMetadata, "")

	effC := len(sizeC)
	for ch := range effC {
		no, err := dimension.PlaneIndex(string(c.DimensionOrder), c.SizeZ, effC, c.SizeT, num, 0, ch, 0)
		if err != nil {
			return nil, err
		}
		ifd, err := r.directory(planes[no])
		if err != nil {
			return nil, err
		}
		spp, err := ifd.SamplesPerPixel()
		if err != nil {
			return nil, err
		}
		if int(spp) != sizeC[ch] {
			r.log.Warn(fmt.Sprintf("SamplesPerPixel mismatch: OME=%d, TIFF=%d", sizeC[ch], spp), "series", s, "channel", ch)
			sizeC[ch] = int(spp)
		}
	}
	total := 0
	for _, n := range sizeC {
		total += n
	}
	if total != r.md.PixelsSizeC(s) {
		r.log.Warn(fmt.Sprintf("SizeC mismatch: Channels=%d, Pixels=%d", total, r.md.PixelsSizeC(s)), "series", s)
	}
	c.SizeC = total
	c.RGB = sizeC[0] > 1
	c.Interleaved = c.RGB && tc.Interleaved

	if c.SizeX != tc.SizeX {
		r.log.Warn(fmt.Sprintf("SizeX mismatch: OME=%d, TIFF=%d", c.SizeX, tc.SizeX), "series", s)
	}
	if c.SizeY != tc.SizeY {
		r.log.Warn(fmt.Sprintf("SizeY mismatch: OME=%d, TIFF=%d", c.SizeY, tc.SizeY), "series", s)
	}
	if c.PixelType != tc.PixelType {
		r.log.Warn(fmt.Sprintf("PixelType mismatch: OME=%v, TIFF=%v", c.PixelType, tc.PixelType), "series", s)
	}
	return c, nil
}

func (r *Reader) open(path string) (*tiff.TIFF, error) {
	if t, ok := r.tiffs[path]; ok {
		return t, nil
	}
	t, err := tiff.Open(path)
	if err != nil {
		return nil, err
	}
	r.tiffs[path] = t
	return t, nil
}

func (r *Reader) directory(p planeState) (*tiff.IFD, error) {
	if p.status != planePresent {
		return nil, omefiles.Formatf("Read", "%s: directory %d is not present", p.file, p.ifd)
	}
	t, err := r.open(p.file)
	if err != nil {
		return nil, err
	}
	return t.Directory(p.ifd)
}

// Metadata returns the OME-XML model of the dataset.
func (r *Reader) Metadata() *omexml.Metadata { return r.md }

// SeriesCount returns the number of series with pixel data.
func (r *Reader) SeriesCount() int { return len(r.series) }

func (r *Reader) seriesAt(op string, series int) (*readerSeries, error) {
	if series < 0 || series >= len(r.series) {
		return nil, omefiles.Logicf(op, "series %d out of range [0, %d)", series, len(r.series))
	}
	return &r.series[series], nil
}

// CoreMetadata returns a copy of the descriptor of a series.
func (r *Reader) CoreMetadata(series int) (*meta.CoreMetadata, error) {
	rs, err := r.seriesAt("CoreMetadata", series)
	if err != nil {
		return nil, err
	}
	return rs.core.Clone(), nil
}

// PlaneIndex returns the plane index of coordinates (z, c, t), where c
// counts channel planes rather than samples.
func (r *Reader) PlaneIndex(series, z, c, t int) (int, error) {
	rs, err := r.seriesAt("PlaneIndex", series)
	if err != nil {
		return 0, err
	}
	core := rs.core
	return dimension.PlaneIndex(string(core.DimensionOrder), core.SizeZ, core.EffectiveSizeC(), core.SizeT, core.ImageCount, z, c, t)
}

// PlaneFile returns the file and directory index holding a plane.
func (r *Reader) PlaneFile(series, plane int) (string, int, error) {
	rs, err := r.seriesAt("PlaneFile", series)
	if err != nil {
		return "", 0, err
	}
	if plane < 0 || plane >= len(rs.planes) {
		return "", 0, omefiles.Logicf("PlaneFile", "plane %d out of range [0, %d)", plane, len(rs.planes))
	}
	p := rs.planes[plane]
	return p.file, p.ifd, nil
}

// ReadPlane reads a whole plane into buf.
func (r *Reader) ReadPlane(series, plane int, buf *pixel.Variant) error {
	rs, err := r.seriesAt("ReadPlane", series)
	if err != nil {
		return err
	}
	return r.ReadRegion(series, plane, buf, 0, 0, rs.core.SizeX, rs.core.SizeY)
}

// ReadRegion reads region (x, y, w, h) of a plane into buf, which is
// reshaped to (w, h, 1, 1, 1, samples, 1, 1, 1).
func (r *Reader) ReadRegion(series, plane int, buf *pixel.Variant, x, y, w, h int) error {
	rs, err := r.seriesAt("ReadRegion", series)
	if err != nil {
		return err
	}
	if plane < 0 || plane >= len(rs.planes) {
		return omefiles.Logicf("ReadRegion", "plane %d out of range [0, %d)", plane, len(rs.planes))
	}
	ifd, err := r.directory(rs.planes[plane])
	if err != nil {
		return err
	}
	return ifd.ReadImage(buf, x, y, w, h)
}

// UsedFiles returns the files the planes of every series are stored in.
func (r *Reader) UsedFiles() []string {
	seen := make(map[string]bool)
	for _, rs := range r.series {
		for _, p := range rs.planes {
			seen[p.file] = true
		}
	}
	files := make([]string, 0, len(seen))
	for f := range seen {
		files = append(files, f)
	}
	slices.Sort(files)
	return files
}

// Close closes every open file of the dataset.
func (r *Reader) Close() error {
	var errs []error
	for path, t := range r.tiffs {
		if err := t.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(r.tiffs, path)
	}
	return errors.Join(errs...)
}
