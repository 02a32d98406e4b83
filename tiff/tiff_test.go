package tiff

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/mrjoshuak/go-omefiles"
	"github.com/mrjoshuak/go-omefiles/pixel"
)

// fillVariant returns a buffer of pt with deterministic, comparable
// content.
func fillVariant(t *testing.T, pt pixel.Type, w, h, samples int, interleaved bool) *pixel.Variant {
	t.Helper()
	v, err := pixel.NewVariant(pt, pixel.PlaneShape(w, h, samples), pixel.DefaultStorageOrder(interleaved), pixel.EndianNative)
	if err != nil {
		t.Fatalf("NewVariant: %v", err)
	}
	switch pt {
	case pixel.Bit:
		b, _ := pixel.As[pixel.BitValue](v)
		for i := range b.Data() {
			b.Data()[i] = i%3 == 0 || i%7 == 0
		}
	case pixel.Float:
		b, _ := pixel.As[float32](v)
		for i := range b.Data() {
			b.Data()[i] = float32(i%1000)/8 - 17
		}
	case pixel.Double:
		b, _ := pixel.As[float64](v)
		for i := range b.Data() {
			b.Data()[i] = float64(i%977)*0.25 + 1e6
		}
	case pixel.ComplexFloat:
		b, _ := pixel.As[complex64](v)
		for i := range b.Data() {
			b.Data()[i] = complex(float32(i), float32(-i))
		}
	default:
		data := v.Bytes()
		for i := range data {
			data[i] = byte(i*31 + i/7)
		}
	}
	return v
}

type layout struct {
	name        string
	pt          pixel.Type
	w, h        int
	samples     int
	planar      PlanarConfig
	tiled       bool
	tileW       uint32
	tileH       uint32 // rows per strip when not tiled
	compression Compression
	predictor   Predictor
	order       binary.ByteOrder
	big         bool
}

func writeLayout(t *testing.T, path string, l layout, src *pixel.Variant) {
	t.Helper()
	opts := DefaultOptions()
	opts.BigTIFF = l.big
	if l.order != nil {
		opts.ByteOrder = l.order
	}
	f, err := Create(path, opts)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	ifd, err := f.CurrentDirectory()
	if err != nil {
		t.Fatalf("CurrentDirectory: %v", err)
	}
	must := func(err error) {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
	}
	must(ifd.SetImageWidth(uint32(l.w)))
	must(ifd.SetImageHeight(uint32(l.h)))
	must(ifd.SetPixelType(l.pt))
	must(ifd.SetSamplesPerPixel(uint16(l.samples)))
	must(ifd.SetPlanarConfiguration(l.planar))
	if l.tiled {
		must(ifd.SetTileType(Tile))
		must(ifd.SetTileWidth(l.tileW))
	}
	if l.tileH != 0 {
		must(ifd.SetTileHeight(l.tileH))
	}
	if l.compression != 0 {
		must(ifd.SetCompression(l.compression))
	}
	if l.predictor != 0 {
		must(ifd.SetPredictor(l.predictor))
	}
	must(ifd.WritePlane(src))
	must(f.Close())
}

func TestRoundTrip(t *testing.T) {
	tests := []layout{
		{name: "uint8 single strip", pt: pixel.Uint8, w: 37, h: 23, samples: 1, planar: Contig},
		{name: "uint8 strips", pt: pixel.Uint8, w: 37, h: 23, samples: 1, planar: Contig, tileH: 5},
		{name: "uint8 rgb contig tiles", pt: pixel.Uint8, w: 50, h: 35, samples: 3, planar: Contig, tiled: true, tileW: 16, tileH: 32},
		{name: "uint16 rgb separate tiles", pt: pixel.Uint16, w: 50, h: 35, samples: 3, planar: Separate, tiled: true, tileW: 32, tileH: 16},
		{name: "uint16 separate strips", pt: pixel.Uint16, w: 19, h: 17, samples: 2, planar: Separate, tileH: 4},
		{name: "int16 big endian", pt: pixel.Int16, w: 33, h: 9, samples: 1, planar: Contig, tileH: 2, order: binary.BigEndian},
		{name: "uint32 big endian deflate", pt: pixel.Uint32, w: 20, h: 20, samples: 1, planar: Contig, compression: CompressionAdobeDeflate, order: binary.BigEndian},
		{name: "int8 packbits", pt: pixel.Int8, w: 40, h: 10, samples: 1, planar: Contig, tileH: 3, compression: CompressionPackBits},
		{name: "uint16 deflate predictor", pt: pixel.Uint16, w: 45, h: 21, samples: 3, planar: Contig, tileH: 8, compression: CompressionDeflate, predictor: PredictorHorizontal},
		{name: "uint16 big endian predictor", pt: pixel.Uint16, w: 45, h: 21, samples: 1, planar: Contig, compression: CompressionAdobeDeflate, predictor: PredictorHorizontal, order: binary.BigEndian},
		{name: "float zstd fp predictor", pt: pixel.Float, w: 48, h: 48, samples: 1, planar: Contig, tiled: true, tileW: 32, tileH: 32, compression: CompressionZstd, predictor: PredictorFloatingPoint},
		{name: "double big endian fp predictor", pt: pixel.Double, w: 17, h: 5, samples: 2, planar: Contig, compression: CompressionAdobeDeflate, predictor: PredictorFloatingPoint, order: binary.BigEndian},
		{name: "complex float", pt: pixel.ComplexFloat, w: 12, h: 7, samples: 1, planar: Contig, order: binary.BigEndian},
		{name: "bit strips", pt: pixel.Bit, w: 13, h: 11, samples: 1, planar: Contig, tileH: 3},
		{name: "bit tiles deflate", pt: pixel.Bit, w: 70, h: 20, samples: 1, planar: Contig, tiled: true, tileW: 32, tileH: 16, compression: CompressionAdobeDeflate},
		{name: "bigtiff tiles", pt: pixel.Uint8, w: 64, h: 40, samples: 4, planar: Contig, tiled: true, tileW: 48, tileH: 16, big: true},
		{name: "bigtiff big endian separate", pt: pixel.Float, w: 10, h: 10, samples: 3, planar: Separate, big: true, order: binary.BigEndian},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "test.tif")
			src := fillVariant(t, tt.pt, tt.w, tt.h, tt.samples, tt.planar == Contig)
			writeLayout(t, path, tt, src)

			f, err := Open(path)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer f.Close()

			if f.IsBigTIFF() != tt.big {
				t.Errorf("IsBigTIFF() = %v, want %v", f.IsBigTIFF(), tt.big)
			}
			wantOrder := tt.order
			if wantOrder == nil {
				wantOrder = binary.LittleEndian
			}
			if f.ByteOrder() != wantOrder {
				t.Errorf("ByteOrder() = %v, want %v", f.ByteOrder(), wantOrder)
			}
			if n := f.DirectoryCount(); n != 1 {
				t.Fatalf("DirectoryCount() = %d, want 1", n)
			}
			ifd, err := f.Directory(0)
			if err != nil {
				t.Fatal(err)
			}
			if ifd.TileType() != Strip && !tt.tiled {
				t.Errorf("TileType() = %v, want Strip", ifd.TileType())
			}
			pt, err := ifd.PixelType()
			if err != nil || pt != tt.pt {
				t.Fatalf("PixelType() = %v, %v, want %v", pt, err, tt.pt)
			}

			var got pixel.Variant
			if err := ifd.ReadPlane(&got); err != nil {
				t.Fatalf("ReadPlane: %v", err)
			}
			if !got.Equal(src) {
				t.Error("plane read back differs from plane written")
			}
			if got.StorageOrder().Interleaved() != (tt.planar == Contig) {
				t.Errorf("read buffer interleaved = %v, want %v", got.StorageOrder().Interleaved(), tt.planar == Contig)
			}
		})
	}
}

func TestReadRegionAndSample(t *testing.T) {
	for _, planar := range []PlanarConfig{Contig, Separate} {
		t.Run(planar.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "region.tif")
			l := layout{pt: pixel.Uint16, w: 50, h: 40, samples: 3, planar: planar, tiled: true, tileW: 16, tileH: 16}
			src := fillVariant(t, l.pt, l.w, l.h, l.samples, planar == Contig)
			writeLayout(t, path, l, src)

			f, err := Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			ifd, _ := f.Directory(0)
			full, _ := pixel.As[uint16](src)

			var region pixel.Variant
			if err := ifd.ReadImage(&region, 7, 11, 30, 20); err != nil {
				t.Fatalf("ReadImage: %v", err)
			}
			rb, ok := pixel.As[uint16](&region)
			if !ok {
				t.Fatalf("region pixel type = %v", region.PixelType())
			}
			if got, want := region.Shape(), pixel.PlaneShape(30, 20, 3); got != want {
				t.Fatalf("region shape = %v, want %v", got, want)
			}
			for y := 0; y < 20; y++ {
				for x := 0; x < 30; x++ {
					for s := 0; s < 3; s++ {
						var gi, si pixel.Index
						gi[pixel.DimX], gi[pixel.DimY], gi[pixel.DimSubchannel] = x, y, s
						si[pixel.DimX], si[pixel.DimY], si[pixel.DimSubchannel] = x+7, y+11, s
						if rb.At(gi) != full.At(si) {
							t.Fatalf("pixel (%d,%d,%d) = %d, want %d", x, y, s, rb.At(gi), full.At(si))
						}
					}
				}
			}

			var one pixel.Variant
			if err := ifd.ReadImageSample(&one, 3, 2, 20, 30, 2); err != nil {
				t.Fatalf("ReadImageSample: %v", err)
			}
			ob, _ := pixel.As[uint16](&one)
			for y := 0; y < 30; y++ {
				for x := 0; x < 20; x++ {
					var gi, si pixel.Index
					gi[pixel.DimX], gi[pixel.DimY] = x, y
					si[pixel.DimX], si[pixel.DimY], si[pixel.DimSubchannel] = x+3, y+2, 2
					if ob.At(gi) != full.At(si) {
						t.Fatalf("sample pixel (%d,%d) = %d, want %d", x, y, ob.At(gi), full.At(si))
					}
				}
			}

			if err := ifd.ReadImage(&region, 40, 0, 11, 1); !omefiles.IsLogic(err) {
				t.Errorf("ReadImage outside image: got %v, want logic error", err)
			}
			if err := ifd.ReadImageSample(&region, 0, 0, 1, 1, 3); !omefiles.IsLogic(err) {
				t.Errorf("ReadImageSample(sample 3): got %v, want logic error", err)
			}
		})
	}
}

func TestWriteRegionsOutOfOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "regions.tif")
	const w, h = 40, 36
	src := fillVariant(t, pixel.Uint8, w, h, 1, true)
	full, _ := pixel.As[uint8](src)

	f, err := Create(path, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	ifd, _ := f.CurrentDirectory()
	ifd.SetImageWidth(w)
	ifd.SetImageHeight(h)
	ifd.SetPixelType(pixel.Uint8)
	ifd.SetTileType(Tile)
	ifd.SetTileWidth(16)
	ifd.SetTileHeight(16)
	ifd.SetCompression(CompressionAdobeDeflate)

	// Quadrants in reverse order, straddling tile boundaries.
	regions := []PlaneRegion{{20, 18, 20, 18}, {0, 18, 20, 18}, {20, 0, 20, 18}, {0, 0, 20, 18}}
	for _, r := range regions {
		part, _ := pixel.NewVariant(pixel.Uint8, pixel.PlaneShape(r.W, r.H, 1), pixel.DefaultStorageOrder(true), pixel.EndianNative)
		pb, _ := pixel.As[uint8](part)
		for y := 0; y < r.H; y++ {
			for x := 0; x < r.W; x++ {
				var pi, si pixel.Index
				pi[pixel.DimX], pi[pixel.DimY] = x, y
				si[pixel.DimX], si[pixel.DimY] = x+r.X, y+r.Y
				pb.Set(pi, full.At(si))
			}
		}
		if err := ifd.WriteImage(part, r.X, r.Y, r.W, r.H); err != nil {
			t.Fatalf("WriteImage(%v): %v", r, err)
		}
	}
	cov, _ := ifd.TileCoverage()
	if p := cov.Pending(); len(p) != 0 {
		t.Errorf("Pending() = %v after covering the image", p)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	rf, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()
	rifd, _ := rf.Directory(0)
	var got pixel.Variant
	if err := rifd.ReadPlane(&got); err != nil {
		t.Fatal(err)
	}
	if !got.Equal(src) {
		t.Error("image assembled from regions differs")
	}
}

func TestUnwrittenTilesAreZero(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.tif")
	f, err := Create(path, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	ifd, _ := f.CurrentDirectory()
	ifd.SetImageWidth(32)
	ifd.SetImageHeight(32)
	ifd.SetPixelType(pixel.Uint8)
	ifd.SetTileType(Tile)
	ifd.SetTileWidth(16)
	ifd.SetTileHeight(16)

	part := fillVariant(t, pixel.Uint8, 4, 4, 1, true)
	if err := ifd.WriteImage(part, 2, 2, 4, 4); err != nil {
		t.Fatal(err)
	}
	if err := ifd.WriteImage(part, 2, 2, 4, 4); err != nil {
		t.Errorf("rewriting a pending region: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	rf, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()
	rifd, _ := rf.Directory(0)
	var got pixel.Variant
	if err := rifd.ReadPlane(&got); err != nil {
		t.Fatal(err)
	}
	gb, _ := pixel.As[uint8](&got)
	pb, _ := pixel.As[uint8](part)
	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			var idx pixel.Index
			idx[pixel.DimX], idx[pixel.DimY] = x, y
			want := uint8(0)
			if x >= 2 && x < 6 && y >= 2 && y < 6 {
				var pi pixel.Index
				pi[pixel.DimX], pi[pixel.DimY] = x-2, y-2
				want = pb.At(pi)
			}
			if gb.At(idx) != want {
				t.Fatalf("pixel (%d,%d) = %d, want %d", x, y, gb.At(idx), want)
			}
		}
	}
}

func TestWriteErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "errors.tif")
	f, err := Create(path, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	ifd, _ := f.CurrentDirectory()
	ifd.SetImageWidth(16)
	ifd.SetImageHeight(16)
	ifd.SetPixelType(pixel.Uint16)

	if err := ifd.SetTileWidth(16); !omefiles.IsLogic(err) {
		t.Errorf("SetTileWidth on strips: got %v, want logic error", err)
	}
	if err := ifd.SetCompression(CompressionLZW); !omefiles.IsFormat(err) {
		t.Errorf("SetCompression(LZW): got %v, want format error", err)
	}
	if err := ifd.SetSamplesPerPixel(0); !omefiles.IsLogic(err) {
		t.Errorf("SetSamplesPerPixel(0): got %v, want logic error", err)
	}

	wrongType := fillVariant(t, pixel.Uint8, 16, 16, 1, true)
	if err := ifd.WritePlane(wrongType); !omefiles.IsLogic(err) {
		t.Errorf("WritePlane with wrong pixel type: got %v, want logic error", err)
	}
	wrongShape := fillVariant(t, pixel.Uint16, 8, 16, 1, true)
	if err := ifd.WritePlane(wrongShape); !omefiles.IsLogic(err) {
		t.Errorf("WritePlane with wrong shape: got %v, want logic error", err)
	}
	part := fillVariant(t, pixel.Uint16, 16, 16, 1, true)
	if err := ifd.WriteImage(part, 1, 0, 16, 16); !omefiles.IsLogic(err) {
		t.Errorf("WriteImage past the edge: got %v, want logic error", err)
	}
	if err := ifd.WritePlane(part); err != nil {
		t.Fatal(err)
	}
	if err := ifd.WritePlane(part); !omefiles.IsLogic(err) {
		t.Errorf("rewriting a stored strip: got %v, want logic error", err)
	}
	if err := ifd.SetPhotometricInterpretation(PhotometricRGB); !omefiles.IsLogic(err) {
		t.Errorf("SetPhotometricInterpretation after writing: got %v, want logic error", err)
	}

	if _, err := ifd.TileInfo(); err != nil {
		t.Fatal(err)
	}
	ifd2 := newIFD(nil, 0)
	GetField(ifd2, TagImageWidth).Set(20)
	GetField(ifd2, TagImageLength).Set(20)
	ifd2.SetTileType(Tile)
	GetField(ifd2, TagTileWidth).Set(20)
	GetField(ifd2, TagTileLength).Set(16)
	if _, err := ifd2.TileInfo(); err == nil {
		t.Error("TileInfo accepted a tile width that is not a multiple of 16")
	}
}

func TestMultipleDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "multi.tif")
	f, err := Create(path, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	var planes []*pixel.Variant
	for i := 0; i < 4; i++ {
		ifd, err := f.CurrentDirectory()
		if err != nil {
			t.Fatal(err)
		}
		if ifd.Index() != i {
			t.Errorf("directory index = %d, want %d", ifd.Index(), i)
		}
		ifd.SetImageWidth(8)
		ifd.SetImageHeight(6)
		ifd.SetPixelType(pixel.Uint8)
		GetField(ifd, TagPageName).Set("page")
		v := fillVariant(t, pixel.Uint8, 8, 6, 1, true)
		v.Bytes()[0] = byte(i)
		planes = append(planes, v)
		if err := ifd.WritePlane(v); err != nil {
			t.Fatal(err)
		}
		if err := f.WriteCurrentDirectory(); err != nil {
			t.Fatal(err)
		}
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	rf, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()
	if n := rf.DirectoryCount(); n != 4 {
		t.Fatalf("DirectoryCount() = %d, want 4", n)
	}
	for i, ifd := range rf.Directories() {
		var got pixel.Variant
		if err := ifd.ReadPlane(&got); err != nil {
			t.Fatal(err)
		}
		if !got.Equal(planes[i]) {
			t.Errorf("directory %d differs", i)
		}
		if got := ifd.Last(); got != (i == 3) {
			t.Errorf("directory %d Last() = %v", i, got)
		}
	}
	if _, err := rf.Directory(4); !omefiles.IsLogic(err) {
		t.Errorf("Directory(4): got %v, want logic error", err)
	}
	if _, err := rf.CurrentDirectory(); !omefiles.IsLogic(err) {
		t.Errorf("CurrentDirectory on reader: got %v, want logic error", err)
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, data []byte) string {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, data, 0o644); err != nil {
			t.Fatal(err)
		}
		return p
	}

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"short", []byte("II*")},
		{"bad magic", []byte("XX*\x00\x08\x00\x00\x00")},
		{"bad version", []byte("II\x2C\x00\x08\x00\x00\x00")},
		{"bad bigtiff offset size", []byte("II\x2B\x00\x04\x00\x00\x00\x10\x00\x00\x00\x00\x00\x00\x00")},
		{"ifd past end", []byte("II*\x00\xFF\x00\x00\x00")},
		// One entry-less directory at 8 whose next pointer is itself.
		{"loop", []byte("II*\x00\x08\x00\x00\x00\x00\x00\x08\x00\x00\x00")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Open(write(tt.name+".tif", tt.data))
			if !omefiles.IsFormat(err) {
				t.Errorf("Open: got %v, want format error", err)
			}
		})
	}

	if _, err := Open(filepath.Join(dir, "missing.tif")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open(missing): got %v, want ErrNotExist", err)
	}
}

func TestCloseWithoutData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.tif")
	f, err := Create(path, Options{BigTIFF: true})
	if err != nil {
		t.Fatal(err)
	}
	ifd, _ := f.CurrentDirectory()
	ifd.SetImageWidth(70000)
	ifd.SetImageHeight(70000)
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
	if _, err := f.CurrentDirectory(); !errors.Is(err, ErrClosed) {
		t.Errorf("CurrentDirectory after Close: got %v, want ErrClosed", err)
	}

	st, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if st.Size() != 16 {
		t.Errorf("file size = %d, want a bare 16-byte BigTIFF header", st.Size())
	}
}

func TestWriteImageSample(t *testing.T) {
	for _, planar := range []PlanarConfig{Contig, Separate} {
		t.Run(planar.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "samples.tif")
			const w, h, samples = 40, 20, 3
			src := fillVariant(t, pixel.Uint16, w, h, samples, true)
			full, _ := pixel.As[uint16](src)

			f, err := Create(path, DefaultOptions())
			if err != nil {
				t.Fatal(err)
			}
			ifd, _ := f.CurrentDirectory()
			ifd.SetImageWidth(w)
			ifd.SetImageHeight(h)
			ifd.SetPixelType(pixel.Uint16)
			ifd.SetSamplesPerPixel(samples)
			ifd.SetPlanarConfiguration(planar)
			ifd.SetTileType(Tile)
			ifd.SetTileWidth(16)
			ifd.SetTileHeight(16)

			// Samples in reverse order; contiguous tiles wait for all three.
			for s := samples - 1; s >= 0; s-- {
				part, _ := pixel.NewVariant(pixel.Uint16, pixel.PlaneShape(w, h, 1), pixel.DefaultStorageOrder(true), pixel.EndianNative)
				pb, _ := pixel.As[uint16](part)
				for y := 0; y < h; y++ {
					for x := 0; x < w; x++ {
						var pi, si pixel.Index
						pi[pixel.DimX], pi[pixel.DimY] = x, y
						si[pixel.DimX], si[pixel.DimY], si[pixel.DimSubchannel] = x, y, s
						pb.Set(pi, full.At(si))
					}
				}
				if err := ifd.WriteImageSample(part, 0, 0, w, h, s); err != nil {
					t.Fatalf("WriteImageSample(%d): %v", s, err)
				}
				cov, _ := ifd.TileCoverage()
				want := 0
				if planar == Contig && s > 0 {
					want = 6
				}
				if got := len(cov.Pending()); got != want {
					t.Errorf("after sample %d: %d pending tiles, want %d", s, got, want)
				}
			}

			one := fillVariant(t, pixel.Uint16, 4, 4, 1, true)
			if err := ifd.WriteImageSample(one, 0, 0, 4, 4, 0); !omefiles.IsLogic(err) {
				t.Errorf("rewriting a stored tile: got %v, want logic error", err)
			}
			if err := ifd.WriteImageSample(one, 0, 0, 4, 4, samples); !omefiles.IsLogic(err) {
				t.Errorf("WriteImageSample(sample %d): got %v, want logic error", samples, err)
			}
			three := fillVariant(t, pixel.Uint16, 4, 4, samples, true)
			if err := ifd.WriteImageSample(three, 0, 0, 4, 4, 1); !omefiles.IsLogic(err) {
				t.Errorf("WriteImageSample with %d samples: got %v, want logic error", samples, err)
			}
			if err := f.Close(); err != nil {
				t.Fatal(err)
			}

			rf, err := Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer rf.Close()
			rifd, _ := rf.Directory(0)
			var got pixel.Variant
			if err := rifd.ReadPlane(&got); err != nil {
				t.Fatal(err)
			}
			if !got.Equal(src) {
				t.Error("image assembled from samples differs")
			}
		})
	}
}

func TestWriteConvertsStorageOrder(t *testing.T) {
	for _, planar := range []PlanarConfig{Contig, Separate} {
		t.Run(planar.String(), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "order.tif")
			l := layout{pt: pixel.Int32, w: 21, h: 13, samples: 4, planar: planar, tileH: 4}
			// Interleaved buffers for separate directories and planar
			// buffers for contiguous ones.
			src := fillVariant(t, l.pt, l.w, l.h, l.samples, planar == Separate)
			writeLayout(t, path, l, src)

			f, err := Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer f.Close()
			ifd, _ := f.Directory(0)
			var got pixel.Variant
			if err := ifd.ReadPlane(&got); err != nil {
				t.Fatal(err)
			}
			if !got.Equal(src) {
				t.Error("plane read back differs from plane written")
			}
		})
	}
}
