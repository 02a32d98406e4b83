package tiff

import (
	"bytes"
	"encoding/binary"
	"errors"
	"log/slog"
	"path/filepath"
	"slices"
	"testing"

	"github.com/mrjoshuak/go-omefiles"
	"github.com/mrjoshuak/go-omefiles/dimension"
	"github.com/mrjoshuak/go-omefiles/meta"
	"github.com/mrjoshuak/go-omefiles/pixel"
)

func TestFieldsRoundTrip(t *testing.T) {
	for _, tc := range []struct {
		name  string
		big   bool
		order binary.ByteOrder
	}{
		{"classic little endian", false, binary.LittleEndian},
		{"classic big endian", false, binary.BigEndian},
		{"bigtiff big endian", true, binary.BigEndian},
	} {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "fields.tif")
			f, err := Create(path, Options{BigTIFF: tc.big, ByteOrder: tc.order})
			if err != nil {
				t.Fatal(err)
			}
			ifd, _ := f.CurrentDirectory()
			ifd.SetImageWidth(16)
			ifd.SetImageHeight(16)
			ifd.SetPixelType(pixel.Uint16)
			ifd.SetSamplesPerPixel(3)

			desc := "a description long enough to be stored out of line"
			GetField(ifd, TagImageDescription).Set(desc)
			GetField(ifd, TagSoftware).Set("ome-files")
			GetField(ifd, TagXResolution).Set(72)
			GetField(ifd, TagYResolution).Set(0.125)
			GetField(ifd, TagPageNumber).Set([2]uint16{3, 10})
			GetField(ifd, TagInkNames).Set([]string{"cyan", "magenta"})
			GetField(ifd, TagWhitePoint).Set([2]float64{0.3127, 0.329})
			GetField(ifd, TagExtraSamples).Set([]ExtraSample{ExtraSampleUnassAlpha})
			GetField(ifd, TagXMLPacket).Set([]byte("<x/>"))
			cmap := [3][]uint16{{1, 2}, {3, 4}, {5, 6}}
			GetField(ifd, TagColorMap).Set(cmap)

			if err := ifd.WritePlane(fillVariant(t, pixel.Uint16, 16, 16, 3, true)); err != nil {
				t.Fatal(err)
			}
			if err := f.Close(); err != nil {
				t.Fatal(err)
			}

			rf, err := Open(path)
			if err != nil {
				t.Fatal(err)
			}
			defer rf.Close()
			r, _ := rf.Directory(0)

			if got, err := GetField(r, TagImageDescription).Get(); err != nil || got != desc {
				t.Errorf("ImageDescription = %q, %v", got, err)
			}
			if got, _ := GetField(r, TagSoftware).Get(); got != "ome-files" {
				t.Errorf("Software = %q", got)
			}
			if got, _ := GetField(r, TagXResolution).Get(); got != 72 {
				t.Errorf("XResolution = %v, want 72", got)
			}
			if got, _ := GetField(r, TagYResolution).Get(); got != 0.125 {
				t.Errorf("YResolution = %v, want 0.125", got)
			}
			if got, _ := GetField(r, TagPageNumber).Get(); got != [2]uint16{3, 10} {
				t.Errorf("PageNumber = %v", got)
			}
			if got, _ := GetField(r, TagInkNames).Get(); !slices.Equal(got, []string{"cyan", "magenta"}) {
				t.Errorf("InkNames = %q", got)
			}
			if got, _ := GetField(r, TagWhitePoint).Get(); got != [2]float64{0.3127, 0.329} {
				t.Errorf("WhitePoint = %v", got)
			}
			if got, _ := GetField(r, TagXMLPacket).Get(); !bytes.Equal(got, []byte("<x/>")) {
				t.Errorf("XMLPacket = %q", got)
			}
			if got, _ := GetField(r, TagColorMap).Get(); !slices.Equal(got[2], cmap[2]) {
				t.Errorf("ColorMap = %v", got)
			}

			// Per-sample tags are stored once per sample.
			if e := r.entries[TagBitsPerSample.ID]; e.count != 3 {
				t.Errorf("BitsPerSample count = %d, want 3", e.count)
			}
			if got, _ := r.BitsPerSample(); got != 16 {
				t.Errorf("BitsPerSample() = %d", got)
			}
			if got, _ := r.PhotometricInterpretation(); got != PhotometricRGB {
				t.Errorf("default photometric = %v, want RGB", got)
			}
			if !slices.IsSorted(r.Tags()) {
				t.Error("Tags() not sorted")
			}
		})
	}
}

func TestFieldErrors(t *testing.T) {
	ifd := newIFD(nil, 0)
	_, err := GetField(ifd, TagImageWidth).Get()
	if !errors.Is(err, ErrFieldNotPresent) {
		t.Errorf("absent field: got %v, want ErrFieldNotPresent", err)
	}
	if omefiles.IsFormat(err) {
		t.Error("an absent field should not be a format error")
	}

	GetField(ifd, TagImageDescription).Set("text")
	asShort := Uint16Tag(TagImageDescription.ID, "")
	_, err = GetField(ifd, asShort).Get()
	if !errors.Is(err, ErrFieldType) || !omefiles.IsFormat(err) {
		t.Errorf("mistyped field: got %v, want ErrFieldType and a format error", err)
	}
	var fe *FieldError
	if !errors.As(err, &fe) || fe.Tag != TagImageDescription.ID || fe.Type != ASCII {
		t.Errorf("FieldError = %+v", fe)
	}

	GetField(ifd, TagPageNumber).Set([2]uint16{1, 2})
	if _, err := GetField(ifd, TagHalftoneHints).Get(); !errors.Is(err, ErrFieldNotPresent) {
		t.Errorf("HalftoneHints: %v", err)
	}
	threeShorts := Uint16PairTag(TagPageNumber.ID, "")
	ifd.entries[TagPageNumber.ID] = shortsEntry(binary.LittleEndian, []uint16{1, 2, 3})
	if _, err := GetField(ifd, threeShorts).Get(); !errors.Is(err, ErrFieldType) {
		t.Errorf("pair tag with three values: got %v, want ErrFieldType", err)
	}

	if err := GetField(ifd, TagColorMap).Set([3][]uint16{{1}, {2, 3}, {4}}); !omefiles.IsLogic(err) {
		t.Errorf("uneven ColorMap: got %v, want logic error", err)
	}

	GetField(ifd, TagSampleFormat).Set(SampleFormatVoid)
	if _, err := ifd.PixelType(); !errors.Is(err, pixel.ErrUnsupportedPixelType) {
		t.Errorf("PixelType for void samples: got %v", err)
	}
}

func TestRationals(t *testing.T) {
	for _, v := range []float64{0, 1, 300, 0.5, 2.54, 1e-6} {
		e := rationalsEntry(binary.BigEndian, []float64{v})
		got, ok := e.floats(binary.BigEndian)
		if !ok || len(got) != 1 || got[0] != v {
			t.Errorf("rational %v read back as %v", v, got)
		}
	}
}

func TestOffsetsEntryWidth(t *testing.T) {
	if e := offsetsEntry(binary.LittleEndian, []uint64{1, 1 << 31}); e.typ != Long {
		t.Errorf("small offsets stored as %v, want LONG", e.typ)
	}
	e := offsetsEntry(binary.LittleEndian, []uint64{1, 1 << 33})
	if e.typ != Long8 {
		t.Errorf("large offsets stored as %v, want LONG8", e.typ)
	}
	if got, _ := e.uints(binary.LittleEndian); !slices.Equal(got, []uint64{1, 1 << 33}) {
		t.Errorf("LONG8 offsets = %v", got)
	}
}

func TestCoreMetadata(t *testing.T) {
	path := filepath.Join(t.TempDir(), "core.tif")
	f, err := Create(path, DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	ifd, _ := f.CurrentDirectory()

	c := meta.NewCoreMetadata()
	c.SizeX, c.SizeY, c.SizeC = 32, 16, 3
	c.RGB = true
	c.Interleaved = false
	c.PixelType = pixel.Uint16
	if err := ifd.SetCoreMetadata(c); err != nil {
		t.Fatal(err)
	}
	ifd.SetCompression(CompressionAdobeDeflate)
	ifd.SetPredictor(PredictorHorizontal)
	GetField(ifd, TagSoftware).Set("test")
	if err := ifd.WritePlane(fillVariant(t, pixel.Uint16, 32, 16, 3, false)); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}

	rf, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer rf.Close()
	r, _ := rf.Directory(0)
	got, err := r.CoreMetadata()
	if err != nil {
		t.Fatal(err)
	}
	if got.SizeX != 32 || got.SizeY != 16 || got.SizeC != 3 || got.SizeZ != 1 || got.SizeT != 1 {
		t.Errorf("sizes = %dx%d c%d z%d t%d", got.SizeX, got.SizeY, got.SizeC, got.SizeZ, got.SizeT)
	}
	if got.PixelType != pixel.Uint16 || got.BitsPerPixel != 16 {
		t.Errorf("pixel type = %v/%d", got.PixelType, got.BitsPerPixel)
	}
	if !got.RGB || got.Interleaved || got.Indexed {
		t.Errorf("rgb=%v interleaved=%v indexed=%v", got.RGB, got.Interleaved, got.Indexed)
	}
	if got.DimensionOrder != dimension.XYCZT || got.ImageCount != 1 || !got.MetadataComplete {
		t.Errorf("order=%v count=%d complete=%v", got.DimensionOrder, got.ImageCount, got.MetadataComplete)
	}
	if got.RGBChannelCount() != 3 {
		t.Errorf("RGBChannelCount() = %d", got.RGBChannelCount())
	}

	sm := got.SeriesMetadata
	if v, _ := meta.Get[string](sm, "Compression"); v != "AdobeDeflate" {
		t.Errorf("Compression = %q", v)
	}
	if v, _ := meta.Get[string](sm, "Predictor"); v != "Horizontal" {
		t.Errorf("Predictor = %q", v)
	}
	if v, _ := meta.Get[string](sm, "Software"); v != "test" {
		t.Errorf("Software = %q", v)
	}
	if v, _ := meta.Get[uint32](sm, "ImageWidth"); v != 32 {
		t.Errorf("ImageWidth = %d", v)
	}
	if v, _ := meta.Get[string](sm, "PlanarConfiguration"); v != "Separate" {
		t.Errorf("PlanarConfiguration = %q", v)
	}
	if _, st := meta.Get[string](sm, "Artist"); st == meta.Found {
		t.Error("absent Artist copied")
	}
}

func TestCoreMetadataIndexed(t *testing.T) {
	ifd := newIFD(nil, 0)
	GetField(ifd, TagImageWidth).Set(4)
	GetField(ifd, TagImageLength).Set(4)
	ifd.SetPixelType(pixel.Uint8)
	ifd.SetPhotometricInterpretation(PhotometricPalette)
	ramp := make([]uint16, 256)
	GetField(ifd, TagColorMap).Set([3][]uint16{ramp, ramp, ramp})

	c, err := ifd.CoreMetadata()
	if err != nil {
		t.Fatal(err)
	}
	if !c.Indexed || c.RGB || c.SizeC != 1 {
		t.Errorf("indexed=%v rgb=%v sizeC=%d", c.Indexed, c.RGB, c.SizeC)
	}
	if !c.Interleaved {
		t.Error("contiguous image reported as planar")
	}
}

func TestSetCoreMetadataErrors(t *testing.T) {
	ifd := newIFD(nil, 0)
	c := meta.NewCoreMetadata()
	c.SizeX = 0
	if err := ifd.SetCoreMetadata(c); !omefiles.IsLogic(err) {
		t.Errorf("zero width: got %v, want logic error", err)
	}
}

func TestEnableBigTIFF(t *testing.T) {
	yes, no := true, false
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	tests := []struct {
		name  string
		want  *bool
		bytes uint64
		path  string
		big   bool
	}{
		{"small", nil, 1 << 20, "a.ome.tif", false},
		{"exactly 4 GiB minus one", nil, 1<<32 - 1, "a.ome.tif", false},
		{"over 4 GiB", nil, 1 << 32, "a.ome.tif", true},
		{"tf2 extension", nil, 10, "a.ome.tf2", true},
		{"tf8 extension", nil, 10, "a.ome.TF8", true},
		{"btf extension", nil, 10, "a.ome.btf", true},
		{"explicit off", &no, 1 << 40, "a.ome.btf", false},
		{"explicit on", &yes, 10, "a.ome.tif", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EnableBigTIFF(tt.want, tt.bytes, tt.path, log); got != tt.big {
				t.Errorf("EnableBigTIFF() = %v, want %v", got, tt.big)
			}
		})
	}
	if !bytes.Contains(logs.Bytes(), []byte(`size="4.0 GiB"`)) {
		t.Errorf("size switch not logged with a readable size:\n%s", logs.String())
	}
}

func TestRegionAndCoverage(t *testing.T) {
	a := PlaneRegion{X: 0, Y: 0, W: 10, H: 10}
	b := PlaneRegion{X: 5, Y: 5, W: 10, H: 10}
	if got, want := a.Intersect(b), (PlaneRegion{5, 5, 5, 5}); got != want {
		t.Errorf("Intersect = %v, want %v", got, want)
	}
	if got, want := a.Union(b), (PlaneRegion{0, 0, 15, 15}); got != want {
		t.Errorf("Union = %v, want %v", got, want)
	}
	if !a.Intersect(PlaneRegion{X: 10, Y: 0, W: 2, H: 2}).Empty() {
		t.Error("touching regions intersect")
	}
	if got := unionArea([]PlaneRegion{a, b}); got != 175 {
		t.Errorf("unionArea = %d, want 175", got)
	}
	if got := b.String(); got != "10x10+5+5" {
		t.Errorf("String() = %q", got)
	}

	ti := TileInfo{
		TileType:        Tile,
		ImageWidth:      40,
		ImageHeight:     20,
		TileWidth:       16,
		TileHeight:      16,
		TileColumnCount: 3,
		TileRowCount:    2,
		TileCount:       6,
		Samples:         1,
		PlanarConfig:    Contig,
		BitsPerSample:   8,
	}
	if got := ti.TileCoverage(PlaneRegion{X: 10, Y: 10, W: 10, H: 10}, 0); !slices.Equal(got, []int{0, 1, 3, 4}) {
		t.Errorf("TileCoverage = %v", got)
	}
	if got, want := ti.ClippedRegion(5), (PlaneRegion{32, 16, 8, 4}); got != want {
		t.Errorf("ClippedRegion(5) = %v, want %v", got, want)
	}

	cov := newTileCoverage(ti)
	cov.Insert(5, PlaneRegion{X: 32, Y: 16, W: 4, H: 4})
	if cov.Covered(5) {
		t.Error("half-written edge tile reported covered")
	}
	cov.Insert(5, PlaneRegion{X: 30, Y: 10, W: 20, H: 20})
	if !cov.Covered(5) || cov.CoveredArea(5) != 32 {
		t.Errorf("edge tile covered=%v area=%d", cov.Covered(5), cov.CoveredArea(5))
	}
	cov.Insert(0, PlaneRegion{W: 1, H: 1})
	if got := cov.Pending(); !slices.Equal(got, []int{0, 5}) {
		t.Errorf("Pending() = %v", got)
	}
	cov.Remove(5)
	if cov.Covered(5) {
		t.Error("removed tile still covered")
	}
}

func TestCoverageMergesRegions(t *testing.T) {
	ti := TileInfo{
		TileType:        Strip,
		ImageWidth:      300,
		ImageHeight:     200,
		TileWidth:       300,
		TileHeight:      200,
		TileColumnCount: 1,
		TileRowCount:    1,
		TileCount:       1,
		Samples:         3,
		PlanarConfig:    Contig,
		BitsPerSample:   8,
	}
	cov := newTileCoverage(ti)
	// Row by row, each row in two halves.
	for y := 0; y < 200; y++ {
		cov.Insert(0, PlaneRegion{X: 150, Y: y, W: 150, H: 1})
		cov.Insert(0, PlaneRegion{X: 0, Y: y, W: 150, H: 1})
	}
	for s, rs := range cov.regions[0] {
		if len(rs) != 1 || rs[0] != (PlaneRegion{W: 300, H: 200}) {
			t.Errorf("sample %d regions = %v, want one full region", s, rs)
		}
	}
	if !cov.Covered(0) {
		t.Error("fully written strip not covered")
	}

	cov = newTileCoverage(ti)
	cov.InsertSample(0, 0, PlaneRegion{W: 300, H: 200})
	cov.InsertSample(0, 2, PlaneRegion{W: 300, H: 200})
	if cov.Covered(0) || cov.CoveredArea(0) != 0 {
		t.Errorf("strip missing sample 1: covered=%v area=%d", cov.Covered(0), cov.CoveredArea(0))
	}
	cov.InsertSample(0, 1, PlaneRegion{W: 300, H: 100})
	cov.InsertSample(0, 1, PlaneRegion{Y: 100, W: 300, H: 100})
	if !cov.Covered(0) {
		t.Error("strip with every sample written not covered")
	}
	cov.InsertSample(0, 3, PlaneRegion{W: 1, H: 1})
	if got := len(cov.regions[0]); got != 3 {
		t.Errorf("out-of-range sample recorded: %d sample lists", got)
	}

	overlapping := []PlaneRegion{{X: 0, Y: 0, W: 10, H: 10}, {X: 5, Y: 5, W: 10, H: 10}}
	var rs []PlaneRegion
	for _, r := range overlapping {
		rs = addRegion(rs, r)
	}
	if len(rs) != 2 || unionArea(rs) != 175 {
		t.Errorf("overlapping regions = %v, area %d", rs, unionArea(rs))
	}
}
