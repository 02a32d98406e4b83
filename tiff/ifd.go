package tiff

import (
	"encoding/binary"

	"github.com/mrjoshuak/go-omefiles"
)

// IFD is one image file directory: a tag table plus, for written files,
// the state of the pixel data being written.
type IFD struct {
	tiff     *TIFF
	index    int
	offset   uint64
	entries  map[TagID]*entry
	tileType TileType

	// Write state.
	coverage *TileCoverage
	pending  map[int][]byte
	offsets  []uint64
	counts   []uint64
	written  bool
}

func newIFD(t *TIFF, index int) *IFD {
	return &IFD{tiff: t, index: index, entries: make(map[TagID]*entry)}
}

func (ifd *IFD) order() binary.ByteOrder {
	if ifd.tiff == nil || ifd.tiff.order == nil {
		return binary.LittleEndian
	}
	return ifd.tiff.order
}

// TIFF returns the file ifd belongs to.
func (ifd *IFD) TIFF() *TIFF { return ifd.tiff }

// Index returns the position of ifd in the directory chain.
func (ifd *IFD) Index() int { return ifd.index }

// Offset returns the file offset of the directory, or 0 if it has not
// been written yet.
func (ifd *IFD) Offset() uint64 { return ifd.offset }

// Next returns the following directory, or nil at the end of the chain.
func (ifd *IFD) Next() *IFD {
	if ifd.tiff == nil || ifd.index+1 >= len(ifd.tiff.dirs) {
		return nil
	}
	return ifd.tiff.dirs[ifd.index+1]
}

// Last reports whether ifd is the final directory of the chain.
func (ifd *IFD) Last() bool { return ifd.Next() == nil }

// Tags returns the tags present in ifd.
func (ifd *IFD) Tags() []TagID {
	ids := make([]TagID, 0, len(ifd.entries))
	for id := range ifd.entries {
		ids = append(ids, id)
	}
	sortTags(ids)
	return ids
}

// checkMutable rejects layout changes once pixel data has been written.
func (ifd *IFD) checkMutable(op string) error {
	if len(ifd.pending) > 0 || len(ifd.offsets) > 0 {
		return omefiles.Logicf(op, "directory %d: pixel data already written", ifd.index)
	}
	ifd.coverage = nil
	return nil
}

// ImageWidth returns the ImageWidth tag.
func (ifd *IFD) ImageWidth() (uint32, error) {
	return GetField(ifd, TagImageWidth).Get()
}

// SetImageWidth sets the ImageWidth tag.
func (ifd *IFD) SetImageWidth(w uint32) error {
	if err := ifd.checkMutable("SetImageWidth"); err != nil {
		return err
	}
	return GetField(ifd, TagImageWidth).Set(w)
}

// ImageHeight returns the ImageLength tag.
func (ifd *IFD) ImageHeight() (uint32, error) {
	return GetField(ifd, TagImageLength).Get()
}

// SetImageHeight sets the ImageLength tag.
func (ifd *IFD) SetImageHeight(h uint32) error {
	if err := ifd.checkMutable("SetImageHeight"); err != nil {
		return err
	}
	return GetField(ifd, TagImageLength).Set(h)
}

// TileType reports whether the image is stored in strips or tiles.
func (ifd *IFD) TileType() TileType { return ifd.tileType }

// SetTileType selects strips or tiles. Switching removes the size tags of
// the other organization.
func (ifd *IFD) SetTileType(tt TileType) error {
	if err := ifd.checkMutable("SetTileType"); err != nil {
		return err
	}
	if tt == ifd.tileType {
		return nil
	}
	ifd.tileType = tt
	if tt == Tile {
		GetField(ifd, TagRowsPerStrip).Unset()
		GetField(ifd, TagStripOffsets).Unset()
		GetField(ifd, TagStripByteCounts).Unset()
	} else {
		GetField(ifd, TagTileWidth).Unset()
		GetField(ifd, TagTileLength).Unset()
		GetField(ifd, TagTileOffsets).Unset()
		GetField(ifd, TagTileByteCounts).Unset()
	}
	return nil
}

// TileWidth returns the tile width, or the image width for strips.
func (ifd *IFD) TileWidth() (uint32, error) {
	if ifd.tileType == Tile {
		return GetField(ifd, TagTileWidth).Get()
	}
	return ifd.ImageWidth()
}

// SetTileWidth sets the tile width. Strips always span the image width.
func (ifd *IFD) SetTileWidth(w uint32) error {
	if ifd.tileType != Tile {
		return omefiles.Logicf("SetTileWidth", "directory %d: strip width is the image width", ifd.index)
	}
	if err := ifd.checkMutable("SetTileWidth"); err != nil {
		return err
	}
	return GetField(ifd, TagTileWidth).Set(w)
}

// TileHeight returns the tile height, or the rows per strip, which
// defaults to the image height.
func (ifd *IFD) TileHeight() (uint32, error) {
	if ifd.tileType == Tile {
		return GetField(ifd, TagTileLength).Get()
	}
	h, err := ifd.ImageHeight()
	if err != nil {
		return 0, err
	}
	rps, err := getOr(ifd, TagRowsPerStrip, h)
	if err != nil {
		return 0, err
	}
	return min(rps, h), nil
}

// SetTileHeight sets the tile height, or the rows per strip.
func (ifd *IFD) SetTileHeight(h uint32) error {
	if err := ifd.checkMutable("SetTileHeight"); err != nil {
		return err
	}
	if ifd.tileType == Tile {
		return GetField(ifd, TagTileLength).Set(h)
	}
	return GetField(ifd, TagRowsPerStrip).Set(h)
}

// BitsPerSample returns the BitsPerSample tag, defaulting to 1.
func (ifd *IFD) BitsPerSample() (uint16, error) {
	return getOr(ifd, TagBitsPerSample, 1)
}

// SetBitsPerSample sets BitsPerSample for every sample.
func (ifd *IFD) SetBitsPerSample(bits uint16) error {
	if err := ifd.checkMutable("SetBitsPerSample"); err != nil {
		return err
	}
	return GetField(ifd, TagBitsPerSample).Set(bits)
}

// SamplesPerPixel returns the SamplesPerPixel tag, defaulting to 1.
func (ifd *IFD) SamplesPerPixel() (uint16, error) {
	return getOr(ifd, TagSamplesPerPixel, 1)
}

// SetSamplesPerPixel sets the SamplesPerPixel tag.
func (ifd *IFD) SetSamplesPerPixel(n uint16) error {
	if err := ifd.checkMutable("SetSamplesPerPixel"); err != nil {
		return err
	}
	if n == 0 {
		return omefiles.Logicf("SetSamplesPerPixel", "directory %d: zero samples per pixel", ifd.index)
	}
	return GetField(ifd, TagSamplesPerPixel).Set(n)
}

// PlanarConfiguration returns the PlanarConfiguration tag, defaulting
// to Contig.
func (ifd *IFD) PlanarConfiguration() (PlanarConfig, error) {
	return getOr(ifd, TagPlanarConfiguration, Contig)
}

// SetPlanarConfiguration sets the PlanarConfiguration tag.
func (ifd *IFD) SetPlanarConfiguration(pc PlanarConfig) error {
	if err := ifd.checkMutable("SetPlanarConfiguration"); err != nil {
		return err
	}
	if pc != Contig && pc != Separate {
		return omefiles.Logicf("SetPlanarConfiguration", "invalid planar configuration %d", pc)
	}
	return GetField(ifd, TagPlanarConfiguration).Set(pc)
}

// PhotometricInterpretation returns the PhotometricInterpretation tag.
func (ifd *IFD) PhotometricInterpretation() (Photometric, error) {
	return GetField(ifd, TagPhotometricInterpretation).Get()
}

// SetPhotometricInterpretation sets the PhotometricInterpretation tag.
func (ifd *IFD) SetPhotometricInterpretation(p Photometric) error {
	if err := ifd.checkMutable("SetPhotometricInterpretation"); err != nil {
		return err
	}
	return GetField(ifd, TagPhotometricInterpretation).Set(p)
}

// Compression returns the Compression tag, defaulting to none.
func (ifd *IFD) Compression() (Compression, error) {
	return getOr(ifd, TagCompression, CompressionNone)
}

// SetCompression sets the Compression tag. Only schemes with an encoder
// are accepted for files being written.
func (ifd *IFD) SetCompression(c Compression) error {
	if err := ifd.checkMutable("SetCompression"); err != nil {
		return err
	}
	if ifd.tiff != nil && ifd.tiff.write && !toScheme(c).CanEncode() {
		return omefiles.Formatf("SetCompression", "compression %s cannot be written", c)
	}
	return GetField(ifd, TagCompression).Set(c)
}

// Predictor returns the Predictor tag, defaulting to none.
func (ifd *IFD) Predictor() (Predictor, error) {
	return getOr(ifd, TagPredictor, PredictorNone)
}

// SetPredictor sets the Predictor tag.
func (ifd *IFD) SetPredictor(p Predictor) error {
	if err := ifd.checkMutable("SetPredictor"); err != nil {
		return err
	}
	return GetField(ifd, TagPredictor).Set(p)
}

// SampleFormat returns the SampleFormat tag, defaulting to unsigned
// integer.
func (ifd *IFD) SampleFormat() (SampleFormat, error) {
	return getOr(ifd, TagSampleFormat, SampleFormatUint)
}

// TileCoverage returns the coverage cache of the tiles being written.
func (ifd *IFD) TileCoverage() (*TileCoverage, error) {
	if ifd.coverage == nil {
		ti, err := ifd.TileInfo()
		if err != nil {
			return nil, err
		}
		ifd.coverage = newTileCoverage(ti)
	}
	return ifd.coverage, nil
}
