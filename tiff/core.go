package tiff

import (
	"fmt"

	"github.com/mrjoshuak/go-omefiles"
	"github.com/mrjoshuak/go-omefiles/dimension"
	"github.com/mrjoshuak/go-omefiles/meta"
	"github.com/mrjoshuak/go-omefiles/pixel"
)

// CoreMetadata describes the image of ifd as a single-plane series.
// Values are always reported in native byte order since pixel data is
// converted on read. Optional tags are copied into SeriesMetadata when
// present; absent or malformed optional tags are skipped.
func (ifd *IFD) CoreMetadata() (*meta.CoreMetadata, error) {
	w, err := ifd.ImageWidth()
	if err != nil {
		return nil, err
	}
	h, err := ifd.ImageHeight()
	if err != nil {
		return nil, err
	}
	pt, err := ifd.PixelType()
	if err != nil {
		return nil, err
	}
	spp, err := ifd.SamplesPerPixel()
	if err != nil {
		return nil, err
	}
	bps, err := ifd.BitsPerSample()
	if err != nil {
		return nil, err
	}
	pc, err := ifd.PlanarConfiguration()
	if err != nil {
		return nil, err
	}
	photometric, err := getOr(ifd, TagPhotometricInterpretation, PhotometricMinIsBlack)
	if err != nil {
		return nil, err
	}

	c := meta.NewCoreMetadata()
	c.SizeX, c.SizeY = int(w), int(h)
	c.SizeC = int(spp)
	c.PixelType = pt
	c.BitsPerPixel = min(int(bps), pt.SignificantBitsPerPixel())
	c.DimensionOrder = dimension.XYCZT
	c.RGB = spp > 1 || photometric == PhotometricRGB
	c.Interleaved = pc == Contig
	c.LittleEndian = pixel.EndianNative.Resolve() == pixel.EndianLittle
	c.MetadataComplete = true
	c.FalseColor = false

	if photometric == PhotometricPalette && GetField(ifd, TagColorMap).IsSet() {
		c.Indexed = true
	}
	if idx, err := GetField(ifd, TagIndexed).Get(); err == nil && idx == 1 {
		c.Indexed = true
	}
	if c.Indexed {
		c.SizeC = 1
		c.RGB = false
	}

	for _, copyTag := range coreTagCopies {
		copyTag(c.SeriesMetadata, ifd)
	}
	return c, nil
}

// SetCoreMetadata sets the image tags of ifd from one plane of c.
func (ifd *IFD) SetCoreMetadata(c *meta.CoreMetadata) error {
	if c.SizeX <= 0 || c.SizeY <= 0 {
		return omefiles.Logicf("SetCoreMetadata", "invalid plane size %dx%d", c.SizeX, c.SizeY)
	}
	spp := c.RGBChannelCount()
	if spp <= 0 || spp > 0xFFFF {
		return omefiles.Logicf("SetCoreMetadata", "invalid samples per pixel %d", spp)
	}
	if err := ifd.SetImageWidth(uint32(c.SizeX)); err != nil {
		return err
	}
	if err := ifd.SetImageHeight(uint32(c.SizeY)); err != nil {
		return err
	}
	if err := ifd.SetPixelType(c.PixelType); err != nil {
		return err
	}
	if err := ifd.SetSamplesPerPixel(uint16(spp)); err != nil {
		return err
	}
	pc := Separate
	if c.Interleaved || spp == 1 {
		pc = Contig
	}
	if err := ifd.SetPlanarConfiguration(pc); err != nil {
		return err
	}
	photometric := PhotometricMinIsBlack
	if c.RGB && spp == 3 {
		photometric = PhotometricRGB
	}
	return ifd.SetPhotometricInterpretation(photometric)
}

type tagCopy func(m meta.Map, ifd *IFD)

func copyScalar[V meta.Element](tag Tag[V]) tagCopy {
	return func(m meta.Map, ifd *IFD) {
		if v, err := GetField(ifd, tag).Get(); err == nil {
			meta.Set(m, tag.String(), v)
		}
	}
}

func copyList[V meta.Element](tag Tag[[]V]) tagCopy {
	return func(m meta.Map, ifd *IFD) {
		if v, err := GetField(ifd, tag).Get(); err == nil {
			meta.SetList(m, tag.String(), v)
		}
	}
}

func copyArray[A any, V meta.Element](tag Tag[A], elems func(A) []V) tagCopy {
	return func(m meta.Map, ifd *IFD) {
		if v, err := GetField(ifd, tag).Get(); err == nil {
			meta.SetList(m, tag.String(), elems(v))
		}
	}
}

// copyName stores an enumerated value by name.
func copyName[E interface {
	~uint16
	fmt.Stringer
}](tag Tag[E]) tagCopy {
	return func(m meta.Map, ifd *IFD) {
		if v, err := GetField(ifd, tag).Get(); err == nil {
			meta.Set(m, tag.String(), v.String())
		}
	}
}

// copyCode stores an enumerated value as its number.
func copyCode[E ~uint16](tag Tag[E]) tagCopy {
	return func(m meta.Map, ifd *IFD) {
		if v, err := GetField(ifd, tag).Get(); err == nil {
			meta.Set(m, tag.String(), uint16(v))
		}
	}
}

func copyCodes[E ~uint16](tag Tag[[]E]) tagCopy {
	return func(m meta.Map, ifd *IFD) {
		if v, err := GetField(ifd, tag).Get(); err == nil {
			codes := make([]uint16, len(v))
			for i, x := range v {
				codes[i] = uint16(x)
			}
			meta.SetList(m, tag.String(), codes)
		}
	}
}

// copyCompression records the compression and the tags that only apply
// to some schemes.
func copyCompression(m meta.Map, ifd *IFD) {
	c, err := GetField(ifd, TagCompression).Get()
	if err != nil {
		return
	}
	meta.Set(m, TagCompression.String(), c.String())
	switch c {
	case CompressionLZW, CompressionAdobeDeflate, CompressionDeflate, CompressionZstd:
		copyName(TagPredictor)(m, ifd)
	case CompressionJPEG, CompressionOJPEG:
		meta.Set(m, TagJPEGTables.String(), GetField(ifd, TagJPEGTables).IsSet())
	}
}

func pair[T any](a [2]T) []T   { return a[:] }
func triple[T any](a [3]T) []T { return a[:] }
func six[T any](a [6]T) []T    { return a[:] }

var coreTagCopies = []tagCopy{
	copyScalar(TagImageWidth),
	copyScalar(TagImageLength),
	copyScalar(TagBitsPerSample),
	copyScalar(TagSamplesPerPixel),
	copyCompression,
	copyName(TagPhotometricInterpretation),
	copyCode(TagThreshholding),
	copyScalar(TagCellWidth),
	copyScalar(TagCellLength),
	copyCode(TagFillOrder),
	copyScalar(TagDocumentName),
	copyScalar(TagImageDescription),
	copyScalar(TagMake),
	copyScalar(TagModel),
	copyCode(TagOrientation),
	copyScalar(TagMinSampleValue),
	copyScalar(TagMaxSampleValue),
	copyScalar(TagXResolution),
	copyScalar(TagYResolution),
	copyName(TagPlanarConfiguration),
	copyScalar(TagPageName),
	copyScalar(TagXPosition),
	copyScalar(TagYPosition),
	copyScalar(TagResolutionUnit),
	copyArray(TagPageNumber, pair[uint16]),
	copyScalar(TagSoftware),
	copyScalar(TagDateTime),
	copyScalar(TagArtist),
	copyScalar(TagHostComputer),
	copyName(TagPredictor),
	copyArray(TagWhitePoint, pair[float64]),
	copyArray(TagPrimaryChromaticities, six[float64]),
	copyArray(TagHalftoneHints, pair[uint16]),
	copyScalar(TagInkSet),
	copyList(TagInkNames),
	copyScalar(TagNumberOfInks),
	copyList(TagDotRange),
	copyScalar(TagTargetPrinter),
	copyCodes(TagExtraSamples),
	copyName(TagSampleFormat),
	copyArray(TagYCbCrCoefficients, triple[float64]),
	copyArray(TagYCbCrSubsampling, pair[uint16]),
	copyCode(TagYCbCrPositioning),
	copyArray(TagReferenceBlackWhite, six[float64]),
	copyScalar(TagCopyright),
	copyScalar(TagTileWidth),
	copyScalar(TagTileLength),
}
