package meta

import (
	"github.com/mrjoshuak/go-omefiles/dimension"
	"github.com/mrjoshuak/go-omefiles/pixel"
)

// CoreMetadata describes one image series independently of the file format
// it is stored in.
type CoreMetadata struct {
	SizeX, SizeY, SizeZ, SizeT int

	// SizeC is the total number of channel samples, counting every
	// sample of an RGB channel.
	SizeC int

	PixelType    pixel.Type
	BitsPerPixel int
	ImageCount   int

	ModuloZ, ModuloT, ModuloC dimension.Modulo

	DimensionOrder   dimension.Order
	OrderCertain     bool
	RGB              bool
	LittleEndian     bool
	Interleaved      bool
	Indexed          bool
	FalseColor       bool
	MetadataComplete bool
	Thumbnail        bool
	ResolutionCount  int

	SeriesMetadata Map
}

// NewCoreMetadata returns a descriptor for a single 1x1 uint8 plane in
// XYZCT order.
func NewCoreMetadata() *CoreMetadata {
	return &CoreMetadata{
		SizeX:           1,
		SizeY:           1,
		SizeZ:           1,
		SizeT:           1,
		SizeC:           1,
		PixelType:       pixel.Uint8,
		BitsPerPixel:    8,
		ImageCount:      1,
		ModuloZ:         dimension.NewModulo("Z"),
		ModuloT:         dimension.NewModulo("T"),
		ModuloC:         dimension.NewModulo("C"),
		DimensionOrder:  dimension.XYZCT,
		OrderCertain:    true,
		FalseColor:      true,
		ResolutionCount: 1,
		SeriesMetadata:  Map{},
	}
}

// EffectiveSizeC returns the number of channel planes: SizeC divided by
// the samples per RGB channel.
func (c *CoreMetadata) EffectiveSizeC() int {
	zt := c.SizeZ * c.SizeT
	if zt == 0 {
		return 0
	}
	return c.ImageCount / zt
}

// RGBChannelCount returns the number of samples per channel plane, which
// is 1 unless RGB is set.
func (c *CoreMetadata) RGBChannelCount() int {
	if !c.RGB {
		return 1
	}
	eff := c.EffectiveSizeC()
	if eff == 0 {
		return 1
	}
	return c.SizeC / eff
}

// Validate checks the dimension order against the plane sizes and image
// count.
func (c *CoreMetadata) Validate() error {
	_, _, _, err := dimension.ValidateDimensions(string(c.DimensionOrder), c.SizeZ, c.EffectiveSizeC(), c.SizeT, c.ImageCount)
	return err
}

// PlaneSize returns the number of bytes in one plane of every sample.
func (c *CoreMetadata) PlaneSize() uint64 {
	return uint64(c.SizeX) * uint64(c.SizeY) * uint64(c.RGBChannelCount()) * uint64(c.PixelType.BytesPerPixel())
}

// Clone returns a deep copy of c.
func (c *CoreMetadata) Clone() *CoreMetadata {
	n := *c
	n.SeriesMetadata = make(Map, len(c.SeriesMetadata))
	n.SeriesMetadata.Merge(c.SeriesMetadata, "")
	n.ModuloZ.Labels = append([]string(nil), c.ModuloZ.Labels...)
	n.ModuloT.Labels = append([]string(nil), c.ModuloT.Labels...)
	n.ModuloC.Labels = append([]string(nil), c.ModuloC.Labels...)
	return &n
}
