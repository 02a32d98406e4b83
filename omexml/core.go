package omexml

import (
	"github.com/mrjoshuak/go-omefiles"
	"github.com/mrjoshuak/go-omefiles/meta"
)

// CoreMetadata derives the series descriptor of an image. The result
// describes the logical model only; TIFF-level details such as
// endianness of the stored data are left at their defaults for the
// caller to refine.
func (m *Metadata) CoreMetadata(series int) (*meta.CoreMetadata, error) {
	p := m.pixels(series)
	if p == nil {
		return nil, omefiles.Logicf("CoreMetadata", "series %d out of range [0, %d)", series, m.ImageCount())
	}
	pt, err := m.PixelsType(series)
	if err != nil {
		return nil, err
	}
	order, err := m.PixelsDimensionOrder(series)
	if err != nil {
		return nil, err
	}

	c := meta.NewCoreMetadata()
	c.SizeX = p.SizeX
	c.SizeY = p.SizeY
	c.SizeZ = max(p.SizeZ, 1)
	c.SizeT = max(p.SizeT, 1)
	c.SizeC = max(p.SizeC, 1)
	c.PixelType = pt
	c.DimensionOrder = order
	c.Interleaved = m.PixelsInterleaved(series)
	c.LittleEndian = p.BigEndian == nil || !*p.BigEndian
	c.FalseColor = false
	c.MetadataComplete = true

	c.BitsPerPixel = pt.BitsPerPixel()
	if sb := p.SignificantBits; sb > 0 && sb <= c.BitsPerPixel {
		c.BitsPerPixel = sb
	}

	channels := len(p.Channels)
	spp := 1
	if channels > 0 {
		spp = max(p.Channels[0].SamplesPerPixel, 1)
	} else {
		channels = c.SizeC
	}
	c.RGB = spp > 1
	c.ImageCount = c.SizeZ * c.SizeT * channels

	img := &m.Root.Images[series]
	if img.Description != "" {
		meta.Set(c.SeriesMetadata, "Description", img.Description)
	}
	if img.Name != "" {
		meta.Set(c.SeriesMetadata, "Name", img.Name)
	}
	if img.AcquisitionDate != "" {
		meta.Set(c.SeriesMetadata, "AcquisitionDate", img.AcquisitionDate)
	}
	if p.PhysicalSizeX != nil {
		meta.Set(c.SeriesMetadata, "PhysicalSizeX", *p.PhysicalSizeX)
	}
	if p.PhysicalSizeY != nil {
		meta.Set(c.SeriesMetadata, "PhysicalSizeY", *p.PhysicalSizeY)
	}
	if p.PhysicalSizeZ != nil {
		meta.Set(c.SeriesMetadata, "PhysicalSizeZ", *p.PhysicalSizeZ)
	}
	if p.TimeIncrement != nil {
		meta.Set(c.SeriesMetadata, "TimeIncrement", *p.TimeIncrement)
	}
	return c, nil
}
