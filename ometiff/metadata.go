package ometiff

import (
	"github.com/mrjoshuak/go-omefiles/dimension"
	"github.com/mrjoshuak/go-omefiles/pixel"
)

// Metadata is the OME model a Writer describes its files with. The
// Writer reads the image geometry from it and records where every plane
// was stored before generating the XML embedded in each file.
// *omexml.Metadata implements it.
type Metadata interface {
	ImageCount() int
	PixelsSizeX(image int) int
	PixelsSizeY(image int) int
	PixelsSizeZ(image int) int
	PixelsSizeT(image int) int
	PixelsSizeC(image int) int
	PixelsType(image int) (pixel.Type, error)
	PixelsDimensionOrder(image int) (dimension.Order, error)
	PixelsInterleaved(image int) bool
	ChannelCount(image int) int
	ChannelSamplesPerPixel(image, channel int) int

	SetTiffDataFirstZ(firstZ, image, tiffData int)
	SetTiffDataFirstT(firstT, image, tiffData int)
	SetTiffDataFirstC(firstC, image, tiffData int)
	SetTiffDataIFD(ifd, image, tiffData int)
	SetTiffDataPlaneCount(count, image, tiffData int)
	SetUUIDFileName(name string, image, tiffData int)
	SetUUIDValue(value string, image, tiffData int)
	SetUUID(value string)

	RemoveBinData()
	ValidateModel(correct bool) bool
	XML() (string, error)
}
