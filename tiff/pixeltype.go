package tiff

import (
	"fmt"

	"github.com/mrjoshuak/go-omefiles"
	"github.com/mrjoshuak/go-omefiles/pixel"
)

type formatBits struct {
	format SampleFormat
	bits   uint16
}

var pixelTypes = map[formatBits]pixel.Type{
	{SampleFormatUint, 1}:            pixel.Bit,
	{SampleFormatUint, 8}:            pixel.Uint8,
	{SampleFormatUint, 16}:           pixel.Uint16,
	{SampleFormatUint, 32}:           pixel.Uint32,
	{SampleFormatInt, 8}:             pixel.Int8,
	{SampleFormatInt, 16}:            pixel.Int16,
	{SampleFormatInt, 32}:            pixel.Int32,
	{SampleFormatIEEEFP, 32}:         pixel.Float,
	{SampleFormatIEEEFP, 64}:         pixel.Double,
	{SampleFormatComplexIEEEFP, 64}:  pixel.ComplexFloat,
	{SampleFormatComplexIEEEFP, 128}: pixel.ComplexDouble,
}

// PixelType derives the pixel type from SampleFormat and BitsPerSample.
func (ifd *IFD) PixelType() (pixel.Type, error) {
	sf, err := ifd.SampleFormat()
	if err != nil {
		return 0, err
	}
	bits, err := ifd.BitsPerSample()
	if err != nil {
		return 0, err
	}
	if pt, ok := pixelTypes[formatBits{sf, bits}]; ok {
		return pt, nil
	}
	return 0, &omefiles.FormatError{
		Op:  "PixelType",
		Msg: fmt.Sprintf("directory %d: no pixel type for %d-bit %s samples", ifd.index, bits, sf),
		Err: pixel.ErrUnsupportedPixelType,
	}
}

// SetPixelType sets SampleFormat and BitsPerSample for pt.
func (ifd *IFD) SetPixelType(pt pixel.Type) error {
	for fb, t := range pixelTypes {
		if t == pt {
			if err := ifd.SetBitsPerSample(fb.bits); err != nil {
				return err
			}
			return GetField(ifd, TagSampleFormat).Set(fb.format)
		}
	}
	return &omefiles.FormatError{
		Op:  "SetPixelType",
		Msg: fmt.Sprintf("pixel type %v has no TIFF sample format", pt),
		Err: pixel.ErrUnsupportedPixelType,
	}
}
