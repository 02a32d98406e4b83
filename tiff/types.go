package tiff

import (
	"fmt"

	"github.com/mrjoshuak/go-omefiles/compression"
)

// DataType is the type code of an IFD entry.
type DataType uint16

// Entry data types.
const (
	Byte      DataType = 1
	ASCII     DataType = 2
	Short     DataType = 3
	Long      DataType = 4
	Rational  DataType = 5
	SByte     DataType = 6
	Undefined DataType = 7
	SShort    DataType = 8
	SLong     DataType = 9
	SRational DataType = 10
	Float     DataType = 11
	Double    DataType = 12
	IFDType   DataType = 13
	Long8     DataType = 16
	SLong8    DataType = 17
	IFD8      DataType = 18
)

var dataTypeSizes = map[DataType]int{
	Byte: 1, ASCII: 1, Short: 2, Long: 4, Rational: 8,
	SByte: 1, Undefined: 1, SShort: 2, SLong: 4, SRational: 8,
	Float: 4, Double: 8, IFDType: 4, Long8: 8, SLong8: 8, IFD8: 8,
}

// Size returns the size in bytes of one value, or 0 for unknown types.
func (t DataType) Size() int { return dataTypeSizes[t] }

func (t DataType) String() string {
	switch t {
	case Byte:
		return "BYTE"
	case ASCII:
		return "ASCII"
	case Short:
		return "SHORT"
	case Long:
		return "LONG"
	case Rational:
		return "RATIONAL"
	case SByte:
		return "SBYTE"
	case Undefined:
		return "UNDEFINED"
	case SShort:
		return "SSHORT"
	case SLong:
		return "SLONG"
	case SRational:
		return "SRATIONAL"
	case Float:
		return "FLOAT"
	case Double:
		return "DOUBLE"
	case IFDType:
		return "IFD"
	case Long8:
		return "LONG8"
	case SLong8:
		return "SLONG8"
	case IFD8:
		return "IFD8"
	default:
		return fmt.Sprintf("DataType(%d)", uint16(t))
	}
}

// Compression is the Compression tag value. It shares its values with
// compression.Scheme.
type Compression uint16

const (
	// CompressionNone stores strips and tiles uncompressed.
	CompressionNone = Compression(compression.None)
	// CompressionLZW is TIFF LZW. Files using it can be read but not written.
	CompressionLZW = Compression(compression.LZW)
	// CompressionAdobeDeflate is zlib compression (code 8).
	CompressionAdobeDeflate = Compression(compression.AdobeDeflate)
	// CompressionDeflate is the older zlib compression code.
	CompressionDeflate = Compression(compression.Deflate)
	// CompressionPackBits is Macintosh run-length encoding.
	CompressionPackBits = Compression(compression.PackBits)
	// CompressionJPEG2000 is lossless JPEG 2000.
	CompressionJPEG2000 = Compression(compression.JPEG2000)
	// CompressionZstd is Zstandard.
	CompressionZstd = Compression(compression.Zstd)

	// Recognized but unsupported schemes.
	CompressionCCITTRLE  Compression = 2
	CompressionCCITTFax3 Compression = 3
	CompressionCCITTFax4 Compression = 4
	CompressionOJPEG     Compression = 6
	CompressionJPEG      Compression = 7
)

func (c Compression) String() string {
	switch c {
	case CompressionCCITTRLE:
		return "CCITTRLE"
	case CompressionCCITTFax3:
		return "CCITTFax3"
	case CompressionCCITTFax4:
		return "CCITTFax4"
	case CompressionOJPEG:
		return "OJPEG"
	case CompressionJPEG:
		return "JPEG"
	}
	return compression.Scheme(c).String()
}

// Photometric is the PhotometricInterpretation tag value.
type Photometric uint16

const (
	PhotometricMinIsWhite Photometric = 0
	PhotometricMinIsBlack Photometric = 1
	PhotometricRGB        Photometric = 2
	PhotometricPalette    Photometric = 3
	PhotometricMask       Photometric = 4
	PhotometricSeparated  Photometric = 5
	PhotometricYCbCr      Photometric = 6
	PhotometricCIELab     Photometric = 8
)

func (p Photometric) String() string {
	switch p {
	case PhotometricMinIsWhite:
		return "MinIsWhite"
	case PhotometricMinIsBlack:
		return "MinIsBlack"
	case PhotometricRGB:
		return "RGB"
	case PhotometricPalette:
		return "Palette"
	case PhotometricMask:
		return "Mask"
	case PhotometricSeparated:
		return "Separated"
	case PhotometricYCbCr:
		return "YCbCr"
	case PhotometricCIELab:
		return "CIELab"
	default:
		return fmt.Sprintf("Photometric(%d)", uint16(p))
	}
}

// PlanarConfig is the PlanarConfiguration tag value.
type PlanarConfig uint16

const (
	// Contig stores the samples of each pixel together.
	Contig PlanarConfig = 1
	// Separate stores each sample in its own set of strips or tiles.
	Separate PlanarConfig = 2
)

func (p PlanarConfig) String() string {
	switch p {
	case Contig:
		return "Contig"
	case Separate:
		return "Separate"
	default:
		return fmt.Sprintf("PlanarConfig(%d)", uint16(p))
	}
}

// Predictor is the Predictor tag value.
type Predictor uint16

const (
	PredictorNone          Predictor = 1
	PredictorHorizontal    Predictor = 2
	PredictorFloatingPoint Predictor = 3
)

func (p Predictor) String() string {
	switch p {
	case PredictorNone:
		return "None"
	case PredictorHorizontal:
		return "Horizontal"
	case PredictorFloatingPoint:
		return "FloatingPoint"
	default:
		return fmt.Sprintf("Predictor(%d)", uint16(p))
	}
}

// SampleFormat is the SampleFormat tag value.
type SampleFormat uint16

const (
	SampleFormatUint          SampleFormat = 1
	SampleFormatInt           SampleFormat = 2
	SampleFormatIEEEFP        SampleFormat = 3
	SampleFormatVoid          SampleFormat = 4
	SampleFormatComplexInt    SampleFormat = 5
	SampleFormatComplexIEEEFP SampleFormat = 6
)

func (s SampleFormat) String() string {
	switch s {
	case SampleFormatUint:
		return "Uint"
	case SampleFormatInt:
		return "Int"
	case SampleFormatIEEEFP:
		return "IEEEFP"
	case SampleFormatVoid:
		return "Void"
	case SampleFormatComplexInt:
		return "ComplexInt"
	case SampleFormatComplexIEEEFP:
		return "ComplexIEEEFP"
	default:
		return fmt.Sprintf("SampleFormat(%d)", uint16(s))
	}
}

// FillOrder is the FillOrder tag value.
type FillOrder uint16

const (
	FillOrderMSB2LSB FillOrder = 1
	FillOrderLSB2MSB FillOrder = 2
)

// Orientation is the Orientation tag value.
type Orientation uint16

const (
	OrientationTopLeft     Orientation = 1
	OrientationTopRight    Orientation = 2
	OrientationBottomRight Orientation = 3
	OrientationBottomLeft  Orientation = 4
	OrientationLeftTop     Orientation = 5
	OrientationRightTop    Orientation = 6
	OrientationRightBottom Orientation = 7
	OrientationLeftBottom  Orientation = 8
)

// Threshholding is the Threshholding tag value.
type Threshholding uint16

const (
	ThreshholdingBilevel  Threshholding = 1
	ThreshholdingHalftone Threshholding = 2
	ThreshholdingErrorDif Threshholding = 3
)

// YCbCrPosition is the YCbCrPositioning tag value.
type YCbCrPosition uint16

const (
	YCbCrCentered YCbCrPosition = 1
	YCbCrCosited  YCbCrPosition = 2
)

// ExtraSample is one value of the ExtraSamples tag.
type ExtraSample uint16

const (
	ExtraSampleUnspecified ExtraSample = 0
	ExtraSampleAssocAlpha  ExtraSample = 1
	ExtraSampleUnassAlpha  ExtraSample = 2
)

// TileType selects strip or tile organization of an image.
type TileType uint8

const (
	Strip TileType = iota
	Tile
)

func (t TileType) String() string {
	if t == Tile {
		return "Tile"
	}
	return "Strip"
}
