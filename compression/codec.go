// Package compression provides the strip and tile codecs used by TIFF
// files.
//
// Each codec works on the bytes of one strip or tile after any predictor
// has been applied. Multi-byte samples are in the file's byte order.
package compression

import (
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupportedScheme is returned for compression schemes without a codec.
var ErrUnsupportedScheme = errors.New("compression: unsupported compression scheme")

// Scheme is a TIFF Compression tag value.
type Scheme uint16

// Supported schemes.
const (
	None         Scheme = 1
	LZW          Scheme = 5
	AdobeDeflate Scheme = 8
	PackBits     Scheme = 32773
	Deflate      Scheme = 32946
	JPEG2000     Scheme = 34712
	Zstd         Scheme = 50000
)

var schemeNames = map[Scheme]string{
	None:         "None",
	LZW:          "LZW",
	AdobeDeflate: "AdobeDeflate",
	PackBits:     "PackBits",
	Deflate:      "Deflate",
	JPEG2000:     "JPEG2000",
	Zstd:         "Zstd",
}

func (s Scheme) String() string {
	if n, ok := schemeNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Scheme(%d)", uint16(s))
}

// ParseScheme looks up a scheme by name, ignoring case.
func ParseScheme(name string) (Scheme, error) {
	for s, n := range schemeNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedScheme, name)
}

// CanEncode reports whether tiles can be written with s.
func (s Scheme) CanEncode() bool {
	_, ok := schemeNames[s]
	return ok && s != LZW
}

// Params describes the uncompressed layout of one strip or tile.
type Params struct {
	Width, Height int // in pixels
	Samples       int // samples per pixel in this strip or tile
	BitsPerSample int
	Signed        bool
	Float         bool
	ByteOrder     binary.ByteOrder
}

// RowBytes returns the size of one row, rounded up to whole bytes.
func (p Params) RowBytes() int {
	return (p.Width*p.Samples*p.BitsPerSample + 7) / 8
}

// Rows returns the number of rows.
func (p Params) Rows() int { return p.Height }

// Size returns the uncompressed size in bytes.
func (p Params) Size() int { return p.RowBytes() * p.Height }

func (p Params) order() binary.ByteOrder {
	if p.ByteOrder == nil {
		return binary.LittleEndian
	}
	return p.ByteOrder
}

// Codec compresses and decompresses strips or tiles.
type Codec interface {
	// Encode returns the compressed form of src.
	Encode(src []byte, p Params) ([]byte, error)
	// Decode decompresses src into dst, which must be exactly p.Size() bytes.
	Decode(dst, src []byte, p Params) error
}

// Options configures the codecs returned by New.
type Options struct {
	DeflateLevel Level
	ZstdLevel    int
	J2KBlockSize int
}

// DefaultOptions returns the default codec options.
func DefaultOptions() Options {
	return Options{
		DeflateLevel: LevelDefault,
		ZstdLevel:    3,
		J2KBlockSize: DefaultJ2KBlockSize,
	}
}

// New returns the codec for scheme.
func New(scheme Scheme, opts Options) (Codec, error) {
	switch scheme {
	case None:
		return noneCodec{}, nil
	case LZW:
		return lzwCodec{}, nil
	case AdobeDeflate, Deflate:
		return deflateCodec{level: opts.DeflateLevel}, nil
	case PackBits:
		return packBitsCodec{}, nil
	case Zstd:
		return zstdCodec{level: opts.ZstdLevel}, nil
	case JPEG2000:
		return jpeg2000Codec{blockSize: opts.J2KBlockSize}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedScheme, scheme)
}

type noneCodec struct{}

func (noneCodec) Encode(src []byte, _ Params) ([]byte, error) {
	return src, nil
}

func (noneCodec) Decode(dst, src []byte, _ Params) error {
	if len(src) < len(dst) {
		return fmt.Errorf("compression: uncompressed data has %d bytes, want %d", len(src), len(dst))
	}
	copy(dst, src)
	return nil
}
