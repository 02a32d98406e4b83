package compression

import (
	"bytes"
	"errors"
	"io"

	"golang.org/x/image/tiff/lzw"
)

// ErrLZWCorrupted is returned for LZW streams that end before the expected
// number of bytes has been decoded.
var ErrLZWCorrupted = errors.New("compression: corrupted LZW data")

// ErrEncodeUnsupported is returned by codecs that can only decode.
var ErrEncodeUnsupported = errors.New("compression: encoding not supported")

// LZWDecompressTo decodes a TIFF LZW stream (MSB first, 8-bit literals,
// with the early code-width change TIFF writers use) into dst.
func LZWDecompressTo(dst, src []byte) error {
	r := lzw.NewReader(bytes.NewReader(src), lzw.MSB, 8)
	defer r.Close()
	n, err := io.ReadFull(r, dst)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return errors.Join(ErrLZWCorrupted, err)
	}
	if n != len(dst) {
		return ErrLZWCorrupted
	}
	return nil
}

// lzwCodec decodes LZW strips and tiles. Writing LZW is not supported; the
// writer falls back to an error so callers pick another scheme.
type lzwCodec struct{}

func (lzwCodec) Encode([]byte, Params) ([]byte, error) {
	return nil, ErrEncodeUnsupported
}

func (lzwCodec) Decode(dst, src []byte, _ Params) error {
	return LZWDecompressTo(dst, src)
}
