// Package predictor implements the TIFF differencing predictors.
//
// Predictor 2 (horizontal differencing) replaces each sample with its
// difference from the same sample of the previous pixel in the row.
// Predictor 3 (floating point) first regroups the bytes of each row so
// that all most significant bytes come first, then differences bytes.
// Both tend to produce more compressible data for images with local
// coherence.
//
// All functions work in place on whole rows in the file byte order.
package predictor

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mrjoshuak/go-omefiles/internal/binio"
	"github.com/mrjoshuak/go-omefiles/internal/interleave"
)

// ErrUnsupported is returned for sample sizes a predictor cannot handle.
var ErrUnsupported = errors.New("predictor: unsupported sample size")

// Kind is a TIFF Predictor tag value.
type Kind uint16

// Predictor kinds.
const (
	None          Kind = 1
	Horizontal    Kind = 2
	FloatingPoint Kind = 3
)

// Layout describes the rows a predictor runs over.
type Layout struct {
	RowBytes       int
	Samples        int // samples per pixel in each row
	BytesPerSample int
	ByteOrder      binary.ByteOrder
}

func (l Layout) check(k Kind) error {
	if l.RowBytes <= 0 || l.Samples <= 0 {
		return fmt.Errorf("predictor: invalid layout %d bytes/%d samples", l.RowBytes, l.Samples)
	}
	switch l.BytesPerSample {
	case 1, 2, 4, 8:
	default:
		return fmt.Errorf("%w: %d bytes", ErrUnsupported, l.BytesPerSample)
	}
	if k == FloatingPoint && l.BytesPerSample == 1 {
		return fmt.Errorf("%w: floating point predictor on 1-byte samples", ErrUnsupported)
	}
	return nil
}

// Encode applies predictor k to every row of data.
func Encode(k Kind, data []byte, l Layout) error {
	if k == None {
		return nil
	}
	if l.ByteOrder == nil {
		l.ByteOrder = binary.LittleEndian
	}
	if err := l.check(k); err != nil {
		return err
	}
	var scratch []byte
	if k == FloatingPoint {
		scratch = make([]byte, l.RowBytes)
	}
	for off := 0; off+l.RowBytes <= len(data); off += l.RowBytes {
		row := data[off : off+l.RowBytes]
		switch k {
		case Horizontal:
			encodeRow(row, l)
		case FloatingPoint:
			encodeFloatRow(row, scratch, l)
		default:
			return fmt.Errorf("predictor: unknown predictor %d", k)
		}
	}
	return nil
}

// Decode reverses predictor k on every row of data.
func Decode(k Kind, data []byte, l Layout) error {
	if k == None {
		return nil
	}
	if l.ByteOrder == nil {
		l.ByteOrder = binary.LittleEndian
	}
	if err := l.check(k); err != nil {
		return err
	}
	var scratch []byte
	if k == FloatingPoint {
		scratch = make([]byte, l.RowBytes)
	}
	for off := 0; off+l.RowBytes <= len(data); off += l.RowBytes {
		row := data[off : off+l.RowBytes]
		switch k {
		case Horizontal:
			decodeRow(row, l)
		case FloatingPoint:
			decodeFloatRow(row, scratch, l)
		default:
			return fmt.Errorf("predictor: unknown predictor %d", k)
		}
	}
	return nil
}

func encodeRow(row []byte, l Layout) {
	s := l.Samples
	o := l.ByteOrder
	switch l.BytesPerSample {
	case 1:
		EncodeBytes(row, s)
	case 2:
		n := len(row) / 2
		for i := n - 1; i >= s; i-- {
			o.PutUint16(row[i*2:], o.Uint16(row[i*2:])-o.Uint16(row[(i-s)*2:]))
		}
	case 4:
		n := len(row) / 4
		for i := n - 1; i >= s; i-- {
			o.PutUint32(row[i*4:], o.Uint32(row[i*4:])-o.Uint32(row[(i-s)*4:]))
		}
	case 8:
		n := len(row) / 8
		for i := n - 1; i >= s; i-- {
			o.PutUint64(row[i*8:], o.Uint64(row[i*8:])-o.Uint64(row[(i-s)*8:]))
		}
	}
}

func decodeRow(row []byte, l Layout) {
	s := l.Samples
	o := l.ByteOrder
	switch l.BytesPerSample {
	case 1:
		DecodeBytes(row, s)
	case 2:
		n := len(row) / 2
		for i := s; i < n; i++ {
			o.PutUint16(row[i*2:], o.Uint16(row[i*2:])+o.Uint16(row[(i-s)*2:]))
		}
	case 4:
		n := len(row) / 4
		for i := s; i < n; i++ {
			o.PutUint32(row[i*4:], o.Uint32(row[i*4:])+o.Uint32(row[(i-s)*4:]))
		}
	case 8:
		n := len(row) / 8
		for i := s; i < n; i++ {
			o.PutUint64(row[i*8:], o.Uint64(row[i*8:])+o.Uint64(row[(i-s)*8:]))
		}
	}
}

// EncodeBytes applies horizontal differencing to 8-bit samples with the
// given number of samples per pixel.
func EncodeBytes(row []byte, stride int) {
	if stride == 1 {
		// Work backwards to preserve values we need, 8 at a time.
		i := len(row) - 1
		for ; i >= 8; i -= 8 {
			row[i] -= row[i-1]
			row[i-1] -= row[i-2]
			row[i-2] -= row[i-3]
			row[i-3] -= row[i-4]
			row[i-4] -= row[i-5]
			row[i-5] -= row[i-6]
			row[i-6] -= row[i-7]
			row[i-7] -= row[i-8]
		}
		for ; i >= 1; i-- {
			row[i] -= row[i-1]
		}
		return
	}
	for i := len(row) - 1; i >= stride; i-- {
		row[i] -= row[i-stride]
	}
}

// DecodeBytes reverses EncodeBytes.
func DecodeBytes(row []byte, stride int) {
	if stride == 1 {
		i := 1
		for ; i+7 < len(row); i += 8 {
			row[i] += row[i-1]
			row[i+1] += row[i]
			row[i+2] += row[i+1]
			row[i+3] += row[i+2]
			row[i+4] += row[i+3]
			row[i+5] += row[i+4]
			row[i+6] += row[i+5]
			row[i+7] += row[i+6]
		}
		for ; i < len(row); i++ {
			row[i] += row[i-1]
		}
		return
	}
	for i := stride; i < len(row); i++ {
		row[i] += row[i-stride]
	}
}

// encodeFloatRow regroups the row's bytes most significant first and
// differences them with a stride of one pixel.
func encodeFloatRow(row, scratch []byte, l Layout) {
	if l.ByteOrder == binary.LittleEndian {
		binio.Swap(row, l.BytesPerSample)
	}
	interleave.Bytes(row, l.BytesPerSample, scratch)
	copy(row, scratch)
	EncodeBytes(row, l.Samples)
}

func decodeFloatRow(row, scratch []byte, l Layout) {
	DecodeBytes(row, l.Samples)
	interleave.Unbytes(row, l.BytesPerSample, scratch)
	copy(row, scratch)
	if l.ByteOrder == binary.LittleEndian {
		binio.Swap(row, l.BytesPerSample)
	}
}
