// Package binio provides byte-order aware binary encoding and decoding
// utilities for TIFF headers, directories and in-place file patches.
//
// TIFF files declare their byte order in the first two bytes, so every
// reader and writer here carries an explicit binary.ByteOrder.
package binio

import (
	"encoding/binary"
	"errors"
	"io"
	"math"
)

var (
	// ErrShortBuffer is returned when a read cannot complete because the
	// data ends early.
	ErrShortBuffer = errors.New("binio: buffer too short")

	// ErrNegativeSize is returned when a size or position is negative.
	ErrNegativeSize = errors.New("binio: negative size")

	// ErrBadMagic is returned when a byte-order mark is neither "II" nor
	// "MM".
	ErrBadMagic = errors.New("binio: invalid byte order mark")
)

// Byte-order marks.
var (
	MarkLittle = [2]byte{'I', 'I'}
	MarkBig    = [2]byte{'M', 'M'}
)

// DetectOrder returns the byte order named by a TIFF byte-order mark.
func DetectOrder(mark [2]byte) (binary.ByteOrder, error) {
	switch mark {
	case MarkLittle:
		return binary.LittleEndian, nil
	case MarkBig:
		return binary.BigEndian, nil
	}
	return nil, ErrBadMagic
}

// Mark returns the byte-order mark for order.
func Mark(order binary.ByteOrder) [2]byte {
	if order == binary.BigEndian {
		return MarkBig
	}
	return MarkLittle
}

// Swap reverses the byte order of every size-byte unit in b. Sizes of 0 or
// 1 leave b unchanged.
func Swap(b []byte, size int) {
	switch size {
	case 0, 1:
	case 2:
		for i := 0; i+1 < len(b); i += 2 {
			b[i], b[i+1] = b[i+1], b[i]
		}
	case 4:
		for i := 0; i+3 < len(b); i += 4 {
			b[i], b[i+1], b[i+2], b[i+3] = b[i+3], b[i+2], b[i+1], b[i]
		}
	default:
		for i := 0; i+size <= len(b); i += size {
			u := b[i : i+size]
			for l, r := 0, size-1; l < r; l, r = l+1, r-1 {
				u[l], u[r] = u[r], u[l]
			}
		}
	}
}

// Reader provides bounds-checked binary reading from a byte slice.
type Reader struct {
	data  []byte
	pos   int
	order binary.ByteOrder
}

// NewReader creates a Reader from a byte slice.
func NewReader(data []byte, order binary.ByteOrder) *Reader {
	return &Reader{data: data, order: order}
}

// Order returns the reader's byte order.
func (r *Reader) Order() binary.ByteOrder { return r.order }

// Len returns the number of unread bytes.
func (r *Reader) Len() int {
	if r.pos >= len(r.data) {
		return 0
	}
	return len(r.data) - r.pos
}

// Pos returns the current read position.
func (r *Reader) Pos() int { return r.pos }

// SetPos sets the read position.
func (r *Reader) SetPos(pos int) error {
	if pos < 0 || pos > len(r.data) {
		return ErrShortBuffer
	}
	r.pos = pos
	return nil
}

// Skip advances the read position by n bytes.
func (r *Reader) Skip(n int) error {
	if n < 0 {
		return ErrNegativeSize
	}
	if r.Len() < n {
		return ErrShortBuffer
	}
	r.pos += n
	return nil
}

// ReadBytes returns the next n bytes. The slice aliases the reader's data.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, ErrNegativeSize
	}
	if r.Len() < n {
		return nil, ErrShortBuffer
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadUint8 reads an unsigned 8-bit integer.
func (r *Reader) ReadUint8() (uint8, error) {
	if r.Len() < 1 {
		return 0, ErrShortBuffer
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

// ReadUint16 reads an unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	if r.Len() < 2 {
		return 0, ErrShortBuffer
	}
	v := r.order.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

// ReadUint32 reads an unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	if r.Len() < 4 {
		return 0, ErrShortBuffer
	}
	v := r.order.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

// ReadUint64 reads an unsigned 64-bit integer.
func (r *Reader) ReadUint64() (uint64, error) {
	if r.Len() < 8 {
		return 0, ErrShortBuffer
	}
	v := r.order.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

// ReadOffset reads a 4-byte offset, or an 8-byte offset when big is set.
func (r *Reader) ReadOffset(big bool) (uint64, error) {
	if big {
		return r.ReadUint64()
	}
	v, err := r.ReadUint32()
	return uint64(v), err
}

// ReadFloat32 reads a 32-bit IEEE 754 floating-point number.
func (r *Reader) ReadFloat32() (float32, error) {
	v, err := r.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadFloat64 reads a 64-bit IEEE 754 floating-point number.
func (r *Reader) ReadFloat64() (float64, error) {
	v, err := r.ReadUint64()
	return math.Float64frombits(v), err
}

// BufferWriter is a growing buffer for binary data.
type BufferWriter struct {
	buf   []byte
	order binary.ByteOrder
}

// NewBufferWriter creates a BufferWriter with an initial capacity.
func NewBufferWriter(capacity int, order binary.ByteOrder) *BufferWriter {
	return &BufferWriter{buf: make([]byte, 0, capacity), order: order}
}

// Len returns the number of bytes written.
func (w *BufferWriter) Len() int { return len(w.buf) }

// Bytes returns the written data. The slice is valid until the next write.
func (w *BufferWriter) Bytes() []byte { return w.buf }

// Reset clears the buffer.
func (w *BufferWriter) Reset() { w.buf = w.buf[:0] }

// WriteBytes appends b.
func (w *BufferWriter) WriteBytes(b []byte) { w.buf = append(w.buf, b...) }

// WriteUint8 appends an unsigned 8-bit integer.
func (w *BufferWriter) WriteUint8(v uint8) { w.buf = append(w.buf, v) }

// WriteUint16 appends an unsigned 16-bit integer.
func (w *BufferWriter) WriteUint16(v uint16) {
	var b [2]byte
	w.order.PutUint16(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteUint32 appends an unsigned 32-bit integer.
func (w *BufferWriter) WriteUint32(v uint32) {
	var b [4]byte
	w.order.PutUint32(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteUint64 appends an unsigned 64-bit integer.
func (w *BufferWriter) WriteUint64(v uint64) {
	var b [8]byte
	w.order.PutUint64(b[:], v)
	w.buf = append(w.buf, b[:]...)
}

// WriteOffset appends a 4-byte offset, or an 8-byte offset when big is set.
func (w *BufferWriter) WriteOffset(big bool, v uint64) {
	if big {
		w.WriteUint64(v)
	} else {
		w.WriteUint32(uint32(v))
	}
}

// WriteFloat32 appends a 32-bit IEEE 754 floating-point number.
func (w *BufferWriter) WriteFloat32(v float32) { w.WriteUint32(math.Float32bits(v)) }

// WriteFloat64 appends a 64-bit IEEE 754 floating-point number.
func (w *BufferWriter) WriteFloat64(v float64) { w.WriteUint64(math.Float64bits(v)) }

// ReadWriterAt is a random-access file, such as *os.File.
type ReadWriterAt interface {
	io.ReaderAt
	io.WriterAt
}

// Patcher reads and overwrites fixed-size integers at absolute file
// offsets.
type Patcher struct {
	f     ReadWriterAt
	order binary.ByteOrder
	buf   [8]byte
}

// NewPatcher returns a Patcher over f.
func NewPatcher(f ReadWriterAt, order binary.ByteOrder) *Patcher {
	return &Patcher{f: f, order: order}
}

// SetOrder changes the byte order, for use once the header has been read.
func (p *Patcher) SetOrder(order binary.ByteOrder) { p.order = order }

func (p *Patcher) read(off int64, n int) ([]byte, error) {
	if _, err := p.f.ReadAt(p.buf[:n], off); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return p.buf[:n], nil
}

// Uint16At reads an unsigned 16-bit integer at off.
func (p *Patcher) Uint16At(off int64) (uint16, error) {
	b, err := p.read(off, 2)
	if err != nil {
		return 0, err
	}
	return p.order.Uint16(b), nil
}

// Uint32At reads an unsigned 32-bit integer at off.
func (p *Patcher) Uint32At(off int64) (uint32, error) {
	b, err := p.read(off, 4)
	if err != nil {
		return 0, err
	}
	return p.order.Uint32(b), nil
}

// Uint64At reads an unsigned 64-bit integer at off.
func (p *Patcher) Uint64At(off int64) (uint64, error) {
	b, err := p.read(off, 8)
	if err != nil {
		return 0, err
	}
	return p.order.Uint64(b), nil
}

// OffsetAt reads a 4- or 8-byte offset at off.
func (p *Patcher) OffsetAt(off int64, big bool) (uint64, error) {
	if big {
		return p.Uint64At(off)
	}
	v, err := p.Uint32At(off)
	return uint64(v), err
}

// PutUint32At overwrites an unsigned 32-bit integer at off.
func (p *Patcher) PutUint32At(off int64, v uint32) error {
	p.order.PutUint32(p.buf[:4], v)
	_, err := p.f.WriteAt(p.buf[:4], off)
	return err
}

// PutUint64At overwrites an unsigned 64-bit integer at off.
func (p *Patcher) PutUint64At(off int64, v uint64) error {
	p.order.PutUint64(p.buf[:8], v)
	_, err := p.f.WriteAt(p.buf[:8], off)
	return err
}

// PutOffsetAt overwrites a 4- or 8-byte offset at off.
func (p *Patcher) PutOffsetAt(off int64, big bool, v uint64) error {
	if big {
		return p.PutUint64At(off, v)
	}
	return p.PutUint32At(off, uint32(v))
}
