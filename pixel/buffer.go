package pixel

import (
	"errors"
	"fmt"
	"io"
	"unsafe"

	"github.com/mrjoshuak/go-omefiles"
	"github.com/mrjoshuak/go-omefiles/internal/binio"
	"github.com/mrjoshuak/go-omefiles/internal/bufpool"
)

// Buffer errors
var (
	ErrInvalidShape    = errors.New("pixel: invalid buffer shape")
	ErrInvalidOrder    = errors.New("pixel: invalid storage order")
	ErrSizeMismatch    = errors.New("pixel: element count mismatch")
	ErrExtentMismatch  = errors.New("pixel: extent mismatch")
	ErrTypeMismatch    = errors.New("pixel: pixel type mismatch")
	ErrInvalidEndian   = errors.New("pixel: invalid endian type")
	ErrBorrowedStorage = errors.New("pixel: borrowed storage cannot be resized")
)

// Buffer is a 9-dimensional array of samples of type T.
//
// Element values in memory are always in host byte order. The buffer's
// EndianType selects the byte order used by Read and Write.
//
// A Buffer either manages its own storage or borrows a caller-supplied
// slice. A borrowed slice is never reallocated; the caller must keep it
// alive and must not resize it while the buffer is in use.
//
// A Buffer is not safe for concurrent mutation.
type Buffer[T Sample] struct {
	data    []T
	shape   Shape
	order   StorageOrder
	strides [NumDims]int
	endian  EndianType
	managed bool
}

func checkLayout(op string, shape Shape, order StorageOrder, endian EndianType) error {
	if !shape.Valid() {
		return &omefiles.LogicError{Op: op, Msg: shape.String(), Err: ErrInvalidShape}
	}
	if !order.Valid() {
		return &omefiles.LogicError{Op: op, Msg: order.String(), Err: ErrInvalidOrder}
	}
	if endian > EndianLittle {
		return &omefiles.LogicError{Op: op, Msg: endian.String(), Err: ErrInvalidEndian}
	}
	return nil
}

// NewBuffer returns a zero-filled buffer that manages its own storage.
func NewBuffer[T Sample](shape Shape, order StorageOrder, endian EndianType) (*Buffer[T], error) {
	if err := checkLayout("NewBuffer", shape, order, endian); err != nil {
		return nil, err
	}
	return &Buffer[T]{
		data:    make([]T, shape.NumElements()),
		shape:   shape,
		order:   order,
		strides: order.Strides(shape),
		endian:  endian,
		managed: true,
	}, nil
}

// NewDefaultBuffer returns a managed single-element buffer in the default
// interleaved storage order and native byte order.
func NewDefaultBuffer[T Sample]() *Buffer[T] {
	return MustNewBuffer[T](UnitShape(), DefaultStorageOrder(true), EndianNative)
}

// MustNewBuffer is like NewBuffer but panics on error.
func MustNewBuffer[T Sample](shape Shape, order StorageOrder, endian EndianType) *Buffer[T] {
	b, err := NewBuffer[T](shape, order, endian)
	if err != nil {
		panic(err)
	}
	return b
}

// NewBufferFrom returns a buffer viewing data, which must hold exactly
// shape.NumElements() elements in the physical order described by order.
// The buffer does not take ownership of data.
func NewBufferFrom[T Sample](data []T, shape Shape, order StorageOrder, endian EndianType) (*Buffer[T], error) {
	if err := checkLayout("NewBufferFrom", shape, order, endian); err != nil {
		return nil, err
	}
	if len(data) != shape.NumElements() {
		return nil, &omefiles.LogicError{
			Op:  "NewBufferFrom",
			Msg: fmt.Sprintf("have %d elements, shape %s needs %d", len(data), shape, shape.NumElements()),
			Err: ErrSizeMismatch,
		}
	}
	return &Buffer[T]{
		data:    data,
		shape:   shape,
		order:   order,
		strides: order.Strides(shape),
		endian:  endian,
	}, nil
}

// Shape returns the logical extents.
func (b *Buffer[T]) Shape() Shape { return b.shape }

// StorageOrder returns the physical layout.
func (b *Buffer[T]) StorageOrder() StorageOrder { return b.order }

// Strides returns the element stride of each logical axis.
func (b *Buffer[T]) Strides() [NumDims]int { return b.strides }

// NumElements returns the total number of elements.
func (b *Buffer[T]) NumElements() int { return len(b.data) }

// PixelType returns the pixel type of T.
func (b *Buffer[T]) PixelType() Type { return TypeOf[T]() }

// Endian returns the byte order used by Read and Write.
func (b *Buffer[T]) Endian() EndianType { return b.endian }

// Valid reports whether the buffer has backing storage.
func (b *Buffer[T]) Valid() bool { return b != nil && b.data != nil }

// Managed reports whether the buffer owns its storage.
func (b *Buffer[T]) Managed() bool { return b.managed }

// Data returns the elements in physical order. The slice aliases the
// buffer's storage.
func (b *Buffer[T]) Data() []T { return b.data }

// Bytes returns the storage as bytes in host byte order. The slice aliases
// the buffer's storage.
func (b *Buffer[T]) Bytes() []byte {
	if len(b.data) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&b.data[0])), len(b.data)*int(unsafe.Sizeof(zero)))
}

// Offset returns the physical element offset of idx. It panics if idx is
// out of range.
func (b *Buffer[T]) Offset(idx Index) int {
	off := 0
	for d := 0; d < NumDims; d++ {
		i, e := idx[d], b.shape[d]
		if i < 0 || i >= e {
			panic(fmt.Sprintf("pixel: index %v out of range for shape %s", idx, b.shape))
		}
		if !b.order.Ascending[d] {
			i = e - 1 - i
		}
		off += i * b.strides[d]
	}
	return off
}

// At returns the element at idx. It panics if idx is out of range.
func (b *Buffer[T]) At(idx Index) T {
	return b.data[b.Offset(idx)]
}

// Set stores v at idx. It panics if idx is out of range.
func (b *Buffer[T]) Set(idx Index, v T) {
	b.data[b.Offset(idx)] = v
}

// Ptr returns a pointer to the element at idx. It panics if idx is out of
// range.
func (b *Buffer[T]) Ptr(idx Index) *T {
	return &b.data[b.Offset(idx)]
}

// Assign replaces the contents with src, given in physical order.
func (b *Buffer[T]) Assign(src []T) error {
	if len(src) != len(b.data) {
		return &omefiles.LogicError{
			Op:  "Assign",
			Msg: fmt.Sprintf("source has %d elements, buffer has %d", len(src), len(b.data)),
			Err: ErrSizeMismatch,
		}
	}
	copy(b.data, src)
	return nil
}

// CopyFrom copies the logical content of src into b. The storage orders
// may differ. A managed buffer adopts the extents of src; a borrowed
// buffer must already have them.
func (b *Buffer[T]) CopyFrom(src *Buffer[T]) error {
	if b.shape != src.shape {
		if !b.managed {
			return &omefiles.LogicError{
				Op:  "CopyFrom",
				Msg: fmt.Sprintf("destination %s, source %s", b.shape, src.shape),
				Err: ErrBorrowedStorage,
			}
		}
		b.shape = src.shape
		b.strides = b.order.Strides(b.shape)
		b.data = make([]T, b.shape.NumElements())
	}
	if b.order == src.order {
		copy(b.data, src.data)
		return nil
	}
	forEachIndex(b.shape, func(idx Index) {
		b.data[b.Offset(idx)] = src.data[src.Offset(idx)]
	})
	return nil
}

// Equal reports whether b and o have the same extents and the same element
// at every logical index.
func (b *Buffer[T]) Equal(o *Buffer[T]) bool {
	if b.shape != o.shape {
		return false
	}
	if b.order == o.order {
		for i := range b.data {
			if b.data[i] != o.data[i] {
				return false
			}
		}
		return true
	}
	eq := true
	forEachIndex(b.shape, func(idx Index) {
		if eq && b.data[b.Offset(idx)] != o.data[o.Offset(idx)] {
			eq = false
		}
	})
	return eq
}

// Write writes every element in physical order using the buffer's byte
// order.
func (b *Buffer[T]) Write(w io.Writer) error {
	raw := b.Bytes()
	size := b.PixelType().BytesPerPixel()
	if b.endian.IsNative() || size == 1 {
		_, err := w.Write(raw)
		return err
	}
	tmp := bufpool.Get(len(raw))
	defer bufpool.Put(tmp)
	copy(tmp, raw)
	binio.Swap(tmp, swapUnit(b.PixelType()))
	_, err := w.Write(tmp)
	return err
}

// Read fills every element in physical order from r, which must supply
// NumElements samples in the buffer's byte order.
func (b *Buffer[T]) Read(r io.Reader) error {
	raw := b.Bytes()
	pt := b.PixelType()
	if pt == Bit {
		tmp := bufpool.Get(len(raw))
		defer bufpool.Put(tmp)
		if _, err := io.ReadFull(r, tmp); err != nil {
			return err
		}
		bits := any(b.data).([]BitValue)
		for i, v := range tmp {
			bits[i] = v != 0
		}
		return nil
	}
	if _, err := io.ReadFull(r, raw); err != nil {
		return err
	}
	if !b.endian.IsNative() && pt.BytesPerPixel() > 1 {
		binio.Swap(raw, swapUnit(pt))
	}
	return nil
}

// swapUnit is the byte-swap granularity of t: complex values swap each
// component separately.
func swapUnit(t Type) int {
	if t.IsComplex() {
		return t.BytesPerPixel() / 2
	}
	return t.BytesPerPixel()
}

// forEachIndex calls fn for every index of s, X varying fastest.
func forEachIndex(s Shape, fn func(Index)) {
	if s.NumElements() == 0 {
		return
	}
	var idx Index
	for {
		fn(idx)
		d := 0
		for ; d < NumDims; d++ {
			idx[d]++
			if idx[d] < s[d] {
				break
			}
			idx[d] = 0
		}
		if d == NumDims {
			return
		}
	}
}
