package pixel

import (
	"fmt"
	"io"

	"github.com/mrjoshuak/go-omefiles"
)

// buffer is the type-erased view of a *Buffer[T].
type buffer interface {
	Shape() Shape
	StorageOrder() StorageOrder
	Strides() [NumDims]int
	NumElements() int
	PixelType() Type
	Endian() EndianType
	Valid() bool
	Managed() bool
	Bytes() []byte
	Offset(Index) int
	Read(io.Reader) error
	Write(io.Writer) error

	equalErased(buffer) bool
	copyErased(buffer) error
}

// Variant holds a Buffer of any pixel type. The zero Variant holds no
// buffer.
type Variant struct {
	buf buffer
}

type constructor func(Shape, StorageOrder, EndianType) (buffer, error)

func construct[T Sample](s Shape, o StorageOrder, e EndianType) (buffer, error) {
	b, err := NewBuffer[T](s, o, e)
	if err != nil {
		return nil, err
	}
	return b, nil
}

var constructors = [...]constructor{
	Int8:          construct[int8],
	Int16:         construct[int16],
	Int32:         construct[int32],
	Uint8:         construct[uint8],
	Uint16:        construct[uint16],
	Uint32:        construct[uint32],
	Float:         construct[float32],
	Double:        construct[float64],
	Bit:           construct[BitValue],
	ComplexFloat:  construct[complex64],
	ComplexDouble: construct[complex128],
}

// NewVariant returns a variant holding a managed, zero-filled buffer of
// pixel type pt.
func NewVariant(pt Type, shape Shape, order StorageOrder, endian EndianType) (*Variant, error) {
	if !pt.Valid() {
		return nil, &omefiles.LogicError{Op: "NewVariant", Msg: pt.String(), Err: ErrUnsupportedPixelType}
	}
	b, err := constructors[pt](shape, order, endian)
	if err != nil {
		return nil, err
	}
	return &Variant{buf: b}, nil
}

// VariantOf wraps b in a Variant. The variant shares b's storage.
func VariantOf[T Sample](b *Buffer[T]) *Variant {
	return &Variant{buf: b}
}

// As returns the typed buffer held by v, if its element type is T.
func As[T Sample](v *Variant) (*Buffer[T], bool) {
	if v == nil || v.buf == nil {
		return nil, false
	}
	b, ok := v.buf.(*Buffer[T])
	return b, ok
}

// Reset replaces the held buffer with a new managed one.
func (v *Variant) Reset(pt Type, shape Shape, order StorageOrder, endian EndianType) error {
	nv, err := NewVariant(pt, shape, order, endian)
	if err != nil {
		return err
	}
	v.buf = nv.buf
	return nil
}

// Valid reports whether v holds a buffer with storage.
func (v *Variant) Valid() bool { return v != nil && v.buf != nil && v.buf.Valid() }

// Shape returns the logical extents of the held buffer.
func (v *Variant) Shape() Shape { return v.buf.Shape() }

// StorageOrder returns the physical layout of the held buffer.
func (v *Variant) StorageOrder() StorageOrder { return v.buf.StorageOrder() }

// Strides returns the element strides of the held buffer.
func (v *Variant) Strides() [NumDims]int { return v.buf.Strides() }

// NumElements returns the element count of the held buffer.
func (v *Variant) NumElements() int { return v.buf.NumElements() }

// PixelType returns the pixel type of the held buffer.
func (v *Variant) PixelType() Type { return v.buf.PixelType() }

// Endian returns the stream byte order of the held buffer.
func (v *Variant) Endian() EndianType { return v.buf.Endian() }

// Managed reports whether the held buffer owns its storage.
func (v *Variant) Managed() bool { return v.buf.Managed() }

// Bytes returns the held buffer's storage in host byte order.
func (v *Variant) Bytes() []byte { return v.buf.Bytes() }

// Offset returns the physical element offset of idx.
func (v *Variant) Offset(idx Index) int { return v.buf.Offset(idx) }

// Read fills the held buffer from r.
func (v *Variant) Read(r io.Reader) error { return v.buf.Read(r) }

// Write writes the held buffer to w.
func (v *Variant) Write(w io.Writer) error { return v.buf.Write(w) }

// Equal reports whether v and o hold buffers of the same pixel type with
// equal logical content.
func (v *Variant) Equal(o *Variant) bool {
	if !v.Valid() || !o.Valid() {
		return v.Valid() == o.Valid()
	}
	return v.buf.equalErased(o.buf)
}

// CopyFrom copies the logical content of src into v. Both must hold the
// same pixel type.
func (v *Variant) CopyFrom(src *Variant) error {
	if v.PixelType() != src.PixelType() {
		return &omefiles.LogicError{
			Op:  "CopyFrom",
			Msg: fmt.Sprintf("destination %s, source %s", v.PixelType(), src.PixelType()),
			Err: ErrTypeMismatch,
		}
	}
	return v.buf.copyErased(src.buf)
}

func (b *Buffer[T]) equalErased(o buffer) bool {
	ob, ok := o.(*Buffer[T])
	return ok && b.Equal(ob)
}

func (b *Buffer[T]) copyErased(o buffer) error {
	ob, ok := o.(*Buffer[T])
	if !ok {
		return &omefiles.LogicError{Op: "CopyFrom", Msg: o.PixelType().String(), Err: ErrTypeMismatch}
	}
	return b.CopyFrom(ob)
}
