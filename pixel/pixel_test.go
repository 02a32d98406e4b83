package pixel

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/mrjoshuak/go-omefiles"
)

func TestTypeProperties(t *testing.T) {
	tests := []struct {
		pt                    Type
		name                  string
		bytes, bits, sigBits  int
		signed, integer, cplx bool
	}{
		{Int8, "int8", 1, 8, 8, true, true, false},
		{Int16, "int16", 2, 16, 16, true, true, false},
		{Int32, "int32", 4, 32, 32, true, true, false},
		{Uint8, "uint8", 1, 8, 8, false, true, false},
		{Uint16, "uint16", 2, 16, 16, false, true, false},
		{Uint32, "uint32", 4, 32, 32, false, true, false},
		{Float, "float", 4, 32, 32, true, false, false},
		{Double, "double", 8, 64, 64, true, false, false},
		{Bit, "bit", 1, 8, 1, false, true, false},
		{ComplexFloat, "complex", 8, 64, 64, true, false, true},
		{ComplexDouble, "double-complex", 16, 128, 128, true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pt.String(); got != tt.name {
				t.Errorf("String() = %q, want %q", got, tt.name)
			}
			if got := tt.pt.BytesPerPixel(); got != tt.bytes {
				t.Errorf("BytesPerPixel() = %d, want %d", got, tt.bytes)
			}
			if got := tt.pt.BitsPerPixel(); got != tt.bits {
				t.Errorf("BitsPerPixel() = %d, want %d", got, tt.bits)
			}
			if got := tt.pt.SignificantBitsPerPixel(); got != tt.sigBits {
				t.Errorf("SignificantBitsPerPixel() = %d, want %d", got, tt.sigBits)
			}
			if got := tt.pt.IsSigned(); got != tt.signed {
				t.Errorf("IsSigned() = %v, want %v", got, tt.signed)
			}
			if got := tt.pt.IsInteger(); got != tt.integer {
				t.Errorf("IsInteger() = %v, want %v", got, tt.integer)
			}
			if got := tt.pt.IsFloatingPoint(); got != !tt.integer {
				t.Errorf("IsFloatingPoint() = %v, want %v", got, !tt.integer)
			}
			if got := tt.pt.IsComplex(); got != tt.cplx {
				t.Errorf("IsComplex() = %v, want %v", got, tt.cplx)
			}
			parsed, err := ParseType(tt.name)
			if err != nil || parsed != tt.pt {
				t.Errorf("ParseType(%q) = %v, %v, want %v", tt.name, parsed, err, tt.pt)
			}
		})
	}
}

func TestTypeFromBytesRoundTrip(t *testing.T) {
	for _, pt := range Types {
		got, err := TypeFromBytes(pt.BytesPerPixel(), pt.IsSigned(), pt.IsInteger(), pt.IsComplex())
		if pt == Bit {
			// Bit has the size and class of Uint8 and is never returned.
			if err != nil || got != Uint8 {
				t.Errorf("TypeFromBytes(Bit properties) = %v, %v, want uint8", got, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("TypeFromBytes(%v properties) error = %v", pt, err)
			continue
		}
		if got != pt {
			t.Errorf("TypeFromBytes(%v properties) = %v", pt, got)
		}

		got, err = TypeFromBits(pt.BitsPerPixel(), pt.IsSigned(), pt.IsInteger(), pt.IsComplex())
		if err != nil || got != pt {
			t.Errorf("TypeFromBits(%d) = %v, %v, want %v", pt.BitsPerPixel(), got, err, pt)
		}
	}
}

func TestTypeFromBytesUnsupported(t *testing.T) {
	tests := []struct {
		name                  string
		bytes                 int
		signed, integer, cplx bool
	}{
		{"unsigned complex", 8, false, false, true},
		{"8-byte integer", 8, true, true, false},
		{"2-byte float", 2, true, false, false},
		{"integer complex", 8, true, true, true},
	}
	for _, tt := range tests {
		_, err := TypeFromBytes(tt.bytes, tt.signed, tt.integer, tt.cplx)
		if !errors.Is(err, ErrUnsupportedPixelType) {
			t.Errorf("%s: error = %v, want ErrUnsupportedPixelType", tt.name, err)
		}
		if !omefiles.IsFormat(err) {
			t.Errorf("%s: error should be a format error", tt.name)
		}
	}

	if _, err := TypeFromBits(12, false, true, false); !errors.Is(err, ErrUnsupportedPixelType) {
		t.Errorf("TypeFromBits(12) error = %v, want ErrUnsupportedPixelType", err)
	}
	if _, err := ParseType("half"); err == nil {
		t.Error("ParseType(half) should fail")
	}
}

func TestTypeOf(t *testing.T) {
	checks := map[Type]Type{
		TypeOf[int8]():       Int8,
		TypeOf[int16]():      Int16,
		TypeOf[int32]():      Int32,
		TypeOf[uint8]():      Uint8,
		TypeOf[uint16]():     Uint16,
		TypeOf[uint32]():     Uint32,
		TypeOf[float32]():    Float,
		TypeOf[float64]():    Double,
		TypeOf[BitValue]():   Bit,
		TypeOf[complex64]():  ComplexFloat,
		TypeOf[complex128](): ComplexDouble,
	}
	if len(checks) != len(Types) {
		t.Errorf("TypeOf() produced %d distinct types, want %d", len(checks), len(Types))
	}
	for got, want := range checks {
		if got != want {
			t.Errorf("TypeOf() = %v, want %v", got, want)
		}
	}
}

func TestEndianType(t *testing.T) {
	if EndianBig.ByteOrder() != binary.BigEndian {
		t.Error("EndianBig.ByteOrder() != BigEndian")
	}
	if EndianLittle.ByteOrder() != binary.LittleEndian {
		t.Error("EndianLittle.ByteOrder() != LittleEndian")
	}
	if !EndianNative.IsNative() {
		t.Error("EndianNative.IsNative() = false")
	}
	if EndianBig.IsNative() == EndianLittle.IsNative() {
		t.Error("exactly one of big and little endian should be native")
	}
	if EndianOf(binary.BigEndian) != EndianBig || EndianOf(binary.LittleEndian) != EndianLittle {
		t.Error("EndianOf() mismatch")
	}
}

func TestDefaultStorageOrder(t *testing.T) {
	il := DefaultStorageOrder(true)
	if !il.Valid() || !il.Interleaved() {
		t.Errorf("DefaultStorageOrder(true) = %s, want valid interleaved", il)
	}
	if got, want := il.String(), "S,X,Y,Z,T,C,mZ,mT,mC"; got != want {
		t.Errorf("DefaultStorageOrder(true) = %s, want %s", got, want)
	}
	pl := DefaultStorageOrder(false)
	if got, want := pl.String(), "X,Y,S,Z,T,C,mZ,mT,mC"; got != want {
		t.Errorf("DefaultStorageOrder(false) = %s, want %s", got, want)
	}

	bad := il
	bad.Order[1] = DimSubchannel
	if bad.Valid() {
		t.Error("order with a repeated axis should be invalid")
	}
}

func TestStrides(t *testing.T) {
	shape := PlaneShape(4, 3, 2)
	got := DefaultStorageOrder(true).Strides(shape)
	if got[DimSubchannel] != 1 || got[DimX] != 2 || got[DimY] != 8 || got[DimZ] != 24 {
		t.Errorf("interleaved Strides() = %v", got)
	}
	got = DefaultStorageOrder(false).Strides(shape)
	if got[DimX] != 1 || got[DimY] != 4 || got[DimSubchannel] != 12 {
		t.Errorf("planar Strides() = %v", got)
	}
}

func fillPattern(b *Buffer[uint16]) {
	s := b.Shape()
	forEachIndex(s, func(idx Index) {
		v := 0
		for d := NumDims - 1; d >= 0; d-- {
			v = v*s[d] + idx[d]
		}
		b.Set(idx, uint16(v*7+1))
	})
}

func TestBufferAddressing(t *testing.T) {
	shape := Shape{4, 3, 2, 1, 1, 1, 1, 1, 1}
	orders := []StorageOrder{DefaultStorageOrder(true), DefaultStorageOrder(false)}
	rev := DefaultStorageOrder(true)
	rev.Ascending[DimY] = false
	orders = append(orders, rev)

	for _, order := range orders {
		b := MustNewBuffer[uint16](shape, order, EndianNative)
		fillPattern(b)

		seen := make(map[int]bool)
		forEachIndex(shape, func(idx Index) {
			v := 0
			for d := NumDims - 1; d >= 0; d-- {
				v = v*shape[d] + idx[d]
			}
			if got, want := b.At(idx), uint16(v*7+1); got != want {
				t.Errorf("%s: At(%v) = %d, want %d", order, idx, got, want)
			}
			off := b.Offset(idx)
			if seen[off] {
				t.Errorf("%s: offset %d used twice", order, off)
			}
			seen[off] = true
		})
		if len(seen) != shape.NumElements() {
			t.Errorf("%s: %d distinct offsets, want %d", order, len(seen), shape.NumElements())
		}
	}
}

func TestBufferAtPanicsOutOfRange(t *testing.T) {
	b := MustNewBuffer[uint8](PlaneShape(2, 2, 1), DefaultStorageOrder(true), EndianNative)
	defer func() {
		if recover() == nil {
			t.Error("At() with X out of range should panic")
		}
	}()
	b.At(Index{2, 0, 0, 0, 0, 0, 0, 0, 0})
}

func TestBufferStreamRoundTrip(t *testing.T) {
	for _, endian := range []EndianType{EndianNative, EndianBig, EndianLittle} {
		shape := Shape{4, 3, 2, 1, 1, 1, 1, 1, 1}
		src := MustNewBuffer[uint16](shape, DefaultStorageOrder(true), endian)
		fillPattern(src)

		var stream bytes.Buffer
		if err := src.Write(&stream); err != nil {
			t.Fatalf("%s: Write() error = %v", endian, err)
		}
		if stream.Len() != src.NumElements()*2 {
			t.Fatalf("%s: wrote %d bytes, want %d", endian, stream.Len(), src.NumElements()*2)
		}
		first := binary.BigEndian.Uint16(stream.Bytes())
		if endian.Resolve() == EndianLittle {
			first = binary.LittleEndian.Uint16(stream.Bytes())
		}
		if first != src.Data()[0] {
			t.Errorf("%s: first stream element = %d, want %d", endian, first, src.Data()[0])
		}
		raw := append([]byte(nil), stream.Bytes()...)

		dst := MustNewBuffer[uint16](shape, DefaultStorageOrder(true), endian)
		if err := dst.Read(&stream); err != nil {
			t.Fatalf("%s: Read() error = %v", endian, err)
		}
		if !dst.Equal(src) {
			t.Errorf("%s: Read(Write()) does not reproduce the buffer", endian)
		}

		var again bytes.Buffer
		if err := dst.Write(&again); err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(raw, again.Bytes()) {
			t.Errorf("%s: second Write() differs byte-for-byte", endian)
		}
	}
}

func TestBufferStreamComplexSwap(t *testing.T) {
	b := MustNewBuffer[complex64](UnitShape(), DefaultStorageOrder(true), EndianBig)
	b.Set(Index{}, complex(1, -2))
	var stream bytes.Buffer
	if err := b.Write(&stream); err != nil {
		t.Fatal(err)
	}
	want := []byte{0x3f, 0x80, 0, 0, 0xc0, 0, 0, 0}
	if !bytes.Equal(stream.Bytes(), want) {
		t.Errorf("Write() = % x, want % x", stream.Bytes(), want)
	}
}

func TestBufferReadShort(t *testing.T) {
	b := MustNewBuffer[uint32](PlaneShape(2, 2, 1), DefaultStorageOrder(true), EndianNative)
	if err := b.Read(bytes.NewReader(make([]byte, 15))); err == nil {
		t.Error("Read() of a short stream should fail")
	}
}

func TestBufferBitRead(t *testing.T) {
	b := MustNewBuffer[BitValue](PlaneShape(4, 1, 1), DefaultStorageOrder(true), EndianNative)
	if err := b.Read(bytes.NewReader([]byte{0, 1, 7, 0})); err != nil {
		t.Fatal(err)
	}
	want := []BitValue{false, true, true, false}
	for i, v := range b.Data() {
		if v != want[i] {
			t.Errorf("Data()[%d] = %v, want %v", i, v, want[i])
		}
	}
}

func TestBufferBorrowed(t *testing.T) {
	data := make([]float32, 6)
	b, err := NewBufferFrom(data, PlaneShape(3, 2, 1), DefaultStorageOrder(true), EndianNative)
	if err != nil {
		t.Fatalf("NewBufferFrom() error = %v", err)
	}
	if b.Managed() {
		t.Error("borrowed buffer reports Managed() = true")
	}
	b.Set(Index{2, 1}, 5)
	if data[5] != 5 {
		t.Errorf("borrowed storage not updated: %v", data)
	}

	if _, err := NewBufferFrom(data[:5], PlaneShape(3, 2, 1), DefaultStorageOrder(true), EndianNative); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("NewBufferFrom(short) error = %v, want ErrSizeMismatch", err)
	}

	other := MustNewBuffer[float32](PlaneShape(2, 2, 1), DefaultStorageOrder(true), EndianNative)
	if err := b.CopyFrom(other); !errors.Is(err, ErrBorrowedStorage) {
		t.Errorf("CopyFrom(different extents) on borrowed error = %v, want ErrBorrowedStorage", err)
	}
}

func TestBufferCopyFromAcrossOrders(t *testing.T) {
	shape := PlaneShape(4, 3, 3)
	src := MustNewBuffer[uint16](shape, DefaultStorageOrder(true), EndianNative)
	fillPattern(src)

	dst := MustNewBuffer[uint16](shape, DefaultStorageOrder(false), EndianNative)
	if err := dst.CopyFrom(src); err != nil {
		t.Fatalf("CopyFrom() error = %v", err)
	}
	if !dst.Equal(src) {
		t.Error("CopyFrom() across storage orders lost logical content")
	}
	if bytes.Equal(dst.Bytes(), src.Bytes()) {
		t.Error("planar and interleaved physical layouts should differ")
	}

	// A managed destination adopts the source extents.
	small := NewDefaultBuffer[uint16]()
	if err := small.CopyFrom(src); err != nil {
		t.Fatalf("CopyFrom() into managed error = %v", err)
	}
	if small.Shape() != shape || !small.Equal(src) {
		t.Errorf("managed CopyFrom() shape = %s, want %s", small.Shape(), shape)
	}
}

func TestBufferAssign(t *testing.T) {
	b := MustNewBuffer[int16](PlaneShape(2, 2, 1), DefaultStorageOrder(true), EndianNative)
	if err := b.Assign([]int16{1, 2, 3, 4}); err != nil {
		t.Fatalf("Assign() error = %v", err)
	}
	if b.At(Index{1, 1}) != 4 {
		t.Errorf("At(1,1) = %d, want 4", b.At(Index{1, 1}))
	}
	if err := b.Assign([]int16{1, 2, 3}); !errors.Is(err, ErrSizeMismatch) {
		t.Errorf("Assign(short) error = %v, want ErrSizeMismatch", err)
	}
}

func TestNewBufferInvalid(t *testing.T) {
	shape := UnitShape()
	shape[DimZ] = 0
	if _, err := NewBuffer[uint8](shape, DefaultStorageOrder(true), EndianNative); !errors.Is(err, ErrInvalidShape) {
		t.Errorf("NewBuffer(zero Z) error = %v, want ErrInvalidShape", err)
	}
	var order StorageOrder
	if _, err := NewBuffer[uint8](UnitShape(), order, EndianNative); !errors.Is(err, ErrInvalidOrder) {
		t.Errorf("NewBuffer(zero order) error = %v, want ErrInvalidOrder", err)
	}
}

func TestVariant(t *testing.T) {
	for _, pt := range Types {
		v, err := NewVariant(pt, PlaneShape(3, 2, 1), DefaultStorageOrder(true), EndianNative)
		if err != nil {
			t.Fatalf("NewVariant(%v) error = %v", pt, err)
		}
		if v.PixelType() != pt {
			t.Errorf("NewVariant(%v).PixelType() = %v", pt, v.PixelType())
		}
		if got := len(v.Bytes()); got != 6*pt.BytesPerPixel() {
			t.Errorf("%v: len(Bytes()) = %d, want %d", pt, got, 6*pt.BytesPerPixel())
		}
	}

	b := MustNewBuffer[uint16](PlaneShape(2, 2, 1), DefaultStorageOrder(true), EndianNative)
	fillPattern(b)
	v := VariantOf(b)
	if got, ok := As[uint16](v); !ok || got != b {
		t.Error("As[uint16]() did not return the wrapped buffer")
	}
	if _, ok := As[int16](v); ok {
		t.Error("As[int16]() on a uint16 variant should fail")
	}

	w, _ := NewVariant(Uint16, UnitShape(), DefaultStorageOrder(false), EndianNative)
	if err := w.CopyFrom(v); err != nil {
		t.Fatalf("Variant.CopyFrom() error = %v", err)
	}
	if !w.Equal(v) {
		t.Error("Variant.Equal() after CopyFrom() = false")
	}

	x, _ := NewVariant(Int16, PlaneShape(2, 2, 1), DefaultStorageOrder(true), EndianNative)
	if err := x.CopyFrom(v); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("CopyFrom(different type) error = %v, want ErrTypeMismatch", err)
	}
	if x.Equal(v) {
		t.Error("variants of different types should not be equal")
	}

	if err := x.Reset(Float, PlaneShape(5, 1, 1), DefaultStorageOrder(true), EndianBig); err != nil {
		t.Fatal(err)
	}
	if x.PixelType() != Float || x.NumElements() != 5 || x.Endian() != EndianBig {
		t.Errorf("Reset() gave %v %d %v", x.PixelType(), x.NumElements(), x.Endian())
	}
}
