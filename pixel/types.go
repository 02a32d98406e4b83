// Package pixel describes the supported pixel sample types and provides a
// typed, 9-dimensional pixel buffer.
//
// A Buffer holds one element per (X, Y, Z, T, C, Subchannel, ModuloZ,
// ModuloT, ModuloC) index. The logical axes are independent of the order in
// which elements are stored in memory; see StorageOrder.
package pixel

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mrjoshuak/go-omefiles"
)

// ErrUnsupportedPixelType is returned when no pixel type matches a
// requested combination of size, sign and class.
var ErrUnsupportedPixelType = errors.New("pixel: unsupported pixel type")

// Type is a pixel sample type.
type Type uint8

const (
	Int8 Type = iota
	Int16
	Int32
	Uint8
	Uint16
	Uint32
	Float
	Double
	Bit
	ComplexFloat
	ComplexDouble
)

// Properties are the storage properties of a pixel type.
type Properties struct {
	Name            string // OME-XML name
	Bytes           int    // bytes per sample in memory
	SignificantBits int
	Signed          bool
	Integer         bool
	Complex         bool
}

var properties = [...]Properties{
	Int8:          {"int8", 1, 8, true, true, false},
	Int16:         {"int16", 2, 16, true, true, false},
	Int32:         {"int32", 4, 32, true, true, false},
	Uint8:         {"uint8", 1, 8, false, true, false},
	Uint16:        {"uint16", 2, 16, false, true, false},
	Uint32:        {"uint32", 4, 32, false, true, false},
	Float:         {"float", 4, 32, true, false, false},
	Double:        {"double", 8, 64, true, false, false},
	Bit:           {"bit", 1, 1, false, true, false},
	ComplexFloat:  {"complex", 8, 64, true, false, true},
	ComplexDouble: {"double-complex", 16, 128, true, false, true},
}

// Types lists every pixel type.
var Types = []Type{Int8, Int16, Int32, Uint8, Uint16, Uint32, Float, Double, Bit, ComplexFloat, ComplexDouble}

// Properties returns the property record for t. It panics if t is not a
// valid pixel type.
func (t Type) Properties() Properties {
	return properties[t]
}

// Valid reports whether t is a known pixel type.
func (t Type) Valid() bool {
	return int(t) < len(properties)
}

func (t Type) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
	return properties[t].Name
}

// BytesPerPixel returns the in-memory size of one sample.
func (t Type) BytesPerPixel() int { return properties[t].Bytes }

// BitsPerPixel returns BytesPerPixel * 8.
func (t Type) BitsPerPixel() int { return properties[t].Bytes * 8 }

// SignificantBitsPerPixel returns the number of meaningful bits in a
// sample. It equals BitsPerPixel for every type except Bit, which has 1.
func (t Type) SignificantBitsPerPixel() int { return properties[t].SignificantBits }

// IsSigned reports whether samples carry a sign.
func (t Type) IsSigned() bool { return properties[t].Signed }

// IsInteger reports whether samples are integers.
func (t Type) IsInteger() bool { return properties[t].Integer }

// IsFloatingPoint reports whether samples are floating point, real or complex.
func (t Type) IsFloatingPoint() bool { return !properties[t].Integer }

// IsComplex reports whether samples are complex numbers.
func (t Type) IsComplex() bool { return properties[t].Complex }

// ParseType returns the pixel type with the given OME-XML name.
func ParseType(name string) (Type, error) {
	for _, t := range Types {
		if properties[t].Name == name {
			return t, nil
		}
	}
	return 0, &omefiles.FormatError{Op: "ParseType", Msg: fmt.Sprintf("%q", name), Err: ErrUnsupportedPixelType}
}

// TypeFromBytes returns the pixel type with the given sample size and
// class. Bit is never returned: it shares its size with the 8-bit integer
// types and must be identified from the bit depth instead.
func TypeFromBytes(bytes int, signed, integer, complex bool) (Type, error) {
	for _, t := range Types {
		if t == Bit {
			continue
		}
		p := properties[t]
		if p.Bytes == bytes && p.Signed == signed && p.Integer == integer && p.Complex == complex {
			return t, nil
		}
	}
	return 0, &omefiles.FormatError{
		Op:  "TypeFromBytes",
		Msg: fmt.Sprintf("bytes=%d, signed=%t, integer=%t, complex=%t", bytes, signed, integer, complex),
		Err: ErrUnsupportedPixelType,
	}
}

// TypeFromBits is TypeFromBytes for a size given in bits, which must be a
// multiple of 8.
func TypeFromBits(bits int, signed, integer, complex bool) (Type, error) {
	if bits%8 != 0 {
		return 0, &omefiles.FormatError{
			Op:  "TypeFromBits",
			Msg: fmt.Sprintf("%d bits is not a whole number of bytes", bits),
			Err: ErrUnsupportedPixelType,
		}
	}
	return TypeFromBytes(bits/8, signed, integer, complex)
}

// EndianType is the byte order of a buffer's serialized form.
type EndianType uint8

const (
	EndianNative EndianType = iota
	EndianBig
	EndianLittle
)

func (e EndianType) String() string {
	switch e {
	case EndianBig:
		return "big"
	case EndianLittle:
		return "little"
	default:
		return "native"
	}
}

// hostLittle reports whether the host stores integers least significant
// byte first.
var hostLittle = binary.NativeEndian.Uint16([]byte{1, 0}) == 1

// Resolve returns EndianBig or EndianLittle, replacing EndianNative by the
// host order.
func (e EndianType) Resolve() EndianType {
	if e != EndianNative {
		return e
	}
	if hostLittle {
		return EndianLittle
	}
	return EndianBig
}

// ByteOrder returns the binary.ByteOrder for e.
func (e EndianType) ByteOrder() binary.ByteOrder {
	if e.Resolve() == EndianLittle {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

// IsNative reports whether e resolves to the host order.
func (e EndianType) IsNative() bool {
	return e.Resolve() == EndianNative.Resolve()
}

// EndianOf returns the EndianType matching a byte order.
func EndianOf(order binary.ByteOrder) EndianType {
	if order == binary.BigEndian {
		return EndianBig
	}
	if order == binary.LittleEndian {
		return EndianLittle
	}
	return EndianNative
}

// BitValue is the element type of Bit buffers. It is stored unpacked, one
// byte per sample.
type BitValue bool

// Sample is the set of Go element types a Buffer can hold.
type Sample interface {
	int8 | int16 | int32 | uint8 | uint16 | uint32 | float32 | float64 | BitValue | complex64 | complex128
}

// TypeOf returns the pixel type stored by element type T.
func TypeOf[T Sample]() Type {
	var zero T
	switch any(zero).(type) {
	case int8:
		return Int8
	case int16:
		return Int16
	case int32:
		return Int32
	case uint8:
		return Uint8
	case uint16:
		return Uint16
	case uint32:
		return Uint32
	case float32:
		return Float
	case float64:
		return Double
	case BitValue:
		return Bit
	case complex64:
		return ComplexFloat
	default:
		return ComplexDouble
	}
}
