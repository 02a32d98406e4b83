package tiff

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/mrjoshuak/go-omefiles"
)

// Field access errors. Both are returned wrapped in a *FieldError naming
// the tag.
var (
	ErrFieldNotPresent = errors.New("tiff: field not present")
	ErrFieldType       = errors.New("tiff: field has unexpected type")
)

// TagID is a numeric TIFF tag.
type TagID uint16

var tagNames = map[TagID]string{}

func (t TagID) String() string {
	if n, ok := tagNames[t]; ok {
		return n
	}
	return fmt.Sprintf("Tag(%d)", uint16(t))
}

// FieldError reports a failed typed field access.
type FieldError struct {
	Tag  TagID
	Type DataType // stored type, for ErrFieldType
	Err  error
}

func (e *FieldError) Error() string {
	if errors.Is(e.Err, ErrFieldType) {
		return fmt.Sprintf("%v: %s (%d) stored as %s", e.Err, e.Tag, uint16(e.Tag), e.Type)
	}
	return fmt.Sprintf("%v: %s (%d)", e.Err, e.Tag, uint16(e.Tag))
}

// Unwrap returns the cause. Type mismatches are also format errors.
func (e *FieldError) Unwrap() []error {
	if errors.Is(e.Err, ErrFieldType) {
		return []error{e.Err, omefiles.ErrFormat}
	}
	return []error{e.Err}
}

// Tag describes a TIFF tag together with the Go type its value is read
// and written as.
type Tag[V any] struct {
	ID     TagID
	decode func(e *entry, o binary.ByteOrder) (V, bool)
	encode func(v V, o binary.ByteOrder) (*entry, error)
}

func (t Tag[V]) String() string { return t.ID.String() }

func newTag[V any](id TagID, name string, dec func(*entry, binary.ByteOrder) (V, bool), enc func(V, binary.ByteOrder) (*entry, error)) Tag[V] {
	if name != "" {
		tagNames[id] = name
	}
	return Tag[V]{ID: id, decode: dec, encode: enc}
}

// StringTag returns a descriptor for a single ASCII string.
func StringTag(id TagID, name string) Tag[string] {
	return newTag(id, name,
		func(e *entry, _ binary.ByteOrder) (string, bool) {
			s, ok := e.strings()
			if !ok || len(s) == 0 {
				return "", false
			}
			return s[0], true
		},
		func(v string, _ binary.ByteOrder) (*entry, error) {
			return asciiEntry([]string{v}), nil
		})
}

// StringArrayTag returns a descriptor for NUL-separated ASCII strings.
func StringArrayTag(id TagID, name string) Tag[[]string] {
	return newTag(id, name,
		func(e *entry, _ binary.ByteOrder) ([]string, bool) { return e.strings() },
		func(v []string, _ binary.ByteOrder) (*entry, error) { return asciiEntry(v), nil })
}

func uint16s(e *entry, o binary.ByteOrder) ([]uint16, bool) {
	if e.typ != Byte && e.typ != Short {
		return nil, false
	}
	u, ok := e.uints(o)
	if !ok {
		return nil, false
	}
	out := make([]uint16, len(u))
	for i, v := range u {
		out[i] = uint16(v)
	}
	return out, true
}

// Uint16Tag returns a descriptor for a single SHORT value. Per-sample
// tags such as BitsPerSample read the first value.
func Uint16Tag(id TagID, name string) Tag[uint16] {
	return EnumTag[uint16](id, name)
}

// EnumTag returns a descriptor for a SHORT value of an enumerated type.
func EnumTag[E ~uint16](id TagID, name string) Tag[E] {
	return newTag(id, name,
		func(e *entry, o binary.ByteOrder) (E, bool) {
			v, ok := uint16s(e, o)
			if !ok || len(v) == 0 {
				return 0, false
			}
			return E(v[0]), true
		},
		func(v E, o binary.ByteOrder) (*entry, error) {
			return shortsEntry(o, []uint16{uint16(v)}), nil
		})
}

// EnumArrayTag returns a descriptor for SHORT values of an enumerated
// type, such as ExtraSamples.
func EnumArrayTag[E ~uint16](id TagID, name string) Tag[[]E] {
	return newTag(id, name,
		func(e *entry, o binary.ByteOrder) ([]E, bool) {
			v, ok := uint16s(e, o)
			if !ok {
				return nil, false
			}
			out := make([]E, len(v))
			for i, x := range v {
				out[i] = E(x)
			}
			return out, true
		},
		func(v []E, o binary.ByteOrder) (*entry, error) {
			s := make([]uint16, len(v))
			for i, x := range v {
				s[i] = uint16(x)
			}
			return shortsEntry(o, s), nil
		})
}

// Uint16ArrayTag returns a descriptor for any number of SHORT values.
func Uint16ArrayTag(id TagID, name string) Tag[[]uint16] {
	return EnumArrayTag[uint16](id, name)
}

// Uint16PairTag returns a descriptor for exactly two SHORT values.
func Uint16PairTag(id TagID, name string) Tag[[2]uint16] {
	return newTag(id, name,
		func(e *entry, o binary.ByteOrder) ([2]uint16, bool) {
			var out [2]uint16
			v, ok := uint16s(e, o)
			if !ok || len(v) != len(out) {
				return out, false
			}
			copy(out[:], v)
			return out, true
		},
		func(v [2]uint16, o binary.ByteOrder) (*entry, error) {
			return shortsEntry(o, v[:]), nil
		})
}

// Uint16SixTag returns a descriptor for exactly six SHORT values.
func Uint16SixTag(id TagID, name string) Tag[[6]uint16] {
	return newTag(id, name,
		func(e *entry, o binary.ByteOrder) ([6]uint16, bool) {
			var out [6]uint16
			v, ok := uint16s(e, o)
			if !ok || len(v) != len(out) {
				return out, false
			}
			copy(out[:], v)
			return out, true
		},
		func(v [6]uint16, o binary.ByteOrder) (*entry, error) {
			return shortsEntry(o, v[:]), nil
		})
}

// Uint16TripleTag returns a descriptor for three equal-length SHORT
// arrays stored back to back, as in ColorMap and TransferFunction.
func Uint16TripleTag(id TagID, name string) Tag[[3][]uint16] {
	return newTag(id, name,
		func(e *entry, o binary.ByteOrder) ([3][]uint16, bool) {
			var out [3][]uint16
			v, ok := uint16s(e, o)
			if !ok || len(v) == 0 || len(v)%3 != 0 {
				return out, false
			}
			n := len(v) / 3
			for i := range out {
				out[i] = v[i*n : (i+1)*n : (i+1)*n]
			}
			return out, true
		},
		func(v [3][]uint16, o binary.ByteOrder) (*entry, error) {
			if len(v[0]) != len(v[1]) || len(v[0]) != len(v[2]) {
				return nil, omefiles.Logicf("SetField", "%s: arrays have lengths %d, %d and %d", name, len(v[0]), len(v[1]), len(v[2]))
			}
			all := make([]uint16, 0, 3*len(v[0]))
			all = append(append(append(all, v[0]...), v[1]...), v[2]...)
			return shortsEntry(o, all), nil
		})
}

func uint32s(e *entry, o binary.ByteOrder) ([]uint32, bool) {
	switch e.typ {
	case Byte, Short, Long, IFDType, Long8, IFD8:
	default:
		return nil, false
	}
	u, ok := e.uints(o)
	if !ok {
		return nil, false
	}
	out := make([]uint32, len(u))
	for i, v := range u {
		if v > math.MaxUint32 {
			return nil, false
		}
		out[i] = uint32(v)
	}
	return out, true
}

// Uint32Tag returns a descriptor for a single SHORT or LONG value.
func Uint32Tag(id TagID, name string) Tag[uint32] {
	return newTag(id, name,
		func(e *entry, o binary.ByteOrder) (uint32, bool) {
			v, ok := uint32s(e, o)
			if !ok || len(v) == 0 {
				return 0, false
			}
			return v[0], true
		},
		func(v uint32, o binary.ByteOrder) (*entry, error) {
			return longsEntry(o, []uint32{v}), nil
		})
}

// Uint32ArrayTag returns a descriptor for SHORT or LONG values.
func Uint32ArrayTag(id TagID, name string) Tag[[]uint32] {
	return newTag(id, name, uint32s,
		func(v []uint32, o binary.ByteOrder) (*entry, error) {
			return longsEntry(o, v), nil
		})
}

// Uint64ArrayTag returns a descriptor for SHORT, LONG or LONG8 values,
// such as strip and tile offsets.
func Uint64ArrayTag(id TagID, name string) Tag[[]uint64] {
	return newTag(id, name,
		func(e *entry, o binary.ByteOrder) ([]uint64, bool) {
			switch e.typ {
			case Byte, Short, Long, IFDType, Long8, IFD8:
				return e.uints(o)
			}
			return nil, false
		},
		func(v []uint64, o binary.ByteOrder) (*entry, error) {
			return offsetsEntry(o, v), nil
		})
}

// BytesTag returns a descriptor for raw BYTE or UNDEFINED data.
func BytesTag(id TagID, name string) Tag[[]byte] {
	return newTag(id, name,
		func(e *entry, _ binary.ByteOrder) ([]byte, bool) {
			if e.typ != Byte && e.typ != Undefined && e.typ != SByte {
				return nil, false
			}
			return e.data[:min(len(e.data), int(e.count))], true
		},
		func(v []byte, _ binary.ByteOrder) (*entry, error) {
			return &entry{typ: Undefined, count: uint64(len(v)), data: v}, nil
		})
}

func floats(n int) func(*entry, binary.ByteOrder) ([]float64, bool) {
	return func(e *entry, o binary.ByteOrder) ([]float64, bool) {
		v, ok := e.floats(o)
		if !ok || e.typ == ASCII || len(v) != n {
			return nil, false
		}
		return v, true
	}
}

// FloatTag returns a descriptor for a single RATIONAL value. FLOAT and
// DOUBLE are accepted on read.
func FloatTag(id TagID, name string) Tag[float64] {
	dec := floats(1)
	return newTag(id, name,
		func(e *entry, o binary.ByteOrder) (float64, bool) {
			v, ok := dec(e, o)
			if !ok {
				return 0, false
			}
			return v[0], true
		},
		func(v float64, o binary.ByteOrder) (*entry, error) {
			return rationalsEntry(o, []float64{v}), nil
		})
}

// FloatPairTag returns a descriptor for two RATIONAL values.
func FloatPairTag(id TagID, name string) Tag[[2]float64] {
	dec := floats(2)
	return newTag(id, name,
		func(e *entry, o binary.ByteOrder) (out [2]float64, ok bool) {
			v, ok := dec(e, o)
			copy(out[:], v)
			return out, ok
		},
		func(v [2]float64, o binary.ByteOrder) (*entry, error) {
			return rationalsEntry(o, v[:]), nil
		})
}

// FloatTripleTag returns a descriptor for three RATIONAL values.
func FloatTripleTag(id TagID, name string) Tag[[3]float64] {
	dec := floats(3)
	return newTag(id, name,
		func(e *entry, o binary.ByteOrder) (out [3]float64, ok bool) {
			v, ok := dec(e, o)
			copy(out[:], v)
			return out, ok
		},
		func(v [3]float64, o binary.ByteOrder) (*entry, error) {
			return rationalsEntry(o, v[:]), nil
		})
}

// FloatSixTag returns a descriptor for six RATIONAL values.
func FloatSixTag(id TagID, name string) Tag[[6]float64] {
	dec := floats(6)
	return newTag(id, name,
		func(e *entry, o binary.ByteOrder) (out [6]float64, ok bool) {
			v, ok := dec(e, o)
			copy(out[:], v)
			return out, ok
		},
		func(v [6]float64, o binary.ByteOrder) (*entry, error) {
			return rationalsEntry(o, v[:]), nil
		})
}

// Field is a typed accessor for one tag of one IFD.
type Field[V any] struct {
	ifd *IFD
	tag Tag[V]
}

// GetField returns the accessor for tag in ifd.
func GetField[V any](ifd *IFD, tag Tag[V]) Field[V] {
	return Field[V]{ifd: ifd, tag: tag}
}

// Get decodes the stored value. It fails with ErrFieldNotPresent when the
// tag is absent and ErrFieldType when its stored type does not decode as V.
func (f Field[V]) Get() (V, error) {
	var zero V
	e, ok := f.ifd.entries[f.tag.ID]
	if !ok {
		return zero, &FieldError{Tag: f.tag.ID, Err: ErrFieldNotPresent}
	}
	v, ok := f.tag.decode(e, f.ifd.order())
	if !ok {
		return zero, &FieldError{Tag: f.tag.ID, Type: e.typ, Err: ErrFieldType}
	}
	return v, nil
}

// Set stores v, replacing any existing value.
func (f Field[V]) Set(v V) error {
	e, err := f.tag.encode(v, f.ifd.order())
	if err != nil {
		return err
	}
	f.ifd.entries[f.tag.ID] = e
	return nil
}

// IsSet reports whether the tag is present.
func (f Field[V]) IsSet() bool {
	_, ok := f.ifd.entries[f.tag.ID]
	return ok
}

// Unset removes the tag.
func (f Field[V]) Unset() {
	delete(f.ifd.entries, f.tag.ID)
}

// getOr returns the value of tag in ifd, or def when it is absent. Type
// mismatches are still reported.
func getOr[V any](ifd *IFD, tag Tag[V], def V) (V, error) {
	v, err := GetField(ifd, tag).Get()
	if errors.Is(err, ErrFieldNotPresent) {
		return def, nil
	}
	return v, err
}
