package tiff

import (
	"encoding/binary"
	"math"
	"strings"
)

// entry is one IFD entry. data holds count values in the byte order of
// the file the entry belongs to.
type entry struct {
	typ   DataType
	count uint64
	data  []byte
}

func (e *entry) size() int { return int(e.count) * e.typ.Size() }

// uints decodes an integer entry. Signed values are sign extended.
func (e *entry) uints(o binary.ByteOrder) ([]uint64, bool) {
	n := int(e.count)
	if len(e.data) < e.size() {
		return nil, false
	}
	out := make([]uint64, n)
	switch e.typ {
	case Byte, Undefined:
		for i := range out {
			out[i] = uint64(e.data[i])
		}
	case SByte:
		for i := range out {
			out[i] = uint64(int64(int8(e.data[i])))
		}
	case Short:
		for i := range out {
			out[i] = uint64(o.Uint16(e.data[i*2:]))
		}
	case SShort:
		for i := range out {
			out[i] = uint64(int64(int16(o.Uint16(e.data[i*2:]))))
		}
	case Long, IFDType:
		for i := range out {
			out[i] = uint64(o.Uint32(e.data[i*4:]))
		}
	case SLong:
		for i := range out {
			out[i] = uint64(int64(int32(o.Uint32(e.data[i*4:]))))
		}
	case Long8, SLong8, IFD8:
		for i := range out {
			out[i] = o.Uint64(e.data[i*8:])
		}
	default:
		return nil, false
	}
	return out, true
}

// floats decodes a rational, floating-point or integer entry.
func (e *entry) floats(o binary.ByteOrder) ([]float64, bool) {
	if len(e.data) < e.size() {
		return nil, false
	}
	n := int(e.count)
	out := make([]float64, n)
	switch e.typ {
	case Rational:
		for i := range out {
			num, den := o.Uint32(e.data[i*8:]), o.Uint32(e.data[i*8+4:])
			if den != 0 {
				out[i] = float64(num) / float64(den)
			}
		}
	case SRational:
		for i := range out {
			num, den := int32(o.Uint32(e.data[i*8:])), int32(o.Uint32(e.data[i*8+4:]))
			if den != 0 {
				out[i] = float64(num) / float64(den)
			}
		}
	case Float:
		for i := range out {
			out[i] = float64(math.Float32frombits(o.Uint32(e.data[i*4:])))
		}
	case Double:
		for i := range out {
			out[i] = math.Float64frombits(o.Uint64(e.data[i*8:]))
		}
	case SByte, SShort, SLong, SLong8:
		u, _ := e.uints(o)
		for i, v := range u {
			out[i] = float64(int64(v))
		}
	default:
		u, ok := e.uints(o)
		if !ok {
			return nil, false
		}
		for i, v := range u {
			out[i] = float64(v)
		}
	}
	return out, true
}

// strings splits an ASCII entry on NUL terminators.
func (e *entry) strings() ([]string, bool) {
	if e.typ != ASCII {
		return nil, false
	}
	s := string(e.data[:min(len(e.data), int(e.count))])
	s = strings.TrimSuffix(s, "\x00")
	return strings.Split(s, "\x00"), true
}

func shortsEntry(o binary.ByteOrder, v []uint16) *entry {
	data := make([]byte, len(v)*2)
	for i, x := range v {
		o.PutUint16(data[i*2:], x)
	}
	return &entry{typ: Short, count: uint64(len(v)), data: data}
}

func longsEntry(o binary.ByteOrder, v []uint32) *entry {
	data := make([]byte, len(v)*4)
	for i, x := range v {
		o.PutUint32(data[i*4:], x)
	}
	return &entry{typ: Long, count: uint64(len(v)), data: data}
}

// offsetsEntry stores v as LONG when every value fits, else as LONG8.
func offsetsEntry(o binary.ByteOrder, v []uint64) *entry {
	for _, x := range v {
		if x > math.MaxUint32 {
			data := make([]byte, len(v)*8)
			for i, x := range v {
				o.PutUint64(data[i*8:], x)
			}
			return &entry{typ: Long8, count: uint64(len(v)), data: data}
		}
	}
	l := make([]uint32, len(v))
	for i, x := range v {
		l[i] = uint32(x)
	}
	return longsEntry(o, l)
}

func asciiEntry(v []string) *entry {
	var data []byte
	for _, s := range v {
		data = append(data, s...)
		data = append(data, 0)
	}
	return &entry{typ: ASCII, count: uint64(len(data)), data: data}
}

// rationalsEntry stores v as unsigned rationals. Whole numbers are exact;
// other values use a denominator of one million.
func rationalsEntry(o binary.ByteOrder, v []float64) *entry {
	data := make([]byte, len(v)*8)
	for i, x := range v {
		num, den := uint32(0), uint32(1)
		switch {
		case x <= 0 || math.IsNaN(x):
		case x == math.Trunc(x) && x <= math.MaxUint32:
			num = uint32(x)
		case x*1e6 <= math.MaxUint32:
			num, den = uint32(math.Round(x*1e6)), 1000000
		default:
			num = uint32(math.Min(math.Round(x), math.MaxUint32))
		}
		o.PutUint32(data[i*8:], num)
		o.PutUint32(data[i*8+4:], den)
	}
	return &entry{typ: Rational, count: uint64(len(v)), data: data}
}
