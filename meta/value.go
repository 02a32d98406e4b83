// Package meta holds format-agnostic image metadata: a typed key/value
// dictionary and the CoreMetadata series descriptor shared between the TIFF
// engine and higher-level readers and writers.
//
// Example usage:
//
//	m := meta.Map{}
//	meta.Set(m, "Software", "acquire 2.1")
//	meta.Append(m, "Exposure", 0.25)
//	meta.Append(m, "Exposure", 0.5)
//	exp, status := meta.GetList[float64](m, "Exposure")
package meta

import (
	"fmt"
	"strconv"
	"strings"
)

// Kind is the element type of a Value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindString
	KindBool
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindFloat32
	KindFloat64
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindString:  "string",
	KindBool:    "bool",
	KindInt8:    "int8",
	KindInt16:   "int16",
	KindInt32:   "int32",
	KindInt64:   "int64",
	KindUint8:   "uint8",
	KindUint16:  "uint16",
	KindUint32:  "uint32",
	KindUint64:  "uint64",
	KindFloat32: "float32",
	KindFloat64: "float64",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Element is the set of Go types a Value can hold, singly or as a list.
type Element interface {
	string | bool | int8 | int16 | int32 | int64 | uint8 | uint16 | uint32 | uint64 | float32 | float64
}

func kindOf[E Element]() Kind {
	var zero E
	switch any(zero).(type) {
	case string:
		return KindString
	case bool:
		return KindBool
	case int8:
		return KindInt8
	case int16:
		return KindInt16
	case int32:
		return KindInt32
	case int64:
		return KindInt64
	case uint8:
		return KindUint8
	case uint16:
		return KindUint16
	case uint32:
		return KindUint32
	case uint64:
		return KindUint64
	case float32:
		return KindFloat32
	default:
		return KindFloat64
	}
}

// Value is a scalar or list of one Element type. The zero Value is
// invalid.
type Value struct {
	kind Kind
	list bool
	v    any // E or []E
}

// ValueOf returns a scalar Value.
func ValueOf[E Element](v E) Value {
	return Value{kind: kindOf[E](), v: v}
}

// ListOf returns a list Value holding a copy of v.
func ListOf[E Element](v []E) Value {
	return Value{kind: kindOf[E](), list: true, v: append([]E(nil), v...)}
}

// Kind returns the element kind.
func (v Value) Kind() Kind { return v.kind }

// IsList reports whether v holds a list.
func (v Value) IsList() bool { return v.list }

// Valid reports whether v holds anything.
func (v Value) Valid() bool { return v.kind != KindInvalid }

// Len returns the number of elements: 1 for a scalar.
func (v Value) Len() int {
	if !v.list {
		if v.Valid() {
			return 1
		}
		return 0
	}
	switch l := v.v.(type) {
	case []string:
		return len(l)
	case []bool:
		return len(l)
	case []int8:
		return len(l)
	case []int16:
		return len(l)
	case []int32:
		return len(l)
	case []int64:
		return len(l)
	case []uint8:
		return len(l)
	case []uint16:
		return len(l)
	case []uint32:
		return len(l)
	case []uint64:
		return len(l)
	case []float32:
		return len(l)
	case []float64:
		return len(l)
	}
	return 0
}

// Elements returns each element formatted as a string.
func (v Value) Elements() []string {
	if !v.list {
		if !v.Valid() {
			return nil
		}
		return []string{formatScalar(v.v)}
	}
	out := make([]string, 0, v.Len())
	switch l := v.v.(type) {
	case []string:
		out = append(out, l...)
	case []bool:
		for _, e := range l {
			out = append(out, formatScalar(e))
		}
	case []int8:
		out = appendFormatted(out, l)
	case []int16:
		out = appendFormatted(out, l)
	case []int32:
		out = appendFormatted(out, l)
	case []int64:
		out = appendFormatted(out, l)
	case []uint8:
		out = appendFormatted(out, l)
	case []uint16:
		out = appendFormatted(out, l)
	case []uint32:
		out = appendFormatted(out, l)
	case []uint64:
		out = appendFormatted(out, l)
	case []float32:
		out = appendFormatted(out, l)
	case []float64:
		out = appendFormatted(out, l)
	}
	return out
}

func appendFormatted[E Element](out []string, l []E) []string {
	for _, e := range l {
		out = append(out, formatScalar(e))
	}
	return out
}

func formatScalar(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return fmt.Sprint(v)
}

// String formats a scalar as its value and a list as comma-separated
// values in brackets.
func (v Value) String() string {
	if !v.list {
		return strings.Join(v.Elements(), "")
	}
	return "[" + strings.Join(v.Elements(), ", ") + "]"
}

// Status is the outcome of a typed lookup.
type Status uint8

const (
	Found Status = iota
	NotFound
	WrongType
)

func (s Status) String() string {
	switch s {
	case Found:
		return "found"
	case NotFound:
		return "not found"
	default:
		return "wrong type"
	}
}

// scalar returns the scalar held by v, if v is a scalar of type E.
func scalar[E Element](v Value) (E, Status) {
	var zero E
	if !v.Valid() {
		return zero, NotFound
	}
	if v.list {
		return zero, WrongType
	}
	e, ok := v.v.(E)
	if !ok {
		return zero, WrongType
	}
	return e, Found
}

// list returns a copy of the list held by v, if v is a list of type E.
func list[E Element](v Value) ([]E, Status) {
	if !v.Valid() {
		return nil, NotFound
	}
	if !v.list {
		return nil, WrongType
	}
	l, ok := v.v.([]E)
	if !ok {
		return nil, WrongType
	}
	return append([]E(nil), l...), Found
}
