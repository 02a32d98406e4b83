package meta

import (
	"fmt"
	"slices"
	"strings"
)

// Map is a metadata dictionary keyed by name.
type Map map[string]Value

// Set stores a scalar under key, replacing any previous value.
func Set[E Element](m Map, key string, v E) {
	m[key] = ValueOf(v)
}

// SetList stores a list under key, replacing any previous value.
func SetList[E Element](m Map, key string, v []E) {
	m[key] = ListOf(v)
}

// Append adds v to the list under key. An absent key starts a new list; a
// scalar of the same type is promoted to a list. It returns false, leaving
// m unchanged, if key holds a value of another type.
func Append[E Element](m Map, key string, v E) bool {
	cur, ok := m[key]
	if !ok {
		m[key] = ListOf([]E{v})
		return true
	}
	if cur.kind != kindOf[E]() {
		return false
	}
	if !cur.list {
		m[key] = Value{kind: cur.kind, list: true, v: []E{cur.v.(E), v}}
		return true
	}
	m[key] = Value{kind: cur.kind, list: true, v: append(slices.Clone(cur.v.([]E)), v)}
	return true
}

// Get returns the scalar of type E stored under key.
func Get[E Element](m Map, key string) (E, Status) {
	return scalar[E](m[key])
}

// GetList returns a copy of the list of type E stored under key.
func GetList[E Element](m Map, key string) ([]E, Status) {
	return list[E](m[key])
}

// Keys returns the keys of m in sorted order.
func (m Map) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Merge copies every entry of src into m, prefixing keys with prefix.
// Existing entries are overwritten.
func (m Map) Merge(src Map, prefix string) {
	for k, v := range src {
		m[prefix+k] = v
	}
}

// Flatten returns a copy of m in which every list of n elements is
// replaced by n string scalars named "key #1" to "key #n", numbered with
// enough leading zeros to sort correctly.
func (m Map) Flatten() Map {
	out := make(Map, len(m))
	for k, v := range m {
		if !v.list {
			out[k] = v
			continue
		}
		elems := v.Elements()
		width := len(fmt.Sprint(len(elems)))
		for i, e := range elems {
			out[fmt.Sprintf("%s #%0*d", k, width, i+1)] = ValueOf(e)
		}
	}
	return out
}

// String formats m as sorted "key = value" lines.
func (m Map) String() string {
	var b strings.Builder
	for _, k := range m.Keys() {
		fmt.Fprintf(&b, "%s = %s\n", k, m[k])
	}
	return b.String()
}
