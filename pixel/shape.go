package pixel

import (
	"fmt"
	"strings"
)

// Dim is a logical buffer axis.
type Dim uint8

const (
	DimX Dim = iota
	DimY
	DimZ
	DimT
	DimC
	DimSubchannel
	DimModuloZ
	DimModuloT
	DimModuloC
)

// NumDims is the number of logical axes of every buffer.
const NumDims = 9

var dimNames = [NumDims]string{"X", "Y", "Z", "T", "C", "S", "mZ", "mT", "mC"}

func (d Dim) String() string {
	if int(d) < NumDims {
		return dimNames[d]
	}
	return fmt.Sprintf("Dim(%d)", uint8(d))
}

// Shape is the extent of each logical axis, indexed by Dim.
type Shape [NumDims]int

// Index is a logical element position, indexed by Dim.
type Index [NumDims]int

// UnitShape returns a shape with extent 1 on every axis.
func UnitShape() Shape {
	return Shape{1, 1, 1, 1, 1, 1, 1, 1, 1}
}

// PlaneShape returns the shape of a w×h plane with the given number of
// samples per pixel.
func PlaneShape(w, h, samples int) Shape {
	s := UnitShape()
	s[DimX], s[DimY], s[DimSubchannel] = w, h, samples
	return s
}

// NumElements returns the product of all extents.
func (s Shape) NumElements() int {
	n := 1
	for _, e := range s {
		n *= e
	}
	return n
}

// Valid reports whether every extent is positive.
func (s Shape) Valid() bool {
	for _, e := range s {
		if e <= 0 {
			return false
		}
	}
	return true
}

// Contains reports whether idx lies within s.
func (s Shape) Contains(idx Index) bool {
	for d, e := range s {
		if idx[d] < 0 || idx[d] >= e {
			return false
		}
	}
	return true
}

func (s Shape) String() string {
	var b strings.Builder
	for d, e := range s {
		if d > 0 {
			b.WriteByte('x')
		}
		fmt.Fprintf(&b, "%d", e)
	}
	return b.String()
}

// StorageOrder describes how logical axes are laid out in memory. Order
// lists every axis exactly once, fastest varying first. Ascending[d]
// reports whether axis d is stored in increasing index order.
type StorageOrder struct {
	Order     [NumDims]Dim
	Ascending [NumDims]bool
}

// DefaultStorageOrder returns the canonical layout. Interleaved storage
// keeps the samples of a pixel together (S, X, Y, Z, T, C, mZ, mT, mC);
// planar storage keeps each sample plane contiguous (X, Y, S, Z, T, C, mZ,
// mT, mC). Every axis is ascending.
func DefaultStorageOrder(interleaved bool) StorageOrder {
	var o StorageOrder
	if interleaved {
		o.Order = [NumDims]Dim{DimSubchannel, DimX, DimY, DimZ, DimT, DimC, DimModuloZ, DimModuloT, DimModuloC}
	} else {
		o.Order = [NumDims]Dim{DimX, DimY, DimSubchannel, DimZ, DimT, DimC, DimModuloZ, DimModuloT, DimModuloC}
	}
	for d := range o.Ascending {
		o.Ascending[d] = true
	}
	return o
}

// Valid reports whether Order is a permutation of the axes.
func (o StorageOrder) Valid() bool {
	var seen [NumDims]bool
	for _, d := range o.Order {
		if int(d) >= NumDims || seen[d] {
			return false
		}
		seen[d] = true
	}
	return true
}

// Interleaved reports whether the subchannel axis varies fastest.
func (o StorageOrder) Interleaved() bool {
	return o.Order[0] == DimSubchannel
}

// Strides returns the element stride of each logical axis for shape s.
func (o StorageOrder) Strides(s Shape) [NumDims]int {
	var strides [NumDims]int
	n := 1
	for _, d := range o.Order {
		strides[d] = n
		n *= s[d]
	}
	return strides
}

func (o StorageOrder) String() string {
	var b strings.Builder
	for i, d := range o.Order {
		if i > 0 {
			b.WriteByte(',')
		}
		if !o.Ascending[d] {
			b.WriteByte('-')
		}
		b.WriteString(d.String())
	}
	return b.String()
}
