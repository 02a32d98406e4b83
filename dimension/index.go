package dimension

import (
	"fmt"

	"github.com/mrjoshuak/go-omefiles"
)

// Coords is a plane coordinate.
type Coords struct {
	Z, C, T int
}

// ModuloCoords is a plane coordinate with each axis split into its major
// component and the minor (modulo) component.
type ModuloCoords struct {
	Z, C, T                   int
	ModuloZ, ModuloC, ModuloT int
}

// ValidateDimensions checks order, the axis sizes and the image count, and
// returns the positions of Z, C and T within order (each 2, 3 or 4).
//
// It fails if order does not start with "XY" or lacks one of Z, C or T, if
// any size is zero or negative, or if imageCount != sizeZ*sizeC*sizeT.
func ValidateDimensions(order string, sizeZ, sizeC, sizeT, imageCount int) (posZ, posC, posT int, err error) {
	return validate("ValidateDimensions", order, sizeZ, sizeC, sizeT, imageCount)
}

func validate(op, order string, sizeZ, sizeC, sizeT, imageCount int) (posZ, posC, posT int, err error) {
	posZ, posC, posT, err = parseOrder(op, order)
	if err != nil {
		return 0, 0, 0, err
	}
	for _, s := range []struct {
		axis string
		size int
	}{{"Z", sizeZ}, {"C", sizeC}, {"T", sizeT}} {
		if s.size <= 0 {
			return 0, 0, 0, &omefiles.LogicError{Op: op, Msg: fmt.Sprintf("%s size %d", s.axis, s.size), Err: ErrInvalidSize}
		}
	}
	if imageCount <= 0 || imageCount != sizeZ*sizeC*sizeT {
		return 0, 0, 0, &omefiles.LogicError{
			Op:  op,
			Msg: fmt.Sprintf("sizeZ=%d, sizeC=%d, sizeT=%d, total=%d", sizeZ, sizeC, sizeT, imageCount),
			Err: ErrImageCountMismatch,
		}
	}
	return posZ, posC, posT, nil
}

// radix returns the (value, length) pairs for Z, C and T sorted by their
// rasterization position, fastest varying first.
func radix(posZ, posC, posT int, z, c, t, sizeZ, sizeC, sizeT int) (v, l [3]int) {
	v[posZ-2], l[posZ-2] = z, sizeZ
	v[posC-2], l[posC-2] = c, sizeC
	v[posT-2], l[posT-2] = t, sizeT
	return v, l
}

// PlaneIndex returns the linear plane index of (z, c, t).
//
// The dimensions are validated first; each coordinate is then checked
// against its axis size and a *RangeError names the failing axis.
func PlaneIndex(order string, sizeZ, sizeC, sizeT, imageCount, z, c, t int) (int, error) {
	posZ, posC, posT, err := validate("PlaneIndex", order, sizeZ, sizeC, sizeT, imageCount)
	if err != nil {
		return 0, err
	}
	if z < 0 || z >= sizeZ {
		return 0, &RangeError{Axis: "Z", Value: z, Size: sizeZ}
	}
	if c < 0 || c >= sizeC {
		return 0, &RangeError{Axis: "C", Value: c, Size: sizeC}
	}
	if t < 0 || t >= sizeT {
		return 0, &RangeError{Axis: "T", Value: t, Size: sizeT}
	}

	v, l := radix(posZ, posC, posT, z, c, t, sizeZ, sizeC, sizeT)
	return v[0] + v[1]*l[0] + v[2]*l[0]*l[1], nil
}

// PlaneCoords returns the (z, c, t) coordinate of a linear plane index. It
// is the inverse of PlaneIndex.
func PlaneCoords(order string, sizeZ, sizeC, sizeT, imageCount, index int) (Coords, error) {
	posZ, posC, posT, err := validate("PlaneCoords", order, sizeZ, sizeC, sizeT, imageCount)
	if err != nil {
		return Coords{}, err
	}
	if index < 0 || index >= imageCount {
		return Coords{}, &omefiles.LogicError{
			Op:  "PlaneCoords",
			Msg: fmt.Sprintf("index %d/%d", index, imageCount),
			Err: ErrIndexOutOfRange,
		}
	}

	_, l := radix(posZ, posC, posT, 0, 0, 0, sizeZ, sizeC, sizeT)
	var v [3]int
	v[0] = index % l[0]
	v[1] = (index / l[0]) % l[1]
	v[2] = index / (l[0] * l[1])

	return Coords{Z: v[posZ-2], C: v[posC-2], T: v[posT-2]}, nil
}

// PlaneIndexModulo returns the linear plane index of a coordinate whose
// axes are split by modulo sub-dimensions. sizeZ, sizeC and sizeT are the
// full (effective) axis sizes; the modulo sizes must divide them.
//
// Each major coordinate is composed as coord*moduloSize + moduloComponent
// before delegating to PlaneIndex.
func PlaneIndexModulo(order string, sizeZ, sizeC, sizeT, imageCount,
	moduloZSize, moduloCSize, moduloTSize,
	z, c, t, moduloZ, moduloC, moduloT int) (int, error) {
	for _, m := range []struct {
		axis  string
		value int
		size  int
	}{{"ModuloZ", moduloZ, moduloZSize}, {"ModuloC", moduloC, moduloCSize}, {"ModuloT", moduloT, moduloTSize}} {
		if m.size <= 0 {
			return 0, &omefiles.LogicError{Op: "PlaneIndexModulo", Msg: fmt.Sprintf("%s size %d", m.axis, m.size), Err: ErrInvalidSize}
		}
		if m.value < 0 || m.value >= m.size {
			return 0, &RangeError{Axis: m.axis, Value: m.value, Size: m.size}
		}
	}
	return PlaneIndex(order, sizeZ, sizeC, sizeT, imageCount,
		z*moduloZSize+moduloZ,
		c*moduloCSize+moduloC,
		t*moduloTSize+moduloT)
}

// PlaneCoordsModulo is the inverse of PlaneIndexModulo: the coordinate from
// PlaneCoords is decomposed into (major, minor) pairs by division and
// remainder against the modulo sizes.
func PlaneCoordsModulo(order string, sizeZ, sizeC, sizeT, imageCount,
	moduloZSize, moduloCSize, moduloTSize, index int) (ModuloCoords, error) {
	for _, m := range []struct {
		axis string
		size int
	}{{"ModuloZ", moduloZSize}, {"ModuloC", moduloCSize}, {"ModuloT", moduloTSize}} {
		if m.size <= 0 {
			return ModuloCoords{}, &omefiles.LogicError{Op: "PlaneCoordsModulo", Msg: fmt.Sprintf("%s size %d", m.axis, m.size), Err: ErrInvalidSize}
		}
	}
	zct, err := PlaneCoords(order, sizeZ, sizeC, sizeT, imageCount, index)
	if err != nil {
		return ModuloCoords{}, err
	}
	return ModuloCoords{
		Z:       zct.Z / moduloZSize,
		C:       zct.C / moduloCSize,
		T:       zct.T / moduloTSize,
		ModuloZ: zct.Z % moduloZSize,
		ModuloC: zct.C % moduloCSize,
		ModuloT: zct.T % moduloTSize,
	}, nil
}
