// Package dimension maps between linear plane indices and Z/C/T plane
// coordinates.
//
// Planes of a series are rasterized according to a dimension order such as
// "XYZCT": the first two characters are always X and Y (the plane itself),
// and the remaining three give the order in which Z, C and T vary, fastest
// first. For "XYZCT" with sizes Z=2, C=3, T=4 the plane index is
//
//	index = z + c*2 + t*2*3
//
// Each of Z, C and T may additionally be split into a (major, minor) pair by
// a modulo sub-dimension, used when extra acquisition structure (lifetime
// bins, lambda stacks, phase steps) is folded into a nominal axis.
package dimension

import (
	"errors"
	"fmt"

	"github.com/mrjoshuak/go-omefiles"
)

// Validation errors. Each is returned wrapped in an *omefiles.LogicError.
var (
	ErrInvalidOrder       = errors.New("dimension: invalid dimension order")
	ErrInvalidSize        = errors.New("dimension: invalid dimension size")
	ErrImageCountMismatch = errors.New("dimension: ZCT size vs image count mismatch")
	ErrIndexOutOfRange    = errors.New("dimension: plane index out of range")
)

// Order is a dimension order string such as "XYZCT".
type Order string

// The six valid dimension orders.
const (
	XYZCT Order = "XYZCT"
	XYZTC Order = "XYZTC"
	XYCTZ Order = "XYCTZ"
	XYCZT Order = "XYCZT"
	XYTCZ Order = "XYTCZ"
	XYTZC Order = "XYTZC"
)

// Orders lists every valid dimension order.
var Orders = []Order{XYZCT, XYZTC, XYCTZ, XYCZT, XYTCZ, XYTZC}

// Positions returns the string positions (2, 3 or 4) of Z, C and T.
func (o Order) Positions() (posZ, posC, posT int, err error) {
	return parseOrder("Positions", string(o))
}

// Valid reports whether o is one of the six valid dimension orders.
func (o Order) Valid() bool {
	_, _, _, err := parseOrder("Valid", string(o))
	return err == nil
}

func (o Order) String() string {
	return string(o)
}

// ParseOrder validates s and returns it as an Order.
func ParseOrder(s string) (Order, error) {
	if _, _, _, err := parseOrder("ParseOrder", s); err != nil {
		return "", err
	}
	return Order(s), nil
}

func parseOrder(op, order string) (posZ, posC, posT int, err error) {
	if len(order) != 5 || order[0] != 'X' || order[1] != 'Y' {
		return 0, 0, 0, &omefiles.LogicError{Op: op, Msg: fmt.Sprintf("%q", order), Err: ErrInvalidOrder}
	}
	posZ, posC, posT = -1, -1, -1
	for i := 2; i < len(order); i++ {
		var p *int
		switch order[i] {
		case 'Z':
			p = &posZ
		case 'C':
			p = &posC
		case 'T':
			p = &posT
		default:
			return 0, 0, 0, &omefiles.LogicError{Op: op, Msg: fmt.Sprintf("%q: unexpected %q", order, order[i]), Err: ErrInvalidOrder}
		}
		if *p >= 0 {
			return 0, 0, 0, &omefiles.LogicError{Op: op, Msg: fmt.Sprintf("%q: duplicate %q", order, order[i]), Err: ErrInvalidOrder}
		}
		*p = i
	}
	return posZ, posC, posT, nil
}

// RangeError reports a coordinate outside its axis extent.
type RangeError struct {
	Axis  string // "Z", "C", "T", "ModuloZ", ...
	Value int
	Size  int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("dimension: invalid %s index: %d/%d", e.Axis, e.Value, e.Size)
}

// Is makes a RangeError match omefiles.ErrLogic and ErrIndexOutOfRange.
func (e *RangeError) Is(target error) bool {
	return target == omefiles.ErrLogic || target == ErrIndexOutOfRange
}
