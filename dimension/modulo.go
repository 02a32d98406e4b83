package dimension

import "math"

// Modulo describes a sub-dimension folded into one of the Z, C or T axes.
// The zero value is not useful; use NewModulo.
type Modulo struct {
	Parent string // "Z", "C" or "T"
	Start  float64
	Step   float64
	End    float64
	Type   string // e.g. "lifetime", "lambda", "phase"
	Unit   string
	Labels []string
}

// NewModulo returns a single-step modulo over the given parent axis. Its
// Size is 1, which leaves the parent axis unsplit.
func NewModulo(parent string) Modulo {
	return Modulo{Parent: parent, Step: 1}
}

// Size returns the extent of the sub-dimension: the label count when labels
// are present, otherwise the number of steps from Start to End inclusive.
func (m Modulo) Size() int {
	if len(m.Labels) > 0 {
		return len(m.Labels)
	}
	if m.Step == 0 {
		return 1
	}
	n := int(math.Round((m.End-m.Start)/m.Step)) + 1
	if n < 1 {
		return 1
	}
	return n
}

// Value returns the physical value of sub-dimension index i when the
// modulo is defined by a range rather than labels.
func (m Modulo) Value(i int) float64 {
	return m.Start + float64(i)*m.Step
}
