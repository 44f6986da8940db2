package format

import "strconv"

// Spec is a print or write format: a format code with its total display
// width and number of decimal places.
type Spec struct {
	Type     Type
	Width    int
	Decimals int
}

// String renders s in the "F8.2" form. Zero decimals are omitted.
func (s Spec) String() string {
	out := s.Type.String() + strconv.Itoa(s.Width)
	if s.Decimals > 0 {
		out += "." + strconv.Itoa(s.Decimals)
	}

	return out
}

// Tuple returns s as (type code, width, decimals).
func (s Spec) Tuple() [3]int {
	return [3]int{int(s.Type), s.Width, s.Decimals}
}

// SpecFromTuple is the inverse of Spec.Tuple.
func SpecFromTuple(t [3]int) Spec {
	return Spec{Type: Type(t[0]), Width: t[1], Decimals: t[2]}
}
