package dictionary

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/arloliu/savio/format"
	"github.com/arloliu/savio/schema"
)

// Variable is the descriptor of one column of a data file.
type Variable struct {
	Name string
	// Width is 0 for numeric variables and the width in bytes for strings.
	Width int

	PrintFormat format.Spec
	WriteFormat format.Spec

	Label       string
	ValueLabels Labels
	Missing     MissingValues

	Measure     format.MeasureLevel
	Alignment   format.Alignment
	ColumnWidth int
	Role        format.Role
	Attributes  map[string]string
}

// IsString reports whether v is a string variable.
func (v *Variable) IsString() bool {
	return v.Width > 0
}

// Kind returns the semantic type of v, derived from its print format for
// numeric variables.
func (v *Variable) Kind() schema.Kind {
	if v.IsString() {
		return schema.KindString
	}

	return schema.KindOf(v.PrintFormat)
}

// ByteWidth returns the number of bytes v occupies in a case record.
func (v *Variable) ByteWidth() int {
	return schema.ByteWidth(v.Width)
}

func (v *Variable) clone() *Variable {
	c := *v
	c.ValueLabels = v.ValueLabels.clone()
	c.Missing = v.Missing.clone()
	c.Attributes = maps.Clone(v.Attributes)

	return &c
}

// Labels maps stored values to value labels. Numeric variables use
// Numeric and string variables use String.
type Labels struct {
	Numeric map[float64]string
	String  map[string]string
}

// NumericLabels builds labels for a numeric variable.
func NumericLabels(m map[float64]string) Labels {
	return Labels{Numeric: m}
}

// StringLabels builds labels for a string variable.
func StringLabels(m map[string]string) Labels {
	return Labels{String: m}
}

// Len returns the number of labelled values.
func (l Labels) Len() int {
	return len(l.Numeric) + len(l.String)
}

func (l Labels) clone() Labels {
	return Labels{Numeric: maps.Clone(l.Numeric), String: maps.Clone(l.String)}
}

// asStrings returns every label keyed by its text form.
func (l Labels) asStrings() map[string]string {
	out := make(map[string]string, l.Len())
	for k, v := range l.Numeric {
		out[formatNumber(k)] = v
	}
	maps.Copy(out, l.String)

	return out
}

// MarshalJSON encodes the labels as an object keyed by value.
func (l Labels) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.asStrings())
}

// UnmarshalJSON decodes an object keyed by value. Keys stay strings; a
// numeric variable parses them when the labels are applied.
func (l *Labels) UnmarshalJSON(b []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	*l = Labels{String: raw}

	return nil
}

// asNumeric returns string-keyed labels with numeric keys, or l unchanged
// when a key is not a number.
func (l Labels) asNumeric() Labels {
	if len(l.String) == 0 {
		return l
	}

	out := make(map[float64]string, len(l.String)+len(l.Numeric))
	maps.Copy(out, l.Numeric)
	for k, v := range l.String {
		f, err := strconv.ParseFloat(k, 64)
		if err != nil {
			return l
		}
		out[f] = v
	}

	return Labels{Numeric: out}
}

// Range is a closed interval of missing values. Infinite bounds stand
// for LOWEST and HIGHEST.
type Range struct {
	Low  float64
	High float64
}

// MissingValues is the user-missing definition of a variable: up to three
// discrete values, a range, or a range plus one discrete value.
type MissingValues struct {
	Numbers []float64
	Strings []string
	Range   *Range
}

// DiscreteMissing builds a definition of discrete numeric codes.
func DiscreteMissing(values ...float64) MissingValues {
	return MissingValues{Numbers: values}
}

// DiscreteStringMissing builds a definition of discrete string codes.
func DiscreteStringMissing(values ...string) MissingValues {
	return MissingValues{Strings: values}
}

// RangeMissing builds a range definition with an optional discrete code.
func RangeMissing(lo, hi float64, value ...float64) MissingValues {
	return MissingValues{Range: &Range{Low: lo, High: hi}, Numbers: value}
}

// IsEmpty reports whether no missing values are defined.
func (m MissingValues) IsEmpty() bool {
	return len(m.Numbers) == 0 && len(m.Strings) == 0 && m.Range == nil
}

// Format returns the missing format code of m. It assumes m is valid.
func (m MissingValues) Format() format.MissingFormat {
	if m.Range != nil {
		if len(m.Numbers) > 0 {
			return format.MissingRangeAndValue
		}

		return format.MissingRange
	}

	return format.MissingFormat(len(m.Numbers) + len(m.Strings))
}

// Matches reports whether the numeric value v is user-missing.
func (m MissingValues) Matches(v float64) bool {
	if m.Range != nil && v >= m.Range.Low && v <= m.Range.High {
		return true
	}

	return slices.Contains(m.Numbers, v)
}

// MatchesString reports whether s, with trailing blanks removed, is
// user-missing.
func (m MissingValues) MatchesString(s string) bool {
	s = strings.TrimRight(s, " ")
	for _, code := range m.Strings {
		if strings.TrimRight(code, " ") == s {
			return true
		}
	}

	return false
}

func (m MissingValues) clone() MissingValues {
	c := MissingValues{Numbers: slices.Clone(m.Numbers), Strings: slices.Clone(m.Strings)}
	if m.Range != nil {
		r := *m.Range
		c.Range = &r
	}

	return c
}

type missingJSON struct {
	Values []any `json:"values"`
	Lo     any   `json:"lo"`
	Hi     any   `json:"hi"`
}

// MarshalJSON encodes m as {"values": [...], "lo": x, "hi": y}. Infinite
// bounds are written as "lowest" and "highest".
func (m MissingValues) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, 3)

	values := make([]any, 0, len(m.Numbers)+len(m.Strings))
	for _, v := range m.Numbers {
		values = append(values, v)
	}
	for _, v := range m.Strings {
		values = append(values, v)
	}

	if len(values) > 0 {
		out["values"] = values
	}

	if m.Range != nil {
		out["lo"] = boundJSON(m.Range.Low)
		out["hi"] = boundJSON(m.Range.High)
	}

	return json.Marshal(out)
}

// UnmarshalJSON decodes the form written by MarshalJSON. Bounds also
// accept "lo", "low", "-inf", "hi", "high" and "inf".
func (m *MissingValues) UnmarshalJSON(b []byte) error {
	var raw missingJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var out MissingValues
	for _, v := range raw.Values {
		switch x := v.(type) {
		case float64:
			out.Numbers = append(out.Numbers, x)
		case string:
			out.Strings = append(out.Strings, x)
		default:
			return fmt.Errorf("unsupported missing value %v", v)
		}
	}

	if raw.Lo != nil || raw.Hi != nil {
		lo, err := parseBound(raw.Lo, math.Inf(-1))
		if err != nil {
			return err
		}
		hi, err := parseBound(raw.Hi, math.Inf(1))
		if err != nil {
			return err
		}
		out.Range = &Range{Low: lo, High: hi}
	}

	*m = out

	return nil
}

func boundJSON(v float64) any {
	switch {
	case math.IsInf(v, -1):
		return "lowest"
	case math.IsInf(v, 1):
		return "highest"
	default:
		return v
	}
}

func parseBound(v any, missing float64) (float64, error) {
	switch x := v.(type) {
	case nil:
		return missing, nil
	case float64:
		return x, nil
	case string:
		switch strings.ToLower(x) {
		case "lo", "low", "lowest", "-inf":
			return math.Inf(-1), nil
		case "hi", "high", "highest", "inf":
			return math.Inf(1), nil
		}

		f, err := strconv.ParseFloat(x, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid missing range bound %q", x)
		}

		return f, nil
	default:
		return 0, fmt.Errorf("invalid missing range bound %v", v)
	}
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
