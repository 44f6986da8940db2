// Package table is the in-memory columnar representation exchanged with
// data files: named, typed columns of cells, with the row number of the
// first row so chunks of a larger file keep their position.
package table

import (
	"math"
	"strconv"
	"time"
)

// Kind is the type of a column and of the cells it holds.
type Kind uint8

const (
	KindFloat Kind = iota
	KindString
	KindDate
	KindDateTime
	KindDuration
)

func (k Kind) String() string {
	switch k {
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindDateTime:
		return "datetime"
	case KindDuration:
		return "duration"
	default:
		return "unknown"
	}
}

// Value is a single cell. Only the field matching Kind is meaningful;
// the others stay at their zero values.
//
// A float cell holding NaN is treated as null.
type Value struct {
	Kind Kind
	Null bool

	Num  float64       // KindFloat
	Str  string        // KindString
	Time time.Time     // KindDate, KindDateTime
	Dur  time.Duration // KindDuration
}

func Float(v float64) Value { return Value{Kind: KindFloat, Num: v} }
func Str(s string) Value { return Value{Kind: KindString, Str: s} }

// Date returns a date cell holding the calendar day of t.
func Date(t time.Time) Value {
	return Value{Kind: KindDate, Time: time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)}
}

func DateTime(t time.Time) Value { return Value{Kind: KindDateTime, Time: t} }
func Duration(d time.Duration) Value { return Value{Kind: KindDuration, Dur: d} }

// Null returns a null cell of kind k.
func Null(k Kind) Value {
	return Value{Kind: k, Null: true}
}

// IsNull reports whether v is null or a NaN float.
func (v Value) IsNull() bool {
	return v.Null || (v.Kind == KindFloat && math.IsNaN(v.Num))
}

// Equal reports whether v and o hold the same cell. Null cells of the
// same kind are equal; times compare as instants.
func (v Value) Equal(o Value) bool {
	if v.Kind != o.Kind {
		return false
	}

	if v.IsNull() || o.IsNull() {
		return v.IsNull() == o.IsNull()
	}

	switch v.Kind {
	case KindFloat:
		return v.Num == o.Num
	case KindString:
		return v.Str == o.Str
	case KindDate, KindDateTime:
		return v.Time.Equal(o.Time)
	case KindDuration:
		return v.Dur == o.Dur
	default:
		return false
	}
}

// Any returns the cell as a plain Go value, or nil when null.
func (v Value) Any() any {
	if v.IsNull() {
		return nil
	}

	switch v.Kind {
	case KindFloat:
		return v.Num
	case KindString:
		return v.Str
	case KindDate, KindDateTime:
		return v.Time
	case KindDuration:
		return v.Dur
	default:
		return nil
	}
}

func (v Value) String() string {
	if v.IsNull() {
		return "<null>"
	}

	switch v.Kind {
	case KindFloat:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case KindString:
		return v.Str
	case KindDate:
		return v.Time.Format(time.DateOnly)
	case KindDateTime:
		return v.Time.Format(time.DateTime)
	case KindDuration:
		return v.Dur.String()
	default:
		return "<invalid>"
	}
}
