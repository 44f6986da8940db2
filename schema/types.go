// Package schema resolves the storage layout and display format of a
// variable from its semantic type, and converts calendar values to and
// from the seconds-from-epoch representation used in case records.
//
// Everything in this package is a pure function of its inputs.
package schema

import (
	"fmt"

	"github.com/arloliu/savio/format"
)

// Kind is the semantic type of a variable.
type Kind uint8

const (
	KindNumeric Kind = iota
	KindString
	KindDate
	KindTime
	KindDateTime
)

func (k Kind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindTime:
		return "time"
	case KindDateTime:
		return "datetime"
	default:
		return "unknown"
	}
}

// IsTemporal reports whether k is stored as seconds from the epoch or as
// elapsed seconds.
func (k Kind) IsTemporal() bool {
	return k == KindDate || k == KindTime || k == KindDateTime
}

// VarType is a declared semantic type. Width applies to strings only and
// is the declared minimum width in bytes.
type VarType struct {
	Kind  Kind
	Width int
}

func Numeric() VarType  { return VarType{Kind: KindNumeric} }
func Date() VarType     { return VarType{Kind: KindDate} }
func Time() VarType     { return VarType{Kind: KindTime} }
func DateTime() VarType { return VarType{Kind: KindDateTime} }

// String returns a string type with the given declared width.
func String(width int) VarType {
	return VarType{Kind: KindString, Width: width}
}

func (t VarType) String() string {
	if t.Kind == KindString {
		return fmt.Sprintf("string(%d)", t.Width)
	}

	return t.Kind.String()
}

// KindOf classifies a numeric variable by its print format. WKDAY and
// MONTH stay numeric since they hold ordinals, not offsets.
func KindOf(f format.Spec) Kind {
	switch {
	case f.Type.IsString():
		return KindString
	case f.Type.IsDate():
		return KindDate
	case f.Type.IsTime():
		return KindTime
	case f.Type.IsDateTime():
		return KindDateTime
	default:
		return KindNumeric
	}
}

// ByteWidth returns the case-record width of a variable with the given
// engine type code: 8 for numerics, or the string width rounded up to a
// multiple of 8.
func ByteWidth(varType int) int {
	if varType <= 0 {
		return 8
	}

	return 8 * ((varType + 7) / 8)
}
