package schema

import (
	"fmt"

	"github.com/arloliu/savio/errs"
	"github.com/arloliu/savio/format"
)

// Numeric formats are at most 40 characters wide with up to 16 decimals.
const (
	maxNumericWidth = 40
	maxDecimals     = 16
)

// StorageSpec is the resolved storage of a variable.
type StorageSpec struct {
	// Width is the engine type code: 0 for numerics, the string width otherwise.
	Width int
	// ByteWidth is the number of bytes the variable occupies in a case record.
	ByteWidth int
	// Format is the print and write format.
	Format format.Spec
}

// Defaults holds the formats applied when a caller requests none.
type Defaults struct {
	Numeric  format.Spec
	Date     format.Spec
	Time     format.Spec
	DateTime format.Spec
}

// DefaultFormats returns F8.2, DATE11, TIME8 and DATETIME20.
func DefaultFormats() Defaults {
	return Defaults{
		Numeric:  format.Spec{Type: format.TypeF, Width: 8, Decimals: 2},
		Date:     format.Spec{Type: format.TypeDATE, Width: 11},
		Time:     format.Spec{Type: format.TypeTIME, Width: 8},
		DateTime: format.Spec{Type: format.TypeDATETIME, Width: 20},
	}
}

// For returns the default format for kind k. Strings have no default
// since their width depends on the data.
func (d Defaults) For(k Kind) format.Spec {
	switch k { //nolint: exhaustive
	case KindDate:
		return d.Date
	case KindTime:
		return d.Time
	case KindDateTime:
		return d.DateTime
	default:
		return d.Numeric
	}
}

// Resolve resolves t with the package default formats.
func Resolve(t VarType, requested *format.Spec, observedWidth int) (StorageSpec, error) {
	return DefaultFormats().Resolve(t, requested, observedWidth)
}

// Resolve computes the storage width and format of a variable.
//
// Strings take the larger of the observed and declared widths (at least
// 1) and fail with ErrUnsupportedFormat beyond the long string limit. A
// string variable given a numeric format code falls back to A. Numeric,
// date, time and datetime variables are 8-byte doubles whose format must
// belong to their family.
func (d Defaults) Resolve(t VarType, requested *format.Spec, observedWidth int) (StorageSpec, error) {
	if requested != nil && !requested.Type.Valid() {
		return StorageSpec{}, fmt.Errorf("%w: format code %d", errs.ErrUnsupportedFormat, requested.Type)
	}

	if t.Kind == KindString {
		return resolveString(t, requested, observedWidth)
	}

	spec := d.For(t.Kind)
	if requested != nil {
		spec = *requested
	}

	if !inFamily(t.Kind, spec.Type) {
		return StorageSpec{}, fmt.Errorf("%w: %s cannot format a %s variable", errs.ErrUnsupportedFormat, spec, t.Kind)
	}

	if spec.Width < 1 || spec.Width > maxNumericWidth || spec.Decimals < 0 || spec.Decimals > maxDecimals {
		return StorageSpec{}, fmt.Errorf("%w: %s has an invalid width or decimals", errs.ErrUnsupportedFormat, spec)
	}

	return StorageSpec{Width: 0, ByteWidth: 8, Format: spec}, nil
}

func resolveString(t VarType, requested *format.Spec, observedWidth int) (StorageSpec, error) {
	width := max(observedWidth, t.Width, 1)
	if width > format.MaxLongString {
		return StorageSpec{}, fmt.Errorf("%w: string width %d exceeds %d", errs.ErrUnsupportedFormat, width, format.MaxLongString)
	}

	code := format.TypeA
	if requested != nil && requested.Type == format.TypeAHEX {
		code = format.TypeAHEX
	}

	fmtWidth := width
	if code == format.TypeAHEX {
		fmtWidth = 2 * width
	}

	return StorageSpec{
		Width:     width,
		ByteWidth: ByteWidth(width),
		Format:    format.Spec{Type: code, Width: fmtWidth},
	}, nil
}

func inFamily(k Kind, ft format.Type) bool {
	switch k { //nolint: exhaustive
	case KindDate:
		return ft.IsDate()
	case KindTime:
		return ft.IsTime()
	case KindDateTime:
		return ft.IsDateTime()
	default:
		return !ft.IsString()
	}
}
