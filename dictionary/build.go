package dictionary

import (
	"fmt"
	"maps"
	"slices"

	"github.com/arloliu/savio/errs"
	"github.com/arloliu/savio/format"
	"github.com/arloliu/savio/schema"
	"github.com/arloliu/savio/table"
)

// Build infers the dictionary of a new file holding tbl, refined by the
// caller metadata md, which may be nil.
//
// Column kinds pick the variable type: strings become string variables
// as wide as their longest encoded value, dates, datetimes and durations
// become date, datetime and time variables, and floats become numeric.
// A positive md.VarTypes entry forces a string variable. Formats missing
// from md come from defaults, and non-string variables default to the
// scale measurement level.
//
// Per-variable metadata for names absent from tbl is ignored. Sets and
// the case weight must refer to columns of tbl. String widths, label keys
// and missing codes are measured in the Text given by WithText.
func Build(tbl *table.Table, md *Metadata, defaults schema.Defaults, opts ...Option) (*Dictionary, error) {
	if err := tbl.Validate(); err != nil {
		return nil, err
	}

	if md == nil {
		md = &Metadata{}
	}

	d := New(opts...)
	for _, col := range tbl.Columns {
		v, err := inferVariable(col, md, defaults, d.text)
		if err != nil {
			return nil, err
		}

		if err := d.RegisterVariable(v); err != nil {
			return nil, err
		}
	}

	if err := d.apply(md); err != nil {
		return nil, err
	}

	return d, nil
}

func inferVariable(col *table.Column, md *Metadata, defaults schema.Defaults, text Text) (Variable, error) {
	requested, err := md.formatFor(col.Name)
	if err != nil {
		return Variable{}, err
	}

	declared := md.VarTypes[col.Name]
	if declared > 0 || col.Kind == table.KindString {
		observed := 0
		for row, cell := range col.Values {
			if cell.IsNull() {
				continue
			}

			n, err := text.EncodedLen(cell.String())
			if err != nil {
				return Variable{}, &errs.ValueConversionError{Row: row, Column: col.Name, Value: cell.Any(), Err: err}
			}
			observed = max(observed, n)
		}

		spec, err := defaults.Resolve(schema.String(declared), requested, observed)
		if err != nil {
			return Variable{}, fmt.Errorf("%s: %w", col.Name, err)
		}

		return Variable{
			Name:        col.Name,
			Width:       spec.Width,
			PrintFormat: spec.Format,
			WriteFormat: spec.Format,
			Measure:     format.MeasureNominal,
			Alignment:   format.AlignLeft,
			ColumnWidth: defaultColumnWidth(spec.Width),
		}, nil
	}

	var t schema.VarType
	switch col.Kind { //nolint: exhaustive
	case table.KindDate:
		t = schema.Date()
	case table.KindDateTime:
		t = schema.DateTime()
	case table.KindDuration:
		t = schema.Time()
	default:
		t = schema.Numeric()
	}

	spec, err := defaults.Resolve(t, requested, 0)
	if err != nil {
		return Variable{}, fmt.Errorf("%s: %w", col.Name, err)
	}

	return Variable{
		Name:        col.Name,
		PrintFormat: spec.Format,
		WriteFormat: spec.Format,
		Measure:     format.MeasureScale,
		Alignment:   format.AlignRight,
		ColumnWidth: defaultColumnWidth(spec.Format.Width),
	}, nil
}

func defaultColumnWidth(w int) int {
	return min(max(w, 8), 255)
}

// apply copies the per-variable and file-level entries of md onto d.
func (d *Dictionary) apply(md *Metadata) error {
	for _, v := range d.vars {
		if err := d.applyVariable(v.Name, md); err != nil {
			return err
		}
	}

	for _, name := range slices.Sorted(maps.Keys(md.MRSets)) {
		set := md.MRSets[name]
		set.Name = name
		if err := d.RegisterMultRespSet(set); err != nil {
			return err
		}
	}

	if len(md.VarSets) > 0 {
		sets := make([]VarSet, 0, len(md.VarSets))
		for _, name := range slices.Sorted(maps.Keys(md.VarSets)) {
			sets = append(sets, VarSet{Name: name, Variables: md.VarSets[name]})
		}

		if err := d.SetVariableSets(sets); err != nil {
			return err
		}
	}

	if len(md.FileAttributes) > 0 {
		if err := d.SetFileAttributes(md.FileAttributes); err != nil {
			return err
		}
	}

	return d.SetCaseWeight(md.CaseWeightVar)
}

func (d *Dictionary) applyVariable(name string, md *Metadata) error {
	if label, ok := md.VarLabels[name]; ok {
		if err := d.SetVarLabel(name, label); err != nil {
			return err
		}
	}

	if labels, ok := md.VarValueLabels[name]; ok {
		if err := d.SetValueLabels(name, labels); err != nil {
			return err
		}
	}

	if missing, ok := md.VarMissingValues[name]; ok {
		if err := d.SetMissingValues(name, missing); err != nil {
			return err
		}
	}

	if level, ok := md.VarMeasureLevels[name]; ok {
		if err := d.SetMeasureLevel(name, level); err != nil {
			return err
		}
	}

	if align, ok := md.VarAlignments[name]; ok {
		if err := d.SetAlignment(name, align); err != nil {
			return err
		}
	}

	if width, ok := md.VarColumnWidths[name]; ok {
		if err := d.SetColumnWidth(name, width); err != nil {
			return err
		}
	}

	if role, ok := md.VarRoles[name]; ok {
		if err := d.SetRole(name, role); err != nil {
			return err
		}
	}

	if attrs, ok := md.VarAttributes[name]; ok {
		if err := d.SetVarAttributes(name, attrs); err != nil {
			return err
		}
	}

	return nil
}
