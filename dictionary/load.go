package dictionary

import (
	"fmt"
	"math"

	"github.com/arloliu/savio/engine"
)

// Load reads the dictionary of the open file h. The result is sealed.
//
// Warning statuses such as "no labels" or "no multiple-response sets"
// leave the matching category empty.
func Load(b Backend, h engine.Handle, check engine.Checker) (*Dictionary, error) {
	d := New()
	d.state = stateCommitted

	if err := d.loadInfo(b, h, check); err != nil {
		return nil, err
	}

	names, types, err := b.VarNamesAndTypes(h)
	if err := check.Check("VarNamesAndTypes", err); err != nil {
		return nil, err
	}

	lo, hi := b.LowHighValues()
	for i, name := range names {
		v, err := loadVariable(b, h, check, name, types[i], lo, hi)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		if err := d.add(v); err != nil {
			return nil, err
		}
	}

	defs, err := b.MultRespDefs(h)
	if err := check.Check("MultRespDefs", err); err != nil {
		return nil, err
	}

	if d.mrsets, err = ParseMRSets(defs); err != nil {
		return nil, err
	}

	for _, s := range d.mrsets {
		d.mrNames.Track(s.Name)
	}

	sets, err := b.VariableSets(h)
	if err := check.Check("VariableSets", err); err != nil {
		return nil, err
	}
	d.varSets = ParseVarSets(sets)

	attrs, err := b.FileAttributes(h)
	if err := check.Check("FileAttributes", err); err != nil {
		return nil, err
	}
	d.info.Attributes = attributeMap(attrs)

	weight, err := b.CaseWeightVar(h)
	if err := check.Check("CaseWeightVar", err); err != nil {
		return nil, err
	}
	d.info.CaseWeight = weight

	return d, nil
}

func (d *Dictionary) loadInfo(b Backend, h engine.Handle, check engine.Checker) error {
	var err error

	d.info.Encoding, err = b.FileEncoding(h)
	if err := check.Check("FileEncoding", err); err != nil {
		return err
	}

	d.info.Compression, err = b.Compression(h)
	if err := check.Check("Compression", err); err != nil {
		return err
	}

	d.info.CaseCount, err = b.CaseCount(h)
	if err := check.Check("CaseCount", err); err != nil {
		return err
	}

	d.info.CaseSize, err = b.CaseSize(h)

	return check.Check("CaseSize", err)
}

func loadVariable(b Backend, h engine.Handle, check engine.Checker, name string, width int, lo, hi float64) (*Variable, error) {
	v := &Variable{Name: name, Width: width}

	var err error
	v.PrintFormat, err = b.PrintFormat(h, name)
	if err := check.Check("PrintFormat", err); err != nil {
		return nil, err
	}

	v.WriteFormat, err = b.WriteFormat(h, name)
	if err := check.Check("WriteFormat", err); err != nil {
		return nil, err
	}

	v.Label, err = b.VarLabel(h, name)
	if err := check.Check("VarLabel", err); err != nil {
		return nil, err
	}

	if err := loadValueLabels(b, h, check, v); err != nil {
		return nil, err
	}

	if err := loadMissing(b, h, check, v, lo, hi); err != nil {
		return nil, err
	}

	v.Measure, err = b.MeasureLevel(h, name)
	if err := check.Check("MeasureLevel", err); err != nil {
		return nil, err
	}

	v.Alignment, err = b.Alignment(h, name)
	if err := check.Check("Alignment", err); err != nil {
		return nil, err
	}

	v.ColumnWidth, err = b.ColumnWidth(h, name)
	if err := check.Check("ColumnWidth", err); err != nil {
		return nil, err
	}

	v.Role, err = b.Role(h, name)
	if err := check.Check("Role", err); err != nil {
		return nil, err
	}

	attrs, err := b.VarAttributes(h, name)
	if err := check.Check("VarAttributes", err); err != nil {
		return nil, err
	}
	v.Attributes = attributeMap(attrs)

	return v, nil
}

func loadValueLabels(b Backend, h engine.Handle, check engine.Checker, v *Variable) error {
	if v.IsString() {
		labels, err := b.StringValueLabels(h, v.Name)
		if err := check.Check("StringValueLabels", err); err != nil {
			return err
		}

		if len(labels) > 0 {
			v.ValueLabels = StringLabels(labels)
		}

		return nil
	}

	labels, err := b.NumericValueLabels(h, v.Name)
	if err := check.Check("NumericValueLabels", err); err != nil {
		return err
	}

	if len(labels) > 0 {
		v.ValueLabels = NumericLabels(labels)
	}

	return nil
}

func loadMissing(b Backend, h engine.Handle, check engine.Checker, v *Variable, lo, hi float64) error {
	if v.IsString() {
		sm, err := b.StringMissing(h, v.Name)
		if err := check.Check("StringMissing", err); err != nil {
			return err
		}

		if n := sm.Format.Discrete(); n > 0 {
			v.Missing = DiscreteStringMissing(sm.Values[:n]...)
		}

		return nil
	}

	nm, err := b.NumericMissing(h, v.Name)
	if err := check.Check("NumericMissing", err); err != nil {
		return err
	}

	switch {
	case nm.Format.HasRange():
		v.Missing = RangeMissing(unclampBound(nm.Values[0], lo, hi), unclampBound(nm.Values[1], lo, hi))
		if nm.Format.Discrete() > 0 {
			v.Missing.Numbers = []float64{nm.Values[2]}
		}
	case nm.Format.Discrete() > 0:
		v.Missing = DiscreteMissing(append([]float64(nil), nm.Values[:nm.Format.Discrete()]...)...)
	}

	return nil
}

// unclampBound maps the engine's LOWEST and HIGHEST values back to
// infinities.
func unclampBound(v, lo, hi float64) float64 {
	switch v {
	case lo:
		return math.Inf(-1)
	case hi:
		return math.Inf(1)
	default:
		return v
	}
}
