package dictionary

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/arloliu/savio/engine"
	"github.com/arloliu/savio/format"
)

// Backend is the part of a codec engine that reads and writes a file
// dictionary.
type Backend interface {
	engine.Info
	engine.Variables
	engine.FileDictionary
}

// Commit writes the dictionary to the file h and seals the header.
//
// Calls are made in a fixed order: compression, variable names and
// types, per-variable properties, multiple-response sets, variable
// sets, file attributes, case weight and finally CommitHeader. Once
// committed the dictionary rejects further changes and a second Commit
// fails with errs.ErrHeaderCommitted.
func (d *Dictionary) Commit(b Backend, h engine.Handle, check engine.Checker) error {
	if err := d.mutable(); err != nil {
		return err
	}

	if len(d.vars) == 0 {
		return check.Check("CommitHeader", format.StatusNoVariables)
	}

	if err := check.Check("SetCompression", b.SetCompression(h, d.info.Compression)); err != nil {
		return err
	}

	for _, v := range d.vars {
		if err := check.Check("SetVarName", b.SetVarName(h, v.Name, v.Width)); err != nil {
			return fmt.Errorf("%s: %w", v.Name, err)
		}
	}

	lo, hi := b.LowHighValues()
	for _, v := range d.vars {
		if err := commitVariable(b, h, check, v, lo, hi); err != nil {
			return fmt.Errorf("%s: %w", v.Name, err)
		}
	}

	if len(d.mrsets) > 0 {
		if err := check.Check("SetMultRespDefs", b.SetMultRespDefs(h, FormatMRSets(d.mrsets))); err != nil {
			return err
		}
	}

	if len(d.varSets) > 0 {
		if err := check.Check("SetVariableSets", b.SetVariableSets(h, FormatVarSets(d.varSets))); err != nil {
			return err
		}
	}

	if len(d.info.Attributes) > 0 {
		if err := check.Check("SetFileAttributes", b.SetFileAttributes(h, attributeList(d.info.Attributes))); err != nil {
			return err
		}
	}

	if d.info.CaseWeight != "" {
		if err := check.Check("SetCaseWeightVar", b.SetCaseWeightVar(h, d.info.CaseWeight)); err != nil {
			return err
		}
	}

	if err := check.Check("CommitHeader", b.CommitHeader(h)); err != nil {
		return err
	}
	d.state = stateCommitted

	return nil
}

func commitVariable(b Backend, h engine.Handle, check engine.Checker, v *Variable, lo, hi float64) error {
	name := v.Name

	if err := check.Check("SetPrintFormat", b.SetPrintFormat(h, name, v.PrintFormat)); err != nil {
		return err
	}

	if err := check.Check("SetWriteFormat", b.SetWriteFormat(h, name, v.WriteFormat)); err != nil {
		return err
	}

	if v.Label != "" {
		if err := check.Check("SetVarLabel", b.SetVarLabel(h, name, v.Label)); err != nil {
			return err
		}
	}

	if err := commitValueLabels(b, h, check, v); err != nil {
		return err
	}

	if !v.Missing.IsEmpty() {
		if err := commitMissing(b, h, check, v, lo, hi); err != nil {
			return err
		}
	}

	if err := check.Check("SetMeasureLevel", b.SetMeasureLevel(h, name, v.Measure)); err != nil {
		return err
	}

	if err := check.Check("SetAlignment", b.SetAlignment(h, name, v.Alignment)); err != nil {
		return err
	}

	if err := check.Check("SetColumnWidth", b.SetColumnWidth(h, name, v.ColumnWidth)); err != nil {
		return err
	}

	if err := check.Check("SetRole", b.SetRole(h, name, v.Role)); err != nil {
		return err
	}

	if len(v.Attributes) > 0 {
		if err := check.Check("SetVarAttributes", b.SetVarAttributes(h, name, attributeList(v.Attributes))); err != nil {
			return err
		}
	}

	return nil
}

func commitValueLabels(b Backend, h engine.Handle, check engine.Checker, v *Variable) error {
	if v.IsString() {
		for _, key := range slices.Sorted(maps.Keys(v.ValueLabels.String)) {
			err := b.SetStringValueLabel(h, v.Name, key, v.ValueLabels.String[key])
			if err := check.Check("SetStringValueLabel", err); err != nil {
				return err
			}
		}

		return nil
	}

	for _, key := range slices.Sorted(maps.Keys(v.ValueLabels.Numeric)) {
		err := b.SetNumericValueLabel(h, v.Name, key, v.ValueLabels.Numeric[key])
		if err := check.Check("SetNumericValueLabel", err); err != nil {
			return err
		}
	}

	return nil
}

func commitMissing(b Backend, h engine.Handle, check engine.Checker, v *Variable, lo, hi float64) error {
	m := v.Missing

	if v.IsString() {
		sm := engine.StringMissing{Format: m.Format()}
		copy(sm.Values[:], m.Strings)

		return check.Check("SetStringMissing", b.SetStringMissing(h, v.Name, sm))
	}

	nm := engine.NumericMissing{Format: m.Format()}
	if m.Range == nil {
		copy(nm.Values[:], m.Numbers)
	} else {
		nm.Values[0] = clampBound(m.Range.Low, lo, hi)
		nm.Values[1] = clampBound(m.Range.High, lo, hi)
		if len(m.Numbers) > 0 {
			nm.Values[2] = m.Numbers[0]
		}
	}

	return check.Check("SetNumericMissing", b.SetNumericMissing(h, v.Name, nm))
}

// clampBound maps infinite range bounds onto the engine's LOWEST and
// HIGHEST values.
func clampBound(v, lo, hi float64) float64 {
	switch {
	case math.IsInf(v, -1):
		return lo
	case math.IsInf(v, 1):
		return hi
	default:
		return v
	}
}

func attributeList(attrs map[string]string) []engine.Attribute {
	out := make([]engine.Attribute, 0, len(attrs))
	for _, name := range slices.Sorted(maps.Keys(attrs)) {
		out = append(out, engine.Attribute{Name: name, Text: attrs[name]})
	}

	return out
}

func attributeMap(attrs []engine.Attribute) map[string]string {
	if len(attrs) == 0 {
		return nil
	}

	out := make(map[string]string, len(attrs))
	for _, a := range attrs {
		out[a.Name] = a.Text
	}

	return out
}
