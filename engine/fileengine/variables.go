package fileengine

import (
	"unicode/utf8"

	"github.com/arloliu/savio/engine"
	"github.com/arloliu/savio/format"
)

// variable resolves a handle and a variable name.
func (e *Engine) variable(h engine.Handle, name string) (*file, *varRecord, error) {
	fl, err := e.lookup(h)
	if err != nil {
		return nil, nil, err
	}

	v, ok := fl.dict.lookup(name)
	if !ok {
		return nil, nil, format.StatusVarNotFound
	}

	return fl, v, nil
}

// writableVariable is variable for dictionary setters.
func (e *Engine) writableVariable(h engine.Handle, name string) (*varRecord, error) {
	fl, v, err := e.variable(h, name)
	if err != nil {
		return nil, err
	}

	if err := fl.dictWritable(); err != nil {
		return nil, err
	}

	return v, nil
}

func (e *Engine) VarNamesAndTypes(h engine.Handle) ([]string, []int, error) {
	fl, err := e.lookup(h)
	if err != nil {
		return nil, nil, err
	}

	if len(fl.dict.Variables) == 0 {
		return nil, nil, format.StatusNoVariables
	}

	names := make([]string, len(fl.dict.Variables))
	types := make([]int, len(fl.dict.Variables))
	for i, v := range fl.dict.Variables {
		names[i] = v.Name
		types[i] = v.Type
	}

	return names, types, nil
}

// SetVarName declares a variable. varType is 0 for numerics and the
// string width otherwise.
func (e *Engine) SetVarName(h engine.Handle, name string, varType int) error {
	fl, err := e.lookup(h)
	if err != nil {
		return err
	}

	if err := fl.dictWritable(); err != nil {
		return err
	}

	if name == "" || len(name) > format.MaxVarName || !utf8.ValidString(name) {
		return format.StatusInvalidVarName
	}

	if varType < 0 || varType > format.MaxLongString {
		return format.StatusInvalidVarType
	}

	if _, exists := fl.dict.lookup(name); exists {
		return format.StatusDupVar
	}

	spec := format.Spec{Type: format.TypeF, Width: 8, Decimals: 2}
	measure := format.MeasureScale
	align := format.AlignRight
	if varType > 0 {
		spec = format.Spec{Type: format.TypeA, Width: varType}
		measure = format.MeasureNominal
		align = format.AlignLeft
	}

	fl.dict.add(&varRecord{
		Name:        name,
		Type:        varType,
		Print:       spec.Tuple(),
		Write:       spec.Tuple(),
		Measure:     uint8(measure),
		Alignment:   uint8(align),
		ColumnWidth: 8,
	})

	return nil
}

func validFormat(v *varRecord, spec format.Spec) bool {
	if !spec.Type.Valid() || spec.Width < 1 || spec.Decimals < 0 {
		return false
	}

	return (v.Type > 0) == spec.Type.IsString()
}

func (e *Engine) PrintFormat(h engine.Handle, name string) (format.Spec, error) {
	_, v, err := e.variable(h, name)
	if err != nil {
		return format.Spec{}, err
	}

	return format.SpecFromTuple(v.Print), nil
}

func (e *Engine) SetPrintFormat(h engine.Handle, name string, spec format.Spec) error {
	v, err := e.writableVariable(h, name)
	if err != nil {
		return err
	}

	if !validFormat(v, spec) {
		return format.StatusInvalidPrFor
	}
	v.Print = spec.Tuple()

	return nil
}

func (e *Engine) WriteFormat(h engine.Handle, name string) (format.Spec, error) {
	_, v, err := e.variable(h, name)
	if err != nil {
		return format.Spec{}, err
	}

	return format.SpecFromTuple(v.Write), nil
}

func (e *Engine) SetWriteFormat(h engine.Handle, name string, spec format.Spec) error {
	v, err := e.writableVariable(h, name)
	if err != nil {
		return err
	}

	if !validFormat(v, spec) {
		return format.StatusInvalidWrFor
	}
	v.Write = spec.Tuple()

	return nil
}

func (e *Engine) VarLabel(h engine.Handle, name string) (string, error) {
	_, v, err := e.variable(h, name)
	if err != nil {
		return "", err
	}

	return v.Label, nil
}

// SetVarLabel sets a variable label, truncating it to MaxVarLabel bytes
// with a warning.
func (e *Engine) SetVarLabel(h engine.Handle, name string, label string) error {
	v, err := e.writableVariable(h, name)
	if err != nil {
		return err
	}

	if len(label) > format.MaxVarLabel {
		v.Label = label[:format.MaxVarLabel]
		return format.StatusExcVarLabel
	}
	v.Label = label

	return nil
}

func (e *Engine) NumericValueLabels(h engine.Handle, name string) (map[float64]string, error) {
	_, v, err := e.variable(h, name)
	if err != nil {
		return nil, err
	}

	if v.Type > 0 {
		return nil, format.StatusNumeExp
	}

	if len(v.NumLabels) == 0 {
		return nil, format.StatusNoLabels
	}

	out := make(map[float64]string, len(v.NumLabels))
	for _, l := range v.NumLabels {
		out[l.Value] = l.Label
	}

	return out, nil
}

func (e *Engine) SetNumericValueLabel(h engine.Handle, name string, value float64, label string) error {
	v, err := e.writableVariable(h, name)
	if err != nil {
		return err
	}

	if v.Type > 0 {
		return format.StatusNumeExp
	}

	label, st := clipValueLabel(label)
	for i := range v.NumLabels {
		if v.NumLabels[i].Value == value {
			v.NumLabels[i].Label = label
			return st
		}
	}
	v.NumLabels = append(v.NumLabels, numLabel{Value: value, Label: label})

	return st
}

func (e *Engine) StringValueLabels(h engine.Handle, name string) (map[string]string, error) {
	_, v, err := e.variable(h, name)
	if err != nil {
		return nil, err
	}

	if v.Type == 0 {
		return nil, format.StatusStrExp
	}

	if len(v.StrLabels) == 0 {
		return nil, format.StatusNoLabels
	}

	out := make(map[string]string, len(v.StrLabels))
	for _, l := range v.StrLabels {
		out[l.Value] = l.Label
	}

	return out, nil
}

func (e *Engine) SetStringValueLabel(h engine.Handle, name string, value string, label string) error {
	fl, v, err := e.variable(h, name)
	if err != nil {
		return err
	}

	if err := fl.dictWritable(); err != nil {
		return err
	}

	if v.Type == 0 {
		return format.StatusStrExp
	}

	if fl.dict.storedLen(value) > v.Type {
		return format.StatusExcStrValue
	}

	label, st := clipValueLabel(label)
	for i := range v.StrLabels {
		if v.StrLabels[i].Value == value {
			v.StrLabels[i].Label = label
			return st
		}
	}
	v.StrLabels = append(v.StrLabels, strLabel{Value: value, Label: label})

	return st
}

func clipValueLabel(label string) (string, error) {
	if len(label) > format.MaxValueLabel {
		return label[:format.MaxValueLabel], format.StatusExcValLabel
	}

	return label, nil
}

func (e *Engine) NumericMissing(h engine.Handle, name string) (engine.NumericMissing, error) {
	_, v, err := e.variable(h, name)
	if err != nil {
		return engine.NumericMissing{}, err
	}

	if v.Type > 0 {
		return engine.NumericMissing{}, format.StatusNumeExp
	}

	return engine.NumericMissing{Format: format.MissingFormat(v.MissingFmt), Values: v.NumMissing}, nil
}

func (e *Engine) SetNumericMissing(h engine.Handle, name string, m engine.NumericMissing) error {
	v, err := e.writableVariable(h, name)
	if err != nil {
		return err
	}

	if v.Type > 0 {
		return format.StatusNumeExp
	}

	if !m.Format.Valid() || (m.Format.HasRange() && m.Values[0] > m.Values[1]) {
		return format.StatusInvalidMissFor
	}

	v.MissingFmt = int8(m.Format)
	v.NumMissing = m.Values

	return nil
}

func (e *Engine) StringMissing(h engine.Handle, name string) (engine.StringMissing, error) {
	_, v, err := e.variable(h, name)
	if err != nil {
		return engine.StringMissing{}, err
	}

	if v.Type == 0 {
		return engine.StringMissing{}, format.StatusStrExp
	}

	return engine.StringMissing{Format: format.MissingFormat(v.MissingFmt), Values: v.StrMissing}, nil
}

func (e *Engine) SetStringMissing(h engine.Handle, name string, m engine.StringMissing) error {
	fl, v, err := e.variable(h, name)
	if err != nil {
		return err
	}

	if err := fl.dictWritable(); err != nil {
		return err
	}

	if v.Type == 0 {
		return format.StatusStrExp
	}

	if !m.Format.Valid() || m.Format.HasRange() {
		return format.StatusInvalidMissFor
	}

	for _, s := range m.Values[:m.Format.Discrete()] {
		if fl.dict.storedLen(s) > v.Type {
			return format.StatusExcStrValue
		}
	}

	v.MissingFmt = int8(m.Format)
	v.StrMissing = m.Values

	return nil
}

func (e *Engine) MeasureLevel(h engine.Handle, name string) (format.MeasureLevel, error) {
	_, v, err := e.variable(h, name)
	if err != nil {
		return 0, err
	}

	return format.MeasureLevel(v.Measure), nil
}

func (e *Engine) SetMeasureLevel(h engine.Handle, name string, level format.MeasureLevel) error {
	v, err := e.writableVariable(h, name)
	if err != nil {
		return err
	}

	if !level.Valid() || (v.Type > 0 && level == format.MeasureScale) {
		return format.StatusInvalidMeasureLvl
	}
	v.Measure = uint8(level)

	return nil
}

func (e *Engine) Alignment(h engine.Handle, name string) (format.Alignment, error) {
	_, v, err := e.variable(h, name)
	if err != nil {
		return 0, err
	}

	return format.Alignment(v.Alignment), nil
}

func (e *Engine) SetAlignment(h engine.Handle, name string, align format.Alignment) error {
	v, err := e.writableVariable(h, name)
	if err != nil {
		return err
	}

	if !align.Valid() {
		return format.StatusInvalid7Subtype
	}
	v.Alignment = uint8(align)

	return nil
}

func (e *Engine) ColumnWidth(h engine.Handle, name string) (int, error) {
	_, v, err := e.variable(h, name)
	if err != nil {
		return 0, err
	}

	return v.ColumnWidth, nil
}

func (e *Engine) SetColumnWidth(h engine.Handle, name string, width int) error {
	v, err := e.writableVariable(h, name)
	if err != nil {
		return err
	}

	if width < 0 {
		return format.StatusInvalid7Subtype
	}
	v.ColumnWidth = width

	return nil
}

func (e *Engine) Role(h engine.Handle, name string) (format.Role, error) {
	_, v, err := e.variable(h, name)
	if err != nil {
		return 0, err
	}

	return format.Role(v.Role), nil
}

func (e *Engine) SetRole(h engine.Handle, name string, role format.Role) error {
	v, err := e.writableVariable(h, name)
	if err != nil {
		return err
	}

	if !role.Valid() {
		return format.StatusInvalidRole
	}
	v.Role = uint8(role)

	return nil
}

func (e *Engine) VarAttributes(h engine.Handle, name string) ([]engine.Attribute, error) {
	_, v, err := e.variable(h, name)
	if err != nil {
		return nil, err
	}

	return attributes(v.Attributes), nil
}

func (e *Engine) SetVarAttributes(h engine.Handle, name string, attrs []engine.Attribute) error {
	v, err := e.writableVariable(h, name)
	if err != nil {
		return err
	}

	if err := validAttributes(attrs); err != nil {
		return err
	}
	v.Attributes = attrRecords(attrs)

	return nil
}

func validAttributes(attrs []engine.Attribute) error {
	seen := make(map[string]struct{}, len(attrs))
	for _, a := range attrs {
		if a.Name == "" || len(a.Name) > format.MaxVarName {
			return format.StatusInvalidAttrName
		}

		if _, dup := seen[a.Name]; dup {
			return format.StatusInvalidAttrDef
		}
		seen[a.Name] = struct{}{}
	}

	return nil
}
