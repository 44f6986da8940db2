// Package dictionary holds the metadata of a data file: its variables,
// file-level properties, multiple-response sets and variable sets. It
// validates every change, commits the result to a codec engine in a
// fixed order and loads it back.
package dictionary

import (
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/arloliu/savio/errs"
	"github.com/arloliu/savio/format"
	"github.com/arloliu/savio/internal/collision"
	"github.com/arloliu/savio/schema"
)

// FileInfo holds the file-level properties of a dictionary.
type FileInfo struct {
	Encoding    string
	Compression format.Compression
	CaseWeight  string
	Attributes  map[string]string
	CaseCount   int64
	CaseSize    int
}

type sealState uint8

const (
	stateOpen sealState = iota
	stateCommitted
	stateAppending
)

// Dictionary is the metadata registry of one file.
//
// A new dictionary accepts changes until it is committed. Dictionaries
// loaded from a file are sealed. A Dictionary is not safe for concurrent
// use.
type Dictionary struct {
	vars    []*Variable
	names   *collision.Tracker
	info    FileInfo
	mrsets  []MRSet
	mrNames *collision.Tracker
	varSets []VarSet
	state   sealState
	text    Text
}

// Text measures and cuts strings in the encoding of a file. String
// widths, value label keys and missing codes are checked with it.
type Text interface {
	// EncodedLen returns the stored byte length of s.
	EncodedLen(s string) (int, error)
	// Clip returns s as it reads back after being stored in n bytes.
	Clip(s string, n int) (string, error)
}

type utf8Text struct{}

func (utf8Text) EncodedLen(s string) (int, error) {
	return len(s), nil
}

func (utf8Text) Clip(s string, n int) (string, error) {
	if len(s) > n {
		s = s[:n]
		for len(s) > 0 {
			if r, size := utf8.DecodeLastRuneInString(s); r != utf8.RuneError || size != 1 {
				break
			}
			s = s[:len(s)-1]
		}
	}

	return strings.TrimRight(s, " \x00"), nil
}

// Option configures a Dictionary.
type Option func(*Dictionary)

// WithText sets the encoding strings are measured in. The default is
// UTF-8.
func WithText(t Text) Option {
	return func(d *Dictionary) {
		if t != nil {
			d.text = t
		}
	}
}

// New creates an empty, mutable dictionary.
func New(opts ...Option) *Dictionary {
	d := &Dictionary{
		names:   collision.NewTracker(),
		mrNames: collision.NewTracker(),
		info:    FileInfo{Compression: format.CompressionStandard},
		text:    utf8Text{},
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Dictionary) mutable() error {
	switch d.state {
	case stateCommitted:
		return errs.ErrHeaderCommitted
	case stateAppending:
		return errs.ErrAppendMetadata
	default:
		return nil
	}
}

// Sealed reports whether the dictionary rejects changes.
func (d *Dictionary) Sealed() bool {
	return d.state != stateOpen
}

// SealForAppend marks the dictionary as belonging to a file opened for
// append. Later changes fail with errs.ErrAppendMetadata.
func (d *Dictionary) SealForAppend() {
	d.state = stateAppending
}

// RegisterVariable adds v after validating its name and format.
// Zero print and write formats are resolved from the variable type.
func (d *Dictionary) RegisterVariable(v Variable) error {
	if err := d.mutable(); err != nil {
		return err
	}

	if err := ValidateName(v.Name); err != nil {
		return err
	}

	if v.Width < 0 || v.Width > format.MaxLongString {
		return fmt.Errorf("%w: string width %d of %s", errs.ErrUnsupportedFormat, v.Width, v.Name)
	}

	if v.PrintFormat == (format.Spec{}) {
		spec, err := schema.Resolve(varType(&v), nil, v.Width)
		if err != nil {
			return fmt.Errorf("%s: %w", v.Name, err)
		}
		v.PrintFormat = spec.Format
	} else if err := checkFormat(&v, v.PrintFormat); err != nil {
		return err
	}

	if v.WriteFormat == (format.Spec{}) {
		v.WriteFormat = v.PrintFormat
	} else if err := checkFormat(&v, v.WriteFormat); err != nil {
		return err
	}

	return d.add(v.clone())
}

func (d *Dictionary) add(v *Variable) error {
	if _, ok := d.names.Track(v.Name); !ok {
		return fmt.Errorf("%w: %s", errs.ErrDuplicateName, v.Name)
	}
	d.vars = append(d.vars, v)

	return nil
}

func varType(v *Variable) schema.VarType {
	if v.IsString() {
		return schema.String(v.Width)
	}

	return schema.VarType{Kind: schema.KindOf(v.PrintFormat)}
}

func checkFormat(v *Variable, spec format.Spec) error {
	if !spec.Type.Valid() {
		return fmt.Errorf("%w: format code %d for %s", errs.ErrUnsupportedFormat, spec.Type, v.Name)
	}

	if v.IsString() != spec.Type.IsString() {
		return fmt.Errorf("%w: %s does not suit %s variable %s",
			errs.ErrUnsupportedFormat, spec, varType(v).Kind, v.Name)
	}

	if v.IsString() {
		return nil
	}

	if spec.Width < 1 || spec.Width > 40 || spec.Decimals < 0 || spec.Decimals > 16 {
		return fmt.Errorf("%w: %s for %s", errs.ErrUnsupportedFormat, spec, v.Name)
	}

	return nil
}

func (d *Dictionary) lookup(name string) (*Variable, error) {
	pos, ok := d.names.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", errs.ErrUnknownVariable, name)
	}

	return d.vars[pos], nil
}

func (d *Dictionary) mutableVar(name string) (*Variable, error) {
	if err := d.mutable(); err != nil {
		return nil, err
	}

	return d.lookup(name)
}

// Len returns the number of variables.
func (d *Dictionary) Len() int {
	return len(d.vars)
}

// Names returns the variable names in file order.
func (d *Dictionary) Names() []string {
	names := make([]string, len(d.vars))
	for i, v := range d.vars {
		names[i] = v.Name
	}

	return names
}

// Index returns the file position of the variable name, ignoring case.
func (d *Dictionary) Index(name string) (int, bool) {
	return d.names.Lookup(name)
}

// Variable returns a copy of the variable name.
func (d *Dictionary) Variable(name string) (Variable, error) {
	v, err := d.lookup(name)
	if err != nil {
		return Variable{}, err
	}

	return *v.clone(), nil
}

// Variables returns copies of all variables in file order.
func (d *Dictionary) Variables() []Variable {
	out := make([]Variable, len(d.vars))
	for i, v := range d.vars {
		out[i] = *v.clone()
	}

	return out
}

// Info returns the file-level properties.
func (d *Dictionary) Info() FileInfo {
	info := d.info
	info.Attributes = maps.Clone(d.info.Attributes)

	return info
}

// MRSets returns the multiple-response sets in registration order.
func (d *Dictionary) MRSets() []MRSet {
	out := make([]MRSet, len(d.mrsets))
	for i, s := range d.mrsets {
		s.Variables = slices.Clone(s.Variables)
		out[i] = s
	}

	return out
}

// VarSets returns the variable sets.
func (d *Dictionary) VarSets() []VarSet {
	out := make([]VarSet, len(d.varSets))
	for i, s := range d.varSets {
		out[i] = VarSet{Name: s.Name, Variables: slices.Clone(s.Variables)}
	}

	return out
}

// SetVarLabel sets the label of a variable.
func (d *Dictionary) SetVarLabel(name, label string) error {
	v, err := d.mutableVar(name)
	if err != nil {
		return err
	}

	if len(label) > format.MaxVarLabel {
		return fmt.Errorf("%w: label of %s has %d bytes, limit %d",
			errs.ErrLabelTooLong, v.Name, len(label), format.MaxVarLabel)
	}
	v.Label = label

	return nil
}

// SetValueLabels replaces the value labels of a variable.
//
// Numeric keys given for a string variable are converted to their text
// form, and string keys given for a numeric variable must parse as
// numbers. String keys are stored as they read back from a value of the
// variable width in the dictionary Text; two keys stored alike fail with
// errs.ErrValueConversion.
func (d *Dictionary) SetValueLabels(name string, labels Labels) error {
	v, err := d.mutableVar(name)
	if err != nil {
		return err
	}

	normalized, err := d.normalizeLabels(v, labels)
	if err != nil {
		return err
	}
	v.ValueLabels = normalized

	return nil
}

func (d *Dictionary) normalizeLabels(v *Variable, labels Labels) (Labels, error) {
	check := func(key, label string) error {
		if len(label) > format.MaxValueLabel {
			return fmt.Errorf("%w: value label %q of %s has %d bytes, limit %d",
				errs.ErrLabelTooLong, key, v.Name, len(label), format.MaxValueLabel)
		}

		return nil
	}

	if v.IsString() {
		given := labels.asStrings()
		out := make(map[string]string, len(given))
		from := make(map[string]string, len(given))
		for _, key := range slices.Sorted(maps.Keys(given)) {
			label := given[key]
			if err := check(key, label); err != nil {
				return Labels{}, err
			}

			stored, err := d.text.Clip(key, v.Width)
			if err != nil {
				return Labels{}, fmt.Errorf("%w: value label key %q of %s: %w", errs.ErrValueConversion, key, v.Name, err)
			}

			if prev, dup := from[stored]; dup {
				return Labels{}, fmt.Errorf("%w: value label keys %q and %q of %s are both stored as %q",
					errs.ErrValueConversion, prev, key, v.Name, stored)
			}
			from[stored] = key
			out[stored] = label
		}

		return StringLabels(out), nil
	}

	out := make(map[float64]string, labels.Len())
	for key, label := range labels.Numeric {
		if err := check(formatNumber(key), label); err != nil {
			return Labels{}, err
		}
		out[key] = label
	}

	for key, label := range labels.String {
		f, err := strconv.ParseFloat(strings.TrimSpace(key), 64)
		if err != nil {
			return Labels{}, fmt.Errorf("%w: value label key %q for numeric variable %s",
				errs.ErrValueConversion, key, v.Name)
		}

		if err := check(key, label); err != nil {
			return Labels{}, err
		}
		out[f] = label
	}

	return NumericLabels(out), nil
}

// SetMissingValues replaces the user-missing definition of a variable.
func (d *Dictionary) SetMissingValues(name string, m MissingValues) error {
	v, err := d.mutableVar(name)
	if err != nil {
		return err
	}

	if err := d.validateMissing(v, m); err != nil {
		return err
	}
	v.Missing = m.clone()

	return nil
}

func (d *Dictionary) validateMissing(v *Variable, m MissingValues) error {
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", errs.ErrInvalidMissingSpec, v.Name, fmt.Sprintf(format, args...))
	}

	if v.IsString() {
		if len(m.Numbers) > 0 {
			return invalid("numeric codes for a string variable")
		}

		if m.Range != nil {
			return invalid("ranges are not allowed for string variables")
		}

		if len(m.Strings) > 3 {
			return invalid("%d discrete values, at most 3 allowed", len(m.Strings))
		}

		for _, s := range m.Strings {
			n, err := d.text.EncodedLen(s)
			if err != nil {
				return invalid("code %q: %v", s, err)
			}

			if n > v.Width {
				return invalid("code %q is wider than %d bytes", s, v.Width)
			}
		}

		return nil
	}

	if len(m.Strings) > 0 {
		return invalid("string codes for a numeric variable")
	}

	for _, f := range m.Numbers {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return invalid("code %v is not a finite number", f)
		}
	}

	if m.Range == nil {
		if len(m.Numbers) > 3 {
			return invalid("%d discrete values, at most 3 allowed", len(m.Numbers))
		}

		return nil
	}

	if len(m.Numbers) > 1 {
		return invalid("a range allows one discrete value, got %d", len(m.Numbers))
	}

	if math.IsNaN(m.Range.Low) || math.IsNaN(m.Range.High) || m.Range.Low > m.Range.High {
		return invalid("range %v..%v is empty", m.Range.Low, m.Range.High)
	}

	return nil
}

// SetFormat sets the print and write formats of a variable.
func (d *Dictionary) SetFormat(name string, print, write format.Spec) error {
	v, err := d.mutableVar(name)
	if err != nil {
		return err
	}

	if err := checkFormat(v, print); err != nil {
		return err
	}

	if err := checkFormat(v, write); err != nil {
		return err
	}
	v.PrintFormat, v.WriteFormat = print, write

	return nil
}

// SetMeasureLevel sets the measurement level of a variable. String
// variables cannot be scale.
func (d *Dictionary) SetMeasureLevel(name string, level format.MeasureLevel) error {
	v, err := d.mutableVar(name)
	if err != nil {
		return err
	}

	if !level.Valid() || (v.IsString() && level == format.MeasureScale) {
		return fmt.Errorf("%w: measurement level %s for %s", errs.ErrUnsupportedFormat, level, v.Name)
	}
	v.Measure = level

	return nil
}

// SetAlignment sets the display alignment of a variable.
func (d *Dictionary) SetAlignment(name string, align format.Alignment) error {
	v, err := d.mutableVar(name)
	if err != nil {
		return err
	}

	if !align.Valid() {
		return fmt.Errorf("%w: alignment %d for %s", errs.ErrUnsupportedFormat, align, v.Name)
	}
	v.Alignment = align

	return nil
}

// SetColumnWidth sets the display column width of a variable.
func (d *Dictionary) SetColumnWidth(name string, width int) error {
	v, err := d.mutableVar(name)
	if err != nil {
		return err
	}

	if width < 0 {
		return fmt.Errorf("%w: column width %d for %s", errs.ErrUnsupportedFormat, width, v.Name)
	}
	v.ColumnWidth = width

	return nil
}

// SetRole sets the modelling role of a variable.
func (d *Dictionary) SetRole(name string, role format.Role) error {
	v, err := d.mutableVar(name)
	if err != nil {
		return err
	}

	if !role.Valid() {
		return fmt.Errorf("%w: role %d for %s", errs.ErrUnsupportedFormat, role, v.Name)
	}
	v.Role = role

	return nil
}

// SetVarAttributes replaces the custom attributes of a variable.
func (d *Dictionary) SetVarAttributes(name string, attrs map[string]string) error {
	v, err := d.mutableVar(name)
	if err != nil {
		return err
	}

	if err := validateAttributes(attrs); err != nil {
		return fmt.Errorf("%s: %w", v.Name, err)
	}
	v.Attributes = maps.Clone(attrs)

	return nil
}

func validateAttributes(attrs map[string]string) error {
	for name := range attrs {
		base, _, _ := strings.Cut(name, "[")
		if err := ValidateName(base); err != nil {
			return fmt.Errorf("attribute: %w", err)
		}
	}

	return nil
}

// SetFileAttributes replaces the custom file attributes.
func (d *Dictionary) SetFileAttributes(attrs map[string]string) error {
	if err := d.mutable(); err != nil {
		return err
	}

	if err := validateAttributes(attrs); err != nil {
		return err
	}
	d.info.Attributes = maps.Clone(attrs)

	return nil
}

// SetCaseWeight names the numeric case-weight variable. An empty name
// clears it.
func (d *Dictionary) SetCaseWeight(name string) error {
	if err := d.mutable(); err != nil {
		return err
	}

	if name == "" {
		d.info.CaseWeight = ""
		return nil
	}

	v, err := d.lookup(name)
	if err != nil {
		return err
	}

	if v.IsString() {
		return fmt.Errorf("%w: case weight %s is not numeric", errs.ErrUnsupportedFormat, v.Name)
	}
	d.info.CaseWeight = v.Name

	return nil
}

// SetCompression sets the compression switch of the file.
func (d *Dictionary) SetCompression(c format.Compression) error {
	if err := d.mutable(); err != nil {
		return err
	}

	if !c.Valid() {
		return fmt.Errorf("%w: compression switch %d", errs.ErrUnsupportedFormat, c)
	}
	d.info.Compression = c

	return nil
}

// RegisterMultRespSet adds a multiple-response set.
//
// A missing '$' prefix is added and an empty label defaults to the set
// name. Members must exist and share one type. Dichotomy sets need a
// counted value; over numeric members it must be a number and is stored
// as an integer.
func (d *Dictionary) RegisterMultRespSet(set MRSet) error {
	if err := d.mutable(); err != nil {
		return err
	}

	set.Name = normalizeSetName(set.Name)
	invalid := func(format string, args ...any) error {
		return fmt.Errorf("%w: %s: %s", errs.ErrInvalidMRSet, set.Name, fmt.Sprintf(format, args...))
	}

	if err := ValidateName(set.Name); err != nil {
		return invalid("%v", err)
	}

	if _, exists := d.mrNames.Lookup(set.Name); exists {
		return invalid("duplicate set name")
	}

	if set.Label == "" {
		set.Label = set.Name[1:]
	}

	if len(set.Variables) == 0 {
		return invalid("no member variables")
	}

	members := make([]string, len(set.Variables))
	var first *Variable
	for i, name := range set.Variables {
		v, err := d.lookup(name)
		if err != nil {
			return fmt.Errorf("multiple-response set %s: %w", set.Name, err)
		}

		if first == nil {
			first = v
		} else if v.IsString() != first.IsString() {
			return invalid("members %s and %s have different types", first.Name, v.Name)
		}
		members[i] = v.Name
	}
	set.Variables = members

	switch set.Type {
	case MRCategory:
		set.CountedValue = ""
	case MRDichotomy:
		if set.CountedValue == "" {
			return invalid("dichotomy set has no counted value")
		}

		if !first.IsString() {
			f, err := strconv.ParseFloat(strings.TrimSpace(set.CountedValue), 64)
			if err != nil {
				return invalid("counted value %q is not a number", set.CountedValue)
			}
			set.CountedValue = strconv.FormatInt(int64(f), 10)
		}
	default:
		return invalid("type %q must be C or D", set.Type)
	}

	d.mrNames.Track(set.Name)
	d.mrsets = append(d.mrsets, set)

	return nil
}

// SetVariableSets replaces the variable sets. Every member must exist.
func (d *Dictionary) SetVariableSets(sets []VarSet) error {
	if err := d.mutable(); err != nil {
		return err
	}

	out := make([]VarSet, 0, len(sets))
	for _, s := range sets {
		name := strings.TrimSpace(s.Name)
		if name == "" {
			return fmt.Errorf("%w: variable set without a name", errs.ErrInvalidName)
		}

		members := make([]string, len(s.Variables))
		for i, member := range s.Variables {
			v, err := d.lookup(member)
			if err != nil {
				return fmt.Errorf("variable set %s: %w", name, err)
			}
			members[i] = v.Name
		}
		out = append(out, VarSet{Name: name, Variables: members})
	}
	d.varSets = out

	return nil
}
