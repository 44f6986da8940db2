package dictionary

import (
	"fmt"
	"maps"
	"slices"

	"github.com/goccy/go-json"

	"github.com/arloliu/savio/format"
	"github.com/arloliu/savio/schema"
)

// Metadata is the exchange form of a dictionary handed to and returned
// from callers. Per-variable maps are keyed by variable name.
//
// On write every field is optional. VarNames, Encoding, Compression and
// CaseCount are informational and ignored. A positive VarTypes entry
// declares a string variable of at least that width. VarFormatsTuple is
// consulted only for variables missing from VarFormats.
type Metadata struct {
	VarNames         []string                       `json:"var_names"`
	VarTypes         map[string]int                 `json:"var_types,omitempty"`
	VarFormats       map[string]string              `json:"var_formats,omitempty"`
	VarFormatsTuple  map[string][3]int              `json:"var_formats_tuple,omitempty"`
	VarLabels        map[string]string              `json:"var_labels,omitempty"`
	VarValueLabels   map[string]Labels              `json:"var_value_labels,omitempty"`
	VarMissingValues map[string]MissingValues       `json:"var_missing_values,omitempty"`
	VarMeasureLevels map[string]format.MeasureLevel `json:"var_measure_levels,omitempty"`
	VarAlignments    map[string]format.Alignment    `json:"var_alignments,omitempty"`
	VarColumnWidths  map[string]int                 `json:"var_column_widths,omitempty"`
	VarRoles         map[string]format.Role         `json:"var_roles,omitempty"`
	VarAttributes    map[string]map[string]string   `json:"var_attributes,omitempty"`
	VarSets          map[string][]string            `json:"var_sets,omitempty"`
	MRSets           map[string]MRSet               `json:"mrsets,omitempty"`
	FileAttributes   map[string]string              `json:"file_attributes,omitempty"`
	CaseWeightVar    string                         `json:"case_weight_var,omitempty"`
	Encoding         string                         `json:"encoding,omitempty"`
	Compression      format.Compression             `json:"compression"`
	CaseCount        int64                          `json:"case_count"`
}

// MarshalJSON encodes m with its documented keys.
func (m *Metadata) MarshalJSON() ([]byte, error) {
	type plain Metadata
	return json.Marshal((*plain)(m))
}

// UnmarshalJSON decodes the form written by MarshalJSON. Value label keys
// are strings except for variables VarTypes declares numeric.
func (m *Metadata) UnmarshalJSON(b []byte) error {
	type plain Metadata
	if err := json.Unmarshal(b, (*plain)(m)); err != nil {
		return fmt.Errorf("metadata: %w", err)
	}

	for name, set := range m.MRSets {
		set.Name = normalizeSetName(name)
		m.MRSets[name] = set
	}

	for name, labels := range m.VarValueLabels {
		if width, ok := m.VarTypes[name]; ok && width == 0 {
			m.VarValueLabels[name] = labels.asNumeric()
		}
	}

	return nil
}

// ParseMetadata decodes JSON metadata.
func ParseMetadata(b []byte) (*Metadata, error) {
	var md Metadata
	if err := json.Unmarshal(b, &md); err != nil {
		return nil, err
	}

	return &md, nil
}

// Metadata exports the dictionary in exchange form.
func (d *Dictionary) Metadata() *Metadata {
	md := &Metadata{
		VarNames:         d.Names(),
		VarTypes:         make(map[string]int, len(d.vars)),
		VarFormats:       make(map[string]string, len(d.vars)),
		VarFormatsTuple:  make(map[string][3]int, len(d.vars)),
		VarLabels:        make(map[string]string),
		VarValueLabels:   make(map[string]Labels),
		VarMissingValues: make(map[string]MissingValues),
		VarMeasureLevels: make(map[string]format.MeasureLevel, len(d.vars)),
		VarAlignments:    make(map[string]format.Alignment, len(d.vars)),
		VarColumnWidths:  make(map[string]int, len(d.vars)),
		VarRoles:         make(map[string]format.Role, len(d.vars)),
		VarAttributes:    make(map[string]map[string]string),
		VarSets:          make(map[string][]string, len(d.varSets)),
		MRSets:           make(map[string]MRSet, len(d.mrsets)),
		FileAttributes:   maps.Clone(d.info.Attributes),
		CaseWeightVar:    d.info.CaseWeight,
		Encoding:         d.info.Encoding,
		Compression:      d.info.Compression,
		CaseCount:        d.info.CaseCount,
	}

	for _, v := range d.vars {
		md.VarTypes[v.Name] = v.Width
		md.VarFormats[v.Name] = v.PrintFormat.String()
		md.VarFormatsTuple[v.Name] = v.PrintFormat.Tuple()
		md.VarMeasureLevels[v.Name] = v.Measure
		md.VarAlignments[v.Name] = v.Alignment
		md.VarColumnWidths[v.Name] = v.ColumnWidth
		md.VarRoles[v.Name] = v.Role

		if v.Label != "" {
			md.VarLabels[v.Name] = v.Label
		}

		if v.ValueLabels.Len() > 0 {
			md.VarValueLabels[v.Name] = v.ValueLabels.clone()
		}

		if !v.Missing.IsEmpty() {
			md.VarMissingValues[v.Name] = v.Missing.clone()
		}

		if len(v.Attributes) > 0 {
			md.VarAttributes[v.Name] = maps.Clone(v.Attributes)
		}
	}

	for _, s := range d.mrsets {
		s.Variables = slices.Clone(s.Variables)
		md.MRSets[s.Name] = s
	}

	for _, s := range d.varSets {
		md.VarSets[s.Name] = slices.Clone(s.Variables)
	}

	return md
}

// Subset returns a copy of m restricted to the variables in names, in
// the order given. Multiple-response sets keep only selected members
// and are dropped when none remain. Variable sets are trimmed the same
// way.
func (m *Metadata) Subset(names []string) *Metadata {
	keep := make(map[string]struct{}, len(names))
	for _, n := range names {
		keep[n] = struct{}{}
	}

	out := &Metadata{
		VarNames:         slices.Clone(names),
		VarTypes:         filterKeys(m.VarTypes, keep),
		VarFormats:       filterKeys(m.VarFormats, keep),
		VarFormatsTuple:  filterKeys(m.VarFormatsTuple, keep),
		VarLabels:        filterKeys(m.VarLabels, keep),
		VarValueLabels:   filterKeys(m.VarValueLabels, keep),
		VarMissingValues: filterKeys(m.VarMissingValues, keep),
		VarMeasureLevels: filterKeys(m.VarMeasureLevels, keep),
		VarAlignments:    filterKeys(m.VarAlignments, keep),
		VarColumnWidths:  filterKeys(m.VarColumnWidths, keep),
		VarRoles:         filterKeys(m.VarRoles, keep),
		VarAttributes:    filterKeys(m.VarAttributes, keep),
		FileAttributes:   maps.Clone(m.FileAttributes),
		CaseWeightVar:    m.CaseWeightVar,
		Encoding:         m.Encoding,
		Compression:      m.Compression,
		CaseCount:        m.CaseCount,
	}

	if _, ok := keep[m.CaseWeightVar]; !ok {
		out.CaseWeightVar = ""
	}

	trim := func(vars []string) []string {
		var kept []string
		for _, v := range vars {
			if _, ok := keep[v]; ok {
				kept = append(kept, v)
			}
		}

		return kept
	}

	if m.MRSets != nil {
		out.MRSets = make(map[string]MRSet, len(m.MRSets))
		for name, s := range m.MRSets {
			if s.Variables = trim(s.Variables); len(s.Variables) > 0 {
				out.MRSets[name] = s
			}
		}
	}

	if m.VarSets != nil {
		out.VarSets = make(map[string][]string, len(m.VarSets))
		for name, vars := range m.VarSets {
			if kept := trim(vars); len(kept) > 0 {
				out.VarSets[name] = kept
			}
		}
	}

	return out
}

func filterKeys[V any](m map[string]V, keep map[string]struct{}) map[string]V {
	if m == nil {
		return nil
	}

	out := make(map[string]V, len(keep))
	for k, v := range m {
		if _, ok := keep[k]; ok {
			out[k] = v
		}
	}

	return out
}

// formatFor returns the requested format of a variable, preferring the
// string form over the tuple form.
func (m *Metadata) formatFor(name string) (*format.Spec, error) {
	if m == nil {
		return nil, nil
	}

	if s, ok := m.VarFormats[name]; ok {
		spec, err := schema.ParseFormat(s)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}

		return &spec, nil
	}

	if t, ok := m.VarFormatsTuple[name]; ok {
		spec := format.SpecFromTuple(t)
		return &spec, nil
	}

	return nil, nil
}
