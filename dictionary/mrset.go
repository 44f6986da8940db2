package dictionary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/savio/errs"
)

// MRSetType is the kind of a multiple-response set.
type MRSetType string

const (
	// MRCategory sets count the distinct values of their members.
	MRCategory MRSetType = "C"
	// MRDichotomy sets count members equal to a counted value.
	MRDichotomy MRSetType = "D"
)

// MRSet is a multiple-response set: several variables holding the
// answers to one multi-answer question.
type MRSet struct {
	// Name always starts with '$'.
	Name  string    `json:"-"`
	Label string    `json:"label"`
	Type  MRSetType `json:"type"`
	// CountedValue is set for dichotomy sets only.
	CountedValue string   `json:"counted_value,omitempty"`
	Variables    []string `json:"variable_list"`
}

// VarSet is a named group of variables.
type VarSet struct {
	Name      string
	Variables []string
}

// normalizeSetName prefixes name with '$' when missing.
func normalizeSetName(name string) string {
	if strings.HasPrefix(name, "$") {
		return name
	}

	return "$" + name
}

// FormatMRSets renders sets in the engine text form, one per line:
//
//	$name=C <labelLen> <label> <vars...>
//	$name=D<valueLen> <value> <labelLen> <label> <vars...>
//
// Lengths count bytes.
func FormatMRSets(sets []MRSet) string {
	lines := make([]string, 0, len(sets))
	for _, s := range sets {
		var b strings.Builder
		b.WriteString(normalizeSetName(s.Name))
		b.WriteByte('=')
		b.WriteString(string(s.Type))

		if s.Type == MRDichotomy {
			b.WriteString(strconv.Itoa(len(s.CountedValue)))
			b.WriteByte(' ')
			b.WriteString(s.CountedValue)
		}

		b.WriteByte(' ')
		b.WriteString(strconv.Itoa(len(s.Label)))
		b.WriteByte(' ')
		b.WriteString(s.Label)
		b.WriteByte(' ')
		b.WriteString(strings.Join(s.Variables, " "))
		lines = append(lines, b.String())
	}

	return strings.Join(lines, "\n")
}

// ParseMRSets parses the engine text form produced by FormatMRSets.
func ParseMRSets(text string) ([]MRSet, error) {
	var sets []MRSet
	for line := range strings.SplitSeq(strings.TrimSpace(text), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		set, err := parseMRSet(line)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}

	return sets, nil
}

func parseMRSet(line string) (MRSet, error) {
	name, rest, ok := strings.Cut(line, "=")
	if !ok || name == "" || rest == "" {
		return MRSet{}, fmt.Errorf("%w: malformed definition %q", errs.ErrInvalidMRSet, line)
	}

	set := MRSet{Name: normalizeSetName(strings.TrimSpace(name))}
	p := &fieldParser{s: rest}

	switch MRSetType(strings.ToUpper(rest[:1])) {
	case MRCategory:
		set.Type = MRCategory
		p.pos = 1
		p.skipSpace()
	case MRDichotomy:
		set.Type = MRDichotomy
		p.pos = 1
		n, err := p.length()
		if err != nil {
			return MRSet{}, fmt.Errorf("%w: %s counted value: %w", errs.ErrInvalidMRSet, set.Name, err)
		}
		if set.CountedValue, err = p.take(n); err != nil {
			return MRSet{}, fmt.Errorf("%w: %s counted value: %w", errs.ErrInvalidMRSet, set.Name, err)
		}
		p.skipSpace()
	default:
		return MRSet{}, fmt.Errorf("%w: %s has unknown type %q", errs.ErrInvalidMRSet, set.Name, rest[:1])
	}

	n, err := p.length()
	if err != nil {
		return MRSet{}, fmt.Errorf("%w: %s label: %w", errs.ErrInvalidMRSet, set.Name, err)
	}
	if set.Label, err = p.take(n); err != nil {
		return MRSet{}, fmt.Errorf("%w: %s label: %w", errs.ErrInvalidMRSet, set.Name, err)
	}

	set.Variables = strings.Fields(p.s[p.pos:])

	return set, nil
}

// fieldParser reads length-prefixed fields from a set definition.
type fieldParser struct {
	s   string
	pos int
}

func (p *fieldParser) skipSpace() {
	for p.pos < len(p.s) && p.s[p.pos] == ' ' {
		p.pos++
	}
}

// length reads a decimal length terminated by a single space.
func (p *fieldParser) length() (int, error) {
	start := p.pos
	for p.pos < len(p.s) && p.s[p.pos] >= '0' && p.s[p.pos] <= '9' {
		p.pos++
	}

	n, err := strconv.Atoi(p.s[start:p.pos])
	if err != nil {
		return 0, fmt.Errorf("invalid length at offset %d", start)
	}

	if p.pos < len(p.s) && p.s[p.pos] == ' ' {
		p.pos++
	}

	return n, nil
}

// take reads n bytes.
func (p *fieldParser) take(n int) (string, error) {
	if p.pos+n > len(p.s) {
		return "", fmt.Errorf("length %d exceeds definition", n)
	}

	out := p.s[p.pos : p.pos+n]
	p.pos += n

	return out, nil
}

// FormatVarSets renders variable sets one per line as "name= v1 v2".
// A '=' in a set name truncates the name.
func FormatVarSets(sets []VarSet) string {
	lines := make([]string, 0, len(sets))
	for _, s := range sets {
		name, _, _ := strings.Cut(s.Name, "=")
		lines = append(lines, name+"= "+strings.Join(s.Variables, " "))
	}

	return strings.Join(lines, "\n")
}

// ParseVarSets parses the form produced by FormatVarSets. Lines without
// '=' are skipped.
func ParseVarSets(text string) []VarSet {
	var sets []VarSet
	for line := range strings.SplitSeq(strings.TrimSpace(text), "\n") {
		name, vars, ok := strings.Cut(strings.TrimRight(line, "\r"), "=")
		if !ok {
			continue
		}
		sets = append(sets, VarSet{Name: strings.TrimSpace(name), Variables: strings.Fields(vars)})
	}

	return sets
}
