// Package record converts between case records, the fixed-size byte
// rows moved by a codec engine, and table rows.
package record

import (
	"fmt"

	"github.com/arloliu/savio/dictionary"
	"github.com/arloliu/savio/errs"
	"github.com/arloliu/savio/schema"
)

// Field locates one variable inside a case record.
type Field struct {
	Name string
	// Index is the position of the variable in the file.
	Index int
	// Offset is the byte offset of the value in the record.
	Offset int
	// Width is 0 for numerics and the string width otherwise.
	Width     int
	ByteWidth int
	Kind      schema.Kind
	Missing   dictionary.MissingValues
}

// IsString reports whether f holds a string.
func (f Field) IsString() bool {
	return f.Width > 0
}

// Layout is the record layout of a file and the subset of its variables
// selected for reading.
type Layout struct {
	fields   []Field
	selected []int
	byName   map[string]int
	caseSize int
}

// NewLayout computes field offsets from vars in file order. selected
// names the variables to decode, in output order; nil selects all.
// Unknown names fail with errs.ErrUnknownVariable.
func NewLayout(vars []dictionary.Variable, selected []string) (*Layout, error) {
	l := &Layout{
		fields: make([]Field, len(vars)),
		byName: make(map[string]int, len(vars)),
	}

	for i, v := range vars {
		l.fields[i] = Field{
			Name:      v.Name,
			Index:     i,
			Offset:    l.caseSize,
			Width:     v.Width,
			ByteWidth: v.ByteWidth(),
			Kind:      v.Kind(),
			Missing:   v.Missing,
		}
		l.byName[v.Name] = i
		l.caseSize += v.ByteWidth()
	}

	if selected == nil {
		l.selected = make([]int, len(vars))
		for i := range vars {
			l.selected[i] = i
		}

		return l, nil
	}

	l.selected = make([]int, 0, len(selected))
	for _, name := range selected {
		i, ok := l.byName[name]
		if !ok {
			return nil, fmt.Errorf("%w: %s", errs.ErrUnknownVariable, name)
		}
		l.selected = append(l.selected, i)
	}

	return l, nil
}

// CaseSize returns the record size in bytes.
func (l *Layout) CaseSize() int {
	return l.caseSize
}

// Fields returns all fields in file order.
func (l *Layout) Fields() []Field {
	return l.fields
}

// Selected returns the selected fields in output order.
func (l *Layout) Selected() []Field {
	out := make([]Field, len(l.selected))
	for i, idx := range l.selected {
		out[i] = l.fields[idx]
	}

	return out
}

// Field returns the field of the variable name.
func (l *Layout) Field(name string) (Field, bool) {
	i, ok := l.byName[name]
	if !ok {
		return Field{}, false
	}

	return l.fields[i], true
}
