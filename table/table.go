package table

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"
)

var (
	ErrColumnNotFound = errors.New("column not found")
	ErrShapeMismatch  = errors.New("table shape mismatch")
	ErrKindMismatch   = errors.New("value kind does not match column")
)

// Column is a named, typed sequence of cells.
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// NewColumn creates an empty column with room for capacity cells.
func NewColumn(name string, kind Kind, capacity int) *Column {
	return &Column{Name: name, Kind: kind, Values: make([]Value, 0, capacity)}
}

// FloatColumn builds a float column. NaN entries are null.
func FloatColumn(name string, values ...float64) *Column {
	col := NewColumn(name, KindFloat, len(values))
	for _, v := range values {
		if math.IsNaN(v) {
			col.Values = append(col.Values, Null(KindFloat))
			continue
		}
		col.Values = append(col.Values, Float(v))
	}

	return col
}

// StringColumn builds a string column.
func StringColumn(name string, values ...string) *Column {
	col := NewColumn(name, KindString, len(values))
	for _, v := range values {
		col.Values = append(col.Values, Str(v))
	}

	return col
}

// DateColumn builds a date column. Zero times are null.
func DateColumn(name string, values ...time.Time) *Column {
	col := NewColumn(name, KindDate, len(values))
	for _, v := range values {
		if v.IsZero() {
			col.Values = append(col.Values, Null(KindDate))
			continue
		}
		col.Values = append(col.Values, Date(v))
	}

	return col
}

// DateTimeColumn builds a datetime column. Zero times are null.
func DateTimeColumn(name string, values ...time.Time) *Column {
	col := NewColumn(name, KindDateTime, len(values))
	for _, v := range values {
		if v.IsZero() {
			col.Values = append(col.Values, Null(KindDateTime))
			continue
		}
		col.Values = append(col.Values, DateTime(v))
	}

	return col
}

// DurationColumn builds a duration column.
func DurationColumn(name string, values ...time.Duration) *Column {
	col := NewColumn(name, KindDuration, len(values))
	for _, v := range values {
		col.Values = append(col.Values, Duration(v))
	}

	return col
}

// Len returns the number of cells.
func (c *Column) Len() int {
	return len(c.Values)
}

// Append adds v, which must be of the column's kind.
func (c *Column) Append(v Value) error {
	if v.Kind != c.Kind {
		return fmt.Errorf("%w: %s value in %s column %q", ErrKindMismatch, v.Kind, c.Kind, c.Name)
	}
	c.Values = append(c.Values, v)

	return nil
}

// Equal reports whether c and o have the same name, kind and cells.
func (c *Column) Equal(o *Column) bool {
	if c.Name != o.Name || c.Kind != o.Kind || len(c.Values) != len(o.Values) {
		return false
	}

	for i := range c.Values {
		if !c.Values[i].Equal(o.Values[i]) {
			return false
		}
	}

	return true
}

// Table is an ordered set of equal-length columns.
//
// RowOffset is the row number of the first row within its source, which
// is non-zero for chunks and offset reads.
type Table struct {
	Columns   []*Column
	RowOffset int
}

// New creates a table from columns, which must all have the same length.
func New(columns ...*Column) (*Table, error) {
	t := &Table{Columns: columns}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	return t, nil
}

// Empty creates a table with empty columns shaped like t.
func (t *Table) Empty() *Table {
	out := &Table{RowOffset: t.RowOffset, Columns: make([]*Column, len(t.Columns))}
	for i, c := range t.Columns {
		out.Columns[i] = NewColumn(c.Name, c.Kind, 0)
	}

	return out
}

// Validate checks that columns have equal lengths and unique names.
func (t *Table) Validate() error {
	seen := make(map[string]struct{}, len(t.Columns))
	for _, c := range t.Columns {
		if c.Len() != t.Columns[0].Len() {
			return fmt.Errorf("%w: column %q has %d rows, expected %d", ErrShapeMismatch, c.Name, c.Len(), t.Columns[0].Len())
		}
		if _, dup := seen[c.Name]; dup {
			return fmt.Errorf("%w: duplicate column %q", ErrShapeMismatch, c.Name)
		}
		seen[c.Name] = struct{}{}
	}

	return nil
}

// NumRows returns the number of rows.
func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}

	return t.Columns[0].Len()
}

// NumCols returns the number of columns.
func (t *Table) NumCols() int {
	return len(t.Columns)
}

// Names returns the column names in order.
func (t *Table) Names() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}

	return names
}

// Column looks a column up by exact name.
func (t *Table) Column(name string) (*Column, bool) {
	idx := t.ColumnIndex(name)
	if idx < 0 {
		return nil, false
	}

	return t.Columns[idx], true
}

// ColumnIndex returns the position of the named column, or -1.
func (t *Table) ColumnIndex(name string) int {
	return slices.IndexFunc(t.Columns, func(c *Column) bool { return c.Name == name })
}

// Row returns the cells of row i in column order.
func (t *Table) Row(i int) []Value {
	row := make([]Value, len(t.Columns))
	for j, c := range t.Columns {
		row[j] = c.Values[i]
	}

	return row
}

// AppendRow appends one cell per column.
func (t *Table) AppendRow(row []Value) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("%w: row has %d cells, table has %d columns", ErrShapeMismatch, len(row), len(t.Columns))
	}

	for j, c := range t.Columns {
		if err := c.Append(row[j]); err != nil {
			return err
		}
	}

	return nil
}

// Select returns a table with the named columns in the given order.
// Columns are shared with t, not copied.
func (t *Table) Select(names ...string) (*Table, error) {
	out := &Table{RowOffset: t.RowOffset, Columns: make([]*Column, 0, len(names))}
	for _, name := range names {
		c, ok := t.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
		}
		out.Columns = append(out.Columns, c)
	}

	return out, nil
}

// Slice returns rows [start, end) as a new table sharing cell storage.
func (t *Table) Slice(start, end int) *Table {
	start = min(max(start, 0), t.NumRows())
	end = min(max(end, start), t.NumRows())

	out := &Table{RowOffset: t.RowOffset + start, Columns: make([]*Column, len(t.Columns))}
	for i, c := range t.Columns {
		out.Columns[i] = &Column{Name: c.Name, Kind: c.Kind, Values: c.Values[start:end]}
	}

	return out
}

// Concat stacks tables with identical column names and kinds. The result
// takes its RowOffset from the first table.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return &Table{}, nil
	}

	first := tables[0]
	out := first.Empty()
	for _, t := range tables {
		if len(t.Columns) != len(first.Columns) {
			return nil, fmt.Errorf("%w: %d columns, expected %d", ErrShapeMismatch, len(t.Columns), len(first.Columns))
		}

		for i, c := range t.Columns {
			dst := out.Columns[i]
			if c.Name != dst.Name || c.Kind != dst.Kind {
				return nil, fmt.Errorf("%w: column %d is %s %q, expected %s %q", ErrShapeMismatch, i, c.Kind, c.Name, dst.Kind, dst.Name)
			}
			dst.Values = append(dst.Values, c.Values...)
		}
	}

	return out, nil
}

// Equal reports whether t and o hold the same columns and cells.
// RowOffset is not compared.
func (t *Table) Equal(o *Table) bool {
	if len(t.Columns) != len(o.Columns) {
		return false
	}

	for i := range t.Columns {
		if !t.Columns[i].Equal(o.Columns[i]) {
			return false
		}
	}

	return true
}

func (t *Table) String() string {
	var sb strings.Builder
	sb.WriteString(strings.Join(t.Names(), "\t"))
	for i := range t.NumRows() {
		sb.WriteByte('\n')
		for j, v := range t.Row(i) {
			if j > 0 {
				sb.WriteByte('\t')
			}
			sb.WriteString(v.String())
		}
	}

	return sb.String()
}
