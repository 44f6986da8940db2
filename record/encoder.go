package record

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/arloliu/savio/endian"
	"github.com/arloliu/savio/errs"
	"github.com/arloliu/savio/internal/pool"
	"github.com/arloliu/savio/schema"
	"github.com/arloliu/savio/table"
)

var errNotNumeric = errors.New("not a number")

// Encoder turns table rows into case records. Columns are matched to
// variables by name, so a table may list them in any order; variables
// without a column are written as missing.
//
// An Encoder reuses one pooled buffer and is not safe for concurrent use.
type Encoder struct {
	fields  []Field
	columns []int // column index per field, -1 when absent
	order   endian.EndianEngine
	text    *Text
	sysmis  float64
	buf     *pool.ByteBuffer
	size    int
}

// NewEncoder creates an encoder over every field of layout.
func NewEncoder(layout *Layout, order endian.EndianEngine, text *Text, sysmis float64) *Encoder {
	e := &Encoder{
		fields: layout.Fields(),
		order:  order,
		text:   text,
		sysmis: sysmis,
		buf:    pool.GetCaseBuffer(),
		size:   layout.CaseSize(),
	}
	e.columns = make([]int, len(e.fields))

	return e
}

// Bind maps the table column names to file variables. Every column must
// name a variable.
func (e *Encoder) Bind(names []string) error {
	for i := range e.columns {
		e.columns[i] = -1
	}

	byName := make(map[string]int, len(e.fields))
	for i, f := range e.fields {
		byName[f.Name] = i
	}

	for col, name := range names {
		i, ok := byName[name]
		if !ok {
			return fmt.Errorf("%w: column %s is not a variable of the file", errs.ErrUnknownVariable, name)
		}
		e.columns[i] = col
	}

	return nil
}

// Encode encodes a row of a table bound with Bind. rowIndex is reported
// in conversion errors. The returned slice is valid until the next call.
func (e *Encoder) Encode(row []table.Value, rowIndex int) ([]byte, error) {
	buf := e.buf.Resize(e.size)

	for i, f := range e.fields {
		v := table.Value{Null: true}
		if col := e.columns[i]; col >= 0 {
			v = row[col]
		}

		out := buf[f.Offset : f.Offset+f.ByteWidth]
		var err error
		if f.IsString() {
			err = e.encodeString(f, v, out)
		} else {
			err = e.encodeNumber(v, out)
		}

		if err != nil {
			return nil, &errs.ValueConversionError{Row: rowIndex, Column: f.Name, Value: v.Any(), Err: err}
		}
	}

	return buf, nil
}

func (e *Encoder) encodeNumber(v table.Value, out []byte) error {
	num, err := e.number(v)
	if err != nil {
		return err
	}
	e.order.PutFloat64(out, num)

	return nil
}

func (e *Encoder) number(v table.Value) (float64, error) {
	if v.IsNull() {
		return e.sysmis, nil
	}

	switch v.Kind {
	case table.KindFloat:
		return v.Num, nil
	case table.KindDate, table.KindDateTime:
		if v.Time.IsZero() {
			return e.sysmis, nil
		}

		return schema.ToRaw(v.Time)
	case table.KindDuration:
		return schema.DurationToRaw(v.Dur), nil
	case table.KindString:
		s := strings.TrimSpace(v.Str)
		if s == "" {
			return e.sysmis, nil
		}

		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) {
			return 0, errNotNumeric
		}

		return f, nil
	default:
		return 0, fmt.Errorf("unsupported value kind %s", v.Kind)
	}
}

func (e *Encoder) encodeString(f Field, v table.Value, out []byte) error {
	n := 0
	if !v.IsNull() {
		s := v.Str
		if v.Kind != table.KindString {
			s = v.String()
		}

		b, err := e.text.Encode(s)
		if err != nil {
			return err
		}
		n = copy(out, e.text.truncate(b, f.Width))
	}

	for i := n; i < len(out); i++ {
		out[i] = ' '
	}

	return nil
}

// Close returns the encoder buffer to its pool.
func (e *Encoder) Close() {
	if e.buf != nil {
		pool.PutCaseBuffer(e.buf)
		e.buf = nil
	}
}
