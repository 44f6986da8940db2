package record

import (
	"bytes"
	"fmt"

	"github.com/arloliu/savio/endian"
	"github.com/arloliu/savio/schema"
	"github.com/arloliu/savio/table"
)

// DecodeConfig controls how stored values become table values.
type DecodeConfig struct {
	// ConvertDatetimes turns date, time and datetime variables into
	// calendar values. When false their raw seconds are returned as floats.
	ConvertDatetimes bool
	// IncludeUserMissing keeps user-missing codes. When false they become
	// null for numerics and "" for strings.
	IncludeUserMissing bool
	// StringNaN replaces empty strings, unless NullEmptyStrings is set.
	StringNaN string
	// NullEmptyStrings turns empty strings into nulls.
	NullEmptyStrings bool
}

// Decoder turns case records into table rows. It is not safe for
// concurrent use.
type Decoder struct {
	fields []Field
	kinds  []table.Kind
	order  endian.EndianEngine
	text   *Text
	sysmis float64
	cfg    DecodeConfig
}

// NewDecoder creates a decoder for the selected fields of layout.
func NewDecoder(layout *Layout, order endian.EndianEngine, text *Text, sysmis float64, cfg DecodeConfig) *Decoder {
	d := &Decoder{
		fields: layout.Selected(),
		order:  order,
		text:   text,
		sysmis: sysmis,
		cfg:    cfg,
	}

	d.kinds = make([]table.Kind, len(d.fields))
	for i, f := range d.fields {
		d.kinds[i] = columnKind(f, cfg.ConvertDatetimes)
	}

	return d
}

func columnKind(f Field, convert bool) table.Kind {
	if f.IsString() {
		return table.KindString
	}

	if !convert {
		return table.KindFloat
	}

	switch f.Kind { //nolint: exhaustive
	case schema.KindDate:
		return table.KindDate
	case schema.KindTime:
		return table.KindDuration
	case schema.KindDateTime:
		return table.KindDateTime
	default:
		return table.KindFloat
	}
}

// NewTable returns an empty table with one column per selected field.
func (d *Decoder) NewTable(capacity int) *table.Table {
	cols := make([]*table.Column, len(d.fields))
	for i, f := range d.fields {
		cols[i] = table.NewColumn(f.Name, d.kinds[i], capacity)
	}

	return &table.Table{Columns: cols}
}

// Decode decodes one case record into a row of the selected fields.
func (d *Decoder) Decode(buf []byte) ([]table.Value, error) {
	row := make([]table.Value, len(d.fields))
	for i := range d.fields {
		v, err := d.decodeField(i, buf)
		if err != nil {
			return nil, err
		}
		row[i] = v
	}

	return row, nil
}

// DecodeInto decodes one case record and appends it to tbl, which must
// come from NewTable.
func (d *Decoder) DecodeInto(buf []byte, tbl *table.Table) error {
	for i, col := range tbl.Columns {
		v, err := d.decodeField(i, buf)
		if err != nil {
			return err
		}
		col.Values = append(col.Values, v)
	}

	return nil
}

func (d *Decoder) decodeField(i int, buf []byte) (table.Value, error) {
	f := d.fields[i]
	kind := d.kinds[i]

	if f.Offset+f.ByteWidth > len(buf) {
		return table.Value{}, fmt.Errorf("case record of %d bytes is too short for %s", len(buf), f.Name)
	}
	raw := buf[f.Offset : f.Offset+f.ByteWidth]

	if f.IsString() {
		return d.decodeString(f, raw[:f.Width])
	}

	num := d.order.Float64(raw)
	if num == d.sysmis {
		return table.Null(kind), nil
	}

	if !d.cfg.IncludeUserMissing && f.Missing.Matches(num) {
		return table.Null(kind), nil
	}

	switch kind { //nolint: exhaustive
	case table.KindDate:
		return table.Date(schema.FromRaw(num)), nil
	case table.KindDateTime:
		return table.DateTime(schema.FromRaw(num)), nil
	case table.KindDuration:
		return table.Duration(schema.RawToDuration(num)), nil
	default:
		return table.Float(num), nil
	}
}

func (d *Decoder) decodeString(f Field, raw []byte) (table.Value, error) {
	s, err := d.text.Decode(bytes.TrimRight(raw, " \x00"))
	if err != nil {
		return table.Value{}, fmt.Errorf("%s: %w", f.Name, err)
	}

	if !d.cfg.IncludeUserMissing && f.Missing.MatchesString(s) {
		s = ""
	}

	if s == "" {
		if d.cfg.NullEmptyStrings {
			return table.Null(table.KindString), nil
		}
		s = d.cfg.StringNaN
	}

	return table.Str(s), nil
}
