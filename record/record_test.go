package record

import (
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/savio/dictionary"
	"github.com/arloliu/savio/endian"
	"github.com/arloliu/savio/errs"
	"github.com/arloliu/savio/format"
	"github.com/arloliu/savio/table"
)

const sysmis = -math.MaxFloat64

func testVariables() []dictionary.Variable {
	return []dictionary.Variable{
		{Name: "id", PrintFormat: format.Spec{Type: format.TypeF, Width: 8}},
		{Name: "city", Width: 10, PrintFormat: format.Spec{Type: format.TypeA, Width: 10}},
		{Name: "born", PrintFormat: format.Spec{Type: format.TypeDATE, Width: 11}},
		{Name: "spent", PrintFormat: format.Spec{Type: format.TypeTIME, Width: 8}},
		{Name: "seen", PrintFormat: format.Spec{Type: format.TypeDATETIME, Width: 20}},
		{Name: "code", Width: 3, PrintFormat: format.Spec{Type: format.TypeA, Width: 3}, Missing: dictionary.DiscreteStringMissing("NA")},
		{Name: "score", PrintFormat: format.Spec{Type: format.TypeF, Width: 8}, Missing: dictionary.DiscreteMissing(98, 99)},
	}
}

func TestLayout(t *testing.T) {
	l, err := NewLayout(testVariables(), nil)
	require.NoError(t, err)
	require.Equal(t, 8+16+8+8+8+8+8, l.CaseSize())

	city, ok := l.Field("city")
	require.True(t, ok)
	require.Equal(t, 8, city.Offset)
	require.Equal(t, 16, city.ByteWidth)

	seen, _ := l.Field("seen")
	require.Equal(t, 48, seen.Offset)
	require.Len(t, l.Selected(), 7)

	sub, err := NewLayout(testVariables(), []string{"score", "id"})
	require.NoError(t, err)
	require.Equal(t, "score", sub.Selected()[0].Name)
	require.Equal(t, l.CaseSize(), sub.CaseSize())

	_, err = NewLayout(testVariables(), []string{"ghost"})
	require.ErrorIs(t, err, errs.ErrUnknownVariable)
}

func sampleRow() []table.Value {
	return []table.Value{
		table.Float(7),
		table.Str("Zürich"),
		table.Date(time.Date(1999, 12, 31, 0, 0, 0, 0, time.UTC)),
		table.Duration(90 * time.Minute),
		table.DateTime(time.Date(2020, 5, 6, 7, 8, 9, 0, time.UTC)),
		table.Str("NA"),
		table.Float(99),
	}
}

func roundTrip(t *testing.T, cfg DecodeConfig, order endian.EndianEngine, text *Text, row []table.Value) []table.Value {
	t.Helper()

	l, err := NewLayout(testVariables(), nil)
	require.NoError(t, err)

	enc := NewEncoder(l, order, text, sysmis)
	defer enc.Close()
	require.NoError(t, enc.Bind([]string{"id", "city", "born", "spent", "seen", "code", "score"}))

	buf, err := enc.Encode(row, 0)
	require.NoError(t, err)
	require.Len(t, buf, l.CaseSize())

	out, err := NewDecoder(l, order, text, sysmis, cfg).Decode(buf)
	require.NoError(t, err)

	return out
}

func TestRoundTrip(t *testing.T) {
	for _, order := range []endian.EndianEngine{endian.GetLittleEndianEngine(), endian.GetBigEndianEngine()} {
		t.Run(order.String(), func(t *testing.T) {
			row := sampleRow()
			out := roundTrip(t, DecodeConfig{ConvertDatetimes: true, IncludeUserMissing: true}, order, UTF8, row)
			for i := range row {
				require.True(t, row[i].Equal(out[i]), "column %d: %v != %v", i, row[i], out[i])
			}
		})
	}
}

func TestDecodeOptions(t *testing.T) {
	le := endian.GetLittleEndianEngine()

	t.Run("user missing dropped", func(t *testing.T) {
		out := roundTrip(t, DecodeConfig{ConvertDatetimes: true}, le, UTF8, sampleRow())
		require.True(t, out[5].Equal(table.Str("")))
		require.True(t, out[6].IsNull())
		require.Equal(t, table.KindFloat, out[6].Kind)
	})

	t.Run("raw datetimes", func(t *testing.T) {
		out := roundTrip(t, DecodeConfig{IncludeUserMissing: true}, le, UTF8, sampleRow())
		require.Equal(t, table.KindFloat, out[2].Kind)
		require.Equal(t, 13166064000.0-86400, out[2].Num)
		require.Equal(t, 5400.0, out[3].Num)
	})

	t.Run("string nan", func(t *testing.T) {
		row := sampleRow()
		row[1] = table.Str("")
		out := roundTrip(t, DecodeConfig{IncludeUserMissing: true, StringNaN: "n/a"}, le, UTF8, row)
		require.Equal(t, "n/a", out[1].Str)

		out = roundTrip(t, DecodeConfig{IncludeUserMissing: true, NullEmptyStrings: true}, le, UTF8, row)
		require.True(t, out[1].IsNull())
	})

	t.Run("nulls", func(t *testing.T) {
		row := []table.Value{
			table.Null(table.KindFloat), table.Null(table.KindString), table.Null(table.KindDate),
			table.Null(table.KindDuration), table.DateTime(time.Time{}), table.Str("  "), table.Float(math.NaN()),
		}
		out := roundTrip(t, DecodeConfig{ConvertDatetimes: true, IncludeUserMissing: true}, le, UTF8, row)
		require.True(t, out[0].IsNull())
		require.Equal(t, "", out[1].Str)
		require.True(t, out[2].IsNull())
		require.Equal(t, table.KindDate, out[2].Kind)
		require.True(t, out[3].IsNull())
		require.True(t, out[4].IsNull())
		require.True(t, out[6].IsNull())
	})
}

func TestEncodeConversions(t *testing.T) {
	le := endian.GetLittleEndianEngine()
	l, err := NewLayout(testVariables(), nil)
	require.NoError(t, err)

	enc := NewEncoder(l, le, UTF8, sysmis)
	defer enc.Close()

	t.Run("columns by name in any order", func(t *testing.T) {
		require.NoError(t, enc.Bind([]string{"score", "id"}))
		buf, err := enc.Encode([]table.Value{table.Float(5), table.Str(" 42 ")}, 0)
		require.NoError(t, err)

		out, err := NewDecoder(l, le, UTF8, sysmis, DecodeConfig{IncludeUserMissing: true}).Decode(buf)
		require.NoError(t, err)
		require.Equal(t, 42.0, out[0].Num)
		require.Equal(t, "", out[1].Str)
		require.True(t, out[2].IsNull())
		require.Equal(t, 5.0, out[6].Num)
	})

	t.Run("unknown column", func(t *testing.T) {
		require.ErrorIs(t, enc.Bind([]string{"id", "extra"}), errs.ErrUnknownVariable)
	})

	t.Run("unparseable number", func(t *testing.T) {
		require.NoError(t, enc.Bind([]string{"id"}))
		_, err := enc.Encode([]table.Value{table.Str("seven")}, 12)

		var convErr *errs.ValueConversionError
		require.ErrorAs(t, err, &convErr)
		require.Equal(t, 12, convErr.Row)
		require.Equal(t, "id", convErr.Column)
	})

	t.Run("date before epoch", func(t *testing.T) {
		require.NoError(t, enc.Bind([]string{"born"}))
		_, err := enc.Encode([]table.Value{table.Date(time.Date(1500, 1, 1, 0, 0, 0, 0, time.UTC))}, 3)
		require.ErrorIs(t, err, errs.ErrValueConversion)
	})

	t.Run("strings truncate to width", func(t *testing.T) {
		require.NoError(t, enc.Bind([]string{"city", "code"}))
		buf, err := enc.Encode([]table.Value{table.Str(strings.Repeat("x", 20)), table.Float(12345)}, 0)
		require.NoError(t, err)

		city, _ := l.Field("city")
		require.Equal(t, strings.Repeat("x", 10)+"      ", string(buf[city.Offset:city.Offset+city.ByteWidth]))

		code, _ := l.Field("code")
		require.Equal(t, "123     ", string(buf[code.Offset:code.Offset+code.ByteWidth]))
	})

	t.Run("utf-8 truncation keeps whole characters", func(t *testing.T) {
		require.NoError(t, enc.Bind([]string{"city"}))
		buf, err := enc.Encode([]table.Value{table.Str("aaaaaaaaaé")}, 0)
		require.NoError(t, err)

		city, _ := l.Field("city")
		require.Equal(t, "aaaaaaaaa", strings.TrimRight(string(buf[city.Offset:city.Offset+city.ByteWidth]), " "))
	})
}

func TestText(t *testing.T) {
	latin, err := LookupText("windows-1252")
	require.NoError(t, err)
	require.False(t, latin.IsUTF8())
	require.Equal(t, "windows-1252", latin.Name())

	b, err := latin.Encode("Zürich")
	require.NoError(t, err)
	require.Len(t, b, 6)

	n, err := latin.EncodedLen("Zürich")
	require.NoError(t, err)
	require.Equal(t, 6, n)

	s, err := latin.Decode(b)
	require.NoError(t, err)
	require.Equal(t, "Zürich", s)

	_, err = latin.Encode("日本")
	require.Error(t, err)

	utf, err := LookupText("")
	require.NoError(t, err)
	require.True(t, utf.IsUTF8())

	_, err = LookupText("no-such-charset")
	require.Error(t, err)

	t.Run("clip", func(t *testing.T) {
		for _, tt := range []struct {
			text *Text
			in   string
			n    int
			want string
		}{
			{latin, "éé", 2, "éé"},
			{latin, "ééé", 2, "éé"},
			{latin, "ab  ", 4, "ab"},
			{utf, "éé", 2, "é"},
			{utf, "aé", 2, "a"},
			{utf, "abc", 5, "abc"},
		} {
			got, err := tt.text.Clip(tt.in, tt.n)
			require.NoError(t, err)
			require.Equal(t, tt.want, got, "%s %q at %d", tt.text.Name(), tt.in, tt.n)
		}

		_, err := latin.Clip("日本", 4)
		require.Error(t, err)
	})

	t.Run("codepage round trip", func(t *testing.T) {
		out := roundTrip(t, DecodeConfig{ConvertDatetimes: true, IncludeUserMissing: true}, endian.GetLittleEndianEngine(), latin, sampleRow())
		require.Equal(t, "Zürich", out[1].Str)
	})
}
