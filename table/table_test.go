package table

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func sample(t *testing.T) *Table {
	t.Helper()

	tbl, err := New(
		FloatColumn("age", 25, math.NaN(), 40),
		StringColumn("name", "Ann", "Bob", "Cleo"),
	)
	require.NoError(t, err)

	return tbl
}

func TestValue(t *testing.T) {
	t.Run("null handling", func(t *testing.T) {
		require.True(t, Float(math.NaN()).IsNull())
		require.True(t, Null(KindString).IsNull())
		require.False(t, Str("").IsNull())
		require.True(t, Null(KindFloat).Equal(Float(math.NaN())))
		require.False(t, Null(KindFloat).Equal(Null(KindString)))
		require.Nil(t, Null(KindDate).Any())
	})

	t.Run("date drops time of day", func(t *testing.T) {
		v := Date(time.Date(2000, 1, 1, 13, 45, 0, 0, time.FixedZone("X", 3600)))
		require.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), v.Time)
		require.Equal(t, "2000-01-01", v.String())
	})

	t.Run("equality", func(t *testing.T) {
		a := DateTime(time.Date(2020, 5, 1, 8, 0, 0, 0, time.UTC))
		b := DateTime(time.Date(2020, 5, 1, 10, 0, 0, 0, time.FixedZone("Y", 7200)))
		require.True(t, a.Equal(b))
		require.False(t, Float(1).Equal(Str("1")))
		require.True(t, Duration(time.Second).Equal(Duration(time.Second)))
	})

	t.Run("string forms", func(t *testing.T) {
		require.Equal(t, "25", Float(25).String())
		require.Equal(t, "<null>", Null(KindFloat).String())
		require.Equal(t, "1m30s", Duration(90*time.Second).String())
		require.Equal(t, 2.5, Float(2.5).Any())
	})
}

func TestNewValidates(t *testing.T) {
	_, err := New(FloatColumn("a", 1, 2), FloatColumn("b", 1))
	require.ErrorIs(t, err, ErrShapeMismatch)

	_, err = New(FloatColumn("a", 1), FloatColumn("a", 2))
	require.ErrorIs(t, err, ErrShapeMismatch)

	empty, err := New()
	require.NoError(t, err)
	require.Zero(t, empty.NumRows())
}

func TestTableAccessors(t *testing.T) {
	tbl := sample(t)

	require.Equal(t, 3, tbl.NumRows())
	require.Equal(t, 2, tbl.NumCols())
	require.Equal(t, []string{"age", "name"}, tbl.Names())
	require.Equal(t, 1, tbl.ColumnIndex("name"))
	require.Equal(t, -1, tbl.ColumnIndex("missing"))

	row := tbl.Row(2)
	require.True(t, row[0].Equal(Float(40)))
	require.True(t, row[1].Equal(Str("Cleo")))

	col, ok := tbl.Column("age")
	require.True(t, ok)
	require.True(t, col.Values[1].IsNull())
}

func TestAppendRow(t *testing.T) {
	tbl := sample(t)

	require.NoError(t, tbl.AppendRow([]Value{Float(1), Str("Dan")}))
	require.Equal(t, 4, tbl.NumRows())

	require.ErrorIs(t, tbl.AppendRow([]Value{Float(1)}), ErrShapeMismatch)
	require.ErrorIs(t, tbl.AppendRow([]Value{Str("x"), Str("y")}), ErrKindMismatch)
}

func TestSelect(t *testing.T) {
	tbl := sample(t)

	sel, err := tbl.Select("name", "age")
	require.NoError(t, err)
	require.Equal(t, []string{"name", "age"}, sel.Names())

	_, err = tbl.Select("nope")
	require.ErrorIs(t, err, ErrColumnNotFound)
}

func TestSliceAndConcat(t *testing.T) {
	tbl := sample(t)

	head := tbl.Slice(0, 2)
	tail := tbl.Slice(2, 10)
	require.Equal(t, 2, head.NumRows())
	require.Equal(t, 1, tail.NumRows())
	require.Equal(t, 2, tail.RowOffset)
	require.Zero(t, tbl.Slice(5, 1).NumRows())

	joined, err := Concat(head, tail)
	require.NoError(t, err)
	require.True(t, joined.Equal(tbl))
	require.Zero(t, joined.RowOffset)

	other, err := New(StringColumn("name", "x"), FloatColumn("age", 1))
	require.NoError(t, err)
	_, err = Concat(tbl, other)
	require.ErrorIs(t, err, ErrShapeMismatch)

	none, err := Concat()
	require.NoError(t, err)
	require.Zero(t, none.NumCols())
}

func TestColumnBuilders(t *testing.T) {
	dates := DateColumn("d", time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), time.Time{})
	require.Equal(t, KindDate, dates.Kind)
	require.True(t, dates.Values[1].IsNull())

	stamps := DateTimeColumn("ts", time.Time{})
	require.True(t, stamps.Values[0].IsNull())

	durs := DurationColumn("t", time.Minute)
	require.Equal(t, time.Minute, durs.Values[0].Dur)

	require.ErrorIs(t, durs.Append(Float(1)), ErrKindMismatch)
}

func TestString(t *testing.T) {
	tbl := sample(t)
	require.Equal(t, "age\tname\n25\tAnn\n<null>\tBob\n40\tCleo", tbl.String())
}
