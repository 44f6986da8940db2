package schema

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/savio/errs"
	"github.com/arloliu/savio/format"
)

func specPtr(s string) *format.Spec {
	f, err := ParseFormat(s)
	if err != nil {
		panic(err)
	}

	return &f
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		typ       VarType
		requested *format.Spec
		observed  int
		want      StorageSpec
		wantErr   error
	}{
		{
			name: "numeric default",
			typ:  Numeric(),
			want: StorageSpec{Width: 0, ByteWidth: 8, Format: format.Spec{Type: format.TypeF, Width: 8, Decimals: 2}},
		},
		{
			name:      "numeric requested",
			typ:       Numeric(),
			requested: specPtr("COMMA12.3"),
			want:      StorageSpec{ByteWidth: 8, Format: format.Spec{Type: format.TypeCOMMA, Width: 12, Decimals: 3}},
		},
		{
			name:      "numeric with string format",
			typ:       Numeric(),
			requested: specPtr("A8"),
			wantErr:   errs.ErrUnsupportedFormat,
		},
		{
			name:     "string observed width",
			typ:      String(0),
			observed: 10,
			want:     StorageSpec{Width: 10, ByteWidth: 16, Format: format.Spec{Type: format.TypeA, Width: 10}},
		},
		{
			name:     "string declared wider",
			typ:      String(20),
			observed: 4,
			want:     StorageSpec{Width: 20, ByteWidth: 24, Format: format.Spec{Type: format.TypeA, Width: 20}},
		},
		{
			name: "string minimum width",
			typ:  String(0),
			want: StorageSpec{Width: 1, ByteWidth: 8, Format: format.Spec{Type: format.TypeA, Width: 1}},
		},
		{
			name:      "string with numeric format falls back to A",
			typ:       String(3),
			requested: specPtr("F8.2"),
			want:      StorageSpec{Width: 3, ByteWidth: 8, Format: format.Spec{Type: format.TypeA, Width: 3}},
		},
		{
			name:      "string AHEX",
			typ:       String(4),
			requested: specPtr("AHEX8"),
			want:      StorageSpec{Width: 4, ByteWidth: 8, Format: format.Spec{Type: format.TypeAHEX, Width: 8}},
		},
		{
			name:     "string too long",
			typ:      String(0),
			observed: format.MaxLongString + 1,
			wantErr:  errs.ErrUnsupportedFormat,
		},
		{
			name: "date default",
			typ:  Date(),
			want: StorageSpec{ByteWidth: 8, Format: format.Spec{Type: format.TypeDATE, Width: 11}},
		},
		{
			name:      "date requested ADATE",
			typ:       Date(),
			requested: specPtr("ADATE10"),
			want:      StorageSpec{ByteWidth: 8, Format: format.Spec{Type: format.TypeADATE, Width: 10}},
		},
		{
			name:      "date with time format",
			typ:       Date(),
			requested: specPtr("TIME8"),
			wantErr:   errs.ErrUnsupportedFormat,
		},
		{
			name: "time default",
			typ:  Time(),
			want: StorageSpec{ByteWidth: 8, Format: format.Spec{Type: format.TypeTIME, Width: 8}},
		},
		{
			name: "datetime default",
			typ:  DateTime(),
			want: StorageSpec{ByteWidth: 8, Format: format.Spec{Type: format.TypeDATETIME, Width: 20}},
		},
		{
			name:      "datetime with date format",
			typ:       DateTime(),
			requested: specPtr("DATE11"),
			wantErr:   errs.ErrUnsupportedFormat,
		},
		{
			name:      "unknown format code",
			typ:       Numeric(),
			requested: &format.Spec{Type: format.Type(13), Width: 8},
			wantErr:   errs.ErrUnsupportedFormat,
		},
		{
			name:      "zero width",
			typ:       Numeric(),
			requested: &format.Spec{Type: format.TypeF, Width: 0},
			wantErr:   errs.ErrUnsupportedFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.typ, tt.requested, tt.observed)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestResolveCustomDefaults(t *testing.T) {
	d := DefaultFormats()
	d.Numeric = format.Spec{Type: format.TypeF, Width: 10, Decimals: 0}

	got, err := d.Resolve(Numeric(), nil, 0)
	require.NoError(t, err)
	require.Equal(t, "F10", got.Format.String())
}

func TestParseFormat(t *testing.T) {
	tests := map[string]format.Spec{
		"F8.2":       {Type: format.TypeF, Width: 8, Decimals: 2},
		"a10":        {Type: format.TypeA, Width: 10},
		"DATETIME20": {Type: format.TypeDATETIME, Width: 20},
		" TIME8 ":    {Type: format.TypeTIME, Width: 8},
		"DOLLAR10.2": {Type: format.TypeDOLLAR, Width: 10, Decimals: 2},
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			got, err := ParseFormat(in)
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}

	for _, bad := range []string{"", "8.2", "XYZ8", "F", "F8.x"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			_, err := ParseFormat(bad)
			require.ErrorIs(t, err, errs.ErrUnsupportedFormat)
		})
	}
}

func TestKindOf(t *testing.T) {
	require.Equal(t, KindDate, KindOf(*specPtr("SDATE10")))
	require.Equal(t, KindDateTime, KindOf(*specPtr("YMDHMS19")))
	require.Equal(t, KindTime, KindOf(*specPtr("DTIME12")))
	require.Equal(t, KindNumeric, KindOf(*specPtr("WKDAY9")))
	require.Equal(t, KindNumeric, KindOf(*specPtr("MONTH3")))
	require.Equal(t, KindString, KindOf(*specPtr("A4")))
	require.True(t, KindTime.IsTemporal())
	require.False(t, KindString.IsTemporal())
}

func TestByteWidth(t *testing.T) {
	require.Equal(t, 8, ByteWidth(0))
	require.Equal(t, 8, ByteWidth(1))
	require.Equal(t, 8, ByteWidth(8))
	require.Equal(t, 16, ByteWidth(9))
	require.Equal(t, 32768, ByteWidth(format.MaxLongString))
}

func TestEpoch(t *testing.T) {
	t.Run("2000-01-01", func(t *testing.T) {
		raw, err := ToRaw(time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		require.Equal(t, float64(13166064000), raw)
		require.Equal(t, time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC), FromRaw(raw))
	})

	t.Run("epoch itself", func(t *testing.T) {
		raw, err := ToRaw(Epoch)
		require.NoError(t, err)
		require.Zero(t, raw)
		require.True(t, Epoch.Equal(FromRaw(0)))
	})

	t.Run("rounds to nearest second", func(t *testing.T) {
		base := time.Date(2021, 6, 1, 12, 0, 0, 0, time.UTC)
		up, err := ToRaw(base.Add(600 * time.Millisecond))
		require.NoError(t, err)
		down, err := ToRaw(base.Add(400 * time.Millisecond))
		require.NoError(t, err)

		require.Equal(t, down+1, up)
		require.True(t, base.Equal(FromRaw(down)))
	})

	t.Run("wall clock ignores location", func(t *testing.T) {
		zone := time.FixedZone("X", 5*3600)
		a, err := ToRaw(time.Date(2010, 3, 4, 5, 6, 7, 0, zone))
		require.NoError(t, err)
		b, err := ToRaw(time.Date(2010, 3, 4, 5, 6, 7, 0, time.UTC))
		require.NoError(t, err)
		require.Equal(t, a, b)
	})

	t.Run("before epoch", func(t *testing.T) {
		_, err := ToRaw(time.Date(1500, 1, 1, 0, 0, 0, 0, time.UTC))
		require.ErrorIs(t, err, errs.ErrValueConversion)
	})

	t.Run("fractional raw", func(t *testing.T) {
		got := FromRaw(13166064000.5)
		require.Equal(t, 500*time.Millisecond, time.Duration(got.Nanosecond()))
	})
}

func TestDurations(t *testing.T) {
	require.Equal(t, float64(3723), DurationToRaw(time.Hour+2*time.Minute+3*time.Second+200*time.Millisecond))
	require.Equal(t, float64(2), DurationToRaw(1500*time.Millisecond))
	require.Equal(t, 90*time.Second, RawToDuration(90))
	require.Equal(t, -5*time.Second, RawToDuration(-5))
}
