package fileengine

import (
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/savio/compress"
	"github.com/arloliu/savio/endian"
	"github.com/arloliu/savio/engine"
	"github.com/arloliu/savio/format"
)

const testCaseSize = 8 + 16 // age (numeric) + name (A10 padded to 16)

func newEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()

	e, err := New(opts...)
	require.NoError(t, err)

	return e
}

func testCase(order endian.EndianEngine, age float64, name string) []byte {
	buf := order.AppendFloat64(make([]byte, 0, testCaseSize), age)
	text := make([]byte, 16)
	for i := range text {
		text[i] = ' '
	}
	copy(text, name)

	return append(buf, text...)
}

// writeTestFile creates a file holding n cases of (i, "row<i>").
func writeTestFile(t *testing.T, e *Engine, path string, c format.Compression, n int) {
	t.Helper()

	h, err := e.Open(path, engine.ModeWrite, engine.Config{Unicode: true})
	require.NoError(t, err)

	require.NoError(t, e.SetCompression(h, c))
	require.NoError(t, e.SetVarName(h, "age", 0))
	require.NoError(t, e.SetVarName(h, "name", 10))
	require.NoError(t, e.SetVarLabel(h, "age", "Age in years"))
	require.NoError(t, e.SetNumericValueLabel(h, "age", 1, "one"))
	require.NoError(t, e.SetStringValueLabel(h, "name", "row0", "first"))
	require.NoError(t, e.SetNumericMissing(h, "age", engine.NumericMissing{
		Format: format.MissingRangeAndValue,
		Values: [3]float64{lowest, -1, 999},
	}))
	require.NoError(t, e.CommitHeader(h))

	size, err := e.CaseSize(h)
	require.NoError(t, err)
	require.Equal(t, testCaseSize, size)

	order := endian.ForByteOrder(e.byteOrder)
	for i := range n {
		require.NoError(t, e.WholeCaseOut(h, testCase(order, float64(i), "row"+strconv.Itoa(i))))
	}

	count, err := e.CaseCount(h)
	require.NoError(t, err)
	require.Equal(t, int64(n), count)

	require.NoError(t, e.Close(h))
}

func readAll(t *testing.T, e *Engine, h engine.Handle) [][]byte {
	t.Helper()

	var out [][]byte
	for {
		buf := make([]byte, testCaseSize)
		err := e.WholeCaseIn(h, buf)
		if engine.IsStatus(err, format.StatusFileEnd) {
			return out
		}
		require.NoError(t, err)
		out = append(out, buf)
	}
}

func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		compression format.Compression
		opts        []Option
		cases       int
	}{
		{"uncompressed", format.CompressionNone, nil, 10},
		{"standard s2", format.CompressionStandard, nil, 10},
		{"standard lz4", format.CompressionStandard, []Option{WithStandardCodec(compress.AlgorithmLZ4)}, 10},
		{"zlib", format.CompressionZLib, nil, 10},
		{"big endian", format.CompressionStandard, []Option{WithByteOrder(format.BigEndian)}, 10},
		{"small blocks", format.CompressionZLib, []Option{WithBlockCases(3)}, 11},
		{"empty", format.CompressionStandard, nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, tt.opts...)
			path := filepath.Join(t.TempDir(), "data.sav")
			writeTestFile(t, e, path, tt.compression, tt.cases)

			h, err := e.Open(path, engine.ModeRead, engine.Config{})
			require.NoError(t, err)
			defer func() { require.NoError(t, e.Close(h)) }()

			c, err := e.Compression(h)
			require.NoError(t, err)
			require.Equal(t, tt.compression, c)

			enc, err := e.FileEncoding(h)
			require.NoError(t, err)
			require.Equal(t, "UTF-8", enc)

			info, err := e.ReleaseInfo(h)
			require.NoError(t, err)
			require.Equal(t, e.byteOrder, info.ByteOrder)

			names, types, err := e.VarNamesAndTypes(h)
			require.NoError(t, err)
			require.Equal(t, []string{"age", "name"}, names)
			require.Equal(t, []int{0, 10}, types)

			order := endian.ForByteOrder(info.ByteOrder)
			rows := readAll(t, e, h)
			require.Len(t, rows, tt.cases)
			for i, row := range rows {
				require.Equal(t, testCase(order, float64(i), "row"+strconv.Itoa(i)), row)
			}
		})
	}
}

func TestDictionaryRoundTrip(t *testing.T) {
	e := newEngine(t)
	path := filepath.Join(t.TempDir(), "dict.sav")
	writeTestFile(t, e, path, format.CompressionStandard, 1)

	h, err := e.Open(path, engine.ModeRead, engine.Config{})
	require.NoError(t, err)
	defer func() { require.NoError(t, e.Close(h)) }()

	label, err := e.VarLabel(h, "AGE")
	require.NoError(t, err)
	require.Equal(t, "Age in years", label)

	num, err := e.NumericValueLabels(h, "age")
	require.NoError(t, err)
	require.Equal(t, map[float64]string{1: "one"}, num)

	str, err := e.StringValueLabels(h, "name")
	require.NoError(t, err)
	require.Equal(t, map[string]string{"row0": "first"}, str)

	nm, err := e.NumericMissing(h, "age")
	require.NoError(t, err)
	require.Equal(t, format.MissingRangeAndValue, nm.Format)
	require.Equal(t, [3]float64{lowest, -1, 999}, nm.Values)

	spec, err := e.PrintFormat(h, "name")
	require.NoError(t, err)
	require.Equal(t, format.Spec{Type: format.TypeA, Width: 10}, spec)

	measure, err := e.MeasureLevel(h, "name")
	require.NoError(t, err)
	require.Equal(t, format.MeasureNominal, measure)

	_, err = e.MultRespDefs(h)
	require.True(t, engine.IsStatus(err, format.StatusNoMultResp))

	_, err = e.VariableSets(h)
	require.True(t, engine.IsStatus(err, format.StatusNoVarSets))

	_, err = e.CaseWeightVar(h)
	require.True(t, engine.IsStatus(err, format.StatusNoCaseWgt))

	require.ErrorIs(t, e.SetVarLabel(h, "age", "x"), format.StatusOpenRDMode)
}

func TestSeek(t *testing.T) {
	e := newEngine(t, WithBlockCases(4))
	path := filepath.Join(t.TempDir(), "seek.sav")
	writeTestFile(t, e, path, format.CompressionStandard, 10)

	h, err := e.Open(path, engine.ModeRead, engine.Config{})
	require.NoError(t, err)
	defer func() { require.NoError(t, e.Close(h)) }()

	order := endian.ForByteOrder(e.byteOrder)
	buf := make([]byte, testCaseSize)

	require.NoError(t, e.SeekNextCase(h, 7))
	require.NoError(t, e.WholeCaseIn(h, buf))
	require.Equal(t, 7.0, order.Float64(buf))

	require.NoError(t, e.SeekNextCase(h, 2))
	require.NoError(t, e.WholeCaseIn(h, buf))
	require.Equal(t, 2.0, order.Float64(buf))

	require.NoError(t, e.SeekNextCase(h, 10))
	require.ErrorIs(t, e.WholeCaseIn(h, buf), format.StatusFileEnd)

	require.ErrorIs(t, e.SeekNextCase(h, 11), format.StatusInvalidCase)
	require.ErrorIs(t, e.WholeCaseIn(h, buf[:4]), format.StatusBufferShort)
}

func TestStatuses(t *testing.T) {
	t.Run("invalid handle", func(t *testing.T) {
		e := newEngine(t)
		_, err := e.CaseCount(42)
		require.ErrorIs(t, err, format.StatusInvalidHandle)
		require.ErrorIs(t, e.Close(42), format.StatusInvalidHandle)
	})

	t.Run("dictionary lifecycle", func(t *testing.T) {
		e := newEngine(t)
		h, err := e.Open(filepath.Join(t.TempDir(), "x.sav"), engine.ModeWrite, engine.Config{})
		require.NoError(t, err)
		defer func() { require.NoError(t, e.Close(h)) }()

		require.ErrorIs(t, e.CommitHeader(h), format.StatusDictEmpty)
		require.NoError(t, e.SetVarName(h, "v", 0))
		require.ErrorIs(t, e.SetVarName(h, "V", 0), format.StatusDupVar)
		require.ErrorIs(t, e.SetVarName(h, "", 0), format.StatusInvalidVarName)
		require.ErrorIs(t, e.SetVarName(h, "w", -1), format.StatusInvalidVarType)
		require.ErrorIs(t, e.SetVarLabel(h, "nope", "x"), format.StatusVarNotFound)
		require.ErrorIs(t, e.SetPrintFormat(h, "v", format.Spec{Type: format.TypeA, Width: 8}), format.StatusInvalidPrFor)
		require.ErrorIs(t, e.SetStringValueLabel(h, "v", "a", "b"), format.StatusStrExp)
		require.ErrorIs(t, e.SetMeasureLevel(h, "v", 9), format.StatusInvalidMeasureLvl)
		require.ErrorIs(t, e.SetRole(h, "v", 42), format.StatusInvalidRole)
		require.ErrorIs(t, e.SetMultRespDefs(h, "bad"), format.StatusInvalidMRSetDef)
		require.ErrorIs(t, e.SetCompression(h, 7), format.StatusInvalidCompSw)

		buf := make([]byte, 8)
		require.ErrorIs(t, e.WholeCaseOut(h, buf), format.StatusDictNotCommit)

		require.NoError(t, e.CommitHeader(h))
		require.ErrorIs(t, e.CommitHeader(h), format.StatusDictCommit)
		require.ErrorIs(t, e.SetVarLabel(h, "v", "late"), format.StatusDictCommit)
		require.ErrorIs(t, e.WholeCaseOut(h, buf[:4]), format.StatusInvalidCase)
		require.ErrorIs(t, e.WholeCaseIn(h, buf), format.StatusOpenWRMode)
		require.NoError(t, e.WholeCaseOut(h, buf))
	})

	t.Run("string widths in the file codepage", func(t *testing.T) {
		e := newEngine(t)
		h, err := e.Open(filepath.Join(t.TempDir(), "cp.sav"), engine.ModeWrite, engine.Config{Locale: "en_US.windows-1252"})
		require.NoError(t, err)
		defer func() { require.NoError(t, e.Close(h)) }()

		require.NoError(t, e.SetVarName(h, "s", 2))
		require.ErrorIs(t, e.SetVarName(h, "\u017F", 0), format.StatusDupVar, "long s folds to s")
		require.NoError(t, e.SetStringValueLabel(h, "s", "éé", "double e"))
		require.NoError(t, e.SetStringMissing(h, "s", engine.StringMissing{Format: format.MissingOne, Values: [3]string{"éé"}}))
		require.ErrorIs(t, e.SetStringValueLabel(h, "s", "ééé", "triple e"), format.StatusExcStrValue)

		enc, err := e.FileEncoding(h)
		require.NoError(t, err)
		require.Equal(t, "windows-1252", enc)
	})

	t.Run("truncated labels warn", func(t *testing.T) {
		e := newEngine(t)
		h, err := e.Open(filepath.Join(t.TempDir(), "w.sav"), engine.ModeWrite, engine.Config{})
		require.NoError(t, err)
		defer func() { require.NoError(t, e.Close(h)) }()

		require.NoError(t, e.SetVarName(h, "v", 0))

		long := make([]byte, 300)
		for i := range long {
			long[i] = 'x'
		}

		err = e.SetVarLabel(h, "v", string(long))
		st, ok := engine.Warning(err)
		require.True(t, ok)
		require.Equal(t, format.StatusExcVarLabel, st)

		label, err := e.VarLabel(h, "v")
		require.NoError(t, err)
		require.Len(t, label, format.MaxVarLabel)

		st, ok = engine.Warning(e.SetNumericValueLabel(h, "v", 1, string(long)))
		require.True(t, ok)
		require.Equal(t, format.StatusExcValLabel, st)
	})

	t.Run("missing file", func(t *testing.T) {
		e := newEngine(t)
		_, err := e.Open(filepath.Join(t.TempDir(), "nope.sav"), engine.ModeRead, engine.Config{})
		require.ErrorIs(t, err, format.StatusFileOError)
		require.ErrorIs(t, err, os.ErrNotExist)
		require.Zero(t, e.OpenFiles())
	})

	t.Run("corrupt dictionary", func(t *testing.T) {
		e := newEngine(t)
		path := filepath.Join(t.TempDir(), "bad.sav")
		writeTestFile(t, e, path, format.CompressionStandard, 2)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		data[HeaderSize+3] ^= 0xFF
		require.NoError(t, os.WriteFile(path, data, 0o644))

		_, err = e.Open(path, engine.ModeRead, engine.Config{})
		require.ErrorIs(t, err, format.StatusInvalidFile)
		require.ErrorIs(t, err, errChecksum)
	})

	t.Run("not a data file", func(t *testing.T) {
		e := newEngine(t)
		path := filepath.Join(t.TempDir(), "text.sav")
		require.NoError(t, os.WriteFile(path, []byte("this is not a data file at all, really"), 0o644))

		_, err := e.Open(path, engine.ModeRead, engine.Config{})
		require.ErrorIs(t, err, format.StatusInvalidFile)
	})
}

func TestAppend(t *testing.T) {
	e := newEngine(t, WithBlockCases(4))
	path := filepath.Join(t.TempDir(), "append.sav")
	writeTestFile(t, e, path, format.CompressionZLib, 5)

	h, err := e.Open(path, engine.ModeAppend, engine.Config{})
	require.NoError(t, err)

	require.ErrorIs(t, e.SetVarName(h, "extra", 0), format.StatusDictCommit)

	order := endian.ForByteOrder(e.byteOrder)
	for i := 5; i < 8; i++ {
		require.NoError(t, e.WholeCaseOut(h, testCase(order, float64(i), "row"+strconv.Itoa(i))))
	}
	require.NoError(t, e.Close(h))

	h, err = e.Open(path, engine.ModeRead, engine.Config{})
	require.NoError(t, err)
	defer func() { require.NoError(t, e.Close(h)) }()

	count, err := e.CaseCount(h)
	require.NoError(t, err)
	require.Equal(t, int64(8), count)

	rows := readAll(t, e, h)
	require.Len(t, rows, 8)
	require.Equal(t, testCase(order, 7, "row7"), rows[7])
}

func TestLocking(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("advisory locks are not taken on windows")
	}

	e := newEngine(t)
	path := filepath.Join(t.TempDir(), "locked.sav")
	writeTestFile(t, e, path, format.CompressionStandard, 3)

	r1, err := e.Open(path, engine.ModeRead, engine.Config{})
	require.NoError(t, err)

	r2, err := e.Open(path, engine.ModeRead, engine.Config{})
	require.NoError(t, err, "readers share the lock")

	_, err = e.Open(path, engine.ModeWrite, engine.Config{})
	require.ErrorIs(t, err, format.StatusFileOError)

	require.NoError(t, e.Close(r1))
	require.NoError(t, e.Close(r2))

	// The failed writer must not have truncated the file.
	h, err := e.Open(path, engine.ModeRead, engine.Config{})
	require.NoError(t, err)
	count, err := e.CaseCount(h)
	require.NoError(t, err)
	require.Equal(t, int64(3), count)
	require.NoError(t, e.Close(h))
}

func TestOptions(t *testing.T) {
	_, err := New(WithBlockCases(0))
	require.Error(t, err)

	_, err = New(WithStandardCodec(compress.AlgorithmZstd))
	require.Error(t, err)
}
