package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/savio/errs"
	"github.com/arloliu/savio/format"
	"github.com/arloliu/savio/schema"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	d, err := cfg.Defaults()
	require.NoError(t, err)
	require.Equal(t, schema.DefaultFormats(), d)
	require.Equal(t, slog.LevelWarn, cfg.Level())
	require.False(t, cfg.ShowWarnings)
	require.True(t, cfg.Unicode)
}

func TestLoad(t *testing.T) {
	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "savio.yaml")
		content := "formats:\n  numeric: F10.3\nshow_warnings: true\nlog_level: debug\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		require.True(t, cfg.ShowWarnings)
		require.Equal(t, slog.LevelDebug, cfg.Level())
		require.Equal(t, Default().BlockCases, cfg.BlockCases)

		d, err := cfg.Defaults()
		require.NoError(t, err)
		require.Equal(t, format.Spec{Type: format.TypeF, Width: 10, Decimals: 3}, d.Numeric)
		require.Equal(t, schema.DefaultFormats().Date, d.Date)
	})

	t.Run("save and load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "savio.yaml")
		cfg := Default()
		cfg.Locale = "de_DE.windows-1252"
		cfg.Unicode = false
		cfg.BlockCases = 128
		require.NoError(t, cfg.Save(path))

		loaded, err := Load(path)
		require.NoError(t, err)
		require.Equal(t, cfg, loaded)
	})

	t.Run("invalid format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "savio.yaml")
		require.NoError(t, os.WriteFile(path, []byte("formats:\n  date: NOPE11\n"), 0o600))

		_, err := Load(path)
		require.ErrorIs(t, err, errs.ErrUnsupportedFormat)
		require.Contains(t, err.Error(), "formats.date")
	})

	t.Run("invalid block size", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "savio.yaml")
		require.NoError(t, os.WriteFile(path, []byte("block_cases: 0\n"), 0o600))

		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "savio.yaml")
		require.NoError(t, os.WriteFile(path, []byte("formats: [1, 2"), 0o600))

		_, err := Load(path)
		require.Error(t, err)
	})
}
