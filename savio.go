// Package savio reads and writes statistical data files as column tables
// with their full variable dictionary.
//
// A file holds a dictionary of typed variables (names, formats, labels,
// value labels, user-missing codes, display properties, multiple-response
// and variable sets) followed by fixed-width case records. savio converts
// cases to and from table.Table values and the dictionary to and from
// dictionary.Metadata.
//
// # Basic Usage
//
// Writing a table:
//
//	tbl, _ := table.New(
//	    table.FloatColumn("age", 25, math.NaN(), 40),
//	    table.StringColumn("name", "Ann", "Bob", "Cleo"),
//	)
//	md := &dictionary.Metadata{VarLabels: map[string]string{"age": "Age in years"}}
//	err := savio.Write("people.sav", tbl, md)
//
// Reading it back:
//
//	tbl, md, err := savio.Read("people.sav", savio.WithColumns(session.Names{"age"}))
//
// Reading in chunks:
//
//	r, _ := savio.ReadChunks("people.sav", 10000)
//	defer r.Close()
//	for chunk, err := range r.All() {
//	    ...
//	}
//
// # Package Structure
//
// The functions here wrap one session.Session each. The session package
// drives any engine.Engine through its life cycle; the default engine is
// engine/fileengine.
package savio

import (
	"errors"
	"fmt"
	"iter"
	"path/filepath"

	"github.com/arloliu/savio/config"
	"github.com/arloliu/savio/dictionary"
	"github.com/arloliu/savio/engine"
	"github.com/arloliu/savio/engine/fileengine"
	"github.com/arloliu/savio/errs"
	"github.com/arloliu/savio/format"
	"github.com/arloliu/savio/internal/logger"
	"github.com/arloliu/savio/internal/options"
	"github.com/arloliu/savio/record"
	"github.com/arloliu/savio/session"
	"github.com/arloliu/savio/table"
)

type settings struct {
	eng engine.Engine
	cfg *config.Config
	log logger.Logger

	columns session.Selector
	offset  int64
	limit   int64

	convertDatetimes   bool
	includeUserMissing bool
	stringNaN          string
	nullEmptyStrings   bool

	locale      *string
	unicode     *bool
	compression *format.Compression

	md          *dictionary.Metadata
	hasMetadata bool
}

// Option configures Read, ReadChunks, ReadMetadata, Write and Append.
type Option = options.Option[*settings]

// WithColumns selects the variables to read. The default reads all.
func WithColumns(sel session.Selector) Option {
	return options.NoError(func(s *settings) {
		s.columns = sel
	})
}

// WithRowOffset skips the first n cases.
func WithRowOffset(n int64) Option {
	return options.New(func(s *settings) error {
		if n < 0 {
			return fmt.Errorf("row offset must not be negative, got %d", n)
		}
		s.offset = n

		return nil
	})
}

// WithRowLimit reads at most n cases. Zero reads to the end.
func WithRowLimit(n int64) Option {
	return options.New(func(s *settings) error {
		if n < 0 {
			return fmt.Errorf("row limit must not be negative, got %d", n)
		}
		s.limit = n

		return nil
	})
}

// WithConvertDatetimes controls whether date, time and datetime variables
// are read as calendar values (the default) or raw seconds.
func WithConvertDatetimes(convert bool) Option {
	return options.NoError(func(s *settings) {
		s.convertDatetimes = convert
	})
}

// WithIncludeUserMissing controls whether user-missing codes are kept
// (the default) or read as nulls.
func WithIncludeUserMissing(include bool) Option {
	return options.NoError(func(s *settings) {
		s.includeUserMissing = include
	})
}

// WithStringNaN replaces empty strings read from the file with v.
func WithStringNaN(v string) Option {
	return options.NoError(func(s *settings) {
		s.stringNaN = v
	})
}

// WithNullEmptyStrings reads empty strings as nulls.
func WithNullEmptyStrings(null bool) Option {
	return options.NoError(func(s *settings) {
		s.nullEmptyStrings = null
	})
}

// WithLocale overrides the configured locale.
func WithLocale(locale string) Option {
	return options.NoError(func(s *settings) {
		s.locale = &locale
	})
}

// WithUnicode overrides whether new files store UTF-8 text. With Unicode
// off, text is stored in the codepage named after the dot of the locale,
// so the default locale "en_US.UTF-8" still yields UTF-8. Pair it with
// WithLocale, e.g. "en_US.windows-1252", to write a codepage file.
func WithUnicode(unicode bool) Option {
	return options.NoError(func(s *settings) {
		s.unicode = &unicode
	})
}

// WithEngine replaces the default file engine.
func WithEngine(eng engine.Engine) Option {
	return options.New(func(s *settings) error {
		if eng == nil {
			return errors.New("nil engine")
		}
		s.eng = eng

		return nil
	})
}

// WithLogger sets the logger. The default comes from the configuration.
func WithLogger(l logger.Logger) Option {
	return options.NoError(func(s *settings) {
		s.log = l
	})
}

// WithConfig sets the configuration. The default is config.Default().
func WithConfig(cfg *config.Config) Option {
	return options.New(func(s *settings) error {
		if cfg == nil {
			return errors.New("nil config")
		}

		if err := cfg.Validate(); err != nil {
			return err
		}
		s.cfg = cfg

		return nil
	})
}

// WithCompression sets the compression of written files, overriding the
// one implied by the file extension.
func WithCompression(c format.Compression) Option {
	return options.New(func(s *settings) error {
		if !c.Valid() {
			return fmt.Errorf("%w: compression switch %d", errs.ErrUnsupportedFormat, c)
		}
		s.compression = &c

		return nil
	})
}

// WithMetadata passes metadata as an option. Append rejects it.
func WithMetadata(md *dictionary.Metadata) Option {
	return options.NoError(func(s *settings) {
		s.md = md
		s.hasMetadata = true
	})
}

func newSettings(opts []Option) (*settings, error) {
	s := &settings{convertDatetimes: true, includeUserMissing: true}
	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	if s.cfg == nil {
		s.cfg = config.Default()
	}

	if s.log == nil {
		s.log = s.cfg.Logger()
	}

	if s.eng == nil {
		eng, err := fileengine.New(fileengine.WithBlockCases(s.cfg.BlockCases))
		if err != nil {
			return nil, err
		}
		s.eng = eng
	}

	return s, nil
}

func (s *settings) newSession() (*session.Session, error) {
	defaults, err := s.cfg.Defaults()
	if err != nil {
		return nil, err
	}

	locale, unicode := s.cfg.Locale, s.cfg.Unicode
	if s.locale != nil {
		locale = *s.locale
	}
	if s.unicode != nil {
		unicode = *s.unicode
	}

	opts := []session.Option{
		session.WithLogger(s.log),
		session.WithShowWarnings(s.cfg.ShowWarnings),
		session.WithLocale(locale),
		session.WithUnicode(unicode),
		session.WithDefaults(defaults),
		session.WithDecodeConfig(record.DecodeConfig{
			ConvertDatetimes:   s.convertDatetimes,
			IncludeUserMissing: s.includeUserMissing,
			StringNaN:          s.stringNaN,
			NullEmptyStrings:   s.nullEmptyStrings,
		}),
	}
	if s.compression != nil {
		opts = append(opts, session.WithCompression(*s.compression))
	}

	return session.New(s.eng, opts...)
}

func (s *settings) readRequest() session.ReadRequest {
	return session.ReadRequest{Columns: s.columns, Offset: s.offset, Limit: s.limit}
}

// run executes fn on a new session and closes it. A session already
// closed by a failure is not reported twice.
func run(s *settings, fn func(*session.Session) error) (err error) {
	sess, err := s.newSession()
	if err != nil {
		return err
	}

	defer func() {
		if cerr := sess.Close(); cerr != nil && !errors.Is(cerr, errs.ErrSessionClosed) && err == nil {
			err = cerr
		}
	}()

	return fn(sess)
}

// Read reads the selected cases and variables of path into a table and
// returns the metadata of the selected variables.
func Read(path string, opts ...Option) (*table.Table, *dictionary.Metadata, error) {
	s, err := newSettings(opts)
	if err != nil {
		return nil, nil, err
	}

	var (
		tbl *table.Table
		md  *dictionary.Metadata
	)
	err = run(s, func(sess *session.Session) error {
		if err := sess.OpenRead(path, s.readRequest()); err != nil {
			return err
		}

		var err error
		if md, err = sess.Metadata(); err != nil {
			return err
		}
		tbl, err = sess.ReadAll()

		return err
	})
	if err != nil {
		return nil, nil, err
	}

	return tbl, md, nil
}

// ReadMetadata returns the metadata of path without reading any case.
func ReadMetadata(path string, opts ...Option) (*dictionary.Metadata, error) {
	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}

	var md *dictionary.Metadata
	err = run(s, func(sess *session.Session) error {
		if err := sess.OpenRead(path, s.readRequest()); err != nil {
			return err
		}

		var err error
		md, err = sess.Metadata()

		return err
	})
	if err != nil {
		return nil, err
	}

	return md, nil
}

// ChunkReader reads a file in tables of at most Size rows. It holds the
// file open, and shared lock, until Close.
type ChunkReader struct {
	sess *session.Session
	size int
	md   *dictionary.Metadata
}

// ReadChunks opens path for chunked reading.
func ReadChunks(path string, chunkSize int, opts ...Option) (*ChunkReader, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}

	s, err := newSettings(opts)
	if err != nil {
		return nil, err
	}

	sess, err := s.newSession()
	if err != nil {
		return nil, err
	}

	if err := sess.OpenRead(path, s.readRequest()); err != nil {
		return nil, err
	}

	md, err := sess.Metadata()
	if err != nil {
		_ = sess.Close()
		return nil, err
	}

	return &ChunkReader{sess: sess, size: chunkSize, md: md}, nil
}

// Size returns the maximum number of rows per chunk.
func (r *ChunkReader) Size() int {
	return r.size
}

// Metadata returns the metadata of the selected variables.
func (r *ChunkReader) Metadata() *dictionary.Metadata {
	return r.md
}

// Next returns the next chunk, or io.EOF once the range is exhausted.
func (r *ChunkReader) Next() (*table.Table, error) {
	return r.sess.Next(r.size)
}

// All yields the remaining chunks in order and stops after the first
// error.
func (r *ChunkReader) All() iter.Seq2[*table.Table, error] {
	return r.sess.Chunks(r.size)
}

// Close releases the file. It is safe to call after a failed Next.
func (r *ChunkReader) Close() error {
	if err := r.sess.Close(); err != nil && !errors.Is(err, errs.ErrSessionClosed) {
		return err
	}

	return nil
}

// Write creates path from tbl and md. md may be nil; WithMetadata is used
// when it is. Compression follows the extension, .sav for the standard
// switch and .zsav for zlib, unless WithCompression is given.
func Write(path string, tbl *table.Table, md *dictionary.Metadata, opts ...Option) error {
	s, err := newSettings(opts)
	if err != nil {
		return err
	}

	if md == nil {
		md = s.md
	}

	if s.compression == nil {
		if c, ok := format.CompressionForExtension(filepath.Ext(path)); ok {
			s.compression = &c
		}
	}

	return run(s, func(sess *session.Session) error {
		if err := sess.OpenWrite(path, tbl, md); err != nil {
			return err
		}

		return sess.WriteRows(tbl)
	})
}

// Append adds the rows of tbl to the existing file path. Columns are
// matched to variables by name. The dictionary of an existing file is
// sealed, so WithMetadata fails with errs.ErrAppendMetadata.
func Append(path string, tbl *table.Table, opts ...Option) error {
	s, err := newSettings(opts)
	if err != nil {
		return err
	}

	if s.hasMetadata {
		return errs.ErrAppendMetadata
	}

	return run(s, func(sess *session.Session) error {
		if err := sess.OpenAppend(path); err != nil {
			return err
		}

		return sess.WriteRows(tbl)
	})
}
