// Package session drives a codec engine through the life cycle of one
// open file: open, load or commit the dictionary, move cases, close.
//
// A Session moves through Created → Open → Reading|Writing|Appending →
// Closed. Closed is terminal; every call after it fails with
// errs.ErrSessionClosed. Any error raised while a handle is open closes
// the handle before it is returned, so the file lock is always released.
//
// A Session is not safe for concurrent use. Sessions sharing an engine
// may run concurrently.
package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/arloliu/savio/dictionary"
	"github.com/arloliu/savio/endian"
	"github.com/arloliu/savio/engine"
	"github.com/arloliu/savio/errs"
	"github.com/arloliu/savio/format"
	"github.com/arloliu/savio/internal/logger"
	"github.com/arloliu/savio/internal/options"
	"github.com/arloliu/savio/record"
	"github.com/arloliu/savio/schema"
)

// State is the life-cycle state of a Session.
type State uint8

const (
	StateCreated State = iota
	StateOpen
	StateReading
	StateWriting
	StateAppending
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateOpen:
		return "open"
	case StateReading:
		return "reading"
	case StateWriting:
		return "writing"
	case StateAppending:
		return "appending"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Session owns one engine handle.
type Session struct {
	id    string
	eng   engine.Engine
	log   logger.Logger
	check engine.Checker

	state  State
	path   string
	handle engine.Handle

	dict   *dictionary.Dictionary
	layout *record.Layout
	order  endian.EndianEngine
	text   *record.Text
	sysmis float64

	// read state
	dec    *record.Decoder
	buf    []byte
	cursor int64
	end    int64

	// write and append state
	enc     *record.Encoder
	written int64

	// configuration
	cfg          engine.Config
	showWarnings bool
	defaults     schema.Defaults
	decode       record.DecodeConfig
	compression  *format.Compression
}

// Option configures a Session.
type Option = options.Option[*Session]

// WithLogger sets the logger. The default drops everything.
func WithLogger(l logger.Logger) Option {
	return options.NoError(func(s *Session) {
		if l != nil {
			s.log = l
		}
	})
}

// WithShowWarnings logs engine warning statuses at warn level.
func WithShowWarnings(show bool) Option {
	return options.NoError(func(s *Session) {
		s.showWarnings = show
	})
}

// WithLocale sets the locale passed to the engine.
func WithLocale(locale string) Option {
	return options.NoError(func(s *Session) {
		s.cfg.Locale = locale
	})
}

// WithUnicode selects UTF-8 text for new files. Otherwise the codepage
// comes from the locale suffix, which is UTF-8 for the default locale.
func WithUnicode(unicode bool) Option {
	return options.NoError(func(s *Session) {
		s.cfg.Unicode = unicode
	})
}

// WithDefaults sets the formats applied to columns without one.
func WithDefaults(d schema.Defaults) Option {
	return options.NoError(func(s *Session) {
		s.defaults = d
	})
}

// WithDecodeConfig sets how read values are converted.
func WithDecodeConfig(cfg record.DecodeConfig) Option {
	return options.NoError(func(s *Session) {
		s.decode = cfg
	})
}

// WithCompression sets the compression of files created by OpenWrite.
func WithCompression(c format.Compression) Option {
	return options.New(func(s *Session) error {
		if !c.Valid() {
			return fmt.Errorf("%w: compression switch %d", errs.ErrUnsupportedFormat, c)
		}
		s.compression = &c

		return nil
	})
}

// New creates a session over eng in the Created state.
func New(eng engine.Engine, opts ...Option) (*Session, error) {
	if eng == nil {
		return nil, errors.New("session: nil engine")
	}

	s := &Session{
		id:       uuid.NewString(),
		eng:      eng,
		log:      logger.Discard(),
		cfg:      engine.Config{Unicode: true},
		defaults: schema.DefaultFormats(),
		decode:   record.DecodeConfig{ConvertDatetimes: true, IncludeUserMissing: true},
	}

	if err := options.Apply(s, opts...); err != nil {
		return nil, err
	}

	s.log = s.log.With("session_id", s.id)
	s.check = engine.Checker{OnWarning: s.warn}

	return s, nil
}

func (s *Session) warn(call string, st format.Status) {
	if s.showWarnings {
		s.log.Warn("engine warning", "call", call, "status", int(st), "message", st.Error())
	}
}

// ID returns the session id used in log records.
func (s *Session) ID() string {
	return s.id
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Dictionary returns the file dictionary, or nil before one is loaded or
// built.
func (s *Session) Dictionary() *dictionary.Dictionary {
	return s.dict
}

// Metadata returns the exchange form of the dictionary. For read
// sessions it lists only the selected variables.
func (s *Session) Metadata() (*dictionary.Metadata, error) {
	if err := s.usable(); err != nil {
		return nil, err
	}

	if s.dict == nil {
		return nil, fmt.Errorf("%w: no dictionary in state %s", errs.ErrInvalidState, s.state)
	}

	md := s.dict.Metadata()
	if s.state == StateReading {
		names := make([]string, 0, len(s.layout.Selected()))
		for _, f := range s.layout.Selected() {
			names = append(names, f.Name)
		}
		md = md.Subset(names)
	}

	return md, nil
}

// SetMetadata is rejected while appending: the dictionary of an existing
// file is sealed.
func (s *Session) SetMetadata(md *dictionary.Metadata) error {
	if err := s.usable(); err != nil {
		return err
	}

	switch s.state { //nolint: exhaustive
	case StateAppending:
		return errs.ErrAppendMetadata
	case StateWriting, StateReading:
		return errs.ErrHeaderCommitted
	default:
		return fmt.Errorf("%w: metadata is given to OpenWrite", errs.ErrInvalidState)
	}
}

func (s *Session) usable() error {
	if s.state == StateClosed {
		return errs.ErrSessionClosed
	}

	return nil
}

func (s *Session) expect(want State) error {
	if err := s.usable(); err != nil {
		return err
	}

	if s.state != want {
		return fmt.Errorf("%w: session is %s, expected %s", errs.ErrInvalidState, s.state, want)
	}

	return nil
}

// open opens the engine handle for path.
func (s *Session) open(path string, mode engine.Mode) error {
	if err := s.expect(StateCreated); err != nil {
		return err
	}

	h, err := s.eng.Open(path, mode, s.cfg)
	if err := s.check.Check("Open", err); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	s.handle = h
	s.path = path
	s.state = StateOpen
	s.log = s.log.With("path", path)
	s.log.Debug("session opened", "mode", mode.String())

	return nil
}

// prepare loads the text encoding and byte order of the open file.
func (s *Session) prepare() error {
	enc, err := s.eng.FileEncoding(s.handle)
	if err := s.check.Check("FileEncoding", err); err != nil {
		return err
	}

	if s.text, err = record.LookupText(enc); err != nil {
		return err
	}

	info, err := s.eng.ReleaseInfo(s.handle)
	if err := s.check.Check("ReleaseInfo", err); err != nil {
		return err
	}

	s.order = endian.ForByteOrder(info.ByteOrder)
	s.sysmis = s.eng.SysmisValue()

	return nil
}

// fail closes the handle after err and returns err.
func (s *Session) fail(err error) error {
	if s.state == StateClosed {
		return err
	}

	if cerr := s.release(); cerr != nil {
		s.log.Warn("close after error failed", "error", cerr)
	}

	return err
}

// Close flushes and closes the engine handle. It may be called in any
// open state; a second call returns errs.ErrSessionClosed.
func (s *Session) Close() error {
	if err := s.usable(); err != nil {
		return err
	}

	return s.release()
}

func (s *Session) release() error {
	prev := s.state
	s.state = StateClosed

	if s.enc != nil {
		s.enc.Close()
		s.enc = nil
	}
	s.buf = nil

	if prev == StateCreated {
		return nil
	}

	err := s.check.Check("Close", s.eng.Close(s.handle))
	s.log.Debug("session closed", "state", prev.String(), "cases_written", s.written)

	return err
}
