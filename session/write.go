package session

import (
	"fmt"

	"github.com/arloliu/savio/dictionary"
	"github.com/arloliu/savio/engine"
	"github.com/arloliu/savio/errs"
	"github.com/arloliu/savio/record"
	"github.com/arloliu/savio/table"
)

// OpenWrite creates path with a dictionary built from the columns of tbl
// and md, and commits the header. md may be nil. The dictionary is
// validated before the file is touched.
func (s *Session) OpenWrite(path string, tbl *table.Table, md *dictionary.Metadata) error {
	if err := s.expect(StateCreated); err != nil {
		return err
	}

	text, err := record.LookupText(s.cfg.Encoding())
	if err != nil {
		return err
	}

	dict, err := dictionary.Build(tbl, md, s.defaults, dictionary.WithText(text))
	if err != nil {
		return err
	}

	if s.compression != nil {
		if err := dict.SetCompression(*s.compression); err != nil {
			return err
		}
	}

	if err := s.open(path, engine.ModeWrite); err != nil {
		return err
	}

	if err := s.startWrite(dict); err != nil {
		return s.fail(err)
	}

	return nil
}

func (s *Session) startWrite(dict *dictionary.Dictionary) error {
	if err := dict.Commit(s.eng, s.handle, s.check); err != nil {
		return fmt.Errorf("commit dictionary: %w", err)
	}
	s.dict = dict
	s.log.Debug("header committed", "variables", dict.Len(), "compression", dict.Info().Compression.String())

	if err := s.startEncoder(); err != nil {
		return err
	}
	s.state = StateWriting

	return nil
}

// OpenAppend opens the existing file path for appending. Its dictionary
// is loaded and sealed; tables written later are matched to it by
// column name.
func (s *Session) OpenAppend(path string) error {
	if err := s.open(path, engine.ModeAppend); err != nil {
		return err
	}

	if err := s.startAppend(); err != nil {
		return s.fail(err)
	}

	return nil
}

func (s *Session) startAppend() error {
	dict, err := dictionary.Load(s.eng, s.handle, s.check)
	if err != nil {
		return fmt.Errorf("load dictionary: %w", err)
	}
	dict.SealForAppend()
	s.dict = dict

	if err := s.startEncoder(); err != nil {
		return err
	}
	s.state = StateAppending

	s.log.Debug("appending cases", "variables", dict.Len(), "existing", dict.Info().CaseCount)

	return nil
}

func (s *Session) startEncoder() error {
	layout, err := record.NewLayout(s.dict.Variables(), nil)
	if err != nil {
		return err
	}
	s.layout = layout

	if err := s.prepare(); err != nil {
		return err
	}

	s.enc = record.NewEncoder(layout, s.order, s.text, s.sysmis)

	return nil
}

// WriteRows encodes the rows of tbl and writes them in order. Columns
// are matched to variables by name; variables without a column are
// written as missing. A failed row closes the session.
func (s *Session) WriteRows(tbl *table.Table) error {
	if err := s.usable(); err != nil {
		return err
	}

	if s.state != StateWriting && s.state != StateAppending {
		return fmt.Errorf("%w: cannot write rows while %s", errs.ErrInvalidState, s.state)
	}

	if err := tbl.Validate(); err != nil {
		return err
	}

	if err := s.enc.Bind(s.canonical(tbl.Names())); err != nil {
		return s.fail(err)
	}

	for i := range tbl.NumRows() {
		buf, err := s.enc.Encode(tbl.Row(i), i)
		if err != nil {
			return s.fail(err)
		}

		if err := s.check.Check("WholeCaseOut", s.eng.WholeCaseOut(s.handle, buf)); err != nil {
			return s.fail(fmt.Errorf("row %d: %w", i, err))
		}
		s.written++
	}

	return nil
}

// canonical maps column names to the dictionary's spelling. Unknown
// names are kept so Bind reports them.
func (s *Session) canonical(names []string) []string {
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = name
		if v, err := s.dict.Variable(name); err == nil {
			out[i] = v.Name
		}
	}

	return out
}

// Written returns the number of cases written by this session.
func (s *Session) Written() int64 {
	return s.written
}
