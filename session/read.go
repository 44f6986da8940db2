package session

import (
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/arloliu/savio/dictionary"
	"github.com/arloliu/savio/engine"
	"github.com/arloliu/savio/format"
	"github.com/arloliu/savio/record"
	"github.com/arloliu/savio/table"
)

// ReadRequest selects what a read session returns.
type ReadRequest struct {
	// Columns selects the variables to decode. nil selects all.
	Columns Selector
	// Offset is the first case to read. Offsets past the last case yield
	// empty reads.
	Offset int64
	// Limit caps the number of cases read. Zero or less reads to the end.
	Limit int64
}

// OpenRead opens path, loads its dictionary and positions the cursor at
// the requested offset.
func (s *Session) OpenRead(path string, req ReadRequest) error {
	if err := s.open(path, engine.ModeRead); err != nil {
		return err
	}

	if err := s.startRead(req); err != nil {
		return s.fail(err)
	}

	return nil
}

func (s *Session) startRead(req ReadRequest) error {
	dict, err := dictionary.Load(s.eng, s.handle, s.check)
	if err != nil {
		return fmt.Errorf("load dictionary: %w", err)
	}
	s.dict = dict

	sel := req.Columns
	if sel == nil {
		sel = All{}
	}

	names, err := sel.Select(dict.Names())
	if err != nil {
		return err
	}

	if s.layout, err = record.NewLayout(dict.Variables(), names); err != nil {
		return err
	}

	info := dict.Info()
	if s.layout.CaseSize() != info.CaseSize {
		return fmt.Errorf("case size %d does not match the dictionary layout of %d bytes: %w",
			info.CaseSize, s.layout.CaseSize(), engine.Check("CaseSize", format.StatusInvalidFile))
	}

	if err := s.prepare(); err != nil {
		return err
	}

	s.cursor = min(max(req.Offset, 0), info.CaseCount)
	s.end = info.CaseCount
	if req.Limit > 0 {
		s.end = min(s.cursor+req.Limit, info.CaseCount)
	}

	if s.cursor > 0 {
		if err := s.check.Check("SeekNextCase", s.eng.SeekNextCase(s.handle, s.cursor)); err != nil {
			return err
		}
	}

	s.dec = record.NewDecoder(s.layout, s.order, s.text, s.sysmis, s.decode)
	s.buf = make([]byte, s.layout.CaseSize())
	s.state = StateReading

	s.log.Debug("reading cases", "variables", len(names), "first", s.cursor, "end", s.end)

	return nil
}

// Remaining returns the number of cases left in the selected range.
func (s *Session) Remaining() int64 {
	if s.state != StateReading {
		return 0
	}

	return s.end - s.cursor
}

// Next reads up to n cases into a table whose RowOffset is the number of
// its first case. n <= 0 reads the rest of the range. Past the end of the
// range Next returns io.EOF.
func (s *Session) Next(n int) (*table.Table, error) {
	if err := s.expect(StateReading); err != nil {
		return nil, err
	}

	if s.cursor >= s.end {
		return nil, io.EOF
	}

	rows := s.end - s.cursor
	if n > 0 {
		rows = min(rows, int64(n))
	}

	tbl := s.dec.NewTable(int(rows))
	tbl.RowOffset = int(s.cursor)

	for range rows {
		err := s.eng.WholeCaseIn(s.handle, s.buf)
		if engine.IsStatus(err, format.StatusFileEnd) {
			s.end = s.cursor
			break
		}

		if err := s.check.Check("WholeCaseIn", err); err != nil {
			return nil, s.fail(fmt.Errorf("case %d: %w", s.cursor, err))
		}

		if err := s.dec.DecodeInto(s.buf, tbl); err != nil {
			return nil, s.fail(fmt.Errorf("case %d: %w", s.cursor, err))
		}
		s.cursor++
	}

	return tbl, nil
}

// ReadAll reads the rest of the selected range into one table. An
// exhausted or empty range yields an empty table.
func (s *Session) ReadAll() (*table.Table, error) {
	tbl, err := s.Next(0)
	if errors.Is(err, io.EOF) {
		tbl = s.dec.NewTable(0)
		tbl.RowOffset = int(s.cursor)

		return tbl, nil
	}

	return tbl, err
}

// Chunks yields tables of at most n rows until the range is exhausted.
// The sequence is forward-only and stops after the first error.
func (s *Session) Chunks(n int) iter.Seq2[*table.Table, error] {
	return func(yield func(*table.Table, error) bool) {
		if n <= 0 {
			yield(nil, fmt.Errorf("chunk size must be positive, got %d", n))
			return
		}

		for {
			tbl, err := s.Next(n)
			if errors.Is(err, io.EOF) {
				return
			}

			if !yield(tbl, err) || err != nil {
				return
			}
		}
	}
}
