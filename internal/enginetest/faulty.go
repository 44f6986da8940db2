// Package enginetest provides engine wrappers for failure-path tests.
package enginetest

import (
	"sync"

	"github.com/arloliu/savio/engine"
	"github.com/arloliu/savio/format"
)

// Faulty wraps an engine and injects failures into selected calls. It
// also counts open handles so tests can assert that every handle is
// released.
type Faulty struct {
	engine.Engine

	mu   sync.Mutex
	open map[engine.Handle]struct{}

	// OpenErr fails Open.
	OpenErr error
	// CommitErr fails CommitHeader.
	CommitErr error
	// ReadErr fails WholeCaseIn once ReadAfter cases have been read.
	ReadErr   error
	ReadAfter int
	// WriteErr fails WholeCaseOut once WriteAfter cases have been written.
	WriteErr   error
	WriteAfter int

	reads  int
	writes int
}

// NewFaulty wraps e.
func NewFaulty(e engine.Engine) *Faulty {
	return &Faulty{Engine: e, open: make(map[engine.Handle]struct{})}
}

// OpenHandles returns the number of handles opened and not yet closed.
func (f *Faulty) OpenHandles() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.open)
}

func (f *Faulty) Open(path string, mode engine.Mode, cfg engine.Config) (engine.Handle, error) {
	if f.OpenErr != nil {
		return 0, f.OpenErr
	}

	h, err := f.Engine.Open(path, mode, cfg)
	if err != nil {
		return h, err
	}

	f.mu.Lock()
	f.open[h] = struct{}{}
	f.mu.Unlock()

	return h, nil
}

func (f *Faulty) Close(h engine.Handle) error {
	f.mu.Lock()
	delete(f.open, h)
	f.mu.Unlock()

	return f.Engine.Close(h)
}

func (f *Faulty) CommitHeader(h engine.Handle) error {
	if f.CommitErr != nil {
		return f.CommitErr
	}

	return f.Engine.CommitHeader(h)
}

func (f *Faulty) WholeCaseIn(h engine.Handle, buf []byte) error {
	if f.ReadErr != nil && f.reads >= f.ReadAfter {
		return f.ReadErr
	}
	f.reads++

	return f.Engine.WholeCaseIn(h, buf)
}

func (f *Faulty) WholeCaseOut(h engine.Handle, buf []byte) error {
	if f.WriteErr != nil && f.writes >= f.WriteAfter {
		return f.WriteErr
	}
	f.writes++

	return f.Engine.WholeCaseOut(h, buf)
}

// Warn returns an engine whose SetVarLabel reports st as a warning
// after applying the label.
func Warn(e engine.Engine, st format.Status) engine.Engine {
	return &warning{Engine: e, st: st}
}

type warning struct {
	engine.Engine
	st format.Status
}

func (w *warning) SetVarLabel(h engine.Handle, name, label string) error {
	if err := w.Engine.SetVarLabel(h, name, label); err != nil {
		return err
	}

	return w.st
}
