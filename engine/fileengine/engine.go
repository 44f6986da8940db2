// Package fileengine is a codec engine storing data files in its own
// container: a fixed header, a msgpack dictionary record checksummed
// with xxhash, and compressed case blocks.
//
// The engine follows the status conventions of the vendor engine it
// stands in for: dictionaries are written once, cases move only after
// the header is committed, and reads past the last case report
// format.StatusFileEnd. Readers hold a shared lock and writers an
// exclusive one on platforms that support flock.
package fileengine

import (
	"fmt"
	"sync"

	"github.com/arloliu/savio/compress"
	"github.com/arloliu/savio/endian"
	"github.com/arloliu/savio/engine"
	"github.com/arloliu/savio/format"
	"github.com/arloliu/savio/internal/options"
)

// Engine implements engine.Engine. It is safe for concurrent use by
// several sessions, each driving its own handle.
type Engine struct {
	mu    sync.RWMutex
	files map[engine.Handle]*file
	next  engine.Handle

	standard   compress.Algorithm
	blockCases int
	byteOrder  format.ByteOrder
}

var _ engine.Engine = (*Engine)(nil)

// Option configures an Engine.
type Option = options.Option[*Engine]

// WithStandardCodec selects the block codec behind standard compression:
// compress.AlgorithmS2 (the default) or compress.AlgorithmLZ4.
func WithStandardCodec(alg compress.Algorithm) Option {
	return options.New(func(e *Engine) error {
		if _, err := compress.ForSwitch(format.CompressionStandard, alg); err != nil {
			return err
		}
		e.standard = alg

		return nil
	})
}

// WithBlockCases sets the number of cases stored per block.
func WithBlockCases(n int) Option {
	return options.New(func(e *Engine) error {
		if n < 1 {
			return fmt.Errorf("block cases must be positive, got %d", n)
		}
		e.blockCases = n

		return nil
	})
}

// WithByteOrder sets the byte order of new files. The default is the
// native order.
func WithByteOrder(order format.ByteOrder) Option {
	return options.NoError(func(e *Engine) {
		e.byteOrder = order
	})
}

// New creates an engine.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		files:      make(map[engine.Handle]*file),
		next:       1,
		standard:   compress.AlgorithmS2,
		blockCases: DefaultBlockCases,
		byteOrder:  endian.NativeByteOrder(),
	}

	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}

	return e, nil
}

func (e *Engine) lookup(h engine.Handle) (*file, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	fl, ok := e.files[h]
	if !ok {
		return nil, format.StatusInvalidHandle
	}

	return fl, nil
}

// Open opens path in the given mode. Write mode creates or truncates the
// file; read and append modes require an existing one.
func (e *Engine) Open(path string, mode engine.Mode, cfg engine.Config) (engine.Handle, error) {
	var (
		fl  *file
		err error
	)

	switch mode {
	case engine.ModeWrite:
		fl, err = createFile(path, cfg, e)
	case engine.ModeRead, engine.ModeAppend:
		fl, err = openFile(path, mode, e)
	default:
		return 0, format.StatusFileOError
	}

	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	h := e.next
	e.next++
	e.files[h] = fl

	return h, nil
}

// Close flushes and closes h. The handle is released even on error.
func (e *Engine) Close(h engine.Handle) error {
	e.mu.Lock()
	fl, ok := e.files[h]
	delete(e.files, h)
	e.mu.Unlock()

	if !ok {
		return format.StatusInvalidHandle
	}

	return fl.close()
}

// OpenFiles returns the number of open handles.
func (e *Engine) OpenFiles() int {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return len(e.files)
}

func (e *Engine) FileEncoding(h engine.Handle) (string, error) {
	fl, err := e.lookup(h)
	if err != nil {
		return "", err
	}

	return fl.dict.Encoding, nil
}

func (e *Engine) Compression(h engine.Handle) (format.Compression, error) {
	fl, err := e.lookup(h)
	if err != nil {
		return 0, err
	}

	return format.Compression(fl.header.Compression), nil
}

func (e *Engine) SetCompression(h engine.Handle, c format.Compression) error {
	fl, err := e.lookup(h)
	if err != nil {
		return err
	}

	if err := fl.dictWritable(); err != nil {
		return err
	}

	if !c.Valid() {
		return format.StatusInvalidCompSw
	}
	fl.header.Compression = uint8(c)

	return nil
}

func (e *Engine) ReleaseInfo(h engine.Handle) (engine.ReleaseInfo, error) {
	fl, err := e.lookup(h)
	if err != nil {
		return engine.ReleaseInfo{}, err
	}

	rel := fl.dict.Release

	return engine.ReleaseInfo{
		Release:       rel.Release,
		Subrelease:    rel.Subrelease,
		Fixpack:       rel.Fixpack,
		MachineCode:   720,
		FloatingPoint: 1,
		Compression:   int(fl.header.Compression),
		ByteOrder:     fl.header.ByteOrder(),
		CharacterRep:  2,
	}, nil
}

func (e *Engine) CaseCount(h engine.Handle) (int64, error) {
	fl, err := e.lookup(h)
	if err != nil {
		return 0, err
	}

	return fl.caseCount(), nil
}

func (e *Engine) CaseSize(h engine.Handle) (int, error) {
	fl, err := e.lookup(h)
	if err != nil {
		return 0, err
	}

	return fl.dict.caseSize(), nil
}

func (e *Engine) SysmisValue() float64 {
	return sysmis
}

func (e *Engine) LowHighValues() (float64, float64) {
	return lowest, highest
}

func (e *Engine) CommitHeader(h engine.Handle) error {
	fl, err := e.lookup(h)
	if err != nil {
		return err
	}

	return fl.commit()
}

func (e *Engine) SeekNextCase(h engine.Handle, n int64) error {
	fl, err := e.lookup(h)
	if err != nil {
		return err
	}

	return fl.seek(n)
}

func (e *Engine) WholeCaseIn(h engine.Handle, buf []byte) error {
	fl, err := e.lookup(h)
	if err != nil {
		return err
	}

	return fl.readCase(buf)
}

func (e *Engine) WholeCaseOut(h engine.Handle, buf []byte) error {
	fl, err := e.lookup(h)
	if err != nil {
		return err
	}

	return fl.writeCase(buf)
}
