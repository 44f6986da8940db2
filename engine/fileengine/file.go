package fileengine

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/arloliu/savio/compress"
	"github.com/arloliu/savio/endian"
	"github.com/arloliu/savio/engine"
	"github.com/arloliu/savio/format"
	"github.com/arloliu/savio/internal/hash"
	"github.com/arloliu/savio/internal/pool"
)

// statusErr attaches st to an underlying error so both stay matchable.
func statusErr(st format.Status, err error) error {
	return fmt.Errorf("%w: %w", st, err)
}

type blockInfo struct {
	offset int64 // offset of the block header
	first  int64 // number of the first case
	header blockHeader
}

// file is the state of one open handle.
type file struct {
	path      string
	mode      engine.Mode
	f         *os.File
	header    fileHeader
	dict      *dictRecord
	order     endian.EndianEngine
	committed bool

	// write and append state
	standard     compress.Algorithm
	blockCases   int
	pending      *pool.ByteBuffer
	pendingCases int
	end          int64

	// read state
	blocks  []blockInfo
	cursor  int64
	current int
	data    []byte
}

func createFile(path string, cfg engine.Config, e *Engine) (*file, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, statusErr(format.StatusFileOError, err)
	}

	// Truncate only once the lock is held.
	if err := lockFile(f, true); err != nil {
		_ = f.Close()
		return nil, statusErr(format.StatusFileOError, err)
	}

	if err := f.Truncate(0); err != nil {
		_ = unlockFile(f)
		_ = f.Close()
		return nil, statusErr(format.StatusFileOError, err)
	}

	fl := &file{
		path:       path,
		mode:       engine.ModeWrite,
		f:          f,
		header:     newFileHeader(e.byteOrder, format.CompressionStandard),
		dict:       newDictRecord(cfg.Encoding()),
		standard:   e.standard,
		blockCases: e.blockCases,
		current:    -1,
	}
	fl.order = fl.header.engine()

	// Placeholder until the dictionary is committed.
	if _, err := f.WriteAt(fl.header.Bytes(), 0); err != nil {
		fl.release()
		return nil, statusErr(format.StatusFileWError, err)
	}

	return fl, nil
}

func openFile(path string, mode engine.Mode, e *Engine) (*file, error) {
	flag := os.O_RDONLY
	if mode == engine.ModeAppend {
		flag = os.O_RDWR
	}

	f, err := os.OpenFile(path, flag, 0)
	if err != nil {
		return nil, statusErr(format.StatusFileOError, err)
	}

	if err := lockFile(f, mode == engine.ModeAppend); err != nil {
		_ = f.Close()
		return nil, statusErr(format.StatusFileOError, err)
	}

	fl := &file{
		path:       path,
		mode:       mode,
		f:          f,
		committed:  true,
		standard:   e.standard,
		blockCases: e.blockCases,
		current:    -1,
	}

	if err := fl.load(); err != nil {
		fl.release()
		return nil, err
	}

	return fl, nil
}

// load reads the header, the dictionary and the block index.
func (fl *file) load() error {
	info, err := fl.f.Stat()
	if err != nil {
		return statusErr(format.StatusFileRError, err)
	}
	size := info.Size()

	buf := make([]byte, HeaderSize)
	if _, err := fl.f.ReadAt(buf, 0); err != nil {
		return statusErr(format.StatusInvalidFile, err)
	}

	if err := fl.header.Parse(buf); err != nil {
		return statusErr(format.StatusInvalidFile, err)
	}
	fl.order = fl.header.engine()

	if fl.header.DictLen == 0 || int64(HeaderSize)+int64(fl.header.DictLen) > size {
		return statusErr(format.StatusNoType999, errors.New("dictionary record missing"))
	}

	raw := make([]byte, fl.header.DictLen)
	if _, err := fl.f.ReadAt(raw, HeaderSize); err != nil {
		return statusErr(format.StatusFileRError, err)
	}

	if fl.dict, err = unmarshalDict(raw, fl.header.DictSum); err != nil {
		return statusErr(format.StatusInvalidFile, err)
	}

	if fl.dict.caseSize() != int(fl.header.CaseSize) {
		return statusErr(format.StatusInvalidFile, errors.New("case size does not match dictionary"))
	}

	offset := int64(HeaderSize) + int64(fl.header.DictLen)
	var cases int64
	hdr := make([]byte, BlockHeaderSize)
	for range fl.header.BlockCount {
		if _, err := fl.f.ReadAt(hdr, offset); err != nil {
			return statusErr(format.StatusInvalidFile, err)
		}

		var bh blockHeader
		if err := bh.Parse(hdr, fl.order); err != nil {
			return statusErr(format.StatusInvalidFile, err)
		}

		next := offset + BlockHeaderSize + int64(bh.StoredLen)
		if next > size || int64(bh.RawLen) != int64(bh.Cases)*int64(fl.header.CaseSize) {
			return statusErr(format.StatusInvalidFile, fmt.Errorf("block at offset %d is truncated", offset))
		}

		fl.blocks = append(fl.blocks, blockInfo{offset: offset, first: cases, header: bh})
		cases += int64(bh.Cases)
		offset = next
	}

	if cases != int64(fl.header.CaseCount) {
		return statusErr(format.StatusInvalidFile, fmt.Errorf("blocks hold %d cases, header says %d", cases, fl.header.CaseCount))
	}
	fl.end = offset

	return nil
}

// dictWritable reports whether dictionary setters are allowed.
func (fl *file) dictWritable() error {
	switch {
	case fl.mode == engine.ModeRead:
		return format.StatusOpenRDMode
	case fl.committed:
		return format.StatusDictCommit
	default:
		return nil
	}
}

// commit writes the dictionary after the header.
func (fl *file) commit() error {
	if err := fl.dictWritable(); err != nil {
		return err
	}

	if len(fl.dict.Variables) == 0 {
		return format.StatusDictEmpty
	}

	raw, sum, err := fl.dict.marshal()
	if err != nil {
		return statusErr(format.StatusInternalDA, err)
	}

	fl.header.CaseSize = uint32(fl.dict.caseSize())
	fl.header.DictLen = uint32(len(raw))
	fl.header.DictSum = sum

	if _, err := fl.f.WriteAt(fl.header.Bytes(), 0); err != nil {
		return statusErr(format.StatusFileWError, err)
	}

	if _, err := fl.f.WriteAt(raw, HeaderSize); err != nil {
		return statusErr(format.StatusFileWError, err)
	}

	fl.end = int64(HeaderSize) + int64(len(raw))
	fl.committed = true

	return nil
}

func (fl *file) writeCase(buf []byte) error {
	switch {
	case fl.mode == engine.ModeRead:
		return format.StatusOpenRDMode
	case !fl.committed:
		return format.StatusDictNotCommit
	case len(buf) != int(fl.header.CaseSize):
		return format.StatusInvalidCase
	}

	if fl.pending == nil {
		fl.pending = pool.GetBlockBuffer()
	}

	_, _ = fl.pending.Write(buf)
	fl.pendingCases++

	if fl.pendingCases >= fl.blockCases {
		return fl.flush()
	}

	return nil
}

// flush writes the pending cases as one block.
func (fl *file) flush() error {
	if fl.pendingCases == 0 {
		return nil
	}

	alg, err := compress.ForSwitch(format.Compression(fl.header.Compression), fl.standard)
	if err != nil {
		return statusErr(format.StatusInvalidCompSw, err)
	}

	codec, err := compress.GetCodec(alg)
	if err != nil {
		return statusErr(format.StatusInvalidCompSw, err)
	}

	raw := fl.pending.Bytes()
	payload, err := codec.Compress(raw)
	if err != nil {
		return statusErr(format.StatusFileWError, err)
	}

	bh := blockHeader{
		Cases:     uint32(fl.pendingCases),
		RawLen:    uint32(len(raw)),
		StoredLen: uint32(len(payload)),
		Algorithm: uint8(alg),
		Checksum:  hash.Sum64(raw),
	}

	out := bh.AppendBytes(make([]byte, 0, BlockHeaderSize+len(payload)), fl.order)
	out = append(out, payload...)
	if _, err := fl.f.WriteAt(out, fl.end); err != nil {
		return statusErr(format.StatusFileWError, err)
	}

	fl.end += int64(len(out))
	fl.header.BlockCount++
	fl.header.CaseCount += uint64(fl.pendingCases)
	fl.pending.Reset()
	fl.pendingCases = 0

	return nil
}

func (fl *file) caseCount() int64 {
	return int64(fl.header.CaseCount) + int64(fl.pendingCases)
}

func (fl *file) seek(n int64) error {
	if fl.mode != engine.ModeRead {
		return format.StatusOpenWRMode
	}

	if n < 0 || n > fl.caseCount() {
		return format.StatusInvalidCase
	}
	fl.cursor = n

	return nil
}

func (fl *file) readCase(buf []byte) error {
	if fl.mode != engine.ModeRead {
		return format.StatusOpenWRMode
	}

	size := int64(fl.header.CaseSize)
	if int64(len(buf)) < size {
		return format.StatusBufferShort
	}

	if fl.cursor >= fl.caseCount() {
		return format.StatusFileEnd
	}

	if !fl.inCurrent(fl.cursor) {
		i := sort.Search(len(fl.blocks), func(i int) bool {
			b := fl.blocks[i]
			return b.first+int64(b.header.Cases) > fl.cursor
		})

		if err := fl.loadBlock(i); err != nil {
			return err
		}
	}

	start := (fl.cursor - fl.blocks[fl.current].first) * size
	copy(buf, fl.data[start:start+size])
	fl.cursor++

	return nil
}

func (fl *file) inCurrent(n int64) bool {
	if fl.current < 0 {
		return false
	}
	b := fl.blocks[fl.current]

	return n >= b.first && n < b.first+int64(b.header.Cases)
}

func (fl *file) loadBlock(i int) error {
	b := fl.blocks[i]

	payload := make([]byte, b.header.StoredLen)
	if _, err := fl.f.ReadAt(payload, b.offset+BlockHeaderSize); err != nil && !errors.Is(err, io.EOF) {
		return statusErr(format.StatusFileRError, err)
	}

	codec, err := compress.GetCodec(compress.Algorithm(b.header.Algorithm))
	if err != nil {
		return statusErr(format.StatusFileRError, err)
	}

	data, err := codec.Decompress(payload)
	if err != nil {
		return statusErr(format.StatusFileRError, err)
	}

	if len(data) != int(b.header.RawLen) || hash.Sum64(data) != b.header.Checksum {
		return statusErr(format.StatusFileRError, fmt.Errorf("block %d: %w", i, errChecksum))
	}

	fl.current = i
	fl.data = data

	return nil
}

// close flushes pending cases, rewrites the header and releases the file.
func (fl *file) close() error {
	var err error
	if fl.mode != engine.ModeRead && fl.committed {
		if err = fl.flush(); err == nil {
			if _, werr := fl.f.WriteAt(fl.header.Bytes(), 0); werr != nil {
				err = statusErr(format.StatusFileWError, werr)
			}
		}
	}

	if rerr := fl.release(); err == nil && rerr != nil {
		err = statusErr(format.StatusFileWError, rerr)
	}

	return err
}

func (fl *file) release() error {
	if fl.pending != nil {
		pool.PutBlockBuffer(fl.pending)
		fl.pending = nil
	}
	fl.data = nil

	_ = unlockFile(fl.f)

	return fl.f.Close()
}

var (
	sysmis  = -math.MaxFloat64
	lowest  = math.Nextafter(-math.MaxFloat64, 0)
	highest = math.MaxFloat64
)
