package fileengine

import (
	"errors"

	"github.com/arloliu/savio/endian"
	"github.com/arloliu/savio/format"
)

var (
	errInvalidHeaderSize = errors.New("invalid header size")
	errInvalidMagic      = errors.New("invalid magic number")
	errInvalidVersion    = errors.New("unsupported format version")
)

// fileHeader is the fixed-size header at the start of a data file.
//
// Every field except Options is written in the byte order selected by
// the endianness bit; Options itself is always little-endian.
type fileHeader struct {
	// Options packs the endianness flag (bit 1) and the magic number
	// (bits 4-15).
	Options     uint16 // byte offset 0-1
	Version     uint8  // byte offset 2
	Compression uint8  // byte offset 3
	CaseSize    uint32 // byte offset 4-7
	DictLen     uint32 // byte offset 8-11
	BlockCount  uint32 // byte offset 12-15
	CaseCount   uint64 // byte offset 16-23
	DictSum     uint64 // byte offset 24-31
}

func newFileHeader(order format.ByteOrder, c format.Compression) fileHeader {
	h := fileHeader{Options: MagicV1Opt, Version: FormatVersion, Compression: uint8(c)}
	if order == format.BigEndian {
		h.Options |= EndiannessMask
	}

	return h
}

// ByteOrder returns the byte order of the file.
func (h *fileHeader) ByteOrder() format.ByteOrder {
	if h.Options&EndiannessMask != 0 {
		return format.BigEndian
	}

	return format.LittleEndian
}

func (h *fileHeader) engine() endian.EndianEngine {
	return endian.ForByteOrder(h.ByteOrder())
}

// Parse parses the header from exactly HeaderSize bytes.
func (h *fileHeader) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return errInvalidHeaderSize
	}

	h.Options = uint16(data[0]) | (uint16(data[1]) << 8)
	if h.Options&MagicNumberMask != MagicV1Opt {
		return errInvalidMagic
	}

	h.Version = data[2]
	if h.Version != FormatVersion {
		return errInvalidVersion
	}

	h.Compression = data[3]

	engine := h.engine()
	h.CaseSize = engine.Uint32(data[4:8])
	h.DictLen = engine.Uint32(data[8:12])
	h.BlockCount = engine.Uint32(data[12:16])
	h.CaseCount = engine.Uint64(data[16:24])
	h.DictSum = engine.Uint64(data[24:32])

	return nil
}

// Bytes serializes the header.
func (h *fileHeader) Bytes() []byte {
	b := make([]byte, HeaderSize)

	b[0] = byte(h.Options)
	b[1] = byte(h.Options >> 8)
	b[2] = h.Version
	b[3] = h.Compression

	engine := h.engine()
	engine.PutUint32(b[4:8], h.CaseSize)
	engine.PutUint32(b[8:12], h.DictLen)
	engine.PutUint32(b[12:16], h.BlockCount)
	engine.PutUint64(b[16:24], h.CaseCount)
	engine.PutUint64(b[24:32], h.DictSum)

	return b
}

// blockHeader precedes every case block.
type blockHeader struct {
	Cases     uint32 // byte offset 0-3
	RawLen    uint32 // byte offset 4-7
	StoredLen uint32 // byte offset 8-11
	Algorithm uint8  // byte offset 12, bytes 13-15 reserved
	Checksum  uint64 // byte offset 16-23, xxhash64 of the raw bytes
}

func (b *blockHeader) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) != BlockHeaderSize {
		return errInvalidHeaderSize
	}

	b.Cases = engine.Uint32(data[0:4])
	b.RawLen = engine.Uint32(data[4:8])
	b.StoredLen = engine.Uint32(data[8:12])
	b.Algorithm = data[12]
	b.Checksum = engine.Uint64(data[16:24])

	return nil
}

func (b *blockHeader) AppendBytes(dst []byte, engine endian.EndianEngine) []byte {
	dst = engine.AppendUint32(dst, b.Cases)
	dst = engine.AppendUint32(dst, b.RawLen)
	dst = engine.AppendUint32(dst, b.StoredLen)
	dst = append(dst, b.Algorithm, 0, 0, 0)

	return engine.AppendUint64(dst, b.Checksum)
}
