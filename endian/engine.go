// Package endian maps a data file's byte order to the encoders used for
// its case records.
//
// Numeric cells in a case record are 8-byte IEEE-754 doubles stored in
// the byte order the file reports in its release info. An EndianEngine
// reads and appends them:
//
//	engine := endian.ForByteOrder(info.ByteOrder)
//	v := engine.Float64(buf[off:])
//	buf = engine.AppendFloat64(buf, v)
//
// All functions and methods in this package are safe for concurrent use.
package endian

import (
	"encoding/binary"
	"math"
	"unsafe"

	"github.com/arloliu/savio/format"
)

// EndianEngine combines ByteOrder and AppendByteOrder from encoding/binary
// with float64 helpers for case cells.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder

	// Float64 decodes the first 8 bytes of b.
	Float64(b []byte) float64
	// PutFloat64 encodes v into the first 8 bytes of b.
	PutFloat64(b []byte, v float64)
	// AppendFloat64 appends the encoding of v to b.
	AppendFloat64(b []byte, v float64) []byte
	// ByteOrder reports the file byte order code of the engine.
	ByteOrder() format.ByteOrder
}

type engine struct {
	order interface {
		binary.ByteOrder
		binary.AppendByteOrder
	}
	code format.ByteOrder
}

func (e engine) Uint16(b []byte) uint16 { return e.order.Uint16(b) }
func (e engine) Uint32(b []byte) uint32 { return e.order.Uint32(b) }
func (e engine) Uint64(b []byte) uint64 { return e.order.Uint64(b) }
func (e engine) PutUint16(b []byte, v uint16) { e.order.PutUint16(b, v) }
func (e engine) PutUint32(b []byte, v uint32) { e.order.PutUint32(b, v) }
func (e engine) PutUint64(b []byte, v uint64) { e.order.PutUint64(b, v) }
func (e engine) AppendUint16(b []byte, v uint16) []byte { return e.order.AppendUint16(b, v) }
func (e engine) AppendUint32(b []byte, v uint32) []byte { return e.order.AppendUint32(b, v) }
func (e engine) AppendUint64(b []byte, v uint64) []byte { return e.order.AppendUint64(b, v) }
func (e engine) String() string { return e.order.String() }
func (e engine) ByteOrder() format.ByteOrder { return e.code }

func (e engine) Float64(b []byte) float64 {
	return math.Float64frombits(e.order.Uint64(b))
}

func (e engine) PutFloat64(b []byte, v float64) {
	e.order.PutUint64(b, math.Float64bits(v))
}

func (e engine) AppendFloat64(b []byte, v float64) []byte {
	return e.order.AppendUint64(b, math.Float64bits(v))
}

var (
	littleEngine EndianEngine = engine{order: binary.LittleEndian, code: format.LittleEndian}
	bigEngine    EndianEngine = engine{order: binary.BigEndian, code: format.BigEndian}
)

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. A little-endian host stores the LSB (0x00) first.
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// NativeByteOrder returns the file byte order code matching the host.
func NativeByteOrder() format.ByteOrder {
	if IsNativeLittleEndian() {
		return format.LittleEndian
	}

	return format.BigEndian
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return littleEngine
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return bigEngine
}

// ForByteOrder returns the engine for a file byte order code.
// Unknown codes fall back to little-endian.
func ForByteOrder(order format.ByteOrder) EndianEngine {
	if order == format.BigEndian {
		return bigEngine
	}

	return littleEngine
}
