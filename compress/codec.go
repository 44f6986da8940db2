// Package compress provides the block codecs used by the reference engine
// to store case blocks.
//
// A file's compression switch selects the algorithm: no compression
// stores blocks as-is, standard compression uses S2 (or LZ4 when
// configured), and zlib compression uses Zstandard. Zstandard is backed by
// klauspost/compress in pure Go builds and by gozstd when cgo is enabled.
package compress

import (
	"fmt"

	"github.com/arloliu/savio/format"
)

// Algorithm identifies a block compression algorithm.
type Algorithm uint8

const (
	AlgorithmNone Algorithm = 0
	AlgorithmS2   Algorithm = 1
	AlgorithmLZ4  Algorithm = 2
	AlgorithmZstd Algorithm = 3
)

func (a Algorithm) String() string {
	switch a {
	case AlgorithmNone:
		return "none"
	case AlgorithmS2:
		return "s2"
	case AlgorithmLZ4:
		return "lz4"
	case AlgorithmZstd:
		return "zstd"
	default:
		return "unknown"
	}
}

// Compressor compresses a block.
//
// The returned slice is owned by the caller; the input is not modified.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor restores a block produced by the matching Compressor.
// Corrupted input or input from another algorithm returns an error.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions. Implementations are safe for concurrent use.
type Codec interface {
	Compressor
	Decompressor
}

// ForSwitch returns the algorithm used for a file compression switch.
// standard picks the algorithm behind CompressionStandard and must be
// AlgorithmS2 or AlgorithmLZ4.
func ForSwitch(c format.Compression, standard Algorithm) (Algorithm, error) {
	switch c {
	case format.CompressionNone:
		return AlgorithmNone, nil
	case format.CompressionStandard:
		if standard != AlgorithmS2 && standard != AlgorithmLZ4 {
			return AlgorithmNone, fmt.Errorf("invalid standard compression algorithm: %s", standard)
		}

		return standard, nil
	case format.CompressionZLib:
		return AlgorithmZstd, nil
	default:
		return AlgorithmNone, fmt.Errorf("invalid compression switch: %d", c)
	}
}

// CreateCodec creates a Codec for the specified algorithm.
// target describes the usage for error messages.
func CreateCodec(alg Algorithm, target string) (Codec, error) {
	switch alg {
	case AlgorithmNone:
		return NewNoOpCompressor(), nil
	case AlgorithmZstd:
		return NewZstdCompressor(), nil
	case AlgorithmS2:
		return NewS2Compressor(), nil
	case AlgorithmLZ4:
		return NewLZ4Compressor(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression: %s", target, alg)
	}
}

var builtinCodecs = map[Algorithm]Codec{
	AlgorithmNone: NewNoOpCompressor(),
	AlgorithmZstd: NewZstdCompressor(),
	AlgorithmS2:   NewS2Compressor(),
	AlgorithmLZ4:  NewLZ4Compressor(),
}

// GetCodec retrieves the shared built-in Codec for alg.
func GetCodec(alg Algorithm) (Codec, error) {
	if codec, ok := builtinCodecs[alg]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression algorithm: %s", alg)
}
