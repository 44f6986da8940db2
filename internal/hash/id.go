package hash

import (
	"strings"
	"unicode"

	"github.com/cespare/xxhash/v2"
)

// Sum64 computes the xxHash64 checksum of data.
func Sum64(data []byte) uint64 {
	return xxhash.Sum64(data)
}

// NameKey computes a case-insensitive key for a variable or set name.
// Names equal under strings.EqualFold map to the same key.
func NameKey(name string) uint64 {
	return xxhash.Sum64String(strings.Map(foldRune, name))
}

// foldRune returns the smallest rune of the simple case folding orbit of r,
// so "k", "K" and the Kelvin sign all fold to "K".
func foldRune(r rune) rune {
	lowest := r
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		lowest = min(lowest, f)
	}

	return lowest
}
