// Package format is the capability table shared by every savio package:
// length limits, print/write format codes, missing-value kinds,
// measurement levels, alignments, roles, compression switches and the
// engine status codes. It holds data only.
package format

import (
	"fmt"
	"strings"
)

type (
	// Type is a print/write format code as understood by the codec engine.
	Type uint8

	// Compression is the file-level compression switch.
	Compression uint8
)

const (
	TypeA        Type = 1  // Alphanumeric
	TypeAHEX     Type = 2  // Alphanumeric hexadecimal
	TypeCOMMA    Type = 3  // F format with commas
	TypeDOLLAR   Type = 4  // Commas and floating dollar sign
	TypeF        Type = 5  // Default numeric format
	TypeIB       Type = 6  // Integer binary
	TypePIBHEX   Type = 7  // Positive integer binary, hex
	TypeP        Type = 8  // Packed decimal
	TypePIB      Type = 9  // Positive integer binary, unsigned
	TypePK       Type = 10 // Positive packed decimal, unsigned
	TypeRB       Type = 11 // Floating point binary
	TypeRBHEX    Type = 12 // Floating point binary, hex
	TypeZ        Type = 15 // Zoned decimal
	TypeN        Type = 16 // Unsigned with leading zeros
	TypeE        Type = 17 // Explicit power of 10
	TypeDATE     Type = 20 // dd-mmm-yyyy
	TypeTIME     Type = 21 // hh:mm:ss.s
	TypeDATETIME Type = 22 // dd-mmm-yyyy hh:mm:ss.s
	TypeADATE    Type = 23 // mm/dd/yyyy
	TypeJDATE    Type = 24 // yyyyddd
	TypeDTIME    Type = 25 // dd hh:mm:ss.s
	TypeWKDAY    Type = 26 // Day of the week
	TypeMONTH    Type = 27 // Month
	TypeMOYR     Type = 28 // mmm yyyy
	TypeQYR      Type = 29 // q Q yyyy
	TypeWKYR     Type = 30 // ww WK yyyy
	TypePCT      Type = 31 // F followed by %
	TypeDOT      Type = 32 // Like COMMA, dot for comma
	TypeCCA      Type = 33 // Custom currency A
	TypeCCB      Type = 34 // Custom currency B
	TypeCCC      Type = 35 // Custom currency C
	TypeCCD      Type = 36 // Custom currency D
	TypeCCE      Type = 37 // Custom currency E
	TypeEDATE    Type = 38 // dd.mm.yyyy
	TypeSDATE    Type = 39 // yyyy/mm/dd
	TypeMTIME    Type = 85 // mm:ss.ss
	TypeYMDHMS   Type = 86 // yyyy-mm-dd hh:mm:ss.ss

	CompressionNone     Compression = 0 // Uncompressed
	CompressionStandard Compression = 1 // Byte-code compression (.sav)
	CompressionZLib     Compression = 2 // Block compression (.zsav)
)

var typeNames = map[Type]string{
	TypeA:        "A",
	TypeAHEX:     "AHEX",
	TypeCOMMA:    "COMMA",
	TypeDOLLAR:   "DOLLAR",
	TypeF:        "F",
	TypeIB:       "IB",
	TypePIBHEX:   "PIBHEX",
	TypeP:        "P",
	TypePIB:      "PIB",
	TypePK:       "PK",
	TypeRB:       "RB",
	TypeRBHEX:    "RBHEX",
	TypeZ:        "Z",
	TypeN:        "N",
	TypeE:        "E",
	TypeDATE:     "DATE",
	TypeTIME:     "TIME",
	TypeDATETIME: "DATETIME",
	TypeADATE:    "ADATE",
	TypeJDATE:    "JDATE",
	TypeDTIME:    "DTIME",
	TypeWKDAY:    "WKDAY",
	TypeMONTH:    "MONTH",
	TypeMOYR:     "MOYR",
	TypeQYR:      "QYR",
	TypeWKYR:     "WKYR",
	TypePCT:      "PCT",
	TypeDOT:      "DOT",
	TypeCCA:      "CCA",
	TypeCCB:      "CCB",
	TypeCCC:      "CCC",
	TypeCCD:      "CCD",
	TypeCCE:      "CCE",
	TypeEDATE:    "EDATE",
	TypeSDATE:    "SDATE",
	TypeMTIME:    "MTIME",
	TypeYMDHMS:   "YMDHMS",
}

var typesByName = func() map[string]Type {
	m := make(map[string]Type, len(typeNames))
	for t, name := range typeNames {
		m[name] = t
	}

	return m
}()

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}

	return "Unknown"
}

// Valid reports whether t is a format code in the capability table.
func (t Type) Valid() bool {
	_, ok := typeNames[t]
	return ok
}

// IsString reports whether t can only be applied to string variables.
func (t Type) IsString() bool {
	return t == TypeA || t == TypeAHEX
}

// IsDate reports whether t displays a calendar date without a time of day.
func (t Type) IsDate() bool {
	switch t { //nolint: exhaustive
	case TypeDATE, TypeADATE, TypeJDATE, TypeEDATE, TypeSDATE, TypeMOYR, TypeQYR, TypeWKYR:
		return true
	default:
		return false
	}
}

// IsTime reports whether t displays an elapsed time or time of day.
func (t Type) IsTime() bool {
	return t == TypeTIME || t == TypeDTIME || t == TypeMTIME
}

// IsDateTime reports whether t displays a full timestamp.
func (t Type) IsDateTime() bool {
	return t == TypeDATETIME || t == TypeYMDHMS
}

// ParseType looks up a format code by its name, case-insensitively.
func ParseType(name string) (Type, error) {
	if t, ok := typesByName[strings.ToUpper(name)]; ok {
		return t, nil
	}

	return 0, fmt.Errorf("unknown format type %q", name)
}

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionStandard:
		return "Standard"
	case CompressionZLib:
		return "ZLib"
	default:
		return "Unknown"
	}
}

// Valid reports whether c is one of the switches the engine accepts.
func (c Compression) Valid() bool {
	return c <= CompressionZLib
}

// CompressionForExtension maps a file extension to its compression switch.
// ".sav" uses standard compression and ".zsav" uses zlib; other
// extensions report false.
func CompressionForExtension(ext string) (Compression, bool) {
	switch strings.ToLower(ext) {
	case ".sav":
		return CompressionStandard, true
	case ".zsav":
		return CompressionZLib, true
	default:
		return CompressionNone, false
	}
}
