// Package engine defines the contract of a file codec engine: the
// procedural interface that opens data files, reads and writes their
// dictionary, and moves whole case records in and out.
//
// Engines report failures as format.Status values. Positive statuses are
// errors, negative statuses are informational warnings (no labels, no
// multiple-response sets, end of file, ...). Callers translate them with
// Check or a Checker.
package engine

import (
	"strings"

	"github.com/arloliu/savio/format"
)

// Handle identifies an open file within an engine.
type Handle int

// Mode is the mode a file is opened in.
type Mode uint8

const (
	ModeRead Mode = iota
	ModeWrite
	ModeAppend
)

func (m Mode) String() string {
	switch m {
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	case ModeAppend:
		return "append"
	default:
		return "unknown"
	}
}

// Config is passed to the engine when opening a file.
//
// Unicode selects UTF-8 text for new files. Otherwise the codepage is
// taken from Locale, e.g. "en_US.windows-1252". Existing files keep
// their own encoding.
type Config struct {
	Unicode bool
	Locale  string
}

// DefaultCodepage is the encoding of new files whose locale names none.
const DefaultCodepage = "windows-1252"

// Encoding returns the text encoding a new file opened with c gets.
func (c Config) Encoding() string {
	if c.Unicode {
		return "UTF-8"
	}

	if _, codepage, ok := strings.Cut(c.Locale, "."); ok && codepage != "" {
		return codepage
	}

	return DefaultCodepage
}

// ReleaseInfo describes the system that wrote a file.
type ReleaseInfo struct {
	Release       int
	Subrelease    int
	Fixpack       int
	MachineCode   int
	FloatingPoint int
	Compression   int
	ByteOrder     format.ByteOrder
	CharacterRep  int
}

// NumericMissing is the missing-value definition of a numeric variable.
// With a range format, Values[0] and Values[1] are the low and high
// bounds and Values[2] is the optional discrete value.
type NumericMissing struct {
	Format format.MissingFormat
	Values [3]float64
}

// StringMissing is the missing-value definition of a string variable.
// String variables take discrete values only.
type StringMissing struct {
	Format format.MissingFormat
	Values [3]string
}

// Attribute is a named custom attribute of a file or variable.
type Attribute struct {
	Name string
	Text string
}

// Files opens and closes data files.
type Files interface {
	Open(path string, mode Mode, cfg Config) (Handle, error)
	Close(h Handle) error
}

// Info reports file-level properties.
type Info interface {
	FileEncoding(h Handle) (string, error)
	Compression(h Handle) (format.Compression, error)
	SetCompression(h Handle, c format.Compression) error
	ReleaseInfo(h Handle) (ReleaseInfo, error)
	CaseCount(h Handle) (int64, error)
	CaseSize(h Handle) (int, error)

	// SysmisValue returns the system-missing sentinel.
	SysmisValue() float64
	// LowHighValues returns the values standing in for LOWEST and HIGHEST
	// in missing-value ranges.
	LowHighValues() (lo, hi float64)
}

// Variables reads and writes per-variable dictionary entries.
type Variables interface {
	// VarNamesAndTypes lists variables in file order. A type of 0 is
	// numeric; a positive type is the string width.
	VarNamesAndTypes(h Handle) ([]string, []int, error)
	SetVarName(h Handle, name string, varType int) error

	PrintFormat(h Handle, name string) (format.Spec, error)
	SetPrintFormat(h Handle, name string, spec format.Spec) error
	WriteFormat(h Handle, name string) (format.Spec, error)
	SetWriteFormat(h Handle, name string, spec format.Spec) error

	VarLabel(h Handle, name string) (string, error)
	SetVarLabel(h Handle, name string, label string) error

	NumericValueLabels(h Handle, name string) (map[float64]string, error)
	SetNumericValueLabel(h Handle, name string, value float64, label string) error
	StringValueLabels(h Handle, name string) (map[string]string, error)
	SetStringValueLabel(h Handle, name string, value string, label string) error

	NumericMissing(h Handle, name string) (NumericMissing, error)
	SetNumericMissing(h Handle, name string, m NumericMissing) error
	StringMissing(h Handle, name string) (StringMissing, error)
	SetStringMissing(h Handle, name string, m StringMissing) error

	MeasureLevel(h Handle, name string) (format.MeasureLevel, error)
	SetMeasureLevel(h Handle, name string, level format.MeasureLevel) error
	Alignment(h Handle, name string) (format.Alignment, error)
	SetAlignment(h Handle, name string, align format.Alignment) error
	ColumnWidth(h Handle, name string) (int, error)
	SetColumnWidth(h Handle, name string, width int) error
	Role(h Handle, name string) (format.Role, error)
	SetRole(h Handle, name string, role format.Role) error

	VarAttributes(h Handle, name string) ([]Attribute, error)
	SetVarAttributes(h Handle, name string, attrs []Attribute) error
}

// FileDictionary reads and writes file-level dictionary entries.
type FileDictionary interface {
	FileAttributes(h Handle) ([]Attribute, error)
	SetFileAttributes(h Handle, attrs []Attribute) error

	// MultRespDefs returns the multiple-response sets in their text form.
	MultRespDefs(h Handle) (string, error)
	SetMultRespDefs(h Handle, defs string) error

	// VariableSets returns the variable sets in their text form.
	VariableSets(h Handle) (string, error)
	SetVariableSets(h Handle, sets string) error

	CaseWeightVar(h Handle) (string, error)
	SetCaseWeightVar(h Handle, name string) error

	// CommitHeader seals the dictionary. No dictionary call is allowed
	// afterwards and no case can be written before.
	CommitHeader(h Handle) error
}

// Cases moves whole case records.
type Cases interface {
	// SeekNextCase positions the read cursor at the zero-based case n.
	SeekNextCase(h Handle, n int64) error
	// WholeCaseIn reads the next case into buf, which holds CaseSize bytes.
	// It returns StatusFileEnd past the last case.
	WholeCaseIn(h Handle, buf []byte) error
	// WholeCaseOut writes buf as the next case.
	WholeCaseOut(h Handle, buf []byte) error
}

// Engine is the full codec engine capability set.
type Engine interface {
	Files
	Info
	Variables
	FileDictionary
	Cases
}
