// Package errs defines the error taxonomy shared by the savio packages.
//
// Validation failures are reported through sentinel errors wrapped with
// context (match them with errors.Is). Failures that need structured
// details carry their own types: EngineStatusError for codec engine
// statuses and ValueConversionError for per-cell conversion failures.
package errs

import (
	"errors"
	"fmt"
)

var (
	// ErrEngineStatus matches any EngineStatusError.
	ErrEngineStatus = errors.New("engine returned a failure status")

	ErrInvalidName        = errors.New("invalid variable name")
	ErrDuplicateName      = errors.New("duplicate variable name")
	ErrUnknownVariable    = errors.New("unknown variable")
	ErrInvalidMissingSpec = errors.New("invalid missing values specification")
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrLabelTooLong       = errors.New("label exceeds maximum length")
	ErrInvalidMRSet       = errors.New("invalid multiple-response set")

	// ErrValueConversion matches any ValueConversionError.
	ErrValueConversion = errors.New("value conversion failed")

	ErrAppendMetadata  = errors.New("metadata cannot be modified while appending")
	ErrHeaderCommitted = errors.New("header already committed")
	ErrSessionClosed   = errors.New("session closed")
	ErrInvalidState    = errors.New("operation not allowed in current session state")
)

// EngineStatusError reports a failure status returned by a codec engine call.
type EngineStatusError struct {
	Call   string // engine call that failed
	Status int    // engine status code
	Err    error  // underlying status, when available
}

func (e *EngineStatusError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("engine %s failed: %v", e.Call, e.Err)
	}

	return fmt.Sprintf("engine %s failed: status %d", e.Call, e.Status)
}

// Is reports whether target is ErrEngineStatus.
func (e *EngineStatusError) Is(target error) bool {
	return target == ErrEngineStatus
}

func (e *EngineStatusError) Unwrap() error {
	return e.Err
}

// ValueConversionError reports a cell that could not be converted between
// its table representation and its stored representation.
type ValueConversionError struct {
	Row    int    // zero-based row index within the table being converted
	Column string // variable name
	Value  any    // offending value, if any
	Err    error  // reason
}

func (e *ValueConversionError) Error() string {
	return fmt.Sprintf("cannot convert value %v in column %q at row %d: %v", e.Value, e.Column, e.Row, e.Err)
}

// Is reports whether target is ErrValueConversion.
func (e *ValueConversionError) Is(target error) bool {
	return target == ErrValueConversion
}

func (e *ValueConversionError) Unwrap() error {
	return e.Err
}
