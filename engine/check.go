package engine

import (
	"errors"
	"fmt"

	"github.com/arloliu/savio/errs"
	"github.com/arloliu/savio/format"
)

// Checker translates engine results into the savio error taxonomy.
type Checker struct {
	// OnWarning, when set, receives every warning status that Check drops.
	OnWarning func(call string, st format.Status)
}

// Check translates the result of the engine call named call.
//
// A nil error or StatusOK yields nil. Warning statuses are reported to
// OnWarning and yield nil. Error statuses become *errs.EngineStatusError.
// Other errors are wrapped with the call name.
func (c Checker) Check(call string, err error) error {
	if err == nil {
		return nil
	}

	var st format.Status
	if !errors.As(err, &st) {
		return fmt.Errorf("engine %s: %w", call, err)
	}

	switch {
	case st == format.StatusOK:
		return nil
	case st.IsWarning():
		if c.OnWarning != nil {
			c.OnWarning(call, st)
		}

		return nil
	default:
		return &errs.EngineStatusError{Call: call, Status: int(st), Err: err}
	}
}

// Check translates err without reporting warnings.
func Check(call string, err error) error {
	return Checker{}.Check(call, err)
}

// Warning reports whether err is a warning status and returns it.
func Warning(err error) (format.Status, bool) {
	var st format.Status
	if errors.As(err, &st) && st.IsWarning() {
		return st, true
	}

	return format.StatusOK, false
}

// IsStatus reports whether err carries the status want.
func IsStatus(err error, want format.Status) bool {
	var st format.Status
	return errors.As(err, &st) && st == want
}
