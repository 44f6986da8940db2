package schema

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/arloliu/savio/errs"
)

// EpochOffset is the number of seconds between the file epoch,
// 1582-10-14 00:00:00, and the Unix epoch.
const EpochOffset = 12219379200

// Epoch is the file epoch as a time.
var Epoch = time.Date(1582, time.October, 14, 0, 0, 0, 0, time.UTC)

var errBeforeEpoch = errors.New("before 1582-10-14")

// ToRaw converts a calendar value to whole seconds from the file epoch.
//
// The wall clock of t is used as-is, so the result does not depend on
// t's location. Sub-second components round to the nearest second.
// Values before the epoch fail with ErrValueConversion.
func ToRaw(t time.Time) (float64, error) {
	naive := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	naive = naive.Round(time.Second)

	raw := float64(naive.Unix() + EpochOffset)
	if raw < 0 {
		return 0, fmt.Errorf("%w: %s is %w", errs.ErrValueConversion, t.Format(time.DateTime), errBeforeEpoch)
	}

	return raw, nil
}

// FromRaw converts seconds from the file epoch to a UTC calendar value.
// Fractional seconds are kept to the nanosecond.
func FromRaw(raw float64) time.Time {
	secs := math.Floor(raw)
	nsec := int64(math.Round((raw - secs) * 1e9))

	return time.Unix(int64(secs)-EpochOffset, nsec).UTC()
}

// DurationToRaw converts an elapsed time to whole seconds, rounding to
// the nearest second.
func DurationToRaw(d time.Duration) float64 {
	return math.Round(d.Seconds())
}

// RawToDuration converts elapsed seconds to a duration.
func RawToDuration(raw float64) time.Duration {
	return time.Duration(math.Round(raw * float64(time.Second)))
}
