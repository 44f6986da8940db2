package format

import (
	"fmt"
	"strconv"
	"strings"
)

// Length limits, in bytes of the file encoding.
const (
	MaxVarName      = 64
	MaxShortVarName = 8
	MaxShortString  = 8
	MaxIDString     = 64
	MaxLongString   = 32767
	MaxValueLabel   = 120
	MaxVarLabel     = 256
	MaxEncoding     = 64
	Max7Subtype     = 40
	MaxPassword     = 10
)

// MissingFormat is the kind of user-missing definition attached to a variable.
// Positive values count discrete codes; negative values mark ranges.
type MissingFormat int8

const (
	MissingNone          MissingFormat = 0
	MissingOne           MissingFormat = 1
	MissingTwo           MissingFormat = 2
	MissingThree         MissingFormat = 3
	MissingRange         MissingFormat = -2
	MissingRangeAndValue MissingFormat = -3
)

func (m MissingFormat) String() string {
	switch m {
	case MissingNone:
		return "None"
	case MissingOne:
		return "One"
	case MissingTwo:
		return "Two"
	case MissingThree:
		return "Three"
	case MissingRange:
		return "Range"
	case MissingRangeAndValue:
		return "RangeAndValue"
	default:
		return "Unknown"
	}
}

// Valid reports whether m is a known missing format.
func (m MissingFormat) Valid() bool {
	return (m >= MissingNone && m <= MissingThree) || m == MissingRange || m == MissingRangeAndValue
}

// Discrete returns the number of discrete codes m carries.
func (m MissingFormat) Discrete() int {
	switch m { //nolint: exhaustive
	case MissingOne, MissingTwo, MissingThree:
		return int(m)
	case MissingRangeAndValue:
		return 1
	default:
		return 0
	}
}

// HasRange reports whether m carries a low/high range.
func (m MissingFormat) HasRange() bool {
	return m == MissingRange || m == MissingRangeAndValue
}

// MeasureLevel classifies a variable as nominal, ordinal or scale.
type MeasureLevel uint8

const (
	MeasureUnknown MeasureLevel = 0
	MeasureNominal MeasureLevel = 1
	MeasureOrdinal MeasureLevel = 2
	MeasureScale   MeasureLevel = 3
)

func (m MeasureLevel) String() string {
	switch m {
	case MeasureUnknown:
		return "unknown"
	case MeasureNominal:
		return "nominal"
	case MeasureOrdinal:
		return "ordinal"
	case MeasureScale:
		return "scale"
	default:
		return "invalid"
	}
}

// Valid reports whether m is a known measurement level.
func (m MeasureLevel) Valid() bool {
	return m <= MeasureScale
}

// Alignment is the display alignment of a variable.
type Alignment uint8

const (
	AlignLeft   Alignment = 0
	AlignRight  Alignment = 1
	AlignCenter Alignment = 2
)

func (a Alignment) String() string {
	switch a {
	case AlignLeft:
		return "left"
	case AlignRight:
		return "right"
	case AlignCenter:
		return "center"
	default:
		return "invalid"
	}
}

// Valid reports whether a is a known alignment.
func (a Alignment) Valid() bool {
	return a <= AlignCenter
}

// Role is the modelling role assigned to a variable.
type Role uint8

const (
	RoleInput     Role = 0
	RoleTarget    Role = 1
	RoleBoth      Role = 2
	RoleNone      Role = 3
	RolePartition Role = 4
	RoleSplit     Role = 5
	RoleFrequency Role = 6
	RoleRecordID  Role = 7
)

func (r Role) String() string {
	switch r {
	case RoleInput:
		return "input"
	case RoleTarget:
		return "target"
	case RoleBoth:
		return "both"
	case RoleNone:
		return "none"
	case RolePartition:
		return "partition"
	case RoleSplit:
		return "split"
	case RoleFrequency:
		return "frequency"
	case RoleRecordID:
		return "record_id"
	default:
		return "invalid"
	}
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r <= RoleRecordID
}

// ByteOrder is the byte order code reported in a file's release info.
type ByteOrder uint8

const (
	LittleEndian ByteOrder = 0
	BigEndian    ByteOrder = 1
)

// MarshalText encodes m by name.
func (m MeasureLevel) MarshalText() ([]byte, error) {
	if !m.Valid() {
		return nil, fmt.Errorf("invalid measurement level %d", m)
	}

	return []byte(m.String()), nil
}

// UnmarshalText accepts a level name or its numeric code.
func (m *MeasureLevel) UnmarshalText(b []byte) error {
	v, err := parseEnum(string(b), MeasureScale, func(x MeasureLevel) string { return x.String() })
	if err != nil {
		return fmt.Errorf("measurement level: %w", err)
	}
	*m = v

	return nil
}

// MarshalText encodes a by name.
func (a Alignment) MarshalText() ([]byte, error) {
	if !a.Valid() {
		return nil, fmt.Errorf("invalid alignment %d", a)
	}

	return []byte(a.String()), nil
}

// UnmarshalText accepts an alignment name or its numeric code.
func (a *Alignment) UnmarshalText(b []byte) error {
	v, err := parseEnum(string(b), AlignCenter, func(x Alignment) string { return x.String() })
	if err != nil {
		return fmt.Errorf("alignment: %w", err)
	}
	*a = v

	return nil
}

// MarshalText encodes r by name.
func (r Role) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("invalid role %d", r)
	}

	return []byte(r.String()), nil
}

// UnmarshalText accepts a role name or its numeric code.
func (r *Role) UnmarshalText(b []byte) error {
	v, err := parseEnum(string(b), RoleRecordID, func(x Role) string { return x.String() })
	if err != nil {
		return fmt.Errorf("role: %w", err)
	}
	*r = v

	return nil
}

func parseEnum[T ~uint8](s string, last T, name func(T) string) (T, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for v := T(0); v <= last; v++ {
		if name(v) == s {
			return v, nil
		}
	}

	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= int(last) {
		return T(n), nil
	}

	return 0, fmt.Errorf("unknown value %q", s)
}
