package schema

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arloliu/savio/errs"
	"github.com/arloliu/savio/format"
)

// ParseFormat parses a format string such as "F8.2", "A10" or "DATETIME20".
// Format names are case-insensitive.
func ParseFormat(s string) (format.Spec, error) {
	s = strings.TrimSpace(s)

	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	if i == 0 {
		return format.Spec{}, fmt.Errorf("%w: %q has no format name", errs.ErrUnsupportedFormat, s)
	}

	ft, err := format.ParseType(s[:i])
	if err != nil {
		return format.Spec{}, fmt.Errorf("%w: %w", errs.ErrUnsupportedFormat, err)
	}

	widthPart, decPart, hasDec := strings.Cut(s[i:], ".")
	width, err := strconv.Atoi(widthPart)
	if err != nil {
		return format.Spec{}, fmt.Errorf("%w: %q has an invalid width", errs.ErrUnsupportedFormat, s)
	}

	decimals := 0
	if hasDec {
		decimals, err = strconv.Atoi(decPart)
		if err != nil {
			return format.Spec{}, fmt.Errorf("%w: %q has invalid decimals", errs.ErrUnsupportedFormat, s)
		}
	}

	return format.Spec{Type: ft, Width: width, Decimals: decimals}, nil
}

func isLetter(c byte) bool {
	return (c >= 'A' && c <= 'Z') || (c >= 'a' && c <= 'z')
}
