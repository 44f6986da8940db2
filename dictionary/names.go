package dictionary

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/arloliu/savio/errs"
	"github.com/arloliu/savio/format"
)

var reservedNames = map[string]struct{}{
	"ALL": {}, "AND": {}, "BY": {}, "EQ": {}, "GE": {}, "GT": {}, "LE": {},
	"LT": {}, "NE": {}, "NOT": {}, "OR": {}, "TO": {}, "WITH": {},
}

// ValidateName checks a variable name: 1 to 64 bytes, starting with a
// letter, '@', '#' or '$', followed by letters, digits or any of ". _ $ # @",
// not ending with a period and not a reserved keyword.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", errs.ErrInvalidName)
	}

	if len(name) > format.MaxVarName {
		return fmt.Errorf("%w: %q is longer than %d bytes", errs.ErrInvalidName, name, format.MaxVarName)
	}

	if !utf8.ValidString(name) {
		return fmt.Errorf("%w: %q is not valid UTF-8", errs.ErrInvalidName, name)
	}

	for i, r := range name {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '@' && r != '#' && r != '$' {
				return fmt.Errorf("%w: %q must start with a letter, '@', '#' or '$'", errs.ErrInvalidName, name)
			}

			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && !strings.ContainsRune("._$#@", r) {
			return fmt.Errorf("%w: %q contains %q", errs.ErrInvalidName, name, r)
		}
	}

	if strings.HasSuffix(name, ".") {
		return fmt.Errorf("%w: %q ends with a period", errs.ErrInvalidName, name)
	}

	if _, reserved := reservedNames[strings.ToUpper(name)]; reserved {
		return fmt.Errorf("%w: %q is a reserved keyword", errs.ErrInvalidName, name)
	}

	return nil
}
