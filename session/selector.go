package session

import (
	"fmt"
	"strings"

	"github.com/arloliu/savio/errs"
)

// Selector picks the variables a read session decodes. It is evaluated
// once at open time against the file's variable names.
type Selector interface {
	// Select returns the selected names, canonical and in output order.
	Select(names []string) ([]string, error)
}

// All selects every variable in file order.
type All struct{}

func (All) Select(names []string) ([]string, error) {
	return names, nil
}

// Names selects variables by name, case-insensitively, in the given order.
type Names []string

func (s Names) Select(names []string) ([]string, error) {
	out := make([]string, 0, len(s))
	for _, want := range s {
		i := indexFold(names, want)
		if i < 0 {
			return nil, fmt.Errorf("%w: %s", errs.ErrUnknownVariable, want)
		}
		out = append(out, names[i])
	}

	return out, nil
}

// Positions selects variables by zero-based position, in the given order.
type Positions []int

func (s Positions) Select(names []string) ([]string, error) {
	out := make([]string, 0, len(s))
	for _, pos := range s {
		if pos < 0 || pos >= len(names) {
			return nil, fmt.Errorf("%w: position %d of %d variables", errs.ErrUnknownVariable, pos, len(names))
		}
		out = append(out, names[pos])
	}

	return out, nil
}

// Predicate selects, in file order, the variables it returns true for.
type Predicate func(name string) bool

func (p Predicate) Select(names []string) ([]string, error) {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if p(name) {
			out = append(out, name)
		}
	}

	return out, nil
}

func indexFold(names []string, want string) int {
	for i, name := range names {
		if name == want {
			return i
		}
	}

	for i, name := range names {
		if strings.EqualFold(name, want) {
			return i
		}
	}

	return -1
}
