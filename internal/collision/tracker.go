package collision

import (
	"strings"

	"github.com/arloliu/savio/internal/hash"
)

// Tracker detects case-insensitive duplicates among variable or set names.
// Names are bucketed by their case-folded hash; distinct names sharing a
// bucket are compared directly, so a hash collision is never reported as
// a duplicate.
type Tracker struct {
	buckets map[uint64][]int // NameKey → positions in names
	names   []string         // names in tracking order
}

// NewTracker creates an empty tracker.
func NewTracker() *Tracker {
	return &Tracker{
		buckets: make(map[uint64][]int),
		names:   make([]string, 0),
	}
}

// Track records name and returns its position.
// It reports false without recording anything when a name equal to it
// ignoring case is already tracked.
func (t *Tracker) Track(name string) (int, bool) {
	key := hash.NameKey(name)
	for _, pos := range t.buckets[key] {
		if strings.EqualFold(t.names[pos], name) {
			return pos, false
		}
	}

	pos := len(t.names)
	t.names = append(t.names, name)
	t.buckets[key] = append(t.buckets[key], pos)

	return pos, true
}

// Lookup returns the position of name, ignoring case.
func (t *Tracker) Lookup(name string) (int, bool) {
	for _, pos := range t.buckets[hash.NameKey(name)] {
		if strings.EqualFold(t.names[pos], name) {
			return pos, true
		}
	}

	return -1, false
}

// Names returns the tracked names in tracking order.
func (t *Tracker) Names() []string {
	return t.names
}

// Count returns the number of tracked names.
func (t *Tracker) Count() int {
	return len(t.names)
}

// Reset clears all tracked names.
func (t *Tracker) Reset() {
	for k := range t.buckets {
		delete(t.buckets, k)
	}
	t.names = t.names[:0]
}
