package collision

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTracker(t *testing.T) {
	tracker := NewTracker()

	require.NotNil(t, tracker)
	require.Equal(t, 0, tracker.Count())
	require.Empty(t, tracker.Names())
}

func TestTracker_Track(t *testing.T) {
	tracker := NewTracker()

	pos, ok := tracker.Track("age")
	require.True(t, ok)
	require.Equal(t, 0, pos)

	pos, ok = tracker.Track("name")
	require.True(t, ok)
	require.Equal(t, 1, pos)

	require.Equal(t, []string{"age", "name"}, tracker.Names())
}

func TestTracker_Track_CaseInsensitiveDuplicate(t *testing.T) {
	tracker := NewTracker()

	_, ok := tracker.Track("Income")
	require.True(t, ok)

	pos, ok := tracker.Track("INCOME")
	require.False(t, ok)
	require.Equal(t, 0, pos)
	require.Equal(t, 1, tracker.Count())
}

func TestTracker_Lookup(t *testing.T) {
	tracker := NewTracker()
	tracker.Track("q1_a")
	tracker.Track("q1_b")

	pos, ok := tracker.Lookup("Q1_B")
	require.True(t, ok)
	require.Equal(t, 1, pos)

	pos, ok = tracker.Lookup("q1_c")
	require.False(t, ok)
	require.Equal(t, -1, pos)
}

func TestTracker_Reset(t *testing.T) {
	tracker := NewTracker()
	tracker.Track("a")
	tracker.Track("b")

	tracker.Reset()

	require.Equal(t, 0, tracker.Count())
	_, ok := tracker.Lookup("a")
	require.False(t, ok)

	_, ok = tracker.Track("A")
	require.True(t, ok)
}

func TestTracker_Track_FoldedDuplicate(t *testing.T) {
	tracker := NewTracker()

	_, ok := tracker.Track("kg")
	require.True(t, ok)

	pos, ok := tracker.Track("\u212Ag")
	require.False(t, ok, "Kelvin sign folds to k")
	require.Equal(t, 0, pos)

	pos, ok = tracker.Lookup("\u212AG")
	require.True(t, ok)
	require.Equal(t, 0, pos)
}
