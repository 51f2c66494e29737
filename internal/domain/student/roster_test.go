package student

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/rollcall/internal/domain/shared"
)

var addedAt = time.Date(2024, 9, 2, 9, 0, 0, 0, time.UTC)

func TestRoster_Add(t *testing.T) {
	r := NewRoster()

	slot, s, err := r.Add("  Alice\t", " G1 ", addedAt)
	require.NoError(t, err)
	assert.Equal(t, 0, slot)
	assert.Equal(t, "Alice", s.Name)
	assert.Equal(t, "G1", s.Group)
	assert.Zero(t, s.CallCount)
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, addedAt, s.AddedAt)

	slot, _, err = r.Add("Bob", "G1", addedAt)
	require.NoError(t, err)
	assert.Equal(t, 1, slot)
	assert.Equal(t, 2, r.Len())
}

func TestRoster_Add_Duplicate(t *testing.T) {
	r := NewRoster()
	_, _, err := r.Add("Alice", "G1", addedAt)
	require.NoError(t, err)

	_, _, err = r.Add("Alice ", "G2", addedAt)
	assert.ErrorIs(t, err, shared.ErrDuplicateStudent)
	assert.True(t, shared.IsAlreadyExists(err))

	s, ok := r.Lookup("Alice")
	require.True(t, ok)
	assert.Equal(t, "G1", s.Group, "first occurrence wins")
	assert.Equal(t, 1, r.Len())
}

func TestRoster_Add_CaseSensitive(t *testing.T) {
	r := NewRoster()
	_, _, err := r.Add("alice", "G1", addedAt)
	require.NoError(t, err)
	_, _, err = r.Add("Alice", "G1", addedAt)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
}

func TestRoster_Add_Empty(t *testing.T) {
	tests := []struct {
		name  string
		sname string
		group string
	}{
		{"empty name", "", "G1"},
		{"blank name", " \t ", "G1"},
		{"empty group", "Alice", ""},
		{"blank group", "Alice", "\r\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRoster()
			_, _, err := r.Add(tt.sname, tt.group, addedAt)
			assert.ErrorIs(t, err, shared.ErrInvalidStudent)
			assert.True(t, shared.IsValidation(err))
			assert.Zero(t, r.Len())
		})
	}
}

func TestRoster_MarkCalled(t *testing.T) {
	r := NewRoster()
	slot, _, err := r.Add("Alice", "G1", addedAt)
	require.NoError(t, err)

	s := r.MarkCalled(slot)
	assert.Equal(t, 1, s.CallCount)
	s = r.MarkCalled(slot)
	assert.Equal(t, 2, s.CallCount)
	assert.Equal(t, 2, r.At(slot).CallCount)
}

func TestRoster_Slots(t *testing.T) {
	r := NewRoster()
	for _, rec := range [][2]string{{"A", "G1"}, {"B", "G2"}, {"C", "G1"}} {
		_, _, err := r.Add(rec[0], rec[1], addedAt)
		require.NoError(t, err)
	}

	assert.Equal(t, []int{0, 1, 2}, r.Slots())
	assert.Equal(t, []int{0, 2}, r.SlotsInGroup("G1"))
	assert.Equal(t, []int{1}, r.SlotsInGroup("G2"))
	assert.Empty(t, r.SlotsInGroup("g1"))
}

func TestRoster_GroupCounts(t *testing.T) {
	r := NewRoster()

	counts, ok := r.GroupCounts()
	assert.False(t, ok)
	assert.Nil(t, counts)

	for _, rec := range [][2]string{{"A", "G2"}, {"B", "G1"}, {"C", "G2"}} {
		_, _, err := r.Add(rec[0], rec[1], addedAt)
		require.NoError(t, err)
	}

	counts, ok = r.GroupCounts()
	assert.True(t, ok)
	assert.Equal(t, map[string]int{"G1": 1, "G2": 2}, counts)
}

func TestRoster_StatsSnapshot(t *testing.T) {
	r := NewRoster()
	for _, name := range []string{"Carol", "Bob", "Alice", "Dave"} {
		_, _, err := r.Add(name, "G1", addedAt)
		require.NoError(t, err)
	}
	r.MarkCalled(3) // Dave
	r.MarkCalled(3)
	r.MarkCalled(0) // Carol
	r.MarkCalled(1) // Bob

	snap := r.StatsSnapshot()
	names := make([]string, len(snap))
	for i, s := range snap {
		names[i] = s.Name
	}
	assert.Equal(t, []string{"Dave", "Bob", "Carol", "Alice"}, names)

	snap[0].CallCount = 100
	assert.Equal(t, 2, r.At(3).CallCount, "snapshot is a copy")
}

func TestImportStats_Total(t *testing.T) {
	s := ImportStats{Added: 2, Duplicates: 1, Malformed: 3}
	assert.Equal(t, 6, s.Total())
}
