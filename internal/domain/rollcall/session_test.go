package rollcall

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/rollcall/internal/domain/pool"
	"github.com/alem-hub/rollcall/internal/domain/shared"
)

const sampleRoster = `# comment
Alice, Math
Bob,Science
BadLineNoComma
Alice,Physics
`

func newTestSession(t *testing.T, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithEngine(pool.NewEngine(pool.WithSeed(1)))}, opts...)
	return NewSession(opts...)
}

func mustAdd(t *testing.T, s *Session, name, group string) {
	t.Helper()
	_, err := s.AddStudent(name, group)
	require.NoError(t, err)
}

// failingReader yields data, then fails with err.
type failingReader struct {
	data string
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.data == "" {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}

func TestSession_Import(t *testing.T) {
	s := newTestSession(t)

	stats, err := s.Import(strings.NewReader(sampleRoster), "roster.csv")
	require.NoError(t, err)
	assert.Equal(t, "roster.csv", stats.Source)
	assert.Equal(t, 2, stats.Added)
	assert.Equal(t, 1, stats.Duplicates)
	assert.Equal(t, 1, stats.Malformed)

	assert.Equal(t, 2, s.Len())
	alice, ok := s.Lookup("Alice")
	require.True(t, ok)
	assert.Equal(t, "Math", alice.Group)
	bob, ok := s.Lookup("Bob")
	require.True(t, ok)
	assert.Equal(t, "Science", bob.Group)
}

func TestSession_Import_LastLineWithoutNewline(t *testing.T) {
	s := newTestSession(t)

	stats, err := s.Import(strings.NewReader("Alice,G1\r\nBob,G2"), "inline")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Added)
	counts, _ := s.GroupCounts()
	assert.Equal(t, map[string]int{"G1": 1, "G2": 1}, counts)
}

func TestSession_Import_Unreadable(t *testing.T) {
	s := newTestSession(t)
	mustAdd(t, s, "Alice", "G1")
	_, _, err := s.Pick(pool.Global)
	require.NoError(t, err)

	_, err = s.Import(&failingReader{err: errors.New("permission denied")}, "locked.csv")
	assert.ErrorIs(t, err, shared.ErrSourceUnreadable)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 0, s.Remaining(pool.Global), "pools untouched")
}

func TestSession_Import_UnreadableKeepsCycle(t *testing.T) {
	s := newTestSession(t)
	mustAdd(t, s, "Alice", "G1")
	mustAdd(t, s, "Bob", "G1")
	_, _, err := s.Pick(pool.Global)
	require.NoError(t, err)
	require.Equal(t, 1, s.Remaining(pool.Global))

	_, err = s.Import(&failingReader{err: errors.New("boom")}, "bad")
	require.Error(t, err)
	assert.Equal(t, 1, s.Remaining(pool.Global))
}

func TestSession_Import_PartialRead(t *testing.T) {
	s := newTestSession(t)
	readErr := errors.New("connection reset")

	stats, err := s.Import(&failingReader{data: "Alice,G1\nBob,G2\nCar", err: readErr}, "remote")
	require.Error(t, err)
	assert.ErrorIs(t, err, readErr)
	assert.NotErrorIs(t, err, shared.ErrSourceUnreadable)

	// The dangling "Car" fragment has no comma.
	assert.Equal(t, 2, stats.Added)
	assert.Equal(t, 1, stats.Malformed)
	assert.Equal(t, 2, s.Len())
}

func TestSession_Import_ResetsPools(t *testing.T) {
	s := newTestSession(t)
	mustAdd(t, s, "Alice", "G1")
	mustAdd(t, s, "Bob", "G1")
	_, _, err := s.Pick(pool.Global)
	require.NoError(t, err)

	_, err = s.Import(strings.NewReader("Carol,G1\n"), "more")
	require.NoError(t, err)
	assert.Zero(t, s.Remaining(pool.Global))

	seen := map[string]bool{}
	for range 3 {
		st, _, err := s.Pick(pool.Global)
		require.NoError(t, err)
		seen[st.Name] = true
	}
	assert.Len(t, seen, 3)
}

func TestSession_AddStudent(t *testing.T) {
	s := newTestSession(t)

	st, err := s.AddStudent(" Alice ", "G1")
	require.NoError(t, err)
	assert.Equal(t, "Alice", st.Name)

	_, err = s.AddStudent("Alice", "G2")
	assert.ErrorIs(t, err, shared.ErrDuplicateStudent)

	got, ok := s.Lookup("Alice")
	require.True(t, ok)
	assert.Equal(t, "G1", got.Group)
	assert.Zero(t, got.CallCount)

	_, err = s.AddStudent("", "G1")
	assert.ErrorIs(t, err, shared.ErrInvalidStudent)
	assert.Equal(t, 1, s.Len())
}

func TestSession_AddStudentStartsFreshCycle(t *testing.T) {
	s := newTestSession(t)
	mustAdd(t, s, "Alice", "G1")
	mustAdd(t, s, "Bob", "G1")

	first, _, err := s.Pick(pool.Group("G1"))
	require.NoError(t, err)
	require.Equal(t, 1, s.Remaining(pool.Group("G1")))

	mustAdd(t, s, "Carol", "G1")
	assert.Zero(t, s.Remaining(pool.Group("G1")))

	seen := map[string]bool{}
	for range 3 {
		st, _, err := s.Pick(pool.Group("G1"))
		require.NoError(t, err)
		seen[st.Name] = true
	}
	assert.True(t, seen["Carol"])
	assert.True(t, seen[first.Name], "previously called student is eligible again")
}

func TestSession_Pick_FullCycle(t *testing.T) {
	s := newTestSession(t)
	roster := []string{"A", "B", "C", "D", "E"}
	for _, name := range roster {
		mustAdd(t, s, name, "G1")
	}

	var picked []string
	for i := range roster {
		st, rec, err := s.Pick(pool.Global)
		require.NoError(t, err)
		assert.Equal(t, st.Name, rec.Name)
		assert.Equal(t, st.Group, rec.Group)
		assert.Equal(t, st.ID, rec.StudentID)
		assert.Equal(t, len(roster)-i-1, s.Remaining(pool.Global))
		picked = append(picked, st.Name)
	}
	assert.ElementsMatch(t, roster, picked)
	assert.Equal(t, len(roster), s.HistoryLen())

	_, _, err := s.Pick(pool.Global)
	require.NoError(t, err)
	assert.Equal(t, len(roster)-1, s.Remaining(pool.Global), "next pick starts a new cycle")
}

func TestSession_Pick_Group(t *testing.T) {
	s := newTestSession(t)
	mustAdd(t, s, "Alice", "Math")
	mustAdd(t, s, "Bob", "Science")
	mustAdd(t, s, "Carol", "Math")

	for range 6 {
		st, _, err := s.Pick(pool.Group("Math"))
		require.NoError(t, err)
		assert.Equal(t, "Math", st.Group)
	}

	got, _ := s.Lookup("Bob")
	assert.Zero(t, got.CallCount)
}

func TestSession_Pick_UnknownGroup(t *testing.T) {
	s := newTestSession(t)
	mustAdd(t, s, "Alice", "Math")
	_, _, err := s.Pick(pool.Global)
	require.NoError(t, err)
	mustAdd(t, s, "Bob", "Math")
	_, _, err = s.Pick(pool.Global)
	require.NoError(t, err)
	before := s.StatsSnapshot()
	remaining := s.Remaining(pool.Global)

	_, _, err = s.Pick(pool.Group("NoSuchGroup"))
	assert.ErrorIs(t, err, shared.ErrNoEligibleStudents)
	assert.Equal(t, before, s.StatsSnapshot())
	assert.Equal(t, 2, s.HistoryLen())
	assert.Equal(t, remaining, s.Remaining(pool.Global))
}

func TestSession_Pick_EmptyRoster(t *testing.T) {
	s := newTestSession(t)
	_, _, err := s.Pick(pool.Global)
	assert.ErrorIs(t, err, shared.ErrNoEligibleStudents)
	assert.Zero(t, s.HistoryLen())
}

func TestSession_Pick_TimestampsNeverGoBackwards(t *testing.T) {
	base := time.Date(2024, 9, 2, 10, 0, 0, 0, time.UTC)
	ticks := []time.Time{
		base, // add
		base.Add(2 * time.Minute),
		base.Add(1 * time.Minute), // clock stepped back
		base.Add(3 * time.Minute),
	}
	i := 0
	clock := func() time.Time {
		tick := ticks[min(i, len(ticks)-1)]
		i++
		return tick
	}

	s := newTestSession(t, WithClock(clock))
	mustAdd(t, s, "Alice", "G1")

	var stamps []time.Time
	for range 3 {
		_, rec, err := s.Pick(pool.Global)
		require.NoError(t, err)
		stamps = append(stamps, rec.CalledAt)
	}
	assert.Equal(t, base.Add(2*time.Minute), stamps[0])
	assert.Equal(t, base.Add(2*time.Minute), stamps[1])
	assert.Equal(t, base.Add(3*time.Minute), stamps[2])
}

func TestSession_StatsSnapshot(t *testing.T) {
	s := newTestSession(t)
	mustAdd(t, s, "Bob", "G1")
	mustAdd(t, s, "Alice", "G1")

	snap := s.StatsSnapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "Alice", snap[0].Name, "ties by name")
	assert.Equal(t, "Bob", snap[1].Name)

	for range 4 {
		_, _, err := s.Pick(pool.Global)
		require.NoError(t, err)
	}
	alice, _ := s.Lookup("Alice")
	bob, _ := s.Lookup("Bob")
	assert.Equal(t, 2, alice.CallCount)
	assert.Equal(t, 2, bob.CallCount)

	st, _, err := s.Pick(pool.Global)
	require.NoError(t, err)
	snap = s.StatsSnapshot()
	assert.Equal(t, st.Name, snap[0].Name)
	assert.Equal(t, 3, snap[0].CallCount)
}

func TestSession_ResetCycle(t *testing.T) {
	s := newTestSession(t)
	mustAdd(t, s, "Alice", "G1")
	mustAdd(t, s, "Bob", "G1")
	mustAdd(t, s, "Carol", "G2")

	st, _, err := s.Pick(pool.Global)
	require.NoError(t, err)
	_, _, err = s.Pick(pool.Group("G1"))
	require.NoError(t, err)
	countBefore, _ := s.Lookup(st.Name)

	s.ResetCycle()
	assert.Zero(t, s.Remaining(pool.Global))
	assert.Zero(t, s.Remaining(pool.Group("G1")))
	assert.Equal(t, 2, s.HistoryLen())
	after, _ := s.Lookup(st.Name)
	assert.Equal(t, countBefore.CallCount, after.CallCount)

	_, _, err = s.Pick(pool.Global)
	require.NoError(t, err)
	assert.Equal(t, 2, s.Remaining(pool.Global))
}

func TestSession_History(t *testing.T) {
	s := newTestSession(t)
	mustAdd(t, s, "Alice", "G1")
	mustAdd(t, s, "Bob", "G1")

	var order []string
	for range 3 {
		st, _, err := s.Pick(pool.Global)
		require.NoError(t, err)
		order = append(order, st.Name)
	}

	recent := s.RecentHistory(2)
	require.Len(t, recent, 2)
	assert.Equal(t, order[2], recent[0].Name)
	assert.Equal(t, order[1], recent[1].Name)
	assert.Len(t, s.RecentHistory(0), 3)

	assert.Equal(t, 3, s.ClearHistory())
	assert.Empty(t, s.RecentHistory(0))
	alice, _ := s.Lookup("Alice")
	bob, _ := s.Lookup("Bob")
	assert.Equal(t, 3, alice.CallCount+bob.CallCount, "clearing history keeps counts")
}

func TestSession_Report(t *testing.T) {
	now := time.Date(2024, 9, 2, 12, 0, 0, 0, time.UTC)
	s := newTestSession(t, WithClock(func() time.Time { return now }))

	empty := s.Report()
	assert.Nil(t, empty.Groups)
	assert.Empty(t, empty.Stats)
	assert.Empty(t, empty.History)

	_, err := s.Import(strings.NewReader(sampleRoster), "roster.csv")
	require.NoError(t, err)
	_, _, err = s.Pick(pool.Group("Science"))
	require.NoError(t, err)

	r := s.Report()
	assert.Equal(t, now, r.GeneratedAt)
	assert.Equal(t, map[string]int{"Math": 1, "Science": 1}, r.Groups)
	require.Len(t, r.Stats, 2)
	assert.Equal(t, "Bob", r.Stats[0].Name)
	assert.Equal(t, 1, r.Stats[0].CallCount)
	require.Len(t, r.History, 1)
	assert.Equal(t, "Bob", r.History[0].Name)
}
