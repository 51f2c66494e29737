package query

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/rollcall/internal/domain/pool"
	"github.com/alem-hub/rollcall/internal/domain/rollcall"
)

func seededSession(t *testing.T) *rollcall.Session {
	t.Helper()
	base := time.Date(2024, 9, 2, 10, 0, 0, 0, time.UTC)
	tick := 0
	s := rollcall.NewSession(
		rollcall.WithEngine(pool.NewEngine(pool.WithSeed(3))),
		rollcall.WithClock(func() time.Time {
			tick++
			return base.Add(time.Duration(tick) * time.Second)
		}),
	)
	_, err := s.Import(strings.NewReader("Alice,Math\nBob,Science\nCarol,Math\n"), "roster.csv")
	require.NoError(t, err)
	return s
}

func TestGetHistoryHandler(t *testing.T) {
	ctx := context.Background()
	s := seededSession(t)
	h := NewGetHistoryHandler(s)

	res, err := h.Handle(ctx, GetHistoryQuery{})
	require.NoError(t, err)
	assert.True(t, res.Empty())
	assert.Empty(t, res.Records)

	var called []string
	for range 4 {
		st, _, err := s.Pick(pool.Global)
		require.NoError(t, err)
		called = append(called, st.Name)
	}

	res, err = h.Handle(ctx, GetHistoryQuery{Limit: 2})
	require.NoError(t, err)
	assert.False(t, res.Empty())
	assert.Equal(t, 4, res.Total)
	require.Len(t, res.Records, 2)
	assert.Equal(t, called[3], res.Records[0].Name)
	assert.Equal(t, called[2], res.Records[1].Name)
	assert.True(t, res.Records[0].CalledAt.After(res.Records[1].CalledAt))

	res, err = h.Handle(ctx, GetHistoryQuery{Limit: 0})
	require.NoError(t, err)
	assert.Len(t, res.Records, 4)

	_, err = h.Handle(ctx, GetHistoryQuery{Limit: -1})
	assert.Error(t, err)
}

func TestGetStatsHandler(t *testing.T) {
	ctx := context.Background()

	res, err := NewGetStatsHandler(rollcall.NewSession()).Handle(ctx)
	require.NoError(t, err)
	assert.True(t, res.Empty())

	s := seededSession(t)
	for range 4 {
		_, _, err := s.Pick(pool.Global)
		require.NoError(t, err)
	}

	res, err = NewGetStatsHandler(s).Handle(ctx)
	require.NoError(t, err)
	require.Len(t, res.Entries, 3)
	assert.Equal(t, 4, res.TotalCalls)
	assert.Equal(t, 2, res.Entries[0].CallCount)
	for i, e := range res.Entries {
		assert.Equal(t, i+1, e.Rank)
		assert.NotEmpty(t, e.StudentID)
	}
	assert.Less(t, res.Entries[1].Name, res.Entries[2].Name, "ties ordered by name")
}

func TestGetGroupsHandler(t *testing.T) {
	ctx := context.Background()

	res, err := NewGetGroupsHandler(rollcall.NewSession()).Handle(ctx)
	require.NoError(t, err)
	assert.True(t, res.NoData)
	assert.Empty(t, res.Groups)

	res, err = NewGetGroupsHandler(seededSession(t)).Handle(ctx)
	require.NoError(t, err)
	assert.False(t, res.NoData)
	assert.Equal(t, []GroupDTO{{Name: "Math", Members: 2}, {Name: "Science", Members: 1}}, res.Groups)
	assert.Equal(t, map[string]int{"Math": 2, "Science": 1}, res.Counts)
}
