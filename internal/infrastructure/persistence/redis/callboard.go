package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/alem-hub/rollcall/internal/domain/callhistory"
	"github.com/alem-hub/rollcall/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// CALL BOARD
// ══════════════════════════════════════════════════════════════════════════════

// ErrInvalidCount is returned by Top for a non-positive count.
var ErrInvalidCount = errors.New("callboard: count must be positive")

const (
	boardAll   = "all"
	boardGroup = "group"
)

// BoardEntry is one student's position on a call board.
type BoardEntry struct {
	Name      string
	CallCount int64
	Rank      int64
}

// LastCall is the most recent pick as stored in Redis.
type LastCall struct {
	Name     string    `json:"name"`
	Group    string    `json:"group"`
	Scope    string    `json:"scope"`
	CalledAt time.Time `json:"called_at"`
}

// CallBoard keeps per-session call counts in sorted sets so other processes
// can read them without talking to the roll-call process.
//
// Keys:
//   - "rollcall:{session}:calls:all" holds name -> call count
//   - "rollcall:{session}:calls:group:{group}" holds the same per group
//   - "rollcall:{session}:last" holds the last pick as JSON
type CallBoard struct {
	cache     *Cache
	sessionID string
}

// NewCallBoard creates a CallBoard for one session.
func NewCallBoard(cache *Cache, sessionID string) *CallBoard {
	return &CallBoard{cache: cache, sessionID: sessionID}
}

// BoardKey returns the sorted set key of a group, or of the whole roster
// when group is empty.
func BoardKey(sessionID, group string) string {
	if group == "" {
		return SessionKey(sessionID, "calls", boardAll)
	}
	return SessionKey(sessionID, "calls", boardGroup, group)
}

// LastCallKey returns the key holding the last pick.
func LastCallKey(sessionID string) string {
	return SessionKey(sessionID, "last")
}

// RecordCall bumps the student on the global and group boards and stores
// the pick as the last call.
func (b *CallBoard) RecordCall(ctx context.Context, rec callhistory.CallRecord, scope string) error {
	allKey := BoardKey(b.sessionID, "")
	groupKey := BoardKey(b.sessionID, rec.Group)

	pipe := b.cache.Client().TxPipeline()
	pipe.ZIncrBy(ctx, allKey, 1, rec.Name)
	pipe.ZIncrBy(ctx, groupKey, 1, rec.Name)
	pipe.Expire(ctx, allKey, TTLSessionData)
	pipe.Expire(ctx, groupKey, TTLSessionData)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("callboard: record call: %w", err)
	}

	last := LastCall{Name: rec.Name, Group: rec.Group, Scope: scope, CalledAt: rec.CalledAt}
	return b.cache.Set(ctx, LastCallKey(b.sessionID), last, TTLSessionData)
}

// Rebuild replaces every board with the given roster snapshot.
func (b *CallBoard) Rebuild(ctx context.Context, students []student.Student) error {
	allKey := BoardKey(b.sessionID, "")
	byGroup := make(map[string][]redis.Z)
	all := make([]redis.Z, 0, len(students))

	for _, s := range students {
		z := redis.Z{Score: float64(s.CallCount), Member: s.Name}
		all = append(all, z)
		byGroup[s.Group] = append(byGroup[s.Group], z)
	}

	pipe := b.cache.Client().TxPipeline()
	pipe.Del(ctx, allKey)
	if len(all) > 0 {
		pipe.ZAdd(ctx, allKey, all...)
		pipe.Expire(ctx, allKey, TTLSessionData)
	}
	for group, members := range byGroup {
		key := BoardKey(b.sessionID, group)
		pipe.Del(ctx, key)
		pipe.ZAdd(ctx, key, members...)
		pipe.Expire(ctx, key, TTLSessionData)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("callboard: rebuild: %w", err)
	}
	return nil
}

// Top returns the count most called students of a group, or of the whole
// roster when group is empty. Equal counts come back in reverse name order,
// as Redis orders them.
func (b *CallBoard) Top(ctx context.Context, group string, count int) ([]BoardEntry, error) {
	if count <= 0 {
		return nil, ErrInvalidCount
	}

	zs, err := b.cache.Client().ZRevRangeWithScores(ctx, BoardKey(b.sessionID, group), 0, int64(count-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("callboard: top: %w", err)
	}

	entries := make([]BoardEntry, 0, len(zs))
	for i, z := range zs {
		name, _ := z.Member.(string)
		entries = append(entries, BoardEntry{
			Name:      name,
			CallCount: int64(z.Score),
			Rank:      int64(i + 1),
		})
	}
	return entries, nil
}

// Last returns the last pick, or ErrCacheMiss when there is none.
func (b *CallBoard) Last(ctx context.Context) (*LastCall, error) {
	var last LastCall
	if err := b.cache.Get(ctx, LastCallKey(b.sessionID), &last); err != nil {
		return nil, err
	}
	return &last, nil
}

// ForgetLast drops the stored last pick. Counts stay.
func (b *CallBoard) ForgetLast(ctx context.Context) error {
	return b.cache.Delete(ctx, LastCallKey(b.sessionID))
}
