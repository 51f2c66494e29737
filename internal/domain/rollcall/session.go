// Package rollcall holds the Session, the single owner of the roster, the
// sampling pools, the call history and the random source.
//
// Every operation runs under one mutex, so a pool refill and the pick that
// consumes it are atomic with respect to other callers.
package rollcall

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"
	"time"

	"github.com/alem-hub/rollcall/internal/domain/callhistory"
	"github.com/alem-hub/rollcall/internal/domain/pool"
	"github.com/alem-hub/rollcall/internal/domain/shared"
	"github.com/alem-hub/rollcall/internal/domain/student"
)

// Session is the roll-call state of one running process.
type Session struct {
	mu      sync.Mutex
	roster  *student.Roster
	engine  *pool.Engine
	history *callhistory.Log
	now     func() time.Time
}

// Option configures a Session.
type Option func(*Session)

// WithEngine replaces the default sampling engine, typically with a seeded one.
func WithEngine(e *pool.Engine) Option {
	return func(s *Session) {
		if e != nil {
			s.engine = e
		}
	}
}

// WithClock sets the time source used for AddedAt and call timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSession creates an empty session.
func NewSession(opts ...Option) *Session {
	s := &Session{
		roster:  student.NewRoster(),
		history: callhistory.NewLog(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = pool.NewEngine()
	}
	return s
}

// ══════════════════════════════════════════════════════════════════════════════
// ROSTER
// ══════════════════════════════════════════════════════════════════════════════

// AddStudent adds one student and discards every pool so the next pick starts
// a fresh cycle that includes the newcomer.
func (s *Session) AddStudent(name, group string) (student.Student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, st, err := s.roster.Add(name, group, s.now())
	if err != nil {
		return student.Student{}, err
	}
	s.engine.Reset()
	return st, nil
}

// Import reads "name,group" lines from r. Students are added in bulk and the
// pools are reset once at the end.
//
// A source that fails before yielding a single byte is unreadable: the error
// is ErrSourceUnreadable and nothing changes. A read error after that is
// returned together with the stats gathered so far; the students already
// added stay on the roster and the pools are reset.
func (s *Session) Import(r io.Reader, source string) (student.ImportStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := student.ImportStats{Source: source}
	br := bufio.NewReader(r)
	at := s.now()
	consumed := false

	for {
		line, readErr := br.ReadString('\n')
		if line != "" {
			consumed = true
			s.importLine(line, at, &stats)
		}
		if readErr == nil {
			continue
		}
		if errors.Is(readErr, io.EOF) {
			s.engine.Reset()
			return stats, nil
		}
		if !consumed {
			return student.ImportStats{}, shared.ErrSourceUnreadable.
				WithMessage("source %q could not be read", source).
				WithCause(readErr)
		}
		s.engine.Reset()
		return stats, fmt.Errorf("import %s: read: %w", source, readErr)
	}
}

func (s *Session) importLine(line string, at time.Time, stats *student.ImportStats) {
	name, group, kind := student.ParseLine(line)
	switch kind {
	case student.LineSkip:
		return
	case student.LineMalformed:
		stats.Malformed++
		return
	}

	if _, _, err := s.roster.Add(name, group, at); err != nil {
		if errors.Is(err, shared.ErrDuplicateStudent) {
			stats.Duplicates++
		} else {
			stats.Malformed++
		}
		return
	}
	stats.Added++
}

// Len returns the number of students on the roster.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Len()
}

// Lookup returns the current snapshot of a student by name.
func (s *Session) Lookup(name string) (student.Student, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.Lookup(name)
}

// GroupCounts returns member counts per group; false means the roster is empty.
func (s *Session) GroupCounts() (map[string]int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.GroupCounts()
}

// StatsSnapshot returns students by descending call count, then by name.
func (s *Session) StatsSnapshot() []student.Student {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.roster.StatsSnapshot()
}

// ══════════════════════════════════════════════════════════════════════════════
// SAMPLING
// ══════════════════════════════════════════════════════════════════════════════

// Pick selects the next student of scope, bumps their call count and records
// the call. On ErrNoEligibleStudents nothing is changed.
func (s *Session) Pick(scope pool.Scope) (student.Student, callhistory.CallRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slot, err := s.engine.Next(scope, s.roster)
	if err != nil {
		return student.Student{}, callhistory.CallRecord{}, err
	}

	st := s.roster.MarkCalled(slot)
	rec := callhistory.CallRecord{
		StudentID: st.ID,
		Name:      st.Name,
		Group:     st.Group,
		CalledAt:  s.stamp(),
	}
	s.history.Record(rec)
	return st, rec, nil
}

// stamp returns the current time, never earlier than the last recorded call.
func (s *Session) stamp() time.Time {
	now := s.now()
	if last, ok := s.history.Last(); ok && now.Before(last.CalledAt) {
		return last.CalledAt
	}
	return now
}

// Remaining returns the picks left in the current cycle of scope.
func (s *Session) Remaining(scope pool.Scope) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Remaining(scope)
}

// ResetCycle discards every pool. Call counts and history are untouched.
func (s *Session) ResetCycle() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.engine.Reset()
}

// ══════════════════════════════════════════════════════════════════════════════
// HISTORY
// ══════════════════════════════════════════════════════════════════════════════

// RecentHistory returns up to limit records, newest first; limit <= 0 means all.
func (s *Session) RecentHistory(limit int) []callhistory.CallRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Collect(s.history.MostRecent(limit))
}

// HistoryLen returns the number of recorded calls.
func (s *Session) HistoryLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Len()
}

// ClearHistory discards every call record and returns how many were dropped.
func (s *Session) ClearHistory() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.history.Clear()
}

// ══════════════════════════════════════════════════════════════════════════════
// REPORT
// ══════════════════════════════════════════════════════════════════════════════

// Report is a consistent copy of the session taken under one lock.
type Report struct {
	GeneratedAt time.Time
	Stats       []student.Student
	Groups      map[string]int
	History     []callhistory.CallRecord
}

// Report snapshots statistics, group counts and the full history, newest
// call first.
func (s *Session) Report() Report {
	s.mu.Lock()
	defer s.mu.Unlock()

	groups, _ := s.roster.GroupCounts()
	return Report{
		GeneratedAt: s.now(),
		Stats:       s.roster.StatsSnapshot(),
		Groups:      groups,
		History:     slices.Collect(s.history.MostRecent(0)),
	}
}
