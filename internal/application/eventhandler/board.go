package eventhandler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alem-hub/rollcall/internal/domain/callhistory"
	"github.com/alem-hub/rollcall/internal/domain/shared"
	"github.com/alem-hub/rollcall/internal/domain/student"
)

// ═══════════════════════════════════════════════════════════════════════════
// BOARD MIRROR
// Keeps the shared call board in step with the session.
// ═══════════════════════════════════════════════════════════════════════════

// Board is the write side of the shared call board.
type Board interface {
	RecordCall(ctx context.Context, rec callhistory.CallRecord, scope string) error
	Rebuild(ctx context.Context, students []student.Student) error
	ForgetLast(ctx context.Context) error
}

// BoardMirror subscribes a Board to the domain events.
type BoardMirror struct {
	board   Board
	roster  RosterSnapshotter
	timeout time.Duration
	logger  *slog.Logger
}

// NewBoardMirror creates a new BoardMirror.
func NewBoardMirror(board Board, roster RosterSnapshotter, timeout time.Duration, logger *slog.Logger) *BoardMirror {
	return &BoardMirror{
		board:   board,
		roster:  roster,
		timeout: timeout,
		logger:  mirrorLogger(logger, "board_mirror"),
	}
}

// Register subscribes the mirror to every event it consumes.
func (m *BoardMirror) Register(sub shared.EventSubscriber) error {
	return subscribeAll(sub, []subscription{
		{shared.EventStudentAdded, m.OnRosterChanged},
		{shared.EventRosterImported, m.OnRosterChanged},
		{shared.EventStudentCalled, m.OnStudentCalled},
		{shared.EventHistoryCleared, m.OnHistoryCleared},
	})
}

// OnRosterChanged rebuilds the board from the current roster.
func (m *BoardMirror) OnRosterChanged(event shared.Event) error {
	if e, ok := event.(shared.RosterImportedEvent); ok && e.Added == 0 {
		return nil
	}

	ctx, cancel := withTimeout(m.timeout)
	defer cancel()

	if err := m.board.Rebuild(ctx, m.roster.StatsSnapshot()); err != nil {
		return fmt.Errorf("rebuild board after %s: %w", event.EventType(), err)
	}
	return nil
}

// OnStudentCalled bumps the called student.
func (m *BoardMirror) OnStudentCalled(event shared.Event) error {
	e, ok := event.(shared.StudentCalledEvent)
	if !ok {
		return unexpected(m.logger, event)
	}

	ctx, cancel := withTimeout(m.timeout)
	defer cancel()

	rec := callhistory.CallRecord{
		StudentID: e.AggregateID(),
		Name:      e.Name,
		Group:     e.Group,
		CalledAt:  e.OccurredAt(),
	}
	if err := m.board.RecordCall(ctx, rec, e.Scope); err != nil {
		return fmt.Errorf("board call of %q: %w", e.Name, err)
	}
	return nil
}

// OnHistoryCleared drops the stored last call. Counts are kept, as in the
// session.
func (m *BoardMirror) OnHistoryCleared(event shared.Event) error {
	ctx, cancel := withTimeout(m.timeout)
	defer cancel()

	if err := m.board.ForgetLast(ctx); err != nil {
		return fmt.Errorf("board clear: %w", err)
	}
	return nil
}
