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
// ARCHIVE MIRROR
// Writes roster changes and calls to the persistent archive.
// ═══════════════════════════════════════════════════════════════════════════

// Archive is the write side of the persistent archive.
type Archive interface {
	SaveStudents(ctx context.Context, students []student.Student) error
	RecordCall(ctx context.Context, rec callhistory.CallRecord, scope string, callCount int) error
	ClearCalls(ctx context.Context, at time.Time) (int64, error)
}

// ArchiveMirror subscribes an Archive to the domain events.
type ArchiveMirror struct {
	archive Archive
	roster  RosterSnapshotter
	timeout time.Duration
	logger  *slog.Logger
}

// NewArchiveMirror creates a new ArchiveMirror.
func NewArchiveMirror(archive Archive, roster RosterSnapshotter, timeout time.Duration, logger *slog.Logger) *ArchiveMirror {
	return &ArchiveMirror{
		archive: archive,
		roster:  roster,
		timeout: timeout,
		logger:  mirrorLogger(logger, "archive_mirror"),
	}
}

// Register subscribes the mirror to every event it consumes.
func (m *ArchiveMirror) Register(sub shared.EventSubscriber) error {
	return subscribeAll(sub, []subscription{
		{shared.EventStudentAdded, m.OnStudentAdded},
		{shared.EventRosterImported, m.OnRosterImported},
		{shared.EventStudentCalled, m.OnStudentCalled},
		{shared.EventHistoryCleared, m.OnHistoryCleared},
	})
}

// OnStudentAdded stores the new student.
func (m *ArchiveMirror) OnStudentAdded(event shared.Event) error {
	e, ok := event.(shared.StudentAddedEvent)
	if !ok {
		return unexpected(m.logger, event)
	}

	ctx, cancel := withTimeout(m.timeout)
	defer cancel()

	s := student.Student{
		ID:      e.AggregateID(),
		Name:    e.Name,
		Group:   e.Group,
		AddedAt: e.OccurredAt(),
	}
	if err := m.archive.SaveStudents(ctx, []student.Student{s}); err != nil {
		return fmt.Errorf("archive student %q: %w", e.Name, err)
	}
	return nil
}

// OnRosterImported stores the whole roster, since an import may add many
// students at once.
func (m *ArchiveMirror) OnRosterImported(event shared.Event) error {
	e, ok := event.(shared.RosterImportedEvent)
	if !ok {
		return unexpected(m.logger, event)
	}
	if e.Added == 0 {
		return nil
	}

	ctx, cancel := withTimeout(m.timeout)
	defer cancel()

	if err := m.archive.SaveStudents(ctx, m.roster.StatsSnapshot()); err != nil {
		return fmt.Errorf("archive import %q: %w", e.Source, err)
	}
	m.logger.Debug("roster archived", "source", e.Source, "added", e.Added)
	return nil
}

// OnStudentCalled appends the call.
func (m *ArchiveMirror) OnStudentCalled(event shared.Event) error {
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
	if err := m.archive.RecordCall(ctx, rec, e.Scope, e.CallCount); err != nil {
		return fmt.Errorf("archive call of %q: %w", e.Name, err)
	}
	return nil
}

// OnHistoryCleared marks the archived calls as cleared.
func (m *ArchiveMirror) OnHistoryCleared(event shared.Event) error {
	if _, ok := event.(shared.HistoryClearedEvent); !ok {
		return unexpected(m.logger, event)
	}

	ctx, cancel := withTimeout(m.timeout)
	defer cancel()

	n, err := m.archive.ClearCalls(ctx, event.OccurredAt())
	if err != nil {
		return fmt.Errorf("archive clear: %w", err)
	}
	m.logger.Debug("archived calls cleared", "rows", n)
	return nil
}
