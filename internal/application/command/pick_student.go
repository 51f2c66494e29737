package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alem-hub/rollcall/internal/domain/callhistory"
	"github.com/alem-hub/rollcall/internal/domain/pool"
	"github.com/alem-hub/rollcall/internal/domain/shared"
	"github.com/alem-hub/rollcall/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// PICK STUDENT COMMAND
// Calls on the next student of the current cycle, globally or within a group.
// ══════════════════════════════════════════════════════════════════════════════

// PickStudentCommand selects the scope of the pick.
type PickStudentCommand struct {
	// Group restricts the pick to one group. Empty means the whole roster.
	Group string
}

// Scope returns the pool scope the command draws from.
func (c PickStudentCommand) Scope() pool.Scope {
	if g := student.Trim(c.Group); g != "" {
		return pool.Group(g)
	}
	return pool.Global
}

// PickStudentResult contains the selected student and the call record.
type PickStudentResult struct {
	// Student is the snapshot after the call count was incremented.
	Student student.Student

	Record callhistory.CallRecord

	// Remaining is how many picks are left in this scope's cycle.
	Remaining int
}

// StudentPicker is the part of the session used by PickStudentHandler.
type StudentPicker interface {
	Pick(scope pool.Scope) (student.Student, callhistory.CallRecord, error)
	Remaining(scope pool.Scope) int
}

// PickStudentHandler handles PickStudentCommand.
type PickStudentHandler struct {
	session        StudentPicker
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
}

// NewPickStudentHandler creates a new PickStudentHandler.
func NewPickStudentHandler(session StudentPicker, eventPublisher shared.EventPublisher, logger *slog.Logger) *PickStudentHandler {
	return &PickStudentHandler{
		session:        session,
		eventPublisher: eventPublisher,
		logger:         loggerOrDefault(logger),
	}
}

// Handle executes the pick. ErrNoEligibleStudents is returned for an empty
// roster or a group without members; nothing is recorded then.
func (h *PickStudentHandler) Handle(ctx context.Context, cmd PickStudentCommand) (*PickStudentResult, error) {
	scope := cmd.Scope()

	st, rec, err := h.session.Pick(scope)
	if err != nil {
		return nil, fmt.Errorf("pick_student: %w", err)
	}

	result := &PickStudentResult{
		Student:   st,
		Record:    rec,
		Remaining: h.session.Remaining(scope),
	}

	h.logger.DebugContext(ctx, "student called",
		"scope", scope.String(),
		"name", st.Name,
		"group", st.Group,
		"call_count", st.CallCount,
		"remaining", result.Remaining,
	)

	event := shared.NewStudentCalledEvent(st.ID, st.Name, st.Group, scope.Name(), st.CallCount, rec.CalledAt)
	event.BaseEvent = event.WithCorrelationID(newCorrelationID())
	publish(h.logger, h.eventPublisher, event)

	return result, nil
}
