package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alem-hub/rollcall/internal/domain/shared"
	"github.com/alem-hub/rollcall/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// ADD STUDENT COMMAND
// Adds a single student and starts a fresh cycle that includes them.
// ══════════════════════════════════════════════════════════════════════════════

// AddStudentCommand contains the data for a new roster entry.
type AddStudentCommand struct {
	Name  string
	Group string
}

// Validate validates the command.
func (c AddStudentCommand) Validate() error {
	if student.Trim(c.Name) == "" || student.Trim(c.Group) == "" {
		return shared.ErrInvalidStudent
	}
	return nil
}

// AddStudentResult contains the created student.
type AddStudentResult struct {
	Student student.Student
	AddedAt time.Time
}

// StudentAdder is the part of the session used by AddStudentHandler.
type StudentAdder interface {
	AddStudent(name, group string) (student.Student, error)
}

// AddStudentHandler handles AddStudentCommand.
type AddStudentHandler struct {
	roster         StudentAdder
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
}

// NewAddStudentHandler creates a new AddStudentHandler.
func NewAddStudentHandler(roster StudentAdder, eventPublisher shared.EventPublisher, logger *slog.Logger) *AddStudentHandler {
	return &AddStudentHandler{
		roster:         roster,
		eventPublisher: eventPublisher,
		logger:         loggerOrDefault(logger),
	}
}

// Handle executes the command. A taken name yields ErrDuplicateStudent and
// leaves the existing entry untouched.
func (h *AddStudentHandler) Handle(ctx context.Context, cmd AddStudentCommand) (*AddStudentResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("add_student: validation failed: %w", err)
	}

	st, err := h.roster.AddStudent(cmd.Name, cmd.Group)
	if err != nil {
		return nil, fmt.Errorf("add_student: %w", err)
	}

	h.logger.DebugContext(ctx, "student added",
		"student_id", st.ID,
		"name", st.Name,
		"group", st.Group,
	)

	event := shared.NewStudentAddedEvent(st.ID, st.Name, st.Group, st.AddedAt)
	event.BaseEvent = event.WithCorrelationID(newCorrelationID())
	publish(h.logger, h.eventPublisher, event)

	return &AddStudentResult{Student: st, AddedAt: st.AddedAt}, nil
}
