package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/alem-hub/rollcall/internal/domain/shared"
	"github.com/alem-hub/rollcall/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// IMPORT ROSTER COMMAND
// Bulk-loads "name,group" lines. Pools are reset once after the source has
// been read; an unreadable source changes nothing.
// ══════════════════════════════════════════════════════════════════════════════

// ImportRosterCommand names the source to import.
type ImportRosterCommand struct {
	// Source is the identifier handed to the SourceOpener, usually a path.
	Source string
}

// Validate validates the command.
func (c ImportRosterCommand) Validate() error {
	if strings.TrimSpace(c.Source) == "" {
		return shared.ErrSourceUnreadable.WithMessage("source cannot be empty")
	}
	return nil
}

// ImportRosterResult contains the tallies of one import.
type ImportRosterResult struct {
	Stats student.ImportStats

	// ReadErr is set when the source failed part-way. Stats then cover the
	// lines read before the failure.
	ReadErr error

	Duration time.Duration
}

// SourceOpener resolves an import identifier into a stream.
type SourceOpener interface {
	Open(ctx context.Context, identifier string) (io.ReadCloser, error)
}

// RosterImporter is the part of the session used by ImportRosterHandler.
type RosterImporter interface {
	Import(r io.Reader, source string) (student.ImportStats, error)
}

// ImportRosterHandler handles ImportRosterCommand.
type ImportRosterHandler struct {
	sources        SourceOpener
	roster         RosterImporter
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
}

// NewImportRosterHandler creates a new ImportRosterHandler.
func NewImportRosterHandler(
	sources SourceOpener,
	roster RosterImporter,
	eventPublisher shared.EventPublisher,
	logger *slog.Logger,
) *ImportRosterHandler {
	return &ImportRosterHandler{
		sources:        sources,
		roster:         roster,
		eventPublisher: eventPublisher,
		logger:         loggerOrDefault(logger),
	}
}

// Handle executes the import. It fails with ErrSourceUnreadable when the
// source cannot be opened or yields nothing but an error.
func (h *ImportRosterHandler) Handle(ctx context.Context, cmd ImportRosterCommand) (*ImportRosterResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("import_roster: validation failed: %w", err)
	}

	start := time.Now()
	rc, err := h.sources.Open(ctx, cmd.Source)
	if err != nil {
		if !errors.Is(err, shared.ErrSourceUnreadable) {
			err = shared.ErrSourceUnreadable.WithCause(err)
		}
		return nil, fmt.Errorf("import_roster: %w", err)
	}
	defer rc.Close()

	stats, err := h.roster.Import(rc, cmd.Source)
	result := &ImportRosterResult{Stats: stats}
	if err != nil {
		if errors.Is(err, shared.ErrSourceUnreadable) {
			return nil, fmt.Errorf("import_roster: %w", err)
		}
		result.ReadErr = err
		h.logger.WarnContext(ctx, "import stopped early",
			"source", cmd.Source,
			"error", err,
		)
	}
	result.Duration = time.Since(start)

	h.logger.InfoContext(ctx, "roster imported",
		"source", cmd.Source,
		"added", stats.Added,
		"duplicates", stats.Duplicates,
		"malformed", stats.Malformed,
		"duration", result.Duration,
	)

	event := shared.NewRosterImportedEvent(cmd.Source, stats.Added, stats.Duplicates, stats.Malformed, time.Now())
	event.BaseEvent = event.WithCorrelationID(newCorrelationID())
	publish(h.logger, h.eventPublisher, event)

	return result, nil
}
