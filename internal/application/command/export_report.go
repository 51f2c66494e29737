package command

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alem-hub/rollcall/internal/domain/rollcall"
	"github.com/alem-hub/rollcall/internal/domain/shared"
	"github.com/alem-hub/rollcall/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPORT REPORT COMMAND
// Writes statistics, groups and history to a workbook.
// ══════════════════════════════════════════════════════════════════════════════

// ExportReportCommand names the destination file.
type ExportReportCommand struct {
	Path string
}

// Validate checks the command.
func (c ExportReportCommand) Validate() error {
	if student.Trim(c.Path) == "" {
		return shared.NewDomainError("export", "Validate", shared.ErrEmptyValue, "path is required")
	}
	return nil
}

// ExportReportResult describes the written file.
type ExportReportResult struct {
	Path     string
	Students int
	Calls    int
	Duration time.Duration
}

// ReportSource provides a consistent session snapshot.
type ReportSource interface {
	Report() rollcall.Report
}

// ReportWriter persists a report and returns where it went.
type ReportWriter interface {
	Export(ctx context.Context, path string, report rollcall.Report) (string, error)
}

// ExportReportHandler handles ExportReportCommand.
type ExportReportHandler struct {
	session ReportSource
	writer  ReportWriter
	logger  *slog.Logger
}

// NewExportReportHandler creates a new ExportReportHandler.
func NewExportReportHandler(session ReportSource, writer ReportWriter, logger *slog.Logger) *ExportReportHandler {
	return &ExportReportHandler{
		session: session,
		writer:  writer,
		logger:  loggerOrDefault(logger),
	}
}

// Handle executes the export.
func (h *ExportReportHandler) Handle(ctx context.Context, cmd ExportReportCommand) (*ExportReportResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("export_report: %w", err)
	}

	start := time.Now()
	report := h.session.Report()

	path, err := h.writer.Export(ctx, student.Trim(cmd.Path), report)
	if err != nil {
		return nil, fmt.Errorf("export_report: %w", err)
	}

	result := &ExportReportResult{
		Path:     path,
		Students: len(report.Stats),
		Calls:    len(report.History),
		Duration: time.Since(start),
	}

	h.logger.InfoContext(ctx, "report exported",
		"path", result.Path,
		"students", result.Students,
		"calls", result.Calls,
		"duration_ms", result.Duration.Milliseconds(),
	)
	return result, nil
}
