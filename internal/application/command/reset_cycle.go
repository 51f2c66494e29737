package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/alem-hub/rollcall/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// RESET CYCLE / CLEAR HISTORY COMMANDS
// ══════════════════════════════════════════════════════════════════════════════

// CycleResetter discards the sampling pools.
type CycleResetter interface {
	ResetCycle()
}

// ResetCycleHandler starts a fresh cycle over the full roster.
// Call counts and history are kept.
type ResetCycleHandler struct {
	session        CycleResetter
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
}

// NewResetCycleHandler creates a new ResetCycleHandler.
func NewResetCycleHandler(session CycleResetter, eventPublisher shared.EventPublisher, logger *slog.Logger) *ResetCycleHandler {
	return &ResetCycleHandler{
		session:        session,
		eventPublisher: eventPublisher,
		logger:         loggerOrDefault(logger),
	}
}

// Handle executes the reset.
func (h *ResetCycleHandler) Handle(ctx context.Context) error {
	h.session.ResetCycle()
	h.logger.DebugContext(ctx, "cycle reset")

	event := shared.NewCycleResetEvent(time.Now())
	event.BaseEvent = event.WithCorrelationID(newCorrelationID())
	publish(h.logger, h.eventPublisher, event)
	return nil
}

// HistoryClearer discards the call history.
type HistoryClearer interface {
	ClearHistory() int
}

// ClearHistoryHandler discards every call record irreversibly.
type ClearHistoryHandler struct {
	session        HistoryClearer
	eventPublisher shared.EventPublisher
	logger         *slog.Logger
}

// NewClearHistoryHandler creates a new ClearHistoryHandler.
func NewClearHistoryHandler(session HistoryClearer, eventPublisher shared.EventPublisher, logger *slog.Logger) *ClearHistoryHandler {
	return &ClearHistoryHandler{
		session:        session,
		eventPublisher: eventPublisher,
		logger:         loggerOrDefault(logger),
	}
}

// Handle executes the clear and returns the number of discarded records.
func (h *ClearHistoryHandler) Handle(ctx context.Context) (int, error) {
	n := h.session.ClearHistory()
	h.logger.InfoContext(ctx, "history cleared", "discarded", n)

	event := shared.NewHistoryClearedEvent(n, time.Now())
	event.BaseEvent = event.WithCorrelationID(newCorrelationID())
	publish(h.logger, h.eventPublisher, event)
	return n, nil
}
