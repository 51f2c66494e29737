package query

import (
	"context"
	"errors"
	"time"

	"github.com/alem-hub/rollcall/internal/domain/callhistory"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET HISTORY QUERY
// Returns the most recent calls, newest first.
// ══════════════════════════════════════════════════════════════════════════════

// GetHistoryQuery contains the request parameters.
type GetHistoryQuery struct {
	// Limit caps the number of records. Zero means all of them.
	Limit int
}

// Validate checks the query parameters.
func (q GetHistoryQuery) Validate() error {
	if q.Limit < 0 {
		return errors.New("limit cannot be negative")
	}
	return nil
}

// CallRecordDTO is one history line.
type CallRecordDTO struct {
	StudentID string    `json:"student_id"`
	Name      string    `json:"name"`
	Group     string    `json:"group"`
	CalledAt  time.Time `json:"called_at"`
}

// GetHistoryResult contains the records and the total history size.
type GetHistoryResult struct {
	Records []CallRecordDTO `json:"records"`
	Total   int             `json:"total"`
}

// Empty reports whether there is no history at all.
func (r *GetHistoryResult) Empty() bool {
	return r.Total == 0
}

// HistoryReader is the part of the session used by GetHistoryHandler.
type HistoryReader interface {
	RecentHistory(limit int) []callhistory.CallRecord
	HistoryLen() int
}

// GetHistoryHandler handles GetHistoryQuery.
type GetHistoryHandler struct {
	history HistoryReader
}

// NewGetHistoryHandler creates a new GetHistoryHandler.
func NewGetHistoryHandler(history HistoryReader) *GetHistoryHandler {
	return &GetHistoryHandler{history: history}
}

// Handle executes the query.
func (h *GetHistoryHandler) Handle(ctx context.Context, q GetHistoryQuery) (*GetHistoryResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	records := h.history.RecentHistory(q.Limit)
	result := &GetHistoryResult{
		Records: make([]CallRecordDTO, 0, len(records)),
		Total:   h.history.HistoryLen(),
	}
	for _, r := range records {
		result.Records = append(result.Records, CallRecordDTO{
			StudentID: r.StudentID,
			Name:      r.Name,
			Group:     r.Group,
			CalledAt:  r.CalledAt,
		})
	}
	return result, nil
}
