package query

import (
	"context"
	"sort"

	"github.com/alem-hub/rollcall/internal/domain/student"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET STATS QUERY
// Call counts per student, most called first, ties by name.
// ══════════════════════════════════════════════════════════════════════════════

// StatsEntryDTO is one row of the statistics table.
type StatsEntryDTO struct {
	// Rank is the 1-based position. Students with equal counts get distinct
	// ranks in name order.
	Rank      int    `json:"rank"`
	StudentID string `json:"student_id"`
	Name      string `json:"name"`
	Group     string `json:"group"`
	CallCount int    `json:"call_count"`
}

// GetStatsResult contains the statistics table.
type GetStatsResult struct {
	Entries    []StatsEntryDTO `json:"entries"`
	TotalCalls int             `json:"total_calls"`
}

// Empty reports whether the roster has no students.
func (r *GetStatsResult) Empty() bool {
	return len(r.Entries) == 0
}

// StatsReader is the part of the session used by GetStatsHandler.
type StatsReader interface {
	StatsSnapshot() []student.Student
}

// GetStatsHandler returns the statistics table.
type GetStatsHandler struct {
	roster StatsReader
}

// NewGetStatsHandler creates a new GetStatsHandler.
func NewGetStatsHandler(roster StatsReader) *GetStatsHandler {
	return &GetStatsHandler{roster: roster}
}

// Handle executes the query.
func (h *GetStatsHandler) Handle(ctx context.Context) (*GetStatsResult, error) {
	snapshot := h.roster.StatsSnapshot()
	result := &GetStatsResult{Entries: make([]StatsEntryDTO, 0, len(snapshot))}
	for i, s := range snapshot {
		result.Entries = append(result.Entries, StatsEntryDTO{
			Rank:      i + 1,
			StudentID: s.ID,
			Name:      s.Name,
			Group:     s.Group,
			CallCount: s.CallCount,
		})
		result.TotalCalls += s.CallCount
	}
	return result, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// GET GROUPS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// GroupDTO is one group and its member count.
type GroupDTO struct {
	Name    string `json:"name"`
	Members int    `json:"members"`
}

// GetGroupsResult lists the groups sorted by name.
type GetGroupsResult struct {
	Groups []GroupDTO `json:"groups"`

	// Counts is the raw group -> members mapping.
	Counts map[string]int `json:"-"`

	// NoData is set when the roster is empty.
	NoData bool `json:"no_data"`
}

// GroupReader is the part of the session used by GetGroupsHandler.
type GroupReader interface {
	GroupCounts() (map[string]int, bool)
}

// GetGroupsHandler returns the group membership counts.
type GetGroupsHandler struct {
	roster GroupReader
}

// NewGetGroupsHandler creates a new GetGroupsHandler.
func NewGetGroupsHandler(roster GroupReader) *GetGroupsHandler {
	return &GetGroupsHandler{roster: roster}
}

// Handle executes the query.
func (h *GetGroupsHandler) Handle(ctx context.Context) (*GetGroupsResult, error) {
	counts, ok := h.roster.GroupCounts()
	if !ok {
		return &GetGroupsResult{NoData: true}, nil
	}

	result := &GetGroupsResult{
		Groups: make([]GroupDTO, 0, len(counts)),
		Counts: counts,
	}
	for name, n := range counts {
		result.Groups = append(result.Groups, GroupDTO{Name: name, Members: n})
	}
	sort.Slice(result.Groups, func(i, j int) bool {
		return result.Groups[i].Name < result.Groups[j].Name
	})
	return result, nil
}
