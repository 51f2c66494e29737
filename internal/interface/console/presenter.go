package console

import (
	"fmt"
	"io"
	"time"

	"github.com/alem-hub/rollcall/internal/application/command"
	"github.com/alem-hub/rollcall/internal/application/query"
	"github.com/alem-hub/rollcall/pkg/timeutil"
)

// Fixed console messages.
const (
	MsgNoHistory      = "No history yet"
	MsgNoStudentData  = "No student data"
	MsgNoGroupData    = "No group data"
	MsgInvalidInput   = "Invalid input, try again."
	MsgUnknownOption  = "Unknown option."
	MsgNoStudents     = "No students available."
	MsgGroupExhausted = "Group empty or all called."
	MsgGoodbye        = "Goodbye!"
)

// RenderMenu prints the main menu and the selection prompt.
func RenderMenu(w io.Writer, exportEnabled bool) {
	fmt.Fprint(w, "\n=== Random Roll Call System ===\n"+
		"1. Add student\n"+
		"2. Call random student\n"+
		"3. Call by group\n"+
		"4. Show history\n"+
		"5. Show statistics\n"+
		"6. Show groups\n"+
		"7. Reset cycle\n"+
		"8. Clear history\n"+
		"9. Import from CSV\n")
	if exportEnabled {
		fmt.Fprint(w, "10. Export report\n")
	}
	fmt.Fprint(w, "0. Exit\nSelect: ")
}

// RenderHistory prints one "stamp - group - name" line per record, newest
// first.
func RenderHistory(w io.Writer, res *query.GetHistoryResult, loc *time.Location) {
	if res == nil || res.Empty() {
		fmt.Fprintln(w, MsgNoHistory)
		return
	}
	for _, r := range res.Records {
		fmt.Fprintf(w, "%s - %s - %s\n", timeutil.FormatStamp(r.CalledAt, loc), r.Group, r.Name)
	}
}

// RenderStats prints the statistics table.
func RenderStats(w io.Writer, res *query.GetStatsResult) {
	if res == nil || res.Empty() {
		fmt.Fprintln(w, MsgNoStudentData)
		return
	}
	fmt.Fprintf(w, "%-20s%-15s%s\n", "Name", "Group", "Count")
	for _, e := range res.Entries {
		fmt.Fprintf(w, "%-20s%-15s%d\n", e.Name, e.Group, e.CallCount)
	}
}

// RenderGroups prints every group with its member count, sorted by name.
func RenderGroups(w io.Writer, res *query.GetGroupsResult) {
	if res == nil || res.NoData {
		fmt.Fprintln(w, MsgNoGroupData)
		return
	}
	fmt.Fprintln(w, "Groups:")
	for _, g := range res.Groups {
		fmt.Fprintf(w, "- %s (%d)\n", g.Name, g.Members)
	}
}

// RenderPick prints the selected student and what is left of the cycle.
func RenderPick(w io.Writer, res *command.PickStudentResult) {
	fmt.Fprintf(w, "Selected: %s (%s)\n", res.Student.Name, res.Student.Group)
	fmt.Fprintf(w, "Remaining in cycle: %d\n", res.Remaining)
}

// RenderImport prints the tallies of an import.
func RenderImport(w io.Writer, res *command.ImportRosterResult) {
	fmt.Fprintf(w, "Imported %d new students, %d duplicates, %d malformed lines.\n",
		res.Stats.Added, res.Stats.Duplicates, res.Stats.Malformed)
	if res.ReadErr != nil {
		fmt.Fprintln(w, "Reading stopped early; only the lines above were imported.")
	}
}

// RenderDefaultRoster prints the outcome of the start-up import.
func RenderDefaultRoster(w io.Writer, path string, res *command.ImportRosterResult) {
	if res == nil {
		fmt.Fprintln(w, "No default roster found. Use option 9 to import manually.")
		return
	}
	fmt.Fprintf(w, "Loaded default roster from %s. Added %d, duplicates %d, malformed %d.\n",
		path, res.Stats.Added, res.Stats.Duplicates, res.Stats.Malformed)
}
