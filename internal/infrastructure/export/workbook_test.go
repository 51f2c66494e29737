package export

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/alem-hub/rollcall/internal/domain/callhistory"
	"github.com/alem-hub/rollcall/internal/domain/rollcall"
	"github.com/alem-hub/rollcall/internal/domain/student"
)

func sampleReport() rollcall.Report {
	at := time.Date(2024, 9, 2, 10, 15, 0, 0, time.UTC)
	return rollcall.Report{
		GeneratedAt: at,
		Stats: []student.Student{
			{Name: "Alice", Group: "Math", CallCount: 2},
			{Name: "Bob", Group: "Science", CallCount: 1},
		},
		Groups: map[string]int{"Science": 1, "Math": 1},
		History: []callhistory.CallRecord{
			{Name: "Alice", Group: "Math", CalledAt: at.Add(2 * time.Minute)},
			{Name: "Bob", Group: "Science", CalledAt: at.Add(time.Minute)},
			{Name: "Alice", Group: "Math", CalledAt: at},
		},
	}
}

func TestWorkbookExporter_Build(t *testing.T) {
	f, err := NewWorkbookExporter("", time.UTC).Build(sampleReport())
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{SheetStats, SheetGroups, SheetHistory}, f.GetSheetList())

	stats, err := f.GetRows(SheetStats)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Rank", "Name", "Group", "Calls"},
		{"1", "Alice", "Math", "2"},
		{"2", "Bob", "Science", "1"},
	}, stats)

	groups, err := f.GetRows(SheetGroups)
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		{"Group", "Members"},
		{"Math", "1"},
		{"Science", "1"},
	}, groups)

	history, err := f.GetRows(SheetHistory)
	require.NoError(t, err)
	require.Len(t, history, 4)
	assert.Equal(t, []string{"Name", "Group", "Called at"}, history[0])
	assert.Equal(t, []string{"Alice", "Math", "2024-09-02 10:17:00"}, history[1])
	assert.Equal(t, []string{"Alice", "Math", "2024-09-02 10:15:00"}, history[3])
}

func TestWorkbookExporter_BuildEmpty(t *testing.T) {
	f, err := NewWorkbookExporter("", time.UTC).Build(rollcall.Report{})
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetStats)
	require.NoError(t, err)
	assert.Len(t, rows, 1, "header only")
}

func TestWorkbookExporter_Export(t *testing.T) {
	dir := t.TempDir()
	e := NewWorkbookExporter(dir, time.UTC)

	path, err := e.Export(context.Background(), filepath.Join("reports", "week1"), sampleReport())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "reports", "week1.xlsx"), path)

	_, err = os.Stat(path)
	require.NoError(t, err)

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetHistory)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestWorkbookExporter_ExportAbsolutePath(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "abs.xlsx")

	path, err := NewWorkbookExporter("/elsewhere", nil).Export(context.Background(), target, sampleReport())
	require.NoError(t, err)
	assert.Equal(t, target, path)
}

func TestWorkbookExporter_ExportErrors(t *testing.T) {
	e := NewWorkbookExporter(t.TempDir(), time.UTC)

	_, err := e.Export(context.Background(), "", sampleReport())
	assert.Error(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Export(ctx, "out.xlsx", sampleReport())
	assert.ErrorIs(t, err, context.Canceled)
}
