// Package export writes session reports to .xlsx workbooks.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/alem-hub/rollcall/internal/domain/rollcall"
	"github.com/alem-hub/rollcall/pkg/timeutil"
)

// Sheet names of the exported workbook.
const (
	SheetStats   = "Stats"
	SheetGroups  = "Groups"
	SheetHistory = "History"
)

// WorkbookExporter builds one workbook per report.
type WorkbookExporter struct {
	dir string
	loc *time.Location
}

// NewWorkbookExporter creates an exporter writing relative paths under dir.
// Timestamps are rendered in loc, or local time when loc is nil.
func NewWorkbookExporter(dir string, loc *time.Location) *WorkbookExporter {
	return &WorkbookExporter{dir: dir, loc: timeutil.Location(loc)}
}

// Build lays out the report on three sheets.
func (e *WorkbookExporter) Build(report rollcall.Report) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetStats); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetGroups); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(SheetHistory); err != nil {
		return nil, err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, err
	}

	// Stats
	statsRows := make([][]interface{}, 0, len(report.Stats))
	for i, s := range report.Stats {
		statsRows = append(statsRows, []interface{}{i + 1, s.Name, s.Group, s.CallCount})
	}
	if err := writeTable(f, SheetStats, []interface{}{"Rank", "Name", "Group", "Calls"}, statsRows, headerStyle); err != nil {
		return nil, err
	}

	// Groups
	names := make([]string, 0, len(report.Groups))
	for g := range report.Groups {
		names = append(names, g)
	}
	sort.Strings(names)
	groupRows := make([][]interface{}, 0, len(names))
	for _, g := range names {
		groupRows = append(groupRows, []interface{}{g, report.Groups[g]})
	}
	if err := writeTable(f, SheetGroups, []interface{}{"Group", "Members"}, groupRows, headerStyle); err != nil {
		return nil, err
	}

	// History
	historyRows := make([][]interface{}, 0, len(report.History))
	for _, r := range report.History {
		historyRows = append(historyRows, []interface{}{r.Name, r.Group, timeutil.FormatStamp(r.CalledAt, e.loc)})
	}
	if err := writeTable(f, SheetHistory, []interface{}{"Name", "Group", "Called at"}, historyRows, headerStyle); err != nil {
		return nil, err
	}

	_ = f.SetColWidth(SheetStats, "B", "C", 24)
	_ = f.SetColWidth(SheetGroups, "A", "A", 24)
	_ = f.SetColWidth(SheetHistory, "A", "B", 24)
	_ = f.SetColWidth(SheetHistory, "C", "C", 20)

	return f, nil
}

// Export builds the workbook and saves it to path, creating parent
// directories. It returns the absolute path written.
func (e *WorkbookExporter) Export(ctx context.Context, path string, report rollcall.Report) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if path == "" {
		return "", errors.New("export: empty path")
	}
	if !filepath.IsAbs(path) && e.dir != "" {
		path = filepath.Join(e.dir, path)
	}
	if filepath.Ext(path) == "" {
		path += ".xlsx"
	}

	f, err := e.Build(report)
	if err != nil {
		return "", fmt.Errorf("export: build workbook: %w", err)
	}
	defer f.Close()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("export: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("export: save %s: %w", path, err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return path, nil
	}
	return abs, nil
}

func writeTable(f *excelize.File, sheet string, header []interface{}, rows [][]interface{}, headerStyle int) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}
