// Package timeutil renders timestamps in the configured display location.
package timeutil

import "time"

// StampLayout is the "%F %T" rendering used for call timestamps.
const StampLayout = "2006-01-02 15:04:05"

// Location returns loc, or time.Local when loc is nil.
func Location(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

// FormatStamp formats t in loc with StampLayout.
func FormatStamp(t time.Time, loc *time.Location) string {
	return t.In(Location(loc)).Format(StampLayout)
}

// ExportFileName returns a default workbook name such as
// "rollcall-2024-03-01-150405.xlsx".
func ExportFileName(t time.Time, loc *time.Location) string {
	return "rollcall-" + t.In(Location(loc)).Format("2006-01-02-150405") + ".xlsx"
}
