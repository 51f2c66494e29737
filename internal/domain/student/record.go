package student

import (
	"strings"
)

// LineKind classifies one line of a roster source.
type LineKind int

const (
	// LineSkip is a blank line or a '#' comment. It is not counted.
	LineSkip LineKind = iota
	// LineRecord carries a name and a group.
	LineRecord
	// LineMalformed has no comma, or an empty name or group.
	LineMalformed
)

// String returns the string representation of the line kind.
func (k LineKind) String() string {
	switch k {
	case LineSkip:
		return "skip"
	case LineRecord:
		return "record"
	case LineMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// ParseLine splits a "name,group" line on its first comma.
// No escaping is supported: any further commas belong to the group.
func ParseLine(line string) (name, group string, kind LineKind) {
	trimmed := Trim(line)
	if trimmed == "" || trimmed[0] == '#' {
		return "", "", LineSkip
	}

	name, group, found := strings.Cut(trimmed, ",")
	if !found {
		return "", "", LineMalformed
	}

	name, group = Trim(name), Trim(group)
	if name == "" || group == "" {
		return "", "", LineMalformed
	}
	return name, group, LineRecord
}
