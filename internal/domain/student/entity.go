// Package student contains the roster domain model: students, their call
// counts and the append-only Roster that owns them.
package student

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/alem-hub/rollcall/internal/domain/shared"
)

// trimSet is the whitespace stripped from names, groups and import fields.
const trimSet = " \t\r\n"

// Trim strips leading and trailing spaces, tabs, carriage returns and newlines.
func Trim(s string) string {
	return strings.Trim(s, trimSet)
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: STUDENT
// ══════════════════════════════════════════════════════════════════════════════

// Student is a roster entry that can be called on.
type Student struct {
	// ID is the internal unique identifier (UUID string).
	ID string

	// Name identifies the student on the roster. Case-sensitive, trimmed.
	Name string

	// Group is the label used for group-scoped picks.
	Group string

	// CallCount is how many times the student has been picked.
	CallCount int

	// AddedAt is when the student joined the roster.
	AddedAt time.Time
}

// NewStudent validates and builds a student with a zero call count.
func NewStudent(name, group string, at time.Time) (Student, error) {
	name, group = Trim(name), Trim(group)
	if name == "" || group == "" {
		return Student{}, shared.ErrInvalidStudent
	}
	return Student{
		ID:      uuid.NewString(),
		Name:    name,
		Group:   group,
		AddedAt: at,
	}, nil
}

// InGroup reports whether the student belongs to group.
func (s Student) InGroup(group string) bool {
	return s.Group == group
}

// ImportStats tallies the outcome of a single import call.
type ImportStats struct {
	Source     string
	Added      int
	Duplicates int
	Malformed  int
}

// Total returns the number of non-comment lines that were examined.
func (s ImportStats) Total() int {
	return s.Added + s.Duplicates + s.Malformed
}
