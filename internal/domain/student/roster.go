package student

import (
	"sort"
	"time"

	"github.com/alem-hub/rollcall/internal/domain/shared"
)

// Roster is the ordered set of known students.
//
// Entries are never removed or reordered, so a slot (the position returned by
// Add) identifies the same student for the lifetime of the roster. The
// sampling pools rely on this.
type Roster struct {
	students []Student
	byName   map[string]int
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return &Roster{byName: make(map[string]int)}
}

// Add appends a new student and returns its slot.
// Returns ErrDuplicateStudent if the name is taken and ErrInvalidStudent if
// the name or group is empty after trimming.
func (r *Roster) Add(name, group string, at time.Time) (int, Student, error) {
	s, err := NewStudent(name, group, at)
	if err != nil {
		return -1, Student{}, err
	}
	if _, exists := r.byName[s.Name]; exists {
		return -1, Student{}, shared.ErrDuplicateStudent.WithMessage("student %q already exists", s.Name)
	}

	slot := len(r.students)
	r.students = append(r.students, s)
	r.byName[s.Name] = slot
	return slot, s, nil
}

// Contains reports whether a student with this exact name exists.
func (r *Roster) Contains(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// Lookup returns the student with the given name.
func (r *Roster) Lookup(name string) (Student, bool) {
	slot, ok := r.byName[name]
	if !ok {
		return Student{}, false
	}
	return r.students[slot], true
}

// Len returns the number of students.
func (r *Roster) Len() int {
	return len(r.students)
}

// At returns a copy of the student in slot.
func (r *Roster) At(slot int) Student {
	return r.students[slot]
}

// MarkCalled increments the call count of the student in slot and returns the
// updated copy.
func (r *Roster) MarkCalled(slot int) Student {
	r.students[slot].CallCount++
	return r.students[slot]
}

// Slots returns every slot in roster order.
func (r *Roster) Slots() []int {
	slots := make([]int, len(r.students))
	for i := range slots {
		slots[i] = i
	}
	return slots
}

// SlotsInGroup returns the slots of every member of group in roster order.
func (r *Roster) SlotsInGroup(group string) []int {
	var slots []int
	for i, s := range r.students {
		if s.InGroup(group) {
			slots = append(slots, i)
		}
	}
	return slots
}

// GroupCounts aggregates membership per group. The boolean is false when the
// roster is empty, which callers render as "no data".
func (r *Roster) GroupCounts() (map[string]int, bool) {
	if len(r.students) == 0 {
		return nil, false
	}
	counts := make(map[string]int)
	for _, s := range r.students {
		counts[s.Group]++
	}
	return counts, true
}

// StatsSnapshot returns a copy of the roster ordered by descending call count,
// ties broken by ascending name.
func (r *Roster) StatsSnapshot() []Student {
	out := make([]Student, len(r.students))
	copy(out, r.students)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CallCount == out[j].CallCount {
			return out[i].Name < out[j].Name
		}
		return out[i].CallCount > out[j].CallCount
	})
	return out
}
