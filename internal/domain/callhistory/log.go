// Package callhistory keeps the append-only record of selections.
package callhistory

import (
	"iter"
	"time"
)

// CallRecord is one selection event. Records are never mutated.
type CallRecord struct {
	StudentID string
	Name      string
	Group     string
	CalledAt  time.Time
}

// Log stores call records in chronological order.
type Log struct {
	records []CallRecord
}

// NewLog creates an empty log.
func NewLog() *Log {
	return &Log{}
}

// Record appends an entry.
func (l *Log) Record(entry CallRecord) {
	l.records = append(l.records, entry)
}

// Len returns the number of records.
func (l *Log) Len() int {
	return len(l.records)
}

// Last returns the most recent record.
func (l *Log) Last() (CallRecord, bool) {
	if len(l.records) == 0 {
		return CallRecord{}, false
	}
	return l.records[len(l.records)-1], true
}

// MostRecent yields records newest first. A limit of zero or less yields all
// of them. The sequence can be ranged over any number of times; it reads the
// log as it is when iteration starts.
func (l *Log) MostRecent(limit int) iter.Seq[CallRecord] {
	return func(yield func(CallRecord) bool) {
		records := l.records
		n := 0
		for i := len(records) - 1; i >= 0; i-- {
			if limit > 0 && n >= limit {
				return
			}
			if !yield(records[i]) {
				return
			}
			n++
		}
	}
}

// Clear discards every record and returns how many were dropped.
func (l *Log) Clear() int {
	n := len(l.records)
	l.records = nil
	return n
}
