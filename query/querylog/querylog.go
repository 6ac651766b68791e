// Package querylog records the statements a database handle executes.
package querylog

import (
	"sync"
	"time"

	"github.com/satishbabariya/neodb/query/sqlgen"
)

// DefaultCapacity is the number of entries kept before the oldest is dropped.
const DefaultCapacity = 1000

// Entry is one executed statement.
type Entry struct {
	SQL      string
	Params   []interface{}
	Types    []sqlgen.ParamType
	Duration time.Duration
	Executed time.Time
	// Error is the driver error text, empty on success.
	Error string
}

// Log is a bounded, in-memory statement log.
type Log struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
	enabled  bool
}

// New creates an enabled log keeping at most capacity entries. A
// non-positive capacity means DefaultCapacity.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{
		capacity: capacity,
		enabled:  true,
	}
}

// Record appends e, dropping the oldest entry when full. A nil or disabled
// log ignores it.
func (l *Log) Record(e Entry) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.enabled {
		return
	}
	if len(l.entries) >= l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, e)
}

// Queries returns a copy of the recorded entries, oldest first.
func (l *Log) Queries() []Entry {
	if l == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Last returns the newest entry.
func (l *Log) Last() (Entry, bool) {
	if l == nil {
		return Entry{}, false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.entries[len(l.entries)-1], true
}

// Count returns the number of recorded entries.
func (l *Log) Count() int {
	if l == nil {
		return 0
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Enabled reports whether Record stores entries.
func (l *Log) Enabled() bool {
	if l == nil {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.enabled
}

// Enable resumes recording.
func (l *Log) Enable() {
	l.mu.Lock()
	l.enabled = true
	l.mu.Unlock()
}

// Disable stops recording. Existing entries are kept.
func (l *Log) Disable() {
	l.mu.Lock()
	l.enabled = false
	l.mu.Unlock()
}

// Reset drops every entry.
func (l *Log) Reset() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}
