// Package history keeps the send history shown to the user. It is a plain
// collaborator: the session core writes every lifecycle transition here and
// the UI renders snapshots. No protocol logic lives in this package.
package history

import (
	"sync"
	"time"
)

// Entry statuses. sending/processing are transient; the rest are terminal.
const (
	StatusSending    = "sending"
	StatusProcessing = "processing"
	StatusSent       = "sent"
	StatusPreview    = "preview"
	StatusAIError    = "ai_error"
	StatusError      = "error"
)

// maxEntries caps the log; oldest entries fall off.
const maxEntries = 50

// Entry is one submitted request and its outcome.
type Entry struct {
	Text      string // what the user submitted
	Processed string // AI-rewritten form, if any
	Original  string // original text when Processed is set
	Status    string
	Mode      string // "raw" or a transform mode
	Error     string // error detail for ai_error / error statuses
	Time      time.Time
}

// Terminal reports whether the entry has reached a final status.
func (e Entry) Terminal() bool {
	switch e.Status {
	case StatusSent, StatusPreview, StatusAIError, StatusError:
		return true
	}
	return false
}

// Log is a bounded, newest-first history log.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	// onChange, if set, is called (without the lock held) after every
	// mutation so the UI can re-render.
	onChange func()
}

// NewLog creates an empty log. onChange may be nil.
func NewLog(onChange func()) *Log {
	return &Log{onChange: onChange}
}

// Add prepends a new entry and returns nothing; the newest entry is the one
// subsequent Update* calls touch.
func (l *Log) Add(text, status, mode string) {
	l.mu.Lock()
	l.entries = append([]Entry{{
		Text:     text,
		Original: text,
		Status:   status,
		Mode:     mode,
		Time:     time.Now(),
	}}, l.entries...)
	if len(l.entries) > maxEntries {
		l.entries = l.entries[:maxEntries]
	}
	l.mu.Unlock()
	l.changed()
}

// UpdateLastStatus sets the newest entry's status (and optional error detail).
// No-op on an empty log.
func (l *Log) UpdateLastStatus(status, errDetail string) {
	l.mu.Lock()
	if len(l.entries) > 0 {
		l.entries[0].Status = status
		if errDetail != "" {
			l.entries[0].Error = errDetail
		}
	}
	l.mu.Unlock()
	l.changed()
}

// UpdateLast records a processed form on the newest entry along with its
// terminal status. No-op on an empty log.
func (l *Log) UpdateLast(processed, original, status string) {
	l.mu.Lock()
	if len(l.entries) > 0 {
		l.entries[0].Processed = processed
		l.entries[0].Original = original
		l.entries[0].Status = status
	}
	l.mu.Unlock()
	l.changed()
}

// Clear empties the log.
func (l *Log) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
	l.changed()
}

// Snapshot returns a copy of the entries, newest first.
func (l *Log) Snapshot() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.entries...)
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

func (l *Log) changed() {
	if l.onChange != nil {
		l.onChange()
	}
}
