// Package history keeps the append-only log of generated entries for a session
// and serializes it to the flat text report players take home.
package history

import (
	"sync"
	"time"

	"github.com/aretw0/gmboard/pkg/domain"
)

// Log is an append-only, oldest-first list of history entries.
// It is safe for concurrent use.
type Log struct {
	mu      sync.RWMutex
	entries []domain.HistoryEntry
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{}
}

// Append records resp with its receipt time and returns the stored entry.
func (l *Log) Append(resp domain.Response, at time.Time) domain.HistoryEntry {
	entry := domain.HistoryEntry{Response: resp, At: at}
	l.mu.Lock()
	l.entries = append(l.entries, entry)
	l.mu.Unlock()
	return entry
}

// Entries returns a copy of the log, oldest first.
func (l *Log) Entries() []domain.HistoryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]domain.HistoryEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the number of entries.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// Last returns the most recent entry.
func (l *Log) Last() (domain.HistoryEntry, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if len(l.entries) == 0 {
		return domain.HistoryEntry{}, false
	}
	return l.entries[len(l.entries)-1], true
}
