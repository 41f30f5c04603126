package history

import (
	"sync"
	"time"

	"github.com/glyphide/termcore/internal/shared/events"
)

// DefaultCap bounds the command history log.
const DefaultCap = 1000

// Entry is one executed command.
type Entry struct {
	SessionID string    `json:"session_id"`
	Command   string    `json:"command"`
	At        time.Time `json:"at"`
}

// Log is a bounded FIFO of executed commands. Insertion is append-only
// and the oldest entry is evicted once the cap is reached.
type Log struct {
	mu      sync.Mutex
	entries []Entry
	cap     int
	bus     *events.Bus
}

// NewLog creates a log with the given capacity, falling back to
// DefaultCap for non-positive values.
func NewLog(capacity int, bus *events.Bus) *Log {
	if capacity <= 0 {
		capacity = DefaultCap
	}
	return &Log{
		entries: make([]Entry, 0, capacity),
		cap:     capacity,
		bus:     bus,
	}
}

// Append records a command and emits historyUpdated.
func (l *Log) Append(sessionID, command string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) >= l.cap {
		n := copy(l.entries, l.entries[len(l.entries)-l.cap+1:])
		l.entries = l.entries[:n]
	}
	l.entries = append(l.entries, Entry{
		SessionID: sessionID,
		Command:   command,
		At:        time.Now(),
	})

	l.bus.Publish(events.HistoryUpdated{SessionID: sessionID, Command: command})
}

// List returns the entries oldest first.
func (l *Log) List() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len returns the current entry count.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Clear empties the log and emits historyCleared.
func (l *Log) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = l.entries[:0]
	l.bus.Publish(events.HistoryCleared{})
}
