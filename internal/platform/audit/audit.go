// Package audit writes the append-only action log. Entries are
// newline-delimited JSON; writes are best-effort and a failed write never
// propagates to the caller.
package audit

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Actor identifies who performed an action.
type Actor struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Entry is one audit record.
type Entry struct {
	Timestamp time.Time              `json:"timestamp"`
	Action    string                 `json:"action"`
	Details   map[string]interface{} `json:"details"`
	Actor     *Actor                 `json:"actor,omitempty"`
}

// Logger appends entries to a log file.
type Logger struct {
	mu     sync.Mutex
	path   string
	logger zerolog.Logger
}

func NewLogger(path string, logger zerolog.Logger) *Logger {
	return &Logger{path: path, logger: logger}
}

// Log appends an entry. Details may be nil. Failures are logged and
// swallowed; auditing never blocks the primary operation.
func (l *Logger) Log(action string, details map[string]interface{}, actor *Actor) {
	entry := Entry{
		Timestamp: time.Now().UTC(),
		Action:    action,
		Details:   details,
	}
	if entry.Details == nil {
		entry.Details = map[string]interface{}{}
	}
	if actor != nil && actor.ID != "" {
		entry.Actor = actor
	}

	data, err := json.Marshal(entry)
	if err != nil {
		l.logger.Error().Err(err).Str("action", action).Msg("audit marshal failed")
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		l.logger.Error().Err(err).Str("action", action).Msg("audit write failed")
		return
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		l.logger.Error().Err(err).Str("action", action).Msg("audit write failed")
	}
}
