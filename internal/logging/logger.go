// Package logging provides leveled logging and run journaling for simselect.
// It offers two complementary outputs:
//   - A leveled slog.Logger for stderr (operational output)
//   - A Journal for structured JSONL run traces (~/.simselect/journal.jsonl)
package logging

import (
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/nvandessel/simselect/internal/constants"
)

// LevelTrace is a custom slog level below Debug for per-line rewrite detail.
const LevelTrace = slog.LevelDebug - 4

// ParseLevel maps a string level name to a slog.Level.
// Supported values: "info", "debug", "trace" (case-insensitive).
// Unknown values default to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "trace":
		return LevelTrace
	default:
		return slog.LevelInfo
	}
}

// NewLogger creates a leveled slog.Logger writing to w.
func NewLogger(level string, w io.Writer) *slog.Logger {
	lvl := ParseLevel(level)
	opts := &slog.HandlerOptions{
		Level: lvl,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Label the custom trace level
			if a.Key == slog.LevelKey {
				if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == LevelTrace {
					a.Value = slog.StringValue("TRACE")
				}
			}
			return a
		},
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Journal appends one JSON object per run event to a JSONL file.
// It is safe for concurrent use. A nil Journal is safe to use;
// all methods are no-ops on nil receiver.
type Journal struct {
	mu     sync.Mutex
	dir    string
	file   *os.File
	runID  string
	closed bool
}

// NewJournal returns a journal for dir/journal.jsonl that tags every event with runID.
// At "info" level (the default) or with an empty dir, returns nil.
// The directory and file are only created when the first event is logged.
func NewJournal(dir, level, runID string) *Journal {
	if dir == "" || ParseLevel(level) >= slog.LevelInfo {
		return nil
	}
	return &Journal{dir: dir, runID: runID}
}

// open lazily opens the journal file. Callers must hold j.mu.
func (j *Journal) open() bool {
	if j.file != nil {
		return true
	}
	if j.closed {
		return false
	}

	if err := os.MkdirAll(j.dir, 0755); err != nil {
		j.closed = true
		return false
	}
	path := filepath.Join(j.dir, constants.JournalFileName)
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		j.closed = true
		return false
	}
	j.file = f
	return true
}

// Log writes an event as a single JSONL line.
// "time" and "run_id" fields are added automatically. The caller's map is not mutated.
// Safe to call on nil receiver.
func (j *Journal) Log(event map[string]any) {
	if j == nil {
		return
	}

	entry := make(map[string]any, len(event)+2)
	for k, v := range event {
		entry[k] = v
	}
	entry["time"] = time.Now().UTC().Format(time.RFC3339Nano)
	if j.runID != "" {
		entry["run_id"] = j.runID
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return
	}
	data = append(data, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	if !j.open() {
		return
	}
	_, _ = j.file.Write(data)
}

// Close closes the underlying file. Safe to call on nil receiver.
func (j *Journal) Close() {
	if j == nil {
		return
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	j.closed = true
	if j.file != nil {
		j.file.Close()
		j.file = nil
	}
}
