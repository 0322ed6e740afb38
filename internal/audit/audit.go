// Package audit persists prompt/response exchanges to per-category
// JSON-lines files for replay and debugging. Writes are best-effort:
// a failed write is reported on the diagnostic logger and never fails
// the request that produced it.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type Sink struct {
	dir  string
	mu   sync.Mutex
	diag zerolog.Logger
}

// Exchange is one oracle round-trip.
type Exchange struct {
	Timestamp   time.Time `json:"ts"`
	Stage       string    `json:"stage"`
	Destination string    `json:"destination,omitempty"`
	Prompt      string    `json:"prompt"`
	Response    string    `json:"response"`
	Error       string    `json:"error,omitempty"`
}

// New creates the log directory once and returns a Sink writing into it.
func New(dir string, diag zerolog.Logger) (*Sink, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("audit: create log dir: %w", err)
	}
	return &Sink{dir: dir, diag: diag}, nil
}

// Record appends an exchange to <dir>/<stage>.log. Safe on a nil Sink.
func (s *Sink) Record(e Exchange) {
	if s == nil {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	s.Write(e.Stage, e)
}

// Write appends one JSON line to <dir>/<category>.log. Safe on a nil Sink.
func (s *Sink) Write(category string, entry any) {
	if s == nil {
		return
	}
	line, err := json.Marshal(entry)
	if err != nil {
		s.diag.Warn().Err(err).Str("category", category).Msg("audit marshal failed")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.dir, category+".log")
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		s.diag.Warn().Err(err).Str("category", category).Msg("audit open failed")
		return
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		s.diag.Warn().Err(err).Str("category", category).Msg("audit write failed")
	}
}
