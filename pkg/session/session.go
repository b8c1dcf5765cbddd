// Package session orchestrates translation runs. Each client owns one
// Session: a transient, never-persisted state machine holding the upload
// queue, run progress, and results of the most recent run. A session reads
// model configuration from the settings store, submits one engine job per
// queued file, and republishes the engine's event stream on the manager's
// event bus. Cancellation is cooperative: a one-shot signal checked between
// files and between engine events.
package session

import (
	"sync"

	"github.com/mireiacs/traduco/pkg/engine"
	"github.com/mireiacs/traduco/pkg/settings"
)

// Status describes where a session is in its run lifecycle. A terminal
// status (completed, failed, cancelled) is retained until the next run
// starts so the outcome stays visible; the session is restartable whenever
// Running is false.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusValidating Status = "validating"
	StatusRunning    Status = "running"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// State is a point-in-time copy of a session's observable state.
type State struct {
	Status   Status
	Running  bool
	Progress float64
	Stage    string
	Files    []engine.File
	Results  []engine.Artifact
	Err      error
}

// Session is the per-client run orchestrator. All methods are safe for
// concurrent use; only one Run may be active at a time.
type Session struct {
	id     string
	store  *settings.Store
	eng    engine.Engine
	events *EventBus

	mu        sync.Mutex
	files     []engine.File
	pages     string
	status    Status
	running   bool
	cancelled bool
	progress  float64
	stage     string
	results   []engine.Artifact
	err       error
}

func newSession(id string, store *settings.Store, eng engine.Engine, events *EventBus) *Session {
	return &Session{
		id:     id,
		store:  store,
		eng:    eng,
		events: events,
		status: StatusIdle,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// AddFile appends an already-materialized input document to the queue.
func (s *Session) AddFile(name, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.files = append(s.files, engine.File{Name: name, Path: path})
}

// RemoveFile deletes the first queued file with the given name. It reports
// whether a file was removed.
func (s *Session) RemoveFile(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, f := range s.files {
		if f.Name == name {
			s.files = append(s.files[:i], s.files[i+1:]...)
			return true
		}
	}
	return false
}

// SetPages restricts every job of subsequent runs to the given page range,
// in the engine's range syntax (e.g. "1,2,-3,5-"). Empty means all pages.
func (s *Session) SetPages(pages string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pages = pages
}

// Pages returns the page range applied to subsequent runs.
func (s *Session) Pages() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pages
}

// ClearFiles empties the upload queue.
func (s *Session) ClearFiles() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.files = nil
}

// Files returns a copy of the upload queue in insertion order.
func (s *Session) Files() []engine.File {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]engine.File, len(s.files))
	copy(out, s.files)
	return out
}

// Running reports whether a run is in flight.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// State returns a snapshot of the session's observable state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Status:   s.status,
		Running:  s.running,
		Progress: s.progress,
		Stage:    s.stage,
		Err:      s.err,
	}
	st.Files = make([]engine.File, len(s.files))
	copy(st.Files, s.files)
	st.Results = make([]engine.Artifact, len(s.results))
	copy(st.Results, s.results)
	return st
}

// Cancel sets the session's one-shot cancel signal. The current run stops
// before the next file and stops consuming events from the current job as
// soon as the signal is observed. Cancel has no effect when no run is
// active.
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.cancelled = true
	}
}

func (s *Session) isCancelled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.cancelled
}
