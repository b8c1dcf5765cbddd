package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mireiacs/traduco/pkg/engine"
)

// Run executes one translation run over the queued files, strictly in queue
// order with one file in flight at a time. It blocks until the run reaches a
// terminal state; only one Run may be active per session. Validation happens
// up front with no side effects: on an unmet precondition Run returns a
// *ValidationError and the session stays idle. Results of the previous run
// are cleared only once validation passes.
//
// A failure while building job parameters or consuming the engine's event
// stream aborts the remaining queue and fails the run. Error events inside a
// stream are non-fatal: they are republished and the run continues unless
// the engine stops producing events. Cancelling ctx or calling Cancel stops
// the run before the next file and before the next event of the current job;
// an already-submitted job is not aborted inside the engine.
func (s *Session) Run(ctx context.Context) error {
	files, pages, err := s.begin()
	if err != nil {
		return err
	}

	s.publish(EventRunStart, "", len(files))

	outcome := StatusCompleted
	var runErr error

	for _, f := range files {
		if s.isCancelled() || ctx.Err() != nil {
			outcome = StatusCancelled
			break
		}

		s.publish(EventFileStart, f.Name, nil)

		job, err := buildJob(s.store.Snapshot(), f)
		if err != nil {
			runErr = &EngineError{File: f.Name, Err: err}
			outcome = StatusFailed
			break
		}
		job.Pages = pages

		err = s.runJob(ctx, f, job)
		if s.isCancelled() || ctx.Err() != nil {
			outcome = StatusCancelled
			break
		}
		if err != nil {
			runErr = &EngineError{File: f.Name, Err: err}
			outcome = StatusFailed
			break
		}
	}

	if runErr != nil {
		slog.Error("session: run failed", "session", s.id, "err", runErr)
	}

	s.finish(outcome, runErr)
	return runErr
}

// runJob submits one job and consumes its event stream. It returns nil when
// the job finished or the run was cancelled mid-stream; the caller
// distinguishes the two by re-checking the cancel signal.
func (s *Session) runJob(ctx context.Context, f engine.File, job engine.Job) error {
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	ch, err := s.eng.Submit(jobCtx, job)
	if err != nil {
		return err
	}

	finished := false
	lastErr := ""
	for ev := range ch {
		switch ev.Kind {
		case engine.EventProgress:
			s.setProgress(ev.Progress, ev.Stage)
			s.publish(EventProgress, f.Name, ev)
		case engine.EventError:
			lastErr = ev.Error
			slog.Warn("session: engine error event", "session", s.id, "file", f.Name, "err", ev.Error)
			s.publish(EventEngineError, f.Name, ev.Error)
		case engine.EventFinish:
			finished = true
			s.appendResults(ev.Artifacts)
			s.setProgress(100, "")
			s.publish(EventFileDone, f.Name, ev.Artifacts)
		}

		if s.isCancelled() {
			// Stop consuming; cancelling jobCtx tears the stream down.
			return nil
		}
	}

	if finished || jobCtx.Err() != nil {
		return nil
	}
	if lastErr != "" {
		return fmt.Errorf("event stream ended without finish: %s", lastErr)
	}
	return errors.New("event stream ended without finish")
}

// begin validates preconditions and, if they all pass, moves the session
// into the running state with a fresh result list. It returns the queue and
// page range snapshots the run operates on.
func (s *Session) begin() ([]engine.File, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return nil, "", fmt.Errorf("session: %s: a run is already active", s.id)
	}

	s.status = StatusValidating

	m, _, ok := s.store.SelectedModel()
	var verr *ValidationError
	switch {
	case !ok:
		verr = errNoModelSelected
	case m.APIKey == "":
		verr = errNoCredential
	case len(s.files) == 0:
		verr = errEmptyQueue
	}
	if verr != nil {
		s.status = StatusIdle
		s.err = verr
		return nil, "", verr
	}

	files := make([]engine.File, len(s.files))
	copy(files, s.files)

	s.running = true
	s.cancelled = false
	s.status = StatusRunning
	s.progress = 0
	s.stage = ""
	s.results = nil
	s.err = nil

	return files, s.pages, nil
}

func (s *Session) finish(outcome Status, runErr error) {
	s.mu.Lock()
	s.running = false
	s.cancelled = false
	s.status = outcome
	s.err = runErr
	s.mu.Unlock()

	s.publish(EventRunEnd, "", outcome)
}

func (s *Session) setProgress(pct float64, stage string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.progress = pct
	if stage != "" {
		s.stage = stage
	}
}

func (s *Session) appendResults(arts []engine.Artifact) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.results = append(s.results, arts...)
}

func (s *Session) publish(kind EventKind, file string, data any) {
	s.events.Publish(Event{
		Kind:      kind,
		SessionID: s.id,
		File:      file,
		Timestamp: time.Now(),
		Data:      data,
	})
}
