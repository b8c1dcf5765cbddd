// Package engine defines the boundary to the external document-translation
// engine: submit one job, consume one finite stream of progress, error, and
// finish events. The engine itself (parsing, translation, OCR, rendering)
// lives behind this contract; the Remote implementation talks to a
// translation service over HTTP and WebSocket.
package engine

import "context"

// EventKind identifies the type of job event.
type EventKind string

const (
	// EventProgress carries a monotonically non-decreasing overall percentage
	// plus a stage label and stage-local counters.
	EventProgress EventKind = "progress_update"
	// EventError reports a non-fatal engine error; the stream continues
	// unless the engine stops producing events.
	EventError EventKind = "error"
	// EventFinish terminates the stream and carries the job's result
	// artifacts. A stream that ends without a finish event is an incomplete
	// job.
	EventFinish EventKind = "finish"
)

// Artifact is one named result file produced by a finished job.
type Artifact struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Kind string `json:"kind"` // e.g. "mono", "dual".
}

// Event is one element of a job's event stream.
type Event struct {
	Kind         EventKind  `json:"type"`
	Progress     float64    `json:"overall_progress,omitempty"`
	Stage        string     `json:"stage,omitempty"`
	StageCurrent int        `json:"stage_current,omitempty"`
	StageTotal   int        `json:"stage_total,omitempty"`
	Error        string     `json:"error,omitempty"`
	Artifacts    []Artifact `json:"artifacts,omitempty"`
}

// Engine accepts translation jobs. Submit returns a finite, non-restartable
// event sequence: the channel is closed when the stream ends, whether or not
// a finish event was seen. Cancelling ctx tears the stream down; an
// already-submitted job is not aborted inside the engine.
type Engine interface {
	Submit(ctx context.Context, job Job) (<-chan Event, error)
}
