package session

import "fmt"

// ValidationError reports an unmet run precondition. The session stays idle
// and can be started again once the condition is fixed; Reason is a short
// user-facing message specific to the condition.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return "session: " + e.Reason
}

// Run precondition failures.
var (
	errNoModelSelected = &ValidationError{Reason: "no model configured: select a model in settings"}
	errNoCredential    = &ValidationError{Reason: "selected model has no API key configured"}
	errEmptyQueue      = &ValidationError{Reason: "no files queued for translation"}
)

// EngineError reports a failure from the translation engine or from job
// construction. It aborts the remaining queue for the run.
type EngineError struct {
	File string
	Err  error
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("session: %s: %v", e.File, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }
