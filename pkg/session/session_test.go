package session

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mireiacs/traduco/pkg/engine"
	"github.com/mireiacs/traduco/pkg/settings"
)

// fakeJob scripts the engine's behaviour for one input file.
type fakeJob struct {
	events    []engine.Event
	submitErr error
}

// fakeEngine replays scripted event streams keyed by input file name. The
// stream channel is pre-filled and closed before Submit returns, so tests
// are fully deterministic. onSubmit, if set, runs after the stream is
// queued and before Submit returns.
type fakeEngine struct {
	mu        sync.Mutex
	submitted []engine.Job
	script    map[string]fakeJob
	onSubmit  func(file string)
}

func (f *fakeEngine) Submit(_ context.Context, job engine.Job) (<-chan engine.Event, error) {
	f.mu.Lock()
	f.submitted = append(f.submitted, job)
	sj := f.script[job.Input.Name]
	f.mu.Unlock()

	if sj.submitErr != nil {
		return nil, sj.submitErr
	}

	ch := make(chan engine.Event, len(sj.events))
	for _, ev := range sj.events {
		ch <- ev
	}
	close(ch)

	if f.onSubmit != nil {
		f.onSubmit(job.Input.Name)
	}
	return ch, nil
}

func (f *fakeEngine) submittedFiles() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []string
	for _, j := range f.submitted {
		out = append(out, j.Input.Name)
	}
	return out
}

func (f *fakeEngine) submittedJobs() []engine.Job {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]engine.Job, len(f.submitted))
	copy(out, f.submitted)
	return out
}

func finishEvent(artifacts ...engine.Artifact) engine.Event {
	return engine.Event{Kind: engine.EventFinish, Artifacts: artifacts}
}

func progressEvent(pct float64, stage string) engine.Event {
	return engine.Event{Kind: engine.EventProgress, Progress: pct, Stage: stage}
}

func emptyStore(t *testing.T) *settings.Store {
	t.Helper()

	s, err := settings.Open(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	return s
}

// storeWithModel returns a store with one credentialed model selected.
func storeWithModel(t *testing.T) *settings.Store {
	t.Helper()

	s := emptyStore(t)
	require.NoError(t, s.AddModel("openai", settings.ModelConfig{
		ID:          "m1",
		DisplayName: "GPT-4o mini",
		ModelName:   "gpt-4o-mini",
		APIKey:      "sk-test",
	}))
	require.NoError(t, s.SelectModel("m1"))
	return s
}

func TestRunNoModelSelected(t *testing.T) {
	fe := &fakeEngine{}
	sess := NewManager(emptyStore(t), fe).Open()
	sess.AddFile("a.pdf", "/tmp/a.pdf")

	err := sess.Run(context.Background())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "no model configured")
	assert.False(t, sess.Running())
	assert.Equal(t, StatusIdle, sess.State().Status)
	assert.Empty(t, fe.submittedFiles())
}

func TestRunSelectedModelWithoutCredential(t *testing.T) {
	store := emptyStore(t)
	require.NoError(t, store.AddModel("openai", settings.ModelConfig{ID: "m1", ModelName: "gpt-4o"}))
	require.NoError(t, store.SelectModel("m1"))

	sess := NewManager(store, &fakeEngine{}).Open()
	sess.AddFile("a.pdf", "/tmp/a.pdf")

	err := sess.Run(context.Background())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "API key")
	assert.Equal(t, StatusIdle, sess.State().Status)
}

func TestRunEmptyQueue(t *testing.T) {
	sess := NewManager(storeWithModel(t), &fakeEngine{}).Open()

	err := sess.Run(context.Background())

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Reason, "no files")
}

func TestRunCompletes(t *testing.T) {
	fe := &fakeEngine{script: map[string]fakeJob{
		"a.pdf": {events: []engine.Event{
			progressEvent(40, "translate paragraphs"),
			finishEvent(engine.Artifact{Name: "a.zh.pdf", Path: "/out/a.zh.pdf", Kind: "mono"}),
		}},
	}}
	sess := NewManager(storeWithModel(t), fe).Open()
	sess.AddFile("a.pdf", "/tmp/a.pdf")

	require.NoError(t, sess.Run(context.Background()))

	st := sess.State()
	assert.Equal(t, StatusCompleted, st.Status)
	assert.False(t, st.Running)
	assert.InDelta(t, 100, st.Progress, 0.001)
	require.Len(t, st.Results, 1)
	assert.Equal(t, "a.zh.pdf", st.Results[0].Name)
	assert.NoError(t, st.Err)
}

func TestRunAppliesPageRange(t *testing.T) {
	fe := &fakeEngine{script: map[string]fakeJob{
		"a.pdf": {events: []engine.Event{finishEvent()}},
		"b.pdf": {events: []engine.Event{finishEvent()}},
	}}
	sess := NewManager(storeWithModel(t), fe).Open()
	sess.AddFile("a.pdf", "/tmp/a.pdf")
	sess.AddFile("b.pdf", "/tmp/b.pdf")
	sess.SetPages("1,3-5")

	require.NoError(t, sess.Run(context.Background()))

	jobs := fe.submittedJobs()
	require.Len(t, jobs, 2)
	for _, j := range jobs {
		assert.Equal(t, "1,3-5", j.Pages)
	}

	// Clearing the range restores whole-document jobs.
	sess.SetPages("")
	require.NoError(t, sess.Run(context.Background()))
	jobs = fe.submittedJobs()
	assert.Empty(t, jobs[len(jobs)-1].Pages)
}

func TestRunEngineFailureOnSecondFileAbortsQueue(t *testing.T) {
	fe := &fakeEngine{script: map[string]fakeJob{
		"a.pdf": {events: []engine.Event{finishEvent(engine.Artifact{Name: "a.zh.pdf"})}},
		"b.pdf": {submitErr: errors.New("engine unavailable")},
		"c.pdf": {events: []engine.Event{finishEvent(engine.Artifact{Name: "c.zh.pdf"})}},
	}}
	sess := NewManager(storeWithModel(t), fe).Open()
	sess.AddFile("a.pdf", "/tmp/a.pdf")
	sess.AddFile("b.pdf", "/tmp/b.pdf")
	sess.AddFile("c.pdf", "/tmp/c.pdf")

	err := sess.Run(context.Background())

	var eerr *EngineError
	require.ErrorAs(t, err, &eerr)
	assert.Equal(t, "b.pdf", eerr.File)

	st := sess.State()
	assert.Equal(t, StatusFailed, st.Status)
	require.Len(t, st.Results, 1)
	assert.Equal(t, "a.zh.pdf", st.Results[0].Name)
	assert.Equal(t, []string{"a.pdf", "b.pdf"}, fe.submittedFiles())
}

func TestCancelAfterFirstFileSkipsRemaining(t *testing.T) {
	fe := &fakeEngine{script: map[string]fakeJob{
		"a.pdf": {events: []engine.Event{finishEvent(engine.Artifact{Name: "a.zh.pdf"})}},
		"b.pdf": {events: []engine.Event{finishEvent(engine.Artifact{Name: "b.zh.pdf"})}},
		"c.pdf": {events: []engine.Event{finishEvent(engine.Artifact{Name: "c.zh.pdf"})}},
	}}
	sess := NewManager(storeWithModel(t), fe).Open()
	fe.onSubmit = func(file string) {
		if file == "a.pdf" {
			sess.Cancel()
		}
	}
	sess.AddFile("a.pdf", "/tmp/a.pdf")
	sess.AddFile("b.pdf", "/tmp/b.pdf")
	sess.AddFile("c.pdf", "/tmp/c.pdf")

	require.NoError(t, sess.Run(context.Background()))

	st := sess.State()
	assert.Equal(t, StatusCancelled, st.Status)
	require.Len(t, st.Results, 1)
	assert.Equal(t, "a.zh.pdf", st.Results[0].Name)
	assert.Equal(t, []string{"a.pdf"}, fe.submittedFiles())
}

func TestRunCancelledContextSubmitsNothing(t *testing.T) {
	fe := &fakeEngine{script: map[string]fakeJob{
		"a.pdf": {events: []engine.Event{finishEvent()}},
	}}
	sess := NewManager(storeWithModel(t), fe).Open()
	sess.AddFile("a.pdf", "/tmp/a.pdf")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, sess.Run(ctx))
	assert.Equal(t, StatusCancelled, sess.State().Status)
	assert.Empty(t, fe.submittedFiles())
}

func TestRunStreamEndsWithoutFinish(t *testing.T) {
	fe := &fakeEngine{script: map[string]fakeJob{
		"a.pdf": {events: []engine.Event{progressEvent(30, "parse")}},
	}}
	sess := NewManager(storeWithModel(t), fe).Open()
	sess.AddFile("a.pdf", "/tmp/a.pdf")

	err := sess.Run(context.Background())

	var eerr *EngineError
	require.ErrorAs(t, err, &eerr)
	assert.Contains(t, eerr.Err.Error(), "without finish")
	assert.Equal(t, StatusFailed, sess.State().Status)
}

func TestErrorEventIsNonFatal(t *testing.T) {
	fe := &fakeEngine{script: map[string]fakeJob{
		"a.pdf": {events: []engine.Event{
			progressEvent(10, "parse"),
			{Kind: engine.EventError, Error: "glossary entry skipped"},
			finishEvent(engine.Artifact{Name: "a.zh.pdf"}),
		}},
	}}
	mgr := NewManager(storeWithModel(t), fe)
	sess := mgr.Open()
	sess.AddFile("a.pdf", "/tmp/a.pdf")

	sub := mgr.Events().Subscribe(16)
	defer mgr.Events().Unsubscribe(sub)

	require.NoError(t, sess.Run(context.Background()))

	st := sess.State()
	assert.Equal(t, StatusCompleted, st.Status)
	assert.NoError(t, st.Err)

	sawEngineError := false
	for done := false; !done; {
		select {
		case ev := <-sub.C:
			if ev.Kind == EventEngineError {
				sawEngineError = true
				assert.Equal(t, "glossary entry skipped", ev.Data)
			}
			if ev.Kind == EventRunEnd {
				done = true
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for run events")
		}
	}
	assert.True(t, sawEngineError, "engine error event should be republished")
}

func TestNewRunClearsPreviousResults(t *testing.T) {
	fe := &fakeEngine{script: map[string]fakeJob{
		"a.pdf": {events: []engine.Event{finishEvent(engine.Artifact{Name: "a.zh.pdf"})}},
		"b.pdf": {events: []engine.Event{finishEvent()}},
	}}
	sess := NewManager(storeWithModel(t), fe).Open()
	sess.AddFile("a.pdf", "/tmp/a.pdf")

	require.NoError(t, sess.Run(context.Background()))
	require.Len(t, sess.State().Results, 1)

	// A failed validation must not clear the previous run's results.
	sess.ClearFiles()
	_ = sess.Run(context.Background())
	assert.Len(t, sess.State().Results, 1)

	sess.AddFile("b.pdf", "/tmp/b.pdf")
	require.NoError(t, sess.Run(context.Background()))
	assert.Empty(t, sess.State().Results)
}

func TestCancelWhenIdleHasNoEffect(t *testing.T) {
	fe := &fakeEngine{script: map[string]fakeJob{
		"a.pdf": {events: []engine.Event{finishEvent()}},
	}}
	sess := NewManager(storeWithModel(t), fe).Open()
	sess.AddFile("a.pdf", "/tmp/a.pdf")

	sess.Cancel()

	require.NoError(t, sess.Run(context.Background()))
	assert.Equal(t, StatusCompleted, sess.State().Status)
}

func TestFileQueueOperations(t *testing.T) {
	sess := NewManager(emptyStore(t), &fakeEngine{}).Open()

	sess.AddFile("a.pdf", "/tmp/a.pdf")
	sess.AddFile("b.pdf", "/tmp/b.pdf")
	require.Len(t, sess.Files(), 2)

	assert.True(t, sess.RemoveFile("a.pdf"))
	assert.False(t, sess.RemoveFile("missing.pdf"))

	files := sess.Files()
	require.Len(t, files, 1)
	assert.Equal(t, "b.pdf", files[0].Name)

	sess.ClearFiles()
	assert.Empty(t, sess.Files())
}

func TestManagerOpenAndClose(t *testing.T) {
	mgr := NewManager(emptyStore(t), &fakeEngine{})

	s1 := mgr.Open()
	s2 := mgr.Open()
	assert.NotEqual(t, s1.ID(), s2.ID())

	got, ok := mgr.Session(s1.ID())
	require.True(t, ok)
	assert.Same(t, s1, got)

	mgr.Close(s1.ID())
	_, ok = mgr.Session(s1.ID())
	assert.False(t, ok)
}
