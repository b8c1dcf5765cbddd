package engine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeService serves one job whose event stream replays the given events.
func fakeService(t *testing.T, events []Event) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/jobs", func(w http.ResponseWriter, r *http.Request) {
		var job Job
		require.NoError(t, json.NewDecoder(r.Body).Decode(&job))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"job-1"}`))
	})
	mux.HandleFunc("/v1/jobs/job-1/events", func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, nil)
		require.NoError(t, err)
		for _, ev := range events {
			if err := wsjson.Write(r.Context(), conn, ev); err != nil {
				return
			}
		}
		_ = conn.Close(websocket.StatusNormalClosure, "")
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func collect(t *testing.T, ch <-chan Event) []Event {
	t.Helper()

	var got []Event
	timeout := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-ch:
			if !ok {
				return got
			}
			got = append(got, ev)
		case <-timeout:
			t.Fatal("timed out waiting for event stream to close")
		}
	}
}

func TestRemoteSubmitStreamsEvents(t *testing.T) {
	events := []Event{
		{Kind: EventProgress, Progress: 10, Stage: "parse", StageCurrent: 1, StageTotal: 4},
		{Kind: EventError, Error: "glossary entry skipped"},
		{Kind: EventProgress, Progress: 80, Stage: "render", StageCurrent: 4, StageTotal: 4},
		{Kind: EventFinish, Artifacts: []Artifact{{Name: "out.zh.pdf", Path: "/out/out.zh.pdf", Kind: "mono"}}},
	}
	srv := fakeService(t, events)

	r := NewRemote(srv.URL)
	ch, err := r.Submit(context.Background(), Job{Input: File{Name: "doc.pdf", Path: "/tmp/doc.pdf"}})
	require.NoError(t, err)

	got := collect(t, ch)
	require.Len(t, got, 4)
	assert.Equal(t, EventProgress, got[0].Kind)
	assert.Equal(t, "parse", got[0].Stage)
	assert.Equal(t, EventError, got[1].Kind)
	assert.Equal(t, EventFinish, got[3].Kind)
	require.Len(t, got[3].Artifacts, 1)
	assert.Equal(t, "mono", got[3].Artifacts[0].Kind)
}

func TestRemoteStreamEndsWithoutFinish(t *testing.T) {
	srv := fakeService(t, []Event{{Kind: EventProgress, Progress: 5, Stage: "parse"}})

	r := NewRemote(srv.URL)
	ch, err := r.Submit(context.Background(), Job{})
	require.NoError(t, err)

	got := collect(t, ch)
	require.Len(t, got, 1)
	assert.Equal(t, EventProgress, got[0].Kind)
}

func TestRemoteSubmitRejectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "engine unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	r := NewRemote(srv.URL)
	_, err := r.Submit(context.Background(), Job{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestRemoteSubmitCancelledContext(t *testing.T) {
	srv := fakeService(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := NewRemote(srv.URL)
	_, err := r.Submit(ctx, Job{})
	assert.Error(t, err)
}

func TestWSURLSchemes(t *testing.T) {
	assert.Equal(t, "wss://svc.example/v1/jobs/1/events", NewRemote("https://svc.example").wsURL("/v1/jobs/1/events"))
	assert.Equal(t, "ws://svc.local:8080/x", NewRemote("http://svc.local:8080").wsURL("/x"))
	assert.Equal(t, "ws://raw/x", NewRemote("ws://raw").wsURL("/x"))
}

func TestEventWireFormat(t *testing.T) {
	raw := `{"type":"progress_update","overall_progress":42.5,"stage":"translate paragraphs","stage_current":17,"stage_total":40}`

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(raw), &ev))
	assert.Equal(t, EventProgress, ev.Kind)
	assert.InDelta(t, 42.5, ev.Progress, 0.001)
	assert.Equal(t, "translate paragraphs", ev.Stage)
	assert.Equal(t, 17, ev.StageCurrent)
}
