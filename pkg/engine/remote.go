package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
)

// Remote talks to a translation service: jobs are submitted with an HTTP
// POST and their event stream is consumed over a WebSocket. One Remote may
// serve any number of concurrent jobs.
type Remote struct {
	BaseURL string            // Service base URL (no trailing slash).
	Client  *http.Client      // HTTP client; nil falls back to a default with a long timeout.
	Headers map[string]string // Extra headers applied to every request.
}

// NewRemote creates a Remote for the given service base URL.
func NewRemote(baseURL string) *Remote {
	return &Remote{BaseURL: strings.TrimRight(baseURL, "/")}
}

// submitResponse is the body returned by the job submission endpoint.
type submitResponse struct {
	ID string `json:"id"`
}

// Submit posts the job and opens the event stream for it. The returned
// channel is closed when the service closes the stream or ctx is cancelled.
func (r *Remote) Submit(ctx context.Context, job Job) (<-chan Event, error) {
	var resp submitResponse
	if err := r.postJSON(ctx, "/v1/jobs", job, &resp); err != nil {
		return nil, fmt.Errorf("engine: submit job: %w", err)
	}
	if resp.ID == "" {
		return nil, fmt.Errorf("engine: submit job: service returned no job id")
	}

	conn, err := r.dialWS(ctx, "/v1/jobs/"+resp.ID+"/events")
	if err != nil {
		return nil, fmt.Errorf("engine: open event stream for job %s: %w", resp.ID, err)
	}

	ch := make(chan Event)
	go r.stream(ctx, conn, resp.ID, ch)
	return ch, nil
}

// stream reads events from the socket until the service closes it, an error
// occurs, or ctx is cancelled, then closes ch.
func (r *Remote) stream(ctx context.Context, conn *websocket.Conn, jobID string, ch chan<- Event) {
	defer close(ch)
	defer conn.Close(websocket.StatusNormalClosure, "")

	for {
		var ev Event
		if err := wsjson.Read(ctx, conn, &ev); err != nil {
			if ctx.Err() == nil && websocket.CloseStatus(err) != websocket.StatusNormalClosure {
				slog.Debug("engine: event stream ended", "job", jobID, "err", err)
			}
			return
		}

		select {
		case ch <- ev:
		case <-ctx.Done():
			return
		}

		if ev.Kind == EventFinish {
			return
		}
	}
}

// httpClient returns the configured client or a default with a timeout long
// enough for slow submissions.
func (r *Remote) httpClient() *http.Client {
	if r.Client != nil {
		return r.Client
	}
	return &http.Client{Timeout: 2 * time.Minute}
}

// postJSON marshals payload, POSTs it to path, checks for a 2xx status, and
// unmarshals the response body into dest.
func (r *Remote) postJSON(ctx context.Context, path string, payload, dest any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range r.Headers {
		req.Header.Set(k, v)
	}

	resp, err := r.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(respBody))
	}

	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// wsURL converts the base URL to a WebSocket URL and appends the path.
// https becomes wss, http becomes ws; ws/wss URLs pass through unchanged.
func (r *Remote) wsURL(path string) string {
	u := r.BaseURL + path

	if strings.HasPrefix(u, "https://") {
		return "wss://" + u[len("https://"):]
	}
	if strings.HasPrefix(u, "http://") {
		return "ws://" + u[len("http://"):]
	}
	return u
}

// dialWS opens a WebSocket connection to path with the extra headers applied.
func (r *Remote) dialWS(ctx context.Context, path string) (*websocket.Conn, error) {
	h := make(http.Header)
	for k, v := range r.Headers {
		h.Set(k, v)
	}

	// websocket.Dial rejects clients with a Timeout set; the stream lives for
	// the whole job, so dial with an untimed client and rely on ctx.
	dialClient := r.Client
	if dialClient == nil || dialClient.Timeout > 0 {
		dialClient = &http.Client{Transport: r.httpClient().Transport}
	}

	conn, _, err := websocket.Dial(ctx, r.wsURL(path), &websocket.DialOptions{
		HTTPClient: dialClient,
		HTTPHeader: h,
	})
	if err != nil {
		return nil, fmt.Errorf("dial websocket: %w", err)
	}
	return conn, nil
}
