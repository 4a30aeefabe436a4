package simulate

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ErrUnexpectedStatus is returned when the service answers with an
// unexpected HTTP status.
var ErrUnexpectedStatus = errors.New("unexpected status")

// client talks to the tracing API over HTTP and its websocket stream.
type client struct {
	baseURL string
	http    *http.Client
	dialer  *websocket.Dialer
	timeout time.Duration
}

func newClient(baseURL string, timeout time.Duration) *client {
	return &client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		dialer:  &websocket.Dialer{HandshakeTimeout: timeout},
		timeout: timeout,
	}
}

func (c *client) do(ctx context.Context, method, path string, body any, want int, out any) error {
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != want {
		return fmt.Errorf("%w: %s %s: %d %s", ErrUnexpectedStatus, method, path, resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *client) health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/healthz", nil, http.StatusOK, nil)
}

func (c *client) activity(ctx context.Context, id string) (activityJSON, error) {
	var a activityJSON
	err := c.do(ctx, http.MethodGet, "/activities/"+id, nil, http.StatusOK, &a)
	return a, err
}

func (c *client) createSession(ctx context.Context, activityID string) (string, error) {
	var s sessionJSON
	err := c.do(ctx, http.MethodPost, "/sessions", map[string]string{"activity_id": activityID}, http.StatusCreated, &s)
	return s.ID, err
}

func (c *client) deleteSession(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/sessions/"+id, nil, http.StatusNoContent, nil)
}

type batchJSON struct {
	BatchID string      `json:"batch_id"`
	Surface surfaceJSON `json:"surface"`
	Events  []Event `json:"events"`
}

func (c *client) postBatch(ctx context.Context, id string, b batchJSON) (applyJSON, error) {
	var res applyJSON
	err := c.do(ctx, http.MethodPost, "/sessions/"+id+"/events", b, http.StatusOK, &res)
	return res, err
}

func (c *client) check(ctx context.Context, id string) (resultJSON, error) {
	var res resultJSON
	err := c.do(ctx, http.MethodPost, "/sessions/"+id+"/check", nil, http.StatusOK, &res)
	return res, err
}

// drawHTTP posts the stroke in batches. The first batch is sent twice to
// confirm the service drops the retry; the return value reports whether it
// did.
func (c *client) drawHTTP(ctx context.Context, id string, s Stroke, batchSize int) (bool, error) {
	events := s.Events()
	surface := surfaceJSON{Left: s.Origin.X, Top: s.Origin.Y}
	duplicate := false
	for start := 0; start < len(events); start += batchSize {
		end := min(start+batchSize, len(events))
		b := batchJSON{BatchID: uuid.NewString(), Surface: surface, Events: events[start:end]}
		if _, err := c.postBatch(ctx, id, b); err != nil {
			return false, err
		}
		if start == 0 {
			res, err := c.postBatch(ctx, id, b)
			if err != nil {
				return false, err
			}
			duplicate = res.Duplicate
		}
	}
	return duplicate, nil
}

type streamJSON struct {
	Type    string       `json:"type"`
	X       float64      `json:"x,omitempty"`
	Y       float64      `json:"y,omitempty"`
	Surface *surfaceJSON `json:"surface,omitempty"`
}

// drawStream sends the stroke one event per message over the session stream
// and asks for a check on the same connection.
func (c *client) drawStream(ctx context.Context, id string, s Stroke) (resultJSON, error) {
	url := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/sessions/" + id + "/stream"
	conn, resp, err := c.dialer.DialContext(ctx, url, nil)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return resultJSON{}, fmt.Errorf("dial stream: %w", err)
	}
	defer conn.Close()

	surface := &surfaceJSON{Left: s.Origin.X, Top: s.Origin.Y}
	for _, e := range s.Events() {
		if err := conn.WriteJSON(streamJSON{Type: e.Type, X: e.X, Y: e.Y, Surface: surface}); err != nil {
			return resultJSON{}, fmt.Errorf("write event: %w", err)
		}
	}
	if err := conn.WriteJSON(streamJSON{Type: "check"}); err != nil {
		return resultJSON{}, fmt.Errorf("write check: %w", err)
	}

	for {
		_ = conn.SetReadDeadline(time.Now().Add(c.timeout))
		var msg resultJSON
		if err := conn.ReadJSON(&msg); err != nil {
			return resultJSON{}, fmt.Errorf("read stream: %w", err)
		}
		switch msg.Type {
		case "result":
			return msg, nil
		case "error":
			return resultJSON{}, fmt.Errorf("stream error %s: %s", msg.Code, msg.Message)
		}
	}
}
