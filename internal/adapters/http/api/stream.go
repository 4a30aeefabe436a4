package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/okian/workbook/internal/domain/model"
	"github.com/okian/workbook/pkg/logger"
	"github.com/okian/workbook/pkg/metrics"
)

const (
	streamWriteWait      = 10 * time.Second
	streamMaxMessageSize = 4096
)

// streamMessage is a client message on /sessions/{id}/stream. Type is a
// pointer event kind, "check" or "reset".
type streamMessage struct {
	Type    string             `json:"type"`
	X       float64            `json:"x"`
	Y       float64            `json:"y"`
	Surface *model.SurfaceRect `json:"surface,omitempty"`
}

// handleStream handles GET /sessions/{id}/stream. Pointer events are applied
// one at a time in arrival order; the sender gets the new state after every
// event except a successful move. Check and reset results go to every client
// watching the session.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	const op = "api.stream"
	id := r.PathValue("id")
	if _, err := s.deps.Session(r.Context(), id); err != nil {
		s.fail(w, r, op, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader already replied
		s.logger.Debug(r.Context(), "stream upgrade failed", logger.String("session", id), logger.Error(err))
		return
	}
	defer conn.Close()
	conn.SetReadLimit(streamMaxMessageSize)

	metrics.WebsocketOpened()
	defer metrics.WebsocketClosed()

	client := s.hub.Register(id)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range client.Send {
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				// drain so Broadcast never blocks on a dead client
				for range client.Send {
				}
				return
			}
			metrics.RecordWebsocketMessage("out")
		}
	}()

	ctx := context.WithoutCancel(r.Context())
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		metrics.RecordWebsocketMessage("in")
		s.handleStreamMessage(ctx, id, client, data)
	}

	s.hub.Unregister(client)
	<-done
}

func (s *Server) handleStreamMessage(ctx context.Context, id string, client *Client, data []byte) {
	const op = "api.stream"
	var msg streamMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.reply(client, errorEvent(op, WrapKind(op, ErrBadRequest, err)))
		return
	}

	switch msg.Type {
	case "check":
		res, err := s.deps.Check(ctx, id)
		if err != nil {
			s.reply(client, errorEvent(op, err))
			return
		}
		s.publish(id, resultEvent(res))
	case "reset":
		view, err := s.deps.Reset(ctx, id)
		if err != nil {
			s.reply(client, errorEvent(op, err))
			return
		}
		s.publish(id, sessionEvent{Type: "reset", State: view.State, Points: view.Points})
	default:
		e, err := eventRequest{Type: msg.Type, X: msg.X, Y: msg.Y}.toModel()
		if err != nil {
			s.reply(client, errorEvent(op, err))
			return
		}
		res, err := s.deps.ApplyEvents(ctx, id, model.Batch{Surface: msg.Surface, Events: []model.PointerEvent{e}})
		if err != nil {
			s.reply(client, errorEvent(op, err))
			return
		}
		if e.Kind == model.KindMove && res.Applied == 1 {
			return
		}
		ev := sessionEvent{Type: "state", State: res.State, Points: res.Points}
		if res.Skipped() > 0 {
			ev.Type = "skipped"
		}
		s.reply(client, ev)
	}
}

func (s *Server) reply(c *Client, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	select {
	case c.Send <- b:
	default:
	}
}

type streamError struct {
	Type    string `json:"type"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorEvent(op string, err error) streamError {
	_, code, kind := classify(err)
	var tagged *kindError
	if !errors.As(err, &tagged) {
		err = WrapKind(op, kind, err)
	}
	return streamError{Type: "error", Code: code, Message: err.Error()}
}
