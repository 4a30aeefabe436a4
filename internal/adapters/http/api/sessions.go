package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/workbook/internal/domain/model"
	"github.com/okian/workbook/internal/domain/scoring"
	"github.com/okian/workbook/internal/domain/types"
)

type createSessionRequest struct {
	ActivityID string `json:"activity_id"`
}

// eventRequest is one pointer event on the wire. Type accepts the model's
// kinds and their DOM aliases.
type eventRequest struct {
	Type    string             `json:"type"`
	X       float64            `json:"x"`
	Y       float64            `json:"y"`
	Surface *model.SurfaceRect `json:"surface,omitempty"`
}

func (e eventRequest) toModel() (model.PointerEvent, error) {
	kind, err := model.ParseKind(e.Type)
	if err != nil {
		return model.PointerEvent{}, err
	}
	return model.PointerEvent{Kind: kind, X: e.X, Y: e.Y, Surface: e.Surface}, nil
}

// eventsRequest is the body of POST /sessions/{id}/events.
type eventsRequest struct {
	BatchID string             `json:"batch_id,omitempty"`
	Surface *model.SurfaceRect `json:"surface,omitempty"`
	Events  []eventRequest     `json:"events"`
}

func (r eventsRequest) toBatch(maxEvents int) (model.Batch, error) {
	if len(r.Events) > maxEvents {
		return model.Batch{}, fmt.Errorf("%w: %d events exceeds limit %d", ErrBadRequest, len(r.Events), maxEvents)
	}
	b := model.Batch{
		ID:      strings.TrimSpace(r.BatchID),
		Surface: r.Surface,
		Events:  make([]model.PointerEvent, 0, len(r.Events)),
	}
	for i, e := range r.Events {
		pe, err := e.toModel()
		if err != nil {
			return model.Batch{}, fmt.Errorf("event %d: %w", i, err)
		}
		b.Events = append(b.Events, pe)
	}
	return b, nil
}

// sessionEvent is pushed to stream clients when a session changes outside
// their own connection.
type sessionEvent struct {
	Type    string             `json:"type"`
	State   string             `json:"state,omitempty"`
	Points  int                `json:"points"`
	Percent *int               `json:"percent,omitempty"`
	Stars   *int               `json:"stars,omitempty"`
	Session *types.SessionView `json:"session,omitempty"`
}

func resultEvent(res scoring.Result) sessionEvent {
	p, st := res.Percent, res.Stars
	return sessionEvent{Type: "result", Percent: &p, Stars: &st}
}

func (s *Server) publish(sessionID string, ev sessionEvent) {
	if s.hub.Count(sessionID) == 0 {
		return
	}
	b, err := json.Marshal(ev)
	if err != nil {
		return
	}
	s.hub.Broadcast(sessionID, b)
}

// handleCreateSession handles POST /sessions.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_session"
	var req createSessionRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil {
			s.fail(w, r, op, WrapKind(op, ErrBadRequest, err))
			return
		}
	}
	if strings.TrimSpace(req.ActivityID) == "" {
		req.ActivityID = defaultActivity
	}
	view, err := s.deps.CreateSession(r.Context(), req.ActivityID)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	w.Header().Set("Location", "/sessions/"+view.ID)
	writeJSON(w, http.StatusCreated, view)
}

// handleGetSession handles GET /sessions/{id}.
func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_session"
	view, err := s.deps.Session(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// handleDeleteSession handles DELETE /sessions/{id}.
func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_session"
	if err := s.deps.DeleteSession(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handlePostEvents handles POST /sessions/{id}/events.
func (s *Server) handlePostEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_events"
	var req eventsRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, op, WrapKind(op, ErrBadRequest, err))
		return
	}
	batch, err := req.toBatch(s.maxEvents)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	id := r.PathValue("id")
	res, err := s.deps.ApplyEvents(r.Context(), id, batch)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	if !res.Duplicate {
		s.publish(id, sessionEvent{Type: "state", State: res.State, Points: res.Points})
	}
	writeJSON(w, http.StatusOK, res)
}

// handleCheck handles POST /sessions/{id}/check.
func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	const op = "api.check"
	id := r.PathValue("id")
	res, err := s.deps.Check(r.Context(), id)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	s.publish(id, resultEvent(res))
	writeJSON(w, http.StatusOK, res)
}

// handleReset handles POST /sessions/{id}/reset.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	const op = "api.reset"
	id := r.PathValue("id")
	view, err := s.deps.Reset(r.Context(), id)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	s.publish(id, sessionEvent{Type: "reset", State: view.State, Points: view.Points})
	writeJSON(w, http.StatusOK, view)
}

// handleSnapshot handles GET /sessions/{id}/snapshot.png.
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	const op = "api.snapshot"
	var buf bytes.Buffer
	if err := s.deps.Snapshot(r.Context(), r.PathValue("id"), &buf); err != nil {
		s.fail(w, r, op, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
