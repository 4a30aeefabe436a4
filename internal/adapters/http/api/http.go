// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/websocket"

	service "github.com/okian/workbook/internal/app"
	"github.com/okian/workbook/internal/adapters/repository"
	"github.com/okian/workbook/internal/domain/catalog"
	"github.com/okian/workbook/internal/domain/geom"
	"github.com/okian/workbook/internal/domain/matching"
	"github.com/okian/workbook/internal/domain/model"
	"github.com/okian/workbook/internal/domain/scoring"
	"github.com/okian/workbook/internal/domain/types"
	"github.com/okian/workbook/pkg/logger"
	"github.com/okian/workbook/pkg/metrics"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to the service implementation.
type Dependencies interface {
	Activities() []catalog.Activity
	Activity(id string) (catalog.Activity, error)
	Page(index int) (catalog.Activity, int)
	SizesRound(activityID string) (catalog.SizesRound, error)
	AnswerSizes(ctx context.Context, activityID string, round catalog.SizesRound, choice catalog.Choice) (catalog.Answer, error)
	CheckMatching(ctx context.Context, activityID string, moves []matching.Move) (matching.Outcome, error)
	ScorePoints(ctx context.Context, activityID string, points []geom.Point, samples int, toleranceRadius float64) (scoring.Result, error)

	CreateSession(ctx context.Context, activityID string) (types.SessionView, error)
	Session(ctx context.Context, id string) (types.SessionView, error)
	DeleteSession(ctx context.Context, id string) error
	ApplyEvents(ctx context.Context, id string, batch model.Batch) (types.ApplyResult, error)
	Check(ctx context.Context, id string) (scoring.Result, error)
	Reset(ctx context.Context, id string) (types.SessionView, error)
	Snapshot(ctx context.Context, id string, w io.Writer) error
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps     Dependencies
	stats    StatsProvider
	hub      *Hub
	upgrader websocket.Upgrader
	logger   logger.Logger

	maxBodyBytes int64
	maxEvents    int
	maxSamples   int

	healthHandler *HealthHandler
	statsHandler  *StatsHandler
}

// NewServer creates a new API server.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		deps:          deps,
		stats:         statsProvider,
		hub:           NewHub(),
		upgrader:      websocket.Upgrader{ReadBufferSize: 1024, WriteBufferSize: 1024},
		maxBodyBytes:  DefaultMaxBodyBytes,
		maxEvents:     DefaultMaxEvents,
		maxSamples:    DefaultMaxSamples,
		healthHandler: NewHealthHandler(),
		statsHandler:  NewStatsHandler(statsProvider),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /activities", MetricsMiddleware(s.handleListActivities, "activities"))
	mux.HandleFunc("GET /activities/{id}", MetricsMiddleware(s.handleGetActivity, "activity"))
	mux.HandleFunc("POST /activities/{id}/check", MetricsMiddleware(s.limit(s.handleCheckMatching), "activity_check"))
	mux.HandleFunc("GET /activities/{id}/round", MetricsMiddleware(s.handleSizesRound, "activity_round"))
	mux.HandleFunc("POST /activities/{id}/answer", MetricsMiddleware(s.limit(s.handleSizesAnswer), "activity_answer"))
	mux.HandleFunc("POST /score", MetricsMiddleware(s.limit(s.handleScore), "score"))

	mux.HandleFunc("POST /sessions", MetricsMiddleware(s.limit(s.handleCreateSession), "sessions"))
	mux.HandleFunc("GET /sessions/{id}", MetricsMiddleware(s.handleGetSession, "session"))
	mux.HandleFunc("DELETE /sessions/{id}", MetricsMiddleware(s.handleDeleteSession, "session"))
	mux.HandleFunc("POST /sessions/{id}/events", MetricsMiddleware(s.limit(s.handlePostEvents), "session_events"))
	mux.HandleFunc("POST /sessions/{id}/check", MetricsMiddleware(s.handleCheck, "session_check"))
	mux.HandleFunc("POST /sessions/{id}/reset", MetricsMiddleware(s.handleReset, "session_reset"))
	mux.HandleFunc("GET /sessions/{id}/snapshot.png", MetricsMiddleware(s.handleSnapshot, "session_snapshot"))
	mux.HandleFunc("GET /sessions/{id}/stream", MetricsMiddleware(s.handleStream, "session_stream"))
}

// limit caps the request body size.
func (s *Server) limit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)
		next(w, r)
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// decode reads a JSON body into v, rejecting unknown fields and oversize
// bodies.
func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("empty body")
		}
		return err
	}
	return nil
}

// classify maps upstream failures to an HTTP status, error code and API kind.
func classify(err error) (int, string, error) {
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge, "too_large", ErrBadRequest
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, service.ErrNotTracing),
		errors.Is(err, service.ErrNotMatching),
		errors.Is(err, service.ErrNotSizes),
		errors.Is(err, catalog.ErrUnknownChoice),
		errors.Is(err, scoring.ErrInvalidSamples),
		errors.Is(err, scoring.ErrInvalidTolerance),
		errors.Is(err, matching.ErrUnknownID),
		errors.Is(err, matching.ErrUnknownRule),
		errors.Is(err, model.ErrUnknownEventKind):
		return http.StatusBadRequest, "bad_request", ErrBadRequest
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrUnknownActivity):
		return http.StatusNotFound, "not_found", ErrNotFound
	case errors.Is(err, repository.ErrCapacity):
		return http.StatusTooManyRequests, "capacity", ErrCapacity
	case errors.Is(err, service.ErrNotStarted),
		errors.Is(err, repository.ErrStoreClosed):
		return http.StatusServiceUnavailable, "unavailable", ErrUnavailable
	default:
		return http.StatusInternalServerError, "internal_error", ErrInternal
	}
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, code, kind := classify(err)
	var tagged *kindError
	if !errors.As(err, &tagged) {
		err = WrapKind(op, kind, err)
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed", logger.String("op", op), logger.Error(err))
		metrics.RecordErrorByComponent("api", code)
	}
	writeError(w, status, code, err)
}
