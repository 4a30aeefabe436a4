// Package service provides the tracing workbook service behind the HTTP API.
package service

import (
	"context"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	"github.com/okian/workbook/internal/adapters/render"
	"github.com/okian/workbook/internal/adapters/repository"
	"github.com/okian/workbook/internal/domain/capture"
	"github.com/okian/workbook/internal/domain/catalog"
	"github.com/okian/workbook/internal/domain/dedupe"
	"github.com/okian/workbook/internal/domain/geom"
	"github.com/okian/workbook/internal/domain/matching"
	"github.com/okian/workbook/internal/domain/model"
	"github.com/okian/workbook/internal/domain/scoring"
	"github.com/okian/workbook/internal/domain/types"
	"github.com/okian/workbook/pkg/logger"
	"github.com/okian/workbook/pkg/metrics"
)

const (
	guideResolution = 128
	msPerSecond     = 1e3
)

// Service owns live drawing sessions and scores them against the workbook.
type Service struct {
	mu sync.RWMutex

	// Core components
	sessions *repository.MemoryStore
	deduper  dedupe.Deduper
	scorer   *scoring.Scorer
	catalog  *catalog.Catalog
	renderer *render.Renderer

	// Configuration
	samples         int
	toleranceRadius float64
	maxSessions     int
	sessionTTL      time.Duration
	sweepInterval   time.Duration
	maxPoints       int
	dedupeSize      int

	started bool
	logger  logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		samples:         scoring.DefaultSamples,
		toleranceRadius: scoring.DefaultToleranceRadius,
		maxSessions:     repository.DefaultMaxSessions,
		sessionTTL:      repository.DefaultTTL,
		sweepInterval:   repository.DefaultSweepInterval,
		maxPoints:       50_000,
		dedupeSize:      dedupe.DefaultMaxSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start builds the session store and scorer. It is a no-op when already
// started.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.samples < 2 {
		return fmt.Errorf("start: %w: %d", scoring.ErrInvalidSamples, s.samples)
	}
	if !(s.toleranceRadius > 0) || math.IsInf(s.toleranceRadius, 0) {
		return fmt.Errorf("start: %w: %v", scoring.ErrInvalidTolerance, s.toleranceRadius)
	}
	if s.catalog == nil {
		s.catalog = catalog.Default()
	}

	s.logger.Info(ctx, "starting workbook service...")

	s.scorer = scoring.New(
		scoring.WithSamples(s.samples),
		scoring.WithToleranceRadius(s.toleranceRadius),
	)
	s.sessions = repository.NewMemoryStore(ctx,
		repository.WithMaxSessions(s.maxSessions),
		repository.WithTTL(s.sessionTTL),
		repository.WithSweepInterval(s.sweepInterval),
	)
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.renderer = render.New()

	s.started = true
	s.logger.Info(ctx, "workbook service started",
		logger.Int("samples", s.samples),
		logger.Float64("toleranceRadius", s.toleranceRadius),
		logger.Int("maxSessions", s.maxSessions),
		logger.Duration("sessionTTL", s.sessionTTL),
		logger.Int("maxPoints", s.maxPoints),
		logger.Int("activities", s.catalog.Len()),
	)
	return nil
}

// Stop releases the session store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(context.Background(), "stopping workbook service...")
	_ = s.sessions.Close()
	s.started = false
	s.logger.Info(context.Background(), "workbook service stopped")
}

func (s *Service) ready() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return ErrNotStarted
	}
	return nil
}

// Activities lists the workbook pages in order.
func (s *Service) Activities() []catalog.Activity {
	return s.workbook().List()
}

// Activity returns one page.
func (s *Service) Activity(id string) (catalog.Activity, error) {
	a, ok := s.workbook().Get(id)
	if !ok {
		return catalog.Activity{}, fmt.Errorf("%w: %q", ErrUnknownActivity, id)
	}
	return a, nil
}

// Page returns the page at index, clamped to the workbook, with the index
// actually used.
func (s *Service) Page(index int) (catalog.Activity, int) {
	return s.workbook().Page(index)
}

func (s *Service) workbook() *catalog.Catalog {
	s.mu.RLock()
	c := s.catalog
	s.mu.RUnlock()
	if c == nil {
		return catalog.Default()
	}
	return c
}

// guide returns the reference curve for a tracing page.
func (s *Service) guide(activityID string) (*catalog.Tracing, error) {
	a, err := s.Activity(activityID)
	if err != nil {
		return nil, err
	}
	if a.Kind != catalog.KindTracing || a.Tracing == nil || a.Tracing.Curve() == nil {
		return nil, fmt.Errorf("%w: %q", ErrNotTracing, activityID)
	}
	return a.Tracing, nil
}

// CreateSession opens a drawing session on a tracing page.
func (s *Service) CreateSession(ctx context.Context, activityID string) (types.SessionView, error) {
	if err := s.ready(); err != nil {
		return types.SessionView{}, err
	}
	if _, err := s.guide(activityID); err != nil {
		return types.SessionView{}, err
	}
	rec, err := s.sessions.Create(ctx, activityID, capture.NewSession(capture.WithMaxPoints(s.maxPoints)))
	if err != nil {
		s.logger.Warn(ctx, "session create failed", logger.String("activity", activityID), logger.Error(err))
		return types.SessionView{}, err
	}
	s.logger.Debug(ctx, "session created",
		logger.String("session", rec.ID),
		logger.String("activity", activityID),
	)
	return s.view(rec)
}

// Session describes a live session.
func (s *Service) Session(ctx context.Context, id string) (types.SessionView, error) {
	rec, err := s.record(ctx, id)
	if err != nil {
		return types.SessionView{}, err
	}
	return s.view(rec)
}

// DeleteSession discards a session.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, id)
}

// ApplyEvents feeds a batch of pointer events to a session in order. A batch
// whose non-empty ID was already applied to the session is skipped and
// reported as a duplicate.
func (s *Service) ApplyEvents(ctx context.Context, id string, batch model.Batch) (types.ApplyResult, error) {
	rec, err := s.record(ctx, id)
	if err != nil {
		return types.ApplyResult{}, err
	}

	res := types.ApplyResult{SessionID: id}
	key := ""
	if batch.ID != "" {
		key = dedupe.Key(id, batch.ID)
		if s.deduper.SeenAndRecord(ctx, key) {
			metrics.RecordDuplicateBatch()
			s.logger.Debug(ctx, "duplicate batch skipped",
				logger.String("session", id),
				logger.String("batch", batch.ID),
			)
			res.Duplicate = true
			err := rec.Do(func(sess *capture.Session) error {
				res.State = sess.State().String()
				res.Points = sess.Len()
				return nil
			})
			return res, err
		}
	}

	err = rec.Do(func(sess *capture.Session) error {
		for _, e := range batch.Events {
			before := sess.Len()
			out := sess.Apply(batch.SurfaceFor(e), e)
			metrics.RecordPointerEvent(string(e.Kind), out.String())
			metrics.RecordCapturedPoints(sess.Len() - before)
			switch out {
			case capture.Applied:
				res.Applied++
			case capture.Ignored:
				res.Ignored++
			case capture.MissingSurface:
				res.MissingSurface++
			case capture.Dropped:
				res.Dropped++
			}
		}
		res.State = sess.State().String()
		res.Points = sess.Len()
		return nil
	})
	if err != nil && key != "" {
		s.deduper.Unrecord(ctx, key)
	}
	return res, err
}

// Check scores the session's drawing against its guide and remembers the
// result.
func (s *Service) Check(ctx context.Context, id string) (scoring.Result, error) {
	rec, err := s.record(ctx, id)
	if err != nil {
		return scoring.Result{}, err
	}
	tr, err := s.guide(rec.ActivityID)
	if err != nil {
		return scoring.Result{}, err
	}

	var (
		res    scoring.Result
		points int
	)
	start := time.Now()
	err = rec.Do(func(sess *capture.Session) error {
		var ok bool
		res, ok = sess.Check(tr.Curve(), s.scorer)
		points = sess.Len()
		if !ok {
			return ErrCheckFailed
		}
		return nil
	})
	if err != nil {
		metrics.RecordErrorByComponent("service", "check")
		return scoring.Result{}, err
	}
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / msPerSecond)
	metrics.RecordCheck(res.Percent, res.Stars)
	s.logger.Info(ctx, "tracing checked",
		logger.String("session", id),
		logger.Int("points", points),
		logger.Int("percent", res.Percent),
		logger.Int("stars", res.Stars),
	)
	return res, nil
}

// Reset clears the session's drawing and last score.
func (s *Service) Reset(ctx context.Context, id string) (types.SessionView, error) {
	rec, err := s.record(ctx, id)
	if err != nil {
		return types.SessionView{}, err
	}
	_ = rec.Do(func(sess *capture.Session) error {
		sess.Reset()
		return nil
	})
	return s.view(rec)
}

// ScorePoints scores points already in surface coordinates without a
// session. Zero samples or radius select the service defaults.
func (s *Service) ScorePoints(ctx context.Context, activityID string, points []geom.Point, samples int, toleranceRadius float64) (scoring.Result, error) {
	if err := s.ready(); err != nil {
		return scoring.Result{}, err
	}
	tr, err := s.guide(activityID)
	if err != nil {
		return scoring.Result{}, err
	}
	if samples == 0 {
		samples = s.samples
	}
	if toleranceRadius == 0 {
		toleranceRadius = s.toleranceRadius
	}

	start := time.Now()
	percent, err := scoring.Coverage(tr.Curve(), points, samples, toleranceRadius)
	if err != nil {
		return scoring.Result{}, err
	}
	metrics.RecordScoringLatency(float64(time.Since(start).Microseconds()) / msPerSecond)
	res := scoring.Result{Percent: percent, Stars: scoring.StarsFor(percent)}
	s.logger.Debug(ctx, "points scored",
		logger.String("activity", activityID),
		logger.Int("points", len(points)),
		logger.Int("percent", res.Percent),
	)
	return res, nil
}

// Snapshot writes a PNG of the session's guide and drawing.
func (s *Service) Snapshot(ctx context.Context, id string, out io.Writer) error {
	rec, err := s.record(ctx, id)
	if err != nil {
		return err
	}
	tr, err := s.guide(rec.ActivityID)
	if err != nil {
		return err
	}
	var drawn []geom.Point
	_ = rec.Do(func(sess *capture.Session) error {
		drawn = sess.Points()
		return nil
	})

	start := time.Now()
	err = s.renderer.Snapshot(out, tr.ViewBox.Width, tr.ViewBox.Height, tr.Curve().Polyline(guideResolution), drawn)
	if err != nil {
		metrics.RecordErrorByComponent("render", "snapshot")
		return err
	}
	metrics.RecordSnapshotLatency(float64(time.Since(start).Microseconds()) / msPerSecond)
	return nil
}

// CheckMatching evaluates moves on a matching page.
func (s *Service) CheckMatching(ctx context.Context, activityID string, moves []matching.Move) (matching.Outcome, error) {
	if err := s.ready(); err != nil {
		return matching.Outcome{}, err
	}
	a, err := s.Activity(activityID)
	if err != nil {
		return matching.Outcome{}, err
	}
	if a.Kind != catalog.KindMatching || a.Board == nil {
		return matching.Outcome{}, fmt.Errorf("%w: %q", ErrNotMatching, activityID)
	}
	out, err := a.Board.Evaluate(moves)
	if err != nil {
		return matching.Outcome{}, err
	}
	metrics.RecordMatchingCheck(activityID, out.Complete)
	s.logger.Debug(ctx, "matching checked",
		logger.String("activity", activityID),
		logger.Int("correct", out.Correct),
		logger.Int("total", out.Total),
		logger.Bool("complete", out.Complete),
	)
	return out, nil
}

// SizesRound draws a fresh big-and-small pair for a sizes page.
func (s *Service) SizesRound(activityID string) (catalog.SizesRound, error) {
	a, err := s.sizes(activityID)
	if err != nil {
		return catalog.SizesRound{}, err
	}
	return a.Sizes.Round(nil)
}

// AnswerSizes says which animal of round the child picked.
func (s *Service) AnswerSizes(ctx context.Context, activityID string, round catalog.SizesRound, choice catalog.Choice) (catalog.Answer, error) {
	if _, err := s.sizes(activityID); err != nil {
		return catalog.Answer{}, err
	}
	ans, err := round.Answer(choice)
	if err != nil {
		return catalog.Answer{}, err
	}
	s.logger.Debug(ctx, "sizes answered",
		logger.String("activity", activityID),
		logger.String("choice", string(choice)),
	)
	return ans, nil
}

func (s *Service) sizes(activityID string) (catalog.Activity, error) {
	a, err := s.Activity(activityID)
	if err != nil {
		return catalog.Activity{}, err
	}
	if a.Kind != catalog.KindSizes || a.Sizes == nil {
		return catalog.Activity{}, fmt.Errorf("%w: %q", ErrNotSizes, activityID)
	}
	return a, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":         s.started,
		"samples":         s.samples,
		"toleranceRadius": s.toleranceRadius,
		"maxSessions":     s.maxSessions,
		"maxPoints":       s.maxPoints,
		"dedupeSize":      s.dedupeSize,
	}
	if s.started {
		active := s.sessions.Count(context.Background())
		stats["activeSessions"] = active
		stats["trackedBatches"] = s.deduper.Size()
		stats["activities"] = s.catalog.Len()
		metrics.UpdateActiveSessions(active)
	}
	return stats
}

func (s *Service) record(ctx context.Context, id string) (*repository.Record, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.sessions.Get(ctx, id)
}

func (s *Service) view(rec *repository.Record) (types.SessionView, error) {
	v := types.SessionView{
		ID:         rec.ID,
		ActivityID: rec.ActivityID,
		CreatedAt:  rec.CreatedAt,
	}
	err := rec.Do(func(sess *capture.Session) error {
		v.State = sess.State().String()
		v.Points = sess.Len()
		if r, ok := sess.Result(); ok {
			v.Result = &r
		}
		return nil
	})
	return v, err
}
