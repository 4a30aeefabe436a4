package simulate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/workbook/internal/domain/geom"
	"github.com/okian/workbook/pkg/logger"
)

const (
	directoryPermission = 0750
	defaultBatchSize    = 32
	workerChannelFactor = 2
	percentMultiplier   = 100
)

// ErrMismatch is returned when at least one session earned stars its mode
// should not have.
var ErrMismatch = errors.New("star expectations not met")

type job struct {
	index     int
	mode      Mode
	transport string
}

// Run executes a complete simulation and returns every session's result.
func Run(ctx context.Context, cfg *Config) ([]Result, error) {
	normalize(cfg)
	stats := &Stats{StartTime: time.Now(), Sessions: cfg.Sessions}
	log := logger.Named("simulate")

	log.Info(ctx, "starting tracing simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.String("activity", cfg.ActivityID),
		logger.Int("sessions", cfg.Sessions),
		logger.Int("workers", cfg.Workers),
		logger.String("transport", cfg.Transport),
		logger.Duration("timeout", cfg.Timeout),
	)

	c := newClient(cfg.BaseURL, cfg.Timeout)
	if err := c.health(ctx); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	act, err := c.activity(ctx, cfg.ActivityID)
	if err != nil {
		return nil, fmt.Errorf("fetch activity: %w", err)
	}
	if act.Tracing == nil {
		return nil, fmt.Errorf("activity %q is not a tracing page", cfg.ActivityID)
	}
	guide, err := geom.ParsePath(act.Tracing.Path)
	if err != nil {
		return nil, fmt.Errorf("parse guide: %w", err)
	}
	width, height := act.Tracing.ViewBox.Width, act.Tracing.ViewBox.Height

	results := make([]Result, cfg.Sessions)
	var (
		checked    int64
		passed     int64
		mismatched int64
		failed     int64
		duplicates int64
	)

	jobs := make(chan job, cfg.Workers*workerChannelFactor)
	var wg sync.WaitGroup
	for range cfg.Workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				stroke := NewStroke(j.mode, guide, width, height)
				res := runSession(ctx, c, cfg, j, stroke)
				results[j.index] = res

				switch {
				case res.Error != "":
					atomic.AddInt64(&failed, 1)
					log.Warn(ctx, "session failed", logger.String("mode", string(res.Mode)), logger.String("error", res.Error))
				case res.Passed:
					atomic.AddInt64(&checked, 1)
					atomic.AddInt64(&passed, 1)
				default:
					atomic.AddInt64(&checked, 1)
					atomic.AddInt64(&mismatched, 1)
					log.Warn(ctx, "unexpected stars",
						logger.String("session", res.SessionID),
						logger.String("mode", string(res.Mode)),
						logger.Int("percent", res.Percent),
						logger.Int("stars", res.Stars),
					)
				}
				if res.Duplicate {
					atomic.AddInt64(&duplicates, 1)
				}
				if cfg.Verbose {
					log.Info(ctx, "session checked",
						logger.String("session", res.SessionID),
						logger.String("mode", string(res.Mode)),
						logger.String("transport", res.Transport),
						logger.Int("percent", res.Percent),
						logger.Int("stars", res.Stars),
					)
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range cfg.Sessions {
			select {
			case <-ctx.Done():
				return
			case jobs <- plan(cfg, i):
			}
		}
	}()
	wg.Wait()

	stats.Checked = int(atomic.LoadInt64(&checked))
	stats.Passed = int(atomic.LoadInt64(&passed))
	stats.Mismatched = int(atomic.LoadInt64(&mismatched))
	stats.Failed = int(atomic.LoadInt64(&failed))
	stats.Duplicates = int(atomic.LoadInt64(&duplicates))
	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)

	displayFinalStats(ctx, stats)
	if cfg.OutputFile != "" {
		if err := saveResults(cfg.OutputFile, results); err != nil {
			log.Warn(ctx, "failed to save results", logger.Error(err))
		}
	}
	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, verify(stats)
}

func normalize(cfg *Config) {
	if cfg.ActivityID == "" {
		cfg.ActivityID = "trace"
	}
	if cfg.Sessions <= 0 {
		cfg.Sessions = 1
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	cfg.Workers = min(cfg.Workers, cfg.Sessions)
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.Transport == "" {
		cfg.Transport = TransportMixed
	}
	if len(cfg.Modes) == 0 {
		cfg.Modes = AllModes
	}
}

// plan picks the mode and transport for session i. Modes and, in mixed
// runs, transports rotate so every combination is exercised.
func plan(cfg *Config, i int) job {
	j := job{index: i, mode: cfg.Modes[i%len(cfg.Modes)], transport: cfg.Transport}
	if cfg.Transport == TransportMixed {
		j.transport = TransportHTTP
		if (i/len(cfg.Modes))%2 == 1 {
			j.transport = TransportStream
		}
	}
	return j
}

func runSession(ctx context.Context, c *client, cfg *Config, j job, s Stroke) Result {
	res := Result{Mode: j.mode, Transport: j.transport, Events: len(s.Events())}
	id, err := c.createSession(ctx, cfg.ActivityID)
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.SessionID = id
	defer func() { _ = c.deleteSession(context.WithoutCancel(ctx), id) }()

	var score resultJSON
	switch j.transport {
	case TransportStream:
		score, err = c.drawStream(ctx, id, s)
	default:
		if res.Events > 0 {
			res.Duplicate, err = c.drawHTTP(ctx, id, s, cfg.BatchSize)
		}
		if err == nil {
			score, err = c.check(ctx, id)
		}
	}
	if err != nil {
		res.Error = err.Error()
		return res
	}
	res.Percent, res.Stars = score.Percent, score.Stars
	res.Passed = Expect(j.mode, score.Stars)
	return res
}

// saveResults writes results as a JSON array.
func saveResults(filename string, results []Result) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return os.WriteFile(filename, data, 0o600)
}
