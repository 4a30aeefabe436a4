// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Durations are configured in whole seconds and exposed as time.Duration.
// - Validation failures wrap ErrInvalidConfig.
package config

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// Samples is the number of arc-length points taken along a guide curve.
	Samples int `koanf:"samples"`

	// ToleranceRadius is how far a guide sample may be from the nearest
	// drawn point and still count as covered.
	ToleranceRadius float64 `koanf:"tolerance_radius"`

	// MaxSessions caps live tracing sessions.
	MaxSessions int `koanf:"max_sessions"`

	// SessionTTLSeconds expires sessions idle for longer. Zero disables expiry.
	SessionTTLSeconds int `koanf:"session_ttl_seconds"`

	// SweepIntervalSeconds sets how often expired sessions are collected.
	SweepIntervalSeconds int `koanf:"sweep_interval_seconds"`

	// MaxPointsPerSession caps a session's drawing.
	MaxPointsPerSession int `koanf:"max_points_per_session"`

	// DedupeSize sets the size of the batch deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `koanf:"max_body_bytes"`

	// MaxEvents caps the events in one batch and the points in one score request.
	MaxEvents int `koanf:"max_events"`

	// MaxSamples caps the samples a score request may ask for.
	MaxSamples int `koanf:"max_samples"`

	// AllowedOrigins is a comma separated list of extra origins allowed to
	// open session streams. Same-origin requests are always allowed.
	AllowedOrigins string `koanf:"allowed_origins"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		Addr:                 ":9080",
		Samples:              80,
		ToleranceRadius:      28,
		MaxSessions:          10_000,
		SessionTTLSeconds:    1800,
		SweepIntervalSeconds: 60,
		MaxPointsPerSession:  50_000,
		DedupeSize:           50_000,
		MaxBodyBytes:         1 << 20,
		MaxEvents:            10_000,
		MaxSamples:           1000,
	}
}

// SessionTTL returns SessionTTLSeconds as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLSeconds) * time.Second
}

// SweepInterval returns SweepIntervalSeconds as a duration.
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// Origins returns AllowedOrigins split on commas, blanks dropped.
func (c *Config) Origins() []string {
	var out []string
	for _, o := range strings.Split(c.AllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

// Validate reports the first setting that cannot run.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.Samples < 2:
		return fmt.Errorf("%w: samples must be at least 2, got %d", ErrInvalidConfig, c.Samples)
	case !(c.ToleranceRadius > 0) || math.IsInf(c.ToleranceRadius, 0):
		return fmt.Errorf("%w: tolerance_radius must be positive and finite, got %g", ErrInvalidConfig, c.ToleranceRadius)
	case c.MaxSessions <= 0:
		return fmt.Errorf("%w: max_sessions must be positive, got %d", ErrInvalidConfig, c.MaxSessions)
	case c.SessionTTLSeconds < 0:
		return fmt.Errorf("%w: session_ttl_seconds must not be negative, got %d", ErrInvalidConfig, c.SessionTTLSeconds)
	case c.SessionTTLSeconds > 0 && c.SweepIntervalSeconds <= 0:
		return fmt.Errorf("%w: sweep_interval_seconds must be positive when sessions expire", ErrInvalidConfig)
	case c.MaxPointsPerSession <= 0:
		return fmt.Errorf("%w: max_points_per_session must be positive, got %d", ErrInvalidConfig, c.MaxPointsPerSession)
	case c.DedupeSize <= 0:
		return fmt.Errorf("%w: dedupe_size must be positive, got %d", ErrInvalidConfig, c.DedupeSize)
	case c.MaxBodyBytes <= 0:
		return fmt.Errorf("%w: max_body_bytes must be positive, got %d", ErrInvalidConfig, c.MaxBodyBytes)
	case c.MaxEvents <= 0:
		return fmt.Errorf("%w: max_events must be positive, got %d", ErrInvalidConfig, c.MaxEvents)
	case c.MaxSamples < c.Samples:
		return fmt.Errorf("%w: max_samples must be at least samples (%d), got %d", ErrInvalidConfig, c.Samples, c.MaxSamples)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log_format must be text or json, got %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}
