package api

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/workbook/pkg/logger"
)

// Default request limits.
const (
	DefaultMaxBodyBytes = 1 << 20
	DefaultMaxEvents    = 10000
	DefaultMaxSamples   = 1000
)

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger used by handlers.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxBodyBytes limits request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithMaxEvents limits pointer events per batch.
func WithMaxEvents(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxEvents = n
		}
	}
}

// WithMaxSamples limits the samples a POST /score request may ask for.
// Scoring cost grows with samples times points.
func WithMaxSamples(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxSamples = n
		}
	}
}

// WithCheckOrigin replaces the websocket origin check. By default only
// same-origin browsers and non-browser clients are accepted.
func WithCheckOrigin(fn func(r *http.Request) bool) Option {
	return func(s *Server) {
		if fn != nil {
			s.upgrader.CheckOrigin = fn
		}
	}
}

// AllowOrigins returns an origin check that accepts non-browser clients,
// same-origin requests and any of the listed origins.
func AllowOrigins(origins ...string) func(r *http.Request) bool {
	allowed := make(map[string]struct{}, len(origins))
	for _, o := range origins {
		allowed[strings.ToLower(strings.TrimRight(o, "/"))] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if u, err := url.Parse(origin); err == nil && strings.EqualFold(u.Host, r.Host) {
			return true
		}
		_, ok := allowed[strings.ToLower(origin)]
		return ok
	}
}
