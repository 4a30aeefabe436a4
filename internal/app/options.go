package service

import (
	"time"

	"github.com/okian/workbook/internal/domain/catalog"
	"github.com/okian/workbook/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSamples sets how many points along the guide are checked.
func WithSamples(n int) Option {
	return func(s *Service) {
		s.samples = n
	}
}

// WithToleranceRadius sets how far a drawn point may be from a sample and
// still cover it.
func WithToleranceRadius(r float64) Option {
	return func(s *Service) {
		s.toleranceRadius = r
	}
}

// WithMaxSessions caps live sessions. Zero means no cap.
func WithMaxSessions(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxSessions = n
		}
	}
}

// WithSessionTTL sets how long an idle session is kept. Zero keeps sessions
// until deleted.
func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl >= 0 {
			s.sessionTTL = ttl
		}
	}
}

// WithSweepInterval sets how often expired sessions are purged.
func WithSweepInterval(interval time.Duration) Option {
	return func(s *Service) {
		if interval > 0 {
			s.sweepInterval = interval
		}
	}
}

// WithMaxPoints caps stored points per session. Zero means no cap.
func WithMaxPoints(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.maxPoints = n
		}
	}
}

// WithDedupeSize sets how many batch ids are remembered.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithCatalog replaces the built-in workbook.
func WithCatalog(c *catalog.Catalog) Option {
	return func(s *Service) {
		if c != nil {
			s.catalog = c
		}
	}
}
