package repository

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/workbook/internal/domain/capture"
	"github.com/okian/workbook/pkg/metrics"
)

// Defaults for the in-memory store.
const (
	DefaultMaxSessions   = 10000
	DefaultTTL           = 30 * time.Minute
	DefaultSweepInterval = time.Minute
)

// MemoryStore is a map-backed Store with idle expiry.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*Record
	closed  bool

	maxSessions   int
	ttl           time.Duration
	sweepInterval time.Duration
	newID         func() string
	now           func() time.Time

	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewMemoryStore creates a store and starts its janitor. The janitor stops when
// ctx is cancelled or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		records:       make(map[string]*Record),
		maxSessions:   DefaultMaxSessions,
		ttl:           DefaultTTL,
		sweepInterval: DefaultSweepInterval,
		newID:         uuid.NewString,
		now:           time.Now,
		stopChan:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ttl > 0 {
		s.startJanitor(ctx)
	}
	return s
}

func (s *MemoryStore) startJanitor(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
}

// Close stops the janitor. Further writes fail with ErrStoreClosed.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	close(s.stopChan)
	s.mu.Unlock()
	s.wg.Wait()
	return nil
}

func (s *MemoryStore) Create(_ context.Context, activityID string, session *capture.Session) (*Record, error) {
	if session == nil {
		return nil, ErrNilSession
	}
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClosed
	}
	if s.maxSessions > 0 && len(s.records) >= s.maxSessions {
		s.sweepLocked(now)
		if len(s.records) >= s.maxSessions {
			return nil, ErrCapacity
		}
	}

	r := &Record{
		ID:         s.newID(),
		ActivityID: activityID,
		CreatedAt:  now,
		session:    session,
		now:        s.now,
	}
	r.lastSeen.Store(now.UnixNano())
	s.records[r.ID] = r

	metrics.RecordSessionCreated()
	metrics.UpdateActiveSessions(len(s.records))
	return r, nil
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Record, error) {
	s.mu.RLock()
	r, ok := s.records[id]
	s.mu.RUnlock()
	if !ok || s.expired(r, s.now()) {
		return nil, ErrNotFound
	}
	return r, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return ErrNotFound
	}
	delete(s.records, id)
	if s.expired(r, s.now()) {
		metrics.RecordSessionEvicted(metrics.EvictReasonExpired)
		metrics.UpdateActiveSessions(len(s.records))
		return ErrNotFound
	}
	metrics.RecordSessionEvicted(metrics.EvictReasonDeleted)
	metrics.UpdateActiveSessions(len(s.records))
	return nil
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Sweep removes expired sessions and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	now := s.now()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sweepLocked(now)
}

// sweepLocked must be called with s.mu held.
func (s *MemoryStore) sweepLocked(now time.Time) int {
	removed := 0
	for id, r := range s.records {
		if s.expired(r, now) {
			delete(s.records, id)
			removed++
			metrics.RecordSessionEvicted(metrics.EvictReasonExpired)
		}
	}
	if removed > 0 {
		metrics.UpdateActiveSessions(len(s.records))
	}
	return removed
}

func (s *MemoryStore) expired(r *Record, now time.Time) bool {
	return s.ttl > 0 && now.Sub(r.LastSeen()) > s.ttl
}
