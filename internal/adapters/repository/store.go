// Package repository keeps live drawing sessions in memory.
package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/workbook/internal/domain/capture"
)

// Store provides access to live drawing sessions.
type Store interface {
	// Create registers session for activityID under a fresh id.
	// Returns ErrCapacity when the store is full.
	Create(ctx context.Context, activityID string, session *capture.Session) (*Record, error)

	// Get returns the record for id. Returns ErrNotFound if the id is unknown
	// or has expired.
	Get(ctx context.Context, id string) (*Record, error)

	// Delete removes id. Returns ErrNotFound if the id is unknown.
	Delete(ctx context.Context, id string) error

	// Count returns the number of live sessions.
	Count(ctx context.Context) int
}

// Record is a stored session. The session itself is only reachable through
// Do, which serializes access.
type Record struct {
	ID         string
	ActivityID string
	CreatedAt  time.Time

	mu       sync.Mutex
	session  *capture.Session
	lastSeen atomic.Int64 // unix nanos
	now      func() time.Time
}

// Do runs fn with exclusive access to the session and marks the record as
// recently used.
func (r *Record) Do(fn func(s *capture.Session) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.touch()
	return fn(r.session)
}

// LastSeen reports when the record was last used.
func (r *Record) LastSeen() time.Time {
	return time.Unix(0, r.lastSeen.Load())
}

func (r *Record) touch() {
	r.lastSeen.Store(r.now().UnixNano())
}
