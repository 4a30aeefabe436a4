// Package types contains the read shapes shared by the service and the API.
package types

import (
	"time"

	"github.com/okian/workbook/internal/domain/scoring"
)

// SessionView describes a drawing session.
type SessionView struct {
	ID         string          `json:"id"`
	ActivityID string          `json:"activity_id"`
	State      string          `json:"state"`
	Points     int             `json:"points"`
	Result     *scoring.Result `json:"result,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// ApplyResult summarises one event batch.
type ApplyResult struct {
	SessionID      string `json:"session_id"`
	Applied        int    `json:"applied"`
	Ignored        int    `json:"ignored"`
	MissingSurface int    `json:"missing_surface"`
	Dropped        int    `json:"dropped"`
	Duplicate      bool   `json:"duplicate"`
	State          string `json:"state"`
	Points         int    `json:"points"`
}

// Skipped is the number of events that changed nothing.
func (r ApplyResult) Skipped() int {
	return r.Ignored + r.MissingSurface + r.Dropped
}
