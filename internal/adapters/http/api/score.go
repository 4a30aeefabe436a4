package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/okian/workbook/internal/domain/geom"
)

const defaultActivity = "trace"

// scoreRequest is the body of POST /score. Points are in surface
// coordinates.
type scoreRequest struct {
	ActivityID      string       `json:"activity_id"`
	Points          []geom.Point `json:"points"`
	Samples         int          `json:"samples,omitempty"`
	ToleranceRadius float64      `json:"tolerance_radius,omitempty"`
}

func (r *scoreRequest) validate(maxPoints, maxSamples int) error {
	if strings.TrimSpace(r.ActivityID) == "" {
		r.ActivityID = defaultActivity
	}
	if len(r.Points) > maxPoints {
		return errors.New("too many points")
	}
	if r.Samples > maxSamples {
		return fmt.Errorf("samples %d exceeds %d", r.Samples, maxSamples)
	}
	return nil
}

// handleScore handles POST /score.
func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	const op = "api.score"
	var req scoreRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, op, WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(s.maxEvents, s.maxSamples); err != nil {
		s.fail(w, r, op, WrapKind(op, ErrBadRequest, err))
		return
	}
	res, err := s.deps.ScorePoints(r.Context(), req.ActivityID, req.Points, req.Samples, req.ToleranceRadius)
	if err != nil {
		s.fail(w, r, op, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
