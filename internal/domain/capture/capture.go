// Package capture records a drawing session as an explicit state machine.
//
//	Idle --press--> Drawing --move--> Drawing --release/leave--> Idle
//
// Press and move append the pointer location, translated into the drawing
// surface's local frame, to an owned path buffer. Release and leave append
// nothing. Reset empties the buffer and forgets the last score. Scoring never
// changes state. A Session is not safe for concurrent use; its owner
// serializes access.
package capture

import (
	"github.com/okian/workbook/internal/domain/geom"
	"github.com/okian/workbook/internal/domain/model"
	"github.com/okian/workbook/internal/domain/scoring"
)

// State is the capture state.
type State int

// Capture states.
const (
	Idle State = iota
	Drawing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Drawing:
		return "drawing"
	default:
		return "unknown"
	}
}

// Outcome reports what a single input did to the session.
type Outcome int

// Event outcomes.
const (
	// Applied means the event changed state or appended a point.
	Applied Outcome = iota
	// Ignored means the event is meaningless in the current state, such as a
	// move while idle.
	Ignored
	// MissingSurface means no surface position was available; nothing changed.
	MissingSurface
	// Dropped means the point limit was reached; the transition still happened
	// but the point was not stored.
	Dropped
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Ignored:
		return "ignored"
	case MissingSurface:
		return "missing_surface"
	case Dropped:
		return "dropped"
	default:
		return "unknown"
	}
}

// Surface yields the drawing surface's current top-left position in device
// coordinates. ok is false when the surface is not available yet.
type Surface interface {
	Origin() (origin geom.Point, ok bool)
}

// Scorer scores a drawn path against a reference curve.
type Scorer interface {
	Score(curve scoring.Sampler, drawn []geom.Point) (scoring.Result, error)
}

// Session is a single drawing session on one activity.
type Session struct {
	state     State
	path      Path
	result    scoring.Result
	scored    bool
	maxPoints int
}

// NewSession returns an idle session with an empty path.
func NewSession(opts ...Option) *Session {
	s := &Session{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current capture state.
func (s *Session) State() State { return s.state }

// Len returns the number of captured points.
func (s *Session) Len() int { return s.path.Len() }

// Points returns a copy of the captured points in capture order.
func (s *Session) Points() []geom.Point { return s.path.Points() }

// Result returns the last computed score. ok is false when no score has been
// computed since the session started or was reset.
func (s *Session) Result() (scoring.Result, bool) { return s.result, s.scored }

// Press starts (or continues) a stroke at the device location.
func (s *Session) Press(surface Surface, device geom.Point) Outcome {
	local, ok := toLocal(surface, device)
	if !ok {
		return MissingSurface
	}
	s.state = Drawing
	return s.append(local)
}

// Move extends the current stroke. Moves while idle are ignored.
func (s *Session) Move(surface Surface, device geom.Point) Outcome {
	if s.state != Drawing {
		return Ignored
	}
	local, ok := toLocal(surface, device)
	if !ok {
		return MissingSurface
	}
	return s.append(local)
}

// Release ends the current stroke.
func (s *Session) Release() Outcome {
	if s.state != Drawing {
		return Ignored
	}
	s.state = Idle
	return Applied
}

// Leave ends the current stroke when the pointer leaves the surface.
func (s *Session) Leave() Outcome {
	return s.Release()
}

// Apply dispatches a pointer event to the matching transition.
func (s *Session) Apply(surface Surface, e model.PointerEvent) Outcome {
	switch e.Kind {
	case model.KindPress:
		return s.Press(surface, e.Device())
	case model.KindMove:
		return s.Move(surface, e.Device())
	case model.KindRelease:
		return s.Release()
	case model.KindLeave:
		return s.Leave()
	default:
		return Ignored
	}
}

// Reset clears the drawn path and the last score and returns to Idle.
func (s *Session) Reset() {
	s.path.Reset()
	s.state = Idle
	s.result = scoring.Result{}
	s.scored = false
}

// Check scores the current path against curve and remembers the result. It
// returns false, leaving the session untouched, when the curve or scorer is
// unavailable.
func (s *Session) Check(curve scoring.Sampler, scorer Scorer) (scoring.Result, bool) {
	if curve == nil || scorer == nil {
		return scoring.Result{}, false
	}
	res, err := scorer.Score(curve, s.path.points)
	if err != nil {
		return scoring.Result{}, false
	}
	s.result = res
	s.scored = true
	return res, true
}

func (s *Session) append(p geom.Point) Outcome {
	if s.maxPoints > 0 && s.path.Len() >= s.maxPoints {
		return Dropped
	}
	s.path.Append(p)
	return Applied
}

// toLocal translates device coordinates by the surface origin read now.
func toLocal(surface Surface, device geom.Point) (geom.Point, bool) {
	if surface == nil {
		return geom.Point{}, false
	}
	origin, ok := surface.Origin()
	if !ok {
		return geom.Point{}, false
	}
	return device.Sub(origin), true
}
