// Package scoring computes how well a drawn path covers a reference curve.
//
// The curve is sampled at evenly spaced arc-length positions and each sample
// counts as hit when any drawn point lies within the tolerance radius. Stroke
// order and direction are ignored, so a scribble passing near every sample
// scores as well as a clean trace.
package scoring

import (
	"math"

	"github.com/okian/workbook/internal/domain/geom"
)

// Default scoring parameters.
const (
	DefaultSamples         = 80
	DefaultToleranceRadius = 28.0
	maxPercent             = 100
)

// Sampler is the part of a reference curve the scorer needs.
type Sampler interface {
	Length() float64
	PointAt(s float64) geom.Point
}

// Result is a derived score: coverage percent and star rating.
type Result struct {
	Percent int `json:"percent"`
	Stars   int `json:"stars"`
}

// Coverage returns the integer percentage of curve samples that have a drawn
// point within toleranceRadius. An empty drawn path scores 0.
func Coverage(curve Sampler, drawn []geom.Point, samples int, toleranceRadius float64) (int, error) {
	if c, ok := curve.(*geom.Curve); ok && c == nil {
		curve = nil
	}
	switch {
	case curve == nil:
		return 0, ErrMissingCurve
	case samples < 2:
		return 0, ErrInvalidSamples
	case toleranceRadius < 0 || math.IsNaN(toleranceRadius):
		return 0, ErrInvalidTolerance
	}
	if len(drawn) == 0 {
		return 0, nil
	}

	length := curve.Length()
	threshold := toleranceRadius * toleranceRadius
	matched := 0
	for i := 0; i < samples; i++ {
		pt := curve.PointAt(float64(i) / float64(samples-1) * length)
		for _, d := range drawn {
			if d.DistanceSquared(pt) <= threshold {
				matched++
				break
			}
		}
	}
	return int(math.Round(float64(matched) / float64(samples) * maxPercent)), nil
}

// Scorer scores drawn paths with fixed sampling parameters.
type Scorer struct {
	samples         int
	toleranceRadius float64
}

// New creates a Scorer with the default 80 samples and radius 28.
func New(opts ...Option) *Scorer {
	s := &Scorer{
		samples:         DefaultSamples,
		toleranceRadius: DefaultToleranceRadius,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Samples returns the configured sample count.
func (s *Scorer) Samples() int { return s.samples }

// ToleranceRadius returns the configured hit radius.
func (s *Scorer) ToleranceRadius() float64 { return s.toleranceRadius }

// Score computes the coverage percent and its star rating.
func (s *Scorer) Score(curve Sampler, drawn []geom.Point) (Result, error) {
	percent, err := Coverage(curve, drawn, s.samples, s.toleranceRadius)
	if err != nil {
		return Result{}, err
	}
	return Result{Percent: percent, Stars: StarsFor(percent)}, nil
}
