package geom

import "sort"

// lutSteps is the number of chords used to measure each curved segment.
const lutSteps = 64

// Segment is one piece of a reference curve, parametrized over t in [0, 1].
type Segment interface {
	Eval(t float64) Point
	Start() Point
	End() Point
}

// Line is a straight segment from P0 to P1.
type Line struct {
	P0, P1 Point
}

// Eval returns the point at parameter t.
func (l Line) Eval(t float64) Point { return l.P0.Lerp(l.P1, t) }

// Start returns P0.
func (l Line) Start() Point { return l.P0 }

// End returns P1.
func (l Line) End() Point { return l.P1 }

// QuadBez is a quadratic Bezier segment.
type QuadBez struct {
	P0, P1, P2 Point
}

// Eval returns the point at parameter t.
func (q QuadBez) Eval(t float64) Point {
	mt := 1 - t
	return Point{
		X: mt*mt*q.P0.X + 2*mt*t*q.P1.X + t*t*q.P2.X,
		Y: mt*mt*q.P0.Y + 2*mt*t*q.P1.Y + t*t*q.P2.Y,
	}
}

// Start returns P0.
func (q QuadBez) Start() Point { return q.P0 }

// End returns P2.
func (q QuadBez) End() Point { return q.P2 }

// CubicBez is a cubic Bezier segment.
type CubicBez struct {
	P0, P1, P2, P3 Point
}

// Eval returns the point at parameter t.
func (c CubicBez) Eval(t float64) Point {
	mt := 1 - t
	mt2 := mt * mt
	t2 := t * t
	// (1-t)^3 P0 + 3(1-t)^2 t P1 + 3(1-t) t^2 P2 + t^3 P3
	return Point{
		X: mt2*mt*c.P0.X + 3*mt2*t*c.P1.X + 3*mt*t2*c.P2.X + t2*t*c.P3.X,
		Y: mt2*mt*c.P0.Y + 3*mt2*t*c.P1.Y + 3*mt*t2*c.P2.Y + t2*t*c.P3.Y,
	}
}

// Start returns P0.
func (c CubicBez) Start() Point { return c.P0 }

// End returns P3.
func (c CubicBez) End() Point { return c.P3 }

// span is a segment together with its arc-length lookup table.
type span struct {
	seg    Segment
	offset float64   // arc length of the curve before this segment
	lens   []float64 // cumulative chord length at t = i/(len(lens)-1)
}

func (s span) length() float64 {
	return s.lens[len(s.lens)-1]
}

func newSpan(seg Segment, offset float64) span {
	steps := lutSteps
	if _, ok := seg.(Line); ok {
		steps = 1
	}
	lens := make([]float64, steps+1)
	prev := seg.Start()
	for i := 1; i <= steps; i++ {
		p := seg.Eval(float64(i) / float64(steps))
		lens[i] = lens[i-1] + prev.Distance(p)
		prev = p
	}
	return span{seg: seg, offset: offset, lens: lens}
}

// pointAt maps a local arc length to a point by inverting the lookup table.
func (s span) pointAt(local float64) Point {
	steps := len(s.lens) - 1
	j := sort.SearchFloat64s(s.lens, local)
	if j == 0 {
		return s.seg.Start()
	}
	if j > steps {
		return s.seg.End()
	}
	frac := 0.0
	if d := s.lens[j] - s.lens[j-1]; d > 0 {
		frac = (local - s.lens[j-1]) / d
	}
	return s.seg.Eval((float64(j-1) + frac) / float64(steps))
}

// Curve is an immutable reference curve: a chain of segments with a defined
// total arc length. Create it with NewCurve or ParsePath.
type Curve struct {
	start  Point
	spans  []span
	length float64
}

// NewCurve builds a curve starting at start from the given segments. Gaps
// between consecutive segments (sub-path jumps) add no length.
func NewCurve(start Point, segs ...Segment) *Curve {
	c := &Curve{start: start, spans: make([]span, 0, len(segs))}
	for _, seg := range segs {
		sp := newSpan(seg, c.length)
		c.spans = append(c.spans, sp)
		c.length += sp.length()
	}
	return c
}

// Length returns the total arc length.
func (c *Curve) Length() float64 {
	return c.length
}

// Start returns the first point of the curve.
func (c *Curve) Start() Point {
	if len(c.spans) == 0 {
		return c.start
	}
	return c.spans[0].seg.Start()
}

// End returns the last point of the curve.
func (c *Curve) End() Point {
	if len(c.spans) == 0 {
		return c.start
	}
	return c.spans[len(c.spans)-1].seg.End()
}

// PointAt returns the point at arc length s from the start. s is clamped to
// [0, Length()].
func (c *Curve) PointAt(s float64) Point {
	if len(c.spans) == 0 {
		return c.start
	}
	if s <= 0 {
		return c.Start()
	}
	if s >= c.length {
		return c.End()
	}
	i := sort.Search(len(c.spans), func(i int) bool {
		return c.spans[i].offset+c.spans[i].length() >= s
	})
	if i == len(c.spans) {
		i--
	}
	sp := c.spans[i]
	return sp.pointAt(s - sp.offset)
}

// Polyline returns n points evenly spaced by arc length, first and last
// included.
func (c *Curve) Polyline(n int) []Point {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []Point{c.Start()}
	}
	out := make([]Point, n)
	for i := range out {
		out[i] = c.PointAt(float64(i) / float64(n-1) * c.length)
	}
	return out
}
