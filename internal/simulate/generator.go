package simulate

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"

	"github.com/okian/workbook/internal/domain/geom"
)

// Mode is a way of drawing on the tracing page.
type Mode string

// Drawing modes. Each has a fixed star expectation under the default
// tolerance radius.
const (
	// ModeTrace follows the whole guide with a small hand tremor.
	ModeTrace Mode = "trace"
	// ModeHalf follows the first half of the guide and lifts the pen.
	ModeHalf Mode = "half"
	// ModeOffPath draws a line along the bottom of the page.
	ModeOffPath Mode = "offpath"
	// ModeScribble sweeps rows across the whole page. Coverage ignores
	// ink outside the tolerance, so this earns full marks.
	ModeScribble Mode = "scribble"
	// ModeEmpty presses check without drawing.
	ModeEmpty Mode = "empty"
)

// AllModes lists every drawing mode.
var AllModes = []Mode{ModeTrace, ModeHalf, ModeOffPath, ModeScribble, ModeEmpty}

// Star expectations per mode.
var expectedStars = map[Mode]int{
	ModeTrace:    3,
	ModeHalf:     2,
	ModeOffPath:  0,
	ModeScribble: 3,
	ModeEmpty:    0,
}

const (
	tremor         = 4.0
	strokeDensity  = 160
	scribbleRowGap = 40.0
	scribbleStep   = 10.0
	offPathMargin  = 10.0
	maxOriginShift = 400
	randomDivisor  = 1_000_000
)

// ParseModes parses a comma separated mode list.
func ParseModes(s string) ([]Mode, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []Mode
	for _, part := range strings.Split(s, ",") {
		m := Mode(strings.ToLower(strings.TrimSpace(part)))
		if _, ok := expectedStars[m]; !ok {
			return nil, fmt.Errorf("unknown mode %q", part)
		}
		out = append(out, m)
	}
	return out, nil
}

// randomFloat returns a value in [0, 1) using crypto/rand.
func randomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomDivisor))
	return float64(n.Int64()) / randomDivisor
}

func jitter(p geom.Point, amount float64) geom.Point {
	return geom.Pt(p.X+(randomFloat()*2-1)*amount, p.Y+(randomFloat()*2-1)*amount)
}

// Stroke is one simulated drawing in surface coordinates together with the
// surface's on-screen origin.
type Stroke struct {
	Mode   Mode
	Origin geom.Point
	Points []geom.Point
}

// NewStroke draws guide in mode on a page of the given size. The surface
// origin is random so the server has to undo it.
func NewStroke(mode Mode, guide *geom.Curve, width, height float64) Stroke {
	s := Stroke{
		Mode:   mode,
		Origin: geom.Pt(randomFloat()*maxOriginShift, randomFloat()*maxOriginShift),
	}
	switch mode {
	case ModeTrace:
		s.Points = along(guide, guide.Length(), strokeDensity)
	case ModeHalf:
		s.Points = along(guide, guide.Length()/2, strokeDensity/2)
	case ModeOffPath:
		y := height - offPathMargin
		for x := offPathMargin; x <= width-offPathMargin; x += scribbleStep {
			s.Points = append(s.Points, geom.Pt(x, y))
		}
	case ModeScribble:
		row := 0
		for y := offPathMargin; y <= height; y += scribbleRowGap {
			for i := 0.0; i <= width; i += scribbleStep {
				x := i
				if row%2 == 1 {
					x = width - i
				}
				s.Points = append(s.Points, geom.Pt(x, y))
			}
			row++
		}
	case ModeEmpty:
	}
	return s
}

func along(guide *geom.Curve, upTo float64, n int) []geom.Point {
	pts := make([]geom.Point, 0, n)
	for i := range n {
		pts = append(pts, jitter(guide.PointAt(upTo*float64(i)/float64(n-1)), tremor))
	}
	return pts
}

// Events returns the stroke as device-coordinate pointer events: a press,
// moves, and a release.
func (s Stroke) Events() []Event {
	if len(s.Points) == 0 {
		return nil
	}
	evs := make([]Event, 0, len(s.Points)+1)
	for i, p := range s.Points {
		typ := "move"
		if i == 0 {
			typ = "press"
		}
		d := p.Add(s.Origin)
		evs = append(evs, Event{Type: typ, X: d.X, Y: d.Y})
	}
	last := s.Points[len(s.Points)-1].Add(s.Origin)
	return append(evs, Event{Type: "release", X: last.X, Y: last.Y})
}

// Expect reports whether stars is what mode should earn.
func Expect(mode Mode, stars int) bool {
	want, ok := expectedStars[mode]
	return ok && want == stars
}
