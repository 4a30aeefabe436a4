package capture

import "github.com/okian/workbook/internal/domain/geom"

// Path is an append-only buffer of drawn points owned by one session.
type Path struct {
	points []geom.Point
}

// Append adds a point at the end of the path.
func (p *Path) Append(pt geom.Point) {
	p.points = append(p.points, pt)
}

// Reset empties the path.
func (p *Path) Reset() {
	p.points = nil
}

// Len returns the number of points.
func (p *Path) Len() int {
	return len(p.points)
}

// Points returns a copy of the points in capture order.
func (p *Path) Points() []geom.Point {
	out := make([]geom.Point, len(p.points))
	copy(out, p.points)
	return out
}
