package geom

import (
	"fmt"
	"strings"

	"github.com/tdewolff/parse/v2/strconv"
)

// ParsePath builds a Curve from an SVG path-data string. Supported commands
// are M L H V C S Q T Z in absolute and relative form; elliptical arcs are
// rejected with ErrUnsupportedCommand.
func ParsePath(d string) (*Curve, error) {
	if strings.TrimSpace(d) == "" {
		return nil, ErrEmptyPath
	}
	p := &pathParser{b: []byte(d)}
	if err := p.parse(); err != nil {
		return nil, err
	}
	return NewCurve(p.first, p.segs...), nil
}

// MustParsePath is like ParsePath but panics on error. It is meant for
// geometry baked into activity definitions.
func MustParsePath(d string) *Curve {
	c, err := ParsePath(d)
	if err != nil {
		panic(err)
	}
	return c
}

type pathParser struct {
	b   []byte
	pos int

	first    Point
	cur      Point
	subStart Point
	// reflected control point for S/T; valid only when the previous command
	// was of the same family.
	lastCtrl Point
	lastCmd  byte

	segs []Segment
}

func isSep(c byte) bool {
	return c == ' ' || c == ',' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

func (p *pathParser) skipSep() {
	for p.pos < len(p.b) && isSep(p.b[p.pos]) {
		p.pos++
	}
}

func (p *pathParser) hasNumber() bool {
	p.skipSep()
	if p.pos >= len(p.b) {
		return false
	}
	c := p.b[p.pos]
	return (c >= '0' && c <= '9') || c == '-' || c == '+' || c == '.'
}

func (p *pathParser) number() (float64, error) {
	p.skipSep()
	if p.pos >= len(p.b) {
		return 0, fmt.Errorf("%w: unexpected end at offset %d", ErrBadNumber, p.pos)
	}
	v, n := strconv.ParseFloat(p.b[p.pos:])
	if n == 0 {
		return 0, fmt.Errorf("%w: at offset %d", ErrBadNumber, p.pos)
	}
	p.pos += n
	return v, nil
}

func (p *pathParser) point(rel bool) (Point, error) {
	x, err := p.number()
	if err != nil {
		return Point{}, err
	}
	y, err := p.number()
	if err != nil {
		return Point{}, err
	}
	if rel {
		return Point{X: p.cur.X + x, Y: p.cur.Y + y}, nil
	}
	return Point{X: x, Y: y}, nil
}

func (p *pathParser) parse() error {
	p.skipSep()
	if p.pos >= len(p.b) || (p.b[p.pos] != 'M' && p.b[p.pos] != 'm') {
		return ErrMissingMoveTo
	}
	started := false
	for {
		p.skipSep()
		if p.pos >= len(p.b) {
			return nil
		}
		cmd := p.b[p.pos]
		p.pos++
		if err := p.command(cmd, &started); err != nil {
			return err
		}
	}
}

// command consumes one command letter and all of its argument groups.
func (p *pathParser) command(cmd byte, started *bool) error {
	rel := cmd >= 'a' && cmd <= 'z'
	upper := cmd &^ 0x20
	switch upper {
	case 'Z':
		if p.cur != p.subStart {
			p.segs = append(p.segs, Line{P0: p.cur, P1: p.subStart})
		}
		p.cur = p.subStart
		p.lastCmd = 'Z'
		return nil
	case 'M', 'L', 'H', 'V', 'C', 'S', 'Q', 'T':
	default:
		return fmt.Errorf("%w: %q at offset %d", ErrUnsupportedCommand, cmd, p.pos-1)
	}

	for first := true; first || p.hasNumber(); first = false {
		var err error
		switch upper {
		case 'M':
			err = p.moveTo(rel, first, started)
		case 'L':
			err = p.lineTo(rel)
		case 'H', 'V':
			err = p.axisLineTo(upper, rel)
		case 'C':
			err = p.cubicTo(rel, false)
		case 'S':
			err = p.cubicTo(rel, true)
		case 'Q':
			err = p.quadTo(rel, false)
		case 'T':
			err = p.quadTo(rel, true)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (p *pathParser) moveTo(rel, first bool, started *bool) error {
	// Coordinate pairs after the first one of a moveto are implicit linetos.
	if !first {
		return p.lineTo(rel)
	}
	// A relative moveto at the very start is absolute.
	pt, err := p.point(rel && *started)
	if err != nil {
		return err
	}
	if !*started {
		p.first = pt
		*started = true
	}
	p.cur = pt
	p.subStart = pt
	p.lastCmd = 'M'
	return nil
}

func (p *pathParser) lineTo(rel bool) error {
	pt, err := p.point(rel)
	if err != nil {
		return err
	}
	p.segs = append(p.segs, Line{P0: p.cur, P1: pt})
	p.cur = pt
	p.lastCmd = 'L'
	return nil
}

func (p *pathParser) axisLineTo(axis byte, rel bool) error {
	v, err := p.number()
	if err != nil {
		return err
	}
	pt := p.cur
	switch {
	case axis == 'H' && rel:
		pt.X += v
	case axis == 'H':
		pt.X = v
	case rel:
		pt.Y += v
	default:
		pt.Y = v
	}
	p.segs = append(p.segs, Line{P0: p.cur, P1: pt})
	p.cur = pt
	p.lastCmd = 'L'
	return nil
}

func (p *pathParser) reflected(family byte) Point {
	if p.lastCmd == family {
		return p.cur.Add(p.cur.Sub(p.lastCtrl))
	}
	return p.cur
}

func (p *pathParser) cubicTo(rel, smooth bool) error {
	var c1 Point
	if smooth {
		c1 = p.reflected('C')
	} else {
		var err error
		if c1, err = p.point(rel); err != nil {
			return err
		}
	}
	c2, err := p.point(rel)
	if err != nil {
		return err
	}
	end, err := p.point(rel)
	if err != nil {
		return err
	}
	p.segs = append(p.segs, CubicBez{P0: p.cur, P1: c1, P2: c2, P3: end})
	p.cur = end
	p.lastCtrl = c2
	p.lastCmd = 'C'
	return nil
}

func (p *pathParser) quadTo(rel, smooth bool) error {
	var c Point
	if smooth {
		c = p.reflected('Q')
	} else {
		var err error
		if c, err = p.point(rel); err != nil {
			return err
		}
	}
	end, err := p.point(rel)
	if err != nil {
		return err
	}
	p.segs = append(p.segs, QuadBez{P0: p.cur, P1: c, P2: end})
	p.cur = end
	p.lastCtrl = c
	p.lastCmd = 'Q'
	return nil
}
