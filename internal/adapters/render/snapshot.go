// Package render rasterizes a drawing session, the guide curve under the
// child's ink, into a PNG.
package render

import (
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	"golang.org/x/image/vector"

	"github.com/okian/workbook/internal/domain/geom"
)

// Defaults match the tracing page: a light gray guide under blue ink, both 12
// units wide with round joins.
var (
	DefaultBackground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	DefaultGuide      = color.RGBA{R: 0xd0, G: 0xd0, B: 0xd0, A: 0xff}
	DefaultInk        = color.RGBA{R: 0x1e, G: 0x88, B: 0xe5, A: 0xff}
)

const (
	DefaultStrokeWidth = 12.0
	// MaxDimension bounds the output image on either axis, in pixels.
	MaxDimension = 4096

	capSegments = 16
)

// Renderer draws snapshots. The zero value is not usable; use New.
type Renderer struct {
	scale       float64
	strokeWidth float64
	background  color.Color
	guide       color.Color
	ink         color.Color
}

// New returns a renderer.
func New(opts ...Option) *Renderer {
	r := &Renderer{
		scale:       1,
		strokeWidth: DefaultStrokeWidth,
		background:  DefaultBackground,
		guide:       DefaultGuide,
		ink:         DefaultInk,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render draws guide then drawn onto a width x height surface given in local
// units. Consecutive drawn points are joined, as on the page.
func (r *Renderer) Render(width, height float64, guide, drawn []geom.Point) (*image.RGBA, error) {
	w := int(math.Ceil(width * r.scale))
	h := int(math.Ceil(height * r.scale))
	if w <= 0 || h <= 0 || math.IsNaN(width) || math.IsNaN(height) {
		return nil, ErrEmptyCanvas
	}
	if w > MaxDimension || h > MaxDimension {
		return nil, ErrCanvasTooLarge
	}

	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(r.background), image.Point{}, draw.Src)
	r.stroke(img, guide, r.guide)
	r.stroke(img, drawn, r.ink)
	return img, nil
}

// Snapshot renders and PNG-encodes to out.
func (r *Renderer) Snapshot(out io.Writer, width, height float64, guide, drawn []geom.Point) error {
	img, err := r.Render(width, height, guide, drawn)
	if err != nil {
		return err
	}
	return png.Encode(out, img)
}

func (r *Renderer) stroke(dst draw.Image, pts []geom.Point, c color.Color) {
	if len(pts) == 0 {
		return
	}
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	half := r.strokeWidth * r.scale / 2

	scaled := make([]geom.Point, len(pts))
	for i, p := range pts {
		scaled[i] = p.Mul(r.scale)
	}
	// Ink further than half a stroke outside the canvas cannot show, and
	// rasterizing it costs time proportional to its length.
	clip := geom.NewRect(geom.Pt(0, 0), geom.Pt(float64(b.Dx()), float64(b.Dy()))).Outset(half)
	for i, p := range scaled {
		if clip.Contains(p) {
			disc(z, p, half)
		}
		if i == 0 {
			continue
		}
		if a, c, ok := clip.ClipSegment(scaled[i-1], p); ok {
			quad(z, a, c, half)
		}
	}
	z.Draw(dst, b, image.NewUniform(c), image.Point{})
}

// quad adds the rectangle covering segment a-b at the given half width. The
// winding matches disc so overlapping pieces add up instead of cancelling.
func quad(z *vector.Rasterizer, a, b geom.Point, half float64) {
	d := b.Sub(a)
	l := math.Hypot(d.X, d.Y)
	if l == 0 {
		return
	}
	n := geom.Pt(-d.Y/l*half, d.X/l*half)
	moveTo(z, a.Add(n))
	lineTo(z, b.Add(n))
	lineTo(z, b.Sub(n))
	lineTo(z, a.Sub(n))
	z.ClosePath()
}

// disc adds a polygonal round cap centred on p.
func disc(z *vector.Rasterizer, p geom.Point, radius float64) {
	for i := 0; i <= capSegments; i++ {
		a := -2 * math.Pi * float64(i) / capSegments
		q := geom.Pt(p.X+radius*math.Cos(a), p.Y+radius*math.Sin(a))
		if i == 0 {
			moveTo(z, q)
			continue
		}
		lineTo(z, q)
	}
	z.ClosePath()
}

func moveTo(z *vector.Rasterizer, p geom.Point) { z.MoveTo(float32(p.X), float32(p.Y)) }

func lineTo(z *vector.Rasterizer, p geom.Point) { z.LineTo(float32(p.X), float32(p.Y)) }
