package render

import "image/color"

// Option configures a Renderer.
type Option func(*Renderer)

// WithScale multiplies output pixels per local unit.
func WithScale(scale float64) Option {
	return func(r *Renderer) {
		if scale > 0 {
			r.scale = scale
		}
	}
}

// WithStrokeWidth sets the guide and ink width in local units.
func WithStrokeWidth(w float64) Option {
	return func(r *Renderer) {
		if w > 0 {
			r.strokeWidth = w
		}
	}
}

// WithColors overrides the palette. Nil colors keep the default.
func WithColors(background, guide, ink color.Color) Option {
	return func(r *Renderer) {
		if background != nil {
			r.background = background
		}
		if guide != nil {
			r.guide = guide
		}
		if ink != nil {
			r.ink = ink
		}
	}
}
