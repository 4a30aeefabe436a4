// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"

	"github.com/okian/workbook/internal/domain/geom"
)

// EventKind names a pointer/touch event type.
type EventKind string

// Pointer event kinds recognised by the capture state machine.
const (
	KindPress   EventKind = "press"
	KindMove    EventKind = "move"
	KindRelease EventKind = "release"
	KindLeave   EventKind = "leave"
)

// ParseKind normalizes a client-supplied event type. DOM names such as
// "pointerdown" and "touchmove" are accepted as aliases.
func ParseKind(s string) (EventKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "press", "down", "pointerdown", "touchstart", "mousedown":
		return KindPress, nil
	case "move", "pointermove", "touchmove", "mousemove":
		return KindMove, nil
	case "release", "up", "pointerup", "touchend", "mouseup":
		return KindRelease, nil
	case "leave", "pointerleave", "touchcancel", "mouseleave":
		return KindLeave, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownEventKind, s)
	}
}

// SurfaceRect is the drawing surface's on-screen bounding box as reported by
// the client at capture time.
type SurfaceRect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width,omitempty"`
	Height float64 `json:"height,omitempty"`
}

// Origin returns the surface's top-left corner. A nil surface is missing.
func (r *SurfaceRect) Origin() (geom.Point, bool) {
	if r == nil {
		return geom.Point{}, false
	}
	return geom.Pt(r.Left, r.Top), true
}

// PointerEvent is a single press/move/release/leave carrying device
// coordinates. Surface, when set, overrides the batch surface.
type PointerEvent struct {
	Kind    EventKind
	X, Y    float64
	Surface *SurfaceRect
}

// Device returns the raw device coordinates.
func (e PointerEvent) Device() geom.Point {
	return geom.Pt(e.X, e.Y)
}

// Batch is an ordered group of pointer events submitted together. ID, when
// non-empty, makes resubmission idempotent.
type Batch struct {
	ID      string
	Surface *SurfaceRect
	Events  []PointerEvent
}

// SurfaceFor returns the surface to use for e within the batch.
func (b Batch) SurfaceFor(e PointerEvent) *SurfaceRect {
	if e.Surface != nil {
		return e.Surface
	}
	return b.Surface
}
