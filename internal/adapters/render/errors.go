package render

import "errors"

// Sentinel kinds for render errors.
var (
	ErrEmptyCanvas    = errors.New("snapshot canvas has no area")
	ErrCanvasTooLarge = errors.New("snapshot canvas too large")
)
