package scoring

import "errors"

// Sentinel kinds for scoring errors.
var (
	ErrMissingCurve     = errors.New("reference curve not available")
	ErrInvalidSamples   = errors.New("samples must be at least 2")
	ErrInvalidTolerance = errors.New("tolerance radius must not be negative")
)
