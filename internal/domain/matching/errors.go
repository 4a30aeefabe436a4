package matching

import "errors"

// Sentinel kinds for matching errors.
var (
	ErrUnknownID   = errors.New("unknown pair id")
	ErrUnknownRule = errors.New("unknown matching rule")
)
