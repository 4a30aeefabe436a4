package geom

import "errors"

// Sentinel kinds for path-data errors.
var (
	ErrEmptyPath          = errors.New("empty path data")
	ErrMissingMoveTo      = errors.New("path data must start with a moveto")
	ErrUnsupportedCommand = errors.New("unsupported path command")
	ErrBadNumber          = errors.New("malformed number in path data")
)
