package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrUnknownActivity = errors.New("unknown activity")
	ErrNotTracing      = errors.New("activity is not a tracing page")
	ErrNotMatching     = errors.New("activity is not a matching page")
	ErrNotSizes        = errors.New("activity is not a sizes page")
	ErrCheckFailed     = errors.New("tracing check failed")
)
