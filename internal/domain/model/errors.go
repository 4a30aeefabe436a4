package model

import "errors"

// ErrUnknownEventKind reports an event type the capture layer does not know.
var ErrUnknownEventKind = errors.New("unknown pointer event kind")
