package catalog

import "errors"

var (
	// ErrInvalidCatalog reports an inconsistent page list.
	ErrInvalidCatalog = errors.New("invalid catalog")
	// ErrNoAnimals reports a sizes page with an empty big or small list.
	ErrNoAnimals = errors.New("sizes page has no animals")
	// ErrUnknownChoice reports a choice other than besar or kecil.
	ErrUnknownChoice = errors.New("unknown choice")
)
