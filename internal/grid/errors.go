package grid

import "errors"

var (
	// ErrKeyNotFound is returned when a requested variable is absent from a dataset.
	ErrKeyNotFound = errors.New("variable not found")

	// ErrAmbiguousDimension is returned when two canonical axes would map to
	// the same actual axis name during dimension normalization.
	ErrAmbiguousDimension = errors.New("ambiguous dimension mapping")

	// ErrInvalidEnsembleMethod is returned for an unknown ensemble reduction policy.
	ErrInvalidEnsembleMethod = errors.New("invalid ensemble method")
)
