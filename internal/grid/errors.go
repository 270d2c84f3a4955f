package grid

import "errors"

// Errors returned by grid construction and grid operations. Every error from
// this package wraps exactly one of them.
var (
	// ErrMissingKey is returned when a descriptor lacks a required key.
	ErrMissingKey = errors.New("missing key")
	// ErrInvalidValue is returned for unsupported or inconsistent values,
	// including data whose shape does not match the grid.
	ErrInvalidValue = errors.New("invalid value")
	// ErrInvalidType is returned when a descriptor source has an unsupported type.
	ErrInvalidType = errors.New("invalid type")
)
