package evaluation

import "errors"

// Sentinel kinds for evaluation errors. These allow errors.Is from callers.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("post not found")
	ErrConflict     = errors.New("already evaluated")
	ErrForbidden    = errors.New("forbidden")
)
