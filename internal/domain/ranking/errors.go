package ranking

import "errors"

// Sentinel kinds for ranking errors.
var (
	ErrInvalidInput = errors.New("invalid input")
)
