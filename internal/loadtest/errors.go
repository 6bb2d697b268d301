package loadtest

import "errors"

var (
	// ErrInvalidConfig is returned when a run is configured inconsistently.
	ErrInvalidConfig = errors.New("invalid load test config")

	// ErrMismatch is returned when server responses contradict the run.
	ErrMismatch = errors.New("verification failed")

	// ErrUnexpectedStatus is returned for a response status the caller cannot handle.
	ErrUnexpectedStatus = errors.New("unexpected status")
)
