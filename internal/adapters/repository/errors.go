package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrPostNotFound = errors.New("post not found")
	ErrDuplicate    = errors.New("evaluation already exists for post and judge")
	ErrInvalidPost  = errors.New("invalid post")
)
