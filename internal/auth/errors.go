package auth

import "errors"

// Sentinel kinds for token errors.
var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
	ErrEmptySecret  = errors.New("jwt secret cannot be empty")
	ErrEmptyUserID  = errors.New("user id cannot be empty")
)
