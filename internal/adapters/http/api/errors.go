package api

import (
	"errors"
	"net/http"

	"github.com/okian/showcase/internal/domain/evaluation"
	"github.com/okian/showcase/internal/domain/ranking"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("judge access required")
)

// Error codes carried in error bodies.
const (
	codeBadRequest   = "bad_request"
	codeUnauthorized = "unauthorized"
	codeForbidden    = "forbidden"
	codeNotFound     = "not_found"
	codeConflict     = "conflict"
	codeInternal     = "internal_error"
)

// statusForError maps domain error kinds to an HTTP status and error code.
func statusForError(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, evaluation.ErrInvalidInput),
		errors.Is(err, ranking.ErrInvalidInput):
		return http.StatusBadRequest, codeBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, codeUnauthorized
	case errors.Is(err, ErrForbidden), errors.Is(err, evaluation.ErrForbidden):
		return http.StatusForbidden, codeForbidden
	case errors.Is(err, evaluation.ErrNotFound):
		return http.StatusNotFound, codeNotFound
	case errors.Is(err, evaluation.ErrConflict):
		return http.StatusConflict, codeConflict
	default:
		return http.StatusInternalServerError, codeInternal
	}
}
