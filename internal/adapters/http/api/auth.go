package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/okian/showcase/internal/auth"
)

// authenticate requires a valid bearer token and stores the caller's
// principal in the request context.
func (s *Server) authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			writeErrorCode(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}
		p, err := s.deps.Auth.Validate(strings.TrimSpace(token))
		if err != nil {
			msg := "invalid token"
			if errors.Is(err, auth.ErrExpiredToken) {
				msg = "token has expired"
			}
			writeErrorCode(w, http.StatusUnauthorized, codeUnauthorized, msg)
			return
		}
		if info := requestInfoFrom(r.Context()); info != nil {
			info.principal = p.ID
		}
		next(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
	}
}

// requireJudge lets only judge roles through. It must run after authenticate.
func requireJudge(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, ok := auth.FromContext(r.Context())
		if !ok {
			writeErrorCode(w, http.StatusUnauthorized, codeUnauthorized, "missing bearer token")
			return
		}
		if !p.Role.IsJudge() {
			writeErrorCode(w, http.StatusForbidden, codeForbidden, "Judge access required")
			return
		}
		next(w, r)
	}
}
