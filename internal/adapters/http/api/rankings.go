package api

import (
	"fmt"
	"net/http"

	"github.com/okian/showcase/internal/domain/model"
	"github.com/okian/showcase/internal/domain/types"
)

// handleTopPosts serves the most liked posts, optionally for one category.
func (s *Server) handleTopPosts(w http.ResponseWriter, r *http.Request) {
	var category *model.Category
	if raw := r.URL.Query().Get("category"); raw != "" {
		c, err := model.ParseCategory(raw)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("%w: %w", ErrBadRequest, err))
			return
		}
		category = &c
	}

	posts, err := s.deps.Rankings.TopPosts(r.Context(), category)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]types.PostSummary, len(posts))
	for i, p := range posts {
		out[i] = types.SummarizePost(p)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleRankings(w http.ResponseWriter, r *http.Request) {
	aggs, err := s.deps.Aggregates.UserRankings(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if aggs == nil {
		aggs = []types.UserAggregate{}
	}
	writeJSON(w, http.StatusOK, aggs)
}

func (s *Server) handleTopRanked(w http.ResponseWriter, r *http.Request) {
	rankings, err := s.deps.Rankings.TopRanked(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rankings)
}
