package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/okian/showcase/internal/auth"
	"github.com/okian/showcase/internal/domain/evaluation"
	"github.com/okian/showcase/internal/domain/model"
)

const maxBodyBytes = 64 << 10

var validate = validator.New()

// evaluateRequest is the body of POST /judge/evaluate. Score is a pointer so
// a missing score can be told apart from zero.
type evaluateRequest struct {
	PostID   string   `json:"postId"`
	Score    *float64 `json:"score"`
	Feedback string   `json:"feedback"`
}

type evaluationResponse struct {
	ID        string    `json:"id"`
	PostID    string    `json:"postId"`
	JudgeID   string    `json:"judgeId"`
	Score     float64   `json:"score"`
	Feedback  string    `json:"feedback,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())

	var req evaluateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		writeErrorCode(w, http.StatusBadRequest, codeBadRequest, "invalid request body")
		return
	}

	ev, err := s.deps.Evaluations.Submit(r.Context(), evaluation.Submission{
		JudgeID:   p.ID,
		PostID:    req.PostID,
		Score:     req.Score,
		Feedback:  req.Feedback,
		JudgeRole: p.Role,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEvaluationResponse(ev))
}

func toEvaluationResponse(ev model.Evaluation) evaluationResponse {
	return evaluationResponse{
		ID:        ev.ID,
		PostID:    ev.PostID,
		JudgeID:   ev.JudgeID,
		Score:     ev.Score,
		Feedback:  ev.Feedback,
		CreatedAt: ev.CreatedAt,
	}
}

type pageQuery struct {
	Limit  int `validate:"gte=0"`
	Offset int `validate:"gte=0"`
}

func parsePage(r *http.Request) (evaluation.Page, error) {
	var q pageQuery
	for name, dst := range map[string]*int{"limit": &q.Limit, "offset": &q.Offset} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return evaluation.Page{}, fmt.Errorf("%w: %s must be an integer", ErrBadRequest, name)
		}
		*dst = n
	}
	if err := validate.Struct(q); err != nil {
		return evaluation.Page{}, fmt.Errorf("%w: limit and offset must not be negative", ErrBadRequest)
	}
	return evaluation.Page{Limit: q.Limit, Offset: q.Offset}, nil
}

func (s *Server) handleListEvaluations(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())

	page, err := parsePage(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	views, err := s.deps.Evaluations.ListByJudge(r.Context(), p.ID, page)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, views)
}
