// Package api exposes the judge evaluation and ranking operations over HTTP.
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/okian/showcase/internal/auth"
	"github.com/okian/showcase/internal/domain/evaluation"
	"github.com/okian/showcase/internal/domain/model"
	"github.com/okian/showcase/internal/domain/types"
	"github.com/okian/showcase/pkg/logger"
)

const defaultRequestTimeout = 5 * time.Second

// Evaluations is the judge evaluation workflow.
type Evaluations interface {
	Submit(ctx context.Context, sub evaluation.Submission) (model.Evaluation, error)
	ListByJudge(ctx context.Context, judgeID string, p evaluation.Page) ([]types.EvaluationView, error)
}

// Rankings serves the blended leaderboards and the top-posts view.
type Rankings interface {
	TopRanked(ctx context.Context) ([]types.CategoryRanking, error)
	TopPosts(ctx context.Context, category *model.Category) ([]model.Post, error)
}

// Aggregates serves per-user judge score aggregates.
type Aggregates interface {
	UserRankings(ctx context.Context) ([]types.UserAggregate, error)
}

// Authenticator turns a bearer token into a principal.
type Authenticator interface {
	Validate(token string) (auth.Principal, error)
}

// Dependencies bundles what the handlers call into.
type Dependencies struct {
	Evaluations Evaluations
	Rankings    Rankings
	Aggregates  Aggregates
	Auth        Authenticator
	Stats       StatsProvider
	Ready       ReadinessChecker
}

// Server wires HTTP routes for the business API.
type Server struct {
	deps           Dependencies
	health         *HealthHandler
	stats          *StatsHandler
	log            logger.Logger
	requestTimeout time.Duration
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRequestTimeout bounds the time each API request may take.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.requestTimeout = d
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		deps:           deps,
		requestTimeout: defaultRequestTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("api")
	}
	s.health = NewHealthHandler(deps.Ready)
	s.stats = NewStatsHandler(deps.Stats)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.health.HandleHealth, "healthz"))
	mux.HandleFunc("GET /readyz", MetricsMiddleware(s.health.HandleReady, "readyz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.stats.HandleStats, "stats"))

	judge := func(h http.HandlerFunc) http.HandlerFunc { return s.authenticate(requireJudge(h)) }
	member := s.authenticate

	s.route(mux, "POST /judge/evaluate", "evaluate", judge(s.handleEvaluate))
	s.route(mux, "GET /judge/evaluations", "evaluations", judge(s.handleListEvaluations))
	s.route(mux, "GET /judge/top-posts", "top_posts", judge(s.handleTopPosts))
	s.route(mux, "GET /judge/rankings", "rankings", member(s.handleRankings))
	s.route(mux, "GET /judge/top-ranked", "top_ranked", member(s.handleTopRanked))
}

func (s *Server) route(mux *http.ServeMux, pattern, endpoint string, h http.HandlerFunc) {
	mux.HandleFunc(pattern, MetricsMiddleware(s.logRequests(s.withTimeout(h), endpoint), endpoint))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorCode(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// writeError translates err into a status and body. Internal errors are
// logged and answered with a generic message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := statusForError(err)
	if status == http.StatusInternalServerError {
		s.log.Error(r.Context(), "request failed",
			logger.String("method", r.Method),
			logger.String("path", r.URL.Path),
			logger.Error(err))
		writeErrorCode(w, status, code, "internal server error")
		return
	}
	writeErrorCode(w, status, code, err.Error())
}
