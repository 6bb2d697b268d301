// Package evaluation implements the judge evaluation workflow: validating a
// score, persisting at most one evaluation per judge and post, and notifying
// the post owner.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/showcase/internal/adapters/repository"
	"github.com/okian/showcase/internal/domain/model"
	"github.com/okian/showcase/internal/domain/scoring"
	"github.com/okian/showcase/internal/domain/types"
	"github.com/okian/showcase/pkg/logger"
	"github.com/okian/showcase/pkg/metrics"
)

var validate = validator.New()

// Notifier delivers notifications. Implementations must not block for long;
// the service ignores delivery outcomes beyond logging them.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, model.Notification) error { return nil }

// Submission is a judge's request to score a post. A nil Score means the
// score was missing or not a number.
type Submission struct {
	JudgeID   string   `validate:"required"`
	PostID    string   `validate:"required"`
	Score     *float64 `validate:"required"`
	Feedback  string
	JudgeRole model.Role
}

// Page selects a window of a list. Zero Limit means the default.
type Page struct {
	Limit  int
	Offset int
}

// Service implements the evaluation workflow.
type Service struct {
	posts       repository.PostStore
	evaluations repository.EvaluationStore
	notifier    Notifier
	policy      *scoring.Policy

	categoryScope bool
	pageLimit     int
	maxPageLimit  int

	now    func() time.Time
	newID  func() string
	log    logger.Logger
	tracer trace.Tracer
}

// NewService creates an evaluation service over the given stores.
func NewService(posts repository.PostStore, evaluations repository.EvaluationStore, opts ...Option) *Service {
	s := &Service{
		posts:        posts,
		evaluations:  evaluations,
		notifier:     nopNotifier{},
		policy:       scoring.NewPolicy(),
		pageLimit:    DefaultPageLimit,
		maxPageLimit: MaxPageLimit,
		now:          time.Now,
		newID:        uuid.NewString,
		tracer:       otel.Tracer("showcase/evaluation"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Get().Named("evaluation")
	}
	return s
}

// Submit validates and stores a judge's evaluation, then notifies the post
// owner. Errors wrap ErrInvalidInput, ErrNotFound, ErrForbidden or
// ErrConflict; anything else is a store failure.
func (s *Service) Submit(ctx context.Context, sub Submission) (ev model.Evaluation, err error) {
	ctx, span := s.tracer.Start(ctx, "showcase.evaluation.submit",
		trace.WithAttributes(
			attribute.String("post.id", sub.PostID),
			attribute.String("judge.id", sub.JudgeID),
		))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.RecordEvaluationRejected(rejectReason(err))
		} else {
			metrics.RecordEvaluationSubmitted()
		}
		span.End()
	}()

	if err := s.validate(sub); err != nil {
		return model.Evaluation{}, err
	}

	post, err := s.posts.Get(ctx, sub.PostID)
	if err != nil {
		if errors.Is(err, repository.ErrPostNotFound) {
			return model.Evaluation{}, fmt.Errorf("%w: %s", ErrNotFound, sub.PostID)
		}
		return model.Evaluation{}, fmt.Errorf("load post %s: %w", sub.PostID, err)
	}

	if s.categoryScope {
		if c, ok := sub.JudgeRole.JudgeCategory(); ok && c != post.Category {
			return model.Evaluation{}, fmt.Errorf("%w: %s judges cannot evaluate %s posts", ErrForbidden, c, post.Category)
		}
	}

	exists, err := s.evaluations.Exists(ctx, sub.PostID, sub.JudgeID)
	if err != nil {
		return model.Evaluation{}, fmt.Errorf("check evaluation: %w", err)
	}
	if exists {
		return model.Evaluation{}, fmt.Errorf("%w: judge %s already evaluated post %s", ErrConflict, sub.JudgeID, sub.PostID)
	}

	ev = model.Evaluation{
		ID:        s.newID(),
		PostID:    sub.PostID,
		JudgeID:   sub.JudgeID,
		Score:     *sub.Score,
		Feedback:  sub.Feedback,
		CreatedAt: s.now().UTC(),
	}
	if err := s.evaluations.Insert(ctx, ev); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return model.Evaluation{}, fmt.Errorf("%w: judge %s already evaluated post %s", ErrConflict, sub.JudgeID, sub.PostID)
		}
		return model.Evaluation{}, fmt.Errorf("store evaluation: %w", err)
	}

	s.notifyOwner(ctx, post, ev)
	return ev, nil
}

func (s *Service) validate(sub Submission) error {
	if err := validate.Struct(sub); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			switch verrs[0].Field() {
			case "PostID":
				return fmt.Errorf("%w: post id is required", ErrInvalidInput)
			case "Score":
				return fmt.Errorf("%w: score is required", ErrInvalidInput)
			case "JudgeID":
				return fmt.Errorf("%w: judge id is required", ErrInvalidInput)
			}
		}
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := s.policy.ValidateScore(*sub.Score); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := validate.Var(sub.Feedback, fmt.Sprintf("max=%d", scoring.MaxFeedbackLength)); err != nil {
		return fmt.Errorf("%w: feedback must be at most %d characters", ErrInvalidInput, scoring.MaxFeedbackLength)
	}
	return nil
}

// notifyOwner hands a notification to the notifier without letting its
// outcome affect the submission.
func (s *Service) notifyOwner(ctx context.Context, post model.Post, ev model.Evaluation) {
	if post.OwnerID == "" || post.OwnerID == ev.JudgeID {
		return
	}
	n := model.Notification{
		ID:           s.newID(),
		RecipientID:  post.OwnerID,
		ActorID:      ev.JudgeID,
		Type:         model.NotificationTypeJudge,
		Message:      model.JudgeNotificationMessage,
		RelatedID:    post.ID,
		EvaluationID: ev.ID,
		CreatedAt:    ev.CreatedAt,
	}
	if err := s.notifier.Notify(context.WithoutCancel(ctx), n); err != nil {
		metrics.RecordErrorByComponent("evaluation", "notify_failed")
		s.log.Warn(ctx, "owner notification failed",
			logger.String("post_id", post.ID),
			logger.String("recipient_id", post.OwnerID),
			logger.Error(err))
	}
}

// ListByJudge returns the judge's evaluations newest first, each joined with
// a summary of the evaluated post.
func (s *Service) ListByJudge(ctx context.Context, judgeID string, p Page) ([]types.EvaluationView, error) {
	ctx, span := s.tracer.Start(ctx, "showcase.evaluation.list_by_judge",
		trace.WithAttributes(attribute.String("judge.id", judgeID)))
	defer span.End()

	if judgeID == "" {
		return nil, fmt.Errorf("%w: judge id is required", ErrInvalidInput)
	}
	limit, offset := s.normalizePage(p)

	list, err := s.evaluations.ListByJudge(ctx, judgeID, limit, offset)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list evaluations: %w", err)
	}

	summaries := make(map[string]types.PostSummary)
	out := make([]types.EvaluationView, 0, len(list))
	for _, e := range list {
		summary, ok := summaries[e.PostID]
		if !ok {
			post, err := s.posts.Get(ctx, e.PostID)
			switch {
			case err == nil:
				summary = types.SummarizePost(post)
			case errors.Is(err, repository.ErrPostNotFound):
				summary = types.PostSummary{ID: e.PostID}
			default:
				span.RecordError(err)
				return nil, fmt.Errorf("load post %s: %w", e.PostID, err)
			}
			summaries[e.PostID] = summary
		}
		out = append(out, types.EvaluationView{
			ID:        e.ID,
			JudgeID:   e.JudgeID,
			Post:      summary,
			Score:     e.Score,
			Feedback:  e.Feedback,
			CreatedAt: e.CreatedAt,
		})
	}
	return out, nil
}

func (s *Service) normalizePage(p Page) (limit, offset int) {
	limit = p.Limit
	if limit <= 0 {
		limit = s.pageLimit
	}
	if limit > s.maxPageLimit {
		limit = s.maxPageLimit
	}
	offset = max(p.Offset, 0)
	return limit, offset
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrForbidden):
		return "forbidden"
	case errors.Is(err, ErrConflict):
		return "conflict"
	default:
		return "internal"
	}
}
