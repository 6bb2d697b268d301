// Package ranking computes per-category leaderboards that blend community
// likes with judge scores, the top-posts-by-likes view, and per-user
// aggregates of judge scores. Every view is computed on demand.
package ranking

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/okian/showcase/internal/adapters/repository"
	"github.com/okian/showcase/internal/domain/model"
	"github.com/okian/showcase/internal/domain/scoring"
	"github.com/okian/showcase/internal/domain/types"
	"github.com/okian/showcase/pkg/logger"
	"github.com/okian/showcase/pkg/metrics"
)

// Engine computes the blended leaderboards and the top-posts view.
type Engine struct {
	posts       repository.PostStore
	evaluations repository.EvaluationStore
	settings
	tracer trace.Tracer
}

// NewEngine creates a ranking engine over the given stores.
func NewEngine(posts repository.PostStore, evaluations repository.EvaluationStore, opts ...Option) *Engine {
	return &Engine{
		posts:       posts,
		evaluations: evaluations,
		settings:    newSettings("ranking", opts),
		tracer:      otel.Tracer("showcase/ranking"),
	}
}

// TopRanked returns one ranking per configured category, in category order.
// Categories are computed concurrently; any store failure fails the call.
func (e *Engine) TopRanked(ctx context.Context) (out []types.CategoryRanking, err error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "showcase.ranking.top_ranked")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.RecordRankingError()
		}
		span.End()
		metrics.RecordRankingLatency("top_ranked", float64(time.Since(start).Microseconds())/1000)
	}()

	out = make([]types.CategoryRanking, len(e.categories))
	g, gctx := errgroup.WithContext(ctx)
	for i, c := range e.categories {
		g.Go(func() error {
			top, err := e.rankCategory(gctx, c)
			if err != nil {
				return fmt.Errorf("rank %s: %w", c, err)
			}
			out[i] = types.CategoryRanking{Category: c, Top10: top}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// rankCategory scores every post of c and returns the top N by final score.
// Ties keep store order.
func (e *Engine) rankCategory(ctx context.Context, c model.Category) ([]types.RankedPost, error) {
	ctx, span := e.tracer.Start(ctx, "showcase.ranking.category",
		trace.WithAttributes(attribute.String("category", string(c))))
	defer span.End()

	posts, err := e.posts.ListByCategory(ctx, c)
	if err != nil {
		return nil, err
	}
	if len(posts) == 0 {
		return []types.RankedPost{}, nil
	}

	maxLikes := 1
	ids := make([]string, len(posts))
	for i, p := range posts {
		maxLikes = max(maxLikes, p.LikeCount())
		ids[i] = p.ID
	}

	evals, err := e.evaluations.ListByPosts(ctx, ids)
	if err != nil {
		return nil, err
	}
	scores := make(map[string][]float64, len(posts))
	for _, ev := range evals {
		scores[ev.PostID] = append(scores[ev.PostID], ev.Score)
	}

	ranked := make([]types.RankedPost, len(posts))
	for i, p := range posts {
		b := e.policy.Blend(p.LikeCount(), maxLikes, scoring.Mean(scores[p.ID]))
		ranked[i] = types.RankedPost{
			Post:       types.SummarizePost(p),
			UserScore:  b.User,
			JudgeScore: b.Judge,
			FinalScore: b.Final,
		}
	}
	slices.SortStableFunc(ranked, func(a, b types.RankedPost) int {
		return cmp.Compare(b.FinalScore, a.FinalScore)
	})
	if len(ranked) > e.topN {
		ranked = ranked[:e.topN]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	metrics.RecordPostsScored(len(posts))
	span.SetAttributes(attribute.Int("posts.scored", len(posts)))
	return ranked, nil
}

// TopPosts returns up to the configured limit of posts with the most likes,
// optionally restricted to one category. Ties keep store order.
func (e *Engine) TopPosts(ctx context.Context, category *model.Category) (out []model.Post, err error) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "showcase.ranking.top_posts")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		metrics.RecordRankingLatency("top_posts", float64(time.Since(start).Microseconds())/1000)
	}()

	var posts []model.Post
	if category != nil {
		if !category.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, *category)
		}
		span.SetAttributes(attribute.String("category", string(*category)))
		posts, err = e.posts.ListByCategory(ctx, *category)
	} else {
		posts, err = e.posts.List(ctx)
	}
	if err != nil {
		e.log.Error(ctx, "list posts failed", logger.Error(err))
		return nil, fmt.Errorf("list posts: %w", err)
	}

	slices.SortStableFunc(posts, func(a, b model.Post) int {
		return cmp.Compare(b.LikeCount(), a.LikeCount())
	})
	if len(posts) > e.topPostsLimit {
		posts = posts[:e.topPostsLimit]
	}
	if posts == nil {
		posts = []model.Post{}
	}
	return posts, nil
}
