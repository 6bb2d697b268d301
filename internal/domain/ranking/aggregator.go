package ranking

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/okian/showcase/internal/adapters/repository"
	"github.com/okian/showcase/internal/domain/types"
	"github.com/okian/showcase/pkg/logger"
	"github.com/okian/showcase/pkg/metrics"
)

// Aggregator summarizes judge scores per post owner.
type Aggregator struct {
	posts       repository.PostStore
	evaluations repository.EvaluationStore
	settings
	tracer trace.Tracer
}

// NewAggregator creates an aggregator over the given stores.
func NewAggregator(posts repository.PostStore, evaluations repository.EvaluationStore, opts ...Option) *Aggregator {
	return &Aggregator{
		posts:       posts,
		evaluations: evaluations,
		settings:    newSettings("aggregator", opts),
		tracer:      otel.Tracer("showcase/ranking"),
	}
}

type tally struct {
	total float64
	count int
}

// UserRankings groups every evaluation by the owner of the evaluated post
// and returns all owners sorted by mean score desc, then user id asc.
// Evaluations of posts that no longer exist are skipped.
func (a *Aggregator) UserRankings(ctx context.Context) (out []types.UserAggregate, err error) {
	start := time.Now()
	ctx, span := a.tracer.Start(ctx, "showcase.ranking.user_rankings")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			metrics.RecordRankingError()
		}
		span.End()
		metrics.RecordRankingLatency("user_rankings", float64(time.Since(start).Microseconds())/1000)
	}()

	evals, err := a.evaluations.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	posts, err := a.posts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	owners := make(map[string]string, len(posts))
	for _, p := range posts {
		owners[p.ID] = p.OwnerID
	}

	byUser := make(map[string]*tally)
	skipped := 0
	for _, ev := range evals {
		owner, ok := owners[ev.PostID]
		if !ok {
			skipped++
			continue
		}
		t := byUser[owner]
		if t == nil {
			t = &tally{}
			byUser[owner] = t
		}
		t.total += ev.Score
		t.count++
	}
	if skipped > 0 {
		a.log.Debug(ctx, "skipped evaluations of missing posts", logger.Int("count", skipped))
	}

	out = make([]types.UserAggregate, 0, len(byUser))
	for user, t := range byUser {
		out = append(out, types.UserAggregate{
			UserID:       user,
			AverageScore: t.total / float64(t.count),
			TotalScore:   t.total,
			Evaluations:  t.count,
		})
	}
	slices.SortFunc(out, func(x, y types.UserAggregate) int {
		if c := cmp.Compare(y.AverageScore, x.AverageScore); c != 0 {
			return c
		}
		return strings.Compare(x.UserID, y.UserID)
	})
	return out, nil
}
