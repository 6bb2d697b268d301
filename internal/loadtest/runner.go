package loadtest

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/okian/showcase/internal/auth"
	"github.com/okian/showcase/internal/domain/model"
	"github.com/okian/showcase/internal/domain/types"
	"github.com/okian/showcase/pkg/logger"
)

const progressInterval = time.Second

// Run executes a complete load run: plan, submit concurrently, verify the
// submission counts and the leaderboards. Stats are returned even when
// verification fails.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	log := logger.Get().Named("loadtest")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting judge load test",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("judges", cfg.Judges),
		logger.Int("workers", cfg.Workers),
		logger.Float64("duplicateRatio", cfg.DuplicateRatio),
		logger.Float64("rps", cfg.RPS))

	c := newClient(cfg.BaseURL, cfg.Timeout)
	if err := checkReady(ctx, c); err != nil {
		return nil, fmt.Errorf("service readiness check failed: %w", err)
	}

	posts, err := resolvePosts(ctx, cfg)
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewJWTService(cfg.Secret)
	if err != nil {
		return nil, err
	}
	judges := judgeIDs(cfg.Judges)
	judgeTokens := make(map[string]string, len(judges))
	for _, j := range judges {
		tok, err := tokens.Issue(j, model.RoleJudge)
		if err != nil {
			return nil, fmt.Errorf("failed to mint token for %s: %w", j, err)
		}
		judgeTokens[j] = tok
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	plan := planSubmissions(cfg, judges, posts, rand.New(rand.NewPCG(seed, seed>>1)))
	for _, s := range plan {
		if s.Repeat {
			stats.Duplicates++
		}
	}
	stats.Planned = len(plan)
	log.Info(ctx, "planned submissions",
		logger.Int("posts", len(posts)),
		logger.Int("submissions", stats.Planned),
		logger.Int("duplicates", stats.Duplicates))

	submitStart := time.Now()
	if err := submitAll(ctx, c, cfg, plan, judgeTokens, stats); err != nil {
		return stats, fmt.Errorf("submission failed: %w", err)
	}
	stats.SubmitDuration = time.Since(submitStart)
	if stats.SubmitDuration > 0 {
		stats.SubmitPerSecond = float64(stats.Planned) / stats.SubmitDuration.Seconds()
	}

	verr := verifyCounts(stats)

	// Any authenticated user may read the leaderboards.
	reader, err := tokens.Issue("load-reader", model.RoleUser)
	if err != nil {
		return stats, err
	}
	var leaderboards []types.CategoryRanking
	if err := c.getJSON(ctx, "/judge/top-ranked", reader, &leaderboards); err != nil {
		return stats, fmt.Errorf("leaderboard retrieval failed: %w", err)
	}
	var users []types.UserAggregate
	if err := c.getJSON(ctx, "/judge/rankings", reader, &users); err != nil {
		return stats, fmt.Errorf("user rankings retrieval failed: %w", err)
	}
	stats.Categories = len(leaderboards)
	for _, lb := range leaderboards {
		stats.RankedPosts += len(lb.Top10)
	}
	stats.RankedUsers = len(users)

	verr = errors.Join(verr, verifyLeaderboards(leaderboards, cfg.TopN), verifyUserRankings(users))

	stats.Duration = time.Since(stats.StartTime)
	displayFinalStats(ctx, log, stats)
	displayLeaders(ctx, log, leaderboards)

	if verr != nil {
		return stats, verr
	}
	log.Info(ctx, "load test completed successfully")
	return stats, nil
}

// checkReady requires GET /readyz to answer 200.
func checkReady(ctx context.Context, c *client) error {
	status, excerpt, err := c.do(ctx, http.MethodGet, "/readyz", "", nil, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: /readyz returned %d: %s", ErrUnexpectedStatus, status, excerpt)
	}
	return nil
}

// submitAll sends every planned submission using at most cfg.Workers
// concurrent requests, paced by cfg.RPS. Individual request failures are
// counted, not returned; only cancellation aborts the run.
func submitAll(ctx context.Context, c *client, cfg *Config, plan []Submission, tokens map[string]string, stats *Stats) error {
	limit := rate.Inf
	if cfg.RPS > 0 {
		limit = rate.Limit(cfg.RPS)
	}
	limiter := rate.NewLimiter(limit, max(1, cfg.Workers))

	var accepted, conflicts, rejected, failed, done atomic.Int64
	log := logger.Get().Named("loadtest")

	var (
		reportMu   sync.Mutex
		lastReport = time.Now()
	)
	report := func() {
		reportMu.Lock()
		defer reportMu.Unlock()
		if time.Since(lastReport) < progressInterval {
			return
		}
		lastReport = time.Now()
		log.Info(ctx, "progress",
			logger.Int("submitted", int(done.Load())),
			logger.Int("total", len(plan)),
			logger.Int("accepted", int(accepted.Load())),
			logger.Int("conflicts", int(conflicts.Load())),
			logger.Int("failed", int(failed.Load())+int(rejected.Load())))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, sub := range plan {
		if err := limiter.Wait(gctx); err != nil {
			break
		}
		g.Go(func() error {
			status, excerpt, err := c.do(gctx, http.MethodPost, "/judge/evaluate", tokens[sub.JudgeID], sub, nil)
			done.Add(1)
			switch {
			case err != nil:
				failed.Add(1)
				if cfg.Verbose {
					log.Warn(gctx, "submission failed", logger.String("post_id", sub.PostID), logger.Error(err))
				}
			case status == http.StatusCreated:
				accepted.Add(1)
			case status == http.StatusConflict:
				conflicts.Add(1)
			case status >= 500:
				failed.Add(1)
				if cfg.Verbose {
					log.Warn(gctx, "server error", logger.Int("status", status), logger.String("body", excerpt))
				}
			default:
				rejected.Add(1)
				if cfg.Verbose {
					log.Warn(gctx, "submission rejected", logger.Int("status", status), logger.String("body", excerpt))
				}
			}
			report()
			return nil
		})
	}
	_ = g.Wait()

	stats.Accepted = int(accepted.Load())
	stats.Conflicts = int(conflicts.Load())
	stats.Rejected = int(rejected.Load())
	stats.Failed = int(failed.Load())
	return ctx.Err()
}

func displayFinalStats(ctx context.Context, log logger.Logger, stats *Stats) {
	log.Info(ctx, "final statistics",
		logger.Int("planned", stats.Planned),
		logger.Int("duplicates", stats.Duplicates),
		logger.Int("accepted", stats.Accepted),
		logger.Int("conflicts", stats.Conflicts),
		logger.Int("rejected", stats.Rejected),
		logger.Int("failed", stats.Failed),
		logger.Int("categories", stats.Categories),
		logger.Int("rankedPosts", stats.RankedPosts),
		logger.Int("rankedUsers", stats.RankedUsers),
		logger.Duration("submitDuration", stats.SubmitDuration),
		logger.Duration("duration", stats.Duration),
		logger.Float64("submitPerSecond", stats.SubmitPerSecond))
}

func displayLeaders(ctx context.Context, log logger.Logger, leaderboards []types.CategoryRanking) {
	for _, lb := range leaderboards {
		if len(lb.Top10) == 0 {
			log.Info(ctx, "leaderboard empty", logger.String("category", string(lb.Category)))
			continue
		}
		top := lb.Top10[0]
		log.Info(ctx, "leaderboard leader",
			logger.String("category", string(lb.Category)),
			logger.String("post_id", top.Post.ID),
			logger.Float64("final_score", top.FinalScore),
			logger.Int("entries", len(lb.Top10)))
	}
}
