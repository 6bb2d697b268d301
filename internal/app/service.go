// Package service assembles the stores, domain services and notification
// pipeline into the component the HTTP API depends on.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/okian/showcase/internal/adapters/mq/queue"
	"github.com/okian/showcase/internal/adapters/mq/worker"
	"github.com/okian/showcase/internal/adapters/notify"
	"github.com/okian/showcase/internal/adapters/repository"
	"github.com/okian/showcase/internal/adapters/repository/postgres"
	"github.com/okian/showcase/internal/config"
	"github.com/okian/showcase/internal/domain/dedupe"
	"github.com/okian/showcase/internal/domain/evaluation"
	"github.com/okian/showcase/internal/domain/model"
	"github.com/okian/showcase/internal/domain/ranking"
	"github.com/okian/showcase/internal/domain/scoring"
	"github.com/okian/showcase/internal/domain/types"
	"github.com/okian/showcase/pkg/logger"
)

// ErrNotStarted is returned by operations called before Start.
var ErrNotStarted = errors.New("service not started")

// Publisher delivers notifications and releases its connection on Close.
type Publisher interface {
	worker.Publisher
	io.Closer
}

// store is what the service needs from a storage backend.
type store interface {
	repository.PostStore
	repository.PostWriter
	repository.EvaluationStore
	io.Closer
}

// Service implements the API dependencies for the judging system.
type Service struct {
	mu  sync.RWMutex
	cfg config.Config

	store      store
	publisher  Publisher
	queue      *queue.InMemoryQueue
	deduper    dedupe.Deduper
	pool       *worker.Pool
	evals      *evaluation.Service
	engine     *ranking.Engine
	aggregator *ranking.Aggregator

	started bool
	logger  logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPublisher overrides the publisher selected by configuration.
func WithPublisher(p Publisher) Option {
	return func(s *Service) {
		s.publisher = p
	}
}

// New constructs a Service from cfg. Nothing is opened until Start.
func New(cfg config.Config, opts ...Option) *Service {
	s := &Service{cfg: cfg}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}
	return s
}

// Start opens the store, seeds it when a fixture is configured, and starts
// the notification workers.
func (s *Service) Start(ctx context.Context) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	s.logger.Info(ctx, "starting showcase service...", logger.String("store", s.cfg.Store))

	if s.store, err = s.openStore(ctx); err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = s.store.Close()
		}
	}()

	if s.cfg.SeedFile != "" {
		if err := s.seed(ctx); err != nil {
			return err
		}
	}

	if s.publisher == nil {
		if s.publisher, err = s.openPublisher(ctx); err != nil {
			return err
		}
	}

	s.queue = queue.NewInMemoryQueue(queue.WithCapacity(s.cfg.NotifyQueueSize))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.cfg.DedupeSize))
	dispatcher := notify.NewDispatcher(s.queue,
		notify.WithDeduper(s.deduper),
		notify.WithLogger(s.logger.Named("notify")),
	)
	s.pool = worker.NewPool(s.cfg.NotifyWorkers, s.queue, s.publisher,
		worker.WithPoolLogger(s.logger.Named("worker-pool")))
	s.pool.Start(context.WithoutCancel(ctx))

	policy := scoring.NewPolicy(
		scoring.WithBounds(s.cfg.MinScore, s.cfg.MaxScore),
		scoring.WithWeights(scoring.Weights{Likes: s.cfg.LikeWeight, Judges: s.cfg.JudgeWeight}),
	)
	s.evals = evaluation.NewService(s.store, s.store,
		evaluation.WithNotifier(dispatcher),
		evaluation.WithPolicy(policy),
		evaluation.WithCategoryScope(s.cfg.JudgeCategoryScope),
		evaluation.WithPageLimits(s.cfg.EvaluationsPageLimit, s.cfg.EvaluationsMaxPageLimit),
		evaluation.WithLogger(s.logger.Named("evaluation")),
	)
	rankingOpts := []ranking.Option{
		ranking.WithPolicy(policy),
		ranking.WithCategories(parseCategories(s.cfg.Categories)),
		ranking.WithTopN(s.cfg.TopN),
		ranking.WithTopPostsLimit(s.cfg.TopPostsLimit),
		ranking.WithLogger(s.logger.Named("ranking")),
	}
	s.engine = ranking.NewEngine(s.store, s.store, rankingOpts...)
	s.aggregator = ranking.NewAggregator(s.store, s.store, rankingOpts...)

	s.started = true
	s.logger.Info(ctx, "showcase service started",
		logger.String("notifier", s.cfg.Notifier),
		logger.Int("workers", s.pool.Size()),
		logger.Int("queueSize", s.cfg.NotifyQueueSize),
		logger.Int("dedupeSize", s.cfg.DedupeSize),
	)
	return nil
}

func (s *Service) openStore(ctx context.Context) (store, error) {
	switch s.cfg.Store {
	case config.StorePostgres:
		db, err := postgres.Connect(ctx, s.cfg.DatabaseURL, s.cfg.DBMaxConns)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		if err := postgres.RunMigrations(ctx, db); err != nil {
			if sqlDB, dbErr := db.DB(); dbErr == nil {
				_ = sqlDB.Close()
			}
			return nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return postgres.NewStore(db), nil
	default:
		return repository.NewInMemoryStore(ctx), nil
	}
}

func (s *Service) openPublisher(ctx context.Context) (Publisher, error) {
	switch s.cfg.Notifier {
	case config.NotifierRedis:
		client, err := notify.ConnectRedis(ctx, s.cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return notify.NewRedisPublisher(client, s.cfg.RedisChannelPrefix), nil
	case config.NotifierKafka:
		p, err := notify.NewKafkaPublisher(s.cfg.KafkaBrokers, s.cfg.KafkaTopic)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.NotifierNone:
		return notify.NopPublisher{}, nil
	default:
		return notify.NewLogPublisher(s.logger.Named("notifications")), nil
	}
}

func (s *Service) seed(ctx context.Context) error {
	fixture, err := repository.LoadFixture(s.cfg.SeedFile)
	if err != nil {
		return fmt.Errorf("load seed file: %w", err)
	}
	res, err := repository.Seed(ctx, s.store, s.store, fixture)
	if err != nil {
		return fmt.Errorf("seed store: %w", err)
	}
	s.logger.Info(ctx, "store seeded",
		logger.String("file", s.cfg.SeedFile),
		logger.Int("posts", res.Posts),
		logger.Int("evaluations", res.Evaluations),
		logger.Int("skipped", res.Skipped),
	)
	return nil
}

func parseCategories(names []string) []model.Category {
	out := make([]model.Category, 0, len(names))
	for _, n := range names {
		if c, err := model.ParseCategory(n); err == nil {
			out = append(out, c)
		}
	}
	return out
}

// Stop drains pending notifications and closes the publisher and store.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.logger.Info(ctx, "stopping showcase service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "notification workers did not drain", logger.Error(err))
	}
	if err := s.publisher.Close(); err != nil {
		s.logger.Warn(ctx, "closing publisher failed", logger.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "closing store failed", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "showcase service stopped")
}

func (s *Service) running() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Submit stores a judge's evaluation.
func (s *Service) Submit(ctx context.Context, sub evaluation.Submission) (model.Evaluation, error) {
	if !s.running() {
		return model.Evaluation{}, ErrNotStarted
	}
	return s.evals.Submit(ctx, sub)
}

// ListByJudge returns the judge's evaluations.
func (s *Service) ListByJudge(ctx context.Context, judgeID string, p evaluation.Page) ([]types.EvaluationView, error) {
	if !s.running() {
		return nil, ErrNotStarted
	}
	return s.evals.ListByJudge(ctx, judgeID, p)
}

// TopRanked returns the blended leaderboard of every category.
func (s *Service) TopRanked(ctx context.Context) ([]types.CategoryRanking, error) {
	if !s.running() {
		return nil, ErrNotStarted
	}
	return s.engine.TopRanked(ctx)
}

// TopPosts returns the most liked posts.
func (s *Service) TopPosts(ctx context.Context, category *model.Category) ([]model.Post, error) {
	if !s.running() {
		return nil, ErrNotStarted
	}
	return s.engine.TopPosts(ctx, category)
}

// UserRankings returns per-user judge score aggregates.
func (s *Service) UserRankings(ctx context.Context) ([]types.UserAggregate, error) {
	if !s.running() {
		return nil, ErrNotStarted
	}
	return s.aggregator.UserRankings(ctx)
}

// SavePost stores a post. Posts are owned by the surrounding platform; this
// is used for seeding and tests.
func (s *Service) SavePost(ctx context.Context, p model.Post) error {
	if !s.running() {
		return ErrNotStarted
	}
	return s.store.SavePost(ctx, p)
}

// Ready reports whether the service is started and its store reachable.
func (s *Service) Ready(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.started {
		return ErrNotStarted
	}
	if p, ok := s.store.(repository.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("store ping: %w", err)
		}
	}
	return nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"started":         s.started,
		"store":           s.cfg.Store,
		"notifier":        s.cfg.Notifier,
		"notifyQueueSize": s.cfg.NotifyQueueSize,
		"dedupeSize":      s.cfg.DedupeSize,
	}
	if !s.started {
		return stats
	}

	stats["workerCount"] = s.pool.Size()
	stats["queueLength"] = s.queue.Len()
	stats["notificationsTracked"] = s.deduper.Size()
	if c, ok := s.store.(interface{ Counts() (int, int) }); ok {
		posts, evals := c.Counts()
		stats["totalPosts"] = posts
		stats["totalEvaluations"] = evals
	}
	return stats
}
