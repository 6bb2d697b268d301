package repository

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/okian/showcase/internal/domain/model"
	"github.com/okian/showcase/pkg/metrics"
)

const storeName = "memory"

type pairKey struct {
	postID  string
	judgeID string
}

// InMemoryStore implements PostStore, PostWriter and EvaluationStore.
//
// Post order: CreatedAt ASC, then ID ASC (deterministic).
// Evaluation uniqueness is guarded by mu; a second insert for the same
// (post, judge) pair fails with ErrDuplicate no matter how calls race.
type InMemoryStore struct {
	mu          sync.RWMutex
	posts       map[string]model.Post
	evaluations []model.Evaluation // insertion order
	byPair      map[pairKey]struct{}

	now                   func() time.Time
	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}
}

// NewInMemoryStore constructs an empty store and starts its metrics updater.
func NewInMemoryStore(ctx context.Context, opts ...Option) *InMemoryStore {
	s := &InMemoryStore{
		posts:                 make(map[string]model.Post),
		byPair:                make(map[pairKey]struct{}),
		now:                   time.Now,
		metricsUpdateInterval: 5 * time.Second,
		stopChan:              make(chan struct{}),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the background metrics updater.
func (s *InMemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// SavePost inserts or replaces a post. Likes are deduplicated.
func (s *InMemoryStore) SavePost(ctx context.Context, post model.Post) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(post.ID) == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidPost)
	}
	if !post.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidPost, post.Category)
	}
	post.Likes = model.UniqueLikes(post.Likes)
	if post.CreatedAt.IsZero() {
		post.CreatedAt = s.now().UTC()
	}

	s.mu.Lock()
	if prev, ok := s.posts[post.ID]; ok && prev.Category != post.Category {
		s.mu.Unlock()
		return fmt.Errorf("%w: category of %s is immutable", ErrInvalidPost, post.ID)
	}
	s.posts[post.ID] = post
	s.mu.Unlock()
	return nil
}

// Get implements PostStore.Get.
func (s *InMemoryStore) Get(ctx context.Context, id string) (model.Post, error) {
	if err := ctx.Err(); err != nil {
		return model.Post{}, err
	}
	s.mu.RLock()
	p, ok := s.posts[id]
	s.mu.RUnlock()
	if !ok {
		return model.Post{}, ErrPostNotFound
	}
	return clonePost(p), nil
}

// ListByCategory implements PostStore.ListByCategory.
func (s *InMemoryStore) ListByCategory(ctx context.Context, category model.Category) ([]model.Post, error) {
	return s.listPosts(ctx, func(p model.Post) bool { return p.Category == category })
}

// List implements PostStore.List.
func (s *InMemoryStore) List(ctx context.Context) ([]model.Post, error) {
	return s.listPosts(ctx, func(model.Post) bool { return true })
}

func (s *InMemoryStore) listPosts(ctx context.Context, keep func(model.Post) bool) ([]model.Post, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	s.mu.RLock()
	out := make([]model.Post, 0, len(s.posts))
	for _, p := range s.posts {
		if keep(p) {
			out = append(out, clonePost(p))
		}
	}
	s.mu.RUnlock()

	slices.SortFunc(out, comparePosts)
	metrics.RecordStoreLatency(storeName, "list_posts", float64(time.Since(start).Microseconds())/1000)
	return out, nil
}

// Insert implements EvaluationStore.Insert.
func (s *InMemoryStore) Insert(ctx context.Context, e model.Evaluation) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	key := pairKey{postID: e.PostID, judgeID: e.JudgeID}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byPair[key]; ok {
		return ErrDuplicate
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now().UTC()
	}
	s.byPair[key] = struct{}{}
	s.evaluations = append(s.evaluations, e)

	metrics.RecordStoreLatency(storeName, "insert_evaluation", float64(time.Since(start).Microseconds())/1000)
	return nil
}

// Exists implements EvaluationStore.Exists.
func (s *InMemoryStore) Exists(ctx context.Context, postID, judgeID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	_, ok := s.byPair[pairKey{postID: postID, judgeID: judgeID}]
	s.mu.RUnlock()
	return ok, nil
}

// ListByJudge implements EvaluationStore.ListByJudge. Evaluations with equal
// timestamps are returned latest-inserted first.
func (s *InMemoryStore) ListByJudge(ctx context.Context, judgeID string, limit, offset int) ([]model.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	var out []model.Evaluation
	for i := len(s.evaluations) - 1; i >= 0; i-- {
		if s.evaluations[i].JudgeID == judgeID {
			out = append(out, s.evaluations[i])
		}
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b model.Evaluation) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return page(out, limit, offset), nil
}

// ListByPosts implements EvaluationStore.ListByPosts.
func (s *InMemoryStore) ListByPosts(ctx context.Context, postIDs []string) ([]model.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(postIDs) == 0 {
		return nil, nil
	}
	want := make(map[string]struct{}, len(postIDs))
	for _, id := range postIDs {
		want[id] = struct{}{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Evaluation
	for _, e := range s.evaluations {
		if _, ok := want[e.PostID]; ok {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListAll implements EvaluationStore.ListAll.
func (s *InMemoryStore) ListAll(ctx context.Context) ([]model.Evaluation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.evaluations), nil
}

// Counts returns the number of posts and evaluations held.
func (s *InMemoryStore) Counts() (posts, evaluations int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts), len(s.evaluations)
}

// startMetricsUpdater starts a background goroutine that publishes store gauges.
func (s *InMemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

func (s *InMemoryStore) updateMetrics() {
	posts, evaluations := s.Counts()
	metrics.UpdatePostsTotal(posts)
	metrics.UpdateEvaluationsTotal(evaluations)
}

func comparePosts(a, b model.Post) int {
	if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
		return c
	}
	return strings.Compare(a.ID, b.ID)
}

func clonePost(p model.Post) model.Post {
	p.Likes = slices.Clone(p.Likes)
	return p
}

func page(in []model.Evaluation, limit, offset int) []model.Evaluation {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(in) {
		return []model.Evaluation{}
	}
	in = in[offset:]
	if limit > 0 && limit < len(in) {
		in = in[:limit]
	}
	return in
}
