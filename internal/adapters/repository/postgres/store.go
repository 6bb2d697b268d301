package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/okian/showcase/internal/adapters/repository"
	"github.com/okian/showcase/internal/domain/model"
	"github.com/okian/showcase/pkg/metrics"
)

const storeName = "postgres"

// Store implements repository.PostStore, repository.PostWriter and
// repository.EvaluationStore. The unique index idx_evaluation_post_judge
// is the authority on duplicate evaluations.
type Store struct {
	db *gorm.DB
}

// NewStore wraps an open gorm connection.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func observe(op string, start time.Time, err error) {
	metrics.RecordStoreLatency(storeName, op, float64(time.Since(start).Microseconds())/1000)
	if err != nil {
		metrics.RecordStoreError(storeName, op)
	}
}

// Get implements repository.PostStore.
func (s *Store) Get(ctx context.Context, id string) (post model.Post, err error) {
	defer func(start time.Time) { observe("get_post", start, err) }(time.Now())

	var row postModel
	if err := s.db.WithContext(ctx).Where("id = ?", id).Take(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return model.Post{}, repository.ErrPostNotFound
		}
		return model.Post{}, fmt.Errorf("get post %s: %w", id, err)
	}
	likes, err := s.likesFor(ctx, []string{id})
	if err != nil {
		return model.Post{}, err
	}
	return toPost(row, likes[id]), nil
}

// ListByCategory implements repository.PostStore.
func (s *Store) ListByCategory(ctx context.Context, category model.Category) (posts []model.Post, err error) {
	defer func(start time.Time) { observe("list_posts", start, err) }(time.Now())
	return s.listPosts(ctx, s.db.WithContext(ctx).Where("category = ?", string(category)))
}

// List implements repository.PostStore.
func (s *Store) List(ctx context.Context) (posts []model.Post, err error) {
	defer func(start time.Time) { observe("list_posts", start, err) }(time.Now())
	return s.listPosts(ctx, s.db.WithContext(ctx))
}

func (s *Store) listPosts(ctx context.Context, q *gorm.DB) ([]model.Post, error) {
	var rows []postModel
	if err := q.Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	ids := make([]string, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	likes, err := s.likesFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]model.Post, 0, len(rows))
	for _, r := range rows {
		out = append(out, toPost(r, likes[r.ID]))
	}
	return out, nil
}

func (s *Store) likesFor(ctx context.Context, postIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(postIDs))
	if len(postIDs) == 0 {
		return out, nil
	}
	for _, chunk := range chunkIDs(postIDs, maxIDsPerQuery) {
		var rows []postLikeModel
		err := s.db.WithContext(ctx).
			Where("post_id IN ?", chunk).
			Order("post_id ASC, position ASC").
			Find(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("list likes: %w", err)
		}
		for _, r := range rows {
			out[r.PostID] = append(out[r.PostID], r.UserID)
		}
	}
	return out, nil
}

// SavePost implements repository.PostWriter. The like set is replaced.
func (s *Store) SavePost(ctx context.Context, post model.Post) (err error) {
	defer func(start time.Time) { observe("save_post", start, err) }(time.Now())

	if post.ID == "" {
		return fmt.Errorf("%w: id is required", repository.ErrInvalidPost)
	}
	if !post.Category.Valid() {
		return fmt.Errorf("%w: unknown category %q", repository.ErrInvalidPost, post.Category)
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = time.Now().UTC()
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing postModel
		err := tx.Where("id = ?", post.ID).Take(&existing).Error
		switch {
		case err == nil && existing.Category != string(post.Category):
			return fmt.Errorf("%w: category of %s is immutable", repository.ErrInvalidPost, post.ID)
		case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
			return fmt.Errorf("load post %s: %w", post.ID, err)
		}

		row := postModel{
			ID:        post.ID,
			OwnerID:   post.OwnerID,
			Title:     post.Title,
			Category:  string(post.Category),
			CreatedAt: post.CreatedAt,
		}
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"owner_id", "title"}),
		}).Create(&row).Error; err != nil {
			return fmt.Errorf("upsert post %s: %w", post.ID, err)
		}

		if err := tx.Where("post_id = ?", post.ID).Delete(&postLikeModel{}).Error; err != nil {
			return fmt.Errorf("clear likes %s: %w", post.ID, err)
		}
		likes := model.UniqueLikes(post.Likes)
		if len(likes) == 0 {
			return nil
		}
		rows := make([]postLikeModel, len(likes))
		for i, u := range likes {
			rows[i] = postLikeModel{PostID: post.ID, UserID: u, Position: i}
		}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error; err != nil {
			return fmt.Errorf("insert likes %s: %w", post.ID, err)
		}
		return nil
	})
}

// Insert implements repository.EvaluationStore.
func (s *Store) Insert(ctx context.Context, e model.Evaluation) (err error) {
	defer func(start time.Time) {
		// A duplicate is an expected outcome, not a store failure.
		if errors.Is(err, repository.ErrDuplicate) {
			observe("insert_evaluation", start, nil)
			return
		}
		observe("insert_evaluation", start, err)
	}(time.Now())

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	row := fromEvaluation(e)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

// Exists implements repository.EvaluationStore.
func (s *Store) Exists(ctx context.Context, postID, judgeID string) (ok bool, err error) {
	defer func(start time.Time) { observe("exists_evaluation", start, err) }(time.Now())

	var n int64
	err = s.db.WithContext(ctx).Model(&evaluationModel{}).
		Where("post_id = ? AND judge_id = ?", postID, judgeID).
		Limit(1).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("check evaluation: %w", err)
	}
	return n > 0, nil
}

// ListByJudge implements repository.EvaluationStore.
func (s *Store) ListByJudge(ctx context.Context, judgeID string, limit, offset int) (list []model.Evaluation, err error) {
	defer func(start time.Time) { observe("list_by_judge", start, err) }(time.Now())

	q := s.db.WithContext(ctx).Where("judge_id = ?", judgeID).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if offset > 0 {
		q = q.Offset(offset)
	}
	var rows []evaluationModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list evaluations by judge: %w", err)
	}
	return toEvaluations(rows), nil
}

// ListByPosts implements repository.EvaluationStore.
func (s *Store) ListByPosts(ctx context.Context, postIDs []string) (list []model.Evaluation, err error) {
	defer func(start time.Time) { observe("list_by_posts", start, err) }(time.Now())

	if len(postIDs) == 0 {
		return nil, nil
	}
	var rows []evaluationModel
	for _, chunk := range chunkIDs(postIDs, maxIDsPerQuery) {
		var part []evaluationModel
		err = s.db.WithContext(ctx).
			Where("post_id IN ?", chunk).
			Order("created_at ASC, id ASC").
			Find(&part).Error
		if err != nil {
			return nil, fmt.Errorf("list evaluations by posts: %w", err)
		}
		rows = append(rows, part...)
	}
	slices.SortStableFunc(rows, compareEvaluations)
	return toEvaluations(rows), nil
}

// ListAll implements repository.EvaluationStore.
func (s *Store) ListAll(ctx context.Context) (list []model.Evaluation, err error) {
	defer func(start time.Time) { observe("list_evaluations", start, err) }(time.Now())

	var rows []evaluationModel
	if err := s.db.WithContext(ctx).Order("created_at ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list evaluations: %w", err)
	}
	return toEvaluations(rows), nil
}
