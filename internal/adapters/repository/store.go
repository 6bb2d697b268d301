// Package repository defines the post and evaluation store interfaces, their
// errors and an in-memory implementation.
package repository

import (
	"context"

	"github.com/okian/showcase/internal/domain/model"
)

// PostStore reads posts. Posts are owned by the content service.
type PostStore interface {
	// Get returns a post by id or ErrPostNotFound.
	Get(ctx context.Context, id string) (model.Post, error)

	// ListByCategory returns the category's posts ordered by CreatedAt asc, ID asc.
	ListByCategory(ctx context.Context, category model.Category) ([]model.Post, error)

	// List returns all posts in the same order as ListByCategory.
	List(ctx context.Context) ([]model.Post, error)
}

// PostWriter stores posts. Used for fixture seeding only.
type PostWriter interface {
	SavePost(ctx context.Context, post model.Post) error
}

// EvaluationStore persists evaluations and enforces one per (post, judge).
type EvaluationStore interface {
	// Insert stores e. Returns ErrDuplicate if the judge already evaluated the post.
	Insert(ctx context.Context, e model.Evaluation) error

	// Exists reports whether the judge already evaluated the post.
	Exists(ctx context.Context, postID, judgeID string) (bool, error)

	// ListByJudge returns the judge's evaluations newest first.
	ListByJudge(ctx context.Context, judgeID string, limit, offset int) ([]model.Evaluation, error)

	// ListByPosts returns all evaluations of the given posts.
	ListByPosts(ctx context.Context, postIDs []string) ([]model.Evaluation, error)

	// ListAll returns every evaluation.
	ListAll(ctx context.Context) ([]model.Evaluation, error)
}

// Pinger is implemented by stores with an external dependency.
type Pinger interface {
	Ping(ctx context.Context) error
}
