package ranking

import (
	"github.com/okian/showcase/internal/domain/model"
	"github.com/okian/showcase/internal/domain/scoring"
	"github.com/okian/showcase/pkg/logger"
)

// Defaults for ranking views.
const (
	DefaultTopN          = 10
	DefaultTopPostsLimit = 10
)

// settings are shared by Engine and Aggregator.
type settings struct {
	policy        *scoring.Policy
	categories    []model.Category
	topN          int
	topPostsLimit int
	log           logger.Logger
}

func newSettings(name string, opts []Option) settings {
	s := settings{
		policy:        scoring.NewPolicy(),
		categories:    model.Categories,
		topN:          DefaultTopN,
		topPostsLimit: DefaultTopPostsLimit,
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.log == nil {
		s.log = logger.Get().Named(name)
	}
	return s
}

// Option applies a configuration option to an Engine or Aggregator.
type Option func(*settings)

// WithPolicy sets the blend policy.
func WithPolicy(p *scoring.Policy) Option {
	return func(s *settings) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithCategories sets the ranked categories in output order. Unknown
// categories are ignored; an empty result keeps the default set.
func WithCategories(categories []model.Category) Option {
	return func(s *settings) {
		var valid []model.Category
		for _, c := range categories {
			if c.Valid() {
				valid = append(valid, c)
			}
		}
		if len(valid) > 0 {
			s.categories = valid
		}
	}
}

// WithTopN sets the leaderboard length per category.
func WithTopN(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.topN = n
		}
	}
}

// WithTopPostsLimit sets the length of the top-posts-by-likes view.
func WithTopPostsLimit(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.topPostsLimit = n
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logger.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.log = l
		}
	}
}
