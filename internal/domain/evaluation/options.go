package evaluation

import (
	"time"

	"github.com/okian/showcase/internal/domain/scoring"
	"github.com/okian/showcase/pkg/logger"
)

// Default paging for ListByJudge.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 500
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithNotifier sets where post owners are notified. Nil keeps the no-op notifier.
func WithNotifier(n Notifier) Option {
	return func(s *Service) {
		if n != nil {
			s.notifier = n
		}
	}
}

// WithPolicy sets the scoring policy used for bound checks.
func WithPolicy(p *scoring.Policy) Option {
	return func(s *Service) {
		if p != nil {
			s.policy = p
		}
	}
}

// WithCategoryScope restricts category judges to posts of their category.
func WithCategoryScope(enabled bool) Option {
	return func(s *Service) {
		s.categoryScope = enabled
	}
}

// WithPageLimits sets the default and maximum ListByJudge page sizes.
func WithPageLimits(defaultLimit, maxLimit int) Option {
	return func(s *Service) {
		if defaultLimit > 0 && maxLimit >= defaultLimit {
			s.pageLimit = defaultLimit
			s.maxPageLimit = maxLimit
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides evaluation and notification id generation.
func WithIDGenerator(gen func() string) Option {
	return func(s *Service) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithLogger sets the service logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.log = l
		}
	}
}
