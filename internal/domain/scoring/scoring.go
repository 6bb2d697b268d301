// Package scoring defines the judge score bounds and the policy that blends
// community likes with judge scores into a post's final score.
package scoring

import (
	"errors"
	"fmt"
	"math"
)

// Canonical scoring constants.
const (
	MinScore          = 0.0
	MaxScore          = 10.0
	MaxFeedbackLength = 2000

	DefaultLikeWeight  = 40.0
	DefaultJudgeWeight = 60.0
)

// ErrScoreOutOfRange is returned for scores outside the policy bounds.
var ErrScoreOutOfRange = errors.New("score out of range")

// Weights splits the final score between likes and judge scores.
type Weights struct {
	Likes  float64
	Judges float64
}

// DefaultWeights is the 40/60 likes/judges blend.
var DefaultWeights = Weights{Likes: DefaultLikeWeight, Judges: DefaultJudgeWeight}

// Option applies a configuration option to the Policy.
type Option func(*Policy)

// WithBounds sets the inclusive score bounds. Ignored unless minScore < maxScore.
func WithBounds(minScore, maxScore float64) Option {
	return func(p *Policy) {
		if minScore < maxScore && !math.IsInf(maxScore, 0) {
			p.min = minScore
			p.max = maxScore
		}
	}
}

// WithWeights sets the blend weights. Ignored when negative or both zero.
func WithWeights(w Weights) Option {
	return func(p *Policy) {
		if w.Likes < 0 || w.Judges < 0 || (w.Likes == 0 && w.Judges == 0) {
			return
		}
		p.weights = w
	}
}

// Policy validates judge scores and computes blended scores.
type Policy struct {
	min     float64
	max     float64
	weights Weights
}

// NewPolicy creates a policy with the canonical bounds and weights.
func NewPolicy(opts ...Option) *Policy {
	p := &Policy{
		min:     MinScore,
		max:     MaxScore,
		weights: DefaultWeights,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Bounds returns the inclusive score bounds.
func (p *Policy) Bounds() (float64, float64) { return p.min, p.max }

// Weights returns the blend weights.
func (p *Policy) Weights() Weights { return p.weights }

// ValidateScore checks that score is a finite number within bounds.
func (p *Policy) ValidateScore(score float64) error {
	if math.IsNaN(score) || math.IsInf(score, 0) || score < p.min || score > p.max {
		return fmt.Errorf("%w: score must be a number between %g and %g", ErrScoreOutOfRange, p.min, p.max)
	}
	return nil
}

// Breakdown is the per-component result of Blend.
type Breakdown struct {
	User  float64
	Judge float64
	Final float64
}

// Blend computes a post's score from its like count, the category's highest
// like count and the mean judge score. maxLikes below 1 is treated as 1.
func (p *Policy) Blend(likes, maxLikes int, avgJudgeScore float64) Breakdown {
	if maxLikes < 1 {
		maxLikes = 1
	}
	if likes < 0 {
		likes = 0
	}
	if math.IsNaN(avgJudgeScore) {
		avgJudgeScore = 0
	}
	user := float64(likes) / float64(maxLikes) * p.weights.Likes
	judge := avgJudgeScore / p.max * p.weights.Judges
	return Breakdown{User: user, Judge: judge, Final: user + judge}
}

// Mean returns the arithmetic mean of scores, 0 for none.
func Mean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}
