package loadtest

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/google/uuid"

	"github.com/okian/showcase/internal/adapters/repository"
	"github.com/okian/showcase/pkg/logger"
)

// Submission is one planned POST /judge/evaluate call.
type Submission struct {
	JudgeID  string  `json:"-"`
	PostID   string  `json:"postId"`
	Score    float64 `json:"score"`
	Feedback string  `json:"feedback,omitempty"`
	Repeat   bool    `json:"-"`
}

// Score bands as fractions of the configured range. Most judges land in the
// middle; the extremes are rare.
var scoreBands = []struct {
	weight   int
	low, top float64
}{
	{weight: 4, low: 0.3, top: 0.7},
	{weight: 2, low: 0.7, top: 0.9},
	{weight: 2, low: 0.1, top: 0.3},
	{weight: 1, low: 0.9, top: 1.0},
	{weight: 1, low: 0.0, top: 0.1},
}

var scoreBandTotal = func() int {
	n := 0
	for _, b := range scoreBands {
		n += b.weight
	}
	return n
}()

// resolvePosts returns the post ids to evaluate.
func resolvePosts(ctx context.Context, cfg *Config) ([]string, error) {
	if len(cfg.PostIDs) > 0 {
		return cfg.PostIDs, nil
	}
	f, err := repository.LoadFixture(cfg.FixtureFile)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(f.Posts))
	for _, p := range f.Posts {
		if p.ID != "" {
			ids = append(ids, p.ID)
		}
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: fixture %s has no posts", ErrInvalidConfig, cfg.FixtureFile)
	}
	logger.Get().Info(ctx, "loaded posts from fixture",
		logger.String("fixture", cfg.FixtureFile),
		logger.Int("posts", len(ids)))
	return ids, nil
}

// judgeIDs returns n judge ids unique to this run, so repeated runs against
// the same server do not collide with earlier evaluations.
func judgeIDs(n int) []string {
	run := uuid.NewString()[:8]
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("load-%s-%03d", run, i)
	}
	return ids
}

// planSubmissions returns one submission per judge and post, plus a share of
// repeats of randomly chosen pairs, in random order.
func planSubmissions(cfg *Config, judges, posts []string, rng *rand.Rand) []Submission {
	unique := len(judges) * len(posts)
	repeats := int(float64(unique) * cfg.DuplicateRatio)

	out := make([]Submission, 0, unique+repeats)
	for _, j := range judges {
		for _, p := range posts {
			out = append(out, Submission{
				JudgeID: j,
				PostID:  p,
				Score:   generateScore(cfg, rng),
			})
		}
	}
	for range repeats {
		orig := out[rng.IntN(unique)]
		out = append(out, Submission{
			JudgeID:  orig.JudgeID,
			PostID:   orig.PostID,
			Score:    generateScore(cfg, rng),
			Feedback: "second opinion",
			Repeat:   true,
		})
	}
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// generateScore draws a score within [MinScore, MaxScore] rounded to one
// decimal place.
func generateScore(cfg *Config, rng *rand.Rand) float64 {
	pick := rng.IntN(scoreBandTotal)
	band := scoreBands[len(scoreBands)-1]
	for _, b := range scoreBands {
		if pick < b.weight {
			band = b
			break
		}
		pick -= b.weight
	}
	span := cfg.MaxScore - cfg.MinScore
	v := cfg.MinScore + span*(band.low+rng.Float64()*(band.top-band.low))
	v = math.Round(v*10) / 10
	return min(max(v, cfg.MinScore), cfg.MaxScore)
}
