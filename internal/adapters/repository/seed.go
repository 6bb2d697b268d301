package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/okian/showcase/internal/domain/model"
)

// Fixture is the YAML seed document for development and load testing.
type Fixture struct {
	Posts       []FixturePost       `yaml:"posts"`
	Evaluations []FixtureEvaluation `yaml:"evaluations"`
}

// FixturePost is one seeded post.
type FixturePost struct {
	ID        string    `yaml:"id"`
	Owner     string    `yaml:"owner"`
	Title     string    `yaml:"title"`
	Category  string    `yaml:"category"`
	Likes     []string  `yaml:"likes"`
	CreatedAt time.Time `yaml:"created_at"`
}

// FixtureEvaluation is one seeded evaluation.
type FixtureEvaluation struct {
	Post     string  `yaml:"post"`
	Judge    string  `yaml:"judge"`
	Score    float64 `yaml:"score"`
	Feedback string  `yaml:"feedback"`
}

// LoadFixture reads and parses a YAML fixture file.
func LoadFixture(path string) (*Fixture, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", path, err)
	}
	return ParseFixture(raw)
}

// ParseFixture parses a YAML fixture document.
func ParseFixture(raw []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}

// SeedResult counts what Seed wrote.
type SeedResult struct {
	Posts       int
	Evaluations int
	Skipped     int // duplicate evaluations
}

// Seed writes the fixture's posts and evaluations. Duplicate evaluations are
// skipped so a fixture can be applied more than once.
func Seed(ctx context.Context, posts PostWriter, evaluations EvaluationStore, f *Fixture) (SeedResult, error) {
	var res SeedResult
	if f == nil {
		return res, nil
	}

	for _, fp := range f.Posts {
		category, err := model.ParseCategory(fp.Category)
		if err != nil {
			return res, fmt.Errorf("%w: post %s: %w", ErrInvalidPost, fp.ID, err)
		}
		p := model.Post{
			ID:        fp.ID,
			OwnerID:   fp.Owner,
			Title:     fp.Title,
			Category:  category,
			Likes:     model.UniqueLikes(fp.Likes),
			CreatedAt: fp.CreatedAt,
		}
		if err := posts.SavePost(ctx, p); err != nil {
			return res, fmt.Errorf("seed post %s: %w", fp.ID, err)
		}
		res.Posts++
	}

	for _, fe := range f.Evaluations {
		e := model.Evaluation{
			ID:        uuid.NewString(),
			PostID:    fe.Post,
			JudgeID:   fe.Judge,
			Score:     fe.Score,
			Feedback:  fe.Feedback,
			CreatedAt: time.Now().UTC(),
		}
		err := evaluations.Insert(ctx, e)
		switch {
		case errors.Is(err, ErrDuplicate):
			res.Skipped++
		case err != nil:
			return res, fmt.Errorf("seed evaluation %s/%s: %w", fe.Post, fe.Judge, err)
		default:
			res.Evaluations++
		}
	}
	return res, nil
}
