// Package loadtest drives concurrent judge evaluations against a running
// showcase server and checks the resulting leaderboards for consistency.
package loadtest

import (
	"fmt"
	"time"
)

// Config holds the parameters of one load run.
type Config struct {
	BaseURL string        // Base URL of the service
	Secret  string        // HS256 secret shared with the server
	Timeout time.Duration // HTTP request timeout

	FixtureFile string   // YAML fixture the server was seeded with
	PostIDs     []string // Explicit post ids; overrides FixtureFile

	Judges         int     // Distinct judges, each scoring every post once
	DuplicateRatio float64 // Share of extra submissions that repeat a judge/post pair
	MinScore       float64 // Lowest score to submit
	MaxScore       float64 // Highest score to submit
	TopN           int     // Expected leaderboard length per category

	Workers int     // Concurrent submitters
	RPS     float64 // Request rate cap; zero means unlimited
	Seed    uint64  // Score generator seed; zero picks one from the clock
	Verbose bool    // Log every failed request
}

func (c *Config) validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case c.Secret == "":
		return fmt.Errorf("%w: jwt secret is required", ErrInvalidConfig)
	case len(c.PostIDs) == 0 && c.FixtureFile == "":
		return fmt.Errorf("%w: post ids or a fixture file are required", ErrInvalidConfig)
	case c.Judges <= 0:
		return fmt.Errorf("%w: judges must be positive", ErrInvalidConfig)
	case c.DuplicateRatio < 0 || c.DuplicateRatio > 1:
		return fmt.Errorf("%w: duplicate ratio must be within [0, 1]", ErrInvalidConfig)
	case c.MinScore >= c.MaxScore:
		return fmt.Errorf("%w: min score must be below max score", ErrInvalidConfig)
	case c.Workers <= 0:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	case c.TopN <= 0:
		return fmt.Errorf("%w: top must be positive", ErrInvalidConfig)
	}
	return nil
}

// Stats holds the outcome of a load run.
type Stats struct {
	Planned    int // Submissions sent
	Duplicates int // Of which deliberately repeated a judge/post pair
	Accepted   int // 201 responses
	Conflicts  int // 409 responses
	Rejected   int // Other 4xx responses
	Failed     int // Transport errors and 5xx responses

	Categories      int // Leaderboards returned by /judge/top-ranked
	RankedPosts     int // Entries across those leaderboards
	RankedUsers     int // Entries returned by /judge/rankings
	StartTime       time.Time
	SubmitDuration  time.Duration
	Duration        time.Duration
	SubmitPerSecond float64
}
