package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/okian/showcase/internal/loadtest"
)

// Default configuration constants.
const (
	defaultJudges      = 20
	defaultDuplicates  = 0.1
	defaultTopN        = 10
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		secret     = flag.String("secret", os.Getenv("SHOWCASE_JWT_SECRET"), "JWT secret shared with the server")
		fixture    = flag.String("fixture", "fixtures/showcase.yaml", "Seed fixture to read post ids from")
		posts      = flag.String("posts", "", "Comma separated post ids; overrides -fixture")
		judges     = flag.Int("judges", defaultJudges, "Number of distinct judges")
		duplicates = flag.Float64("duplicates", defaultDuplicates, "Share of extra, repeated submissions")
		minScore   = flag.Float64("min-score", 0, "Lowest score to submit")
		maxScore   = flag.Float64("max-score", 10, "Highest score to submit")
		topN       = flag.Int("top", defaultTopN, "Expected leaderboard length per category")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		rps        = flag.Float64("rps", 0, "Request rate cap, 0 for unlimited")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile    = flag.String("log", "", "Also write logs to this file")
		verbose    = flag.Bool("verbose", false, "Log every failed request")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		loadtest.ShowHelp()
		return
	}

	closeLog, err := loadtest.SetupLogging(*logFile)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)

	cfg := &loadtest.Config{
		BaseURL:        *baseURL,
		Secret:         *secret,
		Timeout:        *timeout,
		FixtureFile:    *fixture,
		PostIDs:        splitList(*posts),
		Judges:         *judges,
		DuplicateRatio: *duplicates,
		MinScore:       *minScore,
		MaxScore:       *maxScore,
		TopN:           *topN,
		Workers:        *workers,
		RPS:            *rps,
		Verbose:        *verbose,
	}

	_, err = loadtest.Run(ctx, cfg)
	cancel()
	_ = closeLog()
	if err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
