package loadtest

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/showcase/pkg/logger"
)

const logFilePermission = 0600

// SetupLogging sends log output to stdout and, when logFile is set, to that
// file as well. The returned func closes the file.
func SetupLogging(logFile string) (func() error, error) {
	if logFile == "" {
		if err := logger.Init(); err != nil {
			return nil, fmt.Errorf("failed to initialize logger: %w", err)
		}
		return func() error { return nil }, nil
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.InitWithWriter(io.MultiWriter(os.Stdout, file)); err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return file.Close, nil
}

// ShowHelp prints usage information for the judge load tool.
func ShowHelp() {
	os.Stdout.WriteString(`Showcase Judge Load Tool
========================

Submits evaluations from many judges at once, repeats a share of them to
exercise the one-evaluation-per-judge rule, then checks the leaderboards.

The server must be running with the same jwt_secret and with posts seeded,
for example via SHOWCASE_SEED_FILE.

Usage:
  go run ./cmd/judge-load [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -secret string
        JWT secret shared with the server (default $SHOWCASE_JWT_SECRET)
  -fixture string
        Seed fixture to read post ids from (default "fixtures/showcase.yaml")
  -posts string
        Comma separated post ids; overrides -fixture
  -judges int
        Number of distinct judges (default 20)
  -duplicates float
        Share of extra, repeated submissions (default 0.1)
  -workers int
        Number of concurrent submitters (default CPU cores * 2)
  -rps float
        Request rate cap, 0 for unlimited (default 0)
  -top int
        Expected leaderboard length per category (default 10)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Also write logs to this file
  -verbose
        Log every failed request
  -help
        Show this help message

Examples:
  SHOWCASE_JWT_SECRET=dev go run ./cmd/judge-load
  go run ./cmd/judge-load -secret dev -judges 200 -workers 32 -rps 500
  go run ./cmd/judge-load -secret dev -posts p1,p2,p3 -duplicates 0.5
`)
}
