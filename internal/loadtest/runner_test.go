package loadtest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/okian/showcase/internal/adapters/http/api"
	service "github.com/okian/showcase/internal/app"
	"github.com/okian/showcase/internal/auth"
	"github.com/okian/showcase/internal/config"
	"github.com/okian/showcase/internal/loadtest"
	"github.com/okian/showcase/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

const secret = "load-secret"

var fixture = filepath.Join("..", "..", "fixtures", "showcase.yaml")

// startServer runs the full API over the development fixture.
func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	ctx := context.Background()

	cfg := config.New()
	cfg.Notifier = config.NotifierNone
	cfg.NotifyWorkers = 2
	cfg.SeedFile = fixture

	svc := service.New(*cfg, service.WithLogger(logger.Nop()))
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start service: %v", err)
	}
	t.Cleanup(func() { svc.Stop(ctx) })

	tokens, err := auth.NewJWTService(secret)
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}

	mux := http.NewServeMux()
	api.NewServer(api.Dependencies{
		Evaluations: svc,
		Rankings:    svc,
		Aggregates:  svc,
		Auth:        tokens,
		Stats:       svc,
		Ready:       svc,
	}, api.WithLogger(logger.Nop())).Register(ctx, mux)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func baseConfig(url string) *loadtest.Config {
	return &loadtest.Config{
		BaseURL:        url,
		Secret:         secret,
		Timeout:        5 * time.Second,
		FixtureFile:    fixture,
		Judges:         5,
		DuplicateRatio: 0.5,
		MinScore:       0,
		MaxScore:       10,
		TopN:           10,
		Workers:        8,
		Seed:           42,
	}
}

func TestRun(t *testing.T) {
	Convey("Given a seeded server", t, func() {
		srv := startServer(t)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		Convey("When five judges score every post with repeats", func() {
			stats, err := loadtest.Run(ctx, baseConfig(srv.URL))

			Convey("Then every repeat should be a conflict", func() {
				So(err, ShouldBeNil)
				So(stats.Planned, ShouldEqual, 45+22)
				So(stats.Duplicates, ShouldEqual, 22)
				So(stats.Accepted, ShouldEqual, 45)
				So(stats.Conflicts, ShouldEqual, 22)
				So(stats.Failed, ShouldEqual, 0)
				So(stats.Rejected, ShouldEqual, 0)
			})

			Convey("Then the leaderboards should cover every seeded post", func() {
				So(stats.Categories, ShouldEqual, 3)
				So(stats.RankedPosts, ShouldEqual, 9)
				So(stats.RankedUsers, ShouldEqual, 4)
			})
		})

		Convey("When the run is paced and repeated", func() {
			cfg := baseConfig(srv.URL)
			cfg.Judges = 1
			cfg.DuplicateRatio = 0
			cfg.RPS = 200
			cfg.PostIDs = []string{"vis-orchard", "voc-hymn"}

			first, err := loadtest.Run(ctx, cfg)
			So(err, ShouldBeNil)
			second, err := loadtest.Run(ctx, cfg)

			Convey("Then fresh judge ids should keep both runs clean", func() {
				So(err, ShouldBeNil)
				So(first.Accepted, ShouldEqual, 2)
				So(second.Accepted, ShouldEqual, 2)
			})
		})

		Convey("When the secret does not match", func() {
			cfg := baseConfig(srv.URL)
			cfg.Secret = "wrong"
			cfg.Judges = 1
			stats, err := loadtest.Run(ctx, cfg)

			Convey("Then verification should fail on rejected submissions", func() {
				So(errors.Is(err, loadtest.ErrMismatch) || errors.Is(err, loadtest.ErrUnexpectedStatus), ShouldBeTrue)
				So(stats, ShouldNotBeNil)
				So(stats.Rejected, ShouldEqual, stats.Planned)
			})
		})

		Convey("When a post does not exist", func() {
			cfg := baseConfig(srv.URL)
			cfg.Judges = 1
			cfg.DuplicateRatio = 0
			cfg.PostIDs = []string{"missing"}
			stats, err := loadtest.Run(ctx, cfg)

			Convey("Then the 404 should count as rejected", func() {
				So(errors.Is(err, loadtest.ErrMismatch), ShouldBeTrue)
				So(stats.Rejected, ShouldEqual, 1)
			})
		})
	})

	Convey("Given an invalid configuration", t, func() {
		cfg := baseConfig("http://127.0.0.1:1")
		cfg.Secret = ""

		Convey("Then the run should not start", func() {
			_, err := loadtest.Run(context.Background(), cfg)
			So(errors.Is(err, loadtest.ErrInvalidConfig), ShouldBeTrue)
		})
	})

	Convey("Given a server that is not ready", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		Convey("Then the run should stop before submitting", func() {
			stats, err := loadtest.Run(context.Background(), baseConfig(srv.URL))
			So(errors.Is(err, loadtest.ErrUnexpectedStatus), ShouldBeTrue)
			So(stats, ShouldBeNil)
		})
	})
}
