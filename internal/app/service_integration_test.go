package service_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/okian/showcase/internal/adapters/http/api"
	"github.com/okian/showcase/internal/adapters/http/swagger"
	service "github.com/okian/showcase/internal/app"
	"github.com/okian/showcase/internal/auth"
	"github.com/okian/showcase/internal/domain/model"
	"github.com/okian/showcase/internal/domain/types"
	"github.com/okian/showcase/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type stack struct {
	svc    *service.Service
	pub    *capturePublisher
	srv    *httptest.Server
	tokens *auth.JWTService
}

func newStack(t *testing.T) *stack {
	t.Helper()
	ctx := context.Background()
	pub := &capturePublisher{}
	svc := service.New(testConfig(), service.WithPublisher(pub), service.WithLogger(logger.Nop()))
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	tokens, err := auth.NewJWTService("integration-secret")
	if err != nil {
		t.Fatalf("jwt: %v", err)
	}

	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(api.Dependencies{
		Evaluations: svc,
		Rankings:    svc,
		Aggregates:  svc,
		Auth:        tokens,
		Stats:       svc,
		Ready:       svc,
	}, api.WithLogger(logger.Nop())).Register(ctx, mux)
	srv := httptest.NewServer(mux)

	t.Cleanup(func() {
		srv.Close()
		svc.Stop(ctx)
	})
	return &stack{svc: svc, pub: pub, srv: srv, tokens: tokens}
}

func (s *stack) call(method, path string, role model.Role, user, body string) (int, []byte, error) {
	tok, err := s.tokens.Issue(user, role)
	if err != nil {
		return 0, nil, err
	}
	req, err := http.NewRequest(method, s.srv.URL+path, strings.NewReader(body))
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	return resp.StatusCode, raw, err
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given the full stack with posts in two categories", t, func() {
		st := newStack(t)
		ctx := context.Background()
		for _, p := range []model.Post{
			{ID: "A", OwnerID: "alice", Category: model.CategoryVisual, Likes: []string{"1", "2", "3", "4", "5", "6", "7", "8", "9", "10"}},
			{ID: "B", OwnerID: "bob", Category: model.CategoryVisual, Likes: []string{"1", "2"}},
			{ID: "C", OwnerID: "carol", Category: model.CategoryLiteral, Likes: []string{"1"}},
		} {
			So(st.svc.SavePost(ctx, p), ShouldBeNil)
		}

		Convey("When one judge submits the same evaluation concurrently", func() {
			const attempts = 20
			var wg sync.WaitGroup
			var mu sync.Mutex
			codes := map[int]int{}
			for i := 0; i < attempts; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					code, _, err := st.call("POST", "/judge/evaluate", model.RoleJudge, "j1", `{"postId":"A","score":6}`)
					if err != nil {
						code = -1
					}
					mu.Lock()
					codes[code]++
					mu.Unlock()
				}()
			}
			wg.Wait()

			Convey("Then exactly one should be created and the rest conflict", func() {
				So(codes[http.StatusCreated], ShouldEqual, 1)
				So(codes[http.StatusConflict], ShouldEqual, attempts-1)
			})

			Convey("And a second judge scores the same post", func() {
				code, _, err := st.call("POST", "/judge/evaluate", model.RoleJudge, "j2", `{"postId":"A","score":8}`)
				So(err, ShouldBeNil)
				So(code, ShouldEqual, http.StatusCreated)

				Convey("Then the visual leaderboard should blend likes and judges", func() {
					code, raw, err := st.call("GET", "/judge/top-ranked", model.RoleUser, "dave", "")
					So(err, ShouldBeNil)
					So(code, ShouldEqual, http.StatusOK)
					var out []types.CategoryRanking
					So(json.Unmarshal(raw, &out), ShouldBeNil)
					So(out[1].Category, ShouldEqual, model.CategoryVisual)
					So(out[1].Top10[0].FinalScore, ShouldAlmostEqual, 82, 1e-9)
					So(out[1].Top10[1].FinalScore, ShouldAlmostEqual, 8, 1e-9)
					So(out[0].Top10[0].Post.ID, ShouldEqual, "C")
				})

				Convey("Then the owner should be notified once per evaluation", func() {
					st.svc.Stop(ctx)
					sent := st.pub.notifications()
					So(len(sent), ShouldEqual, 2)
					So(sent[0].RecipientID, ShouldEqual, "alice")
				})
			})
		})

		Convey("When the docs are requested", func() {
			resp, err := http.Get(st.srv.URL + "/openapi.yaml")
			So(err, ShouldBeNil)
			resp.Body.Close()

			Convey("Then they should be served", func() {
				So(resp.StatusCode, ShouldEqual, http.StatusOK)
			})
		})

		Convey("When readiness is checked", func() {
			resp, err := http.Get(st.srv.URL + "/readyz")
			So(err, ShouldBeNil)
			resp.Body.Close()
			So(resp.StatusCode, ShouldEqual, http.StatusOK)
		})
	})
}
