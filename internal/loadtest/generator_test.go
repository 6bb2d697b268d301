package loadtest

import (
	"context"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestPlanSubmissions(t *testing.T) {
	Convey("Given three judges and four posts", t, func() {
		cfg := &Config{DuplicateRatio: 0.5, MinScore: 0, MaxScore: 10}
		judges := judgeIDs(3)
		posts := []string{"p1", "p2", "p3", "p4"}

		plan := planSubmissions(cfg, judges, posts, rand.New(rand.NewPCG(7, 11)))

		Convey("Then every pair should appear once plus the repeats", func() {
			So(len(plan), ShouldEqual, 12+6)

			firsts := map[string]int{}
			repeats := 0
			for _, s := range plan {
				key := s.JudgeID + "/" + s.PostID
				if s.Repeat {
					repeats++
					continue
				}
				firsts[key]++
			}
			So(repeats, ShouldEqual, 6)
			So(len(firsts), ShouldEqual, 12)
			for _, n := range firsts {
				So(n, ShouldEqual, 1)
			}
		})

		Convey("Then repeats should only target planned pairs", func() {
			pairs := map[string]bool{}
			for _, s := range plan {
				if !s.Repeat {
					pairs[s.JudgeID+"/"+s.PostID] = true
				}
			}
			for _, s := range plan {
				if s.Repeat {
					So(pairs[s.JudgeID+"/"+s.PostID], ShouldBeTrue)
				}
			}
		})

		Convey("Then every score should be within range", func() {
			for _, s := range plan {
				So(s.Score, ShouldBeBetweenOrEqual, 0.0, 10.0)
			}
		})

		Convey("Then the same seed should give the same plan", func() {
			again := planSubmissions(cfg, judges, posts, rand.New(rand.NewPCG(7, 11)))
			So(again, ShouldResemble, plan)
		})
	})

	Convey("Given a zero duplicate ratio", t, func() {
		cfg := &Config{MinScore: 1, MaxScore: 5}
		plan := planSubmissions(cfg, judgeIDs(2), []string{"a"}, rand.New(rand.NewPCG(1, 2)))

		Convey("Then no repeats should be planned", func() {
			So(len(plan), ShouldEqual, 2)
			for _, s := range plan {
				So(s.Repeat, ShouldBeFalse)
				So(s.Score, ShouldBeBetweenOrEqual, 1.0, 5.0)
			}
		})
	})
}

func TestJudgeIDs(t *testing.T) {
	Convey("Given two runs", t, func() {
		a, b := judgeIDs(2), judgeIDs(2)

		Convey("Then ids should be distinct within and across runs", func() {
			So(a[0], ShouldNotEqual, a[1])
			So(a[0], ShouldNotEqual, b[0])
			So(strings.HasPrefix(a[0], "load-"), ShouldBeTrue)
		})
	})
}

func TestResolvePosts(t *testing.T) {
	ctx := context.Background()

	Convey("Given explicit post ids", t, func() {
		cfg := &Config{PostIDs: []string{"x", "y"}, FixtureFile: "ignored.yaml"}

		Convey("Then they should win over the fixture", func() {
			ids, err := resolvePosts(ctx, cfg)
			So(err, ShouldBeNil)
			So(ids, ShouldResemble, []string{"x", "y"})
		})
	})

	Convey("Given the development fixture", t, func() {
		cfg := &Config{FixtureFile: filepath.Join("..", "..", "fixtures", "showcase.yaml")}

		Convey("Then every seeded post should be returned", func() {
			ids, err := resolvePosts(ctx, cfg)
			So(err, ShouldBeNil)
			So(len(ids), ShouldEqual, 9)
			So(ids[0], ShouldEqual, "lit-harbor")
		})
	})

	Convey("Given a fixture without posts", t, func() {
		path := filepath.Join(t.TempDir(), "empty.yaml")
		So(os.WriteFile(path, []byte("posts: []\n"), 0o600), ShouldBeNil)

		Convey("Then it should be rejected", func() {
			_, err := resolvePosts(ctx, &Config{FixtureFile: path})
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "has no posts")
		})
	})
}
