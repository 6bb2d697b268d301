package types_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/okian/showcase/internal/domain/model"
	types "github.com/okian/showcase/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSummarizePost(t *testing.T) {
	Convey("Given a post", t, func() {
		created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		post := model.Post{
			ID:        "p1",
			OwnerID:   "u1",
			Title:     "Night song",
			Category:  model.CategoryVocal,
			Likes:     []string{"a", "b"},
			CreatedAt: created,
		}

		Convey("When summarizing it", func() {
			s := types.SummarizePost(post)

			Convey("Then likes should be counted", func() {
				So(s.ID, ShouldEqual, "p1")
				So(s.OwnerID, ShouldEqual, "u1")
				So(s.Title, ShouldEqual, "Night song")
				So(s.Category, ShouldEqual, model.CategoryVocal)
				So(s.Likes, ShouldEqual, 2)
				So(s.CreatedAt, ShouldEqual, created)
			})
		})
	})
}

func TestCategoryRankingJSON(t *testing.T) {
	Convey("Given an empty category ranking", t, func() {
		r := types.CategoryRanking{Category: model.CategoryLiteral, Top10: []types.RankedPost{}}

		Convey("When encoding it", func() {
			b, err := json.Marshal(r)

			Convey("Then top10 should be an empty array", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, `{"category":"literal","top10":[]}`)
			})
		})
	})

	Convey("Given a ranked post", t, func() {
		r := types.RankedPost{
			Post:       types.PostSummary{ID: "p1", Likes: 3},
			UserScore:  40,
			JudgeScore: 42,
			FinalScore: 82,
			Rank:       1,
		}

		Convey("When encoding it", func() {
			b, err := json.Marshal(r)

			Convey("Then it should use camelCase keys", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual,
					`{"post":{"id":"p1","likes":3},"userScore":40,"judgeScore":42,"finalScore":82,"rank":1}`)
			})
		})
	})
}

func TestUserAggregateJSON(t *testing.T) {
	Convey("Given a user aggregate", t, func() {
		a := types.UserAggregate{UserID: "u1", AverageScore: 7, TotalScore: 21, Evaluations: 3}

		Convey("When encoding it", func() {
			b, err := json.Marshal(a)

			Convey("Then it should expose the aggregate keys", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, `{"userId":"u1","averageScore":7,"totalScore":21,"evaluations":3}`)
			})
		})
	})
}
