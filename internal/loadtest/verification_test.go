package loadtest

import (
	"errors"
	"testing"

	"github.com/okian/showcase/internal/domain/model"
	"github.com/okian/showcase/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func ranked(id string, rank int, user, judge float64) types.RankedPost {
	return types.RankedPost{
		Post:       types.PostSummary{ID: id, Category: model.CategoryVisual},
		UserScore:  user,
		JudgeScore: judge,
		FinalScore: user + judge,
		Rank:       rank,
	}
}

func TestVerifyCounts(t *testing.T) {
	Convey("Given a clean run", t, func() {
		s := &Stats{Planned: 12, Duplicates: 2, Accepted: 10, Conflicts: 2}
		So(verifyCounts(s), ShouldBeNil)
	})

	Convey("Given a run that accepted a repeat", t, func() {
		s := &Stats{Planned: 12, Duplicates: 2, Accepted: 11, Conflicts: 1}
		err := verifyCounts(s)
		So(errors.Is(err, ErrMismatch), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "accepted 11 evaluations, want 10")
	})

	Convey("Given a run with failures", t, func() {
		s := &Stats{Planned: 4, Accepted: 3, Failed: 1}
		err := verifyCounts(s)
		So(errors.Is(err, ErrMismatch), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "1 submissions failed")
	})
}

func TestVerifyLeaderboards(t *testing.T) {
	Convey("Given a well formed leaderboard", t, func() {
		lbs := []types.CategoryRanking{
			{Category: model.CategoryLiteral, Top10: []types.RankedPost{}},
			{Category: model.CategoryVisual, Top10: []types.RankedPost{
				ranked("a", 1, 40, 42),
				ranked("b", 2, 8, 0),
			}},
		}
		So(verifyLeaderboards(lbs, 10), ShouldBeNil)

		Convey("Then a shorter limit should be reported", func() {
			So(errors.Is(verifyLeaderboards(lbs, 1), ErrMismatch), ShouldBeTrue)
		})
	})

	Convey("Given entries out of order", t, func() {
		lbs := []types.CategoryRanking{{Category: model.CategoryVisual, Top10: []types.RankedPost{
			ranked("b", 1, 8, 0),
			ranked("a", 2, 40, 42),
		}}}
		err := verifyLeaderboards(lbs, 10)
		So(errors.Is(err, ErrMismatch), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "not sorted")
	})

	Convey("Given a final score that is not the sum of its parts", t, func() {
		bad := ranked("a", 1, 40, 42)
		bad.FinalScore = 90
		lbs := []types.CategoryRanking{{Category: model.CategoryVisual, Top10: []types.RankedPost{bad}}}
		So(errors.Is(verifyLeaderboards(lbs, 10), ErrMismatch), ShouldBeTrue)
	})

	Convey("Given a post under the wrong category and a bad rank", t, func() {
		p := ranked("a", 3, 1, 1)
		lbs := []types.CategoryRanking{{Category: model.CategoryVocal, Top10: []types.RankedPost{p}}}
		err := verifyLeaderboards(lbs, 10)
		So(err.Error(), ShouldContainSubstring, "listed under vocal")
		So(err.Error(), ShouldContainSubstring, "has rank 3")
	})
}

func TestVerifyUserRankings(t *testing.T) {
	Convey("Given users sorted by average then id", t, func() {
		users := []types.UserAggregate{
			{UserID: "zoe", AverageScore: 9, TotalScore: 18, Evaluations: 2},
			{UserID: "amy", AverageScore: 7, TotalScore: 7, Evaluations: 1},
			{UserID: "bob", AverageScore: 7, TotalScore: 21, Evaluations: 3},
		}
		So(verifyUserRankings(users), ShouldBeNil)
		So(verifyUserRankings(nil), ShouldBeNil)
	})

	Convey("Given a tie in the wrong id order", t, func() {
		users := []types.UserAggregate{
			{UserID: "bob", AverageScore: 7, TotalScore: 7, Evaluations: 1},
			{UserID: "amy", AverageScore: 7, TotalScore: 7, Evaluations: 1},
		}
		err := verifyUserRankings(users)
		So(errors.Is(err, ErrMismatch), ShouldBeTrue)
		So(err.Error(), ShouldContainSubstring, "not ordered by id")
	})

	Convey("Given an average that contradicts the total", t, func() {
		users := []types.UserAggregate{{UserID: "amy", AverageScore: 5, TotalScore: 7, Evaluations: 1}}
		So(errors.Is(verifyUserRankings(users), ErrMismatch), ShouldBeTrue)
	})
}
