package loadtest

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/okian/showcase/internal/domain/types"
)

const scoreTolerance = 1e-6

// verifyCounts checks that every unique judge/post pair was accepted once
// and every repeat was refused as a conflict.
func verifyCounts(s *Stats) error {
	var errs []error
	if s.Failed > 0 {
		errs = append(errs, fmt.Errorf("%w: %d submissions failed", ErrMismatch, s.Failed))
	}
	if s.Rejected > 0 {
		errs = append(errs, fmt.Errorf("%w: %d submissions were rejected", ErrMismatch, s.Rejected))
	}
	if s.Failed == 0 && s.Rejected == 0 {
		if want := s.Planned - s.Duplicates; s.Accepted != want {
			errs = append(errs, fmt.Errorf("%w: accepted %d evaluations, want %d", ErrMismatch, s.Accepted, want))
		}
		if s.Conflicts != s.Duplicates {
			errs = append(errs, fmt.Errorf("%w: got %d conflicts, want %d", ErrMismatch, s.Conflicts, s.Duplicates))
		}
	}
	return errors.Join(errs...)
}

// verifyLeaderboards checks ordering, ranks, length and score arithmetic of
// every category leaderboard.
func verifyLeaderboards(leaderboards []types.CategoryRanking, topN int) error {
	var errs []error
	seen := make(map[string]bool, len(leaderboards))
	for _, lb := range leaderboards {
		c := string(lb.Category)
		if seen[c] {
			errs = append(errs, fmt.Errorf("%w: category %s listed twice", ErrMismatch, c))
		}
		seen[c] = true

		if len(lb.Top10) > topN {
			errs = append(errs, fmt.Errorf("%w: %s has %d entries, limit %d", ErrMismatch, c, len(lb.Top10), topN))
		}
		for i, e := range lb.Top10 {
			if e.Rank != i+1 {
				errs = append(errs, fmt.Errorf("%w: %s entry %d has rank %d", ErrMismatch, c, i, e.Rank))
			}
			if e.Post.Category != "" && e.Post.Category != lb.Category {
				errs = append(errs, fmt.Errorf("%w: post %s of %s listed under %s", ErrMismatch, e.Post.ID, e.Post.Category, c))
			}
			if math.Abs(e.FinalScore-(e.UserScore+e.JudgeScore)) > scoreTolerance {
				errs = append(errs, fmt.Errorf("%w: %s post %s final %.6f != %.6f + %.6f",
					ErrMismatch, c, e.Post.ID, e.FinalScore, e.UserScore, e.JudgeScore))
			}
			if i > 0 && e.FinalScore > lb.Top10[i-1].FinalScore+scoreTolerance {
				errs = append(errs, fmt.Errorf("%w: %s not sorted at rank %d", ErrMismatch, c, e.Rank))
			}
		}
	}
	return errors.Join(errs...)
}

// verifyUserRankings checks that users are ordered by average score desc,
// then user id asc, and that each average matches its total.
func verifyUserRankings(users []types.UserAggregate) error {
	var errs []error
	for i, u := range users {
		if u.Evaluations <= 0 {
			errs = append(errs, fmt.Errorf("%w: user %s has %d evaluations", ErrMismatch, u.UserID, u.Evaluations))
			continue
		}
		if math.Abs(u.AverageScore-u.TotalScore/float64(u.Evaluations)) > scoreTolerance {
			errs = append(errs, fmt.Errorf("%w: user %s average %.6f does not match total %.6f over %d",
				ErrMismatch, u.UserID, u.AverageScore, u.TotalScore, u.Evaluations))
		}
		if i == 0 {
			continue
		}
		prev := users[i-1]
		switch {
		case u.AverageScore > prev.AverageScore+scoreTolerance:
			errs = append(errs, fmt.Errorf("%w: user rankings not sorted at %s", ErrMismatch, u.UserID))
		case u.AverageScore == prev.AverageScore && strings.Compare(prev.UserID, u.UserID) > 0:
			errs = append(errs, fmt.Errorf("%w: tie between %s and %s not ordered by id", ErrMismatch, prev.UserID, u.UserID))
		}
	}
	return errors.Join(errs...)
}
