// Package types contains read shapes shared by the domain and the API.
package types

import (
	"time"

	"github.com/okian/showcase/internal/domain/model"
)

// PostSummary is the public view of a post inside rankings and lists.
type PostSummary struct {
	ID        string         `json:"id"`
	OwnerID   string         `json:"ownerId,omitempty"`
	Title     string         `json:"title,omitempty"`
	Category  model.Category `json:"category,omitempty"`
	Likes     int            `json:"likes"`
	CreatedAt time.Time      `json:"createdAt,omitzero"`
}

// SummarizePost builds the public view of p.
func SummarizePost(p model.Post) PostSummary {
	return PostSummary{
		ID:        p.ID,
		OwnerID:   p.OwnerID,
		Title:     p.Title,
		Category:  p.Category,
		Likes:     p.LikeCount(),
		CreatedAt: p.CreatedAt,
	}
}

// RankedPost is a leaderboard entry with its score breakdown.
type RankedPost struct {
	Post       PostSummary `json:"post"`
	UserScore  float64     `json:"userScore"`
	JudgeScore float64     `json:"judgeScore"`
	FinalScore float64     `json:"finalScore"`
	Rank       int         `json:"rank"`
}

// CategoryRanking is the top of one category's leaderboard.
type CategoryRanking struct {
	Category model.Category `json:"category"`
	Top10    []RankedPost   `json:"top10"`
}

// UserAggregate summarizes the judge scores a user's posts received.
type UserAggregate struct {
	UserID       string  `json:"userId"`
	AverageScore float64 `json:"averageScore"`
	TotalScore   float64 `json:"totalScore"`
	Evaluations  int     `json:"evaluations"`
}

// EvaluationView is an evaluation joined with the post it scores.
type EvaluationView struct {
	ID        string      `json:"id"`
	JudgeID   string      `json:"judgeId"`
	Post      PostSummary `json:"post"`
	Score     float64     `json:"score"`
	Feedback  string      `json:"feedback,omitempty"`
	CreatedAt time.Time   `json:"createdAt"`
}
