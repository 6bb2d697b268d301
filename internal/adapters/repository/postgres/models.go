package postgres

import (
	"time"

	"github.com/okian/showcase/internal/domain/model"
)

type postModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	OwnerID   string    `gorm:"column:owner_id"`
	Title     string    `gorm:"column:title"`
	Category  string    `gorm:"column:category"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (postModel) TableName() string { return "posts" }

type postLikeModel struct {
	PostID   string `gorm:"column:post_id;primaryKey"`
	UserID   string `gorm:"column:user_id;primaryKey"`
	Position int    `gorm:"column:position"`
}

func (postLikeModel) TableName() string { return "post_likes" }

type evaluationModel struct {
	ID        string    `gorm:"column:id;type:uuid;primaryKey"`
	PostID    string    `gorm:"column:post_id"`
	JudgeID   string    `gorm:"column:judge_id"`
	Score     float64   `gorm:"column:score"`
	Feedback  string    `gorm:"column:feedback"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (evaluationModel) TableName() string { return "evaluations" }

func toPost(m postModel, likes []string) model.Post {
	return model.Post{
		ID:        m.ID,
		OwnerID:   m.OwnerID,
		Title:     m.Title,
		Category:  model.Category(m.Category),
		Likes:     likes,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func fromEvaluation(e model.Evaluation) evaluationModel {
	return evaluationModel{
		ID:        e.ID,
		PostID:    e.PostID,
		JudgeID:   e.JudgeID,
		Score:     e.Score,
		Feedback:  e.Feedback,
		CreatedAt: e.CreatedAt,
	}
}

func toEvaluation(m evaluationModel) model.Evaluation {
	return model.Evaluation{
		ID:        m.ID,
		PostID:    m.PostID,
		JudgeID:   m.JudgeID,
		Score:     m.Score,
		Feedback:  m.Feedback,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func toEvaluations(rows []evaluationModel) []model.Evaluation {
	out := make([]model.Evaluation, 0, len(rows))
	for _, r := range rows {
		out = append(out, toEvaluation(r))
	}
	return out
}
