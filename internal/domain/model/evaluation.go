package model

import "time"

// Evaluation is a judge's score of a post. At most one exists per
// (PostID, JudgeID) pair and it is never updated.
type Evaluation struct {
	ID        string
	PostID    string
	JudgeID   string
	Score     float64
	Feedback  string
	CreatedAt time.Time
}

// NotificationTypeJudge marks notifications raised by judge evaluations.
const NotificationTypeJudge = "judge"

// JudgeNotificationMessage is the text delivered to the post owner.
const JudgeNotificationMessage = "Your post was evaluated by a judge."

// Notification informs a user about activity on their content.
type Notification struct {
	ID           string    `json:"id"`
	RecipientID  string    `json:"recipientId"`
	ActorID      string    `json:"actorId"`
	Type         string    `json:"type"`
	Message      string    `json:"message"`
	RelatedID    string    `json:"relatedId"` // post id
	EvaluationID string    `json:"evaluationId"`
	CreatedAt    time.Time `json:"createdAt"`
}
