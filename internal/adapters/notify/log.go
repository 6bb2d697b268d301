package notify

import (
	"context"

	"github.com/okian/showcase/internal/domain/model"
	"github.com/okian/showcase/pkg/logger"
)

// LogPublisher writes notifications to the structured log.
type LogPublisher struct {
	log logger.Logger
}

// NewLogPublisher creates a publisher that logs with l.
func NewLogPublisher(l logger.Logger) *LogPublisher {
	if l == nil {
		l = logger.Get().Named("notifications")
	}
	return &LogPublisher{log: l}
}

func (p *LogPublisher) Publish(ctx context.Context, n model.Notification) error {
	p.log.Info(ctx, "notification",
		logger.String("id", n.ID),
		logger.String("recipient_id", n.RecipientID),
		logger.String("actor_id", n.ActorID),
		logger.String("type", n.Type),
		logger.String("related_id", n.RelatedID),
		logger.String("message", n.Message))
	return nil
}

func (p *LogPublisher) Close() error { return nil }

// NopPublisher discards notifications.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, model.Notification) error { return nil }

func (NopPublisher) Close() error { return nil }
