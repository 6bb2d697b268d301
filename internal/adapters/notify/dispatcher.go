// Package notify hands judge notifications off the request path and delivers
// them to a log, a Redis channel or a Kafka topic.
package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/okian/showcase/internal/adapters/mq/queue"
	"github.com/okian/showcase/internal/domain/dedupe"
	"github.com/okian/showcase/internal/domain/model"
	"github.com/okian/showcase/pkg/logger"
	"github.com/okian/showcase/pkg/metrics"
)

// Enqueuer accepts notifications without blocking.
type Enqueuer interface {
	Enqueue(ctx context.Context, n model.Notification) error
}

// Dispatcher queues each notification at most once per evaluation.
type Dispatcher struct {
	queue   Enqueuer
	deduper dedupe.Deduper
	log     logger.Logger
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithDeduper replaces the default in-memory deduper.
func WithDeduper(d dedupe.Deduper) DispatcherOption {
	return func(x *Dispatcher) {
		if d != nil {
			x.deduper = d
		}
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(l logger.Logger) DispatcherOption {
	return func(x *Dispatcher) {
		if l != nil {
			x.log = l
		}
	}
}

// NewDispatcher creates a dispatcher feeding q.
func NewDispatcher(q Enqueuer, opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{queue: q}
	for _, opt := range opts {
		opt(d)
	}
	if d.deduper == nil {
		d.deduper = dedupe.NewInMemoryDeduper()
	}
	if d.log == nil {
		d.log = logger.Get().Named("notify")
	}
	return d
}

// Notify queues n for delivery. Handing over the same evaluation a second
// time, e.g. a retried Notify, is ignored; separate evaluations of one post
// are each delivered.
func (d *Dispatcher) Notify(ctx context.Context, n model.Notification) error {
	if n.RecipientID == "" {
		return ErrNoRecipient
	}
	key := n.EvaluationID
	if key == "" {
		key = n.ID
	}
	if d.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordNotificationDuplicate()
		d.log.Debug(ctx, "duplicate notification ignored", logger.String("key", key))
		return nil
	}

	if err := d.queue.Enqueue(ctx, n); err != nil {
		d.deduper.Unrecord(ctx, key)
		metrics.RecordNotificationDropped()
		if errors.Is(err, queue.ErrFull) {
			return fmt.Errorf("%w: notification %s", ErrQueueFull, n.ID)
		}
		return fmt.Errorf("enqueue notification %s: %w", n.ID, err)
	}
	return nil
}
