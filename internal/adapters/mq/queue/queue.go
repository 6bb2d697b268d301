// Package queue holds judge notifications between the request path and the
// delivery workers.
//
// Enqueue never blocks: when the queue is full the notification is refused
// and the caller decides what to do (the dispatcher drops it).
package queue

import (
	"context"
	"sync"

	"github.com/okian/showcase/internal/domain/model"
	"github.com/okian/showcase/pkg/metrics"
)

const defaultQueueCapacity = 10_000

// Notification is the payload flowing through the queue.
type Notification = model.Notification

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds n to the queue. Returns ErrFull or ErrClosed when refused.
	Enqueue(ctx context.Context, n Notification) error

	// Dequeue returns the channel workers receive from. It is closed, after
	// the remaining items are drained, once the queue is closed.
	Dequeue() <-chan Notification

	// Len returns the number of pending notifications.
	Len() int

	// Close stops accepting notifications.
	Close() error

	// IsClosed reports whether Close was called.
	IsClosed() bool
}

// InMemoryQueue implements Queue using a buffered channel.
type InMemoryQueue struct {
	items    chan Notification
	capacity int

	mu     sync.RWMutex
	closed bool
}

// NewInMemoryQueue creates a new in-memory queue with configuration options.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultQueueCapacity,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.items = make(chan Notification, q.capacity)

	metrics.UpdateQueueCapacity(q.capacity)
	metrics.UpdateQueueSize(0)
	metrics.UpdateQueueUtilization(0.0)
	return q
}

// Enqueue implements Queue.
func (q *InMemoryQueue) Enqueue(ctx context.Context, n Notification) error { //nolint:gocritic // hugeParam: passed by value for channel semantics
	if err := ctx.Err(); err != nil {
		return err
	}

	// Read lock keeps Close from closing the channel mid-send.
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		metrics.RecordErrorByComponent("queue", "closed")
		return ErrClosed
	}

	select {
	case q.items <- n:
		metrics.RecordNotificationEnqueued()
		q.observe()
		return nil
	default:
		metrics.RecordErrorByComponent("queue", "queue_full")
		return ErrFull
	}
}

// Dequeue implements Queue.
func (q *InMemoryQueue) Dequeue() <-chan Notification {
	return q.items
}

// Len implements Queue.
func (q *InMemoryQueue) Len() int {
	return q.observe()
}

func (q *InMemoryQueue) observe() int {
	size := len(q.items)
	metrics.UpdateQueueSize(size)
	metrics.UpdateQueueUtilization(float64(size) / float64(q.capacity))
	return size
}

// Close implements Queue. Closing twice is a no-op.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}
	close(q.items)
	q.closed = true
	return nil
}

// IsClosed implements Queue.
func (q *InMemoryQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
