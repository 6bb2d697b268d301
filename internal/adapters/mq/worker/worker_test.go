package worker_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/showcase/internal/adapters/mq/queue"
	"github.com/okian/showcase/internal/adapters/mq/worker"
	"github.com/okian/showcase/internal/domain/model"
	logging "github.com/okian/showcase/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

type mockQueue struct {
	items chan model.Notification
}

func newMockQueue() *mockQueue {
	return &mockQueue{items: make(chan model.Notification, 10)}
}

func (mq *mockQueue) Dequeue() <-chan model.Notification { return mq.items }

type mockPublisher struct {
	mu        sync.Mutex
	published []string
	failFor   map[string]error
	delivered chan string
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{
		failFor:   make(map[string]error),
		delivered: make(chan string, 100),
	}
}

func (mp *mockPublisher) Publish(_ context.Context, n model.Notification) error {
	mp.mu.Lock()
	err := mp.failFor[n.ID]
	if err == nil {
		mp.published = append(mp.published, n.ID)
	}
	mp.mu.Unlock()
	mp.delivered <- n.ID
	return err
}

func (mp *mockPublisher) setError(id string, err error) {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	mp.failFor[id] = err
}

func (mp *mockPublisher) ids() []string {
	mp.mu.Lock()
	defer mp.mu.Unlock()
	return append([]string(nil), mp.published...)
}

func (mp *mockPublisher) await(n int) {
	timeout := time.After(2 * time.Second)
	for i := 0; i < n; i++ {
		select {
		case <-mp.delivered:
		case <-timeout:
			return
		}
	}
}

func note(id string) model.Notification {
	return model.Notification{ID: id, RecipientID: "owner-" + id, Type: model.NotificationTypeJudge}
}

func TestInMemoryWorker(t *testing.T) {
	convey.Convey("Given a running worker", t, func() {
		q := newMockQueue()
		pub := newMockPublisher()
		w := worker.NewInMemoryWorker(q, pub, worker.WithName("test-worker"), worker.WithLogger(logging.Nop()))
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		convey.Convey("When a notification is queued", func() {
			q.items <- note("n1")
			pub.await(1)

			convey.Convey("Then it should be published", func() {
				convey.So(pub.ids(), convey.ShouldResemble, []string{"n1"})
			})
		})

		convey.Convey("When publishing fails", func() {
			pub.setError("bad", errors.New("broker down"))
			q.items <- note("bad")
			q.items <- note("good")
			pub.await(2)

			convey.Convey("Then the worker should keep going", func() {
				convey.So(pub.ids(), convey.ShouldResemble, []string{"good"})
			})
		})

		convey.Convey("When shutting down", func() {
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), time.Second)
			defer shutdownCancel()

			err := w.Shutdown(shutdownCtx)

			convey.Convey("Then it should stop gracefully", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(w.Shutdown(shutdownCtx), convey.ShouldBeNil)
			})
		})
	})

	convey.Convey("Given a worker whose context is canceled", t, func() {
		w := worker.NewInMemoryWorker(newMockQueue(), newMockPublisher(), worker.WithLogger(logging.Nop()))
		ctx, cancel := context.WithCancel(context.Background())
		go w.Run(ctx)
		cancel()

		convey.Convey("Then Run should return", func() {
			select {
			case <-w.Done():
				convey.So(true, convey.ShouldBeTrue)
			case <-time.After(time.Second):
				convey.So("worker still running", convey.ShouldBeEmpty)
			}
		})
	})
}

func TestWorkerPool(t *testing.T) {
	convey.Convey("Given a worker pool over a real queue", t, func() {
		q := queue.NewInMemoryQueue(queue.WithCapacity(100))
		pub := newMockPublisher()

		convey.Convey("When created with a zero count", func() {
			p := worker.NewPool(0, q, pub, worker.WithPoolLogger(logging.Nop()))

			convey.Convey("Then it should default to at least one worker", func() {
				convey.So(p.Size(), convey.ShouldBeGreaterThanOrEqualTo, 1)
			})
		})

		convey.Convey("When notifications are queued before shutdown", func() {
			p := worker.NewPool(4, q, pub, worker.WithPoolLogger(logging.Nop()))
			ctx := context.Background()
			for i := 0; i < 50; i++ {
				convey.So(q.Enqueue(ctx, note(fmt.Sprintf("n%02d", i))), convey.ShouldBeNil)
			}
			p.Start(ctx)

			shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
			defer cancel()
			err := p.Shutdown(shutdownCtx)

			convey.Convey("Then every notification should be delivered before Shutdown returns", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(pub.ids()), convey.ShouldEqual, 50)
				convey.So(q.IsClosed(), convey.ShouldBeTrue)
			})
		})
	})
}
