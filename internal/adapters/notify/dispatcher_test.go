package notify_test

import (
	"context"
	"errors"
	"testing"

	"github.com/okian/showcase/internal/adapters/mq/queue"
	"github.com/okian/showcase/internal/adapters/notify"
	"github.com/okian/showcase/internal/domain/dedupe"
	"github.com/okian/showcase/internal/domain/model"
	"github.com/okian/showcase/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func judgeNote(id, evaluationID string) model.Notification {
	return model.Notification{
		ID:           id,
		RecipientID:  "alice",
		ActorID:      "judge-1",
		Type:         model.NotificationTypeJudge,
		Message:      model.JudgeNotificationMessage,
		RelatedID:    "post-1",
		EvaluationID: evaluationID,
	}
}

func TestDispatcher(t *testing.T) {
	Convey("Given a dispatcher over a queue of two", t, func() {
		ctx := context.Background()
		q := queue.NewInMemoryQueue(queue.WithCapacity(2))
		d := notify.NewDispatcher(q,
			notify.WithDeduper(dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(10))),
			notify.WithLogger(logger.Nop()),
		)

		Convey("When the same evaluation is notified twice", func() {
			So(d.Notify(ctx, judgeNote("n1", "ev-1")), ShouldBeNil)
			So(d.Notify(ctx, judgeNote("n2", "ev-1")), ShouldBeNil)

			Convey("Then only one notification should be queued", func() {
				So(q.Len(), ShouldEqual, 1)
				So((<-q.Dequeue()).ID, ShouldEqual, "n1")
			})
		})

		Convey("When two judges evaluate the same post of one owner", func() {
			other := judgeNote("n2", "ev-2")
			other.ActorID = "judge-2"
			So(d.Notify(ctx, judgeNote("n1", "ev-1")), ShouldBeNil)
			So(d.Notify(ctx, other), ShouldBeNil)

			Convey("Then both notifications should be queued", func() {
				So(q.Len(), ShouldEqual, 2)
				So((<-q.Dequeue()).ActorID, ShouldEqual, "judge-1")
				So((<-q.Dequeue()).ActorID, ShouldEqual, "judge-2")
			})
		})

		Convey("When the queue is full", func() {
			So(d.Notify(ctx, judgeNote("n1", "ev-1")), ShouldBeNil)
			So(d.Notify(ctx, judgeNote("n2", "ev-2")), ShouldBeNil)
			err := d.Notify(ctx, judgeNote("n3", "ev-3"))

			Convey("Then the notification should be dropped with ErrQueueFull", func() {
				So(errors.Is(err, notify.ErrQueueFull), ShouldBeTrue)
				So(q.Len(), ShouldEqual, 2)
			})

			Convey("Then the dropped evaluation can be retried once there is room", func() {
				<-q.Dequeue()
				So(d.Notify(ctx, judgeNote("n3", "ev-3")), ShouldBeNil)
				So(q.Len(), ShouldEqual, 2)
			})
		})

		Convey("When the queue is closed", func() {
			_ = q.Close()
			err := d.Notify(ctx, judgeNote("n1", "ev-1"))

			Convey("Then the error should say so", func() {
				So(errors.Is(err, queue.ErrClosed), ShouldBeTrue)
			})
		})

		Convey("When a notification has no recipient", func() {
			n := judgeNote("n1", "ev-1")
			n.RecipientID = ""

			Convey("Then it should be rejected", func() {
				So(errors.Is(d.Notify(ctx, n), notify.ErrNoRecipient), ShouldBeTrue)
				So(q.Len(), ShouldEqual, 0)
			})
		})

		Convey("When a notification has no evaluation id", func() {
			So(d.Notify(ctx, judgeNote("n1", "")), ShouldBeNil)
			So(d.Notify(ctx, judgeNote("n1", "")), ShouldBeNil)

			Convey("Then its own id should be the dedupe key", func() {
				So(q.Len(), ShouldEqual, 1)
			})
		})
	})
}

func TestLogPublisher(t *testing.T) {
	Convey("Given the log and no-op publishers", t, func() {
		ctx := context.Background()

		Convey("Then publishing should always succeed", func() {
			lp := notify.NewLogPublisher(logger.Nop())
			So(lp.Publish(ctx, judgeNote("n1", "ev-1")), ShouldBeNil)
			So(lp.Close(), ShouldBeNil)

			var np notify.NopPublisher
			So(np.Publish(ctx, judgeNote("n1", "ev-1")), ShouldBeNil)
			So(np.Close(), ShouldBeNil)
		})
	})
}
