package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/KusumaMurthy109/Elysian/internal/adapters/mq/queue"
	"github.com/KusumaMurthy109/Elysian/internal/adapters/mq/worker"
	"github.com/KusumaMurthy109/Elysian/internal/domain/model"
	"github.com/KusumaMurthy109/Elysian/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

type recordingApplier struct {
	mu      sync.Mutex
	applied []model.RatingCommit
	fail    bool
}

func (r *recordingApplier) ApplyResult(_ context.Context, commit model.RatingCommit) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail {
		return errors.New("boom")
	}
	r.applied = append(r.applied, commit)
	return nil
}

func (r *recordingApplier) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.applied)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestWorkerAppliesCommits(t *testing.T) {
	Convey("Given a worker over a queue", t, func() {
		So(logger.Init(), ShouldBeNil)
		q := queue.NewInMemoryQueue(queue.WithCapacity(8))
		applier := &recordingApplier{}
		w := worker.NewWorker(q, applier)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		go w.Run(ctx)

		Convey("Enqueued commits reach the applier", func() {
			q.Enqueue(ctx, queue.Commit{UserID: "u1", CityID: "paris"})
			q.Enqueue(ctx, queue.Commit{UserID: "u2", CityID: "lima"})

			waitFor(t, func() bool { return applier.count() == 2 })
			So(applier.count(), ShouldEqual, 2)
		})

		Convey("A failing applier does not stop the worker", func() {
			applier.fail = true
			q.Enqueue(ctx, queue.Commit{UserID: "u1"})
			time.Sleep(20 * time.Millisecond)

			applier.fail = false
			q.Enqueue(ctx, queue.Commit{UserID: "u2"})
			waitFor(t, func() bool { return applier.count() == 1 })
		})

		Convey("Shutdown returns once the worker stops", func() {
			sctx, scancel := context.WithTimeout(context.Background(), time.Second)
			defer scancel()
			So(w.Shutdown(sctx), ShouldBeNil)
		})
	})
}

func TestPool(t *testing.T) {
	Convey("Given a pool of workers", t, func() {
		So(logger.Init(), ShouldBeNil)
		q := queue.NewInMemoryQueue(queue.WithCapacity(64))
		applier := &recordingApplier{}
		pool := worker.NewPool(4, q, applier)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		pool.Start(ctx)

		Convey("All commits are applied exactly once", func() {
			for i := 0; i < 32; i++ {
				So(q.Enqueue(ctx, queue.Commit{UserID: "u", CityID: "c"}), ShouldBeTrue)
			}
			waitFor(t, func() bool { return applier.count() == 32 })
			So(applier.count(), ShouldEqual, 32)

			pool.Stop()
		})
	})
}
