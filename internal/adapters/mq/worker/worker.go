// Package worker applies finalized rating commits to the document store
// asynchronously.
package worker

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/KusumaMurthy109/Elysian/internal/adapters/mq/queue"
	"github.com/KusumaMurthy109/Elysian/internal/domain/model"
	"github.com/KusumaMurthy109/Elysian/pkg/logger"
	"github.com/KusumaMurthy109/Elysian/pkg/metrics"
)

const workerShutdownTimeout = 5 * time.Second

// Applier persists a finalized rating flow.
type Applier interface {
	ApplyResult(ctx context.Context, commit model.RatingCommit) error
}

// Source is how workers receive commits.
type Source interface {
	Dequeue(ctx context.Context) <-chan queue.Commit
}

// Worker drains commits from a source into the applier.
type Worker struct {
	source  Source
	applier Applier
	name    string

	shutdown chan struct{}
	done     chan struct{}

	log logger.Logger
}

// Option applies a configuration option to the Worker.
type Option func(*Worker)

// WithName sets the worker name for logging.
func WithName(name string) Option {
	return func(w *Worker) {
		if name != "" {
			w.name = name
		}
	}
}

// WithLogger sets a custom logger for the worker.
func WithLogger(l logger.Logger) Option {
	return func(w *Worker) {
		if l != nil {
			w.log = l
		}
	}
}

// NewWorker creates a commit worker.
func NewWorker(source Source, applier Applier, opts ...Option) *Worker {
	w := &Worker{
		source:   source,
		applier:  applier,
		name:     "commit-worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		log:      logger.Named("commit-worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Run drains the source until ctx is cancelled, the worker is shut down, or
// the source channel closes.
func (w *Worker) Run(ctx context.Context) {
	defer close(w.done)

	commits := w.source.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case commit, ok := <-commits:
			if !ok {
				return
			}
			if err := w.apply(ctx, commit); err != nil {
				w.log.Error(ctx, "commit failed",
					logger.String("user_id", commit.UserID),
					logger.String("city_id", commit.CityID),
					logger.Error(err),
				)
			}
		}
	}
}

// Shutdown stops the worker and waits for it to finish.
func (w *Worker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("worker shutdown timed out: %w", ctx.Err())
	}
}

func (w *Worker) apply(ctx context.Context, commit queue.Commit) error {
	if err := w.applier.ApplyResult(ctx, commit); err != nil {
		metrics.RecordCommitError()
		return err
	}
	metrics.RecordCommitApplied()
	return nil
}

// Pool runs a fixed set of commit workers over one source.
type Pool struct {
	workers []*Worker
	log     logger.Logger
}

// NewPool creates workerCount workers over the source and applier.
func NewPool(workerCount int, source Source, applier Applier) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}

	p := &Pool{
		workers: make([]*Worker, workerCount),
		log:     logger.Named("commit-pool"),
	}
	for i := range p.workers {
		p.workers[i] = NewWorker(source, applier, WithName("commit-worker-"+strconv.Itoa(i)))
	}

	metrics.UpdateCommitWorkers(workerCount)

	return p
}

// Start launches all workers.
func (p *Pool) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Stop shuts down every worker, waiting up to the shutdown timeout each.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), workerShutdownTimeout)
	defer cancel()

	for _, w := range p.workers {
		if err := w.Shutdown(ctx); err != nil {
			p.log.Warn(ctx, "worker did not stop cleanly",
				logger.String("worker", w.name),
				logger.Error(err),
			)
		}
	}
	metrics.UpdateCommitWorkers(0)
}
