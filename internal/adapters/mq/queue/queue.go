// Package queue provides the bounded in-memory queue that carries finalized
// rating commits to the persistence workers.
package queue

import (
	"context"
	"sync"

	"github.com/KusumaMurthy109/Elysian/internal/domain/model"
	"github.com/KusumaMurthy109/Elysian/pkg/metrics"
)

const defaultCapacity = 1024

// Commit is the payload type flowing through the queue.
type Commit = model.RatingCommit

// Queue provides non-blocking enqueue and channel-based dequeue semantics.
type Queue interface {
	// Enqueue adds a commit to the queue.
	// Returns false if the queue is full and the commit was not enqueued.
	Enqueue(ctx context.Context, c Commit) bool

	// Dequeue returns a channel receiving commits as they become available.
	// The channel is closed when the queue is closed.
	Dequeue(ctx context.Context) <-chan Commit

	// Len returns the current number of queued commits.
	Len(ctx context.Context) int

	// Close stops the queue; no new commits can be enqueued afterwards.
	Close() error
}

// InMemoryQueue implements Queue on a buffered channel.
type InMemoryQueue struct {
	commits  chan Commit
	capacity int

	mu     sync.RWMutex
	closed bool
}

// Option applies a configuration option to the InMemoryQueue.
type Option func(*InMemoryQueue)

// WithCapacity sets the maximum number of buffered commits.
func WithCapacity(capacity int) Option {
	return func(q *InMemoryQueue) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// NewInMemoryQueue creates a bounded in-memory commit queue.
func NewInMemoryQueue(opts ...Option) *InMemoryQueue {
	q := &InMemoryQueue{
		capacity: defaultCapacity,
	}

	for _, opt := range opts {
		opt(q)
	}

	q.commits = make(chan Commit, q.capacity)

	metrics.UpdateCommitQueueCapacity(q.capacity)
	metrics.UpdateCommitQueueSize(0)
	metrics.UpdateCommitQueueUtilization(0)

	return q
}

// Enqueue adds a commit without blocking. A full or closed queue returns
// false so the caller can fall back to a synchronous write.
func (q *InMemoryQueue) Enqueue(_ context.Context, c Commit) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return false
	}

	select {
	case q.commits <- c:
		q.updateGauges()
		return true
	default:
		return false
	}
}

// Dequeue returns the commit channel.
func (q *InMemoryQueue) Dequeue(_ context.Context) <-chan Commit {
	return q.commits
}

// Len returns the number of buffered commits.
func (q *InMemoryQueue) Len(_ context.Context) int {
	return len(q.commits)
}

// Close stops the queue and closes the dequeue channel.
func (q *InMemoryQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}
	q.closed = true
	close(q.commits)
	return nil
}

func (q *InMemoryQueue) updateGauges() {
	size := len(q.commits)
	metrics.UpdateCommitQueueSize(size)
	metrics.UpdateCommitQueueUtilization(float64(size) / float64(q.capacity))
}
