package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/JakeFAU/menu-monitor/internal/monitor"
)

var errQueueClosed = errors.New("queue closed")

// job is one task slot in a run. index ties the result back to its task.
type job struct {
	index int
	task  monitor.Task
}

// jobQueue is a bounded in-memory queue with context-aware operations.
type jobQueue struct {
	ch      chan job
	closeMu sync.Mutex
	closed  bool
}

func newJobQueue(capacity int) *jobQueue {
	return &jobQueue{
		ch: make(chan job, capacity),
	}
}

// enqueue pushes a job into the queue or returns if the context ends.
func (q *jobQueue) enqueue(ctx context.Context, j job) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("enqueue canceled: %w", ctx.Err())
	case q.ch <- j:
		return nil
	}
}

// dequeue pops the next job, respecting context cancellation.
func (q *jobQueue) dequeue(ctx context.Context) (job, error) {
	select {
	case <-ctx.Done():
		return job{}, fmt.Errorf("dequeue canceled: %w", ctx.Err())
	case j, ok := <-q.ch:
		if !ok {
			return job{}, errQueueClosed
		}
		return j, nil
	}
}

// close stops producers; consumers drain what is buffered first.
func (q *jobQueue) close() {
	q.closeMu.Lock()
	defer q.closeMu.Unlock()
	if q.closed {
		return
	}
	close(q.ch)
	q.closed = true
}
