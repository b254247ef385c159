package conversation

import (
	"context"
	"errors"
	"sync"
)

var ErrQueueClosed = errors.New("operation queue is closed")

// Queue runs submitted operations one at a time, in submission order, on a
// single worker goroutine.
type Queue struct {
	jobs chan job
	done chan struct{}

	closeOnce sync.Once
	wg        sync.WaitGroup
}

type job struct {
	ctx context.Context
	fn  func(context.Context) error
	res chan error
}

func NewQueue() *Queue {
	q := &Queue{
		jobs: make(chan job),
		done: make(chan struct{}),
	}
	q.wg.Add(1)
	go q.run()
	return q
}

func (q *Queue) run() {
	defer q.wg.Done()
	for {
		select {
		case <-q.done:
			return
		case j := <-q.jobs:
			if err := j.ctx.Err(); err != nil {
				j.res <- err
				continue
			}
			j.res <- j.fn(j.ctx)
		}
	}
}

// Submit enqueues fn and waits for its result. If ctx ends first, Submit
// returns ctx.Err(); fn, when already running, sees the same ctx.
func (q *Queue) Submit(ctx context.Context, fn func(context.Context) error) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	j := job{ctx: ctx, fn: fn, res: make(chan error, 1)}

	select {
	case q.jobs <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-q.done:
		return ErrQueueClosed
	}

	select {
	case err := <-j.res:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the worker after the running operation, if any, finishes.
func (q *Queue) Close() {
	q.closeOnce.Do(func() { close(q.done) })
	q.wg.Wait()
}
