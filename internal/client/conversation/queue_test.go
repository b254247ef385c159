package conversation

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestQueue_RunsInSubmissionOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := NewQueue()
	defer q.Close()

	var (
		mu      sync.Mutex
		order   []int
		running int
		overlap bool
	)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, q.Submit(ctx, func(context.Context) error {
			mu.Lock()
			running++
			if running > 1 {
				overlap = true
			}
			order = append(order, i)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
			return nil
		}))
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4}, order)
	assert.False(t, overlap)
}

func TestQueue_SerializesConcurrentSubmits(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := NewQueue()
	defer q.Close()

	var (
		mu      sync.Mutex
		running int
		peak    int
	)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = q.Submit(context.Background(), func(context.Context) error {
				mu.Lock()
				running++
				peak = max(peak, running)
				mu.Unlock()
				time.Sleep(2 * time.Millisecond)
				mu.Lock()
				running--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, peak)
}

func TestQueue_ReturnsOperationError(t *testing.T) {
	q := NewQueue()
	defer q.Close()

	assert.ErrorIs(t, q.Submit(context.Background(), fail), errBoom)
}

func TestQueue_SubmitAfterClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := NewQueue()
	q.Close()
	q.Close()

	assert.ErrorIs(t, q.Submit(context.Background(), ok), ErrQueueClosed)
}

func TestQueue_ContextCancelledWhileWaiting(t *testing.T) {
	defer goleak.VerifyNone(t)

	q := NewQueue()
	defer q.Close()

	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_ = q.Submit(context.Background(), func(context.Context) error {
			close(started)
			<-release
			return nil
		})
	}()
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := q.Submit(ctx, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
}
