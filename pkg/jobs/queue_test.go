package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	done := make(chan string, 1)
	q := NewQueue("test", func(_ context.Context, job Job) error {
		done <- job.ID
		return nil
	}, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "run-1", Type: "generate"}))

	select {
	case id := <-done:
		assert.Equal(t, "run-1", id)
	case <-time.After(time.Second):
		t.Fatal("job was not processed")
	}
}

func TestQueueWithoutRetriesRunsOnce(t *testing.T) {
	var calls int32
	q := NewQueue("test", func(context.Context, Job) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	}, QueueConfig{Workers: 1, MaxRetries: 0, RetryDelay: time.Millisecond})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "run-1"}))
	time.Sleep(50 * time.Millisecond)
	q.Stop()

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestQueueRetries(t *testing.T) {
	var calls int32
	q := NewQueue("test", func(context.Context, Job) error {
		atomic.AddInt32(&calls, 1)
		return errors.New("boom")
	}, QueueConfig{Workers: 1, MaxRetries: 2, RetryDelay: time.Millisecond})
	q.Start(context.Background())

	require.NoError(t, q.Enqueue(Job{ID: "run-1"}))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 3 }, time.Second, 5*time.Millisecond)
	q.Stop()
}

func TestEnqueueBeforeStartFails(t *testing.T) {
	q := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, q.Enqueue(Job{ID: "x"}))
}

func TestEnqueueRejectsWhenFull(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{}, 1)
	q := NewQueue("test", func(context.Context, Job) error {
		started <- struct{}{}
		<-release
		return nil
	}, QueueConfig{Workers: 1, BufferSize: 1})
	q.Start(context.Background())
	defer q.Stop()
	defer close(release)

	require.NoError(t, q.Enqueue(Job{ID: "busy"}))
	<-started
	require.NoError(t, q.Enqueue(Job{ID: "buffered"}))
	assert.ErrorIs(t, q.Enqueue(Job{ID: "overflow"}), ErrQueueFull)
}

func TestQueueRecoversFromPanickingHandler(t *testing.T) {
	var calls int32
	q := NewQueue("test", func(_ context.Context, job Job) error {
		if atomic.AddInt32(&calls, 1) == 1 {
			panic("corrupt payload")
		}
		return nil
	}, QueueConfig{Workers: 1})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "bad"}))
	require.NoError(t, q.Enqueue(Job{ID: "good"}))
	assert.Eventually(t, func() bool { return atomic.LoadInt32(&calls) == 2 }, time.Second, 5*time.Millisecond)
}

func TestQueueAppliesJobTimeout(t *testing.T) {
	deadline := make(chan bool, 1)
	q := NewQueue("test", func(ctx context.Context, _ Job) error {
		_, ok := ctx.Deadline()
		deadline <- ok
		<-ctx.Done()
		return ctx.Err()
	}, QueueConfig{Workers: 1, JobTimeout: 10 * time.Millisecond})
	q.Start(context.Background())
	defer q.Stop()

	require.NoError(t, q.Enqueue(Job{ID: "slow"}))
	select {
	case ok := <-deadline:
		assert.True(t, ok)
	case <-time.After(time.Second):
		t.Fatal("job was not processed")
	}
}
