package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueProcessesJobs(t *testing.T) {
	var mu sync.Mutex
	var seen []string
	queue := NewQueue("test", func(_ context.Context, job Job) error {
		mu.Lock()
		seen = append(seen, job.ID)
		mu.Unlock()
		return nil
	}, QueueConfig{Workers: 2})

	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job{ID: "a", Type: "noop"}))
	require.NoError(t, queue.Enqueue(Job{ID: "b", Type: "noop"}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(seen) == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestQueueRetriesFailedJobs(t *testing.T) {
	var mu sync.Mutex
	attempts := 0
	queue := NewQueue("test", func(context.Context, Job) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	}, QueueConfig{MaxRetries: 3, RetryDelay: time.Millisecond})

	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job{ID: "retry-me", Type: "flaky"}))
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return attempts == 3
	}, 2*time.Second, 10*time.Millisecond)
}

func TestQueueRejectsEnqueueBeforeStart(t *testing.T) {
	queue := NewQueue("test", func(context.Context, Job) error { return nil }, QueueConfig{})
	assert.Error(t, queue.Enqueue(Job{ID: "early"}))
}

func TestQueueStampsEnqueueTime(t *testing.T) {
	received := make(chan Job, 1)
	queue := NewQueue("test", func(_ context.Context, job Job) error {
		received <- job
		return nil
	}, QueueConfig{})

	queue.Start(context.Background())
	defer queue.Stop()

	require.NoError(t, queue.Enqueue(Job{ID: "stamped"}))
	select {
	case job := <-received:
		assert.False(t, job.Enqueued.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("job was never processed")
	}
}
