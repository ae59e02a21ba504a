package meshing

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doubler struct {
	block chan struct{}
}

func (w *doubler) Build(ctx context.Context, job int) (int, error) {
	if job < 0 {
		panic("negative job")
	}
	if w.block != nil {
		select {
		case <-w.block:
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}
	return job * 2, nil
}

func newTestPool(t *testing.T, workers, queue int, block chan struct{}, apply func(int, int, error)) *WorkerPool[int, int] {
	p := NewWorkerPool[int, int]("test-pool", workers, queue,
		func() Worker[int, int] { return &doubler{block: block} },
		apply,
	)
	t.Cleanup(p.Shutdown)
	return p
}

func TestPoolAppliesResultsOnUpdate(t *testing.T) {
	got := map[int]int{}
	p := newTestPool(t, 3, 16, nil, func(job, res int, err error) {
		require.NoError(t, err)
		got[job] = res
	})
	for i := 1; i <= 5; i++ {
		require.True(t, p.EnqueueJob(i))
	}
	require.Eventually(t, func() bool {
		p.Update()
		return len(got) == 5
	}, 2*time.Second, time.Millisecond)
	assert.Equal(t, 10, got[5])
	assert.Equal(t, 0, p.Pending())
	assert.Equal(t, 3, p.WorkersCount())
}

func TestPoolClearQueueDiscardsWithoutApplying(t *testing.T) {
	block := make(chan struct{})
	var applied []int
	var discarded []int
	p := newTestPool(t, 1, 8, block, func(job, res int, err error) {
		applied = append(applied, res)
	})
	p.OnDiscard(func(job int) { discarded = append(discarded, job) })

	for i := 1; i <= 3; i++ {
		require.True(t, p.EnqueueJob(i))
	}
	p.ClearQueue()
	require.Eventually(t, func() bool {
		p.Update()
		return len(discarded) == 3
	}, 2*time.Second, time.Millisecond)
	assert.Empty(t, applied)
	assert.ElementsMatch(t, []int{1, 2, 3}, discarded)

	require.True(t, p.EnqueueJob(4))
	close(block)
	require.Eventually(t, func() bool {
		p.Update()
		return len(applied) == 1
	}, 2*time.Second, time.Millisecond)
	assert.Equal(t, []int{8}, applied)
}

func TestPoolRecoversPanicsWithoutStopping(t *testing.T) {
	errs := 0
	results := 0
	p := newTestPool(t, 2, 8, nil, func(job, res int, err error) {
		if err != nil {
			errs++
			return
		}
		results++
	})
	p.SetStopOnFail(false)

	require.True(t, p.EnqueueJob(-1))
	require.True(t, p.EnqueueJob(7))
	require.Eventually(t, func() bool {
		p.Update()
		return errs+results == 2
	}, 2*time.Second, time.Millisecond)
	assert.Equal(t, 1, errs)
	assert.False(t, p.Failed())
	assert.True(t, p.EnqueueJob(3))
}

func TestPoolStopOnFail(t *testing.T) {
	var lastErr error
	p := newTestPool(t, 1, 8, nil, func(job, res int, err error) {
		lastErr = err
	})
	require.True(t, p.EnqueueJob(-1))
	require.Eventually(t, func() bool {
		p.Update()
		return lastErr != nil
	}, 2*time.Second, time.Millisecond)
	assert.True(t, p.Failed())
	assert.False(t, p.EnqueueJob(1))
}

func TestPoolBoundedQueue(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	p := newTestPool(t, 1, 1, block, func(int, int, error) {})

	accepted := 0
	for i := 0; i < 10; i++ {
		if p.EnqueueJob(i) {
			accepted++
		}
	}
	assert.GreaterOrEqual(t, accepted, 1)
	assert.LessOrEqual(t, accepted, 2)
}

func TestPoolShutdownRejectsJobs(t *testing.T) {
	p := NewWorkerPool[int, int]("test-pool", 1, 1,
		func() Worker[int, int] { return &doubler{} },
		func(int, int, error) {},
	)
	p.Shutdown()
	p.Shutdown()
	assert.False(t, p.EnqueueJob(1))
}
