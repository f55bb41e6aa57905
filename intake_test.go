package jobpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// idJob is a job carrying its submission index
type idJob struct {
	id  int
	ran *atomic.Int32
}

func (j idJob) Run() {
	if j.ran != nil {
		j.ran.Add(1)
	}
}

func TestIntake_FIFO(t *testing.T) {
	in := newIntake(1)
	for i := range 10 {
		require.NoError(t, in.put(idJob{id: i}))
	}
	assert.Equal(t, 10, in.len())

	for i := range 10 {
		job, ok := in.get()
		require.True(t, ok)
		assert.Equal(t, i, job.(idJob).id)
	}
	assert.Equal(t, 0, in.len())
}

func TestIntake_CloseDropsQueued(t *testing.T) {
	in := newIntake(1)
	for i := range 3 {
		require.NoError(t, in.put(idJob{id: i}))
	}
	assert.Equal(t, 3, in.close())
	assert.Equal(t, 0, in.close(), "second close drops nothing")

	job, ok := in.get()
	assert.False(t, ok)
	assert.Nil(t, job)
	assert.ErrorIs(t, in.put(idJob{}), ErrClosed)
	assert.Equal(t, 0, in.len())
}

func TestIntake_CloseWakesWaiters(t *testing.T) {
	in := newIntake(1)
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, ok := in.get()
			assert.False(t, ok)
		}()
	}
	time.Sleep(10 * time.Millisecond) // let consumers block
	in.close()

	done := make(chan struct{})
	go func() { wg.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waiting consumers were not released by close")
	}
}

func TestIntake_ExactlyOnce(t *testing.T) {
	const n, consumers = 1000, 8
	in := newIntake(1)

	var mu sync.Mutex
	seen := make(map[int]int, n)
	var wg sync.WaitGroup
	var got atomic.Int32
	for range consumers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				job, ok := in.get()
				if !ok {
					return
				}
				mu.Lock()
				seen[job.(idJob).id]++
				mu.Unlock()
				got.Add(1)
			}
		}()
	}

	for i := range n {
		require.NoError(t, in.put(idJob{id: i}))
	}
	require.Eventually(t, func() bool { return got.Load() == n }, 5*time.Second, time.Millisecond)
	in.close()
	wg.Wait()

	require.Len(t, seen, n)
	for id, cnt := range seen {
		assert.Equal(t, 1, cnt, "job %d delivered %d times", id, cnt)
	}
}

func TestIntake_NoWorkersLeft(t *testing.T) {
	in := newIntake(2)
	require.NoError(t, in.put(idJob{id: 0}))
	assert.Equal(t, 1, in.leave())
	require.NoError(t, in.put(idJob{id: 1}), "one worker still there")
	assert.Equal(t, 0, in.leave())

	assert.ErrorIs(t, in.put(idJob{id: 2}), ErrNoWorkers)
	assert.Equal(t, 2, in.len(), "jobs accepted before the last worker left stay queued")
	assert.Equal(t, 2, in.close())
	assert.ErrorIs(t, in.put(idJob{id: 3}), ErrClosed, "closed wins over no workers")
}
