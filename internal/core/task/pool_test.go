package task

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPoolRunsSubmittedWork(t *testing.T) {
	p := NewPool(2, zap.NewNop())
	defer p.Shutdown()

	var ran atomic.Bool
	h := p.Submit(PriorityNormal, "test", func() { ran.Store(true) })
	h.Wait()
	assert.True(t, ran.Load())
}

func TestPoolWaitJoinsAllHandles(t *testing.T) {
	p := NewPool(4, zap.NewNop())
	defer p.Shutdown()

	var counter atomic.Int64
	handles := make([]*Handle, 50)
	for i := range handles {
		handles[i] = p.Submit(PriorityNormal, "count", func() { counter.Add(1) })
	}
	for _, h := range handles {
		h.Wait()
	}
	assert.Equal(t, int64(50), counter.Load())
}

func TestPoolPriorityOrdering(t *testing.T) {
	// Single worker, held by a gate while the queue fills, so the drain
	// order reflects the heap order alone.
	p := NewPool(1, zap.NewNop())
	defer p.Shutdown()

	gate := make(chan struct{})
	blocker := p.Submit(PriorityHigh, "gate", func() { <-gate })

	var mu sync.Mutex
	var order []Priority
	record := func(pri Priority) func() {
		return func() {
			mu.Lock()
			order = append(order, pri)
			mu.Unlock()
		}
	}

	var handles []*Handle
	handles = append(handles, p.Submit(PriorityLow, "low", record(PriorityLow)))
	handles = append(handles, p.Submit(PriorityNormal, "normal", record(PriorityNormal)))
	handles = append(handles, p.Submit(PriorityHigh, "high", record(PriorityHigh)))

	close(gate)
	blocker.Wait()
	for _, h := range handles {
		h.Wait()
	}

	require.Len(t, order, 3)
	assert.Equal(t, []Priority{PriorityHigh, PriorityNormal, PriorityLow}, order)
}

func TestPoolEqualPriorityFIFO(t *testing.T) {
	p := NewPool(1, zap.NewNop())
	defer p.Shutdown()

	gate := make(chan struct{})
	blocker := p.Submit(PriorityHigh, "gate", func() { <-gate })

	var mu sync.Mutex
	var order []int
	var handles []*Handle
	for i := 0; i < 10; i++ {
		i := i
		handles = append(handles, p.Submit(PriorityNormal, "fifo", func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}

	close(gate)
	blocker.Wait()
	for _, h := range handles {
		h.Wait()
	}

	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, order)
}

func TestPoolShutdownDrainsQueue(t *testing.T) {
	p := NewPool(2, zap.NewNop())

	var counter atomic.Int64
	for i := 0; i < 20; i++ {
		p.Submit(PriorityNormal, "drain", func() { counter.Add(1) })
	}
	p.Shutdown()
	assert.Equal(t, int64(20), counter.Load(), "queued work finishes before Shutdown returns")
}

func TestPoolSubmitAfterShutdownRunsInline(t *testing.T) {
	p := NewPool(1, zap.NewNop())
	p.Shutdown()

	ran := false
	h := p.Submit(PriorityNormal, "late", func() { ran = true })
	h.Wait()
	assert.True(t, ran, "post-shutdown submits run inline instead of deadlocking")
}

func TestPoolWorkerCountClamped(t *testing.T) {
	p := NewPool(0, zap.NewNop())
	defer p.Shutdown()
	assert.Equal(t, 1, p.Workers())
}
