package task

import (
	"container/heap"
	"sync"

	"go.uber.org/zap"
)

// Priority orders queued work. Higher runs first; equal priorities run FIFO.
type Priority uint8

const (
	PriorityLow Priority = iota
	PriorityNormal
	PriorityHigh
)

// Handle lets a submitter block until one task has finished.
type Handle struct {
	done chan struct{}
}

func (h *Handle) Wait() { <-h.done }

type item struct {
	pri  Priority
	seq  uint64
	name string
	fn   func()
	done chan struct{}
}

type itemHeap []*item

func (q itemHeap) Len() int { return len(q) }
func (q itemHeap) Less(i, j int) bool {
	if q[i].pri != q[j].pri {
		return q[i].pri > q[j].pri
	}
	return q[i].seq < q[j].seq
}
func (q itemHeap) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *itemHeap) Push(x any)        { *q = append(*q, x.(*item)) }
func (q *itemHeap) Pop() any {
	old := *q
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	*q = old[:n-1]
	return it
}

// Pool is a shared priority work queue backed by a fixed set of worker
// goroutines. Systems submit partitioned work and block on the handles,
// so a tick stays logically synchronous for the caller.
type Pool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   itemHeap
	seq     uint64
	workers int
	closed  bool
	wg      sync.WaitGroup
	log     *zap.Logger
}

func NewPool(workers int, log *zap.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	p := &Pool{workers: workers, log: log}
	p.cond = sync.NewCond(&p.mu)
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	log.Info("task pool started", zap.Int("workers", workers))
	return p
}

// Workers reports the number of worker goroutines.
func (p *Pool) Workers() int { return p.workers }

// Submit queues fn and returns a handle that is signalled when fn returns.
// Submitting to a shut-down pool runs fn inline so callers never deadlock.
func (p *Pool) Submit(pri Priority, name string, fn func()) *Handle {
	h := &Handle{done: make(chan struct{})}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		fn()
		close(h.done)
		return h
	}
	p.seq++
	heap.Push(&p.queue, &item{pri: pri, seq: p.seq, name: name, fn: fn, done: h.done})
	p.mu.Unlock()
	p.cond.Signal()
	return h
}

// Shutdown stops accepting work, drains the queue and joins the workers.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	p.mu.Unlock()
	p.cond.Broadcast()
	p.wg.Wait()
	p.log.Info("task pool stopped")
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.cond.Wait()
		}
		if len(p.queue) == 0 && p.closed {
			p.mu.Unlock()
			return
		}
		it := heap.Pop(&p.queue).(*item)
		p.mu.Unlock()

		it.fn()
		close(it.done)
	}
}
