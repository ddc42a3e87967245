// Package pool provides the persistent worker pool used for row-parallel
// matrix kernels.
//
// Work is distributed one row at a time through an atomic counter, so rows
// of very different length still balance across workers. Workers are
// spawned once and reused by every operation.
package pool

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// MinParallelItems is the number of items below which ParallelFor runs the
// loop on the calling goroutine.
const MinParallelItems = 64

// Pool is a persistent worker pool.
type Pool struct {
	numWorkers int
	workC      chan workItem

	// mu guards closed and the sends on workC.
	mu     sync.RWMutex
	closed bool
}

type workItem struct {
	fn      func()
	barrier *sync.WaitGroup
}

var (
	defaultOnce sync.Once
	defaultPool *Pool
)

// Default returns the process-wide pool sized to GOMAXPROCS.
func Default() *Pool {
	defaultOnce.Do(func() {
		defaultPool = New(0)
	})
	return defaultPool
}

// New creates a pool with numWorkers goroutines. If numWorkers <= 0,
// GOMAXPROCS is used.
func New(numWorkers int) *Pool {
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		numWorkers: numWorkers,
		workC:      make(chan workItem, numWorkers*2),
	}
	for range numWorkers {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	for item := range p.workC {
		item.fn()
		item.barrier.Done()
	}
}

// NumWorkers returns the number of workers in the pool.
func (p *Pool) NumWorkers() int {
	return p.numWorkers
}

// Close shuts down the pool. Later calls to ParallelFor run sequentially.
// Calling Close multiple times, or concurrently with ParallelFor, is safe.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.closed = true
		close(p.workC)
	}
}

// ParallelFor calls fn(i) for every i in [0, n) and blocks until all calls
// return. Indices are handed out one at a time. Each index is processed by
// exactly one worker, so fn may write to per-index state without locking.
func (p *Pool) ParallelFor(n int, fn func(i int)) {
	if n <= 0 {
		return
	}

	workers := min(p.numWorkers, n)
	if workers == 1 || n < MinParallelItems {
		sequential(n, fn)
		return
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		sequential(n, fn)
		return
	}

	var next atomic.Int64
	var wg sync.WaitGroup
	wg.Add(workers)

	for range workers {
		p.workC <- workItem{
			fn: func() {
				for {
					i := int(next.Add(1)) - 1
					if i >= n {
						return
					}
					fn(i)
				}
			},
			barrier: &wg,
		}
	}
	p.mu.RUnlock()

	wg.Wait()
}

func sequential(n int, fn func(i int)) {
	for i := range n {
		fn(i)
	}
}
