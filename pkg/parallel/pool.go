// Package parallel provides the data-parallel worker pool that drives frame
// rendering.
//
// A Pool runs a fixed set of long-lived goroutines. Work is submitted as an
// index range: every unit in [0, n) runs exactly once, to completion, on some
// worker, and For returns only after all of them finished. There is no
// cancellation and no messaging between units.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Pool is a fixed-size pool of worker goroutines.
//
// Thread safety: For may be called from several goroutines. Units may call
// For recursively: the caller drains its own range, so a nested call never
// waits on a task that cannot start.
type Pool struct {
	// workers is the number of worker goroutines.
	workers int

	// tasks is the shared queue; each task drains part of one For call.
	tasks chan func()

	// done signals workers to stop.
	done chan struct{}

	// wg waits for all workers to finish.
	wg sync.WaitGroup

	// running indicates whether the pool is accepting work.
	running atomic.Bool
}

// NewPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used.
func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	p := &Pool{
		workers: workers,
		tasks:   make(chan func(), workers*4),
		done:    make(chan struct{}),
	}
	p.running.Store(true)

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}

	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		select {
		case task := <-p.tasks:
			task()
		case <-p.done:
			p.drainQueue()
			return
		}
	}
}

// drainQueue runs tasks that were queued before Close.
func (p *Pool) drainQueue() {
	for {
		select {
		case task := <-p.tasks:
			task()
		default:
			return
		}
	}
}

// For calls fn(i) for every i in [0, n) and blocks until all calls returned.
//
// Indices are claimed dynamically, so a slow unit does not hold up the units
// queued behind it. Each index is passed to exactly one call. If the pool is
// closed the loop runs on the calling goroutine.
func (p *Pool) For(n int, fn func(i int)) {
	if n <= 0 {
		return
	}
	if !p.running.Load() || p.workers == 1 || n == 1 {
		for i := range n {
			fn(i)
		}
		return
	}

	var (
		next   atomic.Int64
		mu     sync.Mutex
		closed bool
		active sync.WaitGroup
	)
	drain := func() {
		for {
			i := int(next.Add(1) - 1)
			if i >= n {
				return
			}
			fn(i)
		}
	}
	helper := func() {
		mu.Lock()
		if closed {
			mu.Unlock()
			return
		}
		active.Add(1)
		mu.Unlock()

		defer active.Done()
		drain()
	}

	// The caller drains as well, so one fewer helper is queued. A full queue
	// just means fewer helpers.
	for range min(p.workers, n) - 1 {
		select {
		case p.tasks <- helper:
		default:
		}
	}

	drain()

	// Helpers that start from here on find nothing to do; only wait for the
	// ones still running a unit.
	mu.Lock()
	closed = true
	mu.Unlock()
	active.Wait()
}

// Close stops the workers. A For that is in flight still completes, since
// its caller drains whatever the workers leave. Close is safe to call
// multiple times.
func (p *Pool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *Pool) Workers() int {
	return p.workers
}

// IsRunning returns true if the pool has not been closed.
func (p *Pool) IsRunning() bool {
	return p.running.Load()
}
