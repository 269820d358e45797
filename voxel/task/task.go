// Package task runs background work for the frame loop.
//
// The loop hands jobs to a fixed worker pool and polls futures for the
// results; nothing in this package ever blocks the caller. Saturation is
// reported, not waited out, so a frame can always finish on time.
package task

import (
	"errors"
	"runtime"
	"sync"
)

// ErrSaturated is returned by Submit when the job queue is full. Callers
// back off and retry on a later frame.
var ErrSaturated = errors.New("task: queue full")

// Pool is a fixed set of workers fed from a bounded queue.
type Pool struct {
	jobs chan func()
	wg   sync.WaitGroup
	once sync.Once
}

// NewPool starts workers goroutines behind a queue of the given depth.
// Non-positive workers means one per CPU; non-positive depth picks a
// default deep enough for a full render horizon of chunk jobs.
func NewPool(workers, depth int) *Pool {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if depth <= 0 {
		depth = 4096
	}
	p := &Pool{jobs: make(chan func(), depth)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for job := range p.jobs {
		job()
	}
}

// Submit queues a job without blocking. A full queue returns ErrSaturated.
// Submitting to a closed pool is a programming error.
func (p *Pool) Submit(job func()) error {
	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrSaturated
	}
}

// Close stops accepting work and waits for queued jobs to finish.
func (p *Pool) Close() {
	p.once.Do(func() { close(p.jobs) })
	p.wg.Wait()
}

// Future carries one result from a worker back to the loop. It belongs to
// a single consumer; Poll must not be shared between goroutines.
type Future[T any] struct {
	ch  chan T
	val T
	got bool
}

// Poll returns the result if the work has finished, without blocking. Once
// it has a result it keeps returning the same one.
func (f *Future[T]) Poll() (T, bool) {
	if f.got {
		return f.val, true
	}
	select {
	case v := <-f.ch:
		f.val = v
		f.got = true
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Go submits fn to the pool and returns a future for its result.
func Go[T any](p *Pool, fn func() T) (*Future[T], error) {
	f := &Future[T]{ch: make(chan T, 1)}
	if err := p.Submit(func() { f.ch <- fn() }); err != nil {
		return nil, err
	}
	return f, nil
}
