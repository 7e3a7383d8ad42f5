// Package workerpool provides a bounded goroutine pool with backpressure.
//
// A Pool limits the number of goroutines that run concurrently. A pool of
// size 1 is a single-writer queue: tasks run one at a time in submission
// order, which is how the file order log serializes its appends.
//
//	pool := workerpool.New(1)
//	defer pool.Shutdown()
//
//	err := pool.Do(ctx, func() error {
//	    return appendToLog(order)
//	})
package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrPoolFull is returned by Submit when the task queue is at capacity.
var ErrPoolFull = errors.New("workerpool: pool is full")

// ErrPoolClosed is returned after Shutdown has been called.
var ErrPoolClosed = errors.New("workerpool: pool is closed")

// ErrTaskPanic wraps a panic recovered from a task run through Do.
var ErrTaskPanic = errors.New("workerpool: task panicked")

// Pool is a bounded goroutine pool.
type Pool struct {
	tasks  chan func()
	wg     sync.WaitGroup
	once   sync.Once
	mu     sync.RWMutex
	closed bool
}

// New creates a Pool with the given number of workers. Sizes below 1 are
// treated as 1.
func New(size int) *Pool {
	if size <= 0 {
		size = 1
	}

	p := &Pool{
		// Buffer equal to 2× the worker count so bursts can be absorbed.
		tasks: make(chan func(), size*2),
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

// Submit enqueues task without blocking.
//   - Returns ErrPoolFull if the task queue is at capacity.
//   - Returns ErrPoolClosed if Shutdown has been called.
func (p *Pool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

// SubmitWait blocks until task is queued, ctx is done, or the pool closes.
func (p *Pool) SubmitWait(ctx context.Context, task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do queues fn and waits for its result. ctx only bounds the wait for a
// queue slot: once fn is queued it always runs to completion and Do
// returns its error. A panic in fn is returned as ErrTaskPanic.
func (p *Pool) Do(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	err := p.SubmitWait(ctx, func() {
		result <- call(fn)
	})
	if err != nil {
		return err
	}
	return <-result
}

// Shutdown stops accepting new tasks, waits for queued and in-flight tasks
// to complete, and releases the worker goroutines. Safe to call repeatedly.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		p.mu.Lock()
		p.closed = true
		close(p.tasks)
		p.mu.Unlock()
		p.wg.Wait()
	})
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		safeRun(task)
	}
}

// safeRun keeps a panicking task from killing its worker.
func safeRun(task func()) {
	defer func() { recover() }() //nolint:errcheck
	task()
}

func call(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanic, r)
		}
	}()
	return fn()
}
