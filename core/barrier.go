package core

import (
	"context"
	"sync"
)

// Barrier is a one-shot rendezvous. Its Task is posted at the tail of a
// worker's queue; when the worker reaches it, every task posted before it has
// finished and all goroutines blocked in Wait are released.
//
// A Barrier transitions to done exactly once and is never reset. Create a new
// one for every wait.
type Barrier struct {
	once sync.Once
	done chan struct{}
}

// NewBarrier returns an unsignaled barrier.
func NewBarrier() *Barrier {
	return &Barrier{done: make(chan struct{})}
}

// Signal marks the barrier done and wakes all waiters. Extra calls are no-ops.
func (b *Barrier) Signal() {
	b.once.Do(func() {
		close(b.done)
	})
}

// IsDone reports whether Signal has been called.
func (b *Barrier) IsDone() bool {
	select {
	case <-b.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the barrier is signaled.
func (b *Barrier) Done() <-chan struct{} {
	return b.done
}

// Wait blocks until the barrier is signaled or ctx ends.
// It returns immediately if the barrier is already done.
func (b *Barrier) Wait(ctx context.Context) error {
	// Prefer done over a concurrently cancelled ctx.
	if b.IsDone() {
		return nil
	}
	select {
	case <-b.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Task returns the task form of the barrier, executed by the worker.
func (b *Barrier) Task() Task {
	return func(ctx context.Context) {
		b.Signal()
	}
}
