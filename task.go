package priopool

import (
	"context"
	"sync"
	"sync/atomic"
)

// CancelToken is the submitter's handle for skipping a task that has not
// started yet.
//
// Cancelling is cooperative: a worker checks the token right after it takes
// the task from the queue. If the token is already cancelled the operation
// never runs and the future resolves with ErrCancelled. Once the operation
// has started, Cancel only stops further retry attempts.
type CancelToken struct {
	flag atomic.Bool
	once sync.Once
	done chan struct{}
}

func newCancelToken() *CancelToken {
	return &CancelToken{done: make(chan struct{})}
}

// Cancel marks the task as cancelled. It reports true for the call that
// actually set the flag.
func (c *CancelToken) Cancel() bool {
	set := false
	c.once.Do(func() {
		c.flag.Store(true)
		close(c.done)
		set = true
	})
	return set
}

// Cancelled reports whether Cancel has been called.
func (c *CancelToken) Cancelled() bool { return c.flag.Load() }

// Done is closed by the first Cancel.
func (c *CancelToken) Done() <-chan struct{} { return c.done }

// task is one queued unit of work.
//
// The operation and its future are type-erased into exec and abort so the
// queue and workers stay non-generic. Only the cancel token is shared with
// the submitter; nothing else changes after submission.
type task struct {
	id   string
	name string
	prio Priority
	seq  uint64

	cancel  *CancelToken
	ctx     context.Context
	retry   RetryPolicy
	cleanup func()

	// exec runs the operation and resolves the future. It returns the
	// operation's error, if any.
	exec func(t *task) error

	// abort resolves the future without running the operation.
	abort func(err error)
}

// skipReason returns a non-nil error when the task must not start.
func (t *task) skipReason() error {
	if t.cancel.Cancelled() {
		return ErrCancelled
	}
	if err := t.ctx.Err(); err != nil {
		return cancelledBy(err)
	}
	return nil
}

func (t *task) runCleanup() {
	if t.cleanup != nil {
		t.cleanup()
	}
}
