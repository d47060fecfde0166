package priopool

import (
	"context"
	"sync"

	"go.uber.org/multierr"
)

// Future is the single-assignment result of a submitted task.
//
// It resolves exactly once: with the operation's value, with an
// *OperationError, with ErrCancelled when the task was skipped, or with
// ErrPoolStopped when Shutdown discarded it. Reads after resolution return
// the same outcome every time.
type Future[T any] struct {
	id   string
	once sync.Once
	done chan struct{}
	val  T
	err  error
}

func newFuture[T any](id string) *Future[T] {
	return &Future[T]{id: id, done: make(chan struct{})}
}

func (f *Future[T]) resolve(v T, err error) {
	f.once.Do(func() {
		f.val = v
		f.err = err
		close(f.done)
	})
}

// ID returns the task ID, also used in log records.
func (f *Future[T]) ID() string { return f.id }

// Done is closed once the outcome is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Get blocks until the task outcome is available.
func (f *Future[T]) Get() (T, error) {
	<-f.done
	return f.val, f.err
}

// GetContext is Get bounded by ctx. A ctx error does not affect the task.
func (f *Future[T]) GetContext(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	default:
	}
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Wait blocks until the task outcome is available and returns its error.
func (f *Future[T]) Wait(ctx context.Context) error {
	_, err := f.GetContext(ctx)
	return err
}

// Awaitable is implemented by every Future regardless of its value type.
type Awaitable interface {
	Wait(ctx context.Context) error
}

// WaitAll waits for every future and combines their errors. It returns
// early with the combined errors so far if ctx ends.
func WaitAll(ctx context.Context, fs ...Awaitable) error {
	var errs error
	for _, f := range fs {
		err := f.Wait(ctx)
		errs = multierr.Append(errs, err)
		if ctxErr := ctx.Err(); ctxErr != nil && err == ctxErr {
			return errs
		}
	}
	return errs
}
