package priopool

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	boff "github.com/Andrej220/go-utils/backoff"
	lg "github.com/Andrej220/go-utils/zlog"
	"github.com/google/uuid"
)

// TaskOption configures a single submission.
type TaskOption func(*taskConfig)

type taskConfig struct {
	prio    Priority
	hasPrio bool
	ctx     context.Context
	retry   *RetryPolicy
	cleanup func()
	name    string
}

// WithPriority sets the task priority. Without it the task gets the middle
// level of the pool's scale, Medium for the default three levels.
func WithPriority(p Priority) TaskOption {
	return func(c *taskConfig) {
		c.prio = p
		c.hasPrio = true
	}
}

// WithContext attaches ctx to the task. A ctx that ends before a worker
// starts the task skips it like a cancel token; ctx also carries the task
// logger. The operation itself does not see ctx: arguments are bound by the
// caller.
func WithContext(ctx context.Context) TaskOption {
	return func(c *taskConfig) {
		c.ctx = ctx
	}
}

// WithRetry opts the task into retries. Zero fields fall back to
// Options.Retry.
func WithRetry(rp RetryPolicy) TaskOption {
	return func(c *taskConfig) {
		c.retry = &rp
	}
}

// WithCleanup registers fn to run after the task finished, was skipped or
// was discarded.
func WithCleanup(fn func()) TaskOption {
	return func(c *taskConfig) {
		c.cleanup = fn
	}
}

// WithName labels the task in logs and errors.
func WithName(name string) TaskOption {
	return func(c *taskConfig) {
		c.name = name
	}
}

// Submit queues fn on p and returns its future and cancel token.
//
// Submit never blocks beyond taking the pool mutex. It fails with
// ErrPoolStopped after Shutdown began, ErrNilFunc for a nil fn,
// ErrInvalidPriority for a priority outside the pool's scale, and an error
// matching ErrCancelled if WithContext was given a context that already
// ended. Nothing is queued on failure.
func Submit[T any](p *Pool, fn func() (T, error), opts ...TaskOption) (*Future[T], *CancelToken, error) {
	if fn == nil {
		return nil, nil, ErrNilFunc
	}

	cfg := taskConfig{}
	for _, o := range opts {
		o(&cfg)
	}
	prio := defaultPriority(p.opts.Levels)
	if cfg.hasPrio {
		prio = cfg.prio
	}
	if !validPriority(prio, p.opts.Levels) {
		return nil, nil, fmt.Errorf("%w: %d not in 0..%d", ErrInvalidPriority, int(prio), p.opts.Levels-1)
	}
	if cfg.ctx == nil {
		cfg.ctx = p.opts.Ctx
	}
	if err := cfg.ctx.Err(); err != nil {
		return nil, nil, cancelledBy(err)
	}

	id := uuid.NewString()
	fut := newFuture[T](id)
	t := &task{
		id:      id,
		name:    cfg.name,
		prio:    prio,
		cancel:  newCancelToken(),
		ctx:     cfg.ctx,
		retry:   RetryPolicy{Attempts: 1},
		cleanup: cfg.cleanup,
	}
	if cfg.retry != nil {
		t.retry = cfg.retry.merge(p.opts.Retry)
	}
	t.exec = func(t *task) error {
		v, err := runOperation(t, fn)
		fut.resolve(v, err)
		return err
	}
	t.abort = func(err error) {
		var zero T
		fut.resolve(zero, err)
	}

	if err := p.enqueue(t); err != nil {
		return nil, nil, err
	}
	lg.FromContext(t.ctx).Info("task submitted",
		lg.String("task_id", id),
		lg.String("priority", prio.Label(p.opts.Levels)),
	)
	return fut, t.cancel, nil
}

// Go submits an operation without a result value.
func (p *Pool) Go(fn func() error, opts ...TaskOption) (*Future[struct{}], *CancelToken, error) {
	if fn == nil {
		return nil, nil, ErrNilFunc
	}
	return Submit(p, func() (struct{}, error) {
		return struct{}{}, fn()
	}, opts...)
}

// runOperation invokes fn, retrying failed attempts when the task opted in.
// Panics are never retried. A cancel token or context that ends during a
// backoff stops further attempts and the last failure is returned.
func runOperation[T any](t *task, fn func() (T, error)) (T, error) {
	v, err := invoke(t, fn, 1)
	if err == nil || t.retry.Attempts <= 1 || isPanic(err) {
		return v, err
	}

	logger := lg.FromContext(t.ctx).With(lg.String("task_id", t.id))
	bo := boff.New(t.retry.Initial, t.retry.Max, time.Now().UnixNano())

	for attempt := 2; attempt <= t.retry.Attempts; attempt++ {
		delay := bo.Next()
		logger.Warn("task attempt failed; backing off",
			lg.Int("attempt", attempt-1),
			lg.String("sleep", delay.String()),
			lg.Any("error", err),
		)
		if !t.sleep(delay) {
			logger.Info("task retry cancelled", lg.Int("attempt", attempt-1))
			return v, err
		}
		v, err = invoke(t, fn, attempt)
		if err == nil || isPanic(err) {
			return v, err
		}
	}
	return v, err
}

// invoke runs one attempt and turns errors and panics into *OperationError.
func invoke[T any](t *task, fn func() (T, error), attempt int) (v T, err error) {
	defer func() {
		if r := recover(); r != nil {
			var zero T
			v = zero
			err = &OperationError{
				TaskID:   t.id,
				Name:     t.name,
				Attempts: attempt,
				Panic:    r,
				Stack:    string(debug.Stack()),
			}
		}
	}()

	v, err = fn()
	if err != nil {
		err = &OperationError{TaskID: t.id, Name: t.name, Attempts: attempt, Err: err}
	}
	return v, err
}

func isPanic(err error) bool {
	oe, ok := err.(*OperationError)
	return ok && oe.Panic != nil
}

// sleep waits d between attempts. It returns false if the task was
// cancelled meanwhile.
func (t *task) sleep(d time.Duration) bool {
	if t.skipReason() != nil {
		return false
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-t.cancel.Done():
		return false
	case <-t.ctx.Done():
		return false
	}
}
