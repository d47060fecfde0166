package priopool

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	lg "github.com/Andrej220/go-utils/zlog"
)

// Pool runs submitted tasks on a fixed set of workers, highest priority
// first and in submission order within a priority.
//
// One mutex guards the pending queue, the stopped flag and the active
// counter. Workers sleep on workCond; quiescence waiters block on the idle
// channel, which is closed while nothing is pending or running. Task
// operations, futures and cancel tokens are never touched with the mutex
// held.
type Pool struct {
	opts    Options
	metrics MetricsPolicy

	mu        sync.Mutex
	workCond  *sync.Cond
	queue     schedQueue
	seq       uint64
	active    int
	stopped   bool
	aborting  bool // discarded futures not yet resolved
	quiescent bool
	idle      chan struct{}

	wg       sync.WaitGroup
	stopOnce sync.Once
	exited   chan struct{} // closed once every worker returned
}

// Stats is a point-in-time view of the pool.
type Stats struct {
	Workers int
	Active  int
	Queued  int
	Stopped bool
}

// NewPool creates a pool with a fixed number of workers and default
// options. A negative count selects runtime.GOMAXPROCS(0); zero workers is
// allowed, the pool then accepts tasks but never runs them.
func NewPool(workers int) *Pool {
	p, err := NewPoolFromOptions(nil, Options{Workers: workers})
	if err != nil {
		// default options always validate
		panic(err)
	}
	return p
}

// NewPoolFromOptions creates a pool and starts its workers. A nil m
// disables metrics.
func NewPoolFromOptions(m MetricsPolicy, opts Options) (*Pool, error) {
	opts.FillDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if m == nil {
		m = &NoopMetrics{}
	}
	if la, ok := m.(LevelAware); ok {
		la.SetLevels(opts.Levels)
	}

	p := &Pool{
		opts:      opts,
		metrics:   m,
		quiescent: true,
		idle:      make(chan struct{}),
		exited:    make(chan struct{}),
	}
	close(p.idle)
	p.workCond = sync.NewCond(&p.mu)
	p.queue = p.makeQueue()

	for i := 0; i < opts.Workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	go func() {
		p.wg.Wait()
		close(p.exited)
	}()

	lg.FromContext(opts.Ctx).Info("pool started",
		lg.Int("workers", opts.Workers),
		lg.Int("levels", opts.Levels),
		lg.String("queue", opts.QT.String()),
	)
	return p, nil
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	if p.opts.PinWorkers {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		if err := PinToCPU(id % runtime.NumCPU()); err != nil {
			p.reportInternalError(fmt.Errorf("worker %d: %w", id, err))
		}
	}

	for {
		t, ok := p.next()
		if !ok {
			return
		}
		p.execute(t)
		p.finish()
	}
}

// next blocks until a task is available or the pool stops. It returns false
// when the worker must exit.
func (p *Pool) next() (*task, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for p.queue.Len() == 0 && !p.stopped {
		p.workCond.Wait()
	}
	if p.stopped && (!p.opts.DrainOnStop || p.queue.Len() == 0) {
		return nil, false
	}

	t, _ := p.queue.Pop()
	p.active++
	p.metrics.SetQueued(p.queue.Len())
	p.metrics.SetActive(p.active)
	return t, true
}

// execute runs or skips a popped task. Called without the mutex.
func (p *Pool) execute(t *task) {
	defer p.safeCleanup(t)

	logger := lg.FromContext(t.ctx).With(lg.String("task_id", t.id))

	if err := t.skipReason(); err != nil {
		logger.Info("task skipped", lg.Any("reason", err))
		t.abort(err)
		p.metrics.IncCancelled(t.prio)
		return
	}

	start := time.Now()
	err := t.exec(t)
	p.metrics.IncExecuted(t.prio, time.Since(start))
	if err == nil {
		return
	}

	p.metrics.IncFailed(t.prio)
	var oe *OperationError
	if errors.As(err, &oe) && oe.Panic != nil {
		logger.Error("task panicked", lg.Any("panic", oe.Panic))
	} else {
		logger.Error("task failed", lg.Any("error", err))
	}
	p.reportTaskError(err)
}

// finish retires a task and wakes quiescence waiters when the pool
// became idle.
func (p *Pool) finish() {
	p.mu.Lock()
	p.active--
	p.metrics.SetActive(p.active)
	if p.idleLocked() {
		p.setQuiescentLocked()
	}
	p.mu.Unlock()
}

func (p *Pool) idleLocked() bool {
	return p.active == 0 && p.queue.Len() == 0 && !p.aborting
}

// enqueue adds a task and wakes one idle worker.
func (p *Pool) enqueue(t *task) error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return ErrPoolStopped
	}
	p.seq++
	t.seq = p.seq
	p.queue.Push(t)
	p.setBusyLocked()
	p.metrics.SetQueued(p.queue.Len())
	p.mu.Unlock()

	p.workCond.Signal()
	p.metrics.IncSubmitted(t.prio)
	return nil
}

func (p *Pool) setQuiescentLocked() {
	if !p.quiescent {
		p.quiescent = true
		close(p.idle)
	}
}

func (p *Pool) setBusyLocked() {
	if p.quiescent {
		p.quiescent = false
		p.idle = make(chan struct{})
	}
}

func (p *Pool) safeCleanup(t *task) {
	defer func() {
		if r := recover(); r != nil {
			p.reportInternalError(fmt.Errorf("cleanup of task %s panicked: %v", t.id, r))
		}
	}()
	t.runCleanup()
}

// Shutdown stops accepting tasks and waits for the workers to exit.
//
// Running tasks always finish. Pending tasks are discarded, resolving their
// futures with ErrPoolStopped, unless Options.DrainOnStop is set, in which
// case the workers run them first. If ctx ends before the workers exit,
// Shutdown returns ctx.Err(); the workers keep going and a later call can
// wait again. Shutdown is safe to call more than once.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.stopOnce.Do(p.beginStop)

	select {
	case <-p.exited:
		return nil
	default:
	}
	select {
	case <-p.exited:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop is a blocking Shutdown.
func (p *Pool) Stop() { _ = p.Shutdown(context.Background()) }

func (p *Pool) beginStop() {
	var discarded []*task

	p.mu.Lock()
	p.stopped = true
	if !p.opts.DrainOnStop || p.opts.Workers == 0 {
		discarded = p.queue.Drain()
		p.aborting = len(discarded) > 0
		p.metrics.SetQueued(0)
	}
	active := p.active
	p.mu.Unlock()
	p.workCond.Broadcast()

	logger := lg.FromContext(p.opts.Ctx)
	logger.Info("pool stopping",
		lg.Int("active", active),
		lg.Int("discarded", len(discarded)),
		lg.Any("drain", p.opts.DrainOnStop),
	)
	go func() {
		<-p.exited
		logger.Info("pool stopped")
	}()

	for _, t := range discarded {
		t.abort(ErrPoolStopped)
		p.metrics.IncDiscarded(t.prio)
		p.safeCleanup(t)
	}

	p.mu.Lock()
	p.aborting = false
	if p.idleLocked() {
		p.setQuiescentLocked()
	}
	p.mu.Unlock()
}

// Wait blocks until no task is pending or running.
//
// Wait is a barrier only if nobody submits concurrently; a submission racing
// with Wait may or may not be waited for.
func (p *Pool) Wait() { _ = p.WaitContext(context.Background()) }

// WaitContext is Wait bounded by ctx. It returns ctx.Err() if the pool did
// not become idle in time. Pending and running tasks are not affected.
func (p *Pool) WaitContext(ctx context.Context) error {
	p.mu.Lock()
	idle := p.idle
	p.mu.Unlock()

	select {
	case <-idle:
		return nil
	default:
	}
	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// WaitFor waits at most d for the pool to become idle and reports whether
// it did.
func (p *Pool) WaitFor(d time.Duration) bool {
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	return p.WaitContext(ctx) == nil
}

// Stats returns a snapshot of the pool state.
func (p *Pool) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Workers: p.opts.Workers,
		Active:  p.active,
		Queued:  p.queue.Len(),
		Stopped: p.stopped,
	}
}

func (p *Pool) ActiveTasks() int { return p.Stats().Active }
func (p *Pool) QueueLength() int { return p.Stats().Queued }
func (p *Pool) Workers() int     { return p.opts.Workers }
func (p *Pool) Levels() int      { return p.opts.Levels }
