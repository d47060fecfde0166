// Package priopool provides a fixed-size worker pool that runs submitted
// tasks in priority order.
//
// # Ordering
//
// Every task carries a Priority. A free worker always takes the oldest task
// of the highest non-empty level, so a higher priority never waits behind a
// lower one that is still queued, and tasks of equal priority start in
// submission order. Tasks that are already running are never preempted.
//
// The default scale has three levels (Low, Medium, High). Options.Levels
// widens it up to MaxLevels; the default priority is then the middle level.
//
// # Architecture overview
//
// The pool is composed of three loosely coupled layers:
//
//   1. Scheduling (schedQueue)
//      Orders pending tasks. BucketQueue keeps one FIFO ring per level
//      and a bitmap of non-empty levels; HeapQueue keeps a single binary
//      heap keyed on priority and arrival sequence. Both give the same
//      guarantees.
//
//   2. Execution (Pool / workers)
//      A fixed set of goroutines started by NewPool. Workers sleep on a
//      condition variable while the queue is empty and take one task at
//      a time.
//
//   3. Task lifecycle
//      A task binds an operation, its Future, a CancelToken, an optional
//      context, retry policy and cleanup.
//
// # Submitting
//
//	p := priopool.NewPool(4)
//	defer p.Stop()
//
//	f, cancel, err := priopool.Submit(p, func() (int, error) {
//		return compute(42)
//	}, priopool.WithPriority(priopool.High))
//
//	v, err := f.Get()
//
// # Cancellation
//
// CancelToken.Cancel, or the end of the context given with WithContext,
// skips a task that no worker has started yet: its operation never runs and
// its future resolves with ErrCancelled. A task that already started runs to
// completion.
//
// # Waiting and shutdown
//
// Wait, WaitContext and WaitFor block until nothing is pending or running.
// Shutdown stops accepting tasks, discards whatever is still queued (or runs
// it first with Options.DrainOnStop) and waits for the workers to exit.
//
// # Error handling
//
// The pool distinguishes between two classes of errors:
//
//   - Task errors: returned by operations or produced by panic recovery,
//     delivered through the future as *OperationError
//   - Internal errors: failures inside the pool itself, such as a worker
//     that could not be pinned
//
// Both are logged and may also be observed through the OnTaskError and
// OnInternalError hooks. Neither stops the pool.
//
// # CPU pinning
//
// On Linux, workers may optionally be pinned to specific CPUs.
// When enabled, workers are locked to OS threads and restricted
// to run on a single CPU core.
//
// # Metrics
//
// A MetricsPolicy receives counters and gauges for every task transition.
// AtomicMetrics is a dependency-free implementation; the prommetrics
// subpackage exports the same data to Prometheus.
package priopool
