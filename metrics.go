package priopool

import (
	"sync/atomic"
	"time"
)

// MetricsPolicy defines hooks used by the pool to report queueing and
// execution activity.
//
// Implementations must be safe for concurrent use. SetQueued and SetActive
// are called with the pool mutex held so gauges never go backwards; the
// counters are called outside it. All hooks must be lightweight and
// non-blocking.
type MetricsPolicy interface {
	// IncSubmitted counts an accepted task.
	IncSubmitted(p Priority)

	// IncExecuted counts a task whose operation ran to completion,
	// successfully or not, and records how long it ran.
	IncExecuted(p Priority, d time.Duration)

	// IncFailed counts a task whose future resolved with an OperationError.
	IncFailed(p Priority)

	// IncCancelled counts a task skipped by its cancel token or context.
	IncCancelled(p Priority)

	// IncDiscarded counts a pending task dropped by Shutdown.
	IncDiscarded(p Priority)

	// SetQueued and SetActive publish the pending and running task counts.
	SetQueued(n int)
	SetActive(n int)
}

// LevelAware is implemented by metrics that label tasks by priority.
// NewPoolFromOptions calls SetLevels with the pool's level count before any
// task is submitted, so labels can follow Priority.Label.
type LevelAware interface {
	SetLevels(levels int)
}

// AtomicMetrics is a lock-free metrics implementation backed by atomics.
//
// Writes are optimized for hot paths.
// Reads are intended for cold-path observation.
type AtomicMetrics struct {
	submitted atomic.Uint64
	executed  atomic.Uint64

	_ [48]byte // padding to avoid false sharing

	failed    atomic.Uint64
	cancelled atomic.Uint64
	discarded atomic.Uint64

	_ [40]byte

	queued atomic.Int64
	active atomic.Int64
	busyNs atomic.Int64
}

func (m *AtomicMetrics) Submitted() uint64 { return m.submitted.Load() }
func (m *AtomicMetrics) Executed() uint64  { return m.executed.Load() }
func (m *AtomicMetrics) Failed() uint64    { return m.failed.Load() }
func (m *AtomicMetrics) Cancelled() uint64 { return m.cancelled.Load() }
func (m *AtomicMetrics) Discarded() uint64 { return m.discarded.Load() }
func (m *AtomicMetrics) Queued() int64     { return m.queued.Load() }
func (m *AtomicMetrics) Active() int64     { return m.active.Load() }

// Busy returns the total time workers spent inside task operations.
func (m *AtomicMetrics) Busy() time.Duration { return time.Duration(m.busyNs.Load()) }

func (m *AtomicMetrics) IncSubmitted(Priority) { m.submitted.Add(1) }

func (m *AtomicMetrics) IncExecuted(_ Priority, d time.Duration) {
	m.executed.Add(1)
	m.busyNs.Add(int64(d))
}

func (m *AtomicMetrics) IncFailed(Priority)    { m.failed.Add(1) }
func (m *AtomicMetrics) IncCancelled(Priority) { m.cancelled.Add(1) }
func (m *AtomicMetrics) IncDiscarded(Priority) { m.discarded.Add(1) }
func (m *AtomicMetrics) SetQueued(n int)       { m.queued.Store(int64(n)) }
func (m *AtomicMetrics) SetActive(n int)       { m.active.Store(int64(n)) }

//------------- NoopMetrics ----------------------------------

// NoopMetrics is a MetricsPolicy implementation that discards
// all metric updates.
type NoopMetrics struct{}

func (m *NoopMetrics) IncSubmitted(Priority)               {}
func (m *NoopMetrics) IncExecuted(Priority, time.Duration) {}
func (m *NoopMetrics) IncFailed(Priority)                  {}
func (m *NoopMetrics) IncCancelled(Priority)               {}
func (m *NoopMetrics) IncDiscarded(Priority)               {}
func (m *NoopMetrics) SetQueued(int)                       {}
func (m *NoopMetrics) SetActive(int)                       {}
