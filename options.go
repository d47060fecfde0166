package priopool

import (
	"context"
	"fmt"
	"runtime"
	"strings"
)

// QueueType defines the data structure that orders pending tasks.
//
// Both types give the same ordering guarantees; they differ only in cost.
// The type is configured via Options.QT when creating a new Pool.
type QueueType int

const (
	// BucketQueue keeps one FIFO ring per priority level and is the default.
	BucketQueue QueueType = iota

	// HeapQueue keeps all tasks in a binary heap keyed by
	// (priority, arrival sequence).
	HeapQueue
)

func (qt QueueType) String() string {
	switch qt {
	case BucketQueue:
		return "BucketQueue"
	case HeapQueue:
		return "HeapQueue"
	default:
		return "Unknown"
	}
}

// ParseQueueType maps a config name ("bucket" or "heap") to a QueueType.
func ParseQueueType(s string) (QueueType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "bucket", "bucketqueue":
		return BucketQueue, nil
	case "heap", "heapqueue":
		return HeapQueue, nil
	default:
		return 0, fmt.Errorf("%w: unknown queue type %q", ErrInvalidOptions, s)
	}
}

// Options configure a Pool.
//
// Zero values are replaced with defaults in FillDefaults, except Workers:
// zero workers is a legal, if idle, pool.
type Options struct {
	// Workers is the fixed number of worker goroutines. Negative selects
	// runtime.GOMAXPROCS(0).
	Workers int

	// Levels is the number of priority levels, 1..MaxLevels.
	Levels int

	QT QueueType

	// DrainOnStop makes workers run every pending task before exiting on
	// Shutdown. By default pending tasks are discarded.
	DrainOnStop bool

	// PinWorkers locks each worker to an OS thread bound to one CPU.
	// Linux only; elsewhere it reports ErrPinUnsupported and continues.
	PinWorkers bool

	// Retry is the policy used by WithRetry fields left at zero.
	Retry RetryPolicy

	// Ctx carries the pool logger. Defaults to context.Background().
	Ctx context.Context

	OnTaskError     func(error)
	OnInternalError func(error)
}

func (o *Options) FillDefaults() {
	if o.Workers < 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}
	if o.Levels <= 0 {
		o.Levels = DefaultLevels
	}
	if o.Ctx == nil {
		o.Ctx = context.Background()
	}
	o.Retry.fillDefaults()
}

// Validate reports option values FillDefaults cannot repair, such as an
// explicit Retry.Max below Retry.Initial.
func (o *Options) Validate() error {
	if o.Levels > MaxLevels {
		return fmt.Errorf("%w: levels %d exceeds %d", ErrInvalidOptions, o.Levels, MaxLevels)
	}
	if o.QT != BucketQueue && o.QT != HeapQueue {
		return fmt.Errorf("%w: queue type %d", ErrInvalidOptions, int(o.QT))
	}
	if o.Retry.Max < o.Retry.Initial {
		return fmt.Errorf("%w: retry max %s below initial %s", ErrInvalidOptions, o.Retry.Max, o.Retry.Initial)
	}
	return nil
}
