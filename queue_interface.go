package priopool

// schedQueue holds pending tasks and decides which one a free worker gets
// next.
//
// Every method is called with the pool mutex held, so implementations need
// no synchronization of their own. All implementations must pop a strictly
// higher priority before a lower one and keep submission order among tasks
// of equal priority.
type schedQueue interface {
	// Push appends a task under its priority.
	Push(t *task)

	// Pop removes the highest-priority, oldest task.
	// The boolean reports whether a task was available.
	Pop() (*task, bool)

	// Len returns the number of pending tasks.
	Len() int

	// Drain removes and returns every pending task in pop order.
	Drain() []*task
}

func (p *Pool) makeQueue() schedQueue {
	switch p.opts.QT {
	case HeapQueue:
		return newHeapQueue(initialHeapCapacity)
	case BucketQueue:
		return newBucketQueue(p.opts.Levels, initialBucketSize)
	default:
		return newBucketQueue(p.opts.Levels, initialBucketSize)
	}
}

// drainQueue empties any schedQueue through Pop.
func drainQueue(q schedQueue) []*task {
	out := make([]*task, 0, q.Len())
	for {
		t, ok := q.Pop()
		if !ok {
			return out
		}
		out = append(out, t)
	}
}
