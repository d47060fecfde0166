package priopool

import (
	"math/bits"
)

const (
	initialBucketSize = 16
)

// bucketQueue keeps one FIFO ring per priority level.
//
// Bit i of nonEmpty is set while level i has pending tasks, so Pop finds
// the highest non-empty level with a single bits.Len64.
type bucketQueue struct {
	buckets  []*fifoQueue[*task]
	nonEmpty uint64
	length   int
}

func newBucketQueue(levels int, initialBSize int) *bucketQueue {
	if levels <= 0 {
		levels = DefaultLevels
	}
	if levels > MaxLevels {
		levels = MaxLevels
	}
	buckets := make([]*fifoQueue[*task], levels)
	for i := range buckets {
		buckets[i] = newFifoQueue[*task](initialBSize)
	}
	return &bucketQueue{buckets: buckets}
}

func (q *bucketQueue) Len() int { return q.length }

func (q *bucketQueue) Push(t *task) {
	idx := int(t.prio)
	q.buckets[idx].Push(t)
	q.nonEmpty |= uint64(1) << uint(idx)
	q.length++
}

func (q *bucketQueue) Pop() (*task, bool) {
	if q.nonEmpty == 0 {
		return nil, false
	}
	idx := bits.Len64(q.nonEmpty) - 1

	b := q.buckets[idx]
	t, ok := b.Pop()
	if !ok {
		// bitmap out of sync; clear and retry
		q.nonEmpty &^= uint64(1) << uint(idx)
		return q.Pop()
	}
	if b.Len() == 0 {
		q.nonEmpty &^= uint64(1) << uint(idx)
	}
	q.length--
	return t, true
}

func (q *bucketQueue) Drain() []*task {
	return drainQueue(q)
}
