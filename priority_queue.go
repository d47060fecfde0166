package priopool

import (
	"container/heap"
)

const (
	initialHeapCapacity = 256
)

// taskHeap is a max-heap on priority with the arrival sequence as a
// secondary key, so equal priorities pop in submission order.
type taskHeap []*task

func (h taskHeap) Len() int { return len(h) }
func (h taskHeap) Less(i, j int) bool {
	if h[i].prio != h[j].prio {
		return h[i].prio > h[j].prio
	}
	return h[i].seq < h[j].seq
}
func (h taskHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *taskHeap) Push(x any) {
	*h = append(*h, x.(*task))
}

func (h *taskHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return t
}

// heapQueue implements schedQueue on container/heap.
type heapQueue struct {
	h taskHeap
}

func newHeapQueue(capacity int) *heapQueue {
	q := &heapQueue{h: make(taskHeap, 0, capacity)}
	heap.Init(&q.h)
	return q
}

// Push inserts a task in O(log n).
func (q *heapQueue) Push(t *task) {
	heap.Push(&q.h, t)
}

// Pop removes the highest-priority task. Ties go to the lowest sequence
// number, i.e. the earliest submission.
func (q *heapQueue) Pop() (*task, bool) {
	if q.h.Len() == 0 {
		return nil, false
	}
	return heap.Pop(&q.h).(*task), true
}

func (q *heapQueue) Len() int { return q.h.Len() }

func (q *heapQueue) Drain() []*task {
	return drainQueue(q)
}
