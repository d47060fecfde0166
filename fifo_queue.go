package priopool

const (
	initialFifoCapacity = 64
)

// fifoQueue is a growable first-in-first-out ring buffer.
//
// It backs each priority level of the bucket queue. Elements come out
// strictly in the order they were pushed; when the ring is full Push
// doubles the buffer and keeps the order intact.
type fifoQueue[E any] struct {
	buf        []E // circular buffer
	head, tail int // read/write indices
	size       int // number of elements currently buffered
	capacity   int
}

// newFifoQueue creates a FIFO queue with the given initial capacity.
func newFifoQueue[E any](capacity int) *fifoQueue[E] {
	if capacity <= 0 {
		capacity = initialFifoCapacity
	}
	return &fifoQueue[E]{
		buf:      make([]E, capacity),
		capacity: capacity,
	}
}

// Len returns the number of elements currently waiting in the queue.
func (q *fifoQueue[E]) Len() int { return q.size }

// Push inserts an element at the tail, growing the buffer if needed.
func (q *fifoQueue[E]) Push(e E) {
	if q.size == q.capacity {
		q.grow()
	}
	q.buf[q.tail] = e
	q.tail++
	if q.tail == q.capacity {
		q.tail = 0
	}
	q.size++
}

// Pop removes and returns the oldest element.
//
// If the queue is empty, Pop returns the zero value and false.
func (q *fifoQueue[E]) Pop() (E, bool) {
	var zero E
	if q.size == 0 {
		return zero, false
	}
	e := q.buf[q.head]
	q.buf[q.head] = zero // release the reference
	q.head++
	if q.head == q.capacity {
		q.head = 0
	}
	q.size--
	return e, true
}

// grow doubles the capacity and unwraps the ring so head is at index 0.
func (q *fifoQueue[E]) grow() {
	newCap := q.capacity * 2
	buf := make([]E, newCap)
	n := copy(buf, q.buf[q.head:])
	copy(buf[n:], q.buf[:q.head])
	q.buf = buf
	q.head = 0
	q.tail = q.size
	q.capacity = newCap
}
