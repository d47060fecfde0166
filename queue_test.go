package priopool

import (
	"testing"
)

func newTaskSeq(prio Priority, seq uint64) *task {
	return &task{prio: prio, seq: seq}
}

func TestQueuesOrdering(t *testing.T) {
	queues := map[string]func() schedQueue{
		"bucket": func() schedQueue { return newBucketQueue(5, 2) },
		"heap":   func() schedQueue { return newHeapQueue(2) },
	}

	for name, mk := range queues {
		t.Run(name, func(t *testing.T) {
			q := mk()

			in := []*task{
				newTaskSeq(0, 1),
				newTaskSeq(4, 2),
				newTaskSeq(2, 3),
				newTaskSeq(4, 4),
				newTaskSeq(0, 5),
				newTaskSeq(2, 6),
			}
			for _, tk := range in {
				q.Push(tk)
			}
			if q.Len() != len(in) {
				t.Fatalf("Len = %d; want %d", q.Len(), len(in))
			}

			wantSeq := []uint64{2, 4, 3, 6, 1, 5}
			for i, want := range wantSeq {
				tk, ok := q.Pop()
				if !ok {
					t.Fatalf("pop %d: queue empty", i)
				}
				if tk.seq != want {
					t.Fatalf("pop %d: seq = %d; want %d", i, tk.seq, want)
				}
			}
			if _, ok := q.Pop(); ok {
				t.Fatal("expected empty queue")
			}
			if q.Len() != 0 {
				t.Fatalf("Len = %d; want 0", q.Len())
			}
		})
	}
}

func TestQueuesDrain(t *testing.T) {
	queues := map[string]schedQueue{
		"bucket": newBucketQueue(DefaultLevels, 0),
		"heap":   newHeapQueue(0),
	}

	for name, q := range queues {
		t.Run(name, func(t *testing.T) {
			for i := range 10 {
				q.Push(newTaskSeq(Priority(i%DefaultLevels), uint64(i+1)))
			}

			drained := q.Drain()
			if len(drained) != 10 {
				t.Fatalf("drained %d tasks; want 10", len(drained))
			}
			if q.Len() != 0 {
				t.Fatalf("Len after Drain = %d; want 0", q.Len())
			}
			for i := 1; i < len(drained); i++ {
				if drained[i].prio > drained[i-1].prio {
					t.Fatalf("drain not in priority order at %d", i)
				}
			}
		})
	}
}

func TestBucketQueueBitmap(t *testing.T) {
	q := newBucketQueue(MaxLevels, 1)

	q.Push(newTaskSeq(MaxLevels-1, 1))
	q.Push(newTaskSeq(0, 2))

	if q.nonEmpty != 1|uint64(1)<<63 {
		t.Fatalf("bitmap = %b", q.nonEmpty)
	}

	tk, _ := q.Pop()
	if tk.prio != MaxLevels-1 {
		t.Fatalf("prio = %d; want %d", tk.prio, MaxLevels-1)
	}
	if q.nonEmpty != 1 {
		t.Fatalf("bitmap after pop = %b; want 1", q.nonEmpty)
	}

	q.Pop()
	if q.nonEmpty != 0 {
		t.Fatalf("bitmap after draining = %b; want 0", q.nonEmpty)
	}
}

func TestHeapQueuePopReleasesSlot(t *testing.T) {
	q := newHeapQueue(4)
	for i := range 4 {
		q.Push(newTaskSeq(Priority(i%3), uint64(i+1)))
	}

	q.Pop()
	if got := q.h[:cap(q.h)][q.Len()]; got != nil {
		t.Fatal("popped heap slot still holds a reference")
	}
}

func TestPriorityString(t *testing.T) {
	cases := map[Priority]string{
		Low:    "low",
		Medium: "medium",
		High:   "high",
		7:      "p7",
	}
	for p, want := range cases {
		if got := p.String(); got != want {
			t.Fatalf("Priority(%d).String() = %q; want %q", int(p), got, want)
		}
	}
}

func TestDefaultPriority(t *testing.T) {
	if got := defaultPriority(DefaultLevels); got != Medium {
		t.Fatalf("defaultPriority(3) = %v; want medium", got)
	}
	if got := defaultPriority(1); got != Low {
		t.Fatalf("defaultPriority(1) = %v; want low", got)
	}
	if validPriority(3, DefaultLevels) || validPriority(-1, DefaultLevels) {
		t.Fatal("validPriority accepted an out-of-range priority")
	}
}

func TestPriorityLabel(t *testing.T) {
	cases := []struct {
		prio   Priority
		levels int
		want   string
	}{
		{Low, DefaultLevels, "low"},
		{High, DefaultLevels, "high"},
		{Medium, 5, "p1"},
		{High, 5, "p2"},
		{4, 5, "p4"},
		{Low, 1, "p0"},
	}
	for _, c := range cases {
		if got := c.prio.Label(c.levels); got != c.want {
			t.Fatalf("Priority(%d).Label(%d) = %q; want %q", int(c.prio), c.levels, got, c.want)
		}
	}
}
