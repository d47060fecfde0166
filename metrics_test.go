package priopool_test

import (
	"errors"
	"testing"
	"time"

	pp "github.com/Andrej220/go-utils/priopool"
)

func TestAtomicMetrics(t *testing.T) {
	m := &pp.AtomicMetrics{}
	p := newTestPoolWith(t, m, newTestOptions(1, pp.BucketQueue))

	g := newGate()
	defer g.open()
	_, _, _ = pp.Submit(p, g.task)
	g.waitStarted(t, 1)

	_, _, _ = p.Go(func() error { return errors.New("fail") })
	_, cancel, _ := p.Go(func() error { return nil })
	cancel.Cancel()
	_, _, _ = p.Go(func() error {
		time.Sleep(time.Millisecond)
		return nil
	})

	waitUntil(t, time.Second, func() bool { return m.Queued() == 3 && m.Active() == 1 })

	g.open()
	p.Wait()

	if got := m.Submitted(); got != 4 {
		t.Fatalf("submitted = %d; want 4", got)
	}
	if got := m.Executed(); got != 3 {
		t.Fatalf("executed = %d; want 3", got)
	}
	if got := m.Failed(); got != 1 {
		t.Fatalf("failed = %d; want 1", got)
	}
	if got := m.Cancelled(); got != 1 {
		t.Fatalf("cancelled = %d; want 1", got)
	}
	if m.Queued() != 0 || m.Active() != 0 {
		t.Fatalf("gauges = (%d, %d); want zero", m.Queued(), m.Active())
	}
	if m.Busy() < time.Millisecond {
		t.Fatalf("busy = %s; want at least 1ms", m.Busy())
	}
}

func TestAtomicMetricsDiscarded(t *testing.T) {
	m := &pp.AtomicMetrics{}
	p, err := pp.NewPoolFromOptions(m, pp.Options{Workers: 0})
	if err != nil {
		t.Fatal(err)
	}

	for range 3 {
		_, _, _ = p.Go(func() error { return nil })
	}
	p.Stop()

	if got := m.Discarded(); got != 3 {
		t.Fatalf("discarded = %d; want 3", got)
	}
	if got := m.Executed(); got != 0 {
		t.Fatalf("executed = %d; want 0", got)
	}
}
