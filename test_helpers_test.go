package priopool_test

import (
	"os"
	"runtime"
	"strconv"
	"sync"
	"testing"
	"time"

	pp "github.com/Andrej220/go-utils/priopool"
)

var queueTypes = []pp.QueueType{
	pp.BucketQueue,
	pp.HeapQueue,
}

func newTestOptions(workers int, qt pp.QueueType) pp.Options {
	return pp.Options{
		Workers: workers,
		QT:      qt,
	}
}

func newTestPool(t *testing.T, workers int, qt pp.QueueType) *pp.Pool {
	t.Helper()
	return newTestPoolWith(t, &pp.NoopMetrics{}, newTestOptions(workers, qt))
}

func newTestPoolWith(t *testing.T, m pp.MetricsPolicy, opts pp.Options) *pp.Pool {
	t.Helper()

	p, err := pp.NewPoolFromOptions(m, opts)
	if err != nil {
		t.Fatalf("NewPoolFromOptions: %v", err)
	}
	t.Cleanup(p.Stop)
	return p
}

func waitUntil(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		runtime.Gosched()
	}
	t.Fatal("condition not satisfied before timeout")
}

// gate blocks every worker it is submitted to until open is called.
type gate struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGate() *gate {
	return &gate{started: make(chan struct{}, 64), release: make(chan struct{})}
}

func (g *gate) task() (int, error) {
	g.started <- struct{}{}
	<-g.release
	return 0, nil
}

func (g *gate) waitStarted(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-g.started:
		case <-time.After(time.Second):
			t.Fatalf("only %d of %d gate tasks started", i, n)
		}
	}
}

func (g *gate) open() { g.once.Do(func() { close(g.release) }) }

// recorder collects execution order.
type recorder struct {
	mu    sync.Mutex
	order []string
}

func (r *recorder) add(name string) {
	r.mu.Lock()
	r.order = append(r.order, name)
	r.mu.Unlock()
}

func (r *recorder) get() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.order...)
}

func (r *recorder) task(name string) func() (string, error) {
	return func() (string, error) {
		r.add(name)
		return name, nil
	}
}

func getenvInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
