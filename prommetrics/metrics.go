// Package prommetrics exports pool activity as Prometheus metrics.
//
// A Metrics value implements priopool.MetricsPolicy and is passed to
// priopool.NewPoolFromOptions:
//
//	reg := prometheus.NewRegistry()
//	m := prommetrics.New(reg, "render")
//	p, err := priopool.NewPoolFromOptions(m, priopool.Options{Workers: 4})
package prommetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Andrej220/go-utils/priopool"
)

const namespace = "priopool"

// Metrics holds the collectors for one pool.
type Metrics struct {
	Submitted *prometheus.CounterVec
	Executed  *prometheus.CounterVec
	Failed    *prometheus.CounterVec
	Cancelled *prometheus.CounterVec
	Discarded *prometheus.CounterVec
	Duration  *prometheus.HistogramVec
	Queued    prometheus.Gauge
	Active    prometheus.Gauge

	levels int
}

// New registers the pool collectors on registerer, labelled with the pool
// name. A nil registerer uses prometheus.DefaultRegisterer.
func New(registerer prometheus.Registerer, pool string) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	reg := prometheus.WrapRegistererWith(prometheus.Labels{"pool": pool}, registerer)
	f := promauto.With(reg)

	byPrio := []string{"priority"}
	return &Metrics{
		Submitted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_submitted_total",
			Help:      "Total number of accepted tasks",
		}, byPrio),
		Executed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_executed_total",
			Help:      "Total number of tasks whose operation ran",
		}, byPrio),
		Failed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_failed_total",
			Help:      "Total number of tasks that returned an error or panicked",
		}, byPrio),
		Cancelled: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_cancelled_total",
			Help:      "Total number of tasks skipped by cancellation",
		}, byPrio),
		Discarded: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_discarded_total",
			Help:      "Total number of pending tasks dropped on shutdown",
		}, byPrio),
		Duration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "task_duration_seconds",
			Help:      "Task execution time in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 100µs to ~26s
		}, byPrio),
		Queued: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_queued",
			Help:      "Number of pending tasks",
		}),
		Active: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_active",
			Help:      "Number of tasks currently running",
		}),
	}
}

// SetLevels selects the priority label scale. The pool calls it on
// construction; until then the default three-level names are used.
func (m *Metrics) SetLevels(levels int) { m.levels = levels }

func (m *Metrics) label(p priopool.Priority) string {
	if m.levels == 0 {
		return p.String()
	}
	return p.Label(m.levels)
}

func (m *Metrics) IncSubmitted(p priopool.Priority) {
	m.Submitted.WithLabelValues(m.label(p)).Inc()
}

func (m *Metrics) IncExecuted(p priopool.Priority, d time.Duration) {
	m.Executed.WithLabelValues(m.label(p)).Inc()
	m.Duration.WithLabelValues(m.label(p)).Observe(d.Seconds())
}

func (m *Metrics) IncFailed(p priopool.Priority) {
	m.Failed.WithLabelValues(m.label(p)).Inc()
}

func (m *Metrics) IncCancelled(p priopool.Priority) {
	m.Cancelled.WithLabelValues(m.label(p)).Inc()
}

func (m *Metrics) IncDiscarded(p priopool.Priority) {
	m.Discarded.WithLabelValues(m.label(p)).Inc()
}

func (m *Metrics) SetQueued(n int) { m.Queued.Set(float64(n)) }
func (m *Metrics) SetActive(n int) { m.Active.Set(float64(n)) }

var (
	_ priopool.MetricsPolicy = (*Metrics)(nil)
	_ priopool.LevelAware    = (*Metrics)(nil)
)
