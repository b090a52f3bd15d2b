package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// OptimizerMetrics tracks cart optimization runs by strategy.
type OptimizerMetrics struct {
	runs    *prometheus.CounterVec
	latency *prometheus.HistogramVec
	savings *prometheus.HistogramVec
	changes *prometheus.HistogramVec
}

func NewOptimizerMetrics(reg prometheus.Registerer) *OptimizerMetrics {
	if reg == nil {
		return &OptimizerMetrics{}
	}
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "optimizer",
		Name:      "runs_total",
		Help:      "Cart optimization runs.",
	}, []string{"strategy"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "optimizer",
		Name:      "duration_seconds",
		Help:      "Time spent searching for a cheaper cart assignment.",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
	}, []string{"strategy"})
	savings := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "optimizer",
		Name:      "savings",
		Help:      "Savings found per optimization run, in catalog currency.",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
	}, []string{"strategy"})
	changes := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "optimizer",
		Name:      "changes",
		Help:      "Items reassigned per optimization run.",
		Buckets:   prometheus.LinearBuckets(0, 1, 8),
	}, []string{"strategy"})
	reg.MustRegister(runs, latency, savings, changes)
	return &OptimizerMetrics{runs: runs, latency: latency, savings: savings, changes: changes}
}

// ObserveRun records a completed optimization.
func (m *OptimizerMetrics) ObserveRun(strategy string, took time.Duration, savings float64, changes int) {
	if m == nil || m.runs == nil {
		return
	}
	label := normalizeLabel(strategy)
	m.runs.WithLabelValues(label).Inc()
	m.latency.WithLabelValues(label).Observe(took.Seconds())
	m.savings.WithLabelValues(label).Observe(savings)
	m.changes.WithLabelValues(label).Observe(float64(changes))
}
