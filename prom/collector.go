// Package prom exports engine metrics to Prometheus.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/hupe1980/rascal"
)

// Collector implements rascal.MetricsCollector on Prometheus metrics.
type Collector struct {
	operations *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	features   prometheus.Histogram
	dotCells   prometheus.Counter
	savedBytes prometheus.Counter
}

var _ rascal.MetricsCollector = (*Collector)(nil)

// NewCollector registers the metrics on reg under the given namespace.
// A nil reg uses prometheus.DefaultRegisterer.
func NewCollector(reg prometheus.Registerer, namespace string) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Total number of engine operations by operation and status.",
		}, []string{"op", "status"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of engine operations.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 10), // 0.1ms to ~26s
		}, []string{"op"}),
		features: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "densify_features",
			Help:      "Number of features after a densify.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
		}),
		dotCells: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dot_cells_total",
			Help:      "Total number of kernel entries computed by dot.",
		}),
		savedBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "saved_bytes_total",
			Help:      "Total size of written snapshots.",
		}),
	}
}

func (c *Collector) observe(op string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.operations.WithLabelValues(op, status).Inc()
	c.duration.WithLabelValues(op).Observe(duration.Seconds())
}

// RecordDensify implements rascal.MetricsCollector.
func (c *Collector) RecordDensify(features int, duration time.Duration, err error) {
	c.observe("densify", duration, err)
	if err == nil {
		c.features.Observe(float64(features))
	}
}

// RecordDot implements rascal.MetricsCollector.
func (c *Collector) RecordDot(rows, cols int, duration time.Duration, err error) {
	c.observe("dot", duration, err)
	if err == nil {
		c.dotCells.Add(float64(rows) * float64(cols))
	}
}

// RecordSave implements rascal.MetricsCollector.
func (c *Collector) RecordSave(bytes int64, duration time.Duration, err error) {
	c.observe("save", duration, err)
	if err == nil {
		c.savedBytes.Add(float64(bytes))
	}
}

// RecordLoad implements rascal.MetricsCollector.
func (c *Collector) RecordLoad(duration time.Duration, err error) {
	c.observe("load", duration, err)
}
