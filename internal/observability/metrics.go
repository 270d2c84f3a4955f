// Package observability exposes Prometheus metrics for the grid service.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "ppgrid"

// Metrics holds the Prometheus counters and histograms for grid operations.
type Metrics struct {
	Requests         *prometheus.CounterVec   // labels: operation, outcome={success,client_error,error}
	OperationSeconds *prometheus.HistogramVec // labels: operation
	PointsProcessed  *prometheus.CounterVec   // labels: operation
	GridsBuilt       *prometheus.CounterVec   // labels: gridtype
	GridCache        *prometheus.CounterVec   // labels: result={hit,miss}
}

// NewMetrics creates the grid metrics and registers them with reg. A nil reg
// leaves them unregistered, which tests use to avoid duplicate registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "Grid operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		OperationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Duration of grid operations in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"operation"}),
		PointsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_processed_total",
			Help:      "Data values read by grid operations.",
		}, []string{"operation"}),
		GridsBuilt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grids_built_total",
			Help:      "Grids built from descriptors by gridtype.",
		}, []string{"gridtype"}),
		GridCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grid_cache_total",
			Help:      "Named grid cache lookups by result.",
		}, []string{"result"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.Requests,
			m.OperationSeconds,
			m.PointsProcessed,
			m.GridsBuilt,
			m.GridCache,
		)
	}
	return m
}

// Observe records one finished operation.
func (m *Metrics) Observe(operation, outcome string, seconds float64, points int) {
	if m == nil {
		return
	}
	m.Requests.WithLabelValues(operation, outcome).Inc()
	m.OperationSeconds.WithLabelValues(operation).Observe(seconds)
	if points > 0 {
		m.PointsProcessed.WithLabelValues(operation).Add(float64(points))
	}
}

// GridBuilt records a successfully built grid.
func (m *Metrics) GridBuilt(gridtype string) {
	if m == nil {
		return
	}
	m.GridsBuilt.WithLabelValues(gridtype).Inc()
}

// CacheLookup records a named grid cache hit or miss.
func (m *Metrics) CacheLookup(result string) {
	if m == nil {
		return
	}
	m.GridCache.WithLabelValues(result).Inc()
}
