package registry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// --- Metrics ---

// Metrics holds all the Prometheus metrics for the registry.
type Metrics struct {
	opDuration *prometheus.HistogramVec
	opsTotal   *prometheus.CounterVec
	tableSize  *prometheus.GaugeVec
}

// NewMetrics creates and registers the metrics for the registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		opDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "registry_operation_duration_seconds",
			Help:    "Time taken to execute a single registry operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"op"}),
		opsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "registry_operations_total",
			Help: "Total number of registry operations, labeled by operation and result.",
		}, []string{"op", "result"}),
		tableSize: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "registry_table_size",
			Help: "Current number of entries per registry table.",
		}, []string{"table"}),
	}
	reg.MustRegister(m.opDuration, m.opsTotal, m.tableSize)
	return m
}

// observe records one completed operation. A nil *Metrics is a no-op so the
// registry can run unmetered.
func (m *Metrics) observe(op string, start time.Time, err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.opDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	m.opsTotal.WithLabelValues(op, result).Inc()
}

// setTableSizes refreshes the table-size gauges from current state.
func (m *Metrics) setTableSizes(s *State) {
	if m == nil {
		return
	}
	livePending := 0
	for i := range s.pendingFeeds {
		if !s.pendingTombstoned(i) {
			livePending++
		}
	}
	m.tableSize.WithLabelValues("deployers").Set(float64(len(s.deployerList)))
	m.tableSize.WithLabelValues("pending_feeds_live").Set(float64(livePending))
	m.tableSize.WithLabelValues("pending_feeds_total").Set(float64(len(s.pendingFeeds)))
	m.tableSize.WithLabelValues("approved_feeds").Set(float64(len(s.approvedFeeds)))
}
