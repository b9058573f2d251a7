package dagflow

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics records per-node run outcomes under the "dagflow_"
// namespace: a counter of finished/aborted nodes by state, and a gauge of
// nodes currently in flight.
type PrometheusMetrics struct {
	nodeResults *prometheus.CounterVec
	inflight    prometheus.Gauge
}

// NewPrometheusMetrics registers dagflow's metrics with registry. Pass
// prometheus.DefaultRegisterer for the global registry, or a fresh
// prometheus.NewRegistry() for test isolation.
func NewPrometheusMetrics(registry prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(registry)
	return &PrometheusMetrics{
		nodeResults: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dagflow",
			Name:      "node_results_total",
			Help:      "Count of node executions by terminal state (finished, aborted).",
		}, []string{"node_id", "state"}),
		inflight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "dagflow",
			Name:      "inflight_nodes",
			Help:      "Number of nodes currently executing within the active run.",
		}),
	}
}

// ObserveNode records one node's terminal state.
func (m *PrometheusMetrics) ObserveNode(nodeID string, state ExecState) {
	m.nodeResults.WithLabelValues(nodeID, state.String()).Inc()
}

// SetInflight reports the current in-flight node count, useful around a
// ParallelProcessor dispatch.
func (m *PrometheusMetrics) SetInflight(n int) {
	m.inflight.Set(float64(n))
}
