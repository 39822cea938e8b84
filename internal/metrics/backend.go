package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Backend query Prometheus metrics.
var (
	backendQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "newsearch",
			Name:      "backend_query_duration_seconds",
			Help:      "Elasticsearch query duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"index", "status"},
	)

	backendQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "newsearch",
			Name:      "backend_queries_total",
			Help:      "Total number of Elasticsearch queries",
		},
		[]string{"index", "status"},
	)
)

var backendMetricsRegistered bool

// RegisterBackendMetrics registers backend query metrics. Must be called once from main.
func RegisterBackendMetrics() {
	if backendMetricsRegistered {
		return
	}
	prometheus.MustRegister(backendQueryDuration)
	prometheus.MustRegister(backendQueriesTotal)
	backendMetricsRegistered = true
}

// ObserveBackendQuery records one backend search call. A zero status means
// the call failed before an HTTP response arrived.
func ObserveBackendQuery(index string, status int, d time.Duration) {
	label := "error"
	if status > 0 {
		label = strconv.Itoa(status)
	}
	backendQueryDuration.WithLabelValues(index, label).Observe(d.Seconds())
	backendQueriesTotal.WithLabelValues(index, label).Inc()
}
