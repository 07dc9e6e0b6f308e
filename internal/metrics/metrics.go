package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query execution metrics, labelled by backend ("gremlin" or "cosmos").
var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dagraph_queries_total",
			Help: "Total number of traversals submitted to a graph backend",
		},
		[]string{"backend", "status"},
	)

	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "dagraph_query_duration_seconds",
			Help: "Duration of traversal submissions in seconds",
			// Cosmos RU throttling can push single traversals into seconds.
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"backend"},
	)

	ConnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dagraph_connections_total",
			Help: "Connection handles opened, by outcome",
		},
		[]string{"backend", "status"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dagraph_cache_lookups_total",
			Help: "Row cache lookups for read-only traversals",
		},
		[]string{"result"}, // hit, miss, error
	)
)

// ObserveQuery records one traversal submission.
func ObserveQuery(backend string, elapsed time.Duration, err error) {
	QueriesTotal.WithLabelValues(backend, status(err)).Inc()
	QueryDuration.WithLabelValues(backend).Observe(elapsed.Seconds())
}

// ObserveConnect records one connection attempt.
func ObserveConnect(backend string, err error) {
	ConnectionsTotal.WithLabelValues(backend, status(err)).Inc()
}

// WriteFile dumps every registered metric to path in the Prometheus text
// format, for node_exporter's textfile collector or a later push.
func WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, prometheus.DefaultGatherer)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}
