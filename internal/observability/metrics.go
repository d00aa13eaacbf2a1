package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkpost_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// NameResolutions counts tag/category resolutions by kind and outcome
	// (found, created, conflict).
	NameResolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkpost_name_resolutions_total",
		Help: "Total number of tag and category name resolutions",
	}, []string{"kind", "outcome"})

	// SweepRemoved counts unreferenced tags/categories removed by the sweeper.
	SweepRemoved = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkpost_sweep_removed_total",
		Help: "Total number of unreferenced names removed",
	}, []string{"kind"})

	// SweepRuns counts sweeper runs by trigger (post_delete, schedule) and result.
	SweepRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkpost_sweep_runs_total",
		Help: "Total number of orphan sweeps",
	}, []string{"trigger", "result"})

	// CacheRequests counts post cache lookups by result (hit, miss, error).
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkpost_cache_requests_total",
		Help: "Total number of cache lookups",
	}, []string{"cache", "result"})

	// EventsPublished counts domain events published to Redis by type.
	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "inkpost_events_published_total",
		Help: "Total number of domain events published",
	}, []string{"event_type"})
)

// ObserveQuery records the latency of a database query started at start.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}
