package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agencydesk_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "agencydesk_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ClaimReviewsTotal counts claim review outcomes.
	ClaimReviewsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agencydesk_claim_reviews_total",
		Help: "Total number of claim reviews by outcome",
	}, []string{"outcome"})

	// ImportRowsTotal counts bulk import rows by validation result.
	ImportRowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agencydesk_import_rows_total",
		Help: "Total number of bulk import rows by validation result",
	}, []string{"result"})

	// EventsPublishedTotal counts published mutation events by type.
	EventsPublishedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agencydesk_events_published_total",
		Help: "Total number of mutation events published",
	}, []string{"event_type"})

	// WebSocketConnectionsTotal is the gauge of active admin event stream connections.
	WebSocketConnectionsTotal = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "agencydesk_websocket_connections_total",
		Help: "Total number of active WebSocket connections",
	})

	// WebSocketBackpressureDrops counts messages dropped on slow event stream clients.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "agencydesk_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})
)

// ObserveQuery records the latency of a database query.
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}
