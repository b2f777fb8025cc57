// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodwatch_http_requests_total",
			Help: "Total HTTP requests by route and status",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goodwatch_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	RecommendationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodwatch_recommendations_total",
			Help: "Recommendation requests by strategy and outcome kind",
		},
		[]string{"strategy", "kind"},
	)

	RecommendationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goodwatch_recommendation_duration_seconds",
			Help:    "Time to produce a recommendation result",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 20},
		},
		[]string{"strategy"},
	)

	RecommendedMovies = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "goodwatch_recommendation_size",
			Help:    "Number of movies returned per recommendation result",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6},
		},
		[]string{"strategy"},
	)

	SanitizedMovies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodwatch_sanitized_movies_total",
			Help: "Model picks dropped during sanitizing, by reason",
		},
		[]string{"reason"},
	)

	PosterLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodwatch_poster_lookups_total",
			Help: "Poster lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	PoolSwaps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodwatch_pool_swaps_total",
			Help: "Watched actions by how the replacement was served",
		},
		[]string{"source"}, // pool, fetch, none
	)

	PoolTopUps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodwatch_pool_topups_total",
			Help: "Background pool refills by outcome",
		},
		[]string{"outcome"},
	)

	ActiveViews = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "goodwatch_active_views",
			Help: "Results views currently holding a replacement pool",
		},
	)

	HistoryWriteFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "goodwatch_history_write_failures_total",
			Help: "Watched-history writes that failed after the swap was served",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "goodwatch_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodwatch_circuit_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	CatalogImported = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "goodwatch_catalog_movies_total",
			Help: "Catalog rows written by ingest, by operation",
		},
		[]string{"operation"}, // import, enrich
	)
)

// RecordHTTPRequest records one served request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordRecommendation records one generator call. kind is the error kind, or
// "ok".
func RecordRecommendation(strategy, kind string, movies int, duration time.Duration) {
	RecommendationsTotal.WithLabelValues(strategy, kind).Inc()
	RecommendationDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	if kind == "ok" {
		RecommendedMovies.WithLabelValues(strategy).Observe(float64(movies))
	}
}
