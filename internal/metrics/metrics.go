// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for backend calls.
const (
	OutcomeSuccess     = "success"
	OutcomeBackendErr  = "backend_error"
	OutcomeTransport   = "transport_error"
	OutcomeRateLimited = "rate_limited"
	OutcomeRejected    = "rejected"
	OutcomeCanceled    = "canceled"
)

var (
	// Backend Client Metrics
	BackendRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_backend_requests_total",
			Help: "Total number of calls to the analysis/generation backend",
		},
		[]string{"endpoint", "outcome"},
	)

	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "cadence_backend_request_duration_seconds",
			Help: "Backend call duration in seconds",
			// Generation calls can run for tens of seconds.
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"endpoint"},
	)

	BackendRetries = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_backend_retries_total",
			Help: "Total number of retries after HTTP 429 responses",
		},
		[]string{"endpoint"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cadence_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerConsecutiveFailures = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cadence_circuit_breaker_consecutive_failures",
			Help: "Current number of consecutive failures",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// History Store Metrics
	HistoryRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_history_refreshes_total",
			Help: "Total number of history list refreshes",
		},
		[]string{"kind", "result"}, // result: "loaded", "failed"
	)

	HistoryRecords = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cadence_history_records",
			Help: "Number of records in the last loaded history list",
		},
		[]string{"kind"},
	)

	HistoryDecodeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_history_decode_failures_total",
			Help: "Total number of embedded result fields that failed to decode",
		},
		[]string{"kind", "field"},
	)

	StaleResponsesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_stale_responses_dropped_total",
			Help: "Total number of completions discarded because a newer request superseded them",
		},
		[]string{"kind"},
	)

	// Detail Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_detail_cache_hits_total",
			Help: "Total number of history detail cache hits",
		},
		[]string{"kind"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_detail_cache_misses_total",
			Help: "Total number of history detail cache misses",
		},
		[]string{"kind"},
	)

	// Session Metrics
	SessionOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_session_operations_total",
			Help: "Total number of session operations",
		},
		[]string{"operation", "result"}, // result: "ok", "error", "busy", "invalid"
	)

	GenerationStrategies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_generation_strategy_total",
			Help: "Total number of generation requests by resolved strategy",
		},
		[]string{"strategy"},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_events_published_total",
			Help: "Total number of events published on the in-process bus",
		},
		[]string{"topic"},
	)

	// Bridge Metrics
	BridgeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cadence_bridge_requests_total",
			Help: "Total number of bridge HTTP requests",
		},
		[]string{"method", "route", "status_code"},
	)

	BridgeRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cadence_bridge_request_duration_seconds",
			Help:    "Bridge HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "cadence_websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "cadence_websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)
)

// RecordBackendRequest records one backend call.
func RecordBackendRequest(endpoint, outcome string, duration time.Duration) {
	BackendRequestsTotal.WithLabelValues(endpoint, outcome).Inc()
	BackendRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordHistoryRefresh records the outcome of one history list refresh.
func RecordHistoryRefresh(kind string, records int, err error) {
	if err != nil {
		HistoryRefreshes.WithLabelValues(kind, "failed").Inc()
		return
	}
	HistoryRefreshes.WithLabelValues(kind, "loaded").Inc()
	HistoryRecords.WithLabelValues(kind).Set(float64(records))
}

// RecordDecodeFailure counts a malformed embedded field.
func RecordDecodeFailure(kind, field string) {
	HistoryDecodeFailures.WithLabelValues(kind, field).Inc()
}

// RecordStaleResponse counts a discarded out-of-order completion.
func RecordStaleResponse(kind string) {
	StaleResponsesDropped.WithLabelValues(kind).Inc()
}

// RecordCacheLookup records a detail cache hit or miss.
func RecordCacheLookup(kind string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(kind).Inc()
		return
	}
	CacheMisses.WithLabelValues(kind).Inc()
}

// RecordSessionOperation records the result of a session operation.
func RecordSessionOperation(operation, result string) {
	SessionOperations.WithLabelValues(operation, result).Inc()
}

// RecordGenerationStrategy records which strategy a generation request resolved to.
func RecordGenerationStrategy(strategy string) {
	GenerationStrategies.WithLabelValues(strategy).Inc()
}

// RecordEventPublished counts a published bus event.
func RecordEventPublished(topic string) {
	EventsPublished.WithLabelValues(topic).Inc()
}

// RecordBridgeRequest records one bridge HTTP request.
func RecordBridgeRequest(method, route, statusCode string, duration time.Duration) {
	BridgeRequestsTotal.WithLabelValues(method, route, statusCode).Inc()
	BridgeRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
