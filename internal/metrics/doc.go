// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package metrics provides the Prometheus instrumentation for the Cadence client.

All collectors are registered on the default registry through promauto and are
exposed by the bridge at /metrics when `cadence serve` is running.

# Available Metrics

Backend:
  - cadence_backend_requests_total{endpoint,outcome}
  - cadence_backend_request_duration_seconds{endpoint}
  - cadence_backend_retries_total{endpoint}

Circuit breaker:
  - cadence_circuit_breaker_state{name} (0=closed, 1=half-open, 2=open)
  - cadence_circuit_breaker_requests_total{name,result}
  - cadence_circuit_breaker_consecutive_failures{name}
  - cadence_circuit_breaker_state_transitions_total{name,from_state,to_state}

History:
  - cadence_history_refreshes_total{kind,result}
  - cadence_history_records{kind}
  - cadence_history_decode_failures_total{kind,field}
  - cadence_stale_responses_dropped_total{kind}
  - cadence_detail_cache_hits_total{kind}, cadence_detail_cache_misses_total{kind}

Session and bridge:
  - cadence_session_operations_total{operation,result}
  - cadence_generation_strategy_total{strategy}
  - cadence_events_published_total{topic}
  - cadence_bridge_requests_total{method,route,status_code}
  - cadence_bridge_request_duration_seconds{method,route}
  - cadence_websocket_connections, cadence_websocket_messages_sent_total
*/
package metrics
