// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package middleware provides the HTTP middleware used by the local bridge.

Key Components:

  - RequestID: honours or generates X-Request-ID and seeds the logging
    correlation id, so bridge requests and the backend calls they trigger
    share one id
  - PrometheusMetrics: request count and latency labelled by chi route
    pattern, not raw path, to keep label cardinality bounded
  - Compression: gzip for clients that accept it; WebSocket upgrades pass
    through untouched

Middleware Stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression)
*/
package middleware
