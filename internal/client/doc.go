// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package client is the transport to the lyric analysis, generation and
recommendation backend.

# Features

  - One typed method per backend endpoint (see Backend)
  - Envelope unwrapping: {success, data, error}
  - BackendError carrying the backend's human-readable error verbatim
  - Client-side pacing with golang.org/x/time/rate
  - Automatic HTTP 429 handling with exponential backoff and Retry-After
  - X-Request-ID on every call, taken from the context correlation ID
  - BreakerClient: sony/gobreaker circuit breaker with Prometheus state metrics

# Usage

	c := client.New(&cfg.Backend)
	backend := client.NewBreakerClient(c, &cfg.Breaker)

	res, err := backend.Analyze(ctx, lyrics)
	if msg, ok := client.UserMessage(err); ok {
	    // show msg verbatim
	}

Generate dispatches a resolved strategy.Request to the matching endpoint.
*/
package client
