// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package bridge exposes a session over local HTTP and WebSocket so an external
renderer can draw charts and history views.

Everything is served from one chi router:

	GET    /api/snapshot                session and history snapshot
	GET    /api/history/{kind}          current list state for one kind
	POST   /api/history/{kind}/refresh  reload one list (?limit=N)
	GET    /api/history/{kind}/{id}     open a record (?format=text renders it)
	DELETE /api/history/{kind}/{id}     delete a record, then reload the list
	POST   /api/analyze                 {"lyrics": "..."}
	GET    /api/analysis/charts         chart descriptors of the last analysis
	POST   /api/generate                generation intent
	POST   /api/recommend               {"lyrics": "...", "top_k": 5}
	GET    /ws                          event stream
	GET    /metrics                     Prometheus
	GET    /healthz                     liveness

Responses use the backend envelope shape, {"success", "data", "error"}.
POST and DELETE routes are rate limited per client IP with go-chi/httprate.

The Hub fans events out to WebSocket clients. A Forwarder feeds it from the
event bus. Both implement the suture Serve pattern and run under the
supervisor tree started by `cadence serve`.
*/
package bridge
