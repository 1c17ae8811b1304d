// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package services provides suture.Service wrappers for the bridge components.

Each wrapper translates a component lifecycle into suture's Serve pattern and
names itself through fmt.Stringer so supervisor logs identify it:

  - HTTPServerService: ListenAndServe/Shutdown of the bridge HTTP server,
    with a bounded drain on shutdown
  - HubService: the WebSocket hub's RunWithContext
  - ForwarderService: the event forwarder; a closed bus returns
    suture.ErrDoNotRestart

Return values drive supervisor behavior:

	nil         -> stopped cleanly, not restarted
	error       -> crashed, restarted with backoff
	ctx.Err()   -> shutdown requested
*/
package services
