// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package supervisor runs the local bridge under suture v4 supervision.

The tree has two layers so a failing event path never takes the HTTP surface
with it:

	RootSupervisor ("cadence")
	├── MessagingSupervisor ("messaging-layer")
	│   ├── HubService        (WebSocket fan-out)
	│   └── ForwarderService  (event bus -> hub)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService (chi router)

Crashed services restart with suture's backoff. Supervisor events are logged
through sutureslog into the zerolog-backed slog handler from
internal/logging.

Usage, as in `cadence serve`:

	b, err := supervisor.NewBridge(&cfg.Bridge, sess, bus)
	if err != nil {
	    return err
	}
	return b.Tree.Serve(ctx)
*/
package supervisor
