// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package events is the in-process notification bus of a Cadence session.

The history store and the session publish small change notifications; the
bridge WebSocket hub and tests subscribe to them. Payloads are JSON so the
same bytes can be pushed to external renderers unchanged.

The bus is a Watermill gochannel Pub/Sub. Publishing never blocks on slow
subscribers and events published without subscribers are dropped:
subscribers treat a notification as "re-read the snapshot", not as a log.

Topics:
  - history.changed: HistoryChanged
  - detail.changed: DetailChanged
  - session.changed: SessionChanged
  - notice: Notice
*/
package events
