// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package history holds the analysis, generation and recommendation history
lists of a session, the open detail view, and the tolerant decoding of the
JSON documents embedded in history records.

# List State Machine

Each kind moves independently through

	Idle → Loading → Loaded | Failed

Refresh replaces the list wholesale on success. On failure the previous list
stays visible and the error is returned for the caller to surface. Every
refresh is tagged with a per-kind sequence number; a completion older than
the last applied one is discarded (ErrSuperseded), so responses arriving out
of order can never roll the list back.

# Detail View

FetchDetail loads one record, decodes it and opens it as the detail view.
Failures leave the current view untouched. Decoded details are cached in an
expirable LRU keyed by kind and id.

# Delete

Delete never edits the list locally. After the backend confirms, the list is
refreshed so it only ever mirrors the last successful refresh.

# Decoding

Decode turns a record into a Detail. Each embedded document is decoded on
its own into a Field: Absent, Decoded, or Malformed with a DecodeError. A
malformed sentiment document does not affect the theme document of the same
record.
*/
package history
