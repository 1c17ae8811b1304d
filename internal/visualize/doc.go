// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package visualize turns analysis results and history records into
// renderer-neutral display descriptors: chart series, tags, word-cloud
// tokens and list rows.
//
// Every function here is total. A nil or partially filled input produces an
// explicit empty descriptor, never an error or a panic, so renderers can
// draw whatever is present.
//
// The descriptors are consumed by the CLI (through Renderer) and by the
// local bridge, which serves them as JSON.
package visualize
