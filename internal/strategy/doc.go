// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package strategy resolves a generation Intent into exactly one backend call.

Resolution is a pure function. Effective values are computed first (custom
text only counts while its toggle is on), then the first matching rule wins:

 1. Context enabled with at least one non-blank line: ByContext
 2. Effective style or user idea present: FullSong, missing style and theme
    filled from Defaults
 3. Otherwise: ByTheme with the effective or default theme and the
    effective length

A theme on its own resolves to ByTheme, which carries the requested length.
An all-empty intent resolves to ByTheme with every default applied.

	req := strategy.Resolve(intent, strategy.DefaultsFromConfig(&cfg.Generation))
	switch r := req.(type) {
	case strategy.ByContext:
	case strategy.FullSong:
	case strategy.ByTheme:
	}
*/
package strategy
