// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package validation provides struct validation using go-playground/validator v10.
//
// It wraps the validator in a thread-safe singleton and translates field errors
// into short human-readable messages. Three callers rely on it:
//
//   - session: rejects blank lyrics, feedback or rhyme targets locally so no
//     request reaches the backend
//   - history: schema-checks each decoded opaque payload field
//   - config: validates loaded configuration
//
// Besides the built-in tags, a "notblank" tag is registered that rejects
// whitespace-only strings.
//
//	type analyzeInput struct {
//	    Lyrics string `validate:"notblank"`
//	}
//
//	if verr := validation.ValidateStruct(&analyzeInput{Lyrics: "  "}); verr != nil {
//	    fmt.Println(verr) // Lyrics must not be blank
//	}
package validation
