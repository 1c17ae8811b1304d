// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

// Package logging provides the zerolog-based structured logger shared by every
// Cadence package.
//
// The global logger writes human-readable console output to stderr by default
// so that command output on stdout stays clean. JSON output is selected with
// LOG_FORMAT=json.
//
// # Quick Start
//
//	logging.Init(logging.Config{
//	    Level:  cfg.Logging.Level,
//	    Format: cfg.Logging.Format,
//	    Caller: cfg.Logging.Caller,
//	})
//
//	logging.Info().Str("kind", "analysis").Int("records", n).Msg("history refreshed")
//
// # Context
//
// Each user action runs with a correlation ID and operation name in its
// context. Ctx returns a logger carrying both:
//
//	ctx = logging.ContextWithOperation(logging.ContextWithNewCorrelationID(ctx), "generate")
//	logging.Ctx(ctx).Info().Str("strategy", "by_theme").Msg("generation requested")
//
// # slog
//
// NewSlogLogger adapts the zerolog backend to log/slog for libraries that only
// accept *slog.Logger (sutureslog, watermill).
package logging
