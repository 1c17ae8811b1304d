// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

/*
Package models defines the data types exchanged with the lyric analysis,
generation and recommendation backend.

# Overview

Every backend endpoint answers with the same envelope:

	{"success": true, "data": {...}}
	{"error": "歌词不能为空"}

Envelope captures that shape; the client unwraps Data into the typed results
below.

# Result Types

  - AnalysisResult: summary plus SentimentResult, ThemeResult and RhythmResult
  - GenerationResult: by-theme, by-context, full-song and continue responses
  - StyleConversion, RhymeSuggestions: convert-style and optimize-rhyme responses
  - RecommendationResult, KnowledgeGraph, Preferences: recommendation endpoints

# History Records

History records come in three kinds (Kind): analysis, generation and
recommendation. AnalysisRecord and RecommendationRecord carry embedded JSON
documents (Payload) that are decoded lazily by the history package; a broken
payload never prevents the record itself from decoding.

# Request Intent

Intent is the raw, toggle-driven generation form state consumed by the
strategy resolver.
*/
package models
