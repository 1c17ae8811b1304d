// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package models

import (
	"bytes"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Record is implemented by the three history record kinds.
type Record interface {
	RecordID() int64
	RecordKind() Kind
	// CreatedTime parses CreatedAt; ok is false when it is missing or unparsable.
	CreatedTime() (t time.Time, ok bool)
}

// AnalysisRecord is a persisted analysis. The three result fields are
// embedded JSON documents.
type AnalysisRecord struct {
	ID              int64   `json:"id"`
	UserID          *int64  `json:"user_id,omitempty"`
	Lyrics          string  `json:"lyrics"`
	SentimentResult Payload `json:"sentiment_result,omitempty"`
	ThemeResult     Payload `json:"theme_result,omitempty"`
	RhythmResult    Payload `json:"rhythm_result,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
}

// GenerationRecord is a persisted generation.
type GenerationRecord struct {
	ID              int64  `json:"id"`
	UserID          *int64 `json:"user_id,omitempty"`
	Prompt          string `json:"prompt"`
	GeneratedLyrics string `json:"generated_lyrics"`
	Style           string `json:"style,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
}

// RecommendationRecord is a persisted recommendation. Recommendations is an
// embedded JSON document shaped like RecommendationResult.
type RecommendationRecord struct {
	ID              int64   `json:"id"`
	UserID          *int64  `json:"user_id,omitempty"`
	QueryLyrics     string  `json:"query_lyrics"`
	Recommendations Payload `json:"recommendations,omitempty"`
	CreatedAt       string  `json:"created_at,omitempty"`
}

func (r *AnalysisRecord) RecordID() int64       { return r.ID }
func (r *GenerationRecord) RecordID() int64     { return r.ID }
func (r *RecommendationRecord) RecordID() int64 { return r.ID }

func (r *AnalysisRecord) RecordKind() Kind       { return KindAnalysis }
func (r *GenerationRecord) RecordKind() Kind     { return KindGeneration }
func (r *RecommendationRecord) RecordKind() Kind { return KindRecommendation }

func (r *AnalysisRecord) CreatedTime() (time.Time, bool)       { return ParseTimestamp(r.CreatedAt) }
func (r *GenerationRecord) CreatedTime() (time.Time, bool)     { return ParseTimestamp(r.CreatedAt) }
func (r *RecommendationRecord) CreatedTime() (time.Time, bool) { return ParseTimestamp(r.CreatedAt) }

// timestampLayouts lists the accepted created_at formats. The backend emits
// ISO 8601 without a zone.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
}

// ParseTimestamp parses a backend timestamp. Zone-less values are read as local time.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Payload is an embedded JSON document inside a history record. The backend
// stores it as a JSON string; an inline object or array is accepted too.
// Decoding the document is deferred so that one malformed payload cannot
// break the record that carries it.
type Payload []byte

// UnmarshalJSON keeps the raw value without interpreting it.
func (p *Payload) UnmarshalJSON(data []byte) error {
	*p = append((*p)[:0], data...)
	return nil
}

// MarshalJSON writes the raw value back, or null when empty.
func (p Payload) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return p, nil
}

// Document returns the embedded document. present is false for a missing,
// null or empty payload. A JSON string is unquoted; its content is returned
// unvalidated.
func (p Payload) Document() (doc []byte, present bool, err error) {
	raw := bytes.TrimSpace(p)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, false, nil
	}

	if raw[0] != '"' {
		return raw, true, nil
	}

	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		return nil, true, err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, false, nil
	}
	return []byte(text), true, nil
}

// PayloadFromString wraps serialized document text as a Payload.
func PayloadFromString(text string) Payload {
	quoted, err := json.Marshal(text)
	if err != nil {
		return nil
	}
	return Payload(quoted)
}
