// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package models

import (
	"bytes"
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-json"
)

// AnalysisResult is the response of POST /analysis/analyze. The facet
// endpoints (/analysis/sentiment, /analysis/theme, /analysis/rhythm) return
// the corresponding facet alone.
type AnalysisResult struct {
	Summary   string           `json:"summary"`
	Sentiment *SentimentResult `json:"sentiment,omitempty"`
	Theme     *ThemeResult     `json:"theme,omitempty"`
	Rhythm    *RhythmResult    `json:"rhythm,omitempty"`
}

// SentimentResult holds per-line sentiment and aggregated distributions.
type SentimentResult struct {
	OverallTone          string               `json:"overall_tone"`
	OverallScore         float64              `json:"overall_score" validate:"gte=0,lte=1"`
	ScoreExplanation     string               `json:"score_explanation,omitempty"`
	EmotionDistribution  EmotionCounts        `json:"emotion_distribution,omitempty"`
	Timeline             []TimelinePoint      `json:"timeline"`
	CategoryDistribution CategoryDistribution `json:"category_distribution"`
}

// TimelinePoint is the sentiment of one lyric line.
type TimelinePoint struct {
	Index       int     `json:"index"`
	Score       float64 `json:"score"`
	Category    string  `json:"category,omitempty"`
	EmotionType string  `json:"emotion_type,omitempty"`
}

// CategoryDistribution counts lines per coarse sentiment category.
// The counts usually sum to the timeline length but nothing guarantees it.
type CategoryDistribution struct {
	Positive int `json:"positive" validate:"gte=0"`
	Negative int `json:"negative" validate:"gte=0"`
	Neutral  int `json:"neutral" validate:"gte=0"`
}

// EmotionCount is one entry of an emotion distribution.
type EmotionCount struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}

// EmotionCounts is an emotion→count mapping that keeps the key order of the
// JSON object it was decoded from.
type EmotionCounts []EmotionCount

// UnmarshalJSON decodes a JSON object, preserving member order. Counts must
// be non-negative integers; a fractional or negative count fails the decode
// rather than being rounded.
func (e *EmotionCounts) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*e = nil
		return nil
	}

	// Member order is only observable through the token stream.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return errors.New("emotion distribution must be a JSON object")
	}

	out := EmotionCounts{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("unexpected emotion key %v", keyTok)
		}

		valTok, err := dec.Token()
		if err != nil {
			return err
		}
		num, ok := valTok.(json.Number)
		if !ok {
			return fmt.Errorf("emotion %q: count must be a number", key)
		}
		f, err := num.Float64()
		if err != nil {
			return fmt.Errorf("emotion %q: %w", key, err)
		}
		if f < 0 || f != math.Trunc(f) {
			return fmt.Errorf("emotion %q: count must be a non-negative integer, got %s", key, num)
		}
		out = append(out, EmotionCount{Emotion: key, Count: int(f)})
	}

	if _, err := dec.Token(); err != nil {
		return err
	}
	*e = out
	return nil
}

// MarshalJSON encodes the counts back into a JSON object in the same order.
func (e EmotionCounts) MarshalJSON() ([]byte, error) {
	if e == nil {
		return []byte("null"), nil
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, ec := range e {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(ec.Emotion)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		fmt.Fprintf(&buf, "%d", ec.Count)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// ThemeResult holds ranked themes, keywords and word-cloud data.
type ThemeResult struct {
	Themes        []ThemeScore    `json:"themes" validate:"dive"`
	Keywords      []Keyword       `json:"keywords"`
	WordcloudData []WordcloudItem `json:"wordcloud_data"`
	PrimaryTheme  string          `json:"primary_theme,omitempty"`
}

// ThemeScore is one detected theme. Lists are ranked by the backend.
type ThemeScore struct {
	Theme string  `json:"theme" validate:"required"`
	Score float64 `json:"score"`
}

// Keyword is an extracted keyword with its TF-IDF weight.
type Keyword struct {
	Word   string  `json:"word"`
	Weight float64 `json:"weight"`
}

// WordcloudItem is a word-cloud token with its raw size.
type WordcloudItem struct {
	Word string  `json:"word"`
	Size float64 `json:"size"`
}

// RhythmResult holds rhyme and syllable metrics.
type RhythmResult struct {
	RhymePattern     RhymePattern     `json:"rhyme_pattern"`
	SyllableAnalysis SyllableAnalysis `json:"syllable_analysis"`
	OverallScore     float64          `json:"overall_score"`
}

// RhymePattern describes detected end rhymes.
type RhymePattern struct {
	Pattern      string      `json:"pattern"`
	RhymePairs   []RhymePair `json:"rhyme_pairs,omitempty"`
	QualityScore float64     `json:"quality_score"`
	TotalLines   int         `json:"total_lines"`
	RhymeCount   int         `json:"rhyme_count"`
}

// RhymePair links two rhyming line indexes.
type RhymePair struct {
	Line1 int `json:"line1"`
	Line2 int `json:"line2"`
}

// SyllableAnalysis holds per-line syllable counts.
type SyllableAnalysis struct {
	SyllableCounts    []int   `json:"syllable_counts,omitempty"`
	AvgSyllables      float64 `json:"avg_syllables"`
	RhythmConsistency float64 `json:"rhythm_consistency"`
}
