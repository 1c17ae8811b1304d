// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package models

// GenerationResult is returned by the by-theme, by-context, full-song and
// continue endpoints. Which text field is filled depends on the endpoint.
type GenerationResult struct {
	Lyrics         string   `json:"lyrics,omitempty"`
	NextLine       string   `json:"next_line,omitempty"`
	ImprovedLyrics string   `json:"improved_lyrics,omitempty"`
	Theme          string   `json:"theme,omitempty"`
	Style          string   `json:"style,omitempty"`
	Emotion        string   `json:"emotion,omitempty"`
	Length         int      `json:"length,omitempty"`
	Structure      []string `json:"structure,omitempty"`
	Context        []string `json:"context,omitempty"`
	PreviousLyrics string   `json:"previous_lyrics,omitempty"`
	UserFeedback   string   `json:"user_feedback,omitempty"`
}

// Text returns the generated text: the first non-empty of Lyrics, NextLine
// and ImprovedLyrics.
func (g *GenerationResult) Text() string {
	if g == nil {
		return ""
	}
	switch {
	case g.Lyrics != "":
		return g.Lyrics
	case g.NextLine != "":
		return g.NextLine
	default:
		return g.ImprovedLyrics
	}
}

// StyleConversion is the response of POST /generation/convert-style.
type StyleConversion struct {
	Original    string `json:"original"`
	Converted   string `json:"converted"`
	TargetStyle string `json:"target_style"`
}

// RhymeSuggestions is the response of POST /generation/optimize-rhyme.
type RhymeSuggestions struct {
	Original    string   `json:"original"`
	TargetRhyme string   `json:"target_rhyme"`
	Suggestions []string `json:"suggestions"`
}
