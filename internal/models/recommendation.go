// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package models

// Song is a recommended song. Only the fields the client displays are typed.
type Song struct {
	Title  string `json:"title,omitempty"`
	Artist string `json:"artist,omitempty"`
	Lyrics string `json:"lyrics,omitempty"`
	Theme  string `json:"theme,omitempty"`
	Style  string `json:"style,omitempty"`
}

// Recommendation is one ranked song with its similarity in [0,1].
type Recommendation struct {
	Song        *Song   `json:"song,omitempty"`
	Similarity  float64 `json:"similarity"`
	Explanation string  `json:"explanation,omitempty"`
	Platform    string  `json:"platform,omitempty"`
}

// RecommendationResult is the response of POST /recommendation/recommend and
// the decoded form of a recommendation history payload.
type RecommendationResult struct {
	QueryLyrics     string           `json:"query_lyrics,omitempty"`
	Recommendations []Recommendation `json:"recommendations"`
}

// KnowledgeGraph is the response of POST /recommendation/knowledge-graph.
type KnowledgeGraph struct {
	Nodes         []GraphNode `json:"nodes"`
	Relationships []GraphEdge `json:"relationships"`
}

// GraphNode is an artist, theme or style node.
type GraphNode struct {
	ID    string `json:"id"`
	Type  string `json:"type"`
	Label string `json:"label"`
}

// GraphEdge connects two graph nodes.
type GraphEdge struct {
	Source string `json:"source"`
	Target string `json:"target"`
	Type   string `json:"type"`
}

// Preferences is the free-form user preference document.
type Preferences map[string]any
