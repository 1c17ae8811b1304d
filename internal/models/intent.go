// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package models

// Intent is the generation form state before resolution into a backend call.
//
// Each toggled field has a preset value and a custom value. The effective
// value is the custom one while its toggle is on and the preset otherwise;
// custom text behind a switched-off toggle is ignored.
type Intent struct {
	Theme          string `json:"theme,omitempty"`
	ThemeCustom    string `json:"theme_custom,omitempty"`
	UseCustomTheme bool   `json:"use_custom_theme,omitempty"`

	Style          string `json:"style,omitempty"`
	StyleCustom    string `json:"style_custom,omitempty"`
	UseCustomStyle bool   `json:"use_custom_style,omitempty"`

	Emotion    string `json:"emotion,omitempty"`
	UseEmotion bool   `json:"use_emotion,omitempty"`

	ContextLines []string `json:"context_lines,omitempty"`
	UseContext   bool     `json:"use_context,omitempty"`

	Length          int  `json:"length,omitempty"`
	CustomLength    int  `json:"custom_length,omitempty"`
	UseCustomLength bool `json:"use_custom_length,omitempty"`

	UserIdea string `json:"user_idea,omitempty"`
}
