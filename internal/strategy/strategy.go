// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package strategy

import (
	"strings"

	"github.com/tomtom215/cadence/internal/config"
	"github.com/tomtom215/cadence/internal/models"
)

// Name identifies a request variant in logs and metrics.
type Name string

const (
	NameByContext Name = "by_context"
	NameFullSong  Name = "full_song"
	NameByTheme   Name = "by_theme"
)

// Request is one fully determined generation call. The set of
// implementations is closed: ByContext, FullSong and ByTheme.
type Request interface {
	Name() Name
	isRequest()
}

// ByContext continues from the given non-blank lines.
type ByContext struct {
	Lines []string `json:"lines"`
}

// FullSong writes a complete song. Emotion and UserIdea are empty when the
// user expressed no preference.
type FullSong struct {
	Style    string `json:"style"`
	Theme    string `json:"theme"`
	Emotion  string `json:"emotion,omitempty"`
	UserIdea string `json:"user_idea,omitempty"`
}

// ByTheme writes Length lines about Theme. Emotion is empty when unset.
type ByTheme struct {
	Theme   string `json:"theme"`
	Emotion string `json:"emotion,omitempty"`
	Length  int    `json:"length"`
}

func (ByContext) Name() Name { return NameByContext }
func (FullSong) Name() Name  { return NameFullSong }
func (ByTheme) Name() Name   { return NameByTheme }

func (ByContext) isRequest() {}
func (FullSong) isRequest()  {}
func (ByTheme) isRequest()   {}

// Defaults are the fallbacks applied when the intent leaves a value unset.
type Defaults struct {
	Style     string
	Theme     string
	Length    int
	MinLength int
	MaxLength int
}

// DefaultsFromConfig builds Defaults from the generation config section.
func DefaultsFromConfig(cfg *config.GenerationConfig) Defaults {
	return Defaults{
		Style:     cfg.DefaultStyle,
		Theme:     cfg.DefaultTheme,
		Length:    cfg.DefaultLength,
		MinLength: cfg.MinLength,
		MaxLength: cfg.MaxLength,
	}
}

// Effective holds the values of an intent after toggles are applied.
// Empty strings and a nil Context mean no preference.
type Effective struct {
	Theme    string
	Style    string
	Emotion  string
	Context  []string
	Length   int
	UserIdea string
}

// EffectiveValues applies the toggle rules to an intent.
//
//nolint:gocritic // Intent is a plain value type
func EffectiveValues(in models.Intent, d Defaults) Effective {
	eff := Effective{
		Theme:    pick(in.UseCustomTheme, in.ThemeCustom, in.Theme),
		Style:    pick(in.UseCustomStyle, in.StyleCustom, in.Style),
		UserIdea: strings.TrimSpace(in.UserIdea),
	}
	if in.UseEmotion {
		eff.Emotion = strings.TrimSpace(in.Emotion)
	}
	if in.UseContext {
		eff.Context = NonBlankLines(in.ContextLines)
	}

	length := in.Length
	if in.UseCustomLength {
		length = in.CustomLength
	}
	eff.Length = clampLength(length, d)

	return eff
}

// Resolve maps an intent to exactly one Request. It never fails: an empty
// intent resolves to ByTheme with defaults.
//
// Precedence is context lines, then FullSong, then ByTheme. FullSong needs an
// effective style or a user idea; a custom or preset theme on its own resolves
// to ByTheme.
//
//nolint:gocritic // Intent is a plain value type
func Resolve(in models.Intent, d Defaults) Request {
	eff := EffectiveValues(in, d)

	if len(eff.Context) > 0 {
		return ByContext{Lines: eff.Context}
	}

	if eff.Style != "" || eff.UserIdea != "" {
		return FullSong{
			Style:    orDefault(eff.Style, d.Style),
			Theme:    orDefault(eff.Theme, d.Theme),
			Emotion:  eff.Emotion,
			UserIdea: eff.UserIdea,
		}
	}

	return ByTheme{
		Theme:   orDefault(eff.Theme, d.Theme),
		Emotion: eff.Emotion,
		Length:  eff.Length,
	}
}

// SplitContext splits free text into lines, dropping blank ones.
func SplitContext(text string) []string {
	return NonBlankLines(strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n"))
}

// NonBlankLines returns the lines that contain non-whitespace characters,
// unmodified and in order. It returns nil when none remain.
func NonBlankLines(lines []string) []string {
	var out []string
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func pick(useCustom bool, custom, preset string) string {
	if useCustom {
		return strings.TrimSpace(custom)
	}
	return strings.TrimSpace(preset)
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func clampLength(n int, d Defaults) int {
	if n <= 0 {
		n = d.Length
	}
	if d.MinLength > 0 && n < d.MinLength {
		n = d.MinLength
	}
	if d.MaxLength > 0 && n > d.MaxLength {
		n = d.MaxLength
	}
	return n
}
