// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package strategy

import (
	"reflect"
	"testing"

	"github.com/tomtom215/cadence/internal/config"
	"github.com/tomtom215/cadence/internal/models"
)

var testDefaults = Defaults{Style: "流行", Theme: "通用", Length: 16, MinLength: 4, MaxLength: 100}

func TestResolve_Examples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		intent models.Intent
		want   Request
	}{
		{
			name:   "theme only resolves by theme",
			intent: models.Intent{Theme: "爱情", Length: 16},
			want:   ByTheme{Theme: "爱情", Length: 16},
		},
		{
			name:   "context wins over theme",
			intent: models.Intent{ContextLines: SplitContext("line1\nline2"), UseContext: true, Theme: "爱情"},
			want:   ByContext{Lines: []string{"line1", "line2"}},
		},
		{
			name:   "empty intent uses defaults",
			intent: models.Intent{},
			want:   ByTheme{Theme: "通用", Length: 16},
		},
		{
			name:   "style triggers full song with default theme",
			intent: models.Intent{Style: "摇滚"},
			want:   FullSong{Style: "摇滚", Theme: "通用"},
		},
		{
			name:   "idea triggers full song with default style",
			intent: models.Intent{Theme: "离别", UserIdea: "  写给远方的朋友 ", Emotion: "伤感", UseEmotion: true},
			want:   FullSong{Style: "流行", Theme: "离别", Emotion: "伤感", UserIdea: "写给远方的朋友"},
		},
		{
			name:   "custom theme replaces preset",
			intent: models.Intent{Theme: "爱情", ThemeCustom: "星空", UseCustomTheme: true, Length: 24},
			want:   ByTheme{Theme: "星空", Length: 24},
		},
		{
			name:   "emotion ignored while toggle off",
			intent: models.Intent{Theme: "爱情", Emotion: "快乐"},
			want:   ByTheme{Theme: "爱情", Length: 16},
		},
		{
			name:   "custom length used when toggled",
			intent: models.Intent{Length: 16, CustomLength: 40, UseCustomLength: true},
			want:   ByTheme{Theme: "通用", Length: 40},
		},
		{
			name:   "custom length clamped to maximum",
			intent: models.Intent{CustomLength: 500, UseCustomLength: true},
			want:   ByTheme{Theme: "通用", Length: 100},
		},
		{
			name:   "custom length clamped to minimum",
			intent: models.Intent{CustomLength: 2, UseCustomLength: true},
			want:   ByTheme{Theme: "通用", Length: 4},
		},
		{
			name:   "invalid custom length falls back to default",
			intent: models.Intent{CustomLength: 0, UseCustomLength: true, Length: 32},
			want:   ByTheme{Theme: "通用", Length: 16},
		},
		{
			name:   "blank context falls through",
			intent: models.Intent{ContextLines: []string{"  ", ""}, UseContext: true, Style: "古风"},
			want:   FullSong{Style: "古风", Theme: "通用"},
		},
		{
			name:   "context ignored while toggle off",
			intent: models.Intent{ContextLines: []string{"line1"}, Theme: "爱情"},
			want:   ByTheme{Theme: "爱情", Length: 16},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Resolve(tt.intent, testDefaults)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve() = %#v, want %#v", got, tt.want)
			}
		})
	}
}

// intents enumerates every combination of populated/empty fields and toggles.
func intents() []models.Intent {
	var out []models.Intent
	texts := []string{"", "爱情"}
	contexts := [][]string{nil, {""}, {"第一句", " ", "第二句"}}
	for mask := 0; mask < 1<<5; mask++ {
		for _, theme := range texts {
			for _, custom := range texts {
				for _, style := range texts {
					for _, idea := range texts {
						for _, ctx := range contexts {
							out = append(out, models.Intent{
								Theme:           theme,
								ThemeCustom:     custom,
								UseCustomTheme:  mask&1 != 0,
								Style:           style,
								StyleCustom:     custom,
								UseCustomStyle:  mask&2 != 0,
								Emotion:         "快乐",
								UseEmotion:      mask&4 != 0,
								ContextLines:    ctx,
								UseContext:      mask&8 != 0,
								Length:          16,
								CustomLength:    30,
								UseCustomLength: mask&16 != 0,
								UserIdea:        idea,
							})
						}
					}
				}
			}
		}
	}
	return out
}

func TestResolve_ContextAlwaysWins(t *testing.T) {
	t.Parallel()

	for _, in := range intents() {
		if !in.UseContext || len(NonBlankLines(in.ContextLines)) == 0 {
			continue
		}
		got, ok := Resolve(in, testDefaults).(ByContext)
		if !ok {
			t.Fatalf("Resolve(%+v) = %T, want ByContext", in, got)
		}
		if !reflect.DeepEqual(got.Lines, []string{"第一句", "第二句"}) {
			t.Errorf("Lines = %q", got.Lines)
		}
	}
}

func TestResolve_EmptyPreferencesUseByTheme(t *testing.T) {
	t.Parallel()

	for _, in := range intents() {
		eff := EffectiveValues(in, testDefaults)
		if len(eff.Context) > 0 || eff.Theme != "" || eff.Style != "" || eff.UserIdea != "" {
			continue
		}
		got, ok := Resolve(in, testDefaults).(ByTheme)
		if !ok {
			t.Fatalf("Resolve(%+v) = %T, want ByTheme", in, got)
		}
		if got.Theme != testDefaults.Theme {
			t.Errorf("Theme = %q, want default", got.Theme)
		}
		if got.Length != eff.Length {
			t.Errorf("Length = %d, want %d", got.Length, eff.Length)
		}
	}
}

func TestResolve_ToggledOffTextIgnored(t *testing.T) {
	t.Parallel()

	for _, in := range intents() {
		want := Resolve(in, testDefaults)

		mutated := in
		if !in.UseCustomTheme {
			mutated.ThemeCustom = "被忽略的主题"
		}
		if !in.UseCustomStyle {
			mutated.StyleCustom = "被忽略的风格"
		}
		if !in.UseEmotion {
			mutated.Emotion = "被忽略的情感"
		}
		if !in.UseContext {
			mutated.ContextLines = []string{"被忽略的上下文"}
		}
		if !in.UseCustomLength {
			mutated.CustomLength = 99
		}

		if got := Resolve(mutated, testDefaults); !reflect.DeepEqual(got, want) {
			t.Fatalf("toggled-off text changed result: %#v -> %#v", want, got)
		}
	}
}

func TestResolve_ExactlyOneVariant(t *testing.T) {
	t.Parallel()

	for _, in := range intents() {
		switch r := Resolve(in, testDefaults).(type) {
		case ByContext:
			if len(r.Lines) == 0 {
				t.Fatalf("ByContext without lines for %+v", in)
			}
		case FullSong:
			if r.Style == "" || r.Theme == "" {
				t.Fatalf("FullSong with empty style or theme: %+v", r)
			}
		case ByTheme:
			if r.Theme == "" || r.Length < testDefaults.MinLength || r.Length > testDefaults.MaxLength {
				t.Fatalf("ByTheme out of range: %+v", r)
			}
		default:
			t.Fatalf("unexpected request %T", r)
		}
	}
}

func TestSplitContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"\n \n", nil},
		{"a\r\nb", []string{"a", "b"}},
		{"a\n\n  b  \n", []string{"a", "  b  "}},
	}
	for _, tt := range tests {
		if got := SplitContext(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitContext(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDefaultsFromConfig(t *testing.T) {
	t.Parallel()

	d := DefaultsFromConfig(&config.GenerationConfig{
		DefaultLength: 20, MinLength: 4, MaxLength: 64, DefaultStyle: "民谣", DefaultTheme: "青春",
	})
	want := Defaults{Style: "民谣", Theme: "青春", Length: 20, MinLength: 4, MaxLength: 64}
	if d != want {
		t.Errorf("DefaultsFromConfig() = %+v, want %+v", d, want)
	}
}

func TestRequestNames(t *testing.T) {
	t.Parallel()

	if (ByContext{}).Name() != NameByContext || (FullSong{}).Name() != NameFullSong || (ByTheme{}).Name() != NameByTheme {
		t.Error("unexpected request names")
	}
}
