// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package visualize

import (
	"strings"
	"testing"

	"github.com/tomtom215/cadence/internal/history"
	"github.com/tomtom215/cadence/internal/models"
)

func TestRenderAnalysis(t *testing.T) {
	t.Parallel()

	r := NewRenderer()
	out, err := r.Analysis(&models.AnalysisResult{
		Summary: "整体积极",
		Sentiment: &models.SentimentResult{
			OverallTone:         "积极",
			OverallScore:        0.8,
			EmotionDistribution: models.EmotionCounts{{Emotion: "喜悦", Count: 3}},
			Timeline:            []models.TimelinePoint{{Score: 0.5}},
		},
		Theme: &models.ThemeResult{Themes: []models.ThemeScore{{Theme: "爱情", Score: 0.9}}},
	})
	if err != nil {
		t.Fatalf("Analysis() error = %v", err)
	}

	for _, want := range []string{"整体积极", "情感基调：积极", "情感得分：0.80", "喜悦: 3句", "积极 0", "第1句", "1. 爱情", "【韵律分析】\n无"} {
		if !strings.Contains(out, want) {
			t.Errorf("Analysis() output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderAnalysisEmpty(t *testing.T) {
	t.Parallel()

	out, err := NewRenderer().Analysis(nil)
	if err != nil {
		t.Fatalf("Analysis(nil) error = %v", err)
	}
	if !strings.Contains(out, NoThemeText) {
		t.Errorf("Analysis(nil) = %q", out)
	}
}

func TestRenderDetailMalformedField(t *testing.T) {
	t.Parallel()

	d := history.Decode(&models.AnalysisRecord{
		ID:              1,
		Lyrics:          "歌词",
		SentimentResult: models.PayloadFromString("oops"),
		ThemeResult:     models.PayloadFromString(`{"themes":[{"theme":"离别","score":0.4}]}`),
	})

	out, err := NewRenderer().Detail(d)
	if err != nil {
		t.Fatalf("Detail() error = %v", err)
	}
	if !strings.Contains(out, history.MalformedMarker) {
		t.Errorf("missing malformed marker:\n%s", out)
	}
	if !strings.Contains(out, "离别 (匹配度: 0.4)") {
		t.Errorf("theme section not rendered:\n%s", out)
	}
	if !strings.Contains(out, UnknownTime) {
		t.Errorf("missing unknown time:\n%s", out)
	}
}

func TestRenderOtherDetails(t *testing.T) {
	t.Parallel()

	r := NewRenderer()

	out, err := r.Detail(history.Decode(&models.GenerationRecord{ID: 2, Prompt: "主题：夏天", GeneratedLyrics: "蝉鸣"}))
	if err != nil {
		t.Fatalf("Detail(generation) error = %v", err)
	}
	if !strings.Contains(out, "风格："+DefaultStyleLabel) || !strings.Contains(out, "蝉鸣") {
		t.Errorf("generation detail:\n%s", out)
	}

	out, err = r.Detail(history.Decode(&models.RecommendationRecord{
		ID:              3,
		QueryLyrics:     "q",
		Recommendations: models.PayloadFromString(`{"recommendations":[{"similarity":0.5}]}`),
	}))
	if err != nil {
		t.Fatalf("Detail(recommendation) error = %v", err)
	}
	if !strings.Contains(out, "推荐 1") || !strings.Contains(out, "50.0%") {
		t.Errorf("recommendation detail:\n%s", out)
	}

	if _, err := r.Detail(nil); err == nil {
		t.Error("Detail(nil) succeeded")
	}
}

func TestRenderRecommendationsAndGeneration(t *testing.T) {
	t.Parallel()

	r := NewRenderer()
	out, err := r.Recommendations(&models.RecommendationResult{})
	if err != nil || !strings.Contains(out, "暂无推荐结果") {
		t.Errorf("Recommendations(empty) = %q, %v", out, err)
	}

	out, err = r.Generation(&models.GenerationResult{Lyrics: "第一句\n第二句", Style: "民谣"})
	if err != nil {
		t.Fatalf("Generation() error = %v", err)
	}
	if !strings.HasPrefix(out, "第一句\n第二句") || !strings.Contains(out, "风格：民谣") {
		t.Errorf("Generation() = %q", out)
	}
}
