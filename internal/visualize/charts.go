// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package visualize

import (
	"fmt"
	"sort"

	"github.com/tomtom215/cadence/internal/models"
)

// Display limits.
const (
	MaxKeywords       = 10
	MaxWordcloudItems = 20
	MinWordcloudSize  = 12.0
)

// Theme tag colours by rank.
const (
	ColorPrimary   = "red"
	ColorSecondary = "orange"
	ColorDefault   = "blue"
)

// NoThemeText is shown when no theme was detected.
const NoThemeText = "未检测到明确主题"

// TimelinePoint is one point of the sentiment line chart. Index is 1-based.
type TimelinePoint struct {
	Index    int     `json:"index"`
	Label    string  `json:"label"`
	Score    float64 `json:"score"`
	Category string  `json:"category,omitempty"`
}

// Slice is one slice of the category pie.
type Slice struct {
	Key   string `json:"key"`
	Name  string `json:"name"`
	Value int    `json:"value"`
}

// EmotionBar is one emotion and the number of lines carrying it.
type EmotionBar struct {
	Emotion string `json:"emotion"`
	Count   int    `json:"count"`
}

// ThemeTag is one ranked theme. Rank is 0-based; ranks 0 and 1 are
// highlighted.
type ThemeTag struct {
	Rank      int     `json:"rank"`
	Theme     string  `json:"theme"`
	Score     float64 `json:"score"`
	Color     string  `json:"color"`
	Highlight bool    `json:"highlight"`
}

// ThemeList is the ranked theme display. Empty is true when nothing was
// detected; that is a valid state.
type ThemeList struct {
	Tags      []ThemeTag `json:"tags"`
	Empty     bool       `json:"empty"`
	EmptyText string     `json:"empty_text,omitempty"`
}

// CloudToken is one word-cloud entry with its display size.
type CloudToken struct {
	Word string  `json:"word"`
	Size float64 `json:"size"`
}

// RhythmCard summarizes the rhythm analysis. Present is false when the
// result carried no rhythm section.
type RhythmCard struct {
	Present           bool    `json:"present"`
	Pattern           string  `json:"pattern"`
	QualityScore      float64 `json:"quality_score"`
	RhymeCount        int     `json:"rhyme_count"`
	AvgSyllables      float64 `json:"avg_syllables"`
	RhythmConsistency float64 `json:"rhythm_consistency"`
	OverallScore      float64 `json:"overall_score"`
}

// SentimentCard is the overall sentiment summary.
type SentimentCard struct {
	Present     bool    `json:"present"`
	Tone        string  `json:"tone"`
	Score       float64 `json:"score"`
	ScoreText   string  `json:"score_text"`
	Explanation string  `json:"explanation,omitempty"`
}

// ChartSet bundles every descriptor for one analysis result.
type ChartSet struct {
	Summary    string           `json:"summary"`
	Sentiment  SentimentCard    `json:"sentiment"`
	Timeline   []TimelinePoint  `json:"timeline"`
	Categories []Slice          `json:"categories"`
	Emotions   []EmotionBar     `json:"emotions"`
	Themes     ThemeList        `json:"themes"`
	Keywords   []models.Keyword `json:"keywords"`
	Wordcloud  []CloudToken     `json:"wordcloud"`
	Rhythm     RhythmCard       `json:"rhythm"`
}

// Charts builds the full chart set. A nil result yields empty descriptors.
func Charts(res *models.AnalysisResult) ChartSet {
	if res == nil {
		res = &models.AnalysisResult{}
	}
	return ChartSet{
		Summary:    res.Summary,
		Sentiment:  Sentiment(res.Sentiment),
		Timeline:   Timeline(res.Sentiment),
		Categories: CategoryPie(res.Sentiment),
		Emotions:   Emotions(res.Sentiment),
		Themes:     Themes(res.Theme),
		Keywords:   Keywords(res.Theme),
		Wordcloud:  Wordcloud(res.Theme),
		Rhythm:     Rhythm(res.Rhythm),
	}
}

// Sentiment summarizes tone and score.
func Sentiment(s *models.SentimentResult) SentimentCard {
	if s == nil {
		return SentimentCard{}
	}
	return SentimentCard{
		Present:     true,
		Tone:        s.OverallTone,
		Score:       s.OverallScore,
		ScoreText:   FormatScore(s.OverallScore),
		Explanation: s.ScoreExplanation,
	}
}

// Timeline maps the sentiment timeline to 1-based labelled points.
func Timeline(s *models.SentimentResult) []TimelinePoint {
	if s == nil {
		return []TimelinePoint{}
	}
	points := make([]TimelinePoint, len(s.Timeline))
	for i, t := range s.Timeline {
		points[i] = TimelinePoint{
			Index:    i + 1,
			Label:    fmt.Sprintf("第%d句", i+1),
			Score:    t.Score,
			Category: t.Category,
		}
	}
	return points
}

// CategoryPie always returns three slices in positive, negative, neutral
// order. Zero slices are kept. The values are not assumed to sum to the
// timeline length.
func CategoryPie(s *models.SentimentResult) []Slice {
	var dist models.CategoryDistribution
	if s != nil {
		dist = s.CategoryDistribution
	}
	return []Slice{
		{Key: "positive", Name: "积极", Value: max(dist.Positive, 0)},
		{Key: "negative", Name: "消极", Value: max(dist.Negative, 0)},
		{Key: "neutral", Name: "中性", Value: max(dist.Neutral, 0)},
	}
}

// Emotions sorts the emotion distribution by count, descending. Ties keep
// the order the backend sent them in.
func Emotions(s *models.SentimentResult) []EmotionBar {
	if s == nil {
		return []EmotionBar{}
	}
	bars := make([]EmotionBar, len(s.EmotionDistribution))
	for i, e := range s.EmotionDistribution {
		bars[i] = EmotionBar{Emotion: e.Emotion, Count: e.Count}
	}
	sort.SliceStable(bars, func(i, j int) bool {
		return bars[i].Count > bars[j].Count
	})
	return bars
}

// Themes keeps the backend ranking and assigns highlight colours.
func Themes(t *models.ThemeResult) ThemeList {
	if t == nil || len(t.Themes) == 0 {
		return ThemeList{Tags: []ThemeTag{}, Empty: true, EmptyText: NoThemeText}
	}
	tags := make([]ThemeTag, len(t.Themes))
	for i, th := range t.Themes {
		tags[i] = ThemeTag{
			Rank:      i,
			Theme:     th.Theme,
			Score:     th.Score,
			Color:     rankColor(i),
			Highlight: i < 2,
		}
	}
	return ThemeList{Tags: tags}
}

func rankColor(rank int) string {
	switch rank {
	case 0:
		return ColorPrimary
	case 1:
		return ColorSecondary
	default:
		return ColorDefault
	}
}

// Keywords returns at most MaxKeywords keywords in backend order.
func Keywords(t *models.ThemeResult) []models.Keyword {
	if t == nil {
		return []models.Keyword{}
	}
	n := min(len(t.Keywords), MaxKeywords)
	return append([]models.Keyword{}, t.Keywords[:n]...)
}

// Wordcloud caps the cloud at MaxWordcloudItems and halves sizes, never
// going below MinWordcloudSize.
func Wordcloud(t *models.ThemeResult) []CloudToken {
	if t == nil {
		return []CloudToken{}
	}
	n := min(len(t.WordcloudData), MaxWordcloudItems)
	tokens := make([]CloudToken, n)
	for i, item := range t.WordcloudData[:n] {
		tokens[i] = CloudToken{Word: item.Word, Size: max(MinWordcloudSize, item.Size/2)}
	}
	return tokens
}

// Rhythm flattens the rhythm analysis.
func Rhythm(r *models.RhythmResult) RhythmCard {
	if r == nil {
		return RhythmCard{}
	}
	return RhythmCard{
		Present:           true,
		Pattern:           r.RhymePattern.Pattern,
		QualityScore:      r.RhymePattern.QualityScore,
		RhymeCount:        r.RhymePattern.RhymeCount,
		AvgSyllables:      r.SyllableAnalysis.AvgSyllables,
		RhythmConsistency: r.SyllableAnalysis.RhythmConsistency,
		OverallScore:      r.OverallScore,
	}
}
