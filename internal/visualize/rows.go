// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package visualize

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/tomtom215/cadence/internal/history"
	"github.com/tomtom215/cadence/internal/models"
)

// List truncation, in runes.
const (
	LyricsPreviewRunes    = 100
	GeneratedPreviewRunes = 200
	QueryPreviewRunes     = 100
)

// Fallback texts.
const (
	UnknownTime            = "未知时间"
	DefaultStyleLabel      = "通用"
	UnknownArtist          = "未知"
	DefaultExplanation     = "基于歌词内容的综合相似度推荐"
	NoThemeDetected        = "未检测到主题"
	SentimentMalformedText = "分析结果数据格式错误"
	ThemeMalformedText     = "主题数据格式错误"
)

// DateLayout matches the zh-CN locale date rendering.
const DateLayout = "2006/1/2 15:04:05"

// FormatDate renders a record timestamp. Missing timestamps render as
// UnknownTime; unparsable ones are shown as sent.
func FormatDate(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return UnknownTime
	}
	t, ok := models.ParseTimestamp(raw)
	if !ok {
		return raw
	}
	return t.Format(DateLayout)
}

// FormatScore renders a score with two decimals.
func FormatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 2, 64)
}

// FormatSimilarity renders a 0..1 similarity as a percentage with one decimal.
func FormatSimilarity(similarity float64) string {
	return strconv.FormatFloat(similarity*100, 'f', 1, 64) + "%"
}

// FormatMatch renders a theme match score the way the backend sent it.
func FormatMatch(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// Truncate cuts s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}

// Row is one history list entry, already formatted for display. Tag is the
// style for generations and the tone for analyses.
type Row struct {
	Kind  models.Kind `json:"kind"`
	ID    int64       `json:"id"`
	Date  string      `json:"date"`
	Title string      `json:"title"`
	Tag   string      `json:"tag,omitempty"`
	Lines []string    `json:"lines,omitempty"`
}

// Rows formats a history list.
func Rows(records []models.Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, rec := range records {
		if row, ok := RowFor(rec); ok {
			rows = append(rows, row)
		}
	}
	return rows
}

// RowFor formats one record. ok is false for a nil or unknown record.
func RowFor(rec models.Record) (Row, bool) {
	switch r := rec.(type) {
	case *models.AnalysisRecord:
		if r == nil {
			return Row{}, false
		}
		return analysisRow(r), true
	case *models.GenerationRecord:
		if r == nil {
			return Row{}, false
		}
		return Row{
			Kind:  models.KindGeneration,
			ID:    r.ID,
			Date:  FormatDate(r.CreatedAt),
			Title: r.Prompt,
			Tag:   styleLabel(r.Style),
			Lines: []string{Truncate(r.GeneratedLyrics, GeneratedPreviewRunes)},
		}, true
	case *models.RecommendationRecord:
		if r == nil {
			return Row{}, false
		}
		return Row{
			Kind:  models.KindRecommendation,
			ID:    r.ID,
			Date:  FormatDate(r.CreatedAt),
			Title: Truncate(r.QueryLyrics, QueryPreviewRunes),
		}, true
	default:
		return Row{}, false
	}
}

func analysisRow(r *models.AnalysisRecord) Row {
	row := Row{
		Kind:  models.KindAnalysis,
		ID:    r.ID,
		Date:  FormatDate(r.CreatedAt),
		Title: Truncate(r.Lyrics, LyricsPreviewRunes),
	}

	detail := history.Decode(r).(*history.AnalysisDetail)
	switch detail.Sentiment.State {
	case history.FieldDecoded:
		s := detail.Sentiment.Value
		row.Tag = s.OverallTone
		row.Lines = append(row.Lines, fmt.Sprintf("情感基调：%s", s.OverallTone), fmt.Sprintf("情感得分：%s", FormatScore(s.OverallScore)))
	case history.FieldMalformed:
		row.Lines = append(row.Lines, SentimentMalformedText)
	}

	switch detail.Theme.State {
	case history.FieldDecoded:
		themes := detail.Theme.Value.Themes
		if len(themes) == 0 {
			row.Lines = append(row.Lines, NoThemeDetected)
		}
		for i, th := range themes {
			row.Lines = append(row.Lines, fmt.Sprintf("%d. %s (匹配度: %s)", i+1, th.Theme, FormatMatch(th.Score)))
		}
	case history.FieldMalformed:
		row.Lines = append(row.Lines, ThemeMalformedText)
	}
	return row
}

func styleLabel(style string) string {
	if strings.TrimSpace(style) == "" {
		return DefaultStyleLabel
	}
	return style
}

// RecommendationItem is one recommended song, formatted for display.
type RecommendationItem struct {
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	Similarity  float64 `json:"similarity"`
	Percent     string  `json:"percent"`
	Explanation string  `json:"explanation"`
	Platform    string  `json:"platform,omitempty"`
	Preview     string  `json:"preview,omitempty"`
}

// RecommendationItems formats a recommendation result. A nil result yields
// an empty slice.
func RecommendationItems(res *models.RecommendationResult) []RecommendationItem {
	if res == nil {
		return []RecommendationItem{}
	}
	items := make([]RecommendationItem, 0, len(res.Recommendations))
	for i, rec := range res.Recommendations {
		item := RecommendationItem{
			Title:       fmt.Sprintf("推荐 %d", i+1),
			Artist:      UnknownArtist,
			Similarity:  rec.Similarity,
			Percent:     FormatSimilarity(rec.Similarity),
			Explanation: rec.Explanation,
			Platform:    rec.Platform,
		}
		if strings.TrimSpace(item.Explanation) == "" {
			item.Explanation = DefaultExplanation
		}
		if s := rec.Song; s != nil {
			if strings.TrimSpace(s.Title) != "" {
				item.Title = s.Title
			}
			if strings.TrimSpace(s.Artist) != "" {
				item.Artist = s.Artist
			}
			item.Preview = CleanLyrics(s.Lyrics)
		}
		items = append(items, item)
	}
	return items
}

var (
	lrcTimestamp = regexp.MustCompile(`\[\d{2}:\d{2}\.\d{2,3}\]`)
	creditLine   = regexp.MustCompile(`\[.*?(作词|作曲|编曲|制作人|监制).*?\]|^(作词|作曲|编曲|制作人|监制)\s*[:：]`)
)

// CleanLyrics prepares scraped lyrics for a preview: credit lines are
// dropped, LRC timestamps are stripped and blank lines removed.
func CleanLyrics(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || creditLine.MatchString(line) {
			continue
		}
		stripped := strings.TrimSpace(lrcTimestamp.ReplaceAllString(line, ""))
		if stripped == "" || creditLine.MatchString(stripped) {
			continue
		}
		out = append(out, stripped)
	}
	return strings.Join(out, "\n")
}
