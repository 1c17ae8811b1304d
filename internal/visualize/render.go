// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package visualize

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/tomtom215/cadence/internal/history"
	"github.com/tomtom215/cadence/internal/models"
)

// Template names.
const (
	tmplAnalysis       = "analysis"
	tmplGeneration     = "generation"
	tmplRecommendation = "recommendation"
	tmplAnalysisDetail = "analysis_detail"
	tmplGenDetail      = "generation_detail"
	tmplRecDetail      = "recommendation_detail"
)

const barWidth = 20

// Renderer renders descriptors as plain text for terminal output.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the built-in templates.
func NewRenderer() *Renderer {
	tmpl := template.New("cadence").Funcs(funcMap())
	for name, text := range builtinTemplates {
		template.Must(tmpl.New(name).Parse(text))
	}
	return &Renderer{tmpl: tmpl}
}

func funcMap() template.FuncMap {
	return template.FuncMap{
		"score":      FormatScore,
		"similarity": FormatSimilarity,
		"match":      FormatMatch,
		"date":       FormatDate,
		"truncate":   Truncate,
		"bar": func(v float64) string {
			v = min(max(v, 0), 1)
			full := int(v*barWidth + 0.5)
			return strings.Repeat("█", full) + strings.Repeat("░", barWidth-full)
		},
		"marker": func() string { return history.MalformedMarker },
		"inc":    func(i int) int { return i + 1 },
	}
}

// Analysis renders a fresh analysis result.
func (r *Renderer) Analysis(res *models.AnalysisResult) (string, error) {
	return r.execute(tmplAnalysis, Charts(res))
}

// Generation renders generated lyrics with the options that produced them.
func (r *Renderer) Generation(res *models.GenerationResult) (string, error) {
	if res == nil {
		res = &models.GenerationResult{}
	}
	return r.execute(tmplGeneration, res)
}

// Recommendations renders a recommendation result.
func (r *Renderer) Recommendations(res *models.RecommendationResult) (string, error) {
	return r.execute(tmplRecommendation, RecommendationItems(res))
}

type analysisDetailView struct {
	Record    *models.AnalysisRecord
	Date      string
	Sentiment history.Field[models.SentimentResult]
	Themes    history.FieldState
	ThemeList []models.ThemeScore
	Charts    ChartSet
}

type recommendationDetailView struct {
	Record *models.RecommendationRecord
	Date   string
	State  history.FieldState
	Items  []RecommendationItem
}

// Detail renders a decoded history record. Malformed fields render as a
// marker while the rest of the record is still shown.
func (r *Renderer) Detail(d history.Detail) (string, error) {
	switch d := d.(type) {
	case *history.AnalysisDetail:
		view := analysisDetailView{
			Record:    d.Record,
			Date:      FormatDate(d.Record.CreatedAt),
			Sentiment: d.Sentiment,
			Themes:    d.Theme.State,
		}
		res := &models.AnalysisResult{Sentiment: d.Sentiment.Value, Theme: d.Theme.Value, Rhythm: d.Rhythm.Value}
		view.Charts = Charts(res)
		if d.Theme.OK() {
			view.ThemeList = d.Theme.Value.Themes
		}
		return r.execute(tmplAnalysisDetail, view)
	case *history.GenerationDetail:
		return r.execute(tmplGenDetail, struct {
			Record *models.GenerationRecord
			Date   string
			Style  string
		}{d.Record, FormatDate(d.Record.CreatedAt), styleLabel(d.Record.Style)})
	case *history.RecommendationDetail:
		view := recommendationDetailView{
			Record: d.Record,
			Date:   FormatDate(d.Record.CreatedAt),
			State:  d.Recommendations.State,
			Items:  RecommendationItems(d.Recommendations.Value),
		}
		return r.execute(tmplRecDetail, view)
	default:
		return "", fmt.Errorf("cannot render detail of type %T", d)
	}
}

func (r *Renderer) execute(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to execute %s template: %w", name, err)
	}
	return buf.String(), nil
}

var builtinTemplates = map[string]string{
	tmplAnalysis: `{{with .Summary}}{{.}}

{{end}}【情感分析】
{{- if .Sentiment.Present}}
情感基调：{{.Sentiment.Tone}}
情感得分：{{.Sentiment.ScoreText}} {{bar .Sentiment.Score}}
{{- with .Sentiment.Explanation}}
{{.}}{{end}}
{{- if .Emotions}}
情感分布：{{range $i, $e := .Emotions}}{{if $i}}  {{end}}{{$e.Emotion}}: {{$e.Count}}句{{end}}{{end}}
{{- range .Categories}}
  {{.Name}} {{.Value}}{{end}}
{{- range .Timeline}}
  {{.Label}} {{bar .Score}} {{score .Score}}{{end}}
{{- else}}
无{{end}}

【主题分析】
{{- if .Themes.Empty}}
{{.Themes.EmptyText}}
{{- else}}{{range .Themes.Tags}}
  {{inc .Rank}}. {{.Theme}}  匹配度: {{match .Score}}{{end}}{{end}}
{{- if .Keywords}}
关键词：{{range $i, $k := .Keywords}}{{if $i}} {{end}}{{$k.Word}}{{end}}{{end}}

【韵律分析】
{{- if .Rhythm.Present}}
模式：{{.Rhythm.Pattern}}
质量评分：{{match .Rhythm.QualityScore}}
押韵对数：{{.Rhythm.RhymeCount}}
平均音节数：{{match .Rhythm.AvgSyllables}}
节奏一致性：{{match .Rhythm.RhythmConsistency}}
{{- else}}
无{{end}}
`,

	tmplGeneration: `{{.Text}}
{{- with .Theme}}
主题：{{.}}{{end}}
{{- with .Style}}
风格：{{.}}{{end}}
{{- with .Emotion}}
情感：{{.}}{{end}}
`,

	tmplRecommendation: `{{range $i, $item := .}}{{inc $i}}. {{$item.Title}}  相似度: {{$item.Percent}}
   歌手：{{$item.Artist}}
   推荐理由：{{$item.Explanation}}
{{- with $item.Preview}}
{{.}}{{end}}
{{else}}暂无推荐结果
{{end}}`,

	tmplAnalysisDetail: `时间：{{.Date}}
歌词：
{{.Record.Lyrics}}

情感分析结果：
{{- if eq .Sentiment.State "decoded"}}
情感基调：{{.Sentiment.Value.OverallTone}}
情感得分：{{score .Sentiment.Value.OverallScore}}
{{- else if eq .Sentiment.State "malformed"}}
{{marker}}
{{- else}}
无{{end}}

主题分析结果：
{{- if eq .Themes "decoded"}}{{range .ThemeList}}
{{.Theme}} (匹配度: {{match .Score}}){{end}}
{{- else if eq .Themes "malformed"}}
{{marker}}
{{- else}}
无{{end}}
`,

	tmplGenDetail: `时间：{{.Date}}
提示词：{{.Record.Prompt}}
风格：{{.Style}}
生成内容：
{{.Record.GeneratedLyrics}}
`,

	tmplRecDetail: `时间：{{.Date}}
查询歌词：
{{.Record.QueryLyrics}}

推荐结果：
{{- if eq .State "decoded"}}{{range $i, $item := .Items}}
{{$item.Title}}  歌手：{{$item.Artist}}  相似度：{{$item.Percent}}{{end}}
{{- else if eq .State "malformed"}}
{{marker}}
{{- else}}
无{{end}}
`,
}
