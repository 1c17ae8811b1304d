// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package session

import (
	"context"
	"strings"

	"github.com/tomtom215/cadence/internal/client"
	"github.com/tomtom215/cadence/internal/metrics"
	"github.com/tomtom215/cadence/internal/models"
	"github.com/tomtom215/cadence/internal/strategy"
	"github.com/tomtom215/cadence/internal/visualize"
)

type lyricsInput struct {
	Lyrics string `validate:"notblank"`
}

type convertInput struct {
	Lyrics      string `validate:"notblank"`
	TargetStyle string `validate:"notblank"`
}

type continueInput struct {
	PreviousLyrics string `validate:"notblank"`
	Feedback       string `validate:"notblank"`
}

type rhymeInput struct {
	Line        string `validate:"notblank"`
	TargetRhyme string `validate:"notblank"`
}

type recommendInput struct {
	Lyrics string `validate:"notblank"`
	TopK   int    `validate:"gte=1,lte=50"`
}

type graphInput struct {
	Songs []models.Song `validate:"min=1"`
}

// Analyze runs the full analysis and keeps the result and its charts.
func (s *Session) Analyze(ctx context.Context, lyrics string) (*models.AnalysisResult, error) {
	return run(s, ctx, OpAnalyze, &lyricsInput{Lyrics: lyrics},
		func(ctx context.Context) (*models.AnalysisResult, error) {
			return s.backend.Analyze(ctx, lyrics)
		},
		func(res *models.AnalysisResult) {
			charts := visualize.Charts(res)
			s.analysis = res
			s.charts = &charts
		})
}

// AnalyzeSentiment runs the sentiment facet only.
func (s *Session) AnalyzeSentiment(ctx context.Context, lyrics string) (*models.SentimentResult, error) {
	return run(s, ctx, OpAnalyzeSentiment, &lyricsInput{Lyrics: lyrics},
		func(ctx context.Context) (*models.SentimentResult, error) {
			return s.backend.AnalyzeSentiment(ctx, lyrics)
		}, nil)
}

// AnalyzeTheme runs the theme facet only.
func (s *Session) AnalyzeTheme(ctx context.Context, lyrics string) (*models.ThemeResult, error) {
	return run(s, ctx, OpAnalyzeTheme, &lyricsInput{Lyrics: lyrics},
		func(ctx context.Context) (*models.ThemeResult, error) {
			return s.backend.AnalyzeTheme(ctx, lyrics)
		}, nil)
}

// AnalyzeRhythm runs the rhythm facet only.
func (s *Session) AnalyzeRhythm(ctx context.Context, lyrics string) (*models.RhythmResult, error) {
	return run(s, ctx, OpAnalyzeRhythm, &lyricsInput{Lyrics: lyrics},
		func(ctx context.Context) (*models.RhythmResult, error) {
			return s.backend.AnalyzeRhythm(ctx, lyrics)
		}, nil)
}

// Charts returns the chart set of the last successful analysis.
func (s *Session) Charts() (visualize.ChartSet, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.charts == nil {
		return visualize.Charts(nil), false
	}
	return *s.charts, true
}

// Generation is a generation result together with the request that
// produced it.
type Generation struct {
	Strategy strategy.Name            `json:"strategy"`
	Request  strategy.Request         `json:"request"`
	Result   *models.GenerationResult `json:"result"`
}

// Text is the displayed lyrics of the generation.
func (g *Generation) Text() string {
	if g == nil {
		return ""
	}
	return g.Result.Text()
}

// Generate resolves the intent into exactly one backend request and sends it.
func (s *Session) Generate(ctx context.Context, intent models.Intent) (*Generation, error) {
	req := strategy.Resolve(intent, s.defaults)
	return run(s, ctx, OpGenerate, nil,
		func(ctx context.Context) (*Generation, error) {
			metrics.RecordGenerationStrategy(string(req.Name()))
			res, err := client.Generate(ctx, s.backend, req)
			if err != nil {
				return nil, err
			}
			return &Generation{Strategy: req.Name(), Request: req, Result: res}, nil
		},
		func(g *Generation) { s.generation = g })
}

// ConvertStyle rewrites lyrics in targetStyle. An empty target uses the
// configured default.
func (s *Session) ConvertStyle(ctx context.Context, lyrics, targetStyle string) (*models.StyleConversion, error) {
	if strings.TrimSpace(targetStyle) == "" {
		targetStyle = s.convertStyle
	}
	return run(s, ctx, OpConvertStyle, &convertInput{Lyrics: lyrics, TargetStyle: targetStyle},
		func(ctx context.Context) (*models.StyleConversion, error) {
			return s.backend.ConvertStyle(ctx, lyrics, strings.TrimSpace(targetStyle))
		}, nil)
}

// Continue revises previous lyrics according to feedback.
func (s *Session) Continue(ctx context.Context, previousLyrics, feedback string) (*models.GenerationResult, error) {
	return run(s, ctx, OpContinue, &continueInput{PreviousLyrics: previousLyrics, Feedback: feedback},
		func(ctx context.Context) (*models.GenerationResult, error) {
			return s.backend.ContinueConversation(ctx, previousLyrics, feedback)
		},
		func(res *models.GenerationResult) {
			if s.generation != nil {
				g := *s.generation
				g.Result = res
				s.generation = &g
			}
		})
}

// OptimizeRhyme asks for rewrites of line ending on targetRhyme.
func (s *Session) OptimizeRhyme(ctx context.Context, line, targetRhyme string) (*models.RhymeSuggestions, error) {
	return run(s, ctx, OpOptimizeRhyme, &rhymeInput{Line: line, TargetRhyme: targetRhyme},
		func(ctx context.Context) (*models.RhymeSuggestions, error) {
			return s.backend.OptimizeRhyme(ctx, line, targetRhyme)
		}, nil)
}

// Recommend finds songs similar to lyrics. topK <= 0 uses the configured
// default.
func (s *Session) Recommend(ctx context.Context, lyrics string, topK int) (*models.RecommendationResult, error) {
	if topK <= 0 {
		topK = s.topK
	}
	return run(s, ctx, OpRecommend, &recommendInput{Lyrics: lyrics, TopK: topK},
		func(ctx context.Context) (*models.RecommendationResult, error) {
			return s.backend.Recommend(ctx, lyrics, topK)
		},
		func(res *models.RecommendationResult) { s.recommendation = res })
}

// KnowledgeGraph builds the relationship graph for songs.
func (s *Session) KnowledgeGraph(ctx context.Context, songs []models.Song) (*models.KnowledgeGraph, error) {
	return run(s, ctx, OpKnowledgeGraph, &graphInput{Songs: songs},
		func(ctx context.Context) (*models.KnowledgeGraph, error) {
			return s.backend.KnowledgeGraph(ctx, songs)
		}, nil)
}

// Preferences loads the configured user's preferences.
func (s *Session) Preferences(ctx context.Context) (models.Preferences, error) {
	return run(s, ctx, OpPreferences, nil,
		func(ctx context.Context) (models.Preferences, error) {
			return s.backend.Preferences(ctx)
		}, nil)
}

// UpdatePreferences stores the configured user's preferences.
func (s *Session) UpdatePreferences(ctx context.Context, prefs models.Preferences) error {
	_, err := run(s, ctx, OpPreferences, nil,
		func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.backend.UpdatePreferences(ctx, prefs)
		}, nil)
	return err
}
