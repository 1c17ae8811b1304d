// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package client

import (
	"context"
	"net/http"

	"github.com/tomtom215/cadence/internal/models"
)

type lyricsRequest struct {
	Lyrics string `json:"lyrics"`
	UserID *int64 `json:"user_id,omitempty"`
}

// Analyze runs the full analysis (POST /analysis/analyze). The backend
// records the analysis in its history.
func (c *Client) Analyze(ctx context.Context, lyrics string) (*models.AnalysisResult, error) {
	var out models.AnalysisResult
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "analysis/analyze",
		path:     "/analysis/analyze",
		body:     lyricsRequest{Lyrics: lyrics, UserID: c.userRef()},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeSentiment runs sentiment analysis only (POST /analysis/sentiment).
func (c *Client) AnalyzeSentiment(ctx context.Context, lyrics string) (*models.SentimentResult, error) {
	var out models.SentimentResult
	if err := c.facet(ctx, "sentiment", lyrics, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeTheme runs theme extraction only (POST /analysis/theme).
func (c *Client) AnalyzeTheme(ctx context.Context, lyrics string) (*models.ThemeResult, error) {
	var out models.ThemeResult
	if err := c.facet(ctx, "theme", lyrics, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AnalyzeRhythm runs rhyme and syllable analysis only (POST /analysis/rhythm).
func (c *Client) AnalyzeRhythm(ctx context.Context, lyrics string) (*models.RhythmResult, error) {
	var out models.RhythmResult
	if err := c.facet(ctx, "rhythm", lyrics, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) facet(ctx context.Context, name, lyrics string, out any) error {
	return c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "analysis/" + name,
		path:     "/analysis/" + name,
		body:     lyricsRequest{Lyrics: lyrics},
	}, out)
}
