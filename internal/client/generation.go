// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package client

import (
	"context"
	"net/http"

	"github.com/tomtom215/cadence/internal/models"
	"github.com/tomtom215/cadence/internal/strategy"
)

type byThemeRequest struct {
	Theme   string `json:"theme"`
	Emotion string `json:"emotion,omitempty"`
	Length  int    `json:"length"`
	UserID  *int64 `json:"user_id,omitempty"`
}

type byContextRequest struct {
	PreviousLines []string `json:"previous_lines"`
	UserID        *int64   `json:"user_id,omitempty"`
}

type fullSongRequest struct {
	Style    string `json:"style"`
	Theme    string `json:"theme"`
	Emotion  string `json:"emotion,omitempty"`
	UserIdea string `json:"user_idea,omitempty"`
	UserID   *int64 `json:"user_id,omitempty"`
}

type convertStyleRequest struct {
	Lyrics      string `json:"lyrics"`
	TargetStyle string `json:"target_style"`
	UserID      *int64 `json:"user_id,omitempty"`
}

type continueRequest struct {
	PreviousLyrics string `json:"previous_lyrics"`
	UserFeedback   string `json:"user_feedback"`
	UserID         *int64 `json:"user_id,omitempty"`
}

type optimizeRhymeRequest struct {
	Line        string `json:"line"`
	TargetRhyme string `json:"target_rhyme"`
}

// GenerateByTheme calls POST /generation/by-theme.
func (c *Client) GenerateByTheme(ctx context.Context, req strategy.ByTheme) (*models.GenerationResult, error) {
	return c.generate(ctx, "generation/by-theme", byThemeRequest{
		Theme:   req.Theme,
		Emotion: req.Emotion,
		Length:  req.Length,
		UserID:  c.userRef(),
	})
}

// GenerateByContext calls POST /generation/by-context.
func (c *Client) GenerateByContext(ctx context.Context, req strategy.ByContext) (*models.GenerationResult, error) {
	return c.generate(ctx, "generation/by-context", byContextRequest{
		PreviousLines: req.Lines,
		UserID:        c.userRef(),
	})
}

// GenerateFullSong calls POST /generation/full-song.
func (c *Client) GenerateFullSong(ctx context.Context, req strategy.FullSong) (*models.GenerationResult, error) {
	return c.generate(ctx, "generation/full-song", fullSongRequest{
		Style:    req.Style,
		Theme:    req.Theme,
		Emotion:  req.Emotion,
		UserIdea: req.UserIdea,
		UserID:   c.userRef(),
	})
}

// ContinueConversation calls POST /generation/continue to revise lyrics
// according to user feedback.
func (c *Client) ContinueConversation(ctx context.Context, previousLyrics, feedback string) (*models.GenerationResult, error) {
	return c.generate(ctx, "generation/continue", continueRequest{
		PreviousLyrics: previousLyrics,
		UserFeedback:   feedback,
		UserID:         c.userRef(),
	})
}

func (c *Client) generate(ctx context.Context, endpoint string, body any) (*models.GenerationResult, error) {
	var out models.GenerationResult
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: endpoint,
		path:     "/" + endpoint,
		body:     body,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ConvertStyle calls POST /generation/convert-style.
func (c *Client) ConvertStyle(ctx context.Context, lyrics, targetStyle string) (*models.StyleConversion, error) {
	var out models.StyleConversion
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "generation/convert-style",
		path:     "/generation/convert-style",
		body:     convertStyleRequest{Lyrics: lyrics, TargetStyle: targetStyle, UserID: c.userRef()},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// OptimizeRhyme calls POST /generation/optimize-rhyme.
func (c *Client) OptimizeRhyme(ctx context.Context, line, targetRhyme string) (*models.RhymeSuggestions, error) {
	var out models.RhymeSuggestions
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "generation/optimize-rhyme",
		path:     "/generation/optimize-rhyme",
		body:     optimizeRhymeRequest{Line: line, TargetRhyme: targetRhyme},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
