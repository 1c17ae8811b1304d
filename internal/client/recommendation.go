// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tomtom215/cadence/internal/models"
)

type recommendRequest struct {
	Lyrics string `json:"lyrics"`
	TopK   int    `json:"top_k"`
	UserID *int64 `json:"user_id,omitempty"`
}

type knowledgeGraphRequest struct {
	Songs []models.Song `json:"songs"`
}

type preferencesRequest struct {
	UserID      int64              `json:"user_id"`
	Preferences models.Preferences `json:"preferences"`
}

// Recommend calls POST /recommendation/recommend.
func (c *Client) Recommend(ctx context.Context, lyrics string, topK int) (*models.RecommendationResult, error) {
	var out models.RecommendationResult
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "recommendation/recommend",
		path:     "/recommendation/recommend",
		body:     recommendRequest{Lyrics: lyrics, TopK: topK, UserID: c.userRef()},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// KnowledgeGraph calls POST /recommendation/knowledge-graph.
func (c *Client) KnowledgeGraph(ctx context.Context, songs []models.Song) (*models.KnowledgeGraph, error) {
	if songs == nil {
		songs = []models.Song{}
	}
	var out models.KnowledgeGraph
	err := c.do(ctx, call{
		method:   http.MethodPost,
		endpoint: "recommendation/knowledge-graph",
		path:     "/recommendation/knowledge-graph",
		body:     knowledgeGraphRequest{Songs: songs},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Preferences calls GET /recommendation/preferences for the configured user.
func (c *Client) Preferences(ctx context.Context) (models.Preferences, error) {
	if c.userID <= 0 {
		return nil, ErrNoUser
	}
	out := models.Preferences{}
	err := c.do(ctx, call{
		method:   http.MethodGet,
		endpoint: "recommendation/preferences",
		path:     "/recommendation/preferences",
		query:    url.Values{"user_id": {strconv.FormatInt(c.userID, 10)}},
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// UpdatePreferences calls PUT /recommendation/preferences for the configured user.
func (c *Client) UpdatePreferences(ctx context.Context, prefs models.Preferences) error {
	if c.userID <= 0 {
		return ErrNoUser
	}
	if prefs == nil {
		prefs = models.Preferences{}
	}
	return c.do(ctx, call{
		method:   http.MethodPut,
		endpoint: "recommendation/preferences",
		path:     "/recommendation/preferences",
		body:     preferencesRequest{UserID: c.userID, Preferences: prefs},
	}, nil)
}
