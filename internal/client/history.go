// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tomtom215/cadence/internal/models"
)

// History calls GET /{kind}/history with limit and returns the records
// newest first as ordered by the backend. The history store caps the list at
// limit.
func (c *Client) History(ctx context.Context, kind models.Kind, limit int) ([]models.Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("history: invalid kind %q", kind)
	}

	query := url.Values{"limit": {strconv.Itoa(limit)}}
	if c.userID > 0 {
		query.Set("user_id", strconv.FormatInt(c.userID, 10))
	}
	cl := call{
		method:   http.MethodGet,
		endpoint: string(kind) + "/history",
		path:     "/" + string(kind) + "/history",
		query:    query,
	}

	switch kind {
	case models.KindAnalysis:
		var recs []*models.AnalysisRecord
		if err := c.do(ctx, cl, &recs); err != nil {
			return nil, err
		}
		return toRecords(recs), nil
	case models.KindGeneration:
		var recs []*models.GenerationRecord
		if err := c.do(ctx, cl, &recs); err != nil {
			return nil, err
		}
		return toRecords(recs), nil
	default:
		var recs []*models.RecommendationRecord
		if err := c.do(ctx, cl, &recs); err != nil {
			return nil, err
		}
		return toRecords(recs), nil
	}
}

// HistoryDetail calls GET /{kind}/history/{id}.
func (c *Client) HistoryDetail(ctx context.Context, kind models.Kind, id int64) (models.Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("history detail: invalid kind %q", kind)
	}

	cl := call{
		method:   http.MethodGet,
		endpoint: string(kind) + "/history/detail",
		path:     fmt.Sprintf("/%s/history/%d", kind, id),
	}

	var rec models.Record
	switch kind {
	case models.KindAnalysis:
		rec = &models.AnalysisRecord{}
	case models.KindGeneration:
		rec = &models.GenerationRecord{}
	default:
		rec = &models.RecommendationRecord{}
	}
	if err := c.do(ctx, cl, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// DeleteHistory calls DELETE /{kind}/history/{id}.
func (c *Client) DeleteHistory(ctx context.Context, kind models.Kind, id int64) error {
	if !kind.Valid() {
		return fmt.Errorf("delete history: invalid kind %q", kind)
	}
	return c.do(ctx, call{
		method:   http.MethodDelete,
		endpoint: string(kind) + "/history/delete",
		path:     fmt.Sprintf("/%s/history/%d", kind, id),
	}, nil)
}

// toRecords widens a typed slice, dropping null entries.
func toRecords[T any, P interface {
	*T
	models.Record
}](recs []P) []models.Record {
	out := make([]models.Record, 0, len(recs))
	for _, r := range recs {
		if r == nil {
			continue
		}
		out = append(out, r)
	}
	return out
}
