// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package session

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/cadence/internal/history"
	"github.com/tomtom215/cadence/internal/models"
)

// RefreshHistory reloads one history list. limit <= 0 uses the configured
// default.
func (s *Session) RefreshHistory(ctx context.Context, kind models.Kind, limit int) ([]models.Record, error) {
	ctx, done, err := s.begin(ctx, OpRefresh, false)
	if err != nil {
		return nil, err
	}
	defer done()

	records, err := s.store.Refresh(ctx, kind, limit)
	return finish(s, ctx, OpRefresh, records, err, nil)
}

// RefreshAll reloads the three history lists concurrently. Each list is
// updated independently; the first error is returned.
func (s *Session) RefreshAll(ctx context.Context, limit int) error {
	var g errgroup.Group
	for _, kind := range models.Kinds() {
		g.Go(func() error {
			_, err := s.RefreshHistory(ctx, kind, limit)
			if errors.Is(err, history.ErrSuperseded) {
				return nil
			}
			return err
		})
	}
	return g.Wait()
}

// OpenDetail fetches, decodes and opens one history record.
func (s *Session) OpenDetail(ctx context.Context, kind models.Kind, id int64) (history.Detail, error) {
	ctx, done, err := s.begin(ctx, OpDetail, false)
	if err != nil {
		return nil, err
	}
	defer done()

	detail, err := s.store.FetchDetail(ctx, kind, id)
	return finish(s, ctx, OpDetail, detail, err, nil)
}

// CloseDetail closes the detail view.
func (s *Session) CloseDetail() {
	s.store.CloseDetail()
}

// DeleteHistory deletes one record and reconciles the list from the backend.
// Confirmation is the caller's responsibility.
func (s *Session) DeleteHistory(ctx context.Context, kind models.Kind, id int64) error {
	ctx, done, err := s.begin(ctx, OpDelete, false)
	if err != nil {
		return err
	}
	defer done()

	err = s.store.Delete(ctx, kind, id)
	_, err = finish(s, ctx, OpDelete, struct{}{}, err, nil)
	return err
}
