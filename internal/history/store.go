// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package history

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/tomtom215/cadence/internal/config"
	"github.com/tomtom215/cadence/internal/events"
	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/metrics"
	"github.com/tomtom215/cadence/internal/models"
)

var (
	// ErrSuperseded is returned when a newer request for the same list or
	// detail view completed first. The response was discarded.
	ErrSuperseded = errors.New("superseded by a newer request")

	// ErrUnknownKind is returned for a kind outside analysis, generation
	// and recommendation.
	ErrUnknownKind = errors.New("unknown history kind")
)

// Backend is the subset of the backend client the store needs.
type Backend interface {
	History(ctx context.Context, kind models.Kind, limit int) ([]models.Record, error)
	HistoryDetail(ctx context.Context, kind models.Kind, id int64) (models.Record, error)
	DeleteHistory(ctx context.Context, kind models.Kind, id int64) error
}

// Publisher receives change notifications. *events.Bus satisfies it.
type Publisher interface {
	Publish(topic string, payload any) error
}

type detailKey struct {
	kind models.Kind
	id   int64
}

// Store owns the three history lists and the open detail view.
//
// Thread Safety: all methods are safe for concurrent use. Backend calls are
// made without holding the lock.
type Store struct {
	backend Backend
	pub     Publisher
	limit   int
	cache   *expirable.LRU[detailKey, Detail]

	mu            sync.Mutex
	lists         map[models.Kind]*listState
	detail        Detail
	detailIssued  uint64
	detailApplied uint64
}

// NewStore creates a store. pub may be nil.
func NewStore(backend Backend, cfg *config.HistoryConfig, pub Publisher) *Store {
	s := &Store{
		backend: backend,
		pub:     pub,
		limit:   cfg.Limit,
		cache:   expirable.NewLRU[detailKey, Detail](cfg.DetailCacheSize, nil, cfg.DetailCacheTTL),
		lists:   make(map[models.Kind]*listState, len(models.Kinds())),
	}
	for _, kind := range models.Kinds() {
		s.lists[kind] = &listState{limit: cfg.Limit}
	}
	return s
}

// Refresh reloads one list, replacing it wholesale on success. limit <= 0
// uses the configured default. Records beyond limit are dropped even when the
// backend sends more. On failure the previous records are kept and
// the error is returned.
func (s *Store) Refresh(ctx context.Context, kind models.Kind, limit int) ([]models.Record, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if limit <= 0 {
		limit = s.limit
	}

	s.mu.Lock()
	ls := s.lists[kind]
	ls.issued++
	seq := ls.issued
	ls.inflight++
	if ls.state != StateLoading {
		ls.settled = ls.state
	}
	ls.state = StateLoading
	ls.limit = limit
	count := len(ls.records)
	s.mu.Unlock()
	s.publishList(kind, StateLoading, count)

	records, err := s.backend.History(ctx, kind, limit)
	if len(records) > limit {
		records = records[:limit]
	}

	s.mu.Lock()
	ls.inflight--
	stale := seq <= ls.applied
	canceled := !stale && err != nil && ctx.Err() != nil
	if stale || canceled {
		// Records and error stay as the last applied refresh left them.
		if ls.inflight == 0 {
			ls.state = ls.settled
		}
		state, count := ls.state, len(ls.records)
		s.mu.Unlock()
		s.publishList(kind, state, count)

		if canceled {
			return nil, err
		}
		metrics.RecordStaleResponse(string(kind))
		logging.Ctx(ctx).Debug().
			Str("kind", string(kind)).
			Uint64("seq", seq).
			Msg("Discarded stale history response")
		return nil, ErrSuperseded
	}

	ls.applied = seq
	if err != nil {
		ls.err = err
		ls.settled = StateFailed
	} else {
		ls.records = records
		ls.err = nil
		ls.settled = StateLoaded
		ls.updatedAt = now()
	}
	if ls.inflight == 0 {
		ls.state = ls.settled
	}
	state, count := ls.state, len(ls.records)
	s.mu.Unlock()

	metrics.RecordHistoryRefresh(string(kind), len(records), err)
	s.publishList(kind, state, count)

	if err != nil {
		logging.Ctx(ctx).Warn().Err(err).Str("kind", string(kind)).Msg("History refresh failed")
		return nil, err
	}
	return append([]models.Record(nil), records...), nil
}

// FetchDetail loads, decodes and opens one record. Cached details are reused
// until they expire. On failure the open view is left untouched.
func (s *Store) FetchDetail(ctx context.Context, kind models.Kind, id int64) (Detail, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	key := detailKey{kind: kind, id: id}

	s.mu.Lock()
	s.detailIssued++
	seq := s.detailIssued
	s.mu.Unlock()

	detail, hit := s.cache.Get(key)
	metrics.RecordCacheLookup(string(kind), hit)
	if !hit {
		rec, err := s.backend.HistoryDetail(ctx, kind, id)
		if err != nil {
			logging.Ctx(ctx).Warn().Err(err).
				Str("kind", string(kind)).
				Int64("id", id).
				Msg("History detail fetch failed")
			return nil, err
		}
		detail = Decode(rec)
		if detail == nil {
			return nil, fmt.Errorf("%s record %d: empty detail response", kind, id)
		}
		for _, derr := range detail.DecodeErrors() {
			logging.Ctx(ctx).Warn().Err(derr.Err).
				Str("kind", string(kind)).
				Int64("id", id).
				Str("field", derr.Field).
				Msg("Malformed history payload")
		}
		s.cache.Add(key, detail)
	}

	s.mu.Lock()
	if seq <= s.detailApplied {
		s.mu.Unlock()
		metrics.RecordStaleResponse(string(kind))
		return nil, ErrSuperseded
	}
	s.detailApplied = seq
	s.detail = detail
	s.mu.Unlock()

	s.publish(events.TopicDetailChanged, events.DetailChanged{Kind: string(kind), ID: id, Open: true})
	return detail, nil
}

// CloseDetail closes the detail view. Fetches still in flight will not
// reopen it.
func (s *Store) CloseDetail() {
	s.mu.Lock()
	wasOpen := s.closeDetailLocked()
	s.mu.Unlock()

	if wasOpen {
		s.publish(events.TopicDetailChanged, events.DetailChanged{Open: false})
	}
}

func (s *Store) closeDetailLocked() bool {
	s.detailIssued++
	s.detailApplied = s.detailIssued
	wasOpen := s.detail != nil
	s.detail = nil
	return wasOpen
}

// Delete removes a record on the backend and then refreshes the list with
// its last limit. The list is never edited locally. If the backend rejects
// the delete, the list is left unchanged.
func (s *Store) Delete(ctx context.Context, kind models.Kind, id int64) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if err := s.backend.DeleteHistory(ctx, kind, id); err != nil {
		logging.Ctx(ctx).Warn().Err(err).
			Str("kind", string(kind)).
			Int64("id", id).
			Msg("History delete failed")
		return err
	}
	s.cache.Remove(detailKey{kind: kind, id: id})

	s.mu.Lock()
	closed := false
	if s.detail != nil && s.detail.Kind() == kind && s.detail.ID() == id {
		closed = s.closeDetailLocked()
	}
	limit := s.lists[kind].limit
	s.mu.Unlock()
	if closed {
		s.publish(events.TopicDetailChanged, events.DetailChanged{Open: false})
	}

	logging.Ctx(ctx).Info().Str("kind", string(kind)).Int64("id", id).Msg("History record deleted")

	if _, err := s.Refresh(ctx, kind, limit); err != nil && !errors.Is(err, ErrSuperseded) {
		return fmt.Errorf("record deleted but refresh failed: %w", err)
	}
	return nil
}

// List returns a copy of one list.
func (s *Store) List(kind models.Kind) ListSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	ls, ok := s.lists[kind]
	if !ok {
		return ListSnapshot{Kind: kind}
	}
	return ls.snapshot(kind)
}

// Detail returns the open detail view, or nil.
func (s *Store) Detail() Detail {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.detail
}

// Snapshot returns a copy of every list and the open detail view.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Lists:  make(map[models.Kind]ListSnapshot, len(s.lists)),
		Detail: s.detail,
	}
	for kind, ls := range s.lists {
		snap.Lists[kind] = ls.snapshot(kind)
	}
	return snap
}

func (s *Store) publishList(kind models.Kind, state State, records int) {
	s.publish(events.TopicHistoryChanged, events.HistoryChanged{
		Kind:    string(kind),
		State:   state.String(),
		Records: records,
	})
}

func (s *Store) publish(topic string, payload any) {
	if s.pub == nil {
		return
	}
	if err := s.pub.Publish(topic, payload); err != nil && !errors.Is(err, events.ErrClosed) {
		logging.Warn().Err(err).Str("topic", topic).Msg("Failed to publish history event")
	}
}

var now = time.Now
