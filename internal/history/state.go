// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package history

import (
	"fmt"
	"time"

	"github.com/tomtom215/cadence/internal/models"
)

// State is the lifecycle state of one history list.
type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateLoading:
		return "loading"
	case StateLoaded:
		return "loaded"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// MarshalText encodes the state by name.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ListSnapshot is a read-only copy of one history list.
type ListSnapshot struct {
	Kind    models.Kind     `json:"kind"`
	State   State           `json:"state"`
	Records []models.Record `json:"records"`
	// Error is the message of the last failed refresh while State is Failed.
	Error     string    `json:"error,omitempty"`
	Limit     int       `json:"limit"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Contains reports whether the list holds a record with id.
func (l ListSnapshot) Contains(id int64) bool {
	for _, r := range l.Records {
		if r.RecordID() == id {
			return true
		}
	}
	return false
}

// Snapshot is a read-only copy of the whole store.
type Snapshot struct {
	Lists  map[models.Kind]ListSnapshot `json:"lists"`
	Detail Detail                       `json:"detail,omitempty"`
}

// listState is the mutable state of one list. Guarded by Store.mu.
type listState struct {
	state State
	// settled is the last non-Loading state.
	settled   State
	records   []models.Record
	err       error
	limit     int
	issued    uint64
	applied   uint64
	inflight  int
	updatedAt time.Time
}

func (ls *listState) snapshot(kind models.Kind) ListSnapshot {
	snap := ListSnapshot{
		Kind:      kind,
		State:     ls.state,
		Records:   append([]models.Record(nil), ls.records...),
		Limit:     ls.limit,
		UpdatedAt: ls.updatedAt,
	}
	if ls.settled == StateFailed && ls.err != nil {
		snap.Error = ls.err.Error()
	}
	return snap
}
