// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package events

import (
	"time"

	"github.com/goccy/go-json"
)

// Topics.
const (
	TopicHistoryChanged = "history.changed"
	TopicDetailChanged  = "detail.changed"
	TopicSessionChanged = "session.changed"
	TopicNotice         = "notice"
)

// AllTopics lists every topic, for subscribers that want everything.
func AllTopics() []string {
	return []string{TopicHistoryChanged, TopicDetailChanged, TopicSessionChanged, TopicNotice}
}

// Event is a delivered notification.
type Event struct {
	ID      string          `json:"id"`
	Topic   string          `json:"topic"`
	Time    time.Time       `json:"time"`
	Payload json.RawMessage `json:"payload"`
}

// Decode unmarshals the payload into v.
func (e *Event) Decode(v any) error {
	return json.Unmarshal(e.Payload, v)
}

// HistoryChanged reports a list state transition for one kind.
type HistoryChanged struct {
	Kind    string `json:"kind"`
	State   string `json:"state"`
	Records int    `json:"records"`
}

// DetailChanged reports that the open detail view changed. Open is false
// when the view was closed.
type DetailChanged struct {
	Kind string `json:"kind,omitempty"`
	ID   int64  `json:"id,omitempty"`
	Open bool   `json:"open"`
}

// SessionChanged reports a busy flag transition or a new result.
type SessionChanged struct {
	Operation string `json:"operation"`
	Busy      bool   `json:"busy"`
}

// Notice is a user-facing message, usually a failure.
type Notice struct {
	Level     string `json:"level"`
	Operation string `json:"operation"`
	Message   string `json:"message"`
}
