// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package bridge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/cadence/internal/config"
	"github.com/tomtom215/cadence/internal/events"
	"github.com/tomtom215/cadence/internal/session"
)

// chanSubscriber hands out one prepared channel.
type chanSubscriber struct {
	ch     chan events.Event
	err    error
	topics []string
}

func (s *chanSubscriber) Subscribe(_ context.Context, topics ...string) (<-chan events.Event, error) {
	s.topics = topics
	if s.err != nil {
		return nil, s.err
	}
	return s.ch, nil
}

func newStubSession(t *testing.T, cfg *config.Config) *session.Session {
	t.Helper()
	sess := session.New(newStubBackend(), cfg, nil)
	t.Cleanup(sess.Close)
	return sess
}

func TestForwarderRelaysEvents(t *testing.T) {
	t.Parallel()

	hub := startHub(t)
	c := testClient(hub, 4)
	hub.Register <- c
	waitFor(t, "client", func() bool { return hub.ClientCount() == 1 })

	sub := &chanSubscriber{ch: make(chan events.Event, 1)}
	fwd := NewForwarder(sub, hub, events.TopicNotice)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- fwd.Serve(ctx) }()

	sub.ch <- events.Event{ID: "n1", Topic: events.TopicNotice, Payload: json.RawMessage(`{"level":"error"}`)}
	if msg := receive(t, c); msg.ID != "n1" {
		t.Errorf("forwarded message = %+v", msg)
	}

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
	if len(sub.topics) != 1 || sub.topics[0] != events.TopicNotice {
		t.Errorf("subscribed topics = %v", sub.topics)
	}
}

func TestForwarderSubscriptionClosed(t *testing.T) {
	t.Parallel()

	sub := &chanSubscriber{ch: make(chan events.Event)}
	close(sub.ch)
	err := NewForwarder(sub, NewHub()).Serve(context.Background())
	if !errors.Is(err, ErrSubscriptionClosed) {
		t.Errorf("Serve() = %v, want ErrSubscriptionClosed", err)
	}
}

func TestForwarderSubscribeError(t *testing.T) {
	t.Parallel()

	sub := &chanSubscriber{err: events.ErrClosed}
	err := NewForwarder(sub, NewHub()).Serve(context.Background())
	if !errors.Is(err, events.ErrClosed) {
		t.Errorf("Serve() = %v, want wrapped events.ErrClosed", err)
	}
}
