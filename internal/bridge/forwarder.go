// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package bridge

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/cadence/internal/events"
	"github.com/tomtom215/cadence/internal/logging"
)

// ErrSubscriptionClosed is returned when the bus closes the subscription
// while the forwarder is still running.
var ErrSubscriptionClosed = errors.New("event subscription closed")

// Subscriber is satisfied by *events.Bus.
type Subscriber interface {
	Subscribe(ctx context.Context, topics ...string) (<-chan events.Event, error)
}

// Forwarder relays bus events to the hub.
type Forwarder struct {
	sub    Subscriber
	hub    *Hub
	topics []string
}

// NewForwarder forwards topics (all topics when empty) from sub to hub.
func NewForwarder(sub Subscriber, hub *Hub, topics ...string) *Forwarder {
	return &Forwarder{sub: sub, hub: hub, topics: topics}
}

// Serve forwards until ctx ends. It implements suture.Service.
func (f *Forwarder) Serve(ctx context.Context) error {
	ch, err := f.sub.Subscribe(ctx, f.topics...)
	if err != nil {
		return fmt.Errorf("failed to subscribe to events: %w", err)
	}

	logging.Debug().Strs("topics", f.topics).Msg("Event forwarder started")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-ch:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return ErrSubscriptionClosed
			}
			f.hub.BroadcastEvent(ev)
		}
	}
}

func (f *Forwarder) String() string {
	return "event-forwarder"
}
