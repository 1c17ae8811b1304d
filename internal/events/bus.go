// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package events

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"

	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/metrics"
)

// ErrClosed is returned after Close.
var ErrClosed = errors.New("event bus closed")

// subscriberBuffer is the per-subscriber output buffer.
const subscriberBuffer = 64

// Bus publishes JSON notifications over a Watermill gochannel.
//
// Thread Safety: safe for concurrent use.
type Bus struct {
	pubsub *gochannel.GoChannel
	closed atomic.Bool
}

// NewBus creates an in-process bus.
func NewBus() *Bus {
	logger := newZerologAdapter(logging.WithComponent("events"))
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            subscriberBuffer,
			BlockPublishUntilSubscriberAck: false,
		}, logger),
	}
}

// Publish encodes payload and sends it on topic.
func (b *Bus) Publish(topic string, payload any) error {
	if b.closed.Load() {
		return ErrClosed
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", topic, err)
	}

	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish %s event: %w", topic, err)
	}
	metrics.RecordEventPublished(topic)
	return nil
}

// Subscribe delivers events for the given topics until ctx is canceled or
// the bus is closed. The returned channel is closed afterwards.
func (b *Bus) Subscribe(ctx context.Context, topics ...string) (<-chan Event, error) {
	if b.closed.Load() {
		return nil, ErrClosed
	}
	if len(topics) == 0 {
		topics = AllTopics()
	}

	out := make(chan Event, subscriberBuffer)
	sources := make([]<-chan *message.Message, 0, len(topics))
	for _, topic := range topics {
		ch, err := b.pubsub.Subscribe(ctx, topic)
		if err != nil {
			return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
		}
		sources = append(sources, ch)
	}

	var remaining atomic.Int32
	remaining.Store(int32(len(sources)))
	for i, src := range sources {
		go func(topic string, src <-chan *message.Message) {
			defer func() {
				if remaining.Add(-1) == 0 {
					close(out)
				}
			}()
			for msg := range src {
				ev := Event{
					ID:      msg.UUID,
					Topic:   topic,
					Time:    now(),
					Payload: json.RawMessage(msg.Payload),
				}
				msg.Ack()
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}(topics[i], src)
	}

	return out, nil
}

// Close shuts the bus down and closes all subscriber channels.
func (b *Bus) Close() error {
	if !b.closed.CompareAndSwap(false, true) {
		return nil
	}
	return b.pubsub.Close()
}
