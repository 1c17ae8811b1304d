// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/cadence/internal/events"
)

// Forwarder is satisfied by *bridge.Forwarder.
type Forwarder interface {
	Serve(ctx context.Context) error
}

// ForwarderService runs the bus-to-hub event forwarder under supervision.
// A closed bus is final: the service stops instead of restarting.
type ForwarderService struct {
	fwd  Forwarder
	name string
}

// NewForwarderService wraps fwd.
func NewForwarderService(fwd Forwarder) *ForwarderService {
	return &ForwarderService{
		fwd:  fwd,
		name: "event-forwarder",
	}
}

// Serve implements suture.Service.
func (f *ForwarderService) Serve(ctx context.Context) error {
	err := f.fwd.Serve(ctx)
	if errors.Is(err, events.ErrClosed) {
		return fmt.Errorf("%w: %w", suture.ErrDoNotRestart, err)
	}
	return err
}

func (f *ForwarderService) String() string {
	return f.name
}
