// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package supervisor

import (
	"fmt"
	"net/http"

	"github.com/tomtom215/cadence/internal/bridge"
	"github.com/tomtom215/cadence/internal/config"
	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/supervisor/services"
)

// Bridge is a supervised bridge: hub and forwarder in the messaging layer,
// HTTP server in the API layer.
type Bridge struct {
	Tree    *SupervisorTree
	Hub     *bridge.Hub
	Handler http.Handler
	Addr    string
}

// NewBridge assembles the bridge for sess, fed by events from sub.
func NewBridge(cfg *config.BridgeConfig, sess bridge.Session, sub bridge.Subscriber) (*Bridge, error) {
	tree, err := NewSupervisorTree(logging.NewSlogLogger("supervisor"), TreeConfig{
		ShutdownTimeout: cfg.ShutdownTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create supervisor tree: %w", err)
	}

	hub := bridge.NewHub()
	handler := bridge.NewServer(sess, hub, cfg).Handler()
	server := bridge.NewHTTPServer(cfg, handler)

	tree.AddMessagingService(services.NewHubService(hub))
	tree.AddMessagingService(services.NewForwarderService(bridge.NewForwarder(sub, hub)))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.ShutdownTimeout))

	return &Bridge{
		Tree:    tree,
		Hub:     hub,
		Handler: handler,
		Addr:    server.Addr,
	}, nil
}
