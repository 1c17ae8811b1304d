// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cadence/internal/logging"
	"github.com/tomtom215/cadence/internal/supervisor"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		host    string
		port    int
		preload bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose the session over a local HTTP/WebSocket bridge",
		Long: `Run the local bridge used by chart renderers and other front ends.

The bridge serves the session snapshot, history and chart descriptors over
HTTP and streams session events over /ws until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := &a.cfg.Bridge
			if cmd.Flags().Changed("host") {
				cfg.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			b, err := supervisor.NewBridge(cfg, a.sess, a.bus)
			if err != nil {
				return err
			}

			if preload {
				// Failed lists stay in the snapshot with their error.
				if err := a.sess.RefreshAll(ctx, 0); err != nil {
					logging.Warn().Err(err).Msg("Initial history load incomplete")
				}
			}

			a.printer.Info("bridge listening on http://%s", b.Addr)
			logging.Info().Str("addr", b.Addr).Msg("Starting supervisor tree...")

			err = b.Tree.Serve(ctx)
			logging.Info().Msg("Bridge stopped")
			if report, rerr := b.Tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
				logging.Warn().Int("services", len(report)).Msg("Services did not stop in time")
			}
			if err != nil && !errors.Is(err, context.Canceled) {
				return fmt.Errorf("bridge: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "listen host (overrides BRIDGE_HOST)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (overrides BRIDGE_PORT)")
	cmd.Flags().BoolVar(&preload, "preload", true, "load all history lists before serving")
	return cmd
}
