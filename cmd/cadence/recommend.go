// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/cadence/internal/models"
)

func newRecommendCmd(a *app) *cobra.Command {
	var (
		file string
		topK int
	)
	cmd := &cobra.Command{
		Use:   "recommend [lyrics...]",
		Short: "Find songs similar to the given lyrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			lyrics, err := a.readText(args, file)
			if err != nil {
				return err
			}
			if topK <= 0 {
				topK = a.cfg.Recommendation.TopK
			}
			res, err := a.sess.Recommend(cmd.Context(), lyrics, topK)
			if err != nil {
				return a.report(err)
			}
			return a.finish(a.emit(res, func() (string, error) { return a.renderer.Recommendations(res) }))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read lyrics from a file (- for stdin)")
	cmd.Flags().IntVar(&topK, "top-k", 0, "number of songs (default from config)")
	return cmd
}

func newGraphCmd(a *app) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Build an artist/theme/style knowledge graph from songs",
		Long: `Build a knowledge graph from a JSON array of songs read from --file or
stdin. Each song has title, artist, lyrics, theme and style fields.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := a.readText(nil, file)
			if err != nil {
				return err
			}
			var songs []models.Song
			if strings.TrimSpace(raw) != "" {
				if err := json.Unmarshal([]byte(raw), &songs); err != nil {
					return fmt.Errorf("parse songs: %w", err)
				}
			}
			g, err := a.sess.KnowledgeGraph(cmd.Context(), songs)
			if err != nil {
				return a.report(err)
			}
			return a.finish(a.emit(g, func() (string, error) { return a.graphText(g), nil }))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read songs from a JSON file (- for stdin)")
	return cmd
}

func (a *app) graphText(g *models.KnowledgeGraph) string {
	counts := make(map[string]int)
	labels := make(map[string]string, len(g.Nodes))
	for _, n := range g.Nodes {
		counts[n.Type]++
		labels[n.ID] = n.Label
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)

	var b strings.Builder
	fmt.Fprintf(&b, "%d nodes, %d relationships\n", len(g.Nodes), len(g.Relationships))
	for _, t := range types {
		fmt.Fprintf(&b, "  %s: %d\n", t, counts[t])
	}
	for _, e := range g.Relationships {
		fmt.Fprintf(&b, "%s -[%s]-> %s\n", nodeLabel(labels, e.Source), e.Type, nodeLabel(labels, e.Target))
	}
	return b.String()
}

func nodeLabel(labels map[string]string, id string) string {
	if l := labels[id]; l != "" {
		return l
	}
	return id
}

func newPrefsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or update the user's preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prefs, err := a.sess.Preferences(cmd.Context())
			if err != nil {
				return a.report(err)
			}
			return a.emitPrefs(prefs)
		},
	}

	set := &cobra.Command{
		Use:   "set key=value...",
		Short: "Merge key=value pairs into the preferences",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			prefs, err := a.sess.Preferences(ctx)
			if err != nil {
				return a.report(err)
			}
			if prefs == nil {
				prefs = models.Preferences{}
			}
			for _, arg := range args {
				key, value, ok := strings.Cut(arg, "=")
				if !ok || strings.TrimSpace(key) == "" {
					return fmt.Errorf("invalid preference %q: want key=value", arg)
				}
				prefs[strings.TrimSpace(key)] = prefValue(value)
			}
			if err := a.sess.UpdatePreferences(ctx, prefs); err != nil {
				return a.report(err)
			}
			a.printer.Success("preferences updated")
			return a.emitPrefs(prefs)
		},
	}
	cmd.AddCommand(set)
	return cmd
}

// prefValue keeps JSON literals (numbers, booleans, arrays) typed and
// treats anything else as a string.
func prefValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err == nil {
		return v
	}
	return s
}

func (a *app) emitPrefs(prefs models.Preferences) error {
	return a.emit(prefs, func() (string, error) {
		if len(prefs) == 0 {
			return "no preferences", nil
		}
		keys := make([]string, 0, len(prefs))
		for k := range prefs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var b strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&b, "%s = %v\n", k, prefs[k])
		}
		return b.String(), nil
	})
}
