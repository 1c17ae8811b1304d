// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cadence/internal/models"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var (
		file  string
		facet string
	)
	cmd := &cobra.Command{
		Use:   "analyze [lyrics...]",
		Short: "Analyze sentiment, themes and rhythm of lyrics",
		Long: `Analyze lyrics read from the arguments, --file or stdin.

Without --facet the full analysis runs and its charts are printed. A facet
runs only the sentiment, theme or rhythm analysis.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			lyrics, err := a.readText(args, file)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			var res *models.AnalysisResult
			switch facet {
			case "":
				res, err = a.sess.Analyze(ctx, lyrics)
			case "sentiment":
				var s *models.SentimentResult
				if s, err = a.sess.AnalyzeSentiment(ctx, lyrics); err == nil {
					res = &models.AnalysisResult{Sentiment: s}
				}
			case "theme":
				var t *models.ThemeResult
				if t, err = a.sess.AnalyzeTheme(ctx, lyrics); err == nil {
					res = &models.AnalysisResult{Theme: t}
				}
			case "rhythm":
				var r *models.RhythmResult
				if r, err = a.sess.AnalyzeRhythm(ctx, lyrics); err == nil {
					res = &models.AnalysisResult{Rhythm: r}
				}
			default:
				return fmt.Errorf("invalid facet %q: must be sentiment, theme or rhythm", facet)
			}
			if err != nil {
				return a.report(err)
			}
			return a.finish(a.emit(res, func() (string, error) { return a.renderer.Analysis(res) }))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read lyrics from a file (- for stdin)")
	cmd.Flags().StringVar(&facet, "facet", "", "run a single analysis: sentiment, theme or rhythm")
	return cmd
}
