// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package main

import (
	"github.com/spf13/cobra"

	"github.com/tomtom215/cadence/internal/models"
	"github.com/tomtom215/cadence/internal/strategy"
)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		intent       models.Intent
		contextLines []string
		contextFile  string
	)
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate lyrics from a theme, context lines or a full song brief",
		Long: `Generate lyrics. The options decide which request is sent:

  --context or --context-file   continue from the given lines
  --style or --idea             write a full song
  otherwise                     write by theme

Custom values (--theme-custom, --style-custom, --custom-length) override
their presets.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			intent.UseCustomTheme = flags.Changed("theme-custom")
			intent.UseCustomStyle = flags.Changed("style-custom")
			intent.UseEmotion = flags.Changed("emotion")
			intent.UseCustomLength = flags.Changed("custom-length")

			if contextFile != "" {
				text, err := a.readText(nil, contextFile)
				if err != nil {
					return err
				}
				contextLines = append(contextLines, strategy.SplitContext(text)...)
			}
			intent.ContextLines = contextLines
			intent.UseContext = len(contextLines) > 0

			gen, err := a.sess.Generate(cmd.Context(), intent)
			if err != nil {
				return a.report(err)
			}
			footer := a.printer.Dim("strategy: " + string(gen.Strategy))
			return a.finish(a.emit(gen, func() (string, error) {
				text, err := a.renderer.Generation(gen.Result)
				if err != nil {
					return "", err
				}
				return text + "\n" + footer, nil
			}))
		},
	}
	f := cmd.Flags()
	f.StringVar(&intent.Theme, "theme", "", "preset theme")
	f.StringVar(&intent.ThemeCustom, "theme-custom", "", "custom theme (overrides --theme)")
	f.StringVar(&intent.Style, "style", "", "preset style")
	f.StringVar(&intent.StyleCustom, "style-custom", "", "custom style (overrides --style)")
	f.StringVar(&intent.Emotion, "emotion", "", "emotion to convey")
	f.StringArrayVar(&contextLines, "context", nil, "context line to continue from (repeatable)")
	f.StringVar(&contextFile, "context-file", "", "read context lines from a file (- for stdin)")
	f.IntVar(&intent.Length, "length", 0, "preset length in lines")
	f.IntVar(&intent.CustomLength, "custom-length", 0, "custom length in lines (overrides --length)")
	f.StringVar(&intent.UserIdea, "idea", "", "free-form idea for the song")
	return cmd
}
