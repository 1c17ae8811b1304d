// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newConvertCmd(a *app) *cobra.Command {
	var file, target string
	cmd := &cobra.Command{
		Use:   "convert [lyrics...]",
		Short: "Rewrite lyrics in another style",
		RunE: func(cmd *cobra.Command, args []string) error {
			lyrics, err := a.readText(args, file)
			if err != nil {
				return err
			}
			res, err := a.sess.ConvertStyle(cmd.Context(), lyrics, target)
			if err != nil {
				return a.report(err)
			}
			return a.finish(a.emit(res, func() (string, error) {
				return fmt.Sprintf("【%s】\n%s", res.TargetStyle, res.Converted), nil
			}))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read lyrics from a file (- for stdin)")
	cmd.Flags().StringVar(&target, "to", "", "target style (default from config)")
	return cmd
}

func newContinueCmd(a *app) *cobra.Command {
	var file, feedback string
	cmd := &cobra.Command{
		Use:   "continue [lyrics...]",
		Short: "Revise earlier lyrics with feedback",
		RunE: func(cmd *cobra.Command, args []string) error {
			lyrics, err := a.readText(args, file)
			if err != nil {
				return err
			}
			res, err := a.sess.Continue(cmd.Context(), lyrics, feedback)
			if err != nil {
				return a.report(err)
			}
			return a.finish(a.emit(res, func() (string, error) { return a.renderer.Generation(res) }))
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "read the previous lyrics from a file (- for stdin)")
	cmd.Flags().StringVar(&feedback, "feedback", "", "what to change")
	return cmd
}

func newRhymeCmd(a *app) *cobra.Command {
	var rhyme string
	cmd := &cobra.Command{
		Use:   "optimize-rhyme <line>",
		Short: "Suggest rewrites of a line that end on a rhyme",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.sess.OptimizeRhyme(cmd.Context(), strings.Join(args, " "), rhyme)
			if err != nil {
				return a.report(err)
			}
			return a.finish(a.emit(res, func() (string, error) {
				var b strings.Builder
				fmt.Fprintf(&b, "%s → %s\n", res.Original, res.TargetRhyme)
				for i, s := range res.Suggestions {
					fmt.Fprintf(&b, "  %d. %s\n", i+1, s)
				}
				return b.String(), nil
			}))
		},
	}
	cmd.Flags().StringVar(&rhyme, "rhyme", "", "target rhyme")
	return cmd
}
