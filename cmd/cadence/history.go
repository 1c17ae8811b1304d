// Cadence - Lyric Analysis and Generation Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cadence

package main

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tomtom215/cadence/internal/history"
	"github.com/tomtom215/cadence/internal/models"
	"github.com/tomtom215/cadence/internal/visualize"
)

func newHistoryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "history",
		Aliases: []string{"hist"},
		Short:   "Browse saved analyses, generations and recommendations",
	}
	cmd.AddCommand(
		newHistoryListCmd(a),
		newHistoryShowCmd(a),
		newHistoryDeleteCmd(a),
	)
	return cmd
}

func newHistoryListCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "list [analysis|generation|recommendation]",
		Short: "List saved records, newest first",
		Long: `List saved records of one kind. Without a kind all three lists are
loaded concurrently.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			kinds := models.Kinds()
			if len(args) == 1 {
				kind, err := models.ParseKind(args[0])
				if err != nil {
					return err
				}
				kinds = []models.Kind{kind}
				if _, err := a.sess.RefreshHistory(ctx, kind, limit); err != nil {
					return a.report(err)
				}
			} else if err := a.sess.RefreshAll(ctx, limit); err != nil {
				return a.report(err)
			}

			store := a.sess.Store()
			lists := make([]history.ListSnapshot, 0, len(kinds))
			for _, kind := range kinds {
				lists = append(lists, store.List(kind))
			}
			if a.jsonOut {
				return a.emit(lists, nil)
			}
			for i, list := range lists {
				if i > 0 {
					fmt.Fprintln(a.out)
				}
				if err := a.printList(list); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "records per list (default from config)")
	return cmd
}

func (a *app) printList(list history.ListSnapshot) error {
	a.printer.Header(fmt.Sprintf("%s (%d)", list.Kind, len(list.Records)))
	if list.State == history.StateFailed {
		a.printer.Warning("%s", list.Error)
		return nil
	}
	rows := visualize.Rows(list.Records)
	if len(rows) == 0 {
		fmt.Fprintln(a.out, a.printer.Dim("no records"))
		return nil
	}
	table := make([][]string, 0, len(rows))
	for _, r := range rows {
		table = append(table, []string{
			strconv.FormatInt(r.ID, 10),
			r.Date,
			r.Title,
			r.Tag,
			strings.Join(r.Lines, " / "),
		})
	}
	return a.printer.Table([]string{"id", "date", "title", "tag", "summary"}, table)
}

func newHistoryShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <kind> <id>",
		Short: "Show one saved record in full",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := parseRecordArgs(args)
			if err != nil {
				return err
			}
			detail, err := a.sess.OpenDetail(cmd.Context(), kind, id)
			if err != nil {
				return a.report(err)
			}
			defer a.sess.CloseDetail()
			for _, derr := range detail.DecodeErrors() {
				a.printer.Warning("field %s could not be decoded", derr.Field)
			}
			return a.emit(detail, func() (string, error) { return a.renderer.Detail(detail) })
		},
	}
}

func newHistoryDeleteCmd(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "delete <kind> <id>",
		Short: "Delete one saved record",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := parseRecordArgs(args)
			if err != nil {
				return err
			}
			if !yes {
				ok, err := a.confirm(fmt.Sprintf("Delete %s record %d?", kind, id))
				if err != nil {
					return err
				}
				if !ok {
					a.printer.Info("cancelled")
					return nil
				}
			}
			if err := a.sess.DeleteHistory(cmd.Context(), kind, id); err != nil {
				return a.report(err)
			}
			return a.report(nil)
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// confirm asks a yes/no question on stdin. Anything but y or yes is no.
func (a *app) confirm(question string) (bool, error) {
	fmt.Fprintf(a.errOut, "%s [y/N] ", question)
	if a.in == nil {
		return false, nil
	}
	sc := bufio.NewScanner(a.in)
	if !sc.Scan() {
		return false, sc.Err()
	}
	answer := strings.ToLower(strings.TrimSpace(sc.Text()))
	return answer == "y" || answer == "yes", nil
}

func parseRecordArgs(args []string) (models.Kind, int64, error) {
	kind, err := models.ParseKind(args[0])
	if err != nil {
		return "", 0, err
	}
	id, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || id <= 0 {
		return "", 0, fmt.Errorf("invalid record id %q", args[1])
	}
	return kind, id, nil
}
