// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - Past questions from the service.
//
// Command: history
// Short:   Show recent questions, newest first
//
// Flags:
//   -n, --limit N   Number of items (default: history.limit from config)
//   --json          Output in JSON format

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/jeranaias/docchat-tui/internal/history"
	"github.com/jeranaias/docchat-tui/internal/service"
)

func newHistoryCommand(st *state) *cobra.Command {
	var limit int
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent questions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return NewValidationError("limit", fmt.Sprint(limit), "must be positive", "docchat history --limit 10")
			}
			return runHistory(cmd.Context(), st, limit, jsonOut, cmd.OutOrStdout())
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "number of items (default from config)")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	return cmd
}

func runHistory(ctx context.Context, st *state, limit int, jsonOut bool, out io.Writer) error {
	if limit == 0 {
		limit = st.cfg.History.Limit
	}
	panel := history.NewPanel(service.NewClientWithConfig(st.cfg.ClientConfig()), limit)
	if err := panel.Refresh(ctx); err != nil {
		if jsonOut {
			_ = NewJSONErrorResponse("history", HistoryData{Items: []service.HistoryItem{}}, err).Write(out)
			return &displayedError{err: err}
		}
		return err
	}

	items := panel.Items()
	if jsonOut {
		if items == nil {
			items = []service.HistoryItem{}
		}
		return NewJSONResponse("history", HistoryData{Items: items}).Write(out)
	}

	if len(items) == 0 {
		fmt.Fprintln(out, DimStyle.Render("No history yet."))
		return nil
	}
	for i, item := range items {
		fmt.Fprintf(out, "%3d. %s\n", i+1, history.Summary(item))
		if item.Intent != "" {
			fmt.Fprintf(out, "     %s\n", DimStyle.Render("intent: "+item.Intent))
		}
	}
	return nil
}
