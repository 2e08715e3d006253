// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// docs.go - Document listing and service check.
//
// Command: docs
// Short:   List ingested documents
//
// Examples:
//   docchat docs              Table of document ids and names
//   docchat docs --check      Also probe /health
//   docchat docs --json       Machine-readable listing

package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/jeranaias/docchat-tui/internal/catalog"
	"github.com/jeranaias/docchat-tui/internal/service"
	"github.com/jeranaias/docchat-tui/internal/util"
)

func newDocsCommand(st *state) *cobra.Command {
	var check, jsonOut bool
	cmd := &cobra.Command{
		Use:     "docs",
		Aliases: []string{"documents"},
		Short:   "List ingested documents",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDocs(cmd.Context(), st, check, jsonOut, cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&check, "check", false, "also check the service health")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	return cmd
}

func runDocs(ctx context.Context, st *state, check, jsonOut bool, out io.Writer) error {
	client := service.NewClientWithConfig(st.cfg.ClientConfig())
	cat := catalog.New(client)
	var data DocsData

	fail := func(err error) error {
		if jsonOut {
			_ = NewJSONErrorResponse("docs", data, err).Write(out)
			return &displayedError{err: err}
		}
		return err
	}

	if check {
		health, err := client.Health(ctx)
		if err != nil {
			return fail(WrapError(err, "health check"))
		}
		data.Health = health
	}
	if err := cat.Refresh(ctx); err != nil {
		return fail(err)
	}
	data.Documents = cat.Documents()
	if data.Documents == nil {
		data.Documents = []service.Document{}
	}

	if jsonOut {
		return NewJSONResponse("docs", data).Write(out)
	}

	if data.Health != nil {
		fmt.Fprintln(out, RenderField("Service", RenderStatus(data.Health.Status)+" "+data.Health.Service+" "+data.Health.Version))
		fmt.Fprintln(out, RenderField("URL", client.BaseURL()))
		fmt.Fprintln(out)
	}
	if len(data.Documents) == 0 {
		fmt.Fprintln(out, DimStyle.Render("No documents ingested yet. Upload one with: docchat ask --attach FILE"))
		return nil
	}
	fmt.Fprintln(out, documentTable(data.Documents, widthOf(out)))
	fmt.Fprintln(out, DimStyle.Render(fmt.Sprintf("%d document(s)", len(data.Documents))))
	return nil
}

// documentTable renders documents as an id/name grid no wider than width.
func documentTable(docs []service.Document, width int) string {
	rows := make([][]string, 0, len(docs))
	for _, d := range docs {
		name := d.Name
		if name == "" {
			name = "-"
		}
		rows = append(rows, []string{d.ID, util.TruncateWidth(name, width/2)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(SeparatorStyle).
		Headers("ID", "NAME").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return SectionStyle.Padding(0, 1)
			}
			return ValueStyle.Padding(0, 1)
		})
	if lipgloss.Width(t.Render()) > width {
		t = t.Width(width)
	}
	return t.Render()
}
