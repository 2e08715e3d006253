// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// tui.go - The full-screen chat interface (default command).
//
// Command: tui
// Short:   Open the chat TUI
//
// The config file is watched while the TUI runs; query mode and top_k
// changes apply to the next question.

package cli

import (
	"context"
	"errors"
	"io"
	"log"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/transcript"
	"github.com/jeranaias/docchat-tui/internal/ui/chat"
	"github.com/jeranaias/docchat-tui/internal/ui/render"
	"github.com/jeranaias/docchat-tui/internal/ui/styles"
)

func newTUICommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the chat TUI (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), st)
		},
	}
}

func runTUI(ctx context.Context, st *state) error {
	if err := RequiresTTY("open the chat TUI"); err != nil {
		return err
	}
	cfg := st.cfg

	// The alt screen owns stdout; logs go to a file or nowhere.
	if cfg.Log.Debug || st.verbose {
		f, err := tea.LogToFile(cfg.LogFile(), "docchat")
		if err != nil {
			return WrapError(err, "open log file")
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	a, err := newApp(cfg, transcript.Discard)
	if err != nil {
		return err
	}

	theme := styles.NewTheme(cfg.UI.Theme)
	sink := chat.NewProgramSink()
	model := chat.New(chat.Deps{
		Ctx:        ctx,
		Composer:   a.composer,
		Machine:    a.machine,
		Session:    a.session,
		Catalog:    a.catalog,
		History:    a.history,
		Health:     a.client,
		Registry:   a.registry,
		Sink:       sink,
		Theme:      theme,
		Render:     render.Options{Width: DefaultWidth, WordWrap: cfg.UI.WordWrap, ShowTimestamps: cfg.UI.ShowTimestamps},
		ExportOpts: a.exportOpts,
		Title:      "docchat",
		Subtitle:   a.client.BaseURL(),
	})

	p := tea.NewProgram(model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)
	sink.Attach(p)

	if path, err := st.activeConfigPath(); err == nil {
		w, err := config.Watch(path, config.DefaultDebounce, func(cfg *config.Config, err error) {
			p.Send(chat.ConfigReloadedMsg{Config: cfg, Err: err})
		})
		if err != nil {
			log.Printf("CONFIG | watch_disabled path=%s err=%v", path, err)
		} else {
			defer w.Close()
		}
	}

	log.Printf("TUI | start url=%s mode=%s", a.client.BaseURL(), a.session.Mode())
	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
