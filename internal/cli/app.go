// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// app.go - Wiring of the chat collaborators shared by tui, ask and repl.

package cli

import (
	"context"
	"fmt"

	"github.com/jeranaias/docchat-tui/internal/catalog"
	"github.com/jeranaias/docchat-tui/internal/commands"
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/export"
	"github.com/jeranaias/docchat-tui/internal/history"
	"github.com/jeranaias/docchat-tui/internal/markup"
	"github.com/jeranaias/docchat-tui/internal/service"
	"github.com/jeranaias/docchat-tui/internal/submit"
	"github.com/jeranaias/docchat-tui/internal/transcript"
)

// app holds one chat session: the service client, the transcript and the
// machine driving submissions.
type app struct {
	cfg        *config.Config
	client     *service.Client
	composer   *transcript.Composer
	catalog    *catalog.Catalog
	history    *history.Panel
	session    *submit.Session
	machine    *submit.Machine
	registry   *commands.Registry
	exportOpts *export.Options
}

// newApp wires the collaborators for cfg. The composer starts with sink;
// surfaces that attach later call composer.SetSink.
func newApp(cfg *config.Config, sink transcript.RenderSink) (*app, error) {
	sanitizer, err := markup.NewSanitizer(markup.DefaultAllowList)
	if err != nil {
		return nil, fmt.Errorf("sanitizer: %w", err)
	}

	client := service.NewClientWithConfig(cfg.ClientConfig())
	composer := transcript.NewComposer(sanitizer, markup.NewDirectiveExpander(cfg.ImageRoot()), sink)
	cat := catalog.New(client)

	a := &app{
		cfg:        cfg,
		client:     client,
		composer:   composer,
		catalog:    cat,
		history:    history.NewPanel(client, cfg.History.Limit),
		session:    submit.NewSession(cfg.Query.Mode),
		machine:    submit.NewMachine(composer, client, client, cat, cfg.SubmitConfig()),
		registry:   commands.NewRegistry(),
		exportOpts: exportOptions(cfg),
	}
	return a, nil
}

// env is the command environment for slash commands.
func (a *app) env(ctx context.Context) *commands.Env {
	return &commands.Env{
		Ctx:        ctx,
		Session:    a.session,
		Catalog:    a.catalog,
		History:    a.history,
		Composer:   a.composer,
		Health:     a.client,
		ExportOpts: a.exportOpts,
		Registry:   a.registry,
	}
}

func exportOptions(cfg *config.Config) *export.Options {
	opts := export.DefaultOptions()
	opts.IncludeTimestamps = cfg.UI.ShowTimestamps
	if cfg.UI.Theme == "light" || cfg.UI.Theme == "dark" {
		opts.Theme = cfg.UI.Theme
	}
	return opts
}
