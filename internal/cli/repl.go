// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// repl.go - Line-mode chat for terminals where the TUI is unwanted.
//
// Command: repl
// Short:   Chat line by line with history and tab completion
//
// Every slash command of the TUI works here. /sources and /table print
// the answer again with the region toggled.

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/docchat-tui/internal/commands"
	"github.com/jeranaias/docchat-tui/internal/config"
	"github.com/jeranaias/docchat-tui/internal/submit"
)

const replPrompt = "docchat> "

func newReplCommand(st *state) *cobra.Command {
	var opts printOptions
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Chat line by line with history and tab completion",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := RequiresTTY("start the REPL"); err != nil {
				return err
			}
			r, err := newRepl(st.cfg, cmd.OutOrStdout(), cmd.ErrOrStderr(), opts)
			if err != nil {
				return err
			}
			return r.run(cmd.Context())
		},
	}
	cmd.Flags().BoolVarP(&opts.Sources, "sources", "s", false, "print citation lists expanded")
	cmd.Flags().BoolVarP(&opts.Tables, "tables", "t", false, "print every table expanded")
	return cmd
}

// =============================================================================
// REPL SESSION
// =============================================================================

// repl reads lines and hands them to the registry or the machine.
type repl struct {
	app     *app
	printer *printer
	out     io.Writer
	errOut  io.Writer
}

func newRepl(cfg *config.Config, out, errOut io.Writer, opts printOptions) (*repl, error) {
	pr := newPrinter(out, cfg, opts)
	a, err := newApp(cfg, pr)
	if err != nil {
		return nil, err
	}
	return &repl{app: a, printer: pr, out: out, errOut: errOut}, nil
}

func (r *repl) run(ctx context.Context) error {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)
	completer := commands.NewCompleter(r.app.registry)
	cat := r.app.catalog
	completer.DocumentsFn = func() []string { return commands.DocumentIDs(cat) }
	line.SetCompleter(completer.Lines)

	historyFile := replHistoryPath()
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		saveReplHistory(line, historyFile)
		line.Close()
	}()

	if err := r.app.catalog.Refresh(ctx); err != nil {
		fmt.Fprintf(r.errOut, "%s %v\n", WarningStyle.Render("[Warning]"), err)
	}
	fmt.Fprintf(r.out, "%s %s\n%s\n\n",
		TitleStyle.Render("docchat"),
		DimStyle.Render(r.app.client.BaseURL()),
		DimStyle.Render("Type a question, /help for commands, /quit to leave."))

	for {
		input, err := line.Prompt(replPrompt)
		if err != nil {
			// Ctrl+C, Ctrl+D and a closed stdin all end the session.
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(r.out)
				return nil
			}
			return err
		}
		if strings.TrimSpace(input) != "" {
			line.AppendHistory(input)
		}
		if r.handle(ctx, input) || ctx.Err() != nil {
			return nil
		}
	}
}

// handle runs one input line and reports whether the session should end.
func (r *repl) handle(ctx context.Context, input string) bool {
	input = strings.TrimSpace(input)
	switch {
	case input == "":
		return false
	case strings.EqualFold(input, "exit"), strings.EqualFold(input, "quit"):
		return true
	case commands.IsCommand(input):
		return r.command(ctx, input)
	}

	r.printer.expectEcho()
	if _, err := r.app.machine.Submit(ctx, r.app.session, input); err != nil {
		if errors.Is(err, submit.ErrBusy) {
			fmt.Fprintln(r.errOut, WarningStyle.Render("Still working on the previous question."))
			return false
		}
		fmt.Fprintf(r.errOut, "%s %v\n", ErrorStyle.Render("[Error]"), err)
	}
	return false
}

func (r *repl) command(ctx context.Context, input string) bool {
	res, err := r.app.registry.Execute(r.app.env(ctx), input)
	if err != nil {
		fmt.Fprintf(r.errOut, "%s %v\n", ErrorStyle.Render("[Error]"), err)
		return false
	}
	switch res.Action {
	case commands.ActionQuit:
		return true
	case commands.ActionShowHistory:
		fmt.Fprintln(r.out, res.Output)
		if len(r.app.history.Items()) > 0 {
			fmt.Fprintln(r.out, DimStyle.Render("Use /replay <n> to show one again."))
		}
		return false
	}
	if res.Output != "" {
		fmt.Fprintln(r.out, res.Output)
	}
	return false
}

// =============================================================================
// LINE HISTORY
// =============================================================================

func replHistoryPath() string {
	dir, err := config.ConfigDir()
	if err != nil {
		dir = os.TempDir()
	}
	return filepath.Join(dir, "repl_history")
}

// saveReplHistory writes the line history with owner-only permissions.
func saveReplHistory(line *liner.State, path string) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = line.WriteHistory(f)
}
