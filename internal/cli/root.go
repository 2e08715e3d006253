// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// root.go - The docchat command tree.
//
// Command: docchat [command]
//
// Examples:
//   docchat                               Open the chat TUI
//   docchat ask "What was the 2024 rate?" Ask one question and print the answer
//   docchat repl                          Line-mode chat for plain terminals
//   docchat docs --check                  List documents and probe the service
//   docchat history --limit 10            Show recent questions
//   docchat config show                   Print the effective configuration
//
// Global Flags:
//   -c, --config FILE   Config file (default ~/.docchat/config.toml)
//   --url URL           Document service URL (overrides config and DOCCHAT_URL)
//   -v, --verbose       Log requests to stderr

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jeranaias/docchat-tui/internal/config"
)

// Build information, set with -ldflags at release time.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// skipConfig marks commands that must run even when the config file is broken.
const skipConfig = "docchat/skip-config"

// state is shared by every command in one invocation.
type state struct {
	configPath string
	url        string
	verbose    bool

	cfg *config.Config
}

// NewRootCommand builds the docchat command tree.
func NewRootCommand() *cobra.Command {
	st := &state{}

	root := &cobra.Command{
		Use:   "docchat",
		Short: "Chat with your documents from the terminal",
		Long: `docchat is a terminal client for a document question-answering service.

Ask questions about ingested documents, upload new ones, browse history and
expand the tables and sources that come back with each answer.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipConfig] == "true" {
				st.setupLogging(cmd.ErrOrStderr(), false)
				return nil
			}
			if err := st.loadConfig(cmd.ErrOrStderr()); err != nil {
				return err
			}
			st.setupLogging(cmd.ErrOrStderr(), st.cfg.Log.Debug)
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), st)
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetVersionTemplate("docchat {{.Version}}\n")

	root.PersistentFlags().StringVarP(&st.configPath, "config", "c", "", "config file (default ~/.docchat/config.toml)")
	root.PersistentFlags().StringVar(&st.url, "url", "", "document service URL")
	root.PersistentFlags().BoolVarP(&st.verbose, "verbose", "v", false, "log requests to stderr")

	root.AddCommand(
		newTUICommand(st),
		newAskCommand(st),
		newReplCommand(st),
		newDocsCommand(st),
		newHistoryCommand(st),
		newConfigCommand(st),
		newVersionCommand(),
	)
	return root
}

// Execute runs the command tree and exits with a code derived from the error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand()
	cmd, err := root.ExecuteContextC(ctx)
	if err != nil {
		var shown *displayedError
		if errors.As(err, &shown) {
			stop()
			os.Exit(GetExitCode(err))
		}
		jsonMode := false
		if cmd != nil {
			if f := cmd.Flags().Lookup("json"); f != nil {
				jsonMode = f.Value.String() == "true"
			}
		}
		if jsonMode {
			DisplayError(os.Stdout, err, true)
		} else {
			DisplayError(os.Stderr, err, false)
		}
		stop()
		os.Exit(GetExitCode(err))
	}
}

// =============================================================================
// SHARED SETUP
// =============================================================================

// loadConfig loads the config file named by --config, or the default one,
// and applies --url. A file that fails to decode falls back to defaults
// with a warning; a file that decodes but fails validation is an error.
func (st *state) loadConfig(stderr io.Writer) error {
	var (
		cfg *config.Config
		err error
	)
	if st.configPath != "" {
		cfg, err = config.LoadFromPath(st.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		if cfg == nil {
			return err
		}
		fmt.Fprintf(stderr, "%s %v (using defaults)\n", WarningStyle.Render("Warning:"), err)
	}

	if st.url != "" {
		cfg.Service.BaseURL = strings.TrimRight(strings.TrimSpace(st.url), "/")
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid --url: %w", err)
		}
	}

	config.SetGlobal(cfg)
	st.cfg = cfg
	return nil
}

// setupLogging sends the standard logger to stderr with --verbose or
// log.debug, and discards it otherwise. The TUI redirects it again.
func (st *state) setupLogging(stderr io.Writer, debug bool) {
	log.SetFlags(log.Ltime | log.Lmicroseconds)
	if st.verbose || debug {
		log.SetOutput(stderr)
		return
	}
	log.SetOutput(io.Discard)
}

// activeConfigPath is the file the watcher and config commands operate on.
func (st *state) activeConfigPath() (string, error) {
	if st.configPath != "" {
		return st.configPath, nil
	}
	return config.ActivePath()
}
