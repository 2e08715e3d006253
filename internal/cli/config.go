// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - Config command implementation.
//
// Command: config [subcommand]
// Short:   View and modify configuration
//
// Subcommands:
//   show (default)      Display the effective configuration
//   init [--force]      Write a config file with the defaults
//   path                Show the configuration file path
//   get <key>           Print one value
//   set <key> <value>   Change one value in the config file
//
// Examples:
//   docchat config show --json
//   docchat config set query.top_k 8
//   docchat config set service.base_url http://docs.internal:8000
//   docchat config get query.mode
//
// show and get include environment overrides; set edits only the file.

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jeranaias/docchat-tui/internal/config"
)

func newConfigCommand(st *state) *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and modify configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(st, jsonOut, cmd.OutOrStdout())
		},
	}
	cmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")

	show := &cobra.Command{
		Use:   "show",
		Short: "Display the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return showConfig(st, jsonOut, cmd.OutOrStdout())
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:         "init",
		Short:       "Write a config file with the defaults",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return initConfig(st, force, cmd.OutOrStdout())
		},
	}
	initCmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	path := &cobra.Command{
		Use:         "path",
		Short:       "Show the configuration file path",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := st.activeConfigPath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}

	get := &cobra.Command{
		Use:       "get <key>",
		Short:     "Print one configuration value",
		Args:      cobra.ExactArgs(1),
		ValidArgs: config.GetAllKeys(),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := st.cfg.Get(args[0])
			if err != nil {
				return unknownKey(args[0], err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		},
	}

	set := &cobra.Command{
		Use:         "set <key> <value>",
		Short:       "Change one value in the config file",
		Args:        cobra.ExactArgs(2),
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return setConfig(st, args[0], args[1], cmd.OutOrStdout())
		},
	}

	cmd.AddCommand(show, initCmd, path, get, set)
	return cmd
}

func showConfig(st *state, jsonOut bool, out io.Writer) error {
	if jsonOut {
		return NewJSONResponse("config", st.cfg).Write(out)
	}
	if p, err := st.activeConfigPath(); err == nil {
		fmt.Fprintln(out, DimStyle.Render("# "+p))
	}
	fmt.Fprint(out, st.cfg.String())
	return nil
}

func initConfig(st *state, force bool, out io.Writer) error {
	path := st.configPath
	if path == "" {
		p, err := config.ConfigPathTOML()
		if err != nil {
			return err
		}
		path = p
	}
	if _, err := os.Stat(path); err == nil && !force {
		return NewCommandError("config", "init", path+" already exists (use --force to overwrite)", nil)
	}
	if err := saveConfigFile(config.Default(), path); err != nil {
		return NewCommandError("config", "init", "could not write "+path, err)
	}
	fmt.Fprintf(out, "%s %s\n", SuccessStyle.Render("Wrote"), path)
	return nil
}

func setConfig(st *state, key, value string, out io.Writer) error {
	path, err := st.activeConfigPath()
	if err != nil {
		return err
	}
	cfg, err := loadConfigFile(path)
	if err != nil {
		return err
	}
	if _, err := cfg.Get(key); err != nil {
		return unknownKey(key, err)
	}
	if err := cfg.Set(key, value); err != nil {
		return NewValidationError(key, value, err.Error(), "")
	}
	if err := cfg.Migrate(); err != nil {
		return err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := saveConfigFile(cfg, path); err != nil {
		return NewCommandError("config", "set", "could not write "+path, err)
	}
	v, _ := cfg.Get(key)
	fmt.Fprintf(out, "%s %s = %v\n", SuccessStyle.Render("Set"), key, v)
	return nil
}

// loadConfigFile decodes path over the defaults without environment
// overrides, so set never persists them. A missing file yields defaults.
func loadConfigFile(path string) (*config.Config, error) {
	cfg := config.Default()
	if _, err := os.Stat(path); err != nil {
		return cfg, nil
	}
	load := config.LoadTOML
	if isJSONPath(path) {
		load = config.LoadJSON
	}
	if err := load(cfg, path); err != nil {
		return nil, err
	}
	return cfg, nil
}

func saveConfigFile(cfg *config.Config, path string) error {
	if isJSONPath(path) {
		return config.SaveJSON(cfg, path)
	}
	return config.SaveTOML(cfg, path)
}

func isJSONPath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func unknownKey(key string, err error) error {
	return NewValidationError("key", key, err.Error(), "one of: "+strings.Join(config.GetAllKeys(), ", "))
}
