// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	var jsonOut bool
	cmd := &cobra.Command{
		Use:         "version",
		Short:       "Print version information",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{skipConfig: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			data := VersionData{
				Version:   Version,
				GitCommit: GitCommit,
				BuildDate: BuildDate,
				GoVersion: runtime.Version(),
				Platform:  runtime.GOOS + "/" + runtime.GOARCH,
			}
			out := cmd.OutOrStdout()
			if jsonOut {
				return NewJSONResponse("version", data).Write(out)
			}
			fmt.Fprintf(out, "docchat %s\n", data.Version)
			fmt.Fprintln(out, RenderField("Commit", data.GitCommit))
			fmt.Fprintln(out, RenderField("Built", data.BuildDate))
			fmt.Fprintln(out, RenderField("Go", data.GoVersion))
			fmt.Fprintln(out, RenderField("Platform", data.Platform))
			return nil
		},
	}
	cmd.Flags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	return cmd
}
