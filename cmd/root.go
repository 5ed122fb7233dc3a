// SPDX-License-Identifier: AGPL-3.0-or-later
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// buildVersion is stamped via -ldflags at release time.
var buildVersion = "dev"

var rootCmd = &cobra.Command{
	Use:   "sasrun",
	Short: "Run SAS tasks with parameter-file driven argument resolution",
}

func Execute() {
	rootCmd.AddCommand(NewRunCmd())
	rootCmd.AddCommand(NewParamsCmd())
	rootCmd.AddCommand(NewRunsCmd())
	rootCmd.AddCommand(NewStatusCmd())
	rootCmd.AddCommand(NewVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// configureLogging maps the task verbosity scale (0-10) onto slog levels.
func configureLogging(verbosity int) {
	level := slog.LevelWarn
	switch {
	case verbosity >= 8:
		level = slog.LevelDebug
	case verbosity >= 6:
		level = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
