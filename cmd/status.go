// SPDX-License-Identifier: AGPL-3.0-or-later
package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sasrun-org/sasrun/internal/journal"
	"github.com/sasrun-org/sasrun/internal/sasenv"
	"github.com/spf13/cobra"
)

func NewStatusCmd() *cobra.Command {
	var jsonOut bool
	c := &cobra.Command{
		Use:   "status",
		Short: "Report the SAS environment and journal storage state",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			env, err := sasenv.Load()
			if err != nil {
				return err
			}

			searchPath, pathErr := env.SearchPath()

			db, err := journal.Open(ctx, journal.Options{})
			if err != nil {
				return err
			}
			defer db.Close()

			stats, err := journal.CollectStorageStats(ctx, db)
			if err != nil {
				return err
			}

			if jsonOut {
				report := map[string]interface{}{
					"verbosity":   env.Verbosity,
					"search_path": searchPath,
					"journal":     stats,
				}
				if pathErr != nil {
					report["search_path_error"] = pathErr.Error()
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(report)
			}

			if pathErr != nil {
				fmt.Printf("SAS_PATH:    (unset) %v\n", pathErr)
			} else {
				fmt.Printf("SAS_PATH:    %v\n", searchPath)
			}
			fmt.Printf("verbosity:   %d\n", env.Verbosity)
			fmt.Printf("journal:     %s (%s)\n", stats.Path, stats.Driver)
			fmt.Printf("runs:        %d recorded, %d events\n", stats.RunCount, stats.EventCount)
			fmt.Printf("event bytes: %d of %d", stats.EventBytes, stats.EventMaxBytes)
			if stats.EvictionActive {
				fmt.Printf(" (eviction active)")
			}
			fmt.Println()
			return nil
		},
	}
	c.Flags().BoolVar(&jsonOut, "json", false, "Output the status report as JSON")
	return c
}
