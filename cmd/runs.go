// SPDX-License-Identifier: AGPL-3.0-or-later
package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sasrun-org/sasrun/internal/journal"
	"github.com/spf13/cobra"
)

func NewRunsCmd() *cobra.Command {
	var (
		jsonOut bool
		limit   int
	)
	c := &cobra.Command{
		Use:   "runs",
		Short: "List recorded task runs, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, err := journal.Open(ctx, journal.Options{})
			if err != nil {
				return err
			}
			defer db.Close()

			runs, err := journal.New(db, 0).RecentRuns(ctx, limit)
			if err != nil {
				return err
			}

			if jsonOut {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(runs)
			}

			if len(runs) == 0 {
				fmt.Println("(no recorded runs)")
				return nil
			}
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RUN\tTASK\tEXIT\tDURATION\tSTARTED")
			for _, r := range runs {
				fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
					r.RunID, r.Task, r.ExitCode, r.Duration, r.StartedAt.Format("2006-01-02 15:04:05"))
			}
			return tw.Flush()
		},
	}
	c.Flags().BoolVar(&jsonOut, "json", false, "Output runs as JSON")
	c.Flags().IntVar(&limit, "limit", 20, "Maximum number of runs to list")
	return c
}
