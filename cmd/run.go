// SPDX-License-Identifier: AGPL-3.0-or-later
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sasrun-org/sasrun/internal/events"
	"github.com/sasrun-org/sasrun/internal/journal"
	"github.com/sasrun-org/sasrun/internal/sasenv"
	"github.com/sasrun-org/sasrun/internal/task"
	"github.com/spf13/cobra"
)

func NewRunCmd() *cobra.Command {
	var (
		jsonOut   bool
		dryRun    bool
		noJournal bool
	)
	c := &cobra.Command{
		Use:   "run <task> [options] [param=value ...]",
		Short: "Resolve a task's arguments against its parameter file and execute it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := sasenv.Load()
			if err != nil {
				return err
			}
			configureLogging(env.Verbosity)

			ctx := cmd.Context()
			taskName := args[0]
			tokens := args[1:]

			var (
				sinks []events.Sink
				jrn   *journal.Journal
			)
			if jsonOut {
				sinks = append(sinks, events.NewEmitter(os.Stdout, true))
			}
			if !noJournal {
				db, err := journal.Open(ctx, journal.Options{})
				if err != nil {
					slog.Warn("run journal unavailable", slog.String("error", err.Error()))
				} else {
					defer db.Close()
					jrn = journal.New(db, 0)
					sinks = append(sinks, journal.NewEventSink(jrn))
				}
			}

			// With --json the event stream replaces the raw passthrough.
			var stdout io.Writer = os.Stdout
			if jsonOut {
				stdout = io.Discard
			}

			t := &task.Task{
				Name:         taskName,
				Args:         tokens,
				Env:          env,
				Emitter:      events.NewCompositeSink(sinks...),
				Journal:      jrn,
				Stdout:       stdout,
				DryRun:       dryRun,
				BuildVersion: buildVersion,
			}
			out, err := t.Run(ctx)
			if err != nil {
				return err
			}
			if dryRun && out.Result.Command != "" {
				fmt.Fprintln(os.Stdout, out.Result.Command)
			}
			return nil
		},
	}
	// Task options like -V or -c belong to the task invocation, not to
	// sasrun; stop cobra from eating them.
	c.Flags().SetInterspersed(false)
	c.Flags().BoolVar(&jsonOut, "json", false, "Emit run events as JSON instead of raw task output")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve and print the command without executing")
	c.Flags().BoolVar(&noJournal, "no-journal", false, "Skip recording the run in the journal")
	return c
}
