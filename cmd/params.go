// SPDX-License-Identifier: AGPL-3.0-or-later
package cmd

import (
	"encoding/json"
	"os"

	"github.com/sasrun-org/sasrun/internal/paramfile"
	"github.com/sasrun-org/sasrun/internal/sasenv"
	"github.com/spf13/cobra"
)

func NewParamsCmd() *cobra.Command {
	var jsonOut bool
	c := &cobra.Command{
		Use:   "params <task>",
		Short: "Show the parameter table for a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := sasenv.Load()
			if err != nil {
				return err
			}
			searchPath, err := env.SearchPath()
			if err != nil {
				return err
			}
			schema, err := paramfile.Read(searchPath, args[0])
			if err != nil {
				return err
			}

			if jsonOut {
				specs := make([]any, 0, len(schema.Order))
				for _, id := range schema.Order {
					spec := schema.Registry[id]
					specs = append(specs, map[string]any{
						"id":          spec.ID,
						"type":        string(spec.Type),
						"mandatory":   spec.Mandatory,
						"list":        spec.List,
						"default":     spec.Default,
						"description": spec.Description,
					})
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(specs)
			}

			schema.WriteTable(os.Stdout)
			return nil
		},
	}
	c.Flags().BoolVar(&jsonOut, "json", false, "Output parameters as JSON")
	return c
}
