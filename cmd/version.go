// SPDX-License-Identifier: AGPL-3.0-or-later
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the sasrun version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("sasrun %s\n", buildVersion)
		},
	}
}
