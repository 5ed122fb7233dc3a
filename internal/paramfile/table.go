// SPDX-License-Identifier: AGPL-3.0-or-later
package paramfile

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// WriteTable prints the full parameter table for the schema, one row per
// declared parameter in document order.
func (s *Schema) WriteTable(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tMANDATORY\tTYPE\tDEFAULT\tDESCRIPTION")
	for _, id := range s.Order {
		spec := s.Registry[id]
		mandatory := "no"
		if spec.Mandatory {
			mandatory = "yes"
		}
		desc := spec.Description
		if len(desc) > 72 {
			desc = desc[:69] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", spec.ID, mandatory, spec.Type, spec.Default, desc)
	}
	tw.Flush()
}
