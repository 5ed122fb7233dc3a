// SPDX-License-Identifier: AGPL-3.0-or-later
package dispatcher

import (
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/sasrun-org/sasrun/internal/types"
)

// BuildArgv renders the resolved argument map as id=value argv tokens in
// the supplied order (normally the parameter file's document order).
// Surrounding quotes are stripped from supplied values before rendering;
// they are a shell artefact, not part of the value.
func BuildArgv(args types.ResolvedArgumentMap, order []string) []string {
	argv := make([]string, 0, len(order))
	for _, id := range order {
		v, ok := args[id]
		if !ok {
			continue
		}
		argv = append(argv, id+"="+cleanValue(v.Value))
	}
	return argv
}

// CommandString renders the full command line for display and logging,
// quoting values that need it.
func CommandString(task string, argv []string, optionString string) string {
	parts := make([]string, 0, len(argv)+2)
	parts = append(parts, task)
	if optionString != "" {
		parts = append(parts, optionString)
	}
	parts = append(parts, shellquote.Join(argv...))
	return strings.Join(parts, " ")
}

func cleanValue(v string) string {
	if strings.HasPrefix(v, `"`) || strings.HasSuffix(v, `"`) {
		v = strings.ReplaceAll(v, `"`, "")
	}
	if strings.HasPrefix(v, "'") || strings.HasSuffix(v, "'") {
		v = strings.ReplaceAll(v, "'", "")
	}
	return v
}
