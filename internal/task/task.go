// SPDX-License-Identifier: AGPL-3.0-or-later

// Package task ties the pipeline together: read the task's parameter file,
// tokenize the raw arguments, resolve the final argument map and hand it to
// the dispatcher. Immediate-action options short-circuit before resolution.
package task

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/sasrun-org/sasrun/internal/dispatcher"
	"github.com/sasrun-org/sasrun/internal/events"
	"github.com/sasrun-org/sasrun/internal/journal"
	"github.com/sasrun-org/sasrun/internal/paramfile"
	"github.com/sasrun-org/sasrun/internal/resolver"
	"github.com/sasrun-org/sasrun/internal/sasenv"
	"github.com/sasrun-org/sasrun/internal/tokenizer"
	"github.com/sasrun-org/sasrun/internal/types"
)

const usageTemplate = `Usage: %[1]s [options] param0=value0 [param1=value1] ...

Options:
-a | --ccfpath <dir1>:<dir2>...   Sets SAS_CCFPATH to <dir1>:<dir2>...
-c | --noclobber                  Sets SAS_CLOBBER=0
-d | --dialog                     Launches the task GUI
-f | --ccffiles <f1> <f2> ...     CCF files
-h | --help                       Shows this message with the parameter table, and exits
-i | --ccf <cif>                  Sets SAS_CCF=<cif>
-m | --manpage                    Opens the task documentation
-o | --odf <sumfile>              Sets SAS_ODF to the ODF summary file
-p | --param                      Lists all task parameters with default values
-t | --trace                      Traces task execution
-V | --verbosity <level>          Sets verbosity level and SAS_VERBOSITY
-v | --version                    Shows task name and version, and exits
-w | --warning [code|n]           Sets the warning code

Parameters:
param0=value0                     A mandatory parameter. If not present, exits.
[param1=value1]                   An optional parameter, possibly with a default.
`

// Task is one invocation of an external task with raw argument tokens.
type Task struct {
	Name string
	Args []string

	Env     *sasenv.Env
	Emitter events.Sink
	Journal *journal.Journal
	Stdout  io.Writer
	DryRun  bool
	// BuildVersion is printed by -v when the external task cannot report
	// its own version.
	BuildVersion string

	logger *slog.Logger
}

// Outcome reports what one invocation did.
type Outcome struct {
	// Stopped is true when an immediate-action option was handled and no
	// resolution or dispatch took place.
	Stopped  bool
	Resolved types.ResolvedArgumentMap
	Result   dispatcher.Result
}

// Run executes the invocation end to end.
func (t *Task) Run(ctx context.Context) (Outcome, error) {
	var out Outcome

	t.logger = slog.Default().With(slog.String("task", t.Name))
	if t.Stdout == nil {
		t.Stdout = os.Stdout
	}

	tk, err := tokenizer.Tokenize(t.Name, t.Args, t.Env.Verbosity)
	if err != nil {
		return out, err
	}

	if tk.Immediate != tokenizer.ImmediateNone {
		out.Stopped = true
		return out, t.runImmediate(ctx, tk.Immediate)
	}

	searchPath, err := t.Env.SearchPath()
	if err != nil {
		return out, err
	}

	t.logger.Debug("reading parameter file")
	schema, err := paramfile.Read(searchPath, t.Name)
	if err != nil {
		return out, err
	}

	t.logger.Debug("resolving input arguments")
	resolved, err := resolver.Resolve(schema, tk.Params, tk.Order)
	if err != nil {
		return out, err
	}
	out.Resolved = resolved

	for _, id := range schema.Order {
		if v := resolved[id]; v.Origin == types.OriginImplicit {
			t.logger.Warn("no need to include parameter, value assumed",
				slog.String("parameter", id), slog.String("value", v.Value))
		}
	}

	result, err := dispatcher.Dispatch(ctx, t.Name, resolved, schema.Order, dispatcher.Config{
		EnvOptions:   tk.Env.Set,
		OptionString: tk.Env.Joined,
		Emitter:      t.Emitter,
		Journal:      t.Journal,
		StdoutWriter: t.Stdout,
		DryRun:       t.DryRun,
	})
	out.Result = result
	return out, err
}

// runImmediate performs the action for the first immediate option found.
// When more than one immediate option is supplied the first in token order
// wins; the rest are ignored.
func (t *Task) runImmediate(ctx context.Context, im tokenizer.Immediate) error {
	switch im {
	case tokenizer.ImmediateVersion:
		ver, err := dispatcher.Version(ctx, t.Name)
		if err != nil {
			ver = fmt.Sprintf("%s (sasrun %s)", t.Name, t.BuildVersion)
		}
		fmt.Fprintln(t.Stdout, ver)
		return nil
	case tokenizer.ImmediateHelp:
		fmt.Fprintf(t.Stdout, usageTemplate, t.Name)
		fmt.Fprintln(t.Stdout)
		return t.writeParamTable()
	case tokenizer.ImmediateParam:
		return t.writeParamTable()
	case tokenizer.ImmediateDialog:
		fmt.Fprintf(t.Stdout, "Launching %s GUI ...\n", t.Name)
		return dispatcher.RunHelper(ctx, t.Stdout, "sasdialog", t.Name)
	case tokenizer.ImmediateManpage:
		fmt.Fprintf(t.Stdout, "Opening documentation for %s ...\n", t.Name)
		return dispatcher.RunHelper(ctx, t.Stdout, "sashelp", "doc="+t.Name)
	default:
		return nil
	}
}

func (t *Task) writeParamTable() error {
	searchPath, err := t.Env.SearchPath()
	if err != nil {
		return err
	}
	schema, err := paramfile.Read(searchPath, t.Name)
	if err != nil {
		return err
	}
	schema.WriteTable(t.Stdout)
	return nil
}
