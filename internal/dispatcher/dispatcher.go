// SPDX-License-Identifier: AGPL-3.0-or-later

// Package dispatcher executes the external task binary with the resolved
// argument map. It is the one place that touches process environment and
// subprocess state; the resolver's output is read-only input here.
package dispatcher

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kballard/go-shellquote"
	"github.com/sasrun-org/sasrun/internal/events"
	"github.com/sasrun-org/sasrun/internal/journal"
	"github.com/sasrun-org/sasrun/internal/types"
)

// Config holds runtime execution options for one dispatch.
type Config struct {
	// EnvOptions are the SAS_* overrides collected from env-modifying
	// options, applied to the subprocess environment only.
	EnvOptions map[string]string
	// OptionString is the space-joined option form propagated on the
	// command line so the external task sees the same options.
	OptionString string
	Emitter      events.Sink
	Journal      *journal.Journal
	StdoutWriter io.Writer
	DryRun       bool
}

// Result holds the outcome of one task dispatch.
type Result struct {
	RunID    string
	Command  string
	ExitCode int
	Duration time.Duration
	Err      error
}

// Dispatch runs the external task with the resolved arguments. order fixes
// the argv rendering order; pass the schema's document order. The resolved
// map is never mutated.
func Dispatch(ctx context.Context, task string, args types.ResolvedArgumentMap, order []string, cfg Config) (Result, error) {
	runID := uuid.NewString()
	argv := BuildArgv(args, order)
	command := CommandString(task, argv, cfg.OptionString)

	result := Result{RunID: runID, Command: command}

	if cfg.Emitter != nil {
		cfg.Emitter.EmitTaskStart(runID, task, command)
	}
	if cfg.DryRun {
		if cfg.Emitter != nil {
			cfg.Emitter.EmitTaskFinish(runID, task, 0, nil)
		}
		return result, nil
	}

	cmdArgs := make([]string, 0, len(argv)+4)
	if cfg.OptionString != "" {
		opts, err := shellquote.Split(cfg.OptionString)
		if err != nil {
			return result, fmt.Errorf("split option string: %w", err)
		}
		cmdArgs = append(cmdArgs, opts...)
	}
	cmdArgs = append(cmdArgs, argv...)

	cmd := exec.CommandContext(ctx, task, cmdArgs...)

	stdoutSink := cfg.StdoutWriter
	if stdoutSink == nil {
		stdoutSink = os.Stdout
	}
	writer := events.NewTaskWriter(cfg.Emitter, runID, task, stdoutSink)
	// External task output interleaves stdout and stderr into one stream.
	cmd.Stdout = writer
	cmd.Stderr = writer
	cmd.Env = buildEnv(cfg.EnvOptions)

	start := time.Now()
	runErr := cmd.Run()
	writer.Flush()
	result.Duration = time.Since(start)

	switch {
	case runErr == nil:
		result.ExitCode = 0
	default:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			result.ExitCode = exitErr.ExitCode()
		} else {
			result.ExitCode = -1
		}
		result.Err = runErr
	}

	if cfg.Emitter != nil {
		cfg.Emitter.EmitTaskFinish(runID, task, result.ExitCode, result.Err)
	}
	if cfg.Journal != nil {
		argsJSON, err := json.Marshal(args.Values())
		if err != nil {
			argsJSON = []byte("{}")
		}
		_ = cfg.Journal.RecordRun(ctx, journal.Run{
			RunID:     runID,
			Task:      task,
			ArgsJSON:  string(argsJSON),
			Options:   cfg.OptionString,
			ExitCode:  result.ExitCode,
			Duration:  result.Duration,
			StartedAt: start.UTC(),
		})
	}

	return result, result.Err
}

// Version asks the external task for its version by invoking it with -v,
// the one option every task accepts.
func Version(ctx context.Context, task string) (string, error) {
	out, err := exec.CommandContext(ctx, task, "-v").Output()
	if err != nil {
		return "", fmt.Errorf("query %s version: %w", task, err)
	}
	return strings.TrimSpace(string(out)), nil
}

// RunHelper spawns one of the external helper tools (sasdialog, sashelp)
// and streams its output to w.
func RunHelper(ctx context.Context, w io.Writer, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = w
	cmd.Stderr = w
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", name, err)
	}
	return nil
}

func buildEnv(overrides map[string]string) []string {
	env := os.Environ()
	for k, v := range overrides {
		env = upsertEnv(env, k, v)
	}
	return env
}

func upsertEnv(env []string, key, value string) []string {
	prefix := key + "="
	for i, kv := range env {
		if strings.HasPrefix(kv, prefix) {
			env[i] = prefix + value
			return env
		}
	}
	return append(env, prefix+value)
}
