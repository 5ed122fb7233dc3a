// SPDX-License-Identifier: AGPL-3.0-or-later
package dispatcher

import (
	"bytes"
	"context"
	"runtime"
	"strings"
	"testing"

	"github.com/sasrun-org/sasrun/internal/types"
)

type recordSink struct {
	starts   []string
	logs     []string
	finishes []int
}

func (r *recordSink) EmitTaskStart(runID, task, command string) { r.starts = append(r.starts, command) }
func (r *recordSink) EmitTaskLog(runID, task, message string)   { r.logs = append(r.logs, message) }
func (r *recordSink) EmitTaskFinish(runID, task string, exitCode int, err error) {
	r.finishes = append(r.finishes, exitCode)
}

func TestDispatch_DryRun(t *testing.T) {
	sink := &recordSink{}
	args := types.ResolvedArgumentMap{
		"obsid": {Value: "0123456789", Origin: types.OriginExplicit},
	}
	res, err := Dispatch(context.Background(), "epproc", args, []string{"obsid"}, Config{
		Emitter: sink,
		DryRun:  true,
	})
	if err != nil {
		t.Fatalf("dry run dispatch: %v", err)
	}
	if res.RunID == "" {
		t.Fatalf("dry run produced no run id")
	}
	if res.Command != "epproc obsid=0123456789" {
		t.Fatalf("command = %q", res.Command)
	}
	if len(sink.starts) != 1 || len(sink.finishes) != 1 {
		t.Fatalf("events = %d starts, %d finishes", len(sink.starts), len(sink.finishes))
	}
	if sink.finishes[0] != 0 {
		t.Fatalf("dry run exit code = %d", sink.finishes[0])
	}
}

func TestDispatch_CapturesOutputAndExitCode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	sink := &recordSink{}
	var out bytes.Buffer
	// sh -c ignores the trailing parameter argv, which stands in for a
	// task binary that echoes and fails.
	res, err := Dispatch(context.Background(), "sh", types.ResolvedArgumentMap{}, nil, Config{
		OptionString: `-c 'echo hello; exit 3'`,
		Emitter:      sink,
		StdoutWriter: &out,
	})
	if err == nil {
		t.Fatalf("expected error for nonzero exit")
	}
	if res.ExitCode != 3 {
		t.Fatalf("exit code = %d, want 3", res.ExitCode)
	}
	if !strings.Contains(out.String(), "hello") {
		t.Fatalf("stdout = %q", out.String())
	}
	if len(sink.logs) == 0 || sink.logs[0] != "hello" {
		t.Fatalf("logs = %v", sink.logs)
	}
	if len(sink.finishes) != 1 || sink.finishes[0] != 3 {
		t.Fatalf("finishes = %v", sink.finishes)
	}
}
