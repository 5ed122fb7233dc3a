// SPDX-License-Identifier: AGPL-3.0-or-later
package task

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sasrun-org/sasrun/internal/paramfile"
	"github.com/sasrun-org/sasrun/internal/sasenv"
	"github.com/sasrun-org/sasrun/internal/types"
)

const fixture = `<?xml version="1.0"?>
<TASK name="epproc">
 <CONFIG>
  <PARAM id="obsid" type="string" mandatory="yes">
   <DESCRIPTION>Observation identifier</DESCRIPTION>
  </PARAM>
  <PARAM id="withsrclist" type="bool" default="no">
   <PARAM id="srclisttab" type="string" mandatory="yes"/>
  </PARAM>
 </CONFIG>
</TASK>
`

// writeSASTree writes a SAS-style install tree with a config/ directory and
// points SAS_PATH at it.
func writeSASTree(t *testing.T) {
	t.Helper()
	root := t.TempDir()
	cfgDir := filepath.Join(root, "config")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatalf("mkdir config: %v", err)
	}
	if err := os.WriteFile(filepath.Join(cfgDir, "epproc.par"), []byte(fixture), 0o644); err != nil {
		t.Fatalf("write par file: %v", err)
	}
	t.Setenv(sasenv.EnvSASPath, root)
}

func testEnv() *sasenv.Env {
	return &sasenv.Env{Config: &types.Config{}, Verbosity: 4}
}

func TestRun_DryRunResolvesAndRenders(t *testing.T) {
	writeSASTree(t)
	var out bytes.Buffer
	tk := &Task{
		Name:   "epproc",
		Args:   []string{"obsid=0123456789", "srclisttab=src.fits"},
		Env:    testEnv(),
		Stdout: &out,
		DryRun: true,
	}
	outcome, err := tk.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if outcome.Stopped {
		t.Fatalf("dry run should not be an immediate stop")
	}
	if rv := outcome.Resolved["withsrclist"]; rv.Origin != types.OriginImplicit || rv.Value != "yes" {
		t.Fatalf("withsrclist = %+v", rv)
	}
	want := "epproc obsid=0123456789 withsrclist=yes srclisttab=src.fits"
	if outcome.Result.Command != want {
		t.Fatalf("command = %q, want %q", outcome.Result.Command, want)
	}
}

func TestRun_MissingMandatoryFailsBeforeDispatch(t *testing.T) {
	writeSASTree(t)
	tk := &Task{
		Name:   "epproc",
		Args:   nil,
		Env:    testEnv(),
		Stdout: new(bytes.Buffer),
		DryRun: true,
	}
	_, err := tk.Run(context.Background())
	if err == nil {
		t.Fatalf("expected missing mandatory error")
	}
	if !strings.Contains(err.Error(), "obsid") {
		t.Fatalf("err = %v", err)
	}
}

func TestRun_ParamOptionShortCircuits(t *testing.T) {
	writeSASTree(t)
	var out bytes.Buffer
	tk := &Task{
		Name:   "epproc",
		Args:   []string{"-p"},
		Env:    testEnv(),
		Stdout: &out,
	}
	outcome, err := tk.Run(context.Background())
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !outcome.Stopped {
		t.Fatalf("immediate option did not stop the invocation")
	}
	if outcome.Resolved != nil {
		t.Fatalf("immediate option should not resolve parameters")
	}
	if !strings.Contains(out.String(), "obsid") || !strings.Contains(out.String(), "withsrclist") {
		t.Fatalf("parameter table missing entries:\n%s", out.String())
	}
}

func TestRun_HelpIncludesUsageAndTable(t *testing.T) {
	writeSASTree(t)
	var out bytes.Buffer
	tk := &Task{
		Name:   "epproc",
		Args:   []string{"--help"},
		Env:    testEnv(),
		Stdout: &out,
	}
	if _, err := tk.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	text := out.String()
	if !strings.Contains(text, "Usage: epproc") {
		t.Fatalf("usage header missing:\n%s", text)
	}
	if !strings.Contains(text, "obsid") {
		t.Fatalf("parameter table missing:\n%s", text)
	}
}

func TestRun_UndefinedSearchPath(t *testing.T) {
	t.Setenv(sasenv.EnvSASPath, "")
	tk := &Task{
		Name:   "epproc",
		Args:   []string{"obsid=0123"},
		Env:    testEnv(),
		Stdout: new(bytes.Buffer),
		DryRun: true,
	}
	_, err := tk.Run(context.Background())
	if !errors.Is(err, sasenv.ErrSASPathUndefined) {
		t.Fatalf("err = %v, want ErrSASPathUndefined", err)
	}
}

func TestRun_UnknownTask(t *testing.T) {
	writeSASTree(t)
	tk := &Task{
		Name:   "nosuchtask",
		Args:   []string{"obsid=0123"},
		Env:    testEnv(),
		Stdout: new(bytes.Buffer),
		DryRun: true,
	}
	_, err := tk.Run(context.Background())
	var nferr *paramfile.NotFoundError
	if !errors.As(err, &nferr) {
		t.Fatalf("err = %v, want NotFoundError", err)
	}
	if nferr.Task != "nosuchtask" {
		t.Fatalf("task = %q", nferr.Task)
	}
}
