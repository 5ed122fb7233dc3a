package tokenizer

import (
	"reflect"
	"testing"
)

func TestTokenize_ParamsAndVerbosity(t *testing.T) {
	tk, err := Tokenize("cifbuild", []string{"-V", "8", "cifbuild_opts=foo"}, 4)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if got := tk.Params["cifbuild_opts"]; got != "foo" {
		t.Fatalf("cifbuild_opts = %q", got)
	}
	if got := tk.Env.Set["SAS_VERBOSITY"]; got != "8" {
		t.Fatalf("SAS_VERBOSITY = %q", got)
	}
	if tk.Env.Joined != "-V 8" {
		t.Fatalf("joined = %q", tk.Env.Joined)
	}
	if tk.Immediate != ImmediateNone {
		t.Fatalf("unexpected immediate option %v", tk.Immediate)
	}
}

func TestTokenize_SplitsOnFirstEquals(t *testing.T) {
	tk, err := Tokenize("evselect", []string{"expression=PI>200&&PI=500"}, 4)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if got := tk.Params["expression"]; got != "PI>200&&PI=500" {
		t.Fatalf("value with embedded '=' mangled: %q", got)
	}
}

func TestTokenize_NoOptions(t *testing.T) {
	tk, err := Tokenize("epproc", []string{"obsid=0123456789"}, 4)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if len(tk.Env.Set) != 0 || tk.Env.Joined != "" {
		t.Fatalf("no options supplied but env set = %v joined = %q", tk.Env.Set, tk.Env.Joined)
	}
	if !reflect.DeepEqual(tk.Order, []string{"obsid"}) {
		t.Fatalf("order = %v", tk.Order)
	}
}

func TestTokenize_ImmediateFirstWins(t *testing.T) {
	tk, err := Tokenize("epproc", []string{"-h"}, 4)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if tk.Immediate != ImmediateHelp {
		t.Fatalf("immediate = %v, want help", tk.Immediate)
	}

	// Supplying more than one immediate option is an undefined-precedence
	// precondition; the documented behaviour is first token order wins.
	tk, err = Tokenize("epproc", []string{"-p", "--version"}, 4)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if tk.Immediate != ImmediateParam {
		t.Fatalf("immediate = %v, want param (first found)", tk.Immediate)
	}
}

func TestTokenize_EnvOptionsCumulative(t *testing.T) {
	tk, err := Tokenize("epproc", []string{"-a", "/ccf", "-c", "-t", "table=evts.fits"}, 4)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	want := map[string]string{
		"SAS_CCFPATH": "/ccf",
		"SAS_CLOBBER": "0",
		"SAS_TRACE":   "1",
	}
	if !reflect.DeepEqual(tk.Env.Set, want) {
		t.Fatalf("env = %v, want %v", tk.Env.Set, want)
	}
	if tk.Env.Joined != "-a /ccf -c -t" {
		t.Fatalf("joined = %q", tk.Env.Joined)
	}
	if got := tk.Params["table"]; got != "evts.fits" {
		t.Fatalf("table = %q", got)
	}
}

func TestTokenize_VerbosityRange(t *testing.T) {
	if _, err := Tokenize("epproc", []string{"-V", "11"}, 4); err == nil {
		t.Fatalf("expected error for verbosity out of range")
	}
}

func TestTokenize_UnknownOption(t *testing.T) {
	if _, err := Tokenize("epproc", []string{"--bogus"}, 4); err == nil {
		t.Fatalf("expected error for unknown option")
	}
}

func TestTokenize_InvalidIdentifierIsOption(t *testing.T) {
	// "2fast=x" is not identifier=value, so it falls through to option
	// parsing and fails there instead of silently becoming a parameter.
	if _, err := Tokenize("epproc", []string{"2fast=x"}, 4); err == nil {
		t.Fatalf("expected error for non-identifier token")
	}
}

func TestTokenize_DuplicateParamLastWins(t *testing.T) {
	tk, err := Tokenize("epproc", []string{"mode=quick", "mode=full"}, 4)
	if err != nil {
		t.Fatalf("Tokenize error: %v", err)
	}
	if got := tk.Params["mode"]; got != "full" {
		t.Fatalf("mode = %q, want last supplied value", got)
	}
	if !reflect.DeepEqual(tk.Order, []string{"mode"}) {
		t.Fatalf("order = %v", tk.Order)
	}
}
