// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tokenizer splits raw task invocation tokens into options and
// name=value parameters. Options follow the fixed vocabulary every task
// shares; anything of the form identifier=value is a task parameter, where
// the split happens at the first '=' only so values may themselves contain
// '=' characters.
package tokenizer

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
)

// Immediate identifies an option that short-circuits the invocation: the
// caller performs the action and stops, with no parameter resolution.
type Immediate int

const (
	ImmediateNone Immediate = iota
	ImmediateVersion
	ImmediateHelp
	ImmediateParam
	ImmediateDialog
	ImmediateManpage
)

func (i Immediate) String() string {
	switch i {
	case ImmediateVersion:
		return "version"
	case ImmediateHelp:
		return "help"
	case ImmediateParam:
		return "param"
	case ImmediateDialog:
		return "dialog"
	case ImmediateManpage:
		return "manpage"
	default:
		return "none"
	}
}

// EnvOptions collects the env-modifying options. Set maps environment
// variable names to values; Joined is the space-joined option string handed
// to the subprocess so the options propagate.
type EnvOptions struct {
	Set    map[string]string
	Joined string
}

// Tokenized is the result of splitting one raw argument list.
type Tokenized struct {
	// Params holds the id=value parameters, duplicate ids last-wins.
	Params map[string]string
	// Order preserves the first-appearance order of parameter ids.
	Order []string
	// Immediate is the first immediate-action option found in token
	// order, or ImmediateNone. Supplying more than one immediate option
	// is an undefined-precedence precondition; the first one wins here.
	Immediate Immediate
	Env       EnvOptions
}

var immediateTokens = map[string]Immediate{
	"-v": ImmediateVersion, "--version": ImmediateVersion,
	"-h": ImmediateHelp, "--help": ImmediateHelp,
	"-p": ImmediateParam, "--param": ImmediateParam,
	"-d": ImmediateDialog, "--dialog": ImmediateDialog,
	"-m": ImmediateManpage, "--manpage": ImmediateManpage,
}

// Tokenize splits raw into options and parameters for the named task.
// defaultVerbosity seeds the -V/--verbosity flag; only options actually
// supplied end up in the env-option set.
func Tokenize(task string, raw []string, defaultVerbosity int) (*Tokenized, error) {
	tk := &Tokenized{
		Params: make(map[string]string),
		Env:    EnvOptions{Set: make(map[string]string)},
	}

	var optionTokens []string
	for _, tok := range raw {
		if name, value, ok := splitParam(tok); ok {
			if _, seen := tk.Params[name]; !seen {
				tk.Order = append(tk.Order, name)
			}
			tk.Params[name] = value
			continue
		}
		optionTokens = append(optionTokens, tok)
		if tk.Immediate == ImmediateNone {
			if im, ok := immediateTokens[tok]; ok {
				tk.Immediate = im
			}
		}
	}

	fs := pflag.NewFlagSet(task, pflag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.BoolP("version", "v", false, "show task name and version, and exit")
	fs.BoolP("help", "h", false, "show usage and the parameter table, and exit")
	fs.BoolP("param", "p", false, "list all task parameters with defaults, and exit")
	fs.BoolP("dialog", "d", false, "launch the task GUI, and exit")
	fs.BoolP("manpage", "m", false, "open the task documentation, and exit")
	verbosity := fs.IntP("verbosity", "V", defaultVerbosity, "verbosity level 0-10, sets SAS_VERBOSITY")
	fs.BoolP("noclobber", "c", false, "disable overwriting, sets SAS_CLOBBER=0")
	ccfpath := fs.StringP("ccfpath", "a", "", "sets SAS_CCFPATH")
	ccf := fs.StringP("ccf", "i", "", "sets SAS_CCF")
	odf := fs.StringP("odf", "o", "", "sets SAS_ODF")
	ccffiles := fs.StringArrayP("ccffiles", "f", nil, "CCF files")
	warning := fs.StringP("warning", "w", "", "warning code")
	fs.BoolP("trace", "t", false, "trace task execution")

	if err := fs.Parse(optionTokens); err != nil {
		return nil, fmt.Errorf("parse options: %w", err)
	}
	if rest := fs.Args(); len(rest) > 0 {
		return nil, fmt.Errorf("unrecognised argument %q", rest[0])
	}
	if *verbosity < 0 || *verbosity > 10 {
		return nil, fmt.Errorf("verbosity must be between 0 and 10, got %d", *verbosity)
	}

	// Env-modifying options are cumulative. The joined form keeps a fixed
	// order so the propagated string is deterministic.
	var joined []string
	if fs.Changed("ccfpath") {
		tk.Env.Set["SAS_CCFPATH"] = *ccfpath
		joined = append(joined, "-a "+*ccfpath)
	}
	if fs.Changed("noclobber") {
		tk.Env.Set["SAS_CLOBBER"] = "0"
		joined = append(joined, "-c")
	}
	if fs.Changed("ccf") {
		tk.Env.Set["SAS_CCF"] = *ccf
		joined = append(joined, "-i "+*ccf)
	}
	if fs.Changed("odf") {
		tk.Env.Set["SAS_ODF"] = *odf
		joined = append(joined, "-o "+*odf)
	}
	if fs.Changed("ccffiles") {
		files := strings.Join(*ccffiles, " ")
		tk.Env.Set["SAS_CCFFILES"] = files
		joined = append(joined, "-f "+files)
	}
	if fs.Changed("warning") {
		tk.Env.Set["SAS_WARNING"] = *warning
		joined = append(joined, "-w "+*warning)
	}
	if fs.Changed("trace") {
		tk.Env.Set["SAS_TRACE"] = "1"
		joined = append(joined, "-t")
	}
	if fs.Changed("verbosity") {
		tk.Env.Set["SAS_VERBOSITY"] = fmt.Sprintf("%d", *verbosity)
		joined = append(joined, fmt.Sprintf("-V %d", *verbosity))
	}
	tk.Env.Joined = strings.Join(joined, " ")

	return tk, nil
}

// splitParam reports whether tok is a parameter token: a valid identifier,
// one '=', and the rest of the token as value.
func splitParam(tok string) (name, value string, ok bool) {
	idx := strings.IndexByte(tok, '=')
	if idx <= 0 {
		return "", "", false
	}
	name = strings.TrimSpace(tok[:idx])
	if !validIdentifier(name) {
		return "", "", false
	}
	return name, tok[idx+1:], true
}

func validIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r == '_':
		case r >= '0' && r <= '9':
			if i == 0 {
				return false
			}
		default:
			return false
		}
	}
	return true
}
