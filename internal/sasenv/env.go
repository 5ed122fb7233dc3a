// SPDX-License-Identifier: AGPL-3.0-or-later

// Package sasenv resolves the sasrun execution environment: the YAML config
// file defaults, the SAS_PATH parameter-file search path, and the default
// verbosity. Process environment variables override config-file values.
package sasenv

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sasrun-org/sasrun/internal/paths"
	"github.com/sasrun-org/sasrun/internal/types"
	"gopkg.in/yaml.v3"
)

const (
	EnvSASPath   = "SAS_PATH"
	EnvSASDir    = "SAS_DIR"
	EnvCCFPath   = "SAS_CCFPATH"
	EnvVerbosity = "SAS_VERBOSITY"

	defaultVerbosity = 4
)

// ErrSASPathUndefined indicates SAS_PATH is not set, so no parameter files
// can be located.
var ErrSASPathUndefined = errors.New("SAS_PATH is undefined, SAS not initialised?")

// Env is the resolved sasrun environment for one process.
type Env struct {
	Config    *types.Config
	Verbosity int
}

// Load reads the config file (if present) and resolves defaults. A missing
// config file is not an error; a malformed one is.
func Load() (*Env, error) {
	cfg, err := loadConfigFile(filepath.Join(paths.ConfigDir(), "config.yaml"))
	if err != nil {
		return nil, err
	}

	if cfg.DataDir != "" {
		paths.SetDataDirOverride(cfg.DataDir)
	}

	verbosity := cfg.Verbosity
	if v := os.Getenv(EnvVerbosity); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			verbosity = n
		}
	}
	if verbosity <= 0 || verbosity > 10 {
		verbosity = defaultVerbosity
	}

	return &Env{Config: cfg, Verbosity: verbosity}, nil
}

// SearchPath returns the SAS_PATH entries in order. SAS_PATH must be defined
// before any task can be resolved.
func (e *Env) SearchPath() ([]string, error) {
	raw := os.Getenv(EnvSASPath)
	if strings.TrimSpace(raw) == "" {
		return nil, ErrSASPathUndefined
	}
	var out []string
	for _, entry := range filepath.SplitList(raw) {
		if strings.TrimSpace(entry) != "" {
			out = append(out, entry)
		}
	}
	if len(out) == 0 {
		return nil, ErrSASPathUndefined
	}
	return out, nil
}

func loadConfigFile(path string) (*types.Config, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &types.Config{Verbosity: defaultVerbosity}, nil
		}
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg types.Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Verbosity == 0 {
		cfg.Verbosity = defaultVerbosity
	}
	return &cfg, nil
}
