// SPDX-License-Identifier: AGPL-3.0-or-later
package types

// Config captures the sasrun environment defaults read from config.yaml.
// Process environment variables override these values.
type Config struct {
	SASDir    string            `yaml:"sas_dir,omitempty"`
	CCFPath   string            `yaml:"ccf_path,omitempty"`
	DataDir   string            `yaml:"data_dir,omitempty"`
	Verbosity int               `yaml:"verbosity,omitempty"`
	LogLevel  string            `yaml:"log_level,omitempty"`
	Env       map[string]string `yaml:"env,omitempty"`
}

func (c *Config) EnvSlice() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.Env))
	for k, v := range c.Env {
		out = append(out, k+"="+v)
	}
	return out
}
