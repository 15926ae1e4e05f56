// Package config loads the optional upkeep configuration file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the optional YAML configuration. It can swap the command a task
// runs and the post-run diagnostic commands, never the task sequence itself.
type Config struct {
	// Commands maps a task key to a replacement command.
	Commands map[string]string `yaml:"commands"`
	// Diagnostics are the commands whose output is shown after the run.
	Diagnostics []string `yaml:"diagnostics"`
}

// DefaultDiagnostics are the post-run diagnostic commands used when the
// configuration doesn't set any.
var DefaultDiagnostics = []string{
	"zypper ps -s",
	"rpmconfigcheck",
}

// Load reads the configuration from path. An empty path returns the
// defaults, a path pointing to a missing file is an error.
func Load(path string) (*Config, error) {
	cfg := Config{Diagnostics: DefaultDiagnostics}
	if path == "" {
		return &cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}

	loaded := Config{}
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("could not parse config file: %w", err)
	}

	if len(loaded.Commands) > 0 {
		cfg.Commands = loaded.Commands
	}
	if len(loaded.Diagnostics) > 0 {
		cfg.Diagnostics = loaded.Diagnostics
	}

	return &cfg, nil
}
