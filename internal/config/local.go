package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// LocalConfigFileName is the per-project settings file at the project root.
const LocalConfigFileName = ".fspec.toml"

// LocalConfig holds per-project overrides. Nil pointers and empty strings
// mean "inherit from the user config".
type LocalConfig struct {
	Hooks LocalHooks `toml:"hooks"`
}

// LocalHooks holds per-project hook setting overrides.
type LocalHooks struct {
	DefaultTimeout *int   `toml:"default_timeout"`
	ConfigFile     string `toml:"config_file"`
	EnvFile        string `toml:"env_file"`
}

// LoadLocal reads .fspec.toml from projectRoot.
// Returns nil (no error) if the file doesn't exist.
func LoadLocal(projectRoot string) (*LocalConfig, error) {
	path := filepath.Join(projectRoot, LocalConfigFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read local config %s: %w", path, err)
	}

	var local LocalConfig
	if err := toml.Unmarshal(data, &local); err != nil {
		return nil, fmt.Errorf("failed to parse local config %s: %w", path, err)
	}
	return &local, nil
}

// MergeLocal returns a copy of global with local overrides applied.
func MergeLocal(global Config, local *LocalConfig) Config {
	merged := global
	if local == nil {
		return merged
	}
	if local.Hooks.DefaultTimeout != nil {
		merged.Hooks.DefaultTimeout = *local.Hooks.DefaultTimeout
	}
	if local.Hooks.ConfigFile != "" {
		merged.Hooks.ConfigFile = local.Hooks.ConfigFile
	}
	if local.Hooks.EnvFile != "" {
		merged.Hooks.EnvFile = local.Hooks.EnvFile
	}
	return merged
}

const defaultLocalConfig = `# fspec project configuration (overrides ~/.config/fspec/config.toml)

[hooks]
# default_timeout = 120
# config_file = "spec/fspec-hooks.yaml"
# env_file = "spec/fspec-hooks.env"
`

// DefaultLocalConfig returns the commented template for .fspec.toml.
func DefaultLocalConfig() string {
	return defaultLocalConfig
}
