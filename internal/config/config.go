package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/sengac/fspec/internal/hooks"
)

// Environment overrides, applied after the config files.
const (
	EnvHooksConfig = "FSPEC_HOOKS_CONFIG"
	EnvHookTimeout = "FSPEC_HOOK_TIMEOUT"
)

// HooksSettings controls hook execution.
type HooksSettings struct {
	DefaultTimeout int    `toml:"default_timeout"` // seconds, for hooks without a timeout
	ConfigFile     string `toml:"config_file"`     // project-relative hook document; empty = auto-detect
	EnvFile        string `toml:"env_file"`        // project-relative dotenv file passed to hooks
}

// LogSettings controls diagnostics.
type LogSettings struct {
	Verbose bool `toml:"verbose"`
}

// Config holds the fspec settings.
type Config struct {
	Hooks HooksSettings `toml:"hooks"`
	Log   LogSettings   `toml:"log"`
}

// DefaultEnvFile is the project-relative dotenv file loaded into hook environments.
const DefaultEnvFile = "spec/fspec-hooks.env"

// Default returns the default configuration.
func Default() Config {
	return Config{
		Hooks: HooksSettings{
			DefaultTimeout: int(hooks.DefaultTimeout / time.Second),
			EnvFile:        DefaultEnvFile,
		},
	}
}

// HookTimeout returns the default hook timeout as a duration.
func (c *Config) HookTimeout() time.Duration {
	if c.Hooks.DefaultTimeout <= 0 {
		return hooks.DefaultTimeout
	}
	return time.Duration(c.Hooks.DefaultTimeout) * time.Second
}

// Validate checks setting values.
func (c *Config) Validate() error {
	if c.Hooks.DefaultTimeout < 0 {
		return fmt.Errorf("hooks.default_timeout must not be negative, got %d", c.Hooks.DefaultTimeout)
	}
	for field, path := range map[string]string{
		"hooks.config_file": c.Hooks.ConfigFile,
		"hooks.env_file":    c.Hooks.EnvFile,
	} {
		if filepath.IsAbs(path) {
			return fmt.Errorf("%s must be relative to the project root, got: %q", field, path)
		}
	}
	return nil
}

// DefaultPath returns ~/.config/fspec/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "fspec", "config.toml"), nil
}

// Load reads the user configuration from path.
// Returns Default() if the file doesn't exist (no error).
// Returns an error only if the file exists but is invalid.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Default(), fmt.Errorf("failed to read config file: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// ApplyEnv overrides settings from FSPEC_* environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvHooksConfig); v != "" {
		c.Hooks.ConfigFile = v
	}
	if v := getenv(EnvHookTimeout); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return fmt.Errorf("invalid %s %q: must be a non-negative number of seconds", EnvHookTimeout, v)
		}
		c.Hooks.DefaultTimeout = n
	}
	return c.Validate()
}

const defaultConfig = `# fspec configuration

[hooks]
# Timeout in seconds for hooks that do not declare one
# default_timeout = 60

# Hook configuration document, relative to the project root.
# When unset, the first existing of spec/fspec-hooks.json,
# spec/fspec-hooks.toml and spec/fspec-hooks.yaml is used.
# config_file = "spec/fspec-hooks.json"

# Dotenv file whose variables are added to every hook's environment
# env_file = "spec/fspec-hooks.env"

[log]
# Show debug output and external commands
# verbose = false
`

// DefaultConfig returns the commented template written by "fspec init-config".
func DefaultConfig() string {
	return defaultConfig
}
