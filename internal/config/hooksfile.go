package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/sengac/fspec/internal/hooks"
	"github.com/sengac/fspec/internal/storage"
)

// HookFileCandidates are the project-relative hook documents checked in order.
var HookFileCandidates = []string{
	"spec/fspec-hooks.json",
	"spec/fspec-hooks.toml",
	"spec/fspec-hooks.yaml",
}

// HooksFilePath returns the absolute path of the hook document for projectRoot
// and whether it exists. Hooks.ConfigFile wins when set; otherwise the first
// existing candidate is used, falling back to the JSON path.
func (c *Config) HooksFilePath(projectRoot string) (string, bool) {
	if c.Hooks.ConfigFile != "" {
		path := filepath.Join(projectRoot, c.Hooks.ConfigFile)
		return path, fileExists(path)
	}
	for _, rel := range HookFileCandidates {
		path := filepath.Join(projectRoot, rel)
		if fileExists(path) {
			return path, true
		}
	}
	return filepath.Join(projectRoot, HookFileCandidates[0]), false
}

// EnvFilePath returns the absolute path of the hook env file.
func (c *Config) EnvFilePath(projectRoot string) string {
	rel := c.Hooks.EnvFile
	if rel == "" {
		rel = DefaultEnvFile
	}
	return filepath.Join(projectRoot, rel)
}

type hookFormat int

const (
	formatJSON hookFormat = iota
	formatTOML
	formatYAML
)

func formatFor(path string) (hookFormat, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return formatJSON, nil
	case ".toml":
		return formatTOML, nil
	case ".yaml", ".yml":
		return formatYAML, nil
	}
	return 0, fmt.Errorf("unsupported hook config format %q (want .json, .toml or .yaml)", filepath.Ext(path))
}

// LoadHooks reads the hook document at path and resolves every hook command
// against projectRoot. A missing file yields an empty configuration.
func LoadHooks(path, projectRoot string) (*hooks.Config, error) {
	cfg := &hooks.Config{Hooks: map[string][]hooks.Definition{}}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read hook config: %w", err)
	}

	format, err := formatFor(path)
	if err != nil {
		return cfg, err
	}
	switch format {
	case formatJSON:
		err = json.Unmarshal(data, cfg)
	case formatTOML:
		err = toml.Unmarshal(data, cfg)
	case formatYAML:
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return &hooks.Config{Hooks: map[string][]hooks.Definition{}}, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	if cfg.Hooks == nil {
		cfg.Hooks = map[string][]hooks.Definition{}
	}

	cfg.Resolve(projectRoot)
	return cfg, nil
}

// SaveHooks writes cfg to path in the format implied by its extension.
func SaveHooks(path string, cfg *hooks.Config) error {
	format, err := formatFor(path)
	if err != nil {
		return err
	}

	var data []byte
	switch format {
	case formatJSON:
		data, err = json.MarshalIndent(cfg, "", "  ")
		data = append(data, '\n')
	case formatTOML:
		var buf bytes.Buffer
		err = toml.NewEncoder(&buf).Encode(cfg)
		data = buf.Bytes()
	case formatYAML:
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return fmt.Errorf("failed to encode hook config: %w", err)
	}
	return storage.WriteFileAtomic(path, data, 0o644)
}

// LoadHookEnv reads the dotenv file at path as KEY=VALUE pairs, sorted by key.
// A missing file yields no variables.
func LoadHookEnv(path string) ([]string, error) {
	vars, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read hook env file %s: %w", path, err)
	}

	env := make([]string, 0, len(vars))
	for k, v := range vars {
		env = append(env, k+"="+v)
	}
	slices.Sort(env)
	return env, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
