// Package config handles fspec settings and the project hook document.
//
// Settings are read from ~/.config/fspec/config.toml, then overridden by a
// per-project .fspec.toml, then by environment variables.
//
// # Configuration Sources (highest priority first)
//
//   - FSPEC_HOOKS_CONFIG env var: project-relative hook document
//   - FSPEC_HOOK_TIMEOUT env var: default hook timeout in seconds
//   - .fspec.toml at the project root
//   - ~/.config/fspec/config.toml
//   - Default values
//
// # Hook Document
//
// Hooks live in the project, not in the settings. The first existing file of
// spec/fspec-hooks.json, spec/fspec-hooks.toml and spec/fspec-hooks.yaml is
// used unless hooks.config_file names another one. All three formats share
// one shape:
//
//	[[hooks.post-implementing]]
//	name = "lint"
//	command = "npm run lint"
//	blocking = true
//
// A missing document means no hooks. [LoadHooks] resolves each hook command
// into a script path or a shell line once, at load time.
//
// # Hook Environment
//
// Variables from spec/fspec-hooks.env (dotenv syntax) are added to every
// hook process. See [LoadHookEnv].
package config
