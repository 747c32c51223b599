package hooks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrHookNotFound is returned when a hook's script does not exist.
var ErrHookNotFound = errors.New("hook script not found")

// ScriptsDir is the project-relative directory where hook scripts conventionally live.
const ScriptsDir = "spec/hooks/"

// CommandKind distinguishes script hooks from shell command lines.
type CommandKind int

const (
	// KindShell runs Text with "sh -c".
	KindShell CommandKind = iota + 1
	// KindScript runs the script at Path. A bare path is executed directly
	// with Args; a path followed by more words runs Text through "sh -c".
	KindScript
)

func (k CommandKind) String() string {
	switch k {
	case KindShell:
		return "shell"
	case KindScript:
		return "script"
	default:
		return "unresolved"
	}
}

// Command is a resolved hook command.
type Command struct {
	Kind CommandKind
	Text string   // shell line; for KindScript the declared line with Path substituted
	Path string   // absolute script path, for KindScript
	Args []string // extra script arguments, for KindScript
}

// ShellLiteral returns a command that runs text through the shell.
func ShellLiteral(text string) Command {
	return Command{Kind: KindShell, Text: text}
}

// ScriptPath returns a command that executes the script at path.
func ScriptPath(path string, args ...string) Command {
	return Command{Kind: KindScript, Path: path, Args: args}
}

// ResolveCommand decides once whether raw names a script or a shell line.
//
// raw is a script when its first word starts with "./", "/" or "spec/hooks/",
// or names an existing file relative to projectRoot. When more words follow
// the script, the whole line runs through the shell so quoting and operators
// keep their meaning. Anything else is a shell command line.
func ResolveCommand(raw, projectRoot string) Command {
	line := strings.TrimSpace(raw)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ShellLiteral(raw)
	}
	first := fields[0]

	if !looksLikePath(first) && !isRegularFile(joinRoot(projectRoot, first)) {
		return ShellLiteral(raw)
	}
	path := joinRoot(projectRoot, first)
	rest := strings.TrimPrefix(line, first)
	if strings.TrimSpace(rest) == "" {
		return ScriptPath(path)
	}
	return Command{Kind: KindScript, Path: path, Text: shellQuote(path) + rest}
}

// shellQuote wraps s in single quotes for sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func looksLikePath(s string) bool {
	return strings.HasPrefix(s, "./") || strings.HasPrefix(s, "/") || strings.HasPrefix(s, ScriptsDir)
}

func joinRoot(projectRoot, p string) string {
	if filepath.IsAbs(p) || projectRoot == "" {
		return filepath.Clean(p)
	}
	return filepath.Join(projectRoot, p)
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// Validate checks that a script command points at an existing file.
// Shell lines are always valid: their failures surface at run time.
func (c Command) Validate() error {
	if c.Kind != KindScript {
		return nil
	}
	info, err := os.Stat(c.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrHookNotFound, c.Path)
		}
		return fmt.Errorf("stat hook script: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrHookNotFound, c.Path)
	}
	return nil
}

// String renders the command for display.
func (c Command) String() string {
	if c.Kind == KindScript && c.Text == "" {
		return strings.TrimSpace(c.Path + " " + strings.Join(c.Args, " "))
	}
	return c.Text
}

// Resolve fills in Run for every hook in the configuration.
func (c *Config) Resolve(projectRoot string) {
	if c == nil {
		return
	}
	for event, defs := range c.Hooks {
		for i := range defs {
			defs[i].Run = ResolveCommand(defs[i].Command, projectRoot)
		}
		c.Hooks[event] = defs
	}
}

// Validate reports every hook whose script is missing, plus hooks without
// a name or command. Errors are joined so all problems surface at once.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	var errs []error
	for _, event := range c.Events() {
		for i, h := range c.Hooks[event] {
			if h.Name == "" {
				errs = append(errs, fmt.Errorf("%s[%d]: hook name is required", event, i))
			}
			if strings.TrimSpace(h.Command) == "" {
				errs = append(errs, fmt.Errorf("%s/%s: command is required", event, h.Name))
				continue
			}
			if h.Timeout < 0 {
				errs = append(errs, fmt.Errorf("%s/%s: timeout must not be negative", event, h.Name))
			}
			if err := h.Run.Validate(); err != nil {
				errs = append(errs, fmt.Errorf("%s/%s: %w", event, h.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}
