package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/sengac/fspec/internal/config"
	"github.com/sengac/fspec/internal/git"
	"github.com/sengac/fspec/internal/hooks"
	"github.com/sengac/fspec/internal/log"
	"github.com/sengac/fspec/internal/output"
	"github.com/sengac/fspec/internal/pipeline"
	"github.com/sengac/fspec/internal/workunit"
)

// exitError ends the process with code without printing anything further.
// The reason has already been written to stdout as hook output.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

// now is replaced in tests.
var now = time.Now

// projectRoot returns the project root resolved by the root command.
func projectRoot(ctx context.Context) string {
	if root := config.ProjectRootFromContext(ctx); root != "" {
		return root
	}
	wd, _ := os.Getwd()
	return config.FindProjectRoot(wd)
}

// hooksFile returns the hook document path for the current project.
func hooksFile(ctx context.Context) string {
	path, _ := config.FromContext(ctx).HooksFilePath(projectRoot(ctx))
	return path
}

// loadHooks loads the hook document for the current project.
func loadHooks(ctx context.Context) (*hooks.Config, string, error) {
	path := hooksFile(ctx)
	cfg, err := config.LoadHooks(path, projectRoot(ctx))
	if err != nil {
		return nil, path, err
	}
	return cfg, path, nil
}

// loadStore loads the work-unit store for the current project.
func loadStore(ctx context.Context) (*workunit.Store, error) {
	return workunit.Load(projectRoot(ctx))
}

// newOrchestrator wires the hook pipeline for the current project.
func newOrchestrator(ctx context.Context) *pipeline.Orchestrator {
	cfg := config.FromContext(ctx)
	root := projectRoot(ctx)

	env, err := config.LoadHookEnv(cfg.EnvFilePath(root))
	if err != nil {
		log.FromContext(ctx).Warnf("%v", err)
	}

	return &pipeline.Orchestrator{
		ProjectRoot: root,
		Config:      pipeline.HookFile{Path: hooksFile(ctx), ProjectRoot: root},
		WorkUnits:   pipeline.WorkUnitStore{ProjectRoot: root},
		Git:         git.Provider{},
		Executor: &hooks.Executor{
			ProjectRoot:    root,
			DefaultTimeout: cfg.HookTimeout(),
			Env:            env,
		},
		Now: now,
	}
}

// runGuarded runs fn between the hooks of command and prints the outcome.
// fn returns the message shown when the command succeeds.
func runGuarded(ctx context.Context, command, workUnitID string, fn func(ctx context.Context) (string, error)) error {
	out := output.FromContext(ctx)

	res, err := newOrchestrator(ctx).Run(ctx, command, hooks.Context{WorkUnitID: workUnitID},
		func(ctx context.Context, _ hooks.Context) (any, error) {
			return fn(ctx)
		})
	if res != nil {
		if msg, ok := res.CommandValue.(string); ok && msg != "" {
			out.Println(msg)
		}
		out.Block(res.Output)
	}
	if err != nil {
		return err
	}
	if res.ExitCode != 0 {
		return &exitError{code: res.ExitCode}
	}
	return nil
}

// readCommandArg returns arg, or the command piped on stdin when arg is "-".
func readCommandArg(cmd *cobra.Command, arg string) (string, error) {
	if arg != "-" {
		return arg, nil
	}

	in := cmd.InOrStdin()
	if f, ok := in.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return "", fmt.Errorf("command \"-\" requires the hook command on stdin (e.g. echo 'npm test' | fspec ...)")
	}
	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	command := strings.TrimSpace(string(data))
	if command == "" {
		return "", fmt.Errorf("no hook command on stdin")
	}
	return command, nil
}

var nonNameChars = regexp.MustCompile(`[^A-Za-z0-9_.]+`)

// hookNameFromCommand derives a default hook name, e.g. "npm run lint" -> "npm-run-lint".
func hookNameFromCommand(command string) string {
	name := strings.Trim(nonNameChars.ReplaceAllString(command, "-"), "-.")
	if len(name) > 40 {
		name = strings.TrimRight(name[:40], "-.")
	}
	if name == "" {
		return "hook"
	}
	return name
}

// timeoutFlagValue validates a --timeout flag in seconds.
func timeoutFlagValue(seconds int) (int, error) {
	if seconds < 0 {
		return 0, fmt.Errorf("--timeout must not be negative, got %d", seconds)
	}
	return seconds, nil
}
