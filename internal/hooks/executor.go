package hooks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/sengac/fspec/internal/log"
)

// spawnFailureCode is reported when a hook process could not be started,
// matching the shell's "command not found" status.
const spawnFailureCode = 127

// waitDelay bounds how long Wait keeps draining output after the process
// group has been killed.
const waitDelay = 2 * time.Second

// Executor runs hooks as child processes inside a project.
type Executor struct {
	ProjectRoot    string
	DefaultTimeout time.Duration // used when a hook declares none; zero means DefaultTimeout
	Env            []string      // extra KEY=VALUE entries for every hook
}

// ExecuteHooks runs hooks one at a time in order and returns one result per hook.
func (e *Executor) ExecuteHooks(ctx context.Context, hooks []Definition, hc Context) []Result {
	results := make([]Result, 0, len(hooks))
	for _, hook := range hooks {
		results = append(results, e.ExecuteHook(ctx, hook, hc))
	}
	return results
}

// ExecuteHook runs a single hook and always returns a result.
//
// hc is written to the process's stdin as JSON. When the hook's timeout
// expires (or ctx is cancelled) the process group is killed and the result is
// marked TimedOut with a nil ExitCode. Processes that cannot be started are
// reported as failures with exit code 127.
func (e *Executor) ExecuteHook(ctx context.Context, hook Definition, hc Context) Result {
	l := log.FromContext(ctx)
	res := Result{HookName: hook.Name}

	input, err := encodeContext(hc)
	if err != nil {
		return spawnFailure(res, fmt.Sprintf("encode hook context: %v", err))
	}

	run := hook.Run
	if run.Kind == 0 {
		run = ResolveCommand(hook.Command, e.ProjectRoot)
	}

	timeout := hook.TimeoutDuration(e.DefaultTimeout)
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	c := e.command(runCtx, run)
	c.Dir = e.ProjectRoot
	c.Env = e.environ(hook, hc)
	c.Stdin = bytes.NewReader(input)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	setProcGroup(c)
	c.Cancel = func() error { return killProcGroup(c) }
	c.WaitDelay = waitDelay

	l.Debug("running hook", "hook", hook.Name, "event", hc.Event, "kind", run.Kind, "timeout", timeout)
	done := l.Command(e.ProjectRoot, c.Path, c.Args[1:]...)

	start := time.Now()
	err = c.Run()
	res.Duration = time.Since(start)
	done(res.Duration)
	if c.ProcessState != nil {
		// Background processes outlive the hook otherwise.
		_ = killProcGroup(c)
	}

	res.Stdout = strings.ToValidUTF8(stdout.String(), "\uFFFD")
	res.Stderr = strings.ToValidUTF8(stderr.String(), "\uFFFD")

	if err != nil && runCtx.Err() != nil {
		res.TimedOut = true
		if errors.Is(ctx.Err(), context.Canceled) {
			res.Stderr = appendLine(res.Stderr, "hook cancelled")
		} else {
			res.Stderr = appendLine(res.Stderr, fmt.Sprintf("hook timed out after %s", timeout))
		}
		l.Debug("hook timed out", "hook", hook.Name, "after", res.Duration)
		return res
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		code := 0
		res.ExitCode = &code
		res.Success = true
	case errors.As(err, &exitErr):
		code := exitErr.ExitCode()
		res.ExitCode = &code
	case errors.Is(err, exec.ErrWaitDelay) && c.ProcessState != nil:
		// The hook exited but a child kept its output open.
		code := c.ProcessState.ExitCode()
		res.ExitCode = &code
		res.Success = code == 0
		l.Debug("hook left processes holding its output", "hook", hook.Name)
	default:
		res = spawnFailure(res, fmt.Sprintf("failed to start hook %q (%s): %v", hook.Name, run, err))
	}

	l.Debug("hook finished", "hook", hook.Name, "success", res.Success, "duration", res.Duration)
	return res
}

// encodeContext renders hc as one JSON document. HTML escaping is off so
// file names such as "R&D.md" reach scripts unchanged.
func encodeContext(hc Context) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(hc); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func (e *Executor) command(ctx context.Context, run Command) *exec.Cmd {
	if run.Kind == KindScript && run.Text == "" {
		return exec.CommandContext(ctx, run.Path, run.Args...)
	}
	return exec.CommandContext(ctx, "sh", "-c", run.Text)
}

func (e *Executor) environ(hook Definition, hc Context) []string {
	env := append(os.Environ(), e.Env...)
	return append(env,
		"FSPEC_EVENT="+hc.Event,
		"FSPEC_WORK_UNIT_ID="+hc.WorkUnitID,
		"FSPEC_HOOK_NAME="+hook.Name,
	)
}

func spawnFailure(res Result, msg string) Result {
	code := spawnFailureCode
	res.ExitCode = &code
	res.Success = false
	res.Stderr = appendLine(res.Stderr, msg)
	return res
}

func appendLine(s, line string) string {
	if s == "" {
		return line
	}
	if !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s + line
}
