package hooks

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func newExecutor(t *testing.T) *Executor {
	t.Helper()
	return &Executor{ProjectRoot: t.TempDir()}
}

func shellHook(name, command string) Definition {
	return Definition{Name: name, Command: command, Run: ShellLiteral(command)}
}

func TestExecuteHook_Success(t *testing.T) {
	t.Parallel()

	e := newExecutor(t)
	res := e.ExecuteHook(context.Background(), shellHook("greet", "echo hello; echo warn >&2"), Context{Event: "post-implementing"})

	if !res.Success {
		t.Fatalf("Success = false, stderr = %q", res.Stderr)
	}
	if res.ExitCode == nil || *res.ExitCode != 0 {
		t.Errorf("ExitCode = %v, want 0", res.ExitCode)
	}
	if res.Stdout != "hello\n" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "hello\n")
	}
	if res.Stderr != "warn\n" {
		t.Errorf("Stderr = %q, want %q", res.Stderr, "warn\n")
	}
	if res.TimedOut {
		t.Error("TimedOut = true for a completed hook")
	}
	if res.HookName != "greet" {
		t.Errorf("HookName = %q, want greet", res.HookName)
	}
}

func TestExecuteHook_Failure(t *testing.T) {
	t.Parallel()

	e := newExecutor(t)
	res := e.ExecuteHook(context.Background(), shellHook("lint", "echo 'lint errors' >&2; exit 3"), Context{Event: "post-implementing"})

	if res.Success {
		t.Fatal("Success = true for exit 3")
	}
	if res.ExitCode == nil || *res.ExitCode != 3 {
		t.Errorf("ExitCode = %v, want 3", res.ExitCode)
	}
	if res.Stderr != "lint errors\n" {
		t.Errorf("Stderr = %q", res.Stderr)
	}
}

func TestExecuteHook_ContextOnStdin(t *testing.T) {
	t.Parallel()

	e := newExecutor(t)
	hc := Context{
		WorkUnitID:    "AUTH-001",
		Event:         "pre-implementing",
		Timestamp:     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
		StagedFiles:   []string{"src/a.ts"},
		UnstagedFiles: []string{"src/b.ts"},
	}
	res := e.ExecuteHook(context.Background(), shellHook("echo-input", "cat"), hc)
	if !res.Success {
		t.Fatalf("hook failed: %s", res.Stderr)
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(res.Stdout), &got); err != nil {
		t.Fatalf("stdin was not one JSON document: %v (%q)", err, res.Stdout)
	}
	if got["workUnitId"] != "AUTH-001" || got["event"] != "pre-implementing" {
		t.Errorf("context fields = %v", got)
	}
	if got["timestamp"] != "2025-01-02T03:04:05Z" {
		t.Errorf("timestamp = %v", got["timestamp"])
	}
	staged, _ := got["stagedFiles"].([]any)
	if len(staged) != 1 || staged[0] != "src/a.ts" {
		t.Errorf("stagedFiles = %v", got["stagedFiles"])
	}
}

func TestExecuteHook_Timeout(t *testing.T) {
	t.Parallel()

	e := newExecutor(t)
	hook := shellHook("slow", "sleep 5")
	hook.Timeout = 1

	start := time.Now()
	res := e.ExecuteHook(context.Background(), hook, Context{Event: "post-implementing"})
	elapsed := time.Since(start)

	if !res.TimedOut {
		t.Fatal("TimedOut = false, want true")
	}
	if res.ExitCode != nil {
		t.Errorf("ExitCode = %d, want nil", *res.ExitCode)
	}
	if res.Success {
		t.Error("Success = true for a timed out hook")
	}
	if elapsed >= 4*time.Second {
		t.Errorf("ExecuteHook took %v, want well under 4s", elapsed)
	}
	if res.Duration < time.Second {
		t.Errorf("Duration = %v, want at least the 1s timeout", res.Duration)
	}
}

func TestExecuteHook_TimeoutKillsChildren(t *testing.T) {
	t.Parallel()

	e := newExecutor(t)
	marker := filepath.Join(e.ProjectRoot, "survived")
	hook := shellHook("spawner", "(sleep 2; touch "+marker+") & wait")
	hook.Timeout = 1

	res := e.ExecuteHook(context.Background(), hook, Context{})
	if !res.TimedOut {
		t.Fatal("TimedOut = false, want true")
	}

	time.Sleep(1500 * time.Millisecond)
	if _, err := os.Stat(marker); err == nil {
		t.Error("child process survived the hook timeout")
	}
}

func TestExecuteHook_DefaultTimeoutFromExecutor(t *testing.T) {
	t.Parallel()

	e := &Executor{ProjectRoot: t.TempDir(), DefaultTimeout: 500 * time.Millisecond}
	res := e.ExecuteHook(context.Background(), shellHook("slow", "sleep 3"), Context{})
	if !res.TimedOut {
		t.Error("executor default timeout was not applied")
	}
}

func TestExecuteHook_SpawnFailure(t *testing.T) {
	t.Parallel()

	e := newExecutor(t)
	hook := Definition{Name: "missing", Command: "./spec/hooks/missing.sh"}
	hook.Run = ResolveCommand(hook.Command, e.ProjectRoot)

	res := e.ExecuteHook(context.Background(), hook, Context{})
	if res.Success {
		t.Fatal("Success = true for a missing script")
	}
	if res.TimedOut {
		t.Error("TimedOut = true for a spawn failure")
	}
	if res.ExitCode == nil || *res.ExitCode != 127 {
		t.Errorf("ExitCode = %v, want 127", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, `failed to start hook "missing"`) {
		t.Errorf("Stderr = %q, want descriptive message", res.Stderr)
	}
}

func TestExecuteHook_ScriptRunsInProjectRoot(t *testing.T) {
	t.Parallel()

	e := newExecutor(t)
	writeScript(t, e.ProjectRoot, "spec/hooks/where.sh", `pwd; echo "$FSPEC_EVENT $FSPEC_WORK_UNIT_ID $FSPEC_HOOK_NAME $1"`)
	hook := Definition{Name: "where", Command: "spec/hooks/where.sh arg1"}
	hook.Run = ResolveCommand(hook.Command, e.ProjectRoot)

	res := e.ExecuteHook(context.Background(), hook, Context{WorkUnitID: "AUTH-001", Event: "post-testing"})
	if !res.Success {
		t.Fatalf("script failed: %s", res.Stderr)
	}
	lines := strings.Split(strings.TrimSpace(res.Stdout), "\n")
	if len(lines) != 2 {
		t.Fatalf("unexpected output %q", res.Stdout)
	}
	gotDir, _ := filepath.EvalSymlinks(lines[0])
	wantDir, _ := filepath.EvalSymlinks(e.ProjectRoot)
	if gotDir != wantDir {
		t.Errorf("working dir = %q, want %q", gotDir, wantDir)
	}
	if lines[1] != "post-testing AUTH-001 where arg1" {
		t.Errorf("env/args line = %q", lines[1])
	}
}

func TestExecuteHook_ScriptWithShellSyntax(t *testing.T) {
	t.Parallel()

	e := newExecutor(t)
	writeScript(t, e.ProjectRoot, "echo.sh", `for a in "$@"; do printf '[%s]' "$a"; done; echo`)

	tests := []struct {
		name    string
		command string
		want    string
	}{
		{"bare path", "./echo.sh", "\n"},
		{"quoted argument", `./echo.sh --msg "hello world"`, "[--msg][hello world]\n"},
		{"chained command", "./echo.sh a && echo chained", "[a]\nchained\n"},
		{"redirect", "./echo.sh x 2>/dev/null | tr x y", "[y]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			hook := Definition{Name: "echo", Command: tt.command}
			hook.Run = ResolveCommand(hook.Command, e.ProjectRoot)
			if hook.Run.Kind != KindScript {
				t.Fatalf("Kind = %v, want script", hook.Run.Kind)
			}

			res := e.ExecuteHook(context.Background(), hook, Context{})
			if !res.Success {
				t.Fatalf("hook failed: %s", res.Stderr)
			}
			if res.Stdout != tt.want {
				t.Errorf("Stdout = %q, want %q", res.Stdout, tt.want)
			}
		})
	}
}

func TestExecuteHook_ContextKeepsSpecialCharacters(t *testing.T) {
	t.Parallel()

	e := newExecutor(t)
	hc := Context{Event: "post-implementing", StagedFiles: []string{"docs/R&D.md"}, UnstagedFiles: []string{"a<b>.txt"}}

	res := e.ExecuteHook(context.Background(), shellHook("ctx", "cat"), hc)
	if !res.Success {
		t.Fatalf("hook failed: %s", res.Stderr)
	}
	for _, want := range []string{`"docs/R&D.md"`, `"a<b>.txt"`} {
		if !strings.Contains(res.Stdout, want) {
			t.Errorf("stdin %q missing %s", res.Stdout, want)
		}
	}
	if strings.HasSuffix(res.Stdout, "\n") {
		t.Errorf("stdin should be a single document without a trailing newline: %q", res.Stdout)
	}
}

func TestExecuteHook_ExtraEnv(t *testing.T) {
	t.Parallel()

	e := &Executor{ProjectRoot: t.TempDir(), Env: []string{"LINT_STRICT=1"}}
	res := e.ExecuteHook(context.Background(), shellHook("env", `printf %s "$LINT_STRICT"`), Context{})
	if res.Stdout != "1" {
		t.Errorf("Stdout = %q, want %q", res.Stdout, "1")
	}
}

func TestExecuteHook_UnresolvedCommand(t *testing.T) {
	t.Parallel()

	e := newExecutor(t)
	res := e.ExecuteHook(context.Background(), Definition{Name: "raw", Command: "echo resolved-late"}, Context{})
	if res.Stdout != "resolved-late\n" {
		t.Errorf("Stdout = %q", res.Stdout)
	}
}

func TestExecuteHooks_SequentialInOrder(t *testing.T) {
	t.Parallel()

	e := newExecutor(t)
	log := filepath.Join(e.ProjectRoot, "order.log")
	hooks := []Definition{
		shellHook("first", "sleep 0.3; echo first >> "+log),
		shellHook("second", "echo second >> "+log+"; exit 1"),
		shellHook("third", "echo third >> "+log),
	}

	results := e.ExecuteHooks(context.Background(), hooks, Context{})
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}
	for i, want := range []string{"first", "second", "third"} {
		if results[i].HookName != want {
			t.Errorf("results[%d] = %q, want %q", i, results[i].HookName, want)
		}
	}
	if results[1].Success {
		t.Error("second hook should have failed")
	}
	if !results[2].Success {
		t.Error("a failing hook must not stop later hooks")
	}

	data, err := os.ReadFile(log)
	if err != nil {
		t.Fatalf("read order log: %v", err)
	}
	if got := string(data); got != "first\nsecond\nthird\n" {
		t.Errorf("execution order = %q", got)
	}
}

func TestResult_MarshalJSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Result{HookName: "slow", TimedOut: true, Duration: 1500 * time.Millisecond})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got := string(data)
	for _, want := range []string{`"exitCode":null`, `"duration":1500`, `"timedOut":true`, `"hookName":"slow"`} {
		if !strings.Contains(got, want) {
			t.Errorf("JSON %s missing %s", got, want)
		}
	}
}
