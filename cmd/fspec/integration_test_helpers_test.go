package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sengac/fspec/internal/config"
	"github.com/sengac/fspec/internal/workunit"
)

// result captures one CLI invocation.
type result struct {
	stdout string
	stderr string
	err    error
}

// newProject creates a temp project root with a spec/ directory.
func newProject(t *testing.T) string {
	t.Helper()
	root, err := filepath.EvalSymlinks(t.TempDir())
	if err != nil {
		t.Fatalf("failed to resolve temp dir: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(root, "spec"), 0o755); err != nil {
		t.Fatal(err)
	}
	return root
}

// runFspec executes the command tree in-process against root.
func runFspec(t *testing.T, root, stdin string, args ...string) result {
	t.Helper()

	cmd := newRootCmd(config.Default())
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--project-root", root}, args...))
	cmd.SetContext(context.Background())

	err := cmd.Execute()
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

// mustRun fails the test when the command returns an error.
func mustRun(t *testing.T, root string, args ...string) result {
	t.Helper()
	res := runFspec(t, root, "", args...)
	if res.err != nil {
		t.Fatalf("fspec %v failed: %v\nstdout: %s\nstderr: %s", args, res.err, res.stdout, res.stderr)
	}
	return res
}

// writeHooks writes spec/fspec-hooks.json.
func writeHooks(t *testing.T, root, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, "spec", "fspec-hooks.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

// loadUnit reads a work unit back from the store.
func loadUnit(t *testing.T, root, id string) *workunit.WorkUnit {
	t.Helper()
	store, err := workunit.Load(root)
	if err != nil {
		t.Fatalf("failed to load store: %v", err)
	}
	wu, err := store.Find(id)
	if err != nil {
		t.Fatalf("failed to find %s: %v", id, err)
	}
	return wu
}

// exitCode returns the code carried by an exitError, 0 for nil and -1 otherwise.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if e, ok := err.(*exitError); ok {
		return e.code
	}
	return -1
}

func decodeJSON(t *testing.T, data string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(data), v); err != nil {
		t.Fatalf("invalid JSON output: %v\n%s", err, data)
	}
}
