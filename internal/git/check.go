package git

import (
	"context"
	"errors"
	"os/exec"
)

// ErrGitNotFound is returned when no git binary is on PATH. Hooks then run
// without changed-file context.
var ErrGitNotFound = errors.New("git not found in PATH: changed-file context is unavailable")

// CheckGit reports ErrGitNotFound when git cannot be executed.
func CheckGit() error {
	if _, err := exec.LookPath("git"); err != nil {
		return ErrGitNotFound
	}
	return nil
}

// IsInsideRepoPath reports whether path lies inside a git work tree.
// A project outside any repository simply has no changed files.
func IsInsideRepoPath(ctx context.Context, path string) bool {
	return runGit(ctx, path, "rev-parse", "--is-inside-work-tree") == nil
}
