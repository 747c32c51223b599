package git

import (
	"context"

	"github.com/sengac/fspec/internal/cmd"
)

// gitArgs runs git against dir with -C, so callers never change the
// process working directory. An empty dir uses the current one.
func gitArgs(dir string, args []string) []string {
	if dir == "" {
		return args
	}
	return append([]string{"-C", dir}, args...)
}

// runGit runs git in the work tree at dir and discards its output.
// Errors carry git's stderr.
func runGit(ctx context.Context, dir string, args ...string) error {
	return cmd.RunContext(ctx, "", "git", gitArgs(dir, args)...)
}

// outputGit runs git in the work tree at dir and returns stdout.
func outputGit(ctx context.Context, dir string, args ...string) ([]byte, error) {
	return cmd.OutputContext(ctx, "", "git", gitArgs(dir, args)...)
}
