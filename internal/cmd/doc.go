// Package cmd provides helpers for executing external commands with
// context support and verbose logging.
//
// Failures carry the command's stderr in the error message, which keeps
// git errors readable when they bubble up to the CLI:
//
//	out, err := cmd.OutputContext(ctx, root, "git", "status", "--porcelain=v1", "-z")
//	if err != nil {
//	    return fmt.Errorf("git status: %w", err)
//	}
//
// Hook processes are not run through this package: the hooks executor
// needs stdin, process groups and per-hook deadlines, which it manages
// itself.
package cmd
