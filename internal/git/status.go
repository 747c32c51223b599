package git

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/sengac/fspec/internal/log"
)

// Changes lists changed files, slash separated and relative to the
// directory they were collected for.
type Changes struct {
	Staged   []string // index differs from HEAD
	Unstaged []string // work tree differs from index, plus untracked files
}

// Empty reports whether there are no changes at all.
func (c Changes) Empty() bool {
	return len(c.Staged) == 0 && len(c.Unstaged) == 0
}

// Status returns the changes under dir, relative to dir.
//
// When dir is a subdirectory of the work tree, files outside it are left out
// so the paths resolve from dir. A file that was staged and then modified
// again is listed in both Staged and Unstaged. Renames and copies report the
// new path. Untracked files honour .gitignore.
func Status(ctx context.Context, dir string) (Changes, error) {
	prefix, err := outputGit(ctx, dir, "rev-parse", "--show-prefix")
	if err != nil {
		return Changes{}, fmt.Errorf("git rev-parse: %w", err)
	}
	out, err := outputGit(ctx, dir, "status", "--porcelain=v1", "-z", "--untracked-files=all", "--", ".")
	if err != nil {
		return Changes{}, fmt.Errorf("git status: %w", err)
	}

	changes := parsePorcelainZ(out)
	if p := strings.TrimSpace(string(prefix)); p != "" {
		changes.Staged = trimPrefix(changes.Staged, p)
		changes.Unstaged = trimPrefix(changes.Unstaged, p)
	}
	return changes, nil
}

// trimPrefix makes repo-relative paths relative to the subdirectory prefix.
func trimPrefix(paths []string, prefix string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if rel, ok := strings.CutPrefix(p, prefix); ok {
			out = append(out, rel)
		}
	}
	return out
}

// parsePorcelainZ parses "git status --porcelain=v1 -z" output.
// Each entry is "XY path\0"; renames and copies carry the source path as an
// extra NUL-terminated field.
func parsePorcelainZ(out []byte) Changes {
	changes := Changes{Staged: []string{}, Unstaged: []string{}}
	fields := bytes.Split(out, []byte{0})

	for i := 0; i < len(fields); i++ {
		entry := fields[i]
		if len(entry) < 4 {
			continue
		}
		x, y, path := entry[0], entry[1], string(entry[3:])

		if x == 'R' || x == 'C' || y == 'R' || y == 'C' {
			i++ // skip source path
		}

		switch {
		case x == '?' && y == '?':
			changes.Unstaged = append(changes.Unstaged, path)
		case x == '!':
		default:
			if x != ' ' {
				changes.Staged = append(changes.Staged, path)
			}
			if y != ' ' {
				changes.Unstaged = append(changes.Unstaged, path)
			}
		}
	}
	return changes
}

// Provider supplies changed-file context to hooks.
type Provider struct{}

// Changes returns the changes under root. It never fails: outside a
// repository, or when git is missing, both lists are empty.
func (Provider) Changes(ctx context.Context, root string) Changes {
	l := log.FromContext(ctx)
	empty := Changes{Staged: []string{}, Unstaged: []string{}}

	if err := CheckGit(); err != nil {
		l.Debug("git context unavailable", "error", err)
		return empty
	}
	if !IsInsideRepoPath(ctx, root) {
		l.Debug("git context unavailable", "root", root, "error", "not a git work tree")
		return empty
	}

	changes, err := Status(ctx, root)
	if err != nil {
		l.Debug("git context unavailable", "root", root, "error", err)
		return empty
	}
	return changes
}
