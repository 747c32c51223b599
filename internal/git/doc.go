// Package git reads repository state via the git CLI.
//
// All operations shell out to git through [github.com/sengac/fspec/internal/cmd]
// rather than using Go git libraries, so user settings such as
// core.excludesFile apply unchanged.
//
// The main entry point is [Provider], which supplies the staged and unstaged
// file lists that git-context hooks receive on stdin:
//
//   - Staged: paths whose index entry differs from HEAD
//   - Unstaged: paths whose work tree differs from the index, plus untracked files
//
// A partially staged file (staged, then edited again) appears in both lists.
package git
