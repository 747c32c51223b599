// Package script materializes virtual hooks as executable shell scripts.
//
// Scripts live at spec/hooks/.virtual/<workUnitId>-<hookName> inside the
// project. The location depends only on its inputs, so generating a script
// twice overwrites the same file and cleanup always finds what generation
// wrote.
package script

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Dir is the project-relative directory holding generated scripts.
const Dir = "spec/hooks/.virtual"

// NoFilesMessage is printed by git-context scripts when nothing changed.
const NoFilesMessage = "No changed files to process"

// Path returns where the script for a work unit's hook lives.
func Path(projectRoot, workUnitID, hookName string) string {
	return filepath.Join(projectRoot, Dir, workUnitID+"-"+hookName)
}

// Generate writes the script for a virtual hook and marks it executable.
// With gitContext the script appends the staged and unstaged files from its
// JSON input to command; without it the script just runs command.
func Generate(projectRoot, workUnitID, hookName, command string, gitContext bool) (string, error) {
	if err := validateName("work unit id", workUnitID); err != nil {
		return "", err
	}
	if err := validateName("hook name", hookName); err != nil {
		return "", err
	}
	if strings.TrimSpace(command) == "" {
		return "", errors.New("command is required")
	}

	path := Path(projectRoot, workUnitID, hookName)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create virtual hooks directory: %w", err)
	}

	content := Render(workUnitID, hookName, command, gitContext)
	if err := os.WriteFile(path, []byte(content), 0o755); err != nil {
		return "", fmt.Errorf("write hook script: %w", err)
	}
	// WriteFile keeps the mode of an existing file and applies umask to new ones.
	if err := os.Chmod(path, 0o755); err != nil {
		return "", fmt.Errorf("chmod hook script: %w", err)
	}
	return path, nil
}

// Cleanup removes a generated script. A missing script is not an error.
func Cleanup(projectRoot, workUnitID, hookName string) error {
	err := os.Remove(Path(projectRoot, workUnitID, hookName))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove hook script: %w", err)
	}
	return nil
}

// CleanupAll removes every generated script belonging to workUnitID.
func CleanupAll(projectRoot, workUnitID string, hookNames []string) error {
	var errs []error
	for _, name := range hookNames {
		if err := Cleanup(projectRoot, workUnitID, name); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}

func validateName(what, s string) error {
	switch {
	case s == "":
		return fmt.Errorf("%s is required", what)
	case strings.ContainsAny(s, `/\`) || s == "." || s == "..":
		return fmt.Errorf("invalid %s %q: must not contain path separators", what, s)
	}
	return nil
}
