package config

import (
	"os"
	"path/filepath"
)

// SpecDir is the directory that marks an fspec project root.
const SpecDir = "spec"

// FindProjectRoot walks up from start to the nearest directory containing
// spec/. Falls back to start when there is none.
func FindProjectRoot(start string) string {
	abs, err := filepath.Abs(start)
	if err != nil {
		return start
	}
	dir := abs
	for {
		if info, err := os.Stat(filepath.Join(dir, SpecDir)); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs
		}
		dir = parent
	}
}
