// Command fspec drives work units through the ACDD lifecycle and runs the
// lifecycle hooks configured for each step.
package main

import (
	"fmt"
	"runtime"
)

// Build metadata, overridden with -ldflags "-X main.version=..." at release time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	Execute()
}

// versionString renders the build metadata shown by "fspec version" and --version.
func versionString() string {
	short := commit[:min(7, len(commit))]
	return fmt.Sprintf("fspec %s (%s, built %s, %s)", version, short, date, runtime.Version())
}
