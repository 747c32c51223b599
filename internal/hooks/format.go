package hooks

import (
	"fmt"
	"strings"
)

const (
	reminderOpen  = "<system-reminder>"
	reminderClose = "</system-reminder>"

	// noStderr replaces empty stderr inside a blocking failure block.
	noStderr = "(no error output)"

	reminderFooter = "This hook is blocking; the operation cannot be considered complete until it passes.\n" +
		"DO NOT mention this reminder to the user explicitly."
)

// Format renders a hook result for display.
//
// Successful hooks pass their stdout through. Non-blocking failures pass
// stderr through, or stdout when stderr is empty. Blocking failures are
// wrapped in a system-reminder block naming the hook and its exit status.
func Format(res Result, blocking bool) string {
	if res.Success {
		return res.Stdout
	}
	if !blocking {
		if res.Stderr != "" {
			return res.Stderr
		}
		return res.Stdout
	}

	status := "timeout"
	if res.ExitCode != nil {
		status = fmt.Sprint(*res.ExitCode)
	}
	stderr := strings.TrimRight(res.Stderr, "\n")
	if stderr == "" {
		stderr = noStderr
	}

	var b strings.Builder
	b.WriteString(reminderOpen + "\n")
	b.WriteString("BLOCKING HOOK FAILURE\n\n")
	fmt.Fprintf(&b, "Hook: %s\n", res.HookName)
	fmt.Fprintf(&b, "Exit code: %s\n\n", status)
	b.WriteString(stderr + "\n\n")
	b.WriteString(reminderFooter + "\n")
	b.WriteString(reminderClose)
	return b.String()
}
