//go:build unix

package hooks

import (
	"os/exec"
	"syscall"
)

// setProcGroup starts the hook in its own process group so that a timeout
// also reaches the processes the hook spawned.
func setProcGroup(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcGroup sends SIGKILL to the hook's whole process group.
func killProcGroup(c *exec.Cmd) error {
	if c.Process == nil {
		return nil
	}
	return syscall.Kill(-c.Process.Pid, syscall.SIGKILL)
}
