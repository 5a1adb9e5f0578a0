//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// setProcessGroup starts the child in its own process group so that signals
// reach the renderer and anything it spawned.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// TerminateProcessGroup asks a process group to exit by sending SIGTERM.
func TerminateProcessGroup(pid int) {
	// Best-effort; KillProcessGroup follows after the grace period
	_ = syscall.Kill(-pid, syscall.SIGTERM)
}

// KillProcessGroup kills a process and all its children by sending SIGKILL
// to the process group (negative PID).
func KillProcessGroup(pid int) {
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
