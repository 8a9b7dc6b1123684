//go:build !windows

package player

import (
	"os/exec"
	"syscall"
)

// setupPlayerProcess puts the player in its own process group so terminal signals aimed at the TUI don't reach it
func setupPlayerProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
	}
}

// terminatePlayerProcess stops the player and anything it spawned
func terminatePlayerProcess(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	// Negative pid signals the whole process group
	if err := syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM); err != nil {
		return cmd.Process.Kill()
	}
	return nil
}
