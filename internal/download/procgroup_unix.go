//go:build !windows

package download

import (
	"errors"
	"os/exec"
	"syscall"
)

// setProcessGroup starts the fetcher as the leader of a new process group so
// helpers it spawns (ffmpeg, aria2c) can be killed with it.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// killProcessTree kills the fetcher's whole process group
func killProcessTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return nil
	}
	return err
}
