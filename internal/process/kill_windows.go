//go:build windows

package process

import (
	"os/exec"
	"strconv"
	"syscall"
)

// KillTree force-terminates pid and its children with taskkill.
func KillTree(pid int) error {
	if pid <= 0 {
		return syscall.EINVAL
	}
	return exec.Command("taskkill", "/F", "/T", "/PID", strconv.Itoa(pid)).Run()
}
