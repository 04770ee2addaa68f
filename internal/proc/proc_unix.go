//go:build unix

package proc

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Terminate kills the process with the given id.
// A process that no longer exists counts as terminated.
// The call does not wait until the kernel has released the process' resources.
func Terminate(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid pid %d", pid)
	}
	if err := unix.Kill(pid, unix.SIGKILL); err != nil {
		if errors.Is(err, unix.ESRCH) {
			return nil
		}
		return fmt.Errorf("signaling PID %d: %w", pid, err)
	}
	return nil
}
