//go:build windows

package proc

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

// waitTimeout bounds how long Terminate waits for the process to go away (ms).
const waitTimeout = 10_000

// Terminate kills the process with the given id and waits until it has exited,
// so that its executable is no longer locked.
// A process that no longer exists counts as terminated.
func Terminate(pid int) error {
	if pid <= 0 {
		return fmt.Errorf("invalid pid %d", pid)
	}
	h, err := windows.OpenProcess(windows.PROCESS_TERMINATE|windows.SYNCHRONIZE, false, uint32(pid))
	if err != nil {
		if errors.Is(err, windows.ERROR_INVALID_PARAMETER) { // no such process
			return nil
		}
		return fmt.Errorf("opening PID %d: %w", pid, err)
	}
	defer windows.CloseHandle(h)

	if err := windows.TerminateProcess(h, 1); err != nil {
		return fmt.Errorf("terminating PID %d: %w", pid, err)
	}
	event, err := windows.WaitForSingleObject(h, waitTimeout)
	if err != nil {
		return fmt.Errorf("waiting for PID %d: %w", pid, err)
	}
	if event != windows.WAIT_OBJECT_0 {
		return fmt.Errorf("PID %d did not exit in time", pid)
	}
	return nil
}
