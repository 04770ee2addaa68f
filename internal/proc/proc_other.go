//go:build !unix && !windows

package proc

// Terminate is not available on this platform.
func Terminate(pid int) error {
	return ErrUnsupported
}
