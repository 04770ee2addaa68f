package selfstore

import (
	"os"
	"os/exec"
	"strings"

	"github.com/maja42/selfstore/internal/proc"
)

// system is the part of the operating system the twin protocol talks to.
type system interface {
	Executable() (string, error)
	Getpid() int
	LookupEnv(key string) (string, bool)
	Unsetenv(key string) error
	Terminate(pid int) error
	// Spawn launches path with h as its handoff and waits for it to exit.
	Spawn(path string, h Handoff) error
	Exit(code int)
}

type osSystem struct{}

func (osSystem) Executable() (string, error)         { return executablePath() }
func (osSystem) Getpid() int                         { return os.Getpid() }
func (osSystem) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }
func (osSystem) Unsetenv(key string) error           { return os.Unsetenv(key) }
func (osSystem) Terminate(pid int) error             { return proc.Terminate(pid) }
func (osSystem) Exit(code int)                       { os.Exit(code) }

func (osSystem) Spawn(path string, h Handoff) error {
	enc, err := h.Encode()
	if err != nil {
		return err
	}
	cmd := exec.Command(path)
	cmd.Env = append(withoutHandoff(os.Environ()), EnvHandoff+"="+enc)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// withoutHandoff drops any inherited handoff variable from env.
func withoutHandoff(env []string) []string {
	out := make([]string, 0, len(env)+1)
	for _, kv := range env {
		if strings.HasPrefix(kv, EnvHandoff+"=") {
			continue
		}
		out = append(out, kv)
	}
	return out
}
