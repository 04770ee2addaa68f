package selfstore

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func withSystem(s system) Option {
	return func(c *config) {
		c.sys = s
	}
}

// procLog records what the processes of a simulated handoff chain did.
type procLog struct {
	nextPID    int
	terminated []int
	spawned    []string
	handoffs   []Handoff
	exits      []int
}

// fakeSystem simulates one process. With chain set, Spawn runs the child's
// startup in-process, so a complete handoff can be observed in a single test.
type fakeSystem struct {
	exe      string
	pid      int
	env      map[string]string
	log      *procLog
	chain    bool
	spawnErr error
	killErr  error
}

func newFakeSystem(exe string, pid int) *fakeSystem {
	return &fakeSystem{exe: exe, pid: pid, env: map[string]string{}, log: &procLog{nextPID: pid}}
}

func (f *fakeSystem) Executable() (string, error) { return f.exe, nil }
func (f *fakeSystem) Getpid() int                 { return f.pid }

func (f *fakeSystem) LookupEnv(key string) (string, bool) {
	v, ok := f.env[key]
	return v, ok
}

func (f *fakeSystem) Unsetenv(key string) error {
	delete(f.env, key)
	return nil
}

func (f *fakeSystem) Terminate(pid int) error {
	if f.killErr != nil {
		return f.killErr
	}
	f.log.terminated = append(f.log.terminated, pid)
	return nil
}

func (f *fakeSystem) Exit(code int) {
	f.log.exits = append(f.log.exits, code)
}

func (f *fakeSystem) Spawn(path string, h Handoff) error {
	f.log.spawned = append(f.log.spawned, path)
	f.log.handoffs = append(f.log.handoffs, h)
	if f.spawnErr != nil {
		return f.spawnErr
	}
	if !f.chain {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		return err
	}

	enc, err := h.Encode()
	if err != nil {
		return err
	}
	f.log.nextPID++
	child := &fakeSystem{
		exe:   path,
		pid:   f.log.nextPID,
		env:   map[string]string{EnvHandoff: enc},
		log:   f.log,
		chain: true,
	}
	u := &TwinUpdater{Attempts: 1, Logger: discardLogger(), sys: child}
	if err := u.startup(); err != nil {
		return errors.New("child failed: " + err.Error())
	}
	return nil
}

// writeExe creates a fake executable without payload.
func writeExe(t *testing.T, dir, name string, program []byte) string {
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, program, 0o755))
	return path
}

// readPayload returns the payload stored in the image at path.
func readPayload(t *testing.T, path string) []byte {
	p, err := OpenExe(path)
	require.NoError(t, err)
	defer p.Close()

	data, err := io.ReadAll(p)
	require.NoError(t, err)
	return data
}
