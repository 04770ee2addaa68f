package selfstore

import (
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/maja42/selfstore/embedding"
	"github.com/maja42/selfstore/internal"
)

// ImageUpdater replaces the payload stored in an executable image.
//
// Depending on the platform, modifying the file of a running executable
// requires different strategies. Update may terminate the calling process
// instead of returning (see TwinUpdater).
type ImageUpdater interface {
	Update(exePath string, payload io.Reader) error
}

var (
	_ ImageUpdater = InPlaceUpdater{}
	_ ImageUpdater = &TwinUpdater{}
)

// InPlaceUpdater truncates the image right after its program region and appends
// the marker and the new payload.
// It works for images that are not being executed, and on platforms that
// allow writing to the file of a running executable.
type InPlaceUpdater struct{}

// Update implements ImageUpdater.
func (InPlaceUpdater) Update(exePath string, payload io.Reader) error {
	f, err := os.OpenFile(exePath, os.O_RDWR, 0)
	if err != nil {
		return newErr(OpOpen, exePath, err)
	}
	if err := updateInPlace(f, payload); err != nil {
		_ = f.Close()
		return newErr(OpUpdate, exePath, err)
	}
	if err := f.Close(); err != nil {
		return newErr(OpUpdate, exePath, err)
	}
	return nil
}

func updateInPlace(f *os.File, payload io.Reader) error {
	marker := internal.Marker()
	programSize, err := internal.CopyUntil(io.Discard, f, marker)
	if err != nil {
		return err
	}
	if err := f.Truncate(programSize); err != nil {
		return err
	}
	if _, err := f.Seek(programSize, io.SeekStart); err != nil {
		return err
	}
	if _, err := f.Write(marker); err != nil {
		return err
	}
	if payload == nil {
		return nil
	}
	_, err = io.Copy(f, payload)
	return err
}

// DefaultTwinName is the base name of the temporary twin executable.
// The original executable's extension (".exe" on Windows) is appended.
const DefaultTwinName = "evil_twin"

// TwinUpdater stores a payload in the file of the running executable on
// platforms that lock the files of running programs.
//
// The flow is:
//   - Copy the own image with the new payload to a twin file next to the executable.
//   - Launch the twin with mode UPDATE_ORIG, own path and own pid, and wait.
//   - The twin (inside Init) kills the original, overwrites the original's file
//     with a copy of itself and launches it with mode KILL_EVIL_TWIN, twin path and twin pid.
//   - The updated original (inside Init) kills the twin, deletes the twin file and exits.
//
// Init must therefore be called at the beginning of every program using the TwinUpdater.
type TwinUpdater struct {
	Name       string        // twin file name, DefaultTwinName if empty
	Attempts   int           // tries per handoff step, at least one
	RetryDelay time.Duration // pause between tries
	Logger     *slog.Logger

	sys system
}

// NewTwinUpdater returns a TwinUpdater configured by opts.
func NewTwinUpdater(opts ...Option) *TwinUpdater {
	return newConfig(opts).twinUpdater()
}

// TwinPath returns where the twin of exePath is placed.
// An unrelated file at that location is overwritten.
func (u *TwinUpdater) TwinPath(exePath string) string {
	name := u.Name
	if name == "" {
		name = DefaultTwinName
	}
	return filepath.Join(filepath.Dir(exePath), name+filepath.Ext(exePath))
}

// Update implements ImageUpdater.
// On success, the calling process is terminated by the twin and Update never returns.
// If the twin exits without doing so, ErrNotTerminated is reported.
func (u *TwinUpdater) Update(exePath string, payload io.Reader) error {
	sys := u.system()
	log := u.logger()

	twinPath := u.TwinPath(exePath)
	if filepath.Clean(twinPath) == filepath.Clean(exePath) {
		return newErr(OpBuild, twinPath, errors.New("twin would replace the executable itself"))
	}

	log.Info("writing twin", "twin", twinPath)
	if err := embedding.BuildFile(twinPath, exePath, payload); err != nil {
		return newErr(OpBuild, twinPath, err)
	}

	h := Handoff{Mode: ModeUpdateOrig, TwinPath: exePath, TwinPID: sys.Getpid()}
	log.Info("launching twin", "twin", twinPath, "pid", h.TwinPID)
	if err := sys.Spawn(twinPath, h); err != nil {
		return newErr(OpSpawn, twinPath, err)
	}
	return newErr(OpSpawn, twinPath, ErrNotTerminated)
}

// startup consumes the handoff passed by the parent process, if any.
func (u *TwinUpdater) startup() error {
	sys := u.system()
	raw, ok := sys.LookupEnv(EnvHandoff)
	if !ok || raw == "" {
		return nil
	}
	// read once; processes launched later start normally
	_ = sys.Unsetenv(EnvHandoff)

	h, err := DecodeHandoff(raw)
	if err != nil {
		return newErr(OpDecode, "", err)
	}
	return u.Resume(h)
}

// Resume performs the handoff phase described by h.
// For ModeNone and unknown modes it returns nil immediately.
// Otherwise the process exits once the phase completed; an error is returned if it failed.
func (u *TwinUpdater) Resume(h Handoff) error {
	log := u.logger()
	if !h.Mode.Active() {
		if h.Mode != ModeNone {
			log.Warn("ignoring unknown handoff mode", "mode", h.Mode)
		}
		return nil
	}
	if err := h.Validate(); err != nil {
		return newErr(OpDecode, "", err)
	}

	var err error
	switch h.Mode {
	case ModeUpdateOrig:
		err = u.updateOriginal(h)
	case ModeKillEvilTwin:
		err = u.killTwin(h)
	}
	if err != nil {
		return err
	}
	log.Debug("handoff phase complete", "mode", h.Mode)
	u.system().Exit(0)
	return nil
}

// updateOriginal runs inside the twin.
func (u *TwinUpdater) updateOriginal(h Handoff) error {
	sys := u.system()
	log := u.logger()

	self, err := sys.Executable()
	if err != nil {
		return newErr(OpOpen, "", err)
	}

	log.Info("terminating original", "pid", h.TwinPID)
	if err := u.retry(OpTerminate, func() error { return sys.Terminate(h.TwinPID) }); err != nil {
		return newErr(OpTerminate, h.TwinPath, err)
	}
	log.Info("overwriting original", "original", h.TwinPath)
	if err := u.retry(OpOverwrite, func() error { return internal.CopyFile(h.TwinPath, self) }); err != nil {
		return newErr(OpOverwrite, h.TwinPath, err)
	}

	next := Handoff{Mode: ModeKillEvilTwin, TwinPath: self, TwinPID: sys.Getpid()}
	log.Info("relaunching original", "original", h.TwinPath)
	if err := sys.Spawn(h.TwinPath, next); err != nil {
		return newErr(OpSpawn, h.TwinPath, err)
	}
	return nil
}

// killTwin runs inside the updated original.
func (u *TwinUpdater) killTwin(h Handoff) error {
	sys := u.system()
	log := u.logger()

	log.Info("terminating twin", "pid", h.TwinPID)
	if err := u.retry(OpTerminate, func() error { return sys.Terminate(h.TwinPID) }); err != nil {
		return newErr(OpTerminate, h.TwinPath, err)
	}
	log.Info("removing twin", "twin", h.TwinPath)
	err := u.retry(OpRemove, func() error {
		err := os.Remove(h.TwinPath)
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	})
	if err != nil {
		return newErr(OpRemove, h.TwinPath, err)
	}
	return nil
}

// retry runs fn until it succeeds or the attempts are used up.
func (u *TwinUpdater) retry(step string, fn func() error) error {
	attempts := u.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 1; i <= attempts; i++ {
		if err = fn(); err == nil {
			return nil
		}
		if i < attempts {
			u.logger().Warn("handoff step failed, retrying", "step", step, "attempt", i, "error", err)
			time.Sleep(u.RetryDelay)
		}
	}
	return err
}

func (u *TwinUpdater) system() system {
	if u.sys == nil {
		return osSystem{}
	}
	return u.sys
}

func (u *TwinUpdater) logger() *slog.Logger {
	if u.Logger == nil {
		return defaultLogger()
	}
	return u.Logger
}
