// Package selfstore lets a program persist a payload inside its own executable.
//
// The payload is appended to the executable image, separated by a marker:
//
//	[program][marker][payload]
//
// A later run of the same executable reads it back with Open.
// Store replaces the payload (last write wins).
//
// Some platforms (Windows) do not allow modifying the file of a running executable.
// There, storing launches a temporary twin process that performs the overwrite
// on the original's behalf. Programs must call Init before anything else,
// so that a process launched as part of this handoff can do its job:
//
//	func main() {
//		if err := selfstore.Init(); err != nil {
//			log.Fatal(err)
//		}
//		...
//	}
package selfstore

import (
	"bytes"
	"os"
)

// Init performs the startup step of the twin handoff.
// It must be called at the beginning of every program that stores payloads.
//
// For a normal start it returns nil immediately.
// If the process was launched as a phase of the handoff, the phase is performed
// and the process exits; Init only returns if the phase failed.
func Init(opts ...Option) error {
	return newConfig(opts).twinUpdater().startup()
}

// Store replaces the payload of the running executable.
//
// Depending on the updater (see WithUpdater and DefaultUpdater), the calling
// process may be terminated as part of storing.
func Store(payload []byte, opts ...Option) error {
	c := newConfig(opts)
	path, err := c.sys.Executable()
	if err != nil {
		return newErr(OpOpen, "", err)
	}
	c.logger.Debug("storing payload", "path", path, "bytes", len(payload))
	return c.updater.Update(path, bytes.NewReader(payload))
}

// StoreAndExit replaces the payload of the running executable and exits.
// It only returns if storing failed.
func StoreAndExit(payload []byte, opts ...Option) error {
	if err := Store(payload, opts...); err != nil {
		return err
	}
	os.Exit(0)
	return nil
}

// DefaultUpdater returns the ImageUpdater used by Store on this platform.
func DefaultUpdater(opts ...Option) ImageUpdater {
	c := newConfig(opts)
	return defaultUpdater(c)
}
