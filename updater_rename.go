//go:build !windows

package selfstore

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/renameio/v2"

	"github.com/maja42/selfstore/embedding"
)

var _ ImageUpdater = &RenameUpdater{}

// RenameUpdater writes the new image to a temporary file next to the executable
// and renames it over the original. The permissions of the original are kept.
//
// Linux refuses to write to the file of a running executable (ETXTBSY),
// but replacing the directory entry is allowed: the running process keeps
// its old image, the next start sees the new one.
type RenameUpdater struct {
	Logger *slog.Logger
}

// Update implements ImageUpdater.
func (u *RenameUpdater) Update(exePath string, payload io.Reader) error {
	exe, err := os.Open(exePath)
	if err != nil {
		return newErr(OpOpen, exePath, err)
	}
	defer exe.Close()

	info, err := exe.Stat()
	if err != nil {
		return newErr(OpOpen, exePath, err)
	}

	pf, err := renameio.NewPendingFile(exePath, renameio.WithPermissions(info.Mode().Perm()))
	if err != nil {
		return newErr(OpUpdate, exePath, err)
	}
	defer pf.Cleanup()

	n, err := embedding.Build(pf, exe, payload)
	if err != nil {
		return newErr(OpBuild, exePath, err)
	}
	if err := pf.CloseAtomicallyReplace(); err != nil {
		return newErr(OpUpdate, exePath, err)
	}
	if u.Logger != nil {
		u.Logger.Info("replaced executable", "path", exePath, "bytes", n)
	}
	return nil
}
