package selfstore

import (
	"io"
	"os"
	"path/filepath"

	"github.com/maja42/selfstore/internal"
)

// Payload is the data stored inside an executable.
// It reads lazily from the executable file; nothing is loaded up front.
type Payload struct {
	*io.SectionReader
	exeFile *os.File
	offset  int64
	present bool
}

// Open returns the payload of the running executable.
// An executable that never stored anything has an empty payload.
func Open() (*Payload, error) {
	path, err := executablePath()
	if err != nil {
		return nil, newErr(OpOpen, "", err)
	}
	return OpenExe(path)
}

// OpenExe returns the payload of an arbitrary executable.
func OpenExe(exePath string) (*Payload, error) {
	exe, err := os.Open(exePath)
	if err != nil {
		return nil, newErr(OpOpen, exePath, err)
	}
	dontClose := false
	defer func() {
		if !dontClose {
			_ = exe.Close()
		}
	}()

	info, err := exe.Stat()
	if err != nil {
		return nil, newErr(OpOpen, exePath, err)
	}

	offset, err := internal.SeekPattern(exe, internal.Marker())
	if err != nil {
		return nil, newErr(OpRead, exePath, err)
	}

	p := &Payload{exeFile: exe}
	if offset < 0 { // no payload stored yet
		p.offset = info.Size()
		p.SectionReader = io.NewSectionReader(exe, p.offset, 0)
	} else {
		p.offset = offset
		p.present = true
		p.SectionReader = io.NewSectionReader(exe, offset, info.Size()-offset)
	}
	dontClose = true
	return p, nil
}

// ReadPayload returns the payload contained in an image that can only be streamed,
// such as a pipe. Bytes before the marker are consumed and discarded.
func ReadPayload(r io.Reader) (io.Reader, error) {
	rest, _, err := internal.SkipPast(r, internal.Marker())
	if err != nil {
		return nil, newErr(OpRead, "", err)
	}
	return rest, nil
}

// Close the executable containing the payload.
// Close will return an error if it has already been called.
func (p *Payload) Close() error {
	return p.exeFile.Close()
}

// Present reports whether the executable contains a marker.
// An image with a marker but no data after it is present, with Size zero.
func (p *Payload) Present() bool {
	return p.present
}

// Offset returns the offset of the payload in relation to the start of the executable.
// Without a marker, this is the executable's size.
func (p *Payload) Offset() int64 {
	return p.offset
}

// executablePath returns the path of the running executable, with symlinks resolved.
func executablePath() (string, error) {
	path, err := os.Executable()
	if err != nil {
		return "", err
	}
	if p, err := filepath.EvalSymlinks(path); err == nil {
		// EvalSymlinks fails on Windows if the executable is located in the
		// remote SYSVOL volume from the domain controller.
		// It is therefore optional, any errors are ignored.
		path = p
	}
	return path, nil
}
