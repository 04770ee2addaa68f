// Package embedding builds executable images carrying a payload.
//
// An image consists of the program region, a single marker and the payload:
//
//	[program bytes][marker][payload bytes ... EOF]
//
// There is no length prefix, checksum or version tag.
package embedding

import (
	"fmt"
	"io"
	"os"

	"github.com/maja42/selfstore/internal"
)

// Build writes a new image to out.
//
// exe reads from an existing image. Only its program region is used:
// copying stops at the first marker, so a previously stored payload is dropped.
//
// payload is appended verbatim after a single marker. It is never scanned,
// so it may contain anything, including the marker itself.
//
// Returns the number of bytes written.
func Build(out io.Writer, exe io.Reader, payload io.Reader) (int64, error) {
	marker := internal.Marker()

	written, err := internal.CopyUntil(out, exe, marker)
	if err != nil {
		return written, fmt.Errorf("copy executable: %w", err)
	}
	n, err := out.Write(marker)
	written += int64(n)
	if err != nil {
		return written, fmt.Errorf("write marker: %w", err)
	}
	if payload == nil {
		return written, nil
	}
	c, err := io.Copy(out, payload)
	written += c
	if err != nil {
		return written, fmt.Errorf("write payload: %w", err)
	}
	return written, nil
}

// BuildFile writes a new image to outPath, based on the image at exePath.
// outPath is truncated if it exists, or created with the permissions of exePath.
//
// See Build for more information.
func BuildFile(outPath, exePath string, payload io.Reader) error {
	exe, err := os.Open(exePath)
	if err != nil {
		return err
	}
	defer exe.Close()

	info, err := exe.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(outPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := Build(out, exe, payload); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
