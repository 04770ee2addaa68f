package internal

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/zeebo/blake3"
)

// DigestSize is the size of an image digest in bytes.
const DigestSize = 32

// Digest streams r through BLAKE3 and returns the 32-byte digest.
func Digest(r io.Reader) ([DigestSize]byte, error) {
	var digest [DigestSize]byte
	hasher := blake3.New()
	if _, err := io.Copy(hasher, r); err != nil {
		return digest, err
	}
	copy(digest[:], hasher.Sum(nil))
	return digest, nil
}

// DigestFile returns the BLAKE3 digest of the file at path.
func DigestFile(path string) ([DigestSize]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return [DigestSize]byte{}, err
	}
	defer file.Close()

	digest, err := Digest(file)
	if err != nil {
		return digest, fmt.Errorf("hashing %s: %w", path, err)
	}
	return digest, nil
}

// CopyFile overwrites dst with the contents of src.
// dst is truncated, or created with src's permissions if it does not exist.
// The copy is verified by comparing digests afterwards.
func CopyFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	// https://www.joeshaw.org/dont-defer-close-on-writable-files/
	if err := out.Close(); err != nil {
		return err
	}

	want, err := DigestFile(src)
	if err != nil {
		return err
	}
	got, err := DigestFile(dst)
	if err != nil {
		return err
	}
	if !bytes.Equal(want[:], got[:]) {
		return fmt.Errorf("copy of %s to %s does not match the source", src, dst)
	}
	return nil
}
