package internal

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeebo/blake3"
)

func TestDigest(t *testing.T) {
	data := []byte("some image bytes")
	got, err := Digest(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Equal(t, blake3.Sum256(data), got)
}

func TestCopyFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "twin")
	dst := filepath.Join(dir, "orig")
	data := randomBytes(t, 10_000)
	require.NoError(t, os.WriteFile(src, data, 0o755))
	require.NoError(t, os.WriteFile(dst, bytes.Repeat([]byte{1}, 20_000), 0o755))

	require.NoError(t, CopyFile(dst, src))

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, data, got)

	a, err := DigestFile(src)
	require.NoError(t, err)
	b, err := DigestFile(dst)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestCopyFile_createsDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src")
	dst := filepath.Join(dir, "dst")
	require.NoError(t, os.WriteFile(src, []byte("abc"), 0o755))

	require.NoError(t, CopyFile(dst, src))

	srcInfo, err := os.Stat(src)
	require.NoError(t, err)
	dstInfo, err := os.Stat(dst)
	require.NoError(t, err)
	assert.Equal(t, srcInfo.Mode().Perm(), dstInfo.Mode().Perm())
}

func TestCopyFile_missingSource(t *testing.T) {
	dir := t.TempDir()
	err := CopyFile(filepath.Join(dir, "dst"), filepath.Join(dir, "src"))
	assert.True(t, os.IsNotExist(err))
}

func TestDigestFile_missing(t *testing.T) {
	_, err := DigestFile(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}
