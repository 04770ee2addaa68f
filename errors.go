package selfstore

import (
	"errors"
	"fmt"
)

// Operations reported by Error.
const (
	OpOpen      = "open"
	OpRead      = "read"
	OpBuild     = "build"
	OpUpdate    = "update"
	OpDecode    = "decode"
	OpTerminate = "terminate"
	OpOverwrite = "overwrite"
	OpRemove    = "remove"
	OpSpawn     = "spawn"
)

var (
	// ErrMalformedHandoff reports handoff state that cannot drive a startup phase.
	ErrMalformedHandoff = errors.New("malformed handoff state")

	// ErrNotTerminated is returned when the twin process exited without
	// terminating the process that launched it.
	ErrNotTerminated = errors.New("twin exited without taking over")
)

// Error reports a failed step while reading or storing a payload.
// Op tells which step failed, allowing callers to retry selectively
// (for example after losing a race against a terminating process).
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("selfstore %s: %s", e.Op, e.Err)
	}
	return fmt.Sprintf("selfstore %s %s: %s", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newErr(op, path string, err error) *Error {
	return &Error{Op: op, Path: path, Err: err}
}
