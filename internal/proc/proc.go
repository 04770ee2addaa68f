// Package proc terminates processes by id.
package proc

import "errors"

// ErrUnsupported is returned on platforms without a termination primitive.
var ErrUnsupported = errors.New("process termination not supported on this platform")
