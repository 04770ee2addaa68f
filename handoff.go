package selfstore

import (
	"encoding/base64"
	"fmt"

	"github.com/maja42/selfstore/internal/codec"
)

// EnvHandoff names the environment variable carrying the encoded Handoff
// from a process to the child it launches. It is set on the child only.
const EnvHandoff = "SELFSTORE_HANDOFF"

// Mode tells a freshly launched process which handoff phase to perform.
type Mode string

const (
	// ModeNone is a normal startup.
	ModeNone Mode = ""
	// ModeUpdateOrig is observed by the twin: kill the original and overwrite its file.
	ModeUpdateOrig Mode = "UPDATE_ORIG"
	// ModeKillEvilTwin is observed by the updated original: kill the twin and delete its file.
	ModeKillEvilTwin Mode = "KILL_EVIL_TWIN"
)

// Handoff is the state passed from one phase of the twin protocol to the next.
type Handoff struct {
	Mode     Mode   `cbor:"1,keyasint"`
	TwinPath string `cbor:"2,keyasint"` // file of the counterpart process
	TwinPID  int    `cbor:"3,keyasint"` // id of the counterpart process
}

// Active reports whether the mode asks for a handoff phase.
// Unknown modes are treated like a normal startup.
func (m Mode) Active() bool {
	return m == ModeUpdateOrig || m == ModeKillEvilTwin
}

// Validate checks that the handoff carries everything its phase needs.
func (h Handoff) Validate() error {
	if !h.Mode.Active() {
		return nil
	}
	if h.TwinPath == "" {
		return fmt.Errorf("%w: %s without twin path", ErrMalformedHandoff, h.Mode)
	}
	if h.TwinPID <= 0 {
		return fmt.Errorf("%w: %s with invalid twin pid %d", ErrMalformedHandoff, h.Mode, h.TwinPID)
	}
	return nil
}

// Encode returns the handoff as an environment-safe string.
func (h Handoff) Encode() (string, error) {
	data, err := codec.Marshal(h)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(data), nil
}

// DecodeHandoff parses a string produced by Handoff.Encode.
func DecodeHandoff(s string) (Handoff, error) {
	var h Handoff
	data, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return h, fmt.Errorf("%w: %s", ErrMalformedHandoff, err)
	}
	if err := codec.Unmarshal(data, &h); err != nil {
		return h, fmt.Errorf("%w: %s", ErrMalformedHandoff, err)
	}
	return h, nil
}
