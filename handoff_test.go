package selfstore

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandoff_EncodeDecode(t *testing.T) {
	for _, h := range []Handoff{
		{Mode: ModeUpdateOrig, TwinPath: "/opt/app/app", TwinPID: 4711},
		{Mode: ModeKillEvilTwin, TwinPath: `C:\Program Files\app\evil_twin.exe`, TwinPID: 1},
		{},
	} {
		enc, err := h.Encode()
		require.NoError(t, err)
		assert.NotContains(t, enc, "=")

		got, err := DecodeHandoff(enc)
		require.NoError(t, err)
		assert.Equal(t, h, got)
	}
}

func TestDecodeHandoff_malformed(t *testing.T) {
	for _, s := range []string{"not base64!", "_w"} {
		_, err := DecodeHandoff(s)
		assert.True(t, errors.Is(err, ErrMalformedHandoff), s)
	}
}

func TestHandoff_Validate(t *testing.T) {
	assert.NoError(t, Handoff{}.Validate())
	assert.NoError(t, Handoff{Mode: "SOMETHING_ELSE"}.Validate())
	assert.NoError(t, Handoff{Mode: ModeUpdateOrig, TwinPath: "a", TwinPID: 3}.Validate())

	err := Handoff{Mode: ModeUpdateOrig, TwinPID: 3}.Validate()
	assert.True(t, errors.Is(err, ErrMalformedHandoff))
	assert.EqualError(t, err, "malformed handoff state: UPDATE_ORIG without twin path")

	err = Handoff{Mode: ModeKillEvilTwin, TwinPath: "a"}.Validate()
	assert.EqualError(t, err, "malformed handoff state: KILL_EVIL_TWIN with invalid twin pid 0")
}

func TestMode_Active(t *testing.T) {
	assert.True(t, ModeUpdateOrig.Active())
	assert.True(t, ModeKillEvilTwin.Active())
	assert.False(t, ModeNone.Active())
	assert.False(t, Mode("update_orig").Active())
}

func TestWithoutHandoff(t *testing.T) {
	env := []string{"PATH=/bin", EnvHandoff + "=abc", "HOME=/root", EnvHandoff + "X=keep"}
	assert.Equal(t, []string{"PATH=/bin", "HOME=/root", EnvHandoff + "X=keep"}, withoutHandoff(env))
}

func TestInit_normalStartup(t *testing.T) {
	t.Setenv(EnvHandoff, "")
	assert.NoError(t, Init(WithLogger(discardLogger())))
}

func TestInit_unknownMode(t *testing.T) {
	enc, err := Handoff{Mode: "UPGRADE_EVERYTHING", TwinPath: "x", TwinPID: 1}.Encode()
	require.NoError(t, err)
	t.Setenv(EnvHandoff, enc)

	assert.NoError(t, Init(WithLogger(discardLogger())))
	_, stillSet := os.LookupEnv(EnvHandoff)
	assert.False(t, stillSet, "handoff must be consumed")
}

func TestInit_malformed(t *testing.T) {
	t.Setenv(EnvHandoff, "%%%")

	err := Init(WithLogger(discardLogger()))
	var e *Error
	require.True(t, errors.As(err, &e))
	assert.Equal(t, OpDecode, e.Op)
	assert.True(t, errors.Is(err, ErrMalformedHandoff))
}

func TestInit_activeModeMissingFields(t *testing.T) {
	enc, err := Handoff{Mode: ModeUpdateOrig}.Encode()
	require.NoError(t, err)

	sys := newFakeSystem("/app", 10)
	sys.env[EnvHandoff] = enc

	err = Init(WithLogger(discardLogger()), withSystem(sys))
	assert.True(t, errors.Is(err, ErrMalformedHandoff))
	assert.Empty(t, sys.log.terminated)
	assert.Empty(t, sys.log.exits)
}
