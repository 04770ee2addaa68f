package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type message struct {
	Name  string `cbor:"1,keyasint"`
	Count int    `cbor:"2,keyasint"`
}

func TestMarshal_deterministic(t *testing.T) {
	a, err := Marshal(message{Name: "x", Count: 3})
	require.NoError(t, err)
	b, err := Marshal(message{Name: "x", Count: 3})
	require.NoError(t, err)
	assert.Equal(t, a, b)

	var got message
	require.NoError(t, Unmarshal(a, &got))
	assert.Equal(t, message{Name: "x", Count: 3}, got)
}

func TestUnmarshal_duplicateKey(t *testing.T) {
	// map{1: "a", 1: "b"}
	data := []byte{0xa2, 0x01, 0x61, 'a', 0x01, 0x61, 'b'}
	var got message
	assert.Error(t, Unmarshal(data, &got))
}

func TestUnmarshal_garbage(t *testing.T) {
	var got message
	assert.Error(t, Unmarshal([]byte{0xff, 0x00}, &got))
}
