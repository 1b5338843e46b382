package framed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	buf := EncodeBytes([]byte("hello world"))
	payload, consumed, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, len(buf), consumed)
	assert.Equal(t, []byte("hello world"), payload)
}

func TestNeedMorePrefix(t *testing.T) {
	_, _, err := Decode([]byte{0x00, 0x00})
	require.Error(t, err)
	nm, ok := err.(*NeedMoreError)
	require.True(t, ok)
	assert.Equal(t, 4, nm.AtLeast)
}

func TestNeedMoreBody(t *testing.T) {
	buf := EncodeBytes([]byte("hello world"))
	_, _, err := Decode(buf[:6])
	require.Error(t, err)
	nm, ok := err.(*NeedMoreError)
	require.True(t, ok)
	assert.Equal(t, len(buf), nm.AtLeast)
}

func TestNonPositiveLengthRejected(t *testing.T) {
	buf := []byte{0x00, 0x00, 0x00, 0x00}
	_, _, err := Decode(buf)
	require.Error(t, err)

	buf2 := []byte{0xFF, 0xFF, 0xFF, 0xFF} // -1 as signed big-endian
	_, _, err = Decode(buf2)
	require.Error(t, err)
}

type fakeEncoder struct{ b []byte }

func (f fakeEncoder) EncodePayload() ([]byte, error) { return f.b, nil }

func TestEncodeComposesInnerEncoder(t *testing.T) {
	buf, err := Encode(fakeEncoder{b: []byte("abc")})
	require.NoError(t, err)
	payload, _, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), payload)
}
