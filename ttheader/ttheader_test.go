package ttheader

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeIntKV(t *testing.T) {
	param := EncodeParam{
		SeqID:      42,
		ProtocolID: ProtocolIDThriftBinary,
		IntInfo:    map[uint16]string{uint16(RPCTimeoutMs): "500"},
	}
	frameBytes, err := EncodeToBytes(param, nil)
	require.NoError(t, err)

	assert.Zero(t, (len(frameBytes)-MetaSize)%4, "header region must be padded to a multiple of 4")

	frame, consumed, err := Decode(frameBytes, DefaultLimits)
	require.NoError(t, err)
	assert.Equal(t, len(frameBytes), consumed)
	assert.EqualValues(t, 42, frame.SeqID)
	assert.Equal(t, ProtocolIDThriftBinary, frame.ProtocolID)
	val, ok := frame.IntInfo.Get(uint16(RPCTimeoutMs))
	require.True(t, ok)
	assert.Equal(t, "500", val)
	assert.Empty(t, frame.Payload)
}

func TestEncodeDecodeStrKVAndPayload(t *testing.T) {
	payload := []byte("hello")
	param := EncodeParam{
		SeqID:      7,
		ProtocolID: ProtocolIDThriftBinary,
		StrInfo:    map[string]string{"k": "v"},
	}
	frameBytes, err := EncodeToBytes(param, payload)
	require.NoError(t, err)

	frame, consumed, err := Decode(frameBytes, DefaultLimits)
	require.NoError(t, err)
	assert.Equal(t, len(frameBytes), consumed)
	assert.Equal(t, payload, frame.Payload)
	assert.Equal(t, "v", frame.StrInfo["k"])
}

func TestGDPRTokenUsesACLBlock(t *testing.T) {
	param := EncodeParam{
		SeqID:   1,
		StrInfo: map[string]string{GDPRToken: "tok-123", "other": "val"},
	}
	frameBytes, err := EncodeToBytes(param, nil)
	require.NoError(t, err)

	frame, _, err := Decode(frameBytes, DefaultLimits)
	require.NoError(t, err)
	assert.Equal(t, "tok-123", frame.ACLToken)
	assert.Equal(t, "val", frame.StrInfo["other"])
	_, hasGDPRInStrInfo := frame.StrInfo[GDPRToken]
	assert.False(t, hasGDPRInStrInfo)
}

func TestBadMagicRejected(t *testing.T) {
	frameBytes, err := EncodeToBytes(EncodeParam{}, nil)
	require.NoError(t, err)
	frameBytes[4] = 0xFF // corrupt magic

	_, _, err = Decode(frameBytes, DefaultLimits)
	require.Error(t, err)
}

func TestNeedMoreBytes(t *testing.T) {
	frameBytes, err := EncodeToBytes(EncodeParam{SeqID: 9}, []byte("payload"))
	require.NoError(t, err)

	_, _, err = Decode(frameBytes[:2], DefaultLimits)
	require.Error(t, err)
	nm, ok := err.(*NeedMoreError)
	require.True(t, ok)
	assert.Equal(t, 4, nm.AtLeast)

	_, _, err = Decode(frameBytes[:len(frameBytes)-2], DefaultLimits)
	require.Error(t, err)
	nm, ok = err.(*NeedMoreError)
	require.True(t, ok)
	assert.Equal(t, len(frameBytes), nm.AtLeast)
}

func TestHeaderSizeZeroRejected(t *testing.T) {
	frameBytes, err := EncodeToBytes(EncodeParam{}, nil)
	require.NoError(t, err)
	frameBytes[13] = 0 // force header_size units to 0

	_, _, err = Decode(frameBytes, DefaultLimits)
	require.Error(t, err)
}

func TestStringLengthCapRejected(t *testing.T) {
	limits := Limits{MaxHeaderSize: MaxHeaderSize, MaxInfoStringLen: 4, MaxStrInfoCount: MaxStrInfoCount}
	param := EncodeParam{StrInfo: map[string]string{"k": "this value is far longer than four bytes"}}
	frameBytes, err := EncodeToBytes(param, nil)
	require.NoError(t, err)

	_, _, err = Decode(frameBytes, limits)
	require.Error(t, err)
}
