package thriftx

import (
	"testing"

	"github.com/cloudwego/gopkg/xbuf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitex-contrib/thriftcodec/thrift"
)

func TestSkipPreservesBytes(t *testing.T) {
	w := thrift.NewBinaryWriter()
	defer w.Release()
	require.NoError(t, w.WriteMapBegin(thrift.I32, thrift.STRING))
	require.NoError(t, w.WriteI32(1))
	require.NoError(t, w.WriteString("one"))
	require.NoError(t, w.WriteMapEnd(1))
	require.Equal(t, 0, w.Pending())

	encoded := append([]byte{}, w.Bytes()...)
	b := xbuf.NewXReadBuffer(encoded)

	var uf UnknownFields
	require.NoError(t, Skip(b, &uf, thrift.MAP))
	assert.Equal(t, encoded, uf.Bytes())
}

func TestSkipRejectsInvalidMapKeyType(t *testing.T) {
	// kt=0x05 (gap, never a valid tag), vt=I32, size=0
	buf := []byte{0x05, 0x08, 0x00, 0x00, 0x00, 0x00}
	b := xbuf.NewXReadBuffer(buf)

	err := Skip(b, nil, thrift.MAP)
	require.Error(t, err)
	ce, ok := err.(*thrift.CodecError)
	require.True(t, ok)
	assert.Equal(t, thrift.KindInvalidData, ce.Kind)
}

func TestSkipRejectsInvalidListElementType(t *testing.T) {
	// vt=0x09 (gap), size=0
	buf := []byte{0x09, 0x00, 0x00, 0x00, 0x00}
	b := xbuf.NewXReadBuffer(buf)

	err := Skip(b, nil, thrift.LIST)
	require.Error(t, err)
	ce, ok := err.(*thrift.CodecError)
	require.True(t, ok)
	assert.Equal(t, thrift.KindInvalidData, ce.Kind)
}

func TestSkipRejectsInvalidFieldType(t *testing.T) {
	// field type tag 0x11 (17, out of range) before any field id bytes
	buf := []byte{0x11}
	b := xbuf.NewXReadBuffer(buf)

	err := Skip(b, nil, thrift.STRUCT)
	require.Error(t, err)
	ce, ok := err.(*thrift.CodecError)
	require.True(t, ok)
	assert.Equal(t, thrift.KindInvalidData, ce.Kind)
}

func TestSkipRejectsInvalidTopLevelType(t *testing.T) {
	err := Skip(xbuf.NewXReadBuffer(nil), nil, thrift.TType(7))
	require.Error(t, err)
	ce, ok := err.(*thrift.CodecError)
	require.True(t, ok)
	assert.Equal(t, thrift.KindInvalidData, ce.Kind)
}
