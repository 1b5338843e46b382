package asyncthrift

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kitex-contrib/thriftcodec/thrift"
)

// oneByteSource hands back one byte of data per call, regardless of how
// much space the caller offered, to exercise the refill loop under the
// most adversarial chunking.
type oneByteSource struct {
	data []byte
	pos  int
}

func (s *oneByteSource) FillNext(ctx context.Context, tail []byte) (int, error) {
	if s.pos >= len(s.data) {
		return 0, nil
	}
	tail[0] = s.data[s.pos]
	s.pos++
	return 1, nil
}

func buildPingMessage(t *testing.T) []byte {
	t.Helper()
	w := thrift.NewBinaryWriter()
	defer w.Release()
	require.NoError(t, w.WriteMessageBegin("ping", thrift.CALL, 1))
	require.NoError(t, w.WriteFieldStop())
	return append([]byte{}, w.Bytes()...)
}

func TestAsyncChunkedRead(t *testing.T) {
	msg := buildPingMessage(t)
	require.Len(t, msg, 17)

	r := NewReader(context.Background(), &oneByteSource{data: msg})
	ident, err := r.ReadMessageBegin()
	require.NoError(t, err)
	assert.Equal(t, "ping", ident.Name.String())
	assert.Equal(t, thrift.CALL, ident.Type)
	assert.EqualValues(t, 1, ident.SeqID)

	fid, err := r.ReadFieldBegin()
	require.NoError(t, err)
	assert.Equal(t, thrift.STOP, fid.Type)
	r.Release()
}

func TestAsyncSkipMatchesSyncSkip(t *testing.T) {
	sw := thrift.NewBinaryWriter()
	require.NoError(t, sw.WriteFieldBegin(thrift.MAP, 7))
	require.NoError(t, sw.WriteMapBegin(thrift.I32, thrift.LIST))
	require.NoError(t, sw.WriteI32(42))
	require.NoError(t, sw.WriteListBegin(thrift.I16))
	require.NoError(t, sw.WriteI16(10))
	require.NoError(t, sw.WriteI16(20))
	require.NoError(t, sw.WriteI16(30))
	require.NoError(t, sw.WriteListEnd(3))
	require.NoError(t, sw.WriteMapEnd(1))
	require.NoError(t, sw.WriteFieldStop())
	encoded := append([]byte{}, sw.Bytes()...)
	sw.Release()

	trailing := []byte{0xAA, 0xBB}
	withTrailing := append(append([]byte{}, encoded...), trailing...)

	r := NewReader(context.Background(), &oneByteSource{data: withTrailing})
	require.NoError(t, r.Skip(thrift.STRUCT))

	var rest []byte
	for {
		b, err := r.next(1)
		if err != nil {
			break
		}
		rest = append(rest, b[0])
	}
	assert.Equal(t, trailing, rest)
	r.Release()
}

func TestAsyncUnexpectedEOF(t *testing.T) {
	r := NewReader(context.Background(), &oneByteSource{data: []byte{0x00, 0x00}})
	_, err := r.ReadI32()
	require.Error(t, err)
	ce, ok := err.(*thrift.CodecError)
	require.True(t, ok)
	assert.Equal(t, thrift.KindIO, ce.Kind)
	r.Release()
}
