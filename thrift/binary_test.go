package thrift

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPingRoundTrip(t *testing.T) {
	w := NewBinaryWriter()
	defer w.Release()

	require.NoError(t, w.WriteMessageBegin("ping", CALL, 1))
	require.NoError(t, w.WriteStructBegin())
	require.NoError(t, w.WriteFieldStop())
	require.NoError(t, w.WriteStructEnd())
	require.NoError(t, w.WriteMessageEnd())
	require.Equal(t, 0, w.Pending())

	// The writer emits the Binary message only; a framed length prefix is
	// the framed package's job and is not part of w.Bytes().
	want := []byte{
		0x80, 0x01, 0x00, 0x01,
		0x00, 0x00, 0x00, 0x04, 'p', 'i', 'n', 'g',
		0x00, 0x00, 0x00, 0x01,
		0x00,
	}
	assert.Equal(t, want, w.Bytes())

	r := NewBinaryReader(w.Bytes())
	defer r.Release()
	ident, err := r.ReadMessageBegin()
	require.NoError(t, err)
	assert.Equal(t, "ping", ident.Name.String())
	assert.Equal(t, CALL, ident.Type)
	assert.EqualValues(t, 1, ident.SeqID)

	fid, err := r.ReadFieldBegin()
	require.NoError(t, err)
	assert.Equal(t, STOP, fid.Type)
}

func TestBadVersion(t *testing.T) {
	r := NewBinaryReader([]byte{0x00, 0x00, 0x00, 0x01})
	defer r.Release()
	_, err := r.ReadMessageBegin()
	require.Error(t, err)
	ce, ok := err.(*CodecError)
	require.True(t, ok)
	assert.Equal(t, KindBadVersion, ce.Kind)
}

func TestBadVersionMaskMismatch(t *testing.T) {
	r := NewBinaryReader([]byte{0x80, 0x02, 0x00, 0x01})
	defer r.Release()
	_, err := r.ReadMessageBegin()
	require.Error(t, err)
	ce, ok := err.(*CodecError)
	require.True(t, ok)
	assert.Equal(t, KindBadVersion, ce.Kind)
}

func TestTypeTagClosure(t *testing.T) {
	for _, b := range []byte{5, 7, 9, 17, 200} {
		assert.False(t, ValidType(b), "byte %d must not validate as a type tag", b)
		r := NewBinaryReader([]byte{b, 0, 0})
		_, err := r.ReadFieldBegin()
		require.Error(t, err)
		ce, ok := err.(*CodecError)
		require.True(t, ok)
		assert.Equal(t, KindInvalidData, ce.Kind)
		r.Release()
	}
}

func TestUTF8Gate(t *testing.T) {
	bad := []byte{0xff, 0xfe, 0xfd}
	buf := make([]byte, 4+len(bad))
	buf[3] = byte(len(bad))
	copy(buf[4:], bad)

	r := NewBinaryReader(buf)
	_, err := r.ReadString()
	require.Error(t, err)
	ce, ok := err.(*CodecError)
	require.True(t, ok)
	assert.Equal(t, KindInvalidData, ce.Kind)
	r.Release()

	r2 := NewBinaryReader(buf)
	b, err := r2.ReadBinary()
	require.NoError(t, err)
	assert.Equal(t, bad, b)
	r2.Release()
}

func TestSkipEquivalence(t *testing.T) {
	w := NewBinaryWriter()
	require.NoError(t, w.WriteStructBegin())
	require.NoError(t, w.WriteFieldBegin(MAP, 7))
	require.NoError(t, w.WriteMapBegin(I32, LIST))
	require.NoError(t, w.WriteI32(42))
	require.NoError(t, w.WriteListBegin(I16))
	require.NoError(t, w.WriteI16(10))
	require.NoError(t, w.WriteI16(20))
	require.NoError(t, w.WriteI16(30))
	require.NoError(t, w.WriteListEnd(3))
	require.NoError(t, w.WriteMapEnd(1))
	require.NoError(t, w.WriteFieldEnd())
	require.NoError(t, w.WriteFieldStop())
	require.NoError(t, w.WriteStructEnd())
	require.Equal(t, 0, w.Pending())

	trailing := []byte{0xAA, 0xBB, 0xCC}
	encoded := append(append([]byte{}, w.Bytes()...), trailing...)
	w.Release()

	r := NewBinaryReader(encoded)
	require.NoError(t, r.Skip(STRUCT))
	rest, err := r.ReadBinary2()
	require.NoError(t, err)
	assert.Equal(t, trailing, rest)
}

// ReadBinary2 reads all remaining bytes in the reader; a tiny test helper,
// not part of the public surface.
func (r *BinaryReader) ReadBinary2() ([]byte, error) {
	var out []byte
	for {
		b, err := r.next(1)
		if err != nil {
			return out, nil
		}
		out = append(out, b[0])
	}
}

func TestTruncatedMap(t *testing.T) {
	// map<i32,i32> size=2 (kt=08 vt=08, size=00000002) followed by only 4
	// bytes of entry data; Skip(MAP) is handed the collection header
	// directly, the same way ReadFieldBegin would hand it a field's type
	// before delegating to Skip.
	buf := []byte{0x08, 0x08, 0x00, 0x00, 0x00, 0x02, 0x00, 0x00, 0x00, 0x01}
	r := NewBinaryReader(buf)
	defer r.Release()
	err := r.Skip(MAP)
	require.Error(t, err)
	ce, ok := err.(*CodecError)
	require.True(t, ok)
	assert.Equal(t, KindInvalidData, ce.Kind)
}

func TestSkipDeepNesting(t *testing.T) {
	// A single list nested depth levels deep, each level holding exactly
	// one element, bottoming out in an empty list of I32. Exercises the
	// skip engine's work stack at nesting depth far beyond any host call
	// stack could survive via naive recursion.
	const depth = 10000
	w := NewBinaryWriter()
	defer w.Release()
	require.NoError(t, w.WriteFieldBegin(LIST, 1))
	for i := 0; i < depth; i++ {
		require.NoError(t, w.WriteListBegin(LIST))
	}
	require.NoError(t, w.WriteListBegin(I32))
	require.NoError(t, w.WriteListEnd(0))
	for i := 0; i < depth; i++ {
		require.NoError(t, w.WriteListEnd(1))
	}
	require.NoError(t, w.WriteFieldStop())
	require.Equal(t, 0, w.Pending())

	encoded := append([]byte{}, w.Bytes()...)
	r := NewBinaryReader(encoded)
	defer r.Release()
	require.NoError(t, r.Skip(STRUCT))
}

func TestContainerBackpatch(t *testing.T) {
	w := NewBinaryWriter()
	defer w.Release()
	require.NoError(t, w.WriteMapBegin(STRING, STRING))
	require.NoError(t, w.WriteString("k1"))
	require.NoError(t, w.WriteString("v1"))
	require.NoError(t, w.WriteString("k2"))
	require.NoError(t, w.WriteString("v2"))
	require.NoError(t, w.WriteMapEnd(2))

	buf := w.Bytes()
	assert.EqualValues(t, 2, int32From(buf[2:6]))
}

func TestUnbalancedBackpatchFails(t *testing.T) {
	w := NewBinaryWriter()
	defer w.Release()
	require.NoError(t, w.WriteListBegin(I32))
	err := w.WriteMapEnd(0)
	require.Error(t, err)
}

func int32From(b []byte) int32 {
	return int32(uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]))
}
