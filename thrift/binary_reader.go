package thrift

import (
	"encoding/binary"
	"math"
	"sync"
	"unicode/utf8"

	"github.com/cloudwego/gopkg/bufiox"
)

var poolBinaryReader = sync.Pool{
	New: func() any { return &BinaryReader{} },
}

// BinaryReader is the zero-copy synchronous reader over a single, fully
// buffered Thrift message payload. Byte-slice and string reads return views
// into the input buffer; the caller must keep that buffer alive for as long
// as any returned Name, []byte or string from this reader is in use.
type BinaryReader struct {
	in bufiox.Reader
}

// NewBinaryReader returns a BinaryReader over buf. Call Release when done
// with it so the instance can be reused.
func NewBinaryReader(buf []byte) *BinaryReader {
	return NewBinaryReaderFromSource(bufiox.NewBytesReader(buf))
}

// NewBinaryReaderFromSource returns a BinaryReader pulling from an arbitrary
// bufiox.Reader, such as one backed directly by a connection. Borrowed views
// (ReadBinary, ReadString, ReadName) stay valid only until the next read
// advances the underlying source.
func NewBinaryReaderFromSource(in bufiox.Reader) *BinaryReader {
	r := poolBinaryReader.Get().(*BinaryReader)
	r.in = in
	return r
}

// Release returns the reader to the pool. The reader must not be used
// afterward.
func (r *BinaryReader) Release() {
	r.in = nil
	poolBinaryReader.Put(r)
}

func (r *BinaryReader) next(n int) ([]byte, error) {
	b, err := r.in.Next(n)
	if err != nil {
		return nil, invalidDataf("short buffer reading %d bytes: %s", n, err)
	}
	return b, nil
}

// ReadBool reads a single byte, non-zero meaning true.
func (r *BinaryReader) ReadBool() (bool, error) {
	b, err := r.next(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

// ReadByte reads a signed 8-bit integer.
func (r *BinaryReader) ReadByte() (int8, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

// ReadI16 reads a big-endian signed 16-bit integer.
func (r *BinaryReader) ReadI16() (int16, error) {
	b, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

// ReadI32 reads a big-endian signed 32-bit integer.
func (r *BinaryReader) ReadI32() (int32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

// ReadI64 reads a big-endian signed 64-bit integer.
func (r *BinaryReader) ReadI64() (int64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// ReadDouble reads an IEEE-754 double in big-endian byte order.
func (r *BinaryReader) ReadDouble() (float64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

// ReadUUID reads a raw 16-byte value.
func (r *BinaryReader) ReadUUID() ([16]byte, error) {
	var out [16]byte
	b, err := r.next(16)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

func (r *BinaryReader) readLen() (int32, error) {
	n, err := r.ReadI32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errNegativeSize
	}
	return n, nil
}

// ReadBinary returns a zero-copy view of the length-prefixed byte blob.
// Unlike ReadString, the bytes are not validated as UTF-8.
func (r *BinaryReader) ReadBinary() ([]byte, error) {
	n, err := r.readLen()
	if err != nil {
		return nil, err
	}
	return r.next(int(n))
}

// ReadString returns a zero-copy view of the length-prefixed bytes as a
// string. The bytes must be valid UTF-8 in full, or InvalidData is
// returned; an empty string is always accepted.
func (r *BinaryReader) ReadString() (string, error) {
	b, err := r.ReadBinary()
	if err != nil {
		return "", err
	}
	if len(b) > 0 && !utf8.Valid(b) {
		return "", errInvalidUTF8
	}
	return bytesToString(b), nil
}

// ReadName is like ReadString but returns the borrowed-or-owned Name
// wrapper, for callers parsing a message name.
func (r *BinaryReader) ReadName() (Name, error) {
	b, err := r.ReadBinary()
	if err != nil {
		return Name{}, err
	}
	return BorrowName(b), nil
}

// ReadMessageBegin reads the version word, method name and sequence id.
func (r *BinaryReader) ReadMessageBegin() (ident MessageIdent, err error) {
	header, err := r.ReadI32()
	if err != nil {
		return ident, err
	}
	if header > 0 {
		return ident, errMissingVersion
	}
	if uint32(header)&msgVersionMask != msgVersion1 {
		return ident, errBadVersion
	}
	ident.Type = TMessageType(uint32(header) & msgTypeMask)
	ident.Name, err = r.ReadName()
	if err != nil {
		return ident, err
	}
	ident.SeqID, err = r.ReadI32()
	return ident, err
}

// ReadMessageEnd is a no-op; Binary has no message trailer.
func (r *BinaryReader) ReadMessageEnd() error { return nil }

// ReadStructBegin is a no-op; Binary has no struct header.
func (r *BinaryReader) ReadStructBegin() error { return nil }

// ReadStructEnd is a no-op; the Stop byte is consumed by ReadFieldBegin.
func (r *BinaryReader) ReadStructEnd() error { return nil }

// ReadFieldBegin reads one type byte and, unless it is Stop, a 16-bit id.
func (r *BinaryReader) ReadFieldBegin() (ident FieldIdent, err error) {
	b, err := r.next(1)
	if err != nil {
		return ident, err
	}
	if !ValidType(b[0]) {
		return ident, invalidDataf("unknown field type tag %d", b[0])
	}
	ident.Type = TType(b[0])
	if ident.Type == STOP {
		return ident, nil
	}
	ident.ID, err = r.ReadI16()
	return ident, err
}

// ReadFieldEnd is a no-op.
func (r *BinaryReader) ReadFieldEnd() error { return nil }

// ReadMapBegin reads the key type, value type and entry count.
func (r *BinaryReader) ReadMapBegin() (ident MapIdent, err error) {
	b, err := r.next(2)
	if err != nil {
		return ident, err
	}
	if !ValidType(b[0]) || !ValidType(b[1]) {
		return ident, invalidDataf("unknown map element type tag (%d,%d)", b[0], b[1])
	}
	ident.KeyType, ident.ValueType = TType(b[0]), TType(b[1])
	sz, err := r.ReadI32()
	if err != nil {
		return ident, err
	}
	if sz < 0 {
		return ident, errNegativeSize
	}
	ident.Size = sz
	return ident, nil
}

// ReadMapEnd is a no-op.
func (r *BinaryReader) ReadMapEnd() error { return nil }

// ReadListBegin reads the element type and entry count.
func (r *BinaryReader) ReadListBegin() (ident ListIdent, err error) {
	t, sz, err := r.readCollectionBegin()
	ident.Type, ident.Size = t, sz
	return ident, err
}

// ReadListEnd is a no-op.
func (r *BinaryReader) ReadListEnd() error { return nil }

// ReadSetBegin reads the element type and entry count.
func (r *BinaryReader) ReadSetBegin() (ident SetIdent, err error) {
	t, sz, err := r.readCollectionBegin()
	ident.Type, ident.Size = t, sz
	return ident, err
}

// ReadSetEnd is a no-op.
func (r *BinaryReader) ReadSetEnd() error { return nil }

func (r *BinaryReader) readCollectionBegin() (t TType, sz int32, err error) {
	b, err := r.next(1)
	if err != nil {
		return 0, 0, err
	}
	if !ValidType(b[0]) {
		return 0, 0, invalidDataf("unknown element type tag %d", b[0])
	}
	t = TType(b[0])
	sz, err = r.ReadI32()
	if err != nil {
		return t, 0, err
	}
	if sz < 0 {
		return t, 0, errNegativeSize
	}
	return t, sz, nil
}

// Skip consumes exactly one value of type t without materializing it.
func (r *BinaryReader) Skip(t TType) error {
	return Skip(r, t)
}

// SkipAdvance implements SkipSource.
func (r *BinaryReader) SkipAdvance(n int) error {
	_, err := r.next(n)
	return err
}

// SkipByte implements SkipSource.
func (r *BinaryReader) SkipByte() (byte, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// SkipI16 implements SkipSource.
func (r *BinaryReader) SkipI16() (int16, error) { return r.ReadI16() }

// SkipI32 implements SkipSource.
func (r *BinaryReader) SkipI32() (int32, error) { return r.ReadI32() }
