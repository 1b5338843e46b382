// Package asyncthrift implements the asynchronous Binary protocol reader:
// the same wire semantics as thrift.BinaryReader, but pulling bytes from a
// ByteSource on demand instead of operating over a single fully-buffered
// slice. Every blocking call in this package may suspend on I/O; a
// cancelled or errored Reader must be discarded, never reused.
package asyncthrift

import (
	"context"
	"encoding/binary"
	"io"
	"math"
	"unicode/utf8"

	"github.com/bytedance/gopkg/lang/dirtmake"
	"github.com/bytedance/gopkg/lang/mcache"

	"github.com/kitex-contrib/thriftcodec/thrift"
)

// minRefill is the minimum number of bytes reserved on a single refill, to
// amortize the syscall cost of small reads.
const minRefill = 4096

// ByteSource is the single primitive the async reader needs from its
// transport: fill some prefix of tail and report how many bytes were
// written. Zero bytes written with a nil error means end of input.
type ByteSource interface {
	FillNext(ctx context.Context, tail []byte) (n int, err error)
}

// Reader is the asynchronous Binary protocol reader. It owns its internal
// buffer; byte-slice and string reads return private copies, since the
// internal buffer may be grown or recycled across suspension points.
type Reader struct {
	ctx context.Context
	src ByteSource
	buf []byte
	off int
}

// NewReader returns a Reader pulling from src, suspending (blocking the
// calling goroutine) through ctx whenever it must refill.
func NewReader(ctx context.Context, src ByteSource) *Reader {
	return &Reader{ctx: ctx, src: src}
}

// Release recycles the reader's internal buffer. The reader must not be
// used afterward; a cancelled or errored reader must always be released,
// never reused, since its parse position is no longer trustworthy.
func (r *Reader) Release() {
	if cap(r.buf) > 0 {
		mcache.Free(r.buf[:cap(r.buf)])
	}
	r.buf, r.off, r.src = nil, 0, nil
}

// ensure guarantees at least n unread bytes are buffered, refilling from
// src as needed. This is the only suspension point in the reader.
func (r *Reader) ensure(n int) error {
	have := len(r.buf) - r.off
	if have >= n {
		return nil
	}
	toRead := n - have
	reserve := toRead
	if reserve < minRefill {
		reserve = minRefill
	}

	if r.off > 0 {
		copy(r.buf, r.buf[r.off:])
		r.buf = r.buf[:have]
		r.off = 0
	}
	if cap(r.buf)-len(r.buf) < reserve {
		grown := dirtmake.Bytes(len(r.buf), len(r.buf)+reserve)
		copy(grown, r.buf)
		if cap(r.buf) > 0 {
			mcache.Free(r.buf[:cap(r.buf)])
		}
		r.buf = grown
	}

	for len(r.buf)-r.off < n {
		tail := r.buf[len(r.buf):cap(r.buf)]
		read, err := r.src.FillNext(r.ctx, tail)
		if read == 0 && err == nil {
			err = io.ErrUnexpectedEOF
		}
		if err != nil {
			return thrift.WrapIOError(err)
		}
		r.buf = r.buf[:len(r.buf)+read]
	}
	return nil
}

func (r *Reader) next(n int) ([]byte, error) {
	if err := r.ensure(n); err != nil {
		return nil, err
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b, nil
}

// ReadBool reads a single byte, non-zero meaning true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.next(1)
	if err != nil {
		return false, err
	}
	return b[0] != 0, nil
}

// ReadByte reads a signed 8-bit integer.
func (r *Reader) ReadByte() (int8, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return int8(b[0]), nil
}

// ReadI16 reads a big-endian signed 16-bit integer.
func (r *Reader) ReadI16() (int16, error) {
	b, err := r.next(2)
	if err != nil {
		return 0, err
	}
	return int16(binary.BigEndian.Uint16(b)), nil
}

// ReadI32 reads a big-endian signed 32-bit integer.
func (r *Reader) ReadI32() (int32, error) {
	b, err := r.next(4)
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

// ReadI64 reads a big-endian signed 64-bit integer.
func (r *Reader) ReadI64() (int64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

// ReadDouble reads an IEEE-754 double in big-endian byte order.
func (r *Reader) ReadDouble() (float64, error) {
	b, err := r.next(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b)), nil
}

// ReadUUID reads a raw 16-byte value.
func (r *Reader) ReadUUID() ([16]byte, error) {
	var out [16]byte
	b, err := r.next(16)
	if err != nil {
		return out, err
	}
	copy(out[:], b)
	return out, nil
}

func (r *Reader) readLen() (int32, error) {
	n, err := r.ReadI32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, thrift.NewCodecError(thrift.KindInvalidData, "negative collection size")
	}
	return n, nil
}

// ReadBinary returns an owned copy of the length-prefixed byte blob.
func (r *Reader) ReadBinary() ([]byte, error) {
	n, err := r.readLen()
	if err != nil {
		return nil, err
	}
	b, err := r.next(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// ReadString returns an owned copy of the length-prefixed bytes as a
// string, validated as UTF-8.
func (r *Reader) ReadString() (string, error) {
	n, err := r.readLen()
	if err != nil {
		return "", err
	}
	b, err := r.next(int(n))
	if err != nil {
		return "", err
	}
	if len(b) > 0 && !utf8.Valid(b) {
		return "", thrift.NewCodecError(thrift.KindInvalidData, "invalid utf-8 in string")
	}
	return string(b), nil
}

// ReadName is like ReadString but returns the owned Name wrapper.
func (r *Reader) ReadName() (thrift.Name, error) {
	n, err := r.readLen()
	if err != nil {
		return thrift.Name{}, err
	}
	b, err := r.next(int(n))
	if err != nil {
		return thrift.Name{}, err
	}
	return thrift.OwnName(b), nil
}

// ReadMessageBegin reads the version word, method name and sequence id.
func (r *Reader) ReadMessageBegin() (ident thrift.MessageIdent, err error) {
	header, err := r.ReadI32()
	if err != nil {
		return ident, err
	}
	if header > 0 {
		return ident, thrift.NewCodecError(thrift.KindBadVersion, "missing version")
	}
	if uint32(header)&0xffff0000 != 0x80010000 {
		return ident, thrift.NewCodecError(thrift.KindBadVersion, "bad version in read_message_begin")
	}
	ident.Type = thrift.TMessageType(uint32(header) & 0x0000ffff)
	ident.Name, err = r.ReadName()
	if err != nil {
		return ident, err
	}
	ident.SeqID, err = r.ReadI32()
	return ident, err
}

// ReadMessageEnd is a no-op; the Binary protocol carries no message trailer.
func (r *Reader) ReadMessageEnd() error { return nil }

// ReadStructBegin is a no-op; the Binary protocol carries no struct header.
func (r *Reader) ReadStructBegin() error { return nil }

// ReadStructEnd is a no-op.
func (r *Reader) ReadStructEnd() error { return nil }

// ReadFieldBegin reads one type byte and, unless it is Stop, a 16-bit id.
func (r *Reader) ReadFieldBegin() (ident thrift.FieldIdent, err error) {
	b, err := r.next(1)
	if err != nil {
		return ident, err
	}
	if !thrift.ValidType(b[0]) {
		return ident, thrift.NewCodecError(thrift.KindInvalidData, "unknown field type tag")
	}
	ident.Type = thrift.TType(b[0])
	if ident.Type == thrift.STOP {
		return ident, nil
	}
	ident.ID, err = r.ReadI16()
	return ident, err
}

// ReadFieldEnd is a no-op.
func (r *Reader) ReadFieldEnd() error { return nil }

// ReadMapBegin reads the key type, value type and entry count.
func (r *Reader) ReadMapBegin() (ident thrift.MapIdent, err error) {
	b, err := r.next(2)
	if err != nil {
		return ident, err
	}
	if !thrift.ValidType(b[0]) || !thrift.ValidType(b[1]) {
		return ident, thrift.NewCodecError(thrift.KindInvalidData, "unknown map element type tag")
	}
	ident.KeyType, ident.ValueType = thrift.TType(b[0]), thrift.TType(b[1])
	ident.Size, err = r.readLen()
	return ident, err
}

// ReadMapEnd is a no-op.
func (r *Reader) ReadMapEnd() error { return nil }

// ReadListBegin reads the element type and entry count.
func (r *Reader) ReadListBegin() (ident thrift.ListIdent, err error) {
	t, sz, err := r.readCollectionBegin()
	ident.Type, ident.Size = t, sz
	return ident, err
}

// ReadListEnd is a no-op.
func (r *Reader) ReadListEnd() error { return nil }

// ReadSetBegin reads the element type and entry count.
func (r *Reader) ReadSetBegin() (ident thrift.SetIdent, err error) {
	t, sz, err := r.readCollectionBegin()
	ident.Type, ident.Size = t, sz
	return ident, err
}

// ReadSetEnd is a no-op.
func (r *Reader) ReadSetEnd() error { return nil }

func (r *Reader) readCollectionBegin() (t thrift.TType, sz int32, err error) {
	b, err := r.next(1)
	if err != nil {
		return 0, 0, err
	}
	if !thrift.ValidType(b[0]) {
		return 0, 0, thrift.NewCodecError(thrift.KindInvalidData, "unknown element type tag")
	}
	t = thrift.TType(b[0])
	sz, err = r.readLen()
	return t, sz, err
}

// Skip consumes exactly one value of type t without materializing it,
// suspending on refill as needed. skip_message (consuming a full message:
// version, name, seqid, then a Struct skip) is Skip(STRUCT) composed with
// ReadMessageBegin by the caller, matching the synchronous path.
func (r *Reader) Skip(t thrift.TType) error {
	return thrift.Skip(r, t)
}

// SkipAdvance implements thrift.SkipSource.
func (r *Reader) SkipAdvance(n int) error {
	_, err := r.next(n)
	return err
}

// SkipByte implements thrift.SkipSource.
func (r *Reader) SkipByte() (byte, error) {
	b, err := r.next(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// SkipI16 implements thrift.SkipSource.
func (r *Reader) SkipI16() (int16, error) { return r.ReadI16() }

// SkipI32 implements thrift.SkipSource.
func (r *Reader) SkipI32() (int32, error) { return r.ReadI32() }
