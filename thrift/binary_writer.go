package thrift

import (
	"encoding/binary"
	"math"
	"sync"

	"github.com/cloudwego/gopkg/bufiox"
)

var poolBinaryWriter = sync.Pool{
	New: func() any { return &BinaryWriter{} },
}

// BinaryWriter is the synchronous writer over a growable byte buffer that
// the writer itself owns. Containers use a deferred-length backpatch stack: *_begin records
// the offset of a 4-byte placeholder, *_end(n) overwrites it once the
// element count is known.
type BinaryWriter struct {
	buf       []byte
	out       bufiox.Writer
	backpatch []int
}

// NewBinaryWriter returns a writer with an empty internal buffer. Call
// Release when finished to reuse the instance; call Bytes to retrieve the
// encoded bytes (Flush is a no-op here since the writer owns the buffer
// outright).
func NewBinaryWriter() *BinaryWriter {
	w := poolBinaryWriter.Get().(*BinaryWriter)
	w.buf = w.buf[:0]
	w.backpatch = w.backpatch[:0]
	w.out = bufiox.NewBytesWriter(&w.buf)
	return w
}

// Release returns the writer to the pool. Must not be used afterward.
func (w *BinaryWriter) Release() {
	w.out = nil
	poolBinaryWriter.Put(w)
}

// Bytes returns the buffer written so far.
func (w *BinaryWriter) Bytes() []byte { return w.buf }

func (w *BinaryWriter) malloc(n int) []byte {
	b, _ := w.out.Malloc(n) // BytesWriter never fails to grow
	return b
}

// WriteBool writes a single byte, 1 for true, 0 for false.
func (w *BinaryWriter) WriteBool(v bool) error {
	b := w.malloc(1)
	if v {
		b[0] = 1
	} else {
		b[0] = 0
	}
	return nil
}

// WriteByte writes a signed 8-bit integer.
func (w *BinaryWriter) WriteByte(v int8) error {
	w.malloc(1)[0] = byte(v)
	return nil
}

// WriteI16 writes a big-endian signed 16-bit integer.
func (w *BinaryWriter) WriteI16(v int16) error {
	binary.BigEndian.PutUint16(w.malloc(2), uint16(v))
	return nil
}

// WriteI32 writes a big-endian signed 32-bit integer.
func (w *BinaryWriter) WriteI32(v int32) error {
	binary.BigEndian.PutUint32(w.malloc(4), uint32(v))
	return nil
}

// WriteI64 writes a big-endian signed 64-bit integer.
func (w *BinaryWriter) WriteI64(v int64) error {
	binary.BigEndian.PutUint64(w.malloc(8), uint64(v))
	return nil
}

// WriteDouble writes an IEEE-754 double in big-endian byte order.
func (w *BinaryWriter) WriteDouble(v float64) error {
	binary.BigEndian.PutUint64(w.malloc(8), math.Float64bits(v))
	return nil
}

// WriteUUID writes a raw 16-byte value.
func (w *BinaryWriter) WriteUUID(v [16]byte) error {
	copy(w.malloc(16), v[:])
	return nil
}

// WriteBinary writes a 4-byte length prefix followed by v.
func (w *BinaryWriter) WriteBinary(v []byte) error {
	binary.BigEndian.PutUint32(w.malloc(4), uint32(len(v)))
	copy(w.malloc(len(v)), v)
	return nil
}

// WriteString writes a 4-byte length prefix followed by the string bytes,
// without copying s through an intermediate []byte.
func (w *BinaryWriter) WriteString(s string) error {
	binary.BigEndian.PutUint32(w.malloc(4), uint32(len(s)))
	copy(w.malloc(len(s)), stringToBytes(s))
	return nil
}

// WriteMessageBegin writes the version word, method name and sequence id.
func (w *BinaryWriter) WriteMessageBegin(name string, typeID TMessageType, seqID int32) error {
	if err := w.WriteI32(int32(uint32(msgVersion1) | uint32(typeID)&msgTypeMask)); err != nil {
		return err
	}
	if err := w.WriteString(name); err != nil {
		return err
	}
	return w.WriteI32(seqID)
}

// WriteMessageEnd is a no-op.
func (w *BinaryWriter) WriteMessageEnd() error { return nil }

// WriteStructBegin is a no-op; Binary has no struct header.
func (w *BinaryWriter) WriteStructBegin() error { return nil }

// WriteStructEnd is a no-op; callers must still call WriteFieldStop.
func (w *BinaryWriter) WriteStructEnd() error { return nil }

// WriteFieldBegin writes the type byte and 16-bit field id.
func (w *BinaryWriter) WriteFieldBegin(typeID TType, id int16) error {
	w.malloc(1)[0] = byte(typeID)
	return w.WriteI16(id)
}

// WriteFieldEnd is a no-op.
func (w *BinaryWriter) WriteFieldEnd() error { return nil }

// WriteFieldStop writes a single Stop byte, terminating the field stream.
func (w *BinaryWriter) WriteFieldStop() error {
	w.malloc(1)[0] = byte(STOP)
	return nil
}

func (w *BinaryWriter) beginContainer() {
	w.backpatch = append(w.backpatch, len(w.buf))
	w.malloc(4) // placeholder, patched by the matching *_end
}

func (w *BinaryWriter) endContainer(n int32) error {
	if len(w.backpatch) == 0 {
		return errUnbalancedBackpatch
	}
	off := w.backpatch[len(w.backpatch)-1]
	w.backpatch = w.backpatch[:len(w.backpatch)-1]
	binary.BigEndian.PutUint32(w.buf[off:off+4], uint32(n))
	return nil
}

// WriteMapBegin writes the key/value type bytes and reserves a backpatch
// slot for the entry count.
func (w *BinaryWriter) WriteMapBegin(kt, vt TType) error {
	b := w.malloc(2)
	b[0], b[1] = byte(kt), byte(vt)
	w.beginContainer()
	return nil
}

// WriteMapEnd patches the reserved slot with size.
func (w *BinaryWriter) WriteMapEnd(size int32) error { return w.endContainer(size) }

// WriteListBegin writes the element type byte and reserves a backpatch slot.
func (w *BinaryWriter) WriteListBegin(et TType) error {
	w.malloc(1)[0] = byte(et)
	w.beginContainer()
	return nil
}

// WriteListEnd patches the reserved slot with size.
func (w *BinaryWriter) WriteListEnd(size int32) error { return w.endContainer(size) }

// WriteSetBegin writes the element type byte and reserves a backpatch slot.
func (w *BinaryWriter) WriteSetBegin(et TType) error {
	w.malloc(1)[0] = byte(et)
	w.beginContainer()
	return nil
}

// WriteSetEnd patches the reserved slot with size.
func (w *BinaryWriter) WriteSetEnd(size int32) error { return w.endContainer(size) }

// Flush is a no-op: the writer appends to memory it owns outright.
func (w *BinaryWriter) Flush() error { return nil }

// Pending reports the number of unmatched *_begin calls still awaiting a
// matching *_end. A well-formed top-level encode leaves this at 0.
func (w *BinaryWriter) Pending() int { return len(w.backpatch) }
