// Package framed implements the degenerate transport envelope: a 4-byte
// big-endian signed length prefix followed by that many payload bytes.
package framed

import (
	"encoding/binary"
	"fmt"

	"github.com/kitex-contrib/thriftcodec/thrift"
)

// NeedMoreError signals buf does not yet contain a complete frame.
type NeedMoreError struct {
	AtLeast int
}

func (e *NeedMoreError) Error() string {
	return fmt.Sprintf("framed: need at least %d bytes", e.AtLeast)
}

// Decode parses one framed message from the front of buf, returning the
// payload (a view into buf) and the number of bytes consumed, or a
// *NeedMoreError if buf is incomplete.
func Decode(buf []byte) (payload []byte, consumed int, err error) {
	if len(buf) < 4 {
		return nil, 0, &NeedMoreError{AtLeast: 4}
	}
	n := int32(binary.BigEndian.Uint32(buf[0:4]))
	if n <= 0 {
		return nil, 0, thrift.NewCodecError(thrift.KindInvalidData, fmt.Sprintf("framed: non-positive length %d", n))
	}
	total := 4 + int(n)
	if len(buf) < total {
		return nil, 0, &NeedMoreError{AtLeast: total}
	}
	return buf[4:total], total, nil
}

// PayloadEncoder produces the bytes to frame.
type PayloadEncoder interface {
	EncodePayload() ([]byte, error)
}

// Encode invokes enc, then returns its payload prefixed with the payload's
// size as a 4-byte big-endian length.
func Encode(enc PayloadEncoder) ([]byte, error) {
	payload, err := enc.EncodePayload()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(payload)))
	copy(buf[4:], payload)
	return buf, nil
}

// EncodeBytes is Encode for callers that already have the payload bytes.
func EncodeBytes(payload []byte) []byte {
	buf := make([]byte, 4+len(payload))
	binary.BigEndian.PutUint32(buf[0:4], uint32(len(payload)))
	copy(buf[4:], payload)
	return buf
}
