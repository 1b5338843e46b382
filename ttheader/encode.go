package ttheader

import (
	"encoding/binary"
	"fmt"

	"github.com/cloudwego/gopkg/bufiox"
)

// EncodeParam configures a single TTHeader frame encode.
type EncodeParam struct {
	// Flags is the header flags word; default 0.
	Flags HeaderFlags

	// SeqID must be unique per request/response on a connection.
	SeqID int32

	// ProtocolID identifies the payload codec; default ProtocolIDDefault.
	ProtocolID ProtocolID

	// IntInfo is carried in the infoIDIntKeyValue block.
	IntInfo map[uint16]string

	// StrInfo is carried in the infoIDKeyValue block, except for the
	// well-known GDPRToken key which always goes through the dedicated
	// ACL-token block.
	StrInfo map[string]string
}

func writeByte(b byte, out bufiox.Writer) error {
	buf, err := out.Malloc(1)
	if err != nil {
		return err
	}
	buf[0] = b
	return nil
}

func writeUint16(v uint16, out bufiox.Writer) error {
	buf, err := out.Malloc(2)
	if err != nil {
		return err
	}
	binary.BigEndian.PutUint16(buf, v)
	return nil
}

// writeString2BLen writes a 2-byte length prefix followed by s, returning
// the total bytes written.
func writeString2BLen(s string, out bufiox.Writer) (int, error) {
	if len(s) > MaxInfoStringLen {
		return 0, errInvalidData(fmt.Sprintf("ttheader: info string length %d exceeds cap %d", len(s), MaxInfoStringLen))
	}
	buf, err := out.Malloc(2 + len(s))
	if err != nil {
		return 0, err
	}
	binary.BigEndian.PutUint16(buf[:2], uint16(len(s)))
	copy(buf[2:], s)
	return 2 + len(s), nil
}

// EncodeToBytes encodes the TTHeader envelope (header region only, not
// including the payload) followed by payload, returning a complete,
// self-contained frame with total_length already patched in.
func EncodeToBytes(param EncodeParam, payload []byte) ([]byte, error) {
	var buf []byte
	out := bufiox.NewBytesWriter(&buf)

	if _, err := Encode(param, out); err != nil {
		return nil, err
	}
	if _, err := out.Malloc(len(payload)); err != nil {
		return nil, err
	}
	copy(buf[len(buf)-len(payload):], payload)
	if err := out.Flush(); err != nil {
		return nil, err
	}

	totalLen := len(buf) - 4
	binary.BigEndian.PutUint32(buf[0:4], uint32(totalLen))
	return buf, nil
}

// Encode writes the TTHeader header region (meta + info blocks) to out.
// The returned totalLenField aliases the first 4 bytes of the frame;
// callers that stream the payload separately must patch it themselves with
// binary.BigEndian.PutUint32(totalLenField, uint32(totalLen)) once the
// payload has also been written to out, where totalLen is the number of
// bytes written after this 4-byte field (header bytes + payload bytes).
func Encode(param EncodeParam, out bufiox.Writer) (totalLenField []byte, err error) {
	headerMeta, err := out.Malloc(MetaSize)
	if err != nil {
		return nil, fmt.Errorf("ttheader: malloc meta failed: %w", err)
	}
	totalLenField = headerMeta[0:4]
	headerSizeField := headerMeta[12:14]
	binary.BigEndian.PutUint32(headerMeta[4:8], Magic<<16|uint32(param.Flags))
	binary.BigEndian.PutUint32(headerMeta[8:12], uint32(param.SeqID))

	// ProtocolIDThriftBinary == 0, so the zero value of EncodeParam already
	// selects ProtocolIDDefault without any special-casing.
	if err = writeByte(byte(param.ProtocolID), out); err != nil {
		return nil, fmt.Errorf("ttheader: write protocol id failed: %w", err)
	}
	if err = writeByte(0, out); err != nil { // num transforms: always 0, not implemented
		return nil, fmt.Errorf("ttheader: write transform count failed: %w", err)
	}

	headerInfoSize := 2 // protocol id + transform count
	headerInfoSize, err = writeKVInfo(headerInfoSize, param.IntInfo, param.StrInfo, out)
	if err != nil {
		return nil, fmt.Errorf("ttheader: write kv info failed: %w", err)
	}

	if headerInfoSize > MaxHeaderSize {
		return nil, errInvalidData(fmt.Sprintf("ttheader: header length %d exceeds cap %d", headerInfoSize, MaxHeaderSize))
	}
	binary.BigEndian.PutUint16(headerSizeField, uint16(headerInfoSize/4))
	return totalLenField, nil
}

func writeKVInfo(written int, intInfo map[uint16]string, strInfo map[string]string, out bufiox.Writer) (int, error) {
	size := written

	if gdprToken, ok := strInfo[GDPRToken]; ok {
		if err := writeByte(byte(infoIDACLToken), out); err != nil {
			return size, err
		}
		size++
		n, err := writeString2BLen(gdprToken, out)
		if err != nil {
			return size, err
		}
		size += n
	}

	strCount := len(strInfo)
	if _, ok := strInfo[GDPRToken]; ok {
		strCount--
	}
	if strCount > 0 {
		if strCount > MaxStrInfoCount {
			return size, errInvalidData(fmt.Sprintf("ttheader: string kv count %d exceeds cap %d", strCount, MaxStrInfoCount))
		}
		if err := writeByte(byte(infoIDKeyValue), out); err != nil {
			return size, err
		}
		if err := writeUint16(uint16(strCount), out); err != nil {
			return size, err
		}
		size += 3
		for k, v := range strInfo {
			if k == GDPRToken {
				continue
			}
			n, err := writeString2BLen(k, out)
			if err != nil {
				return size, err
			}
			size += n
			n, err = writeString2BLen(v, out)
			if err != nil {
				return size, err
			}
			size += n
		}
	}

	if len(intInfo) > 0 {
		if err := writeByte(byte(infoIDIntKeyValue), out); err != nil {
			return size, err
		}
		if err := writeUint16(uint16(len(intInfo)), out); err != nil {
			return size, err
		}
		size += 3
		for k, v := range intInfo {
			if err := writeUint16(k, out); err != nil {
				return size, err
			}
			size += 2
			// The decoder reads int KV values length-prefixed on both the
			// dense and spill paths; the encoder must match on both paths
			// too (see design notes on the int-KV encode/decode contract).
			n, err := writeString2BLen(v, out)
			if err != nil {
				return size, err
			}
			size += n
		}
	}

	padding := (4 - size%4) % 4
	paddingBuf, err := out.Malloc(padding)
	if err != nil {
		return size, err
	}
	for i := range paddingBuf {
		paddingBuf[i] = 0
	}
	size += padding
	return size, nil
}
