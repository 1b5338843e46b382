package ttheader

import (
	"encoding/binary"
	"fmt"
)

// NeedMoreError signals that buf does not yet contain a complete frame;
// the caller should read at least AtLeast total bytes before calling
// Decode again.
type NeedMoreError struct {
	AtLeast int
}

func (e *NeedMoreError) Error() string {
	return fmt.Sprintf("ttheader: need at least %d bytes", e.AtLeast)
}

// Frame is a fully decoded TTHeader envelope. Payload aliases buf; callers
// must not retain Payload past the lifetime of the buffer passed to Decode.
type Frame struct {
	Flags      HeaderFlags
	SeqID      int32
	ProtocolID ProtocolID
	IntInfo    IntHeaders
	StrInfo    map[string]string
	ACLToken   string
	Payload    []byte
}

// Decode parses one TTHeader frame from the front of buf. It returns the
// decoded frame and the number of bytes consumed, or a *NeedMoreError if
// buf does not yet hold a complete frame. limits bounds untrusted peer
// input; pass DefaultLimits absent a reason to diverge.
func Decode(buf []byte, limits Limits) (*Frame, int, error) {
	if len(buf) < 4 {
		return nil, 0, &NeedMoreError{AtLeast: 4}
	}
	totalLength := binary.BigEndian.Uint32(buf[0:4])
	frameLen := 4 + int(totalLength)
	if frameLen < MetaSize {
		return nil, 0, errInvalidData("ttheader: declared total_length too small for frame meta")
	}
	if len(buf) < frameLen {
		return nil, 0, &NeedMoreError{AtLeast: frameLen}
	}

	word := binary.BigEndian.Uint32(buf[4:8])
	if word>>16 != Magic {
		return nil, 0, errInvalidData(fmt.Sprintf("ttheader: bad magic %#x", word>>16))
	}
	flags := HeaderFlags(word & 0xffff)
	seqID := int32(binary.BigEndian.Uint32(buf[8:12]))
	headerUnits := binary.BigEndian.Uint16(buf[12:14])
	if headerUnits == 0 {
		return nil, 0, errInvalidData("ttheader: header size is zero")
	}
	headerBytes := int(headerUnits) * 4
	if headerBytes > limits.MaxHeaderSize {
		return nil, 0, errInvalidData(fmt.Sprintf("ttheader: header size %d exceeds cap %d", headerBytes, limits.MaxHeaderSize))
	}
	payloadOffset := MetaSize + headerBytes
	if payloadOffset > frameLen {
		return nil, 0, errInvalidData("ttheader: declared header size exceeds total_length")
	}

	frame := &Frame{Flags: flags, SeqID: seqID}

	pos := MetaSize
	end := payloadOffset
	if pos+2 > end {
		return nil, 0, errInvalidData("ttheader: header region too small for protocol id")
	}
	frame.ProtocolID = ProtocolID(buf[pos])
	pos++
	numTransforms := int(buf[pos])
	pos++
	if pos+numTransforms > end {
		return nil, 0, errInvalidData("ttheader: transform ids overrun header region")
	}
	pos += numTransforms // transforms not implemented; ids are skipped raw

	for pos < end {
		tag := infoIDType(buf[pos])
		pos++
		switch tag {
		case infoIDPadding:
			// one byte, already advanced
		case infoIDKeyValue:
			if pos+2 > end {
				return nil, 0, errInvalidData("ttheader: truncated string kv count")
			}
			count := int(binary.BigEndian.Uint16(buf[pos : pos+2]))
			pos += 2
			if count > limits.MaxStrInfoCount {
				return nil, 0, errInvalidData(fmt.Sprintf("ttheader: string kv count %d exceeds cap %d", count, limits.MaxStrInfoCount))
			}
			if frame.StrInfo == nil && count > 0 {
				frame.StrInfo = make(map[string]string, count)
			}
			for i := 0; i < count; i++ {
				key, n, err := readLenString(buf, pos, end, limits)
				if err != nil {
					return nil, 0, err
				}
				pos += n
				val, n, err := readLenString(buf, pos, end, limits)
				if err != nil {
					return nil, 0, err
				}
				pos += n
				frame.StrInfo[key] = val
			}
		case infoIDIntKeyValue:
			if pos+2 > end {
				return nil, 0, errInvalidData("ttheader: truncated int kv count")
			}
			count := int(binary.BigEndian.Uint16(buf[pos : pos+2]))
			pos += 2
			for i := 0; i < count; i++ {
				if pos+2 > end {
					return nil, 0, errInvalidData("ttheader: truncated int kv key")
				}
				key := binary.BigEndian.Uint16(buf[pos : pos+2])
				pos += 2
				// Length-prefixed on both the dense and spill paths: this
				// is the decoder's contract, and the encoder matches it.
				val, n, err := readLenString(buf, pos, end, limits)
				if err != nil {
					return nil, 0, err
				}
				pos += n
				frame.IntInfo.Set(key, val)
			}
		case infoIDACLToken:
			token, n, err := readLenString(buf, pos, end, limits)
			if err != nil {
				return nil, 0, err
			}
			pos += n
			frame.ACLToken = token
		default:
			return nil, 0, errInvalidData(fmt.Sprintf("ttheader: unknown info id %#x", tag))
		}
	}

	frame.Payload = buf[payloadOffset:frameLen]
	return frame, frameLen, nil
}

func readLenString(buf []byte, pos, end int, limits Limits) (string, int, error) {
	if pos+2 > end {
		return "", 0, errInvalidData("ttheader: truncated string length")
	}
	n := int(binary.BigEndian.Uint16(buf[pos : pos+2]))
	if n > limits.MaxInfoStringLen {
		return "", 0, errInvalidData(fmt.Sprintf("ttheader: string length %d exceeds cap %d", n, limits.MaxInfoStringLen))
	}
	if pos+2+n > end {
		return "", 0, errInvalidData("ttheader: string overruns header region")
	}
	return string(buf[pos+2 : pos+2+n]), 2 + n, nil
}
