// Package ttheader implements the TTHeader transport envelope: a
// length-prefixed frame carrying flags, a sequence id, a protocol id and a
// tagged key-value metadata region ahead of an arbitrary payload.
package ttheader

import "github.com/kitex-contrib/thriftcodec/thrift"

const (
	// MetaSize is the fixed-size frame prefix: length(4) + magic(2) +
	// flags(2) + seq_id(4) + header_size(2).
	MetaSize = 14

	// Magic is the 2-byte constant identifying a TTHeader frame,
	// occupying the high 16 bits of the word following total_length.
	Magic uint32 = 0x1000

	// MaxHeaderSize is the largest header region (in bytes) this decoder
	// will accept; header_size is carried in 4-byte units so the wire
	// maximum is bounded well above this, but a hostile peer declaring an
	// enormous header is rejected well before that.
	MaxHeaderSize = 65536

	// MaxInfoStringLen bounds any individual header string (key or value).
	MaxInfoStringLen = 4096

	// MaxStrInfoCount bounds the number of string KV entries.
	MaxStrInfoCount = 1024
)

// HeaderFlags are the 2-byte flags word carried alongside the magic.
type HeaderFlags uint16

const (
	FlagStreaming        HeaderFlags = 0x02
	FlagSupportOutOfOrder HeaderFlags = 0x01
	FlagDuplexReverse     HeaderFlags = 0x08
	FlagSASL              HeaderFlags = 0x10
)

// ProtocolID is the payload protocol carried inside a TTHeader frame.
type ProtocolID uint8

const (
	ProtocolIDThriftBinary  ProtocolID = 0x00
	ProtocolIDThriftCompact ProtocolID = 0x02
	ProtocolIDKitexProtobuf ProtocolID = 0x04
	ProtocolIDThriftStruct  ProtocolID = 0x10
	ProtocolIDDefault                  = ProtocolIDThriftBinary
)

// infoIDType tags one metadata sub-record inside the header region.
type infoIDType uint8

const (
	infoIDPadding     infoIDType = 0x00
	infoIDKeyValue    infoIDType = 0x01
	infoIDIntKeyValue infoIDType = 0x10
	infoIDACLToken    infoIDType = 0x11
)

// GDPRToken is the well-known string-KV key that, when present, is always
// carried through the dedicated ACL-token info block instead of the
// generic string-KV block.
const GDPRToken = "gdpr-token"

// Limits bounds the sizes the decoder will accept from an untrusted peer.
// The zero value is not usable; use DefaultLimits.
type Limits struct {
	MaxHeaderSize    int
	MaxInfoStringLen int
	MaxStrInfoCount  int
}

// DefaultLimits matches the bounds named in the wire format description.
var DefaultLimits = Limits{
	MaxHeaderSize:    MaxHeaderSize,
	MaxInfoStringLen: MaxInfoStringLen,
	MaxStrInfoCount:  MaxStrInfoCount,
}

func errInvalidData(msg string) error { return thrift.NewCodecError(thrift.KindInvalidData, msg) }
