// Package thrift implements the Thrift Binary protocol wire codec: the
// type model, error taxonomy, synchronous zero-copy reader/writer, and the
// iterative skip engine that the asyncthrift and ttheader packages build on.
package thrift

import "github.com/cloudwego/gopkg/unsafex"

// TType is the single-byte tag identifying a Thrift value's structural kind
// on the wire. Gaps at 5, 7 and 9 are not valid wire values.
type TType int8

const (
	STOP   TType = 0
	VOID   TType = 1
	BOOL   TType = 2
	I08    TType = 3
	DOUBLE TType = 4
	I16    TType = 6
	I32    TType = 8
	I64    TType = 10
	STRING TType = 11 // also used for Binary
	STRUCT TType = 12
	MAP    TType = 13
	SET    TType = 14
	LIST   TType = 15
	UUID   TType = 16
)

// typeToSize gives the fixed wire width of a type, or 0 when the type has a
// variable-length encoding (STRING, STRUCT, MAP, SET, LIST).
var typeToSize = [...]int8{
	STOP:   0,
	VOID:   0,
	BOOL:   1,
	I08:    1,
	DOUBLE: 8,
	I16:    2,
	I32:    4,
	I64:    8,
	STRING: 0,
	STRUCT: 0,
	MAP:    0,
	SET:    0,
	LIST:   0,
	UUID:   16,
}

// ValidType reports whether b is one of the closed set of wire type tags.
func ValidType(b byte) bool {
	switch TType(b) {
	case STOP, VOID, BOOL, I08, DOUBLE, I16, I32, I64, STRING, STRUCT, MAP, SET, LIST, UUID:
		return true
	default:
		return false
	}
}

// TMessageType is the Thrift message kind.
type TMessageType int32

const (
	InvalidTMessageType TMessageType = 0
	CALL                TMessageType = 1
	REPLY               TMessageType = 2
	EXCEPTION           TMessageType = 3
	ONEWAY              TMessageType = 4
)

// ValidMessageType reports whether t is one of Call/Reply/Exception/OneWay.
func ValidMessageType(t TMessageType) bool {
	return t >= CALL && t <= ONEWAY
}

const (
	msgVersion1    = 0x80010000
	msgVersionMask = 0xffff0000
	msgTypeMask    = 0x0000ffff
)

// Name is the borrowed-or-owned byte wrapper used for message names.
//
// On the synchronous path a Name aliases the caller's input buffer (zero
// copy); on the asynchronous path it owns a private copy, since the
// reader's internal buffer may be reused across a suspension point. Callers
// must not rely on which case applies; treat Name as read-only.
type Name struct {
	b     []byte
	owned bool
}

// BorrowName wraps b without copying it. The caller guarantees b outlives
// the returned Name.
func BorrowName(b []byte) Name { return Name{b: b} }

// OwnName copies b into a private buffer.
func OwnName(b []byte) Name {
	cp := make([]byte, len(b))
	copy(cp, b)
	return Name{b: cp, owned: true}
}

// String returns the name as a string. On the borrowed path this is a
// zero-copy cast; callers must not retain it past the lifetime of the
// buffer the Name was borrowed from.
func (n Name) String() string { return unsafex.BinaryToString(n.b) }

// Bytes returns the underlying bytes.
func (n Name) Bytes() []byte { return n.b }

// Owned reports whether the Name holds a private copy.
func (n Name) Owned() bool { return n.owned }

// MessageIdent identifies a Thrift message: its name, kind and sequence id.
type MessageIdent struct {
	Name  Name
	Type  TMessageType
	SeqID int32
}

// FieldIdent identifies a struct field: its type tag and id. ID is only
// meaningful when Type != STOP.
type FieldIdent struct {
	Type TType
	ID   int16
}

// ListIdent identifies a list's element type and length.
type ListIdent struct {
	Type TType
	Size int32
}

// SetIdent identifies a set's element type and length.
type SetIdent struct {
	Type TType
	Size int32
}

// MapIdent identifies a map's key type, value type and entry count.
type MapIdent struct {
	KeyType   TType
	ValueType TType
	Size      int32
}
