package thrift

import (
	"errors"
	"fmt"
)

// ApplicationException codes, as defined by the Thrift IDL and carried
// across the wire as payload (distinct from CodecError, which never
// travels on the wire).
const (
	UnknownApplicationException = int32(0)
	UnknownMethod                = int32(1)
	InvalidMessageTypeException = int32(2)
	WrongMethodName              = int32(3)
	BadSequenceID                = int32(4)
	MissingResult                = int32(5)
	InternalError                = int32(6)
	ProtocolError                = int32(7)
	InvalidTransform              = int32(8)
	InvalidProtocol              = int32(9)
	UnsupportedClientType        = int32(10)
)

// ApplicationException is an RPC-level exception struct exchanged as a
// reply payload when a call fails. It implements FastRead/FastWrite against
// this package's own Reader/Writer rather than the generic reflective
// struct codec, matching the hand-written fast path generated code uses.
type ApplicationException struct {
	typeID  int32
	message string
}

// NewApplicationException builds an ApplicationException.
func NewApplicationException(typeID int32, message string) *ApplicationException {
	return &ApplicationException{typeID: typeID, message: message}
}

// Msg returns the exception's message field.
func (e *ApplicationException) Msg() string { return e.message }

// TypeID returns the exception's type field.
func (e *ApplicationException) TypeID() int32 { return e.typeID }

// BLength returns the encoded length of the exception struct.
func (e *ApplicationException) BLength() int {
	return Binary.FieldBeginLength() + Binary.StringLength(e.message) +
		Binary.FieldBeginLength() + Binary.I32Length() +
		Binary.FieldStopLength()
}

// FastWrite encodes the exception struct (field 1 = message, field 2 =
// type) onto w.
func (e *ApplicationException) FastWrite(w *BinaryWriter) error {
	if err := w.WriteFieldBegin(STRING, 1); err != nil {
		return err
	}
	if err := w.WriteString(e.message); err != nil {
		return err
	}
	if err := w.WriteFieldBegin(I32, 2); err != nil {
		return err
	}
	if err := w.WriteI32(e.typeID); err != nil {
		return err
	}
	return w.WriteFieldStop()
}

// FastRead decodes the exception struct from r.
func (e *ApplicationException) FastRead(r *BinaryReader) error {
	for {
		fid, err := r.ReadFieldBegin()
		if err != nil {
			return err
		}
		if fid.Type == STOP {
			return nil
		}
		switch {
		case fid.ID == 1 && fid.Type == STRING:
			e.message, err = r.ReadString()
		case fid.ID == 2 && fid.Type == I32:
			e.typeID, err = r.ReadI32()
		default:
			err = r.Skip(fid.Type)
		}
		if err != nil {
			return err
		}
	}
}

var defaultApplicationExceptionMessage = map[int32]string{
	UnknownApplicationException: "unknown application exception",
	UnknownMethod:                "unknown method",
	InvalidMessageTypeException: "invalid message type",
	WrongMethodName:              "wrong method name",
	BadSequenceID:                "bad sequence ID",
	MissingResult:                "missing result",
	InternalError:                "unknown internal error",
	ProtocolError:                "unknown protocol error",
	InvalidTransform:              "invalid transform",
	InvalidProtocol:              "invalid protocol",
	UnsupportedClientType:        "unsupported client type",
}

// Error implements error.
func (e *ApplicationException) Error() string {
	if e.message != "" {
		return e.message
	}
	if m, ok := defaultApplicationExceptionMessage[e.typeID]; ok {
		return m
	}
	return fmt.Sprintf("unknown exception type [%d]", e.typeID)
}

// TransportException mirrors ApplicationException's shape for
// transport-level failures (connection reset, write past deadline, etc.).
type TransportException struct {
	ApplicationException
}

// NewTransportException builds a TransportException.
func NewTransportException(typeID int32, message string) *TransportException {
	return &TransportException{ApplicationException{typeID: typeID, message: message}}
}

// ProtocolException mirrors ApplicationException's shape for malformed-wire
// failures, and can wrap a CodecError via Unwrap.
type ProtocolException struct {
	ApplicationException
	err error
}

// ProtocolException type codes.
const (
	UnknownProtocolException = int32(0)
	InvalidDataException     = int32(1)
	NegativeSizeException    = int32(2)
	SizeLimitException       = int32(3)
	BadVersionException      = int32(4)
	NotImplementedException  = int32(5)
	DepthLimitException      = int32(6)
)

// NewProtocolException builds a ProtocolException.
func NewProtocolException(typeID int32, message string) *ProtocolException {
	return &ProtocolException{ApplicationException: ApplicationException{typeID: typeID, message: message}}
}

// NewProtocolExceptionWithErr wraps err as a ProtocolException, reusing an
// existing one unchanged if err already is one.
func NewProtocolExceptionWithErr(err error) *ProtocolException {
	if pe, ok := err.(*ProtocolException); ok {
		return pe
	}
	pe := NewProtocolException(UnknownProtocolException, err.Error())
	pe.err = err
	return pe
}

// Unwrap exposes the wrapped error to the errors package.
func (e *ProtocolException) Unwrap() error { return e.err }

// tException is satisfied by any Thrift exception carrying a type id.
type tException interface {
	Error() string
	TypeID() int32
}

// Is reports equivalence with another Thrift exception of the same type
// and message, falling back to unwrapping.
func (e *ProtocolException) Is(err error) bool {
	if t, ok := err.(tException); ok && t.TypeID() == e.typeID && t.Error() == e.message {
		return true
	}
	return errors.Is(e.err, err)
}

// PrependError prepends a prefix to err's message, preserving its concrete
// exception type where recognized.
func PrependError(prefix string, err error) error {
	switch t := err.(type) {
	case *TransportException:
		return NewTransportException(t.TypeID(), prefix+t.Error())
	case *ProtocolException:
		return NewProtocolException(t.TypeID(), prefix+t.Error())
	case *ApplicationException:
		return NewApplicationException(t.TypeID(), prefix+t.Error())
	case tException:
		return NewApplicationException(t.TypeID(), prefix+t.Error())
	default:
		return errors.New(prefix + err.Error())
	}
}
