// Package thriftx provides an unknown-fields-preserving skip variant over
// xbuf, for callers (pass-through proxies) that hold a fully-buffered
// zero-copy view of the wire bytes and want the exact bytes of whatever
// they skip, not just to discard them.
package thriftx

import (
	"encoding/binary"
	"fmt"

	"github.com/cloudwego/gopkg/xbuf"

	"github.com/kitex-contrib/thriftcodec/thrift"
)

var typeToSize = [...]int8{
	thrift.STOP:   0,
	thrift.VOID:   0,
	thrift.BOOL:   1,
	thrift.I08:    1,
	thrift.DOUBLE: 8,
	thrift.I16:    2,
	thrift.I32:    4,
	thrift.I64:    8,
	thrift.STRING: 0,
	thrift.STRUCT: 0,
	thrift.MAP:    0,
	thrift.SET:    0,
	thrift.LIST:   0,
	thrift.UUID:   16,
}

const defaultMaxDepth = 64

// UnknownFields accumulates raw skipped bytes.
type UnknownFields struct {
	buf []byte
}

// Append appends b to the accumulator.
func (u *UnknownFields) Append(b []byte) { u.buf = append(u.buf, b...) }

// Bytes returns the accumulated bytes.
func (u *UnknownFields) Bytes() []byte { return u.buf }

// Skip consumes exactly one value of type t from b, appending every byte it
// consumes to uf (if non-nil).
func Skip(b *xbuf.XReadBuffer, uf *UnknownFields, t thrift.TType) error {
	return skipType(b, uf, t, defaultMaxDepth)
}

// validSkipType reports whether t is one of the closed set of valid Thrift
// type tags, mirroring thrift.Skip's validSkipType check: every type byte
// read off the wire must be validated before it is used to index
// typeToSize or dispatch, since a malformed tag is otherwise an
// out-of-range array index, not a handled error.
func validSkipType(t thrift.TType) bool {
	return thrift.ValidType(byte(t))
}

func skipType(b *xbuf.XReadBuffer, uf *UnknownFields, t thrift.TType, maxdepth int) error {
	if maxdepth == 0 {
		return thrift.NewCodecError(thrift.KindDepthLimit, "skip depth limit exceeded")
	}
	if !validSkipType(t) {
		return thrift.NewCodecError(thrift.KindInvalidData, fmt.Sprintf("invalid type tag %d", t))
	}
	if n := typeToSize[t]; n > 0 {
		buf := b.ReadN(int(n))
		if uf != nil {
			uf.Append(buf)
		}
		return nil
	}
	switch t {
	case thrift.STRING:
		skipString(b, uf)
		return nil
	case thrift.MAP:
		buf := b.ReadN(6)
		if uf != nil {
			uf.Append(buf)
		}
		kt, vt, sz := thrift.TType(buf[0]), thrift.TType(buf[1]), binary.BigEndian.Uint32(buf[2:])
		if !validSkipType(kt) || !validSkipType(vt) {
			return thrift.NewCodecError(thrift.KindInvalidData, fmt.Sprintf("invalid map key/value type tag %d/%d", kt, vt))
		}
		ksz, vsz := int(typeToSize[kt]), int(typeToSize[vt])
		if ksz > 0 && vsz > 0 {
			buf = b.ReadN(int(sz) * (ksz + vsz))
			if uf != nil {
				uf.Append(buf)
			}
			return nil
		}
		for j := uint32(0); j < sz; j++ {
			if err := skipMapElement(b, uf, kt, ksz, maxdepth); err != nil {
				return err
			}
			if err := skipMapElement(b, uf, vt, vsz, maxdepth); err != nil {
				return err
			}
		}
		return nil
	case thrift.LIST, thrift.SET:
		buf := b.ReadN(5)
		if uf != nil {
			uf.Append(buf)
		}
		vt, sz := thrift.TType(buf[0]), binary.BigEndian.Uint32(buf[1:])
		if !validSkipType(vt) {
			return thrift.NewCodecError(thrift.KindInvalidData, fmt.Sprintf("invalid list/set element type tag %d", vt))
		}
		vsz := int(typeToSize[vt])
		if vsz > 0 {
			buf = b.ReadN(int(sz) * vsz)
			if uf != nil {
				uf.Append(buf)
			}
			return nil
		}
		for j := uint32(0); j < sz; j++ {
			if err := skipMapElement(b, uf, vt, vsz, maxdepth); err != nil {
				return err
			}
		}
		return nil
	case thrift.STRUCT:
		for {
			buf := b.ReadN(1)
			if uf != nil {
				uf.Append(buf)
			}
			ft := thrift.TType(buf[0])
			if ft == thrift.STOP {
				return nil
			}
			if !validSkipType(ft) {
				return thrift.NewCodecError(thrift.KindInvalidData, fmt.Sprintf("invalid field type tag %d", ft))
			}
			buf = b.ReadN(2) // field id
			if uf != nil {
				uf.Append(buf)
			}
			if typeToSize[ft] > 0 {
				buf = b.ReadN(int(typeToSize[ft]))
				if uf != nil {
					uf.Append(buf)
				}
			} else if ft == thrift.STRING {
				skipString(b, uf)
			} else if err := skipType(b, uf, ft, maxdepth-1); err != nil {
				return err
			}
		}
	default:
		return thrift.NewCodecError(thrift.KindInvalidData, fmt.Sprintf("unknown data type %d", t))
	}
}

func skipMapElement(b *xbuf.XReadBuffer, uf *UnknownFields, t thrift.TType, sz int, maxdepth int) error {
	if sz > 0 {
		buf := b.ReadN(sz)
		if uf != nil {
			uf.Append(buf)
		}
		return nil
	}
	if t == thrift.STRING {
		skipString(b, uf)
		return nil
	}
	return skipType(b, uf, t, maxdepth-1)
}

func skipString(b *xbuf.XReadBuffer, uf *UnknownFields) {
	tmp := b.ReadN(4)
	n := binary.BigEndian.Uint32(tmp)
	s := b.ReadN(int(n))
	if uf != nil {
		uf.Append(tmp)
		uf.Append(s)
	}
}
