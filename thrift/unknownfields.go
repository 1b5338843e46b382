package thrift

import "encoding/binary"

// UnknownFields accumulates the raw wire bytes of values skipped by
// SkipPreserving, for callers (proxies, pass-through handlers) that need to
// re-emit fields they don't understand instead of discarding them.
type UnknownFields struct {
	buf []byte
}

// Append appends b to the accumulator.
func (u *UnknownFields) Append(b []byte) { u.buf = append(u.buf, b...) }

// Bytes returns the accumulated bytes.
func (u *UnknownFields) Bytes() []byte { return u.buf }

// Reset clears the accumulator for reuse.
func (u *UnknownFields) Reset() { u.buf = u.buf[:0] }

// SkipPreserving is Skip, except every byte consumed is also appended to
// uf. A nil uf makes this identical to BinaryReader.Skip.
func SkipPreserving(r *BinaryReader, t TType, uf *UnknownFields) error {
	if uf == nil {
		return r.Skip(t)
	}
	return Skip(&recordingSkipSource{r: r, uf: uf}, t)
}

type recordingSkipSource struct {
	r  *BinaryReader
	uf *UnknownFields
}

func (s *recordingSkipSource) SkipAdvance(n int) error {
	b, err := s.r.next(n)
	if err != nil {
		return err
	}
	s.uf.Append(b)
	return nil
}

func (s *recordingSkipSource) SkipByte() (byte, error) {
	b, err := s.r.next(1)
	if err != nil {
		return 0, err
	}
	s.uf.Append(b)
	return b[0], nil
}

func (s *recordingSkipSource) SkipI16() (int16, error) {
	b, err := s.r.next(2)
	if err != nil {
		return 0, err
	}
	s.uf.Append(b)
	return int16(binary.BigEndian.Uint16(b)), nil
}

func (s *recordingSkipSource) SkipI32() (int32, error) {
	b, err := s.r.next(4)
	if err != nil {
		return 0, err
	}
	s.uf.Append(b)
	return int32(binary.BigEndian.Uint32(b)), nil
}
