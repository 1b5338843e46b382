package ttheader

// PayloadEncoder produces the exact bytes to carry as a TTHeader frame's
// payload.
type PayloadEncoder interface {
	EncodePayload() ([]byte, error)
}

// PayloadDecoder consumes the exact payload byte range a decoded frame
// reported.
type PayloadDecoder interface {
	DecodePayload(payload []byte) error
}

// EncodeWithPayload composes the envelope codec with an arbitrary payload
// encoder: the Binary writer, or RawPayload for passthrough.
func EncodeWithPayload(param EncodeParam, enc PayloadEncoder) ([]byte, error) {
	payload, err := enc.EncodePayload()
	if err != nil {
		return nil, err
	}
	return EncodeToBytes(param, payload)
}

// DecodeWithPayload composes the envelope codec with an arbitrary payload
// decoder, invoked on the exact byte range the envelope reports.
func DecodeWithPayload(buf []byte, limits Limits, dec PayloadDecoder) (*Frame, int, error) {
	frame, n, err := Decode(buf, limits)
	if err != nil {
		return nil, 0, err
	}
	if err := dec.DecodePayload(frame.Payload); err != nil {
		return nil, 0, err
	}
	return frame, n, nil
}

// RawPayload is a payload codec that performs no decoding: it hands back
// the exact payload byte range TTHeader computed, unmodified. Useful for
// proxies re-framing a message without inspecting its body.
type RawPayload struct {
	Bytes []byte
}

// EncodePayload returns Bytes unchanged.
func (p *RawPayload) EncodePayload() ([]byte, error) { return p.Bytes, nil }

// DecodePayload stores payload (a view into the decoder's input buffer;
// callers that need to retain it past that buffer's lifetime must copy it).
func (p *RawPayload) DecodePayload(payload []byte) error {
	p.Bytes = payload
	return nil
}
