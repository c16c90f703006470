package codec

import (
	"errors"
	"fmt"

	"github.com/lcx/dice/packet"
)

// FrameCodec is the schema driven codec: the tag selects the shape, the shape
// reads its fields in order.
type FrameCodec struct{}

// Decode implements Codec.
func (FrameCodec) Decode(b []byte) (packet.Packet, int, error) {
	if len(b) == 0 {
		return nil, 0, &incompleteError{need: 1}
	}

	shape, ok := packet.Lookup(packet.Tag(b[0]))
	if !ok {
		return nil, 0, fmt.Errorf("%w: %w: 0x%02x", ErrMalformed, packet.ErrUnknownTag, b[0])
	}

	p := shape.New()
	r := packet.NewReader(b[1:])
	p.Decode(r)
	if err := r.Err(); err != nil {
		if errors.Is(err, packet.ErrShortBuffer) {
			return nil, 0, &incompleteError{need: 1 + r.Need()}
		}
		return nil, 0, fmt.Errorf("%w: %s: %w", ErrMalformed, shape.Name, err)
	}
	return p, 1 + r.Offset(), nil
}

// Encode implements Codec. dst is returned unchanged on error.
func (FrameCodec) Encode(p packet.Packet, dst []byte) ([]byte, error) {
	if packet.IsNil(p) {
		return dst, fmt.Errorf("%w: nil packet", ErrInvalidPacket)
	}
	if _, ok := packet.Lookup(p.Tag()); !ok {
		return dst, fmt.Errorf("%w: %w: 0x%02x", ErrInvalidPacket, packet.ErrUnknownTag, uint8(p.Tag()))
	}

	w := packet.NewWriter(dst)
	w.Uint8(uint8(p.Tag()))
	p.Encode(w)
	if err := w.Err(); err != nil {
		return dst, fmt.Errorf("%w: %s: %w", ErrInvalidPacket, packet.Name(p), err)
	}
	return w.Bytes(), nil
}
