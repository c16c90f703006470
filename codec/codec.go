// Package codec turns byte streams into packets and back.
//
// A frame is a tag byte followed by the fields of that tag's variant; there is
// no length envelope. Decoding therefore distinguishes two failures: a frame
// that is merely incomplete (wait for more bytes) and one that can never
// become valid (close the connection).
package codec

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/lcx/dice/packet"
)

var (
	// ErrIncomplete means the buffer holds a valid prefix of a frame.
	ErrIncomplete = errors.New("codec: incomplete frame")
	// ErrMalformed means the buffer can never start a valid frame.
	ErrMalformed = errors.New("codec: malformed frame")
	// ErrInvalidPacket is returned by Encode for values that have no encoding.
	ErrInvalidPacket = errors.New("codec: invalid packet")

	errCodecNotInit = errors.New("codec not init")

	_codec Codec = &FrameCodec{}
)

type incompleteError struct{ need int }

func (e *incompleteError) Error() string {
	return fmt.Sprintf("%s: need at least %d bytes", ErrIncomplete, e.need)
}

func (e *incompleteError) Is(target error) bool { return target == ErrIncomplete }

// Needed returns the shortest buffer length that could complete the frame
// behind an ErrIncomplete, or 0 when err carries no such hint.
func Needed(err error) int {
	var ie *incompleteError
	if errors.As(err, &ie) {
		return ie.need
	}
	return 0
}

// Codec converts between packets and frames.
type Codec interface {
	// Encode appends the frame for p to dst.
	Encode(p packet.Packet, dst []byte) ([]byte, error)
	// Decode parses one frame from the start of b and reports how many bytes it used.
	// b is never modified.
	Decode(b []byte) (packet.Packet, int, error)
}

// Decode parses one packet from the front of buf. On success exactly the
// frame's bytes are consumed; on any error buf is left untouched.
func Decode(buf *bytes.Buffer) (packet.Packet, error) {
	if _codec == nil {
		return nil, errCodecNotInit
	}
	p, n, err := _codec.Decode(buf.Bytes())
	if err != nil {
		return nil, err
	}
	buf.Next(n)
	return p, nil
}

// DecodeBytes parses one packet from the front of b and returns the number of
// bytes consumed.
func DecodeBytes(b []byte) (packet.Packet, int, error) {
	if _codec == nil {
		return nil, 0, errCodecNotInit
	}
	return _codec.Decode(b)
}

// Encode returns the frame for p.
func Encode(p packet.Packet) ([]byte, error) {
	return AppendEncode(nil, p)
}

// AppendEncode appends the frame for p to dst.
func AppendEncode(dst []byte, p packet.Packet) ([]byte, error) {
	if _codec == nil {
		return dst, errCodecNotInit
	}
	return _codec.Encode(p, dst)
}

// SetCodec replaces the package codec.
func SetCodec(c Codec) {
	_codec = c
}
