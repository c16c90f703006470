package packet

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Reader is a big-endian cursor over a byte slice. The first error is sticky:
// once set, every further read returns a zero value and Err reports it.
type Reader struct {
	buf  []byte
	off  int
	err  error
	need int
}

// NewReader returns a Reader positioned at the start of b. b is never modified.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Err returns the first error met while reading.
func (r *Reader) Err() error { return r.err }

// Offset returns the number of bytes consumed so far.
func (r *Reader) Offset() int { return r.off }

// Need returns the input length the failed read required once Err is
// ErrShortBuffer, and 0 otherwise. Later fields may need more.
func (r *Reader) Need() int { return r.need }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.off }

// Fail records err unless an earlier error is already set.
func (r *Reader) Fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) short(need int) {
	r.err = ErrShortBuffer
	r.need = need
}

func (r *Reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n > r.Remaining() {
		r.short(r.off + n)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

// Uint8 reads one byte.
func (r *Reader) Uint8() uint8 {
	b := r.next(1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Int8 reads one signed byte.
func (r *Reader) Int8() int8 { return int8(r.Uint8()) }

// Uint16 reads a big-endian u16.
func (r *Reader) Uint16() uint16 {
	b := r.next(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

// Int16 reads a big-endian i16.
func (r *Reader) Int16() int16 { return int16(r.Uint16()) }

// Uint32 reads a big-endian u32.
func (r *Reader) Uint32() uint32 {
	b := r.next(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

// Int32 reads a big-endian i32.
func (r *Reader) Int32() int32 { return int32(r.Uint32()) }

// Int64 reads a big-endian i64.
func (r *Reader) Int64() int64 {
	b := r.next(8)
	if b == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

// Float32 reads an IEEE 754 single.
func (r *Reader) Float32() float32 { return math.Float32frombits(r.Uint32()) }

// Float64 reads an IEEE 754 double.
func (r *Reader) Float64() float64 {
	b := r.next(8)
	if b == nil {
		return 0
	}
	return math.Float64frombits(binary.BigEndian.Uint64(b))
}

// Bool reads a WireBool. Bytes other than 0 and 1 fail with ErrInvalidBool.
func (r *Reader) Bool() WireBool {
	v := r.Uint8()
	if r.err != nil {
		return false
	}
	switch v {
	case 0:
		return false
	case 1:
		return true
	default:
		r.Fail(fmt.Errorf("%w: 0x%02x", ErrInvalidBool, v))
		return false
	}
}

// String reads a WireString: i16 unit count then that many UTF-16BE units.
func (r *Reader) String() WireString {
	n := r.Int16()
	if r.err != nil {
		return WireString{}
	}
	if n < 0 {
		r.Fail(fmt.Errorf("%w: string length %d", ErrNegativeLength, n))
		return WireString{}
	}
	raw := r.next(int(n) * 2)
	if raw == nil || n == 0 {
		return WireString{}
	}
	units := make([]uint16, n)
	for i := range units {
		units[i] = binary.BigEndian.Uint16(raw[i*2:])
	}
	return WireString{units: units}
}

// Count16 reads an i16 array count and checks that count elements of elemSize
// bytes could still follow. A negative count is malformed.
func (r *Reader) Count16(elemSize int) int {
	return r.count(int64(r.Int16()), elemSize)
}

// Count32 is Count16 for i32 count prefixes.
func (r *Reader) Count32(elemSize int) int {
	return r.count(int64(r.Int32()), elemSize)
}

func (r *Reader) count(n int64, elemSize int) int {
	if r.err != nil {
		return 0
	}
	if n < 0 {
		r.Fail(fmt.Errorf("%w: array count %d", ErrNegativeLength, n))
		return 0
	}
	// Fail before allocating when the frame cannot be complete yet.
	if n*int64(elemSize) > int64(r.Remaining()) {
		r.short(r.off + int(n)*elemSize)
		return 0
	}
	return int(n)
}

// Bytes reads n raw bytes into a fresh slice.
func (r *Reader) Bytes(n int) []byte {
	b := r.next(n)
	if b == nil || n == 0 {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}
