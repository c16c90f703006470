package packet

import (
	"encoding/binary"
	"math"
)

// Writer appends big-endian values to a byte slice.
type Writer struct {
	buf []byte
	err error
}

// NewWriter returns a Writer appending to dst.
func NewWriter(dst []byte) *Writer {
	return &Writer{buf: dst}
}

// Bytes returns the accumulated output.
func (w *Writer) Bytes() []byte { return w.buf }

// Err returns the first encoding error, such as a count that overflows its prefix.
func (w *Writer) Err() error { return w.err }

// Fail records err unless an earlier error is already set.
func (w *Writer) Fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

// Uint8 writes one byte.
func (w *Writer) Uint8(v uint8) { w.buf = append(w.buf, v) }

// Int8 writes one signed byte.
func (w *Writer) Int8(v int8) { w.Uint8(uint8(v)) }

// Uint16 writes a big-endian u16.
func (w *Writer) Uint16(v uint16) { w.buf = binary.BigEndian.AppendUint16(w.buf, v) }

// Int16 writes a big-endian i16.
func (w *Writer) Int16(v int16) { w.Uint16(uint16(v)) }

// Uint32 writes a big-endian u32.
func (w *Writer) Uint32(v uint32) { w.buf = binary.BigEndian.AppendUint32(w.buf, v) }

// Int32 writes a big-endian i32.
func (w *Writer) Int32(v int32) { w.Uint32(uint32(v)) }

// Int64 writes a big-endian i64.
func (w *Writer) Int64(v int64) { w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(v)) }

// Float32 writes an IEEE 754 single.
func (w *Writer) Float32(v float32) { w.Uint32(math.Float32bits(v)) }

// Float64 writes an IEEE 754 double.
func (w *Writer) Float64(v float64) { w.Int64(int64(math.Float64bits(v))) }

// Bool writes v as one byte.
func (w *Writer) Bool(v WireBool) { w.Uint8(v.Byte()) }

// String writes the unit count followed by the UTF-16BE units.
func (w *Writer) String(s WireString) {
	if len(s.units) > MaxStringUnits {
		w.Fail(ErrStringTooLong)
	}
	w.Int16(int16(len(s.units)))
	for _, u := range s.units {
		w.Uint16(u)
	}
}

// Count16 writes n as an i16 array count.
func (w *Writer) Count16(n int) {
	if n > math.MaxInt16 {
		w.Fail(ErrCountOverflow)
	}
	w.Int16(int16(n))
}

// Count32 writes n as an i32 array count.
func (w *Writer) Count32(n int) {
	if int64(n) > math.MaxInt32 {
		w.Fail(ErrCountOverflow)
	}
	w.Int32(int32(n))
}

// Raw appends b unchanged.
func (w *Writer) Raw(b []byte) { w.buf = append(w.buf, b...) }
