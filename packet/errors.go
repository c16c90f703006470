package packet

import "errors"

var (
	// ErrShortBuffer is recorded when a field runs past the end of the input.
	// The codec reports it as an incomplete frame.
	ErrShortBuffer = errors.New("packet: short buffer")
	// ErrUnknownTag is returned for a tag byte absent from the schema.
	ErrUnknownTag = errors.New("packet: unknown tag")
	// ErrInvalidBool is returned for a boolean byte other than 0 or 1.
	ErrInvalidBool = errors.New("packet: invalid bool")
	// ErrNegativeLength is returned for a negative string length or array count.
	ErrNegativeLength = errors.New("packet: negative length")
	// ErrStringTooLong is returned when text needs more than MaxStringUnits UTF-16 units.
	ErrStringTooLong = errors.New("packet: string too long")
	// ErrCountOverflow is returned when a slice does not fit its count prefix.
	ErrCountOverflow = errors.New("packet: count overflow")
)
