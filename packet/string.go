package packet

import (
	"fmt"
	"math"
	"unicode/utf16"
)

// MaxStringUnits is the largest UTF-16 unit count a WireString can carry.
const MaxStringUnits = math.MaxInt16

// WireString is a length-prefixed sequence of UTF-16 code units. The zero
// value is the empty string.
type WireString struct {
	units []uint16
}

// NewWireString encodes text as UTF-16. It fails with ErrStringTooLong when the
// unit count exceeds MaxStringUnits; the bound is on UTF-16 units, so text
// outside the BMP counts two units per rune.
func NewWireString(text string) (WireString, error) {
	units := utf16.Encode([]rune(text))
	if len(units) > MaxStringUnits {
		return WireString{}, fmt.Errorf("%w: %d utf-16 units", ErrStringTooLong, len(units))
	}
	if len(units) == 0 {
		return WireString{}, nil
	}
	return WireString{units: units}, nil
}

// MustWireString is NewWireString that panics on error.
func MustWireString(text string) WireString {
	s, err := NewWireString(text)
	if err != nil {
		panic(err)
	}
	return s
}

// WireStringFromUnits wraps raw code units, which may include unpaired surrogates.
func WireStringFromUnits(units []uint16) (WireString, error) {
	if len(units) > MaxStringUnits {
		return WireString{}, fmt.Errorf("%w: %d utf-16 units", ErrStringTooLong, len(units))
	}
	if len(units) == 0 {
		return WireString{}, nil
	}
	cp := make([]uint16, len(units))
	copy(cp, units)
	return WireString{units: cp}, nil
}

// Len returns the number of UTF-16 code units.
func (s WireString) Len() int { return len(s.units) }

// Units returns a copy of the code units.
func (s WireString) Units() []uint16 {
	cp := make([]uint16, len(s.units))
	copy(cp, s.units)
	return cp
}

// String decodes the units; unpaired surrogates become U+FFFD.
func (s WireString) String() string {
	return string(utf16.Decode(s.units))
}

// Equal reports whether both strings hold the same code units.
func (s WireString) Equal(o WireString) bool {
	if len(s.units) != len(o.units) {
		return false
	}
	for i := range s.units {
		if s.units[i] != o.units[i] {
			return false
		}
	}
	return true
}
