package packet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWireString_ASCII(t *testing.T) {
	s, err := NewWireString("Steve")
	require.NoError(t, err)
	assert.Equal(t, 5, s.Len())
	assert.Equal(t, []uint16{'S', 't', 'e', 'v', 'e'}, s.Units())
	assert.Equal(t, "Steve", s.String())
}

func TestNewWireString_Empty(t *testing.T) {
	s, err := NewWireString("")
	require.NoError(t, err)
	assert.Equal(t, 0, s.Len())
	assert.True(t, s.Equal(WireString{}))
}

func TestNewWireString_AtBound(t *testing.T) {
	s, err := NewWireString(strings.Repeat("a", MaxStringUnits))
	require.NoError(t, err)
	assert.Equal(t, MaxStringUnits, s.Len())
}

func TestNewWireString_OverBound(t *testing.T) {
	_, err := NewWireString(strings.Repeat("a", MaxStringUnits+1))
	assert.ErrorIs(t, err, ErrStringTooLong)
}

// A rune outside the BMP is one rune, four UTF-8 bytes and two UTF-16 units.
// Only the unit count decides the bound.
func TestNewWireString_CountsUTF16Units(t *testing.T) {
	const emoji = "\U0001F600"

	half := strings.Repeat(emoji, MaxStringUnits/2)
	s, err := NewWireString(half)
	require.NoError(t, err)
	assert.Equal(t, MaxStringUnits-1, s.Len())

	_, err = NewWireString(half + emoji)
	assert.ErrorIs(t, err, ErrStringTooLong)

	// 3-byte UTF-8 runes are one unit each, so text longer than the bound in
	// bytes is still accepted.
	cjk := strings.Repeat("世", 20000)
	require.Greater(t, len(cjk), MaxStringUnits)
	s, err = NewWireString(cjk)
	require.NoError(t, err)
	assert.Equal(t, 20000, s.Len())
}

func TestWireString_SurrogatePairRoundTrip(t *testing.T) {
	s := MustWireString("a\U0001F600b")
	assert.Equal(t, []uint16{'a', 0xD83D, 0xDE00, 'b'}, s.Units())
	assert.Equal(t, "a\U0001F600b", s.String())
}

func TestWireStringFromUnits_KeepsUnpairedSurrogate(t *testing.T) {
	s, err := WireStringFromUnits([]uint16{0xD800, 'x'})
	require.NoError(t, err)
	assert.Equal(t, []uint16{0xD800, 'x'}, s.Units())
	assert.Equal(t, "\uFFFDx", s.String())

	_, err = WireStringFromUnits(make([]uint16, MaxStringUnits+1))
	assert.ErrorIs(t, err, ErrStringTooLong)
}

func TestMustWireString_Panics(t *testing.T) {
	assert.Panics(t, func() { MustWireString(strings.Repeat("a", MaxStringUnits+1)) })
}

func TestWireString_UnitsIsCopy(t *testing.T) {
	s := MustWireString("ab")
	u := s.Units()
	u[0] = 'z'
	assert.Equal(t, "ab", s.String())
}
