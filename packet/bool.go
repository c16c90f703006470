package packet

// WireBool is a one byte boolean: 0 is false, 1 is true. Any other byte is
// rejected by the decoder.
type WireBool bool

// Byte returns the wire encoding.
func (b WireBool) Byte() byte {
	if b {
		return 1
	}
	return 0
}
