package transport

// Word layout on the split line. The TX program shifts out the top ten bits,
// MSB first; the RX program shifts the same ten cells in from the right.
const (
	txByteShift = 24
	txStartBit  = 1 << 23
	txEndBit    = 1 << 22

	rxEndBit    = 1 << 0
	rxStartBit  = 1 << 1
	rxByteShift = 2
)

// EncodeWord packs b with its frame markers for the TX state machine.
func EncodeWord(b byte, start, end bool) uint32 {
	w := uint32(b) << txByteShift
	if start {
		w |= txStartBit
	}
	if end {
		w |= txEndBit
	}
	return w
}

// DecodeWord unpacks a word pushed by the RX state machine.
func DecodeWord(w uint32) (b byte, start, end bool) {
	return byte(w >> rxByteShift), w&rxStartBit != 0, w&rxEndBit != 0
}

// Loopback converts a TX word into the RX word the other half receives.
func Loopback(w uint32) uint32 { return w >> (txByteShift - rxByteShift) & 0x3FF }
