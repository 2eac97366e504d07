package split

import (
	"errors"
	"fmt"

	"keyball/firmware/layout"
)

var (
	ErrFrameTooShort = errors.New("split: frame too short")
	ErrUnknownTag    = errors.New("split: unknown tag")
	ErrBadCoordinate = errors.New("split: bad coordinate")
	ErrBadPadding    = errors.New("split: non-zero padding")
)

// payloadLen is the payload size after the tag, per kind.
func payloadLen(k Kind) int {
	switch k {
	case KindKeyPressed, KindKeyReleased, KindMotion:
		return 2
	case KindStatus, KindLED:
		return 1
	}
	return 0
}

// Marshal encodes m into a zero-padded frame.
func Marshal(m Message) [MaxDataSize]byte {
	var f [MaxDataSize]byte
	f[0] = byte(m.Kind)
	switch m.Kind {
	case KindKeyPressed, KindKeyReleased:
		f[1], f[2] = m.Coord.Row, m.Coord.Col
	case KindMotion:
		f[1], f[2] = byte(m.DX), byte(m.DY)
	case KindStatus, KindLED:
		f[1] = m.Value
	}
	return f
}

// Unmarshal validates frame as a message travelling in d and decodes it.
func Unmarshal(frame []byte, d Direction) (Message, error) {
	if len(frame) < MaxDataSize {
		return Message{}, fmt.Errorf("%w: %d bytes", ErrFrameTooShort, len(frame))
	}
	k := Kind(frame[0])
	if !d.Allowed(k) {
		return Message{}, fmt.Errorf("%w: %#02x", ErrUnknownTag, frame[0])
	}
	for _, b := range frame[1+payloadLen(k) : MaxDataSize] {
		if b != 0 {
			return Message{}, fmt.Errorf("%w: %v", ErrBadPadding, k)
		}
	}

	m := Message{Kind: k}
	switch k {
	case KindKeyPressed, KindKeyReleased:
		m.Coord = layout.Coord{Row: frame[1], Col: frame[2]}
		if m.Coord.Row >= layout.Rows || m.Coord.Col >= layout.Cols {
			return Message{}, fmt.Errorf("%w: %v", ErrBadCoordinate, m.Coord)
		}
	case KindMotion:
		m.DX, m.DY = int8(frame[1]), int8(frame[2])
	case KindStatus, KindLED:
		m.Value = frame[1]
	}
	return m, nil
}
