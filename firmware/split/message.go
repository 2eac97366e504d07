// Package split carries typed messages between the two halves over the
// split transport.
package split

import (
	"fmt"

	"keyball/firmware/layout"
)

// MaxDataSize is the fixed frame size on the wire.
const MaxDataSize = 8

// Kind is the frame tag.
type Kind uint8

const (
	// KindKeyPressed and KindKeyReleased carry a half-local coordinate.
	KindKeyPressed Kind = iota + 1
	KindKeyReleased
	// KindMotion carries a pointer delta in sensor axes.
	KindMotion
	// KindStatus carries a free-form status byte.
	KindStatus
	// KindLED carries an LED control code.
	KindLED
)

func (k Kind) String() string {
	switch k {
	case KindKeyPressed:
		return "key-pressed"
	case KindKeyReleased:
		return "key-released"
	case KindMotion:
		return "motion"
	case KindStatus:
		return "status"
	case KindLED:
		return "led"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Direction is the flow a message travels in.
type Direction uint8

const (
	ToPrimary Direction = iota + 1
	ToSatellite
)

// Allowed reports whether k may travel in d.
func (d Direction) Allowed(k Kind) bool {
	switch d {
	case ToPrimary:
		return k == KindKeyPressed || k == KindKeyReleased || k == KindMotion || k == KindStatus
	case ToSatellite:
		return k == KindLED || k == KindStatus
	}
	return false
}

// Message is one split message. Only the fields of its Kind are meaningful.
type Message struct {
	Kind  Kind
	Coord layout.Coord
	DX    int8
	DY    int8
	Value uint8
}

// KeyPressed reports a satellite key press at half-local c.
func KeyPressed(c layout.Coord) Message { return Message{Kind: KindKeyPressed, Coord: c} }

// KeyReleased reports a satellite key release at half-local c.
func KeyReleased(c layout.Coord) Message { return Message{Kind: KindKeyReleased, Coord: c} }

// Motion reports a satellite pointer delta.
func Motion(dx, dy int8) Message { return Message{Kind: KindMotion, DX: dx, DY: dy} }

// Status carries v.
func Status(v uint8) Message { return Message{Kind: KindStatus, Value: v} }

// LED asks the satellite to apply control code v.
func LED(v uint8) Message { return Message{Kind: KindLED, Value: v} }

func (m Message) String() string {
	switch m.Kind {
	case KindKeyPressed, KindKeyReleased:
		return fmt.Sprintf("%v%v", m.Kind, m.Coord)
	case KindMotion:
		return fmt.Sprintf("motion(%d,%d)", m.DX, m.DY)
	case KindStatus, KindLED:
		return fmt.Sprintf("%v(%#02x)", m.Kind, m.Value)
	default:
		return m.Kind.String()
	}
}
