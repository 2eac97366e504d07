// Package report builds the HID reports sent to the host.
package report

import (
	"encoding/binary"
	"fmt"
)

// MaxKeys is the number of key slots in a boot keyboard report.
const MaxKeys = 6

// Keyboard is a boot-protocol keyboard input report.
type Keyboard struct {
	Modifier uint8
	Reserved uint8
	LEDs     uint8
	Keys     [MaxKeys]uint8
}

// AppendBinary appends the 8-byte input report: modifier, reserved, keys.
func (r Keyboard) AppendBinary(b []byte) []byte {
	b = append(b, r.Modifier, r.Reserved)
	return append(b, r.Keys[:]...)
}

// Empty reports whether no key or modifier is set.
func (r Keyboard) Empty() bool {
	return r.Modifier == 0 && r.Keys == [MaxKeys]uint8{}
}

func (r Keyboard) String() string {
	return fmt.Sprintf("kbd mod=%02x keys=% x", r.Modifier, r.Keys[:])
}

// Mouse is a pointer report with wheel and horizontal pan.
type Mouse struct {
	Buttons uint8
	X       int8
	Y       int8
	Wheel   int8
	Pan     int8
}

// AppendBinary appends buttons, x, y, wheel, pan.
func (r Mouse) AppendBinary(b []byte) []byte {
	return append(b, r.Buttons, byte(r.X), byte(r.Y), byte(r.Wheel), byte(r.Pan))
}

func (r Mouse) String() string {
	return fmt.Sprintf("mouse btn=%02x x=%d y=%d wheel=%d pan=%d", r.Buttons, r.X, r.Y, r.Wheel, r.Pan)
}

// Media is a consumer control report carrying one usage id.
type Media struct {
	Usage uint16
}

// AppendBinary appends the usage id, little endian.
func (r Media) AppendBinary(b []byte) []byte {
	return binary.LittleEndian.AppendUint16(b, r.Usage)
}

func (r Media) String() string { return fmt.Sprintf("media usage=%04x", r.Usage) }

// Set is the outcome of one fusion cycle. A report is only sent when its
// Has flag is set.
type Set struct {
	Keyboard    Keyboard
	HasKeyboard bool
	Mouse       Mouse
	HasMouse    bool
	Media       Media
	HasMedia    bool
}

// Any reports whether at least one report is present.
func (s Set) Any() bool {
	return s.HasKeyboard || s.HasMouse || s.HasMedia
}
