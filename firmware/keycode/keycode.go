// Package keycode defines the logical codes a key can produce.
//
// A KeyCode is a small value type. Its Kind selects which of the report
// handlers reacts to it.
package keycode

import "fmt"

// Kind selects the variant of a KeyCode.
type Kind uint8

const (
	KindNone Kind = iota
	KindKey
	KindModifier
	KindWithModifier
	KindMouse
	KindLayer
	KindMedia
	KindSpecial
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindKey:
		return "key"
	case KindModifier:
		return "modifier"
	case KindWithModifier:
		return "with-modifier"
	case KindMouse:
		return "mouse"
	case KindLayer:
		return "layer"
	case KindMedia:
		return "media"
	case KindSpecial:
		return "special"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Key is a HID keyboard usage id.
type Key uint8

// Modifier is the HID modifier byte bitmask.
type Modifier uint8

const (
	LeftCtrl Modifier = 1 << iota
	LeftShift
	LeftAlt
	LeftGui
	RightCtrl
	RightShift
	RightAlt
	RightGui
)

// Mouse is the pointer button bitmask.
type Mouse uint8

const (
	MouseLeft Mouse = 1 << iota
	MouseRight
	MouseMiddle
	MouseBack
	MouseForward
)

// Media is a HID consumer-page usage id.
type Media uint16

const (
	MediaPlay            Media = 0xB0
	MediaPause           Media = 0xB1
	MediaRecord          Media = 0xB2
	MediaNextTrack       Media = 0xB5
	MediaPrevTrack       Media = 0xB6
	MediaStop            Media = 0xB7
	MediaRandomPlay      Media = 0xB9
	MediaRepeat          Media = 0xBC
	MediaPlayPause       Media = 0xCD
	MediaMute            Media = 0xE2
	MediaVolumeIncrement Media = 0xE9
	MediaVolumeDecrement Media = 0xEA
)

// Special is an action handled by the firmware rather than sent as a key.
type Special uint8

const (
	// ScrollMode turns pointer motion into wheel and pan while held.
	ScrollMode Special = iota + 1
)

// LayerOp is the operation a layer key performs.
type LayerOp uint8

const (
	// Move keeps the layer active while the key is held.
	Move LayerOp = iota + 1
	// Toggle flips the layer on release.
	Toggle
)

// KeyCode is one logical code. The zero value is KindNone.
type KeyCode struct {
	kind  Kind
	mod   Modifier
	op    LayerOp
	value uint16
}

func KeyOf(k Key) KeyCode               { return KeyCode{kind: KindKey, value: uint16(k)} }
func ModOf(m Modifier) KeyCode          { return KeyCode{kind: KindModifier, mod: m} }
func WithMod(m Modifier, k Key) KeyCode { return KeyCode{kind: KindWithModifier, mod: m, value: uint16(k)} }
func ButtonOf(b Mouse) KeyCode          { return KeyCode{kind: KindMouse, value: uint16(b)} }
func MediaOf(u Media) KeyCode           { return KeyCode{kind: KindMedia, value: uint16(u)} }
func SpecialOf(s Special) KeyCode       { return KeyCode{kind: KindSpecial, value: uint16(s)} }

// MoveTo returns a momentary layer key.
func MoveTo(layer uint8) KeyCode { return KeyCode{kind: KindLayer, op: Move, value: uint16(layer)} }

// ToggleOf returns a layer toggle key.
func ToggleOf(layer uint8) KeyCode { return KeyCode{kind: KindLayer, op: Toggle, value: uint16(layer)} }

func (kc KeyCode) Kind() Kind              { return kc.kind }
func (kc KeyCode) Key() Key                { return Key(kc.value) }
func (kc KeyCode) Modifier() Modifier      { return kc.mod }
func (kc KeyCode) Mouse() Mouse            { return Mouse(kc.value) }
func (kc KeyCode) Media() Media            { return Media(kc.value) }
func (kc KeyCode) Special() Special        { return Special(kc.value) }
func (kc KeyCode) Layer() (LayerOp, uint8) { return kc.op, uint8(kc.value) }

func (kc KeyCode) String() string {
	if name, ok := Name(kc); ok {
		return name
	}
	switch kc.kind {
	case KindKey:
		return fmt.Sprintf("key(0x%02x)", kc.value)
	case KindModifier:
		return fmt.Sprintf("mod(0x%02x)", uint8(kc.mod))
	case KindWithModifier:
		return fmt.Sprintf("mod(0x%02x)+key(0x%02x)", uint8(kc.mod), kc.value)
	case KindMouse:
		return fmt.Sprintf("mouse(0x%02x)", kc.value)
	case KindLayer:
		if kc.op == Toggle {
			return fmt.Sprintf("TG(%d)", kc.value)
		}
		return fmt.Sprintf("MV(%d)", kc.value)
	case KindMedia:
		return fmt.Sprintf("media(0x%02x)", kc.value)
	case KindSpecial:
		return fmt.Sprintf("special(%d)", kc.value)
	default:
		return "none"
	}
}
