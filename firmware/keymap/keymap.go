// Package keymap holds the layered key table and the layer-stack lookup.
package keymap

import (
	"errors"
	"fmt"

	"keyball/firmware/keycode"
	"keyball/firmware/layout"
)

// ErrLayerRange reports a layer operation beyond the compiled layer count.
var ErrLayerRange = errors.New("layer index out of range")

// KeyAction is what a key does once a layer cell resolved to it.
type KeyAction struct {
	tap     keycode.KeyCode
	hold    keycode.KeyCode
	tapHold bool
}

// Tap fires code for as long as the key is held.
func Tap(code keycode.KeyCode) KeyAction { return KeyAction{tap: code} }

// TapHold fires tap on a quick release and hold once the key was held past
// the tap threshold.
func TapHold(tap, hold keycode.KeyCode) KeyAction {
	return KeyAction{tap: tap, hold: hold, tapHold: true}
}

func (a KeyAction) IsTapHold() bool           { return a.tapHold }
func (a KeyAction) TapCode() keycode.KeyCode  { return a.tap }
func (a KeyAction) HoldCode() keycode.KeyCode { return a.hold }

func (a KeyAction) String() string {
	if a.tapHold {
		return fmt.Sprintf("TapHold(%v, %v)", a.tap, a.hold)
	}
	return fmt.Sprintf("Tap(%v)", a.tap)
}

// DefKind is the kind of a layer cell.
type DefKind uint8

const (
	// Inherit is transparent: the lookup continues on the layer below.
	Inherit DefKind = iota
	// None blocks the lookup: the key does nothing.
	None
	// Action stops the lookup with a result.
	Action
)

// KeyDef is one layer cell. The zero value is Inherit.
type KeyDef struct {
	kind   DefKind
	action KeyAction
}

// Key returns a cell holding action.
func Key(action KeyAction) KeyDef { return KeyDef{kind: Action, action: action} }

// Blocked returns a None cell.
func Blocked() KeyDef { return KeyDef{kind: None} }

func (d KeyDef) Kind() DefKind     { return d.kind }
func (d KeyDef) Action() KeyAction { return d.action }

// Layer is one layer grid.
type Layer struct {
	Map [layout.Rows][layout.TotalCols]KeyDef
	// Pointer marks a layer that turns pointer motion into arrow keys
	// while it is the highest active layer.
	Pointer bool
}

// Keymap is the full layer table.
type Keymap [layout.LayerNum]Layer

// Active is the per-layer active flag set.
type Active [layout.LayerNum]bool

// Highest returns the greatest active layer index, or 0.
func (a *Active) Highest() int {
	for i := len(a) - 1; i > 0; i-- {
		if a[i] {
			return i
		}
	}
	return 0
}

// Lookup resolves c against the layer stack, starting at the highest active
// layer and walking down. Layer 0 is always part of the walk.
func (m *Keymap) Lookup(active *Active, c layout.Coord) (KeyAction, bool) {
	if !c.Valid() {
		return KeyAction{}, false
	}
	for l := active.Highest(); l >= 0; l-- {
		def := m[l].Map[c.Row][c.Col]
		switch def.kind {
		case None:
			return KeyAction{}, false
		case Action:
			return def.action, true
		}
	}
	return KeyAction{}, false
}

// Validate checks that every layer operation names an existing layer.
func (m *Keymap) Validate() error {
	for l := range m {
		for r := range m[l].Map {
			for c, def := range m[l].Map[r] {
				if def.kind != Action {
					continue
				}
				for _, kc := range []keycode.KeyCode{def.action.tap, def.action.hold} {
					if kc.Kind() != keycode.KindLayer {
						continue
					}
					if _, n := kc.Layer(); int(n) >= layout.LayerNum {
						return fmt.Errorf("keymap: layer %d cell (%d,%d): %v: %w", l, r, c, kc, ErrLayerRange)
					}
				}
			}
		}
	}
	return nil
}
