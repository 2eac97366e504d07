package keymap

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"keyball/firmware/keycode"
	"keyball/firmware/layout"
)

var ErrBadCell = errors.New("bad keymap cell")

// Cell names understood by ParseCell besides the keycode table names.
const (
	InheritName = "____"
	NoneName    = "XXXX"
)

// ParseCell parses one cell of a textual layer grid:
//
//	____           inherit
//	XXXX           none
//	A, L_SHFT ...  Tap of a table name
//	MV(n), TG(n)   layer move / toggle
//	TH(tap,hold)   tap-hold of two codes
func ParseCell(s string) (KeyDef, error) {
	s = strings.TrimSpace(s)
	switch s {
	case InheritName:
		return KeyDef{}, nil
	case NoneName:
		return Blocked(), nil
	}
	if inner, ok := call(s, "TH"); ok {
		tap, hold, found := strings.Cut(inner, ",")
		if !found {
			return KeyDef{}, fmt.Errorf("keymap: %q: %w", s, ErrBadCell)
		}
		t, err := ParseCode(tap)
		if err != nil {
			return KeyDef{}, err
		}
		h, err := ParseCode(hold)
		if err != nil {
			return KeyDef{}, err
		}
		return Key(TapHold(t, h)), nil
	}
	kc, err := ParseCode(s)
	if err != nil {
		return KeyDef{}, err
	}
	return Key(Tap(kc)), nil
}

// ParseCode parses a single key code name or a layer operation.
func ParseCode(s string) (keycode.KeyCode, error) {
	s = strings.TrimSpace(s)
	for _, op := range []struct {
		prefix string
		make   func(uint8) keycode.KeyCode
	}{
		{"MV", keycode.MoveTo},
		{"TG", keycode.ToggleOf},
	} {
		inner, ok := call(s, op.prefix)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(inner)
		if err != nil {
			return keycode.KeyCode{}, fmt.Errorf("keymap: %q: %w", s, ErrBadCell)
		}
		if n < 0 || n >= layout.LayerNum {
			return keycode.KeyCode{}, fmt.Errorf("keymap: %q: %w", s, ErrLayerRange)
		}
		return op.make(uint8(n)), nil
	}
	kc, ok := keycode.Lookup(s)
	if !ok {
		return keycode.KeyCode{}, fmt.Errorf("keymap: unknown key %q: %w", s, ErrBadCell)
	}
	return kc, nil
}

func call(s, name string) (string, bool) {
	if !strings.HasPrefix(s, name+"(") || !strings.HasSuffix(s, ")") {
		return "", false
	}
	return s[len(name)+1 : len(s)-1], true
}

// Grid is a textual layer.
type Grid [layout.Rows][layout.TotalCols]string

// ParseLayer parses a textual layer grid.
func ParseLayer(g Grid, pointer bool) (Layer, error) {
	l := Layer{Pointer: pointer}
	for r := range g {
		for c, cell := range g[r] {
			def, err := ParseCell(cell)
			if err != nil {
				return Layer{}, fmt.Errorf("row %d col %d: %w", r, c, err)
			}
			l.Map[r][c] = def
		}
	}
	return l, nil
}
