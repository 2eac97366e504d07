package keymap

import (
	"fmt"

	"keyball/firmware/layout"
)

var defaultGrids = [layout.LayerNum]struct {
	grid    Grid
	pointer bool
}{
	// base
	{grid: Grid{
		{"JZNHN", "D1", "D2", "D3", "D4", "D5", "____" /**/, "____", "D6", "D7", "D8", "D9", "D0", "JYEN"},
		{"TAB", "Q", "W", "E", "R", "T", "____" /**/, "____", "Y", "U", "I", "O", "P", "MINUS"},
		{"ESC", "A", "S", "D", "F", "G", "____" /**/, "____", "H", "J", "K", "L", "SEMI", "JCOLN"},
		{"L_SHFT", "Z", "X", "C", "V", "B", "JLBRC" /**/, "JRBRC", "N", "M", "COMM", "DOT", "SLASH", "JBSLSH"},
		{"L_CTRL", "L_GUI", "MV(3)", "TG(2)", "L_ALT", "SPACE", "SPACE" /**/, "BS", "TH(ENTER,MV(2))", "____", "____", "____", "JCARET", "JAT"},
	}},
	// auto pointer
	{grid: Grid{
		{"____", "____", "____", "____", "____", "____", "____" /**/, "____", "____", "____", "____", "____", "____", "____"},
		{"____", "____", "____", "____", "____", "____", "____" /**/, "____", "LEFT", "DOWN", "UP", "RIGHT", "____", "____"},
		{"____", "____", "____", "____", "____", "____", "____" /**/, "____", "____", "M_L", "MO_SCRL", "M_R", "____", "____"},
		{"____", "____", "____", "____", "____", "____", "____" /**/, "____", "____", "M_BCK", "M_MID", "M_FWD", "____", "____"},
		{"____", "____", "____", "____", "____", "____", "____" /**/, "____", "____", "____", "____", "____", "____", "____"},
	}},
	// function and pointer buttons
	{grid: Grid{
		{"____", "F1", "F2", "F3", "F4", "F5", "____" /**/, "____", "F6", "F7", "F8", "F9", "F10", "F11"},
		{"____", "____", "____", "____", "____", "____", "____" /**/, "____", "LEFT", "DOWN", "UP", "RIGHT", "____", "F12"},
		{"____", "____", "____", "____", "____", "____", "____" /**/, "____", "____", "M_L", "MO_SCRL", "M_R", "____", "VOLUP"},
		{"____", "____", "____", "____", "____", "____", "____" /**/, "____", "____", "M_BCK", "M_MID", "M_FWD", "____", "VOLDN"},
		{"____", "____", "____", "TG(2)", "____", "____", "____" /**/, "____", "____", "____", "____", "____", "____", "PRTSC"},
	}},
	// arrow ball
	{pointer: true, grid: Grid{
		{"____", "____", "____", "____", "____", "____", "____" /**/, "____", "____", "____", "____", "____", "____", "____"},
		{"____", "____", "____", "____", "____", "____", "____" /**/, "____", "____", "____", "____", "____", "____", "____"},
		{"____", "____", "____", "____", "____", "____", "____" /**/, "____", "____", "M_L", "M_MID", "M_R", "____", "____"},
		{"____", "____", "____", "____", "____", "____", "____" /**/, "____", "____", "____", "____", "____", "____", "____"},
		{"____", "____", "____", "TG(0)", "____", "____", "____" /**/, "____", "____", "____", "____", "____", "____", "____"},
	}},
}

// Default returns the built-in keymap.
func Default() Keymap {
	var m Keymap
	for i, g := range defaultGrids {
		l, err := ParseLayer(g.grid, g.pointer)
		if err != nil {
			panic(fmt.Sprintf("keymap: default layer %d: %v", i, err))
		}
		m[i] = l
	}
	return m
}
