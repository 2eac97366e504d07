//go:build !tinygo && cgo

package hal

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"keyball/firmware/layout"
)

// hostKey places one PC key on a half-local switch.
type hostKey struct {
	hand layout.Hand
	cell layout.Coord
}

// hostKeys maps the PC keyboard onto both halves. Right half columns are
// local, so the inner column is 5 and the outer one 0.
var hostKeys = map[ebiten.Key]hostKey{
	ebiten.KeyEscape: {layout.Left, layout.Coord{Row: 0, Col: 0}},
	ebiten.KeyDigit1: {layout.Left, layout.Coord{Row: 0, Col: 1}},
	ebiten.KeyDigit2: {layout.Left, layout.Coord{Row: 0, Col: 2}},
	ebiten.KeyDigit3: {layout.Left, layout.Coord{Row: 0, Col: 3}},
	ebiten.KeyDigit4: {layout.Left, layout.Coord{Row: 0, Col: 4}},
	ebiten.KeyDigit5: {layout.Left, layout.Coord{Row: 0, Col: 5}},

	ebiten.KeyTab: {layout.Left, layout.Coord{Row: 1, Col: 0}},
	ebiten.KeyQ:   {layout.Left, layout.Coord{Row: 1, Col: 1}},
	ebiten.KeyW:   {layout.Left, layout.Coord{Row: 1, Col: 2}},
	ebiten.KeyE:   {layout.Left, layout.Coord{Row: 1, Col: 3}},
	ebiten.KeyR:   {layout.Left, layout.Coord{Row: 1, Col: 4}},
	ebiten.KeyT:   {layout.Left, layout.Coord{Row: 1, Col: 5}},

	ebiten.KeyCapsLock: {layout.Left, layout.Coord{Row: 2, Col: 0}},
	ebiten.KeyA:        {layout.Left, layout.Coord{Row: 2, Col: 1}},
	ebiten.KeyS:        {layout.Left, layout.Coord{Row: 2, Col: 2}},
	ebiten.KeyD:        {layout.Left, layout.Coord{Row: 2, Col: 3}},
	ebiten.KeyF:        {layout.Left, layout.Coord{Row: 2, Col: 4}},
	ebiten.KeyG:        {layout.Left, layout.Coord{Row: 2, Col: 5}},

	ebiten.KeyShiftLeft: {layout.Left, layout.Coord{Row: 3, Col: 0}},
	ebiten.KeyZ:         {layout.Left, layout.Coord{Row: 3, Col: 1}},
	ebiten.KeyX:         {layout.Left, layout.Coord{Row: 3, Col: 2}},
	ebiten.KeyC:         {layout.Left, layout.Coord{Row: 3, Col: 3}},
	ebiten.KeyV:         {layout.Left, layout.Coord{Row: 3, Col: 4}},
	ebiten.KeyB:         {layout.Left, layout.Coord{Row: 3, Col: 5}},

	ebiten.KeyControlLeft: {layout.Left, layout.Coord{Row: 4, Col: 0}},
	ebiten.KeyAltLeft:     {layout.Left, layout.Coord{Row: 4, Col: 2}},
	ebiten.KeyMetaLeft:    {layout.Left, layout.Coord{Row: 4, Col: 3}},
	ebiten.KeySpace:       {layout.Left, layout.Coord{Row: 4, Col: 5}},

	ebiten.KeyDigit6:    {layout.Right, layout.Coord{Row: 0, Col: 5}},
	ebiten.KeyDigit7:    {layout.Right, layout.Coord{Row: 0, Col: 4}},
	ebiten.KeyDigit8:    {layout.Right, layout.Coord{Row: 0, Col: 3}},
	ebiten.KeyDigit9:    {layout.Right, layout.Coord{Row: 0, Col: 2}},
	ebiten.KeyDigit0:    {layout.Right, layout.Coord{Row: 0, Col: 1}},
	ebiten.KeyBackspace: {layout.Right, layout.Coord{Row: 0, Col: 0}},

	ebiten.KeyY:         {layout.Right, layout.Coord{Row: 1, Col: 5}},
	ebiten.KeyU:         {layout.Right, layout.Coord{Row: 1, Col: 4}},
	ebiten.KeyI:         {layout.Right, layout.Coord{Row: 1, Col: 3}},
	ebiten.KeyO:         {layout.Right, layout.Coord{Row: 1, Col: 2}},
	ebiten.KeyP:         {layout.Right, layout.Coord{Row: 1, Col: 1}},
	ebiten.KeyBackslash: {layout.Right, layout.Coord{Row: 1, Col: 0}},

	ebiten.KeyH:         {layout.Right, layout.Coord{Row: 2, Col: 5}},
	ebiten.KeyJ:         {layout.Right, layout.Coord{Row: 2, Col: 4}},
	ebiten.KeyK:         {layout.Right, layout.Coord{Row: 2, Col: 3}},
	ebiten.KeyL:         {layout.Right, layout.Coord{Row: 2, Col: 2}},
	ebiten.KeySemicolon: {layout.Right, layout.Coord{Row: 2, Col: 1}},
	ebiten.KeyQuote:     {layout.Right, layout.Coord{Row: 2, Col: 0}},

	ebiten.KeyN:          {layout.Right, layout.Coord{Row: 3, Col: 5}},
	ebiten.KeyM:          {layout.Right, layout.Coord{Row: 3, Col: 4}},
	ebiten.KeyComma:      {layout.Right, layout.Coord{Row: 3, Col: 3}},
	ebiten.KeyPeriod:     {layout.Right, layout.Coord{Row: 3, Col: 2}},
	ebiten.KeySlash:      {layout.Right, layout.Coord{Row: 3, Col: 1}},
	ebiten.KeyShiftRight: {layout.Right, layout.Coord{Row: 3, Col: 0}},

	ebiten.KeyEnter:        {layout.Right, layout.Coord{Row: 4, Col: 5}},
	ebiten.KeyAltRight:     {layout.Right, layout.Coord{Row: 4, Col: 3}},
	ebiten.KeyControlRight: {layout.Right, layout.Coord{Row: 4, Col: 0}},
}

// pollKeys closes and opens switches for the PC keys that changed this frame.
func pollKeys(s *Sim) {
	for _, k := range inpututil.AppendJustPressedKeys(nil) {
		if hk, ok := hostKeys[k]; ok {
			s.SetKey(hk.hand, hk.cell, true)
		}
	}
	for _, k := range inpututil.AppendJustReleasedKeys(nil) {
		if hk, ok := hostKeys[k]; ok {
			s.SetKey(hk.hand, hk.cell, false)
		}
	}
}

// pointerDrag rolls the ball while the left mouse button is held.
type pointerDrag struct {
	x, y   int
	active bool
}

func (p *pointerDrag) poll(s *Sim) {
	x, y := ebiten.CursorPosition()
	if !ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft) {
		p.active = false
		return
	}
	if p.active {
		// Screen x is the sensor's second axis.
		s.Move(y-p.y, x-p.x)
	}
	p.x, p.y, p.active = x, y, true
}
