package state

import (
	"keyball/firmware/keycode"
	"keyball/firmware/pressed"
	"keyball/firmware/report"
)

type layerHandler struct{}

func (layerHandler) processEvent(s *State, c *cycle, r resolved) {
	if r.code.Kind() != keycode.KindLayer {
		return
	}
	op, n := r.code.Layer()
	if int(n) >= len(s.active) {
		return
	}
	released := r.ev.Change == pressed.Released
	switch op {
	case keycode.Move:
		s.active[n] = !released
	case keycode.Toggle:
		if released {
			s.active[n] = !s.active[n]
		}
	}
}

func (layerHandler) finalize(*State, *cycle, *report.Set) {}

type keyboardHandler struct {
	gen report.KeyboardGenerator
}

func (h *keyboardHandler) processEvent(s *State, c *cycle, r resolved) {
	switch r.code.Kind() {
	case keycode.KindKey:
		if !r.fires() {
			return
		}
		if r.ev.Change == pressed.Pressed || r.once {
			c.normalKeyPressed = true
		}
		c.keys.Add(uint8(r.code.Key()))
	case keycode.KindWithModifier:
		if !r.fires() {
			return
		}
		if r.ev.Change == pressed.Pressed || r.once {
			c.normalKeyPressed = true
		}
		c.keys.AddWithModifier(uint8(r.code.Modifier()), uint8(r.code.Key()))
	case keycode.KindModifier:
		if r.fires() {
			c.keys.AddModifier(uint8(r.code.Modifier()))
		}
	}
}

func (h *keyboardHandler) finalize(s *State, c *cycle, out *report.Set) {
	out.Keyboard, out.HasKeyboard = h.gen.Generate(&c.keys)
}

type mediaHandler struct {
	gen report.MediaGenerator
}

func (h *mediaHandler) processEvent(s *State, c *cycle, r resolved) {
	if r.code.Kind() != keycode.KindMedia || !r.fires() {
		return
	}
	c.media, c.hasMedia = uint16(r.code.Media()), true
}

func (h *mediaHandler) finalize(s *State, c *cycle, out *report.Set) {
	out.Media, out.HasMedia = h.gen.Generate(c.media, c.hasMedia)
}

type pointerHandler struct {
	gen    report.PointerGenerator
	scroll bool
	aml    autoPointer
	arrow  arrowBall
}

func (h *pointerHandler) processEvent(s *State, c *cycle, r resolved) {
	switch r.code.Kind() {
	case keycode.KindMouse:
		if r.fires() {
			c.buttons |= uint8(r.code.Mouse())
		}
	case keycode.KindSpecial:
		if r.code.Special() == keycode.ScrollMode {
			h.scroll = r.ev.Change != pressed.Released
		}
	}
}

// finalize runs before the keyboard handler: the arrow ball adds keys.
func (h *pointerHandler) finalize(s *State, c *cycle, out *report.Set) {
	layer := s.cfg.AutoPointerLayer
	if layer > 0 && layer < len(s.active) {
		active, changed := h.aml.update(&s.cfg, c.now, c.motion, c.buttons, h.scroll, c.normalKeyPressed)
		if changed {
			s.active[layer] = active
		}
	}

	m := c.motion
	if s.keymap[s.active.Highest()].Pointer {
		for _, k := range h.arrow.feed(m, s.cfg.ArrowBallThreshold) {
			c.keys.Add(uint8(k))
		}
		m = Motion{}
	} else {
		h.arrow.reset()
	}

	out.Mouse, out.HasMouse = h.gen.Generate(m.D0, m.D1, c.buttons, h.scroll)
}

// arrowBall turns motion into arrow keys while a pointer layer is on top.
type arrowBall struct {
	x, y int
	// cool skips one cycle after an arrow so repeated arrows reach the
	// host as separate taps.
	cool bool
	buf  [2]keycode.Key
}

func (a *arrowBall) reset() { *a = arrowBall{} }

// feed accumulates motion and returns at most one arrow per axis. Screen x is
// the sensor's second axis and screen y its first.
func (a *arrowBall) feed(m Motion, threshold int) []keycode.Key {
	keys := a.buf[:0]
	if threshold <= 0 {
		return keys
	}
	a.x += int(m.D1)
	a.y += int(m.D0)
	if a.cool {
		a.cool = false
		return keys
	}
	switch {
	case a.x >= threshold:
		keys = append(keys, keycode.KeyRight)
		a.x -= threshold
	case a.x <= -threshold:
		keys = append(keys, keycode.KeyLeft)
		a.x += threshold
	}
	switch {
	case a.y >= threshold:
		keys = append(keys, keycode.KeyDown)
		a.y -= threshold
	case a.y <= -threshold:
		keys = append(keys, keycode.KeyUp)
		a.y += threshold
	}
	a.cool = len(keys) > 0
	return keys
}
