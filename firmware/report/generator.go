package report

// Keys accumulates the key slots and modifier bits of one cycle.
type Keys struct {
	keys [MaxKeys]uint8
	n    int
	mod  uint8
}

// Add appends key. It reports false when all slots are taken; the key is
// dropped.
func (k *Keys) Add(key uint8) bool {
	if k.n >= MaxKeys {
		return false
	}
	k.keys[k.n] = key
	k.n++
	return true
}

// AddWithModifier appends key and sets mod together, or does neither.
func (k *Keys) AddWithModifier(mod, key uint8) bool {
	if !k.Add(key) {
		return false
	}
	k.mod |= mod
	return true
}

// AddModifier sets modifier bits.
func (k *Keys) AddModifier(mod uint8) { k.mod |= mod }

// Len returns the number of used key slots.
func (k *Keys) Len() int { return k.n }

// Modifier returns the accumulated modifier bits.
func (k *Keys) Modifier() uint8 { return k.mod }

// Reset clears the accumulator for the next cycle.
func (k *Keys) Reset() { *k = Keys{} }

// KeyboardGenerator applies the empty-report-once rule to keyboard reports.
type KeyboardGenerator struct {
	emptySent bool
}

// Generate returns the report to send for this cycle's keys, if any.
func (g *KeyboardGenerator) Generate(k *Keys) (Keyboard, bool) {
	if k.n == 0 && k.mod == 0 {
		if g.emptySent {
			return Keyboard{}, false
		}
		g.emptySent = true
		return Keyboard{}, true
	}
	g.emptySent = false
	return Keyboard{Modifier: k.mod, Keys: k.keys}, true
}

// PointerGenerator applies the empty-report-once rule to pointer reports
// and turns motion into wheel and pan while scroll mode is on.
type PointerGenerator struct {
	// WheelDivisor divides the sensor's first axis into wheel ticks.
	WheelDivisor int
	// PanDivisor divides the sensor's second axis into pan ticks.
	PanDivisor int

	emptySent bool
	scrolling bool
	wheelRem  int
	panRem    int
}

// Generate returns the pointer report for motion (d0, d1) in sensor axes.
// The sensor is mounted rotated, so outside scroll mode x is d1 and y is d0.
func (g *PointerGenerator) Generate(d0, d1 int8, buttons uint8, scroll bool) (Mouse, bool) {
	if scroll && !g.scrolling {
		g.wheelRem, g.panRem = 0, 0
	}
	g.scrolling = scroll

	if d0 == 0 && d1 == 0 && buttons == 0 {
		if g.emptySent {
			return Mouse{}, false
		}
		g.emptySent = true
		return Mouse{}, true
	}
	g.emptySent = false

	if !scroll {
		return Mouse{Buttons: buttons, X: d1, Y: d0}, true
	}

	var wheel, pan int
	wheel, g.wheelRem = divRem(int(d0)+g.wheelRem, g.WheelDivisor)
	pan, g.panRem = divRem(int(d1)+g.panRem, g.PanDivisor)
	return Mouse{Buttons: buttons, Wheel: clamp8(wheel), Pan: clamp8(pan)}, true
}

// Remainders returns the scroll motion carried to the next cycle.
func (g *PointerGenerator) Remainders() (wheel, pan int) { return g.wheelRem, g.panRem }

func divRem(v, d int) (q, r int) {
	if d == 0 {
		return 0, v
	}
	return v / d, v % d
}

func clamp8(v int) int8 {
	switch {
	case v > 127:
		return 127
	case v < -128:
		return -128
	default:
		return int8(v)
	}
}

// MediaGenerator emits a media usage only when it changes, and a single zero
// report once the media key is released.
type MediaGenerator struct {
	prev      uint16
	hasPrev   bool
	emptySent bool
}

// Generate returns the media report for this cycle. ok is false when no
// media key resolved.
func (g *MediaGenerator) Generate(usage uint16, ok bool) (Media, bool) {
	if !ok {
		g.hasPrev = false
		if g.emptySent {
			return Media{}, false
		}
		g.emptySent = true
		return Media{}, true
	}
	g.emptySent = false
	if g.hasPrev && g.prev == usage {
		return Media{}, false
	}
	g.prev, g.hasPrev = usage, true
	return Media{Usage: usage}, true
}
