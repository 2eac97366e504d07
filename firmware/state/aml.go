package state

import (
	"time"

	"keyball/firmware/config"
)

// autoPointer activates the pointer layer on pointer activity and drops it
// after a quiet period or as soon as a normal key is pressed.
type autoPointer struct {
	start   time.Time
	started bool
}

// update returns the layer state and whether it changed this cycle.
func (a *autoPointer) update(cfg *config.Config, now time.Time, m Motion, buttons uint8, scroll, normalKey bool) (active, changed bool) {
	th := cfg.AutoPointerThreshold
	if abs(int(m.D0)) > th || abs(int(m.D1)) > th || buttons != 0 || scroll {
		a.start = now
		changed = !a.started
		a.started = true
		return true, true
	}
	if !a.started {
		return false, changed
	}
	if now.Sub(a.start) > cfg.AutoPointerDuration.D() || normalKey {
		a.started = false
		return false, true
	}
	return true, false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
