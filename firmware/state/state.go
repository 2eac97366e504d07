// Package state is the key fusion engine: it turns one cycle of key
// transitions and pointer motion into HID reports.
//
// Each cycle composes the raw transitions into change events, resolves every
// event against the layer stack and hands the resolved code to a fixed set of
// handlers (layers, pointer, keyboard, media). The handlers then finalize in
// that order and produce the cycle's reports.
package state

import (
	"time"

	"keyball/firmware/config"
	"keyball/firmware/keycode"
	"keyball/firmware/keymap"
	"keyball/firmware/layout"
	"keyball/firmware/pressed"
	"keyball/firmware/report"
)

// Motion is one pointer sensor reading in sensor axes.
type Motion struct {
	D0 int8
	D1 int8
}

// Zero reports whether there was no motion.
func (m Motion) Zero() bool { return m.D0 == 0 && m.D1 == 0 }

// resolved is one event after keymap resolution.
type resolved struct {
	code   keycode.KeyCode
	ev     pressed.Event
	// once marks a tap-hold code that fires only on its release cycle: the
	// tap, or a hold that never fired while the key was down.
	once bool
}

// fires reports whether the code is live this cycle.
func (r resolved) fires() bool {
	return r.ev.Change != pressed.Released || r.once
}

// cycle is the per-cycle scratch state shared by the handlers.
type cycle struct {
	now              time.Time
	motion           Motion
	normalKeyPressed bool
	keys             report.Keys
	buttons          uint8
	media            uint16
	hasMedia         bool
}

type handler interface {
	processEvent(s *State, c *cycle, r resolved)
	finalize(s *State, c *cycle, out *report.Set)
}

// State is the engine. It is owned by the primary's fusion loop.
type State struct {
	cfg    config.Config
	keymap *keymap.Keymap
	active keymap.Active

	tracker     pressed.Tracker
	events      []pressed.Event
	interrupted [layout.Rows][layout.TotalCols]bool
	holdFired   [layout.Rows][layout.TotalCols]bool

	layers   layerHandler
	pointer  pointerHandler
	keyboard keyboardHandler
	media    mediaHandler

	c cycle
}

// New returns an engine for km using cfg.
func New(cfg config.Config, km *keymap.Keymap) *State {
	s := &State{
		cfg:    cfg,
		keymap: km,
		events: make([]pressed.Event, 0, layout.Rows*layout.TotalCols),
	}
	s.pointer.gen = report.PointerGenerator{
		WheelDivisor: cfg.ScrollDividerY,
		PanDivisor:   cfg.ScrollDividerX,
	}
	return s
}

// Update runs one fusion cycle.
func (s *State) Update(transitions []pressed.Transition, m Motion, now time.Time) report.Set {
	s.c = cycle{now: now, motion: m}
	c := &s.c

	s.events = s.tracker.Compose(s.events[:0], transitions, now)

	handlers := [...]handler{&s.layers, &s.pointer, &s.keyboard, &s.media}
	for _, ev := range s.events {
		r, ok := s.resolve(ev)
		if ok {
			for _, h := range handlers {
				h.processEvent(s, c, r)
			}
		}
		if ev.Change == pressed.Released {
			s.interrupted[ev.Coord.Row][ev.Coord.Col] = false
			s.holdFired[ev.Coord.Row][ev.Coord.Col] = false
		}
	}

	if c.normalKeyPressed {
		for _, ev := range s.events {
			if ev.Change == pressed.Pressing {
				s.interrupted[ev.Coord.Row][ev.Coord.Col] = true
			}
		}
	}

	var out report.Set
	for _, h := range handlers {
		h.finalize(s, c, &out)
	}
	return out
}

// resolve looks ev up in the layer stack and applies the tap/hold policy.
func (s *State) resolve(ev pressed.Event) (resolved, bool) {
	action, ok := s.keymap.Lookup(&s.active, ev.Coord)
	if !ok {
		return resolved{}, false
	}
	if !action.IsTapHold() {
		return resolved{code: action.TapCode(), ev: ev}, true
	}

	threshold := s.cfg.TapThreshold.D()
	forced := s.cfg.PermissiveHold && s.interrupted[ev.Coord.Row][ev.Coord.Col]
	switch ev.Change {
	case pressed.Pressing:
		if ev.Duration > threshold || forced {
			s.holdFired[ev.Coord.Row][ev.Coord.Col] = true
			return resolved{code: action.HoldCode(), ev: ev}, true
		}
	case pressed.Released:
		if ev.Duration > threshold || forced {
			// A release can cross the threshold between two cycles.
			fired := s.holdFired[ev.Coord.Row][ev.Coord.Col]
			return resolved{code: action.HoldCode(), ev: ev, once: !fired}, true
		}
		return resolved{code: action.TapCode(), ev: ev, once: true}, true
	}
	return resolved{}, false
}

// HighestLayer returns the highest active layer index.
func (s *State) HighestLayer() int { return s.active.Highest() }

// ScrollMode reports whether scroll mode is on.
func (s *State) ScrollMode() bool { return s.pointer.scroll }
