package pressed

import (
	"testing"
	"time"

	"keyball/firmware/layout"
)

var t0 = time.Unix(1000, 0)

func at(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

func TestSetPressedTransitions(t *testing.T) {
	var tr Tracker
	c := layout.Coord{Row: 1, Col: 2}

	if _, ok := tr.SetPressed(false, c, at(0)); ok {
		t.Fatalf("released -> released emitted an event")
	}

	ev, ok := tr.SetPressed(true, c, at(0))
	if !ok || ev.Change != Pressed || ev.Duration != 0 {
		t.Fatalf("SetPressed(true) = %+v, %v; want Pressed", ev, ok)
	}

	ev, ok = tr.SetPressed(true, c, at(40))
	if !ok || ev.Change != Pressing || ev.Duration != 40*time.Millisecond {
		t.Fatalf("SetPressed(true) again = %+v, %v; want Pressing(40ms)", ev, ok)
	}

	ev, ok = tr.SetPressed(false, c, at(90))
	if !ok || ev.Change != Released || ev.Duration != 90*time.Millisecond {
		t.Fatalf("SetPressed(false) = %+v, %v; want Released(90ms)", ev, ok)
	}
	if got := tr.Count(); got != 0 {
		t.Fatalf("Count() after release = %d, want 0", got)
	}
}

func TestRepressKeepsStart(t *testing.T) {
	var tr Tracker
	c := layout.Coord{Row: 0, Col: 0}
	tr.SetPressed(true, c, at(0))
	tr.SetPressed(true, c, at(100))
	tr.SetPressed(true, c, at(150))
	ev, _ := tr.SetPressed(false, c, at(220))
	if ev.Duration != 220*time.Millisecond {
		t.Fatalf("Released duration = %v, want 220ms", ev.Duration)
	}
}

func TestComposeReportsHeldKeys(t *testing.T) {
	var tr Tracker
	a := layout.Coord{Row: 0, Col: 1}
	b := layout.Coord{Row: 3, Col: 10}

	evs := tr.Compose(nil, []Transition{{Coord: a, Pressed: true}}, at(0))
	if len(evs) != 1 || evs[0].Change != Pressed {
		t.Fatalf("cycle 1 = %+v, want one Pressed", evs)
	}

	evs = tr.Compose(evs[:0], []Transition{{Coord: b, Pressed: true}}, at(10))
	if len(evs) != 2 {
		t.Fatalf("cycle 2 = %+v, want 2 events", evs)
	}
	if evs[0].Coord != b || evs[0].Change != Pressed {
		t.Fatalf("cycle 2 first = %+v, want Pressed %v", evs[0], b)
	}
	if evs[1].Coord != a || evs[1].Change != Pressing || evs[1].Duration != 10*time.Millisecond {
		t.Fatalf("cycle 2 second = %+v, want Pressing(10ms) %v", evs[1], a)
	}

	evs = tr.Compose(evs[:0], []Transition{{Coord: a, Pressed: false}}, at(30))
	if len(evs) != 2 {
		t.Fatalf("cycle 3 = %+v, want 2 events", evs)
	}
	if evs[0].Change != Released || evs[0].Duration != 30*time.Millisecond {
		t.Fatalf("cycle 3 first = %+v, want Released(30ms)", evs[0])
	}
	if evs[1].Coord != b || evs[1].Change != Pressing || evs[1].Duration != 20*time.Millisecond {
		t.Fatalf("cycle 3 second = %+v, want Pressing(20ms) %v", evs[1], b)
	}
	if got := tr.Count(); got != 1 {
		t.Fatalf("Count() = %d, want 1", got)
	}
}

func TestComposeIgnoresInvalid(t *testing.T) {
	var tr Tracker
	evs := tr.Compose(nil, []Transition{{Coord: layout.Coord{Row: 9, Col: 0}, Pressed: true}}, at(0))
	if len(evs) != 0 {
		t.Fatalf("Compose() = %+v, want none", evs)
	}
}
