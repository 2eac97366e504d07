// Package pressed tracks which keys of the merged grid are down and since when.
package pressed

import (
	"fmt"
	"time"

	"keyball/firmware/layout"
)

// Change is the kind of a key state event.
type Change uint8

const (
	// Pressed is the released -> pressed edge.
	Pressed Change = iota + 1
	// Pressing is reported every cycle while a key stays down.
	Pressing
	// Released is the pressed -> released edge.
	Released
)

func (c Change) String() string {
	switch c {
	case Pressed:
		return "pressed"
	case Pressing:
		return "pressing"
	case Released:
		return "released"
	default:
		return fmt.Sprintf("Change(%d)", uint8(c))
	}
}

// Event is one semantic key change. Duration is measured from the original
// press and is zero for Pressed.
type Event struct {
	Coord    layout.Coord
	Change   Change
	Duration time.Duration
}

// Transition is a raw press/release observation on the merged grid.
type Transition struct {
	Coord   layout.Coord
	Pressed bool
}

// Tracker holds the press start instant of every key.
type Tracker struct {
	down  [layout.Rows][layout.TotalCols]bool
	start [layout.Rows][layout.TotalCols]time.Time
	seen  [layout.Rows][layout.TotalCols]bool
}

// SetPressed records one observation for c and returns the resulting event.
// A second pressed observation keeps the original start instant.
func (t *Tracker) SetPressed(pressed bool, c layout.Coord, now time.Time) (Event, bool) {
	if !c.Valid() {
		return Event{}, false
	}
	down := &t.down[c.Row][c.Col]
	start := &t.start[c.Row][c.Col]
	switch {
	case pressed && !*down:
		*down = true
		*start = now
		return Event{Coord: c, Change: Pressed}, true
	case pressed && *down:
		return Event{Coord: c, Change: Pressing, Duration: now.Sub(*start)}, true
	case !pressed && *down:
		*down = false
		d := now.Sub(*start)
		*start = time.Time{}
		return Event{Coord: c, Change: Released, Duration: d}, true
	default:
		return Event{}, false
	}
}

// Compose applies this cycle's transitions, then appends a Pressing event for
// every key that is still down and had no transition this cycle.
func (t *Tracker) Compose(dst []Event, transitions []Transition, now time.Time) []Event {
	t.seen = [layout.Rows][layout.TotalCols]bool{}
	for _, tr := range transitions {
		ev, ok := t.SetPressed(tr.Pressed, tr.Coord, now)
		if !ok {
			continue
		}
		t.seen[tr.Coord.Row][tr.Coord.Col] = true
		dst = append(dst, ev)
	}
	for r := range t.down {
		for c := range t.down[r] {
			if !t.down[r][c] || t.seen[r][c] {
				continue
			}
			dst = append(dst, Event{
				Coord:    layout.Coord{Row: uint8(r), Col: uint8(c)},
				Change:   Pressing,
				Duration: now.Sub(t.start[r][c]),
			})
		}
	}
	return dst
}

// Count returns the number of keys currently down.
func (t *Tracker) Count() int {
	n := 0
	for r := range t.down {
		for c := range t.down[r] {
			if t.down[r][c] {
				n++
			}
		}
	}
	return n
}
