//go:build !tinygo

package hal

import (
	"errors"
	"testing"

	"keyball/firmware/layout"
)

func newGridScanner(t *testing.T, hand layout.Hand) (*switchGrid, *DuplexScanner) {
	t.Helper()
	g := newSwitchGrid(hand)
	rows, cols := g.pins()
	s, err := NewDuplexScanner(rows, cols)
	if err != nil {
		t.Fatalf("NewDuplexScanner() = %v", err)
	}
	return g, s
}

func TestDetectHand(t *testing.T) {
	for _, hand := range []layout.Hand{layout.Left, layout.Right} {
		t.Run(hand.String(), func(t *testing.T) {
			_, s := newGridScanner(t, hand)
			if got := s.Hand(); got != hand {
				t.Fatalf("Hand() = %v, want %v", got, hand)
			}
		})
	}
}

func TestScanReportsChangesOnly(t *testing.T) {
	tests := []struct {
		name string
		hand layout.Hand
		c    layout.Coord
	}{
		{"col to row", layout.Left, layout.Coord{Row: 0, Col: 0}},
		{"col to row last", layout.Right, layout.Coord{Row: 4, Col: 2}},
		{"row to col", layout.Left, layout.Coord{Row: 1, Col: 3}},
		{"row to col last", layout.Right, layout.Coord{Row: 3, Col: 6}},
		{"jumper cell on the right", layout.Right, layout.Coord{Row: 2, Col: 6}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, s := newGridScanner(t, tt.hand)
			if got := s.Scan(nil); len(got) != 0 {
				t.Fatalf("idle Scan() = %v, want none", got)
			}

			g.set(tt.c, true)
			got := s.Scan(nil)
			want := KeyEvent{Row: tt.c.Row, Col: tt.c.Col, Pressed: true}
			if len(got) != 1 || got[0] != want {
				t.Fatalf("Scan() = %v, want [%v]", got, want)
			}
			if got := s.Scan(nil); len(got) != 0 {
				t.Fatalf("held Scan() = %v, want none", got)
			}

			g.set(tt.c, false)
			got = s.Scan(nil)
			want.Pressed = false
			if len(got) != 1 || got[0] != want {
				t.Fatalf("Scan() = %v, want [%v]", got, want)
			}
		})
	}
}

func TestScanSkipsJumperOnLeft(t *testing.T) {
	_, s := newGridScanner(t, layout.Left)
	for i := 0; i < 3; i++ {
		if got := s.Scan(nil); len(got) != 0 {
			t.Fatalf("Scan() = %v, want the jumper ignored", got)
		}
	}
}

func TestScanManyKeys(t *testing.T) {
	g, s := newGridScanner(t, layout.Right)
	pressed := []layout.Coord{{Row: 0, Col: 1}, {Row: 2, Col: 2}, {Row: 2, Col: 4}, {Row: 4, Col: 5}}
	for _, c := range pressed {
		g.set(c, true)
	}
	got := s.Scan(nil)
	if len(got) != len(pressed) {
		t.Fatalf("Scan() = %v, want %d presses", got, len(pressed))
	}
	seen := map[layout.Coord]bool{}
	for _, ev := range got {
		if !ev.Pressed {
			t.Fatalf("Scan() reported release %v", ev)
		}
		seen[layout.Coord{Row: ev.Row, Col: ev.Col}] = true
	}
	for _, c := range pressed {
		if !seen[c] {
			t.Fatalf("Scan() missed %v", c)
		}
	}
}

func TestNewDuplexScannerPinCount(t *testing.T) {
	g := newSwitchGrid(layout.Left)
	rows, cols := g.pins()
	if _, err := NewDuplexScanner(rows[:4], cols); !errors.Is(err, ErrPinCount) {
		t.Fatalf("NewDuplexScanner() = %v, want %v", err, ErrPinCount)
	}
}

func TestVirtualPin(t *testing.T) {
	p := newVirtualPin("GP4")
	if err := p.Write(true); err == nil {
		t.Fatalf("Write() on an input = nil, want error")
	}
	if err := p.Configure(GPIOModeOutput, GPIOPullDown); err == nil {
		t.Fatalf("Configure(output, down) = nil, want error")
	}

	if err := p.Configure(GPIOModeInput, GPIOPullUp); err != nil {
		t.Fatalf("Configure(input, up) = %v", err)
	}
	if level, _ := p.Read(); !level {
		t.Fatalf("Read() with pull-up = low, want high")
	}

	if err := p.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
		t.Fatalf("Configure(output) = %v", err)
	}
	if err := p.Write(false); err != nil {
		t.Fatalf("Write() = %v", err)
	}
	if level, _ := p.Read(); level {
		t.Fatalf("Read() after Write(false) = high, want low")
	}
}
