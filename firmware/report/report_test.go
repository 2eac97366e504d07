package report

import (
	"bytes"
	"math/rand"
	"testing"
)

func TestKeyboardIdleSuppression(t *testing.T) {
	var g KeyboardGenerator
	var k Keys
	k.Add(0x04)
	if r, ok := g.Generate(&k); !ok || r.Keys[0] != 0x04 {
		t.Fatalf("Generate() = %v, %v; want key 0x04", r, ok)
	}

	sent := 0
	for i := 0; i < 50; i++ {
		k.Reset()
		if r, ok := g.Generate(&k); ok {
			if !r.Empty() {
				t.Fatalf("Generate() on empty cycle = %v, want empty report", r)
			}
			sent++
		}
	}
	if sent != 1 {
		t.Fatalf("empty reports sent = %d, want 1", sent)
	}

	k.Reset()
	k.AddModifier(0x02)
	if r, ok := g.Generate(&k); !ok || r.Modifier != 0x02 {
		t.Fatalf("Generate() = %v, %v; want modifier 0x02", r, ok)
	}
	k.Reset()
	if _, ok := g.Generate(&k); !ok {
		t.Fatalf("Generate() after activity ok = false, want one empty report")
	}
}

func TestKeysCapAndAtomicModifier(t *testing.T) {
	var k Keys
	for i := 0; i < MaxKeys; i++ {
		if !k.Add(uint8(0x04 + i)) {
			t.Fatalf("Add() slot %d = false, want true", i)
		}
	}
	if k.Add(0x20) {
		t.Fatalf("Add() beyond cap = true, want false")
	}
	if k.AddWithModifier(0x02, 0x21) {
		t.Fatalf("AddWithModifier() beyond cap = true, want false")
	}
	if k.Modifier() != 0 {
		t.Fatalf("Modifier() = %02x, want 0 (key was dropped)", k.Modifier())
	}
	if k.Len() != MaxKeys {
		t.Fatalf("Len() = %d, want %d", k.Len(), MaxKeys)
	}
}

func TestPointerIdleSuppression(t *testing.T) {
	g := PointerGenerator{WheelDivisor: -12, PanDivisor: 20}
	if r, ok := g.Generate(3, -2, 0, false); !ok || r.X != -2 || r.Y != 3 {
		t.Fatalf("Generate(3,-2) = %v, %v; want x=-2 y=3", r, ok)
	}
	sent := 0
	for i := 0; i < 10; i++ {
		if _, ok := g.Generate(0, 0, 0, false); ok {
			sent++
		}
	}
	if sent != 1 {
		t.Fatalf("empty pointer reports = %d, want 1", sent)
	}
	if r, ok := g.Generate(0, 0, 1, false); !ok || r.Buttons != 1 {
		t.Fatalf("Generate(buttons=1) = %v, %v; want button report", r, ok)
	}
}

func TestScrollRemainderConservation(t *testing.T) {
	for _, div := range []struct{ wheel, pan int }{{-12, 20}, {8, -8}, {3, 5}} {
		g := PointerGenerator{WheelDivisor: div.wheel, PanDivisor: div.pan}
		rng := rand.New(rand.NewSource(int64(div.wheel*100 + div.pan)))
		var in0, in1, wheelSum, panSum int
		for i := 0; i < 500; i++ {
			d0 := int8(rng.Intn(41) - 20)
			d1 := int8(rng.Intn(41) - 20)
			in0 += int(d0)
			in1 += int(d1)
			r, ok := g.Generate(d0, d1, 0, true)
			if !ok {
				continue
			}
			if r.X != 0 || r.Y != 0 {
				t.Fatalf("scroll report moved the pointer: %v", r)
			}
			wheelSum += int(r.Wheel)
			panSum += int(r.Pan)
		}
		wr, pr := g.Remainders()
		if got := wheelSum*div.wheel + wr; got != in0 {
			t.Fatalf("div %v: wheel*D + rem = %d, want %d", div, got, in0)
		}
		if got := panSum*div.pan + pr; got != in1 {
			t.Fatalf("div %v: pan*D + rem = %d, want %d", div, got, in1)
		}
	}
}

func TestScrollSmallMotionAccumulates(t *testing.T) {
	g := PointerGenerator{WheelDivisor: -12, PanDivisor: 20}
	var wheel int
	for i := 0; i < 12; i++ {
		r, _ := g.Generate(-1, 0, 0, true)
		wheel += int(r.Wheel)
	}
	if wheel != 1 {
		t.Fatalf("12 x -1 motion gave wheel %d, want 1", wheel)
	}
}

func TestScrollRemainderResetsOnEntry(t *testing.T) {
	g := PointerGenerator{WheelDivisor: 10, PanDivisor: 10}
	g.Generate(7, 7, 0, true)
	if w, p := g.Remainders(); w != 7 || p != 7 {
		t.Fatalf("Remainders() = %d, %d; want 7, 7", w, p)
	}
	g.Generate(0, 0, 0, false)
	g.Generate(0, 0, 0, true)
	if w, p := g.Remainders(); w != 0 || p != 0 {
		t.Fatalf("Remainders() after re-entry = %d, %d; want 0, 0", w, p)
	}
}

func TestMediaOnChange(t *testing.T) {
	var g MediaGenerator
	steps := []struct {
		usage  uint16
		ok     bool
		want   Media
		wantOK bool
	}{
		{usage: 0, ok: false, want: Media{}, wantOK: true},
		{usage: 0, ok: false, wantOK: false},
		{usage: 0xE9, ok: true, want: Media{Usage: 0xE9}, wantOK: true},
		{usage: 0xE9, ok: true, wantOK: false},
		{usage: 0xEA, ok: true, want: Media{Usage: 0xEA}, wantOK: true},
		{usage: 0, ok: false, want: Media{}, wantOK: true},
		{usage: 0, ok: false, wantOK: false},
		{usage: 0xEA, ok: true, want: Media{Usage: 0xEA}, wantOK: true},
	}
	for i, s := range steps {
		got, ok := g.Generate(s.usage, s.ok)
		if ok != s.wantOK || (ok && got != s.want) {
			t.Fatalf("step %d: Generate() = %v, %v; want %v, %v", i, got, ok, s.want, s.wantOK)
		}
	}
}

func TestAppendBinary(t *testing.T) {
	kb := Keyboard{Modifier: 0x02, Keys: [MaxKeys]uint8{0x04, 0x05}}
	if got, want := kb.AppendBinary(nil), []byte{0x02, 0, 0x04, 0x05, 0, 0, 0, 0}; !bytes.Equal(got, want) {
		t.Fatalf("Keyboard.AppendBinary() = % x, want % x", got, want)
	}
	m := Mouse{Buttons: 1, X: -1, Y: 2, Wheel: -3, Pan: 4}
	if got, want := m.AppendBinary(nil), []byte{1, 0xFF, 2, 0xFD, 4}; !bytes.Equal(got, want) {
		t.Fatalf("Mouse.AppendBinary() = % x, want % x", got, want)
	}
	md := Media{Usage: 0x00E9}
	if got, want := md.AppendBinary(nil), []byte{0xE9, 0x00}; !bytes.Equal(got, want) {
		t.Fatalf("Media.AppendBinary() = % x, want % x", got, want)
	}
}
