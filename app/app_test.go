//go:build !tinygo

package app

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"keyball/firmware/config"
	"keyball/firmware/layout"
	"keyball/firmware/status"
	"keyball/hal"
	"keyball/internal/scenario"
	"keyball/kernel"
)

// Both halves boot in one process; the left half is plugged in, so keys on
// the right half reach the host over the emulated split wire.
const bothHalves = `
usb: left
ball: right
steps:
  - wait: 400ms
  - tap: {hand: left, row: 1, col: 1}
  - expect: {key: Q, within: 2s}
  - tap: {hand: right, row: 1, col: 5}
  - expect: {key: Y, within: 2s}
  - move: {d0: 6, d1: -3}
  - expect: {mouse: true, within: 2s}
`

func firmware(opts Options) hal.Firmware {
	return func(ctx context.Context, h hal.HAL) error { return Run(ctx, h, opts) }
}

func TestBothHalves(t *testing.T) {
	s, err := scenario.Parse(strings.NewReader(bothHalves))
	if err != nil {
		t.Fatalf("Parse() = %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	cfg := s.SimConfig()
	cfg.Log = io.Discard
	err = hal.RunHeadless(ctx, firmware(Options{Config: config.Default()}), hal.HeadlessConfig{
		Sim:    cfg,
		Script: s.Script(),
	})
	if err != nil {
		t.Fatalf("RunHeadless() = %v", err)
	}
}

func TestRunRejectsConfig(t *testing.T) {
	sim, err := hal.NewSim(hal.SimConfig{Log: io.Discard})
	if err != nil {
		t.Fatalf("NewSim() = %v", err)
	}
	cfg := config.Default()
	cfg.SplitChannelSize = 0
	if err := Run(context.Background(), sim.Half(layout.Left), Options{Config: cfg}); err == nil {
		t.Fatalf("Run() with invalid config = nil, want error")
	}
}

func TestPanicScreen(t *testing.T) {
	sim, err := hal.NewSim(hal.SimConfig{Log: io.Discard})
	if err != nil {
		t.Fatalf("NewSim() = %v", err)
	}
	st := status.New(status.Fields{Hand: layout.Right})
	installPanicHandler(layout.Right, sim.Half(layout.Right), st)

	handlePanic(kernel.PanicInfo{Task: "right/primary", Value: errors.New("index out of range [5] with length 5")})

	pix := make([]bool, 128*32)
	if n := sim.Display(layout.Right).Snapshot(pix); n != 1 {
		t.Fatalf("frames shown = %d, want 1", n)
	}
	lit := 0
	for _, on := range pix {
		if on {
			lit++
		}
	}
	if lit == 0 {
		t.Fatalf("panic screen is blank")
	}
	if n := sim.Display(layout.Left).Snapshot(pix); n != 0 {
		t.Fatalf("left display frames = %d, want 0", n)
	}
}

func TestTakeRunes(t *testing.T) {
	tests := []struct {
		s          string
		n          int
		head, tail string
	}{
		{"short", 21, "short", ""},
		{"abcdef", 4, "abcd", "ef"},
		{"äöüß", 2, "äö", "üß"},
		{"", 3, "", ""},
	}
	for _, tt := range tests {
		head, tail := takeRunes(tt.s, tt.n)
		if head != tt.head || tail != tt.tail {
			t.Fatalf("takeRunes(%q, %d) = %q, %q; want %q, %q", tt.s, tt.n, head, tail, tt.head, tt.tail)
		}
	}
}
