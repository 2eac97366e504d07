//go:build !tinygo

package hal

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"keyball/firmware/layout"
	"keyball/internal/pio"

	"tinygo.org/x/drivers"
)

// SimConfig describes the simulated keyboard.
type SimConfig struct {
	// USB is the half plugged into the host.
	USB layout.Hand
	// Ball is the half carrying the trackball.
	Ball layout.Hand
	// BootFlagDir holds the boot flag files. Empty keeps the flags in memory.
	BootFlagDir string
	// LogReports logs every HID report written.
	LogReports bool
	// Log receives the log lines of both halves. Nil means stdout.
	Log io.Writer
}

// Sim is both halves of the keyboard in one process, joined by an emulated
// split wire.
type Sim struct {
	wire   *pio.Wire
	halves [2]*hostHAL
}

// NewSim builds both halves.
func NewSim(cfg SimConfig) (*Sim, error) {
	w := cfg.Log
	if w == nil {
		w = os.Stdout
	}
	mu := &sync.Mutex{}
	s := &Sim{wire: pio.NewWire()}
	for _, hand := range []layout.Hand{layout.Left, layout.Right} {
		log := &hostLogger{mu: mu, w: w, prefix: hand.String() + ": "}
		port, err := NewEmulatedSplit(s.wire)
		if err != nil {
			return nil, err
		}
		grid := newSwitchGrid(hand)
		rows, cols := grid.pins()
		matrix, err := NewDuplexScanner(rows, cols)
		if err != nil {
			return nil, fmt.Errorf("%v half: %w", hand, err)
		}
		var flagPath string
		if cfg.BootFlagDir != "" {
			flagPath = filepath.Join(cfg.BootFlagDir, "keyball-"+hand.String()+".bootflag")
		}
		h := &hostHAL{
			logger: log,
			grid:   grid,
			matrix: matrix,
			hid:    newHostHID(cfg.USB == hand, cfg.LogReports, log),
			split:  port,
			boot:   &hostBootFlag{path: flagPath, log: log},
			disp:   NewMonoDisplay(128, 32),
		}
		if cfg.Ball == hand {
			h.ball = &virtualPointer{}
		}
		s.halves[hand] = h
	}
	return s, nil
}

// Half returns the HAL of hand.
func (s *Sim) Half(hand layout.Hand) HAL { return s.halves[hand] }

// Run clocks the split wire until ctx is done.
func (s *Sim) Run(ctx context.Context) error { return s.wire.Run(ctx) }

// SetKey closes or opens the switch at half-local c on hand.
func (s *Sim) SetKey(hand layout.Hand, c layout.Coord, down bool) {
	s.halves[hand].grid.set(c, down)
}

// Move rolls the trackball by (d0, d1) in sensor axes. It is a no-op on a
// keyboard without a ball.
func (s *Sim) Move(d0, d1 int) {
	for _, h := range s.halves {
		if h.ball != nil {
			h.ball.add(d0, d1)
		}
	}
}

// Reports returns the HID reports written on hand so far.
func (s *Sim) Reports(hand layout.Hand) []HostReport { return s.halves[hand].hid.snapshot() }

// Suspend puts the USB host to sleep or wakes it.
func (s *Sim) Suspend(on bool) {
	for _, h := range s.halves {
		h.hid.setSuspended(on)
	}
}

// Display returns the OLED of hand.
func (s *Sim) Display(hand layout.Hand) *MonoDisplay { return s.halves[hand].disp }

// BootloaderRequested reports whether hand asked for the bootloader.
func (s *Sim) BootloaderRequested(hand layout.Hand) bool {
	return s.halves[hand].boot.requested()
}

type hostHAL struct {
	logger *hostLogger
	grid   *switchGrid
	matrix *DuplexScanner
	ball   *virtualPointer
	hid    *hostHID
	split  SplitPort
	boot   *hostBootFlag
	disp   *MonoDisplay
}

func (h *hostHAL) Logger() Logger     { return h.logger }
func (h *hostHAL) Matrix() Matrix     { return h.matrix }
func (h *hostHAL) HID() HID           { return h.hid }
func (h *hostHAL) Split() SplitPort   { return h.split }
func (h *hostHAL) BootFlag() BootFlag { return h.boot }

func (h *hostHAL) Display() drivers.Displayer { return h.disp }

func (h *hostHAL) Pointer() PointerSensor {
	if h.ball == nil {
		return noPointer{}
	}
	return h.ball
}

type hostLogger struct {
	mu     *sync.Mutex
	w      io.Writer
	prefix string
}

func (l *hostLogger) WriteLineString(s string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.w, l.prefix+s)
}

func (l *hostLogger) WriteLineBytes(b []byte) {
	l.WriteLineString(string(b))
}

// virtualPointer accumulates motion until it is read.
type virtualPointer struct {
	mu     sync.Mutex
	d0, d1 int
}

func (p *virtualPointer) add(d0, d1 int) {
	p.mu.Lock()
	p.d0 += d0
	p.d1 += d1
	p.mu.Unlock()
}

// ReadMotion returns at most one int8 step per axis and keeps the rest.
func (p *virtualPointer) ReadMotion() (int8, int8, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	d0, d1 := int8(clampInt(p.d0)), int8(clampInt(p.d1))
	p.d0 -= int(d0)
	p.d1 -= int(d1)
	return d0, d1, nil
}

func clampInt(v int) int {
	switch {
	case v > 127:
		return 127
	case v < -128:
		return -128
	}
	return v
}
