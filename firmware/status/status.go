// Package status keeps the state shown on a half's OLED and draws it.
package status

import (
	"context"
	"fmt"
	"image/color"
	"runtime"
	"sync"
	"time"

	"keyball/firmware/layout"
	"keyball/firmware/logger"
	"keyball/firmware/role"
	"keyball/kernel"

	"tinygo.org/x/drivers"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"
)

// Fields is everything the status screen shows.
type Fields struct {
	Role    role.Role
	Hand    layout.Hand
	Layer   int
	Pointer bool

	LastKey layout.Coord
	HasKey  bool
	DX, DY  int8

	// Remote is the last status byte from the other half.
	Remote    uint8
	HasRemote bool

	Message string
	Tick    uint32
}

// State is the shared status. Writers update it from their loops; the
// runner redraws it.
type State struct {
	mu    sync.Mutex
	f     Fields
	dirty bool

	// draw serializes access to the display.
	draw sync.Mutex
}

// New returns a dirty state holding f.
func New(f Fields) *State {
	return &State{f: f, dirty: true}
}

// Update applies fn under the lock and marks the state dirty.
func (s *State) Update(fn func(*Fields)) {
	s.mu.Lock()
	fn(&s.f)
	s.dirty = true
	s.mu.Unlock()
}

// TryUpdate is Update without waiting. It reports whether fn ran.
func (s *State) TryUpdate(fn func(*Fields)) bool {
	if !s.mu.TryLock() {
		return false
	}
	fn(&s.f)
	s.dirty = true
	s.mu.Unlock()
	return true
}

// Snapshot returns a copy of the fields.
func (s *State) Snapshot() Fields {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f
}

func (s *State) take() (Fields, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	dirty := s.dirty
	s.dirty = false
	return s.f, dirty
}

// drawWait bounds how long TryDraw waits for a redraw in flight.
const drawWait = 100 * time.Millisecond

// TryDraw draws lines over the whole display. It waits a little for a redraw
// in flight and draws anyway when the locks stay taken; it is meant for a
// dying system.
func (s *State) TryDraw(d drivers.Displayer, lines ...string) error {
	if s.mu.TryLock() {
		defer s.mu.Unlock()
	}
	if lockWithin(&s.draw, drawWait) {
		defer s.draw.Unlock()
	}
	return DrawLines(d, lines...)
}

func lockWithin(mu *sync.Mutex, wait time.Duration) bool {
	deadline := time.Now().Add(wait)
	for !mu.TryLock() {
		if time.Now().After(deadline) {
			return false
		}
		runtime.Gosched()
	}
	return true
}

var (
	font = &proggy.TinySZ8pt7b
	on   = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	off  = color.RGBA{A: 255}
)

const (
	lineHeight = 10
	baseline   = 8
	charWidth  = 6
)

var spinner = [...]byte{'|', '/', '-', '\\'}

// Lines formats f as the three screen lines.
func Lines(f Fields) [3]string {
	var l [3]string
	r := "---"
	switch f.Role {
	case role.Primary:
		r = "pri"
	case role.Satellite:
		r = "sat"
	}
	l[0] = fmt.Sprintf("%c %s %s L%d", spinner[f.Tick%uint32(len(spinner))], f.Hand, r, f.Layer)
	if f.Pointer {
		l[0] += " ball"
	}

	key := "-"
	if f.HasKey {
		key = fmt.Sprintf("%d,%d", f.LastKey.Row, f.LastKey.Col)
	}
	l[1] = fmt.Sprintf("k %s m %+d %+d", key, f.DX, f.DY)
	if f.HasRemote {
		l[1] += fmt.Sprintf(" r%02x", f.Remote)
	}

	l[2] = f.Message
	return l
}

// Render clears d and draws f. It does not call Display.
func Render(d drivers.Displayer, f Fields) {
	l := Lines(f)
	draw(d, l[:])
}

// DrawLines clears d, draws lines top to bottom and flushes the display.
// Lines wider than the display are cut.
func DrawLines(d drivers.Displayer, lines ...string) error {
	draw(d, lines)
	return d.Display()
}

func draw(d drivers.Displayer, lines []string) {
	w, h := d.Size()
	for y := int16(0); y < h; y++ {
		for x := int16(0); x < w; x++ {
			d.SetPixel(x, y, off)
		}
	}
	cols := int(w) / charWidth
	for i, s := range lines {
		y := int16(i*lineHeight + baseline)
		if y > h {
			break
		}
		if len(s) > cols {
			s = s[:cols]
		}
		tinyfont.WriteLine(d, font, 0, y, s, on)
	}
}

// Runner redraws a State on a display when it changed.
type Runner struct {
	s        *State
	d        drivers.Displayer
	interval time.Duration
	logf     logger.Logf
	halted   func() bool
}

// NewRunner returns a runner drawing s on d every interval.
func NewRunner(s *State, d drivers.Displayer, interval time.Duration, logf logger.Logf) *Runner {
	if logf == nil {
		logf = logger.Discard
	}
	return &Runner{s: s, d: d, interval: interval, logf: logf, halted: kernel.InPanicMode}
}

// Run redraws until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	r.redraw()
	for {
		select {
		case <-t.C:
			r.redraw()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// redraw leaves the screen alone once a task panicked; it shows the panic.
func (r *Runner) redraw() {
	if r.halted() {
		return
	}
	f, dirty := r.s.take()
	if !dirty {
		return
	}
	r.s.draw.Lock()
	defer r.s.draw.Unlock()
	// The panic screen may have been drawn while the fields were taken.
	if r.halted() {
		return
	}
	Render(r.d, f)
	if r.halted() {
		return
	}
	if err := r.d.Display(); err != nil {
		r.logf("display: %v", err)
	}
}
