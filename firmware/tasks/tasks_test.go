package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"keyball/firmware/config"
	"keyball/firmware/keycode"
	"keyball/firmware/keymap"
	"keyball/firmware/layout"
	"keyball/firmware/report"
	"keyball/firmware/role"
	"keyball/firmware/split"
	"keyball/firmware/status"
	"keyball/hal"
)

type fakeMatrix struct {
	hand  layout.Hand
	scans [][]hal.KeyEvent
}

func (m *fakeMatrix) Scan(dst []hal.KeyEvent) []hal.KeyEvent {
	if len(m.scans) == 0 {
		return dst
	}
	dst = append(dst, m.scans[0]...)
	m.scans = m.scans[1:]
	return dst
}

func (m *fakeMatrix) Hand() layout.Hand { return m.hand }

type fakePointer struct {
	reads  int
	d0, d1 int8
	err    error
}

func (p *fakePointer) ReadMotion() (int8, int8, error) {
	p.reads++
	d0, d1 := p.d0, p.d1
	p.d0, p.d1 = 0, 0
	return d0, d1, p.err
}

type fakeLink struct {
	in   []split.Message
	out  []split.Message
	room int
}

func newFakeLink(in ...split.Message) *fakeLink {
	return &fakeLink{in: in, room: 100}
}

func (l *fakeLink) Send(m split.Message) bool {
	if len(l.out) >= l.room {
		return false
	}
	l.out = append(l.out, m)
	return true
}

func (l *fakeLink) TryRecv() (split.Message, bool) {
	if len(l.in) == 0 {
		return split.Message{}, false
	}
	m := l.in[0]
	l.in = l.in[1:]
	return m, true
}

type written struct {
	kind hal.ReportKind
	b    []byte
}

type fakeHID struct {
	mu        sync.Mutex
	reports   []written
	suspended bool
	wakeups   int
	err       error
}

func (h *fakeHID) Ready() <-chan struct{} { return nil }

func (h *fakeHID) Suspended() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.suspended
}

func (h *fakeHID) RemoteWakeup() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.wakeups++
	h.suspended = false
	return nil
}

func (h *fakeHID) WriteReport(kind hal.ReportKind, b []byte) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.err != nil {
		return h.err
	}
	h.reports = append(h.reports, written{kind: kind, b: append([]byte(nil), b...)})
	return nil
}

func (h *fakeHID) snapshot() ([]written, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]written(nil), h.reports...), h.wakeups
}

// keyB follows KeyA in the HID usage table.
const keyB = keycode.KeyA + 1

func testKeymap(t *testing.T) *keymap.Keymap {
	t.Helper()
	var km keymap.Keymap
	km[0].Map[0][0] = keymap.Key(keymap.Tap(keycode.KeyOf(keycode.KeyA)))
	// Right-half local column 6 lands on merged column 7.
	km[0].Map[0][7] = keymap.Key(keymap.Tap(keycode.KeyOf(keyB)))
	if err := km.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	return &km
}

func press(r, c uint8) hal.KeyEvent { return hal.KeyEvent{Row: r, Col: c, Pressed: true} }

func release(r, c uint8) hal.KeyEvent { return hal.KeyEvent{Row: r, Col: c} }

func containsKey(r report.Keyboard, k keycode.Key) bool {
	for _, v := range r.Keys {
		if v == uint8(k) {
			return true
		}
	}
	return false
}

func TestPrimaryMergesRemoteKeys(t *testing.T) {
	m := &fakeMatrix{hand: layout.Left, scans: [][]hal.KeyEvent{{press(0, 0)}}}
	link := newFakeLink(split.KeyPressed(layout.Coord{Row: 0, Col: 6}))
	st := status.New(status.Fields{})
	p := NewPrimary(config.Default(), testKeymap(t), Inputs{Hand: layout.Left, Matrix: m}, link, NewHID(&fakeHID{}, 4, nil), st, nil)

	set := p.Cycle(time.Unix(100, 0))
	if !set.HasKeyboard {
		t.Fatalf("Cycle() has no keyboard report")
	}
	if !containsKey(set.Keyboard, keycode.KeyA) || !containsKey(set.Keyboard, keyB) {
		t.Fatalf("Cycle() keyboard = %v, want A and B", set.Keyboard)
	}
	f := st.Snapshot()
	if !f.HasKey || f.Tick != 1 {
		t.Fatalf("status = %+v, want a last key and one tick", f)
	}
	if want := (layout.Coord{Row: 0, Col: 7}); f.LastKey != want {
		t.Fatalf("LastKey = %v, want %v", f.LastKey, want)
	}
}

func TestPrimarySumsMotion(t *testing.T) {
	m := &fakeMatrix{hand: layout.Left}
	ptr := &fakePointer{d0: 2, d1: 1}
	link := newFakeLink(split.Motion(3, 10), split.Status(uint8(layout.Right)))
	st := status.New(status.Fields{})
	p := NewPrimary(config.Default(), testKeymap(t), Inputs{Hand: layout.Left, Matrix: m, Pointer: ptr}, link, NewHID(&fakeHID{}, 4, nil), st, nil)

	set := p.Cycle(time.Unix(100, 0))
	if !set.HasMouse || set.Mouse.X != 11 || set.Mouse.Y != 5 {
		t.Fatalf("Cycle() mouse = %v, want x=11 y=5", set.Mouse)
	}
	f := st.Snapshot()
	if !f.HasRemote || f.Remote != uint8(layout.Right) {
		t.Fatalf("status remote = %v/%d, want right", f.HasRemote, f.Remote)
	}
	if !f.Pointer || f.DX != 11 || f.DY != 5 {
		t.Fatalf("status = %+v, want pointer with delta 11,5", f)
	}
}

func TestPrimarySendsLayerChange(t *testing.T) {
	m := &fakeMatrix{hand: layout.Left}
	ptr := &fakePointer{d0: 5}
	link := newFakeLink()
	p := NewPrimary(config.Default(), testKeymap(t), Inputs{Hand: layout.Left, Matrix: m, Pointer: ptr}, link, NewHID(&fakeHID{}, 4, nil), nil, nil)

	base := time.Unix(100, 0)
	p.Cycle(base)
	if len(link.out) != 1 || link.out[0] != split.LED(1) {
		t.Fatalf("sent %v, want [led(1)]", link.out)
	}
	p.Cycle(base.Add(10 * time.Millisecond))
	if len(link.out) != 1 {
		t.Fatalf("sent %v on an unchanged layer", link.out)
	}
	p.Cycle(base.Add(time.Second))
	if len(link.out) != 2 || link.out[1] != split.LED(0) {
		t.Fatalf("sent %v, want led(0) after the auto pointer layer timed out", link.out)
	}
}

func TestPrimaryRetriesDroppedRelease(t *testing.T) {
	m := &fakeMatrix{hand: layout.Left, scans: [][]hal.KeyEvent{{press(0, 0)}, nil, {release(0, 0)}}}
	hid := NewHID(&fakeHID{}, 2, nil)
	p := NewPrimary(config.Default(), testKeymap(t), Inputs{Hand: layout.Left, Matrix: m}, newFakeLink(), hid, nil, nil)

	base := time.Unix(100, 0)
	p.Cycle(base)
	p.Cycle(base.Add(5 * time.Millisecond))
	set := p.Cycle(base.Add(10 * time.Millisecond))
	if !set.HasKeyboard || !set.Keyboard.Empty() {
		t.Fatalf("release cycle keyboard = %v, %v; want one empty report", set.Keyboard, set.HasKeyboard)
	}
	for hid.q.Len() > 0 {
		hid.q.TryRecv()
	}

	set = p.Cycle(base.Add(15 * time.Millisecond))
	if !set.HasKeyboard || !set.Keyboard.Empty() {
		t.Fatalf("cycle after a dropped release = %v, %v; want the empty report again", set.Keyboard, set.HasKeyboard)
	}
	if got, ok := hid.q.TryRecv(); !ok || !got.HasKeyboard || !got.Keyboard.Empty() {
		t.Fatalf("queued %+v, %v; want the empty keyboard report", got, ok)
	}
	if set = p.Cycle(base.Add(20 * time.Millisecond)); set.HasKeyboard {
		t.Fatalf("third idle cycle keyboard = %v, want none", set.Keyboard)
	}
}

func TestPrimaryPointerUnavailable(t *testing.T) {
	m := &fakeMatrix{hand: layout.Left}
	ptr := &fakePointer{err: hal.ErrNotImplemented}
	p := NewPrimary(config.Default(), testKeymap(t), Inputs{Hand: layout.Left, Matrix: m, Pointer: ptr}, newFakeLink(), NewHID(&fakeHID{}, 4, nil), nil, nil)

	base := time.Unix(100, 0)
	p.Cycle(base)
	p.Cycle(base.Add(5 * time.Millisecond))
	if ptr.reads != 1 {
		t.Fatalf("ReadMotion() calls = %d, want 1", ptr.reads)
	}
}

func TestPrimaryReadErrorIsSoft(t *testing.T) {
	m := &fakeMatrix{hand: layout.Left, scans: [][]hal.KeyEvent{{press(0, 0)}}}
	ptr := &fakePointer{err: errors.New("spi timeout")}
	p := NewPrimary(config.Default(), testKeymap(t), Inputs{Hand: layout.Left, Matrix: m, Pointer: ptr}, newFakeLink(), NewHID(&fakeHID{}, 4, nil), nil, nil)

	set := p.Cycle(time.Unix(100, 0))
	if !containsKey(set.Keyboard, keycode.KeyA) {
		t.Fatalf("Cycle() keyboard = %v, want A despite the sensor error", set.Keyboard)
	}
	p.Cycle(time.Unix(101, 0))
	if ptr.reads != 2 {
		t.Fatalf("ReadMotion() calls = %d, want 2", ptr.reads)
	}
}

func TestSatelliteForwards(t *testing.T) {
	m := &fakeMatrix{hand: layout.Right, scans: [][]hal.KeyEvent{
		{press(1, 2), release(1, 3)},
		nil,
	}}
	ptr := &fakePointer{}
	link := newFakeLink()
	s := NewSatellite(config.Default(), Inputs{Hand: layout.Right, Matrix: m, Pointer: ptr}, link, nil, nil)

	s.Cycle()
	want := []split.Message{
		split.KeyPressed(layout.Coord{Row: 1, Col: 2}),
		split.KeyReleased(layout.Coord{Row: 1, Col: 3}),
	}
	if len(link.out) != len(want) {
		t.Fatalf("sent %v, want %v", link.out, want)
	}
	for i := range want {
		if link.out[i] != want[i] {
			t.Fatalf("sent[%d] = %v, want %v", i, link.out[i], want[i])
		}
	}

	ptr.d0, ptr.d1 = 1, -1
	s.Cycle()
	if got := link.out[len(link.out)-1]; got != split.Motion(1, -1) {
		t.Fatalf("last sent = %v, want motion(1,-1)", got)
	}
}

func TestSatelliteDropsWhenFull(t *testing.T) {
	m := &fakeMatrix{hand: layout.Right, scans: [][]hal.KeyEvent{{press(0, 0), press(0, 1), press(0, 2)}}}
	link := newFakeLink()
	link.room = 2
	s := NewSatellite(config.Default(), Inputs{Hand: layout.Right, Matrix: m}, link, nil, nil)

	s.Cycle()
	if len(link.out) != 2 || s.dropped != 1 {
		t.Fatalf("sent %d, dropped %d; want 2, 1", len(link.out), s.dropped)
	}
}

func TestSatelliteAppliesPrimaryMessages(t *testing.T) {
	m := &fakeMatrix{hand: layout.Right}
	link := newFakeLink(split.LED(2), split.Status(7))
	st := status.New(status.Fields{Role: role.Satellite})
	s := NewSatellite(config.Default(), Inputs{Hand: layout.Right, Matrix: m}, link, st, nil)

	s.Cycle()
	f := st.Snapshot()
	if f.Layer != 2 || f.Message != "led 2" {
		t.Fatalf("status = %+v, want layer 2 and message %q", f, "led 2")
	}
	if !f.HasRemote || f.Remote != 7 {
		t.Fatalf("status remote = %v/%d, want 7", f.HasRemote, f.Remote)
	}
}

func TestSatelliteAnnouncesHand(t *testing.T) {
	m := &fakeMatrix{hand: layout.Right}
	link := newFakeLink()
	cfg := config.Default()
	s := NewSatellite(cfg, Inputs{Hand: layout.Right, Matrix: m}, link, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want %v", err, context.Canceled)
	}
	if len(link.out) == 0 || link.out[0] != split.Status(uint8(layout.Right)) {
		t.Fatalf("sent %v, want status(right) first", link.out)
	}
}

func runHID(t *testing.T, h *HID) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()
	return cancel, done
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestHIDWritesReports(t *testing.T) {
	dev := &fakeHID{}
	h := NewHID(dev, 4, nil)
	cancel, done := runHID(t, h)

	var kb report.Keyboard
	kb.Keys[0] = uint8(keycode.KeyA)
	h.Queue(report.Set{
		Keyboard: kb, HasKeyboard: true,
		Mouse: report.Mouse{X: 1}, HasMouse: true,
		Media: report.Media{Usage: 0xE9}, HasMedia: true,
	})
	waitFor(t, "three reports", func() bool {
		n, _, _ := h.Stats()
		return n == 3
	})
	cancel()
	<-done

	reports, wakeups := dev.snapshot()
	wantKinds := []hal.ReportKind{hal.ReportMouse, hal.ReportKeyboard, hal.ReportMedia}
	wantLens := []int{5, 8, 2}
	for i, r := range reports {
		if r.kind != wantKinds[i] || len(r.b) != wantLens[i] {
			t.Fatalf("report %d = kind %d len %d, want kind %d len %d", i, r.kind, len(r.b), wantKinds[i], wantLens[i])
		}
	}
	if wakeups != 0 {
		t.Fatalf("wakeups = %d on an awake host", wakeups)
	}
}

func TestHIDWakesSuspendedHost(t *testing.T) {
	tests := []struct {
		name string
		key  uint8
		want int
	}{
		{"key down", uint8(keycode.KeyA), 1},
		{"empty report", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev := &fakeHID{suspended: true}
			h := NewHID(dev, 4, nil)
			cancel, done := runHID(t, h)

			var kb report.Keyboard
			kb.Keys[0] = tt.key
			h.Queue(report.Set{Keyboard: kb, HasKeyboard: true})
			waitFor(t, "keyboard report", func() bool {
				n, _, _ := h.Stats()
				return n == 1
			})
			cancel()
			<-done

			if _, wakeups := dev.snapshot(); wakeups != tt.want {
				t.Fatalf("wakeups = %d, want %d", wakeups, tt.want)
			}
		})
	}
}

func TestHIDCountsFailures(t *testing.T) {
	dev := &fakeHID{err: errors.New("endpoint busy")}
	h := NewHID(dev, 4, nil)
	cancel, done := runHID(t, h)

	h.Queue(report.Set{HasMouse: true})
	waitFor(t, "failed write", func() bool {
		_, failed, _ := h.Stats()
		return failed == 1
	})
	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run() = %v, want %v", err, context.Canceled)
	}
}

func TestClamp8(t *testing.T) {
	tests := []struct {
		in   int
		want int8
	}{
		{0, 0}, {127, 127}, {128, 127}, {-128, -128}, {-300, -128},
	}
	for _, tt := range tests {
		if got := clamp8(tt.in); got != tt.want {
			t.Fatalf("clamp8(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}
