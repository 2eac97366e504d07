//go:build !tinygo

// Package scenario drives the headless simulator from a YAML script.
//
//	usb: left
//	ball: right
//	steps:
//	  - wait: 400ms
//	  - tap: {hand: left, row: 1, col: 1}
//	  - expect: {key: Q}
//	  - move: {d0: 0, d1: 12}
//	  - expect: {mouse: true, within: 500ms}
package scenario

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"keyball/firmware/keycode"
	"keyball/firmware/layout"
	"keyball/hal"
)

const (
	// DefaultWithin bounds an expect step without its own limit.
	DefaultWithin = time.Second
	// TapHold is how long a tap step keeps the switch closed.
	TapHold = 30 * time.Millisecond

	pollInterval = 5 * time.Millisecond
)

var (
	ErrInvalid = errors.New("scenario: invalid")
	ErrExpect  = errors.New("scenario: expectation not met")
)

// Scenario is a parsed script.
type Scenario struct {
	USB   string `yaml:"usb"`
	Ball  string `yaml:"ball"`
	Steps []Step `yaml:"steps"`

	usb, ball layout.Hand
}

// Step holds exactly one action.
type Step struct {
	Wait    time.Duration `yaml:"wait"`
	Press   *Switch       `yaml:"press"`
	Release *Switch       `yaml:"release"`
	Tap     *Switch       `yaml:"tap"`
	Move    *Move         `yaml:"move"`
	Suspend *bool         `yaml:"suspend"`
	Expect  *Expect       `yaml:"expect"`
}

// Switch is a half-local matrix cell.
type Switch struct {
	Hand string `yaml:"hand"`
	Row  uint8  `yaml:"row"`
	Col  uint8  `yaml:"col"`

	hand layout.Hand
}

// Move rolls the ball in sensor axes.
type Move struct {
	D0 int `yaml:"d0"`
	D1 int `yaml:"d1"`
}

// Expect waits for a report on the USB half written since the previous
// expect step.
type Expect struct {
	// Key is a key name that must appear in a keyboard report.
	Key string `yaml:"key"`
	// Media is a media key name that must appear in a consumer report.
	Media string `yaml:"media"`
	// Mouse asks for any non-empty mouse report.
	Mouse  bool          `yaml:"mouse"`
	Within time.Duration `yaml:"within"`

	usage uint16
}

// Load reads and validates the script at path.
func Load(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads and validates a script.
func Parse(r io.Reader) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func parseHand(s string, def layout.Hand) (layout.Hand, error) {
	switch s {
	case "":
		return def, nil
	case "left":
		return layout.Left, nil
	case "right":
		return layout.Right, nil
	}
	return 0, fmt.Errorf("%w: hand %q", ErrInvalid, s)
}

func (s *Scenario) validate() error {
	var err error
	if s.usb, err = parseHand(s.USB, layout.Left); err != nil {
		return err
	}
	if s.ball, err = parseHand(s.Ball, layout.Right); err != nil {
		return err
	}
	for i := range s.Steps {
		if err := s.Steps[i].validate(); err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

func (st *Step) validate() error {
	n := 0
	if st.Wait > 0 {
		n++
	}
	for _, sw := range []*Switch{st.Press, st.Release, st.Tap} {
		if sw == nil {
			continue
		}
		n++
		var err error
		if sw.hand, err = parseHand(sw.Hand, 0); err != nil {
			return err
		}
		if sw.Hand == "" {
			return fmt.Errorf("%w: switch without hand", ErrInvalid)
		}
		if sw.Row >= layout.Rows || sw.Col >= layout.Cols {
			return fmt.Errorf("%w: cell %d,%d", ErrInvalid, sw.Row, sw.Col)
		}
	}
	if st.Move != nil {
		n++
	}
	if st.Suspend != nil {
		n++
	}
	if st.Expect != nil {
		n++
		if err := st.Expect.validate(); err != nil {
			return err
		}
	}
	if n != 1 {
		return fmt.Errorf("%w: %d actions in one step", ErrInvalid, n)
	}
	return nil
}

func (e *Expect) validate() error {
	set := 0
	if e.Key != "" {
		set++
		kc, ok := keycode.Lookup(e.Key)
		if !ok || (kc.Kind() != keycode.KindKey && kc.Kind() != keycode.KindWithModifier) {
			return fmt.Errorf("%w: key %q", ErrInvalid, e.Key)
		}
		e.usage = uint16(kc.Key())
	}
	if e.Media != "" {
		set++
		kc, ok := keycode.Lookup(e.Media)
		if !ok || kc.Kind() != keycode.KindMedia {
			return fmt.Errorf("%w: media key %q", ErrInvalid, e.Media)
		}
		e.usage = uint16(kc.Media())
	}
	if e.Mouse {
		set++
	}
	if set != 1 {
		return fmt.Errorf("%w: expect needs one of key, media, mouse", ErrInvalid)
	}
	return nil
}

// SimConfig returns the simulator layout the script was written for.
func (s *Scenario) SimConfig() hal.SimConfig {
	return hal.SimConfig{USB: s.usb, Ball: s.ball}
}

// Run plays the steps against sim.
func (s *Scenario) Run(ctx context.Context, sim *hal.Sim) error {
	seen := len(sim.Reports(s.usb))
	for i, st := range s.Steps {
		var err error
		switch {
		case st.Wait > 0:
			err = sleep(ctx, st.Wait)
		case st.Press != nil:
			sim.SetKey(st.Press.hand, layout.Coord{Row: st.Press.Row, Col: st.Press.Col}, true)
		case st.Release != nil:
			sim.SetKey(st.Release.hand, layout.Coord{Row: st.Release.Row, Col: st.Release.Col}, false)
		case st.Tap != nil:
			c := layout.Coord{Row: st.Tap.Row, Col: st.Tap.Col}
			sim.SetKey(st.Tap.hand, c, true)
			err = sleep(ctx, TapHold)
			sim.SetKey(st.Tap.hand, c, false)
		case st.Move != nil:
			sim.Move(st.Move.D0, st.Move.D1)
		case st.Suspend != nil:
			sim.Suspend(*st.Suspend)
		case st.Expect != nil:
			seen, err = s.expect(ctx, sim, st.Expect, seen)
		}
		if err != nil {
			return fmt.Errorf("step %d: %w", i+1, err)
		}
	}
	return nil
}

// Script adapts Run to the headless runner.
func (s *Scenario) Script() func(context.Context, *hal.Sim) error {
	return s.Run
}

func (s *Scenario) expect(ctx context.Context, sim *hal.Sim, e *Expect, from int) (int, error) {
	within := e.Within
	if within <= 0 {
		within = DefaultWithin
	}
	deadline := time.Now().Add(within)
	for {
		reports := sim.Reports(s.usb)
		if from > len(reports) {
			from = 0
		}
		for i := from; i < len(reports); i++ {
			if e.matches(reports[i]) {
				return i + 1, nil
			}
		}
		from = len(reports)
		if time.Now().After(deadline) {
			return from, fmt.Errorf("%w: %s within %v", ErrExpect, e, within)
		}
		if err := sleep(ctx, pollInterval); err != nil {
			return from, err
		}
	}
}

func (e *Expect) matches(r hal.HostReport) bool {
	switch {
	case e.Key != "":
		return r.Kind == hal.ReportKeyboard && len(r.Data) > 2 && bytes.IndexByte(r.Data[2:], byte(e.usage)) >= 0
	case e.Media != "":
		return r.Kind == hal.ReportMedia && len(r.Data) >= 2 && binary.LittleEndian.Uint16(r.Data) == e.usage
	case e.Mouse:
		return r.Kind == hal.ReportMouse && nonZero(r.Data)
	}
	return false
}

func nonZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return true
		}
	}
	return false
}

func (e *Expect) String() string {
	switch {
	case e.Key != "":
		return "key " + e.Key
	case e.Media != "":
		return "media " + e.Media
	}
	return "mouse report"
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
