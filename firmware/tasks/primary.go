package tasks

import (
	"context"
	"time"

	"keyball/firmware/config"
	"keyball/firmware/keymap"
	"keyball/firmware/layout"
	"keyball/firmware/logger"
	"keyball/firmware/pressed"
	"keyball/firmware/report"
	"keyball/firmware/split"
	"keyball/firmware/state"
	"keyball/firmware/status"
)

// Primary is the fusion loop of the half connected to the host.
type Primary struct {
	cfg    config.Config
	hand   layout.Hand
	in     input
	link   Link
	engine *state.State
	hid    *HID
	status *status.State
	logf   logger.Logf

	transitions []pressed.Transition
	layer       int
	dropped     uint32
	// releases holds the empty reports of a dropped set. The generators emit
	// them once, so they are queued again with the next set.
	releases report.Set
}

// NewPrimary returns the primary loop. km must be valid.
func NewPrimary(cfg config.Config, km *keymap.Keymap, in Inputs, link Link, hid *HID, st *status.State, logf logger.Logf) *Primary {
	if logf == nil {
		logf = logger.Discard
	}
	return &Primary{
		cfg:         cfg,
		hand:        in.Hand,
		in:          newInput(in, logf),
		link:        link,
		engine:      state.New(cfg, km),
		hid:         hid,
		status:      st,
		logf:        logf,
		transitions: make([]pressed.Transition, 0, layout.Rows*layout.TotalCols),
	}
}

// Run cycles every MinScanInterval until ctx is done.
func (p *Primary) Run(ctx context.Context) error {
	for {
		start := time.Now()
		p.Cycle(start)
		if err := pace(ctx, start, p.cfg.MinScanInterval.D()); err != nil {
			return err
		}
	}
}

// Cycle runs one fusion cycle at now and returns the reports it queued.
func (p *Primary) Cycle(now time.Time) report.Set {
	events, m := p.in.poll()

	p.transitions = p.transitions[:0]
	var last layout.Coord
	hasKey := false
	for _, ev := range events {
		c := layout.Merge(p.hand, layout.Coord{Row: ev.Row, Col: ev.Col})
		p.transitions = append(p.transitions, pressed.Transition{Coord: c, Pressed: ev.Pressed})
		if ev.Pressed {
			last, hasKey = c, true
		}
	}

	d0, d1 := int(m.D0), int(m.D1)
	var remote uint8
	hasRemote := false
	for {
		msg, ok := p.link.TryRecv()
		if !ok {
			break
		}
		switch msg.Kind {
		case split.KindKeyPressed, split.KindKeyReleased:
			c := layout.Merge(p.hand.Other(), msg.Coord)
			down := msg.Kind == split.KindKeyPressed
			p.transitions = append(p.transitions, pressed.Transition{Coord: c, Pressed: down})
			if down {
				last, hasKey = c, true
			}
		case split.KindMotion:
			d0 += int(msg.DX)
			d1 += int(msg.DY)
		case split.KindStatus:
			remote, hasRemote = msg.Value, true
		}
	}
	motion := state.Motion{D0: clamp8(d0), D1: clamp8(d1)}

	set := p.withReleases(p.engine.Update(p.transitions, motion, now))
	if set.Any() && !p.hid.Queue(set) {
		p.dropped++
		p.keepReleases(set)
		p.logf("report queue full, dropped %d", p.dropped)
	}

	layer := p.engine.HighestLayer()
	if layer != p.layer {
		p.layer = layer
		p.link.Send(split.LED(uint8(layer)))
	}

	if p.status != nil {
		pointer := p.in.hasPointer
		p.status.TryUpdate(func(f *status.Fields) {
			f.Tick++
			f.Layer = layer
			f.Pointer = pointer
			if hasKey {
				f.LastKey, f.HasKey = last, true
			}
			if set.HasMouse {
				f.DX, f.DY = set.Mouse.X, set.Mouse.Y
			}
			if hasRemote {
				f.Remote, f.HasRemote = remote, true
			}
		})
	}
	return set
}

// withReleases adds the pending empty reports to set where the cycle produced
// no report of that kind.
func (p *Primary) withReleases(set report.Set) report.Set {
	r := p.releases
	p.releases = report.Set{}
	if r.HasKeyboard && !set.HasKeyboard {
		set.Keyboard, set.HasKeyboard = report.Keyboard{}, true
	}
	if r.HasMouse && !set.HasMouse {
		set.Mouse, set.HasMouse = report.Mouse{}, true
	}
	if r.HasMedia && !set.HasMedia {
		set.Media, set.HasMedia = report.Media{}, true
	}
	return set
}

func (p *Primary) keepReleases(set report.Set) {
	p.releases = report.Set{
		HasKeyboard: set.HasKeyboard && set.Keyboard.Empty(),
		HasMouse:    set.HasMouse && set.Mouse == report.Mouse{},
		HasMedia:    set.HasMedia && set.Media.Usage == 0,
	}
}
