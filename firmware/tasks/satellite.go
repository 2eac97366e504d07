package tasks

import (
	"context"
	"fmt"
	"time"

	"keyball/firmware/config"
	"keyball/firmware/layout"
	"keyball/firmware/logger"
	"keyball/firmware/split"
	"keyball/firmware/status"
)

// Satellite forwards the local half to the primary.
type Satellite struct {
	cfg    config.Config
	hand   layout.Hand
	in     input
	link   Link
	status *status.State
	logf   logger.Logf

	dropped uint32
}

// NewSatellite returns the satellite loop.
func NewSatellite(cfg config.Config, in Inputs, link Link, st *status.State, logf logger.Logf) *Satellite {
	if logf == nil {
		logf = logger.Discard
	}
	return &Satellite{
		cfg:    cfg,
		hand:   in.Hand,
		in:     newInput(in, logf),
		link:   link,
		status: st,
		logf:   logf,
	}
}

// Run announces the hand and cycles every MinScanInterval until ctx is done.
func (s *Satellite) Run(ctx context.Context) error {
	s.send(split.Status(uint8(s.hand)))
	for {
		start := time.Now()
		s.Cycle()
		if err := pace(ctx, start, s.cfg.MinScanInterval.D()); err != nil {
			return err
		}
	}
}

// Cycle forwards one scan and applies what the primary sent.
func (s *Satellite) Cycle() {
	events, m := s.in.poll()

	var last layout.Coord
	hasKey := false
	for _, ev := range events {
		c := layout.Coord{Row: ev.Row, Col: ev.Col}
		if ev.Pressed {
			s.send(split.KeyPressed(c))
			last, hasKey = c, true
		} else {
			s.send(split.KeyReleased(c))
		}
	}
	if !m.Zero() {
		s.send(split.Motion(m.D0, m.D1))
	}

	layer, hasLayer := 0, false
	var remote uint8
	hasRemote := false
	for {
		msg, ok := s.link.TryRecv()
		if !ok {
			break
		}
		switch msg.Kind {
		case split.KindLED:
			layer, hasLayer = int(msg.Value), true
		case split.KindStatus:
			remote, hasRemote = msg.Value, true
		}
	}

	if s.status == nil {
		return
	}
	pointer := s.in.hasPointer
	s.status.TryUpdate(func(f *status.Fields) {
		f.Tick++
		f.Pointer = pointer
		if hasKey {
			f.LastKey, f.HasKey = last, true
		}
		if !m.Zero() {
			f.DX, f.DY = m.D0, m.D1
		}
		if hasLayer {
			f.Layer = layer
			f.Message = fmt.Sprintf("led %d", layer)
		}
		if hasRemote {
			f.Remote, f.HasRemote = remote, true
		}
	})
}

func (s *Satellite) send(m split.Message) {
	if !s.link.Send(m) {
		s.dropped++
		s.logf("link full, dropped %v", m)
	}
}
