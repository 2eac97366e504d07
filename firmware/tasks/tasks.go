// Package tasks holds the long-running loops of a half: the primary fusion
// loop, the satellite forwarding loop and the HID emit task.
package tasks

import (
	"context"
	"errors"
	"time"

	"keyball/firmware/layout"
	"keyball/firmware/logger"
	"keyball/firmware/split"
	"keyball/firmware/state"
	"keyball/hal"

	"golang.org/x/sync/errgroup"
)

// Link is the split link as seen by the loops.
type Link interface {
	Send(m split.Message) bool
	TryRecv() (split.Message, bool)
}

// Inputs are the local sources of a half.
type Inputs struct {
	Hand   layout.Hand
	Matrix hal.Matrix
	// Pointer may be nil when the half has no sensor.
	Pointer hal.PointerSensor
}

// input polls the matrix and the pointer sensor side by side.
type input struct {
	matrix     hal.Matrix
	pointer    hal.PointerSensor
	hasPointer bool
	events     []hal.KeyEvent
	logf       logger.Logf
}

func newInput(in Inputs, logf logger.Logf) input {
	return input{
		matrix:     in.Matrix,
		pointer:    in.Pointer,
		hasPointer: in.Pointer != nil,
		events:     make([]hal.KeyEvent, 0, layout.Rows*layout.Cols),
		logf:       logf,
	}
}

// poll returns this cycle's raw transitions and motion. A failed sensor read
// counts as no motion; a sensor reporting ErrNotImplemented is not read again.
func (in *input) poll() ([]hal.KeyEvent, state.Motion) {
	var (
		g errgroup.Group
		m state.Motion
	)
	events := in.events[:0]
	g.Go(func() error {
		events = in.matrix.Scan(events)
		return nil
	})
	if in.hasPointer {
		g.Go(func() error {
			d0, d1, err := in.pointer.ReadMotion()
			if err != nil {
				return err
			}
			m = state.Motion{D0: d0, D1: d1}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		if errors.Is(err, hal.ErrNotImplemented) {
			in.hasPointer = false
			in.logf("pointer unavailable")
		} else {
			in.logf("pointer: %v", err)
		}
	}
	in.events = events
	return events, m
}

// pace sleeps out the rest of interval after start.
func pace(ctx context.Context, start time.Time, interval time.Duration) error {
	d := interval - time.Since(start)
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func clamp8(v int) int8 {
	switch {
	case v > 127:
		return 127
	case v < -128:
		return -128
	}
	return int8(v)
}
