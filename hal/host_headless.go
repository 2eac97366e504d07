//go:build !tinygo

package hal

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"keyball/firmware/layout"

	"golang.org/x/sync/errgroup"
)

// Firmware runs one half until ctx is done.
type Firmware func(ctx context.Context, h HAL) error

// HeadlessConfig controls the no-window host runner.
type HeadlessConfig struct {
	Sim SimConfig
	// Duration stops the run after the given time. Zero runs until ctx is
	// done or Script returns.
	Duration time.Duration
	// Script drives the simulated keyboard. The run ends when it returns.
	Script func(ctx context.Context, s *Sim) error
}

// RunHeadless runs both halves without opening a window.
func RunHeadless(ctx context.Context, fw Firmware, cfg HeadlessConfig) error {
	sim, err := NewSim(cfg.Sim)
	if err != nil {
		return err
	}
	if cfg.Duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Duration)
		defer cancel()
	}
	return runSim(ctx, sim, fw, cfg.Script)
}

// runSim runs the wire and both halves; a finished script ends the run
// cleanly.
func runSim(ctx context.Context, sim *Sim, fw Firmware, script func(context.Context, *Sim) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	var finished atomic.Bool

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return sim.Run(gctx) })
	for _, hand := range []layout.Hand{layout.Left, layout.Right} {
		hand := hand
		h := sim.Half(hand)
		g.Go(func() error {
			if err := fw(gctx, h); err != nil && gctx.Err() == nil {
				return fmt.Errorf("%v half: %w", hand, err)
			}
			return nil
		})
	}
	if script != nil {
		g.Go(func() error {
			err := script(gctx, sim)
			if err == nil {
				finished.Store(true)
				cancel()
			}
			return err
		})
	}
	err := g.Wait()
	if finished.Load() || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}
