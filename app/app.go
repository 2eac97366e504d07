// Package app wires one keyboard half: boot flag, role arbitration, the
// split link and the loops of the chosen role.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"keyball/firmware/bootflag"
	"keyball/firmware/config"
	"keyball/firmware/keymap"
	"keyball/firmware/logger"
	"keyball/firmware/role"
	"keyball/firmware/split"
	"keyball/firmware/status"
	"keyball/firmware/tasks"
	"keyball/firmware/transport"
	"keyball/hal"
	"keyball/internal/buildinfo"
	"keyball/kernel"

	"golang.org/x/sync/errgroup"
)

const (
	// logDepth is the log service queue depth.
	logDepth = 32
	// statsInterval is how often changed counters are logged.
	statsInterval = 10 * time.Second
)

// Options configures a half.
type Options struct {
	Config config.Config
	// Keymap defaults to keymap.Default().
	Keymap *keymap.Keymap
}

// Run runs one half until ctx is done or a task fails.
func Run(ctx context.Context, h hal.HAL, opts Options) error {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return err
	}
	km := opts.Keymap
	if km == nil {
		d := keymap.Default()
		km = &d
	}
	if err := km.Validate(); err != nil {
		return err
	}

	hand := h.Matrix().Hand()
	logs := logger.New(h.Logger(), logDepth)
	logf := logs.For("app")
	st := status.New(status.Fields{Hand: hand, Message: buildinfo.Short()})
	installPanicHandler(hand, h, st)

	g, gctx := errgroup.WithContext(ctx)
	spawn := func(name string, fn func() error) {
		g.Go(func() error { return kernel.Run(hand.String()+"/"+name, fn) })
	}

	spawn("logger", func() error { return logs.Run(gctx) })
	logf("%s", buildinfo.Banner(hand))

	if d := h.Display(); d != nil {
		runner := status.NewRunner(st, d, cfg.DisplayInterval.D(), logs.For("status"))
		spawn("status", func() error { return runner.Run(gctx) })
	}

	spawn("bootflag", func() error {
		err := bootflag.Check(gctx, h.BootFlag(), cfg.DoubleTapWindow.D())
		if err != nil && gctx.Err() == nil {
			logf("%v", err)
		}
		return nil
	})

	r := role.Arbitrate(gctx, h.HID().Ready(), cfg.SplitUSBTimeout.D())
	if err := gctx.Err(); err != nil {
		return wait(g, err)
	}
	logf("role %v", r)
	st.Update(func(f *status.Fields) { f.Role = r })

	inbound := split.ToSatellite
	if r == role.Primary {
		inbound = split.ToPrimary
	}
	link := split.NewLink(transport.New(h.Split(), split.MaxDataSize), inbound, cfg.SplitChannelSize, logs.For("split"))
	spawn("split", func() error { return link.Run(gctx) })

	in := tasks.Inputs{Hand: hand, Matrix: h.Matrix(), Pointer: h.Pointer()}
	var hid *tasks.HID
	if r == role.Primary {
		hid = tasks.NewHID(h.HID(), cfg.SplitChannelSize, logs.For("hid"))
		p := tasks.NewPrimary(cfg, km, in, link, hid, st, logs.For("primary"))
		spawn("hid", func() error { return hid.Run(gctx) })
		spawn("primary", func() error { return p.Run(gctx) })
	} else {
		s := tasks.NewSatellite(cfg, in, link, st, logs.For("satellite"))
		spawn("satellite", func() error { return s.Run(gctx) })
	}

	spawn("stats", func() error {
		return every(gctx, statsInterval, logs.For("stats"), func() string {
			ls := link.Stats()
			line := fmt.Sprintf("split sent=%d recv=%d rejected=%d dropped=%d log-dropped=%d",
				ls.Sent, ls.Received, ls.Rejected, ls.Dropped, logs.Dropped())
			if hid != nil {
				written, failed, wakeups := hid.Stats()
				line += fmt.Sprintf(" hid written=%d failed=%d wakeups=%d", written, failed, wakeups)
			}
			return line
		})
	})
	return wait(g, nil)
}

// every logs the line built by stats each interval when it changed.
func every(ctx context.Context, interval time.Duration, logf logger.Logf, stats func() string) error {
	tick := time.NewTicker(interval)
	defer tick.Stop()
	var last string
	for {
		select {
		case <-tick.C:
			if line := stats(); line != last {
				logf("%s", line)
				last = line
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// wait joins the tasks. Cancellation of the parent is not an error.
func wait(g *errgroup.Group, early error) error {
	err := g.Wait()
	if err == nil {
		err = early
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("app: %w", err)
	}
	return nil
}
