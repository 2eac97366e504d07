//go:build !tinygo

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"keyball/app"
	"keyball/firmware/config"
	"keyball/firmware/layout"
	"keyball/hal"
	"keyball/internal/scenario"
)

func main() {
	var (
		headless   bool
		configPath string
		scriptPath string
		usb        string
		ball       string
		cfg        hal.HeadlessConfig
	)
	flag.BoolVar(&headless, "headless", false, "Run without a window.")
	flag.StringVar(&configPath, "config", "", "TOML file overriding the firmware tunables.")
	flag.StringVar(&scriptPath, "script", "", "YAML scenario to play (implies -headless).")
	flag.StringVar(&usb, "usb", "left", "Half plugged into the host: left or right.")
	flag.StringVar(&ball, "ball", "right", "Half carrying the trackball: left or right.")
	flag.StringVar(&cfg.Sim.BootFlagDir, "bootflag-dir", "", "Directory keeping the boot flags across runs (default in memory).")
	flag.BoolVar(&cfg.Sim.LogReports, "log-reports", false, "Log every HID report.")
	flag.DurationVar(&cfg.Duration, "duration", 0, "Stop a headless run after this long (0 = run until interrupted).")
	flag.Parse()

	fwCfg := config.Default()
	if configPath != "" {
		var err error
		if fwCfg, err = config.Load(configPath); err != nil {
			fatal(err)
		}
	}
	fw := func(ctx context.Context, h hal.HAL) error {
		return app.Run(ctx, h, app.Options{Config: fwCfg})
	}

	var err error
	if cfg.Sim.USB, err = parseHand(usb); err != nil {
		fatal(err)
	}
	if cfg.Sim.Ball, err = parseHand(ball); err != nil {
		fatal(err)
	}
	if scriptPath != "" {
		s, err := scenario.Load(scriptPath)
		if err != nil {
			fatal(err)
		}
		sc := s.SimConfig()
		cfg.Sim.USB, cfg.Sim.Ball = sc.USB, sc.Ball
		cfg.Script = s.Script()
		headless = true
	}

	if headless {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := hal.RunHeadless(ctx, fw, cfg); err != nil && !errors.Is(err, context.Canceled) {
			fatal(err)
		}
		return
	}
	if err := hal.RunWindow(fw, cfg.Sim); err != nil {
		fatal(err)
	}
}

func parseHand(s string) (layout.Hand, error) {
	switch s {
	case "left":
		return layout.Left, nil
	case "right":
		return layout.Right, nil
	}
	return 0, fmt.Errorf("unknown hand %q", s)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
