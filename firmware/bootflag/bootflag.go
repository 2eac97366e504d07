// Package bootflag implements double-tap reset into the USB bootloader.
//
// The first reset arms a flag in memory that survives a reset. A second reset
// within the window finds the flag armed and enters the bootloader.
package bootflag

import (
	"context"
	"fmt"
	"time"

	"keyball/hal"
)

// Magic marks an armed flag.
const Magic = 0xDEADBEEF

// Check runs the double-tap detection. It returns once the window has passed
// without a second reset; on a double tap it calls EnterBootloader, which
// does not return on hardware.
func Check(ctx context.Context, b hal.BootFlag, window time.Duration) error {
	v, err := b.Read()
	if err != nil {
		return fmt.Errorf("bootflag: read: %w", err)
	}
	if v == Magic {
		if err := b.Write(0); err != nil {
			return fmt.Errorf("bootflag: clear: %w", err)
		}
		b.EnterBootloader()
		return nil
	}

	if err := b.Write(Magic); err != nil {
		return fmt.Errorf("bootflag: arm: %w", err)
	}
	timer := time.NewTimer(window)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	if err := b.Write(0); err != nil {
		return fmt.Errorf("bootflag: clear: %w", err)
	}
	return ctx.Err()
}
