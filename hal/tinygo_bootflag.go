//go:build tinygo && rp2040

package hal

import (
	"device/rp"
	"machine"
)

// watchdogFlag keeps the boot flag in watchdog scratch 0, which survives a
// reset through the RUN pin.
type watchdogFlag struct{}

func (watchdogFlag) Read() (uint32, error) { return rp.WATCHDOG.SCRATCH0.Get(), nil }

func (watchdogFlag) Write(v uint32) error {
	rp.WATCHDOG.SCRATCH0.Set(v)
	return nil
}

func (watchdogFlag) EnterBootloader() { machine.EnterBootloader() }
