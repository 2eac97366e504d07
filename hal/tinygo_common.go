//go:build tinygo && rp2040

package hal

import (
	"fmt"
	"machine"
)

// serialLogger writes log lines to the USB CDC serial port. The UART pins
// are taken by the split line.
type serialLogger struct {
	out machine.Serialer
}

func (l *serialLogger) WriteLineString(s string) {
	for i := 0; i < len(s); i++ {
		l.out.WriteByte(s[i])
	}
	l.out.WriteByte('\r')
	l.out.WriteByte('\n')
}

func (l *serialLogger) WriteLineBytes(b []byte) {
	l.out.Write(b)
	l.out.WriteByte('\r')
	l.out.WriteByte('\n')
}

// machinePin adapts a GP pin to GPIOPin.
type machinePin struct {
	p      machine.Pin
	output bool
}

func gpPins(nums ...uint8) []GPIOPin {
	pins := make([]GPIOPin, len(nums))
	for i, n := range nums {
		pins[i] = &machinePin{p: machine.Pin(n)}
	}
	return pins
}

func (m *machinePin) Name() string { return fmt.Sprintf("GP%d", uint8(m.p)) }

func (m *machinePin) Configure(mode GPIOMode, pull GPIOPull) error {
	if mode == GPIOModeOutput {
		m.p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		m.output = true
		return nil
	}
	pm := machine.PinInput
	switch pull {
	case GPIOPullUp:
		pm = machine.PinInputPullup
	case GPIOPullDown:
		pm = machine.PinInputPulldown
	}
	m.p.Configure(machine.PinConfig{Mode: pm})
	m.output = false
	return nil
}

func (m *machinePin) Read() (bool, error) { return m.p.Get(), nil }

func (m *machinePin) Write(level bool) error {
	if !m.output {
		return fmt.Errorf("gpio: pin %s: not an output", m.Name())
	}
	m.p.Set(level)
	return nil
}
