package hal

import (
	"fmt"
	"sync"
)

// GPIOMode selects whether a pin is an input or output.
type GPIOMode uint8

const (
	GPIOModeInput GPIOMode = iota
	GPIOModeOutput
)

// GPIOPull selects the pull resistor of an input.
type GPIOPull uint8

const (
	GPIOPullNone GPIOPull = iota
	GPIOPullUp
	GPIOPullDown
)

func (p GPIOPull) String() string {
	switch p {
	case GPIOPullNone:
		return "none"
	case GPIOPullUp:
		return "up"
	case GPIOPullDown:
		return "down"
	}
	return fmt.Sprintf("pull(%d)", uint8(p))
}

// GPIOPin is one digital line: a matrix row or column, or a chip select.
//
// The duplex scanner reconfigures pins between input and output on every
// pass, so Configure must be cheap.
type GPIOPin interface {
	Name() string
	Configure(mode GPIOMode, pull GPIOPull) error
	Read() (level bool, err error)
	Write(level bool) error
}

// virtualPin holds a line's configuration without any wiring. An input
// settles to its pull; an output reads back its own level.
type virtualPin struct {
	name string

	mu    sync.Mutex
	mode  GPIOMode
	pull  GPIOPull
	level bool
}

func newVirtualPin(name string) *virtualPin {
	return &virtualPin{name: name}
}

func (p *virtualPin) Name() string { return p.name }

func (p *virtualPin) Configure(mode GPIOMode, pull GPIOPull) error {
	if mode > GPIOModeOutput {
		return fmt.Errorf("gpio: pin %s: invalid mode %d", p.name, mode)
	}
	if pull > GPIOPullDown {
		return fmt.Errorf("gpio: pin %s: invalid pull %v", p.name, pull)
	}
	if mode == GPIOModeOutput && pull != GPIOPullNone {
		return fmt.Errorf("gpio: pin %s: pull %v on an output", p.name, pull)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode, p.pull = mode, pull
	if mode == GPIOModeInput {
		p.level = pull == GPIOPullUp
	}
	return nil
}

func (p *virtualPin) Read() (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level, nil
}

func (p *virtualPin) Write(level bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.mode != GPIOModeOutput {
		return fmt.Errorf("gpio: pin %s: write to an input", p.name)
	}
	p.level = level
	return nil
}

func (p *virtualPin) state() (GPIOMode, GPIOPull, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode, p.pull, p.level
}
