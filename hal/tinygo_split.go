//go:build tinygo && rp2040

package hal

import (
	"context"
	"device/rp"
	"fmt"
	"machine"
	"runtime"
	"time"

	pio "github.com/tinygo-org/pio/rp2-pio"

	splitpio "keyball/internal/pio"
	"keyball/kernel"
)

// splitPin is the single data line between the halves.
const splitPin = machine.GP1

// rxPoll is the pause between RX FIFO polls when the FIFO is empty.
const rxPoll = 50 * time.Microsecond

type pioSplit struct {
	rx, tx *pioSM
}

// newPIOSplit loads both split programs on PIO0 and parks the line in
// receive.
func newPIOSplit() (*pioSplit, error) {
	block := pio.PIO0
	splitPin.Configure(machine.PinConfig{Mode: block.PinMode()})

	rx, err := newPIOSM(block, splitpio.SplitRX, func(cfg *pio.StateMachineConfig) {
		cfg.SetInPins(splitPin)
		cfg.SetSetPins(splitPin, 1)
		cfg.SetInShift(false, false, 32)
	})
	if err != nil {
		return nil, fmt.Errorf("split: rx: %w", err)
	}
	tx, err := newPIOSM(block, splitpio.SplitTX, func(cfg *pio.StateMachineConfig) {
		cfg.SetSetPins(splitPin, 1)
		cfg.SetOutPins(splitPin, 1)
		cfg.SetOutShift(false, false, 32)
	})
	if err != nil {
		return nil, fmt.Errorf("split: tx: %w", err)
	}
	kernel.Go("split-rx", rx.pump)
	return &pioSplit{rx: rx, tx: tx}, nil
}

func (s *pioSplit) RX() StateMachine { return s.rx }
func (s *pioSplit) TX() StateMachine { return s.tx }

// SetDrive sets the pad drive strength field of the split pin.
func (s *pioSplit) SetDrive(d Drive) {
	rp.PADS_BANK0.GPIO1.ReplaceBits(uint32(d), 0x3, 4)
}

// pioSM is one hardware state machine running a split program.
type pioSM struct {
	block   *pio.PIO
	sm      pio.StateMachine
	offset  uint8
	prog    splitpio.Program
	enabled bool
	rx      chan uint32
}

func newPIOSM(block *pio.PIO, prog splitpio.Program, setup func(*pio.StateMachineConfig)) (*pioSM, error) {
	offset, err := block.AddProgram(prog.Code, -1)
	if err != nil {
		return nil, err
	}
	sm, err := block.ClaimStateMachine()
	if err != nil {
		return nil, err
	}
	cfg := pio.DefaultStateMachineConfig()
	cfg.SetWrap(offset+prog.WrapTarget, offset+prog.Wrap)
	whole, frac := splitpio.ClockDivider()
	cfg.SetClkDivIntFrac(whole, frac)
	setup(&cfg)
	sm.Init(offset, cfg)
	sm.SetEnabled(false)
	return &pioSM{block: block, sm: sm, offset: offset, prog: prog, rx: make(chan uint32, 8)}, nil
}

func (s *pioSM) SetEnabled(on bool) {
	s.sm.SetEnabled(on)
	s.enabled = on
}

func (s *pioSM) Restart() {
	s.sm.Restart()
	s.sm.Exec(splitpio.JmpTo(s.offset + s.prog.WrapTarget))
}

func (s *pioSM) txStallMask() uint32 { return 1 << (24 + uint32(s.sm.StateMachineIndex())) }

// TxIdle relies on the sticky TXSTALL flag, which Put clears after every
// word.
func (s *pioSM) TxIdle() bool {
	if !s.sm.IsTxFIFOEmpty() {
		return false
	}
	if !s.enabled {
		return true
	}
	return s.block.HW().FDEBUG.HasBits(s.txStallMask())
}

func (s *pioSM) Put(ctx context.Context, word uint32) error {
	for s.sm.IsTxFIFOFull() {
		if err := ctx.Err(); err != nil {
			return err
		}
		runtime.Gosched()
	}
	s.sm.TxPut(word)
	s.block.HW().FDEBUG.Set(s.txStallMask())
	return nil
}

func (s *pioSM) Rx() <-chan uint32 { return s.rx }

func (s *pioSM) pump() {
	for {
		for !s.sm.IsRxFIFOEmpty() {
			s.rx <- s.sm.RxGet()
		}
		time.Sleep(rxPoll)
	}
}
