//go:build !tinygo

package hal

import (
	"fmt"

	"keyball/internal/pio"
)

// emulatedSplit runs the split programs on emulated state machines sharing
// one wire with the other half.
type emulatedSplit struct {
	rx, tx *pio.StateMachine
}

// NewEmulatedSplit attaches one half's RX and TX state machines to w.
func NewEmulatedSplit(w *pio.Wire) (SplitPort, error) {
	cfg := pio.Config{ShiftLeft: true, FIFODepth: 8}
	rx, err := w.Attach(pio.SplitRX, cfg)
	if err != nil {
		return nil, fmt.Errorf("split: rx: %w", err)
	}
	tx, err := w.Attach(pio.SplitTX, cfg)
	if err != nil {
		return nil, fmt.Errorf("split: tx: %w", err)
	}
	return &emulatedSplit{rx: rx, tx: tx}, nil
}

func (s *emulatedSplit) RX() StateMachine { return s.rx }
func (s *emulatedSplit) TX() StateMachine { return s.tx }

// SetDrive is a no-op: the emulated wire has no pad electrics.
func (s *emulatedSplit) SetDrive(Drive) {}
