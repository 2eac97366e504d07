package pio

import (
	"context"
	"sync"
	"time"
)

// stepBatch bounds the cycles run per lock acquisition.
const stepBatch = 1024

// rxPoll is how often a state machine stalled on a full RX FIFO is retried
// while nothing else runs.
const rxPoll = time.Millisecond

// Wire is a pulled-up open-drain line shared by every state machine attached
// to it. It is low while any state machine drives it low.
type Wire struct {
	mu     sync.Mutex
	sms    []*StateMachine
	cycles uint64
	wake   chan struct{}
}

// NewWire returns an idle, pulled-up wire.
func NewWire() *Wire {
	return &Wire{wake: make(chan struct{}, 1)}
}

// Attach loads p on a new, disabled state machine driving the wire.
func (w *Wire) Attach(p Program, cfg Config) (*StateMachine, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	sm := newStateMachine(w, p, cfg)
	w.mu.Lock()
	w.sms = append(w.sms, sm)
	w.mu.Unlock()
	return sm, nil
}

// Level returns the line level.
func (w *Wire) Level() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.levelLocked()
}

func (w *Wire) levelLocked() bool {
	for _, sm := range w.sms {
		if sm.drivesLow() {
			return false
		}
	}
	return true
}

// Cycles returns the number of clocks run so far.
func (w *Wire) Cycles() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cycles
}

// Step runs one clock on every state machine and reports whether any of them
// made progress. All state machines sample the line level of the previous
// clock.
func (w *Wire) Step() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stepLocked()
}

func (w *Wire) stepLocked() bool {
	level := w.levelLocked()
	progress := false
	for _, sm := range w.sms {
		if sm.step(level) {
			progress = true
		}
	}
	w.cycles++
	return progress
}

func (w *Wire) rxStalledLocked() bool {
	for _, sm := range w.sms {
		if sm.enabled && sm.stalled && sm.code[sm.pc].op == opPushPull && !sm.code[sm.pc].isPull() {
			return true
		}
	}
	return false
}

// Run clocks the wire until ctx is done. It sleeps while every state machine
// is stalled and wakes on FIFO or control activity.
func (w *Wire) Run(ctx context.Context) error {
	var timer *time.Timer
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		w.mu.Lock()
		progress := false
		for i := 0; i < stepBatch; i++ {
			if !w.stepLocked() {
				break
			}
			progress = true
		}
		poll := !progress && w.rxStalledLocked()
		w.mu.Unlock()
		if progress {
			continue
		}

		var tick <-chan time.Time
		if poll {
			if timer == nil {
				timer = time.NewTimer(rxPoll)
			} else {
				timer.Reset(rxPoll)
			}
			tick = timer.C
		}
		select {
		case <-w.wake:
		case <-tick:
		case <-ctx.Done():
			return ctx.Err()
		}
		if timer != nil && !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
	}
}

func (w *Wire) poke() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}
