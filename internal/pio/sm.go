package pio

import (
	"context"
	"math/bits"
)

// Config is the subset of state machine configuration the split programs use.
// Both shift registers share one direction and autopush/autopull stay off.
type Config struct {
	ShiftLeft bool
	// FIFODepth is 4, or 8 with the FIFOs joined in one direction.
	FIFODepth int
}

// StateMachine is one emulated state machine attached to a Wire. Its only
// pin is the wire.
type StateMachine struct {
	w    *Wire
	prog Program
	code []instr
	cfg  Config

	enabled bool
	stalled bool
	pc      uint8
	x, y    uint32
	isr     uint32
	osr     uint32
	isrN    uint8
	osrN    uint8
	delay   uint8

	pinOut bool
	pinDir bool

	tx    []uint32
	rx    chan uint32
	space chan struct{}
}

func newStateMachine(w *Wire, p Program, cfg Config) *StateMachine {
	if cfg.FIFODepth <= 0 {
		cfg.FIFODepth = 4
	}
	sm := &StateMachine{
		w:     w,
		prog:  p,
		code:  make([]instr, len(p.Code)),
		cfg:   cfg,
		osrN:  32,
		tx:    make([]uint32, 0, cfg.FIFODepth),
		rx:    make(chan uint32, cfg.FIFODepth),
		space: make(chan struct{}, 1),
	}
	for i, raw := range p.Code {
		sm.code[i] = decode(raw)
	}
	return sm
}

// SetEnabled starts or stops the state machine. A stopped state machine keeps
// its pin state.
func (sm *StateMachine) SetEnabled(on bool) {
	sm.w.mu.Lock()
	sm.enabled = on
	sm.w.mu.Unlock()
	sm.w.poke()
}

// Restart clears the shift registers and the delay counter and parks the
// program counter at the wrap target.
func (sm *StateMachine) Restart() {
	sm.w.mu.Lock()
	sm.isr, sm.isrN = 0, 0
	sm.osr, sm.osrN = 0, 32
	sm.delay = 0
	sm.stalled = false
	sm.pc = sm.prog.WrapTarget
	sm.w.mu.Unlock()
	sm.w.poke()
}

// TxIdle reports that the TX FIFO is empty and nothing is being shifted out.
func (sm *StateMachine) TxIdle() bool {
	sm.w.mu.Lock()
	defer sm.w.mu.Unlock()
	if len(sm.tx) != 0 {
		return false
	}
	return !sm.enabled || (sm.stalled && sm.code[sm.pc].isPull())
}

// Put pushes word into the TX FIFO, blocking while it is full.
func (sm *StateMachine) Put(ctx context.Context, word uint32) error {
	for {
		sm.w.mu.Lock()
		if len(sm.tx) < cap(sm.tx) {
			sm.tx = append(sm.tx, word)
			sm.w.mu.Unlock()
			sm.w.poke()
			return nil
		}
		sm.w.mu.Unlock()
		select {
		case <-sm.space:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Rx returns the RX FIFO.
func (sm *StateMachine) Rx() <-chan uint32 { return sm.rx }

// Enabled reports whether the state machine runs.
func (sm *StateMachine) Enabled() bool {
	sm.w.mu.Lock()
	defer sm.w.mu.Unlock()
	return sm.enabled
}

// PC returns the program counter.
func (sm *StateMachine) PC() uint8 {
	sm.w.mu.Lock()
	defer sm.w.mu.Unlock()
	return sm.pc
}

func (sm *StateMachine) drivesLow() bool { return sm.pinDir && !sm.pinOut }

// step runs one clock with the wire at level and reports progress. Callers
// hold the wire lock.
func (sm *StateMachine) step(level bool) bool {
	if !sm.enabled {
		return false
	}
	if sm.delay > 0 {
		sm.delay--
		return true
	}
	in := sm.code[sm.pc]
	jumped, stall := sm.exec(in, level)
	if stall {
		sm.stalled = true
		return false
	}
	sm.stalled = false
	sm.delay = in.delay
	if !jumped {
		sm.advance()
	}
	return true
}

func (sm *StateMachine) advance() {
	if sm.pc == sm.prog.Wrap {
		sm.pc = sm.prog.WrapTarget
		return
	}
	sm.pc++
}

func b2u(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func (sm *StateMachine) exec(in instr, level bool) (jumped, stall bool) {
	switch in.op {
	case opJmp:
		var take bool
		switch in.a {
		case jmpAlways:
			take = true
		case jmpNotX:
			take = sm.x == 0
		case jmpXDec:
			take = sm.x != 0
			sm.x--
		case jmpNotY:
			take = sm.y == 0
		case jmpYDec:
			take = sm.y != 0
			sm.y--
		case jmpXNotY:
			take = sm.x != sm.y
		case jmpPin:
			take = level
		case jmpNotOSRE:
			take = sm.osrN < 32
		}
		if take {
			sm.pc = in.addr
			return true, false
		}
	case opWait:
		pol := in.raw&0x80 != 0
		return false, level != pol
	case opIn:
		var v uint32
		switch in.a {
		case locPins:
			v = b2u(level)
		case locX:
			v = sm.x
		case locY:
			v = sm.y
		case locISR:
			v = sm.isr
		case locOSR:
			v = sm.osr
		}
		sm.shiftIn(v, in.bitCount())
	case opOut:
		v := sm.shiftOut(in.bitCount())
		switch in.a {
		case locPins:
			sm.pinOut = v&1 != 0
		case locX:
			sm.x = v
		case locY:
			sm.y = v
		case locPindirs:
			sm.pinDir = v&1 != 0
		case locPC:
			sm.pc = uint8(v) & 0x1F
			return true, false
		case locISR:
			sm.isr, sm.isrN = v, in.bitCount()
		}
	case opPushPull:
		block := in.raw&0x20 != 0
		cond := in.raw&0x40 != 0
		if in.isPull() {
			if cond && sm.osrN < 32 {
				return false, false
			}
			if len(sm.tx) == 0 {
				if block {
					return false, true
				}
				sm.osr, sm.osrN = sm.x, 0
				return false, false
			}
			sm.osr, sm.osrN = sm.tx[0], 0
			sm.tx = append(sm.tx[:0], sm.tx[1:]...)
			select {
			case sm.space <- struct{}{}:
			default:
			}
			return false, false
		}
		if cond && sm.isrN < 32 {
			return false, false
		}
		select {
		case sm.rx <- sm.isr:
		default:
			if block {
				return false, true
			}
		}
		sm.isr, sm.isrN = 0, 0
	case opMov:
		var v uint32
		switch in.raw & 0x7 {
		case locPins:
			v = b2u(level)
		case locX:
			v = sm.x
		case locY:
			v = sm.y
		case locISR:
			v = sm.isr
		case locOSR:
			v = sm.osr
		}
		switch in.b {
		case 1:
			v = ^v
		case 2:
			v = bits.Reverse32(v)
		}
		switch in.a {
		case locPins:
			sm.pinOut = v&1 != 0
		case locX:
			sm.x = v
		case locY:
			sm.y = v
		case locPC:
			sm.pc = uint8(v) & 0x1F
			return true, false
		case locISR:
			sm.isr, sm.isrN = v, 0
		case locOSR:
			sm.osr, sm.osrN = v, 0
		}
	case opSet:
		v := uint32(in.data)
		switch in.a {
		case locPins:
			sm.pinOut = v&1 != 0
		case locX:
			sm.x = v
		case locY:
			sm.y = v
		case locPindirs:
			sm.pinDir = v&1 != 0
		}
	}
	return false, false
}

func (sm *StateMachine) shiftIn(v uint32, n uint8) {
	mask := uint32(1<<n - 1)
	if n == 32 {
		mask = ^uint32(0)
	}
	v &= mask
	switch {
	case n == 32:
		sm.isr = v
	case sm.cfg.ShiftLeft:
		sm.isr = sm.isr<<n | v
	default:
		sm.isr = sm.isr>>n | v<<(32-n)
	}
	sm.isrN = min(sm.isrN+n, 32)
}

func (sm *StateMachine) shiftOut(n uint8) uint32 {
	var v uint32
	switch {
	case n == 32:
		v, sm.osr = sm.osr, 0
	case sm.cfg.ShiftLeft:
		v = sm.osr >> (32 - n)
		sm.osr <<= n
	default:
		v = sm.osr & (1<<n - 1)
		sm.osr >>= n
	}
	sm.osrN = min(sm.osrN+n, 32)
	return v
}
