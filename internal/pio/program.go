// Package pio holds the PIO programs of the split link and a cycle-level
// emulator that runs them on the host.
package pio

import "fmt"

// Program is an assembled PIO program loaded at offset 0.
type Program struct {
	Name       string
	Code       []uint16
	WrapTarget uint8
	Wrap       uint8
}

// SplitRX samples one 10-bit cell group per falling edge and pushes it.
//
//	    set pindirs 0
//	.wrap_target
//	    wait 0 pin 0
//	    set x 9 [8]
//	bitloop:
//	    in pins 1 [6]
//	    jmp x-- bitloop
//	    push
//	.wrap
var SplitRX = Program{
	Name:       "split_rx",
	Code:       []uint16{0xE080, 0x2020, 0xE829, 0x4601, 0x0043, 0x8020},
	WrapTarget: 1,
	Wrap:       5,
}

// SplitTX pulls a word, drives a start cell low and shifts out the top ten
// bits, then releases the line.
//
//	    set pindirs 0
//	.wrap_target
//	    pull
//	    set x 9 [2]
//	    set pins 0
//	    set pindirs 1 [7]
//	bitloop:
//	    out pins 1 [6]
//	    jmp x-- bitloop
//	    set pins 1
//	    set pindirs 0 [2]
//	.wrap
var SplitTX = Program{
	Name:       "split_tx",
	Code:       []uint16{0xE080, 0x80A0, 0xE229, 0xE000, 0xE781, 0x6601, 0x0045, 0xE001, 0xE280},
	WrapTarget: 1,
	Wrap:       8,
}

// Split link timing.
const (
	SysClockHz   = 125_000_000
	BitRate      = 100_000
	CyclesPerBit = 8
)

// ClockDivider returns the state machine clock divider as an integer part
// and a fraction in 1/256ths: 125 MHz / (100 kbit/s * 8) = 156.25.
func ClockDivider() (whole uint16, frac uint8) {
	const den = BitRate * CyclesPerBit
	whole = uint16(SysClockHz / den)
	frac = uint8((SysClockHz % den) * 256 / den)
	return whole, frac
}

// JmpTo encodes an unconditional jump, used to park a restarted state
// machine at its wrap target.
func JmpTo(addr uint8) uint16 { return uint16(addr & 0x1F) }

// Validate checks that every instruction is one the emulator runs and that
// the wrap and jump targets stay inside the program.
func (p Program) Validate() error {
	n := len(p.Code)
	if n == 0 || n > 32 {
		return fmt.Errorf("pio: %s: %d instructions", p.Name, n)
	}
	if int(p.Wrap) >= n || p.WrapTarget > p.Wrap {
		return fmt.Errorf("pio: %s: wrap %d..%d outside program", p.Name, p.WrapTarget, p.Wrap)
	}
	for pc, instr := range p.Code {
		in := decode(instr)
		if err := in.supported(); err != nil {
			return fmt.Errorf("pio: %s: pc %d: %w", p.Name, pc, err)
		}
		if in.op == opJmp && int(in.addr) >= n {
			return fmt.Errorf("pio: %s: pc %d: jump to %d outside program", p.Name, pc, in.addr)
		}
	}
	return nil
}
