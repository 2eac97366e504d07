package pio

import (
	"errors"
	"fmt"
)

// ErrUnsupported marks an instruction the emulator does not run.
var ErrUnsupported = errors.New("unsupported instruction")

type opcode uint8

const (
	opJmp opcode = iota
	opWait
	opIn
	opOut
	opPushPull
	opMov
	opIrq
	opSet
)

// Operand sources and destinations, by field value.
const (
	locPins    = 0
	locX       = 1
	locY       = 2
	locNull    = 3
	locPindirs = 4 // OUT, SET
	locPC      = 5 // OUT, MOV
	locISR     = 6
	locOSR     = 7 // IN source, MOV
	locExec    = 7 // OUT destination
)

const (
	jmpAlways = iota
	jmpNotX
	jmpXDec
	jmpNotY
	jmpYDec
	jmpXNotY
	jmpPin
	jmpNotOSRE
)

type instr struct {
	raw   uint16
	op    opcode
	delay uint8
	// arg fields, meaning per opcode
	a, b uint8
	addr uint8
	data uint8
}

func decode(raw uint16) instr {
	return instr{
		raw:   raw,
		op:    opcode(raw >> 13),
		delay: uint8(raw>>8) & 0x1F,
		a:     uint8(raw>>5) & 0x7,
		b:     uint8(raw>>3) & 0x3,
		addr:  uint8(raw) & 0x1F,
		data:  uint8(raw) & 0x1F,
	}
}

func (in instr) isPull() bool { return in.op == opPushPull && in.raw&0x80 != 0 }

func (in instr) bitCount() uint8 {
	if in.data == 0 {
		return 32
	}
	return in.data
}

func (in instr) supported() error {
	switch in.op {
	case opWait:
		if src := (in.raw >> 5) & 0x3; src == 2 || src == 3 {
			return fmt.Errorf("%04x wait irq: %w", in.raw, ErrUnsupported)
		}
	case opIn:
		if in.a == 4 || in.a == 5 {
			return fmt.Errorf("%04x in reserved source: %w", in.raw, ErrUnsupported)
		}
	case opOut:
		if in.a == locExec {
			return fmt.Errorf("%04x out exec: %w", in.raw, ErrUnsupported)
		}
	case opPushPull:
		if in.raw&0x1F != 0 {
			return fmt.Errorf("%04x push/pull reserved bits: %w", in.raw, ErrUnsupported)
		}
	case opMov:
		src := in.raw & 0x7
		if in.a == 3 || in.a == 4 || src == 4 || src == 5 || in.b == 3 {
			return fmt.Errorf("%04x mov: %w", in.raw, ErrUnsupported)
		}
	case opIrq:
		return fmt.Errorf("%04x irq: %w", in.raw, ErrUnsupported)
	case opSet:
		if in.a != locPins && in.a != locX && in.a != locY && in.a != locPindirs {
			return fmt.Errorf("%04x set reserved destination: %w", in.raw, ErrUnsupported)
		}
	}
	return nil
}

var (
	inSrcNames   = [8]string{"pins", "x", "y", "null", "", "", "isr", "osr"}
	outDstNames  = [8]string{"pins", "x", "y", "null", "pindirs", "pc", "isr", "exec"}
	setDstNames  = [8]string{"pins", "x", "y", "", "pindirs", "", "", ""}
	movDstNames  = [8]string{"pins", "x", "y", "", "exec", "pc", "isr", "osr"}
	movSrcNames  = [8]string{"pins", "x", "y", "null", "", "status", "isr", "osr"}
	movOpNames   = [4]string{"", "!", "::", ""}
	jmpCondNames = [8]string{"", "!x", "x--", "!y", "y--", "x!=y", "pin", "!osre"}
)

// Disassemble renders one instruction in pioasm syntax.
func Disassemble(raw uint16) string {
	in := decode(raw)
	var s string
	switch in.op {
	case opJmp:
		if c := jmpCondNames[in.a]; c != "" {
			s = fmt.Sprintf("jmp %s %d", c, in.addr)
		} else {
			s = fmt.Sprintf("jmp %d", in.addr)
		}
	case opWait:
		pol := (raw >> 7) & 1
		src := [4]string{"gpio", "pin", "irq", "?"}[(raw>>5)&0x3]
		s = fmt.Sprintf("wait %d %s %d", pol, src, in.data)
	case opIn:
		s = fmt.Sprintf("in %s %d", inSrcNames[in.a], in.bitCount())
	case opOut:
		s = fmt.Sprintf("out %s %d", outDstNames[in.a], in.bitCount())
	case opPushPull:
		name, cond := "push", " iffull"
		if in.isPull() {
			name, cond = "pull", " ifempty"
		}
		if raw&0x40 == 0 {
			cond = ""
		}
		if raw&0x20 == 0 {
			s = name + cond + " noblock"
		} else {
			s = name + cond
		}
	case opMov:
		if raw == 0xA042 {
			s = "nop"
		} else {
			s = fmt.Sprintf("mov %s, %s%s", movDstNames[in.a], movOpNames[in.b], movSrcNames[raw&0x7])
		}
	case opIrq:
		s = fmt.Sprintf("irq %d", in.data)
	case opSet:
		s = fmt.Sprintf("set %s %d", setDstNames[in.a], in.data)
	}
	if in.delay != 0 {
		s += fmt.Sprintf(" [%d]", in.delay)
	}
	return s
}
