package hal

import (
	"context"
	"errors"

	"keyball/firmware/layout"

	"tinygo.org/x/drivers"
)

// Logger writes newline-delimited log lines.
type Logger interface {
	WriteLineString(s string)
	WriteLineBytes(b []byte)
}

var ErrNotImplemented = errors.New("not implemented")

// KeyEvent is a raw matrix transition in half-local coordinates.
type KeyEvent struct {
	Row     uint8
	Col     uint8
	Pressed bool
}

// Matrix scans one half's switch matrix.
type Matrix interface {
	// Scan appends the transitions observed since the previous scan.
	Scan(dst []KeyEvent) []KeyEvent
	// Hand reports which half this matrix belongs to.
	Hand() layout.Hand
}

// PointerSensor reads accumulated motion in sensor axes.
//
// Halves without a sensor return ErrNotImplemented.
type PointerSensor interface {
	ReadMotion() (d0, d1 int8, err error)
}

// noPointer is the sensor of a half without a trackball.
type noPointer struct{}

func (noPointer) ReadMotion() (int8, int8, error) { return 0, 0, ErrNotImplemented }

// ReportKind selects the HID report a payload belongs to.
type ReportKind uint8

const (
	ReportMouse ReportKind = iota + 1
	ReportKeyboard
	ReportMedia
)

// HID is the USB device side.
type HID interface {
	// Ready is closed once the host configured the device.
	Ready() <-chan struct{}
	Suspended() bool
	// RemoteWakeup signals resume to a suspended host.
	RemoteWakeup() error
	WriteReport(kind ReportKind, b []byte) error
}

// StateMachine is one PIO state machine running a split program.
type StateMachine interface {
	SetEnabled(on bool)
	// Restart clears the shift state and parks the program at its wrap target.
	Restart()
	// TxIdle reports that the TX FIFO is empty and the last word was shifted
	// out, or that the state machine is stopped.
	TxIdle() bool
	Put(ctx context.Context, word uint32) error
	Rx() <-chan uint32
}

// Drive is the pad drive strength of the split data pin.
type Drive uint8

const (
	Drive2mA Drive = iota
	Drive4mA
	Drive8mA
	Drive12mA
)

// SplitPort is the half-duplex split data line.
type SplitPort interface {
	RX() StateMachine
	TX() StateMachine
	SetDrive(d Drive)
}

// BootFlag is a word that survives a reset but not a power cycle.
type BootFlag interface {
	Read() (uint32, error)
	Write(v uint32) error
	// EnterBootloader resets into the USB bootloader. It does not return on
	// hardware.
	EnterBootloader()
}

// HAL provides the only contact point between the firmware and the outside
// world.
type HAL interface {
	Logger() Logger
	Matrix() Matrix
	Pointer() PointerSensor
	HID() HID
	Split() SplitPort
	BootFlag() BootFlag
	// Display returns the status display, or nil.
	Display() drivers.Displayer
}
