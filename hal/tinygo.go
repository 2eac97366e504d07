//go:build tinygo && rp2040

package hal

import (
	"machine"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ssd1306"
)

// Keyball61 wiring.
var (
	matrixRows = []uint8{4, 5, 6, 7, 8}
	matrixCols = []uint8{26, 27, 28, 29}
)

const (
	sensorCS   = machine.GP21
	sensorCPI  = 1200
	oledAddr   = 0x3C
	oledWidth  = 128
	oledHeight = 32
)

type keyballHAL struct {
	logger  *serialLogger
	matrix  *DuplexScanner
	pointer PointerSensor
	hid     *usbHID
	split   *pioSplit
	display drivers.Displayer
}

// New returns the HAL of one keyball61 half on an RP2040.
//
// Logs go to the USB CDC port. A missing trackball or OLED is logged and
// left out; a broken matrix or split line panics.
func New() HAL {
	log := &serialLogger{out: machine.Serial}

	matrix, err := NewDuplexScanner(gpPins(matrixRows...), gpPins(matrixCols...))
	if err != nil {
		panic("matrix: " + err.Error())
	}
	split, err := newPIOSplit()
	if err != nil {
		panic(err.Error())
	}

	h := &keyballHAL{
		logger:  log,
		matrix:  matrix,
		pointer: noPointer{},
		hid:     newUSBHID(),
		split:   split,
	}

	machine.SPI0.Configure(machine.SPIConfig{
		Frequency: 2 * machine.MHz,
		SCK:       machine.GP22,
		SDO:       machine.GP23,
		SDI:       machine.GP20,
		Mode:      3,
	})
	ball := NewPMW3360(machine.SPI0, &machinePin{p: sensorCS})
	if err := ball.Configure(sensorCPI); err != nil {
		log.WriteLineString("pointer: " + err.Error())
	} else {
		h.pointer = ball
	}

	machine.I2C1.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.GP2,
		SCL:       machine.GP3,
	})
	oled := ssd1306.NewI2C(machine.I2C1)
	oled.Configure(ssd1306.Config{
		Width:    oledWidth,
		Height:   oledHeight,
		Address:  oledAddr,
		VccState: ssd1306.SWITCHCAPVCC,
	})
	oled.ClearDisplay()
	h.display = &oled

	return h
}

func (h *keyballHAL) Logger() Logger             { return h.logger }
func (h *keyballHAL) Matrix() Matrix             { return h.matrix }
func (h *keyballHAL) Pointer() PointerSensor     { return h.pointer }
func (h *keyballHAL) HID() HID                   { return h.hid }
func (h *keyballHAL) Split() SplitPort           { return h.split }
func (h *keyballHAL) BootFlag() BootFlag         { return watchdogFlag{} }
func (h *keyballHAL) Display() drivers.Displayer { return h.display }
