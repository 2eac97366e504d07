package hal

import (
	"errors"
	"fmt"
	"time"

	"tinygo.org/x/drivers"
)

// PMW3360 registers.
const (
	pmwProductID    = 0x00
	pmwMotion       = 0x02
	pmwDeltaXL      = 0x03
	pmwDeltaXH      = 0x04
	pmwDeltaYL      = 0x05
	pmwDeltaYH      = 0x06
	pmwConfig1      = 0x0F
	pmwConfig2      = 0x10
	pmwPowerUpReset = 0x3A
	pmwMotionBurst  = 0x50

	pmwProductIDValue = 0x42
	pmwResetValue     = 0x5A
	pmwWriteBit       = 0x80
)

var ErrNoSensor = errors.New("pmw3360: no sensor")

// PMW3360 is the trackball optical sensor on SPI.
type PMW3360 struct {
	spi drivers.SPI
	cs  GPIOPin
	// sleep waits out the sensor's bus timings.
	sleep func(time.Duration)

	// burst is false once a register access ended motion burst mode.
	burst bool
	zero  [12]byte
	buf   [12]byte
}

// NewPMW3360 returns a driver for the sensor on spi selected by cs.
func NewPMW3360(spi drivers.SPI, cs GPIOPin) *PMW3360 {
	return &PMW3360{spi: spi, cs: cs, sleep: time.Sleep}
}

// Configure resets the sensor, checks its product id and sets cpi.
func (d *PMW3360) Configure(cpi uint16) error {
	if err := d.cs.Configure(GPIOModeOutput, GPIOPullNone); err != nil {
		return fmt.Errorf("pmw3360: %w", err)
	}
	// Reset the serial port.
	d.cs.Write(true)
	d.sleep(50 * time.Microsecond)
	d.cs.Write(false)
	d.sleep(50 * time.Microsecond)
	d.cs.Write(true)

	if err := d.write(pmwPowerUpReset, pmwResetValue); err != nil {
		return err
	}
	d.sleep(50 * time.Millisecond)
	for _, reg := range []uint8{pmwMotion, pmwDeltaXL, pmwDeltaXH, pmwDeltaYL, pmwDeltaYH} {
		if _, err := d.read(reg); err != nil {
			return err
		}
	}

	id, err := d.read(pmwProductID)
	if err != nil {
		return err
	}
	if id != pmwProductIDValue {
		return fmt.Errorf("%w: product id %#02x", ErrNoSensor, id)
	}
	// TODO: upload the SROM firmware; tracking runs on the ROM defaults until then.
	if err := d.write(pmwConfig2, 0x00); err != nil {
		return err
	}
	return d.SetCPI(cpi)
}

// SetCPI sets the resolution in counts per inch, 100..12000 in steps of 100.
func (d *PMW3360) SetCPI(cpi uint16) error {
	var v uint8
	switch {
	case cpi < 100:
		v = 0
	case cpi > 12000:
		v = 0x77
	default:
		v = uint8((cpi - 100) / 100)
	}
	return d.write(pmwConfig1, v)
}

// ReadMotion returns the motion since the previous read, clamped to int8.
func (d *PMW3360) ReadMotion() (d0, d1 int8, err error) {
	if !d.burst {
		if err := d.write(pmwMotionBurst, 0x00); err != nil {
			return 0, 0, err
		}
		d.burst = true
	}

	d.cs.Write(false)
	err = d.spi.Tx([]byte{pmwMotionBurst}, nil)
	if err == nil {
		d.sleep(35 * time.Microsecond)
		err = d.spi.Tx(d.zero[:], d.buf[:])
	}
	d.cs.Write(true)
	d.sleep(time.Microsecond)
	if err != nil {
		d.burst = false
		return 0, 0, fmt.Errorf("pmw3360: burst: %w", err)
	}

	dx := int16(uint16(d.buf[3])<<8 | uint16(d.buf[2]))
	dy := int16(uint16(d.buf[5])<<8 | uint16(d.buf[4]))
	return clampInt8(dx), clampInt8(dy), nil
}

func (d *PMW3360) write(reg, v uint8) error {
	d.burst = false
	d.cs.Write(false)
	d.sleep(time.Microsecond)
	err := d.spi.Tx([]byte{reg | pmwWriteBit}, nil)
	if err == nil {
		err = d.spi.Tx([]byte{v}, nil)
	}
	d.sleep(35 * time.Microsecond)
	d.cs.Write(true)
	d.sleep(145 * time.Microsecond)
	if err != nil {
		return fmt.Errorf("pmw3360: write %#02x: %w", reg, err)
	}
	return nil
}

func (d *PMW3360) read(reg uint8) (uint8, error) {
	d.burst = false
	var r [1]byte
	d.cs.Write(false)
	d.sleep(time.Microsecond)
	err := d.spi.Tx([]byte{reg &^ pmwWriteBit}, nil)
	if err == nil {
		d.sleep(160 * time.Microsecond)
		err = d.spi.Tx([]byte{0}, r[:])
	}
	d.sleep(time.Microsecond)
	d.cs.Write(true)
	d.sleep(20 * time.Microsecond)
	if err != nil {
		return 0, fmt.Errorf("pmw3360: read %#02x: %w", reg, err)
	}
	return r[0], nil
}

func clampInt8(v int16) int8 {
	switch {
	case v > 127:
		return 127
	case v < -128:
		return -128
	}
	return int8(v)
}
