//go:build tinygo && rp2040

package hal

import (
	"device/rp"
	"fmt"
	"machine/usb/descriptor"
	"machine/usb/hid"
	"machine/usb/hid/keyboard"
	"machine/usb/hid/mouse"
	"time"

	"keyball/kernel"
)

// usbHID sends raw reports on the HID endpoint.
type usbHID struct {
	ready chan struct{}
	buf   [9]byte
}

func newUSBHID() *usbHID {
	descriptor.CDCHID = keyballDescriptor
	// Both ports register the HID interface; the returned handles are unused.
	keyboard.Port()
	mouse.Port()

	h := &usbHID{ready: make(chan struct{})}
	kernel.Go("usb-ready", h.waitConfigured)
	return h
}

func (h *usbHID) waitConfigured() {
	for !rp.USBCTRL_REGS.SIE_STATUS.HasBits(rp.USBCTRL_REGS_SIE_STATUS_CONNECTED) {
		time.Sleep(time.Millisecond)
	}
	close(h.ready)
}

func (h *usbHID) Ready() <-chan struct{} { return h.ready }

func (h *usbHID) Suspended() bool {
	return rp.USBCTRL_REGS.SIE_STATUS.HasBits(rp.USBCTRL_REGS_SIE_STATUS_SUSPENDED)
}

func (h *usbHID) RemoteWakeup() error {
	rp.USBCTRL_REGS.SIE_CTRL.SetBits(rp.USBCTRL_REGS_SIE_CTRL_RESUME)
	return nil
}

func (h *usbHID) WriteReport(kind ReportKind, b []byte) error {
	var id byte
	switch kind {
	case ReportMouse:
		id = reportIDMouse
	case ReportKeyboard:
		id = reportIDKeyboard
	case ReportMedia:
		id = reportIDConsumer
	default:
		return fmt.Errorf("usb: report kind %d: %w", kind, ErrNotImplemented)
	}
	if len(b) >= len(h.buf) {
		return fmt.Errorf("usb: report of %d bytes", len(b))
	}
	h.buf[0] = id
	n := copy(h.buf[1:], b)
	hid.SendUSBPacket(h.buf[:n+1])
	return nil
}
