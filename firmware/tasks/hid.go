package tasks

import (
	"context"
	"sync/atomic"

	"keyball/firmware/logger"
	"keyball/firmware/report"
	"keyball/hal"
	"keyball/kernel"
)

// HID writes the fusion loop's reports to the USB device.
type HID struct {
	dev  hal.HID
	q    *kernel.Mailbox[report.Set]
	logf logger.Logf
	buf  [8]byte

	written, failed, wakeups atomic.Uint32
}

// NewHID returns an emit task with room for depth report sets.
func NewHID(dev hal.HID, depth int, logf logger.Logf) *HID {
	if logf == nil {
		logf = logger.Discard
	}
	return &HID{dev: dev, q: kernel.NewMailbox[report.Set](depth), logf: logf}
}

// Queue hands s to the task. It reports false when s was dropped.
func (h *HID) Queue(s report.Set) bool { return h.q.TrySend(s) }

// Stats returns the write counters.
func (h *HID) Stats() (written, failed, wakeups uint32) {
	return h.written.Load(), h.failed.Load(), h.wakeups.Load()
}

// Run writes queued reports until ctx is done.
func (h *HID) Run(ctx context.Context) error {
	for {
		s, err := h.q.Recv(ctx)
		if err != nil {
			return err
		}
		h.emit(s)
	}
}

func (h *HID) emit(s report.Set) {
	if s.HasMouse {
		h.write(hal.ReportMouse, s.Mouse.AppendBinary(h.buf[:0]))
	}
	if s.HasKeyboard {
		h.write(hal.ReportKeyboard, s.Keyboard.AppendBinary(h.buf[:0]))
		if !s.Keyboard.Empty() && h.dev.Suspended() {
			h.wakeups.Add(1)
			if err := h.dev.RemoteWakeup(); err != nil {
				h.logf("remote wakeup: %v", err)
			}
		}
	}
	if s.HasMedia {
		h.write(hal.ReportMedia, s.Media.AppendBinary(h.buf[:0]))
	}
}

func (h *HID) write(kind hal.ReportKind, b []byte) {
	if err := h.dev.WriteReport(kind, b); err != nil {
		h.failed.Add(1)
		h.logf("write report %d: %v", kind, err)
		return
	}
	h.written.Add(1)
}
