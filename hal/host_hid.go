//go:build !tinygo

package hal

import (
	"fmt"
	"sync"
	"time"
)

// maxHostReports bounds the recorded report history.
const maxHostReports = 1024

// HostReport is one report written to the simulated USB host.
type HostReport struct {
	Kind ReportKind
	Data []byte
	At   time.Time
}

func (r HostReport) String() string {
	names := [...]string{ReportMouse: "mouse", ReportKeyboard: "kbd", ReportMedia: "media"}
	name := "?"
	if int(r.Kind) < len(names) {
		name = names[r.Kind]
	}
	return fmt.Sprintf("%s % x", name, r.Data)
}

// hostHID records reports instead of sending them.
type hostHID struct {
	ready chan struct{}
	log   Logger
	trace bool

	mu        sync.Mutex
	suspended bool
	reports   []HostReport
}

func newHostHID(plugged, trace bool, log Logger) *hostHID {
	h := &hostHID{ready: make(chan struct{}), log: log, trace: trace}
	if plugged {
		close(h.ready)
	}
	return h
}

func (h *hostHID) Ready() <-chan struct{} { return h.ready }

func (h *hostHID) Suspended() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.suspended
}

func (h *hostHID) setSuspended(on bool) {
	h.mu.Lock()
	h.suspended = on
	h.mu.Unlock()
}

func (h *hostHID) RemoteWakeup() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.suspended {
		return nil
	}
	h.suspended = false
	h.log.WriteLineString("usb: remote wakeup")
	return nil
}

func (h *hostHID) WriteReport(kind ReportKind, b []byte) error {
	select {
	case <-h.ready:
	default:
		return fmt.Errorf("usb: not configured")
	}
	r := HostReport{Kind: kind, Data: append([]byte(nil), b...), At: time.Now()}
	h.mu.Lock()
	if len(h.reports) == maxHostReports {
		copy(h.reports, h.reports[1:])
		h.reports = h.reports[:maxHostReports-1]
	}
	h.reports = append(h.reports, r)
	h.mu.Unlock()
	if h.trace {
		h.log.WriteLineString("usb: " + r.String())
	}
	return nil
}

func (h *hostHID) snapshot() []HostReport {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]HostReport(nil), h.reports...)
}
