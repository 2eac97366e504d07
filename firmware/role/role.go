// Package role decides once at boot whether this half talks to the host.
package role

import (
	"context"
	"time"
)

// Role is the half's part in the split pair.
type Role uint8

const (
	// Primary owns USB and runs the fusion engine.
	Primary Role = iota + 1
	// Satellite forwards its matrix and sensor to the primary.
	Satellite
)

func (r Role) String() string {
	switch r {
	case Primary:
		return "primary"
	case Satellite:
		return "satellite"
	default:
		return "unknown"
	}
}

// Arbitrate races host readiness against timeout. A half that sees the host
// in time is Primary; otherwise it is Satellite. A cancelled ctx also yields
// Satellite, which never touches USB.
func Arbitrate(ctx context.Context, ready <-chan struct{}, timeout time.Duration) Role {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-ready:
		return Primary
	case <-timer.C:
		return Satellite
	case <-ctx.Done():
		return Satellite
	}
}
