// Package transport moves fixed-size frames over the half-duplex split line.
//
// Both halves listen by default. A sender turns the line around into transmit,
// pushes one word per byte and turns it back into receive once the last word
// has left the shifter.
package transport

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"keyball/hal"
)

// SettleDelay is the pause between the last transmitted cell and re-enabling
// the receiver.
const SettleDelay = 100 * time.Microsecond

// QuietTime is how long the line must stay silent before a send turns it
// around. It covers one frame at the split bit rate plus the other half's
// settle delay, and the gap between two frames of a burst.
const QuietTime = 2 * time.Millisecond

// drainTimeout bounds the wait for queued words after a cancelled send.
const drainTimeout = 20 * time.Millisecond

var ErrEmptyFrame = errors.New("transport: empty frame")

// Transport owns the turnaround of one half's split port.
type Transport struct {
	port   hal.SplitPort
	rx, tx hal.StateMachine
	framer *Framer
	settle time.Duration
	quiet  time.Duration
	lastRx time.Time
}

// New returns a transport for frameSize-byte frames and puts the line into
// receive.
func New(port hal.SplitPort, frameSize int) *Transport {
	t := &Transport{
		port:   port,
		rx:     port.RX(),
		tx:     port.TX(),
		framer: NewFramer(frameSize),
		settle: SettleDelay,
		quiet:  QuietTime,
	}
	t.tx.SetEnabled(false)
	t.enterRX()
	return t
}

// Words returns the received word stream. Feed each word to Feed.
func (t *Transport) Words() <-chan uint32 { return t.rx.Rx() }

// Feed passes one received word to the framer.
func (t *Transport) Feed(w uint32) ([]byte, bool) {
	t.lastRx = time.Now()
	return t.framer.Feed(w)
}

// Quiet returns how long a sender must still wait before the line is free at
// now. The other half has its receiver off while it transmits or settles, so
// a frame sent into that window is lost.
func (t *Transport) Quiet(now time.Time) time.Duration {
	if t.lastRx.IsZero() {
		return 0
	}
	if d := t.quiet - now.Sub(t.lastRx); d > 0 {
		return d
	}
	return 0
}

// Discarded returns the bytes dropped while resynchronizing.
func (t *Transport) Discarded() int { return t.framer.Discarded() }

// SendData transmits buf as one frame and returns once the line is back in
// receive.
func (t *Transport) SendData(ctx context.Context, buf []byte) error {
	if len(buf) == 0 {
		return ErrEmptyFrame
	}
	if err := waitTxIdle(ctx, t.tx); err != nil {
		return fmt.Errorf("transport: send: %w", err)
	}
	t.enterTX()
	var err error
	for i, b := range buf {
		if err = t.tx.Put(ctx, EncodeWord(b, i == 0, i == len(buf)-1)); err != nil {
			break
		}
	}
	// The line is released even when ctx ends mid-frame; the receiver
	// resynchronizes on the next start marker.
	drain := ctx
	if err != nil {
		var cancel context.CancelFunc
		drain, cancel = context.WithTimeout(context.Background(), drainTimeout)
		defer cancel()
	}
	if werr := waitTxIdle(drain, t.tx); werr != nil && err == nil {
		err = werr
	}
	time.Sleep(t.settle)
	t.enterRX()
	if err != nil {
		return fmt.Errorf("transport: send: %w", err)
	}
	return nil
}

// RecvData blocks until one full frame was received and copies it into buf.
// A partial frame is never returned.
func (t *Transport) RecvData(ctx context.Context, buf []byte) error {
	if len(buf) < t.framer.Size() {
		return fmt.Errorf("transport: recv: buffer of %d bytes, frame is %d", len(buf), t.framer.Size())
	}
	for {
		select {
		case w := <-t.rx.Rx():
			if frame, ok := t.Feed(w); ok {
				copy(buf, frame)
				return nil
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (t *Transport) enterTX() {
	t.rx.SetEnabled(false)
	t.port.SetDrive(hal.Drive12mA)
	t.tx.Restart()
	t.tx.SetEnabled(true)
}

func (t *Transport) enterRX() {
	t.tx.SetEnabled(false)
	t.port.SetDrive(hal.Drive2mA)
	t.rx.Restart()
	t.rx.SetEnabled(true)
}

func waitTxIdle(ctx context.Context, sm hal.StateMachine) error {
	for !sm.TxIdle() {
		if err := ctx.Err(); err != nil {
			return err
		}
		runtime.Gosched()
	}
	return nil
}
