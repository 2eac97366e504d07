package split

import (
	"context"
	"sync/atomic"
	"time"

	"keyball/firmware/logger"
	"keyball/firmware/transport"
	"keyball/kernel"
)

// Stats counts link traffic.
type Stats struct {
	Sent     uint32
	Received uint32
	Rejected uint32
	Dropped  uint32
}

// Link joins one half's transport to its two message queues.
//
// The scan loop side never blocks: Send drops when the outbound queue is full.
// Run is the only user of the transport.
type Link struct {
	t       *transport.Transport
	inbound Direction
	out     *kernel.Mailbox[Message]
	in      *kernel.Mailbox[Message]
	logf    logger.Logf

	sent, received, rejected, dropped atomic.Uint32
}

// NewLink returns a link accepting inbound messages of direction inbound,
// with queues of depth messages each.
func NewLink(t *transport.Transport, inbound Direction, depth int, logf logger.Logf) *Link {
	if logf == nil {
		logf = logger.Discard
	}
	return &Link{
		t:       t,
		inbound: inbound,
		out:     kernel.NewMailbox[Message](depth),
		in:      kernel.NewMailbox[Message](depth),
		logf:    logf,
	}
}

// Send queues m for the other half. It reports false when the queue is full
// and m was dropped.
func (l *Link) Send(m Message) bool {
	if !l.out.TrySend(m) {
		l.dropped.Add(1)
		return false
	}
	return true
}

// TryRecv returns the next message from the other half, if any.
func (l *Link) TryRecv() (Message, bool) { return l.in.TryRecv() }

// Recv blocks for the next message from the other half.
func (l *Link) Recv(ctx context.Context) (Message, error) { return l.in.Recv(ctx) }

// Stats returns a snapshot of the counters.
func (l *Link) Stats() Stats {
	return Stats{
		Sent:     l.sent.Load(),
		Received: l.received.Load(),
		Rejected: l.rejected.Load(),
		Dropped:  l.dropped.Load(),
	}
}

// Run races frame arrival against queued outbound messages until ctx is
// done. The framer keeps its state across sends. Queued messages wait until
// the line has been quiet for transport.QuietTime.
func (l *Link) Run(ctx context.Context) error {
	var (
		pending bool
		timer   *time.Timer
		retry   <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case w := <-l.t.Words():
			if frame, ok := l.t.Feed(w); ok {
				if err := l.deliver(ctx, frame); err != nil {
					return err
				}
			}
		case <-l.out.Ready():
			pending = true
		case <-retry:
			retry = nil
		case <-ctx.Done():
			return ctx.Err()
		}
		if !pending || retry != nil {
			continue
		}
		if wait := l.t.Quiet(time.Now()); wait > 0 {
			if timer == nil {
				timer = time.NewTimer(wait)
			} else {
				timer.Reset(wait)
			}
			retry = timer.C
			continue
		}
		pending = false
		if err := l.flush(ctx); err != nil {
			return err
		}
	}
}

func (l *Link) deliver(ctx context.Context, frame []byte) error {
	m, err := Unmarshal(frame, l.inbound)
	if err != nil {
		l.rejected.Add(1)
		l.logf("rejected frame % x: %v", frame, err)
		return nil
	}
	l.received.Add(1)
	return l.in.Send(ctx, m)
}

func (l *Link) flush(ctx context.Context) error {
	for {
		m, ok := l.out.TryRecv()
		if !ok {
			return nil
		}
		f := Marshal(m)
		if err := l.t.SendData(ctx, f[:]); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			l.logf("send %v: %v", m, err)
			continue
		}
		l.sent.Add(1)
	}
}
