// Package kernel holds the task primitives shared by every firmware task:
// bounded mailboxes between tasks and the process-wide panic path.
package kernel

import (
	"context"
	"sync/atomic"
)

type slot[T any] struct {
	seq atomic.Uint32
	v   T
}

// Mailbox is a fixed-size multi-producer, multi-consumer queue.
// Slots are allocated once by NewMailbox; TrySend and TryRecv never allocate.
type Mailbox[T any] struct {
	_     [0]func() // prevent accidental copying.
	head  atomic.Uint32
	tail  atomic.Uint32
	mask  uint32
	slots []slot[T]

	ready chan struct{}
	space chan struct{}
}

// NewMailbox returns a mailbox holding at least capacity messages. The
// capacity is rounded up to a power of two, and to no fewer than two slots:
// with a single slot a full sequence number is indistinguishable from an
// empty one.
func NewMailbox[T any](capacity int) *Mailbox[T] {
	n := 2
	for n < capacity {
		n <<= 1
	}
	mb := &Mailbox[T]{
		mask:  uint32(n - 1),
		slots: make([]slot[T], n),
		ready: make(chan struct{}, 1),
		space: make(chan struct{}, 1),
	}
	for i := range mb.slots {
		mb.slots[i].seq.Store(uint32(i))
	}
	return mb
}

// Cap returns the number of slots.
func (mb *Mailbox[T]) Cap() int { return len(mb.slots) }

// Len returns the number of queued messages.
func (mb *Mailbox[T]) Len() int { return int(mb.head.Load() - mb.tail.Load()) }

// TrySend attempts to enqueue v, returning false if the mailbox is full.
func (mb *Mailbox[T]) TrySend(v T) bool {
	for {
		head := mb.head.Load()
		s := &mb.slots[head&mb.mask]
		switch diff := int32(s.seq.Load() - head); {
		case diff == 0:
			if !mb.head.CompareAndSwap(head, head+1) {
				continue
			}
			s.v = v
			s.seq.Store(head + 1)
			poke(mb.ready)
			return true
		case diff < 0:
			return false
		}
	}
}

// TryRecv attempts to dequeue one message, returning false if empty.
func (mb *Mailbox[T]) TryRecv() (T, bool) {
	var zero T
	for {
		tail := mb.tail.Load()
		s := &mb.slots[tail&mb.mask]
		switch diff := int32(s.seq.Load() - (tail + 1)); {
		case diff == 0:
			if !mb.tail.CompareAndSwap(tail, tail+1) {
				continue
			}
			v := s.v
			s.v = zero
			s.seq.Store(tail + mb.mask + 1)
			poke(mb.space)
			if mb.Len() > 0 {
				poke(mb.ready)
			}
			return v, true
		case diff < 0:
			return zero, false
		}
	}
}

// Send enqueues v, blocking until there is room or ctx is done.
func (mb *Mailbox[T]) Send(ctx context.Context, v T) error {
	for !mb.TrySend(v) {
		select {
		case <-mb.space:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Recv blocks until one message is available or ctx is done.
func (mb *Mailbox[T]) Recv(ctx context.Context) (T, error) {
	for {
		if v, ok := mb.TryRecv(); ok {
			return v, nil
		}
		select {
		case <-mb.ready:
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		}
	}
}

// Ready returns a channel that is signalled after a send. It lets a task
// select over several mailboxes; a signal does not guarantee a message.
func (mb *Mailbox[T]) Ready() <-chan struct{} { return mb.ready }

func poke(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
