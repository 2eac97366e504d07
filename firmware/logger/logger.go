// Package logger is the asynchronous log service. Tasks hand lines to a
// bounded mailbox and never block on the sink.
package logger

import (
	"context"
	"fmt"
	"sync/atomic"

	"keyball/hal"
	"keyball/kernel"
)

// MaxLineBytes truncates long lines.
const MaxLineBytes = 128

// Logf formats one log line.
type Logf func(format string, args ...any)

// Discard drops every line.
func Discard(string, ...any) {}

type Service struct {
	log     hal.Logger
	mb      *kernel.Mailbox[string]
	dropped atomic.Uint32
}

// New returns a service writing to log with room for depth queued lines.
func New(log hal.Logger, depth int) *Service {
	return &Service{log: log, mb: kernel.NewMailbox[string](depth)}
}

// Log queues a line. The call is best-effort: it drops on queue full.
func (s *Service) Log(line string) bool {
	if len(line) > MaxLineBytes {
		line = line[:MaxLineBytes]
	}
	if !s.mb.TrySend(line) {
		s.dropped.Add(1)
		return false
	}
	return true
}

// For returns a Logf that prefixes lines with component.
func (s *Service) For(component string) Logf {
	return func(format string, args ...any) {
		s.Log(component + ": " + fmt.Sprintf(format, args...))
	}
}

// Dropped returns the number of lines lost to a full queue.
func (s *Service) Dropped() uint32 { return s.dropped.Load() }

// Run writes queued lines to the sink until ctx is done, then flushes what is
// left.
func (s *Service) Run(ctx context.Context) error {
	for {
		line, err := s.mb.Recv(ctx)
		if err != nil {
			s.flush()
			return err
		}
		s.write(line)
	}
}

func (s *Service) flush() {
	for {
		line, ok := s.mb.TryRecv()
		if !ok {
			return
		}
		s.write(line)
	}
}

func (s *Service) write(line string) {
	if s.log == nil {
		return
	}
	s.log.WriteLineString(line)
}
