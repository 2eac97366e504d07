package kernel

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// PanicInfo contains details about a recovered panic.
type PanicInfo struct {
	Task  string
	Value any
	Stack []byte
}

var (
	panicActive atomic.Bool
	panicOnce   sync.Once

	panicHandler atomic.Value // func(PanicInfo)
)

// InPanicMode reports whether a task has panicked.
func InPanicMode() bool {
	return panicActive.Load()
}

// SetPanicHandler installs a process-wide panic handler.
//
// The handler is invoked at most once (on the first panic). It must not panic.
func SetPanicHandler(fn func(PanicInfo)) {
	panicHandler.Store(fn)
}

func triggerPanic(info PanicInfo) {
	panicOnce.Do(func() {
		panicActive.Store(true)
		if v := panicHandler.Load(); v != nil {
			if fn, ok := v.(func(PanicInfo)); ok && fn != nil {
				fn(info)
			}
		}
	})
}

// Run calls fn as the named task. A panic in fn is reported to the panic
// handler and returned as an error.
func Run(name string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			triggerPanic(PanicInfo{Task: name, Value: r, Stack: captureStack()})
			err = fmt.Errorf("task %s: panic: %v", name, r)
		}
	}()
	return fn()
}

// Go starts fn as the named task on its own goroutine.
func Go(name string, fn func()) {
	go func() {
		_ = Run(name, func() error {
			fn()
			return nil
		})
	}()
}
