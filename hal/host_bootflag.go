//go:build !tinygo

package hal

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
)

// hostBootFlag keeps the boot flag in a file, or in memory without a path.
type hostBootFlag struct {
	path string
	log  Logger

	mu      sync.Mutex
	v       uint32
	entered bool
}

func (f *hostBootFlag) Read() (uint32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.path == "" {
		return f.v, nil
	}
	b, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("bootflag: %w", err)
	}
	if len(b) < 4 {
		return 0, nil
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (f *hostBootFlag) Write(v uint32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.v = v
	if f.path == "" {
		return nil
	}
	if err := os.WriteFile(f.path, binary.LittleEndian.AppendUint32(nil, v), 0o644); err != nil {
		return fmt.Errorf("bootflag: %w", err)
	}
	return nil
}

// EnterBootloader only records the request; a host process has nothing to
// reset into.
func (f *hostBootFlag) EnterBootloader() {
	f.mu.Lock()
	f.entered = true
	f.mu.Unlock()
	f.log.WriteLineString("bootloader requested")
}

func (f *hostBootFlag) requested() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.entered
}
