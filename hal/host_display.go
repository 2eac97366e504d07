//go:build !tinygo

package hal

import (
	"image/color"
	"sync"
)

// MonoDisplay is a 1-bit framebuffer standing in for the SSD1306 OLED.
// Display publishes the drawn frame; Snapshot reads the published one.
type MonoDisplay struct {
	mu     sync.Mutex
	width  int16
	height int16
	draw   []bool
	shown  []bool
	frames uint64
}

func NewMonoDisplay(width, height int16) *MonoDisplay {
	n := int(width) * int(height)
	return &MonoDisplay{
		width:  width,
		height: height,
		draw:   make([]bool, n),
		shown:  make([]bool, n),
	}
}

func (d *MonoDisplay) Size() (x, y int16) { return d.width, d.height }

// SetPixel lights the pixel for any non-black color.
func (d *MonoDisplay) SetPixel(x, y int16, c color.RGBA) {
	if x < 0 || y < 0 || x >= d.width || y >= d.height {
		return
	}
	d.mu.Lock()
	d.draw[int(y)*int(d.width)+int(x)] = c.R != 0 || c.G != 0 || c.B != 0
	d.mu.Unlock()
}

func (d *MonoDisplay) Display() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	copy(d.shown, d.draw)
	d.frames++
	return nil
}

// Snapshot copies the shown frame into dst, row-major, and returns the
// number of frames shown so far.
func (d *MonoDisplay) Snapshot(dst []bool) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	copy(dst, d.shown)
	return d.frames
}
