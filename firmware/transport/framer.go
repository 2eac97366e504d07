package transport

// Framer reassembles fixed-size frames from received words.
//
// Bytes before the first start marker are discarded. A start marker in the
// middle of a frame restarts it. A frame completes on an end marker or when
// the buffer is full; short frames are zero padded.
type Framer struct {
	buf     []byte
	n       int
	inFrame bool

	discarded int
}

// NewFramer returns a framer for size-byte frames.
func NewFramer(size int) *Framer {
	return &Framer{buf: make([]byte, size)}
}

// Size returns the frame size.
func (f *Framer) Size() int { return len(f.buf) }

// Feed consumes one received word. When it completes a frame, the frame is
// returned; it stays valid until the next call.
func (f *Framer) Feed(w uint32) ([]byte, bool) {
	b, start, end := DecodeWord(w)
	if start {
		if f.inFrame {
			f.discarded += f.n
		}
		f.n = 0
		f.inFrame = true
	}
	if !f.inFrame {
		f.discarded++
		return nil, false
	}
	f.buf[f.n] = b
	f.n++
	if !end && f.n < len(f.buf) {
		return nil, false
	}
	clear(f.buf[f.n:])
	f.n = 0
	f.inFrame = false
	return f.buf, true
}

// Reset drops any partial frame.
func (f *Framer) Reset() {
	f.discarded += f.n
	f.n = 0
	f.inFrame = false
}

// Discarded returns the number of bytes dropped while resynchronizing.
func (f *Framer) Discarded() int { return f.discarded }
