package pcd8544

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync/atomic"

	"periph.io/x/conn/v3/display"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

// Session is an open handle to the device. It holds exclusive access to the
// bus until Release.
//
// The RAM cursor and the initialized state belong to the device and survive
// Release.
type Session struct {
	d        *Dev
	released atomic.Bool
}

var _ display.Drawer = &Session{}

// Open acquires exclusive access to the device. It never blocks: if another
// session is open it fails with ErrBusy.
//
// The first Open sends the initialization sequence. If that fails, access is
// released and the error wraps ErrHardwareInitFailed.
func (d *Dev) Open() (_ *Session, err error) {
	if !d.mu.TryLock() {
		return nil, ErrBusy
	}
	defer func() {
		if err != nil {
			d.mu.Unlock()
		}
	}()

	if d.closed {
		return nil, ErrClosed
	}
	if !d.initialized {
		if err := d.init(); err != nil {
			d.logger.Error().Err(err).Msg("display initialization failed")
			return nil, fmt.Errorf("%w: %w", ErrHardwareInitFailed, err)
		}
		d.initialized = true
		d.logger.Info().Uint8("bias", d.Bias()).Msg("display initialized")
	}
	d.offset = 0
	d.logger.Debug().Msg("session opened")
	return &Session{d: d}, nil
}

// Release gives up exclusive access. Calling it more than once is a no-op.
func (s *Session) Release() {
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	s.d.logger.Debug().Int64("offset", s.d.offset).Msg("session released")
	s.d.mu.Unlock()
}

// Offset returns the RAM cursor: the offset right after the last read or
// written byte.
func (s *Session) Offset() int64 {
	return s.d.offset
}

// clamp returns how many of n bytes fit in display RAM starting at off.
func clamp(n int, off int64) int {
	if off >= BufferSize {
		return 0
	}
	if rem := BufferSize - int(off); n > rem {
		return rem
	}
	return n
}

// Read copies display RAM starting at off into p. It returns the number of
// bytes copied, min(len(p), BufferSize-off). Reading at or past the end of
// RAM returns 0 and no error.
func (s *Session) Read(p []byte, off int64) (int, error) {
	if s.released.Load() {
		return 0, ErrClosed
	}
	if off < 0 {
		return 0, fmt.Errorf("%w: negative offset %d", ErrInvalidArgument, off)
	}
	n := clamp(len(p), off)
	if n == 0 {
		return 0, nil
	}
	copy(p, s.d.buffer[off:off+int64(n)])
	s.d.offset = off + int64(n)
	return n, nil
}

// Write copies p into display RAM at off and renders the copied bytes as
// text, one glyph per byte, at the controller's current address.
//
// It returns the number of bytes copied, clamped like Read, in every mode.
// Writing at or past the end of RAM returns 0 and no error. An empty p is
// rejected with ErrInvalidArgument.
func (s *Session) Write(p []byte, off int64) (int, error) {
	span, err := s.copyIn(p, off)
	if err != nil || len(span) == 0 {
		return 0, err
	}
	return len(span), s.d.r.render(span)
}

// WriteRaw copies p into display RAM at off and sends the copied bytes
// unchanged, so the panel shows them at the matching bank and column.
// Clamping and errors are the same as Write.
func (s *Session) WriteRaw(p []byte, off int64) (int, error) {
	span, err := s.copyIn(p, off)
	if err != nil || len(span) == 0 {
		return 0, err
	}
	if err := s.d.sendCommand(address(int(off))); err != nil {
		return len(span), err
	}
	return len(span), s.d.sendData(span)
}

// copyIn validates a write and copies the part of p that fits at off into
// display RAM. It returns the copied span.
func (s *Session) copyIn(p []byte, off int64) ([]byte, error) {
	if s.released.Load() {
		return nil, ErrClosed
	}
	if len(p) == 0 {
		return nil, fmt.Errorf("%w: empty write", ErrInvalidArgument)
	}
	if off < 0 {
		return nil, fmt.Errorf("%w: negative offset %d", ErrInvalidArgument, off)
	}
	n := clamp(len(p), off)
	if n == 0 {
		return nil, nil
	}
	span := s.d.buffer[off : off+int64(n)]
	copy(span, p)
	s.d.offset = off + int64(n)
	return span, nil
}

// Command sends cmds to the controller as one command transfer. Display RAM
// and the cursor are not touched.
//
// The commands can leave the controller in any state, for example in the
// extended instruction set, so the device is marked uninitialized and the
// next Open sends the initialization sequence again.
func (s *Session) Command(cmds []byte) error {
	if s.released.Load() {
		return ErrClosed
	}
	if len(cmds) == 0 {
		return fmt.Errorf("%w: empty command", ErrInvalidArgument)
	}
	s.d.initialized = false
	s.d.logger.Debug().Hex("cmds", cmds).Msg("raw commands sent")
	return s.d.sendCommand(cmds)
}

// ColorModel implements display.Drawer.
func (s *Session) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer.
func (s *Session) Bounds() image.Rectangle {
	return s.d.Bounds()
}

// Draw implements display.Drawer. The image is drawn into display RAM,
// which is then sent in full.
func (s *Session) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	if s.released.Load() {
		return ErrClosed
	}

	dst = dst.Intersect(s.Bounds())
	if dst.Empty() {
		return nil
	}

	// Fast path: full frame already in RAM layout.
	if img, ok := src.(*image1bit.VerticalLSB); ok && dst == s.Bounds() && img.Rect == dst && sp == (image.Point{}) {
		copy(s.d.buffer, img.Pix)
	} else {
		draw.Draw(s.d.img, dst, src, sp, draw.Src)
	}

	if err := s.d.sendCommand(address(0)); err != nil {
		return err
	}
	return s.d.sendData(s.d.buffer)
}

// Halt implements conn.Resource by releasing the session.
func (s *Session) Halt() error {
	s.Release()
	return nil
}

// String returns a string representation of the session.
func (s *Session) String() string {
	return fmt.Sprintf("pcd8544.Session{%s}", s.d)
}
