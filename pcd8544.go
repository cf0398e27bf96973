// Package pcd8544 controls a PCD8544 (Nokia 5110) LCD over five bit-banged GPIO lines.
//
// The PCD8544 is an 84x48 monochrome controller. Display RAM is 504 bytes,
// one byte per 8 vertically stacked pixels, organized in 6 banks of 84 columns.
//
// See the examples for how to use this package.
package pcd8544

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"periph.io/x/conn/v3/display"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ssd1306/image1bit"
)

const (
	// Width of the display in pixels.
	Width = 84
	// Height of the display in pixels.
	Height = 48
	// BufferSize is the size of the display RAM in bytes.
	BufferSize = Width * Height / 8

	// MaxClock is the fastest serial clock the controller accepts.
	MaxClock = 4 * physic.MegaHertz
)

// Instruction set. Instructions marked (H) need the extended instruction set.
const (
	cmdFunctionSet    = 0x20
	funcExtended      = 0x01
	funcPowerDown     = 0x04
	cmdDisplayControl = 0x08
	dispNormal        = 0x04
	cmdSetY           = 0x40
	cmdSetX           = 0x80
	cmdTempCoeff      = 0x04 // (H)
	cmdBias           = 0x10 // (H)
	cmdVop            = 0x80 // (H)
)

var (
	// ErrBusy is returned when the device is owned by an open session.
	ErrBusy = errors.New("pcd8544: device busy")
	// ErrHardwareInitFailed is returned when pins cannot be acquired or the
	// initialization sequence cannot be sent.
	ErrHardwareInitFailed = errors.New("pcd8544: hardware initialization failed")
	// ErrInvalidArgument is returned for empty writes and malformed attribute values.
	ErrInvalidArgument = errors.New("pcd8544: invalid argument")
	// ErrClosed is returned when using a released session or a closed device.
	ErrClosed = errors.New("pcd8544: closed")
	// ErrReadOnly is returned when setting a read-only attribute.
	ErrReadOnly = errors.New("pcd8544: attribute is read-only")
	// ErrUnknownAttribute is returned for attribute keys the device does not have.
	ErrUnknownAttribute = errors.New("pcd8544: unknown attribute")
)

// Opts is the configuration for the PCD8544 display.
type Opts struct {
	// Serial clock frequency (default: 100kHz, must be ≤4MHz). Each bit holds
	// the clock high then low for half a period.
	Clock physic.Frequency

	// Zero Contrast and Bias select the DefaultOpts values, so a bias system
	// of 0 cannot be configured.
	Contrast  byte // Operating voltage Vop (1-127)
	Bias      byte // Bias system (1-7)
	TempCoeff byte // Temperature coefficient (0-3)

	// Blank columns sent after each glyph in text mode (0-84).
	GlyphGap int

	// How long RST is held low during initialization (default: 100µs).
	ResetPulse time.Duration

	// Busy-wait used for bus timing (default: BusyWait).
	Delay Delay

	// Logger receives driver events (default: disabled).
	Logger *zerolog.Logger
}

// DefaultOpts is used by New when opts is nil.
var DefaultOpts = Opts{
	Clock:      100 * physic.KiloHertz,
	Contrast:   0x30,
	Bias:       4,
	TempCoeff:  0,
	ResetPulse: 100 * time.Microsecond,
}

func (o *Opts) validate() error {
	if o.Clock < 0 || (o.Clock != 0 && o.Clock < physic.Hertz) || o.Clock > MaxClock {
		return fmt.Errorf("pcd8544: clock must be between 1Hz and %s", MaxClock)
	}
	if o.Contrast > 0x7F {
		return errors.New("pcd8544: contrast must be between 0 and 127")
	}
	if o.Bias > 7 {
		return errors.New("pcd8544: bias must be between 0 and 7")
	}
	if o.TempCoeff > 3 {
		return errors.New("pcd8544: temperature coefficient must be between 0 and 3")
	}
	if o.GlyphGap < 0 || o.GlyphGap > Width {
		return fmt.Errorf("pcd8544: glyph gap must be between 0 and %d", Width)
	}
	if o.ResetPulse < 0 {
		return errors.New("pcd8544: reset pulse must not be negative")
	}
	return nil
}

// Dev is the device handle for the PCD8544 display.
//
// A Dev is shared process-wide state. Bus access goes through a Session,
// of which at most one is open at a time.
type Dev struct {
	// Communication
	pins   PinSet
	tx     transmitter
	logger zerolog.Logger

	// Initialization parameters
	contrast   byte
	tempCoeff  byte
	resetPulse time.Duration

	// Display RAM mirror and its image view
	buffer []byte
	img    *image1bit.VerticalLSB
	r      renderer

	// mu is held by the open session.
	mu          sync.Mutex
	initialized bool
	offset      int64
	closed      bool

	// Attributes
	attrMu sync.Mutex
	bias   byte
	mode   Mode
}

var _ display.Drawer = &Dev{}

// New takes ownership of pins and returns a device handle.
//
// Every pin is driven to its idle level. The display itself is initialized
// lazily, by the first Open. opts can be nil to use DefaultOpts; zero fields
// of a non-nil opts take their DefaultOpts value.
//
// If New fails, every non-nil pin has been released, last first.
func New(pins PinSet, opts *Opts) (_ *Dev, err error) {
	defer func() {
		if err != nil {
			err = errors.Join(err, pins.release())
		}
	}()

	if opts == nil {
		opts = &DefaultOpts
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	clock := opts.Clock
	if clock == 0 {
		clock = DefaultOpts.Clock
	}
	resetPulse := opts.ResetPulse
	if resetPulse == 0 {
		resetPulse = DefaultOpts.ResetPulse
	}
	contrast := opts.Contrast
	if contrast == 0 {
		contrast = DefaultOpts.Contrast
	}
	bias := opts.Bias
	if bias == 0 {
		bias = DefaultOpts.Bias
	}
	delay := opts.Delay
	if delay == nil {
		if err := probeClock(time.Now); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrHardwareInitFailed, err)
		}
		delay = BusyWait{}
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	if err := pins.configure(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHardwareInitFailed, err)
	}

	d := &Dev{
		pins:       pins,
		logger:     logger,
		contrast:   contrast,
		tempCoeff:  opts.TempCoeff,
		resetPulse: resetPulse,
		buffer:     make([]byte, BufferSize),
		bias:       bias,
		mode:       ModeText,
	}
	d.tx = transmitter{pins: &d.pins, delay: delay, halfBit: clock.Period() / 2}
	d.img = &image1bit.VerticalLSB{
		Pix:    d.buffer,
		Stride: Width,
		Rect:   d.Bounds(),
	}
	d.r = renderer{d: d, gap: make([]byte, opts.GlyphGap)}

	d.logger.Info().
		Stringer("clock", clock).
		Dur("half_bit", d.tx.halfBit).
		Msg("pcd8544 pins configured")
	return d, nil
}

// initCommands returns the command transfer of the initialization sequence.
func (d *Dev) initCommands() []byte {
	d.attrMu.Lock()
	bias := d.bias
	d.attrMu.Unlock()
	return []byte{
		cmdFunctionSet | funcExtended,
		cmdVop | d.contrast,
		cmdTempCoeff | d.tempCoeff,
		cmdBias | bias,
		cmdFunctionSet,
		cmdDisplayControl | dispNormal,
		cmdSetY,
		cmdSetX,
	}
}

// init resets the controller, configures it and sends the whole buffer.
// Running it again reasserts the same configuration.
func (d *Dev) init() error {
	if err := d.pins.RST.Out(gpio.Low); err != nil {
		return fmt.Errorf("pcd8544: failed to pull RST low: %w", err)
	}
	d.tx.delay.Wait(d.resetPulse)
	if err := d.pins.RST.Out(gpio.High); err != nil {
		return fmt.Errorf("pcd8544: failed to pull RST high: %w", err)
	}

	if err := d.sendCommand(d.initCommands()); err != nil {
		return err
	}
	if err := d.sendData(d.buffer); err != nil {
		return err
	}
	d.r.reset()
	return nil
}

// sendCommand sends a slice of command bytes as one transfer.
func (d *Dev) sendCommand(cmds []byte) error {
	if len(cmds) == 0 {
		return nil
	}
	return d.tx.Transmit(modeCommand, cmds)
}

// sendData sends a slice of display RAM bytes as one transfer.
func (d *Dev) sendData(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return d.tx.Transmit(modeData, data)
}

// address returns the commands that move the RAM address to offset.
func address(offset int) []byte {
	return []byte{cmdSetY | byte(offset/Width), cmdSetX | byte(offset%Width)}
}

// ColorModel implements display.Drawer.
//
// It is a one bit color model, as implemented by image1bit.Bit.
func (d *Dev) ColorModel() color.Model {
	return image1bit.BitModel
}

// Bounds implements display.Drawer.
func (d *Dev) Bounds() image.Rectangle {
	return image.Rect(0, 0, Width, Height)
}

// Draw implements display.Drawer. It opens a session for the duration of
// the update and fails with ErrBusy if one is already open.
func (d *Dev) Draw(dst image.Rectangle, src image.Image, sp image.Point) error {
	s, err := d.Open()
	if err != nil {
		return err
	}
	defer s.Release()
	return s.Draw(dst, src, sp)
}

// Halt powers down the display. The next Open initializes it again.
func (d *Dev) Halt() error {
	if !d.mu.TryLock() {
		return ErrBusy
	}
	defer d.mu.Unlock()
	return d.halt()
}

func (d *Dev) halt() error {
	if d.closed || !d.initialized {
		return nil
	}
	d.initialized = false
	return d.sendCommand([]byte{cmdFunctionSet | funcPowerDown})
}

// Close powers down the display and releases the pins, last configured
// first. It fails with ErrBusy while a session is open.
func (d *Dev) Close() error {
	if !d.mu.TryLock() {
		return ErrBusy
	}
	defer d.mu.Unlock()
	if d.closed {
		return nil
	}
	err := d.halt()
	d.closed = true
	d.logger.Info().Msg("pcd8544 pins released")
	return errors.Join(err, d.pins.release())
}

// String returns a string representation of the device.
func (d *Dev) String() string {
	return fmt.Sprintf("pcd8544.Dev{%dx%d}", Width, Height)
}
