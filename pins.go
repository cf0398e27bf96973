package pcd8544

import (
	"errors"
	"fmt"
	"io"

	"periph.io/x/conn/v3/gpio"
)

// PinSet is the five output lines of the PCD8544 serial bus.
//
// The driver owns the pins from New until Close. Pins that also implement
// io.Closer (such as cdev.Pin) are closed by Close.
type PinSet struct {
	RST  gpio.PinOut // Reset, active low
	SCE  gpio.PinOut // Chip enable, active low
	DC   gpio.PinOut // Data/Command select, low = command
	SCLK gpio.PinOut // Serial clock
	DIN  gpio.PinOut // Serial data in (display side)
}

// line is a pin together with its role and idle level.
type line struct {
	name string
	pin  gpio.PinOut
	idle gpio.Level
}

// lines returns the pins in configuration order.
func (p *PinSet) lines() []line {
	return []line{
		{"RST", p.RST, gpio.High},
		{"SCE", p.SCE, gpio.High},
		{"DC", p.DC, gpio.Low},
		{"SCLK", p.SCLK, gpio.Low},
		{"DIN", p.DIN, gpio.Low},
	}
}

// configure drives every pin to its idle level. It stops at the first
// missing or failing pin and leaves releasing to the caller.
func (p *PinSet) configure() error {
	for _, l := range p.lines() {
		if l.pin == nil {
			return fmt.Errorf("pcd8544: %s pin is required", l.name)
		}
		if err := l.pin.Out(l.idle); err != nil {
			return fmt.Errorf("pcd8544: failed to configure %s (%s): %w", l.name, l.pin, err)
		}
	}
	return nil
}

// release gives the non-nil pins back, last configured first.
func (p *PinSet) release() error {
	return releaseLines(p.lines())
}

func releaseLines(ls []line) error {
	var errs []error
	for i := len(ls) - 1; i >= 0; i-- {
		l := ls[i]
		if l.pin == nil {
			continue
		}
		if err := l.pin.Halt(); err != nil {
			errs = append(errs, fmt.Errorf("pcd8544: failed to halt %s: %w", l.name, err))
		}
		if c, ok := l.pin.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("pcd8544: failed to close %s: %w", l.name, err))
			}
		}
	}
	return errors.Join(errs...)
}
