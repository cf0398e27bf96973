// Package cdev provides PCD8544 bus pins backed by the Linux GPIO character
// device (/dev/gpiochipN), for boards without a periph.io host driver.
package cdev

import (
	"errors"
	"fmt"

	"github.com/flavioheleno/pcd8544"
	"github.com/warthog618/go-gpiocdev"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

// Consumer is the label the lines are requested with.
const Consumer = "pcd8544"

// line is the part of *gpiocdev.Line used by Pin.
type line interface {
	SetValue(value int) error
	Close() error
}

// requestLine requests offset on chip as an output driven to value.
var requestLine = func(chip string, offset, value int) (line, error) {
	l, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.AsOutput(value),
		gpiocdev.WithConsumer(Consumer))
	if err != nil {
		return nil, err
	}
	return l, nil
}

// Pin is an output line requested from a GPIO chip. It implements
// gpio.PinOut.
type Pin struct {
	chip   string
	offset int
	l      line
}

var _ gpio.PinOut = &Pin{}

// String returns the chip and line offset.
func (p *Pin) String() string {
	return p.Name()
}

// Name returns the chip and line offset, such as "gpiochip0:17".
func (p *Pin) Name() string {
	return fmt.Sprintf("%s:%d", p.chip, p.offset)
}

// Number returns the line offset.
func (p *Pin) Number() int {
	return p.offset
}

// Function implements pin.Pin.
func (p *Pin) Function() string {
	return "Out"
}

// Halt implements conn.Resource. Output lines have nothing to stop.
func (p *Pin) Halt() error {
	return nil
}

// Out drives the line.
func (p *Pin) Out(l gpio.Level) error {
	v := 0
	if l {
		v = 1
	}
	if err := p.l.SetValue(v); err != nil {
		return fmt.Errorf("cdev: %s: %w", p, err)
	}
	return nil
}

// PWM implements gpio.PinOut. It is not supported.
func (p *Pin) PWM(gpio.Duty, physic.Frequency) error {
	return errors.New("cdev: PWM is not supported")
}

// Close releases the line back to the kernel.
func (p *Pin) Close() error {
	return p.l.Close()
}

// Offsets are the line offsets of the bus pins on one chip.
type Offsets struct {
	RST, SCE, DC, SCLK, DIN int
}

// Open requests the five bus lines from chip (for example "gpiochip0"),
// each driven to its idle level. If a request fails, the lines acquired so
// far are closed, last acquired first.
func Open(chip string, o Offsets) (pcd8544.PinSet, error) {
	reqs := []struct {
		name   string
		offset int
		value  int
	}{
		{"RST", o.RST, 1},
		{"SCE", o.SCE, 1},
		{"DC", o.DC, 0},
		{"SCLK", o.SCLK, 0},
		{"DIN", o.DIN, 0},
	}

	pins := make([]*Pin, 0, len(reqs))
	for _, r := range reqs {
		l, err := requestLine(chip, r.offset, r.value)
		if err != nil {
			errs := []error{fmt.Errorf("cdev: failed to request %s (%s:%d): %w", r.name, chip, r.offset, err)}
			for i := len(pins) - 1; i >= 0; i-- {
				if err := pins[i].Close(); err != nil {
					errs = append(errs, err)
				}
			}
			return pcd8544.PinSet{}, errors.Join(errs...)
		}
		pins = append(pins, &Pin{chip: chip, offset: r.offset, l: l})
	}

	return pcd8544.PinSet{
		RST:  pins[0],
		SCE:  pins[1],
		DC:   pins[2],
		SCLK: pins[3],
		DIN:  pins[4],
	}, nil
}
