package pcd8544

import (
	"errors"
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
)

// Delay holds the bus for a duration.
//
// Implementations must block the calling goroutine for at least d.
type Delay interface {
	Wait(d time.Duration)
}

// BusyWait is the production Delay. It spins on the monotonic clock and
// never sleeps.
type BusyWait struct{}

// Wait spins until d has elapsed.
func (BusyWait) Wait(d time.Duration) {
	start := time.Now()
	for time.Since(start) < d {
	}
}

// probeClock verifies that the monotonic clock advances. A stalled clock
// makes every busy-wait spin forever.
func probeClock(now func() time.Time) error {
	start := now()
	for i := 0; i < 1<<24; i++ {
		if now().Sub(start) > 0 {
			return nil
		}
	}
	return errors.New("pcd8544: monotonic clock does not advance")
}

// transferMode selects the level of the D/C line for a transfer.
type transferMode bool

const (
	modeCommand transferMode = false
	modeData    transferMode = true
)

func (m transferMode) String() string {
	if m == modeData {
		return "data"
	}
	return "command"
}

// transmitter serializes bytes on the five-wire bus.
type transmitter struct {
	pins    *PinSet
	delay   Delay
	halfBit time.Duration
}

// Transmit sends buf as one framed transfer. It blocks for the full duration
// of the transfer: 16 half-bit holds per byte.
//
// The display samples DIN on the rising edge of SCLK.
func (t *transmitter) Transmit(mode transferMode, buf []byte) error {
	if err := t.pins.DC.Out(gpio.Level(mode)); err != nil {
		return fmt.Errorf("pcd8544: failed to set D/C for %s: %w", mode, err)
	}
	if err := t.pins.SCE.Out(gpio.Low); err != nil {
		return fmt.Errorf("pcd8544: failed to assert SCE: %w", err)
	}
	for _, b := range buf {
		if err := t.writeByte(b); err != nil {
			return errors.Join(err, t.idle())
		}
	}
	return t.idle()
}

// writeByte clocks out b, MSB first.
func (t *transmitter) writeByte(b byte) error {
	for mask := byte(0x80); mask != 0; mask >>= 1 {
		if err := t.pins.DIN.Out(b&mask != 0); err != nil {
			return fmt.Errorf("pcd8544: failed to drive DIN: %w", err)
		}
		if err := t.pins.SCLK.Out(gpio.High); err != nil {
			return fmt.Errorf("pcd8544: failed to raise SCLK: %w", err)
		}
		t.delay.Wait(t.halfBit)
		if err := t.pins.SCLK.Out(gpio.Low); err != nil {
			return fmt.Errorf("pcd8544: failed to lower SCLK: %w", err)
		}
		t.delay.Wait(t.halfBit)
	}
	return nil
}

// idle deasserts SCE and parks SCLK and DIN low.
func (t *transmitter) idle() error {
	if err := t.pins.SCE.Out(gpio.High); err != nil {
		return fmt.Errorf("pcd8544: failed to deassert SCE: %w", err)
	}
	if err := t.pins.SCLK.Out(gpio.Low); err != nil {
		return fmt.Errorf("pcd8544: failed to idle SCLK: %w", err)
	}
	if err := t.pins.DIN.Out(gpio.Low); err != nil {
		return fmt.Errorf("pcd8544: failed to idle DIN: %w", err)
	}
	return nil
}
