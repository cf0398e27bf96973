package pcd8544

import (
	"testing"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpiotest"
)

// event is one Out call on a bus pin.
type event struct {
	Pin   string
	Level gpio.Level
}

// bus records every level change of a PinSet, in order.
type bus struct {
	events []event
	halted []string
}

// recPin is a gpiotest.Pin that records its output levels on a bus.
type recPin struct {
	*gpiotest.Pin
	bus *bus
	err error
}

func (p *recPin) Out(l gpio.Level) error {
	if p.err != nil {
		return p.err
	}
	p.bus.events = append(p.bus.events, event{p.N, l})
	return p.Pin.Out(l)
}

func (p *recPin) Halt() error {
	p.bus.halted = append(p.bus.halted, p.N)
	return nil
}

// newBus returns a recording bus and the PinSet wired to it.
func newBus() (*bus, PinSet, map[string]*recPin) {
	b := &bus{}
	pins := map[string]*recPin{}
	for i, name := range []string{"RST", "SCE", "DC", "SCLK", "DIN"} {
		pins[name] = &recPin{Pin: &gpiotest.Pin{N: name, Num: i}, bus: b}
	}
	return b, PinSet{
		RST:  pins["RST"],
		SCE:  pins["SCE"],
		DC:   pins["DC"],
		SCLK: pins["SCLK"],
		DIN:  pins["DIN"],
	}, pins
}

// reset drops the recorded events.
func (b *bus) reset() {
	b.events = nil
}

// transfer is one SCE framed transfer as seen by the display.
type transfer struct {
	Mode transferMode
	Data []byte
}

// decoded is what the display would have received.
type decoded struct {
	transfers []transfer
	pulses    int // SCLK rising edges while SCE is asserted
	cycles    int // SCE assert/deassert pairs
}

// decode replays the recorded events the way the display samples them: a
// transfer starts on the falling edge of SCE, with the mode given by DC, and
// DIN is shifted in MSB first on each rising edge of SCLK.
func (b *bus) decode() decoded {
	var (
		out   decoded
		cur   *transfer
		state = map[string]gpio.Level{}
		acc   byte
		nbits int
	)
	for _, ev := range b.events {
		prev := state[ev.Pin]
		state[ev.Pin] = ev.Level
		switch ev.Pin {
		case "SCE":
			if prev == gpio.High && ev.Level == gpio.Low {
				cur = &transfer{Mode: transferMode(state["DC"]), Data: []byte{}}
				acc, nbits = 0, 0
			}
			if prev == gpio.Low && ev.Level == gpio.High && cur != nil {
				out.transfers = append(out.transfers, *cur)
				out.cycles++
				cur = nil
			}
		case "SCLK":
			if cur == nil || prev != gpio.Low || ev.Level != gpio.High {
				continue
			}
			out.pulses++
			acc <<= 1
			if state["DIN"] {
				acc |= 1
			}
			nbits++
			if nbits == 8 {
				cur.Data = append(cur.Data, acc)
				acc, nbits = 0, 0
			}
		}
	}
	return out
}

// fakeDelay records the requested holds without waiting.
type fakeDelay struct {
	waits []time.Duration
}

func (f *fakeDelay) Wait(d time.Duration) {
	f.waits = append(f.waits, d)
}

// newTestDev returns a device on a recording bus. opts.Delay is replaced by
// a fakeDelay.
func newTestDev(t *testing.T, opts *Opts) (*Dev, *bus, *fakeDelay) {
	t.Helper()
	b, pins, _ := newBus()
	o := DefaultOpts
	if opts != nil {
		o = *opts
	}
	fd := &fakeDelay{}
	o.Delay = fd
	d, err := New(pins, &o)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return d, b, fd
}

// openTestDev returns an initialized device with an open session and an
// empty event log.
func openTestDev(t *testing.T, opts *Opts) (*Dev, *Session, *bus) {
	t.Helper()
	d, b, _ := newTestDev(t, opts)
	s, err := d.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(s.Release)
	b.reset()
	return d, s, b
}
