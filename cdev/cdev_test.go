package cdev

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"periph.io/x/conn/v3/gpio"
)

type fakeLine struct {
	offset int
	values []int
	closed *[]int
	err    error
}

func (f *fakeLine) SetValue(v int) error {
	if f.err != nil {
		return f.err
	}
	f.values = append(f.values, v)
	return nil
}

func (f *fakeLine) Close() error {
	*f.closed = append(*f.closed, f.offset)
	return nil
}

// stubRequest replaces requestLine for the duration of the test. Requests
// for offsets in fail return an error.
func stubRequest(t *testing.T, fail map[int]bool) (initial map[int]int, closed *[]int) {
	t.Helper()
	initial = map[int]int{}
	closed = &[]int{}
	orig := requestLine
	requestLine = func(chip string, offset, value int) (line, error) {
		if chip != "gpiochip0" {
			t.Errorf("chip = %q, want gpiochip0", chip)
		}
		if fail[offset] {
			return nil, errors.New("device or resource busy")
		}
		initial[offset] = value
		return &fakeLine{offset: offset, closed: closed}, nil
	}
	t.Cleanup(func() { requestLine = orig })
	return initial, closed
}

var testOffsets = Offsets{RST: 24, SCE: 8, DC: 23, SCLK: 11, DIN: 10}

func TestOpenInitialLevels(t *testing.T) {
	initial, closed := stubRequest(t, nil)

	pins, err := Open("gpiochip0", testOffsets)
	if err != nil {
		t.Fatal(err)
	}

	want := map[int]int{24: 1, 8: 1, 23: 0, 11: 0, 10: 0}
	if diff := cmp.Diff(want, initial); diff != "" {
		t.Errorf("initial levels mismatch (-want +got):\n%s", diff)
	}
	if len(*closed) != 0 {
		t.Errorf("lines closed on success: %v", *closed)
	}
	if got := pins.DC.Number(); got != 23 {
		t.Errorf("DC.Number() = %d, want 23", got)
	}
	if got := pins.SCLK.String(); got != "gpiochip0:11" {
		t.Errorf("SCLK.String() = %q, want gpiochip0:11", got)
	}
}

func TestOpenUnwindsInReverseOrder(t *testing.T) {
	tests := []struct {
		name       string
		failOffset int
		wantClosed []int
	}{
		{"first line", 24, []int{}},
		{"third line", 23, []int{8, 24}},
		{"last line", 10, []int{11, 23, 8, 24}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, closed := stubRequest(t, map[int]bool{tt.failOffset: true})

			pins, err := Open("gpiochip0", testOffsets)
			if err == nil {
				t.Fatal("Open should fail")
			}
			if pins.RST != nil {
				t.Error("Open should return an empty PinSet on failure")
			}
			if diff := cmp.Diff(tt.wantClosed, *closed); diff != "" {
				t.Errorf("closed lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPinOut(t *testing.T) {
	f := &fakeLine{offset: 3, closed: &[]int{}}
	p := &Pin{chip: "gpiochip1", offset: 3, l: f}

	for _, l := range []gpio.Level{gpio.High, gpio.Low, gpio.High} {
		if err := p.Out(l); err != nil {
			t.Fatal(err)
		}
	}
	if diff := cmp.Diff([]int{1, 0, 1}, f.values); diff != "" {
		t.Errorf("values mismatch (-want +got):\n%s", diff)
	}

	f.err = errors.New("bad file descriptor")
	if err := p.Out(gpio.Low); !errors.Is(err, f.err) {
		t.Errorf("Out() error = %v, want wrapped %v", err, f.err)
	}

	if err := p.PWM(gpio.DutyHalf, 0); err == nil {
		t.Error("PWM should not be supported")
	}
	if err := p.Close(); err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]int{3}, *f.closed); diff != "" {
		t.Errorf("closed mismatch (-want +got):\n%s", diff)
	}
}
