// Package pcd8544 controls a PCD8544 (Nokia 5110) LCD over five GPIO lines.
//
// The PCD8544 is an 84×48 monochrome LCD controller. This driver clocks the
// serial interface by hand, so it works on any board that can drive five
// outputs, without an SPI peripheral.
//
// # Display Characteristics
//
// - 84×48 pixels, 1 bit per pixel
// - 504 bytes of display RAM: 6 banks of 84 columns, one byte per 8 vertical pixels
// - Adjustable operating voltage (contrast, 0-127) and bias system (0-7)
// - Serial clock up to 4MHz
//
// # Hardware Connection
//
// Connect the display to five GPIO outputs:
//
//	Display Pin → System Pin
//	GND         → GND
//	VCC         → 3.3V
//	RST         → GPIO (PinSet.RST)
//	CE/SCE      → GPIO (PinSet.SCE)
//	DC          → GPIO (PinSet.DC)
//	DIN         → GPIO (PinSet.DIN)
//	CLK         → GPIO (PinSet.SCLK)
//
// # Basic Usage
//
//	package main
//
//	import (
//		"periph.io/x/conn/v3/gpio/gpioreg"
//		"periph.io/x/host/v3"
//		"github.com/flavioheleno/pcd8544"
//	)
//
//	func main() {
//		host.Init()
//
//		dev, _ := pcd8544.New(pcd8544.PinSet{
//			RST:  gpioreg.ByName("GPIO24"),
//			SCE:  gpioreg.ByName("GPIO8"),
//			DC:   gpioreg.ByName("GPIO23"),
//			SCLK: gpioreg.ByName("GPIO11"),
//			DIN:  gpioreg.ByName("GPIO10"),
//		}, nil)
//		defer dev.Close()
//
//		s, _ := dev.Open()
//		defer s.Release()
//
//		s.Write([]byte("Hello"), 0)
//	}
//
// On Linux the pins can also come from the GPIO character device, see the
// cdev package.
//
// # Sessions
//
// All bus traffic happens inside a Session. Only one session can be open at
// a time; a second Open fails with ErrBusy instead of waiting. The first Open
// resets and configures the controller, then sends the current RAM content.
//
// Session.Read and Session.Write address the 504 byte RAM mirror. Offsets at
// or past the end of RAM transfer 0 bytes; longer buffers are truncated.
//
// # Writing
//
// A Session has three write paths:
//
//	Write     each byte is drawn as a 5 column glyph (see the glyph package)
//	WriteRaw  bytes are sent as raw RAM content at the write offset
//	Command   bytes are sent as controller instructions
//
// Write and WriteRaw copy into the RAM mirror and clamp the same way.
// Command leaves RAM alone; because the instructions can change any
// controller state, the next Open initializes the controller again.
//
// Write skips and logs bytes without a glyph; ESC (0x1B) is reserved for
// escape sequences and is consumed without output.
//
// # Attributes
//
// Dev implements Attributes, a text key/value store:
//
//	dev.Get("bias")      // "4"
//	dev.Set("mode", "1") // tag the device as ModeGraph
//
// bias is read-only. mode is a tag shared by callers and does not change
// what the write paths do. Invalid mode values are rejected and leave the
// mode unchanged.
//
// # Timing
//
// Each bit holds SCLK high then low for half a period of Opts.Clock. The hold
// is a busy-wait on the monotonic clock (BusyWait); transfers block the
// calling goroutine until the last bit is out. Tests can inject a Delay.
//
// # Datasheet
//
// https://www.sparkfun.com/datasheets/LCD/Monochrome/Nokia5110.pdf
//
// # Compatibility with periph.io
//
// Dev and Session implement the display.Drawer interface from periph.io:
// https://pkg.go.dev/periph.io/x/conn/v3/display
package pcd8544
