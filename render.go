package pcd8544

import (
	"github.com/flavioheleno/pcd8544/glyph"
)

// escape starts a reserved escape sequence in text mode.
const escape = 0x1B

// renderer turns text into glyph transfers.
type renderer struct {
	d *Dev

	// gap is sent as a separate data transfer after each glyph, when non-empty.
	gap []byte

	// escPending is set by an escape byte. Escape sequences are reserved: the
	// flag has no effect on rendering yet.
	escPending bool
	dropped    uint64
}

// render sends the glyph of every printable byte in span. Bytes without a
// glyph are logged and skipped; they never abort the span.
func (r *renderer) render(span []byte) error {
	for i, b := range span {
		g, err := glyph.Lookup(b)
		if err != nil {
			if b == escape && !r.escPending {
				r.escPending = true
				continue
			}
			r.dropped++
			r.d.logger.Debug().
				Int("index", i).
				Hex("byte", []byte{b}).
				Uint64("dropped", r.dropped).
				Msg("skipping byte without glyph")
			continue
		}
		if err := r.d.sendData(g[:]); err != nil {
			return err
		}
		if len(r.gap) != 0 {
			if err := r.d.sendData(r.gap); err != nil {
				return err
			}
		}
	}
	return nil
}

// reset clears the escape state.
func (r *renderer) reset() {
	r.escPending = false
}
