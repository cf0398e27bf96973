// Package glyph provides the 5×8 column font used by the PCD8544 text renderer.
//
// Each printable ASCII character (0x20 through 0x7E) maps to 5 bytes, one per
// column, left to right. Within a byte the least significant bit is the top
// pixel, which matches the PCD8544 display RAM layout, so a glyph can be sent
// to the controller as-is.
//
// Memory layout example for 'A' (0x41):
//
//	Column:  0     1     2     3     4
//	Byte:    0x7E  0x11  0x11  0x11  0x7E
//
//	Row 0    .     #     #     #     .
//	Row 1    #     .     .     .     #
//	Row 2    #     .     .     .     #
//	Row 3    #     .     .     .     #
//	Row 4    #     #     #     #     #
//	Row 5    #     .     .     .     #
//	Row 6    #     .     .     .     #
//	Row 7    .     .     .     .     .
//
// Example usage:
//
//	g, err := glyph.Lookup('A')
//	if errors.Is(err, glyph.ErrNoGlyph) {
//		// not a printable character
//	}
//	columns := g[:] // 5 bytes of display RAM
package glyph
