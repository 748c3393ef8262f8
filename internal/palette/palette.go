// Package palette converts a binary RGB palette table into C++ source code
// for a default palette definition.
package palette

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	// Entries is the number of colors in a palette table.
	Entries = 64
	// Channels is the number of bytes per color.
	Channels = 3
	// GroupSize is the number of colors per commented group.
	GroupSize = Entries / 4

	prefix        = "    "
	commentColumn = 52
)

// ErrInvalidLength is returned for tables that are not Entries*Channels bytes long.
var ErrInvalidLength = fmt.Errorf("expected %d color entries of %d-bytes each", Entries, Channels)

// Color is an RGB palette entry.
type Color struct {
	R, G, B uint8
}

// Parse splits the table into colors.
func Parse(data []byte) ([]Color, error) {
	if len(data) != Entries*Channels {
		return nil, fmt.Errorf("%w, got %d bytes", ErrInvalidLength, len(data))
	}

	colors := make([]Color, 0, Entries)
	for i := 0; i < len(data); i += Channels {
		colors = append(colors, Color{R: data[i], G: data[i+1], B: data[i+2]})
	}
	return colors, nil
}

// Format writes the palette table as C++ array initializer lines.
func Format(w io.Writer, data []byte) error {
	colors, err := Parse(data)
	if err != nil {
		return err
	}

	buf := &strings.Builder{}
	for i, c := range colors {
		if i%GroupSize == 0 {
			if i > 0 {
				buf.WriteString("\n")
			}
			fmt.Fprintf(buf, "%s// 0x%02x\n", prefix, i)
		}
		buf.WriteString(Line(c))
		buf.WriteString("\n")
	}

	if _, err := io.WriteString(w, buf.String()); err != nil {
		return fmt.Errorf("writing palette: %w", err)
	}
	return nil
}

// Line returns the source line of a single color, the hex comment is aligned
// to a fixed column.
func Line(c Color) string {
	value := constant(c)
	padding := max(commentColumn-len(value)-len(prefix), 0)
	return fmt.Sprintf("%s%s%s// #%02X%02X%02X", prefix, value, strings.Repeat(" ", padding), c.R, c.G, c.B)
}

func constant(c Color) string {
	switch c {
	case Color{}:
		return "IM_COL32_BLACK,"
	case Color{R: 0xFF, G: 0xFF, B: 0xFF}:
		return "IM_COL32_WHITE,"
	default:
		return fmt.Sprintf("IM_COL32(%#x, %#x, %#x, SDL_ALPHA_OPAQUE),", c.R, c.G, c.B)
	}
}

// IsInvalidLength returns whether the error is caused by a table of wrong size.
func IsInvalidLength(err error) bool {
	return errors.Is(err, ErrInvalidLength)
}
