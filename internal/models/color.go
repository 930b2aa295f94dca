package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is an ARGB color.
type Color struct {
	A, R, G, B uint8
}

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{A: 0xFF, R: r, G: g, B: b}
}

// Hex renders the color as #AARRGGBB.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X%02X", c.A, c.R, c.G, c.B)
}

// Darken scales the color channels by factor, keeping alpha.
func (c Color) Darken(factor float64) Color {
	scale := func(v uint8) uint8 { return uint8(float64(v) * factor) }
	return Color{A: c.A, R: scale(c.R), G: scale(c.G), B: scale(c.B)}
}

// ParseColor accepts #AARRGGBB, #RRGGBB, #ARGB and #RGB (leading '#'
// optional). An empty string yields the zero (transparent) color.
func ParseColor(s string) (Color, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if s == "" {
		return Color{}, nil
	}
	switch len(s) {
	case 3, 4:
		var b strings.Builder
		for _, r := range s {
			b.WriteRune(r)
			b.WriteRune(r)
		}
		s = b.String()
	}
	if len(s) == 6 {
		s = "FF" + s
	}
	if len(s) != 8 {
		return Color{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color{A: uint8(v >> 24), R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// MarshalText implements encoding.TextMarshaler.
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.Hex()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
