package core

import (
	"fmt"
	"image/color"
	"strings"
)

// RGB is an opaque 24-bit color.
// It marshals to and from "#rrggbb" so it can live in YAML settings and JSON payloads.
type RGB struct {
	R, G, B uint8
}

// Neon palette used by the overlays.
var (
	NeonCyan    = RGB{0, 255, 255}
	NeonMagenta = RGB{255, 0, 255}
	NeonYellow  = RGB{255, 220, 0}
	NeonRed     = RGB{255, 50, 50}
	NeonGreen   = RGB{50, 255, 50}
	NeonOrange  = RGB{255, 100, 0}
	White       = RGB{255, 255, 255}
	Black       = RGB{0, 0, 0}
)

// RGBA converts the color to a standard library color with the given alpha (0-255).
// The result is not premultiplied.
func (c RGB) RGBA(alpha uint8) color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: alpha}
}

// String returns the hex form, e.g. "#00ffff".
func (c RGB) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MarshalText implements encoding.TextMarshaler.
func (c RGB) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
// Accepts "#rrggbb" or "rrggbb".
func (c *RGB) UnmarshalText(text []byte) error {
	s := strings.TrimPrefix(strings.TrimSpace(string(text)), "#")
	if len(s) != 6 {
		return fmt.Errorf("core: invalid color %q: want #rrggbb", string(text))
	}
	var r, g, b uint8
	if _, err := fmt.Sscanf(s, "%02x%02x%02x", &r, &g, &b); err != nil {
		return fmt.Errorf("core: invalid color %q: %w", string(text), err)
	}
	*c = RGB{R: r, G: g, B: b}
	return nil
}
