package lineart

import (
	"image/color"
	"strconv"

	srgb "github.com/gogpu/lineart/internal/color"
)

// RGBA is a linear color with components in [0, 1], laid out like the
// vec4 color attributes of the dense buffer.
type RGBA struct {
	R, G, B, A float32
}

// RGB creates an opaque color.
func RGB(r, g, b float32) RGBA {
	return RGBA{R: r, G: g, B: b, A: 1}
}

// Color converts to the standard color.Color interface, encoding the
// components as 8-bit sRGB.
func (c RGBA) Color() color.Color {
	return srgb.NRGBA(c.R, c.G, c.B, c.A)
}

// Hex parses an sRGB color given as "RGB", "RGBA", "RRGGBB" or
// "RRGGBBAA", with or without a leading '#', and returns it in linear
// space. Alpha is taken as is. The second result is false for malformed
// input.
func Hex(hex string) (RGBA, bool) {
	if hex != "" && hex[0] == '#' {
		hex = hex[1:]
	}

	var digits []string
	scale := uint64(1)
	switch len(hex) {
	case 3, 4:
		for i := range hex {
			digits = append(digits, hex[i:i+1])
		}
		scale = 17
	case 6, 8:
		for i := 0; i < len(hex); i += 2 {
			digits = append(digits, hex[i:i+2])
		}
	default:
		return RGBA{}, false
	}

	ch := [4]float32{0, 0, 0, 1}
	for i, d := range digits {
		v, err := strconv.ParseUint(d, 16, 8)
		if err != nil {
			return RGBA{}, false
		}
		b := uint8(v * scale) //nolint:gosec // at most 255
		if i < 3 {
			ch[i] = srgb.SRGBToLinear(b)
		} else {
			ch[i] = float32(b) / 255
		}
	}
	return RGBA{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, true
}

// Vec4 returns the components in attribute order.
func (c RGBA) Vec4() [4]float32 {
	return [4]float32{c.R, c.G, c.B, c.A}
}

// Common colors.
var (
	Black = RGB(0, 0, 0)
	White = RGB(1, 1, 1)
)
