// Package color converts between the linear colors carried by stroke
// vertices and 8-bit sRGB, the encoding of hex strings and images.
//
// Conversions use lookup tables: 256 entries for sRGB bytes to linear and
// 4096 entries (12-bit) for linear to sRGB bytes, which is enough to
// round-trip every 8-bit value.
package color

import (
	"image/color"
	"math"
)

// linearLUTSize is the resolution of the linear to sRGB table.
const linearLUTSize = 4096

var (
	srgbToLinearLUT [256]float32
	linearToSRGBLUT [linearLUTSize]uint8
)

func init() {
	for i := range srgbToLinearLUT {
		srgbToLinearLUT[i] = float32(decode(float64(i) / 255))
	}
	for i := range linearToSRGBLUT {
		linearToSRGBLUT[i] = toByte(encode(float64(i) / (linearLUTSize - 1)))
	}
}

// decode is the sRGB EOTF.
func decode(s float64) float64 {
	if s <= 0.04045 {
		return s / 12.92
	}
	return math.Pow((s+0.055)/1.055, 2.4)
}

// encode is the sRGB OETF.
func encode(l float64) float64 {
	if l <= 0.0031308 {
		return l * 12.92
	}
	return 1.055*math.Pow(l, 1.0/2.4) - 0.055
}

func toByte(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	default:
		return uint8(v*255 + 0.5)
	}
}

// SRGBToLinear converts an sRGB byte to a linear component in [0, 1].
//
//	SRGBToLinear(128) // ~0.2159, not 0.5
func SRGBToLinear(s uint8) float32 {
	return srgbToLinearLUT[s]
}

// LinearToSRGB converts a linear component to an sRGB byte. Input is
// clamped to [0, 1].
//
//	LinearToSRGB(0.5) // 188, not 128
func LinearToSRGB(l float32) uint8 {
	switch {
	case l <= 0:
		return linearToSRGBLUT[0]
	case l >= 1:
		return linearToSRGBLUT[linearLUTSize-1]
	}
	return linearToSRGBLUT[int(l*(linearLUTSize-1)+0.5)]
}

// AlphaToByte converts a straight alpha in [0, 1] to a byte. Alpha is
// never gamma-encoded.
func AlphaToByte(a float32) uint8 {
	return toByte(float64(a))
}

// NRGBA encodes a linear color with straight alpha as an 8-bit sRGB
// color.
func NRGBA(r, g, b, a float32) color.NRGBA {
	return color.NRGBA{
		R: LinearToSRGB(r),
		G: LinearToSRGB(g),
		B: LinearToSRGB(b),
		A: AlphaToByte(a),
	}
}
