package lineart

import "github.com/chewxy/math32"

// Style holds the per-frame appearance parameters applied uniformly to
// every emitted stroke point.
type Style struct {
	// Radius is the base stroke radius in world units.
	Radius float32
	// RadiusMultiplier scales Radius, for example to follow a zoom level.
	RadiusMultiplier float32
	// Opacity is written to every stroke point.
	Opacity float32
	// Material is the material slot; negative values map to slot 0.
	Material int32
	// Color is the per-vertex stroke color.
	Color RGBA
	// FillColor is the per-vertex fill color.
	FillColor RGBA
	// Aspect is the point aspect ratio (1 is round).
	Aspect float32
	// Softness is the inverse of hardness, in [0, 1].
	Softness float32
	// Rotation is the point rotation in radians.
	Rotation float32
}

// DefaultStyle returns black round strokes of radius 0.01.
func DefaultStyle() Style {
	return Style{
		Radius:           0.01,
		RadiusMultiplier: 1,
		Opacity:          1,
		Color:            Black,
		FillColor:        White,
		Aspect:           1,
	}
}

// MaterialIndex clamps the material slot to the 256 slots a stroke
// vertex can address.
func (s Style) MaterialIndex() int32 {
	return max(s.Material, 0) % 256
}

// PointRadius returns the radius written to each stroke point.
func (s Style) PointRadius() float32 {
	return s.Radius * s.RadiusMultiplier
}

// PackAspectHardnessRotation packs the three point shape attributes into
// one integer:
//
//	bits  0-7  aspect (or its inverse if the aspect is > 1), unit byte
//	bit   8    aspect inverted
//	bits  9-16 cos(rotation), unit byte
//	bit   17   rotation is negative
//	bits 18-25 hardness (1 - softness), unit byte
func PackAspectHardnessRotation(aspect, softness, rotation float32) int32 {
	var packed int32
	asp := aspect
	if aspect > 1 {
		asp = 1 / aspect
	}
	packed |= int32(unitToByte(asp))
	if aspect > 1 {
		packed |= 1 << 8
	}
	packed |= int32(unitToByte(math32.Abs(math32.Cos(rotation)))) << 9
	if rotation < 0 {
		packed |= 1 << 17
	}
	packed |= int32(unitToByte(1-softness)) << 18
	return packed
}

// PackedShape returns the packed point shape of the style.
func (s Style) PackedShape() int32 {
	return PackAspectHardnessRotation(s.Aspect, s.Softness, s.Rotation)
}

// unitToByte maps [0, 1] to a byte with rounding, clamping out-of-range
// input.
func unitToByte(x float32) uint8 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 255
	default:
		return uint8(x*255 + 0.5)
	}
}
