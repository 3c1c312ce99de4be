package lineart

import (
	"image/color"
	"math"
	"testing"

	"github.com/chewxy/math32"
)

func TestPackAspectHardnessRotation(t *testing.T) {
	tests := []struct {
		name                      string
		aspect, softness, rotation float32
		want                      int32
	}{
		{"round hard", 1, 0, 0, 255 | 255<<9 | 255<<18},
		{"wide soft rotated", 2, 0.5, -math.Pi / 2, 128 | 1<<8 | 1<<17 | 128<<18},
		{"narrow", 0.5, 1, 0, 128 | 255<<9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PackAspectHardnessRotation(tt.aspect, tt.softness, tt.rotation)
			if got != tt.want {
				t.Errorf("PackAspectHardnessRotation(%v, %v, %v) = %#x, want %#x",
					tt.aspect, tt.softness, tt.rotation, got, tt.want)
			}
		})
	}
}

func TestStyle_Defaults(t *testing.T) {
	s := DefaultStyle()
	if s.PointRadius() != 0.01 || s.MaterialIndex() != 0 || s.Opacity != 1 {
		t.Errorf("DefaultStyle() = %+v", s)
	}

	s.Material = -4
	if s.MaterialIndex() != 0 {
		t.Errorf("negative material maps to %d, want 0", s.MaterialIndex())
	}
	s.Material = 257
	if s.MaterialIndex() != 1 {
		t.Errorf("material 257 maps to %d, want 1", s.MaterialIndex())
	}
}

func TestHex(t *testing.T) {
	tests := []struct {
		in   string
		want RGBA
		ok   bool
	}{
		{"#fff", White, true},
		{"000", Black, true},
		{"#ff0000", RGB(1, 0, 0), true},
		{"00ff0000", RGBA{G: 1}, true},
		{"#0000ff80", RGBA{B: 1, A: 128.0 / 255}, true},
		{"#808080", RGBA{R: 0.21586, G: 0.21586, B: 0.21586, A: 1}, true},
		{"", RGBA{}, false},
		{"#12", RGBA{}, false},
		{"zzzzzz", RGBA{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Hex(tt.in)
			if ok != tt.ok || !approxRGBA(got, tt.want) {
				t.Errorf("Hex(%q) = %v, %v; want %v, %v", tt.in, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func approxRGBA(a, b RGBA) bool {
	const eps = 1e-4
	return math32.Abs(a.R-b.R) < eps && math32.Abs(a.G-b.G) < eps &&
		math32.Abs(a.B-b.B) < eps && math32.Abs(a.A-b.A) < eps
}

func TestRGBA_Color(t *testing.T) {
	// Linear 0.5 encodes to sRGB 188.
	got := RGBA{R: 1, G: 0.5, B: -1, A: 2}.Color()
	want := color.NRGBA{R: 255, G: 188, B: 0, A: 255}
	if got != want {
		t.Errorf("Color() = %v, want %v", got, want)
	}
	gray, _ := Hex("#808080")
	if got := gray.Color(); got != (color.NRGBA{R: 128, G: 128, B: 128, A: 255}) {
		t.Errorf("Hex round trip = %v", got)
	}
	if v := RGB(0.25, 0.5, 0.75).Vec4(); v != [4]float32{0.25, 0.5, 0.75, 1} {
		t.Errorf("Vec4() = %v", v)
	}
}

func TestOptions(t *testing.T) {
	o := defaultOptions()
	if o.weldEpsilon != DefaultWeldEpsilon || o.maxFanSteps != DefaultMaxFanSteps || o.backend != BackendAuto || o.crease {
		t.Errorf("defaultOptions() = %+v", o)
	}

	for _, opt := range []Option{
		WithWorkers(3),
		WithPointerJumpRounds(-2),
		WithMaxFanSteps(0),
		WithWeldEpsilon(0),
		WithCreaseAngle(60),
		WithBackend(BackendGPU),
	} {
		opt(&o)
	}
	if o.workers != 3 || o.rounds != 0 || o.maxFanSteps != DefaultMaxFanSteps || o.weldEpsilon != 0 || o.backend != BackendGPU {
		t.Errorf("options = %+v", o)
	}
	if !o.crease || math.Abs(float64(o.creaseCos)-0.5) > 1e-6 {
		t.Errorf("crease = %v, cos = %v; want true, 0.5", o.crease, o.creaseCos)
	}

	WithCreaseAngle(0)(&o)
	if o.crease {
		t.Error("WithCreaseAngle(0) should disable creases")
	}
	WithPointerJumpRounds(5)(&o)
	if o.rounds != 5 {
		t.Errorf("rounds = %d, want 5", o.rounds)
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{BackendAuto.String(), "auto"},
		{BackendCPU.String(), "cpu"},
		{BackendGPU.String(), "gpu"},
		{BackendKind(9).String(), "unknown"},
		{StageClassify.String(), "classify"},
		{StageLink.String(), "link"},
		{StageCompact.String(), "compact"},
		{StageCount.String(), "unknown"},
		{ChainNone.String(), "none"},
		{ChainOpen.String(), "open"},
		{ChainCyclic.String(), "cyclic"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
}
