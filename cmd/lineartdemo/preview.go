package main

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"

	"github.com/chewxy/math32"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"

	"github.com/gogpu/lineart"
)

const (
	// fovY is the vertical field of view of the preview camera.
	fovY = 45 * math32.Pi / 180
	// minHalfWidth keeps distant strokes visible.
	minHalfWidth = 0.5
)

// projector maps world positions to preview pixels for a pinhole camera
// at eye looking at the origin with +Y up.
type projector struct {
	eye            lineart.Vec3
	right, up, fwd lineart.Vec3
	cx, cy, focal  float32
}

func newProjector(eye lineart.Vec3, width, height int) projector {
	fwd := eye.Neg().Normalize()
	right := fwd.Cross(lineart.V3(0, 1, 0)).Normalize()
	if right.IsZero() {
		right = lineart.V3(1, 0, 0)
	}
	h := float32(height)
	return projector{
		eye:   eye,
		right: right,
		up:    right.Cross(fwd),
		fwd:   fwd,
		cx:    float32(width) / 2,
		cy:    h / 2,
		focal: h / (2 * math32.Tan(fovY/2)),
	}
}

// project returns the pixel position and depth of p. ok is false behind
// the camera.
func (p projector) project(pos lineart.Vec3) (x, y, depth float32, ok bool) {
	d := pos.Sub(p.eye)
	depth = d.Dot(p.fwd)
	if depth <= 1e-4 {
		return 0, 0, 0, false
	}
	x = p.cx + p.focal*d.Dot(p.right)/depth
	y = p.cy - p.focal*d.Dot(p.up)/depth
	return x, y, depth, true
}

// renderPreview draws every stroke of out as a polyline whose width
// follows the point radius, with a one-line caption.
func renderPreview(out *lineart.Output, eye lineart.Vec3, width, height int, caption string) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	proj := newProjector(eye, width, height)
	z := vector.NewRasterizer(width, height)
	for _, r := range out.StrokeRanges() {
		z.Reset(width, height)
		drawn := 0
		for s := r.Start + 1; s+1 < r.End; s++ {
			if proj.segment(z, &out.Verts[s], &out.Verts[s+1]) {
				drawn++
			}
		}
		if drawn == 0 {
			continue
		}
		src := image.NewUniform(strokeColor(out, r.Start+1))
		z.Draw(img, img.Bounds(), src, image.Point{})
	}

	if caption != "" {
		d := font.Drawer{
			Dst:  img,
			Src:  image.Black,
			Face: basicfont.Face7x13,
			Dot:  fixed.P(8, height-8),
		}
		d.DrawString(caption)
	}
	return img
}

// segment adds the quad between two stroke points to z.
func (p projector) segment(z *vector.Rasterizer, a, b *lineart.DenseStrokeVert) bool {
	ax, ay, ad, okA := p.project(a.Pos)
	bx, by, bd, okB := p.project(b.Pos)
	if !okA || !okB {
		return false
	}
	dx, dy := bx-ax, by-ay
	l := math32.Hypot(dx, dy)
	if l < 1e-3 {
		return false
	}
	nx, ny := -dy/l, dx/l
	wa := max(p.focal*a.Radius/ad, minHalfWidth)
	wb := max(p.focal*b.Radius/bd, minHalfWidth)

	z.MoveTo(ax+nx*wa, ay+ny*wa)
	z.LineTo(bx+nx*wb, by+ny*wb)
	z.LineTo(bx-nx*wb, by-ny*wb)
	z.LineTo(ax-nx*wa, ay-ny*wa)
	z.ClosePath()
	return true
}

func strokeColor(out *lineart.Output, slot int) color.Color {
	c := out.Colors[slot].VCol
	v := out.Verts[slot]
	return lineart.RGBA{R: c[0], G: c[1], B: c[2], A: c[3] * v.Opacity}.Color()
}

// writePNG encodes img to path.
func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create preview: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode preview: %w", err)
	}
	return f.Close()
}
