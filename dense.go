package lineart

import "time"

// DenseStrokeVert is one slot of the render-ready stroke buffer. The
// field order and sizes match the 48-byte GPU layout.
type DenseStrokeVert struct {
	Pos    Vec3
	Radius float32
	// Mat is the material slot; negative marks a padding vertex that the
	// renderer must not draw.
	Mat int32
	// StrokeID is the first slot of the stroke for points and trailing
	// padding, and the last slot of the stroke for leading padding.
	StrokeID int32
	// PointID is the slot index, negated for cyclic strokes.
	PointID          int32
	PackedAspHardRot int32
	UVFill           [2]float32
	// UStroke is the arc length from the stroke's first point.
	UStroke float32
	Opacity float32
}

// DenseColorVert is the color attribute slot parallel to DenseStrokeVert.
type DenseColorVert struct {
	VCol [4]float32
	FCol [4]float32
}

// paddingVert is the content of every slot before scatter.
var paddingVert = DenseStrokeVert{Mat: -1, StrokeID: -1}

// IsPadding reports whether the slot must be skipped by the renderer.
func (v *DenseStrokeVert) IsPadding() bool { return v.Mat < 0 }

// Stats describes one extracted frame.
type Stats struct {
	Backend           string
	Corners           int
	ValidCorners      int
	Strokes           int
	DroppedStrokes    int
	UnresolvedCorners int
	Rounds            int
	Elapsed           time.Duration
}

// Output is the result of one frame: the dense buffers and the two
// allocation counters.
type Output struct {
	Verts  []DenseStrokeVert
	Colors []DenseColorVert

	// NumStrokes counts claimed stroke indices.
	NumStrokes uint32
	// NumStrokePoints counts claimed slots, padding included. It can
	// exceed the capacity when strokes were dropped.
	NumStrokePoints uint32

	faceCount int
	Stats     Stats
}

// Capacity returns the number of dense slots, two per corner.
func (o *Output) Capacity() int { return len(o.Verts) }

// UsedSlots returns the number of slots that may hold stroke data.
func (o *Output) UsedSlots() int {
	return min(int(o.NumStrokePoints), len(o.Verts))
}

// DrawIndexCount returns the index count the renderer draws: two
// triangles per corner-derived quad, six indices per face.
func (o *Output) DrawIndexCount() int { return 6 * o.faceCount }

// StrokeRange is one stroke's slot range, padding included.
type StrokeRange struct {
	// Start is the leading padding slot.
	Start int
	// End is the trailing padding slot.
	End int
}

// Points returns the number of drawable points, including the closing
// point of a cyclic stroke.
func (r StrokeRange) Points() int { return r.End - r.Start - 1 }

// StrokeRanges walks the buffer and returns the ranges of all written
// strokes in slot order. Slots of dropped strokes are skipped.
func (o *Output) StrokeRanges() []StrokeRange {
	var ranges []StrokeRange
	used := o.UsedSlots()
	for s := 0; s < used; {
		v := &o.Verts[s]
		end := int(v.StrokeID)
		if v.IsPadding() && end > s && end < used {
			ranges = append(ranges, StrokeRange{Start: s, End: end})
			s = end + 1
			continue
		}
		s++
	}
	return ranges
}

// Reset sizes the buffers for the given mesh and clears the counters.
func (o *Output) Reset(corners, faces int) {
	capacity := 2 * corners
	if cap(o.Verts) >= capacity && cap(o.Colors) >= capacity {
		o.Verts = o.Verts[:capacity]
		o.Colors = o.Colors[:capacity]
	} else {
		o.Verts = make([]DenseStrokeVert, capacity)
		o.Colors = make([]DenseColorVert, capacity)
	}
	o.NumStrokes = 0
	o.NumStrokePoints = 0
	o.faceCount = faces
	o.Stats = Stats{Corners: corners}
}
