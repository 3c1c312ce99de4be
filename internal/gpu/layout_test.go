//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/gogpu/lineart"
)

func cubeJob(t *testing.T) *lineart.Job {
	t.Helper()
	m := lineart.NewCube(1)
	adj, err := lineart.BuildAdjacency(m, lineart.DefaultWeldEpsilon)
	if err != nil {
		t.Fatalf("BuildAdjacency: %v", err)
	}
	return &lineart.Job{
		Mesh:        m,
		Adjacency:   adj,
		View:        lineart.NewView(lineart.V3(10, 10, 0)).WithTransform(lineart.Translate(1, 2, 3)),
		Style:       lineart.DefaultStyle(),
		MaxFanSteps: lineart.DefaultMaxFanSteps,
		Crease:      true,
		CreaseCos:   0.5,
	}
}

func TestKernelConfigLayout(t *testing.T) {
	job := cubeJob(t)
	cfg, err := newKernelConfig(job)
	if err != nil {
		t.Fatalf("newKernelConfig: %v", err)
	}

	b := cfg.toBytes()
	if len(b) != configSize {
		t.Fatalf("config size = %d, want %d", len(b), configSize)
	}

	f32 := func(off int) float32 { return math.Float32frombits(binary.LittleEndian.Uint32(b[off:])) }
	u32 := func(off int) uint32 { return binary.LittleEndian.Uint32(b[off:]) }

	tests := []struct {
		name string
		got  float32
		want float32
	}{
		{"model row 0 translation", f32(12), 1},
		{"model row 1 translation", f32(28), 2},
		{"model row 2 translation", f32(44), 3},
		{"model w", f32(60), 1},
		{"normal x", f32(64), 1},
		{"camera x", f32(112), 10},
		{"camera y", f32(116), 10},
		{"color alpha", f32(140), 1},
		{"fill red", f32(144), 1},
		{"crease cos", f32(180), 0.5},
		{"radius", f32(184), 0.01},
		{"opacity", f32(188), 1},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	words := []struct {
		name string
		off  int
		want uint32
	}{
		{"num_faces", 160, 12},
		{"num_corners", 164, 36},
		{"capacity", 168, 72},
		{"max_fan_steps", 172, lineart.DefaultMaxFanSteps},
		{"crease", 176, 1},
		{"has_normals", 200, 1},
	}
	for _, w := range words {
		if got := u32(w.off); got != w.want {
			t.Errorf("%s = %d, want %d", w.name, got, w.want)
		}
	}
	if got := int32(u32(196)); got != job.Style.PackedShape() {
		t.Errorf("packed shape = %#x, want %#x", got, job.Style.PackedShape())
	}
}

func TestKernelConfigSingular(t *testing.T) {
	job := cubeJob(t)
	job.View = job.View.WithTransform(lineart.Scale(1, 0, 1))
	if _, err := newKernelConfig(job); err != lineart.ErrSingularTransform {
		t.Errorf("newKernelConfig = %v, want ErrSingularTransform", err)
	}
}

func TestEncodeCorners(t *testing.T) {
	job := cubeJob(t)
	b := encodeCorners(job.Mesh, job.Adjacency)
	if len(b) != 36*cornerSize {
		t.Fatalf("corner bytes = %d, want %d", len(b), 36*cornerSize)
	}
	for c := range 36 {
		off := c * cornerSize
		v := binary.LittleEndian.Uint32(b[off:])
		twin := int32(binary.LittleEndian.Uint32(b[off+4:]))
		succ := int32(binary.LittleEndian.Uint32(b[off+8:]))
		if v != job.Mesh.Indices[c] || twin != job.Adjacency.Twin(c) || succ != job.Adjacency.Successor(c) {
			t.Errorf("corner %d = (%d, %d, %d)", c, v, twin, succ)
		}
	}
}

func TestEncodeVertices(t *testing.T) {
	m := lineart.NewCube(1)
	b := encodeVertices(m)
	if len(b) != len(m.Positions)*vertexSize {
		t.Fatalf("vertex bytes = %d", len(b))
	}
	if got := getVec3(b, vertexSize); got != m.Positions[1] {
		t.Errorf("position 1 = %v, want %v", got, m.Positions[1])
	}
	if got := getF32(b, vertexSize+12); got != 1 {
		t.Errorf("w = %v, want 1", got)
	}
	if got := getVec3(b, vertexSize+16); got != m.Normals[1] {
		t.Errorf("normal 1 = %v, want %v", got, m.Normals[1])
	}
}

func TestDecodeStrokeEdges(t *testing.T) {
	b := make([]byte, 2*strokeEdgeSize)
	off := strokeEdgeSize
	putVec3(b, off, lineart.V3(1, 2, 3))
	putI32(b, off+12, lineart.AdjNone)
	putVec3(b, off+16, lineart.V3(0, 1, 0))
	le.PutUint32(b[off+28:], 1)
	le.PutUint32(b[off+32:], 4)
	putF32(b, off+36, 2.5)
	le.PutUint32(b[off+40:], uint32(lineart.FlagCyclic|lineart.FlagIsChild))
	le.PutUint32(b[off+44:], 6)
	putF32(b, off+48, 12)
	le.PutUint32(b[off+52:], 9)
	le.PutUint32(b[off+56:], 2)

	edges := make([]lineart.StrokeEdge, 2)
	decodeStrokeEdges(b, edges)
	want := lineart.StrokeEdge{
		Pos:                lineart.V3(1, 2, 3),
		Adj:                lineart.AdjNone,
		FaceNormal:         lineart.V3(0, 1, 0),
		MinPoint:           1,
		Rank:               4,
		DistFromTail:       2.5,
		Flags:              lineart.FlagCyclic | lineart.FlagIsChild,
		TotalStrokeLength:  6,
		TotalArcLength:     12,
		StrokePointsOffset: 9,
		StrokeIndex:        2,
	}
	if edges[1] != want {
		t.Errorf("decoded = %+v\nwant      %+v", edges[1], want)
	}
	if edges[0] != (lineart.StrokeEdge{}) {
		t.Errorf("zero record decoded to %+v", edges[0])
	}
}

func TestDecodeDense(t *testing.T) {
	b := make([]byte, denseVertSize+colorVertSize)
	putVec3(b, 0, lineart.V3(1, -1, 1))
	putF32(b, 12, 0.01)
	putI32(b, 16, -1)
	putI32(b, 20, 8)
	putI32(b, 24, -3)
	putI32(b, 28, 0x7f)
	putF32(b, 40, 4)
	putF32(b, 44, 0.5)

	verts := make([]lineart.DenseStrokeVert, 1)
	decodeDense(b, verts)
	v := verts[0]
	if v.Pos != lineart.V3(1, -1, 1) || v.Radius != 0.01 || !v.IsPadding() ||
		v.StrokeID != 8 || v.PointID != -3 || v.PackedAspHardRot != 0x7f ||
		v.UStroke != 4 || v.Opacity != 0.5 {
		t.Errorf("decoded = %+v", v)
	}

	cb := make([]byte, colorVertSize)
	for i := range 8 {
		putF32(cb, 4*i, float32(i))
	}
	colors := make([]lineart.DenseColorVert, 1)
	decodeColors(cb, colors)
	if colors[0].VCol != [4]float32{0, 1, 2, 3} || colors[0].FCol != [4]float32{4, 5, 6, 7} {
		t.Errorf("colors = %+v", colors[0])
	}
}

func TestDecodeCounters(t *testing.T) {
	b := make([]byte, headerSize)
	for i, v := range []uint32{3, 21, 12, 1, 0} {
		le.PutUint32(b[4*i:], v)
	}
	got := decodeCounters(b)
	want := frameCounters{strokes: 3, points: 21, valid: 12, dropped: 1}
	if got != want {
		t.Errorf("decodeCounters = %+v, want %+v", got, want)
	}
	if decodeCounters(b[:8]) != (frameCounters{}) {
		t.Error("short header should decode to zero counters")
	}
}

func TestScratchWords(t *testing.T) {
	// header + pred, tail_len, tail_arc + faces + owner
	if got := scratchWords(36, 12, 72); got != 8+108+12+72 {
		t.Errorf("scratchWords = %d", got)
	}
	sz := computeBufferSizes(24, 36, 12)
	if sz.strokes != 36*64 || sz.dense != 72*48 || sz.colors != 72*32 || sz.scratch != 200*4 {
		t.Errorf("sizes = %+v", sz)
	}
}
