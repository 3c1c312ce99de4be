//go:build !nogpu

package gpu

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/lineart"
)

// Record sizes in bytes. They must match the WGSL struct layouts.
const (
	configSize     = 208
	vertexSize     = 32 // Vertex: pos vec4 + normal vec4
	cornerSize     = 16 // Corner: vertex, twin, succ, pad
	strokeEdgeSize = 64 // StrokeEdge: 15 scalars + pad
	jumpStateSize  = 16 // JumpState: next, min_point, rank, dist
	denseVertSize  = 48 // DenseStrokeVert
	colorVertSize  = 32 // DenseColorVert: two vec4

	// headerWords is the number of counter words at the start of the
	// scratch buffer.
	headerWords = 8
	headerSize  = headerWords * 4
)

// Scratch header word indices.
const (
	counterStrokes = iota
	counterPoints
	counterValid
	counterDropped
	counterUnresolved
)

var le = binary.LittleEndian

func putF32(b []byte, off int, f float32) { le.PutUint32(b[off:], math.Float32bits(f)) }
func getF32(b []byte, off int) float32    { return math.Float32frombits(le.Uint32(b[off:])) }
func putI32(b []byte, off int, v int32)   { le.PutUint32(b[off:], uint32(v)) } //nolint:gosec // bit copy
func getI32(b []byte, off int) int32      { return int32(le.Uint32(b[off:])) } //nolint:gosec // bit copy

func putVec3(b []byte, off int, v lineart.Vec3) {
	putF32(b, off, v.X)
	putF32(b, off+4, v.Y)
	putF32(b, off+8, v.Z)
}

func getVec3(b []byte, off int) lineart.Vec3 {
	return lineart.Vec3{X: getF32(b, off), Y: getF32(b, off+4), Z: getF32(b, off+8)}
}

// kernelConfig is the uniform shared by all kernels of one frame.
type kernelConfig struct {
	Model  lineart.Mat4
	Normal lineart.Mat4
	Camera lineart.Vec3

	Color     [4]float32
	FillColor [4]float32

	NumFaces    uint32
	NumCorners  uint32
	Capacity    uint32
	MaxFanSteps uint32

	Crease    bool
	CreaseCos float32

	Radius      float32
	Opacity     float32
	Material    int32
	PackedShape int32
	HasNormals  bool
}

// newKernelConfig collects the per-frame uniform from a job.
func newKernelConfig(job *lineart.Job) (kernelConfig, error) {
	normal, err := job.View.NormalMatrix()
	if err != nil {
		return kernelConfig{}, err
	}
	m := job.Mesh
	corners := m.CornerCount()
	maxFan := job.MaxFanSteps
	if maxFan <= 0 {
		maxFan = lineart.DefaultMaxFanSteps
	}
	return kernelConfig{
		Model:       job.View.ObjectToWorld,
		Normal:      normal,
		Camera:      job.View.Camera,
		Color:       job.Style.Color.Vec4(),
		FillColor:   job.Style.FillColor.Vec4(),
		NumFaces:    uint32(m.FaceCount()), //nolint:gosec // mesh sizes fit uint32
		NumCorners:  uint32(corners),       //nolint:gosec // mesh sizes fit uint32
		Capacity:    uint32(2 * corners),   //nolint:gosec // mesh sizes fit uint32
		MaxFanSteps: uint32(maxFan),        //nolint:gosec // positive
		Crease:      job.Crease,
		CreaseCos:   job.CreaseCos,
		Radius:      job.Style.PointRadius(),
		Opacity:     job.Style.Opacity,
		Material:    job.Style.MaterialIndex(),
		PackedShape: job.Style.PackedShape(),
		HasNormals:  len(m.Normals) != 0,
	}, nil
}

func (c kernelConfig) sizeInBytes() uint64 { return configSize }

// toBytes serializes the uniform in the WGSL Config layout: seven
// matrix rows (four model, three normal), camera and two colors as vec4,
// then twelve scalars.
func (c kernelConfig) toBytes() []byte {
	buf := make([]byte, c.sizeInBytes())
	off := 0
	for row := range 4 {
		for col := range 4 {
			putF32(buf, off, c.Model[row*4+col])
			off += 4
		}
	}
	for row := range 3 {
		for col := range 4 {
			putF32(buf, off, c.Normal[row*4+col])
			off += 4
		}
	}
	putVec3(buf, off, c.Camera)
	off += 16
	for _, v := range [][4]float32{c.Color, c.FillColor} {
		for i := range 4 {
			putF32(buf, off+4*i, v[i])
		}
		off += 16
	}

	le.PutUint32(buf[160:], c.NumFaces)
	le.PutUint32(buf[164:], c.NumCorners)
	le.PutUint32(buf[168:], c.Capacity)
	le.PutUint32(buf[172:], c.MaxFanSteps)
	le.PutUint32(buf[176:], boolWord(c.Crease))
	putF32(buf, 180, c.CreaseCos)
	putF32(buf, 184, c.Radius)
	putF32(buf, 188, c.Opacity)
	putI32(buf, 192, c.Material)
	putI32(buf, 196, c.PackedShape)
	le.PutUint32(buf[200:], boolWord(c.HasNormals))
	return buf
}

func boolWord(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

// encodeVertices packs positions and normals as two vec4 per vertex.
// Missing normals are written as zero.
func encodeVertices(m *lineart.Mesh) []byte {
	buf := make([]byte, len(m.Positions)*vertexSize)
	for i, p := range m.Positions {
		off := i * vertexSize
		putVec3(buf, off, p)
		putF32(buf, off+12, 1)
		if len(m.Normals) != 0 {
			putVec3(buf, off+16, m.Normals[i])
		}
	}
	return buf
}

// encodeCorners packs the per-corner topology: vertex index, twin and
// rotation successor.
func encodeCorners(m *lineart.Mesh, adj *lineart.Adjacency) []byte {
	twins, succ := adj.Twins(), adj.Successors()
	buf := make([]byte, len(m.Indices)*cornerSize)
	for c, v := range m.Indices {
		off := c * cornerSize
		le.PutUint32(buf[off:], v)
		putI32(buf, off+4, twins[c])
		putI32(buf, off+8, succ[c])
	}
	return buf
}

// decodeStrokeEdges unpacks the per-corner records into dst.
func decodeStrokeEdges(b []byte, dst []lineart.StrokeEdge) {
	for c := range dst {
		off := c * strokeEdgeSize
		if off+strokeEdgeSize > len(b) {
			return
		}
		dst[c] = lineart.StrokeEdge{
			Pos:                getVec3(b, off),
			Adj:                getI32(b, off+12),
			FaceNormal:         getVec3(b, off+16),
			MinPoint:           le.Uint32(b[off+28:]),
			Rank:               le.Uint32(b[off+32:]),
			DistFromTail:       getF32(b, off+36),
			Flags:              lineart.EdgeFlags(le.Uint32(b[off+40:])),
			TotalStrokeLength:  le.Uint32(b[off+44:]),
			TotalArcLength:     getF32(b, off+48),
			StrokePointsOffset: le.Uint32(b[off+52:]),
			StrokeIndex:        le.Uint32(b[off+56:]),
		}
	}
}

// decodeDense unpacks the stroke vertex buffer into dst.
func decodeDense(b []byte, dst []lineart.DenseStrokeVert) {
	for s := range dst {
		off := s * denseVertSize
		if off+denseVertSize > len(b) {
			return
		}
		dst[s] = lineart.DenseStrokeVert{
			Pos:              getVec3(b, off),
			Radius:           getF32(b, off+12),
			Mat:              getI32(b, off+16),
			StrokeID:         getI32(b, off+20),
			PointID:          getI32(b, off+24),
			PackedAspHardRot: getI32(b, off+28),
			UVFill:           [2]float32{getF32(b, off+32), getF32(b, off+36)},
			UStroke:          getF32(b, off+40),
			Opacity:          getF32(b, off+44),
		}
	}
}

// decodeColors unpacks the color buffer into dst.
func decodeColors(b []byte, dst []lineart.DenseColorVert) {
	for s := range dst {
		off := s * colorVertSize
		if off+colorVertSize > len(b) {
			return
		}
		var v lineart.DenseColorVert
		for i := range 4 {
			v.VCol[i] = getF32(b, off+4*i)
			v.FCol[i] = getF32(b, off+16+4*i)
		}
		dst[s] = v
	}
}

// frameCounters are the allocation counters read back from the scratch
// header.
type frameCounters struct {
	strokes    uint32
	points     uint32
	valid      uint32
	dropped    uint32
	unresolved uint32
}

func decodeCounters(b []byte) frameCounters {
	if len(b) < headerSize {
		return frameCounters{}
	}
	word := func(i int) uint32 { return le.Uint32(b[4*i:]) }
	return frameCounters{
		strokes:    word(counterStrokes),
		points:     word(counterPoints),
		valid:      word(counterValid),
		dropped:    word(counterDropped),
		unresolved: word(counterUnresolved),
	}
}

// scratchWords returns the scratch buffer length in u32 words: header,
// pred, tail_len and tail_arc per corner, face state per face and owner
// per dense slot.
func scratchWords(corners, faces, capacity int) int {
	return headerWords + 3*corners + faces + capacity
}
