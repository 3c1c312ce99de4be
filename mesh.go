package lineart

import "fmt"

// Mesh is an indexed triangle mesh in object space.
//
// Indices is a flat list, three per face, wound counter-clockwise when
// seen from the outside. Normals are optional; when present they are used
// only as a fallback normal for degenerate faces.
type Mesh struct {
	Positions []Vec3
	Normals   []Vec3
	Indices   []uint32
}

// NewMesh validates and wraps the given buffers. The slices are not
// copied; callers must not modify them while an Extractor uses the mesh.
func NewMesh(positions, normals []Vec3, indices []uint32) (*Mesh, error) {
	m := &Mesh{Positions: positions, Normals: normals, Indices: indices}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

// Validate checks the caller contract: a non-empty index buffer whose
// length is a multiple of three and whose entries address existing
// vertices.
func (m *Mesh) Validate() error {
	if m == nil {
		return ErrNilMesh
	}
	if len(m.Indices)%3 != 0 {
		return fmt.Errorf("%w: got %d indices", ErrMalformedIndices, len(m.Indices))
	}
	if len(m.Indices) == 0 {
		return ErrEmptyMesh
	}
	if len(m.Normals) != 0 && len(m.Normals) != len(m.Positions) {
		return fmt.Errorf("%w: %d normals, %d positions", ErrNormalCount, len(m.Normals), len(m.Positions))
	}
	n := uint32(len(m.Positions)) //nolint:gosec // vertex counts fit uint32
	for i, idx := range m.Indices {
		if idx >= n {
			return fmt.Errorf("%w: indices[%d] = %d, %d vertices", ErrIndexOutOfRange, i, idx, n)
		}
	}
	return nil
}

// FaceCount returns the number of triangles.
func (m *Mesh) FaceCount() int {
	return len(m.Indices) / 3
}

// CornerCount returns the number of corners, three per face.
func (m *Mesh) CornerCount() int {
	return len(m.Indices)
}

// CornerEnd returns the vertex the directed edge of corner c points to.
func (m *Mesh) CornerEnd(c int) uint32 {
	return m.Indices[NextCorner(c)]
}

// NextCorner returns the following corner of the same face.
func NextCorner(c int) int {
	return c - c%3 + (c%3+1)%3
}

// PrevCorner returns the preceding corner of the same face.
func PrevCorner(c int) int {
	return c - c%3 + (c%3+2)%3
}
