package lineart

import (
	"cmp"
	"math"
	"slices"
)

// NoCorner marks a missing twin or successor in the adjacency tables.
const NoCorner int32 = -1

// DefaultWeldEpsilon is the distance below which two positions are
// treated as one vertex when building adjacency. Meshes split vertices
// along UV and normal seams; without the weld every seam would look
// like a boundary.
const DefaultWeldEpsilon float32 = 1e-4

// Adjacency holds the per-corner topology of a mesh. It is built once per
// mesh and is read-only afterwards, so it is safe to share between
// concurrent readers.
type Adjacency struct {
	twins []int32
	succ  []int32
	canon []uint32

	boundary    int
	nonManifold int
	degenerate  int
}

// edgeRef pairs an undirected edge key with the corner that produced it.
type edgeRef struct {
	key    uint64
	corner int32
}

// BuildAdjacency computes the twin and successor tables for m.
//
// Positions closer than weldEpsilon (per axis) are merged first; a
// non-positive epsilon merges only bit-identical positions. Edges shared
// by exactly two corners are paired. Boundary edges, non-manifold edges
// (three or more incident faces) and zero-length edges get NoCorner.
func BuildAdjacency(m *Mesh, weldEpsilon float32) (*Adjacency, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}

	canon := weldPositions(m.Positions, weldEpsilon)
	n := m.CornerCount()
	a := &Adjacency{
		twins: make([]int32, n),
		succ:  make([]int32, n),
		canon: canon,
	}

	refs := make([]edgeRef, 0, n)
	for c := range n {
		a.twins[c] = NoCorner
		u0 := canon[m.Indices[c]]
		u1 := canon[m.CornerEnd(c)]
		if u0 == u1 {
			a.degenerate++
			continue
		}
		lo, hi := min(u0, u1), max(u0, u1)
		refs = append(refs, edgeRef{key: uint64(lo)<<32 | uint64(hi), corner: int32(c)}) //nolint:gosec // corner count fits int32
	}
	slices.SortFunc(refs, func(x, y edgeRef) int {
		if r := cmp.Compare(x.key, y.key); r != 0 {
			return r
		}
		return cmp.Compare(x.corner, y.corner)
	})

	for i := 0; i < len(refs); {
		j := i + 1
		for j < len(refs) && refs[j].key == refs[i].key {
			j++
		}
		switch j - i {
		case 1:
			a.boundary++
		case 2:
			c0, c1 := refs[i].corner, refs[i+1].corner
			a.twins[c0] = c1
			a.twins[c1] = c0
		default:
			a.nonManifold++
		}
		i = j
	}

	for c := range n {
		a.succ[c] = RotateCorner(a.twins[c])
	}

	if a.nonManifold > 0 {
		Logger().Warn("lineart: non-manifold edges found in mesh",
			"edges", a.nonManifold, "corners", n)
	}
	Logger().Debug("lineart: adjacency built",
		"corners", n,
		"vertices", len(m.Positions),
		"boundary", a.boundary,
		"nonManifold", a.nonManifold,
		"degenerate", a.degenerate)
	return a, nil
}

// RotateCorner returns the corner that follows t in t's face, or NoCorner
// for NoCorner. Applied to a twin it yields the rotation convention used
// by Successor.
func RotateCorner(t int32) int32 {
	if t < 0 {
		return NoCorner
	}
	return t - t%3 + (t%3+1)%3
}

// Len returns the number of corners.
func (a *Adjacency) Len() int { return len(a.twins) }

// Twin returns the corner on the other face sharing c's edge, or NoCorner.
// Twin(Twin(c)) == c for every paired corner.
func (a *Adjacency) Twin(c int) int32 { return a.twins[c] }

// Successor returns the corner after Twin(c) in its face, or NoCorner.
// That corner's edge leaves the start vertex of c, so repeatedly applying
// Successor walks around a vertex.
func (a *Adjacency) Successor(c int) int32 { return a.succ[c] }

// Twins returns the twin table. The slice must not be modified.
func (a *Adjacency) Twins() []int32 { return a.twins }

// Successors returns the successor table. The slice must not be modified.
func (a *Adjacency) Successors() []int32 { return a.succ }

// CanonicalVertex returns the welded vertex id of vertex v.
func (a *Adjacency) CanonicalVertex(v uint32) uint32 { return a.canon[v] }

// BoundaryEdges returns the number of edges with a single incident face.
func (a *Adjacency) BoundaryEdges() int { return a.boundary }

// NonManifoldEdges returns the number of edges with more than two faces.
func (a *Adjacency) NonManifoldEdges() int { return a.nonManifold }

// DegenerateEdges returns the number of corners whose edge has zero
// length after welding.
func (a *Adjacency) DegenerateEdges() int { return a.degenerate }

type weldCell [3]int64

// weldPositions maps each vertex to the first vertex (in index order)
// lying within eps of it.
func weldPositions(pos []Vec3, eps float32) []uint32 {
	canon := make([]uint32, len(pos))
	if eps <= 0 {
		seen := make(map[Vec3]uint32, len(pos))
		for i, p := range pos {
			if j, ok := seen[p]; ok {
				canon[i] = j
				continue
			}
			seen[p] = uint32(i) //nolint:gosec // vertex counts fit uint32
			canon[i] = uint32(i) //nolint:gosec // vertex counts fit uint32
		}
		return canon
	}

	inv := 1 / float64(eps)
	cellOf := func(p Vec3) weldCell {
		return weldCell{
			int64(math.Floor(float64(p.X) * inv)),
			int64(math.Floor(float64(p.Y) * inv)),
			int64(math.Floor(float64(p.Z) * inv)),
		}
	}

	grid := make(map[weldCell][]uint32, len(pos))
	for i, p := range pos {
		cell := cellOf(p)
		found := false
	search:
		for dx := int64(-1); dx <= 1; dx++ {
			for dy := int64(-1); dy <= 1; dy++ {
				for dz := int64(-1); dz <= 1; dz++ {
					for _, j := range grid[weldCell{cell[0] + dx, cell[1] + dy, cell[2] + dz}] {
						if pos[j].maxAbsDiff(p) <= eps {
							canon[i] = j
							found = true
							break search
						}
					}
				}
			}
		}
		if !found {
			canon[i] = uint32(i) //nolint:gosec // vertex counts fit uint32
			grid[cell] = append(grid[cell], uint32(i)) //nolint:gosec // vertex counts fit uint32
		}
	}
	return canon
}
