package lineart

import (
	"math"

	"github.com/chewxy/math32"
)

// NewCube returns an axis-aligned cube centered at the origin with the
// given half extent. Every face has its own four vertices so that the
// normals stay flat; adjacency welds them back together.
//
// Faces are emitted in the order +X, -X, +Y, -Y, +Z, -Z, two triangles
// each.
func NewCube(half float32) *Mesh {
	type face struct{ n, u, v Vec3 }
	x, y, z := V3(1, 0, 0), V3(0, 1, 0), V3(0, 0, 1)
	faces := []face{
		{x, y, z},
		{x.Neg(), z, y},
		{y, z, x},
		{y.Neg(), x, z},
		{z, x, y},
		{z.Neg(), y, x},
	}

	m := &Mesh{}
	for i, f := range faces {
		c := f.n.Mul(half)
		u, v := f.u.Mul(half), f.v.Mul(half)
		m.Positions = append(m.Positions,
			c.Sub(u).Sub(v),
			c.Add(u).Sub(v),
			c.Add(u).Add(v),
			c.Sub(u).Add(v),
		)
		m.Normals = append(m.Normals, f.n, f.n, f.n, f.n)
		b := uint32(4 * i) //nolint:gosec // constant range
		m.Indices = append(m.Indices, b, b+1, b+2, b, b+2, b+3)
	}
	return m
}

// NewUVSphere returns a sphere with the given number of longitude
// segments and latitude rings. The seam and pole vertices are duplicated
// the way exported meshes usually are; the pole cells are single
// triangles so no face has zero area.
func NewUVSphere(radius float32, segments, rings int) *Mesh {
	segments, rings = max(segments, 3), max(rings, 2)
	m := &Mesh{}
	for r := 0; r <= rings; r++ {
		theta := float32(r) / float32(rings) * math.Pi
		st, ct := math32.Sincos(theta)
		for s := 0; s <= segments; s++ {
			phi := float32(s) / float32(segments) * 2 * math.Pi
			sp, cp := math32.Sincos(phi)
			n := V3(st*cp, ct, -st*sp)
			m.Positions = append(m.Positions, n.Mul(radius))
			m.Normals = append(m.Normals, n)
		}
	}
	row := uint32(segments + 1) //nolint:gosec // mesh sizes fit uint32
	for r := range rings {
		for s := range segments {
			a := uint32(r)*row + uint32(s) //nolint:gosec // mesh sizes fit uint32
			b := a + row
			// The pole rows collapse to one triangle per cell.
			if r != 0 {
				m.Indices = append(m.Indices, a, b+1, a+1)
			}
			if r != rings-1 {
				m.Indices = append(m.Indices, a, b, b+1)
			}
		}
	}
	return m
}

// NewTorus returns a torus around the Y axis with major radius R and
// minor radius r.
func NewTorus(major, minor float32, segments, sides int) *Mesh {
	segments, sides = max(segments, 3), max(sides, 3)
	m := &Mesh{}
	for i := 0; i < segments; i++ {
		u := float32(i) / float32(segments) * 2 * math.Pi
		su, cu := math32.Sincos(u)
		for j := 0; j < sides; j++ {
			v := float32(j) / float32(sides) * 2 * math.Pi
			sv, cv := math32.Sincos(v)
			n := V3(cv*cu, sv, -cv*su)
			center := V3(major*cu, 0, -major*su)
			m.Positions = append(m.Positions, center.Add(n.Mul(minor)))
			m.Normals = append(m.Normals, n)
		}
	}
	m.Indices = gridIndices(segments, sides, func(i, j int) (uint32, uint32, uint32, uint32) {
		i1, j1 := (i+1)%segments, (j+1)%sides
		a := uint32(i*sides + j)   //nolint:gosec // mesh sizes fit uint32
		b := uint32(i1*sides + j)  //nolint:gosec // mesh sizes fit uint32
		c := uint32(i1*sides + j1) //nolint:gosec // mesh sizes fit uint32
		d := uint32(i*sides + j1)  //nolint:gosec // mesh sizes fit uint32
		return a, b, c, d
	})
	return m
}

// NewQuadGrid returns an open nx by nz grid in the XZ plane facing +Y,
// spanning [-w/2, w/2] x [-d/2, d/2].
func NewQuadGrid(w, d float32, nx, nz int) *Mesh {
	nx, nz = max(nx, 1), max(nz, 1)
	m := &Mesh{}
	for k := 0; k <= nz; k++ {
		for i := 0; i <= nx; i++ {
			p := V3(-w/2+w*float32(i)/float32(nx), 0, d/2-d*float32(k)/float32(nz))
			m.Positions = append(m.Positions, p)
			m.Normals = append(m.Normals, V3(0, 1, 0))
		}
	}
	m.Indices = gridIndices(nz, nx, func(k, i int) (uint32, uint32, uint32, uint32) {
		row := nx + 1
		a := uint32(k*row + i)     //nolint:gosec // mesh sizes fit uint32
		b := uint32((k+1)*row + i) //nolint:gosec // mesh sizes fit uint32
		return a, a + 1, b + 1, b
	})
	return m
}

// gridIndices emits two triangles (a,b,c) and (a,c,d) for every cell of
// a rows x cols grid, where quad returns the cell corners in
// counter-clockwise order.
func gridIndices(rows, cols int, quad func(row, col int) (a, b, c, d uint32)) []uint32 {
	idx := make([]uint32, 0, rows*cols*6)
	for r := range rows {
		for col := range cols {
			a, b, c, d := quad(r, col)
			idx = append(idx, a, b, c, a, c, d)
		}
	}
	return idx
}
