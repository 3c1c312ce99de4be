package lineart

import (
	"encoding/binary"
	"hash/maphash"
	"math"

	"github.com/gogpu/lineart/internal/cache"
)

// adjacencyCacheSize is the number of meshes whose adjacency is kept.
const adjacencyCacheSize = 16

// meshKey identifies a mesh by content. Hits are not compared against
// the mesh, so the key carries two independently seeded 64-bit sums plus
// the sizes; a false hit needs both sums to collide.
type meshKey struct {
	sum      [2]uint64
	vertices int
	corners  int
	weldEps  uint32
}

var (
	adjacencyCache = cache.New[meshKey, *Adjacency](adjacencyCacheSize)
	meshSeeds      = [2]maphash.Seed{maphash.MakeSeed(), maphash.MakeSeed()}
)

// fingerprint hashes the positions and indices of m. Normals do not
// affect the adjacency and are not hashed.
func fingerprint(m *Mesh, weldEpsilon float32) meshKey {
	var h [2]maphash.Hash
	h[0].SetSeed(meshSeeds[0])
	h[1].SetSeed(meshSeeds[1])
	write := func(b []byte) {
		_, _ = h[0].Write(b)
		_, _ = h[1].Write(b)
	}

	var buf [12]byte
	for _, p := range m.Positions {
		binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(p.X))
		binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(p.Y))
		binary.LittleEndian.PutUint32(buf[8:], math.Float32bits(p.Z))
		write(buf[:])
	}
	for _, i := range m.Indices {
		binary.LittleEndian.PutUint32(buf[0:], i)
		write(buf[:4])
	}
	return meshKey{
		sum:      [2]uint64{h[0].Sum64(), h[1].Sum64()},
		vertices: len(m.Positions),
		corners:  len(m.Indices),
		weldEps:  math.Float32bits(weldEpsilon),
	}
}

// cachedAdjacency returns the adjacency of m, building it on first use.
// Adjacency values are immutable and shared between extractors.
func cachedAdjacency(m *Mesh, weldEpsilon float32) (*Adjacency, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	key := fingerprint(m, weldEpsilon)
	adj, hit, err := adjacencyCache.GetOrCreate(key, func() (*Adjacency, error) {
		return BuildAdjacency(m, weldEpsilon)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		Logger().Debug("lineart: adjacency cache hit", "corners", key.corners)
	}
	return adj, nil
}
