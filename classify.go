package lineart

// degenerateSinSq is the squared sine of the smallest angle a face may
// have before it is treated as degenerate.
const degenerateSinSq = 1e-12

// classify runs the two classifier kernels: one per face for facing and
// normals, then one per corner that initializes the record.
func (f *cpuFrame) classify() error {
	m := f.job.Mesh
	if err := f.dispatch(m.FaceCount(), f.classifyFace); err != nil {
		return err
	}
	if err := f.dispatch(m.CornerCount(), f.classifyCorner); err != nil {
		return err
	}

	f.rounds = f.job.Rounds
	if f.rounds <= 0 {
		f.rounds = AutoRounds(int(f.counters.valid.Load()))
	}
	Logger().Debug("lineart: classified",
		"corners", m.CornerCount(),
		"valid", f.counters.valid.Load(),
		"rounds", f.rounds)
	return nil
}

func (f *cpuFrame) classifyFace(face int) {
	m := f.job.Mesh
	i0, i1, i2 := m.Indices[3*face], m.Indices[3*face+1], m.Indices[3*face+2]
	p0, p1, p2 := m.Positions[i0], m.Positions[i1], m.Positions[i2]

	e1, e2 := p1.Sub(p0), p2.Sub(p0)
	n := e1.Cross(e2)
	info := faceInfo{
		degenerate: n.LengthSq() <= degenerateSinSq*e1.LengthSq()*e2.LengthSq(),
	}

	switch {
	case !info.degenerate:
		info.normal = f.normal.TransformVector(n).Normalize()
	case len(m.Normals) != 0:
		avg := m.Normals[i0].Add(m.Normals[i1]).Add(m.Normals[i2])
		info.normal = f.normal.TransformVector(avg).Normalize()
	}

	if !info.degenerate {
		w0 := f.model.TransformPoint(p0)
		w1 := f.model.TransformPoint(p1)
		w2 := f.model.TransformPoint(p2)
		centroid := w0.Add(w1).Add(w2).Mul(1.0 / 3)
		info.front = f.job.View.Camera.Sub(centroid).Dot(info.normal) > 0
	}
	f.faces[face] = info
}

func (f *cpuFrame) classifyCorner(c int) {
	m := f.job.Mesh
	face := &f.faces[c/3]
	e := &f.edges[c]
	*e = StrokeEdge{
		Pos:                f.model.TransformPoint(m.Positions[m.Indices[c]]),
		Adj:                AdjNone,
		FaceNormal:         face.normal,
		MinPoint:           uint32(c), //nolint:gosec // corner index fits uint32
		StrokePointsOffset: InvalidIndex,
		StrokeIndex:        InvalidIndex,
	}
	f.pred[c] = InvalidIndex
	f.tailLen[c] = 0
	f.tailArc[c] = 0

	if !f.isFeature(c) {
		e.Flags = FlagIsInvalid
		e.Adj = AdjInvalid
		e.MinPoint = InvalidIndex
		return
	}
	if s := f.job.Adjacency.Successor(c); s != NoCorner {
		e.Adj = s
	}
	f.counters.valid.Add(1)
}

// isFeature decides whether corner c represents a stroke edge. For edges
// between two faces exactly one of the two corners is chosen.
func (f *cpuFrame) isFeature(c int) bool {
	own := &f.faces[c/3]
	if own.degenerate {
		return false
	}
	t := f.job.Adjacency.Twin(c)
	if t == NoCorner {
		return true
	}
	other := &f.faces[t/3]
	if other.degenerate {
		return true
	}
	if own.front != other.front {
		return own.front
	}
	if f.job.Crease && own.front && own.normal.Dot(other.normal) < f.job.CreaseCos {
		return int32(c) < t //nolint:gosec // corner index fits int32
	}
	return false
}
