package lineart

// Successor pointer values that are not corner indices.
const (
	// AdjNone ends a chain: the corner is a stroke point without successor.
	AdjNone int32 = -1

	// AdjInvalid marks a corner that is not part of any stroke.
	AdjInvalid int32 = -2
)

// InvalidIndex is the unsigned "no value" marker used for tails, offsets
// and stroke indices.
const InvalidIndex uint32 = 0xFFFFFFFF

// EdgeFlags is the per-corner flag set.
type EdgeFlags uint32

const (
	// FlagCyclic is set on every corner of a closed chain.
	FlagCyclic EdgeFlags = 1 << iota

	// FlagIsChild is set when another corner links to this one.
	FlagIsChild

	// FlagIsInvalid is set on corners that are not feature edges.
	FlagIsInvalid

	// FlagUnresolved is set when the tail search could neither reach a
	// tail nor prove a loop, or list ranking did not reach the tail,
	// within the configured number of rounds.
	FlagUnresolved
)

// Has reports whether all bits of f are set.
func (e EdgeFlags) Has(f EdgeFlags) bool { return e&f == f }

// StrokeEdge is the per-corner working record of one frame.
type StrokeEdge struct {
	// Pos is the world-space start vertex of the corner's edge.
	Pos Vec3
	// Adj is the successor corner, AdjNone or AdjInvalid.
	Adj int32
	// FaceNormal is the world-space normal of the owning face.
	FaceNormal Vec3
	// MinPoint is the tail (open chain) or anchor (cyclic chain).
	MinPoint uint32
	// Rank is the number of hops to the tail.
	Rank uint32
	// DistFromTail is the arc length along the chain to the tail.
	DistFromTail float32
	Flags        EdgeFlags

	// Chain-level values, meaningful on the tail record only.
	TotalStrokeLength  uint32
	TotalArcLength     float32
	StrokePointsOffset uint32
	StrokeIndex        uint32
}

// Valid reports whether the corner takes part in a stroke.
func (e *StrokeEdge) Valid() bool {
	return !e.Flags.Has(FlagIsInvalid)
}

// ChainKind tells open chains from closed loops.
type ChainKind uint8

const (
	// ChainNone is the kind of invalid corners.
	ChainNone ChainKind = iota
	// ChainOpen is a chain that ends at a corner without successor.
	ChainOpen
	// ChainCyclic is a closed loop anchored at its smallest corner.
	ChainCyclic
)

// String returns the kind name.
func (k ChainKind) String() string {
	switch k {
	case ChainNone:
		return "none"
	case ChainOpen:
		return "open"
	case ChainCyclic:
		return "cyclic"
	default:
		return "unknown"
	}
}

// Chain identifies the chain a corner belongs to: OPEN(tail) or
// CYCLIC(anchor).
type Chain struct {
	Kind   ChainKind
	Corner uint32
}

// Chain returns the resolved chain of the corner. Only meaningful after
// the linker has run.
func (e *StrokeEdge) Chain() Chain {
	switch {
	case !e.Valid() || e.MinPoint == InvalidIndex:
		return Chain{Kind: ChainNone, Corner: InvalidIndex}
	case e.Flags.Has(FlagCyclic):
		return Chain{Kind: ChainCyclic, Corner: e.MinPoint}
	default:
		return Chain{Kind: ChainOpen, Corner: e.MinPoint}
	}
}

// IsTail reports whether corner c is the tail or anchor of its chain.
func (e *StrokeEdge) IsTail(c int) bool {
	return e.Valid() && e.MinPoint == uint32(c) //nolint:gosec // corner index fits uint32
}

// minClosedPoints is the smallest loop drawn with a closing point.
// Shorter cyclic chains are emitted like open strokes.
const minClosedPoints = 3

// closes reports whether a chain with the given point count repeats its
// first point at the end.
func (ch Chain) closes(points uint32) bool {
	return ch.Kind == ChainCyclic && points >= minClosedPoints
}

// rangeWidth returns the number of dense slots a chain with the given
// point count occupies: leading pad, points, closing point, trailing pad.
func (ch Chain) rangeWidth(points uint32) uint32 {
	switch {
	case ch.Kind == ChainNone:
		return 0
	case ch.closes(points):
		return points + 3
	default:
		return points + 2
	}
}
