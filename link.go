package lineart

import "github.com/gogpu/lineart/internal/parallel"

// link turns the classified corners into ranked chains. Each kernel is a
// separate barrier-delimited dispatch; pointer-jumping rounds read the
// ping-pong source and write the destination only.
func (f *cpuFrame) link() error {
	n := len(f.edges)

	if err := f.dispatchSwap(n, f.resolveSuccessor); err != nil {
		return err
	}
	return f.rankChains()
}

// rankChains runs everything after successor resolution: the ping-pong
// source must hold one candidate successor per corner.
func (f *cpuFrame) rankChains() error {
	n := len(f.edges)
	if err := f.dispatch(n, f.claimSuccessor); err != nil {
		return err
	}
	if err := f.dispatchSwap(n, f.commitSuccessor); err != nil {
		return err
	}
	for range f.rounds {
		if err := f.dispatchSwap(n, f.findTailRound); err != nil {
			return err
		}
	}
	if err := f.dispatchSwap(n, f.resetNextPointer); err != nil {
		return err
	}
	if err := f.dispatchSwap(n, f.initRanks); err != nil {
		return err
	}
	for range f.rounds {
		if err := f.dispatchSwap(n, f.rankRound); err != nil {
			return err
		}
	}
	if err := f.dispatch(n, f.commitRanks); err != nil {
		return err
	}

	Logger().Debug("lineart: linked",
		"rounds", f.rounds,
		"unresolved", f.counters.unresolved.Load())
	return nil
}

// resolveSuccessor finds the next feature corner after c by walking the
// fan around c's end vertex, starting inside c's own face.
func (f *cpuFrame) resolveSuccessor(c int) {
	dst := f.jump.Dst()
	if !f.edges[c].Valid() {
		dst[c] = jumpState{Next: AdjNone, Min: InvalidIndex}
		return
	}

	succ := AdjNone
	start := int32(NextCorner(c)) //nolint:gosec // corner index fits int32
	d := start
	for range f.job.MaxFanSteps {
		if f.edges[d].Valid() {
			succ = d
			break
		}
		r := f.job.Adjacency.Successor(int(d))
		if r == NoCorner || r == start {
			break
		}
		d = r
	}
	if succ == int32(c) { //nolint:gosec // corner index fits int32
		succ = AdjNone
	}
	dst[c] = jumpState{Next: succ, Min: uint32(c)} //nolint:gosec // corner index fits uint32
}

// claimSuccessor lets every corner bid for its successor. The smallest
// bidder wins, which keeps the in-degree at one.
func (f *cpuFrame) claimSuccessor(c int) {
	s := f.jump.Src()[c].Next
	if s >= 0 {
		parallel.AtomicMinUint32(&f.pred[s], uint32(c)) //nolint:gosec // corner index fits uint32
	}
}

// commitSuccessor writes the winning links into the records and seeds the
// tail search.
func (f *cpuFrame) commitSuccessor(c int) {
	dst := f.jump.Dst()
	e := &f.edges[c]
	if !e.Valid() {
		dst[c] = jumpState{Next: AdjNone, Min: InvalidIndex}
		return
	}

	self := uint32(c) //nolint:gosec // corner index fits uint32
	e.Adj = AdjNone
	if s := f.jump.Src()[c].Next; s >= 0 && f.pred[s] == self {
		e.Adj = s
	}
	if f.pred[c] != InvalidIndex {
		e.Flags |= FlagIsChild
	}
	dst[c] = jumpState{Next: e.Adj, Min: self}
}

// findTailRound is one pointer-jumping round of min-propagation. A corner
// stops jumping once its pointer reaches a terminal, so the pointer of an
// open chain ends on the chain's last corner.
func (f *cpuFrame) findTailRound(c int) {
	src := f.jump.Src()
	j := src[c]
	if j.Next >= 0 {
		s := src[j.Next]
		j.Min = min(j.Min, s.Min)
		if s.Next >= 0 {
			j.Next = s.Next
		}
	}
	f.jump.Dst()[c] = j
}

// resetNextPointer classifies the chain as OPEN(tail) or CYCLIC(anchor),
// then restores the one-hop links for ranking with the tail's link cut.
//
// After the tail search the pointer of a corner spans a window of the
// chain and Min is the smallest corner in it. A loop is only proven when
// the window of the corner and the window after it report the same
// minimum; on an open chain the two windows are disjoint. Corners with
// neither proof are left unresolved and keep their link.
func (f *cpuFrame) resetNextPointer(c int) {
	src, dst := f.jump.Src(), f.jump.Dst()
	e := &f.edges[c]
	if !e.Valid() {
		dst[c] = src[c]
		return
	}

	j := src[c]
	self := uint32(c) //nolint:gosec // corner index fits uint32
	var ch Chain
	switch {
	case j.Next < 0:
		ch = Chain{Kind: ChainOpen, Corner: self}
	case src[j.Next].Next < 0:
		ch = Chain{Kind: ChainOpen, Corner: uint32(j.Next)} //nolint:gosec // non-negative
	case src[j.Next].Min == j.Min:
		ch = Chain{Kind: ChainCyclic, Corner: j.Min}
	default:
		e.MinPoint = InvalidIndex
		e.Flags |= FlagUnresolved
		f.counters.unresolved.Add(1)
		dst[c] = jumpState{Next: e.Adj, Min: InvalidIndex}
		return
	}

	e.MinPoint = ch.Corner
	if ch.Kind == ChainCyclic {
		e.Flags |= FlagCyclic
	}

	next := e.Adj
	if ch.Corner == self {
		next = AdjNone
	}
	dst[c] = jumpState{Next: next, Min: ch.Corner}
}

// initRanks gives the tail rank 0 and every other corner the length of
// its own edge.
func (f *cpuFrame) initRanks(c int) {
	j := f.jump.Src()[c]
	j.Rank, j.Dist = 0, 0
	if j.Next >= 0 {
		j.Rank = 1
		j.Dist = f.edges[c].Pos.Distance(f.edges[j.Next].Pos)
	}
	f.jump.Dst()[c] = j
}

// rankRound is one list-ranking round: accumulate the successor's rank and
// distance, then jump past it.
func (f *cpuFrame) rankRound(c int) {
	src := f.jump.Src()
	j := src[c]
	if j.Next >= 0 {
		s := src[j.Next]
		j.Rank += s.Rank
		j.Dist += s.Dist
		j.Next = s.Next
	}
	f.jump.Dst()[c] = j
}

// commitRanks stores the final rank and distance. Corners that still point
// somewhere did not converge within the round budget.
func (f *cpuFrame) commitRanks(c int) {
	e := &f.edges[c]
	if !e.Valid() {
		return
	}
	j := f.jump.Src()[c]
	e.Rank = j.Rank
	e.DistFromTail = j.Dist
	if j.Next >= 0 && !e.Flags.Has(FlagUnresolved) {
		e.Flags |= FlagUnresolved
		f.counters.unresolved.Add(1)
	}
}
