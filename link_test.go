package lineart

import (
	"testing"

	"github.com/gogpu/lineart/internal/parallel"
)

// seededFrame builds a frame whose successors are given directly, one per
// corner: a corner index, AdjNone, or AdjInvalid for a non-feature
// corner. Corner c sits at (c, 0, 0).
func seededFrame(t *testing.T, succ []int32, rounds, workers int) *cpuFrame {
	t.Helper()
	disp := parallel.NewDispatcher(workers)
	t.Cleanup(disp.Close)

	n := len(succ)
	f := newCPUFrame(disp)
	f.resize(n)
	f.job = &Job{Style: DefaultStyle()}
	f.out = &Output{}
	f.out.Reset(n, n/3)
	f.rounds = rounds

	src := f.jump.Dst()
	for c, s := range succ {
		e := StrokeEdge{
			Pos:                V3(float32(c), 0, 0),
			Adj:                AdjNone,
			MinPoint:           uint32(c),
			StrokePointsOffset: InvalidIndex,
			StrokeIndex:        InvalidIndex,
		}
		if s == AdjInvalid {
			e.Flags = FlagIsInvalid
			e.Adj = AdjInvalid
			e.MinPoint = InvalidIndex
			s = AdjNone
		} else {
			f.counters.valid.Add(1)
		}
		f.edges[c] = e
		f.pred[c] = InvalidIndex
		src[c] = jumpState{Next: s, Min: e.MinPoint}
	}
	f.jump.Swap()
	return f
}

func runSeeded(t *testing.T, f *cpuFrame) {
	t.Helper()
	if err := f.rankChains(); err != nil {
		t.Fatalf("rankChains: %v", err)
	}
	if err := f.compact(); err != nil {
		t.Fatalf("compact: %v", err)
	}
	f.out.NumStrokes = f.counters.numStrokes.Load()
	f.out.NumStrokePoints = f.counters.numStrokePoints.Load()
}

func TestLink_IsolatedEdge(t *testing.T) {
	f := seededFrame(t, []int32{AdjNone, AdjInvalid, AdjInvalid}, AutoRounds(1), 1)
	runSeeded(t, f)

	e := f.edges[0]
	if e.Chain() != (Chain{Kind: ChainOpen, Corner: 0}) || e.Rank != 0 || e.DistFromTail != 0 {
		t.Fatalf("isolated edge = %+v", e)
	}
	if f.out.NumStrokes != 1 || f.out.NumStrokePoints != 3 {
		t.Fatalf("NumStrokes = %d, NumStrokePoints = %d; want 1, 3", f.out.NumStrokes, f.out.NumStrokePoints)
	}
	v := f.out.Verts
	if !v[0].IsPadding() || v[0].StrokeID != 2 || v[1].IsPadding() || !v[2].IsPadding() || v[2].StrokeID != 0 {
		t.Errorf("slots = %+v", v[:3])
	}
	if v[1].PointID != 1 || v[1].StrokeID != 0 {
		t.Errorf("point = %+v", v[1])
	}
	if got := f.out.StrokeRanges(); len(got) != 1 || got[0].Points() != 1 {
		t.Errorf("StrokeRanges() = %+v", got)
	}
}

func TestLink_OpenChain(t *testing.T) {
	f := seededFrame(t, []int32{1, 2, 3, AdjNone, AdjInvalid, AdjInvalid}, AutoRounds(4), 1)
	runSeeded(t, f)

	for c := range 4 {
		e := f.edges[c]
		if e.Chain() != (Chain{Kind: ChainOpen, Corner: 3}) {
			t.Errorf("corner %d: Chain() = %+v, want open(3)", c, e.Chain())
		}
		if want := uint32(3 - c); e.Rank != want || e.DistFromTail != float32(want) {
			t.Errorf("corner %d: rank %d dist %v, want %d", c, e.Rank, e.DistFromTail, want)
		}
	}
	if f.edges[0].Flags.Has(FlagIsChild) || !f.edges[3].Flags.Has(FlagIsChild) {
		t.Error("FlagIsChild must be set exactly on corners with a predecessor")
	}
	if tail := f.edges[3]; tail.TotalStrokeLength != 4 || tail.TotalArcLength != 3 {
		t.Errorf("tail = %+v", tail)
	}

	if f.out.NumStrokePoints != 6 {
		t.Fatalf("NumStrokePoints = %d, want 6", f.out.NumStrokePoints)
	}
	for slot := 1; slot <= 4; slot++ {
		v := f.out.Verts[slot]
		want := V3(float32(4-slot), 0, 0)
		if v.Pos != want || v.PointID != int32(slot) || v.UStroke != float32(slot-1) {
			t.Errorf("slot %d = %+v, want pos %v", slot, v, want)
		}
	}
	if v := f.out.Verts[5]; !v.IsPadding() || v.StrokeID != 0 {
		t.Errorf("trailing pad = %+v", v)
	}
}

func TestLink_Cycle(t *testing.T) {
	// 1 -> 4 -> 2 -> 3 -> 1, anchored at the smallest corner.
	succ := []int32{AdjInvalid, 4, 3, 1, 2, AdjInvalid}
	f := seededFrame(t, succ, AutoRounds(4), 1)
	runSeeded(t, f)

	wantRank := map[int]uint32{1: 0, 3: 1, 2: 2, 4: 3}
	for c, rank := range wantRank {
		e := f.edges[c]
		if e.Chain() != (Chain{Kind: ChainCyclic, Corner: 1}) || e.Rank != rank {
			t.Errorf("corner %d: chain %+v rank %d, want cyclic(1) rank %d", c, e.Chain(), e.Rank, rank)
		}
	}
	anchor := f.edges[1]
	// Edge lengths 3, 2, 1 and 2 with corner c at x = c.
	if anchor.TotalArcLength != 3+2+1+2 {
		t.Errorf("TotalArcLength = %v, want 8", anchor.TotalArcLength)
	}
	if f.out.NumStrokePoints != 7 {
		t.Fatalf("NumStrokePoints = %d, want 7", f.out.NumStrokePoints)
	}
	closing := f.out.Verts[5]
	if closing.Pos != anchor.Pos || closing.UStroke != anchor.TotalArcLength || closing.PointID != -5 {
		t.Errorf("closing point = %+v", closing)
	}
}

func TestLink_TwoCycle(t *testing.T) {
	f := seededFrame(t, []int32{1, 0, AdjInvalid}, AutoRounds(2), 1)
	runSeeded(t, f)

	if f.edges[0].Chain() != (Chain{Kind: ChainCyclic, Corner: 0}) || f.edges[1].Rank != 1 {
		t.Fatalf("edges = %+v", f.edges[:2])
	}
	// Two points do not make a drawable loop: no closing point.
	if f.out.NumStrokePoints != 4 {
		t.Errorf("NumStrokePoints = %d, want 4", f.out.NumStrokePoints)
	}
	if arc := f.edges[0].TotalArcLength; arc != 1 {
		t.Errorf("TotalArcLength = %v, want 1", arc)
	}
	for slot := 1; slot <= 2; slot++ {
		if v := f.out.Verts[slot]; v.IsPadding() || v.PointID != int32(slot) {
			t.Errorf("slot %d = %+v, want an open point", slot, v)
		}
	}
	if v := f.out.Verts[3]; !v.IsPadding() || v.StrokeID != 0 {
		t.Errorf("trailing pad = %+v", v)
	}
}

func TestChainRangeWidth(t *testing.T) {
	tests := []struct {
		kind   ChainKind
		points uint32
		want   uint32
	}{
		{ChainNone, 4, 0},
		{ChainOpen, 1, 3},
		{ChainOpen, 4, 6},
		{ChainCyclic, 2, 4},
		{ChainCyclic, 3, 6},
		{ChainCyclic, 6, 9},
	}
	for _, tt := range tests {
		ch := Chain{Kind: tt.kind}
		if got := ch.rangeWidth(tt.points); got != tt.want {
			t.Errorf("%v.rangeWidth(%d) = %d, want %d", tt.kind, tt.points, got, tt.want)
		}
	}
}

func TestLink_MergeKeepsSmallestPredecessor(t *testing.T) {
	// 0 and 1 both point at 2.
	succ := []int32{2, 2, AdjNone, AdjInvalid, AdjInvalid, AdjInvalid}
	f := seededFrame(t, succ, AutoRounds(3), 1)
	runSeeded(t, f)

	if f.edges[0].Adj != 2 {
		t.Errorf("winner Adj = %d, want 2", f.edges[0].Adj)
	}
	if f.edges[1].Adj != AdjNone || f.edges[1].Chain() != (Chain{Kind: ChainOpen, Corner: 1}) {
		t.Errorf("loser = %+v, want an isolated open chain", f.edges[1])
	}
	if !f.edges[2].Flags.Has(FlagIsChild) {
		t.Error("merge target should be a child")
	}
	if f.out.NumStrokes != 2 || f.out.NumStrokePoints != 4+3 {
		t.Errorf("NumStrokes = %d, NumStrokePoints = %d; want 2, 7", f.out.NumStrokes, f.out.NumStrokePoints)
	}
	if report := ValidateRanking(f.edges); !report.OK() || report.Tails != 2 {
		t.Errorf("report = %s", report)
	}
}

func TestLink_FixedRoundsLeaveLongChainUnresolved(t *testing.T) {
	// 39 -> 38 -> ... -> 0; two rounds rank corners up to 3 hops from
	// the tail.
	const n = 40
	const resolved = 4
	succ := make([]int32, n)
	for c := range succ {
		succ[c] = int32(c) - 1
	}
	f := seededFrame(t, succ, 2, 4)
	runSeeded(t, f)

	if got := f.counters.unresolved.Load(); got != n-resolved {
		t.Errorf("unresolved = %d, want %d", got, n-resolved)
	}
	for c := range resolved {
		e := f.edges[c]
		if e.Flags.Has(FlagUnresolved) || e.Chain() != (Chain{Kind: ChainOpen, Corner: 0}) || e.Rank != uint32(c) {
			t.Errorf("corner %d = %+v, want resolved open(0) rank %d", c, e, c)
		}
	}
	for c := resolved; c < n; c++ {
		if !f.edges[c].Flags.Has(FlagUnresolved) {
			t.Errorf("corner %d should be unresolved", c)
		}
	}

	// Only the converged prefix is emitted, and every slot is written once.
	if f.out.NumStrokes != 1 || f.out.NumStrokePoints != resolved+2 {
		t.Fatalf("NumStrokes = %d, NumStrokePoints = %d; want 1, %d", f.out.NumStrokes, f.out.NumStrokePoints, resolved+2)
	}
	seen := map[int32]bool{}
	for s := range f.out.UsedSlots() {
		v := f.out.Verts[s]
		if v.IsPadding() {
			continue
		}
		if seen[v.PointID] {
			t.Fatalf("slot %d written twice", v.PointID)
		}
		seen[v.PointID] = true
	}
	if len(seen) != resolved {
		t.Errorf("drawn points = %d, want %d", len(seen), resolved)
	}

	report := ValidateRanking(f.edges)
	if !report.OK() || report.Unresolved != n-resolved {
		t.Errorf("report = %s", report)
	}
}

func TestLink_FixedRoundsAscendingChain(t *testing.T) {
	// 0 -> 1 -> ... -> 39; the tail has the largest index, so no window
	// of two rounds sees it from the head.
	const n = 40
	succ := make([]int32, n)
	for c := range succ {
		succ[c] = int32(c) + 1
	}
	succ[n-1] = AdjNone

	f := seededFrame(t, succ, 2, 4)
	runSeeded(t, f)

	for c := range n {
		e := f.edges[c]
		if e.Flags.Has(FlagCyclic) {
			t.Fatalf("corner %d marked cyclic on an open chain", c)
		}
		resolved := c >= n-4
		if got := e.Flags.Has(FlagUnresolved); got == resolved {
			t.Errorf("corner %d: unresolved = %v, want %v", c, got, !resolved)
		}
		if resolved && (e.Chain() != (Chain{Kind: ChainOpen, Corner: n - 1}) || e.Rank != uint32(n-1-c)) {
			t.Errorf("corner %d = %+v, want open(%d) rank %d", c, e, n-1, n-1-c)
		}
	}
	if got := f.counters.unresolved.Load(); got != n-4 {
		t.Errorf("unresolved = %d, want %d", got, n-4)
	}
	if f.out.NumStrokes != 1 || f.out.NumStrokePoints != 4+2 {
		t.Errorf("NumStrokes = %d, NumStrokePoints = %d; want 1, 6", f.out.NumStrokes, f.out.NumStrokePoints)
	}

	report := ValidateRanking(f.edges)
	if !report.OK() || report.Cyclic != 0 || report.Tails != 1 || report.Unresolved != n-4 {
		t.Errorf("report = %s", report)
	}

	// Enough rounds rank the whole chain.
	f = seededFrame(t, succ, AutoRounds(n), 4)
	runSeeded(t, f)
	if tail := f.edges[n-1]; tail.TotalStrokeLength != n || f.counters.unresolved.Load() != 0 {
		t.Errorf("auto rounds: tail = %+v, unresolved = %d", tail, f.counters.unresolved.Load())
	}
}

func TestLink_FixedRoundsLongCycle(t *testing.T) {
	// A ten-corner loop cannot be proven closed in one round.
	const n = 10
	succ := make([]int32, n)
	for c := range succ {
		succ[c] = int32((c + 1) % n)
	}

	f := seededFrame(t, succ, 1, 4)
	runSeeded(t, f)

	for c := range n {
		e := f.edges[c]
		if e.Flags.Has(FlagCyclic) || !e.Flags.Has(FlagUnresolved) {
			t.Errorf("corner %d flags = %b, want unresolved only", c, e.Flags)
		}
		if e.Chain().Kind != ChainNone {
			t.Errorf("corner %d: Chain() = %+v", c, e.Chain())
		}
	}
	if got := f.counters.unresolved.Load(); got != n {
		t.Errorf("unresolved = %d, want %d", got, n)
	}
	if f.out.NumStrokes != 0 || f.out.NumStrokePoints != 0 {
		t.Errorf("NumStrokes = %d, NumStrokePoints = %d; want nothing emitted", f.out.NumStrokes, f.out.NumStrokePoints)
	}

	f = seededFrame(t, succ, AutoRounds(n), 4)
	runSeeded(t, f)
	if e := f.edges[7]; e.Chain() != (Chain{Kind: ChainCyclic, Corner: 0}) || e.Flags.Has(FlagUnresolved) {
		t.Errorf("auto rounds: corner 7 = %+v", e)
	}
}

func TestCompact_DropsStrokesPastCapacity(t *testing.T) {
	// Five isolated edges need 15 slots; the buffer holds 10.
	succ := []int32{AdjNone, AdjNone, AdjNone, AdjNone, AdjNone}
	f := seededFrame(t, succ, AutoRounds(5), 1)
	runSeeded(t, f)

	if f.out.NumStrokes != 5 || f.out.NumStrokePoints != 15 {
		t.Fatalf("NumStrokes = %d, NumStrokePoints = %d; want 5, 15", f.out.NumStrokes, f.out.NumStrokePoints)
	}
	if got := f.counters.dropped.Load(); got != 2 {
		t.Errorf("dropped = %d, want 2", got)
	}
	if f.out.UsedSlots() != 10 {
		t.Errorf("UsedSlots() = %d, want 10", f.out.UsedSlots())
	}
	if got := f.out.StrokeRanges(); len(got) != 3 {
		t.Errorf("StrokeRanges() = %+v, want 3 ranges", got)
	}
	if v := f.out.Verts[9]; !v.IsPadding() || v.StrokeID != -1 {
		t.Errorf("unclaimed slot = %+v", v)
	}
}

func TestLink_DeterministicAcrossWorkers(t *testing.T) {
	// Interleaved chains and cycles spread over several workgroups.
	const n = 3000
	succ := make([]int32, n)
	for c := range succ {
		switch {
		case c%7 == 6:
			succ[c] = AdjInvalid
		case c%7 == 5:
			succ[c] = AdjNone
		default:
			succ[c] = int32(c + 1)
		}
	}
	succ[n-1] = 0

	ref := seededFrame(t, succ, AutoRounds(n), 1)
	runSeeded(t, ref)
	for _, workers := range []int{3, 8} {
		f := seededFrame(t, succ, AutoRounds(n), workers)
		runSeeded(t, f)
		for c := range n {
			a, b := f.edges[c], ref.edges[c]
			a.StrokePointsOffset, b.StrokePointsOffset = 0, 0
			a.StrokeIndex, b.StrokeIndex = 0, 0
			if a != b {
				t.Fatalf("workers=%d: corner %d differs: %+v vs %+v", workers, c, a, b)
			}
		}
		if f.out.NumStrokePoints != ref.out.NumStrokePoints {
			t.Errorf("workers=%d: NumStrokePoints = %d, want %d", workers, f.out.NumStrokePoints, ref.out.NumStrokePoints)
		}
	}
}
