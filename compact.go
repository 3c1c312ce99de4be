package lineart

import (
	"sync/atomic"

	"github.com/gogpu/lineart/internal/parallel"
)

// compact assigns every complete chain a slot range and scatters its
// points into the dense buffers.
func (f *cpuFrame) compact() error {
	n := len(f.edges)
	capacity := len(f.out.Verts)

	if err := f.dispatch(n, f.stampTail); err != nil {
		return err
	}
	if err := f.dispatch(n, f.assignOffsets); err != nil {
		return err
	}
	if err := f.dispatch(capacity, f.invalidateSlot); err != nil {
		return err
	}
	if err := f.dispatch(n, f.claimSlots); err != nil {
		return err
	}
	if err := f.dispatch(n, f.scatter); err != nil {
		return err
	}

	if dropped := f.counters.dropped.Load(); dropped > 0 {
		Logger().Warn("lineart: dense buffer full, strokes dropped",
			"dropped", dropped,
			"capacity", capacity,
			"requested", f.counters.numStrokePoints.Load())
	}
	Logger().Debug("lineart: compacted",
		"strokes", f.counters.numStrokes.Load(),
		"points", f.counters.numStrokePoints.Load())
	return nil
}

// ranked reports whether the corner has a usable rank and tail.
func ranked(e *StrokeEdge) bool {
	return e.Valid() && !e.Flags.Has(FlagUnresolved) && e.MinPoint != InvalidIndex
}

// stampTail publishes the chain's point count and arc length on the tail.
func (f *cpuFrame) stampTail(c int) {
	e := &f.edges[c]
	if !ranked(e) {
		return
	}
	parallel.AtomicMaxUint32(&f.tailLen[e.MinPoint], e.Rank+1)
	parallel.AtomicMaxFloat32(&f.tailArc[e.MinPoint], e.DistFromTail)
}

// assignOffsets bump-allocates a stroke index and a slot range for every
// tail. Ranges that do not fit are dropped.
func (f *cpuFrame) assignOffsets(c int) {
	e := &f.edges[c]
	if !ranked(e) || !e.IsTail(c) {
		return
	}

	ch := e.Chain()
	points := f.tailLen[c]
	width := ch.rangeWidth(points)

	e.StrokeIndex = f.counters.numStrokes.Add(1) - 1
	off := f.counters.numStrokePoints.Add(width) - width
	e.TotalStrokeLength = points
	e.TotalArcLength = parallel.Float32At(&f.tailArc[c])
	if ch.closes(points) && e.Adj >= 0 {
		e.TotalArcLength += e.Pos.Distance(f.edges[e.Adj].Pos)
	}

	if uint64(off)+uint64(width) > uint64(len(f.out.Verts)) {
		f.counters.dropped.Add(1)
		return
	}
	e.StrokePointsOffset = off
}

// invalidateSlot turns a dense slot into a no-draw padding vertex.
func (f *cpuFrame) invalidateSlot(s int) {
	f.out.Verts[s] = paddingVert
	f.out.Colors[s] = DenseColorVert{}
	f.owner[s] = InvalidIndex
}

// slotPlan lists the dense slots a corner writes.
type slotPlan struct {
	point   uint32
	lead    uint32
	trail   uint32
	closing uint32
	tail    bool
	cyclic  bool
}

// plan returns the slots of corner c, or false if it writes nothing.
func (f *cpuFrame) plan(c int) (slotPlan, bool) {
	e := &f.edges[c]
	if !ranked(e) {
		return slotPlan{}, false
	}
	t := &f.edges[e.MinPoint]
	off := t.StrokePointsOffset
	if off == InvalidIndex || e.Rank >= t.TotalStrokeLength {
		return slotPlan{}, false
	}

	ch := t.Chain()
	p := slotPlan{
		point:   off + 1 + e.Rank,
		lead:    off,
		trail:   off + ch.rangeWidth(t.TotalStrokeLength) - 1,
		closing: InvalidIndex,
		tail:    e.IsTail(c),
		cyclic:  ch.closes(t.TotalStrokeLength),
	}
	if p.cyclic {
		p.closing = off + 1 + t.TotalStrokeLength
	}
	return p, true
}

// claimSlots records the smallest corner writing each slot. Well-formed
// chains never collide; the claim keeps scatter race-free when a fixed
// round budget leaves chains partially ranked.
func (f *cpuFrame) claimSlots(c int) {
	p, ok := f.plan(c)
	if !ok {
		return
	}
	self := uint32(c) //nolint:gosec // corner index fits uint32
	parallel.AtomicMinUint32(&f.owner[p.point], self)
	if p.tail {
		parallel.AtomicMinUint32(&f.owner[p.lead], self)
		parallel.AtomicMinUint32(&f.owner[p.trail], self)
		if p.cyclic {
			parallel.AtomicMinUint32(&f.owner[p.closing], self)
		}
	}
}

// scatter writes the slots owned by corner c.
func (f *cpuFrame) scatter(c int) {
	p, ok := f.plan(c)
	if !ok {
		return
	}
	self := uint32(c) //nolint:gosec // corner index fits uint32
	owns := func(s uint32) bool { return atomic.LoadUint32(&f.owner[s]) == self }

	e := &f.edges[c]
	t := &f.edges[e.MinPoint]
	style := &f.job.Style
	color := DenseColorVert{VCol: style.Color.Vec4(), FCol: style.FillColor.Vec4()}

	point := func(slot uint32, u float32) DenseStrokeVert {
		pid := int32(slot) //nolint:gosec // slot index fits int32
		if p.cyclic {
			pid = -pid
		}
		return DenseStrokeVert{
			Pos:              e.Pos,
			Radius:           style.PointRadius(),
			Mat:              style.MaterialIndex(),
			StrokeID:         int32(p.lead), //nolint:gosec // slot index fits int32
			PointID:          pid,
			PackedAspHardRot: style.PackedShape(),
			UStroke:          u,
			Opacity:          style.Opacity,
		}
	}

	if owns(p.point) {
		f.out.Verts[p.point] = point(p.point, e.DistFromTail)
		f.out.Colors[p.point] = color
	}
	if !p.tail {
		return
	}
	if owns(p.lead) {
		f.out.Verts[p.lead] = DenseStrokeVert{Pos: e.Pos, Mat: -1, StrokeID: int32(p.trail)} //nolint:gosec // slot index fits int32
	}
	if owns(p.trail) {
		f.out.Verts[p.trail] = DenseStrokeVert{Pos: e.Pos, Mat: -1, StrokeID: int32(p.lead)} //nolint:gosec // slot index fits int32
	}
	if p.cyclic && owns(p.closing) {
		f.out.Verts[p.closing] = point(p.closing, t.TotalArcLength)
		f.out.Colors[p.closing] = color
	}
}
