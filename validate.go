package lineart

import (
	"fmt"
	"log/slog"
)

// RankingReport summarizes the linker result of one frame.
type RankingReport struct {
	Valid      int
	Tails      int
	Cyclic     int
	Unresolved int
	MaxDist    float32
	// Violations counts links whose rank or distance order is broken:
	// rank(c) != rank(adj(c)) + 1, dist(c) < dist(adj(c)), or a
	// non-zero rank or distance on a tail.
	Violations int
}

// OK reports whether every resolved chain is consistently ranked.
func (r RankingReport) OK() bool { return r.Violations == 0 }

// String formats the report for logs.
func (r RankingReport) String() string {
	return fmt.Sprintf("valid=%d tails=%d cyclic=%d unresolved=%d maxDist=%.4g violations=%d",
		r.Valid, r.Tails, r.Cyclic, r.Unresolved, r.MaxDist, r.Violations)
}

// ValidateRanking checks the rank and distance invariants on the records
// of a finished frame.
func ValidateRanking(edges []StrokeEdge) RankingReport {
	var r RankingReport
	for c := range edges {
		e := &edges[c]
		if !e.Valid() {
			continue
		}
		r.Valid++
		if e.Flags.Has(FlagUnresolved) {
			r.Unresolved++
			continue
		}
		r.MaxDist = max(r.MaxDist, e.DistFromTail)

		if e.IsTail(c) {
			r.Tails++
			if e.Flags.Has(FlagCyclic) {
				r.Cyclic++
			}
			if e.Rank != 0 || e.DistFromTail != 0 {
				r.Violations++
			}
			continue
		}
		if e.Adj < 0 || int(e.Adj) >= len(edges) {
			r.Violations++
			continue
		}
		s := &edges[e.Adj]
		if s.Flags.Has(FlagUnresolved) {
			continue
		}
		if s.MinPoint != e.MinPoint || e.Rank != s.Rank+1 || e.DistFromTail < s.DistFromTail {
			r.Violations++
		}
	}
	return r
}

// LogStrokes writes the first limit strokes of out at debug level.
func LogStrokes(out *Output, limit int) {
	l := Logger()
	ranges := out.StrokeRanges()
	l.Debug("lineart: strokes", "count", len(ranges), "points", out.NumStrokePoints)
	for i, r := range ranges {
		if i >= limit {
			break
		}
		first := &out.Verts[r.Start+1]
		last := &out.Verts[r.End-1]
		l.Debug("lineart: stroke",
			slog.Int("start", r.Start),
			slog.Int("points", r.Points()),
			slog.Bool("cyclic", first.PointID < 0),
			slog.Float64("length", float64(last.UStroke)),
		)
	}
}
