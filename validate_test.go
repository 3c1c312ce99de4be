package lineart

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

// chainEdges returns a consistent open chain 0 -> 1 -> 2 with tail 2.
func chainEdges() []StrokeEdge {
	return []StrokeEdge{
		{Adj: 1, MinPoint: 2, Rank: 2, DistFromTail: 2},
		{Adj: 2, MinPoint: 2, Rank: 1, DistFromTail: 1},
		{Adj: AdjNone, MinPoint: 2},
		{Adj: AdjInvalid, MinPoint: InvalidIndex, Flags: FlagIsInvalid},
	}
}

func TestValidateRanking(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func([]StrokeEdge)
		violations int
		unresolved int
	}{
		{"consistent", func([]StrokeEdge) {}, 0, 0},
		{"rank gap", func(e []StrokeEdge) { e[0].Rank = 3 }, 1, 0},
		{"distance decreases", func(e []StrokeEdge) { e[0].DistFromTail = 0.5 }, 1, 0},
		{"tail with rank", func(e []StrokeEdge) { e[2].Rank = 1 }, 2, 0},
		{"different tail", func(e []StrokeEdge) { e[1].MinPoint = 1 }, 2, 0},
		{"dangling", func(e []StrokeEdge) { e[1].Adj = AdjNone }, 1, 0},
		{"unresolved", func(e []StrokeEdge) { e[0].Flags |= FlagUnresolved; e[0].Rank = 7 }, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			edges := chainEdges()
			tt.mutate(edges)
			r := ValidateRanking(edges)
			if r.Violations != tt.violations || r.Unresolved != tt.unresolved {
				t.Errorf("report = %s, want violations=%d unresolved=%d", r, tt.violations, tt.unresolved)
			}
			if r.Valid != 3 {
				t.Errorf("Valid = %d, want 3", r.Valid)
			}
			if r.OK() != (tt.violations == 0) {
				t.Errorf("OK() = %v", r.OK())
			}
		})
	}
}

func TestRankingReport_String(t *testing.T) {
	r := ValidateRanking(chainEdges())
	want := "valid=3 tails=1 cyclic=0 unresolved=0 maxDist=2 violations=0"
	if r.String() != want {
		t.Errorf("String() = %q, want %q", r.String(), want)
	}
}

func TestLogStrokes(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	ex, err := NewExtractor(NewCube(1), WithBackend(BackendCPU))
	if err != nil {
		t.Fatal(err)
	}
	defer ex.Close()
	out, err := ex.Extract(context.Background(), NewView(V3(10, 10, 0)))
	if err != nil {
		t.Fatal(err)
	}

	buf.Reset()
	LogStrokes(out, 10)
	log := buf.String()
	for _, want := range []string{"count=1", "points=7", "cyclic=true", "length=12"} {
		if !strings.Contains(log, want) {
			t.Errorf("LogStrokes output missing %q:\n%s", want, log)
		}
	}
}
