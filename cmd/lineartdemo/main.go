// Command lineartdemo orbits a camera around a procedural mesh, extracts
// the silhouette strokes of every frame and writes a PNG preview of the
// last one.
//
// Usage:
//
//	lineartdemo -primitive sphere -frames 120 -output sphere.png
//	lineartdemo -config scene.yaml -backend cpu -validate
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/chewxy/math32"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/gogpu/lineart"
	_ "github.com/gogpu/lineart/gpu" // register the GPU backend when available
)

// runStats accumulates per-frame statistics.
type runStats struct {
	frames     int
	strokes    int
	points     int
	dropped    int
	unresolved int
	violations int
	backends   map[string]int
	elapsed    time.Duration
}

func (s *runStats) add(out *lineart.Output) {
	s.frames++
	s.strokes += out.Stats.Strokes
	s.points += int(out.NumStrokePoints)
	s.dropped += out.Stats.DroppedStrokes
	s.unresolved += out.Stats.UnresolvedCorners
	s.elapsed += out.Stats.Elapsed
	if s.backends == nil {
		s.backends = make(map[string]int)
	}
	s.backends[out.Stats.Backend]++
}

func (s *runStats) print(p *message.Printer, faces int) {
	p.Printf("mesh:     %d faces\n", faces)
	p.Printf("frames:   %d (%v)\n", s.frames, s.backends)
	p.Printf("strokes:  %d total, %.1f per frame\n", s.strokes, float64(s.strokes)/float64(max(s.frames, 1)))
	p.Printf("points:   %d total\n", s.points)
	if s.dropped > 0 || s.unresolved > 0 {
		p.Printf("dropped:  %d strokes, %d unresolved corners\n", s.dropped, s.unresolved)
	}
	if s.violations > 0 {
		p.Printf("ranking:  %d violations\n", s.violations)
	}
	p.Printf("extract:  %v per frame\n", s.elapsed/time.Duration(max(s.frames, 1)))
}

func run(ctx context.Context, cfg sceneConfig) error {
	m, err := cfg.mesh()
	if err != nil {
		return err
	}
	ex, err := lineart.NewExtractor(m, cfg.options()...)
	if err != nil {
		return fmt.Errorf("create extractor: %w", err)
	}
	defer ex.Close()

	pitch := cfg.Pitch * math32.Pi / 180
	var (
		out   lineart.Output
		stats runStats
		eye   lineart.Vec3
	)

	pb := progressbar.Default(int64(cfg.Frames))
	defer pb.Close()

	for i := range cfg.Frames {
		yaw := 2 * math32.Pi * float32(i) / float32(cfg.Frames)
		eye = lineart.OrbitCamera(lineart.Vec3{}, cfg.Distance, yaw, pitch)
		if err := ex.ExtractInto(ctx, lineart.NewView(eye), &out); err != nil {
			return fmt.Errorf("frame %d: %w", i, err)
		}
		stats.add(&out)

		if cfg.Validate {
			report := lineart.ValidateRanking(ex.Edges())
			if !report.OK() {
				stats.violations += report.Violations
				slog.Warn("ranking violations", "frame", i, "report", report.String())
			}
		}
		_ = pb.Add(1)
	}
	_ = pb.Finish()

	p := message.NewPrinter(language.English)
	stats.print(p, m.FaceCount())

	if cfg.Output == "" {
		return nil
	}
	caption := p.Sprintf("%s  %d strokes  %d points  %s",
		cfg.Primitive, out.Stats.Strokes, out.NumStrokePoints, out.Stats.Backend)
	img := renderPreview(&out, eye, cfg.Width, cfg.Height, caption)
	if err := writePNG(cfg.Output, img); err != nil {
		return err
	}
	slog.Info("preview written", "path", cfg.Output, "width", cfg.Width, "height", cfg.Height)
	return nil
}

func main() {
	cfg, verbose, err := parseArgs(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "lineartdemo: %v\n", err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	lineart.SetLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "lineartdemo: %v\n", err)
		os.Exit(1)
	}
}
