package lineart

import (
	"math"

	"github.com/chewxy/math32"
)

// Option configures an Extractor during creation.
//
// Example:
//
//	ex, err := lineart.NewExtractor(mesh,
//	    lineart.WithWorkers(8),
//	    lineart.WithStyle(style),
//	)
type Option func(*options)

// BackendKind selects where the kernels run.
type BackendKind uint8

const (
	// BackendAuto uses a registered GPU backend when one is available
	// and falls back to the CPU otherwise.
	BackendAuto BackendKind = iota
	// BackendCPU always runs the kernels on the worker pool.
	BackendCPU
	// BackendGPU requires a registered GPU backend.
	BackendGPU
)

// String returns the backend name.
func (k BackendKind) String() string {
	switch k {
	case BackendAuto:
		return "auto"
	case BackendCPU:
		return "cpu"
	case BackendGPU:
		return "gpu"
	default:
		return "unknown"
	}
}

// DefaultMaxFanSteps bounds the walk around a vertex when resolving a
// corner's successor.
const DefaultMaxFanSteps = 64

type options struct {
	workers     int
	rounds      int
	weldEpsilon float32
	creaseCos   float32
	crease      bool
	maxFanSteps int
	style       Style
	backend     BackendKind
	keepEdges   bool
}

func defaultOptions() options {
	return options{
		workers:     0, // GOMAXPROCS
		rounds:      0, // derived from the valid corner count
		weldEpsilon: DefaultWeldEpsilon,
		maxFanSteps: DefaultMaxFanSteps,
		style:       DefaultStyle(),
		backend:     BackendAuto,
	}
}

// WithWorkers sets the number of CPU workers. Zero or negative uses
// GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithPointerJumpRounds fixes the number of pointer-jumping rounds for
// both the tail search and list ranking. A chain longer than 2^n corners
// is not fully ranked: its unresolved corners are flagged and skipped by
// the compactor. Zero (the default) sizes the rounds per frame so that
// every chain converges.
func WithPointerJumpRounds(n int) Option {
	return func(o *options) {
		o.rounds = max(n, 0)
	}
}

// WithWeldEpsilon sets the position weld distance used when building
// adjacency. Zero welds only identical positions.
func WithWeldEpsilon(eps float32) Option {
	return func(o *options) {
		o.weldEpsilon = eps
	}
}

// WithCreaseAngle additionally emits edges between two front-facing
// faces whose normals differ by more than degrees.
func WithCreaseAngle(degrees float32) Option {
	return func(o *options) {
		o.crease = degrees > 0
		o.creaseCos = creaseCos(degrees)
	}
}

// WithMaxFanSteps bounds the successor walk around a vertex.
func WithMaxFanSteps(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxFanSteps = n
		}
	}
}

// WithStyle sets the stroke appearance.
func WithStyle(s Style) Option {
	return func(o *options) {
		o.style = s
	}
}

// WithEdgeReadback keeps the per-corner records of every frame so that
// Extractor.Edges returns them. Off by default: on a GPU backend it adds
// a readback of the whole record buffer to every frame.
func WithEdgeReadback(on bool) Option {
	return func(o *options) {
		o.keepEdges = on
	}
}

// WithBackend selects the compute backend.
func WithBackend(k BackendKind) Option {
	return func(o *options) {
		o.backend = k
	}
}

// creaseCos converts a crease angle in degrees to the normal cosine it is
// compared against.
func creaseCos(degrees float32) float32 {
	return math32.Cos(degrees * math.Pi / 180)
}
