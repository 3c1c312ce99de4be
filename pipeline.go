package lineart

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/lineart/internal/parallel"
)

// Extractor turns a mesh into stroke geometry, one frame per Extract call.
//
// The adjacency is built once in NewExtractor (and again in SetMesh); the
// per-frame buffers are reused between frames. An Extractor serializes
// its own calls and is safe for concurrent use, but frames never overlap.
type Extractor struct {
	mu     sync.Mutex
	opts   options
	mesh   *Mesh
	adj    *Adjacency
	gpu    ComputeBackend
	disp   *parallel.Dispatcher
	frame  *cpuFrame
	edges  []StrokeEdge
	closed bool
}

// NewExtractor validates m, builds its adjacency and selects a backend.
//
// With BackendGPU and no registered backend it returns
// ErrComputeUnsupported; with BackendAuto it falls back to the CPU.
func NewExtractor(m *Mesh, opts ...Option) (*Extractor, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	e := &Extractor{opts: o}
	switch o.backend {
	case BackendGPU:
		e.gpu = Backend()
		if e.gpu == nil {
			return nil, fmt.Errorf("%w: no GPU backend registered", ErrComputeUnsupported)
		}
	case BackendAuto:
		e.gpu = Backend()
		if e.gpu == nil {
			Logger().Debug("lineart: no GPU backend registered, using CPU")
		}
	}

	if err := e.setMesh(m); err != nil {
		return nil, err
	}
	backend := "cpu"
	if e.gpu != nil {
		backend = e.gpu.Name()
	}
	Logger().Info("lineart: extractor ready",
		"backend", backend,
		"faces", m.FaceCount(),
		"workers", e.opts.workers)
	return e, nil
}

// SetMesh replaces the mesh and rebuilds the adjacency, or reuses it when
// a mesh with the same positions and indices was seen recently. All
// per-frame buffers are resized on the next Extract.
func (e *Extractor) SetMesh(m *Mesh) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return e.setMesh(m)
}

func (e *Extractor) setMesh(m *Mesh) error {
	adj, err := cachedAdjacency(m, e.opts.weldEpsilon)
	if err != nil {
		return fmt.Errorf("lineart: build adjacency: %w", err)
	}
	e.mesh, e.adj = m, adj
	e.edges = nil
	if e.opts.keepEdges {
		e.edges = make([]StrokeEdge, m.CornerCount())
	}
	return nil
}

// Mesh returns the current mesh.
func (e *Extractor) Mesh() *Mesh {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mesh
}

// Adjacency returns the adjacency of the current mesh.
func (e *Extractor) Adjacency() *Adjacency {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.adj
}

// Edges returns the per-corner records of the last frame, or nil unless
// the extractor was created with WithEdgeReadback(true). The slice is
// overwritten by the next Extract.
func (e *Extractor) Edges() []StrokeEdge {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.edges
}

// Extract runs one frame and returns a freshly allocated output.
func (e *Extractor) Extract(ctx context.Context, v View) (*Output, error) {
	out := &Output{}
	if err := e.ExtractInto(ctx, v, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ExtractInto runs one frame into out, reusing its buffers when they are
// large enough.
//
// ctx is checked between stages. A cancelled frame is dropped: the error
// wraps ctx.Err() and out must not be used.
func (e *Extractor) ExtractInto(ctx context.Context, v View, out *Output) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("lineart: frame dropped: %w", err)
	}

	start := time.Now()
	job := &Job{
		Mesh:        e.mesh,
		Adjacency:   e.adj,
		View:        v,
		Style:       e.opts.style,
		Rounds:      e.opts.rounds,
		MaxFanSteps: e.opts.maxFanSteps,
		Crease:      e.opts.crease,
		CreaseCos:   e.opts.creaseCos,
		Edges:       e.edges,
	}

	backend := "cpu"
	var err error
	if e.gpu != nil {
		backend = e.gpu.Name()
		err = e.gpu.Extract(ctx, job, out)
		if errors.Is(err, ErrFallbackToCPU) {
			Logger().Warn("lineart: GPU backend declined frame, using CPU", "err", err)
			backend = "cpu"
			err = e.extractCPU(ctx, job, out)
		}
	} else {
		err = e.extractCPU(ctx, job, out)
	}
	if err != nil {
		return err
	}

	out.Stats.Backend = backend
	out.Stats.Elapsed = time.Since(start)
	return nil
}

func (e *Extractor) extractCPU(ctx context.Context, job *Job, out *Output) error {
	if e.frame == nil {
		e.disp = parallel.NewDispatcher(e.opts.workers)
		e.frame = newCPUFrame(e.disp)
	}
	err := e.frame.run(job, out, func(s Stage) error {
		if err := ctx.Err(); err != nil {
			Logger().Debug("lineart: frame dropped", "after", s.String())
			return fmt.Errorf("lineart: frame dropped after %s: %w", s, err)
		}
		return nil
	})
	if errors.Is(err, parallel.ErrPoolClosed) {
		return ErrClosed
	}
	return err
}

// Close releases the worker pool. The registered GPU backend is shared
// and stays open.
func (e *Extractor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	if e.disp != nil {
		e.disp.Close()
	}
	return nil
}
