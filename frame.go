package lineart

import (
	"sync/atomic"

	"github.com/gogpu/lineart/internal/parallel"
)

// faceInfo is the per-face result of the first classifier kernel.
type faceInfo struct {
	normal     Vec3
	front      bool
	degenerate bool
}

// jumpState is one element of the pointer-jumping ping-pong buffers.
type jumpState struct {
	Next int32
	Min  uint32
	Rank uint32
	Dist float32
}

// frameCounters are the only values shared between invocations of one
// kernel besides the scratch arrays. Accessed with sync/atomic only.
type frameCounters struct {
	numStrokes      atomic.Uint32
	numStrokePoints atomic.Uint32
	valid           atomic.Uint32
	dropped         atomic.Uint32
	unresolved      atomic.Uint32
}

func (c *frameCounters) reset() {
	c.numStrokes.Store(0)
	c.numStrokePoints.Store(0)
	c.valid.Store(0)
	c.dropped.Store(0)
	c.unresolved.Store(0)
}

// cpuFrame owns the scratch buffers of the CPU pipeline. It is reused
// across frames and resized whenever the corner count changes.
type cpuFrame struct {
	disp *parallel.Dispatcher
	job  *Job
	out  *Output

	model  Mat4
	normal Mat4
	rounds int

	edges   []StrokeEdge
	faces   []faceInfo
	jump    *parallel.PingPong[jumpState]
	pred    []uint32
	tailLen []uint32
	tailArc []uint32
	owner   []uint32

	counters frameCounters
}

func newCPUFrame(disp *parallel.Dispatcher) *cpuFrame {
	return &cpuFrame{disp: disp, jump: parallel.NewPingPong[jumpState](0)}
}

// resize sizes every per-corner, per-face and per-slot buffer.
func (f *cpuFrame) resize(corners int) {
	if len(f.edges) != corners {
		f.edges = make([]StrokeEdge, corners)
		f.faces = make([]faceInfo, corners/3)
		f.pred = make([]uint32, corners)
		f.tailLen = make([]uint32, corners)
		f.tailArc = make([]uint32, corners)
		f.owner = make([]uint32, 2*corners)
	}
	f.jump.Resize(corners)
}

// run executes all stages of one frame. stageDone is called after every
// barrier; a non-nil return drops the frame.
func (f *cpuFrame) run(job *Job, out *Output, stageDone func(Stage) error) error {
	model := job.View.ObjectToWorld
	normal, err := job.View.NormalMatrix()
	if err != nil {
		return err
	}

	corners := job.Mesh.CornerCount()
	f.job, f.out = job, out
	f.model, f.normal = model, normal
	f.resize(corners)
	f.counters.reset()
	out.Reset(corners, job.Mesh.FaceCount())
	defer func() { f.job, f.out = nil, nil }()

	for _, st := range []struct {
		stage Stage
		fn    func() error
	}{
		{StageClassify, f.classify},
		{StageLink, f.link},
		{StageCompact, f.compact},
	} {
		if err := st.fn(); err != nil {
			return err
		}
		if err := stageDone(st.stage); err != nil {
			return err
		}
	}

	out.NumStrokes = f.counters.numStrokes.Load()
	out.NumStrokePoints = f.counters.numStrokePoints.Load()
	out.Stats.ValidCorners = int(f.counters.valid.Load())
	out.Stats.Strokes = int(out.NumStrokes)
	out.Stats.DroppedStrokes = int(f.counters.dropped.Load())
	out.Stats.UnresolvedCorners = int(f.counters.unresolved.Load())
	out.Stats.Rounds = f.rounds

	if len(job.Edges) == corners {
		copy(job.Edges, f.edges)
	}
	return nil
}

// dispatch runs k over n invocations with a barrier at the end.
func (f *cpuFrame) dispatch(n int, k parallel.Kernel) error {
	return f.disp.Dispatch(n, k)
}

// dispatchSwap runs a ping-pong round and swaps the buffers after it.
func (f *cpuFrame) dispatchSwap(n int, k parallel.Kernel) error {
	if err := f.disp.Dispatch(n, k); err != nil {
		return err
	}
	f.jump.Swap()
	return nil
}
