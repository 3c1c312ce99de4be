// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

//go:build !nogpu

// dispatcher.go owns the compute pipelines of the extraction kernels, the
// per-mesh GPU buffers and the encode/submit/readback sequence of a frame.

package gpu

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/lineart"
)

const (
	// fenceTimeout is the maximum time to wait for one frame.
	fenceTimeout = 5 * time.Second

	// maxWorkgroups is the per-dimension dispatch limit guaranteed by
	// gputypes.DefaultLimits.
	maxWorkgroups = 65535
)

// errTooLarge is returned when a pass would exceed the dispatch limit.
var errTooLarge = errors.New("lineart gpu: mesh exceeds the workgroup dispatch limit")

// Dispatcher compiles the kernels and runs frames on one HAL device.
//
// All kernels share one shader module and one bind group layout:
//
//	@binding(0) uniform            config
//	@binding(1) storage(read)      vertices
//	@binding(2) storage(read)      corners
//	@binding(3) storage(rw)        strokes
//	@binding(4) storage(read)      pj_src
//	@binding(5) storage(rw)        pj_dst
//	@binding(6) storage(rw)        scratch (atomic)
//	@binding(7) storage(rw)        dense
//	@binding(8) storage(rw)        colors
type Dispatcher struct {
	mu sync.RWMutex

	device hal.Device
	queue  hal.Queue

	module         hal.ShaderModule
	bgLayout       hal.BindGroupLayout
	pipelineLayout hal.PipelineLayout
	pipelines      [kernelCount]hal.ComputePipeline

	initialized bool
}

// NewDispatcher creates a dispatcher for the given device and queue. Init
// must be called before Run.
func NewDispatcher(device hal.Device, queue hal.Queue) *Dispatcher {
	return &Dispatcher{device: device, queue: queue}
}

func bindGroupLayoutEntries() []gputypes.BindGroupLayoutEntry {
	entry := func(binding uint32, typ gputypes.BufferBindingType) gputypes.BindGroupLayoutEntry {
		return gputypes.BindGroupLayoutEntry{
			Binding:    binding,
			Visibility: gputypes.ShaderStageCompute,
			Buffer:     &gputypes.BufferBindingLayout{Type: typ},
		}
	}
	return []gputypes.BindGroupLayoutEntry{
		entry(0, gputypes.BufferBindingTypeUniform),
		entry(1, gputypes.BufferBindingTypeReadOnlyStorage),
		entry(2, gputypes.BufferBindingTypeReadOnlyStorage),
		entry(3, gputypes.BufferBindingTypeStorage),
		entry(4, gputypes.BufferBindingTypeReadOnlyStorage),
		entry(5, gputypes.BufferBindingTypeStorage),
		entry(6, gputypes.BufferBindingTypeStorage),
		entry(7, gputypes.BufferBindingTypeStorage),
		entry(8, gputypes.BufferBindingTypeStorage),
	}
}

// Init compiles the shader module and creates one pipeline per kernel.
// Calling Init on an initialized dispatcher is a no-op.
func (d *Dispatcher) Init() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.initialized {
		return nil
	}

	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "lineart",
		Source: hal.ShaderSource{WGSL: lineartShaderSource},
	})
	if err != nil {
		return fmt.Errorf("lineart gpu: create shader module: %w", err)
	}
	d.module = module

	entries := bindGroupLayoutEntries()
	bgLayout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   "lineart_bgl",
		Entries: entries,
	})
	if err != nil {
		d.destroyLocked()
		return fmt.Errorf("lineart gpu: create bind group layout: %w", err)
	}
	d.bgLayout = bgLayout

	pipelineLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "lineart_pl",
		BindGroupLayouts: []hal.BindGroupLayout{bgLayout},
	})
	if err != nil {
		d.destroyLocked()
		return fmt.Errorf("lineart gpu: create pipeline layout: %w", err)
	}
	d.pipelineLayout = pipelineLayout

	for k := kernel(0); k < kernelCount; k++ {
		pipeline, err := d.device.CreateComputePipeline(&hal.ComputePipelineDescriptor{
			Label:  "lineart_" + k.String(),
			Layout: pipelineLayout,
			Compute: hal.ComputeState{
				Module:     module,
				EntryPoint: k.String(),
			},
		})
		if err != nil {
			d.destroyLocked()
			return fmt.Errorf("lineart gpu: create pipeline %s: %w", k, err)
		}
		d.pipelines[k] = pipeline
	}

	slogger().Debug("lineart gpu: pipelines initialized",
		"kernels", int(kernelCount),
		"bindings", len(entries),
		"shader_bytes", len(lineartShaderSource))

	d.initialized = true
	return nil
}

// destroyLocked releases whatever Init created so far.
func (d *Dispatcher) destroyLocked() {
	for k := range d.pipelines {
		if d.pipelines[k] != nil {
			d.device.DestroyComputePipeline(d.pipelines[k])
			d.pipelines[k] = nil
		}
	}
	if d.pipelineLayout != nil {
		d.device.DestroyPipelineLayout(d.pipelineLayout)
		d.pipelineLayout = nil
	}
	if d.bgLayout != nil {
		d.device.DestroyBindGroupLayout(d.bgLayout)
		d.bgLayout = nil
	}
	if d.module != nil {
		d.device.DestroyShaderModule(d.module)
		d.module = nil
	}
	d.initialized = false
}

// Close releases the pipelines. Buffers allocated with AllocateBuffers
// must be destroyed separately.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.destroyLocked()
}

// Buffers holds the GPU buffers of one mesh size. They are reused across
// frames as long as the corner and face counts do not change.
type Buffers struct {
	Config   hal.Buffer
	Vertices hal.Buffer
	Corners  hal.Buffer
	Strokes  hal.Buffer
	JumpA    hal.Buffer
	JumpB    hal.Buffer
	Scratch  hal.Buffer
	Dense    hal.Buffer
	Colors   hal.Buffer

	// Readback targets.
	StrokesStaging hal.Buffer
	DenseStaging   hal.Buffer
	ColorsStaging  hal.Buffer
	HeaderStaging  hal.Buffer

	// bindGroups[0] reads JumpA and writes JumpB; bindGroups[1] the
	// reverse.
	bindGroups [2]hal.BindGroup

	vertices int
	corners  int
	faces    int
}

// Fits reports whether the buffers were allocated for this mesh size.
func (b *Buffers) Fits(vertices, corners, faces int) bool {
	return b != nil && b.vertices == vertices && b.corners == corners && b.faces == faces
}

// Capacity returns the number of dense slots.
func (b *Buffers) Capacity() int { return 2 * b.corners }

type bufferSizes struct {
	vertices uint64
	corners  uint64
	strokes  uint64
	jump     uint64
	scratch  uint64
	dense    uint64
	colors   uint64
}

func computeBufferSizes(vertices, corners, faces int) bufferSizes {
	v, c := uint64(vertices), uint64(corners) //nolint:gosec // non-negative
	capacity := 2 * c
	return bufferSizes{
		vertices: v * vertexSize,
		corners:  c * cornerSize,
		strokes:  c * strokeEdgeSize,
		jump:     c * jumpStateSize,
		scratch:  uint64(scratchWords(corners, faces, 2*corners)) * 4, //nolint:gosec // non-negative
		dense:    capacity * denseVertSize,
		colors:   capacity * colorVertSize,
	}
}

// AllocateBuffers creates the buffers and both bind groups for a mesh
// size. The caller must call DestroyBuffers when done.
func (d *Dispatcher) AllocateBuffers(vertices, corners, faces int) (*Buffers, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.initialized {
		return nil, fmt.Errorf("lineart gpu: dispatcher not initialized, call Init() first")
	}
	if workgroups(uint32(2*corners)) > maxWorkgroups { //nolint:gosec // checked against the limit
		return nil, errTooLarge
	}

	sz := computeBufferSizes(vertices, corners, faces)
	bufs := &Buffers{vertices: vertices, corners: corners, faces: faces}

	upload := gputypes.BufferUsageStorage | gputypes.BufferUsageCopyDst
	work := gputypes.BufferUsageStorage
	readable := gputypes.BufferUsageStorage | gputypes.BufferUsageCopySrc
	staging := gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst

	specs := []struct {
		target *hal.Buffer
		label  string
		size   uint64
		usage  gputypes.BufferUsage
	}{
		{&bufs.Config, "lineart_config", configSize, gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst},
		{&bufs.Vertices, "lineart_vertices", sz.vertices, upload},
		{&bufs.Corners, "lineart_corners", sz.corners, upload},
		{&bufs.Strokes, "lineart_strokes", sz.strokes, readable},
		{&bufs.JumpA, "lineart_jump_a", sz.jump, work},
		{&bufs.JumpB, "lineart_jump_b", sz.jump, work},
		{&bufs.Scratch, "lineart_scratch", sz.scratch, readable | gputypes.BufferUsageCopyDst}, // header zeroed per frame
		{&bufs.Dense, "lineart_dense", sz.dense, readable},
		{&bufs.Colors, "lineart_colors", sz.colors, readable},
		{&bufs.StrokesStaging, "lineart_strokes_staging", sz.strokes, staging},
		{&bufs.DenseStaging, "lineart_dense_staging", sz.dense, staging},
		{&bufs.ColorsStaging, "lineart_colors_staging", sz.colors, staging},
		{&bufs.HeaderStaging, "lineart_header_staging", headerSize, staging},
	}
	for _, s := range specs {
		buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: s.label,
			Size:  s.size,
			Usage: s.usage,
		})
		if err != nil {
			d.destroyBuffers(bufs)
			return nil, fmt.Errorf("lineart gpu: create %s buffer: %w", s.label, err)
		}
		*s.target = buf
	}

	for i, jump := range [2][2]hal.Buffer{{bufs.JumpA, bufs.JumpB}, {bufs.JumpB, bufs.JumpA}} {
		bg, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
			Label:   fmt.Sprintf("lineart_bg_%d", i),
			Layout:  d.bgLayout,
			Entries: bindGroupEntries(bufs, jump[0], jump[1]),
		})
		if err != nil {
			d.destroyBuffers(bufs)
			return nil, fmt.Errorf("lineart gpu: create bind group %d: %w", i, err)
		}
		bufs.bindGroups[i] = bg
	}

	slogger().Debug("lineart gpu: buffers allocated",
		"corners", corners,
		"faces", faces,
		"strokes_bytes", sz.strokes,
		"scratch_bytes", sz.scratch,
		"dense_bytes", sz.dense)
	return bufs, nil
}

func bindGroupEntries(bufs *Buffers, src, dst hal.Buffer) []gputypes.BindGroupEntry {
	entry := func(binding uint32, buf hal.Buffer) gputypes.BindGroupEntry {
		return gputypes.BindGroupEntry{
			Binding: binding,
			Resource: gputypes.BufferBinding{
				Buffer: buf.NativeHandle(),
				Offset: 0,
				Size:   0, // whole buffer
			},
		}
	}
	return []gputypes.BindGroupEntry{
		entry(0, bufs.Config),
		entry(1, bufs.Vertices),
		entry(2, bufs.Corners),
		entry(3, bufs.Strokes),
		entry(4, src),
		entry(5, dst),
		entry(6, bufs.Scratch),
		entry(7, bufs.Dense),
		entry(8, bufs.Colors),
	}
}

// DestroyBuffers releases the buffers and bind groups. bufs must not be
// used afterwards.
func (d *Dispatcher) DestroyBuffers(bufs *Buffers) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	d.destroyBuffers(bufs)
}

func (d *Dispatcher) destroyBuffers(bufs *Buffers) {
	if bufs == nil {
		return
	}
	for _, bg := range bufs.bindGroups {
		if bg != nil {
			d.device.DestroyBindGroup(bg)
		}
	}
	for _, b := range []hal.Buffer{
		bufs.Config, bufs.Vertices, bufs.Corners, bufs.Strokes,
		bufs.JumpA, bufs.JumpB, bufs.Scratch, bufs.Dense, bufs.Colors,
		bufs.StrokesStaging, bufs.DenseStaging, bufs.ColorsStaging, bufs.HeaderStaging,
	} {
		if b != nil {
			d.device.DestroyBuffer(b)
		}
	}
	*bufs = Buffers{}
}

// Readback holds the host copies of one frame's results.
type Readback struct {
	Strokes  []byte
	Dense    []byte
	Colors   []byte
	Counters frameCounters
}

type readTarget struct {
	label string
	buf   hal.Buffer
	dst   []byte
}

type bufferCopy struct {
	src, dst hal.Buffer
	size     uint64
}

// frameResources tracks per-frame GPU objects for cleanup.
type frameResources struct {
	device hal.Device
	cmdBuf hal.CommandBuffer
	fence  hal.Fence
}

func (r *frameResources) cleanup() {
	if r.fence != nil {
		r.device.DestroyFence(r.fence)
	}
	if r.cmdBuf != nil {
		r.device.FreeCommandBuffer(r.cmdBuf)
	}
}

// Run uploads the mesh data and the uniform, encodes every pass of one
// frame, waits for completion and reads the results back. Stroke records
// are read back only when readStrokes is set.
func (d *Dispatcher) Run(bufs *Buffers, cfg kernelConfig, vertices, corners []byte, rounds int, readStrokes bool) (*Readback, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.initialized {
		return nil, fmt.Errorf("lineart gpu: dispatcher not initialized, call Init() first")
	}
	if bufs == nil || bufs.bindGroups[0] == nil {
		return nil, fmt.Errorf("lineart gpu: buffers must not be nil")
	}

	d.queue.WriteBuffer(bufs.Config, 0, cfg.toBytes())
	d.queue.WriteBuffer(bufs.Vertices, 0, vertices)
	d.queue.WriteBuffer(bufs.Corners, 0, corners)
	d.queue.WriteBuffer(bufs.Scratch, 0, make([]byte, headerSize))

	sz := computeBufferSizes(bufs.vertices, bufs.corners, bufs.faces)
	passes := framePasses(cfg.NumFaces, cfg.NumCorners, cfg.Capacity, rounds)

	res := &frameResources{device: d.device}
	defer res.cleanup()

	if err := d.encode(res, bufs, passes, sz, readStrokes); err != nil {
		return nil, err
	}
	if err := d.submitAndWait(res); err != nil {
		return nil, err
	}

	rb := &Readback{
		Dense:  make([]byte, sz.dense),
		Colors: make([]byte, sz.colors),
	}
	header := make([]byte, headerSize)
	reads := []readTarget{
		{"header", bufs.HeaderStaging, header},
		{"dense", bufs.DenseStaging, rb.Dense},
		{"colors", bufs.ColorsStaging, rb.Colors},
	}
	if readStrokes {
		rb.Strokes = make([]byte, sz.strokes)
		reads = append(reads, readTarget{"strokes", bufs.StrokesStaging, rb.Strokes})
	}
	for _, r := range reads {
		if err := d.queue.ReadBuffer(r.buf, 0, r.dst); err != nil {
			return nil, fmt.Errorf("lineart gpu: read back %s: %w", r.label, err)
		}
	}
	rb.Counters = decodeCounters(header)
	return rb, nil
}

// encode records all passes and the readback copies into one command
// buffer.
func (d *Dispatcher) encode(res *frameResources, bufs *Buffers, passes []pass, sz bufferSizes, readStrokes bool) error {
	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "lineart_frame",
	})
	if err != nil {
		return fmt.Errorf("lineart gpu: create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding("lineart_frame"); err != nil {
		return fmt.Errorf("lineart gpu: begin encoding: %w", err)
	}

	parity := 0
	var perStage [lineart.StageCount]int
	for _, p := range passes {
		wg := workgroups(p.elements)
		if wg > maxWorkgroups {
			encoder.DiscardEncoding()
			return errTooLarge
		}
		if wg > 0 {
			cp := encoder.BeginComputePass(&hal.ComputePassDescriptor{
				Label: "lineart_" + p.kernel.String(),
			})
			cp.SetPipeline(d.pipelines[p.kernel])
			cp.SetBindGroup(0, bufs.bindGroups[parity], nil)
			cp.Dispatch(wg, 1, 1)
			cp.End()
			perStage[p.kernel.stage()]++
		}
		if p.swap {
			parity ^= 1
		}
	}

	copies := []bufferCopy{
		{bufs.Scratch, bufs.HeaderStaging, headerSize},
		{bufs.Dense, bufs.DenseStaging, sz.dense},
		{bufs.Colors, bufs.ColorsStaging, sz.colors},
	}
	if readStrokes {
		copies = append(copies, bufferCopy{bufs.Strokes, bufs.StrokesStaging, sz.strokes})
	}
	for _, c := range copies {
		encoder.CopyBufferToBuffer(c.src, c.dst, []hal.BufferCopy{
			{SrcOffset: 0, DstOffset: 0, Size: c.size},
		})
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		return fmt.Errorf("lineart gpu: end encoding: %w", err)
	}
	res.cmdBuf = cmdBuf

	slogger().Debug("lineart gpu: frame encoded",
		"corners", bufs.corners,
		lineart.StageClassify.String(), perStage[lineart.StageClassify],
		lineart.StageLink.String(), perStage[lineart.StageLink],
		lineart.StageCompact.String(), perStage[lineart.StageCompact])
	return nil
}

func (d *Dispatcher) submitAndWait(res *frameResources) error {
	fence, err := d.device.CreateFence()
	if err != nil {
		return fmt.Errorf("lineart gpu: create fence: %w", err)
	}
	res.fence = fence

	if err := d.queue.Submit([]hal.CommandBuffer{res.cmdBuf}, fence, 1); err != nil {
		return fmt.Errorf("lineart gpu: submit: %w", err)
	}
	ok, err := d.device.Wait(fence, 1, fenceTimeout)
	if err != nil {
		return fmt.Errorf("lineart gpu: wait for GPU: %w", err)
	}
	if !ok {
		return fmt.Errorf("lineart gpu: GPU timeout after %v", fenceTimeout)
	}
	return nil
}
