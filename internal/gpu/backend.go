//go:build !nogpu

package gpu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/lineart"

	// Import Vulkan backend so it registers via init().
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// BackendName is the name the backend reports to lineart.
const BackendName = "gpu"

// Backend runs the extraction pipeline on a GPU. It implements
// lineart.ComputeBackend and lineart.DeviceProviderAware.
//
// The backend either opens its own Vulkan device in Init or runs on a
// device shared through SetDeviceProvider. Shared devices are never
// destroyed by the backend.
type Backend struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	disp *Dispatcher
	bufs *Buffers

	adapterName    string
	gpuReady       bool
	externalDevice bool
}

var (
	_ lineart.ComputeBackend      = (*Backend)(nil)
	_ lineart.DeviceProviderAware = (*Backend)(nil)
)

// NewBackend returns an uninitialized backend.
func NewBackend() *Backend { return &Backend{} }

// Name returns BackendName.
func (b *Backend) Name() string { return BackendName }

// AdapterName returns the name of the adapter in use, if known.
func (b *Backend) AdapterName() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.adapterName
}

// Ready reports whether the backend has a device and compiled pipelines.
func (b *Backend) Ready() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gpuReady
}

// Init opens a Vulkan device unless a device is already in use. The
// returned error wraps lineart.ErrComputeUnsupported.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.gpuReady {
		return nil
	}
	if err := b.initGPU(); err != nil {
		b.releaseLocked()
		return fmt.Errorf("%w: %w", lineart.ErrComputeUnsupported, err)
	}
	return nil
}

// SetLogger routes the backend's logging to l.
func (b *Backend) SetLogger(l *slog.Logger) { setLogger(l) }

func (b *Backend) initGPU() error {
	backend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return errors.New("vulkan backend not available")
	}
	instance, err := backend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	b.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		return errors.New("no GPU adapters found")
	}
	var selected *hal.ExposedAdapter
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}
	if selected == nil {
		selected = &adapters[0]
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		return fmt.Errorf("open device: %w", err)
	}
	b.device = openDev.Device
	b.queue = openDev.Queue
	if err := b.createDispatcher(); err != nil {
		return err
	}
	b.adapterName = selected.Info.Name
	slogger().Info("lineart gpu: backend initialized", "adapter", b.adapterName)
	return nil
}

func (b *Backend) createDispatcher() error {
	b.disp = NewDispatcher(b.device, b.queue)
	if err := b.disp.Init(); err != nil {
		b.disp = nil
		return fmt.Errorf("create pipelines: %w", err)
	}
	b.gpuReady = true
	return nil
}

// SetDeviceProvider switches the backend to a GPU device owned by
// someone else, e.g. a gogpu window. The provider must expose
// HalDevice() any and HalQueue() any returning hal.Device and hal.Queue.
func (b *Backend) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return errors.New("lineart gpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return errors.New("lineart gpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return errors.New("lineart gpu: provider HalQueue is not hal.Queue")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.releaseLocked()
	b.device = device
	b.queue = queue
	b.externalDevice = true
	b.adapterName = "shared"

	if err := b.createDispatcher(); err != nil {
		return fmt.Errorf("lineart gpu: shared device: %w", err)
	}
	slogger().Info("lineart gpu: switched to shared GPU device")
	return nil
}

// Close releases buffers, pipelines and, unless shared, the device.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.releaseLocked()
}

func (b *Backend) releaseLocked() {
	if b.disp != nil {
		if b.bufs != nil {
			b.disp.DestroyBuffers(b.bufs)
		}
		b.disp.Close()
	}
	b.disp = nil
	b.bufs = nil

	if !b.externalDevice {
		if b.device != nil {
			b.device.Destroy()
		}
		if b.instance != nil {
			b.instance.Destroy()
		}
	}
	b.device = nil
	b.queue = nil
	b.instance = nil
	b.gpuReady = false
	b.externalDevice = false
	b.adapterName = ""
}

// Extract runs one frame on the device. Device errors are reported as
// lineart.ErrFallbackToCPU so the extractor can rerun the frame.
func (b *Backend) Extract(ctx context.Context, job *lineart.Job, out *lineart.Output) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.gpuReady {
		return fmt.Errorf("%w: backend not initialized", lineart.ErrFallbackToCPU)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("lineart: frame dropped: %w", err)
	}

	cfg, err := newKernelConfig(job)
	if err != nil {
		return err
	}
	m := job.Mesh
	corners, faces := m.CornerCount(), m.FaceCount()
	rounds := job.Rounds
	if rounds <= 0 {
		rounds = lineart.AutoRounds(corners)
	}

	if !b.bufs.Fits(len(m.Positions), corners, faces) {
		if b.bufs != nil {
			b.disp.DestroyBuffers(b.bufs)
			b.bufs = nil
		}
		bufs, err := b.disp.AllocateBuffers(len(m.Positions), corners, faces)
		if err != nil {
			return fmt.Errorf("%w: %w", lineart.ErrFallbackToCPU, err)
		}
		b.bufs = bufs
	}

	readStrokes := len(job.Edges) == corners
	rb, err := b.disp.Run(b.bufs, cfg, encodeVertices(m), encodeCorners(m, job.Adjacency), rounds, readStrokes)
	if err != nil {
		slogger().Warn("lineart gpu: frame failed", "err", err)
		return fmt.Errorf("%w: %w", lineart.ErrFallbackToCPU, err)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("lineart: frame dropped: %w", err)
	}

	out.Reset(corners, faces)
	decodeDense(rb.Dense, out.Verts)
	decodeColors(rb.Colors, out.Colors)
	if readStrokes {
		decodeStrokeEdges(rb.Strokes, job.Edges)
	}

	n := rb.Counters
	out.NumStrokes = n.strokes
	out.NumStrokePoints = n.points
	out.Stats.ValidCorners = int(n.valid)
	out.Stats.Strokes = int(n.strokes)
	out.Stats.DroppedStrokes = int(n.dropped)
	out.Stats.UnresolvedCorners = int(n.unresolved)
	out.Stats.Rounds = rounds

	if n.dropped > 0 {
		slogger().Warn("lineart gpu: dense buffer full, strokes dropped",
			"dropped", n.dropped,
			"capacity", out.Capacity(),
			"requested", n.points)
	}
	slogger().Debug("lineart gpu: frame extracted",
		"valid", n.valid,
		"strokes", n.strokes,
		"points", n.points,
		"rounds", rounds)
	return nil
}
