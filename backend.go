package lineart

import (
	"context"
	"errors"
	"sync"
)

// Job is everything a compute backend needs to extract one frame.
type Job struct {
	Mesh      *Mesh
	Adjacency *Adjacency
	View      View
	Style     Style

	// Rounds is the fixed pointer-jumping round count, or 0 to let the
	// backend size it.
	Rounds      int
	MaxFanSteps int
	Crease      bool
	CreaseCos   float32

	// Edges receives the per-corner records when non-nil and sized to
	// the corner count.
	Edges []StrokeEdge
}

// AutoRounds returns the round count that lets pointer jumping converge
// on any chain of at most n corners: 2^rounds > n.
func AutoRounds(n int) int {
	r := 1
	for (1 << r) <= n {
		r++
	}
	return r
}

// ComputeBackend runs the whole extraction pipeline on a device.
//
// Implementations are provided by the gpu sub-package and registered via
// blank import:
//
//	import _ "github.com/gogpu/lineart/gpu"
type ComputeBackend interface {
	// Name returns the backend name (e.g. "vulkan").
	Name() string

	// Init acquires the device. Called once during registration.
	Init() error

	// Close releases device resources.
	Close()

	// Extract runs every stage for one frame and fills out. It returns
	// ErrFallbackToCPU when this frame cannot run on the device.
	Extract(ctx context.Context, job *Job, out *Output) error
}

// DeviceProviderAware is implemented by backends that can run on a GPU
// device owned by someone else (e.g. a gogpu window).
type DeviceProviderAware interface {
	SetDeviceProvider(provider any) error
}

var (
	backendMu  sync.RWMutex
	gpuBackend ComputeBackend
)

// RegisterBackend registers the GPU compute backend.
//
// Only one backend can be registered; a later call replaces and closes
// the previous one. Init is called first and the backend is not
// registered if it fails.
func RegisterBackend(b ComputeBackend) error {
	if b == nil {
		return errors.New("lineart: backend must not be nil")
	}
	if err := b.Init(); err != nil {
		return err
	}
	shareLogger(b, Logger())

	backendMu.Lock()
	old := gpuBackend
	gpuBackend = b
	backendMu.Unlock()
	if old != nil && old != b {
		old.Close()
	}
	Logger().Info("lineart: compute backend registered", "backend", b.Name())
	return nil
}

// UnregisterBackend removes and closes the registered backend.
func UnregisterBackend() {
	backendMu.Lock()
	old := gpuBackend
	gpuBackend = nil
	backendMu.Unlock()
	if old != nil {
		old.Close()
	}
}

// Backend returns the registered GPU backend, or nil.
func Backend() ComputeBackend {
	backendMu.RLock()
	b := gpuBackend
	backendMu.RUnlock()
	return b
}

// SetBackendDeviceProvider hands a device provider to the registered
// backend. It is a no-op when no backend is registered or the backend
// cannot share devices.
func SetBackendDeviceProvider(provider any) error {
	b := Backend()
	if b == nil {
		return nil
	}
	if dpa, ok := b.(DeviceProviderAware); ok {
		return dpa.SetDeviceProvider(provider)
	}
	return nil
}
