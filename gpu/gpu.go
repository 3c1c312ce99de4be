//go:build !nogpu

// Package gpu registers the GPU compute backend for line art extraction.
//
// Import this package to run the classify, link and compact stages as
// wgpu/hal compute shaders:
//
//	import _ "github.com/gogpu/lineart/gpu" // enable GPU extraction
//
// If GPU initialization fails (no Vulkan device available), the
// registration is skipped and extraction stays on the CPU. A device
// owned by the host application can be shared later with
// SetDeviceProvider.
package gpu

import (
	"github.com/gogpu/gpucontext"

	"github.com/gogpu/lineart"
	gpuimpl "github.com/gogpu/lineart/internal/gpu"
)

func init() {
	b := gpuimpl.NewBackend()
	if err := lineart.RegisterBackend(b); err != nil {
		lineart.Logger().Warn("lineart: GPU compute backend not available", "err", err)
		return
	}
	lineart.Logger().Debug("lineart: GPU compute backend registered", "adapter", b.AdapterName())
}

// SetDeviceProvider runs GPU extraction on a device shared by an external
// provider (e.g., gogpu). This avoids creating a separate GPU instance and
// also enables the backend when no device of its own could be opened.
//
// The provider must also implement gpucontext.HalProvider for direct HAL
// access.
func SetDeviceProvider(provider gpucontext.DeviceProvider) error {
	if lineart.Backend() != nil {
		return lineart.SetBackendDeviceProvider(provider)
	}
	b := gpuimpl.NewBackend()
	if err := b.SetDeviceProvider(provider); err != nil {
		return err
	}
	return lineart.RegisterBackend(b)
}
