package parallel

import (
	"math"
	"sync/atomic"
)

// These helpers mirror WGSL atomicMin/atomicMax on plain uint32 slots so
// that CPU kernels can share scratch arrays the same way shaders do.

// AtomicMinUint32 stores min(*addr, v) and returns the previous value.
func AtomicMinUint32(addr *uint32, v uint32) uint32 {
	for {
		old := atomic.LoadUint32(addr)
		if v >= old {
			return old
		}
		if atomic.CompareAndSwapUint32(addr, old, v) {
			return old
		}
	}
}

// AtomicMaxUint32 stores max(*addr, v) and returns the previous value.
func AtomicMaxUint32(addr *uint32, v uint32) uint32 {
	for {
		old := atomic.LoadUint32(addr)
		if v <= old {
			return old
		}
		if atomic.CompareAndSwapUint32(addr, old, v) {
			return old
		}
	}
}

// AtomicMaxFloat32 stores the larger of the float held in *addr and f.
// Only valid for non-negative values, whose IEEE-754 bit patterns order
// the same way as the unsigned integers.
func AtomicMaxFloat32(addr *uint32, f float32) {
	if f < 0 || f != f {
		return
	}
	AtomicMaxUint32(addr, math.Float32bits(f))
}

// Float32At reads a float stored by AtomicMaxFloat32.
func Float32At(addr *uint32) float32 {
	return math.Float32frombits(atomic.LoadUint32(addr))
}
