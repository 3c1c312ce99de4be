// Package parallel runs compute-style kernels on goroutines.
//
// A stage is a Kernel invoked once per element index. Dispatcher splits
// the index range into WorkgroupSize chunks, hands them to a work-stealing
// WorkerPool and returns when every chunk has finished, which gives the
// same stage-barrier semantics as consecutive compute passes on a GPU.
// PingPong and the atomic helpers cover the remaining primitives the
// stroke kernels need: double buffers for pointer jumping and min/max on
// shared scratch slots.
package parallel
