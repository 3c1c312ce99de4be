package parallel

// WorkgroupSize is the number of invocations a single chunk covers.
// It matches @workgroup_size in the WGSL kernels so that both backends
// split a stage the same way.
const WorkgroupSize = 256

// Kernel is one invocation of a compute stage, addressed by its global
// invocation index.
type Kernel func(i int)

// Dispatcher runs kernels over index ranges on a WorkerPool.
// Every Dispatch is a barrier: no invocation of the next stage starts
// before all invocations of the current one have returned.
type Dispatcher struct {
	pool *WorkerPool
	work []func()
}

// NewDispatcher creates a dispatcher with its own pool of the given size.
func NewDispatcher(workers int) *Dispatcher {
	return &Dispatcher{pool: NewWorkerPool(workers)}
}

// Workers returns the parallelism of the underlying pool.
func (d *Dispatcher) Workers() int {
	return d.pool.Workers()
}

// WorkgroupCount returns the number of chunks needed for n invocations.
func WorkgroupCount(n int) int {
	return (n + WorkgroupSize - 1) / WorkgroupSize
}

// Dispatch invokes k for every i in [0, n) and waits for completion.
// Small ranges run on the calling goroutine.
func (d *Dispatcher) Dispatch(n int, k Kernel) error {
	if n <= 0 {
		if !d.pool.IsRunning() {
			return ErrPoolClosed
		}
		return nil
	}
	if n <= WorkgroupSize || d.pool.Workers() == 1 {
		if !d.pool.IsRunning() {
			return ErrPoolClosed
		}
		for i := range n {
			k(i)
		}
		return nil
	}

	groups := WorkgroupCount(n)
	d.work = d.work[:0]
	for g := range groups {
		lo := g * WorkgroupSize
		hi := min(lo+WorkgroupSize, n)
		d.work = append(d.work, func() {
			for i := lo; i < hi; i++ {
				k(i)
			}
		})
	}
	return d.pool.ExecuteAll(d.work)
}

// Close stops the worker pool.
func (d *Dispatcher) Close() {
	d.pool.Close()
}
