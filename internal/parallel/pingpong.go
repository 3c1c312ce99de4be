package parallel

// PingPong is a pair of equally sized buffers used by iterative kernels.
// A round reads only Src and writes only Dst; Swap exchanges the roles
// once the round's barrier has passed.
type PingPong[T any] struct {
	a, b []T
	flip bool
}

// NewPingPong allocates both buffers with n elements.
func NewPingPong[T any](n int) *PingPong[T] {
	return &PingPong[T]{a: make([]T, n), b: make([]T, n)}
}

// Src returns the buffer the current round reads from.
func (p *PingPong[T]) Src() []T {
	if p.flip {
		return p.b
	}
	return p.a
}

// Dst returns the buffer the current round writes to.
func (p *PingPong[T]) Dst() []T {
	if p.flip {
		return p.a
	}
	return p.b
}

// Swap makes the last written buffer the next source.
func (p *PingPong[T]) Swap() {
	p.flip = !p.flip
}

// Len returns the element count of each buffer.
func (p *PingPong[T]) Len() int {
	return len(p.a)
}

// Resize reallocates both buffers when n differs from the current length
// and resets the orientation.
func (p *PingPong[T]) Resize(n int) {
	if n != len(p.a) {
		p.a = make([]T, n)
		p.b = make([]T, n)
	}
	p.flip = false
}
