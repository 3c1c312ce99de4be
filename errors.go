package lineart

import "errors"

// Input errors. They abort Extract or BuildAdjacency before any kernel
// is dispatched.
var (
	// ErrNilMesh is returned when no mesh is supplied.
	ErrNilMesh = errors.New("lineart: mesh is nil")

	// ErrEmptyMesh is returned for a mesh without faces.
	ErrEmptyMesh = errors.New("lineart: mesh has no faces")

	// ErrMalformedIndices is returned when the index count is not a
	// multiple of three.
	ErrMalformedIndices = errors.New("lineart: index count is not a multiple of 3")

	// ErrIndexOutOfRange is returned when an index addresses a vertex
	// that does not exist.
	ErrIndexOutOfRange = errors.New("lineart: vertex index out of range")

	// ErrNormalCount is returned when normals are given but their count
	// differs from the position count.
	ErrNormalCount = errors.New("lineart: normal count does not match position count")

	// ErrSingularTransform is returned when the object-to-world matrix
	// has no inverse, so normals cannot be transformed.
	ErrSingularTransform = errors.New("lineart: object-to-world transform is singular")
)

// Lifecycle and capability errors.
var (
	// ErrClosed is returned by an Extractor after Close.
	ErrClosed = errors.New("lineart: extractor is closed")

	// ErrComputeUnsupported is returned when a GPU backend was requested
	// explicitly but no device with compute support is available.
	ErrComputeUnsupported = errors.New("lineart: compute backend unavailable")

	// ErrFallbackToCPU is returned by a GPU backend that cannot run a
	// particular frame; the extractor reruns the frame on the CPU.
	ErrFallbackToCPU = errors.New("lineart: falling back to CPU extraction")
)
