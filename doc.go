// Package lineart extracts stylized line-art strokes from triangle meshes.
//
// # Overview
//
// Every frame, lineart decides which mesh edges are silhouette or feature
// edges as seen from the camera, links them into chains and writes the
// chains into a dense, render-ready vertex buffer in the layout a
// grease-pencil style stroke renderer expects: one padding vertex, the
// points from tail to head, an optional closing point, and another
// padding vertex per stroke.
//
// # Quick Start
//
//	mesh := lineart.NewTorus(1, 0.3, 48, 24)
//	ex, err := lineart.NewExtractor(mesh)
//	if err != nil {
//	    return err
//	}
//	defer ex.Close()
//
//	out, err := ex.Extract(ctx, lineart.NewView(lineart.V3(0, 2, 5)))
//	for _, r := range out.StrokeRanges() {
//	    // out.Verts[r.Start+1 : r.End] are the drawable points
//	}
//
// # Pipeline
//
// The work is split into kernels that run once per triangle corner
// (corner = face*3 + slot), with a barrier between kernels:
//
//   - Adjacency (once per mesh): twin and rotation tables, position weld.
//   - Classify: per-face facing, per-corner feature test and record setup.
//   - Link: successor resolution around vertex fans, tail search and
//     list ranking by pointer jumping over ping-pong buffers.
//   - Compact: tail stamping, atomic bump allocation of stroke ranges,
//     padding, and scatter into the dense buffers.
//
// No kernel depends on execution order within its stage, so the result
// is identical for any worker count. The stroke numbering produced by
// the bump allocator is the only unordered part of the output.
//
// # Backends
//
// Kernels run on a goroutine worker pool by default. Importing the gpu
// sub-package registers a compute backend that runs the same kernels as
// WGSL compute shaders through gogpu/wgpu:
//
//	import _ "github.com/gogpu/lineart/gpu"
package lineart

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
