//go:build !nogpu

// Package gpu runs the lineart extraction pipeline as WGSL compute shaders
// on a gogpu/wgpu HAL device.
//
// This is an internal package; applications enable it through
//
//	import _ "github.com/gogpu/lineart/gpu"
//
// # Pipeline
//
// The kernels in shaders/lineart.wgsl mirror the CPU kernels of the root
// package one to one. Each kernel is a separate compute pass, so every
// pass boundary is a global barrier:
//
//	classify_faces -> classify_corners                          (classify)
//	resolve_successor -> claim_successor -> commit_successor
//	  -> find_tail x R -> reset_next -> init_ranks
//	  -> rank_round x R -> commit_ranks                         (link)
//	stamp_tail -> assign_offsets -> invalidate_slot
//	  -> claim_slots -> scatter                                 (compact)
//
// Pointer jumping uses two ping-pong buffers. Two bind groups bind them
// in opposite roles and the encoder alternates between them.
//
// All passes of one frame are recorded into a single command buffer,
// submitted once and waited on with a fence. The stroke records, dense
// buffers and allocation counters are then copied to staging buffers and
// read back into lineart.Output.
//
// R, the pointer-jumping round count, is fixed before submission: the
// number of valid corners is not known on the host, so the default covers
// the longest possible chain, AutoRounds(corners).
package gpu
