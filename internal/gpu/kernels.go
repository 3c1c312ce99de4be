//go:build !nogpu

package gpu

import (
	_ "embed"

	"github.com/gogpu/lineart"
)

// lineartShaderSource holds every kernel of the pipeline, one entry point
// per kernel.
//
//go:embed shaders/lineart.wgsl
var lineartShaderSource string

// workgroupSize matches @workgroup_size in every entry point.
const workgroupSize = 256

// kernel identifies one compute entry point.
type kernel int

const (
	kernelClassifyFaces kernel = iota
	kernelClassifyCorners
	kernelResolveSuccessor
	kernelClaimSuccessor
	kernelCommitSuccessor
	kernelFindTail
	kernelResetNext
	kernelInitRanks
	kernelRankRound
	kernelCommitRanks
	kernelStampTail
	kernelAssignOffsets
	kernelInvalidateSlot
	kernelClaimSlots
	kernelScatter

	kernelCount
)

// String returns the WGSL entry point name.
func (k kernel) String() string {
	switch k {
	case kernelClassifyFaces:
		return "classify_faces"
	case kernelClassifyCorners:
		return "classify_corners"
	case kernelResolveSuccessor:
		return "resolve_successor"
	case kernelClaimSuccessor:
		return "claim_successor"
	case kernelCommitSuccessor:
		return "commit_successor"
	case kernelFindTail:
		return "find_tail"
	case kernelResetNext:
		return "reset_next"
	case kernelInitRanks:
		return "init_ranks"
	case kernelRankRound:
		return "rank_round"
	case kernelCommitRanks:
		return "commit_ranks"
	case kernelStampTail:
		return "stamp_tail"
	case kernelAssignOffsets:
		return "assign_offsets"
	case kernelInvalidateSlot:
		return "invalidate_slot"
	case kernelClaimSlots:
		return "claim_slots"
	case kernelScatter:
		return "scatter"
	default:
		return "unknown"
	}
}

// stage returns the pipeline stage the kernel belongs to.
func (k kernel) stage() lineart.Stage {
	switch {
	case k <= kernelClassifyCorners:
		return lineart.StageClassify
	case k <= kernelCommitRanks:
		return lineart.StageLink
	default:
		return lineart.StageCompact
	}
}

// pass is one compute pass of a frame.
type pass struct {
	kernel   kernel
	elements uint32
	// swap flips the ping-pong roles after the pass.
	swap bool
}

// framePasses returns the pass sequence for one frame. The link stage
// runs rounds pointer-jumping passes twice: once to find tails, once to
// rank.
func framePasses(faces, corners, capacity uint32, rounds int) []pass {
	passes := make([]pass, 0, 13+2*rounds)
	passes = append(passes,
		pass{kernelClassifyFaces, faces, false},
		pass{kernelClassifyCorners, corners, false},
		pass{kernelResolveSuccessor, corners, true},
		pass{kernelClaimSuccessor, corners, false},
		pass{kernelCommitSuccessor, corners, true},
	)
	for range rounds {
		passes = append(passes, pass{kernelFindTail, corners, true})
	}
	passes = append(passes,
		pass{kernelResetNext, corners, true},
		pass{kernelInitRanks, corners, true},
	)
	for range rounds {
		passes = append(passes, pass{kernelRankRound, corners, true})
	}
	return append(passes,
		pass{kernelCommitRanks, corners, false},
		pass{kernelStampTail, corners, false},
		pass{kernelAssignOffsets, corners, false},
		pass{kernelInvalidateSlot, capacity, false},
		pass{kernelClaimSlots, corners, false},
		pass{kernelScatter, corners, false},
	)
}

// workgroups returns the dispatch size for n invocations.
func workgroups(n uint32) uint32 {
	return (n + workgroupSize - 1) / workgroupSize
}
