package lineart

// Stage identifies one step of the extraction pipeline. Every stage ends
// with a barrier; a frame can only be dropped between stages.
type Stage uint8

const (
	// StageClassify builds the per-corner records and marks feature edges.
	StageClassify Stage = iota
	// StageLink resolves successors, tails, ranks and distances.
	StageLink
	// StageCompact assigns stroke ranges and fills the dense buffers.
	StageCompact

	// StageCount is the number of stages.
	StageCount
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageClassify:
		return "classify"
	case StageLink:
		return "link"
	case StageCompact:
		return "compact"
	default:
		return "unknown"
	}
}
