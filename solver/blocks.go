package solver

import "sync/atomic"

// blockKind identifies what a block's [start, start+count) range indexes
// into, spec.md §3's SolverBlock.blockType.
type blockKind int

const (
	blockBody blockKind = iota
	blockJointContact
)

// block is one fixed-size unit of parallel work, spec.md §3's SolverBlock:
// {startIndex, count, blockType, syncIndex: atomic u32}.
type block struct {
	start, count int32
	kind         blockKind
	syncIndex    atomic.Uint32
}

// blockArray is a reusable, contiguous run of blocks over one family
// (bodies, or one color's joint+contact pair) that the stage machine
// revisits across a step's many stage instances (IntegrateVelocities and
// IntegratePositions both revisit the body array; WarmStart/Solve/Relax/
// Restitution/StoreImpulses all revisit the same color's array). Each
// array owns its own monotonic syncIndex counter — not a single counter
// shared across every array in the step — so a block's stored syncIndex
// always equals "the counter value as of this array's last visit",
// letting the CAS-from-previous protocol succeed on every revisit
// regardless of how many *other* arrays were visited in between.
type blockArray struct {
	blocks      []*block
	syncCounter uint32 // advanced only by the main worker, between stage instances
}

// buildBodyBlocks partitions [0, count) into the work-block scheduler's
// body family per spec.md §4.1: blockSize = max(4, ceil(count/(4*workers))),
// biased to a power-of-two-friendly shift (>>5, i.e. rounded up to a
// multiple of 32) for cheap division in hot paths, blockCount capped at
// 4*workers, the last block absorbing the remainder.
func buildBodyBlocks(count, workerCount int) *blockArray {
	return buildBlocks(count, workerCount, 5, blockBody)
}

// buildConstraintBlocks is the joint/contact family's counterpart,
// spec.md §4.1's >>2 power-of-two bias (constraint blocks are smaller:
// each constraint does much more per-item work than a body integration).
func buildConstraintBlocks(count, workerCount int) *blockArray {
	return buildBlocks(count, workerCount, 2, blockJointContact)
}

func buildBlocks(count, workerCount, shift int, kind blockKind) *blockArray {
	if workerCount < 1 {
		workerCount = 1
	}
	if count <= 0 {
		return &blockArray{}
	}

	baseline := 4
	blockSize := ceilDiv(count, 4*workerCount)
	if blockSize < baseline {
		blockSize = baseline
	}
	// round up to a multiple of 1<<shift so hot-path division by blockSize
	// can be a shift, matching spec.md's "power-of-two-biased" note.
	unit := 1 << uint(shift)
	blockSize = ceilDiv(blockSize, unit) * unit

	blockCount := ceilDiv(count, blockSize)
	maxBlocks := 4 * workerCount
	if blockCount > maxBlocks {
		blockCount = maxBlocks
		blockSize = ceilDiv(count, blockCount)
	}

	arr := &blockArray{blocks: make([]*block, 0, blockCount)}
	start := 0
	for start < count {
		end := start + blockSize
		if end > count {
			end = count
		}
		arr.blocks = append(arr.blocks, &block{start: int32(start), count: int32(end - start), kind: kind})
		start = end
	}
	return arr
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}

// getWorkerStartIndex returns a balanced, round-robin start block index
// distinct per worker (spec.md §4.2 step 1), or -1 if there are fewer
// blocks than workers and this worker has no assigned block.
func getWorkerStartIndex(workerIndex, blockCount, workerCount int) int {
	if blockCount == 0 {
		return -1
	}
	if blockCount >= workerCount {
		return (workerIndex * blockCount) / workerCount
	}
	if workerIndex >= blockCount {
		return -1
	}
	return workerIndex
}
