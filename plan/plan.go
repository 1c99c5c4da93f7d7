// Package plan computes the merge-phase parameters for a sort run: how
// many passes are needed, how many files each pass merges at a time, and
// the buffer size that makes full use of the memory budget.
//
// With M the memory limit, B the buffer size, N the number of chunk files
// and X = floor(M/B) - 1 the number of files opened for reading at once,
// (X+1)*B <= M (one extra buffer writes the output). Merging in K passes
// requires X^K >= N, which gives K = ceil(1 / log_N(X)). The fan-in
// actually used is then tightened to X' = ceil(N^(1/K)), never above X,
// and B may be raised to its upper bound M/(X'+1).
package plan

import (
	"errors"
	"math"

	"github.com/golang/glog"
)

// MinBufferSize is the smallest buffer the planner will accept or produce.
// A recomputed buffer below it means the configuration cannot support the
// chunk population.
const MinBufferSize = 16

var (
	// ErrBufferSize error returns when the configured buffer size is below MinBufferSize
	ErrBufferSize = errors.New("buffer size below minimum viable size")
	// ErrMemoryLimit error returns when the memory limit cannot hold two input buffers next to the output buffer
	ErrMemoryLimit = errors.New("memory limit too small for two input buffers")
	// ErrBufferUnderflow error returns when the recomputed buffer size falls below MinBufferSize
	ErrBufferUnderflow = errors.New("recomputed buffer size below minimum viable size")
	// ErrFanIn error returns when the computed fan-in cannot reduce the chunk population
	ErrFanIn = errors.New("computed fan-in below 2")
	// ErrChunkCount error returns when planning is requested for fewer than 2 chunks
	ErrChunkCount = errors.New("planning requires at least 2 chunks")
)

// PassPlan holds the derived merge parameters for one run.
type PassPlan struct {
	NumPasses  int
	FanIn      int
	BufferSize int64
}

// Plan derives the pass plan for chunkCount sorted files under the given
// memory limit and buffer size. When autoTune is set the returned buffer
// size is raised to its upper bound memoryLimit/(fanIn+1); otherwise the
// configured size is kept. chunkCount below 2 is a caller error, the
// degenerate cases are short-circuited before planning.
func Plan(chunkCount int, memoryLimit, bufferSize int64, autoTune bool) (*PassPlan, error) {
	if chunkCount < 2 {
		return nil, ErrChunkCount
	}
	if bufferSize < MinBufferSize {
		return nil, ErrBufferSize
	}
	// A pass can hold at most floor(M/B)-1 input buffers next to the
	// output buffer. Fewer than two means no merge is possible, and the
	// formula below would go through log of <=1, so it is rejected up
	// front.
	maxFanIn := int(float64(memoryLimit)/float64(bufferSize) - 1)
	if maxFanIn < 2 {
		return nil, ErrMemoryLimit
	}

	n := float64(chunkCount)
	numPasses := int(math.Ceil(1 / (math.Log(float64(maxFanIn)) / math.Log(n))))
	fanIn := int(math.Ceil(math.Pow(n, 1/float64(numPasses))))
	if fanIn > maxFanIn {
		fanIn = maxFanIn
	}
	if fanIn < 2 {
		return nil, ErrFanIn
	}

	effective := bufferSize
	if autoTune {
		effective = memoryLimit / int64(fanIn+1)
		if effective < MinBufferSize {
			return nil, ErrBufferUnderflow
		}
	}
	glog.V(4).Infof("Planned %d merge passes with fan-in %d and buffer size %d for %d chunks",
		numPasses, fanIn, effective, chunkCount)

	return &PassPlan{
		NumPasses:  numPasses,
		FanIn:      fanIn,
		BufferSize: effective,
	}, nil
}
