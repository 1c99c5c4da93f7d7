package plan

import (
	"math"
	"testing"

	"github.com/go-test/deep"
)

func TestPlan(t *testing.T) {
	tests := []struct {
		name        string
		chunkCount  int
		memoryLimit int64
		bufferSize  int64
		autoTune    bool
		expect      *PassPlan
		fail        bool
	}{
		{
			name:        "everything fits in one pass",
			chunkCount:  3,
			memoryLimit: 1 << 20,
			bufferSize:  4096,
			autoTune:    false,
			expect:      &PassPlan{NumPasses: 1, FanIn: 3, BufferSize: 4096},
		},
		{
			name:        "two passes with tightened fan-in",
			chunkCount:  4,
			memoryLimit: 4096,
			bufferSize:  1024,
			autoTune:    false,
			expect:      &PassPlan{NumPasses: 2, FanIn: 2, BufferSize: 1024},
		},
		{
			name:        "auto-tune raises buffer to its upper bound",
			chunkCount:  4,
			memoryLimit: 4096,
			bufferSize:  1024,
			autoTune:    true,
			expect:      &PassPlan{NumPasses: 2, FanIn: 2, BufferSize: 1365},
		},
		{
			name:        "fractional ratio clamps fan-in to the whole buffers that fit",
			chunkCount:  12,
			memoryLimit: 72,
			bufferSize:  16,
			autoTune:    false,
			expect:      &PassPlan{NumPasses: 3, FanIn: 3, BufferSize: 16},
		},
		{
			name:        "single chunk is a caller error",
			chunkCount:  1,
			memoryLimit: 4096,
			bufferSize:  1024,
			fail:        true,
		},
		{
			name:        "buffer size below minimum",
			chunkCount:  4,
			memoryLimit: 4096,
			bufferSize:  0,
			fail:        true,
		},
		{
			name:        "memory limit below two buffers",
			chunkCount:  4,
			memoryLimit: 2048,
			bufferSize:  1024,
			fail:        true,
		},
		{
			name:        "fractional ratio leaves only one input buffer",
			chunkCount:  1000,
			memoryLimit: 40,
			bufferSize:  16,
			autoTune:    true,
			fail:        true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Plan(tt.chunkCount, tt.memoryLimit, tt.bufferSize, tt.autoTune)
			if err != nil && !tt.fail {
				t.Fatalf("supposed to succeed but fail with error: %+v", err)
			}
			if err == nil && tt.fail {
				t.Fatalf("supposed to fail but succeeded")
			}
			if tt.fail {
				return
			}
			if diff := deep.Equal(tt.expect, got); diff != nil {
				t.Errorf("%+v", diff)
			}
		})
	}
}

// Whatever the configuration, a produced plan must have enough merge
// capacity for the chunk population and must fit all its buffers in the
// memory limit.
func TestPlanInvariants(t *testing.T) {
	chunkCounts := []int{2, 3, 7, 10, 12, 99, 1024, 65536}
	memoryLimits := []int64{72, 256, 1000, 4096, 1 << 16, 1 << 24}
	bufferSizes := []int64{16, 24, 64, 100, 1024, 4096}
	for _, n := range chunkCounts {
		for _, m := range memoryLimits {
			for _, b := range bufferSizes {
				for _, autoTune := range []bool{false, true} {
					p, err := Plan(n, m, b, autoTune)
					if err != nil {
						continue
					}
					capacity := math.Pow(float64(p.FanIn), float64(p.NumPasses))
					if capacity < float64(n) {
						t.Errorf("plan %+v for (n=%d m=%d b=%d): fan-in capacity %v below chunk count",
							p, n, m, b, capacity)
					}
					if int64(p.FanIn+1)*p.BufferSize > m {
						t.Errorf("plan %+v for (n=%d m=%d b=%d): buffers exceed memory limit",
							p, n, m, b)
					}
					if p.BufferSize < MinBufferSize {
						t.Errorf("plan %+v for (n=%d m=%d b=%d): buffer below minimum",
							p, n, m, b)
					}
				}
			}
		}
	}
}
