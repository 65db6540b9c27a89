package util

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParallelProcessesAllInputs(t *testing.T) {
	var mu sync.Mutex
	seen := map[int]bool{}

	inputs := make([]int, 50)
	for i := range inputs {
		inputs[i] = i
	}

	Parallel(context.Background(), inputs, 4, func(_ context.Context, n int) {
		mu.Lock()
		seen[n] = true
		mu.Unlock()
	})

	assert.Len(t, seen, 50)
}

func TestParallelHonorsWorkerLimit(t *testing.T) {
	var current, peak int32

	Parallel(context.Background(), make([]int, 100), 3, func(_ context.Context, _ int) {
		n := atomic.AddInt32(&current, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		atomic.AddInt32(&current, -1)
	})

	assert.LessOrEqual(t, peak, int32(3))
}

func TestParallelStopsFeedingOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var ran int32
	Parallel(ctx, make([]int, 1000), 2, func(_ context.Context, _ int) {
		atomic.AddInt32(&ran, 1)
	})

	assert.Less(t, atomic.LoadInt32(&ran), int32(1000))
}
