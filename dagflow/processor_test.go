package dagflow

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Invariant #6 in isolation: SequentialProcessor never runs more than one
// transform at a time, regardless of batch size.
func TestSequentialProcessor_NeverExceedsOneInflight(t *testing.T) {
	g := NewGraph()
	var inflight, maxInflight int32
	var batch []string
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		batch = append(batch, id)
		require.NoError(t, g.AddNode(NewNode(id, func(any, map[string]any, *RunState) (any, error) {
			cur := atomic.AddInt32(&inflight, 1)
			defer atomic.AddInt32(&inflight, -1)
			for {
				m := atomic.LoadInt32(&maxInflight)
				if cur <= m || atomic.CompareAndSwapInt32(&maxInflight, m, cur) {
					break
				}
			}
			return nil, nil
		})))
	}

	state := NewRunState(nil, nil)
	exec := NewDefaultExecutor("proc-test", nil, false)
	results := SequentialProcessor{}.Run(context.Background(), g, state, exec, batch)

	assert.Len(t, results, 5)
	assert.Equal(t, int32(1), atomic.LoadInt32(&maxInflight))
}

func TestParallelProcessor_PreservesBatchOrderRegardlessOfFinishOrder(t *testing.T) {
	g := NewGraph()
	batch := []string{"slow", "fast"}
	require.NoError(t, g.AddNode(NewNode("slow", func(any, map[string]any, *RunState) (any, error) {
		time.Sleep(20 * time.Millisecond)
		return "slow-out", nil
	})))
	require.NoError(t, g.AddNode(NewNode("fast", func(any, map[string]any, *RunState) (any, error) {
		return "fast-out", nil
	})))

	state := NewRunState(nil, nil)
	exec := NewDefaultExecutor("proc-test-2", nil, false)
	results := ParallelProcessor{}.Run(context.Background(), g, state, exec, batch)

	require.Len(t, results, 2)
	assert.Equal(t, "slow", results[0].NodeID)
	assert.Equal(t, "fast", results[1].NodeID)
}
