package dagflow

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S1 — Linear pipeline.
func TestScheduler_LinearPipeline(t *testing.T) {
	b := NewBuilder()
	b.MakeNode("A", func(any, map[string]any, *RunState) (any, error) { return 1, nil })
	b.MakeNode("B", func(_ any, upstream map[string]any, _ *RunState) (any, error) {
		v, err := Default(upstream)
		if err != nil {
			return nil, err
		}
		return v.(int) + 10, nil
	})
	b.MakeNode("C", func(_ any, upstream map[string]any, _ *RunState) (any, error) {
		v, err := Default(upstream)
		if err != nil {
			return nil, err
		}
		return v.(int) + 100, nil
	})
	b.Connect("A", "B").Connect("B", "C")

	result, err := b.Run(context.Background(), "s1", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C"}, result.FinishOrder)
	for _, id := range []string{"A", "B", "C"} {
		assert.Equal(t, StateFinished, result.NodeStates[id])
	}
}

// S2 — Conditional fan-out.
func newS2(t *testing.T, aOutput any) (*Builder, *RunResult) {
	t.Helper()
	b := NewBuilder()
	b.MakeNode("A", func(any, map[string]any, *RunState) (any, error) { return aOutput, nil })
	b.MakeNode("E", func(any, map[string]any, *RunState) (any, error) { return "from-E", nil })
	b.MakeNode("T", func(any, map[string]any, *RunState) (any, error) { return "from-T", nil })
	b.MakeNode("End", func(_ any, upstream map[string]any, _ *RunState) (any, error) {
		v, err := Default(upstream)
		return v, err
	}, WithGatePolicy(GateAny))

	b.ConnectIf("A", Emptyset{}, "E")
	b.ConnectIf("A", NonEmptyset{}, "T")
	b.Connect("E", "End")
	b.Connect("T", "End")

	result, err := b.Run(context.Background(), "s2", nil)
	require.NoError(t, err)
	return b, result
}

func TestScheduler_ConditionalFanOut_Empty(t *testing.T) {
	_, result := newS2(t, []any{})
	assert.Equal(t, StateFinished, result.NodeStates["E"])
	assert.Equal(t, StateAborted, result.NodeStates["T"])
	assert.Equal(t, "from-E", result.State.Output)
}

func TestScheduler_ConditionalFanOut_NonEmpty(t *testing.T) {
	_, result := newS2(t, []any{1})
	assert.Equal(t, StateAborted, result.NodeStates["E"])
	assert.Equal(t, StateFinished, result.NodeStates["T"])
	assert.Equal(t, "from-T", result.State.Output)
}

// S3 — Subset/Superset routing.
func TestScheduler_SubsetSupersetRouting(t *testing.T) {
	b := NewBuilder()
	b.MakeNode("Dispatch", func(any, map[string]any, *RunState) (any, error) {
		return []any{"get_weather", "eval"}, nil
	})
	b.MakeNode("W", func(any, map[string]any, *RunState) (any, error) { return "weather-result", nil })
	b.MakeNode("V", func(any, map[string]any, *RunState) (any, error) { return "eval-result", nil })
	b.MakeNode("Join", func(_ any, upstream map[string]any, _ *RunState) (any, error) {
		return upstream, nil
	}, WithGatePolicy(GateAny))

	b.ConnectIf("Dispatch", NewSuperset("get_weather"), "W")
	b.ConnectIf("Dispatch", NewSuperset("eval"), "V")
	b.Connect("W", "Join")
	b.Connect("V", "Join")

	result, err := b.Run(context.Background(), "s3", nil)
	require.NoError(t, err)
	assert.Equal(t, StateFinished, result.NodeStates["W"])
	assert.Equal(t, StateFinished, result.NodeStates["V"])
	assert.Equal(t, StateFinished, result.NodeStates["Join"])
	merged := result.NodeStates // sanity: map is non-nil
	assert.NotNil(t, merged)
}

// S4 — Conflict detection.
func TestScheduler_ConflictingConditions(t *testing.T) {
	b := NewBuilder()
	b.MakeNode("u", func(any, map[string]any, *RunState) (any, error) { return []any{}, nil })
	b.MakeNode("v", func(any, map[string]any, *RunState) (any, error) { return "v", nil }, WithGatePolicy(GateAny))
	b.ConnectIf("u", Emptyset{}, "v")
	b.ConnectIf("u", NonEmptyset{}, "v")

	_, err := b.Run(context.Background(), "s4", nil)
	require.Error(t, err)
	var conflict *ConflictingConditionsError
	assert.ErrorAs(t, err, &conflict)
}

// S5 — Bounded parallelism.
func TestScheduler_BoundedParallelism(t *testing.T) {
	b := NewBuilder()
	var inflight, maxInflight int32
	for i := 0; i < 10; i++ {
		b.MakeNode(string(rune('a'+i)), func(any, map[string]any, *RunState) (any, error) {
			cur := atomic.AddInt32(&inflight, 1)
			for {
				m := atomic.LoadInt32(&maxInflight)
				if cur <= m || atomic.CompareAndSwapInt32(&maxInflight, m, cur) {
					break
				}
			}
			time.Sleep(50 * time.Millisecond)
			atomic.AddInt32(&inflight, -1)
			return nil, nil
		})
	}

	start := time.Now()
	_, err := b.Run(context.Background(), "s5", nil,
		WithSelector(NewMaxSelector(3)),
		WithProcessor(ParallelProcessor{}),
	)
	elapsed := time.Since(start)
	require.NoError(t, err)

	assert.LessOrEqual(t, int(atomic.LoadInt32(&maxInflight)), 3)
	assert.GreaterOrEqual(t, elapsed, 150*time.Millisecond)
	assert.Less(t, elapsed, 400*time.Millisecond)
}

// S6 — Reset idempotence.
func TestScheduler_ResetIdempotence(t *testing.T) {
	build := func() *Builder {
		b := NewBuilder()
		b.MakeNode("A", func(any, map[string]any, *RunState) (any, error) { return 1, nil })
		b.MakeNode("B", func(_ any, upstream map[string]any, _ *RunState) (any, error) {
			v, err := Default(upstream)
			if err != nil {
				return nil, err
			}
			return v.(int) + 10, nil
		})
		b.MakeNode("C", func(_ any, upstream map[string]any, _ *RunState) (any, error) {
			v, err := Default(upstream)
			if err != nil {
				return nil, err
			}
			return v.(int) + 100, nil
		})
		b.Connect("A", "B").Connect("B", "C")
		return b
	}

	b := build()
	first, err := b.Run(context.Background(), "s6a", nil)
	require.NoError(t, err)
	second, err := b.Run(context.Background(), "s6b", nil)
	require.NoError(t, err)

	assert.Equal(t, first.FinishOrder, second.FinishOrder)
	assert.Equal(t, first.State.Output, second.State.Output)
	assert.Equal(t, first.NodeStates, second.NodeStates)
}
