package dagflow

import (
	"fmt"
	"sync"
)

// RunState is the shared per-execution state visible to every node's
// transform. Three keys are reserved and managed by the engine: Input,
// Specs, and Output/OutputByNodeID. Transforms may read and write any other
// state they need; since transforms of concurrently dispatched nodes may
// run on different goroutines, RunState provides a mutex for callers that
// want to synchronize their own extra fields (spec.md §5: "it is the
// user's responsibility to use appropriate locking").
type RunState struct {
	// Input is the run's initial payload, fixed at Run start.
	Input any

	// Specs maps node id to the opaque spec snapshotted at registration
	// time (Graph.AddNode), for callers advertising nodes as tools.
	Specs map[string]any

	// Output is the run's final output, set by a node whose OutputWhen
	// predicate returns true (or by the default rule Run installs on
	// terminal nodes; spec.md §4.7 and §9's "Open question").
	Output any

	// OutputByNodeID is the id of the node that set Output.
	OutputByNodeID string

	// Extra holds any other state a host's transforms want to thread
	// through a run. Mutate it directly; use Lock/Unlock if multiple
	// concurrently-running transforms write to it.
	Extra map[string]any

	mu sync.Mutex
}

// NewRunState creates a RunState for a run with the given initial input.
// specs is copied from the graph's registration-time spec table
// (Graph.Specs) into RunState.Specs (spec.md §4.2/§6).
func NewRunState(input any, specs map[string]any) *RunState {
	rs := &RunState{
		Input: input,
		Specs: make(map[string]any, len(specs)),
		Extra: make(map[string]any),
	}
	for k, v := range specs {
		rs.Specs[k] = v
	}
	return rs
}

// Lock acquires the RunState's mutex. Only needed by callers mutating
// Extra (or other shared fields) from concurrently executing transforms.
func (rs *RunState) Lock() { rs.mu.Lock() }

// Unlock releases the RunState's mutex.
func (rs *RunState) Unlock() { rs.mu.Unlock() }

// setOutput commits a node's output as the run's final output. Guarded by
// the same mutex as Extra since it may be called concurrently by
// terminals finishing in parallel (spec.md §9: "last terminal to finish
// wins" under parallel dispatch).
func (rs *RunState) setOutput(nodeID string, output any) {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.Output = output
	rs.OutputByNodeID = nodeID
}

// AllSpecs returns every non-nil node spec registered in this run, in the
// order nodes were added — mirroring the original's
// `get_all_specs`/Toolbox.get_all_specs, useful for building an LLM tool
// list from dagflow.RunState.Specs.
func (rs *RunState) AllSpecs(order []string) []any {
	out := make([]any, 0, len(order))
	for _, id := range order {
		if s, ok := rs.Specs[id]; ok && s != nil {
			out = append(out, s)
		}
	}
	return out
}

// Default returns the single value of a one-entry upstream-output map, or
// an error if the map does not have exactly one entry. It mirrors the
// original's `langdag.utils.default`, used by transforms that only expect
// a single unconditional upstream producer.
func Default(upstream map[string]any) (any, error) {
	if len(upstream) != 1 {
		return nil, fmt.Errorf("dagflow.Default: upstream has %d outputs, expected exactly 1", len(upstream))
	}
	for _, v := range upstream {
		return v, nil
	}
	return nil, nil // unreachable
}
