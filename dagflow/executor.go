package dagflow

import (
	"context"
	"fmt"

	"github.com/dagflowio/dagflow/dagflow/emit"
)

// WorkItem is the input bundle an Executor hands to a node's gate/transform:
// the node's id plus a private copy of its upstream outputs (spec.md §4.7).
type WorkItem struct {
	NodeID   string
	Upstream map[string]any
}

// ExecResult is what a node produced: its output and the execution state
// the gate assigned it (finished or aborted).
type ExecResult struct {
	NodeID string
	Output any
	State  ExecState
	Err    error
}

// Executor builds each node's input bundle, invokes its transform, records
// outputs, and fires lifecycle hooks (spec.md §4.7).
type Executor interface {
	// Param snapshots nodeID's current upstream-output map.
	Param(g *Graph, nodeID string) WorkItem

	// Execute drives the node's gate logic and, unless aborted, invokes
	// its transform, returning its result.
	Execute(ctx context.Context, g *Graph, state *RunState, item WorkItem) ExecResult

	// ReportStart fires once per dispatched batch, before any Execute
	// call in that batch.
	ReportStart(batch []string)

	// ReportFinish fires once per completed batch, after every Execute
	// call in that batch has returned.
	ReportFinish(results []ExecResult)

	// Deliver propagates a producer's result across one declared edge: it
	// records the producer's execution state, installs the edge's
	// predicate (if any), and merges the producer's output into the
	// successor's upstream map. It returns a *ConflictingConditionsError
	// if two distinct predicates have been declared for the same (from,
	// to) pair and this is the second to be delivered.
	Deliver(g *Graph, edge *Edge, result ExecResult) error
}

// DefaultExecutor is the engine's standard Executor: it implements the gate
// logic of spec.md §4.3, emits observability events through an
// emit.Emitter, and optionally logs lifecycle lines (spec.md §4.7's
// on_start/on_finish hooks).
type DefaultExecutor struct {
	Emitter emit.Emitter
	Verbose bool

	// OnStart and OnFinish, if set, fire exactly once per node, wrapping
	// the transform call (spec.md §4.7).
	OnStart  func(nodeID, desc string)
	OnFinish func(nodeID, desc string, state ExecState, output any)

	runID string
}

// NewDefaultExecutor builds a DefaultExecutor. A nil emitter is replaced
// with emit.NullEmitter.
func NewDefaultExecutor(runID string, emitter emit.Emitter, verbose bool) *DefaultExecutor {
	if emitter == nil {
		emitter = emit.NullEmitter{}
	}
	return &DefaultExecutor{Emitter: emitter, Verbose: verbose, runID: runID}
}

// Param snapshots nodeID's upstream-output map under the node's own lock.
func (e *DefaultExecutor) Param(g *Graph, nodeID string) WorkItem {
	n := g.Node(nodeID)
	n.mu.Lock()
	defer n.mu.Unlock()
	cp := make(map[string]any, len(n.record.upstreamOutputs))
	for k, v := range n.record.upstreamOutputs {
		cp[k] = v
	}
	return WorkItem{NodeID: nodeID, Upstream: cp}
}

// Execute implements the per-node execution gate (spec.md §4.3): it
// evaluates liveness and conditional acceptance, transitions the node to
// aborted if the gate denies it, or filters its upstream map, resolves its
// description, invokes its transform, records the output, transitions it
// to finished, and evaluates OutputWhen.
func (e *DefaultExecutor) Execute(ctx context.Context, g *Graph, state *RunState, item WorkItem) ExecResult {
	n := g.Node(item.NodeID)

	n.mu.Lock()
	n.record.upstreamOutputs = item.Upstream
	total := g.Predecessors(n.ID)
	finished := make(map[string]bool)
	for id, st := range n.record.upstreamExecStates {
		if st == StateFinished {
			finished[id] = true
		}
	}

	acceptable, ok := gateDecision(n, total, finished)
	if !ok {
		n.record.state = StateAborted
		n.record.nodeOutput = nil
		result := ExecResult{NodeID: n.ID, Output: nil, State: StateAborted}
		n.mu.Unlock()
		e.emitAbort(n.ID)
		return result
	}

	// Filter upstream outputs to only the acceptable producers
	// (spec.md §4.3 step 6).
	filtered := make(map[string]any, len(acceptable))
	for id := range acceptable {
		if v, present := n.record.upstreamOutputs[id]; present {
			filtered[id] = v
		}
	}
	n.record.upstreamOutputs = filtered
	n.record.state = StateRunning
	desc := n.record.desc
	if n.DescFn != nil {
		desc = n.DescFn(n.Prompt, filtered, state)
		n.record.desc = desc
	}
	prompt := n.Prompt
	transform := n.Transform
	outputWhen := n.OutputWhen
	n.mu.Unlock()

	e.emitStart(n.ID, desc)
	if e.OnStart != nil {
		e.OnStart(n.ID, desc)
	}

	var output any
	var err error
	if transform != nil {
		output, err = transform(prompt, filtered, state)
	}

	n.mu.Lock()
	if err != nil {
		n.record.state = StateAborted
		n.mu.Unlock()
		wrapped := &TransformError{NodeID: n.ID, Err: err}
		e.emitError(n.ID, wrapped)
		return ExecResult{NodeID: n.ID, State: StateAborted, Err: wrapped}
	}
	n.record.nodeOutput = output
	n.record.state = StateFinished
	finalState := n.record.state
	n.mu.Unlock()

	if outputWhen != nil && outputWhen(prompt, filtered, output, finalState) {
		state.setOutput(n.ID, output)
	}

	e.emitFinish(n.ID, desc, finalState, output)
	if e.OnFinish != nil {
		e.OnFinish(n.ID, desc, finalState, output)
	}

	return ExecResult{NodeID: n.ID, Output: output, State: finalState}
}

// gateDecision implements spec.md §4.3 steps 1-4: it returns the set of
// upstream producer ids judged acceptable and whether the node's gate
// permits execution at all.
func gateDecision(n *Node, total []string, finished map[string]bool) (map[string]bool, bool) {
	totalSet := make(map[string]bool, len(total))
	for _, id := range total {
		totalSet[id] = true
	}

	liveness := false
	switch n.GatePolicy {
	case GateAll:
		liveness = true
		for id := range totalSet {
			if !finished[id] {
				liveness = false
				break
			}
		}
	case GateAny:
		liveness = len(finished) >= 1
	}

	if !n.record.conditionalExecution {
		if !liveness {
			return nil, false
		}
		acceptable := make(map[string]bool, len(finished))
		for id := range finished {
			acceptable[id] = true
		}
		return acceptable, true
	}

	conditionalOK := make(map[string]bool)
	for id, pred := range n.record.executionCondition {
		if out, present := n.record.upstreamOutputs[id]; present && pred.Match(out) {
			conditionalOK[id] = true
		}
	}
	unconditionalFinished := make(map[string]bool)
	for id := range finished {
		if _, gated := n.record.executionCondition[id]; !gated {
			unconditionalFinished[id] = true
		}
	}
	acceptable := make(map[string]bool, len(conditionalOK)+len(unconditionalFinished))
	for id := range conditionalOK {
		acceptable[id] = true
	}
	for id := range unconditionalFinished {
		acceptable[id] = true
	}

	switch n.GatePolicy {
	case GateAll:
		if !liveness {
			return nil, false
		}
		if len(acceptable) != len(totalSet) {
			return nil, false
		}
		for id := range totalSet {
			if !acceptable[id] {
				return nil, false
			}
		}
		return acceptable, true
	default: // GateAny
		if !liveness {
			return nil, false
		}
		if len(acceptable) == 0 {
			return nil, false
		}
		return acceptable, true
	}
}

// Deliver propagates result across edge, following spec.md §4.4 step 5.
func (e *DefaultExecutor) Deliver(g *Graph, edge *Edge, result ExecResult) error {
	target := g.Node(edge.To)

	target.mu.Lock()
	defer target.mu.Unlock()

	target.record.upstreamExecStates[edge.From] = result.State

	if edge.Pred != nil {
		if existing, ok := target.record.executionCondition[edge.From]; ok && !samePredicate(existing, edge.Pred) {
			return &ConflictingConditionsError{From: edge.From, To: edge.To, First: existing, Second: edge.Pred}
		}
		target.record.executionCondition[edge.From] = edge.Pred
		target.record.conditionalExecution = true
	}

	if result.State == StateFinished {
		target.record.upstreamOutputs[edge.From] = result.Output
	}
	return nil
}

// samePredicate compares two predicates for the purpose of conflict
// detection: identical dynamic type and value.
func samePredicate(a, b Predicate) bool {
	defer func() { recover() }() //nolint:errcheck // uncomparable predicate payloads must not panic
	return fmt.Sprintf("%#v", a) == fmt.Sprintf("%#v", b)
}

// ReportStart emits a batch_start event for each member of batch when
// Verbose is set.
func (e *DefaultExecutor) ReportStart(batch []string) {
	for _, id := range batch {
		if e.Verbose {
			e.Emitter.Emit(emit.Event{RunID: e.runID, NodeID: id, Msg: "batch_start"})
		}
	}
}

// ReportFinish emits a batch_finish event for each completed result when
// Verbose is set.
func (e *DefaultExecutor) ReportFinish(results []ExecResult) {
	for _, r := range results {
		if e.Verbose {
			e.Emitter.Emit(emit.Event{
				RunID:  e.runID,
				NodeID: r.NodeID,
				Msg:    "batch_finish",
				Meta:   map[string]any{"state": r.State.String()},
			})
		}
	}
}

func (e *DefaultExecutor) emitStart(nodeID, desc string) {
	e.Emitter.Emit(emit.Event{RunID: e.runID, NodeID: nodeID, Msg: "node_start", Meta: map[string]any{"desc": desc}})
}

func (e *DefaultExecutor) emitFinish(nodeID, desc string, state ExecState, output any) {
	e.Emitter.Emit(emit.Event{
		RunID:  e.runID,
		NodeID: nodeID,
		Msg:    "node_finish",
		Meta:   map[string]any{"desc": desc, "state": state.String(), "output": output},
	})
}

func (e *DefaultExecutor) emitAbort(nodeID string) {
	e.Emitter.Emit(emit.Event{RunID: e.runID, NodeID: nodeID, Msg: "node_aborted"})
}

func (e *DefaultExecutor) emitError(nodeID string, err error) {
	e.Emitter.Emit(emit.Event{RunID: e.runID, NodeID: nodeID, Msg: "node_error", Meta: map[string]any{"error": err.Error()}})
}
