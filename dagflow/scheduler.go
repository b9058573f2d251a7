package dagflow

import (
	"context"
	"sort"
	"time"
)

// RunResult is what a completed Scheduler.Run returns: the shared run
// state plus bookkeeping useful for tests and the Inspect tree.
type RunResult struct {
	State       *RunState
	FinishOrder []string // node ids in the order each was dispatched
	NodeStates  map[string]ExecState
	RoundCount  int
}

// Scheduler drives a Graph to completion: it repeatedly selects idle
// (all-predecessors-done) nodes, dispatches them through a Processor and
// Executor, delivers their results to successors, and repeats until every
// node is done or no further progress is possible (spec.md §4.4, §4.5).
type Scheduler struct {
	g *Graph
}

// NewScheduler wraps g for execution.
func NewScheduler(g *Graph) *Scheduler {
	return &Scheduler{g: g}
}

// Run executes every node of s's graph to completion and returns the
// shared run state. It returns ErrNoProgress if the graph has an idle set
// that never becomes dispatchable (a configuration bug, not a user error —
// cycles are already rejected at AddEdge time).
func (s *Scheduler) Run(ctx context.Context, runID string, input any, opts ...RunOption) (*RunResult, error) {
	cfg := defaultRunConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	s.g.resetAll()
	state := NewRunState(input, s.g.Specs())

	// Default rule: a terminal node without its own OutputWhen commits its
	// output as the run's final output unless it was aborted.
	for _, id := range s.g.Terminals() {
		if n := s.g.Node(id); n.OutputWhen == nil {
			n.OutputWhen = func(_ any, _ map[string]any, _ any, st ExecState) bool { return st != StateAborted }
		}
	}

	exec := NewDefaultExecutor(runID, cfg.emitter, cfg.verbose)
	exec.OnStart = cfg.onStart
	exec.OnFinish = cfg.onFinish

	all := s.g.Vertices()
	done := make(map[string]bool, len(all))
	dispatched := make(map[string]bool, len(all))
	running := make(map[string]bool) // always empty between rounds; kept for Selector's signature

	var finishOrder []string
	rounds := 0

	for len(done) < len(all) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		idle := s.idleNodes(all, dispatched, done)
		batch := cfg.selector.Select(running, idle)
		if len(batch) == 0 {
			return nil, ErrNoProgress
		}
		rounds++

		for _, id := range batch {
			dispatched[id] = true
		}

		exec.ReportStart(batch)
		if cfg.metrics != nil {
			cfg.metrics.SetInflight(len(batch))
		}
		results := cfg.processor.Run(ctx, s.g, state, exec, batch)
		if cfg.metrics != nil {
			cfg.metrics.SetInflight(0)
		}
		exec.ReportFinish(results)

		for _, r := range results {
			if r.Err != nil {
				return nil, r.Err
			}
			done[r.NodeID] = true
			finishOrder = append(finishOrder, r.NodeID)
			if cfg.metrics != nil {
				cfg.metrics.ObserveNode(r.NodeID, r.State)
			}
			for _, edge := range s.g.EdgesFrom(r.NodeID) {
				if err := exec.Deliver(s.g, edge, r); err != nil {
					return nil, err
				}
			}
		}

		if cfg.pacing > 0 && len(done) < len(all) {
			timer := time.NewTimer(cfg.pacing)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}

	nodeStates := make(map[string]ExecState, len(all))
	for _, id := range all {
		nodeStates[id] = s.g.Node(id).State()
	}

	return &RunResult{State: state, FinishOrder: finishOrder, NodeStates: nodeStates, RoundCount: rounds}, nil
}

// idleNodes returns every node not yet dispatched whose predecessors have
// all been marked done, sorted by id for deterministic downstream
// selection (spec.md §4.4).
func (s *Scheduler) idleNodes(all []string, dispatched, done map[string]bool) []string {
	var out []string
	for _, id := range all {
		if dispatched[id] {
			continue
		}
		ready := true
		for _, pred := range s.g.Predecessors(id) {
			if !done[pred] {
				ready = false
				break
			}
		}
		if ready {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}
