package dagflow

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Processor drives a dispatched batch of node ids through an Executor,
// returning once every member of the batch has finished or aborted
// (spec.md §4.5).
type Processor interface {
	Run(ctx context.Context, g *Graph, state *RunState, exec Executor, batch []string) []ExecResult
}

// SequentialProcessor executes a batch one node at a time, in the order
// given. Determinism here is trivial: there is no concurrency to race.
type SequentialProcessor struct{}

// Run executes every member of batch in order, stopping early only if ctx
// is cancelled.
func (SequentialProcessor) Run(ctx context.Context, g *Graph, state *RunState, exec Executor, batch []string) []ExecResult {
	results := make([]ExecResult, 0, len(batch))
	for _, id := range batch {
		select {
		case <-ctx.Done():
			return results
		default:
		}
		item := exec.Param(g, id)
		results = append(results, exec.Execute(ctx, g, state, item))
	}
	return results
}

// ParallelProcessor executes every member of a batch concurrently, one
// goroutine per node, and waits for all of them to finish (spec.md §4.5).
// Result order matches batch order regardless of goroutine completion
// order, keeping downstream delivery deterministic.
type ParallelProcessor struct{}

// Run launches one goroutine per batch member via an errgroup and blocks
// until all return. A node transform never fails the group itself — gate
// and transform errors are carried in each ExecResult, not in the group's
// error — so every member always runs to completion regardless of its
// siblings' outcomes.
func (ParallelProcessor) Run(ctx context.Context, g *Graph, state *RunState, exec Executor, batch []string) []ExecResult {
	results := make([]ExecResult, len(batch))
	var eg errgroup.Group
	for i, id := range batch {
		i, item := i, exec.Param(g, id)
		eg.Go(func() error {
			results[i] = exec.Execute(ctx, g, state, item)
			return nil
		})
	}
	_ = eg.Wait()
	return results
}
