// Package progress renders dagflow run progress from an emit.Emitter's
// event stream, keeping the core scheduler UI-agnostic: it emits
// lifecycle events, and progress reports how many of a known total have
// completed (spec.md §6's progress ticks, grounded on the original's
// rich.progress.Progress usage in __raw_run).
package progress

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/dagflowio/dagflow/dagflow/emit"
)

// Reporter consumes node_finish/node_aborted events and prints a running
// "done/total" tick to w. It implements emit.Emitter so it can be used
// standalone or combined with another emitter via Tee.
type Reporter struct {
	w     io.Writer
	total int
	mu    sync.Mutex
	done  int
}

// NewReporter builds a Reporter expecting total node completions.
func NewReporter(w io.Writer, total int) *Reporter {
	return &Reporter{w: w, total: total}
}

// Emit advances the tick on node_finish or node_aborted events.
func (r *Reporter) Emit(event emit.Event) {
	switch event.Msg {
	case "node_finish", "node_aborted":
	default:
		return
	}
	r.mu.Lock()
	r.done++
	done := r.done
	r.mu.Unlock()
	fmt.Fprintf(r.w, "\r[%d/%d] %s: %s", done, r.total, event.NodeID, event.Msg)
	if done == r.total {
		fmt.Fprintln(r.w)
	}
}

// EmitBatch emits each event in order.
func (r *Reporter) EmitBatch(_ context.Context, events []emit.Event) error {
	for _, e := range events {
		r.Emit(e)
	}
	return nil
}

// Flush is a no-op: Reporter writes synchronously.
func (r *Reporter) Flush(context.Context) error { return nil }

// Tee fans a single event out to every emitter in backends, e.g.
// Tee(progress.NewReporter(os.Stdout, n), emit.NewBufferedEmitter()).
type Tee struct {
	Backends []emit.Emitter
}

// Emit forwards event to every backend.
func (t Tee) Emit(event emit.Event) {
	for _, b := range t.Backends {
		b.Emit(event)
	}
}

// EmitBatch forwards events to every backend.
func (t Tee) EmitBatch(ctx context.Context, events []emit.Event) error {
	for _, b := range t.Backends {
		if err := b.EmitBatch(ctx, events); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes every backend, returning the first error encountered.
func (t Tee) Flush(ctx context.Context) error {
	var first error
	for _, b := range t.Backends {
		if err := b.Flush(ctx); err != nil && first == nil {
			first = err
		}
	}
	return first
}
