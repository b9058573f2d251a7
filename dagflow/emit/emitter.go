// Package emit provides pluggable observability for dagflow runs: node
// lifecycle events flow through an Emitter, with backends for logging,
// in-memory history, and OpenTelemetry tracing.
package emit

import "context"

// Emitter receives lifecycle events from a running dagflow (spec.md §4.7).
// Implementations must be non-blocking, thread-safe (nodes may finish on
// different goroutines), and must never panic.
type Emitter interface {
	// Emit records a single event. It must not block the caller on a slow
	// or unavailable backend.
	Emit(event Event)

	// EmitBatch records multiple events in one call. Implementations that
	// have no batching advantage may simply loop over Emit.
	EmitBatch(ctx context.Context, events []Event) error

	// Flush blocks until every buffered event has been delivered, or ctx
	// expires. Safe to call more than once.
	Flush(ctx context.Context) error
}
