package emit

// Event is a single observability event raised during a run: a node
// starting, finishing, aborting, or erroring (spec.md §4.7).
type Event struct {
	// RunID identifies the run that raised this event.
	RunID string

	// NodeID identifies the node this event concerns. Empty for run-level
	// events.
	NodeID string

	// Msg names the event: "node_start", "node_finish", "node_aborted",
	// "node_error", "batch_start", "batch_finish".
	Msg string

	// Meta carries event-specific structured data, e.g. "desc", "state",
	// "output", "error".
	Meta map[string]any
}
