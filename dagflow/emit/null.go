package emit

import "context"

// NullEmitter discards every event. It is the zero-configuration default
// when no observability backend is configured.
type NullEmitter struct{}

// Emit is a no-op.
func (NullEmitter) Emit(Event) {}

// EmitBatch is a no-op.
func (NullEmitter) EmitBatch(context.Context, []Event) error { return nil }

// Flush is a no-op.
func (NullEmitter) Flush(context.Context) error { return nil }
