package progress

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagflowio/dagflow/dagflow/emit"
)

func TestReporter_TicksOnFinishAndAborted(t *testing.T) {
	var buf bytes.Buffer
	r := NewReporter(&buf, 2)

	r.Emit(emit.Event{NodeID: "a", Msg: "node_start"}) // ignored
	r.Emit(emit.Event{NodeID: "a", Msg: "node_finish"})
	r.Emit(emit.Event{NodeID: "b", Msg: "node_aborted"})

	out := buf.String()
	assert.Contains(t, out, "[1/2] a: node_finish")
	assert.Contains(t, out, "[2/2] b: node_aborted")
}

func TestTee_FansOutToEveryBackend(t *testing.T) {
	a := emit.NewBufferedEmitter()
	b := emit.NewBufferedEmitter()
	tee := Tee{Backends: []emit.Emitter{a, b}}

	tee.Emit(emit.Event{RunID: "r1", NodeID: "x", Msg: "node_start"})
	require.NoError(t, tee.EmitBatch(context.Background(), []emit.Event{
		{RunID: "r1", NodeID: "x", Msg: "node_finish"},
	}))

	assert.Len(t, a.GetHistory("r1"), 2)
	assert.Len(t, b.GetHistory("r1"), 2)
	require.NoError(t, tee.Flush(context.Background()))
}
