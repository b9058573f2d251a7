package emit

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedEmitter_StoresEventsPerRun(t *testing.T) {
	b := NewBufferedEmitter()
	b.Emit(Event{RunID: "r1", NodeID: "a", Msg: "node_start"})
	b.Emit(Event{RunID: "r1", NodeID: "a", Msg: "node_finish"})
	b.Emit(Event{RunID: "r2", NodeID: "x", Msg: "node_start"})

	assert.Len(t, b.GetHistory("r1"), 2)
	assert.Len(t, b.GetHistory("r2"), 1)
	assert.Empty(t, b.GetHistory("unknown"))
}

func TestBufferedEmitter_GetHistoryWithFilter(t *testing.T) {
	b := NewBufferedEmitter()
	b.Emit(Event{RunID: "r1", NodeID: "a", Msg: "node_start"})
	b.Emit(Event{RunID: "r1", NodeID: "b", Msg: "node_start"})
	b.Emit(Event{RunID: "r1", NodeID: "a", Msg: "node_finish"})

	filtered := b.GetHistoryWithFilter("r1", HistoryFilter{NodeID: "a"})
	require.Len(t, filtered, 2)

	filtered = b.GetHistoryWithFilter("r1", HistoryFilter{Msg: "node_start"})
	require.Len(t, filtered, 2)

	filtered = b.GetHistoryWithFilter("r1", HistoryFilter{NodeID: "a", Msg: "node_finish"})
	require.Len(t, filtered, 1)
}

func TestBufferedEmitter_Clear(t *testing.T) {
	b := NewBufferedEmitter()
	b.Emit(Event{RunID: "r1", NodeID: "a", Msg: "node_start"})
	b.Emit(Event{RunID: "r2", NodeID: "a", Msg: "node_start"})

	b.Clear("r1")
	assert.Empty(t, b.GetHistory("r1"))
	assert.Len(t, b.GetHistory("r2"), 1)

	b.Clear("")
	assert.Empty(t, b.GetHistory("r2"))
}

func TestLogEmitter_TextMode(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogEmitter(&buf, false)
	l.Emit(Event{RunID: "r1", NodeID: "a", Msg: "node_finish", Meta: map[string]any{"state": "finished"}})

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "[node_finish] runID=r1 nodeID=a"))
	assert.Contains(t, out, `"state":"finished"`)
}

func TestLogEmitter_JSONMode(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogEmitter(&buf, true)
	l.Emit(Event{RunID: "r1", NodeID: "a", Msg: "node_start"})

	assert.Contains(t, buf.String(), `"RunID":"r1"`)
	assert.Contains(t, buf.String(), `"NodeID":"a"`)
}

func TestLogEmitter_EmitBatch(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogEmitter(&buf, false)
	err := l.EmitBatch(context.Background(), []Event{
		{RunID: "r1", NodeID: "a", Msg: "node_start"},
		{RunID: "r1", NodeID: "a", Msg: "node_finish"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(buf.String(), "\n"))
}

func TestNullEmitter_NeverErrors(t *testing.T) {
	n := NullEmitter{}
	n.Emit(Event{RunID: "r1"})
	require.NoError(t, n.EmitBatch(context.Background(), []Event{{RunID: "r1"}}))
	require.NoError(t, n.Flush(context.Background()))
}
