package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dagflowio/dagflow/dagflow"
)

func TestNewChatTransform_SendsSystemPromptAndQuery(t *testing.T) {
	model := &MockChatModel{Responses: []ChatOut{{Text: "hi"}}}
	transform := NewChatTransform(model, "be terse")

	state := dagflow.NewRunState(nil, nil)
	out, err := transform("what's up?", nil, state)
	require.NoError(t, err)
	assert.Equal(t, ChatOut{Text: "hi"}, out)

	calls := model.Calls()
	require.Len(t, calls, 1)
	require.Len(t, calls[0].Messages, 2)
	assert.Equal(t, RoleSystem, calls[0].Messages[0].Role)
	assert.Equal(t, "be terse", calls[0].Messages[0].Content)
	assert.Equal(t, RoleUser, calls[0].Messages[1].Role)
	assert.Equal(t, "what's up?", calls[0].Messages[1].Content)
}

func TestNewChatTransform_CollectsToolSpecsFromStateSortedByNodeID(t *testing.T) {
	model := &MockChatModel{Responses: []ChatOut{{Text: "ok"}}}
	transform := NewChatTransform(model, "")

	specs := map[string]any{
		"z_node": ToolSpec{Name: "z"},
		"a_node": ToolSpec{Name: "a"},
	}
	state := dagflow.NewRunState(nil, specs)

	_, err := transform(nil, nil, state)
	require.NoError(t, err)

	calls := model.Calls()
	require.Len(t, calls[0].Tools, 2)
	assert.Equal(t, "a", calls[0].Tools[0].Name)
	assert.Equal(t, "z", calls[0].Tools[1].Name)
}

func TestNewToolResultTransform_AppendsUpstreamResultsSortedByProducerID(t *testing.T) {
	model := &MockChatModel{Responses: []ChatOut{{Text: "final"}}}
	transform := NewToolResultTransform(model, "summarize")

	upstream := map[string]any{
		"b_tool": map[string]any{"result": 2},
		"a_tool": map[string]any{"result": 1},
	}
	state := dagflow.NewRunState(nil, nil)
	out, err := transform(ChatOut{Text: "prior turn"}, upstream, state)
	require.NoError(t, err)
	assert.Equal(t, ChatOut{Text: "final"}, out)

	calls := model.Calls()
	msgs := calls[0].Messages
	require.Len(t, msgs, 4) // system + prior turn + 2 tool results
	assert.Contains(t, msgs[2].Content, "a_tool")
	assert.Contains(t, msgs[3].Content, "b_tool")
}

func TestToMessages_HandlesNilAndScalarPrompt(t *testing.T) {
	assert.Empty(t, toMessages("", nil))
	msgs := toMessages("", 42)
	require.Len(t, msgs, 1)
	assert.Equal(t, "42", msgs[0].Content)
}
