package llm

import (
	"context"
	"fmt"
	"sort"

	"github.com/dagflowio/dagflow/dagflow"
)

// toolSpecsFromState collects every llm.ToolSpec registered in the run via
// dagflow.WithSpec, sorted by node id for deterministic tool-list order
// across runs (spec.md §3/§6's "Specs" reserved key).
func toolSpecsFromState(state *dagflow.RunState) []ToolSpec {
	ids := make([]string, 0, len(state.Specs))
	for id := range state.Specs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]ToolSpec, 0, len(ids))
	for _, id := range ids {
		if ts, ok := state.Specs[id].(ToolSpec); ok {
			out = append(out, ts)
		}
	}
	return out
}

// NewChatTransform builds a dagflow.TransformFunc that sends prompt (a
// string or []Message) as a fresh conversation to model, along with every
// ToolSpec registered in the run, and returns the model's ChatOut. This
// reproduces the original's llm_resp node: a single-shot model call with
// no upstream dependency.
func NewChatTransform(model ChatModel, systemPrompt string) dagflow.TransformFunc {
	return func(prompt any, _ map[string]any, state *dagflow.RunState) (any, error) {
		messages := toMessages(systemPrompt, prompt)
		return model.Chat(context.Background(), messages, toolSpecsFromState(state))
	}
}

// NewToolResultTransform builds a dagflow.TransformFunc that replies to
// model with the prior assistant turn (prompt) plus every upstream node's
// tool-execution result appended as a user message, reproducing the
// original's llm_resp_given_tool node: the model is given the results of
// the tool calls it requested and asked to produce a final answer.
func NewToolResultTransform(model ChatModel, systemPrompt string) dagflow.TransformFunc {
	return func(prompt any, upstream map[string]any, state *dagflow.RunState) (any, error) {
		messages := toMessages(systemPrompt, prompt)

		ids := make([]string, 0, len(upstream))
		for id := range upstream {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			messages = append(messages, Message{
				Role:    RoleUser,
				Content: fmt.Sprintf("tool result from %s: %v", id, upstream[id]),
			})
		}
		return model.Chat(context.Background(), messages, toolSpecsFromState(state))
	}
}

func toMessages(systemPrompt string, prompt any) []Message {
	var messages []Message
	if systemPrompt != "" {
		messages = append(messages, Message{Role: RoleSystem, Content: systemPrompt})
	}
	switch p := prompt.(type) {
	case []Message:
		messages = append(messages, p...)
	case string:
		messages = append(messages, Message{Role: RoleUser, Content: p})
	case nil:
	default:
		messages = append(messages, Message{Role: RoleUser, Content: fmt.Sprintf("%v", p)})
	}
	return messages
}
