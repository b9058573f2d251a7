// Package llm adapts chat-completion providers (Anthropic, OpenAI, Google)
// to dagflow.TransformFunc, so a dagflow.Node can be "the node that calls
// the model" the way the original's llm_resp/llm_resp_given_tool nodes do.
package llm

import "context"

// ChatModel is the common interface every provider adapter satisfies.
// Implementations translate Message/ToolSpec into their provider's wire
// format and translate the reply back into ChatOut.
type ChatModel interface {
	Chat(ctx context.Context, messages []Message, tools []ToolSpec) (ChatOut, error)
}

// Message is one turn of a conversation.
type Message struct {
	Role    string
	Content string
}

// Standard roles, shared across every provider adapter.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ToolSpec describes a callable tool the model may invoke. Nodes populate
// this via dagflow.WithSpec, and the engine collects it into
// RunState.Specs at registration time; NewChatTransform and
// NewToolResultTransform build the []ToolSpec they pass to Chat from that
// table.
type ToolSpec struct {
	Name        string
	Description string
	Schema      map[string]any
}

// ChatOut is a model's reply: free text, zero or more tool calls, or both.
type ChatOut struct {
	Text      string
	ToolCalls []ToolCall
}

// ToolCall is one tool invocation the model requested.
type ToolCall struct {
	Name  string
	Input map[string]any
}
