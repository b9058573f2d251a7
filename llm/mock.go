package llm

import (
	"context"
	"sync"
)

// MockChatModel is a deterministic, in-memory ChatModel for tests and the
// dagflow-demo CLI: it plays back a fixed sequence of responses and
// records every call it received.
type MockChatModel struct {
	Responses []ChatOut
	Err       error

	mu    sync.Mutex
	calls []MockCall
	next  int
}

// MockCall records one Chat invocation.
type MockCall struct {
	Messages []Message
	Tools    []ToolSpec
}

// Chat returns the next configured response (repeating the last one once
// exhausted), or Err if set. Every call is recorded regardless of outcome.
func (m *MockChatModel) Chat(ctx context.Context, messages []Message, tools []ToolSpec) (ChatOut, error) {
	if err := ctx.Err(); err != nil {
		return ChatOut{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{Messages: messages, Tools: tools})

	if m.Err != nil {
		return ChatOut{}, m.Err
	}
	if len(m.Responses) == 0 {
		return ChatOut{}, nil
	}
	idx := m.next
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	} else {
		m.next++
	}
	return m.Responses[idx], nil
}

// Calls returns a copy of every recorded invocation.
func (m *MockChatModel) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockCall, len(m.calls))
	copy(out, m.calls)
	return out
}
