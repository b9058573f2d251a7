// Package tools implements the callable tools an llm.ChatModel may invoke,
// and the Registry that advertises them as llm.ToolSpec through a
// dagflow run's Specs table, mirroring the original's Toolbox.
package tools

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dagflowio/dagflow/llm"
)

// Tool is a named, callable function an llm.ToolCall dispatches to.
type Tool interface {
	Name() string
	Call(ctx context.Context, input map[string]any) (map[string]any, error)
}

// Registry is a name-indexed collection of Tools, mirroring the original's
// Toolbox class: tools register here, and their llm.ToolSpec is what
// dagflow.WithSpec attaches to the dispatch node so llm.toolSpecsFromState
// can build the provider's tool list.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	specs map[string]llm.ToolSpec
}

// NewRegistry builds an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]Tool), specs: make(map[string]llm.ToolSpec)}
}

// Register adds tool under spec.Name, overwriting any tool with the same
// name already registered.
func (r *Registry) Register(spec llm.ToolSpec, tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[spec.Name] = tool
	r.specs[spec.Name] = spec
}

// Specs returns every registered llm.ToolSpec, sorted by name.
func (r *Registry) Specs() []llm.ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.specs))
	for n := range r.specs {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]llm.ToolSpec, 0, len(names))
	for _, n := range names {
		out = append(out, r.specs[n])
	}
	return out
}

// Call dispatches a model-requested tool invocation by name.
func (r *Registry) Call(ctx context.Context, call llm.ToolCall) (map[string]any, error) {
	r.mu.RLock()
	t, ok := r.tools[call.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("tools: unknown tool %q", call.Name)
	}
	return t.Call(ctx, call.Input)
}
