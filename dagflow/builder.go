package dagflow

import "context"

// Builder is the fluent authoring surface for assembling a Graph: add
// nodes, connect them unconditionally or under a predicate, then Run. It
// holds no package-level "current graph" state — each Builder is
// independent, so multiple DAGs can be under construction concurrently
// (spec.md §9's redesign note against a global current-DAG).
type Builder struct {
	g *Graph
}

// NewBuilder starts an empty Builder.
func NewBuilder() *Builder {
	return &Builder{g: NewGraph()}
}

// AddNode registers n and returns a Handle for fluent edge authoring. It
// panics on a duplicate or invalid node, since graph assembly is a
// construction-time activity, not a runtime one — callers that need an
// error return can use Graph.AddNode directly on Builder.Graph().
func (b *Builder) AddNode(n *Node) Handle {
	if err := b.g.AddNode(n); err != nil {
		panic(err)
	}
	return Handle{b: b, id: n.ID}
}

// MakeNode builds a Node from id/transform/opts and registers it in one
// call, mirroring the original's @make_node() decorator (spec.md §9's
// supplemented-feature note).
func (b *Builder) MakeNode(id string, transform TransformFunc, opts ...NodeOption) Handle {
	return b.AddNode(NewNode(id, transform, opts...))
}

// Connect adds an unconditional edge u -> v.
func (b *Builder) Connect(u, v string) *Builder {
	if err := b.g.AddEdge(u, v); err != nil {
		panic(err)
	}
	return b
}

// ConnectIf adds an edge u -> v gated by pred.
func (b *Builder) ConnectIf(u string, pred Predicate, v string) *Builder {
	if err := b.g.AddConditionalEdge(u, pred, v); err != nil {
		panic(err)
	}
	return b
}

// SetGatePolicy overrides node id's gate policy after construction.
func (b *Builder) SetGatePolicy(id string, policy GatePolicy) *Builder {
	b.g.Node(id).GatePolicy = policy
	return b
}

// Graph returns the underlying Graph, for callers that want the error-
// returning AddNode/AddEdge API or direct access to Scheduler.
func (b *Builder) Graph() *Graph { return b.g }

// Run resets every node and executes the graph to completion, equivalent
// to NewScheduler(b.Graph()).Run(...).
func (b *Builder) Run(ctx context.Context, runID string, input any, opts ...RunOption) (*RunResult, error) {
	return NewScheduler(b.g).Run(ctx, runID, input, opts...)
}

// Inspect renders the graph's current structure and, once run, execution
// state as a plain-text tree (see inspect.go).
func (b *Builder) Inspect() string {
	return Inspect(b.g)
}

// Handle is a fluent reference to a just-added node, letting callers chain
// edge authoring: b.AddNode(a).To("b").To("c").
type Handle struct {
	b  *Builder
	id string
}

// ID returns the handle's node id.
func (h Handle) ID() string { return h.id }

// To adds an unconditional edge from this handle's node to v and returns
// the handle unchanged, so calls can chain: u.To(v1).To(v2).
func (h Handle) To(v string) Handle {
	h.b.Connect(h.id, v)
	return h
}

// WhenTo adds an edge from this handle's node to v, gated by pred.
func (h Handle) WhenTo(pred Predicate, v string) Handle {
	h.b.ConnectIf(h.id, pred, v)
	return h
}
