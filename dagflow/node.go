package dagflow

import "sync"

// ExecState is a node's lifecycle state. Every node transitions through
// initialized -> (running ->)? (finished | aborted) exactly once per run.
type ExecState int

const (
	// StateInitialized is a node's state before it has been dispatched.
	StateInitialized ExecState = iota
	// StateRunning is set for the duration of a node's transform call.
	StateRunning
	// StateFinished is a node's terminal state after a successful transform.
	StateFinished
	// StateAborted is a node's terminal state when its execution gate
	// denies it a run; it is not an error (spec.md §4.3, §7).
	StateAborted
)

// String renders the execution state the way the engine's log lines and
// Inspect tree do.
func (s ExecState) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateRunning:
		return "running"
	case StateFinished:
		return "finished"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// GatePolicy selects how a node's execution gate combines its upstream
// neighbors' completion state (spec.md §3, §4.3).
type GatePolicy int

const (
	// GateAll requires every upstream predecessor to be acceptable
	// (finished, or conditionally matched) before the node may run. This
	// is the default.
	GateAll GatePolicy = iota
	// GateAny requires at least one upstream predecessor to be acceptable.
	GateAny
)

// TransformFunc is a node's user-supplied computation. It consumes the
// node's static prompt, the filtered map of upstream outputs keyed by
// producer id, and the run's shared state, and returns a single output
// value. It may have side effects on state but must return one value.
type TransformFunc func(prompt any, upstream map[string]any, state *RunState) (any, error)

// DescFunc computes a node's late-bound, human-readable description after
// upstream filtering has occurred (spec.md §3).
type DescFunc func(prompt any, upstream map[string]any, state *RunState) string

// OutputWhenFunc decides whether a node's output should be committed as
// the run's final output (spec.md §3's dag_output_when).
type OutputWhenFunc func(prompt any, upstream map[string]any, output any, state ExecState) bool

// NodeOption configures a Node at construction time.
type NodeOption func(*Node)

// WithPrompt sets a node's static payload, passed to its transform
// verbatim on every run.
func WithPrompt(prompt any) NodeOption { return func(n *Node) { n.Prompt = prompt } }

// WithDesc sets a node's static human-readable description.
func WithDesc(desc string) NodeOption { return func(n *Node) { n.Desc = desc } }

// WithDescFunc installs a late-bound description function, computed after
// upstream filtering (spec.md §3/§4.3 step 6).
func WithDescFunc(f DescFunc) NodeOption { return func(n *Node) { n.DescFn = f } }

// WithSpec attaches opaque metadata to a node (e.g. a tool schema),
// snapshotted into the run state at registration time.
func WithSpec(spec any) NodeOption { return func(n *Node) { n.Spec = spec } }

// WithOutputWhen installs the predicate deciding whether this node's
// output becomes the run's final output.
func WithOutputWhen(f OutputWhenFunc) NodeOption { return func(n *Node) { n.OutputWhen = f } }

// WithGatePolicy overrides a node's default GateAll policy.
func WithGatePolicy(p GatePolicy) NodeOption { return func(n *Node) { n.GatePolicy = p } }

// Node is a vertex in the DAG: an identity, a transform callback, and a
// per-run mutable execution record (spec.md §3).
type Node struct {
	// ID uniquely identifies this node within its graph.
	ID string

	// Desc is an optional static human-readable description.
	Desc string

	// Prompt is an optional static payload passed to Transform.
	Prompt any

	// Spec is optional opaque metadata (e.g. a tool schema) collected
	// into RunState.Specs at registration time.
	Spec any

	// Transform is the user's computation. Required.
	Transform TransformFunc

	// DescFn optionally overrides Desc with a late-bound computation run
	// after upstream filtering.
	DescFn DescFunc

	// OutputWhen optionally decides whether this node's output commits as
	// the run's final output.
	OutputWhen OutputWhenFunc

	// GatePolicy selects the all-upstream-acceptable (default) or
	// any-upstream-acceptable gate.
	GatePolicy GatePolicy

	mu     sync.Mutex
	record nodeRecord
}

// nodeRecord holds per-run mutable fields, reset between runs (spec.md §3).
type nodeRecord struct {
	upstreamOutputs      map[string]any
	upstreamExecStates   map[string]ExecState
	executionCondition   map[string]Predicate // producer id -> predicate
	conditionalExecution bool
	nodeOutput           any
	state                ExecState
	desc                 string // resolved description for this run
}

// NewNode constructs a Node with the given id and transform, applying any
// options. Transform may be nil for nodes that only route (rare; most
// nodes should set one).
func NewNode(id string, transform TransformFunc, opts ...NodeOption) *Node {
	n := &Node{ID: id, Transform: transform}
	n.reset()
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// reset clears the node's per-run mutable record back to its
// just-constructed state (spec.md §3's "Lifecycles").
func (n *Node) reset() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.record = nodeRecord{
		upstreamOutputs:    make(map[string]any),
		upstreamExecStates: make(map[string]ExecState),
		executionCondition: make(map[string]Predicate),
		state:              StateInitialized,
		desc:               n.Desc,
	}
}

// State returns the node's current execution state, safe for concurrent
// reads while the scheduler drives other nodes.
func (n *Node) State() ExecState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.record.state
}

// Output returns the node's committed output (zero value/nil until
// finished).
func (n *Node) Output() any {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.record.nodeOutput
}

// ResolvedDesc returns the node's description as resolved for the current
// run (static Desc, or DescFn's result once computed).
func (n *Node) ResolvedDesc() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.record.desc
}

// UpstreamExecStates returns a copy of the recorded execution states of
// this node's predecessors as of the last delivery.
func (n *Node) UpstreamExecStates() map[string]ExecState {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make(map[string]ExecState, len(n.record.upstreamExecStates))
	for k, v := range n.record.upstreamExecStates {
		out[k] = v
	}
	return out
}

// ExecutionCondition returns a copy of the predicates installed on this
// node's incoming conditional edges, keyed by producer id.
func (n *Node) ExecutionCondition() map[string]Predicate {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make(map[string]Predicate, len(n.record.executionCondition))
	for k, v := range n.record.executionCondition {
		out[k] = v
	}
	return out
}
