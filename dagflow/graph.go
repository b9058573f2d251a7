package dagflow

import "sort"

// Edge is a single directed edge, optionally gated by a predicate attached
// on the producer side (spec.md §3). Two distinct edges may connect the
// same (From, To) pair, each carrying its own predicate — this is what
// lets ConflictingConditionsError be detected at delivery time rather
// than at edge-insertion time (spec.md §4.2/§7/§9).
type Edge struct {
	From, To string
	Pred     Predicate // nil for an unconditional edge
}

// Graph is a DAG store: vertices, edges, indegree, predecessors/successors,
// and topological starts/terminals (spec.md §4.2).
type Graph struct {
	nodes map[string]*Node
	order []string // insertion order, for deterministic iteration

	// adjacency
	successorsOf   map[string][]string // distinct node ids, for gate/indegree bookkeeping
	predecessorsOf map[string][]string
	edgesFrom      map[string][]*Edge // from -> every declared edge, in declaration order

	specs map[string]any // id -> spec, mirrors RunState.Specs at registration
}

// NewGraph constructs an empty Graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:          make(map[string]*Node),
		successorsOf:   make(map[string][]string),
		predecessorsOf: make(map[string][]string),
		edgesFrom:      make(map[string][]*Edge),
		specs:          make(map[string]any),
	}
}

// AddNode registers a vertex. It returns a GraphSyntaxError if n is nil or
// a node with the same id is already registered. Adding a node records its
// Spec into the graph's spec table, consumed by RunState.Specs at Run
// start (spec.md §4.2).
func (g *Graph) AddNode(n *Node) error {
	if n == nil {
		return &GraphSyntaxError{Msg: "AddNode: node must not be nil"}
	}
	if n.ID == "" {
		return &GraphSyntaxError{Msg: "AddNode: node id must not be empty"}
	}
	if _, exists := g.nodes[n.ID]; exists {
		return &GraphSyntaxError{Msg: "AddNode: duplicate node id " + n.ID}
	}
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	g.successorsOf[n.ID] = nil
	g.predecessorsOf[n.ID] = nil
	if n.Spec != nil {
		g.specs[n.ID] = n.Spec
	}
	return nil
}

// Node returns the registered node for id, or nil if not present.
func (g *Graph) Node(id string) *Node { return g.nodes[id] }

// Vertices returns every registered node id in insertion order.
func (g *Graph) Vertices() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// AddEdge adds an unconditional edge u -> v. It is rejected if either node
// is unregistered or the edge would create a cycle (spec.md §3).
func (g *Graph) AddEdge(u, v string) error {
	return g.addEdge(u, v, nil)
}

// AddConditionalEdge adds an edge u -> v gated by pred: the edge is only
// treated as satisfied for v's execution gate when pred.Match(u's output)
// is true (spec.md §3/§4.2). A second AddConditionalEdge call for the same
// (u, v) pair with a different predicate is accepted at construction time;
// it surfaces as a ConflictingConditionsError the first time u delivers to
// v at run time (spec.md §9's open question — late detection preserved).
func (g *Graph) AddConditionalEdge(u string, pred Predicate, v string) error {
	if pred == nil {
		return &GraphSyntaxError{Msg: "AddConditionalEdge: predicate must not be nil"}
	}
	return g.addEdge(u, v, pred)
}

func (g *Graph) addEdge(u, v string, pred Predicate) error {
	if _, ok := g.nodes[u]; !ok {
		return &GraphSyntaxError{Msg: "AddEdge: unknown source node " + u}
	}
	if _, ok := g.nodes[v]; !ok {
		return &GraphSyntaxError{Msg: "AddEdge: unknown target node " + v}
	}
	if u == v {
		return &CycleError{From: u, To: v}
	}

	existing, firstEdgeBetweenPair := firstEdge(g.edgesFrom[u], v)
	if !firstEdgeBetweenPair && g.reaches(v, u) {
		return &CycleError{From: u, To: v}
	}
	if firstEdgeBetweenPair && samePredicate(existing.Pred, pred) {
		return nil // identical edge re-declared; no-op
	}

	g.edgesFrom[u] = append(g.edgesFrom[u], &Edge{From: u, To: v, Pred: pred})
	if !firstEdgeBetweenPair {
		g.successorsOf[u] = append(g.successorsOf[u], v)
		g.predecessorsOf[v] = append(g.predecessorsOf[v], u)
	}
	return nil
}

// firstEdge returns the first edge in edges whose To matches v, mirroring
// the pre-multi-edge lookup used by addEdge's idempotence/cycle checks.
func firstEdge(edges []*Edge, v string) (*Edge, bool) {
	for _, e := range edges {
		if e.To == v {
			return e, true
		}
	}
	return nil, false
}

// reaches reports whether there is a path from -> to in the graph built so
// far, used by addEdge to reject edges that would introduce a cycle.
func (g *Graph) reaches(from, to string) bool {
	if from == to {
		return true
	}
	visited := make(map[string]bool)
	var dfs func(string) bool
	dfs = func(cur string) bool {
		if visited[cur] {
			return false
		}
		visited[cur] = true
		for _, next := range g.successorsOf[cur] {
			if next == to || dfs(next) {
				return true
			}
		}
		return false
	}
	return dfs(from)
}

// Predecessors returns the ids of v's direct upstream neighbors (each id
// appears once even if multiple parallel edges connect the same pair).
func (g *Graph) Predecessors(v string) []string {
	out := make([]string, len(g.predecessorsOf[v]))
	copy(out, g.predecessorsOf[v])
	return out
}

// Successors returns the ids of v's direct downstream neighbors (each id
// appears once even if multiple parallel edges connect the same pair; use
// EdgesFrom to enumerate every declared edge for delivery).
func (g *Graph) Successors(v string) []string {
	out := make([]string, len(g.successorsOf[v]))
	copy(out, g.successorsOf[v])
	return out
}

// EdgesFrom returns every edge declared with u as its source, in
// declaration order. A (u, v) pair with two differing predicates appears
// as two entries here — this is what the scheduler delivers through,
// letting Executor.Deliver detect the conflict (spec.md §4.4 step 5/§9).
func (g *Graph) EdgesFrom(u string) []*Edge {
	out := make([]*Edge, len(g.edgesFrom[u]))
	copy(out, g.edgesFrom[u])
	return out
}

// Indegree returns the number of direct predecessors of v.
func (g *Graph) Indegree(v string) int { return len(g.predecessorsOf[v]) }

// Sources returns every node with indegree 0, sorted by id.
func (g *Graph) Sources() []string {
	var out []string
	for _, id := range g.order {
		if g.Indegree(id) == 0 {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Terminals returns every node with no successors, sorted by id.
func (g *Graph) Terminals() []string {
	var out []string
	for _, id := range g.order {
		if len(g.successorsOf[id]) == 0 {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Specs returns the spec table accumulated by AddNode, keyed by node id.
func (g *Graph) Specs() map[string]any {
	out := make(map[string]any, len(g.specs))
	for k, v := range g.specs {
		out[k] = v
	}
	return out
}

// resetAll clears every node's per-run mutable record, mirroring the
// original's `reset_all_nodes` (spec.md §6's `reset(handle)`).
func (g *Graph) resetAll() {
	for _, id := range g.order {
		g.nodes[id].reset()
	}
}
