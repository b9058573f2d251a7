package dagflow

import (
	"fmt"
	"sort"
	"strings"
)

// Inspect renders g as a plain-text indented tree rooted at each source
// node, mirroring the original's show_tree/walk_dag: each line shows a
// node's id, resolved description, execution state, and (once run)
// output, followed by each incoming conditional edge's producer and
// whether its predicate matched that producer's output. A node already
// printed earlier in the walk is shown again only as a "(see above)"
// marker rather than re-expanded, since shared descendants of a DAG are
// not a tree.
func Inspect(g *Graph) string {
	var b strings.Builder
	visited := make(map[string]bool)
	for _, id := range g.Sources() {
		walk(g, id, 0, visited, &b)
	}
	return b.String()
}

func walk(g *Graph, id string, depth int, visited map[string]bool, b *strings.Builder) {
	n := g.Node(id)
	indent := strings.Repeat("  ", depth)

	if visited[id] {
		fmt.Fprintf(b, "%s%s (see above)\n", indent, id)
		return
	}
	visited[id] = true

	line := fmt.Sprintf("%s%s [%s]", indent, id, n.State())
	if desc := n.ResolvedDesc(); desc != "" {
		line += " - " + desc
	}
	if n.State() == StateFinished {
		line += fmt.Sprintf(" -> %v", n.Output())
	}
	conds := n.ExecutionCondition()
	producers := make([]string, 0, len(conds))
	for p := range conds {
		producers = append(producers, p)
	}
	sort.Strings(producers)
	for _, p := range producers {
		verdict := "unmatched"
		if pn := g.Node(p); pn.State() == StateFinished && conds[p].Match(pn.Output()) {
			verdict = "matched"
		}
		line += fmt.Sprintf(" {%s: %s}", p, verdict)
	}
	fmt.Fprintln(b, line)

	succs := g.Successors(id)
	sort.Strings(succs)
	for _, s := range succs {
		walk(g, s, depth+1, visited, b)
	}
}
