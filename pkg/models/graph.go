package models

import "sort"

// CallEdge is one caller→callee relationship. Created only when a callee
// reference resolved unambiguously or via the tie-break policy; Ambiguous
// marks edges produced for tied candidates.
type CallEdge struct {
	Caller    string `json:"caller"`
	Callee    string `json:"callee"`
	Line      uint32 `json:"line"`
	Ambiguous bool   `json:"ambiguous,omitempty"`
}

// ImportEdge connects two files when an import resolved to a project file.
type ImportEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// CallGraph is the directed function call graph for one run. It is built
// from scratch each run and immutable once Freeze has been called.
type CallGraph struct {
	Edges []CallEdge `json:"edges"`

	out map[string][]string
	in  map[string]int
}

// NewCallGraph returns an empty call graph.
func NewCallGraph() *CallGraph {
	return &CallGraph{Edges: make([]CallEdge, 0)}
}

// AddEdges appends a batch of edges. Must not be called after Freeze.
func (g *CallGraph) AddEdges(edges []CallEdge) {
	g.Edges = append(g.Edges, edges...)
}

// Freeze sorts the edge set deterministically and builds adjacency indexes.
func (g *CallGraph) Freeze() {
	sort.Slice(g.Edges, func(i, j int) bool {
		a, b := g.Edges[i], g.Edges[j]
		if a.Caller != b.Caller {
			return a.Caller < b.Caller
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Callee < b.Callee
	})

	g.out = make(map[string][]string)
	g.in = make(map[string]int)
	for _, e := range g.Edges {
		g.out[e.Caller] = append(g.out[e.Caller], e.Callee)
		// Self-loops are valid (direct recursion) but a function calling
		// itself is not an external caller for reachability purposes.
		if e.Caller != e.Callee {
			g.in[e.Callee]++
		}
	}
}

// Callees returns the callees of a symbol in deterministic edge order.
func (g *CallGraph) Callees(id string) []string {
	return g.out[id]
}

// InDegree returns the number of incoming edges from other symbols,
// counting ambiguous edges and excluding self-loops.
func (g *CallGraph) InDegree(id string) int {
	return g.in[id]
}

// ShortestChain returns the shortest caller→…→callee path between two
// symbols, or nil when no path exists. BFS over the frozen adjacency.
func (g *CallGraph) ShortestChain(from, to string) []string {
	if from == to {
		return []string{from}
	}
	prev := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.out[cur] {
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = cur
			if next == to {
				var chain []string
				for at := to; at != ""; at = prev[at] {
					chain = append(chain, at)
				}
				for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
					chain[i], chain[j] = chain[j], chain[i]
				}
				return chain
			}
			queue = append(queue, next)
		}
	}
	return nil
}

// ImportGraph is the directed file dependency graph for one run.
type ImportGraph struct {
	Files []string     `json:"files"`
	Edges []ImportEdge `json:"edges"`

	out map[string][]string
}

// NewImportGraph returns an empty import graph.
func NewImportGraph() *ImportGraph {
	return &ImportGraph{Files: make([]string, 0), Edges: make([]ImportEdge, 0)}
}

// AddFile registers a file node.
func (g *ImportGraph) AddFile(path string) {
	g.Files = append(g.Files, path)
}

// AddEdge records a resolved import. Duplicate edges collapse in Freeze.
func (g *ImportGraph) AddEdge(from, to string) {
	g.Edges = append(g.Edges, ImportEdge{From: from, To: to})
}

// Freeze sorts files and edges, drops duplicate edges, and builds adjacency.
// Node visiting order downstream is file path lexical order, so cycle lists
// are stable across runs.
func (g *ImportGraph) Freeze() {
	sort.Strings(g.Files)

	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].From != g.Edges[j].From {
			return g.Edges[i].From < g.Edges[j].From
		}
		return g.Edges[i].To < g.Edges[j].To
	})
	deduped := g.Edges[:0]
	var last ImportEdge
	for i, e := range g.Edges {
		if i > 0 && e == last {
			continue
		}
		deduped = append(deduped, e)
		last = e
	}
	g.Edges = deduped

	g.out = make(map[string][]string)
	for _, e := range g.Edges {
		g.out[e.From] = append(g.out[e.From], e.To)
	}
}

// ImportedBy reports whether from has a resolved import edge to to.
func (g *ImportGraph) ImportedBy(from, to string) bool {
	for _, t := range g.out[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Neighbors returns the import targets of a file in lexical order.
func (g *ImportGraph) Neighbors(path string) []string {
	return g.out[path]
}
