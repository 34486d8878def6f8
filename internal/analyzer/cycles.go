// Package analyzer holds the three cross-file passes that run over the
// finished graphs: import cycle detection, dead code detection, and
// duplicate clustering. Each pass is independent and read-only.
package analyzer

import (
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/auspexlab/auspex/pkg/models"
)

// DetectCycles finds import cycles as strongly connected components of the
// import graph. Each cycle reports its full membership, sorted lexically,
// plus one representative closed walk visiting every member. A file that
// imports itself forms a single-file cycle.
func DetectCycles(g *models.ImportGraph) []models.Cycle {
	if len(g.Files) == 0 {
		return nil
	}

	directed := simple.NewDirectedGraph()
	fileToID := make(map[string]int64, len(g.Files))
	idToFile := make(map[int64]string, len(g.Files))
	for i, f := range g.Files {
		id := int64(i)
		fileToID[f] = id
		idToFile[id] = f
		directed.AddNode(simple.Node(id))
	}
	// simple graphs reject self-edges, so self-imports are tracked aside
	// and reported as single-file cycles below.
	selfLoop := make(map[string]bool)
	for _, e := range g.Edges {
		from, to := fileToID[e.From], fileToID[e.To]
		if from == to {
			selfLoop[e.From] = true
			continue
		}
		directed.SetEdge(simple.Edge{F: simple.Node(from), T: simple.Node(to)})
	}

	var cycles []models.Cycle
	for _, scc := range topo.TarjanSCC(directed) {
		if len(scc) < 2 {
			if f := idToFile[scc[0].ID()]; selfLoop[f] {
				cycles = append(cycles, models.Cycle{
					Files: []string{f},
					Walk:  []string{f, f},
				})
			}
			continue
		}
		files := make([]string, 0, len(scc))
		for _, n := range scc {
			files = append(files, idToFile[n.ID()])
		}
		sort.Strings(files)
		cycles = append(cycles, models.Cycle{
			Files: files,
			Walk:  closedWalk(g, files),
		})
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i].Files[0] < cycles[j].Files[0]
	})
	return cycles
}

// closedWalk builds a closed walk through every member of one SCC, starting
// and ending at the lexically smallest file. Consecutive entries are always
// connected by an import edge; members may repeat when the component is not
// a single simple cycle.
func closedWalk(g *models.ImportGraph, members []string) []string {
	inSCC := make(map[string]bool, len(members))
	for _, f := range members {
		inSCC[f] = true
	}

	start := members[0]
	walk := []string{start}
	cur := start
	for _, target := range members[1:] {
		seg := pathWithin(g, inSCC, cur, target)
		walk = append(walk, seg[1:]...)
		cur = target
	}
	closing := pathWithin(g, inSCC, cur, start)
	walk = append(walk, closing[1:]...)
	return walk
}

// pathWithin returns the shortest path between two SCC members using only
// edges that stay inside the component. Both endpoints are in the same SCC,
// so a path always exists.
func pathWithin(g *models.ImportGraph, inSCC map[string]bool, from, to string) []string {
	prev := map[string]string{from: ""}
	queue := []string{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.Neighbors(cur) {
			if !inSCC[next] {
				continue
			}
			if _, seen := prev[next]; seen {
				continue
			}
			prev[next] = cur
			if next == to {
				var path []string
				for at := to; at != ""; at = prev[at] {
					path = append(path, at)
				}
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path
			}
			queue = append(queue, next)
		}
	}
	return []string{from}
}
