package depgraph

import (
	"fmt"
	"sort"
)

// Layers performs a Kahn-style topological layering of the graph. The first
// layer holds every node with no prerequisites; each subsequent layer holds
// the nodes whose prerequisites are all contained in earlier layers. Node IDs
// within a layer are sorted lexicographically, so the result is deterministic
// for a given graph.
//
// An error is returned if the graph contains a cycle, since a cyclic graph
// cannot be layered.
func (g *Graph) Layers() ([][]string, error) {
	g.mutex.RLock()
	defer g.mutex.RUnlock()

	pending := make(map[string]int, len(g.nodes))
	for id, n := range g.nodes {
		pending[id] = len(n.deps)
	}

	var layers [][]string
	placed := 0
	for placed < len(g.nodes) {
		var layer []string
		for id, remaining := range pending {
			if remaining == 0 {
				layer = append(layer, id)
			}
		}
		if len(layer) == 0 {
			return nil, fmt.Errorf("cannot layer graph: cycle among %d remaining node(s)", len(pending))
		}
		sort.Strings(layer)

		for _, id := range layer {
			delete(pending, id)
			for _, dependent := range g.nodes[id].dependents {
				if _, ok := pending[dependent.id]; ok {
					pending[dependent.id]--
				}
			}
		}

		layers = append(layers, layer)
		placed += len(layer)
	}
	return layers, nil
}
