package instrset

import "github.com/715d/instrset/internal/callgraph"

// frame is one suspended level of the depth-first search: a node on the
// current path and the index of the next callee to try.
type frame struct {
	node string
	next int
}

// FindPath runs a depth-first search from start and returns the first path
// it discovers to target, both endpoints included. Callees are followed in
// call-graph file order and every node is entered at most once per search,
// so the result is reproducible for a fixed input and the search terminates
// on cyclic graphs. The path found is a valid path, not necessarily the
// shortest one.
//
// A nil result means target is unreachable from start (or start has no node
// in the graph at all); that is a normal outcome, not an error.
func FindPath(g *callgraph.Graph, start, target string) []string {
	if start == target {
		return []string{start}
	}

	visited := NewSet(start)
	stack := []frame{{node: start}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		callees := g.Callees(top.node)
		advanced := false
		for top.next < len(callees) {
			callee := callees[top.next]
			top.next++

			if visited.Has(callee) {
				continue
			}
			visited.Add(callee)

			if callee == target {
				path := make([]string, 0, len(stack)+1)
				for _, fr := range stack {
					path = append(path, fr.node)
				}
				return append(path, callee)
			}

			stack = append(stack, frame{node: callee})
			advanced = true
			break
		}

		if !advanced {
			stack = stack[:len(stack)-1]
		}
	}

	return nil
}
