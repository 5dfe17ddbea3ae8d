package instrset

import "github.com/715d/instrset/internal/callgraph"

// TransitiveClosure expands seeds along outgoing call edges until no new
// function is discovered. The result always contains the seeds. Membership
// is recorded before a function is enqueued, so each function is processed
// once and the walk terminates on cyclic graphs.
func TransitiveClosure(g *callgraph.Graph, seeds Set) Set {
	closure := seeds.Clone()
	if closure == nil {
		closure = NewSet()
	}

	queue := make([]string, 0, len(closure))
	for fn := range closure {
		queue = append(queue, fn)
	}

	for len(queue) > 0 {
		fn := queue[0]
		queue = queue[1:]

		for _, callee := range g.Callees(fn) {
			if closure.Has(callee) {
				continue
			}
			closure.Add(callee)
			queue = append(queue, callee)
		}
	}

	return closure
}
