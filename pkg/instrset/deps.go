package instrset

import "github.com/715d/instrset/internal/callgraph"

// PrecedingDependencies returns every function invoked before target within
// a caller that also invokes target. For each such caller, a callee counts
// when its call site sits at a line strictly below at least one of the
// caller's call sites on target. The target itself is never included.
//
// This is a line-number approximation, deliberately branch-blind: a call
// inside an untaken if-arm still qualifies. Earlier calls may establish
// state (setup, configuration) the target depends on, so the conservative
// over-approximation is the point.
func PrecedingDependencies(g *callgraph.Graph, target string) Set {
	deps := NewSet()

	for _, sites := range g.Callers() {
		var targetLines []int
		for _, site := range sites {
			if site.Callee == target {
				targetLines = append(targetLines, site.Line)
			}
		}
		if len(targetLines) == 0 {
			continue
		}

		for _, site := range sites {
			if site.Callee == target {
				continue
			}
			for _, tl := range targetLines {
				if site.Line < tl {
					deps.Add(site.Callee)
					break
				}
			}
		}
	}

	return deps
}
