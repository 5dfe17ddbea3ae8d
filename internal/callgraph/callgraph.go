// Package callgraph holds the in-memory call-graph model consumed by the
// instrumentation-set analysis.
package callgraph

import (
	"bufio"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"strconv"
	"strings"
)

// CallSite records a single call instruction: the callee and the source line
// the call appears on in the caller's body.
type CallSite struct {
	Callee string
	Line   int
}

// Graph is a whole-program call graph keyed by caller name. It is built once
// by Parse and read-only afterward. Functions that appear only as callees
// have no entry of their own; lookups for them return empty slices.
type Graph struct {
	callees map[string][]string
	sites   map[string][]CallSite
	skipped int
}

// Callees returns the callees of fn in call-graph file order. Duplicates are
// preserved: a function called twice appears twice. Unknown callers yield nil.
func (g *Graph) Callees(fn string) []string {
	return g.callees[fn]
}

// Sites returns the (callee, line) call-site records of fn in file order.
// Unknown callers yield nil.
func (g *Graph) Sites(fn string) []CallSite {
	return g.sites[fn]
}

// Len reports the number of distinct callers in the graph.
func (g *Graph) Len() int {
	return len(g.callees)
}

// Skipped reports how many malformed lines the parser dropped.
func (g *Graph) Skipped() int {
	return g.skipped
}

// Callers iterates over every caller with at least one outgoing edge and its
// call-site records, in unspecified order. The yielded slices are views into
// the graph and must not be modified.
func (g *Graph) Callers() iter.Seq2[string, []CallSite] {
	return func(yield func(string, []CallSite) bool) {
		for caller, sites := range g.sites {
			if !yield(caller, sites) {
				return
			}
		}
	}
}

// Parse reads `caller,callee:line` records, one per line. Blank lines are
// skipped silently. A line with the wrong number of separators or a
// non-integer line field is skipped with a warning; a single bad record from
// a noisy analyzer must never abort the whole load. Only a read failure on
// the underlying stream is an error.
func Parse(r io.Reader) (*Graph, error) {
	g := &Graph{
		callees: make(map[string][]string),
		sites:   make(map[string][]CallSite),
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		caller, callee, lineno, ok := parseEdge(line)
		if !ok {
			slog.Warn("skipping malformed call graph line", "line", line)
			g.skipped++
			continue
		}

		g.callees[caller] = append(g.callees[caller], callee)
		g.sites[caller] = append(g.sites[caller], CallSite{Callee: callee, Line: lineno})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading call graph: %w", err)
	}

	return g, nil
}

// parseEdge splits one `caller,callee:line` record. Exactly one comma and
// exactly one colon after it; anything else is malformed.
func parseEdge(line string) (caller, callee string, lineno int, ok bool) {
	parts := strings.Split(line, ",")
	if len(parts) != 2 {
		return "", "", 0, false
	}
	caller = parts[0]

	calleeParts := strings.Split(parts[1], ":")
	if len(calleeParts) != 2 {
		return "", "", 0, false
	}
	callee = calleeParts[0]

	lineno, err := strconv.Atoi(calleeParts[1])
	if err != nil {
		return "", "", 0, false
	}
	return caller, callee, lineno, true
}
