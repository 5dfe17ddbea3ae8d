package callgraph

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func parseString(t *testing.T, input string) *Graph {
	t.Helper()
	g, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	return g
}

// TestParse_ValidLines tests parsing of well-formed edge records.
func TestParse_ValidLines(t *testing.T) {
	g := parseString(t, "A,B:1\nA,C:2\nB,D:1\n")

	require.Equal(t, 2, g.Len())
	require.Equal(t, []string{"B", "C"}, g.Callees("A"))
	require.Equal(t, []string{"D"}, g.Callees("B"))
	require.Equal(t, []CallSite{{Callee: "B", Line: 1}, {Callee: "C", Line: 2}}, g.Sites("A"))
}

// TestParse_MalformedLines tests that bad records are skipped without
// aborting the load.
func TestParse_MalformedLines(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "no separators", input: "foo-bar"},
		{name: "missing colon", input: "A,B"},
		{name: "missing comma", input: "AB:1"},
		{name: "extra comma", input: "A,B,C:1"},
		{name: "extra colon", input: "A,B:1:2"},
		{name: "non-integer line", input: "A,B:xyz"},
		{name: "empty line field", input: "A,B:"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Valid lines before and after the bad one must survive.
			g := parseString(t, "X,Y:1\n"+tt.input+"\nY,Z:2\n")
			require.Equal(t, []string{"Y"}, g.Callees("X"))
			require.Equal(t, []string{"Z"}, g.Callees("Y"))
			require.Equal(t, 2, g.Len())
		})
	}
}

// TestParse_BlankLines tests that blank and whitespace-only lines are ignored.
func TestParse_BlankLines(t *testing.T) {
	g := parseString(t, "\nA,B:1\n   \n\nB,C:2\n")
	require.Equal(t, 2, g.Len())
}

// TestParse_DuplicateEdges tests that repeated caller/callee pairs are
// preserved in file order.
func TestParse_DuplicateEdges(t *testing.T) {
	g := parseString(t, "A,B:1\nA,B:5\nA,B:9\n")

	require.Equal(t, []string{"B", "B", "B"}, g.Callees("A"))
	require.Equal(t, []CallSite{
		{Callee: "B", Line: 1},
		{Callee: "B", Line: 5},
		{Callee: "B", Line: 9},
	}, g.Sites("A"))
}

// TestGraph_AbsentCaller tests that leaf functions resolve to empty callee
// lists rather than failing.
func TestGraph_AbsentCaller(t *testing.T) {
	g := parseString(t, "A,B:1\n")

	require.Empty(t, g.Callees("B"))
	require.Empty(t, g.Sites("B"))
	require.Empty(t, g.Callees("nonexistent"))
}

// TestParse_SelfLoop tests that a function calling itself is a valid record.
func TestParse_SelfLoop(t *testing.T) {
	g := parseString(t, "A,A:3\n")
	require.Equal(t, []string{"A"}, g.Callees("A"))
}

// TestParse_SkippedCount tests that the parser counts dropped records so
// callers can surface them even when per-line logging is off.
func TestParse_SkippedCount(t *testing.T) {
	g := parseString(t, "A,B:1\nfoo-bar\nA,B:oops\nB,C:2\n")

	require.Equal(t, 2, g.Skipped())
	require.Equal(t, 2, g.Len())

	require.Zero(t, parseString(t, "A,B:1\n").Skipped())
}

// TestGraph_Callers tests the call-site iteration used by dependency
// analysis, including early termination.
func TestGraph_Callers(t *testing.T) {
	g := parseString(t, "A,B:1\nA,C:2\nB,D:1\n")

	got := make(map[string][]CallSite)
	for caller, sites := range g.Callers() {
		got[caller] = sites
	}
	require.Equal(t, map[string][]CallSite{
		"A": {{Callee: "B", Line: 1}, {Callee: "C", Line: 2}},
		"B": {{Callee: "D", Line: 1}},
	}, got)

	var seen int
	for range g.Callers() {
		seen++
		break
	}
	require.Equal(t, 1, seen)
}

// TestParse_Empty tests that an empty input yields an empty graph.
func TestParse_Empty(t *testing.T) {
	g := parseString(t, "")
	require.Equal(t, 0, g.Len())
	require.Empty(t, g.Callees("A"))
}
