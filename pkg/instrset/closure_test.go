package instrset

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTransitiveClosure_SupersetAndClosed(t *testing.T) {
	g := buildGraph(t, "A,B:1", "B,C:1", "C,D:1", "X,Y:1")

	closure := TransitiveClosure(g, NewSet("A"))

	// Superset of the seeds.
	require.True(t, closure.Has("A"))
	// Closed under the graph's edges.
	for fn := range closure {
		for _, callee := range g.Callees(fn) {
			require.True(t, closure.Has(callee), "closure not closed: %s -> %s", fn, callee)
		}
	}
	require.ElementsMatch(t, []string{"A", "B", "C", "D"}, closure.Sorted())
}

func TestTransitiveClosure_Cycle(t *testing.T) {
	g := buildGraph(t, "A,B:1", "B,C:1", "C,A:1")

	closure := TransitiveClosure(g, NewSet("A"))
	require.ElementsMatch(t, []string{"A", "B", "C"}, closure.Sorted())
}

func TestTransitiveClosure_MultipleSeeds(t *testing.T) {
	g := buildGraph(t, "A,B:1", "C,D:1")

	closure := TransitiveClosure(g, NewSet("A", "C"))
	require.ElementsMatch(t, []string{"A", "B", "C", "D"}, closure.Sorted())
}

func TestTransitiveClosure_LeafSeed(t *testing.T) {
	g := buildGraph(t, "A,B:1")

	// A seed with no outgoing edges closes over itself only.
	closure := TransitiveClosure(g, NewSet("B"))
	require.Equal(t, []string{"B"}, closure.Sorted())
}

func TestTransitiveClosure_EmptySeeds(t *testing.T) {
	g := buildGraph(t, "A,B:1")

	require.Empty(t, TransitiveClosure(g, NewSet()))
	require.Empty(t, TransitiveClosure(g, nil))
}

// TestTransitiveClosure_SeedsUntouched tests that the input set is not
// mutated by the expansion.
func TestTransitiveClosure_SeedsUntouched(t *testing.T) {
	g := buildGraph(t, "A,B:1")
	seeds := NewSet("A")

	_ = TransitiveClosure(g, seeds)
	require.Equal(t, []string{"A"}, seeds.Sorted())
}
