package instrset

import (
	"context"
	"fmt"
	goruntime "runtime"
	"time"

	"github.com/puzpuzpuz/xsync/v4"
	"golang.org/x/sync/errgroup"

	"github.com/715d/instrset/internal/callgraph"
)

// Options holds configuration options for the analyzer.
type Options struct {
	// BlockCalls carries optional basic-block-level call information for
	// intra-function expansion. Empty today; see ExpandInternal.
	BlockCalls BlockCalls

	// Workers bounds the number of targets analyzed concurrently.
	// Zero or negative means one worker per CPU. A value of 1 processes
	// targets strictly sequentially.
	Workers int
}

// Analyzer computes instrumentation sets from a call graph.
type Analyzer struct {
	opts Options

	// closures memoizes the transitive closure of each single function,
	// shared by all target workers. Stored sets are never mutated after
	// insertion.
	closures *xsync.Map[string, Set]
}

// Stats summarizes one analysis run.
type Stats struct {
	Targets          int           `json:"targets"`
	ReachableTargets int           `json:"reachable_targets"`
	Functions        int           `json:"functions"`
	Duration         time.Duration `json:"duration"`
}

// Result is the outcome of Analyze: the instrumentation set and run statistics.
type Result struct {
	Functions Set
	Stats     Stats
}

// NewAnalyzer creates a new analyzer with the given options.
func NewAnalyzer(opts Options) *Analyzer {
	if opts.Workers <= 0 {
		opts.Workers = goruntime.NumCPU()
	}
	return &Analyzer{
		opts:     opts,
		closures: xsync.NewMap[string, Set](),
	}
}

// Analyze computes the instrumentation set for the given targets. Each
// target contributes the first entry-to-target path, the transitive closure
// of its preceding dependencies, and the block-level expansion of that
// closure; contributions are unioned, so target order and duplicate targets
// do not affect the result. A target with no path and no dependencies
// contributes nothing, which is a normal outcome.
func (a *Analyzer) Analyze(ctx context.Context, g *callgraph.Graph, entry string, targets []string) (*Result, error) {
	if g == nil {
		return nil, fmt.Errorf("no call graph provided")
	}

	start := time.Now()

	// Each worker writes to its own index, merged after Wait. Union is
	// commutative, so the fan-out cannot change the final set.
	contributions := make([]Set, len(targets))
	paths := make([][]string, len(targets))

	var wg errgroup.Group
	wg.SetLimit(a.opts.Workers)

	for idx, target := range targets {
		wg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			path := FindPath(g, entry, target)
			contributions[idx] = a.analyzeTarget(g, path, target)
			paths[idx] = path
			return nil
		})
	}
	if err := wg.Wait(); err != nil {
		return nil, fmt.Errorf("analyzing targets: %w", err)
	}

	result := &Result{Functions: NewSet()}
	result.Stats.Targets = len(targets)
	for idx := range targets {
		result.Functions.AddAll(contributions[idx])
		if len(paths[idx]) > 0 {
			result.Stats.ReachableTargets++
		}
	}
	result.Stats.Functions = len(result.Functions)
	result.Stats.Duration = time.Since(start)

	return result, nil
}

// analyzeTarget builds one target's contribution: path nodes plus the
// recursive preceding-dependency closure plus its block-level expansion.
// The closure is seeded from the preceding dependencies only, not from the
// target or the path.
func (a *Analyzer) analyzeTarget(g *callgraph.Graph, path []string, target string) Set {
	directDeps := PrecedingDependencies(g, target)

	recursiveDeps := NewSet()
	for dep := range directDeps {
		recursiveDeps.AddAll(a.closureOf(g, dep))
	}

	expanded := ExpandInternal(recursiveDeps, a.opts.BlockCalls)

	combined := NewSet(path...)
	combined.AddAll(recursiveDeps)
	combined.AddAll(expanded)
	return combined
}

// closureOf returns the memoized transitive closure of a single function.
// Concurrent misses may compute the same closure twice; both results are
// identical and the returned set is treated as read-only.
func (a *Analyzer) closureOf(g *callgraph.Graph, fn string) Set {
	if closure, ok := a.closures.Load(fn); ok {
		return closure
	}
	closure := TransitiveClosure(g, NewSet(fn))
	a.closures.Store(fn, closure)
	return closure
}
