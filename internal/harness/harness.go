// Package harness provides end-to-end scenario testing for the instrset
// pipeline. Scenarios are yaml files describing a call graph, entry, targets,
// and the expected instrumentation set; the harness materializes each one as
// a working directory and runs the full load-analyze-write cycle against it.
package harness

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/stretchr/testify/require"

	"github.com/715d/instrset/pkg/instrset"
)

// Scenario represents a single end-to-end test scenario.
type Scenario struct {
	// Name is a descriptive name for this scenario.
	Name string `yaml:"name"`

	// Graph is the raw call_graph.txt content, one edge record per line.
	Graph string `yaml:"graph"`

	// Entry is the entry function name.
	Entry string `yaml:"entry"`

	// Targets lists the target functions, in order.
	Targets []string `yaml:"targets"`

	// Expected is the exact sorted content of instrumented_funcs.txt.
	Expected []string `yaml:"expected"`

	// Workers optionally overrides the analyzer's worker count.
	Workers int `yaml:"workers,omitempty"`
}

// LoadScenarios reads every yaml scenario under dir.
func LoadScenarios(t *testing.T, dir string) []Scenario {
	t.Helper()

	entries, err := os.ReadDir(dir)
	require.NoError(t, err, "reading scenario directory")

	var scenarios []Scenario
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		require.NoError(t, err, "reading scenario %s", entry.Name())

		var sc Scenario
		require.NoError(t, yaml.Unmarshal(data, &sc), "parsing scenario %s", entry.Name())
		require.NotEmpty(t, sc.Name, "scenario %s has no name", entry.Name())
		require.NotEmpty(t, sc.Entry, "scenario %s has no entry function", entry.Name())

		scenarios = append(scenarios, sc)
	}
	return scenarios
}

// Run materializes the scenario in a temporary working directory, executes
// the full pipeline, and compares the written instrumentation set against
// the expectation.
func Run(t *testing.T, sc Scenario) {
	t.Helper()

	dir := t.TempDir()
	writeInput(t, dir, instrset.CallGraphFile, sc.Graph)
	writeInput(t, dir, instrset.TargetsFile, strings.Join(sc.Targets, "\n")+"\n")
	writeInput(t, dir, instrset.EntryFile, sc.Entry+"\n")

	ws := instrset.Workspace{Dir: dir}

	entry, err := ws.LoadEntry()
	require.NoError(t, err)
	graph, err := ws.LoadGraph()
	require.NoError(t, err)
	targets, err := ws.LoadTargets()
	require.NoError(t, err)

	analyzer := instrset.NewAnalyzer(instrset.Options{Workers: sc.Workers})
	result, err := analyzer.Analyze(context.Background(), graph, entry, targets)
	require.NoError(t, err)

	outputPath, err := ws.WriteResult(result.Functions.Sorted())
	require.NoError(t, err)

	got := readOutput(t, outputPath)
	if len(sc.Expected) == 0 {
		require.Empty(t, got, "expected an empty instrumentation set")
		return
	}
	require.Equal(t, sc.Expected, got)
}

func writeInput(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func readOutput(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	if len(data) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}
