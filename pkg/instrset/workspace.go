package instrset

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/715d/instrset/internal/callgraph"
)

// Well-known file names inside a working directory. The upstream static
// analyzer drops the three inputs there and the fuzzer picks the output up
// from the same place.
const (
	CallGraphFile = "call_graph.txt"
	TargetsFile   = "target_funcs.txt"
	EntryFile     = "entry_func.txt"
	OutputFile    = "instrumented_funcs.txt"
)

// Workspace reads analysis inputs from and writes the result to a single
// working directory. Missing or unreadable input files are fatal: there is
// no meaningful partial result without them.
type Workspace struct {
	// Dir is the working directory holding the input and output files.
	Dir string
}

// LoadGraph parses the call graph file. Malformed records inside the file
// are skipped by the parser; only an absent or unreadable file is an error.
func (w Workspace) LoadGraph() (*callgraph.Graph, error) {
	path := filepath.Join(w.Dir, CallGraphFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening call graph file: %w", err)
	}
	defer f.Close()

	g, err := callgraph.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return g, nil
}

// LoadTargets reads the target function list, one identifier per non-blank
// line, trimmed. An empty file is valid and yields no targets.
func (w Workspace) LoadTargets() ([]string, error) {
	path := filepath.Join(w.Dir, TargetsFile)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening target function file: %w", err)
	}
	defer f.Close()

	var targets []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			targets = append(targets, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return targets, nil
}

// LoadEntry reads the entry function name: the first non-blank line,
// trimmed. A file with no non-blank line is an error, since an empty entry
// name can never match a call-graph node.
func (w Workspace) LoadEntry() (string, error) {
	path := filepath.Join(w.Dir, EntryFile)
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening entry function file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			return line, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return "", fmt.Errorf("entry function file %s contains no function name", path)
}

// WriteResult writes the instrumentation set, one function per line in the
// given order, truncating any previous content. It returns the output path.
func (w Workspace) WriteResult(funcs []string) (string, error) {
	path := filepath.Join(w.Dir, OutputFile)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating output file: %w", err)
	}

	buf := bufio.NewWriter(f)
	for _, fn := range funcs {
		if _, err := buf.WriteString(fn + "\n"); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("writing %s: %w", path, err)
		}
	}
	if err := buf.Flush(); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", path, err)
	}
	return path, nil
}
