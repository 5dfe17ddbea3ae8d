// Package main implements the CLI driver for the instrset analyzer.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/spf13/cobra"

	"github.com/715d/instrset/pkg/instrset"
)

// Config holds all command-line configuration options for the instrset analyzer.
type Config struct {
	Dir     string // the working directory holding input and output files
	Verbose bool   // enables detailed output and statistics
	JSON    bool   // enables JSON output format
	Profile bool   // enables CPU and memory profiling
	Workers int    // bounds concurrent target analysis (0 = one per CPU)
}

const (
	exitUsage = 1
	exitError = 2
)

var (
	// Set via ldflags during build.
	version   = "dev"
	buildTime = "unknown"
	gitCommit = "unknown"
)

var cfg Config

func main() {
	var rootCmd = &cobra.Command{
		Use:   "instrset <dir>",
		Short: "Select functions to instrument for directed fuzzing",
		Long: `instrset computes the set of functions a directed fuzzer should instrument
to guide execution toward a list of target functions.

It reads from the working directory:
- call_graph.txt    caller,callee:line records from a static analyzer
- target_funcs.txt  one target function per line
- entry_func.txt    the entry function name

and writes instrumented_funcs.txt (sorted, one function per line) back to it.`,
		Example: `  instrset /tmp/fuzz-workdir            # Analyze one working directory
  instrset -v /tmp/fuzz-workdir         # Verbose output
  instrset -json /tmp/fuzz-workdir      # JSON summary on stdout`,
		Args: func(cmd *cobra.Command, args []string) error {
			if err := cobra.ExactArgs(1)(cmd, args); err != nil {
				return errWithCode(fmt.Errorf("%s\nUsage: %s", err, cmd.UseLine()), exitUsage)
			}
			return nil
		},
		RunE:               runCommand,
		PersistentPreRunE:  setup,
		PersistentPostRunE: teardown,
		SilenceUsage:       true,
		SilenceErrors:      true,
		Version:            version,
	}

	// Set custom version template to include build info.
	rootCmd.SetVersionTemplate(fmt.Sprintf("instrset version %s\n  commit: %s\n  built:  %s\n", version, gitCommit, buildTime))

	// Define flags.
	rootCmd.PersistentFlags().BoolVarP(&cfg.Verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().BoolVar(&cfg.JSON, "json", false, "Output summary in JSON format")
	rootCmd.PersistentFlags().BoolVar(&cfg.Profile, "profile", false, "Enable CPU and memory profiling (writes cpu.prof and mem.prof to current directory)")
	rootCmd.PersistentFlags().IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "Number of targets analyzed concurrently")

	if err := rootCmd.Execute(); err != nil {
		_ = teardown(nil, nil)
		if err.Error() != "" {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		var cErr *codedError
		if errors.As(err, &cErr) {
			os.Exit(cErr.code)
		}
		os.Exit(exitError)
	}
}

func runCommand(cmd *cobra.Command, args []string) error {
	cfg.Dir = args[0]

	slog.Info("starting instrumentation set analysis", "dir", cfg.Dir)

	summary, err := runAnalysis(cmd.Context(), &cfg)
	if err != nil {
		return errWithCode(fmt.Errorf("analyze: %w", err), exitError)
	}

	if err := writeSummary(summary, &cfg); err != nil {
		return errWithCode(fmt.Errorf("format results: %w", err), exitError)
	}
	return nil
}

// Summary represents the outcome of one run: where the instrumentation set
// was written and the analyzer's statistics.
type Summary struct {
	OutputFile   string         `json:"output_file"`
	Entry        string         `json:"entry"`
	SkippedLines int            `json:"skipped_lines"`
	Stats        instrset.Stats `json:"stats"`
}

func runAnalysis(ctx context.Context, cfg *Config) (*Summary, error) {
	ws := instrset.Workspace{Dir: cfg.Dir}

	entry, err := ws.LoadEntry()
	if err != nil {
		return nil, fmt.Errorf("loading entry function: %w", err)
	}
	slog.Info("loaded entry function", "entry", entry)

	graph, err := ws.LoadGraph()
	if err != nil {
		return nil, fmt.Errorf("loading call graph: %w", err)
	}
	slog.Info("loaded call graph", "callers", graph.Len(), "skipped_lines", graph.Skipped())
	if n := graph.Skipped(); n > 0 {
		// Keep skips visible even without --verbose; stdout stays
		// reserved for the result summary.
		fmt.Fprintf(os.Stderr, "warning: skipped %d malformed call graph lines\n", n)
	}

	targets, err := ws.LoadTargets()
	if err != nil {
		return nil, fmt.Errorf("loading target functions: %w", err)
	}
	slog.Info("loaded target functions", "num", len(targets))

	slog.Info("running analysis")
	analyzer := instrset.NewAnalyzer(instrset.Options{
		Workers: cfg.Workers,
	})
	result, err := analyzer.Analyze(ctx, graph, entry, targets)
	if err != nil {
		return nil, fmt.Errorf("computing instrumentation set: %w", err)
	}
	slog.Info("analysis completed",
		"functions", result.Stats.Functions,
		"reachable_targets", result.Stats.ReachableTargets,
		"dur", result.Stats.Duration)

	outputPath, err := ws.WriteResult(result.Functions.Sorted())
	if err != nil {
		return nil, fmt.Errorf("writing instrumentation set: %w", err)
	}

	return &Summary{
		OutputFile:   outputPath,
		Entry:        entry,
		SkippedLines: graph.Skipped(),
		Stats:        result.Stats,
	}, nil
}

func writeSummary(summary *Summary, cfg *Config) error {
	if cfg.JSON {
		data, err := json.MarshalIndent(jOutput{
			Summary:   summary,
			Version:   version,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling json output: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if cfg.Verbose {
		slog.Info("",
			"targets", summary.Stats.Targets,
			"reachable_targets", summary.Stats.ReachableTargets,
			"instrumented_functions", summary.Stats.Functions,
			"analysis_duration", summary.Stats.Duration.String())
	}

	fmt.Printf("Instrumentation function list written to: %s\n", summary.OutputFile)
	return nil
}

type jOutput struct {
	*Summary
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

var cpuProfile *os.File

func setup(_ *cobra.Command, _ []string) error {
	// Disable logger unless verbose flag is set.
	slog.SetDefault(slog.New(slog.DiscardHandler))
	if cfg.Verbose {
		opts := &slog.HandlerOptions{Level: slog.LevelDebug}
		var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
		if cfg.JSON {
			handler = slog.NewJSONHandler(os.Stderr, opts)
		}
		logger := slog.New(handler)
		slog.SetDefault(logger)
	}

	if !cfg.Profile {
		return nil
	}

	// Start CPU profiling.
	var err error
	cpuProfile, err = os.Create("cpu.prof")
	if err != nil {
		return fmt.Errorf("creating cpu.prof: %w", err)
	}
	if err := pprof.StartCPUProfile(cpuProfile); err != nil {
		_ = cpuProfile.Close()
		return fmt.Errorf("starting CPU profile: %w", err)
	}
	slog.Info("cpu profiling started", "file", "cpu.prof")
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if !cfg.Profile || cpuProfile == nil {
		return nil
	}

	// Stop CPU profiling and close file.
	pprof.StopCPUProfile()
	defer cpuProfile.Close()
	slog.Info("cpu profiling stopped", "file", "cpu.prof")

	// Write memory profile.
	memFile, err := os.Create("mem.prof")
	if err != nil {
		return fmt.Errorf("creating mem.prof: %w", err)
	}
	defer memFile.Close()
	runtime.GC() // Get up-to-date statistics
	if err := pprof.WriteHeapProfile(memFile); err != nil {
		return fmt.Errorf("writing memory profile: %w", err)
	}
	slog.Info("memory profiling completed", "file", "mem.prof")
	return nil
}

func errWithCode(err error, code int) error {
	return &codedError{err: err, code: code}
}

type codedError struct {
	err  error
	code int
}

func (e codedError) Error() string {
	if e.err != nil {
		return e.err.Error()
	}
	return ""
}
