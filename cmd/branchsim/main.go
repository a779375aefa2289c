// Package main provides the entry point for branchsim.
// branchsim replays a branch trace through one direction predictor and
// reports how often it guessed right.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/branchsim/btb"
	"github.com/sarchlab/branchsim/config"
	"github.com/sarchlab/branchsim/predictor"
	"github.com/sarchlab/branchsim/report"
	"github.com/sarchlab/branchsim/sim"
	"github.com/sarchlab/branchsim/trace"
)

var (
	configPath = flag.String("config", "", "Path to run configuration JSON file")
	tracePath  = flag.String("trace", "", "Path to trace file (default: stdin)")
	useBTB     = flag.Bool("btb", false, "Attach a branch target buffer")
	btbSets    = flag.Int("btb-sets", 0, "Branch target buffer sets")
	btbWays    = flag.Int("btb-ways", 0, "Branch target buffer associativity")
	quiet      = flag.Bool("quiet", false, "Omit per-branch output")
	history    = flag.Bool("history", false, "Show history register bits per branch")
	summary    = flag.Bool("table", false, "Print a summary table after the statistics")
	verbose    = flag.Bool("v", false, "Verbose logging")
	traceLog   = flag.Bool("vv", false, "Per-branch trace logging")
	logJSON    = flag.Bool("log-json", false, "Log in JSON format")
)

func main() {
	flag.Parse()

	cfg, err := buildConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		usage()
		atexit.Exit(1)
	}

	in := io.Reader(os.Stdin)
	if *tracePath != "" {
		f, err := os.Open(*tracePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error opening trace: %v\n", err)
			atexit.Exit(1)
		}
		atexit.Register(func() { _ = f.Close() })
		in = f
	}

	if err := run(context.Background(), cfg, in, os.Stdout, newLogger()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		atexit.Exit(2)
	}

	atexit.Exit(0)
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: branchsim [options] <ANT|AT|BTFNT|LTG|LTL|2BG|2BL>\n")
	fmt.Fprintf(os.Stderr, "\nOptions:\n")
	flag.PrintDefaults()
}

func newLogger() *slog.Logger {
	level := slog.LevelWarn
	switch {
	case *traceLog:
		level = sim.LevelTrace
	case *verbose:
		level = slog.LevelDebug
	}
	return sim.NewLogger(os.Stderr, level, *logJSON)
}

// buildConfig merges the config file, command-line flags and the
// positional predictor name, in that order of precedence (last wins).
func buildConfig() (*config.Config, error) {
	cfg := config.DefaultConfig()
	if *configPath != "" {
		var err error
		cfg, err = config.LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "btb":
			cfg.BTBEnabled = *useBTB
		case "btb-sets":
			cfg.BTBSets = *btbSets
		case "btb-ways":
			cfg.BTBWays = *btbWays
		case "quiet":
			cfg.PerBranch = !*quiet
		case "history":
			cfg.ShowHistory = *history
		case "table":
			cfg.SummaryTable = *summary
		}
	})

	if flag.NArg() > 1 {
		return nil, fmt.Errorf("expected one predictor name, got %d arguments", flag.NArg())
	}
	if flag.NArg() == 1 {
		cfg.Predictor = flag.Arg(0)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// run simulates the trace read from in and writes the report to out.
func run(
	ctx context.Context,
	cfg *config.Config,
	in io.Reader,
	out io.Writer,
	logger *slog.Logger,
) error {
	kind, err := cfg.Kind()
	if err != nil {
		return err
	}

	rw := report.NewWriter(out)
	rw.PerBranch = cfg.PerBranch
	rw.ShowHistory = cfg.ShowHistory
	rw.Parameters(kind)

	tr, err := trace.NewReader(in)
	if err != nil {
		return err
	}
	rw.Metadata(tr.Metadata())

	p, err := predictor.New(kind, tr.Metadata())
	if err != nil {
		return err
	}

	opts := []sim.SimulatorOption{
		sim.WithLogger(logger),
		sim.WithObserver(rw),
	}
	if cfg.BTBEnabled {
		buf, err := btb.New(cfg.BTB())
		if err != nil {
			return err
		}
		opts = append(opts,
			sim.WithTargetBuffer(buf),
			sim.WithMetadata(tr.Metadata()),
		)
	}

	logger.Debug("starting simulation",
		slog.String("predictor", string(kind)),
		slog.Int("branches", len(tr.Metadata())),
		slog.Bool("btb", cfg.BTBEnabled),
	)

	stats, err := sim.NewSimulator(p, opts...).Run(ctx, tr)
	if err != nil {
		return err
	}

	rw.Statistics(stats, cfg.BTBEnabled)
	if err := rw.Err(); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	if cfg.SummaryTable {
		fmt.Fprintln(out)
		report.SummaryTable(out, kind, stats, cfg.BTBEnabled)
	}

	return nil
}
