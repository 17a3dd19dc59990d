// Command regionstats merges Polish regional statistics (alcohol sale
// licences, fire service events, population and area) by powiat and by
// voivodeship and writes descriptive statistics and correlation matrices.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"regionstats/internal/config"
	"regionstats/internal/infrastructure"
	"regionstats/internal/operations"
	"regionstats/pkg/contracts"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// options holds the command-line flags. Only flags given explicitly override
// the file and environment configuration.
type options struct {
	input      string
	output     string
	mode       string
	configFile string
	merged     bool
	xlsx       bool
	sqlite     string
	metrics    string
	trace      string
	quiet      bool
	version    bool
}

func parseFlags(args []string, stderr io.Writer) (*options, map[string]bool, error) {
	opts := &options{}
	fs := flag.NewFlagSet("regionstats", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&opts.input, "input", "", "directory containing the four input files")
	fs.StringVar(&opts.output, "output", "", "directory for the output files (created if missing)")
	fs.StringVar(&opts.mode, "mode", operations.AnalysisModeAll, "all | powiat | voivodeship")
	fs.StringVar(&opts.configFile, "config", "", "optional YAML config file")
	fs.BoolVar(&opts.merged, "merged", false, "also write the merged tables as CSV")
	fs.BoolVar(&opts.xlsx, "xlsx", false, "also write "+config.ReportWorkbookFile+" with one sheet per table")
	fs.StringVar(&opts.sqlite, "sqlite", "", "also store all tables in this SQLite file")
	fs.StringVar(&opts.metrics, "metrics", "", "write Prometheus text-format metrics to this file")
	fs.StringVar(&opts.trace, "trace", "", "write OpenTelemetry spans to this file")
	fs.BoolVar(&opts.quiet, "quiet", false, "do not print the statistics summary")
	fs.BoolVar(&opts.version, "version", false, "print version information and exit")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() > 0 {
		return nil, nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return opts, set, nil
}

// applyFlags overlays explicitly set flags onto cfg
func applyFlags(cfg *config.Config, opts *options, set map[string]bool) {
	if set["input"] {
		cfg.Input.Dir = opts.input
	}
	if set["output"] {
		cfg.Output.Dir = opts.output
	}
	if set["mode"] {
		cfg.Analysis.Mode = opts.mode
	}
	if set["merged"] {
		cfg.Output.WriteMerged = opts.merged
	}
	if set["xlsx"] {
		cfg.Output.XLSXReport = opts.xlsx
	}
	if set["sqlite"] {
		cfg.Output.SQLitePath = opts.sqlite
	}
	if set["metrics"] {
		cfg.Telemetry.MetricsFile = opts.metrics
	}
	if set["trace"] {
		cfg.Telemetry.TraceFile = opts.trace
	}
	if set["quiet"] {
		cfg.Output.Quiet = opts.quiet
	}
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, set, err := parseFlags(args, stderr)
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if opts.version {
		fmt.Fprintln(stdout, contracts.GetFullVersionString())
		return 0
	}

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	applyFlags(cfg, opts, set)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(stderr, "failed to initialize logger: %v\n", err)
		return 1
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.EnsureRunID(ctx)
	runID := infrastructure.GetRunID(ctx)

	if err := analyze(ctx, cfg, runID, logger, stdout); err != nil {
		logger.ErrorContext(ctx, "Analysis failed", slog.String("error", err.Error()))
		return 1
	}
	return 0
}

// analyze runs the pipeline and writes the metrics file whatever the outcome
func analyze(ctx context.Context, cfg *config.Config, runID string, logger *slog.Logger, stdout io.Writer) (err error) {
	modes, err := operations.ParseAnalysisMode(cfg.Analysis.Mode)
	if err != nil {
		return err
	}

	providers, err := infrastructure.InitializeOTel(&infrastructure.OTelConfig{
		ServiceVersion: contracts.Version,
		TraceFile:      cfg.Telemetry.TraceFile,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if serr := providers.Shutdown(shutdownCtx); serr != nil {
			logger.Warn("Failed to shut down tracing", slog.String("error", serr.Error()))
		}
	}()

	metrics := infrastructure.NewMetrics()
	if cfg.Telemetry.MetricsFile != "" {
		defer func() {
			if werr := metrics.WriteToFile(cfg.Telemetry.MetricsFile); werr != nil {
				err = errors.Join(err, werr)
			}
		}()
	}

	deps := operations.NewDependencies(cfg, metrics, logger, stdout)
	deps.Paths.LogPathResolution(logger)

	manager := operations.NewManager(providers.Tracer, metrics, logger)
	for _, step := range operations.NewPipelineSteps(deps) {
		if err := manager.RegisterStep(step); err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "Starting analysis",
		slog.String("version", contracts.Version),
		slog.String("input_dir", cfg.Input.Dir),
		slog.String("output_dir", cfg.Output.Dir),
		slog.String("mode", cfg.Analysis.Mode))

	state := operations.NewOperationState(runID, modes...)
	if err := manager.Execute(ctx, state); err != nil {
		return err
	}

	logger.InfoContext(ctx, "Analysis completed",
		slog.Duration("duration", state.Duration()),
		slog.String("output_dir", cfg.Output.Dir))
	return nil
}
