package operations

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"regionstats/internal/config"
	"regionstats/internal/dataprocessing"
	"regionstats/internal/exporter"
	"regionstats/internal/frame"
	"regionstats/internal/infrastructure"
	"regionstats/internal/validation"
)

// Dependencies are the collaborators shared by the pipeline steps.
// Metrics and Console are optional.
type Dependencies struct {
	Config    *config.Config
	Paths     *config.Paths
	Loader    *dataprocessing.Loader
	Validator *validation.FileValidator
	Writer    *exporter.CSVWriter
	Metrics   *infrastructure.Metrics
	Logger    *slog.Logger
	Console   io.Writer
}

// NewDependencies wires the default collaborators for cfg
func NewDependencies(cfg *config.Config, metrics *infrastructure.Metrics, logger *slog.Logger, console io.Writer) *Dependencies {
	if logger == nil {
		logger = slog.Default()
	}
	paths := config.NewPaths(cfg)
	return &Dependencies{
		Config:    cfg,
		Paths:     paths,
		Loader:    dataprocessing.NewLoader(logger, cfg.Input.CSVEncoding),
		Validator: validation.NewFileValidator(logger),
		Writer:    exporter.NewCSVWriter(paths, logger, cfg.Output.BOMPrefix),
		Metrics:   metrics,
		Logger:    logger,
		Console:   console,
	}
}

// ParseAnalysisMode maps the command-line mode to the merge modes to run.
// "all" runs powiat first, then voivodeship.
func ParseAnalysisMode(s string) ([]dataprocessing.Mode, error) {
	if strings.EqualFold(strings.TrimSpace(s), AnalysisModeAll) || strings.TrimSpace(s) == "" {
		return []dataprocessing.Mode{dataprocessing.ModePowiat, dataprocessing.ModeVoivodeship}, nil
	}
	mode, err := dataprocessing.ParseMode(s)
	if err != nil {
		return nil, err
	}
	return []dataprocessing.Mode{mode}, nil
}

// NewPipelineSteps returns the five steps of a run in execution order
func NewPipelineSteps(deps *Dependencies) []Step {
	return []Step{
		NewLoadStep(deps),
		NewConsistencyStep(deps),
		NewMergeStep(deps),
		NewSummarizeStep(deps),
		NewWriteStep(deps),
	}
}

// LoadStep validates the inputs and loads the four datasets concurrently
type LoadStep struct {
	BaseStep
	deps *Dependencies
}

// NewLoadStep creates a new load Step
func NewLoadStep(deps *Dependencies) *LoadStep {
	return &LoadStep{BaseStep: NewBaseStep(StepIDLoad, StepNameLoad), deps: deps}
}

// Execute loads every dataset; the first loader error cancels the others
func (s *LoadStep) Execute(ctx context.Context, state *OperationState) error {
	paths := s.deps.Paths
	if err := s.deps.Validator.ValidateInputs(paths); err != nil {
		return err
	}
	if err := s.deps.Validator.ValidateOutputDirectory(paths.OutputDir); err != nil {
		return err
	}
	state.SetContext(ContextKeyFilesFound, len(paths.InputFiles()))

	var ds Datasets
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		ds.Alcohol, err = s.deps.Loader.ProcessAlcoholData(gctx, paths.AlcoholCSV)
		return err
	})
	g.Go(func() (err error) {
		ds.Fire, err = s.deps.Loader.ProcessFireData(gctx, paths.FireCSV)
		return err
	})
	g.Go(func() (err error) {
		ds.Population, err = s.deps.Loader.ProcessPopulationData(gctx, paths.PopulationXLSX)
		return err
	})
	g.Go(func() (err error) {
		ds.Area, err = s.deps.Loader.ProcessAreaData(gctx, paths.AreaXLSX)
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}
	state.Datasets = ds

	for _, d := range []struct {
		name string
		f    *frame.Frame
	}{
		{dataprocessing.DatasetAlcohol, ds.Alcohol},
		{dataprocessing.DatasetFire, ds.Fire},
		{dataprocessing.DatasetPopulation, ds.Population},
		{dataprocessing.DatasetArea, ds.Area},
	} {
		if s.deps.Metrics != nil {
			s.deps.Metrics.RowsLoaded.WithLabelValues(d.name).Set(float64(d.f.Len()))
		}
		infrastructure.SetSpanInt(ctx, "rows."+d.name, d.f.Len())
		s.deps.Logger.InfoContext(ctx, "Dataset loaded",
			slog.String("dataset", d.name),
			slog.Int("rows", d.f.Len()),
			slog.Int("columns", d.f.Width()))
	}
	return nil
}

// ConsistencyStep compares administrative names across the datasets.
// Mismatches are reported, never fatal.
type ConsistencyStep struct {
	BaseStep
	deps *Dependencies
}

// NewConsistencyStep creates a new consistency Step
func NewConsistencyStep(deps *Dependencies) *ConsistencyStep {
	return &ConsistencyStep{BaseStep: NewBaseStep(StepIDConsistency, StepNameConsistency), deps: deps}
}

type nameCheck struct {
	label  string
	column string
	first  *frame.Frame
	second *frame.Frame
}

func (s *ConsistencyStep) checks(state *OperationState) []nameCheck {
	ds := state.Datasets
	var checks []nameCheck
	for _, mode := range state.Modes {
		switch mode {
		case dataprocessing.ModePowiat:
			checks = append(checks,
				nameCheck{"powiat:fire/population", dataprocessing.ColPowiat, ds.Fire, ds.Population},
				nameCheck{"powiat:fire/area", dataprocessing.ColPowiat, ds.Fire, ds.Area},
			)
		case dataprocessing.ModeVoivodeship:
			checks = append(checks,
				nameCheck{"voivodeship:fire/population", dataprocessing.ColVoivodeship, ds.Fire, ds.Population},
				nameCheck{"voivodeship:fire/area", dataprocessing.ColVoivodeship, ds.Fire, ds.Area},
				nameCheck{"voivodeship:fire/alcohol", dataprocessing.ColVoivodeship, ds.Fire, ds.Alcohol},
			)
		}
	}
	return checks
}

// Execute runs the checks selected by the run's modes
func (s *ConsistencyStep) Execute(ctx context.Context, state *OperationState) error {
	if state.Datasets.Fire == nil {
		return NewStateError(s.ID(), "datasets are not loaded")
	}

	total := 0
	for _, c := range s.checks(state) {
		logger := s.deps.Logger.With(slog.String("check", c.label))
		diff, err := dataprocessing.CheckNamesConsistency(ctx, logger, c.first, c.second, c.column)
		if err != nil {
			return fmt.Errorf("name check %s: %w", c.label, err)
		}
		if s.deps.Metrics != nil {
			s.deps.Metrics.NameMismatches.WithLabelValues(c.label).Set(float64(diff.Count()))
		}
		total += diff.Count()
	}
	state.SetContext(ContextKeyMismatches, total)
	infrastructure.SetSpanInt(ctx, "names.mismatched", total)
	return nil
}

// MergeStep joins the datasets once per mode
type MergeStep struct {
	BaseStep
	deps *Dependencies
}

// NewMergeStep creates a new merge Step
func NewMergeStep(deps *Dependencies) *MergeStep {
	return &MergeStep{BaseStep: NewBaseStep(StepIDMerge, StepNameMerge), deps: deps}
}

// Execute merges fire, population and area by powiat, and the same plus
// alcohol by voivodeship
func (s *MergeStep) Execute(ctx context.Context, state *OperationState) error {
	ds := state.Datasets
	if ds.Fire == nil {
		return NewStateError(s.ID(), "datasets are not loaded")
	}

	state.Results = state.Results[:0]
	for _, mode := range state.Modes {
		frames := []*frame.Frame{ds.Fire, ds.Population, ds.Area}
		if mode == dataprocessing.ModeVoivodeship {
			frames = append(frames, ds.Alcohol)
		}
		merged, err := dataprocessing.MergeFrames(frames, mode)
		if err != nil {
			return fmt.Errorf("merge by %s: %w", mode, err)
		}
		state.Results = append(state.Results, &Result{Mode: mode, Merged: merged})

		s.deps.Logger.InfoContext(ctx, "Datasets merged",
			slog.String("mode", string(mode)),
			slog.Int("rows", merged.Len()),
			slog.Int("columns", merged.Width()),
			slog.Int("missing_cells", merged.NullCount()))
	}
	return nil
}

// SummarizeStep computes statistics and correlations of every merged table
type SummarizeStep struct {
	BaseStep
	deps *Dependencies
}

// NewSummarizeStep creates a new summarize Step
func NewSummarizeStep(deps *Dependencies) *SummarizeStep {
	return &SummarizeStep{BaseStep: NewBaseStep(StepIDSummarize, StepNameSummarize), deps: deps}
}

// Execute fills in Statistics and Correlations. The key columns of the mode
// are left out of the correlation matrix.
func (s *SummarizeStep) Execute(ctx context.Context, state *OperationState) error {
	if len(state.Results) == 0 {
		return NewStateError(s.ID(), "nothing has been merged")
	}
	for _, r := range state.Results {
		r.Statistics = dataprocessing.CalculateBasicStatistics(r.Merged)
		r.Correlations = dataprocessing.CorrelateFrom(r.Merged, len(r.Mode.Keys()))

		s.deps.Logger.InfoContext(ctx, "Statistics calculated",
			slog.String("mode", string(r.Mode)),
			slog.Int("columns", len(r.Statistics)),
			slog.Int("correlated_columns", r.Correlations.Size()))
	}
	return nil
}

// WriteStep writes the output tables and the optional artifacts
type WriteStep struct {
	BaseStep
	deps *Dependencies
}

// NewWriteStep creates a new write Step
func NewWriteStep(deps *Dependencies) *WriteStep {
	return &WriteStep{BaseStep: NewBaseStep(StepIDWrite, StepNameWrite), deps: deps}
}

type outputFiles struct {
	statistics   string
	correlations string
	merged       string
}

func filesFor(paths *config.Paths, mode dataprocessing.Mode) outputFiles {
	if mode == dataprocessing.ModePowiat {
		return outputFiles{paths.StatisticsByPowiatCSV, paths.CorrelationsByPowiatCSV, paths.MergedByPowiatCSV}
	}
	return outputFiles{paths.StatisticsByVoivodeshipCSV, paths.CorrelationsByVoivodeshipCSV, paths.MergedByVoivodeshipCSV}
}

// tableName is the file name without its directory or extension
func tableName(file string) string {
	return strings.TrimSuffix(filepath.Base(file), ".csv")
}

// Execute writes the statistics and correlation CSVs of each mode, then the
// merged CSVs, workbook and database when configured
func (s *WriteStep) Execute(ctx context.Context, state *OperationState) error {
	if len(state.Results) == 0 || state.Results[0].Statistics == nil {
		return NewStateError(s.ID(), "nothing has been summarized")
	}
	out := s.deps.Config.Output

	var written []string
	var tables []exporter.Table
	for _, r := range state.Results {
		files := filesFor(s.deps.Paths, r.Mode)
		stats := exporter.StatisticsTable(tableName(files.statistics), r.Statistics)
		corr := exporter.CorrelationTable(tableName(files.correlations), r.Correlations)

		if err := s.deps.Writer.WriteTable(files.statistics, stats); err != nil {
			return err
		}
		if err := s.deps.Writer.WriteTable(files.correlations, corr); err != nil {
			return err
		}
		written = append(written, files.statistics, files.correlations)

		if out.WriteMerged {
			if err := s.deps.Writer.WriteFrame(files.merged, r.Merged); err != nil {
				return err
			}
			written = append(written, files.merged)
		}

		tables = append(tables, stats, corr, exporter.FrameTable(tableName(files.merged), r.Merged))

		if !out.Quiet && s.deps.Console != nil {
			exporter.RenderTable(s.deps.Console, stats)
		}
	}

	if out.XLSXReport {
		if err := exporter.WriteWorkbook(s.deps.Paths.ReportXLSX, s.deps.Logger, tables...); err != nil {
			return err
		}
		written = append(written, s.deps.Paths.ReportXLSX)
	}

	if out.SQLitePath != "" {
		if err := s.saveToStore(ctx, state, tables); err != nil {
			return err
		}
	}

	state.SetContext(ContextKeyFilesWritten, written)
	s.deps.Logger.InfoContext(ctx, "Results written",
		slog.String("output_dir", s.deps.Paths.OutputDir),
		slog.Any("files", written))
	return nil
}

func (s *WriteStep) saveToStore(ctx context.Context, state *OperationState, tables []exporter.Table) error {
	store, err := exporter.OpenStore(ctx, s.deps.Config.Output.SQLitePath, s.deps.Logger)
	if err != nil {
		return err
	}
	defer store.Close()

	modes := make([]string, len(state.Results))
	for i, r := range state.Results {
		modes[i] = strings.ToLower(string(r.Mode))
	}
	return store.SaveTables(ctx, state.ID, strings.Join(modes, ","), tables...)
}
