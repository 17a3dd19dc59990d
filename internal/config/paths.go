package config

import (
	"log/slog"
	"path/filepath"
	"strings"
)

// Output file names. These are fixed; only the directory is configurable.
const (
	StatisticsByPowiatFile        = "statistics_by_powiat.csv"
	StatisticsByVoivodeshipFile   = "statistics_by_voivodeship.csv"
	CorrelationsByPowiatFile      = "correlations_by_powiat.csv"
	CorrelationsByVoivodeshipFile = "correlations_by_voivodeship.csv"
	MergedByPowiatFile            = "merged_by_powiat.csv"
	MergedByVoivodeshipFile       = "merged_by_voivodeship.csv"
	ReportWorkbookFile            = "report.xlsx"
)

// Paths contains all the file paths of a run.
// This is the single source of truth for input and output locations.
type Paths struct {
	InputDir  string
	OutputDir string

	// Input datasets
	AlcoholCSV     string
	FireCSV        string
	AreaXLSX       string
	PopulationXLSX string

	// Well-known output files
	StatisticsByPowiatCSV        string
	StatisticsByVoivodeshipCSV   string
	CorrelationsByPowiatCSV      string
	CorrelationsByVoivodeshipCSV string
	MergedByPowiatCSV            string
	MergedByVoivodeshipCSV       string
	ReportXLSX                   string
}

// NewPaths resolves every input and output path from the configuration.
func NewPaths(cfg *Config) *Paths {
	in, out := cfg.Input.Dir, cfg.Output.Dir
	return &Paths{
		InputDir:  in,
		OutputDir: out,

		AlcoholCSV:     filepath.Join(in, cfg.Input.AlcoholFile),
		FireCSV:        filepath.Join(in, cfg.Input.FireFile),
		AreaXLSX:       filepath.Join(in, cfg.Input.AreaFile),
		PopulationXLSX: filepath.Join(in, cfg.Input.PopulationFile),

		StatisticsByPowiatCSV:        filepath.Join(out, StatisticsByPowiatFile),
		StatisticsByVoivodeshipCSV:   filepath.Join(out, StatisticsByVoivodeshipFile),
		CorrelationsByPowiatCSV:      filepath.Join(out, CorrelationsByPowiatFile),
		CorrelationsByVoivodeshipCSV: filepath.Join(out, CorrelationsByVoivodeshipFile),
		MergedByPowiatCSV:            filepath.Join(out, MergedByPowiatFile),
		MergedByVoivodeshipCSV:       filepath.Join(out, MergedByVoivodeshipFile),
		ReportXLSX:                   filepath.Join(out, ReportWorkbookFile),
	}
}

// InputFiles returns the four dataset paths.
func (p *Paths) InputFiles() []string {
	return []string{p.AlcoholCSV, p.FireCSV, p.AreaXLSX, p.PopulationXLSX}
}

// GetOutputPath returns the full path for a file in the output directory.
func (p *Paths) GetOutputPath(filename string) string {
	return filepath.Join(p.OutputDir, filename)
}

// InOutputDir reports whether path already lies inside the output directory.
func (p *Paths) InOutputDir(path string) bool {
	rel, err := filepath.Rel(p.OutputDir, path)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// LogPathResolution logs every resolved path at debug level.
func (p *Paths) LogPathResolution(logger *slog.Logger) {
	logger.Debug("Resolved paths",
		slog.String("input_dir", p.InputDir),
		slog.String("output_dir", p.OutputDir),
		slog.String("alcohol", p.AlcoholCSV),
		slog.String("fire", p.FireCSV),
		slog.String("area", p.AreaXLSX),
		slog.String("population", p.PopulationXLSX))
}
