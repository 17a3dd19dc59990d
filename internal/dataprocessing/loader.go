package dataprocessing

import (
	"context"
	"log/slog"
	"strings"

	"regionstats/internal/frame"
)

// Column names shared by every normalized dataset.
const (
	ColVoivodeship = "Voivodeship"
	ColPowiat      = "Powiat"
	ColSellers     = "Number of sellers"
	ColEvents      = "Number of events"
	ColPopulation  = "Population"
	ColArea        = "Area (ha)"
)

// Dataset names used in logs and metrics.
const (
	DatasetAlcohol    = "alcohol"
	DatasetFire       = "fire"
	DatasetPopulation = "population"
	DatasetArea       = "area"
)

// Loader reads and normalizes the four input datasets.
type Loader struct {
	logger   *slog.Logger
	encoding string
}

// NewLoader creates a loader. encoding applies to CSV inputs; an empty value
// means EncodingAuto.
func NewLoader(logger *slog.Logger, encoding string) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	if encoding == "" {
		encoding = EncodingAuto
	}
	return &Loader{logger: logger, encoding: encoding}
}

// warnMissing logs a warning when the raw table has empty cells in its
// first n columns.
func (l *Loader) warnMissing(ctx context.Context, dataset string, t *Table, n int) {
	if missing := t.MissingCount(n); missing > 0 {
		l.logger.WarnContext(ctx, "The dataset contains missing values",
			slog.String("dataset", dataset),
			slog.Int("missing_cells", missing))
	}
}

// markedOrNull keeps cells whose trimmed value starts with marker and marks
// every other cell as missing.
func markedOrNull(name string, cells []string, marker string) *frame.Series {
	return nullableStrings(name, cells).KeepStrings(func(v string) bool {
		return strings.HasPrefix(strings.TrimSpace(v), marker)
	})
}

// nullableStrings converts raw cells to a string series with empty cells
// marked missing.
func nullableStrings(name string, cells []string) *frame.Series {
	nulls := make([]bool, len(cells))
	for i, c := range cells {
		nulls[i] = isMissing(c)
	}
	return frame.NewNullableStrings(name, cells, nulls)
}

// numbers converts raw cells to a numeric series.
func numbers(name string, cells []string) *frame.Series {
	values := make([]float64, len(cells))
	for i, c := range cells {
		values[i] = parseNumber(c)
	}
	return frame.NewNumbers(name, values)
}
