package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"

	apperrors "regionstats/internal/errors"
	"regionstats/internal/frame"
)

// alcoholVoivodeshipHeader is the column of the alcohol licence register that
// holds the seller's voivodeship.
const alcoholVoivodeshipHeader = "Województwo"

// ProcessAlcoholData counts alcohol sellers per voivodeship. The result has
// columns Voivodeship and Number of sellers, ordered by count descending;
// equal counts keep the order in which the voivodeship first appears.
func (l *Loader) ProcessAlcoholData(ctx context.Context, path string) (*frame.Frame, error) {
	table, err := ReadCSV(path, l.encoding)
	if err != nil {
		return nil, err
	}
	l.warnMissing(ctx, DatasetAlcohol, table, -1)

	idx := findHeader(table.Header, alcoholVoivodeshipHeader)
	if idx < 0 {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("%s has no %q column", path, alcoholVoivodeshipHeader), frame.ErrMissingColumn)
	}

	values, counts := nullableStrings(ColVoivodeship, table.Column(idx)).ValueCounts()
	result, err := frame.New(
		frame.NewStrings(ColVoivodeship, values).MapStrings(normalizeVoivodeship),
		frame.NewNumbers(ColSellers, counts),
	)
	if err != nil {
		return nil, err
	}

	l.logger.DebugContext(ctx, "Processed alcohol data",
		slog.String("path", path),
		slog.Int("raw_rows", len(table.Rows)),
		slog.Int("voivodeships", result.Len()))
	return result, nil
}
