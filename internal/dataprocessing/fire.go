package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apperrors "regionstats/internal/errors"
	"regionstats/internal/frame"
)

// fireColumns names the leading columns of the fire service export, in order.
// Only the first five columns are used; the rest break events down by type.
var fireColumns = []string{"TERYT", ColVoivodeship, ColPowiat, "Gmina", ColEvents}

// ProcessFireData sums fire service events per powiat. The result has columns
// Voivodeship, Powiat and Number of events, sorted by (Voivodeship, Powiat).
func (l *Loader) ProcessFireData(ctx context.Context, path string) (*frame.Frame, error) {
	table, err := ReadCSV(path, l.encoding)
	if err != nil {
		return nil, err
	}
	if table.Width() < len(fireColumns) {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("%s has %d columns, expected at least %d", path, table.Width(), len(fireColumns)), nil)
	}
	l.warnMissing(ctx, DatasetFire, table, len(fireColumns))

	gminas, err := frame.New(
		nullableStrings(ColVoivodeship, table.Column(1)).MapStrings(strings.TrimSpace),
		nullableStrings(ColPowiat, table.Column(2)).MapStrings(strings.TrimSpace),
		numbers(ColEvents, table.Column(4)),
	)
	if err != nil {
		return nil, err
	}

	result, err := gminas.GroupBySum(ColVoivodeship, ColPowiat)
	if err != nil {
		return nil, err
	}

	l.logger.DebugContext(ctx, "Processed fire data",
		slog.String("path", path),
		slog.Int("gminas", gminas.Len()),
		slog.Int("powiats", result.Len()))
	return result, nil
}
