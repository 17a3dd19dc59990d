package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apperrors "regionstats/internal/errors"
	"regionstats/internal/frame"
)

// Layout of the population workbook: the table sits on the third sheet below
// three title rows, and the columns used are the unit name, the powiat name
// and the total population.
const (
	populationSheet    = 2
	populationSkipRows = 3
)

var populationColumns = []int{0, 1, 4}

// ProcessPopulationData reads population per powiat. The result has columns
// Voivodeship, Powiat and Population in workbook order.
//
// In the workbook a voivodeship is a row whose first cell starts with "WOJ.";
// the powiat rows below it inherit that voivodeship. Rows lacking a powiat
// name or a population (voivodeship totals, spacer rows) are dropped.
func (l *Loader) ProcessPopulationData(ctx context.Context, path string) (*frame.Frame, error) {
	table, err := ReadXLSX(path, populationSheet, populationSkipRows)
	if err != nil {
		return nil, err
	}
	if table.Width() <= populationColumns[len(populationColumns)-1] {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("%s: population sheet has %d columns, expected at least %d",
				path, table.Width(), populationColumns[len(populationColumns)-1]+1), nil)
	}

	raw, err := frame.New(
		markedOrNull(ColVoivodeship, table.Column(populationColumns[0]), voivodeshipMarker).ForwardFill(),
		nullableStrings(ColPowiat, table.Column(populationColumns[1])),
		numbers(ColPopulation, table.Column(populationColumns[2])),
	)
	if err != nil {
		return nil, err
	}

	kept, err := raw.DropNulls()
	if err != nil {
		return nil, err
	}

	voivodeships, _ := kept.Col(ColVoivodeship)
	powiats, _ := kept.Col(ColPowiat)
	population, _ := kept.Col(ColPopulation)
	result, err := frame.New(
		voivodeships.MapStrings(normalizeVoivodeship),
		powiats.MapStrings(func(s string) string {
			return strings.ReplaceAll(nfc(collapseSpace(s)), capitalCityPrefix, "")
		}),
		population,
	)
	if err != nil {
		return nil, err
	}

	l.logger.DebugContext(ctx, "Processed population data",
		slog.String("path", path),
		slog.Int("raw_rows", raw.Len()),
		slog.Int("dropped_rows", raw.Len()-result.Len()),
		slog.Int("powiats", result.Len()))
	return result, nil
}
