package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	apperrors "regionstats/internal/errors"
	"regionstats/internal/frame"
)

// Layout of the geodetic area workbook: first sheet, four title rows, and
// the first three columns hold the unit code, the unit name and the area.
const (
	areaSheet    = 0
	areaSkipRows = 4
	areaColumns  = 3
)

// ProcessAreaData reads the geodetic area per powiat. The result has columns
// Voivodeship, Powiat and Area (ha) in workbook order.
//
// The unit name column mixes voivodeship rows ("WOJ. ...") with powiat rows
// ("Powiat ..."). Voivodeship is taken from the nearest voivodeship row above
// each powiat; every row that is not a powiat is dropped.
func (l *Loader) ProcessAreaData(ctx context.Context, path string) (*frame.Frame, error) {
	table, err := ReadXLSX(path, areaSheet, areaSkipRows)
	if err != nil {
		return nil, err
	}
	if table.Width() < areaColumns {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("%s: area sheet has %d columns, expected at least %d", path, table.Width(), areaColumns), nil)
	}

	names := table.Column(1)
	raw, err := frame.New(
		markedOrNull(ColVoivodeship, names, voivodeshipMarker).ForwardFill().MapStrings(normalizeVoivodeship),
		markedOrNull(ColPowiat, names, powiatMarker),
		numbers(ColArea, table.Column(2)),
	)
	if err != nil {
		return nil, err
	}

	kept, err := raw.DropNulls(ColPowiat)
	if err != nil {
		return nil, err
	}

	voivodeships, _ := kept.Col(ColVoivodeship)
	powiats, _ := kept.Col(ColPowiat)
	area, _ := kept.Col(ColArea)
	result, err := frame.New(
		voivodeships,
		powiats.MapStrings(normalizeAreaPowiat),
		area,
	)
	if err != nil {
		return nil, err
	}

	l.logger.DebugContext(ctx, "Processed area data",
		slog.String("path", path),
		slog.Int("raw_rows", raw.Len()),
		slog.Int("dropped_rows", raw.Len()-result.Len()),
		slog.Int("powiats", result.Len()))
	return result, nil
}

// normalizeAreaPowiat turns "Powiat m. St. Warszawa" into "Warszawa" and
// "Powiat bolesławiecki" into "bolesławiecki".
func normalizeAreaPowiat(s string) string {
	s = nfc(collapseSpace(s))
	for _, prefix := range []string{powiatPrefix, cityPrefix, capitalPrefix} {
		s = strings.ReplaceAll(s, prefix, "")
	}
	return strings.TrimSpace(s)
}
