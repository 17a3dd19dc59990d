package dataprocessing

import (
	"context"
	"log/slog"
	"sort"

	"regionstats/internal/frame"
)

// NameDiff lists the names present in only one of two compared frames.
type NameDiff struct {
	OnlyInFirst  []string
	OnlyInSecond []string
}

// Consistent reports whether both frames share the same set of names.
func (d NameDiff) Consistent() bool {
	return len(d.OnlyInFirst) == 0 && len(d.OnlyInSecond) == 0
}

// Count returns the total number of mismatched names.
func (d NameDiff) Count() int {
	return len(d.OnlyInFirst) + len(d.OnlyInSecond)
}

// CheckNamesConsistency compares the distinct values of column in two frames.
// Differences are logged as a warning and returned; they never fail the run.
func CheckNamesConsistency(ctx context.Context, logger *slog.Logger, first, second *frame.Frame, column string) (NameDiff, error) {
	a, err := first.Col(column)
	if err != nil {
		return NameDiff{}, err
	}
	b, err := second.Col(column)
	if err != nil {
		return NameDiff{}, err
	}

	firstNames, secondNames := nameSet(a), nameSet(b)
	diff := NameDiff{
		OnlyInFirst:  difference(firstNames, secondNames),
		OnlyInSecond: difference(secondNames, firstNames),
	}

	if diff.Consistent() {
		logger.InfoContext(ctx, "All names are consistent",
			slog.String("column", column),
			slog.Int("names", len(firstNames)))
		return diff, nil
	}
	logger.WarnContext(ctx, "Inconsistent names found",
		slog.String("column", column),
		slog.Any("only_in_first", diff.OnlyInFirst),
		slog.Any("only_in_second", diff.OnlyInSecond))
	return diff, nil
}

func nameSet(s *frame.Series) map[string]struct{} {
	set := make(map[string]struct{}, s.Len())
	for i := 0; i < s.Len(); i++ {
		if !s.IsNull(i) {
			set[s.Format(i)] = struct{}{}
		}
	}
	return set
}

// difference returns the sorted members of a that are not in b.
func difference(a, b map[string]struct{}) []string {
	var out []string
	for name := range a {
		if _, ok := b[name]; !ok {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}
