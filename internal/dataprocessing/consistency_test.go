package dataprocessing

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionstats/internal/frame"
	"regionstats/internal/shared/testutil"
)

func TestCheckNamesConsistency(t *testing.T) {
	names := func(values ...string) *frame.Frame {
		return frame.MustNew(frame.NewStrings(ColPowiat, values))
	}

	tests := []struct {
		name       string
		first      *frame.Frame
		second     *frame.Frame
		want       NameDiff
		wantLevel  slog.Level
		wantLogMsg string
	}{
		{
			name:       "same names in any order",
			first:      names("bolesławiecki", "Wrocław", "Wrocław"),
			second:     names("Wrocław", "bolesławiecki"),
			wantLevel:  slog.LevelInfo,
			wantLogMsg: "All names are consistent",
		},
		{
			name:   "differences on both sides",
			first:  names("Warszawa", "garwoliński", "Jelenia Góra"),
			second: names("garwoliński", "m. st. Warszawa", "Bielsko-Biała"),
			want: NameDiff{
				OnlyInFirst:  []string{"Jelenia Góra", "Warszawa"},
				OnlyInSecond: []string{"Bielsko-Biała", "m. st. Warszawa"},
			},
			wantLevel:  slog.LevelWarn,
			wantLogMsg: "Inconsistent names found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, handler := testutil.NewTestLogger(t)

			diff, err := CheckNamesConsistency(context.Background(), logger, tt.first, tt.second, ColPowiat)
			require.NoError(t, err)

			assert.Equal(t, tt.want, diff)
			assert.Equal(t, tt.want.Count() == 0, diff.Consistent())
			testutil.AssertLogContains(t, handler, tt.wantLevel, tt.wantLogMsg)
			testutil.AssertLogAttr(t, handler, "column", ColPowiat)
		})
	}
}

func TestCheckNamesConsistency_MissingColumn(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	a := frame.MustNew(frame.NewStrings(ColVoivodeship, []string{"x"}))
	b := frame.MustNew(frame.NewStrings(ColPowiat, []string{"x"}))

	_, err := CheckNamesConsistency(context.Background(), logger, a, b, ColPowiat)
	assert.ErrorIs(t, err, frame.ErrMissingColumn)
}
