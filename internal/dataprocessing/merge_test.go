package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionstats/internal/frame"
)

func powiatFrame(value string, values []float64) *frame.Frame {
	return frame.MustNew(
		frame.NewStrings(ColVoivodeship, []string{"A", "A", "B", "B", "C"}),
		frame.NewNumbers(ColPowiat, []float64{1, 2, 1, 2, 5}),
		frame.NewNumbers(value, values),
	)
}

func TestMergeFrames_Powiat(t *testing.T) {
	df1 := powiatFrame("b", []float64{10, 20, 30, 40, 50})
	df2 := powiatFrame("c", []float64{1, 2, 3, 4, 5})

	want := frame.MustNew(
		frame.NewStrings(ColVoivodeship, []string{"A", "A", "B", "B", "C"}),
		frame.NewNumbers(ColPowiat, []float64{1, 2, 1, 2, 5}),
		frame.NewNumbers("b", []float64{10, 20, 30, 40, 50}),
		frame.NewNumbers("c", []float64{1, 2, 3, 4, 5}),
	)

	merged, err := MergeFrames([]*frame.Frame{df1, df2}, ModePowiat)
	require.NoError(t, err)
	assert.True(t, merged.Equal(want), "got %v", merged.Names())

	t.Run("missing powiat", func(t *testing.T) {
		df3, err := df1.Select(ColVoivodeship, "b")
		require.NoError(t, err)
		_, err = MergeFrames([]*frame.Frame{df1, df3}, ModePowiat)
		assert.ErrorIs(t, err, frame.ErrMissingColumn)
	})

	t.Run("missing voivodeship", func(t *testing.T) {
		df4, err := df1.Select(ColPowiat, "b")
		require.NoError(t, err)
		_, err = MergeFrames([]*frame.Frame{df1, df4}, ModePowiat)
		assert.ErrorIs(t, err, frame.ErrMissingColumn)
	})
}

func TestMergeFrames_PowiatOuterJoin(t *testing.T) {
	left := frame.MustNew(
		frame.NewStrings(ColVoivodeship, []string{"a", "b"}),
		frame.NewStrings(ColPowiat, []string{"x", "y"}),
		frame.NewNumbers(ColEvents, []float64{1, 2}),
	)
	right := frame.MustNew(
		frame.NewStrings(ColVoivodeship, []string{"b", "c"}),
		frame.NewStrings(ColPowiat, []string{"y", "z"}),
		frame.NewNumbers(ColArea, []float64{20, 30}),
	)

	merged, err := MergeFrames([]*frame.Frame{left, right}, ModePowiat)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, strs(t, merged, ColVoivodeship))
	events := nums(t, merged, ColEvents)
	assert.Equal(t, []float64{1, 2}, events[:2])
	assert.True(t, merged.ColAt(2).IsNull(2))
	assert.True(t, merged.ColAt(3).IsNull(0))
	assert.Equal(t, 2, merged.NullCount())
}

func TestMergeFrames_Voivodeship(t *testing.T) {
	df1 := frame.MustNew(
		frame.NewStrings(ColVoivodeship, []string{"A", "A", "B", "B", "C"}),
		frame.NewNumbers("b", []float64{10, 20, 30, 40, 50}),
	)
	df2 := frame.MustNew(
		frame.NewStrings(ColVoivodeship, []string{"A", "A", "B", "B", "C"}),
		frame.NewNumbers("c", []float64{1, 2, 3, 4, 5}),
	)

	want := frame.MustNew(
		frame.NewStrings(ColVoivodeship, []string{"A", "B", "C"}),
		frame.NewNumbers("b", []float64{30, 70, 50}),
		frame.NewNumbers("c", []float64{3, 7, 5}),
	)

	merged, err := MergeFrames([]*frame.Frame{df1, df2}, ModeVoivodeship)
	require.NoError(t, err)
	assert.True(t, merged.Equal(want))

	t.Run("inputs are not modified", func(t *testing.T) {
		assert.Equal(t, 5, df1.Len())
	})

	t.Run("string columns are dropped", func(t *testing.T) {
		withPowiat := powiatFrame("b", []float64{10, 20, 30, 40, 50})
		named := frame.MustNew(
			frame.NewStrings(ColVoivodeship, []string{"A", "B"}),
			frame.NewStrings(ColPowiat, []string{"p", "q"}),
			frame.NewNumbers("d", []float64{1, 1}),
		)
		merged, err := MergeFrames([]*frame.Frame{withPowiat, named}, ModeVoivodeship)
		require.NoError(t, err)
		assert.Equal(t, []string{ColVoivodeship, ColPowiat, "b", "d"}, merged.Names(),
			"a numeric Powiat column is summed with the other numbers")
	})

	t.Run("missing voivodeship", func(t *testing.T) {
		df3, err := df1.Select("b")
		require.NoError(t, err)
		_, err = MergeFrames([]*frame.Frame{df1, df3}, ModeVoivodeship)
		assert.ErrorIs(t, err, frame.ErrMissingColumn)
	})
}

func TestMergeFrames_InvalidInput(t *testing.T) {
	df := powiatFrame("b", []float64{10, 20, 30, 40, 50})

	_, err := MergeFrames([]*frame.Frame{df, df}, Mode("InvalidMode"))
	assert.ErrorIs(t, err, ErrInvalidMode)

	for _, mode := range []Mode{ModePowiat, ModeVoivodeship} {
		_, err := MergeFrames(nil, mode)
		assert.ErrorIs(t, err, ErrNoFrames, string(mode))
	}
}

func TestMergeFrames_SingleFrame(t *testing.T) {
	df := frame.MustNew(
		frame.NewStrings(ColVoivodeship, []string{"A", "B"}),
		frame.NewNumbers(ColPowiat, []float64{1, 2}),
		frame.NewNumbers("val", []float64{10, 20}),
	)

	result, err := MergeFrames([]*frame.Frame{df}, ModePowiat)
	require.NoError(t, err)
	assert.True(t, result.Equal(df))
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{in: "powiat", want: ModePowiat},
		{in: "Powiat", want: ModePowiat},
		{in: "VOIVODESHIP", want: ModeVoivodeship},
		{in: "gmina", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseMode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
