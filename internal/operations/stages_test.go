package operations

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"regionstats/internal/config"
	"regionstats/internal/dataprocessing"
	"regionstats/internal/infrastructure"
	"regionstats/internal/shared/testutil"
)

type pipelineEnv struct {
	deps    *Dependencies
	outDir  string
	console *bytes.Buffer
	handler *testutil.BufferedSlogHandler
}

func newPipelineEnv(t *testing.T, mutate func(cfg *config.Config)) *pipelineEnv {
	t.Helper()

	cfg := config.Default()
	cfg.Input.Dir = testutil.WriteInputDir(t)
	cfg.Output.Dir = filepath.Join(t.TempDir(), "output")
	if mutate != nil {
		mutate(cfg)
	}

	logger, handler := testutil.NewTestLogger(t)
	console := &bytes.Buffer{}
	return &pipelineEnv{
		deps:    NewDependencies(cfg, infrastructure.NewMetrics(), logger, console),
		outDir:  cfg.Output.Dir,
		console: console,
		handler: handler,
	}
}

func (e *pipelineEnv) run(t *testing.T, mode string) (*OperationState, error) {
	t.Helper()

	modes, err := ParseAnalysisMode(mode)
	require.NoError(t, err)

	manager := NewManager(nil, e.deps.Metrics, e.deps.Logger)
	for _, step := range NewPipelineSteps(e.deps) {
		require.NoError(t, manager.RegisterStep(step))
	}
	state := NewOperationState("test-run", modes...)
	return state, manager.Execute(context.Background(), state)
}

func (e *pipelineEnv) lines(t *testing.T, file string) []string {
	t.Helper()
	content, err := os.ReadFile(filepath.Join(e.outDir, file))
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(content)), "\n")
}

func TestParseAnalysisMode(t *testing.T) {
	tests := []struct {
		input   string
		want    []dataprocessing.Mode
		wantErr bool
	}{
		{input: "all", want: []dataprocessing.Mode{dataprocessing.ModePowiat, dataprocessing.ModeVoivodeship}},
		{input: "", want: []dataprocessing.Mode{dataprocessing.ModePowiat, dataprocessing.ModeVoivodeship}},
		{input: "ALL", want: []dataprocessing.Mode{dataprocessing.ModePowiat, dataprocessing.ModeVoivodeship}},
		{input: "powiat", want: []dataprocessing.Mode{dataprocessing.ModePowiat}},
		{input: "Voivodeship", want: []dataprocessing.Mode{dataprocessing.ModeVoivodeship}},
		{input: "gmina", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAnalysisMode(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, dataprocessing.ErrInvalidMode)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPipeline_AllModes(t *testing.T) {
	env := newPipelineEnv(t, nil)

	state, err := env.run(t, AnalysisModeAll)
	require.NoError(t, err)
	assert.Equal(t, OperationStatusCompleted, state.GetStatus())

	// Datasets
	assert.Equal(t, 2, state.Datasets.Alcohol.Len())
	assert.Equal(t, 4, state.Datasets.Fire.Len())
	assert.Equal(t, 4, state.Datasets.Population.Len())
	assert.Equal(t, 4, state.Datasets.Area.Len())

	// Merged tables
	powiat := state.Result(dataprocessing.ModePowiat)
	require.NotNil(t, powiat)
	assert.Equal(t, []string{"Voivodeship", "Powiat", "Number of events", "Population", "Area (ha)"}, powiat.Merged.Names())
	assert.Equal(t, 4, powiat.Merged.Len())
	assert.Equal(t, 0, powiat.Merged.NullCount())

	voivodeship := state.Result(dataprocessing.ModeVoivodeship)
	require.NotNil(t, voivodeship)
	assert.Equal(t, []string{"Voivodeship", "Number of events", "Population", "Area (ha)", "Number of sellers"}, voivodeship.Merged.Names())
	assert.Equal(t, 2, voivodeship.Merged.Len())

	// Statistics and correlations skip the key columns
	require.Len(t, powiat.Statistics, 3)
	assert.Equal(t, "Number of events", powiat.Statistics[0].Column)
	assert.InDelta(t, 1291.25, powiat.Statistics[0].Mean, 1e-9)
	assert.InDelta(t, 522.5, powiat.Statistics[0].Median, 1e-9)
	assert.Equal(t, []string{"Number of events", "Population", "Area (ha)"}, powiat.Correlations.Columns)
	assert.Equal(t, 4, voivodeship.Correlations.Size())

	// Output files
	assert.Equal(t, "column,mean,median,std_dev,min,max", env.lines(t, config.StatisticsByPowiatFile)[0])
	assert.True(t, strings.HasPrefix(env.lines(t, config.StatisticsByPowiatFile)[1], "Number of events,1291.25,522.5,"))
	assert.Equal(t, ",Number of events,Population,Area (ha)", env.lines(t, config.CorrelationsByPowiatFile)[0])
	assert.Len(t, env.lines(t, config.StatisticsByVoivodeshipFile), 5)
	assert.Equal(t, ",Number of events,Population,Area (ha),Number of sellers", env.lines(t, config.CorrelationsByVoivodeshipFile)[0])
	assert.True(t, strings.HasPrefix(env.lines(t, config.CorrelationsByVoivodeshipFile)[1], "Number of events,"))
	r, ok := voivodeship.Correlations.Get("Number of events", "Number of sellers")
	require.True(t, ok)
	assert.InDelta(t, 1.0, r, 1e-9)

	_, err = os.Stat(filepath.Join(env.outDir, config.MergedByPowiatFile))
	assert.True(t, os.IsNotExist(err), "merged output is opt-in")

	written, ok := state.GetContext(ContextKeyFilesWritten)
	require.True(t, ok)
	assert.Len(t, written, 4)
	assert.Contains(t, written, env.deps.Paths.StatisticsByPowiatCSV)
	assert.Contains(t, written, env.deps.Paths.CorrelationsByVoivodeshipCSV)

	mismatches, ok := state.GetContext(ContextKeyMismatches)
	require.True(t, ok)
	assert.Equal(t, 0, mismatches)

	// Console summary and metrics
	assert.Contains(t, env.console.String(), "statistics_by_powiat")
	assert.Contains(t, env.console.String(), "statistics_by_voivodeship")
	metrics := env.deps.Metrics
	assert.Equal(t, 4.0, promtestutil.ToFloat64(metrics.RowsLoaded.WithLabelValues(dataprocessing.DatasetFire)))
	assert.Equal(t, 2.0, promtestutil.ToFloat64(metrics.RowsLoaded.WithLabelValues(dataprocessing.DatasetAlcohol)))
	assert.Equal(t, 0.0, promtestutil.ToFloat64(metrics.NameMismatches.WithLabelValues("voivodeship:fire/alcohol")))
	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.StepsTotal.WithLabelValues(StepIDWrite, "success")))

	testutil.AssertNoErrors(t, env.handler)
}

func TestPipeline_SingleMode(t *testing.T) {
	env := newPipelineEnv(t, func(cfg *config.Config) { cfg.Output.Quiet = true })

	state, err := env.run(t, AnalysisModeVoivodeship)
	require.NoError(t, err)

	assert.Nil(t, state.Result(dataprocessing.ModePowiat))
	testutil.MustExist(t,
		filepath.Join(env.outDir, config.StatisticsByVoivodeshipFile),
		filepath.Join(env.outDir, config.CorrelationsByVoivodeshipFile))
	_, err = os.Stat(filepath.Join(env.outDir, config.StatisticsByPowiatFile))
	assert.True(t, os.IsNotExist(err))
	assert.Empty(t, env.console.String(), "quiet suppresses the console summary")

	// Only voivodeship checks ran
	assert.False(t, env.handler.ContainsAttr("check", "powiat:fire/area"))
	assert.True(t, env.handler.ContainsAttr("check", "voivodeship:fire/area"))
}

func TestPipeline_OptionalOutputs(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "db", "regionstats.db")
	env := newPipelineEnv(t, func(cfg *config.Config) {
		cfg.Output.WriteMerged = true
		cfg.Output.XLSXReport = true
		cfg.Output.SQLitePath = dbPath
	})

	state, err := env.run(t, AnalysisModeAll)
	require.NoError(t, err)

	testutil.MustExist(t,
		filepath.Join(env.outDir, config.MergedByPowiatFile),
		filepath.Join(env.outDir, config.MergedByVoivodeshipFile),
		filepath.Join(env.outDir, config.ReportWorkbookFile),
		dbPath)

	assert.Equal(t, "Voivodeship,Powiat,Number of events,Population,Area (ha)", env.lines(t, config.MergedByPowiatFile)[0])
	assert.Equal(t, "dolnośląskie,Wrocław,900,674312,29282", env.lines(t, config.MergedByPowiatFile)[1])

	written, _ := state.GetContext(ContextKeyFilesWritten)
	assert.Len(t, written, 7)

	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow(`SELECT mode FROM runs WHERE run_id = ?`, "test-run").Scan(&mode))
	assert.Equal(t, "powiat,voivodeship", mode)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "merged_by_voivodeship"`).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestPipeline_MissingInput(t *testing.T) {
	env := newPipelineEnv(t, nil)
	require.NoError(t, os.Remove(filepath.Join(env.deps.Paths.InputDir, testutil.PopulationFile)))

	state, err := env.run(t, AnalysisModeAll)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, OperationStatusFailed, state.GetStatus())
	assert.Equal(t, StepStatusFailed, state.GetStep(StepIDLoad).GetStatus())
	assert.Equal(t, StepStatusPending, state.GetStep(StepIDWrite).GetStatus())

	_, statErr := os.Stat(filepath.Join(env.outDir, config.StatisticsByPowiatFile))
	assert.True(t, os.IsNotExist(statErr))
}

func TestSteps_RequireEarlierSteps(t *testing.T) {
	env := newPipelineEnv(t, nil)
	state := NewOperationState("orphan", dataprocessing.ModePowiat)

	for _, step := range []Step{
		NewConsistencyStep(env.deps),
		NewMergeStep(env.deps),
		NewSummarizeStep(env.deps),
		NewWriteStep(env.deps),
	} {
		t.Run(step.ID(), func(t *testing.T) {
			err := step.Execute(context.Background(), state)
			require.Error(t, err)
			assert.Equal(t, ErrorTypeInvalidState, GetErrorType(err))
		})
	}
}
