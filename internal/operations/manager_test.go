package operations

import (
	"context"
	"errors"
	"testing"

	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"regionstats/internal/dataprocessing"
	"regionstats/internal/infrastructure"
	"regionstats/internal/shared/testutil"
)

// funcStep is a Step backed by a function
type funcStep struct {
	BaseStep
	fn func(ctx context.Context, state *OperationState) error
}

func newFuncStep(id string, fn func(ctx context.Context, state *OperationState) error) *funcStep {
	return &funcStep{BaseStep: NewBaseStep(id, "Step "+id), fn: fn}
}

func (s *funcStep) Execute(ctx context.Context, state *OperationState) error {
	return s.fn(ctx, state)
}

func recordingStep(id string, ran *[]string) *funcStep {
	return newFuncStep(id, func(context.Context, *OperationState) error {
		*ran = append(*ran, id)
		return nil
	})
}

func newTestManager(t *testing.T) (*Manager, *tracetest.SpanRecorder, *infrastructure.Metrics) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })

	logger, _ := testutil.NewTestLogger(t)
	metrics := infrastructure.NewMetrics()
	return NewManager(tp.Tracer("test"), metrics, logger), recorder, metrics
}

func spanNames(recorder *tracetest.SpanRecorder) []string {
	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	return names
}

func TestManager_RegisterStep(t *testing.T) {
	manager := NewManager(nil, nil, nil)

	tests := []struct {
		name    string
		step    Step
		wantErr string
	}{
		{name: "valid step", step: newFuncStep("a", nil)},
		{name: "nil step", step: nil, wantErr: "nil Step"},
		{name: "empty ID", step: newFuncStep("", nil), wantErr: "cannot be empty"},
		{name: "duplicate ID", step: newFuncStep("a", nil), wantErr: "already registered"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := manager.RegisterStep(tt.step)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
	assert.Len(t, manager.Steps(), 1)
}

func TestManager_Execute_NoSteps(t *testing.T) {
	manager := NewManager(nil, nil, nil)
	err := manager.Execute(context.Background(), NewOperationState("run"))
	require.Error(t, err)
	assert.Equal(t, ErrorTypeInvalidState, GetErrorType(err))
}

func TestManager_Execute_Success(t *testing.T) {
	manager, recorder, metrics := newTestManager(t)

	var ran []string
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, manager.RegisterStep(recordingStep(id, &ran)))
	}

	state := NewOperationState("run-1", dataprocessing.ModePowiat)
	require.NoError(t, manager.Execute(context.Background(), state))

	assert.Equal(t, []string{"a", "b", "c"}, ran)
	assert.Equal(t, OperationStatusCompleted, state.GetStatus())
	assert.NoError(t, state.Error)
	assert.False(t, state.HasFailures())

	steps := state.OrderedSteps()
	require.Len(t, steps, 3)
	for i, s := range steps {
		assert.Equal(t, ran[i], s.ID)
		assert.Equal(t, StepStatusCompleted, s.GetStatus())
		assert.NotNil(t, s.EndTime)
	}

	assert.Equal(t, []string{"operation.step.a", "operation.step.b", "operation.step.c", "operation.execute"},
		spanNames(recorder))
	for _, s := range recorder.Ended() {
		assert.Equal(t, codes.Ok, s.Status().Code, s.Name())
	}

	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.StepsTotal.WithLabelValues("b", "success")))
	assert.Greater(t, promtestutil.ToFloat64(metrics.LastSuccess), 0.0)
}

func TestManager_Execute_StopsAtFirstFailure(t *testing.T) {
	manager, recorder, metrics := newTestManager(t)
	cause := errors.New("workbook is corrupt")

	var ran []string
	require.NoError(t, manager.RegisterStep(recordingStep("a", &ran)))
	require.NoError(t, manager.RegisterStep(newFuncStep("b", func(context.Context, *OperationState) error {
		return cause
	})))
	require.NoError(t, manager.RegisterStep(recordingStep("c", &ran)))

	state := NewOperationState("run-2")
	err := manager.Execute(context.Background(), state)

	require.Error(t, err)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, ErrorTypeExecution, GetErrorType(err))
	assert.Contains(t, err.Error(), "b")

	assert.Equal(t, []string{"a"}, ran)
	assert.Equal(t, OperationStatusFailed, state.GetStatus())
	assert.True(t, state.HasFailures())
	assert.Equal(t, StepStatusCompleted, state.GetStep("a").GetStatus())
	assert.Equal(t, StepStatusFailed, state.GetStep("b").GetStatus())
	assert.Equal(t, StepStatusPending, state.GetStep("c").GetStatus())

	assert.Equal(t, []string{"operation.step.a", "operation.step.b", "operation.execute"}, spanNames(recorder))
	for _, s := range recorder.Ended()[1:] {
		assert.Equal(t, codes.Error, s.Status().Code, s.Name())
	}

	assert.Equal(t, 1.0, promtestutil.ToFloat64(metrics.StepsTotal.WithLabelValues("b", "failure")))
	assert.Equal(t, 0.0, promtestutil.ToFloat64(metrics.LastSuccess))
}

func TestManager_Execute_Cancellation(t *testing.T) {
	t.Run("cancelled before start", func(t *testing.T) {
		manager, _, _ := newTestManager(t)
		var ran []string
		require.NoError(t, manager.RegisterStep(recordingStep("a", &ran)))

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		state := NewOperationState("run-3")
		err := manager.Execute(ctx, state)

		require.Error(t, err)
		assert.True(t, IsCancellation(err))
		assert.ErrorIs(t, err, context.Canceled)
		assert.Empty(t, ran)
		assert.Equal(t, OperationStatusCancelled, state.GetStatus())
	})

	t.Run("cancelled between steps", func(t *testing.T) {
		manager, _, _ := newTestManager(t)
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var ran []string
		require.NoError(t, manager.RegisterStep(newFuncStep("a", func(context.Context, *OperationState) error {
			ran = append(ran, "a")
			cancel()
			return nil
		})))
		require.NoError(t, manager.RegisterStep(recordingStep("b", &ran)))

		state := NewOperationState("run-4")
		err := manager.Execute(ctx, state)

		require.Error(t, err)
		assert.True(t, IsCancellation(err))
		assert.Equal(t, []string{"a"}, ran)
		assert.Equal(t, StepStatusPending, state.GetStep("b").GetStatus())
	})

	t.Run("step returns context error", func(t *testing.T) {
		manager, _, _ := newTestManager(t)
		require.NoError(t, manager.RegisterStep(newFuncStep("a", func(context.Context, *OperationState) error {
			return context.DeadlineExceeded
		})))

		state := NewOperationState("run-5")
		err := manager.Execute(context.Background(), state)

		assert.True(t, IsCancellation(err))
		assert.Equal(t, OperationStatusCancelled, state.GetStatus())
		assert.Equal(t, StepStatusFailed, state.GetStep("a").GetStatus())
	})
}
