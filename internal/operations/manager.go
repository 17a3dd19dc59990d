package operations

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"regionstats/internal/infrastructure"
)

// Manager runs registered steps in order and stops at the first failure
type Manager struct {
	steps   []Step
	ids     map[string]bool
	tracer  trace.Tracer
	metrics *infrastructure.Metrics
	logger  *slog.Logger
}

// NewManager creates a new operation manager. A nil tracer disables spans
// and nil metrics disables step metrics.
func NewManager(tracer trace.Tracer, metrics *infrastructure.Metrics, logger *slog.Logger) *Manager {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer(infrastructure.TracerName)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		ids:     make(map[string]bool),
		tracer:  tracer,
		metrics: metrics,
		logger:  logger,
	}
}

// RegisterStep appends a Step to the execution order
func (m *Manager) RegisterStep(step Step) error {
	if step == nil {
		return fmt.Errorf("cannot register nil Step")
	}
	id := step.ID()
	if id == "" {
		return fmt.Errorf("Step ID cannot be empty")
	}
	if m.ids[id] {
		return fmt.Errorf("Step with ID %s already registered", id)
	}
	m.ids[id] = true
	m.steps = append(m.steps, step)
	return nil
}

// Steps returns the registered steps in execution order
func (m *Manager) Steps() []Step {
	return append([]Step(nil), m.steps...)
}

// Execute runs every registered Step against state. Cancellation of ctx is
// checked before each Step starts.
func (m *Manager) Execute(ctx context.Context, state *OperationState) error {
	if len(m.steps) == 0 {
		return NewStateError("", "no steps registered")
	}

	modes := make([]string, len(state.Modes))
	for i, mode := range state.Modes {
		modes[i] = string(mode)
	}
	ctx, span := m.tracer.Start(ctx, "operation.execute",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", state.ID),
			attribute.StringSlice("operation.modes", modes),
			attribute.Int("operation.steps", len(m.steps)),
		),
	)
	defer span.End()

	for _, step := range m.steps {
		state.SetStep(step.ID(), NewStepState(step.ID(), step.Name()))
	}
	state.Start()

	m.logger.InfoContext(ctx, "sequential_execution_start",
		slog.String("operation_id", state.ID),
		slog.Int("step_count", len(m.steps)))

	for i, step := range m.steps {
		if err := ctx.Err(); err != nil {
			m.logger.WarnContext(ctx, "operation_cancelled",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()))
			cerr := NewCancellationError(step.ID(), err)
			state.Cancel(cerr)
			span.SetStatus(codes.Error, cerr.Error())
			return cerr
		}

		m.logger.InfoContext(ctx, "executing_step",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(m.steps)))

		if err := m.executeStep(ctx, state, step); err != nil {
			if IsCancellation(err) {
				state.Cancel(err)
			} else {
				state.Fail(err)
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}

	state.Complete()
	if m.metrics != nil {
		m.metrics.MarkSuccess(time.Now())
	}
	span.SetStatus(codes.Ok, "")
	m.logger.InfoContext(ctx, "all_steps_completed",
		slog.String("operation_id", state.ID),
		slog.Duration("duration", state.Duration()))
	return nil
}

// executeStep runs one Step inside its own span
func (m *Manager) executeStep(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStep(step.ID())
	if stepState == nil {
		return NewStateError(step.ID(), "step state not found")
	}

	ctx, span := m.tracer.Start(ctx, "operation.step."+step.ID(),
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("operation.id", state.ID),
			attribute.String("step.id", step.ID()),
			attribute.String("step.name", step.Name()),
		),
	)
	defer span.End()

	stepState.Start()
	start := time.Now()
	err := step.Execute(ctx, state)
	duration := time.Since(start)

	if m.metrics != nil {
		m.metrics.ObserveStep(step.ID(), duration, err)
	}

	if err != nil {
		infrastructure.RecordError(ctx, err)
		stepState.Fail(err)
		m.logger.ErrorContext(ctx, "step_execution_failed",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return NewCancellationError(step.ID(), err)
		}
		return NewExecutionError(step.ID(), err)
	}

	stepState.Complete(fmt.Sprintf("%s completed", step.Name()))
	span.SetStatus(codes.Ok, "")
	m.logger.InfoContext(ctx, "step_completed",
		slog.String("operation_id", state.ID),
		slog.String("step", step.ID()),
		slog.Duration("duration", duration))
	return nil
}
