package operations

import (
	"sync"
	"time"

	"regionstats/internal/dataprocessing"
	"regionstats/internal/frame"
)

// OperationStatusValue represents the overall operation status enum
type OperationStatusValue string

const (
	OperationStatusPending   OperationStatusValue = "pending"
	OperationStatusRunning   OperationStatusValue = "running"
	OperationStatusCompleted OperationStatusValue = "completed"
	OperationStatusFailed    OperationStatusValue = "failed"
	OperationStatusCancelled OperationStatusValue = "cancelled"
)

// Datasets holds the four cleaned input tables.
type Datasets struct {
	Alcohol    *frame.Frame
	Fire       *frame.Frame
	Population *frame.Frame
	Area       *frame.Frame
}

// Result is everything computed for one merge mode.
type Result struct {
	Mode         dataprocessing.Mode
	Merged       *frame.Frame
	Statistics   []dataprocessing.ColumnStats
	Correlations *dataprocessing.CorrelationMatrix
}

// OperationState represents the complete state of a operation execution.
// Datasets and Results are written by one Step at a time and need no locking.
type OperationState struct {
	mu sync.RWMutex

	ID        string
	Status    OperationStatusValue
	StartTime time.Time
	EndTime   *time.Time

	// Modes lists the merge modes of this run in execution order
	Modes []dataprocessing.Mode

	Datasets Datasets
	Results  []*Result

	// Step states, in registration order
	Steps map[string]*StepState
	order []string

	// operation context for facts reported by steps
	Context map[string]interface{}

	// Error if operation failed
	Error error
}

// NewOperationState creates a new operation state
func NewOperationState(id string, modes ...dataprocessing.Mode) *OperationState {
	return &OperationState{
		ID:        id,
		Status:    OperationStatusPending,
		StartTime: time.Now(),
		Modes:     modes,
		Steps:     make(map[string]*StepState),
		Context:   make(map[string]interface{}),
	}
}

// Start marks the operation as running
func (p *OperationState) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Status = OperationStatusRunning
	p.StartTime = time.Now()
}

// Complete marks the operation as completed
func (p *OperationState) Complete() {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCompleted
}

// Fail marks the operation as failed
func (p *OperationState) Fail(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusFailed
	p.Error = err
}

// Cancel marks the operation as cancelled
func (p *OperationState) Cancel(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	now := time.Now()
	p.EndTime = &now
	p.Status = OperationStatusCancelled
	p.Error = err
}

// GetStatus returns the operation status
func (p *OperationState) GetStatus() OperationStatusValue {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Status
}

// GetStep returns the state of a specific Step
func (p *OperationState) GetStep(stepID string) *StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.Steps[stepID]
}

// SetStep adds or replaces the state of a specific Step
func (p *OperationState) SetStep(stepID string, state *StepState) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.Steps[stepID]; !ok {
		p.order = append(p.order, stepID)
	}
	p.Steps[stepID] = state
}

// OrderedSteps returns the Step states in registration order
func (p *OperationState) OrderedSteps() []*StepState {
	p.mu.RLock()
	defer p.mu.RUnlock()
	steps := make([]*StepState, 0, len(p.order))
	for _, id := range p.order {
		steps = append(steps, p.Steps[id])
	}
	return steps
}

// GetContext retrieves a value from the operation context
func (p *OperationState) GetContext(key string) (interface{}, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	val, ok := p.Context[key]
	return val, ok
}

// SetContext sets a value in the operation context
func (p *OperationState) SetContext(key string, value interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Context[key] = value
}

// Result returns the result of mode, or nil before the merge Step ran
func (p *OperationState) Result(mode dataprocessing.Mode) *Result {
	for _, r := range p.Results {
		if r.Mode == mode {
			return r
		}
	}
	return nil
}

// Duration returns the duration of the operation execution
func (p *OperationState) Duration() time.Duration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.EndTime != nil {
		return p.EndTime.Sub(p.StartTime)
	}
	return time.Since(p.StartTime)
}

// HasFailures returns true if any Step has failed
func (p *OperationState) HasFailures() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, step := range p.Steps {
		if step.GetStatus() == StepStatusFailed {
			return true
		}
	}
	return false
}
