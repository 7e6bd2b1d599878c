package saga

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Status represents the current status of a saga instance
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// StepStatus represents the status of a single step
type StepStatus string

const (
	StepStatusCompleted StepStatus = "completed"
	StepStatusFailed    StepStatus = "failed"
)

// Data is the state carried between steps. String-valued on purpose: step
// payloads here are ids and flags, and it keeps persisted instances trivially
// queryable.
type Data map[string]string

// ExecuteFunc runs a step and returns data to merge into the saga state
type ExecuteFunc func(ctx context.Context, data Data) (Data, error)

// Step is a single step of a saga definition. External tells the
// orchestrator the step's side effect lives outside this system and cannot
// be rolled back once it succeeds.
type Step struct {
	Name     string
	Execute  ExecuteFunc
	External bool
}

// Definition defines a saga with its ordered steps
type Definition struct {
	Name  string
	Steps []*Step
}

// NewDefinition creates a saga definition
func NewDefinition(name string) *Definition {
	return &Definition{Name: name}
}

// AddStep appends a step and returns the definition for chaining
func (d *Definition) AddStep(step *Step) *Definition {
	d.Steps = append(d.Steps, step)
	return d
}

// StepResult records one executed step
type StepResult struct {
	StepName   string     `bson:"step_name" json:"step_name"`
	Status     StepStatus `bson:"status" json:"status"`
	External   bool       `bson:"external" json:"external"`
	Error      string     `bson:"error,omitempty" json:"error,omitempty"`
	FinishedAt time.Time  `bson:"finished_at" json:"finished_at"`
}

// Instance is a running or finished saga. It is persisted after every step
// so a crash between an external side effect and the local follow-up steps
// is visible and can be reconciled.
type Instance struct {
	ID           string        `bson:"_id" json:"id"`
	DefinitionID string        `bson:"definition_id" json:"definition_id"`
	Status       Status        `bson:"status" json:"status"`
	Data         Data          `bson:"data" json:"data"`
	StepResults  []*StepResult `bson:"step_results" json:"step_results"`
	CurrentStep  int           `bson:"current_step" json:"current_step"`
	Error        string        `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt    time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time     `bson:"updated_at" json:"updated_at"`
	CompletedAt  *time.Time    `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

// NewInstance creates a pending instance
func NewInstance(definitionID string, initial Data) *Instance {
	now := time.Now()
	if initial == nil {
		initial = make(Data)
	}
	return &Instance{
		ID:           uuid.New().String(),
		DefinitionID: definitionID,
		Status:       StatusPending,
		Data:         initial,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// ExternalEffectApplied reports whether any external step completed. When
// true and the instance failed, the failure cannot be rolled back locally.
func (i *Instance) ExternalEffectApplied() bool {
	for _, r := range i.StepResults {
		if r.External && r.Status == StepStatusCompleted {
			return true
		}
	}
	return false
}

func (i *Instance) merge(data Data) {
	for k, v := range data {
		i.Data[k] = v
	}
	i.UpdatedAt = time.Now()
}

func (i *Instance) complete() {
	now := time.Now()
	i.Status = StatusCompleted
	i.CompletedAt = &now
	i.UpdatedAt = now
}

func (i *Instance) fail(err error) {
	now := time.Now()
	i.Status = StatusFailed
	i.Error = err.Error()
	i.CompletedAt = &now
	i.UpdatedAt = now
}
