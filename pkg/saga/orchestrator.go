package saga

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Logger is the minimal logging surface the orchestrator needs
type Logger interface {
	Info(msg string, fields ...interface{})
	Error(msg string, fields ...interface{})
}

// NoOpLogger discards all log output
type NoOpLogger struct{}

func (l *NoOpLogger) Info(msg string, fields ...interface{})  {}
func (l *NoOpLogger) Error(msg string, fields ...interface{}) {}

// Orchestrator runs saga definitions and persists their state after every
// step. There is no automatic compensation here: the sagas in this system
// contain external steps that cannot be rolled back, so a failure after an
// external step is surfaced to the caller for manual reconciliation via
// Instance.ExternalEffectApplied.
type Orchestrator struct {
	definitions map[string]*Definition
	store       Store
	logger      Logger
	mu          sync.RWMutex
}

// OrchestratorConfig holds orchestrator dependencies
type OrchestratorConfig struct {
	Store  Store
	Logger Logger
}

// NewOrchestrator creates an orchestrator
func NewOrchestrator(cfg *OrchestratorConfig) *Orchestrator {
	store := cfg.Store
	if store == nil {
		store = NewMemoryStore()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = &NoOpLogger{}
	}
	return &Orchestrator{
		definitions: make(map[string]*Definition),
		store:       store,
		logger:      logger,
	}
}

// RegisterDefinition registers a saga definition
func (o *Orchestrator) RegisterDefinition(def *Definition) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, exists := o.definitions[def.Name]; exists {
		return fmt.Errorf("saga definition %s already registered", def.Name)
	}
	o.definitions[def.Name] = def
	return nil
}

// GetDefinition retrieves a registered definition
func (o *Orchestrator) GetDefinition(name string) (*Definition, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	def, exists := o.definitions[name]
	if !exists {
		return nil, fmt.Errorf("saga definition %s not found", name)
	}
	return def, nil
}

// Execute runs a new instance of the named definition to completion. The
// returned instance always reflects the persisted final state; err is the
// first step error, if any.
func (o *Orchestrator) Execute(ctx context.Context, definitionName string, initial Data) (*Instance, error) {
	def, err := o.GetDefinition(definitionName)
	if err != nil {
		return nil, err
	}

	instance := NewInstance(def.Name, initial)
	if err := o.store.Save(ctx, instance); err != nil {
		return nil, fmt.Errorf("failed to persist saga instance: %w", err)
	}

	instance.Status = StatusRunning
	o.persist(ctx, instance)

	var stepErr error
	for i, step := range def.Steps {
		if ctx.Err() != nil {
			stepErr = ctx.Err()
			break
		}
		instance.CurrentStep = i

		data, err := step.Execute(ctx, instance.Data)
		result := &StepResult{
			StepName:   step.Name,
			External:   step.External,
			FinishedAt: time.Now(),
		}
		if err != nil {
			result.Status = StepStatusFailed
			result.Error = err.Error()
			instance.StepResults = append(instance.StepResults, result)
			o.persist(ctx, instance)
			o.logger.Error("Saga step failed", "saga_id", instance.ID, "step", step.Name, "error", err)
			stepErr = err
			break
		}

		result.Status = StepStatusCompleted
		instance.StepResults = append(instance.StepResults, result)
		instance.merge(data)
		o.persist(ctx, instance)
	}

	if stepErr != nil {
		instance.fail(stepErr)
		o.persist(ctx, instance)
		return instance, stepErr
	}

	instance.complete()
	o.persist(ctx, instance)
	o.logger.Info("Saga completed", "saga_id", instance.ID, "definition", def.Name)
	return instance, nil
}

// Unfinished lists failed instances whose external side effect was applied,
// for operator reconciliation
func (o *Orchestrator) Unfinished(ctx context.Context, limit int) ([]*Instance, error) {
	failed, err := o.store.ListByStatus(ctx, StatusFailed, limit)
	if err != nil {
		return nil, err
	}
	var out []*Instance
	for _, instance := range failed {
		if instance.ExternalEffectApplied() {
			out = append(out, instance)
		}
	}
	return out, nil
}

func (o *Orchestrator) persist(ctx context.Context, instance *Instance) {
	if err := o.store.Update(ctx, instance); err != nil {
		o.logger.Error("Failed to persist saga state", "saga_id", instance.ID, "error", err)
	}
}
